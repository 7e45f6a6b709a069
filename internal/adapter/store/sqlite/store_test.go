package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/dayanaadylkhanova/device-readings/internal/entity"
	"github.com/dayanaadylkhanova/device-readings/internal/service"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	ctx := context.Background()
	st, err := New(ctx, filepath.Join(t.TempDir(), "aggregates.db"), zap.NewNop())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })
	if err := st.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}
	return st
}

func TestUpsertAggregates_InsertThenUpdate(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	ts := time.Date(2021, 9, 29, 17, 8, 15, 0, time.UTC)
	if err := st.UpsertAggregates(ctx, []service.AggregateRow{
		{DeviceID: 1, UID: "d1", TotalCount: 2},
		{DeviceID: 2, UID: "d2", TotalCount: 5, LatestTS: &ts},
	}); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	got, err := st.Aggregate(ctx, 1)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if got.UID != "d1" || got.TotalCount != 2 || got.LatestTS != nil {
		t.Fatalf("unexpected row %#v", got)
	}

	if err := st.UpsertAggregates(ctx, []service.AggregateRow{
		{DeviceID: 1, UID: "d1", TotalCount: 17, LatestTS: &ts},
	}); err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	got, err = st.Aggregate(ctx, 1)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if got.TotalCount != 17 || got.LatestTS == nil || !got.LatestTS.Equal(ts) {
		t.Fatalf("expected updated row, got %#v", got)
	}
}

func TestExporter_WritesIntoSQLite(t *testing.T) {
	ctx := context.Background()
	sink := newTestStore(t)
	st := service.NewStore(zap.NewNop(), 4, nil)
	exp := service.NewExporter(zap.NewNop(), st, sink, time.Hour)

	for _, ts := range []string{"2021-09-29T16:08:15+01:00", "2021-09-29T15:08:15Z", "2021-09-29T18:08:15+01:00"} {
		at, err := entity.ParseInstant(ts)
		if err != nil {
			t.Fatal(err)
		}
		st.IngestReading("d1", at, 10)
	}
	if err := exp.Flush(ctx); err != nil {
		t.Fatalf("flush: %v", err)
	}

	got, err := sink.Aggregate(ctx, 1)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	want := time.Date(2021, 9, 29, 17, 8, 15, 0, time.UTC)
	if got.TotalCount != 20 || got.LatestTS == nil || !got.LatestTS.Equal(want) {
		t.Fatalf("unexpected exported row %#v", got)
	}
}

func TestUpsertAggregates_LogsRowCount(t *testing.T) {
	ctx := context.Background()
	core, logs := observer.New(zapcore.DebugLevel)
	st, err := New(ctx, filepath.Join(t.TempDir(), "aggregates.db"), zap.New(core))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })
	if err := st.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}

	if err := st.UpsertAggregates(ctx, []service.AggregateRow{
		{DeviceID: 1, UID: "d1", TotalCount: 1},
		{DeviceID: 2, UID: "d2", TotalCount: 2},
	}); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	entries := logs.FilterMessage("aggregates upserted").All()
	if len(entries) != 1 {
		t.Fatalf("expected one upsert log entry, got %d", len(entries))
	}
	if got := entries[0].ContextMap()["rows"]; got != int64(2) {
		t.Fatalf("expected rows=2, got %#v", got)
	}
}
