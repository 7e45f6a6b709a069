package postgres

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/dayanaadylkhanova/device-readings/internal/service"
)

func TestUpsertSQL_Placeholders(t *testing.T) {
	ts := time.Date(2021, 9, 29, 17, 8, 15, 0, time.UTC)
	rows := []service.AggregateRow{
		{DeviceID: 1, UID: "d1", TotalCount: 17, LatestTS: &ts},
		{DeviceID: 2, UID: "d2", TotalCount: 0},
	}

	sql, args := upsertSQL(rows)
	if !strings.Contains(sql, "($1,$2,$3,$4),($5,$6,$7,$8)") {
		t.Fatalf("unexpected placeholders in %q", sql)
	}
	if !strings.Contains(sql, "ON CONFLICT (device_id) DO UPDATE") {
		t.Fatalf("expected upsert clause in %q", sql)
	}
	if len(args) != 8 {
		t.Fatalf("expected 8 args, got %d", len(args))
	}
	if args[1] != "d1" || args[6] != int64(0) {
		t.Fatalf("unexpected args %#v", args)
	}
	if p, ok := args[7].(*time.Time); !ok || p != nil {
		t.Fatalf("expected nil latest_ts for empty device, got %#v", args[7])
	}
}

func TestChunkRows_StaysUnderParamLimit(t *testing.T) {
	const maxParams = 65535
	rows := make([]service.AggregateRow, 20000)
	for i := range rows {
		rows[i] = service.AggregateRow{DeviceID: int64(i + 1), UID: fmt.Sprintf("d%d", i+1), TotalCount: int64(i)}
	}

	chunks := chunkRows(rows, upsertChunkRows)
	if len(chunks) != 20 {
		t.Fatalf("expected 20 chunks, got %d", len(chunks))
	}
	seen := 0
	for i, chunk := range chunks {
		_, args := upsertSQL(chunk)
		if len(args) > maxParams {
			t.Fatalf("chunk %d has %d params", i, len(args))
		}
		if chunk[0].DeviceID != int64(seen+1) {
			t.Fatalf("chunk %d starts at device %d, want %d", i, chunk[0].DeviceID, seen+1)
		}
		seen += len(chunk)
	}
	if seen != len(rows) {
		t.Fatalf("chunks cover %d rows, want %d", seen, len(rows))
	}
}

func TestChunkRows_Remainder(t *testing.T) {
	rows := make([]service.AggregateRow, 2501)
	chunks := chunkRows(rows, 1000)
	if len(chunks) != 3 || len(chunks[2]) != 501 {
		t.Fatalf("unexpected chunk sizes: %d chunks", len(chunks))
	}
	if got := chunkRows(nil, 1000); len(got) != 0 {
		t.Fatalf("expected no chunks for empty input, got %d", len(got))
	}
}
