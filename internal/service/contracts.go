package service

import (
	"context"
	"time"

	"github.com/dayanaadylkhanova/device-readings/internal/entity"
)

//go:generate mockgen -source=contracts.go -destination=mock_contracts.go -package=service

// DeviceStore is the port the transports use to reach the storage engine.
type DeviceStore interface {
	RegisterOrFindDevice(uid string) entity.Device
	Ingest(uid string, samples []entity.Sample) int
	TotalCount(uid string) (int64, error)
	LatestTimestamp(uid string) (entity.Instant, bool, error)
}

// IngestObserver receives ingestion events, e.g. for metrics.
type IngestObserver interface {
	DeviceRegistered()
	ReadingAccepted()
	ReadingDuplicate()
}

// AggregateWriter выгружает агрегаты устройств во внешнее хранилище.
type AggregateWriter interface {
	UpsertAggregates(ctx context.Context, rows []AggregateRow) error
}

// AggregateRow это полный снимок агрегата одного устройства.
type AggregateRow struct {
	DeviceID   int64
	UID        string
	TotalCount int64
	LatestTS   *time.Time // nil, если показаний нет
}
