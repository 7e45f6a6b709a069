package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Exporter periodically pushes changed device aggregates to an AggregateWriter.
// Rows are full snapshots, so a retried or repeated write is harmless.
type Exporter struct {
	log        *zap.Logger
	store      *Store
	writer     AggregateWriter
	flushEvery time.Duration

	flushMu  sync.Mutex
	stopOnce sync.Once
	stopCh   chan struct{}
}

func NewExporter(log *zap.Logger, st *Store, w AggregateWriter, flushEvery time.Duration) *Exporter {
	if flushEvery <= 0 {
		flushEvery = time.Second
	}
	return &Exporter{log: log, store: st, writer: w, flushEvery: flushEvery, stopCh: make(chan struct{})}
}

// Flush writes every dirty device once. On failure the devices stay dirty
// and are retried on the next call.
func (e *Exporter) Flush(ctx context.Context) error {
	e.flushMu.Lock()
	defer e.flushMu.Unlock()

	rows := e.store.takeDirty()
	if len(rows) == 0 {
		return nil
	}
	if err := e.writer.UpsertAggregates(ctx, rows); err != nil {
		e.store.markDirty(rows)
		return err
	}
	e.log.Debug("aggregates exported", zap.Int("rows", len(rows)))
	return nil
}

func (e *Exporter) Run(ctx context.Context) {
	t := time.NewTicker(e.flushEvery)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-e.stopCh:
			return
		case <-t.C:
			if err := e.Flush(ctx); err != nil {
				e.log.Warn("flush failed", zap.Error(err))
			}
		}
	}
}

// Stop ends Run and makes a final best-effort flush.
func (e *Exporter) Stop(ctx context.Context) {
	e.stopOnce.Do(func() { close(e.stopCh) })
	if err := e.Flush(ctx); err != nil {
		e.log.Warn("final flush failed", zap.Error(err))
	}
}
