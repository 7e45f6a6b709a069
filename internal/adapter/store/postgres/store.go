package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/dayanaadylkhanova/device-readings/internal/service"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// Store is an export sink for device aggregates. It is write-only: the
// service never reads it back.
type Store struct {
	pool *pgxpool.Pool
	log  *zap.Logger
}

var _ service.AggregateWriter = (*Store)(nil)

func New(ctx context.Context, dsn string, log *zap.Logger) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres pool: %w", err)
	}
	return &Store{pool: pool, log: log}, nil
}

func (s *Store) Init(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS device_aggregates (
	device_id   BIGINT      PRIMARY KEY,
	uid         TEXT        NOT NULL UNIQUE,
	total_count BIGINT      NOT NULL,
	latest_ts   TIMESTAMPTZ NULL,
	updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);
`
	_, err := s.pool.Exec(ctx, ddl)
	return err
}

// upsertChunkRows keeps each statement far below the 65535 bind
// parameter limit of the Postgres protocol (4 per row).
const upsertChunkRows = 1000

// UpsertAggregates implements service.AggregateWriter. All chunks go in one
// transaction.
func (s *Store) UpsertAggregates(ctx context.Context, rows []service.AggregateRow) error {
	if len(rows) == 0 {
		return nil
	}
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin upsert: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	chunks := chunkRows(rows, upsertChunkRows)
	for _, chunk := range chunks {
		sql, args := upsertSQL(chunk)
		if _, err := tx.Exec(ctx, sql, args...); err != nil {
			return fmt.Errorf("upsert aggregates: %w", err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit upsert: %w", err)
	}
	s.log.Debug("aggregates upserted", zap.Int("rows", len(rows)), zap.Int("statements", len(chunks)))
	return nil
}

func chunkRows(rows []service.AggregateRow, size int) [][]service.AggregateRow {
	chunks := make([][]service.AggregateRow, 0, (len(rows)+size-1)/size)
	for len(rows) > size {
		chunks = append(chunks, rows[:size])
		rows = rows[size:]
	}
	if len(rows) > 0 {
		chunks = append(chunks, rows)
	}
	return chunks
}

func upsertSQL(rows []service.AggregateRow) (string, []any) {
	var b strings.Builder
	b.WriteString("INSERT INTO device_aggregates (device_id, uid, total_count, latest_ts) VALUES ")
	args := make([]any, 0, len(rows)*4)
	for i, r := range rows {
		if i > 0 {
			b.WriteString(",")
		}
		o := i*4 + 1
		fmt.Fprintf(&b, "($%d,$%d,$%d,$%d)", o, o+1, o+2, o+3)
		args = append(args, r.DeviceID, r.UID, r.TotalCount, r.LatestTS)
	}
	b.WriteString(" ON CONFLICT (device_id) DO UPDATE SET total_count = EXCLUDED.total_count," +
		" latest_ts = EXCLUDED.latest_ts, updated_at = now()")
	return b.String(), args
}

func (s *Store) Close() error {
	s.pool.Close()
	return nil
}
