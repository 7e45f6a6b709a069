package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dayanaadylkhanova/device-readings/internal/service"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// Store mirrors device aggregates into a local SQLite file for reporting.
type Store struct {
	db  *sql.DB
	log *zap.Logger
}

var _ service.AggregateWriter = (*Store)(nil)

func New(ctx context.Context, path string, log *zap.Logger) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	return &Store{db: db, log: log}, nil
}

func (s *Store) Init(ctx context.Context) error {
	statements := []string{
		`PRAGMA journal_mode = WAL;`,
		`CREATE TABLE IF NOT EXISTS device_aggregates (
			device_id   INTEGER PRIMARY KEY,
			uid         TEXT NOT NULL UNIQUE,
			total_count INTEGER NOT NULL,
			latest_ts   TEXT,
			updated_at  TEXT NOT NULL
		);`,
	}
	for _, stmt := range statements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate failed: %w", err)
		}
	}
	return nil
}

// UpsertAggregates implements service.AggregateWriter
func (s *Store) UpsertAggregates(ctx context.Context, rows []service.AggregateRow) error {
	if len(rows) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO device_aggregates (device_id, uid, total_count, latest_ts, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(device_id) DO UPDATE SET
			total_count = excluded.total_count,
			latest_ts = excluded.latest_ts,
			updated_at = excluded.updated_at`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	now := time.Now().UTC().Format(time.RFC3339Nano)
	for _, r := range rows {
		if _, err := stmt.ExecContext(ctx, r.DeviceID, r.UID, r.TotalCount, fromTimePtr(r.LatestTS), now); err != nil {
			return fmt.Errorf("upsert device %d: %w", r.DeviceID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	s.log.Debug("aggregates upserted", zap.Int("rows", len(rows)))
	return nil
}

// Aggregate reads one exported row back; used by reporting tools and tests.
func (s *Store) Aggregate(ctx context.Context, deviceID int64) (service.AggregateRow, error) {
	var (
		row    service.AggregateRow
		latest sql.NullString
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT device_id, uid, total_count, latest_ts FROM device_aggregates WHERE device_id = ?`, deviceID,
	).Scan(&row.DeviceID, &row.UID, &row.TotalCount, &latest)
	if err != nil {
		return service.AggregateRow{}, err
	}
	row.LatestTS = toTimePtr(latest)
	return row, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func toTimePtr(v sql.NullString) *time.Time {
	if !v.Valid || v.String == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339Nano, v.String)
	if err != nil {
		return nil
	}
	u := t.UTC()
	return &u
}

func fromTimePtr(v *time.Time) any {
	if v == nil {
		return nil
	}
	return v.UTC().Format(time.RFC3339Nano)
}
