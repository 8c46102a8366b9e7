package report

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/lib/pq"

	corereport "github.com/kilianp07/pvsim/core/report"
)

const postgresSchema = `CREATE TABLE IF NOT EXISTS day_reports (
	run_id TEXT NOT NULL,
	day TEXT NOT NULL,
	day_start TIMESTAMPTZ NOT NULL,
	self_consumption DOUBLE PRECISION NOT NULL,
	record JSONB NOT NULL,
	PRIMARY KEY (run_id, day)
)`

const postgresUpsert = `INSERT INTO day_reports (run_id, day, day_start, self_consumption, record)
	VALUES ($1, $2, $3, $4, $5)
	ON CONFLICT (run_id, day) DO UPDATE SET
		day_start = EXCLUDED.day_start,
		self_consumption = EXCLUDED.self_consumption,
		record = EXCLUDED.record`

// PostgresStore persists records to PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore connects using a lib/pq DSN and ensures the schema.
func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if _, err := db.ExecContext(ctx, postgresSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &PostgresStore{db: db}, nil
}

// Append upserts a single record.
func (s *PostgresStore) Append(ctx context.Context, rec corereport.Record) error {
	return s.AppendBatch(ctx, []corereport.Record{rec})
}

// AppendBatch upserts records in one transaction.
func (s *PostgresStore) AppendBatch(ctx context.Context, recs []corereport.Record) error {
	if len(recs) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, postgresUpsert)
	if err != nil {
		return fmt.Errorf("prepare upsert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, rec := range recs {
		b, err := json.Marshal(rec)
		if err != nil {
			return err
		}
		if _, err := stmt.ExecContext(ctx, rec.RunID, rec.Day, rec.Date, rec.Stats.SelfConsumptionPct, string(b)); err != nil {
			return fmt.Errorf("upsert %s/%s: %w", rec.RunID, rec.Day, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Query returns records matching q.
func (s *PostgresStore) Query(ctx context.Context, q corereport.Query) ([]corereport.Record, error) {
	var args []any
	query := `SELECT record FROM day_reports WHERE 1=1`
	add := func(cond string, v any) {
		args = append(args, v)
		query += fmt.Sprintf(" AND "+cond, len(args))
	}
	if !q.Start.IsZero() {
		add("day_start >= $%d", q.Start)
	}
	if !q.End.IsZero() {
		add("day_start <= $%d", q.End)
	}
	if q.RunID != "" {
		add("run_id = $%d", q.RunID)
	}
	if q.Day != "" {
		add("day = $%d", q.Day)
	}
	if q.MinSelfConsumption > 0 {
		add("self_consumption >= $%d", q.MinSelfConsumption)
	}
	query += ` ORDER BY day_start, run_id`
	if q.Limit > 0 {
		query += fmt.Sprintf(` LIMIT %d`, q.Limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	return decodeRows(rows)
}

// Close closes the connection pool.
func (s *PostgresStore) Close() error { return s.db.Close() }
