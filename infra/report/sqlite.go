package report

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "modernc.org/sqlite"

	corereport "github.com/kilianp07/pvsim/core/report"
)

// SQLiteStore persists records to a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens or creates the database at path and ensures schema.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	schema := `CREATE TABLE IF NOT EXISTS day_reports (
        run_id TEXT NOT NULL,
        day TEXT NOT NULL,
        ts INTEGER NOT NULL,
        self_consumption REAL NOT NULL,
        record TEXT NOT NULL,
        PRIMARY KEY (run_id, day)
    );
    CREATE INDEX IF NOT EXISTS day_reports_ts ON day_reports (ts);`
	if _, err := db.Exec(schema); err != nil {
		if cerr := db.Close(); cerr != nil {
			return nil, fmt.Errorf("close db: %v (schema err: %w)", cerr, err)
		}
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

// Append inserts the record, replacing a previous record of the same run and day.
func (s *SQLiteStore) Append(ctx context.Context, rec corereport.Record) error {
	b, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO day_reports (run_id, day, ts, self_consumption, record) VALUES (?, ?, ?, ?, ?)`,
		rec.RunID, rec.Day, rec.Date.Unix(), rec.Stats.SelfConsumptionPct, string(b))
	return err
}

// Query returns records matching q.
func (s *SQLiteStore) Query(ctx context.Context, q corereport.Query) ([]corereport.Record, error) {
	var args []any
	query := `SELECT record FROM day_reports WHERE 1=1`
	if !q.Start.IsZero() {
		query += ` AND ts >= ?`
		args = append(args, q.Start.Unix())
	}
	if !q.End.IsZero() {
		query += ` AND ts <= ?`
		args = append(args, q.End.Unix())
	}
	if q.RunID != "" {
		query += ` AND run_id = ?`
		args = append(args, q.RunID)
	}
	if q.Day != "" {
		query += ` AND day = ?`
		args = append(args, q.Day)
	}
	if q.MinSelfConsumption > 0 {
		query += ` AND self_consumption >= ?`
		args = append(args, q.MinSelfConsumption)
	}
	query += ` ORDER BY ts, run_id`
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

// Close closes the underlying database.
func (s *SQLiteStore) Close() error { return s.db.Close() }

func decodeRows(rows *sql.Rows) ([]corereport.Record, error) {
	var res []corereport.Record
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		var r corereport.Record
		if err := json.Unmarshal([]byte(data), &r); err != nil {
			return nil, fmt.Errorf("unmarshal record: %w", err)
		}
		res = append(res, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return res, nil
}
