package pumplog

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// SQLiteDataset stores records in the pump_log table. Cells are stored as
// text with the same rendering as the CSV dataset.
type SQLiteDataset struct {
	db *sql.DB
}

func NewSQLiteDataset(dbPath string) (*SQLiteDataset, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}
	db, err := sql.Open("sqlite", dbPath+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	d := &SQLiteDataset{db: db}
	if err := d.initSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return d, nil
}

func (d *SQLiteDataset) initSchema() error {
	query := `
	CREATE TABLE IF NOT EXISTS pump_log (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		timestamp TEXT NOT NULL,
		soil TEXT,
		humidity TEXT,
		temperature TEXT,
		pump TEXT NOT NULL CHECK (pump IN ('on', 'off'))
	);`
	if _, err := d.db.Exec(query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

func (d *SQLiteDataset) Append(ctx context.Context, rec Record) error {
	row := rec.Row()
	_, err := d.db.ExecContext(ctx,
		`INSERT INTO pump_log (timestamp, soil, humidity, temperature, pump) VALUES (?, ?, ?, ?, ?)`,
		row[0], nullable(rec.Soil, row[1]), nullable(rec.Humidity, row[2]), nullable(rec.Temperature, row[3]), row[4],
	)
	if err != nil {
		return fmt.Errorf("insert record: %w", err)
	}
	return nil
}

// Records returns all rows in insertion order, rendered like CSV cells.
func (d *SQLiteDataset) Records(ctx context.Context) ([][]string, error) {
	rows, err := d.db.QueryContext(ctx,
		`SELECT timestamp, COALESCE(soil, ''), COALESCE(humidity, ''), COALESCE(temperature, ''), pump FROM pump_log ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()
	var out [][]string
	for rows.Next() {
		r := make([]string, len(Columns))
		if err := rows.Scan(&r[0], &r[1], &r[2], &r[3], &r[4]); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (d *SQLiteDataset) Close() error { return d.db.Close() }

func nullable(v any, rendered string) sql.NullString {
	return sql.NullString{String: rendered, Valid: v != nil}
}
