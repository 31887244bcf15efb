// Package store keeps a journal of computed charts in SQLite.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/litescript/ls-houses/internal/chart"
	"github.com/litescript/ls-houses/internal/houses"
)

// ErrNotFound is returned for an unknown chart id.
var ErrNotFound = errors.New("chart not found")

// DefaultListLimit caps List when no limit is given.
const DefaultListLimit = 100

// DB wraps a SQLite connection for the chart journal.
type DB struct {
	conn *sqlx.DB
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS charts (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		created_at INTEGER NOT NULL,
		chart_time INTEGER,
		latitude REAL NOT NULL,
		longitude REAL NOT NULL,
		armc REAL NOT NULL,
		obliquity REAL NOT NULL,
		system TEXT NOT NULL,
		requested TEXT NOT NULL,
		cusps_json TEXT NOT NULL,
		angles_json TEXT NOT NULL,
		note TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_charts_created ON charts(created_at);
	`
	_, err := db.conn.Exec(schema)
	return err
}

type chartRow struct {
	ID         string        `db:"id"`
	Name       string        `db:"name"`
	CreatedAt  int64         `db:"created_at"`
	ChartTime  sql.NullInt64 `db:"chart_time"`
	Latitude   float64       `db:"latitude"`
	Longitude  float64       `db:"longitude"`
	ARMC       float64       `db:"armc"`
	Obliquity  float64       `db:"obliquity"`
	System     string        `db:"system"`
	Requested  string        `db:"requested"`
	CuspsJSON  string        `db:"cusps_json"`
	AnglesJSON string        `db:"angles_json"`
	Note       string        `db:"note"`
}

func toRow(c *chart.Chart) (chartRow, error) {
	cusps, err := json.Marshal(c.Cusps)
	if err != nil {
		return chartRow{}, err
	}
	angles, err := json.Marshal(c.Angles)
	if err != nil {
		return chartRow{}, err
	}

	r := chartRow{
		ID:         c.ID.String(),
		Name:       c.Name,
		CreatedAt:  c.CreatedAt.UnixNano(),
		Latitude:   c.Latitude,
		Longitude:  c.Longitude,
		ARMC:       c.ARMC,
		Obliquity:  c.Obliquity,
		System:     c.System.Code(),
		Requested:  c.Requested.Code(),
		CuspsJSON:  string(cusps),
		AnglesJSON: string(angles),
		Note:       c.Note,
	}
	if c.Time != nil {
		r.ChartTime = sql.NullInt64{Int64: c.Time.UnixNano(), Valid: true}
	}
	return r, nil
}

func (r chartRow) chart() (*chart.Chart, error) {
	id, err := uuid.Parse(r.ID)
	if err != nil {
		return nil, fmt.Errorf("chart id %q: %w", r.ID, err)
	}

	c := &chart.Chart{
		ID:        id,
		Name:      r.Name,
		CreatedAt: time.Unix(0, r.CreatedAt).UTC(),
		Latitude:  r.Latitude,
		Longitude: r.Longitude,
		ARMC:      r.ARMC,
		Obliquity: r.Obliquity,
		System:    houses.System(r.System[0]),
		Requested: houses.System(r.Requested[0]),
		Note:      r.Note,
	}
	if r.ChartTime.Valid {
		t := time.Unix(0, r.ChartTime.Int64).UTC()
		c.Time = &t
	}
	if err := json.Unmarshal([]byte(r.CuspsJSON), &c.Cusps); err != nil {
		return nil, fmt.Errorf("chart %s cusps: %w", r.ID, err)
	}
	if err := json.Unmarshal([]byte(r.AnglesJSON), &c.Angles); err != nil {
		return nil, fmt.Errorf("chart %s angles: %w", r.ID, err)
	}
	return c, nil
}

// Save inserts or replaces a chart.
func (db *DB) Save(ctx context.Context, c *chart.Chart) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	row, err := toRow(c)
	if err != nil {
		return fmt.Errorf("encode chart: %w", err)
	}

	tx, err := db.conn.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.NamedExecContext(ctx, `INSERT OR REPLACE INTO charts
		(id, name, created_at, chart_time, latitude, longitude, armc, obliquity,
		 system, requested, cusps_json, angles_json, note)
		VALUES (:id, :name, :created_at, :chart_time, :latitude, :longitude, :armc, :obliquity,
		 :system, :requested, :cusps_json, :angles_json, :note)`, row)
	if err != nil {
		return fmt.Errorf("insert chart: %w", err)
	}
	return tx.Commit()
}

// Get loads one chart.
func (db *DB) Get(ctx context.Context, id uuid.UUID) (*chart.Chart, error) {
	var row chartRow
	err := db.conn.GetContext(ctx, &row, "SELECT * FROM charts WHERE id = ?", id.String())
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("get chart: %w", err)
	}
	return row.chart()
}

// List returns the most recent charts, newest first.
func (db *DB) List(ctx context.Context, limit int) ([]*chart.Chart, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	var rows []chartRow
	err := db.conn.SelectContext(ctx, &rows,
		"SELECT * FROM charts ORDER BY created_at DESC, id LIMIT ?", limit)
	if err != nil {
		return nil, fmt.Errorf("list charts: %w", err)
	}

	charts := make([]*chart.Chart, 0, len(rows))
	for _, r := range rows {
		c, err := r.chart()
		if err != nil {
			return nil, err
		}
		charts = append(charts, c)
	}
	return charts, nil
}

// Delete removes a chart.
func (db *DB) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := db.conn.ExecContext(ctx, "DELETE FROM charts WHERE id = ?", id.String())
	if err != nil {
		return fmt.Errorf("delete chart: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

// Count returns the number of stored charts.
func (db *DB) Count(ctx context.Context) (int, error) {
	var n int
	err := db.conn.GetContext(ctx, &n, "SELECT COUNT(*) FROM charts")
	return n, err
}
