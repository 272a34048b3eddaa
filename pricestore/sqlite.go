// Package pricestore supplies price bars from a SQLite database.
package pricestore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rustyeddy/strategylab/market"

	_ "github.com/mattn/go-sqlite3"
)

type SQLite struct {
	db  *sql.DB
	loc *time.Location
}

// Open opens (creating if needed) the database at path. Bars are grouped
// into calendar days in loc; nil means UTC.
func Open(path string, loc *time.Location) (*SQLite, error) {
	if loc == nil {
		loc = time.UTC
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(Schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("pricestore: schema: %w", err)
	}
	return &SQLite{db: db, loc: loc}, nil
}

// Insert stores bars, ignoring any whose (time, interval) is already
// present. It returns how many rows were added.
func (s *SQLite) Insert(ctx context.Context, bars ...market.Bar) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR IGNORE INTO bars (ts, interval, open, high, low, close)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	added := 0
	for _, b := range bars {
		res, err := stmt.ExecContext(ctx, b.Time.Unix(), string(b.Interval), b.Open, b.High, b.Low, b.Close)
		if err != nil {
			return 0, fmt.Errorf("pricestore: insert %s: %w", b.Time.Format(time.RFC3339), err)
		}
		n, _ := res.RowsAffected()
		added += int(n)
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return added, nil
}

// Load returns the bars whose calendar day falls in r, sorted within each
// day. An empty range yields an empty series.
func (s *SQLite) Load(ctx context.Context, r market.DateRange) (market.Series, error) {
	out := market.Series{}
	if !r.Start.IsValid() || !r.End.IsValid() || !r.Start.Before(r.End) {
		return out, nil
	}

	start := r.Start.In(s.loc).Unix()
	end := r.End.In(s.loc).Unix()

	rows, err := s.db.QueryContext(ctx, `
		SELECT ts, interval, open, high, low, close
		FROM bars
		WHERE ts >= ? AND ts < ?
		ORDER BY ts ASC, interval ASC`, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			ts       int64
			interval string
			b        market.Bar
		)
		if err := rows.Scan(&ts, &interval, &b.Open, &b.High, &b.Low, &b.Close); err != nil {
			return nil, err
		}
		b.Time = time.Unix(ts, 0).In(s.loc)
		b.Interval = market.Interval(interval)
		out.Add(b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Count reports how many bars are stored.
func (s *SQLite) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM bars`).Scan(&n)
	return n, err
}

func (s *SQLite) Close() error {
	return s.db.Close()
}
