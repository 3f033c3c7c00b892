package history

import (
	"fmt"
	"time"
)

// RunReport summarizes one pipeline run.
type RunReport struct {
	ID               int64
	RanAt            string
	EvaluatedFor     string // the UTC date the run scored against
	Fetched          int
	Kept             int
	Total            int
	New              int
	Refreshed        int
	Retained         int
	DroppedMalformed int
	DroppedBadTitle  int
	DroppedExpired   int
	Duplicates       int
	SourcesOK        int
	SourcesFailed    string // comma-separated source names
	Wrote            bool
	DurationMs       int64
}

// InsertRun records one completed run.
func (db *DB) InsertRun(r *RunReport) error {
	if r.RanAt == "" {
		r.RanAt = time.Now().UTC().Format(time.RFC3339)
	}
	_, err := db.conn.Exec(`
INSERT INTO runs (ran_at, evaluated_for, fetched, kept, total, new_items,
    refreshed, retained, dropped_malformed, dropped_bad_title,
    dropped_expired, duplicates, sources_ok, sources_failed, wrote, duration_ms)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.RanAt, r.EvaluatedFor, r.Fetched, r.Kept, r.Total, r.New,
		r.Refreshed, r.Retained, r.DroppedMalformed, r.DroppedBadTitle,
		r.DroppedExpired, r.Duplicates, r.SourcesOK, r.SourcesFailed,
		boolToInt(r.Wrote), r.DurationMs)
	if err != nil {
		return fmt.Errorf("inserting run report: %w", err)
	}
	return nil
}

// RecentRuns returns the latest n run reports, newest first.
func (db *DB) RecentRuns(n int) ([]RunReport, error) {
	rows, err := db.conn.Query(`
SELECT id, ran_at, evaluated_for, fetched, kept, total, new_items,
    refreshed, retained, dropped_malformed, dropped_bad_title,
    dropped_expired, duplicates, sources_ok, sources_failed, wrote, duration_ms
FROM runs ORDER BY id DESC LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var reports []RunReport
	for rows.Next() {
		var r RunReport
		var wrote int
		if err := rows.Scan(&r.ID, &r.RanAt, &r.EvaluatedFor, &r.Fetched,
			&r.Kept, &r.Total, &r.New, &r.Refreshed, &r.Retained,
			&r.DroppedMalformed, &r.DroppedBadTitle, &r.DroppedExpired,
			&r.Duplicates, &r.SourcesOK, &r.SourcesFailed, &wrote,
			&r.DurationMs); err != nil {
			return nil, fmt.Errorf("scanning run report: %w", err)
		}
		r.Wrote = wrote != 0
		reports = append(reports, r)
	}
	return reports, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
