// Package sqlite keeps an audit trail of sync runs and the cell changes they
// applied. The trail is optional; jobs run fine with no database configured.
package sqlite

import (
	"database/sql"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

func InitDB(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	schema := `
	CREATE TABLE IF NOT EXISTS sync_runs (
		id          TEXT PRIMARY KEY,
		job         TEXT NOT NULL,
		started_at  DATETIME NOT NULL,
		finished_at DATETIME,
		matched     INTEGER DEFAULT 0,
		updated     INTEGER DEFAULT 0,
		appended    INTEGER DEFAULT 0,
		skipped     INTEGER DEFAULT 0,
		errors      TEXT DEFAULT ''
	);
	CREATE INDEX IF NOT EXISTS idx_sync_runs_job ON sync_runs(job);
	CREATE INDEX IF NOT EXISTS idx_sync_runs_started ON sync_runs(started_at);

	CREATE TABLE IF NOT EXISTS applied_changes (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id     TEXT NOT NULL,
		row_number INTEGER NOT NULL,
		column_name TEXT NOT NULL,
		old_value  TEXT DEFAULT '',
		new_value  TEXT DEFAULT '',
		applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_applied_changes_run ON applied_changes(run_id);
	`
	if _, err := db.Exec(schema); err != nil {
		return nil, err
	}
	return db, nil
}

type SyncRun struct {
	ID         string
	Job        string
	StartedAt  time.Time
	FinishedAt time.Time
	Matched    int
	Updated    int
	Appended   int
	Skipped    int
	Errors     string
}

type AppliedChange struct {
	RunID     string
	RowNumber int
	Column    string
	OldValue  string
	NewValue  string
}

func InsertSyncRun(db *sql.DB, run SyncRun) error {
	_, err := db.Exec(
		`INSERT INTO sync_runs (id, job, started_at, finished_at, matched, updated, appended, skipped, errors)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Job, run.StartedAt, run.FinishedAt,
		run.Matched, run.Updated, run.Appended, run.Skipped, run.Errors,
	)
	return err
}

func InsertAppliedChanges(db *sql.DB, changes []AppliedChange) (int, error) {
	tx, err := db.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(
		`INSERT INTO applied_changes (run_id, row_number, column_name, old_value, new_value)
		 VALUES (?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	count := 0
	for _, ch := range changes {
		if _, err := stmt.Exec(ch.RunID, ch.RowNumber, ch.Column, ch.OldValue, ch.NewValue); err != nil {
			return count, err
		}
		count++
	}
	if err := tx.Commit(); err != nil {
		return count, err
	}
	return count, nil
}

// RecentRuns returns the latest runs for a job, newest first.
func RecentRuns(db *sql.DB, job string, limit int) ([]SyncRun, error) {
	rows, err := db.Query(
		`SELECT id, job, started_at, finished_at, matched, updated, appended, skipped, errors
		 FROM sync_runs WHERE job = ? ORDER BY started_at DESC LIMIT ?`,
		job, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []SyncRun
	for rows.Next() {
		var r SyncRun
		var finished sql.NullTime
		if err := rows.Scan(&r.ID, &r.Job, &r.StartedAt, &finished, &r.Matched, &r.Updated, &r.Appended, &r.Skipped, &r.Errors); err != nil {
			return nil, err
		}
		if finished.Valid {
			r.FinishedAt = finished.Time
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// ChangesForRun returns the audit rows recorded for one run.
func ChangesForRun(db *sql.DB, runID string) ([]AppliedChange, error) {
	rows, err := db.Query(
		`SELECT run_id, row_number, column_name, old_value, new_value
		 FROM applied_changes WHERE run_id = ? ORDER BY id`,
		runID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var changes []AppliedChange
	for rows.Next() {
		var ch AppliedChange
		if err := rows.Scan(&ch.RunID, &ch.RowNumber, &ch.Column, &ch.OldValue, &ch.NewValue); err != nil {
			return nil, err
		}
		changes = append(changes, ch)
	}
	return changes, rows.Err()
}
