package database

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const currentSchemaVersion = 2

// DeleteRun is one delete-objects invocation and what the backend reported.
type DeleteRun struct {
	ID        int64
	Provider  string
	Bucket    string
	Prefix    string
	Pattern   string
	StartedAt time.Time
	Deleted   []string
	Errors    []DeleteError
	// DeletedCount and ErrorCount are filled by ListDeleteRuns.
	DeletedCount int
	ErrorCount   int
}

type DeleteError struct {
	Key     string
	Code    string
	Message string
}

type DB struct {
	db *sql.DB
}

func NewDB(dbPath string) (*DB, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	dbInstance := &DB{db: db}

	if err := dbInstance.initializeSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("error initializing schema: %w", err)
	}

	return dbInstance, nil
}

func (db *DB) initializeSchema() error {
	var tableExists bool
	err := db.db.QueryRow(`
		SELECT COUNT(*) > 0 FROM sqlite_master
		WHERE type='table' AND name='schema_migrations'
	`).Scan(&tableExists)

	if err != nil {
		return fmt.Errorf("error checking migrations table: %w", err)
	}

	var version int
	if !tableExists {
		_, err := db.db.Exec(`
			CREATE TABLE schema_migrations (
				version INTEGER PRIMARY KEY,
				applied_at TIMESTAMP NOT NULL
			)
		`)
		if err != nil {
			return fmt.Errorf("error creating migrations table: %w", err)
		}
		version = 0
	} else {
		err := db.db.QueryRow(`
			SELECT COALESCE(MAX(version), 0) FROM schema_migrations
		`).Scan(&version)

		if err != nil {
			return fmt.Errorf("error getting schema version: %w", err)
		}
	}

	return db.applyMigrations(version)
}

func (db *DB) applyMigrations(currentVersion int) (err error) {
	if currentVersion >= currentSchemaVersion {
		return nil
	}

	tx, err := db.db.Begin()
	if err != nil {
		return fmt.Errorf("error starting transaction for migrations: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	for v := currentVersion + 1; v <= currentSchemaVersion; v++ {
		if err = db.applyMigration(tx, v); err != nil {
			return err
		}

		_, err = tx.Exec(`
			INSERT INTO schema_migrations (version, applied_at)
			VALUES (?, CURRENT_TIMESTAMP)
		`, v)
		if err != nil {
			return fmt.Errorf("error recording migration %d: %w", v, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("error committing migrations: %w", err)
	}

	return nil
}

func (db *DB) applyMigration(tx *sql.Tx, version int) error {
	var err error

	switch version {
	case 1:
		_, err = tx.Exec(`
			CREATE TABLE IF NOT EXISTS delete_runs (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				provider TEXT NOT NULL,
				bucket TEXT NOT NULL,
				prefix TEXT NOT NULL,
				pattern TEXT NOT NULL,
				started_at TIMESTAMP NOT NULL
			);
			CREATE TABLE IF NOT EXISTS deleted_objects (
				run_id INTEGER NOT NULL REFERENCES delete_runs(id),
				position INTEGER NOT NULL,
				object_key TEXT NOT NULL,
				PRIMARY KEY (run_id, position)
			);
		`)

	case 2:
		_, err = tx.Exec(`
			CREATE TABLE IF NOT EXISTS delete_errors (
				run_id INTEGER NOT NULL REFERENCES delete_runs(id),
				object_key TEXT NOT NULL,
				code TEXT,
				message TEXT
			);
			CREATE INDEX IF NOT EXISTS idx_delete_errors_run
			ON delete_errors(run_id);
		`)
	}

	if err != nil {
		return fmt.Errorf("error applying migration %d: %w", version, err)
	}

	return nil
}

func (db *DB) Close() error {
	return db.db.Close()
}

// RecordDeletion stores a run with its deleted keys and errors in one
// transaction and returns the new run ID.
func (db *DB) RecordDeletion(run *DeleteRun) (id int64, err error) {
	tx, err := db.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("error starting transaction: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	res, err := tx.Exec(`
		INSERT INTO delete_runs (provider, bucket, prefix, pattern, started_at)
		VALUES (?, ?, ?, ?, ?)
	`, run.Provider, run.Bucket, run.Prefix, run.Pattern, run.StartedAt.UTC())
	if err != nil {
		return 0, fmt.Errorf("error inserting delete run: %w", err)
	}

	id, err = res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("error reading delete run id: %w", err)
	}

	for i, key := range run.Deleted {
		if _, err = tx.Exec(`
			INSERT INTO deleted_objects (run_id, position, object_key) VALUES (?, ?, ?)
		`, id, i, key); err != nil {
			return 0, fmt.Errorf("error inserting deleted object: %w", err)
		}
	}

	for _, e := range run.Errors {
		if _, err = tx.Exec(`
			INSERT INTO delete_errors (run_id, object_key, code, message) VALUES (?, ?, ?, ?)
		`, id, e.Key, e.Code, e.Message); err != nil {
			return 0, fmt.Errorf("error inserting delete error: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("error committing delete run: %w", err)
	}

	run.ID = id
	return id, nil
}

// ListDeleteRuns returns up to limit runs, most recent first, with counts
// instead of key lists.
func (db *DB) ListDeleteRuns(limit int) ([]*DeleteRun, error) {
	rows, err := db.db.Query(`
		SELECT r.id, r.provider, r.bucket, r.prefix, r.pattern, r.started_at,
			(SELECT COUNT(*) FROM deleted_objects d WHERE d.run_id = r.id),
			(SELECT COUNT(*) FROM delete_errors e WHERE e.run_id = r.id)
		FROM delete_runs r
		ORDER BY r.id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("error listing delete runs: %w", err)
	}
	defer rows.Close()

	var runs []*DeleteRun
	for rows.Next() {
		var run DeleteRun
		err := rows.Scan(
			&run.ID,
			&run.Provider,
			&run.Bucket,
			&run.Prefix,
			&run.Pattern,
			&run.StartedAt,
			&run.DeletedCount,
			&run.ErrorCount,
		)
		if err != nil {
			return nil, fmt.Errorf("error scanning delete run: %w", err)
		}
		runs = append(runs, &run)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating results: %w", err)
	}

	return runs, nil
}

// GetDeletedKeys returns the keys deleted by a run in the order they were reported.
func (db *DB) GetDeletedKeys(runID int64) ([]string, error) {
	rows, err := db.db.Query(`
		SELECT object_key FROM deleted_objects
		WHERE run_id = ?
		ORDER BY position
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("error listing deleted objects: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("error scanning deleted object: %w", err)
		}
		keys = append(keys, key)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating results: %w", err)
	}

	return keys, nil
}

func (db *DB) GetDeleteErrors(runID int64) ([]DeleteError, error) {
	rows, err := db.db.Query(`
		SELECT object_key, COALESCE(code, ''), COALESCE(message, '') FROM delete_errors
		WHERE run_id = ?
		ORDER BY rowid
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("error listing delete errors: %w", err)
	}
	defer rows.Close()

	var errs []DeleteError
	for rows.Next() {
		var e DeleteError
		if err := rows.Scan(&e.Key, &e.Code, &e.Message); err != nil {
			return nil, fmt.Errorf("error scanning delete error: %w", err)
		}
		errs = append(errs, e)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating results: %w", err)
	}

	return errs, nil
}
