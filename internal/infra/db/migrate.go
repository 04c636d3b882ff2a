package db

import "database/sql"

// MigrateUp creates the notification records schema for the given dialect.
// Statements are idempotent so the migration can run on every startup.
func MigrateUp(db *sql.DB, dialect Dialect) error {
	var createTable string
	switch dialect {
	case DialectPostgres:
		createTable = `
CREATE TABLE IF NOT EXISTS notification_records (
    fingerprint TEXT PRIMARY KEY,
    score       DOUBLE PRECISION NOT NULL,
    notified_at TIMESTAMPTZ NOT NULL
)`
	default:
		createTable = `
CREATE TABLE IF NOT EXISTS notification_records (
    fingerprint TEXT PRIMARY KEY,
    score       REAL NOT NULL,
    notified_at TIMESTAMP NOT NULL
)`
	}

	if _, err := db.Exec(createTable); err != nil {
		return err
	}

	// Retention pruning deletes by notified_at
	if _, err := db.Exec(
		`CREATE INDEX IF NOT EXISTS idx_notification_records_notified_at
    ON notification_records(notified_at)`); err != nil {
		return err
	}

	return nil
}

// MigrateDown rolls back the database schema.
// Use with caution: this deletes all delivery history, so every article
// becomes eligible for notification again.
func MigrateDown(db *sql.DB) error {
	dropStatements := []string{
		`DROP INDEX IF EXISTS idx_notification_records_notified_at`,
		`DROP TABLE IF EXISTS notification_records`,
	}

	for _, stmt := range dropStatements {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}

	return nil
}
