package querylog

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// SQLiteLog appends query entries to a SQLite table, opened through
// modernc.org/sqlite (a CGo-free driver, matching how the rest of this
// core avoids CGo dependencies).
type SQLiteLog struct {
	db *sql.DB
}

// OpenSQLite opens (creating if necessary) a query log at path and
// ensures its table exists.
func OpenSQLite(path string) (*SQLiteLog, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("querylog: open sqlite: %w", err)
	}

	const schema = `
CREATE TABLE IF NOT EXISTS query_log (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	query_id INTEGER NOT NULL,
	kind INTEGER NOT NULL,
	noreply INTEGER NOT NULL,
	profile INTEGER NOT NULL,
	arrived_at INTEGER NOT NULL
)`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("querylog: create table: %w", err)
	}

	return &SQLiteLog{db: db}, nil
}

// Append implements Log.
func (l *SQLiteLog) Append(e Entry) error {
	_, err := l.db.Exec(
		`INSERT INTO query_log (query_id, kind, noreply, profile, arrived_at) VALUES (?, ?, ?, ?, ?)`,
		e.QueryID, int32(e.Kind), e.NoReply, e.Profile, e.ArrivedAt.UnixNano(),
	)
	return err
}

// Close implements Log.
func (l *SQLiteLog) Close() error { return l.db.Close() }
