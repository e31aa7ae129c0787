// Package sqlite is a single-file ledger backend for small deployments.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

const schema = `
CREATE TABLE IF NOT EXISTS picks (
    seq            INTEGER PRIMARY KEY AUTOINCREMENT,
    id             TEXT    NOT NULL UNIQUE,
    chat_id        INTEGER NOT NULL,
    user_id        INTEGER NOT NULL,
    username       TEXT    NOT NULL,
    mint_address   TEXT    NOT NULL,
    cost_basis_usd REAL    NOT NULL,
    num_tokens     REAL    NOT NULL,
    created_at     INTEGER NOT NULL,
    UNIQUE (chat_id, mint_address)
);

CREATE INDEX IF NOT EXISTS picks_chat_user_idx ON picks (chat_id, user_id);

CREATE TABLE IF NOT EXISTS wallets (
    seq             INTEGER PRIMARY KEY AUTOINCREMENT,
    id              TEXT    NOT NULL UNIQUE,
    chat_id         INTEGER NOT NULL,
    user_id         INTEGER NOT NULL,
    username        TEXT    NOT NULL,
    wallet_address  TEXT    NOT NULL,
    start_usd_value REAL    NOT NULL,
    created_at      INTEGER NOT NULL,
    UNIQUE (chat_id, wallet_address),
    UNIQUE (chat_id, user_id)
);
`

// DB wraps a SQLite handle holding both ledger tables.
type DB struct {
	*sql.DB
}

// Open opens (or creates) the ledger at path and applies the schema.
// Use ":memory:" for an ephemeral ledger.
func Open(ctx context.Context, path string) (*DB, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite %q: %w", path, err)
	}
	// One writer; also keeps ":memory:" a single database.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply sqlite schema: %w", err)
	}
	return &DB{DB: db}, nil
}

// isDuplicateKeyError checks if error is a UNIQUE or PRIMARY KEY violation.
func isDuplicateKeyError(err error) bool {
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		code := sqliteErr.Code()
		return code == sqlite3.SQLITE_CONSTRAINT_UNIQUE || code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
	}
	return false
}
