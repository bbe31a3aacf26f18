package database

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

const pgUniqueViolation = "23505"

// UniqueViolation reports whether err is a unique-constraint failure and,
// if so, the name of the constraint or column that was violated
// (e.g. "users_username_key" on Postgres, "users.username" on SQLite).
func UniqueViolation(err error) (string, bool) {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Constraint, pqErr.Code == pgUniqueViolation
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.ConstraintName, pgErr.Code == pgUniqueViolation
	}

	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		if liteErr.Code()&0xff != sqlite3.SQLITE_CONSTRAINT {
			return "", false
		}
		msg := liteErr.Error()
		const marker = "UNIQUE constraint failed: "
		i := strings.Index(msg, marker)
		if i < 0 {
			return "", false
		}
		target := msg[i+len(marker):]
		if j := strings.IndexAny(target, " ,("); j >= 0 {
			target = target[:j]
		}
		return target, true
	}

	return "", false
}
