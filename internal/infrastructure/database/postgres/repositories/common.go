// Package repositories implements the domain repository ports on PostgreSQL
// via database/sql and lib/pq.
package repositories

import (
	"context"
	"database/sql"
	"time"
)

// queryExecutor abstracts sql.DB and sql.Tx.
type queryExecutor interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// scanner abstracts sql.Row and sql.Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}

// nullableTime converts a NullTime into the *time.Time the entities carry.
func nullableTime(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time
	return &t
}

// timePtrValue converts back for writes.
func timePtrValue(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return *t
}
