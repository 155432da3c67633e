package repository

import (
	"context"
	"database/sql"
)

// SQLExecutor is the subset of *sql.DB the repositories need.
type SQLExecutor interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

var _ SQLExecutor = (*sql.DB)(nil)
