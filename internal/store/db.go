package store

import (
	"context"
	"database/sql"
)

// Execer is the write surface a store needs inside a transaction. Statement
// uploads and main-currency changes pass the enclosing *sqlx.Tx through it
// so a whole batch commits or rolls back together.
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// DB is what a store holds between requests: reads plus autocommit writes,
// satisfied by *sqlx.DB.
type DB interface {
	Execer
	GetContext(ctx context.Context, dest any, query string, args ...any) error
	SelectContext(ctx context.Context, dest any, query string, args ...any) error
}
