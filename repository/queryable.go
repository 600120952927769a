package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// queryable abstracts over a connection pool and a transaction so repositories
// work identically inside and outside a unit of work
type queryable interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Sentinel errors surfaced to services and mapped to user-facing messages
var (
	// ErrUserNotFound indicates the account row does not exist
	ErrUserNotFound = errors.New("user not found")

	// ErrInsufficientFunds indicates a conditional debit found less cash than required
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrDebtLimitExceeded indicates a borrow would push debt over the ceiling
	ErrDebtLimitExceeded = errors.New("debt limit exceeded")
)
