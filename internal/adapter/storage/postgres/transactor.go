package postgres

import (
	"context"

	"payment-reconciliation-engine/internal/core/ports"

	"github.com/jackc/pgx/v5"
)

// Transactor implements ports.DBTransactor over the connection pool. The
// wallet ledger uses it to wrap the balance update and the credit record in
// one database transaction.
type Transactor struct {
	pool Pool
}

var _ ports.DBTransactor = (*Transactor)(nil)

// NewTransactor creates a new Transactor wrapping the connection pool.
func NewTransactor(pool Pool) *Transactor {
	return &Transactor{pool: pool}
}

// Begin starts a new database transaction.
func (t *Transactor) Begin(ctx context.Context) (pgx.Tx, error) {
	return t.pool.Begin(ctx)
}
