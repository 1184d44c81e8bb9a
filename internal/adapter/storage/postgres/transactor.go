package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// Transactor implements ports.DBTransactor over the connection pool. Every
// ledger mutation and account registration runs inside a transaction it
// opens: the FOR UPDATE reads, balance writes and ledger appends between
// Begin and Commit land together or not at all.
type Transactor struct {
	pool Pool
}

// NewTransactor creates a new Transactor wrapping the connection pool.
func NewTransactor(pool Pool) *Transactor {
	return &Transactor{pool: pool}
}

// Begin opens the transaction for one unit of work. Callers pair it with a
// deferred Rollback so an early return releases the row locks.
func (t *Transactor) Begin(ctx context.Context) (pgx.Tx, error) {
	return t.pool.Begin(ctx)
}
