// Package repository implements the ports persistence interfaces against
// Postgres using pgx. It contains no matching or aggregation logic: every
// method is a direct SQL translation of its ports interface.
package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"portal_final_backend/internal/contacts/exceptions"
	"portal_final_backend/internal/contacts/ports"
)

// Store is the pgxpool-backed implementation of ports.Store.
type Store struct {
	pool *pgxpool.Pool
}

// New returns a Store backed by pool.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Begin opens a new transaction.
func (s *Store) Begin(ctx context.Context) (ports.Tx, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("repository: begin transaction: %w", err)
	}
	return &txWrapper{tx: tx}, nil
}

// txWrapper adapts a pgx.Tx to ports.Tx, constructing each sub-store lazily
// around the same transaction.
type txWrapper struct {
	tx pgx.Tx
}

func (w *txWrapper) Commit(ctx context.Context) error   { return w.tx.Commit(ctx) }
func (w *txWrapper) Rollback(ctx context.Context) error { return w.tx.Rollback(ctx) }

// YieldIfContended is a no-op under Postgres: pgx holds no process-wide
// write lock for a single transaction to release, so there is nothing to
// yield. The hook exists so the scheduler's loop shape stays the same
// across backends.
func (w *txWrapper) YieldIfContended(ctx context.Context) error { return nil }

func (w *txWrapper) RawContacts() ports.RawContacts { return &rawContactsRepo{tx: w.tx} }
func (w *txWrapper) DataRows() ports.DataRows       { return &dataRowsRepo{tx: w.tx} }
func (w *txWrapper) Aggregates() ports.Aggregates   { return &aggregatesRepo{tx: w.tx} }
func (w *txWrapper) NameLookup() ports.NameLookup   { return &nameLookupRepo{tx: w.tx} }
func (w *txWrapper) Exceptions() exceptions.Store   { return &exceptionsRepo{tx: w.tx} }
func (w *txWrapper) PhoneIndex() ports.PhoneIndex   { return &phoneIndexRepo{tx: w.tx} }
func (w *txWrapper) EmailIndex() ports.EmailIndex   { return &emailIndexRepo{tx: w.tx} }
