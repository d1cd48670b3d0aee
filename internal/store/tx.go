package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// InTx runs fn against a transactional view of the store, so multi-row
// mutations commit or roll back as a unit. Nested calls reuse the
// surrounding transaction.
func (s *Store) InTx(ctx context.Context, fn func(s *Store) error) (txErr error) {
	// Already in a transaction (pool is nil), just run against it
	if s.pool == nil {
		return fn(s)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("pool.Begin: %w: %w", ErrIO, err)
	}

	// Ensure proper rollback handling
	defer func() {
		if txErr != nil {
			rollbackErr := tx.Rollback(ctx)
			if rollbackErr != nil && !errors.Is(rollbackErr, pgx.ErrTxClosed) {
				txErr = errors.Join(txErr, fmt.Errorf("tx.Rollback: %w", rollbackErr))
			}
		}
	}()

	if err := fn(&Store{db: tx}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("tx.Commit: %w: %w", ErrIO, err)
	}

	return nil
}
