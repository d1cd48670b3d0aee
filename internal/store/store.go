package store

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Store is the only component that touches the storage engine.
// It performs no caching and no retries: callers re-fetch for fresh reads
// and every failure surfaces synchronously.
type Store struct {
	db   querier
	pool *pgxpool.Pool // nil inside a transaction
}

func New(pool *pgxpool.Pool) (*Store, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is nil")
	}

	return &Store{db: pool, pool: pool}, nil
}

// Pagination is applied after sorting.
type Pagination struct {
	Offset int
	Limit  int
}

// Kind describes how rows of one table map to the row struct T.
// Columns lists every persisted column in insert order and must contain Key.
type Kind[T any] struct {
	Table   string
	Columns []string
	Key     string
	KeyOf   func(T) any
	Values  func(T) []any // aligned with Columns
}

func (k Kind[T]) table() string {
	return pgx.Identifier{k.Table}.Sanitize()
}

func (k Kind[T]) key() string {
	return pgx.Identifier{k.Key}.Sanitize()
}

func (k Kind[T]) columnList() string {
	sanitized := make([]string, len(k.Columns))
	for i, col := range k.Columns {
		sanitized[i] = pgx.Identifier{col}.Sanitize()
	}
	return strings.Join(sanitized, ", ")
}

func FetchAll[T any](ctx context.Context, s *Store, k Kind[T], orderBy string, ascending bool, page *Pagination) ([]T, error) {
	if !slices.Contains(k.Columns, orderBy) {
		return nil, fmt.Errorf("unknown sort column %q for %s", orderBy, k.Table)
	}

	direction := "ASC"
	if !ascending {
		direction = "DESC"
	}

	sql := fmt.Sprintf("SELECT %s FROM %s ORDER BY %s %s",
		k.columnList(), k.table(), pgx.Identifier{orderBy}.Sanitize(), direction)
	if page != nil {
		sql += fmt.Sprintf(" OFFSET %d LIMIT %d", page.Offset, page.Limit)
	}

	rows, err := s.db.Query(ctx, sql)
	if err != nil {
		return nil, fmt.Errorf("db.Query: %w: %w", ErrIO, err)
	}

	records, err := pgx.CollectRows(rows, pgx.RowToStructByName[T])
	if err != nil {
		return nil, fmt.Errorf("pgx.CollectRows: %w: %w", ErrIO, err)
	}

	return records, nil
}

func FetchOne[T any](ctx context.Context, s *Store, k Kind[T], where string, args ...any) (T, error) {
	var zero T

	sql := fmt.Sprintf("SELECT %s FROM %s WHERE %s", k.columnList(), k.table(), where)

	rows, err := s.db.Query(ctx, sql, args...)
	if err != nil {
		return zero, fmt.Errorf("db.Query: %w: %w", ErrIO, err)
	}

	record, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[T])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return zero, ErrNotFound
		}
		return zero, fmt.Errorf("pgx.CollectOneRow: %w: %w", ErrIO, err)
	}

	return record, nil
}

func Insert[T any](ctx context.Context, s *Store, k Kind[T], record T) error {
	placeholders := make([]string, len(k.Columns))
	for i := range k.Columns {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}

	sql := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		k.table(), k.columnList(), strings.Join(placeholders, ", "))

	if _, err := s.db.Exec(ctx, sql, k.Values(record)...); err != nil {
		return fmt.Errorf("db.Exec: %w: %w", ErrCreationFailed, err)
	}

	return nil
}

// Update rewrites every non-key column of the record in one statement.
func Update[T any](ctx context.Context, s *Store, k Kind[T], record T) error {
	values := k.Values(record)

	var sets []string
	var args []any
	for i, col := range k.Columns {
		if col == k.Key {
			continue
		}
		args = append(args, values[i])
		sets = append(sets, fmt.Sprintf("%s = $%d", pgx.Identifier{col}.Sanitize(), len(args)))
	}
	args = append(args, k.KeyOf(record))

	sql := fmt.Sprintf("UPDATE %s SET %s WHERE %s = $%d",
		k.table(), strings.Join(sets, ", "), k.key(), len(args))

	tag, err := s.db.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("db.Exec: %w: %w", ErrUpdateFailed, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

func DeleteOne[T any](ctx context.Context, s *Store, k Kind[T], record T) error {
	sql := fmt.Sprintf("DELETE FROM %s WHERE %s = $1", k.table(), k.key())

	tag, err := s.db.Exec(ctx, sql, k.KeyOf(record))
	if err != nil {
		return fmt.Errorf("db.Exec: %w: %w", ErrDeleteFailed, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// DeleteAll removes every record of the kind in one statement.
func DeleteAll[T any](ctx context.Context, s *Store, k Kind[T]) error {
	sql := fmt.Sprintf("DELETE FROM %s", k.table())

	if _, err := s.db.Exec(ctx, sql); err != nil {
		return fmt.Errorf("db.Exec: %w: %w", ErrDeleteFailed, err)
	}

	return nil
}
