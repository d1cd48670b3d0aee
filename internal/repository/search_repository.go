package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/nikolayk812/shoplocal/internal/domain"
	"github.com/nikolayk812/shoplocal/internal/port"
	"github.com/nikolayk812/shoplocal/internal/pubsub"
	"github.com/nikolayk812/shoplocal/internal/store"
)

// DefaultRecentLimit bounds GetRecent when the caller passes no limit.
const DefaultRecentLimit = 5

type searchQueryRow struct {
	QueryHash   int64     `db:"query_hash"`
	SearchQuery string    `db:"search_query"`
	CategoryID  int64     `db:"category_id"`
	TargetPrice int64     `db:"target_price"`
	MinPrice    int64     `db:"min_price"`
	MaxPrice    int64     `db:"max_price"`
	LastAccess  time.Time `db:"last_access"`
}

var searchQueries = store.Kind[searchQueryRow]{
	Table:   "search_queries",
	Columns: []string{"query_hash", "search_query", "category_id", "target_price", "min_price", "max_price", "last_access"},
	Key:     "query_hash",
	KeyOf:   func(r searchQueryRow) any { return r.QueryHash },
	Values: func(r searchQueryRow) []any {
		return []any{r.QueryHash, r.SearchQuery, r.CategoryID, r.TargetPrice, r.MinPrice, r.MaxPrice, r.LastAccess}
	},
}

type searchRepository struct {
	store *store.Store
	hub   *pubsub.Hub[domain.HistoryChanged]
	log   zerolog.Logger

	mu sync.Mutex
}

func NewSearchHistory(s *store.Store, log zerolog.Logger) (port.SearchHistoryRepository, error) {
	if s == nil {
		return nil, fmt.Errorf("store is nil")
	}

	return &searchRepository{
		store: s,
		hub:   pubsub.NewHub[domain.HistoryChanged](),
		log:   log.With().Str("component", "search_repository").Logger(),
	}, nil
}

func (r *searchRepository) GetRecent(ctx context.Context, limit int) []domain.SearchQueryRecord {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}

	rows, err := store.FetchAll(ctx, r.store, searchQueries, "last_access", false, &store.Pagination{Limit: limit})
	if err != nil {
		r.log.Error().Err(err).Msg("fetch recent queries")
		return nil
	}

	records := make([]domain.SearchQueryRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, mapRowToRecord(row))
	}

	return records
}

// SaveQuery records the filter set, deduplicated by its content hash:
// a repeated search only bumps the existing record's last access.
// Text-less filters are not recorded at all and broadcast nothing.
func (r *searchRepository) SaveQuery(ctx context.Context, filters domain.ProductFilters) error {
	if !filters.HasText() {
		return nil
	}

	if err := filters.Validate(); err != nil {
		return fmt.Errorf("filters.Validate: %w", err)
	}

	record, err := r.save(ctx, filters)
	if err != nil {
		return err
	}

	r.hub.Publish(domain.HistoryChanged{Query: record})
	return nil
}

func (r *searchRepository) save(ctx context.Context, filters domain.ProductFilters) (domain.SearchQueryRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	hash := filters.Hash()
	now := time.Now()

	row, err := store.FetchOne(ctx, r.store, searchQueries, "query_hash = $1", hash)
	if errors.Is(err, store.ErrNotFound) {
		row = newQueryRow(filters, hash, now)
		if err := store.Insert(ctx, r.store, searchQueries, row); err != nil {
			return domain.SearchQueryRecord{}, fmt.Errorf("store.Insert: %w", err)
		}
		return mapRowToRecord(row), nil
	}
	if err != nil {
		return domain.SearchQueryRecord{}, fmt.Errorf("store.FetchOne: %w", err)
	}

	// Same search again: only the access time moves
	row.LastAccess = now
	if err := store.Update(ctx, r.store, searchQueries, row); err != nil {
		return domain.SearchQueryRecord{}, fmt.Errorf("store.Update: %w", err)
	}

	return mapRowToRecord(row), nil
}

func (r *searchRepository) Subscribe(fn func(domain.HistoryChanged)) pubsub.Token {
	return r.hub.Subscribe(fn)
}

func (r *searchRepository) Unsubscribe(token pubsub.Token) {
	r.hub.Unsubscribe(token)
}

func newQueryRow(f domain.ProductFilters, hash int64, at time.Time) searchQueryRow {
	return searchQueryRow{
		QueryHash:   hash,
		SearchQuery: f.Title,
		CategoryID:  f.CategoryID,
		TargetPrice: f.TargetPrice,
		MinPrice:    f.MinPrice,
		MaxPrice:    f.MaxPrice,
		LastAccess:  at,
	}
}

func mapRowToRecord(row searchQueryRow) domain.SearchQueryRecord {
	return domain.SearchQueryRecord{
		Query:       row.SearchQuery,
		CategoryID:  row.CategoryID,
		TargetPrice: row.TargetPrice,
		MinPrice:    row.MinPrice,
		MaxPrice:    row.MaxPrice,
		LastAccess:  row.LastAccess,
	}
}
