package port

import (
	"context"

	"github.com/nikolayk812/shoplocal/internal/domain"
	"github.com/nikolayk812/shoplocal/internal/pubsub"
)

type SearchHistoryRepository interface {
	// GetRecent never fails: on store errors it returns an empty history.
	// A non-positive limit falls back to the repository default.
	GetRecent(ctx context.Context, limit int) []domain.SearchQueryRecord
	SaveQuery(ctx context.Context, filters domain.ProductFilters) error

	Subscribe(fn func(domain.HistoryChanged)) pubsub.Token
	Unsubscribe(token pubsub.Token)
}
