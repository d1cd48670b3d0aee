package port

import (
	"context"

	"github.com/nikolayk812/shoplocal/internal/domain"
	"github.com/nikolayk812/shoplocal/internal/pubsub"
)

type CartRepository interface {
	// GetCart never fails: on store errors it returns an empty cart.
	GetCart(ctx context.Context) []domain.CartLine
	AddToCart(ctx context.Context, product domain.Product) error
	RemoveFromCart(ctx context.Context, product domain.Product) error
	MovePosition(ctx context.Context, itemID, position int64) error
	ClearCart(ctx context.Context) error

	Subscribe(fn func(domain.CartEvent)) pubsub.Token
	Unsubscribe(token pubsub.Token)
}
