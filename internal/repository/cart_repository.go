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

type cartLineRow struct {
	ItemID        int64     `db:"item_id"`
	Title         string    `db:"title"`
	PriceAmount   int64     `db:"price_amount"`
	PriceCurrency string    `db:"price_currency"`
	ImageURL      string    `db:"image_url"`
	Quantity      int64     `db:"quantity"`
	Position      int64     `db:"position"`
	CreatedAt     time.Time `db:"created_at"`
}

var cartLines = store.Kind[cartLineRow]{
	Table:   "cart_lines",
	Columns: []string{"item_id", "title", "price_amount", "price_currency", "image_url", "quantity", "position", "created_at"},
	Key:     "item_id",
	KeyOf:   func(r cartLineRow) any { return r.ItemID },
	Values: func(r cartLineRow) []any {
		return []any{r.ItemID, r.Title, r.PriceAmount, r.PriceCurrency, r.ImageURL, r.Quantity, r.Position, r.CreatedAt}
	},
}

type cartRepository struct {
	store *store.Store
	hub   *pubsub.Hub[domain.CartEvent]
	log   zerolog.Logger

	// serializes mutations: a reindex never races another reorder or delete
	mu sync.Mutex
}

func NewCart(s *store.Store, log zerolog.Logger) (port.CartRepository, error) {
	if s == nil {
		return nil, fmt.Errorf("store is nil")
	}

	return &cartRepository{
		store: s,
		hub:   pubsub.NewHub[domain.CartEvent](),
		log:   log.With().Str("component", "cart_repository").Logger(),
	}, nil
}

func (r *cartRepository) GetCart(ctx context.Context) []domain.CartLine {
	rows, err := store.FetchAll(ctx, r.store, cartLines, "position", true, nil)
	if err != nil {
		r.log.Error().Err(err).Msg("fetch cart")
		return nil
	}

	lines := make([]domain.CartLine, 0, len(rows))
	for _, row := range rows {
		line, err := mapRowToLine(row)
		if err != nil {
			r.log.Error().Err(err).Int64("item_id", row.ItemID).Msg("map cart line")
			return nil
		}
		lines = append(lines, line)
	}

	return lines
}

// AddToCart creates a line with quantity 1 at the next free position, or
// increments the existing line. Subscribers hear about it only after the
// write committed.
func (r *cartRepository) AddToCart(ctx context.Context, product domain.Product) error {
	quantity, err := r.add(ctx, product)
	if err != nil {
		return err
	}

	r.hub.Publish(domain.ItemAdded{Product: product, Quantity: quantity})
	return nil
}

func (r *cartRepository) add(ctx context.Context, product domain.Product) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	row, err := r.rowByItemID(ctx, product.ID)
	if errors.Is(err, store.ErrNotFound) {
		position, err := r.nextPosition(ctx)
		if err != nil {
			return 0, fmt.Errorf("nextPosition: %w", err)
		}

		row = newLineRow(product, position)
		if err := store.Insert(ctx, r.store, cartLines, row); err != nil {
			return 0, fmt.Errorf("store.Insert: %w", err)
		}
		return row.Quantity, nil
	}
	if err != nil {
		return 0, fmt.Errorf("rowByItemID: %w", err)
	}

	row.Quantity++
	if err := store.Update(ctx, r.store, cartLines, row); err != nil {
		return 0, fmt.Errorf("store.Update: %w", err)
	}

	return row.Quantity, nil
}

// RemoveFromCart decrements the line's quantity. The last unit deletes the
// line and closes the position gap behind it. The emitted event carries the
// resulting quantity, 0 signaling deletion.
func (r *cartRepository) RemoveFromCart(ctx context.Context, product domain.Product) error {
	quantity, err := r.remove(ctx, product)
	if err != nil {
		return err
	}

	r.hub.Publish(domain.ItemRemoved{Product: product, Quantity: quantity})
	return nil
}

func (r *cartRepository) remove(ctx context.Context, product domain.Product) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	row, err := r.rowByItemID(ctx, product.ID)
	if err != nil {
		return 0, fmt.Errorf("rowByItemID: %w", err)
	}

	if row.Quantity > 1 {
		row.Quantity--
		if err := store.Update(ctx, r.store, cartLines, row); err != nil {
			return 0, fmt.Errorf("store.Update: %w", err)
		}
		return row.Quantity, nil
	}

	err = r.store.InTx(ctx, func(s *store.Store) error {
		if err := store.DeleteOne(ctx, s, cartLines, row); err != nil {
			return fmt.Errorf("store.DeleteOne: %w", err)
		}
		if err := closeGap(ctx, s, row.Position); err != nil {
			return fmt.Errorf("closeGap: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	return 0, nil
}

// closeGap keeps positions dense after a deletion: every line behind the
// removed one moves up a slot.
func closeGap(ctx context.Context, s *store.Store, removed int64) error {
	rows, err := store.FetchAll(ctx, s, cartLines, "position", true, nil)
	if err != nil {
		return fmt.Errorf("store.FetchAll: %w", err)
	}

	for _, row := range rows {
		if row.Position <= removed {
			continue
		}
		row.Position--
		if err := store.Update(ctx, s, cartLines, row); err != nil {
			return fmt.Errorf("store.Update: %w", err)
		}
	}

	return nil
}

// MovePosition reassigns the line to the destination and shifts every line
// strictly between the old and new position one slot the opposite way.
// Moving a line onto its current position changes nothing and broadcasts
// nothing.
func (r *cartRepository) MovePosition(ctx context.Context, itemID, position int64) error {
	from, moved, err := r.move(ctx, itemID, position)
	if err != nil {
		return err
	}
	if !moved {
		return nil
	}

	r.hub.Publish(domain.CartMoved{ItemID: itemID, From: from, To: position})
	return nil
}

func (r *cartRepository) move(ctx context.Context, itemID, destination int64) (int64, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rows, err := store.FetchAll(ctx, r.store, cartLines, "position", true, nil)
	if err != nil {
		return 0, false, fmt.Errorf("store.FetchAll: %w", err)
	}

	index := -1
	for i, row := range rows {
		if row.ItemID == itemID {
			index = i
			break
		}
	}
	if index < 0 {
		return 0, false, fmt.Errorf("line[%d]: %w", itemID, store.ErrNotFound)
	}

	if destination < 0 || destination >= int64(len(rows)) {
		return 0, false, fmt.Errorf("destination %d out of range [0, %d)", destination, len(rows))
	}

	old := rows[index].Position
	if old == destination {
		return old, false, nil
	}

	err = r.store.InTx(ctx, func(s *store.Store) error {
		for i, row := range rows {
			switch {
			case i == index:
				row.Position = destination
			case old < destination && row.Position > old && row.Position <= destination:
				row.Position--
			case old > destination && row.Position >= destination && row.Position < old:
				row.Position++
			default:
				continue
			}
			if err := store.Update(ctx, s, cartLines, row); err != nil {
				return fmt.Errorf("store.Update: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, false, err
	}

	return old, true, nil
}

func (r *cartRepository) ClearCart(ctx context.Context) error {
	r.mu.Lock()
	err := store.DeleteAll(ctx, r.store, cartLines)
	r.mu.Unlock()
	if err != nil {
		return fmt.Errorf("store.DeleteAll: %w", err)
	}

	r.hub.Publish(domain.CartCleared{})
	return nil
}

func (r *cartRepository) Subscribe(fn func(domain.CartEvent)) pubsub.Token {
	return r.hub.Subscribe(fn)
}

func (r *cartRepository) Unsubscribe(token pubsub.Token) {
	r.hub.Unsubscribe(token)
}

func (r *cartRepository) rowByItemID(ctx context.Context, itemID int64) (cartLineRow, error) {
	return store.FetchOne(ctx, r.store, cartLines, "item_id = $1", itemID)
}

// nextPosition is max(position)+1, or 0 for an empty cart.
func (r *cartRepository) nextPosition(ctx context.Context) (int64, error) {
	rows, err := store.FetchAll(ctx, r.store, cartLines, "position", false, &store.Pagination{Limit: 1})
	if err != nil {
		return 0, fmt.Errorf("store.FetchAll: %w", err)
	}
	if len(rows) == 0 {
		return 0, nil
	}

	return rows[0].Position + 1, nil
}

func newLineRow(p domain.Product, position int64) cartLineRow {
	return cartLineRow{
		ItemID:        p.ID,
		Title:         p.Title,
		PriceAmount:   p.Price.MinorUnits(),
		PriceCurrency: p.Price.Currency.String(),
		ImageURL:      p.FirstImage(),
		Quantity:      1,
		Position:      position,
		CreatedAt:     time.Now(),
	}
}

func mapRowToLine(row cartLineRow) (domain.CartLine, error) {
	price, err := domain.MoneyFromMinorUnits(row.PriceAmount, row.PriceCurrency)
	if err != nil {
		return domain.CartLine{}, fmt.Errorf("domain.MoneyFromMinorUnits: %w", err)
	}

	return domain.CartLine{
		ItemID:    row.ItemID,
		Title:     row.Title,
		Price:     price,
		ImageURL:  row.ImageURL,
		Quantity:  row.Quantity,
		Position:  row.Position,
		CreatedAt: row.CreatedAt,
	}, nil
}
