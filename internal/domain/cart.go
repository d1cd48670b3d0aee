package domain

import (
	"fmt"
	"time"
)

// CartLine is one product in the cart: its quantity and its display position.
// A line with quantity zero is never persisted, it is deleted instead.
// Positions of live lines always form a dense permutation of 0..N-1.
type CartLine struct {
	ItemID   int64
	Title    string
	Price    Money
	ImageURL string
	Quantity int64
	Position int64

	CreatedAt time.Time
}

func NewCartLine(p Product, quantity, position int64) CartLine {
	return CartLine{
		ItemID:   p.ID,
		Title:    p.Title,
		Price:    p.Price,
		ImageURL: p.FirstImage(),
		Quantity: quantity,
		Position: position,
	}
}

func (l CartLine) Subtotal() Money {
	return l.Price.Mul(l.Quantity)
}

// CartTotal sums line subtotals. All lines must share one currency.
func CartTotal(lines []CartLine) (Money, error) {
	if len(lines) == 0 {
		return Money{}, nil
	}

	total := lines[0].Subtotal()
	for _, line := range lines[1:] {
		sum, err := total.Add(line.Subtotal())
		if err != nil {
			return Money{}, fmt.Errorf("line[%d]: %w", line.ItemID, err)
		}
		total = sum
	}

	return total, nil
}
