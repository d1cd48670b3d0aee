package domain_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/currency"

	"github.com/nikolayk812/shoplocal/internal/domain"
)

func money(t *testing.T, amount string, code string) domain.Money {
	t.Helper()

	value, err := decimal.NewFromString(amount)
	require.NoError(t, err)

	unit, err := currency.ParseISO(code)
	require.NoError(t, err)

	return domain.Money{Amount: value, Currency: unit}
}

func TestMoneyMinorUnits(t *testing.T) {
	price := money(t, "12.34", "EUR")
	assert.Equal(t, int64(1234), price.MinorUnits())

	restored, err := domain.MoneyFromMinorUnits(1234, "EUR")
	require.NoError(t, err)
	assert.True(t, price.Amount.Equal(restored.Amount))
	assert.Equal(t, "EUR", restored.Currency.String())

	_, err = domain.MoneyFromMinorUnits(1234, "not-a-currency")
	require.ErrorContains(t, err, "not valid")
}

func TestMoneyAdd(t *testing.T) {
	sum, err := money(t, "1.50", "EUR").Add(money(t, "2.25", "EUR"))
	require.NoError(t, err)
	assert.True(t, sum.Amount.Equal(decimal.RequireFromString("3.75")))

	_, err = money(t, "1.50", "EUR").Add(money(t, "1.50", "USD"))
	require.ErrorContains(t, err, "currency mismatch")
}

func TestCartLineSubtotal(t *testing.T) {
	line := domain.CartLine{
		Price:    money(t, "12.50", "EUR"),
		Quantity: 3,
	}

	assert.True(t, line.Subtotal().Amount.Equal(decimal.RequireFromString("37.50")))
}

func TestCartTotal(t *testing.T) {
	t.Run("empty cart", func(t *testing.T) {
		total, err := domain.CartTotal(nil)
		require.NoError(t, err)
		assert.True(t, total.Amount.IsZero())
	})

	t.Run("single currency", func(t *testing.T) {
		lines := []domain.CartLine{
			{Price: money(t, "10.00", "EUR"), Quantity: 2},
			{Price: money(t, "5.50", "EUR"), Quantity: 1},
		}

		total, err := domain.CartTotal(lines)
		require.NoError(t, err)
		assert.True(t, total.Amount.Equal(decimal.RequireFromString("25.50")))
	})

	t.Run("mixed currencies", func(t *testing.T) {
		lines := []domain.CartLine{
			{Price: money(t, "10.00", "EUR"), Quantity: 1},
			{Price: money(t, "10.00", "USD"), Quantity: 1},
		}

		_, err := domain.CartTotal(lines)
		require.ErrorContains(t, err, "currency mismatch")
	})
}

func TestNewCartLine(t *testing.T) {
	product := domain.Product{
		ID:     42,
		Title:  "Wooden chair",
		Price:  money(t, "49.90", "EUR"),
		Images: []string{"https://example.com/chair.png", "https://example.com/chair2.png"},
	}

	line := domain.NewCartLine(product, 1, 0)
	assert.Equal(t, product.ID, line.ItemID)
	assert.Equal(t, product.Title, line.Title)
	assert.Equal(t, "https://example.com/chair.png", line.ImageURL)
	assert.Equal(t, int64(1), line.Quantity)
	assert.Equal(t, int64(0), line.Position)

	bare := domain.Product{ID: 7}
	assert.Empty(t, domain.NewCartLine(bare, 1, 0).ImageURL)
}
