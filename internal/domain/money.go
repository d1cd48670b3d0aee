package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

type Money struct {
	Amount   decimal.Decimal
	Currency currency.Unit
}

// MoneyFromMinorUnits builds a Money from a persisted amount in
// two-digit minor units (e.g. cents, kopecks).
func MoneyFromMinorUnits(amount int64, code string) (Money, error) {
	unit, err := currency.ParseISO(code)
	if err != nil {
		return Money{}, fmt.Errorf("currency[%s] is not valid: %w", code, err)
	}

	return Money{
		Amount:   decimal.New(amount, -2),
		Currency: unit,
	}, nil
}

func (m Money) MinorUnits() int64 {
	return m.Amount.Shift(2).IntPart()
}

func (m Money) Mul(n int64) Money {
	return Money{
		Amount:   m.Amount.Mul(decimal.NewFromInt(n)),
		Currency: m.Currency,
	}
}

func (m Money) Add(other Money) (Money, error) {
	if m.Currency.String() != other.Currency.String() {
		return Money{}, fmt.Errorf("currency mismatch: %s vs %s", m.Currency, other.Currency)
	}

	return Money{
		Amount:   m.Amount.Add(other.Amount),
		Currency: m.Currency,
	}, nil
}

func (m Money) String() string {
	return fmt.Sprintf("%s %s", m.Amount.StringFixed(2), m.Currency)
}
