package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

const (
	// PriceDecimalPlaces and PriceMaxDigits mirror the NUMERIC(10,2) column.
	PriceDecimalPlaces = 2
	PriceMaxDigits     = 10
)

var (
	ErrPriceNegative  = errors.New("must not be negative")
	ErrPricePrecision = fmt.Errorf("must have at most %d decimal places", PriceDecimalPlaces)
	ErrPriceTooLarge  = fmt.Errorf("must have at most %d digits", PriceMaxDigits)

	maxPrice = decimal.New(1, PriceMaxDigits-PriceDecimalPlaces)
)

// Price is a product price. It is written to JSON as a string with two
// decimals and read from either a JSON string or a JSON number.
type Price struct {
	decimal.Decimal
}

// NewPrice parses s into a Price.
func NewPrice(s string) (Price, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Price{}, fmt.Errorf("parse price %q: %w", s, err)
	}
	return Price{Decimal: d}, nil
}

// MustPrice is NewPrice for constants and tests.
func MustPrice(s string) Price {
	p, err := NewPrice(s)
	if err != nil {
		panic(err)
	}
	return p
}

// Validate checks the price fits a non-negative NUMERIC(10,2).
func (p Price) Validate() error {
	switch {
	case p.IsNegative():
		return ErrPriceNegative
	case !p.Equal(p.Round(PriceDecimalPlaces)):
		return ErrPricePrecision
	case p.GreaterThanOrEqual(maxPrice):
		return ErrPriceTooLarge
	}
	return nil
}

// String renders the price with exactly two decimals.
func (p Price) String() string {
	return p.StringFixed(PriceDecimalPlaces)
}

func (p Price) MarshalJSON() ([]byte, error) {
	return []byte(`"` + p.String() + `"`), nil
}

func (p *Price) UnmarshalJSON(b []byte) error {
	return p.Decimal.UnmarshalJSON(b)
}
