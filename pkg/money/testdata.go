package money

import (
	"fmt"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/shopspring/decimal"
)

// TestDataGenerator generates price-cell fixtures using gofakeit.
type TestDataGenerator struct {
	faker *gofakeit.Faker
}

// NewTestDataGeneratorWithSeed creates a generator with a specific seed for reproducibility.
func NewTestDataGeneratorWithSeed(seed int64) *TestDataGenerator {
	return &TestDataGenerator{
		faker: gofakeit.New(seed),
	}
}

// PositivePrice returns a positive price with two decimals and its cell text,
// which uses a thousands separator for amounts of 1000 or more.
func (g *TestDataGenerator) PositivePrice() (decimal.Decimal, string) {
	d := decimal.NewFromFloat(g.faker.Price(0.01, 5000)).Round(2)
	if d.IsZero() {
		d = decimal.New(1, -2)
	}
	whole := d.IntPart()
	cents := d.Sub(decimal.NewFromInt(whole)).Mul(decimal.NewFromInt(100)).IntPart()
	if whole >= 1000 {
		return d, fmt.Sprintf("%d,%03d.%02d", whole/1000, whole%1000, cents)
	}
	return d, fmt.Sprintf("%d.%02d", whole, cents)
}

// NonQuoteCell returns cell text that never parses as a positive price.
func (g *TestDataGenerator) NonQuoteCell() string {
	return g.faker.RandomString([]string{"", " ", "0", "0.00", "-5", "-0.01", "N/A", "n/a", "TBC", "POA", "-"})
}
