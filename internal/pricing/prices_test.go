package pricing

import (
	"context"
	"errors"
	"testing"

	"github.com/bucketops/bucketops/internal/estimate"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type stubFetcher struct {
	quote Quote
	err   error
}

func (s stubFetcher) Prices(ctx context.Context) (Quote, error) {
	return s.quote, s.err
}

func TestDefaultPrices(t *testing.T) {
	assert := require.New(t)

	p := DefaultPrices()
	assert.Equal("0.05", p.ClassA.String())
	assert.Equal("0.004", p.ClassB.String())
	assert.Equal(SourceDefault, p.Source)
}

func TestResolve(t *testing.T) {
	full := Quote{
		estimate.ClassA: decimal.RequireFromString("0.065"),
		estimate.ClassB: decimal.RequireFromString("0.005"),
	}

	tests := []struct {
		name    string
		fetcher Fetcher
		classA  string
		classB  string
		source  Source
	}{
		{
			name:    "complete quote",
			fetcher: stubFetcher{quote: full},
			classA:  "0.065",
			classB:  "0.005",
			source:  SourceCatalog,
		},
		{
			name:    "partial quote falls back entirely",
			fetcher: stubFetcher{quote: Quote{estimate.ClassA: decimal.RequireFromString("0.065")}},
			classA:  "0.05",
			classB:  "0.004",
			source:  SourceDefault,
		},
		{
			name:    "empty quote",
			fetcher: stubFetcher{quote: Quote{}},
			classA:  "0.05",
			classB:  "0.004",
			source:  SourceDefault,
		},
		{
			name:    "error with a complete quote",
			fetcher: stubFetcher{quote: full, err: errors.New("boom")},
			classA:  "0.05",
			classB:  "0.004",
			source:  SourceDefault,
		},
		{
			name:    "service not found",
			fetcher: stubFetcher{err: ErrServiceNotFound},
			classA:  "0.05",
			classB:  "0.004",
			source:  SourceDefault,
		},
		{
			name:   "nil fetcher",
			classA: "0.05",
			classB: "0.004",
			source: SourceDefault,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert := require.New(t)

			p := Resolve(context.Background(), tt.fetcher)
			assert.Equal(tt.classA, p.ClassA.String())
			assert.Equal(tt.classB, p.ClassB.String())
			assert.Equal(tt.source, p.Source)
		})
	}
}

func TestPriceTablePrice(t *testing.T) {
	assert := require.New(t)

	p := DefaultPrices()
	assert.True(p.Price(estimate.ClassA).Equal(p.ClassA))
	assert.True(p.Price(estimate.ClassB).Equal(p.ClassB))
	assert.True(p.Price(estimate.Free).IsZero())
}
