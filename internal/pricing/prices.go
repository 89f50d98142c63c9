// Package pricing looks up per-class request prices for object storage.
package pricing

import (
	"context"
	"errors"
	"fmt"

	"github.com/bucketops/bucketops/internal/estimate"
	"github.com/bucketops/bucketops/internal/trace"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
)

// OperationsPerUnit is the number of operations a listed price covers.
const OperationsPerUnit = 100_000

// Source says where a PriceTable came from.
type Source string

const (
	SourceCatalog Source = "catalog"
	SourceDefault Source = "default"
)

var (
	// ErrServiceNotFound is returned when the catalog has no service with the configured name.
	ErrServiceNotFound = errors.New("billing service not found")

	// ErrIncomplete is returned when a catalog lookup did not price every billable class.
	ErrIncomplete = errors.New("catalog prices incomplete")
)

// PriceTable holds the price of OperationsPerUnit operations for each billable class.
type PriceTable struct {
	ClassA decimal.Decimal
	ClassB decimal.Decimal
	Source Source
}

// DefaultPrices returns the fallback prices: $0.05 per 100,000 Class A operations and $0.004
// per 100,000 Class B operations.
func DefaultPrices() PriceTable {
	return PriceTable{
		ClassA: decimal.RequireFromString("0.05"),
		ClassB: decimal.RequireFromString("0.004"),
		Source: SourceDefault,
	}
}

// Price returns the price for class. Free and unknown classes cost nothing.
func (p PriceTable) Price(class estimate.Class) decimal.Decimal {
	switch class {
	case estimate.ClassA:
		return p.ClassA
	case estimate.ClassB:
		return p.ClassB
	default:
		return decimal.Zero
	}
}

// Quote is a possibly partial set of prices per class.
type Quote map[estimate.Class]decimal.Decimal

// Complete reports whether every billable class has a price.
func (q Quote) Complete() bool {
	_, a := q[estimate.ClassA]
	_, b := q[estimate.ClassB]
	return a && b
}

// Fetcher retrieves prices from somewhere, typically the billing catalog.
type Fetcher interface {
	Prices(ctx context.Context) (Quote, error)
}

// Resolve asks fetcher for prices and falls back to DefaultPrices when it fails or returns
// a partial quote. A nil fetcher always resolves to the defaults.
func Resolve(ctx context.Context, fetcher Fetcher) PriceTable {
	ctx, span := trace.Start(ctx, "pricing.Resolve")
	defer span.End()

	if fetcher == nil {
		span.SetAttributes(attribute.String("source", string(SourceDefault)))
		return DefaultPrices()
	}

	quote, err := fetcher.Prices(ctx)
	if err == nil && !quote.Complete() {
		err = fmt.Errorf("%w: got %d of 2 classes", ErrIncomplete, len(quote))
	}
	if err != nil {
		log.Warn().Err(err).Msg("failed to get prices from the billing catalog, using default prices")
		span.SetAttributes(attribute.String("source", string(SourceDefault)))
		return DefaultPrices()
	}

	span.SetAttributes(attribute.String("source", string(SourceCatalog)))

	return PriceTable{
		ClassA: quote[estimate.ClassA],
		ClassB: quote[estimate.ClassB],
		Source: SourceCatalog,
	}
}
