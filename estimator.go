package bucketops

import (
	"context"
	"sync"

	"github.com/bucketops/bucketops/configuration"
	"github.com/bucketops/bucketops/internal/estimate"
	"github.com/bucketops/bucketops/internal/pricing"
	"github.com/bucketops/bucketops/internal/report"
	"github.com/bucketops/bucketops/internal/trace"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/attribute"
)

// ErrUnsupportedType is returned by EstimateFile for files that are not a script, a shell
// script or an executable.
var ErrUnsupportedType = estimate.ErrUnsupportedType

// EstimatorConfig holds the configuration for creating an Estimator.
type EstimatorConfig struct {
	// RulesFile is an optional JSON file whose categories replace or extend the built-in
	// counting rules.
	RulesFile string

	// Offline skips the billing catalog and prices with the defaults.
	Offline bool

	// Pricing configures the billing catalog client. Ignored when Offline or Fetcher is set.
	Pricing pricing.Config

	// Fetcher replaces the billing catalog as the source of prices.
	Fetcher pricing.Fetcher
}

// Estimator estimates and prices the storage requests of local program files. Prices are
// looked up once, on the first estimate.
type Estimator struct {
	registry *estimate.Registry
	fetcher  pricing.Fetcher

	pricesOnce sync.Once
	prices     pricing.PriceTable
}

// Estimate is the counted operations for a file and what they cost.
type Estimate struct {
	*estimate.Result
	Report report.Report
}

// NewEstimator loads the counting rules and sets up the price source. A billing catalog that
// cannot be set up is logged and replaced by the default prices.
func NewEstimator(ctx context.Context, cfg EstimatorConfig) (*Estimator, error) {
	registry, err := configuration.LoadRegistryWithOverrides(cfg.RulesFile)
	if err != nil {
		return nil, err
	}

	fetcher := cfg.Fetcher

	if fetcher == nil && !cfg.Offline {
		catalog, err := pricing.NewCatalog(ctx, cfg.Pricing)
		if err != nil {
			log.Warn().Err(err).Msg("billing catalog unavailable, using default prices")
		} else {
			fetcher = catalog
		}
	}

	return &Estimator{registry: registry, fetcher: fetcher}, nil
}

// Prices returns the price table, querying the price source on the first call.
func (e *Estimator) Prices(ctx context.Context) pricing.PriceTable {
	e.pricesOnce.Do(func() {
		e.prices = pricing.Resolve(ctx, e.fetcher)
	})
	return e.prices
}

// Kinds returns the file kinds the estimator has counters for.
func (e *Estimator) Kinds() []estimate.Kind {
	return e.registry.Kinds()
}

// EstimateFile classifies, counts and prices the file at path. Files of an unknown kind
// return an error wrapping ErrUnsupportedType.
func (e *Estimator) EstimateFile(ctx context.Context, path string) (*Estimate, error) {
	ctx, span := trace.Start(ctx, "Estimator.EstimateFile")
	defer span.End()

	result, err := e.registry.EstimateFile(ctx, path)
	if err != nil {
		return nil, trace.NewError(span, "%w", err)
	}

	r := report.Compute(result.Operations, e.Prices(ctx))

	span.SetAttributes(
		attribute.String("kind", string(result.Kind)),
		attribute.String("total_cost", r.TotalCost.String()),
		attribute.String("price_source", string(r.Prices.Source)),
	)

	return &Estimate{Result: result, Report: r}, nil
}
