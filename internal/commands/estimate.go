package commands

import (
	"context"
	"errors"

	"github.com/bucketops/bucketops"
	"github.com/bucketops/bucketops/internal/report"
	"github.com/bucketops/bucketops/internal/trace"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/attribute"
)

type EstimateCmd struct {
	Files    []string `arg:"" help:"Program files to estimate: Python or shell scripts, or executables."`
	Offline  bool     `flag:"offline" help:"Use default prices instead of the billing catalog." env:"BUCKETOPS_OFFLINE"`
	Currency string   `flag:"currency" help:"ISO 4217 currency code for catalog prices." env:"BUCKETOPS_CURRENCY"`
	Rules    string   `flag:"rules" help:"JSON file replacing or adding counting rules per file kind." type:"existingfile" env:"BUCKETOPS_RULES"`
}

func (cmd *EstimateCmd) Run(ctx context.Context, globals *Globals) error {
	ctx, span := trace.Start(ctx, "EstimateCmdRun")
	defer span.End()

	log.Info().Str("version", globals.Version).Msg("Running EstimateCmd")

	span.SetAttributes(
		attribute.StringSlice("files", cmd.Files),
		attribute.Bool("offline", cmd.Offline),
	)

	estimator, err := bucketops.NewEstimator(ctx, bucketops.EstimatorConfig{
		RulesFile: cmd.Rules,
		Offline:   cmd.Offline,
		Pricing:   globals.PricingConfig(cmd.Currency),
	})
	if err != nil {
		return trace.NewError(span, "failed to create estimator: %w", err)
	}

	for _, file := range cmd.Files {
		est, err := estimator.EstimateFile(ctx, file)
		if errors.Is(err, bucketops.ErrUnsupportedType) {
			globals.Printer.Warn("⚠️", "Skipping %s: %v", file, err)
			continue
		}
		if err != nil {
			return trace.NewError(span, "failed to estimate %s: %w", file, err)
		}

		if err := report.Render(globals.Out, est.Result, est.Report); err != nil {
			return trace.NewError(span, "failed to write report: %w", err)
		}
	}

	return nil
}
