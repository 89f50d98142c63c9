package main

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"time"

	"github.com/alecthomas/kong"
	kongyaml "github.com/alecthomas/kong-yaml"
	"github.com/bucketops/bucketops/internal/commands"
	"github.com/bucketops/bucketops/internal/console"
	"github.com/bucketops/bucketops/internal/trace"
	"github.com/joho/godotenv"
	"github.com/muesli/termenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var (
	version           = "dev"
	defaultConfigPath = ".bucketops.yaml"

	cli struct {
		Version       kong.VersionFlag
		Debug         bool            `help:"Enable debug mode." default:"false" env:"BUCKETOPS_DEBUG"`
		NoColor       bool            `flag:"no-color" help:"Disable colored output, NO_COLOR is also honoured." env:"BUCKETOPS_NO_COLOR"`
		TraceExporter string          `flag:"trace-exporter" help:"The trace exporter to use. Defaults to 'noop'." default:"noop" enum:"noop,grpc" env:"BUCKETOPS_TRACE_EXPORTER"`
		Config        kong.ConfigFlag `flag:"config" help:"The path to a YAML configuration file holding flag values. ${default_config_path} is read when present." env:"BUCKETOPS_CONFIG"`

		commands.StorageFlags
		commands.BillingFlags

		Estimate commands.EstimateCmd `cmd:"" help:"estimate the storage requests and cost of running a program against a mounted bucket."`
		Cat      commands.CatCmd      `cmd:"" help:"download a blob."`
		Upload   commands.UploadCmd   `cmd:"" help:"upload a file to a blob."`
		Mv       commands.MvCmd       `cmd:"" help:"rename a blob."`
		Ls       commands.LsCmd       `cmd:"" help:"list blobs under a prefix."`
		Table    commands.TableCmd    `cmd:"" help:"read and write tables stored in blobs."`
	}
)

func main() {
	ctx := context.Background()

	// values from .env become defaults for the env bindings below
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatal().Err(err).Msg("failed to load .env file")
	}

	cmd := kong.Parse(&cli,
		kong.Name("bucketops"),
		kong.Description("Blob helpers and a storage request cost estimator."),
		kong.Vars{"version": version, "default_config_path": defaultConfigPath},
		kong.Configuration(kongyaml.Loader, defaultConfigPath),
		kong.BindTo(ctx, (*context.Context)(nil)))

	err := Run(ctx, cmd)
	cmd.FatalIfErrorf(err)
}

func Run(ctx context.Context, cmd *kong.Context) error {
	start := time.Now()

	if cli.Debug {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).Level(zerolog.DebugLevel)
	} else {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).Level(zerolog.ErrorLevel)
	}

	tp, err := trace.NewProvider(ctx, cli.TraceExporter, "github.com/bucketops/bucketops", version)
	if err != nil {
		return err
	}
	defer func() {
		_ = tp.Shutdown(ctx)
	}()

	ctx, span := trace.Start(ctx, "bucketops")
	defer span.End()

	color := !cli.NoColor && !termenv.EnvNoColor()

	printer := console.NewPrinter(os.Stderr, color)

	cmd.BindTo(ctx, (*context.Context)(nil))

	err = cmd.Run(&commands.Globals{
		Debug:   cli.Debug,
		Version: version,
		Printer: printer,
		Out:     console.NewPrinter(os.Stdout, color),
		Stdout:  os.Stdout,
		Storage: cli.StorageFlags,
		Billing: cli.BillingFlags,
	})
	if err != nil {
		span.RecordError(err)
		return err
	}

	log.Debug().Str("command", cmd.Command()).Dur("duration", time.Since(start)).Msg("command completed")

	return nil
}
