package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/bucketops/bucketops"
	"github.com/bucketops/bucketops/internal/console"
	"github.com/bucketops/bucketops/internal/pricing"
	"github.com/bucketops/bucketops/internal/store"
	"github.com/rs/zerolog/log"
)

const (
	StorageGCS  = "gcs"
	StorageFile = "file"
	StorageURL  = "url"
)

type StorageFlags struct {
	Storage           string `flag:"storage" help:"Storage backend: gcs, file (a directory per bucket) or url (any gocloud bucket URL)." enum:"gcs,file,url" default:"gcs" env:"BUCKETOPS_STORAGE"`
	FileRoot          string `flag:"file-root" help:"Directory holding one sub directory per bucket for the file backend." env:"BUCKETOPS_FILE_ROOT"`
	BucketURLTemplate string `flag:"bucket-url-template" help:"Bucket URL for the url backend, {bucket} is replaced by the bucket name, e.g. s3://{bucket}." env:"BUCKETOPS_BUCKET_URL_TEMPLATE"`
	Region            string `flag:"region" help:"Region passed to the url backend." env:"BUCKETOPS_REGION"`
	Endpoint          string `flag:"endpoint" help:"Endpoint passed to the url backend." env:"BUCKETOPS_ENDPOINT"`
	PathStyle         bool   `flag:"path-style" help:"Use path style addressing with the url backend." env:"BUCKETOPS_PATH_STYLE"`
	Anonymous         bool   `flag:"anonymous" help:"Access GCS and the billing catalog without credentials." env:"BUCKETOPS_ANONYMOUS"`
	CredentialsFile   string `flag:"credentials-file" help:"Service account JSON file for GCS and the billing catalog." env:"GOOGLE_APPLICATION_CREDENTIALS"`
}

type BillingFlags struct {
	BillingAPIKey   string `flag:"billing-api-key" help:"API key for the Cloud Billing catalog." env:"BUCKETOPS_BILLING_API_KEY"`
	BillingEndpoint string `flag:"billing-endpoint" help:"Override the Cloud Billing catalog endpoint." env:"BUCKETOPS_BILLING_ENDPOINT"`
}

type Globals struct {
	Debug   bool
	Version string

	// Printer writes progress and warnings, usually to stderr.
	Printer *console.Printer

	// Out writes tables and reports, usually to stdout.
	Out *console.Printer

	// Stdout receives raw blob content.
	Stdout io.Writer

	Storage StorageFlags
	Billing BillingFlags
}

// Opener builds the bucket opener selected by the storage flags.
func (f StorageFlags) Opener(ctx context.Context) (store.Opener, error) {
	log.Debug().Str("storage", f.Storage).Msg("selecting storage backend")

	switch f.Storage {
	case StorageGCS, "":
		return store.NewGCSOpener(ctx, store.GCSCredentials{
			Anonymous:       f.Anonymous,
			CredentialsFile: f.CredentialsFile,
		})
	case StorageFile:
		if f.FileRoot == "" {
			return nil, fmt.Errorf("--file-root is required with --storage=file")
		}
		return &store.FileOpener{Root: f.FileRoot}, nil
	case StorageURL:
		if f.BucketURLTemplate == "" {
			return nil, fmt.Errorf("--bucket-url-template is required with --storage=url")
		}
		return &store.URLOpener{
			Template: f.BucketURLTemplate,
			Query: store.URLQuery{
				Region:       f.Region,
				Endpoint:     f.Endpoint,
				UsePathStyle: f.PathStyle,
			},
		}, nil
	default:
		return nil, fmt.Errorf("unsupported storage: %s", f.Storage)
	}
}

// Client returns a bucketops client for the selected storage backend.
func (g *Globals) Client(ctx context.Context) (*bucketops.Client, error) {
	opener, err := g.Storage.Opener(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create bucket opener: %w", err)
	}

	return bucketops.NewClient(bucketops.Config{Opener: opener})
}

// PricingConfig returns the billing catalog configuration for the given currency.
func (g *Globals) PricingConfig(currency string) pricing.Config {
	return pricing.Config{
		Endpoint:        g.Billing.BillingEndpoint,
		APIKey:          g.Billing.BillingAPIKey,
		CredentialsFile: g.Storage.CredentialsFile,
		Anonymous:       g.Storage.Anonymous,
		UserAgent:       fmt.Sprint("bucketops/", g.Version),
		CurrencyCode:    currency,
	}
}
