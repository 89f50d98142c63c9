package pricing

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/bucketops/bucketops/internal/estimate"
	"github.com/bucketops/bucketops/internal/trace"
	"github.com/klauspost/compress/gzhttp"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/cloudbilling/v1"
	"google.golang.org/api/option"
)

const (
	DefaultServiceName = "Cloud Storage"

	classADescription = "Class A"
	classBDescription = "Class B"
)

// errStop ends paging early once every price is known.
var errStop = errors.New("stop paging")

// Config configures access to the billing catalog.
type Config struct {
	// Endpoint overrides the catalog base URL, mostly for tests.
	Endpoint string

	// APIKey is sent as the "key" query parameter. The catalog accepts an API key for
	// public SKU listings.
	APIKey string

	// CredentialsFile is a service account or authorized user JSON file.
	CredentialsFile string

	// Anonymous sends requests without credentials.
	Anonymous bool

	UserAgent string

	// ServiceName is the display name of the service whose SKUs are scanned. Defaults to
	// DefaultServiceName.
	ServiceName string

	// CurrencyCode requests prices in a given ISO 4217 currency. Empty means USD.
	CurrencyCode string
}

// Catalog reads storage request prices from the Cloud Billing catalog.
type Catalog struct {
	svc          *cloudbilling.APIService
	serviceName  string
	currencyCode string
}

var _ Fetcher = (*Catalog)(nil)

func NewCatalog(ctx context.Context, cfg Config) (*Catalog, error) {
	client, err := newHTTPClient(ctx, cfg)
	if err != nil {
		return nil, err
	}

	opts := []option.ClientOption{option.WithHTTPClient(client)}
	if cfg.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(cfg.Endpoint))
	}

	svc, err := cloudbilling.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create billing catalog client: %w", err)
	}

	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = DefaultServiceName
	}

	return &Catalog{
		svc:          svc,
		serviceName:  serviceName,
		currencyCode: cfg.CurrencyCode,
	}, nil
}

func newHTTPClient(ctx context.Context, cfg Config) (*http.Client, error) {
	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = "bucketops"
	}

	var base http.RoundTripper = roundTripperFunc(
		func(req *http.Request) (*http.Response, error) {
			req = req.Clone(req.Context())
			req.Header.Set("User-Agent", userAgent)
			if cfg.APIKey != "" {
				q := req.URL.Query()
				q.Set("key", cfg.APIKey)
				req.URL.RawQuery = q.Encode()
			}
			return http.DefaultTransport.RoundTrip(req)
		},
	)

	switch {
	case cfg.CredentialsFile != "":
		data, err := os.ReadFile(cfg.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read credentials file %s: %w", cfg.CredentialsFile, err)
		}

		creds, err := google.CredentialsFromJSON(ctx, data, cloudbilling.CloudBillingReadonlyScope)
		if err != nil {
			return nil, fmt.Errorf("failed to parse credentials file %s: %w", cfg.CredentialsFile, err)
		}

		base = &oauth2.Transport{Source: creds.TokenSource, Base: base}
	case cfg.Anonymous || cfg.APIKey != "":
		log.Debug().Bool("api_key", cfg.APIKey != "").Msg("billing catalog without oauth credentials")
	default:
		creds, err := google.FindDefaultCredentials(ctx, cloudbilling.CloudBillingReadonlyScope)
		if err != nil {
			return nil, fmt.Errorf("failed to find default credentials: %w", err)
		}

		base = &oauth2.Transport{Source: creds.TokenSource, Base: base}
	}

	return &http.Client{Transport: gzhttp.Transport(base)}, nil
}

type roundTripperFunc func(*http.Request) (*http.Response, error)

func (fn roundTripperFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return fn(r)
}

// Prices finds the configured service and scans its SKUs for Class A and Class B request
// prices. Paging stops as soon as both are known. A partial quote is returned alongside
// any error encountered while scanning SKUs.
func (c *Catalog) Prices(ctx context.Context) (Quote, error) {
	ctx, span := trace.Start(ctx, "Catalog.Prices")
	defer span.End()

	serviceID, err := c.findService(ctx)
	if err != nil {
		return nil, trace.NewError(span, "failed to find service %q: %w", c.serviceName, err)
	}

	span.SetAttributes(attribute.String("service", serviceID))

	quote := Quote{}

	call := c.svc.Services.Skus.List(serviceID)
	if c.currencyCode != "" {
		call = call.CurrencyCode(c.currencyCode)
	}

	err = call.Pages(ctx, func(resp *cloudbilling.ListSkusResponse) error {
		for _, sku := range resp.Skus {
			class, ok := skuClass(sku.Description)
			if !ok {
				continue
			}

			if _, seen := quote[class]; seen {
				continue
			}

			price, ok := skuPrice(sku)
			if !ok || price.IsZero() {
				continue
			}

			log.Debug().Str("sku", sku.SkuId).Str("description", sku.Description).Str("class", string(class)).Str("price", price.String()).Msg("found request price")

			quote[class] = price

			if quote.Complete() {
				return errStop
			}
		}
		return nil
	})
	if err != nil && !errors.Is(err, errStop) {
		return quote, trace.NewError(span, "failed to list SKUs for %s: %w", serviceID, err)
	}

	span.SetAttributes(attribute.Int("classes", len(quote)))

	return quote, nil
}

// findService returns the resource name ("services/XXXX") of the service whose display
// name matches.
func (c *Catalog) findService(ctx context.Context) (string, error) {
	var name string

	err := c.svc.Services.List().Pages(ctx, func(resp *cloudbilling.ListServicesResponse) error {
		for _, s := range resp.Services {
			if s.DisplayName == c.serviceName {
				name = s.Name
				return errStop
			}
		}
		return nil
	})
	if err != nil && !errors.Is(err, errStop) {
		return "", err
	}

	if name == "" {
		return "", ErrServiceNotFound
	}

	return name, nil
}

func skuClass(description string) (estimate.Class, bool) {
	switch {
	case strings.Contains(description, classADescription):
		return estimate.ClassA, true
	case strings.Contains(description, classBDescription):
		return estimate.ClassB, true
	default:
		return "", false
	}
}

// skuPrice converts the first tiered rate of a SKU, a price per single operation, into a
// price per OperationsPerUnit operations.
func skuPrice(sku *cloudbilling.Sku) (decimal.Decimal, bool) {
	if len(sku.PricingInfo) == 0 {
		return decimal.Zero, false
	}

	expr := sku.PricingInfo[0].PricingExpression
	if expr == nil || len(expr.TieredRates) == 0 || expr.TieredRates[0].UnitPrice == nil {
		return decimal.Zero, false
	}

	money := expr.TieredRates[0].UnitPrice
	perOperation := decimal.NewFromInt(money.Units).Add(decimal.New(money.Nanos, -9))

	return perOperation.Mul(decimal.NewFromInt(OperationsPerUnit)), true
}
