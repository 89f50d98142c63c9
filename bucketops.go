// Package bucketops provides helpers around an object-storage bucket and an estimator for
// the storage requests a program would issue through a filesystem gateway.
//
// The blob helpers open buckets through a store.Opener, so credentials and the backend are
// chosen by the caller:
//
//	opener, err := store.NewGCSOpener(ctx, store.GCSCredentials{Anonymous: true})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	client, err := bucketops.NewClient(bucketops.Config{Opener: opener})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	buf := store.NewBuffer(nil)
//	_, err = client.DownloadToStream(ctx, "my-bucket", "data/report.csv", buf)
//
//	tbl, err := client.TableFromBucket(ctx, bucketops.Location{FullPath: "gs://my-bucket/data/report.csv"}, table.Options{})
//
// The estimator classifies a local file, counts its filesystem calls and prices them:
//
//	estimator, err := bucketops.NewEstimator(ctx, bucketops.EstimatorConfig{Offline: true})
//	result, err := estimator.EstimateFile(ctx, "job.py")
//	fmt.Println(result.Report.TotalCost.StringFixed(6))
package bucketops

import (
	"context"
	"errors"
	"fmt"

	"github.com/bucketops/bucketops/internal/store"
)

// Sentinel errors for common scenarios
var (
	// ErrInvalidInput is returned when a bucket, path or location is missing or malformed.
	// It is always returned before any request is made.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidConfiguration is returned when a client or estimator is created with an
	// unusable configuration.
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrNotFound is returned when a blob does not exist.
	ErrNotFound = store.ErrNotFound
)

// Config holds the configuration for creating a Client.
type Config struct {
	// Opener opens buckets by name (required). See store.NewGCSOpener, store.FileOpener and
	// store.URLOpener.
	Opener store.Opener
}

// Client runs blob and table operations against buckets opened through its Opener. Each
// operation opens the bucket it needs and closes it before returning.
type Client struct {
	opener store.Opener
}

// NewClient creates a Client from cfg.
func NewClient(cfg Config) (*Client, error) {
	if cfg.Opener == nil {
		return nil, fmt.Errorf("%w: opener is required", ErrInvalidConfiguration)
	}

	return &Client{opener: cfg.Opener}, nil
}

func (c *Client) withBucket(ctx context.Context, bucket string, fn func(*store.GocloudBlob) error) (err error) {
	b, err := store.NewGocloudBlob(ctx, c.opener, bucket)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := b.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close bucket %s: %w", bucket, cerr)
		}
	}()

	return fn(b)
}

func requireBlob(bucket, path string) error {
	if bucket == "" {
		return fmt.Errorf("%w: bucket is required", ErrInvalidInput)
	}
	if path == "" {
		return fmt.Errorf("%w: path is required", ErrInvalidInput)
	}
	return nil
}
