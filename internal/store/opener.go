package store

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/go-querystring/query"
	"github.com/rs/zerolog/log"
	"gocloud.dev/blob"
	"gocloud.dev/blob/fileblob"
	"gocloud.dev/blob/gcsblob"
	_ "gocloud.dev/blob/s3blob" // AWS S3 driver for URLOpener
	"gocloud.dev/gcp"
	"golang.org/x/oauth2/google"
)

// Opener opens a bucket by name. Credentials and backend selection live in the opener, so
// nothing in the helpers depends on process-wide client state.
type Opener interface {
	OpenBucket(ctx context.Context, name string) (*blob.Bucket, error)
}

const gcsReadWriteScope = "https://www.googleapis.com/auth/devstorage.read_write"

// GCSCredentials selects how the GCS opener authenticates.
type GCSCredentials struct {
	// Anonymous uses an unauthenticated client, enough for public buckets.
	Anonymous bool

	// CredentialsFile is a service account or authorized user JSON file. When empty and
	// Anonymous is false, application default credentials are used.
	CredentialsFile string
}

// GCSOpener opens Google Cloud Storage buckets with an explicit HTTP client.
type GCSOpener struct {
	client *gcp.HTTPClient
}

var _ Opener = (*GCSOpener)(nil)

func NewGCSOpener(ctx context.Context, creds GCSCredentials) (*GCSOpener, error) {
	if creds.Anonymous {
		log.Debug().Msg("using anonymous GCS client")
		return &GCSOpener{client: gcp.NewAnonymousHTTPClient(gcp.DefaultTransport())}, nil
	}

	var (
		credentials *google.Credentials
		err         error
	)

	if creds.CredentialsFile != "" {
		data, err := os.ReadFile(creds.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read credentials file %s: %w", creds.CredentialsFile, err)
		}

		credentials, err = google.CredentialsFromJSON(ctx, data, gcsReadWriteScope)
		if err != nil {
			return nil, fmt.Errorf("failed to parse credentials file %s: %w", creds.CredentialsFile, err)
		}
	} else {
		credentials, err = gcp.DefaultCredentials(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load default GCP credentials: %w", err)
		}
	}

	client, err := gcp.NewHTTPClient(gcp.DefaultTransport(), gcp.CredentialsTokenSource(credentials))
	if err != nil {
		return nil, fmt.Errorf("failed to create GCS HTTP client: %w", err)
	}

	return &GCSOpener{client: client}, nil
}

func (o *GCSOpener) OpenBucket(ctx context.Context, name string) (*blob.Bucket, error) {
	return gcsblob.OpenBucket(ctx, o.client, name, nil)
}

// FileOpener maps every bucket to a directory under Root, for local development and tests.
type FileOpener struct {
	Root string
}

var _ Opener = (*FileOpener)(nil)

func (o *FileOpener) OpenBucket(ctx context.Context, name string) (*blob.Bucket, error) {
	if err := validateBucketName(name); err != nil {
		return nil, err
	}

	if o.Root == "" {
		return nil, fmt.Errorf("file store root cannot be empty")
	}

	dir := filepath.Join(o.Root, name)

	log.Debug().Str("bucket", name).Str("dir", dir).Msg("opening file bucket")

	return fileblob.OpenBucket(dir, &fileblob.Options{CreateDir: true})
}

// URLQuery holds the driver parameters appended to a bucket URL.
type URLQuery struct {
	Region       string `url:"region,omitempty"`
	Endpoint     string `url:"endpoint,omitempty"`
	UsePathStyle bool   `url:"use_path_style,omitempty"`
	CreateDir    bool   `url:"create_dir,omitempty"`
}

// URLOpener opens any gocloud.dev bucket URL. Template must contain "{bucket}", for example
// "s3://{bucket}" or "file:///var/buckets/{bucket}".
type URLOpener struct {
	Template string
	Query    URLQuery
}

var _ Opener = (*URLOpener)(nil)

func (o *URLOpener) OpenBucket(ctx context.Context, name string) (*blob.Bucket, error) {
	bucketURL, err := o.BucketURL(name)
	if err != nil {
		return nil, err
	}

	log.Debug().Str("bucket", name).Str("url", bucketURL).Msg("opening bucket URL")

	return blob.OpenBucket(ctx, bucketURL)
}

// BucketURL expands the template for name and appends the encoded query.
func (o *URLOpener) BucketURL(name string) (string, error) {
	if err := validateBucketName(name); err != nil {
		return "", err
	}

	if !strings.Contains(o.Template, "{bucket}") {
		return "", fmt.Errorf("bucket URL template %q must contain {bucket}", o.Template)
	}

	raw := strings.ReplaceAll(o.Template, "{bucket}", name)

	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("failed to parse bucket URL %q: %w", raw, err)
	}

	values, err := query.Values(o.Query)
	if err != nil {
		return "", fmt.Errorf("failed to encode bucket URL query: %w", err)
	}

	existing := u.Query()
	for key, vals := range values {
		for _, v := range vals {
			existing.Add(key, v)
		}
	}
	u.RawQuery = existing.Encode()

	return u.String(), nil
}

func validateBucketName(name string) error {
	if name == "" {
		return fmt.Errorf("bucket name cannot be empty")
	}
	if name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("invalid bucket name %q", name)
	}
	return nil
}
