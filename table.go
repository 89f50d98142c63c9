package bucketops

import (
	"context"
	"fmt"
	"io"

	"github.com/bucketops/bucketops/internal/store"
	"github.com/bucketops/bucketops/internal/trace"
	"github.com/bucketops/bucketops/pkg/paths"
	"github.com/bucketops/bucketops/table"
	"go.opentelemetry.io/otel/attribute"
)

// Location addresses a blob either by Bucket and Path or by a combined FullPath such as
// "gs://bucket/path/to/blob". Exactly one form must be given.
type Location struct {
	Bucket   string
	Path     string
	FullPath string
}

// Resolve returns the bucket and path the location points at.
func (l Location) Resolve() (bucket, path string, err error) {
	pair := l.Bucket != "" || l.Path != ""

	switch {
	case l.FullPath != "" && pair:
		return "", "", fmt.Errorf("%w: give either a bucket and path or a full path, not both", ErrInvalidInput)
	case l.FullPath != "":
		bucket, path, err = paths.SplitBlobURL(l.FullPath)
		if err != nil {
			return "", "", fmt.Errorf("%w: %w", ErrInvalidInput, err)
		}
		return bucket, path, nil
	case l.Bucket == "" || l.Path == "":
		return "", "", fmt.Errorf("%w: a bucket and path or a full path is required", ErrInvalidInput)
	default:
		return l.Bucket, l.Path, nil
	}
}

func (l Location) String() string {
	if l.FullPath != "" {
		return l.FullPath
	}
	return paths.JoinBlobURL(l.Bucket, l.Path)
}

// TableFromBucket downloads the blob at loc and parses it as a table. The location is
// checked before the bucket is opened.
func (c *Client) TableFromBucket(ctx context.Context, loc Location, opts table.Options) (*table.Table, error) {
	ctx, span := trace.Start(ctx, "Client.TableFromBucket")
	defer span.End()

	bucket, path, err := loc.Resolve()
	if err != nil {
		return nil, trace.NewError(span, "%w", err)
	}

	opts, err = opts.Resolve(path)
	if err != nil {
		return nil, trace.NewError(span, "%w: %w", ErrInvalidInput, err)
	}

	span.SetAttributes(
		attribute.String("bucket", bucket),
		attribute.String("path", path),
		attribute.String("format", string(opts.Format)),
	)

	buf := store.NewBuffer(nil)

	if _, err := c.DownloadToStream(ctx, bucket, path, buf); err != nil {
		return nil, trace.NewError(span, "%w", err)
	}

	if _, err := buf.Seek(0, io.SeekStart); err != nil {
		return nil, trace.NewError(span, "failed to rewind buffer: %w", err)
	}

	t, err := table.Read(buf, opts)
	if err != nil {
		return nil, trace.NewError(span, "failed to parse %s: %w", loc, err)
	}

	span.SetAttributes(attribute.Int("rows", len(t.Rows)))

	return t, nil
}

// TableToBucket serializes t and uploads it to loc. The location is checked before the
// bucket is opened.
func (c *Client) TableToBucket(ctx context.Context, t *table.Table, loc Location, opts table.Options) (*store.TransferInfo, error) {
	ctx, span := trace.Start(ctx, "Client.TableToBucket")
	defer span.End()

	bucket, path, err := loc.Resolve()
	if err != nil {
		return nil, trace.NewError(span, "%w", err)
	}

	if t == nil {
		return nil, trace.NewError(span, "%w: table is required", ErrInvalidInput)
	}

	opts, err = opts.Resolve(path)
	if err != nil {
		return nil, trace.NewError(span, "%w: %w", ErrInvalidInput, err)
	}

	span.SetAttributes(
		attribute.String("bucket", bucket),
		attribute.String("path", path),
		attribute.String("format", string(opts.Format)),
		attribute.Int("rows", len(t.Rows)),
	)

	buf := store.NewBuffer(nil)

	if err := table.Write(buf, t, opts); err != nil {
		return nil, trace.NewError(span, "failed to serialize table for %s: %w", loc, err)
	}

	info, err := c.UploadFromStream(ctx, bucket, path, buf)
	if err != nil {
		return nil, trace.NewError(span, "%w", err)
	}

	return info, nil
}
