package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/bucketops/bucketops/internal/trace"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/attribute"
	"gocloud.dev/blob"
	"gocloud.dev/gcerrors"
)

// GocloudBlob implements the Blob interface on top of a gocloud.dev bucket
type GocloudBlob struct {
	bucket *blob.Bucket
	name   string
}

// Ensure GocloudBlob implements the Blob interface
var _ Blob = (*GocloudBlob)(nil)

// NewGocloudBlob opens the bucket called name through opener.
func NewGocloudBlob(ctx context.Context, opener Opener, name string) (*GocloudBlob, error) {
	if name == "" {
		return nil, fmt.Errorf("bucket name cannot be empty")
	}

	bucket, err := opener.OpenBucket(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to open blob bucket %s: %w", name, err)
	}

	return &GocloudBlob{
		bucket: bucket,
		name:   name,
	}, nil
}

// Close closes the underlying bucket connection
func (b *GocloudBlob) Close() error {
	return b.bucket.Close()
}

// Download copies the object at key into w
func (b *GocloudBlob) Download(ctx context.Context, key string, w io.Writer) (*TransferInfo, error) {
	ctx, span := trace.Start(ctx, "GocloudBlob.Download")
	defer span.End()

	start := time.Now()

	key = normalizeKey(key)

	reader, err := b.bucket.NewReader(ctx, key, nil)
	if err != nil {
		return nil, trace.NewError(span, "failed to create blob reader for %s: %w", b.describe(key), mapError(err))
	}
	defer reader.Close()

	bytesWritten, err := io.Copy(w, reader)
	if err != nil {
		return nil, trace.NewError(span, "failed to copy blob %s: %w", b.describe(key), err)
	}

	info := newTransferInfo(bytesWritten, time.Since(start))

	span.SetAttributes(
		attribute.Int64("bytes_transferred", bytesWritten),
		attribute.String("transfer_speed", fmt.Sprintf("%.2fMB/s", info.TransferSpeed)),
		attribute.String("blob_key", key),
	)

	log.Debug().Str("bucket", b.name).Str("key", key).Int64("bytes", bytesWritten).Msg("downloaded blob")

	return info, nil
}

// Upload copies r into the object at key. An empty contentType lets the driver sniff it.
func (b *GocloudBlob) Upload(ctx context.Context, key string, r io.Reader, contentType string) (*TransferInfo, error) {
	ctx, span := trace.Start(ctx, "GocloudBlob.Upload")
	defer span.End()

	start := time.Now()

	key = normalizeKey(key)
	if key == "" {
		return nil, trace.NewError(span, "blob key cannot be empty")
	}

	writer, err := b.bucket.NewWriter(ctx, key, &blob.WriterOptions{ContentType: contentType})
	if err != nil {
		return nil, trace.NewError(span, "failed to create blob writer for %s: %w", b.describe(key), err)
	}

	bytesWritten, err := io.Copy(writer, r)
	if err != nil {
		_ = writer.Close()
		return nil, trace.NewError(span, "failed to copy data to blob %s: %w", b.describe(key), err)
	}

	// Close commits the upload
	if err := writer.Close(); err != nil {
		return nil, trace.NewError(span, "failed to close blob writer for %s: %w", b.describe(key), err)
	}

	info := newTransferInfo(bytesWritten, time.Since(start))

	span.SetAttributes(
		attribute.Int64("bytes_transferred", bytesWritten),
		attribute.String("transfer_speed", fmt.Sprintf("%.2fMB/s", info.TransferSpeed)),
		attribute.String("blob_key", key),
	)

	log.Debug().Str("bucket", b.name).Str("key", key).Int64("bytes", bytesWritten).Msg("uploaded blob")

	return info, nil
}

// Rename copies key to newKey and deletes key. Renaming an object onto itself does nothing.
func (b *GocloudBlob) Rename(ctx context.Context, key, newKey string) error {
	ctx, span := trace.Start(ctx, "GocloudBlob.Rename")
	defer span.End()

	key, newKey = normalizeKey(key), normalizeKey(newKey)
	if key == "" || newKey == "" {
		return trace.NewError(span, "blob keys cannot be empty")
	}

	span.SetAttributes(
		attribute.String("blob_key", key),
		attribute.String("new_blob_key", newKey),
	)

	if key == newKey {
		log.Debug().Str("bucket", b.name).Str("key", key).Msg("rename onto itself, nothing to do")
		return nil
	}

	if err := b.bucket.Copy(ctx, newKey, key, nil); err != nil {
		return trace.NewError(span, "failed to copy %s to %s: %w", b.describe(key), newKey, mapError(err))
	}

	if err := b.bucket.Delete(ctx, key); err != nil {
		return trace.NewError(span, "failed to delete %s after copying it to %s: %w", b.describe(key), newKey, mapError(err))
	}

	log.Debug().Str("bucket", b.name).Str("key", key).Str("new_key", newKey).Msg("renamed blob")

	return nil
}

// List returns every object under prefix. With a delimiter, keys containing the delimiter
// after the prefix are collapsed into Prefixes instead of being returned as objects.
func (b *GocloudBlob) List(ctx context.Context, prefix, delimiter string) (*ListResult, error) {
	ctx, span := trace.Start(ctx, "GocloudBlob.List")
	defer span.End()

	prefix = strings.TrimPrefix(prefix, "/")

	iter := b.bucket.List(&blob.ListOptions{
		Prefix:    prefix,
		Delimiter: delimiter,
	})

	result := &ListResult{}

	for {
		obj, err := iter.Next(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, trace.NewError(span, "failed to list %s: %w", b.describe(prefix), mapError(err))
		}

		if obj.IsDir {
			result.Prefixes = append(result.Prefixes, obj.Key)
			continue
		}

		result.Objects = append(result.Objects, ObjectInfo{
			Key:     obj.Key,
			Size:    obj.Size,
			ModTime: obj.ModTime,
			MD5:     obj.MD5,
		})
	}

	span.SetAttributes(
		attribute.String("prefix", prefix),
		attribute.String("delimiter", delimiter),
		attribute.Int("objects", len(result.Objects)),
		attribute.Int("prefixes", len(result.Prefixes)),
	)

	return result, nil
}

func (b *GocloudBlob) describe(key string) string {
	return fmt.Sprintf("%s/%s", b.name, key)
}

func newTransferInfo(bytes int64, duration time.Duration) *TransferInfo {
	return &TransferInfo{
		BytesTransferred: bytes,
		TransferSpeed:    calculateTransferSpeedMBps(bytes, duration),
		Duration:         duration,
	}
}

// normalizeKey removes a leading slash, object keys never start with one
func normalizeKey(key string) string {
	return strings.TrimPrefix(key, "/")
}

func mapError(err error) error {
	if gcerrors.Code(err) == gcerrors.NotFound {
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	}
	return err
}
