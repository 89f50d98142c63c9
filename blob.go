package bucketops

import (
	"context"
	"fmt"
	"io"

	"github.com/bucketops/bucketops/internal/store"
	"github.com/bucketops/bucketops/internal/trace"
	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/attribute"
)

type truncater interface {
	Truncate(size int64) error
}

// DownloadToStream writes the blob at bucket/path into w starting at offset zero. When w can
// be truncated (an *os.File or a store.Buffer) anything past the downloaded bytes is cut off.
func (c *Client) DownloadToStream(ctx context.Context, bucket, path string, w io.WriteSeeker) (*store.TransferInfo, error) {
	ctx, span := trace.Start(ctx, "Client.DownloadToStream")
	defer span.End()

	if err := requireBlob(bucket, path); err != nil {
		return nil, trace.NewError(span, "%w", err)
	}

	span.SetAttributes(attribute.String("bucket", bucket), attribute.String("path", path))

	if _, err := w.Seek(0, io.SeekStart); err != nil {
		return nil, trace.NewError(span, "failed to rewind stream: %w", err)
	}

	var info *store.TransferInfo

	err := c.withBucket(ctx, bucket, func(b *store.GocloudBlob) error {
		var err error
		info, err = b.Download(ctx, path, w)
		return err
	})
	if err != nil {
		return nil, trace.NewError(span, "failed to download %s: %w", describe(bucket, path), err)
	}

	if t, ok := w.(truncater); ok {
		if err := t.Truncate(info.BytesTransferred); err != nil {
			return nil, trace.NewError(span, "failed to truncate stream: %w", err)
		}
	}

	return info, nil
}

// UploadFromStream uploads everything in r, from offset zero, to bucket/path. The content
// type is sniffed from the data.
func (c *Client) UploadFromStream(ctx context.Context, bucket, path string, r io.ReadSeeker) (*store.TransferInfo, error) {
	ctx, span := trace.Start(ctx, "Client.UploadFromStream")
	defer span.End()

	if err := requireBlob(bucket, path); err != nil {
		return nil, trace.NewError(span, "%w", err)
	}

	span.SetAttributes(attribute.String("bucket", bucket), attribute.String("path", path))

	contentType, err := sniff(r)
	if err != nil {
		return nil, trace.NewError(span, "failed to detect content type: %w", err)
	}

	var info *store.TransferInfo

	err = c.withBucket(ctx, bucket, func(b *store.GocloudBlob) error {
		var err error
		info, err = b.Upload(ctx, path, r, contentType)
		return err
	})
	if err != nil {
		return nil, trace.NewError(span, "failed to upload %s: %w", describe(bucket, path), err)
	}

	return info, nil
}

// RenameBlob moves bucket/path to bucket/newPath by copying and deleting. Renaming a blob
// onto itself does nothing.
func (c *Client) RenameBlob(ctx context.Context, bucket, path, newPath string) error {
	ctx, span := trace.Start(ctx, "Client.RenameBlob")
	defer span.End()

	if err := requireBlob(bucket, path); err != nil {
		return trace.NewError(span, "%w", err)
	}
	if newPath == "" {
		return trace.NewError(span, "%w: new path is required", ErrInvalidInput)
	}

	err := c.withBucket(ctx, bucket, func(b *store.GocloudBlob) error {
		return b.Rename(ctx, path, newPath)
	})
	if err != nil {
		return trace.NewError(span, "failed to rename %s: %w", describe(bucket, path), err)
	}

	log.Debug().Str("bucket", bucket).Str("path", path).Str("new_path", newPath).Msg("renamed blob")

	return nil
}

// ListBlobs lists the blobs under prefix. With an empty delimiter every blob under the
// prefix is returned. With a delimiter, blobs below the next delimiter are grouped into
// ListResult.Prefixes.
func (c *Client) ListBlobs(ctx context.Context, bucket, prefix, delimiter string) (*store.ListResult, error) {
	ctx, span := trace.Start(ctx, "Client.ListBlobs")
	defer span.End()

	if bucket == "" {
		return nil, trace.NewError(span, "%w: bucket is required", ErrInvalidInput)
	}

	var result *store.ListResult

	err := c.withBucket(ctx, bucket, func(b *store.GocloudBlob) error {
		var err error
		result, err = b.List(ctx, prefix, delimiter)
		return err
	})
	if err != nil {
		return nil, trace.NewError(span, "failed to list %s: %w", describe(bucket, prefix), err)
	}

	return result, nil
}

// sniff detects the content type of r and rewinds it.
func sniff(r io.ReadSeeker) (string, error) {
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("failed to rewind stream: %w", err)
	}

	mtype, err := mimetype.DetectReader(r)
	if err != nil {
		return "", err
	}

	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("failed to rewind stream: %w", err)
	}

	return mtype.String(), nil
}

func describe(bucket, path string) string {
	return fmt.Sprintf("%s/%s", bucket, path)
}
