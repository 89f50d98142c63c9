package commands

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/bucketops/bucketops/internal/store"
	"github.com/bucketops/bucketops/internal/trace"
	"github.com/bucketops/bucketops/pkg/paths"
	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/attribute"
)

type CatCmd struct {
	Path string `arg:"" help:"Blob to download, gs://bucket/path."`
	Out  string `flag:"out" short:"o" help:"Write to this file instead of stdout."`
}

func (cmd *CatCmd) Run(ctx context.Context, globals *Globals) error {
	ctx, span := trace.Start(ctx, "CatCmdRun")
	defer span.End()

	span.SetAttributes(attribute.String("path", cmd.Path))

	bucket, path, err := paths.SplitBlobURL(cmd.Path)
	if err != nil {
		return trace.NewError(span, "%w", err)
	}

	client, err := globals.Client(ctx)
	if err != nil {
		return trace.NewError(span, "%w", err)
	}

	if cmd.Out != "" {
		f, err := os.Create(cmd.Out)
		if err != nil {
			return trace.NewError(span, "failed to create %s: %w", cmd.Out, err)
		}
		defer f.Close()

		info, err := client.DownloadToStream(ctx, bucket, path, f)
		if err != nil {
			return trace.NewError(span, "%w", err)
		}

		globals.Printer.Success("✅", "Downloaded %s to %s (%s, %.2fMB/s)", cmd.Path, cmd.Out, humanize.Bytes(uint64(info.BytesTransferred)), info.TransferSpeed)

		return nil
	}

	buf := store.NewBuffer(nil)

	if _, err := client.DownloadToStream(ctx, bucket, path, buf); err != nil {
		return trace.NewError(span, "%w", err)
	}

	if _, err := globals.Stdout.Write(buf.Bytes()); err != nil {
		return trace.NewError(span, "failed to write to stdout: %w", err)
	}

	return nil
}

type UploadCmd struct {
	File string `arg:"" help:"Local file to upload." type:"existingfile"`
	Dest string `arg:"" help:"Destination blob, gs://bucket/path."`
}

func (cmd *UploadCmd) Run(ctx context.Context, globals *Globals) error {
	ctx, span := trace.Start(ctx, "UploadCmdRun")
	defer span.End()

	span.SetAttributes(attribute.String("file", cmd.File), attribute.String("dest", cmd.Dest))

	bucket, path, err := paths.SplitBlobURL(cmd.Dest)
	if err != nil {
		return trace.NewError(span, "%w", err)
	}

	client, err := globals.Client(ctx)
	if err != nil {
		return trace.NewError(span, "%w", err)
	}

	f, err := os.Open(cmd.File)
	if err != nil {
		return trace.NewError(span, "failed to open %s: %w", cmd.File, err)
	}
	defer f.Close()

	info, err := client.UploadFromStream(ctx, bucket, path, f)
	if err != nil {
		return trace.NewError(span, "%w", err)
	}

	globals.Printer.Success("✅", "Uploaded %s to %s (%s, %.2fMB/s)", cmd.File, cmd.Dest, humanize.Bytes(uint64(info.BytesTransferred)), info.TransferSpeed)

	return nil
}

type MvCmd struct {
	Src string `arg:"" help:"Blob to rename, gs://bucket/path."`
	Dst string `arg:"" help:"New path in the same bucket, either a bare path or gs://bucket/path."`
}

func (cmd *MvCmd) Run(ctx context.Context, globals *Globals) error {
	ctx, span := trace.Start(ctx, "MvCmdRun")
	defer span.End()

	span.SetAttributes(attribute.String("src", cmd.Src), attribute.String("dst", cmd.Dst))

	bucket, path, newPath, err := renameTarget(cmd.Src, cmd.Dst)
	if err != nil {
		return trace.NewError(span, "%w", err)
	}

	client, err := globals.Client(ctx)
	if err != nil {
		return trace.NewError(span, "%w", err)
	}

	if err := client.RenameBlob(ctx, bucket, path, newPath); err != nil {
		return trace.NewError(span, "%w", err)
	}

	globals.Printer.Success("✅", "Renamed %s to %s", cmd.Src, paths.JoinBlobURL(bucket, newPath))

	return nil
}

// renameTarget resolves the source blob and the new path. The destination may repeat the
// source bucket but cannot name another one.
func renameTarget(src, dst string) (bucket, path, newPath string, err error) {
	bucket, path, err = paths.SplitBlobURL(src)
	if err != nil {
		return "", "", "", err
	}

	if !strings.HasPrefix(dst, paths.Scheme) {
		newPath = strings.TrimPrefix(dst, "/")
		if newPath == "" {
			return "", "", "", fmt.Errorf("%w: empty destination", paths.ErrInvalidPath)
		}
		return bucket, path, newPath, nil
	}

	dstBucket, newPath, err := paths.SplitBlobURL(dst)
	if err != nil {
		return "", "", "", err
	}
	if dstBucket != bucket {
		return "", "", "", fmt.Errorf("%w: cannot move between buckets (%s to %s)", paths.ErrInvalidPath, bucket, dstBucket)
	}

	return bucket, path, newPath, nil
}

type LsCmd struct {
	Path      string `arg:"" help:"Bucket and optional prefix, gs://bucket/prefix."`
	Delimiter string `flag:"delimiter" short:"d" help:"Group keys by this delimiter, usually /."`
}

func (cmd *LsCmd) Run(ctx context.Context, globals *Globals) error {
	ctx, span := trace.Start(ctx, "LsCmdRun")
	defer span.End()

	span.SetAttributes(attribute.String("path", cmd.Path), attribute.String("delimiter", cmd.Delimiter))

	bucket, prefix, err := paths.SplitBucketPrefix(cmd.Path)
	if err != nil {
		return trace.NewError(span, "%w", err)
	}

	client, err := globals.Client(ctx)
	if err != nil {
		return trace.NewError(span, "%w", err)
	}

	result, err := client.ListBlobs(ctx, bucket, prefix, cmd.Delimiter)
	if err != nil {
		return trace.NewError(span, "%w", err)
	}

	log.Debug().Int("objects", len(result.Objects)).Int("prefixes", len(result.Prefixes)).Msg("listed blobs")

	_, err = globals.Out.Table([]string{"Name", "Size", "Modified"}, listingRows(result))
	return err
}

func listingRows(result *store.ListResult) [][]string {
	rows := make([][]string, 0, len(result.Prefixes)+len(result.Objects))

	for _, p := range result.Prefixes {
		rows = append(rows, []string{p, "DIR", ""})
	}

	for _, o := range result.Objects {
		modified := ""
		if !o.ModTime.IsZero() {
			modified = humanize.Time(o.ModTime)
		}
		rows = append(rows, []string{o.Key, humanize.Bytes(uint64(max(o.Size, 0))), modified})
	}

	return rows
}
