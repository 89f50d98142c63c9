package commands

import (
	"context"
	"fmt"

	"github.com/bucketops/bucketops"
	"github.com/bucketops/bucketops/internal/trace"
	"github.com/bucketops/bucketops/table"
	"github.com/dustin/go-humanize"
	"go.opentelemetry.io/otel/attribute"
)

type TableCmd struct {
	Show TableShowCmd `cmd:"" help:"Print a delimited or xlsx blob as a table."`
	Copy TableCopyCmd `cmd:"" help:"Read a table blob and write it to another blob, converting the format."`
}

type TableShowCmd struct {
	Path      string `arg:"" help:"Table blob, gs://bucket/path.csv."`
	Delimiter string `flag:"delimiter" help:"Field delimiter, defaults to tab for .tsv and comma otherwise."`
	Format    string `flag:"format" help:"Table format, inferred from the extension when empty."`
	Sheet     string `flag:"sheet" help:"Worksheet to read from an xlsx blob."`
	Limit     int    `flag:"limit" help:"Maximum rows to print, 0 prints every row." default:"0"`
}

func (cmd *TableShowCmd) Run(ctx context.Context, globals *Globals) error {
	ctx, span := trace.Start(ctx, "TableShowCmdRun")
	defer span.End()

	span.SetAttributes(attribute.String("path", cmd.Path))

	opts, err := tableOptions(cmd.Format, cmd.Delimiter, cmd.Sheet)
	if err != nil {
		return trace.NewError(span, "%w", err)
	}

	client, err := globals.Client(ctx)
	if err != nil {
		return trace.NewError(span, "%w", err)
	}

	t, err := client.TableFromBucket(ctx, bucketops.Location{FullPath: cmd.Path}, opts)
	if err != nil {
		return trace.NewError(span, "%w", err)
	}

	rows := t.Rows
	if cmd.Limit > 0 && len(rows) > cmd.Limit {
		rows = rows[:cmd.Limit]
	}

	if _, err := globals.Out.Table(t.Columns, rows); err != nil {
		return trace.NewError(span, "failed to print table: %w", err)
	}

	globals.Printer.Info("📊", "%s rows, %d columns", humanize.Comma(int64(len(t.Rows))), len(t.Columns))

	return nil
}

type TableCopyCmd struct {
	Src          string `arg:"" help:"Source table blob, gs://bucket/path.csv."`
	Dst          string `arg:"" help:"Destination table blob, gs://bucket/path.xlsx."`
	Delimiter    string `flag:"delimiter" help:"Source field delimiter."`
	OutDelimiter string `flag:"out-delimiter" help:"Destination field delimiter."`
	Format       string `flag:"format" help:"Source format, inferred from the extension when empty."`
	OutFormat    string `flag:"out-format" help:"Destination format, inferred from the extension when empty."`
}

func (cmd *TableCopyCmd) Run(ctx context.Context, globals *Globals) error {
	ctx, span := trace.Start(ctx, "TableCopyCmdRun")
	defer span.End()

	span.SetAttributes(attribute.String("src", cmd.Src), attribute.String("dst", cmd.Dst))

	in, err := tableOptions(cmd.Format, cmd.Delimiter, "")
	if err != nil {
		return trace.NewError(span, "%w", err)
	}

	out, err := tableOptions(cmd.OutFormat, cmd.OutDelimiter, "")
	if err != nil {
		return trace.NewError(span, "%w", err)
	}

	client, err := globals.Client(ctx)
	if err != nil {
		return trace.NewError(span, "%w", err)
	}

	t, err := client.TableFromBucket(ctx, bucketops.Location{FullPath: cmd.Src}, in)
	if err != nil {
		return trace.NewError(span, "%w", err)
	}

	info, err := client.TableToBucket(ctx, t, bucketops.Location{FullPath: cmd.Dst}, out)
	if err != nil {
		return trace.NewError(span, "%w", err)
	}

	globals.Printer.Success("✅", "Copied %d rows from %s to %s (%s)", len(t.Rows), cmd.Src, cmd.Dst, humanize.Bytes(uint64(info.BytesTransferred)))

	return nil
}

func tableOptions(format, delimiter, sheet string) (table.Options, error) {
	d, err := table.ParseDelimiter(delimiter)
	if err != nil {
		return table.Options{}, fmt.Errorf("%w: %w", bucketops.ErrInvalidInput, err)
	}

	return table.Options{Format: table.Format(format), Delimiter: d, Sheet: sheet}, nil
}
