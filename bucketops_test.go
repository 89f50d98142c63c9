package bucketops

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bucketops/bucketops/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocloud.dev/blob"
)

// unreachableOpener fails the test if any bucket is opened.
type unreachableOpener struct {
	t *testing.T
}

func (o unreachableOpener) OpenBucket(ctx context.Context, name string) (*blob.Bucket, error) {
	o.t.Fatalf("bucket %q opened, expected validation to fail first", name)
	return nil, nil
}

func newFileClient(t *testing.T) (*Client, string) {
	t.Helper()

	root := t.TempDir()

	client, err := NewClient(Config{Opener: &store.FileOpener{Root: root}})
	require.NoError(t, err)

	return client, root
}

func seedBlob(t *testing.T, root, bucket, path, content string) {
	t.Helper()

	full := filepath.Join(root, bucket, filepath.FromSlash(path))
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, []byte(content), 0o600))
}

func TestNewClientRequiresOpener(t *testing.T) {
	_, err := NewClient(Config{})
	require.ErrorIs(t, err, ErrInvalidConfiguration)
}

func TestDownloadToStream(t *testing.T) {
	ctx := context.Background()
	client, root := newFileClient(t)

	seedBlob(t, root, "bucket", "dir/blob.txt", "fresh")

	t.Run("rewinds and truncates a used buffer", func(t *testing.T) {
		buf := store.NewBuffer([]byte("stale content that is longer"))
		_, _ = buf.Seek(0, 2)

		info, err := client.DownloadToStream(ctx, "bucket", "dir/blob.txt", buf)
		require.NoError(t, err)
		assert.Equal(t, int64(5), info.BytesTransferred)
		assert.Equal(t, "fresh", buf.String())
	})

	t.Run("into a file", func(t *testing.T) {
		f, err := os.Create(filepath.Join(t.TempDir(), "out"))
		require.NoError(t, err)
		defer f.Close()

		_, err = f.WriteString("previous file content")
		require.NoError(t, err)

		_, err = client.DownloadToStream(ctx, "bucket", "dir/blob.txt", f)
		require.NoError(t, err)

		data, err := os.ReadFile(f.Name())
		require.NoError(t, err)
		assert.Equal(t, "fresh", string(data))
	})

	t.Run("missing blob", func(t *testing.T) {
		_, err := client.DownloadToStream(ctx, "bucket", "nope.txt", store.NewBuffer(nil))
		require.ErrorIs(t, err, ErrNotFound)
	})
}

func TestUploadFromStream(t *testing.T) {
	ctx := context.Background()
	client, root := newFileClient(t)

	buf := store.NewBuffer([]byte("uploaded data"))
	_, _ = buf.Seek(0, 2)

	info, err := client.UploadFromStream(ctx, "bucket", "up/data.txt", buf)
	require.NoError(t, err)
	assert.Equal(t, int64(len("uploaded data")), info.BytesTransferred, "the stream is rewound first")

	data, err := os.ReadFile(filepath.Join(root, "bucket", "up", "data.txt"))
	require.NoError(t, err)
	assert.Equal(t, "uploaded data", string(data))
}

func TestRenameBlob(t *testing.T) {
	ctx := context.Background()
	client, root := newFileClient(t)

	seedBlob(t, root, "bucket", "a.txt", "content")

	require.NoError(t, client.RenameBlob(ctx, "bucket", "a.txt", "b/a.txt"))

	_, err := client.DownloadToStream(ctx, "bucket", "a.txt", store.NewBuffer(nil))
	require.ErrorIs(t, err, ErrNotFound)

	buf := store.NewBuffer(nil)
	_, err = client.DownloadToStream(ctx, "bucket", "b/a.txt", buf)
	require.NoError(t, err)
	assert.Equal(t, "content", buf.String())

	require.NoError(t, client.RenameBlob(ctx, "bucket", "b/a.txt", "b/a.txt"))
}

func TestListBlobs(t *testing.T) {
	ctx := context.Background()
	client, root := newFileClient(t)

	seedBlob(t, root, "bucket", "data/a.csv", "1")
	seedBlob(t, root, "bucket", "data/b.csv", "22")
	seedBlob(t, root, "bucket", "data/archive/old.csv", "333")

	all, err := client.ListBlobs(ctx, "bucket", "data/", "")
	require.NoError(t, err)
	assert.Len(t, all.Objects, 3)
	assert.Empty(t, all.Prefixes)

	grouped, err := client.ListBlobs(ctx, "bucket", "data/", "/")
	require.NoError(t, err)
	assert.Len(t, grouped.Objects, 2)
	assert.Equal(t, []string{"data/archive/"}, grouped.Prefixes)
}

func TestBlobHelpersValidateBeforeOpening(t *testing.T) {
	ctx := context.Background()

	client, err := NewClient(Config{Opener: unreachableOpener{t: t}})
	require.NoError(t, err)

	tests := []struct {
		name string
		call func() error
	}{
		{"download without bucket", func() error {
			_, err := client.DownloadToStream(ctx, "", "p", store.NewBuffer(nil))
			return err
		}},
		{"download without path", func() error {
			_, err := client.DownloadToStream(ctx, "b", "", store.NewBuffer(nil))
			return err
		}},
		{"upload without path", func() error {
			_, err := client.UploadFromStream(ctx, "b", "", strings.NewReader("x"))
			return err
		}},
		{"rename without new path", func() error {
			return client.RenameBlob(ctx, "b", "p", "")
		}},
		{"list without bucket", func() error {
			_, err := client.ListBlobs(ctx, "", "p", "/")
			return err
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.ErrorIs(t, tt.call(), ErrInvalidInput)
		})
	}
}

func TestSniff(t *testing.T) {
	assert := require.New(t)

	r := bytes.NewReader([]byte("%PDF-1.7\n..."))
	_, _ = r.Seek(3, 0)

	contentType, err := sniff(r)
	assert.NoError(err)
	assert.Equal("application/pdf", contentType)

	pos, _ := r.Seek(0, 1)
	assert.Equal(int64(0), pos)
}
