package paths

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSplitBlobURL(t *testing.T) {
	tests := []struct {
		name       string
		fullPath   string
		wantBucket string
		wantPath   string
		wantErr    bool
	}{
		{
			name:       "nested path",
			fullPath:   "gs://bucket/a/b/c.csv",
			wantBucket: "bucket",
			wantPath:   "a/b/c.csv",
		},
		{
			name:       "single level path",
			fullPath:   "gs://my-bucket/file.tsv",
			wantBucket: "my-bucket",
			wantPath:   "file.tsv",
		},
		{
			name:       "without scheme",
			fullPath:   "bucket/a.csv",
			wantBucket: "bucket",
			wantPath:   "a.csv",
		},
		{
			name:     "no slash after the scheme",
			fullPath: "gs://bucket",
			wantErr:  true,
		},
		{
			name:     "empty path after the bucket",
			fullPath: "gs://bucket/",
			wantErr:  true,
		},
		{
			name:     "empty bucket",
			fullPath: "gs:///a.csv",
			wantErr:  true,
		},
		{
			name:     "other scheme",
			fullPath: "s3://bucket/a.csv",
			wantErr:  true,
		},
		{
			name:     "empty string",
			fullPath: "",
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert := require.New(t)

			bucket, path, err := SplitBlobURL(tt.fullPath)
			if tt.wantErr {
				assert.ErrorIs(err, ErrInvalidPath)
				return
			}

			assert.NoError(err)
			assert.Equal(tt.wantBucket, bucket)
			assert.Equal(tt.wantPath, path)
		})
	}
}

func TestSplitBucketPrefix(t *testing.T) {
	assert := require.New(t)

	bucket, prefix, err := SplitBucketPrefix("gs://bucket")
	assert.NoError(err)
	assert.Equal("bucket", bucket)
	assert.Equal("", prefix)

	bucket, prefix, err = SplitBucketPrefix("gs://bucket/logs/2024/")
	assert.NoError(err)
	assert.Equal("bucket", bucket)
	assert.Equal("logs/2024/", prefix)

	_, _, err = SplitBucketPrefix("gs:///logs")
	assert.ErrorIs(err, ErrInvalidPath)
}

func TestJoinBlobURL(t *testing.T) {
	assert := require.New(t)

	assert.Equal("gs://bucket/a/b.csv", JoinBlobURL("bucket", "a/b.csv"))
	assert.Equal("gs://bucket/a/b.csv", JoinBlobURL("bucket", "/a/b.csv"))
}
