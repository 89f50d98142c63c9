package paths

import (
	"errors"
	"fmt"
	"strings"
)

// Scheme is the prefix of a combined blob path.
const Scheme = "gs://"

var ErrInvalidPath = errors.New("invalid blob path")

// SplitBlobURL splits "gs://bucket/path/to/blob" into its bucket and object path. The scheme
// prefix is optional; any other scheme is rejected. Both parts must be non-empty.
func SplitBlobURL(fullPath string) (bucket, path string, err error) {
	rest := strings.TrimPrefix(fullPath, Scheme)

	if strings.Contains(rest, "://") {
		return "", "", fmt.Errorf("%w: unsupported scheme in %q, expected %s<bucket>/<path>", ErrInvalidPath, fullPath, Scheme)
	}

	bucket, path, ok := strings.Cut(rest, "/")
	if !ok {
		return "", "", fmt.Errorf("%w: %q has no object path after the bucket", ErrInvalidPath, fullPath)
	}

	if bucket == "" {
		return "", "", fmt.Errorf("%w: %q has an empty bucket name", ErrInvalidPath, fullPath)
	}

	if path == "" {
		return "", "", fmt.Errorf("%w: %q has an empty object path", ErrInvalidPath, fullPath)
	}

	return bucket, path, nil
}

// SplitBucketPrefix is like SplitBlobURL but allows an empty object path, which listing
// treats as the whole bucket.
func SplitBucketPrefix(fullPath string) (bucket, prefix string, err error) {
	rest := strings.TrimPrefix(fullPath, Scheme)

	if strings.Contains(rest, "://") {
		return "", "", fmt.Errorf("%w: unsupported scheme in %q, expected %s<bucket>/<prefix>", ErrInvalidPath, fullPath, Scheme)
	}

	bucket, prefix, _ = strings.Cut(rest, "/")
	if bucket == "" {
		return "", "", fmt.Errorf("%w: %q has an empty bucket name", ErrInvalidPath, fullPath)
	}

	return bucket, prefix, nil
}

// JoinBlobURL is the inverse of SplitBlobURL.
func JoinBlobURL(bucket, path string) string {
	return Scheme + bucket + "/" + strings.TrimPrefix(path, "/")
}
