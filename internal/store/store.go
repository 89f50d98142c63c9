package store

import (
	"errors"
	"time"
)

var ErrNotFound = errors.New("blob not found")

type TransferInfo struct {
	BytesTransferred int64
	TransferSpeed    float64 // in MB/s
	Duration         time.Duration
}

// ObjectInfo describes a single listed object.
type ObjectInfo struct {
	Key     string
	Size    int64
	ModTime time.Time
	MD5     []byte
}

// ListResult holds the objects matching a listing and, when a delimiter was given, the
// prefixes that only group deeper objects.
type ListResult struct {
	Objects  []ObjectInfo
	Prefixes []string
}

func calculateTransferSpeedMBps(bytes int64, duration time.Duration) float64 {
	if duration <= 0 {
		return 0
	}
	return float64(bytes) / duration.Seconds() / 1000 / 1000
}
