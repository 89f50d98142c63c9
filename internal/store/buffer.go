package store

import (
	"errors"
	"fmt"
	"io"
)

// Buffer is an in-memory io.ReadWriteSeeker. Writes overwrite from the current offset and
// grow the buffer as needed, like a file.
type Buffer struct {
	data []byte
	off  int64
}

var _ io.ReadWriteSeeker = (*Buffer)(nil)

// NewBuffer returns a Buffer holding a copy of data, positioned at the start.
func NewBuffer(data []byte) *Buffer {
	return &Buffer{data: append([]byte(nil), data...)}
}

func (b *Buffer) Read(p []byte) (int, error) {
	if b.off >= int64(len(b.data)) {
		return 0, io.EOF
	}

	n := copy(p, b.data[b.off:])
	b.off += int64(n)

	return n, nil
}

func (b *Buffer) Write(p []byte) (int, error) {
	end := b.off + int64(len(p))
	if size := int64(len(b.data)); end > size {
		if end > int64(cap(b.data)) {
			grown := make([]byte, end, max(end, 2*int64(cap(b.data))))
			copy(grown, b.data)
			b.data = grown
		} else {
			b.data = b.data[:end]
			if b.off > size {
				// bytes between the old end and the offset read as zeros, like a sparse file
				clear(b.data[size:b.off])
			}
		}
	}

	n := copy(b.data[b.off:], p)
	b.off += int64(n)

	return n, nil
}

func (b *Buffer) Seek(offset int64, whence int) (int64, error) {
	var abs int64

	switch whence {
	case io.SeekStart:
		abs = offset
	case io.SeekCurrent:
		abs = b.off + offset
	case io.SeekEnd:
		abs = int64(len(b.data)) + offset
	default:
		return 0, fmt.Errorf("invalid whence %d", whence)
	}

	if abs < 0 {
		return 0, errors.New("negative position")
	}

	b.off = abs

	return abs, nil
}

// Truncate changes the size of the buffer. The offset is left untouched.
func (b *Buffer) Truncate(size int64) error {
	if size < 0 {
		return errors.New("negative size")
	}

	if size <= int64(len(b.data)) {
		b.data = b.data[:size]
		return nil
	}

	_, err := b.WriteAt(make([]byte, size-int64(len(b.data))), int64(len(b.data)))
	return err
}

// WriteAt writes p at off without moving the current offset.
func (b *Buffer) WriteAt(p []byte, off int64) (int, error) {
	if off < 0 {
		return 0, errors.New("negative offset")
	}

	saved := b.off
	b.off = off
	n, err := b.Write(p)
	b.off = saved

	return n, err
}

// Bytes returns the full contents regardless of the current offset.
func (b *Buffer) Bytes() []byte {
	return b.data
}

func (b *Buffer) Len() int {
	return len(b.data)
}

func (b *Buffer) String() string {
	return string(b.data)
}
