package object

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"hash"
	"io"
)

// ErrInvalidKey is returned for storage keys that escape the store root.
var ErrInvalidKey = errors.New("invalid storage key")

// Stored describes an object after it has been written.
type Stored struct {
	Key      string
	Size     int64
	MimeType string
	Checksum string
}

// ObjectStore saves and retrieves binary objects grouped by namespace.
type ObjectStore interface {
	Save(ctx context.Context, namespace, fileName string, r io.Reader) (Stored, error)
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

// HashingReader counts and sha256-hashes everything read through it.
type HashingReader struct {
	r io.Reader
	h hash.Hash
	n int64
}

// NewHashingReader wraps r.
func NewHashingReader(r io.Reader) *HashingReader {
	return &HashingReader{r: r, h: sha256.New()}
}

func (hr *HashingReader) Read(p []byte) (int, error) {
	n, err := hr.r.Read(p)
	if n > 0 {
		hr.h.Write(p[:n])
		hr.n += int64(n)
	}
	return n, err
}

// Size returns the number of bytes read so far.
func (hr *HashingReader) Size() int64 { return hr.n }

// Sum returns the hex sha256 of the bytes read so far.
func (hr *HashingReader) Sum() string { return hex.EncodeToString(hr.h.Sum(nil)) }
