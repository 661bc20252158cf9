package local

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"pmsdoc-backend/internal/shared/storage/object"
	"pmsdoc-backend/internal/shared/util"
)

// Store implements ObjectStore on the local filesystem.
type Store struct {
	baseDir string
}

// New creates a local object store rooted at baseDir.
func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

// Save writes r under baseDir/<hashed namespace>/<uuid>_<name>.
func (s *Store) Save(ctx context.Context, namespace, fileName string, r io.Reader) (object.Stored, error) {
	name, err := util.SanitizeFileName(fileName)
	if err != nil {
		return object.Stored{}, fmt.Errorf("sanitize file name: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return object.Stored{}, err
	}

	dir := util.NamespaceKey(namespace)
	if err := os.MkdirAll(filepath.Join(s.baseDir, dir), 0o755); err != nil {
		return object.Stored{}, fmt.Errorf("mkdir: %w", err)
	}
	key := filepath.ToSlash(filepath.Join(dir, uuid.NewString()+"_"+name))

	path := filepath.Join(s.baseDir, filepath.FromSlash(key))
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return object.Stored{}, fmt.Errorf("open file: %w", err)
	}
	discard := func() {
		_ = f.Close()
		_ = os.Remove(path)
	}

	var sniff [512]byte
	n, readErr := io.ReadFull(r, sniff[:])
	if readErr != nil && readErr != io.EOF && readErr != io.ErrUnexpectedEOF {
		discard()
		return object.Stored{}, fmt.Errorf("read sniff: %w", readErr)
	}

	hr := object.NewHashingReader(io.MultiReader(bytes.NewReader(sniff[:n]), r))
	if _, err := io.Copy(f, hr); err != nil {
		discard()
		return object.Stored{}, fmt.Errorf("write body: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return object.Stored{}, fmt.Errorf("close file: %w", err)
	}

	return object.Stored{
		Key:      key,
		Size:     hr.Size(),
		MimeType: http.DetectContentType(sniff[:n]),
		Checksum: hr.Sum(),
	}, nil
}

// Open opens a stored object for reading.
func (s *Store) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	clean := filepath.Clean(filepath.FromSlash(key))
	if strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) {
		return nil, object.ErrInvalidKey
	}
	return os.Open(filepath.Join(s.baseDir, clean))
}

var _ object.ObjectStore = (*Store)(nil)
