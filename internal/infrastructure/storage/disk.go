// Package storage keeps uploaded article images on the local filesystem.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/oklog/ulid/v2"

	"github.com/quillpress/blog-system/internal/core/domain"
)

// URLPrefix is the public path under which stored images are served.
const URLPrefix = "/uploads/"

var (
	allowedExtensions = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true}
	unsafeChars       = regexp.MustCompile(`[^A-Za-z0-9._-]+`)
)

// DiskStore implements ports.ImageStore. Files are named <ulid>-<sanitized name>.
type DiskStore struct {
	dir string
}

// NewDiskStore creates dir if needed.
func NewDiskStore(dir string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &DiskStore{dir: dir}, nil
}

// Dir is the directory served under URLPrefix.
func (s *DiskStore) Dir() string { return s.dir }

func (s *DiskStore) Save(ctx context.Context, filename string, body io.Reader) (string, error) {
	name, err := sanitize(filename)
	if err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	stored := ulid.Make().String() + "-" + name
	full := filepath.Join(s.dir, stored)

	f, err := os.OpenFile(full, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("create image: %w", err)
	}
	if _, err := io.Copy(f, body); err != nil {
		_ = f.Close()
		_ = os.Remove(full)
		return "", fmt.Errorf("write image: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(full)
		return "", fmt.Errorf("close image: %w", err)
	}
	return URLPrefix + stored, nil
}

// Remove deletes the file behind ref. Unknown or already removed files are
// not an error.
func (s *DiskStore) Remove(_ context.Context, ref string) error {
	if !strings.HasPrefix(ref, URLPrefix) {
		return fmt.Errorf("%w: not a stored image reference: %q", domain.ErrInvalidInput, ref)
	}
	name := path.Base(ref)
	if name == "." || name == "/" || name == ".." {
		return fmt.Errorf("%w: not a stored image reference: %q", domain.ErrInvalidInput, ref)
	}
	err := os.Remove(filepath.Join(s.dir, name))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove image: %w", err)
	}
	return nil
}

func sanitize(filename string) (string, error) {
	base := filepath.Base(strings.ReplaceAll(filename, `\`, "/"))
	ext := strings.ToLower(filepath.Ext(base))
	if !allowedExtensions[ext] {
		return "", fmt.Errorf("%w: image must be a jpg, jpeg, png, gif or webp file", domain.ErrInvalidInput)
	}
	stem := strings.Trim(unsafeChars.ReplaceAllString(strings.TrimSuffix(base, filepath.Ext(base)), "_"), "._")
	if stem == "" {
		stem = "image"
	}
	return stem + ext, nil
}
