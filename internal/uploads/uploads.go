package uploads

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// URLPrefix is the public path under which stored images are served.
const URLPrefix = "/uploads"

// Store writes uploaded image files to a local directory and hands back
// the relative reference recorded on the employee.
type Store struct {
	dir string
}

// NewStore creates the upload directory if needed and returns a Store
// rooted at it.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory %s: %w", dir, err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the directory the store writes into.
func (s *Store) Dir() string {
	return s.dir
}

// Save writes one uploaded file under a generated name and returns its
// reference, e.g. "/uploads/5f3a....png". The original filename only
// contributes its extension, so uploads can never collide or escape the
// directory.
func (s *Store) Save(file *multipart.FileHeader) (string, error) {
	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	name := uuid.New().String() + strings.ToLower(filepath.Ext(file.Filename))
	dst, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return "", fmt.Errorf("failed to create upload file %s: %w", name, err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", fmt.Errorf("failed to write upload file %s: %w", name, err)
	}
	return URLPrefix + "/" + name, nil
}

// Remove deletes the file a reference points at. A missing file is not
// an error; any other filesystem failure (permissions etc.) is returned
// so callers can log it instead of silently losing it.
func (s *Store) Remove(ref string) error {
	if ref == "" {
		return nil
	}
	// References come from stored records or client input; using only
	// the base name keeps deletion inside the upload directory.
	name := filepath.Base(filepath.Clean(ref))
	if name == "." || name == string(filepath.Separator) {
		return nil
	}
	if err := os.Remove(filepath.Join(s.dir, name)); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to remove upload file %s: %w", name, err)
	}
	return nil
}
