// Package imagestore keeps uploaded product images on the local filesystem
// under a single root directory. Filenames are generated, never caller
// supplied, so the store contents cannot be addressed by request paths.
package imagestore

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// Store is a filesystem-backed image store rooted at a single directory.
type Store struct {
	root string
}

// NewStore creates the root directory if needed and returns the store.
func NewStore(root string) (*Store, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, errors.Wrap(err, "imagestore: create root")
	}
	return &Store{root: root}, nil
}

// Root returns the store's base directory.
func (s *Store) Root() string {
	return s.root
}

// Save writes the upload under a fresh generated filename (uuid plus the
// original extension) and returns that filename.
func (s *Store) Save(r io.Reader, originalName string) (string, error) {
	name := uuid.NewString() + strings.ToLower(filepath.Ext(originalName))
	f, err := os.OpenFile(filepath.Join(s.root, name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", errors.Wrap(err, "imagestore: create file")
	}
	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		_ = os.Remove(f.Name())
		return "", errors.Wrap(err, "imagestore: write file")
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(f.Name())
		return "", errors.Wrap(err, "imagestore: close file")
	}
	return name, nil
}

// Remove deletes a stored image. A missing file is not an error; the store
// treats "already absent" as success.
func (s *Store) Remove(name string) error {
	path, err := s.resolve(name)
	if err != nil {
		return err
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	return errors.Wrap(os.Remove(path), "imagestore: remove file")
}

// Exists reports whether a stored image is present.
func (s *Store) Exists(name string) bool {
	path, err := s.resolve(name)
	if err != nil {
		return false
	}
	_, err = os.Stat(path)
	return err == nil
}

// Path returns the absolute path of a stored image.
func (s *Store) Path(name string) (string, error) {
	return s.resolve(name)
}

// StoredFile describes one file in the store, used by the orphan sweep job.
type StoredFile struct {
	Name    string
	ModTime time.Time
}

// List returns all files currently in the store.
func (s *Store) List() ([]StoredFile, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, errors.Wrap(err, "imagestore: read dir")
	}
	files := make([]StoredFile, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		files = append(files, StoredFile{Name: e.Name(), ModTime: info.ModTime()})
	}
	return files, nil
}

// resolve rejects names that would escape the root directory.
func (s *Store) resolve(name string) (string, error) {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return "", errors.Errorf("imagestore: invalid name %q", name)
	}
	return filepath.Join(s.root, name), nil
}
