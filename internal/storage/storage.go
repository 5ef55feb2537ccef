package storage

import (
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
)

// PictureFileName is the single file every capture overwrites
const PictureFileName = "for_text_recognition.jpg"

// PictureStore owns the app-private pictures directory
type PictureStore struct {
	dir string
}

func New(dir string) *PictureStore {
	return &PictureStore{dir: dir}
}

// DefaultDir returns <user cache dir>/textsnap/Pictures
func DefaultDir() (string, error) {
	base, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate user cache dir: %w", err)
	}
	return filepath.Join(base, "textsnap", "Pictures"), nil
}

func (s *PictureStore) Dir() string {
	return s.dir
}

// Path returns the picture file path, creating the directory if needed
func (s *PictureStore) Path() (string, error) {
	if s.dir == "" {
		return "", fmt.Errorf("pictures directory not configured")
	}
	if err := os.MkdirAll(s.dir, 0700); err != nil {
		return "", fmt.Errorf("failed to create pictures directory: %w", err)
	}
	abs, err := filepath.Abs(filepath.Join(s.dir, PictureFileName))
	if err != nil {
		return "", fmt.Errorf("failed to resolve picture path: %w", err)
	}
	return abs, nil
}

// URI returns the shareable content identifier for a picture path
func (s *PictureStore) URI(path string) string {
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(path)}
	return u.String()
}

// Write replaces the picture file with the contents of r
func (s *PictureStore) Write(r io.Reader) (string, int64, error) {
	path, err := s.Path()
	if err != nil {
		return "", 0, err
	}

	tmp, err := os.CreateTemp(s.dir, "capture-*.tmp")
	if err != nil {
		return "", 0, fmt.Errorf("failed to create temp picture: %w", err)
	}
	defer os.Remove(tmp.Name())

	n, err := io.Copy(tmp, r)
	if err != nil {
		tmp.Close()
		return "", 0, fmt.Errorf("failed to write picture: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", 0, fmt.Errorf("failed to write picture: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", 0, fmt.Errorf("failed to save picture: %w", err)
	}

	return path, n, nil
}
