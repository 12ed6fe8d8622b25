// Package media stores uploaded song files and reads their tags.
package media

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
)

// ErrTooLarge is returned when an upload exceeds the size limit.
var ErrTooLarge = errors.New("file exceeds upload limit")

// MaxUploadBytes caps a single MP3 upload.
const MaxUploadBytes = 50 << 20

// Storage keeps one MP3 per song under a base directory.
// Safe for concurrent use.
type Storage struct {
	basePath string
	mu       sync.RWMutex
}

// NewStorage creates the directory if needed.
func NewStorage(basePath string) (*Storage, error) {
	if basePath == "" {
		return nil, errors.New("base path cannot be empty")
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("create media directory: %w", err)
	}
	return &Storage{basePath: basePath}, nil
}

// RelPath is the stored file name for a song, relative to the base directory.
func RelPath(songID string) string {
	return songID + ".mp3"
}

// Path returns the absolute path of a song's file.
func (s *Storage) Path(songID string) string {
	return filepath.Join(s.basePath, RelPath(songID))
}

// Save streams r into the song's file. The write goes to a temp file that is
// renamed into place, so a failed upload never leaves a partial file behind.
func (s *Storage) Save(songID string, r io.Reader) (string, error) {
	if songID == "" {
		return "", errors.New("song ID cannot be empty")
	}

	tmp, err := os.CreateTemp(s.basePath, ".upload-*")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck // gone after a successful rename

	n, err := io.Copy(tmp, io.LimitReader(r, MaxUploadBytes+1))
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return "", fmt.Errorf("write upload: %w", err)
	}
	if n == 0 {
		return "", errors.New("upload is empty")
	}
	if n > MaxUploadBytes {
		return "", ErrTooLarge
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Rename(tmp.Name(), s.Path(songID)); err != nil {
		return "", fmt.Errorf("store upload: %w", err)
	}
	return RelPath(songID), nil
}

// Exists reports whether a file is stored for the song.
func (s *Storage) Exists(songID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, err := os.Stat(s.Path(songID))
	return err == nil
}

// Delete removes the song's file. Missing files are not an error.
func (s *Storage) Delete(songID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.Path(songID)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("delete media file: %w", err)
	}
	return nil
}
