// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package images

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/danielhkuo/petitions/auth"
	"github.com/danielhkuo/petitions/metrics"
	"github.com/dustin/go-humanize"
	"github.com/gabriel-vasile/mimetype"
)

var (
	ErrNotFound        = errors.New("image not found")
	ErrUnsupportedType = errors.New("photo must be image/jpeg, image/png or image/gif")
	ErrContentMismatch = errors.New("image content does not match its content type")
	ErrEmpty           = errors.New("empty image")
)

// MaxImageSize bounds an uploaded image.
const MaxImageSize = 10 << 20

var extensions = map[string]string{
	"image/jpeg": ".jpeg",
	"image/png":  ".png",
	"image/gif":  ".gif",
}

// Store keeps image files in a single directory. Records in the database
// hold only the generated filename.
type Store struct {
	dir string
}

// NewStore creates dir if needed
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("images: create %s: %w", dir, err)
	}
	return &Store{dir: dir}, nil
}

// Check validates an upload against its declared content type and returns
// the file extension to store it under.
func Check(data []byte, contentType string) (string, error) {
	ext, ok := ExtensionFor(contentType)
	if !ok {
		return "", ErrUnsupportedType
	}
	if len(data) == 0 {
		return "", ErrEmpty
	}
	if sniffed := Sniff(data); sniffed != normalize(contentType) {
		return "", fmt.Errorf("%w: declared %s, got %s", ErrContentMismatch, contentType, sniffed)
	}
	return ext, nil
}

// ExtensionFor maps a supported MIME type to a file extension.
func ExtensionFor(contentType string) (string, bool) {
	ext, ok := extensions[normalize(contentType)]
	return ext, ok
}

// normalize reduces a Content-Type header to its lower-cased media type,
// dropping parameters. A malformed header normalizes to "".
func normalize(contentType string) string {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return ""
	}
	return mediaType
}

// Sniff detects the MIME type of data from its leading bytes.
func Sniff(data []byte) string {
	return mimetype.Detect(data).String()
}

// MimeForFilename maps a stored filename back to its content type.
func MimeForFilename(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".jpeg", ".jpg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	}
	return "application/octet-stream"
}

// Save writes data under a new random filename with extension ext and
// returns the filename.
func (s *Store) Save(data []byte, ext string) (string, error) {
	id, err := auth.GenerateID(16)
	if err != nil {
		return "", err
	}
	filename := id + ext

	if err := os.WriteFile(filepath.Join(s.dir, filename), data, 0o644); err != nil {
		return "", fmt.Errorf("images: write %s: %w", filename, err)
	}

	metrics.AddImageBytes(len(data))
	slog.Info("image stored", "filename", filename, "size", humanize.Bytes(uint64(len(data))))
	return filename, nil
}

// Remove deletes a stored image. Removing a missing file or an empty name
// is not an error.
func (s *Store) Remove(filename string) error {
	if filename == "" {
		return nil
	}
	path, err := s.path(filename)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("images: remove %s: %w", filename, err)
	}
	return nil
}

// Read returns a stored image and its content type.
func (s *Store) Read(filename string) ([]byte, string, error) {
	path, err := s.path(filename)
	if err != nil {
		return nil, "", err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, "", ErrNotFound
	}
	if err != nil {
		return nil, "", fmt.Errorf("images: read %s: %w", filename, err)
	}
	return data, MimeForFilename(filename), nil
}

// path refuses names that would escape the store directory.
func (s *Store) path(filename string) (string, error) {
	if filename == "" || filename != filepath.Base(filename) || strings.HasPrefix(filename, ".") {
		return "", ErrNotFound
	}
	return filepath.Join(s.dir, filename), nil
}
