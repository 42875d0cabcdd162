package photohost

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
)

// ErrInvalidKey is returned for keys that would escape the storage root.
var ErrInvalidKey = errors.New("invalid photo key")

// Local stores photos on disk under basePath and hands out URLs below
// baseURL. Files are written to a temp file and renamed into place so a
// re-upload replaces the previous image atomically.
type Local struct {
	basePath string
	baseURL  string
	logger   zerolog.Logger
}

// NewLocal ensures basePath exists. baseURL is the public prefix the photos
// are served under, e.g. "http://localhost:8080/uploads".
func NewLocal(basePath, baseURL string, logger zerolog.Logger) (*Local, error) {
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("create storage directory %s: %w", basePath, err)
	}
	return &Local{
		basePath: basePath,
		baseURL:  strings.TrimRight(baseURL, "/"),
		logger:   logger,
	}, nil
}

func (l *Local) UploadImage(_ context.Context, key string, image io.Reader) (string, error) {
	dst, err := l.Path(key)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", fmt.Errorf("create photo directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dst), ".upload-*")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	if _, err := io.Copy(tmp, image); err != nil {
		tmp.Close()
		_ = os.Remove(tmp.Name())
		return "", fmt.Errorf("write photo: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return "", fmt.Errorf("close photo: %w", err)
	}
	if err := os.Rename(tmp.Name(), dst); err != nil {
		_ = os.Remove(tmp.Name())
		return "", fmt.Errorf("store photo: %w", err)
	}

	photoURL := l.URL(key)
	l.logger.Debug().Str("key", key).Str("path", dst).Msg("photo stored")
	return photoURL, nil
}

// URL returns the public URL of key, escaping each path segment.
func (l *Local) URL(key string) string {
	segments := strings.Split(key, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return l.baseURL + "/" + strings.Join(segments, "/")
}

// Path maps a key to its file on disk, rejecting keys that leave basePath.
func (l *Local) Path(key string) (string, error) {
	clean := path.Clean("/" + key)
	if key == "" || clean == "/" || clean != "/"+key {
		return "", ErrInvalidKey
	}
	return filepath.Join(l.basePath, filepath.FromSlash(clean[1:])), nil
}
