package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/corkboard/core/internal/domain/entities"
	"github.com/corkboard/core/internal/infrastructure/config"
	"github.com/corkboard/core/internal/ports"
)

// extensions maps the accepted image MIME types to their stored extension.
var extensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// LocalStore keeps uploaded widget assets on the local filesystem and
// serves them under a configured base URL.
type LocalStore struct {
	path        string
	baseURL     string
	maxFileSize int64
}

// NewLocalStore creates a file store rooted at the configured path.
func NewLocalStore(cfg config.StorageConfig) (ports.FileStore, error) {
	if err := os.MkdirAll(cfg.Path, 0o755); err != nil {
		return nil, fmt.Errorf("create storage directory: %w", err)
	}

	return &LocalStore{
		path:        cfg.Path,
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		maxFileSize: cfg.MaxFileSize,
	}, nil
}

// Save validates and writes the upload, returning its public URL. The
// stored name is a fresh UUID so client names never touch the filesystem.
func (s *LocalStore) Save(_ context.Context, name string, contentType string, data []byte) (string, error) {
	ext, ok := extensions[contentType]
	if !ok {
		return "", entities.ErrInvalidFileType
	}

	if int64(len(data)) > s.maxFileSize {
		return "", entities.ErrFileTooLarge
	}

	filename := uuid.New().String() + ext
	if err := os.WriteFile(filepath.Join(s.path, filename), data, 0o644); err != nil {
		return "", fmt.Errorf("write upload %q: %w", name, err)
	}

	return s.baseURL + "/" + filename, nil
}

// Delete removes a stored asset by its public URL. Unknown URLs are a no-op.
func (s *LocalStore) Delete(_ context.Context, url string) error {
	filename := filepath.Base(url)
	if filename == "." || filename == "/" || strings.Contains(filename, "..") {
		return nil
	}

	err := os.Remove(filepath.Join(s.path, filename))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete upload: %w", err)
	}

	return nil
}
