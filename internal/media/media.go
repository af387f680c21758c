// Package media uploads and deletes the images and documents attached to posts.
// Providers return public URLs and accept those URLs back for deletion.
package media

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/JaimeStill/school-feed/pkg/storage"
)

var (
	ErrEmptyFile  = errors.New("media: empty file")
	ErrInvalidURL = errors.New("media: url not owned by provider")
	ErrProvider   = errors.New("media: provider error")
)

// File is an uploaded attachment held in memory.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// Size returns the file length in bytes.
func (f File) Size() int64 {
	return int64(len(f.Data))
}

// DetectContentType prefers the declared type and sniffs the content otherwise.
func DetectContentType(declared string, data []byte) string {
	if declared != "" && declared != "application/octet-stream" {
		return declared
	}
	return http.DetectContentType(data)
}

// ProgressFunc receives the upload completion percentage, 0 through 100.
type ProgressFunc func(percent int)

// System is the media store contract used by posts.
type System interface {
	UploadImage(ctx context.Context, f File, bucket string) (string, error)
	DeleteImage(ctx context.Context, url, bucket string) error
	UploadDocument(ctx context.Context, f File, bucket string, onProgress ProgressFunc) (string, error)
	DeleteDocument(ctx context.Context, url, bucket string) error
}

// New returns the provider selected by cfg.Provider.
func New(cfg *Config, store storage.System, logger *slog.Logger) (System, error) {
	switch cfg.Provider {
	case "", ProviderStorage:
		return newStorageProvider(store, cfg.PublicURL, logger), nil
	case ProviderCloudinary:
		return newCloudinaryProvider(cfg.CloudinaryURL, logger)
	default:
		return nil, fmt.Errorf("unknown media provider: %s", cfg.Provider)
	}
}

func sanitizeFilename(name string) string {
	name = filepath.Base(name)
	replacer := strings.NewReplacer(
		" ", "_",
		"/", "_",
		"\\", "_",
		":", "_",
		"*", "_",
		"?", "_",
		"\"", "_",
		"<", "_",
		">", "_",
		"|", "_",
		"%", "_",
		"#", "_",
	)
	name = replacer.Replace(name)
	if name == "." || name == "" {
		return "file"
	}
	return name
}
