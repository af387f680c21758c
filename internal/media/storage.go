package media

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/JaimeStill/school-feed/pkg/storage"
	"github.com/google/uuid"
)

// storageProvider keeps media in the configured blob storage and serves it
// beneath publicURL. Keys take the form <bucket>/<uuid>-<filename>.
type storageProvider struct {
	store     storage.System
	publicURL string
	logger    *slog.Logger
}

func newStorageProvider(store storage.System, publicURL string, logger *slog.Logger) *storageProvider {
	return &storageProvider{
		store:     store,
		publicURL: strings.TrimRight(publicURL, "/"),
		logger:    logger.With("system", "media", "provider", ProviderStorage),
	}
}

func (p *storageProvider) UploadImage(ctx context.Context, f File, bucket string) (string, error) {
	return p.upload(ctx, f, bucket, nil)
}

func (p *storageProvider) UploadDocument(ctx context.Context, f File, bucket string, onProgress ProgressFunc) (string, error) {
	return p.upload(ctx, f, bucket, onProgress)
}

func (p *storageProvider) DeleteImage(ctx context.Context, url, bucket string) error {
	return p.delete(ctx, url, bucket)
}

func (p *storageProvider) DeleteDocument(ctx context.Context, url, bucket string) error {
	return p.delete(ctx, url, bucket)
}

func (p *storageProvider) upload(ctx context.Context, f File, bucket string, onProgress ProgressFunc) (string, error) {
	if len(f.Data) == 0 {
		return "", ErrEmptyFile
	}

	var buf bytes.Buffer
	buf.Grow(len(f.Data))
	if _, err := io.Copy(&buf, newProgressReader(bytes.NewReader(f.Data), f.Size(), onProgress)); err != nil {
		return "", fmt.Errorf("read %s: %w", f.Name, err)
	}

	key := fmt.Sprintf("%s/%s-%s", bucket, uuid.New(), sanitizeFilename(f.Name))
	if err := p.store.Store(ctx, key, buf.Bytes()); err != nil {
		return "", fmt.Errorf("store %s: %w", key, err)
	}

	p.logger.Info("media stored", "key", key, "size", f.Size())
	return p.publicURL + "/" + key, nil
}

func (p *storageProvider) delete(ctx context.Context, url, bucket string) error {
	key, err := p.keyFromURL(url, bucket)
	if err != nil {
		return err
	}

	if err := p.store.Delete(ctx, key); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}

	p.logger.Info("media deleted", "key", key)
	return nil
}

func (p *storageProvider) keyFromURL(url, bucket string) (string, error) {
	key, ok := strings.CutPrefix(url, p.publicURL+"/")
	if !ok || !strings.HasPrefix(key, bucket+"/") {
		return "", fmt.Errorf("%w: %s", ErrInvalidURL, url)
	}
	return key, nil
}
