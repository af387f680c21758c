package media

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"path"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/google/uuid"
)

const (
	resourceImage = "image"
	resourceRaw   = "raw"
)

// cloudinaryProvider uploads into a folder named after the bucket.
// Images use the image resource type and documents use raw.
type cloudinaryProvider struct {
	cld    *cloudinary.Cloudinary
	logger *slog.Logger
}

func newCloudinaryProvider(cloudinaryURL string, logger *slog.Logger) (*cloudinaryProvider, error) {
	cld, err := cloudinary.NewFromURL(cloudinaryURL)
	if err != nil {
		return nil, fmt.Errorf("cloudinary configuration: %w", err)
	}
	return &cloudinaryProvider{
		cld:    cld,
		logger: logger.With("system", "media", "provider", ProviderCloudinary),
	}, nil
}

func (p *cloudinaryProvider) UploadImage(ctx context.Context, f File, bucket string) (string, error) {
	return p.upload(ctx, f, bucket, resourceImage, nil)
}

func (p *cloudinaryProvider) UploadDocument(ctx context.Context, f File, bucket string, onProgress ProgressFunc) (string, error) {
	return p.upload(ctx, f, bucket, resourceRaw, onProgress)
}

func (p *cloudinaryProvider) DeleteImage(ctx context.Context, url, bucket string) error {
	return p.destroy(ctx, url, bucket, resourceImage)
}

func (p *cloudinaryProvider) DeleteDocument(ctx context.Context, url, bucket string) error {
	return p.destroy(ctx, url, bucket, resourceRaw)
}

func (p *cloudinaryProvider) upload(ctx context.Context, f File, bucket, resourceType string, onProgress ProgressFunc) (string, error) {
	if len(f.Data) == 0 {
		return "", ErrEmptyFile
	}

	params := uploader.UploadParams{
		Folder:       bucket,
		ResourceType: resourceType,
	}
	if resourceType == resourceRaw {
		params.PublicID = fmt.Sprintf("%s-%s", uuid.New(), sanitizeFilename(f.Name))
	}

	body := newProgressReader(bytes.NewReader(f.Data), f.Size(), onProgress)
	result, err := p.cld.Upload.Upload(ctx, body, params)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrProvider, err)
	}
	if result.Error.Message != "" {
		return "", fmt.Errorf("%w: %s", ErrProvider, result.Error.Message)
	}

	p.logger.Info("media uploaded", "public_id", result.PublicID, "resource_type", resourceType)
	return result.SecureURL, nil
}

func (p *cloudinaryProvider) destroy(ctx context.Context, rawURL, bucket, resourceType string) error {
	publicID, err := publicIDFromURL(rawURL, bucket, resourceType)
	if err != nil {
		return err
	}

	result, err := p.cld.Upload.Destroy(ctx, uploader.DestroyParams{
		PublicID:     publicID,
		ResourceType: resourceType,
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrProvider, err)
	}
	if result.Error.Message != "" {
		return fmt.Errorf("%w: %s", ErrProvider, result.Error.Message)
	}

	p.logger.Info("media destroyed", "public_id", publicID, "result", result.Result)
	return nil
}

// publicIDFromURL extracts the public id from a delivery URL of the form
// .../<resource>/upload/[v<version>/]<folder>/<name>[.<ext>].
// Raw resources keep their extension in the public id.
func publicIDFromURL(rawURL, bucket, resourceType string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrInvalidURL, rawURL)
	}

	_, rest, ok := strings.Cut(u.Path, "/upload/")
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrInvalidURL, rawURL)
	}

	if first, after, found := strings.Cut(rest, "/"); found && isVersion(first) {
		rest = after
	}

	if !strings.HasPrefix(rest, bucket+"/") {
		return "", fmt.Errorf("%w: %s", ErrInvalidURL, rawURL)
	}

	if resourceType != resourceRaw {
		rest = strings.TrimSuffix(rest, path.Ext(rest))
	}
	return rest, nil
}

func isVersion(segment string) bool {
	if len(segment) < 2 || segment[0] != 'v' {
		return false
	}
	for _, c := range segment[1:] {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
