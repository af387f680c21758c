package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path"
	"strings"

	"github.com/JaimeStill/school-feed/pkg/lifecycle"
	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// s3Storage implements System on an S3-compatible bucket.
// Keys are stored beneath an optional path prefix.
type s3Storage struct {
	client *s3.Client
	bucket string
	prefix string
	logger *slog.Logger
}

func newS3(cfg *Config, logger *slog.Logger) (System, error) {
	if cfg.S3.Bucket == "" {
		return nil, fmt.Errorf("s3.bucket required")
	}

	opts := s3.Options{
		Region:       cfg.S3.Region,
		UsePathStyle: cfg.S3.UsePathStyle,
	}
	if cfg.S3.AccessKeyID != "" {
		opts.Credentials = credentials.NewStaticCredentialsProvider(
			cfg.S3.AccessKeyID, cfg.S3.SecretAccessKey, "",
		)
	}
	if cfg.S3.Endpoint != "" {
		opts.EndpointResolver = s3.EndpointResolverFromURL(cfg.S3.Endpoint)
	}

	return &s3Storage{
		client: s3.New(opts),
		bucket: cfg.S3.Bucket,
		prefix: strings.Trim(cfg.S3.PathPrefix, "/"),
		logger: logger.With("system", "storage", "backend", BackendS3),
	}, nil
}

func (s *s3Storage) Start(lc *lifecycle.Coordinator) error {
	s.logger.Info("starting storage system", "bucket", s.bucket, "prefix", s.prefix)

	lc.OnStartup(func() {
		_, err := s.client.HeadBucket(lc.Context(), &s3.HeadBucketInput{
			Bucket: aws.String(s.bucket),
		})
		if err != nil {
			s.logger.Error("bucket check failed", "bucket", s.bucket, "error", err)
			return
		}
		s.logger.Info("storage bucket reachable")
	})

	return nil
}

func (s *s3Storage) Store(ctx context.Context, key string, data []byte) error {
	objectKey, err := s.objectKey(key)
	if err != nil {
		return err
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(objectKey),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(http.DetectContentType(data)),
	})
	if err != nil {
		return fmt.Errorf("put object: %w", err)
	}
	return nil
}

func (s *s3Storage) Retrieve(ctx context.Context, key string) ([]byte, error) {
	objectKey, err := s.objectKey(key)
	if err != nil {
		return nil, err
	}

	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(objectKey),
	})
	if err != nil {
		if isMissing(err) {
			return nil, ErrNotFound
		}
		if hasStatus(err, http.StatusForbidden) {
			return nil, ErrPermissionDenied
		}
		return nil, fmt.Errorf("get object: %w", err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("read object: %w", err)
	}
	return data, nil
}

func (s *s3Storage) Delete(ctx context.Context, key string) error {
	objectKey, err := s.objectKey(key)
	if err != nil {
		return err
	}

	_, err = s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(objectKey),
	})
	if err != nil {
		if isMissing(err) {
			return nil
		}
		if hasStatus(err, http.StatusForbidden) {
			return ErrPermissionDenied
		}
		return fmt.Errorf("delete object: %w", err)
	}
	return nil
}

func (s *s3Storage) Validate(ctx context.Context, key string) (bool, error) {
	objectKey, err := s.objectKey(key)
	if err != nil {
		return false, err
	}

	_, err = s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(objectKey),
	})
	if err != nil {
		if isMissing(err) {
			return false, nil
		}
		if hasStatus(err, http.StatusForbidden) {
			return false, ErrPermissionDenied
		}
		return false, fmt.Errorf("head object: %w", err)
	}
	return true, nil
}

func (s *s3Storage) objectKey(key string) (string, error) {
	if key == "" {
		return "", ErrInvalidKey
	}

	cleaned := path.Clean("/" + key)
	if cleaned == "/" || strings.Contains(key, "..") {
		return "", ErrInvalidKey
	}
	cleaned = strings.TrimPrefix(cleaned, "/")

	if s.prefix == "" {
		return cleaned, nil
	}
	return s.prefix + "/" + cleaned, nil
}

func isMissing(err error) bool {
	var noSuchKey *types.NoSuchKey
	if errors.As(err, &noSuchKey) {
		return true
	}
	var notFound *types.NotFound
	if errors.As(err, &notFound) {
		return true
	}
	return hasStatus(err, http.StatusNotFound)
}

func hasStatus(err error, status int) bool {
	var respErr *awshttp.ResponseError
	return errors.As(err, &respErr) && respErr.HTTPStatusCode() == status
}
