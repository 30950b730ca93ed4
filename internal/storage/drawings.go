// Package storage keeps the drawing attached to a submission. The drawing is
// an opaque artifact; nothing here looks inside it.
package storage

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/SAP-F-2025/mmse-service/internal/config"
)

// RefPrefix marks a drawing reference that points into the object store.
const RefPrefix = "minio://"

var ErrMalformedDataURL = errors.New("malformed data URL")

// DrawingStore persists a drawing and returns the reference saved with the
// submission.
type DrawingStore interface {
	Save(ctx context.Context, userID, drawing string) (string, error)
	// Delete removes what Save stored under ref. Refs the store does not own
	// are ignored.
	Delete(ctx context.Context, ref string) error
}

// InlineStore keeps the drawing as submitted, inside the database row.
type InlineStore struct{}

func (InlineStore) Save(_ context.Context, _ string, drawing string) (string, error) {
	return drawing, nil
}

func (InlineStore) Delete(context.Context, string) error { return nil }

// ObjectAPI is the part of the minio client the store uses.
type ObjectAPI interface {
	BucketExists(ctx context.Context, bucketName string) (bool, error)
	MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	RemoveObject(ctx context.Context, bucketName, objectName string, opts minio.RemoveObjectOptions) error
}

// MinioStore uploads drawings to a bucket.
type MinioStore struct {
	api    ObjectAPI
	bucket string
	logger *slog.Logger
}

// NewMinioStore connects to the configured endpoint and creates the bucket
// when it does not exist yet.
func NewMinioStore(ctx context.Context, cfg config.StorageConfig, logger *slog.Logger) (*MinioStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	store := NewMinioStoreWithAPI(client, cfg.Bucket, logger)
	if err := store.EnsureBucket(ctx); err != nil {
		return nil, err
	}
	return store, nil
}

func NewMinioStoreWithAPI(api ObjectAPI, bucket string, logger *slog.Logger) *MinioStore {
	return &MinioStore{api: api, bucket: bucket, logger: logger}
}

func (s *MinioStore) EnsureBucket(ctx context.Context) error {
	exists, err := s.api.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket %s: %w", s.bucket, err)
	}
	if exists {
		return nil
	}
	if err := s.api.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("failed to create bucket %s: %w", s.bucket, err)
	}
	s.logger.Info("Created drawing bucket", "bucket", s.bucket)
	return nil
}

// Save uploads the drawing under drawings/<user>/<uuid>. Data URLs are
// decoded first; anything else is stored as raw bytes.
func (s *MinioStore) Save(ctx context.Context, userID, drawing string) (string, error) {
	data, contentType, err := DecodeDataURL(drawing)
	if errors.Is(err, ErrMalformedDataURL) {
		return "", err
	}
	if err != nil {
		data, contentType = []byte(drawing), "application/octet-stream"
	}

	key := fmt.Sprintf("drawings/%s/%s%s", userID, uuid.NewString(), extension(contentType))
	if _, err := s.api.PutObject(ctx, s.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	}); err != nil {
		return "", fmt.Errorf("failed to upload drawing: %w", err)
	}

	s.logger.Debug("Stored drawing", "bucket", s.bucket, "key", key, "size", len(data))
	return RefPrefix + s.bucket + "/" + key, nil
}

// Delete removes an object saved by this store.
func (s *MinioStore) Delete(ctx context.Context, ref string) error {
	path, ok := strings.CutPrefix(ref, RefPrefix)
	if !ok {
		return nil
	}
	bucket, key, ok := strings.Cut(path, "/")
	if !ok || bucket != s.bucket {
		return nil
	}
	if err := s.api.RemoveObject(ctx, bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to remove drawing: %w", err)
	}
	return nil
}

var errNotDataURL = errors.New("not a data URL")

// DecodeDataURL splits a base64 data URL into its bytes and media type.
func DecodeDataURL(s string) ([]byte, string, error) {
	rest, ok := strings.CutPrefix(s, "data:")
	if !ok {
		return nil, "", errNotDataURL
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return nil, "", ErrMalformedDataURL
	}
	mediaType, isBase64 := strings.CutSuffix(meta, ";base64")
	if !isBase64 {
		return nil, "", fmt.Errorf("%w: only base64 payloads are supported", ErrMalformedDataURL)
	}
	if mediaType == "" {
		mediaType = "text/plain"
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrMalformedDataURL, err)
	}
	return data, mediaType, nil
}

func extension(contentType string) string {
	switch contentType {
	case "image/png":
		return ".png"
	case "image/jpeg":
		return ".jpg"
	case "image/svg+xml":
		return ".svg"
	}
	return ""
}
