package store

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/i474232898/weatherpi/internal/weather"
)

// DefaultObjectKey is the object name the record is stored under.
const DefaultObjectKey = "weatherpi/forecast-cache.json"

// MinIOConfig holds S3-compatible connection settings.
type MinIOConfig struct {
	Endpoint  string // e.g., "localhost:9000"
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// ObjectStore keeps the record as a single JSON object in a bucket.
type ObjectStore struct {
	client *minio.Client
	bucket string
	key    string
}

// NewObjectStore connects to the endpoint and creates the bucket if needed.
func NewObjectStore(ctx context.Context, cfg MinIOConfig) (*ObjectStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket existence: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create bucket: %w", err)
		}
	}

	return &ObjectStore{client: client, bucket: cfg.Bucket, key: DefaultObjectKey}, nil
}

func (s *ObjectStore) Load(ctx context.Context) (weather.Record, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, s.key, minio.GetObjectOptions{})
	if err != nil {
		return weather.Record{}, s.toLoadError(err)
	}
	defer obj.Close()

	// GetObject is lazy: a missing key only surfaces on the first read.
	data, err := io.ReadAll(obj)
	if err != nil {
		return weather.Record{}, s.toLoadError(err)
	}
	return decodeRecord(data)
}

func (s *ObjectStore) Save(ctx context.Context, rec weather.Record) error {
	data, err := encodeRecord(rec)
	if err != nil {
		return fmt.Errorf("encode cache record: %w", err)
	}
	_, err = s.client.PutObject(ctx, s.bucket, s.key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	if err != nil {
		return fmt.Errorf("failed to upload to minio: %w", err)
	}
	return nil
}

func (s *ObjectStore) toLoadError(err error) error {
	if minio.ToErrorResponse(err).Code == "NoSuchKey" {
		return weather.ErrCacheMiss
	}
	return fmt.Errorf("failed to read from minio: %w", err)
}
