package minio

import (
	"context"
	"fmt"
	"io"

	miniogo "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

type Storage struct {
	client      *miniogo.Client
	clipBucket  string
	thumbBucket string
}

type StorageConfig struct {
	Endpoint    string
	AccessKey   string
	SecretKey   string
	UseSSL      bool
	ClipBucket  string
	ThumbBucket string
}

func NewStorage(cfg StorageConfig) (*Storage, error) {
	client, err := miniogo.New(cfg.Endpoint, &miniogo.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	return &Storage{
		client:      client,
		clipBucket:  cfg.ClipBucket,
		thumbBucket: cfg.ThumbBucket,
	}, nil
}

func (s *Storage) EnsureBuckets(ctx context.Context) error {
	for _, bucket := range []string{s.clipBucket, s.thumbBucket} {
		exists, err := s.client.BucketExists(ctx, bucket)
		if err != nil {
			return fmt.Errorf("check bucket %s: %w", bucket, err)
		}
		if !exists {
			if err := s.client.MakeBucket(ctx, bucket, miniogo.MakeBucketOptions{}); err != nil {
				return fmt.Errorf("create bucket %s: %w", bucket, err)
			}
		}
	}
	return nil
}

func (s *Storage) UploadClip(ctx context.Context, objectKey string, reader io.Reader, size int64, contentType string) error {
	if contentType == "" {
		contentType = "video/mp4"
	}
	_, err := s.client.PutObject(ctx, s.clipBucket, objectKey, reader, size, miniogo.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("upload clip: %w", err)
	}
	return nil
}

func (s *Storage) DownloadClip(ctx context.Context, objectKey string, destPath string) error {
	return s.client.FGetObject(ctx, s.clipBucket, objectKey, destPath, miniogo.GetObjectOptions{})
}

func (s *Storage) UploadThumbnail(ctx context.Context, objectKey string, reader io.Reader, size int64) error {
	_, err := s.client.PutObject(ctx, s.thumbBucket, objectKey, reader, size, miniogo.PutObjectOptions{
		ContentType: "image/jpeg",
	})
	if err != nil {
		return fmt.Errorf("upload thumbnail: %w", err)
	}
	return nil
}

func (s *Storage) OpenThumbnail(ctx context.Context, objectKey string) (io.ReadCloser, error) {
	obj, err := s.client.GetObject(ctx, s.thumbBucket, objectKey, miniogo.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("open thumbnail: %w", err)
	}
	return obj, nil
}

// Remove deletes the stored objects for an analysis. A missing object is
// not an error: the worker may never have produced a thumbnail.
func (s *Storage) Remove(ctx context.Context, clipKey, thumbnailKey string) error {
	if clipKey != "" {
		if err := s.client.RemoveObject(ctx, s.clipBucket, clipKey, miniogo.RemoveObjectOptions{}); err != nil {
			return fmt.Errorf("remove clip: %w", err)
		}
	}
	if thumbnailKey != "" {
		if err := s.client.RemoveObject(ctx, s.thumbBucket, thumbnailKey, miniogo.RemoveObjectOptions{}); err != nil {
			return fmt.Errorf("remove thumbnail: %w", err)
		}
	}
	return nil
}
