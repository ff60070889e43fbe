package port

import (
	"context"
	"io"
)

type ClipStorage interface {
	UploadClip(ctx context.Context, objectKey string, reader io.Reader, size int64, contentType string) error
	DownloadClip(ctx context.Context, objectKey string, destPath string) error
	UploadThumbnail(ctx context.Context, objectKey string, reader io.Reader, size int64) error
	OpenThumbnail(ctx context.Context, objectKey string) (io.ReadCloser, error)
	Remove(ctx context.Context, clipKey, thumbnailKey string) error
}
