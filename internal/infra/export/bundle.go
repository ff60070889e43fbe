package export

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/lidyk-ops/SportScope/internal/domain/entity"
	"github.com/lidyk-ops/SportScope/internal/domain/port"
)

// WriteBundle writes a zip archive containing results.csv plus the stored
// thumbnail for every analysis that has one.
func WriteBundle(ctx context.Context, w io.Writer, analyses []*entity.ClipAnalysis, storage port.ClipStorage) error {
	zw := zip.NewWriter(w)

	var buf bytes.Buffer
	if err := WriteCSV(&buf, analyses); err != nil {
		return err
	}

	csvEntry, err := zw.Create("results.csv")
	if err != nil {
		return fmt.Errorf("create csv entry: %w", err)
	}
	if _, err := csvEntry.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("write csv entry: %w", err)
	}

	for _, a := range analyses {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if a.ThumbnailKey == "" {
			continue
		}
		if err := addThumbnail(ctx, zw, a, storage); err != nil {
			return fmt.Errorf("add thumbnail for %s: %w", a.ID, err)
		}
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("close zip: %w", err)
	}
	return nil
}

func addThumbnail(ctx context.Context, zw *zip.Writer, a *entity.ClipAnalysis, storage port.ClipStorage) error {
	rc, err := storage.OpenThumbnail(ctx, a.ThumbnailKey)
	if err != nil {
		return err
	}
	defer rc.Close()

	entry, err := zw.Create(fmt.Sprintf("thumbnails/%s.jpg", a.ID))
	if err != nil {
		return err
	}

	_, err = io.Copy(entry, rc)
	return err
}
