package export

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lidyk-ops/SportScope/internal/domain/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func completedAnalysis(name, thumbKey string) *entity.ClipAnalysis {
	a := entity.NewClipAnalysis(entity.FocusOffense, "u/"+name, name, 100, "", 3)
	a.MarkProcessing()
	a.MarkCompleted(entity.PlayBreakdown{
		Summary:      "Play action deep shot, \"mills\" concept",
		PlayType:     "play action pass",
		RouteExample: "post-dig",
	}, "gemini-2.0-flash", 6.25)
	a.ThumbnailKey = thumbKey
	a.CreatedAt = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return a
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	err := WriteCSV(&buf, []*entity.ClipAnalysis{
		completedAnalysis("play1.mp4", ""),
		completedAnalysis("play2.mp4", ""),
	})
	require.NoError(t, err)

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, csvHeader, records[0])
	assert.Equal(t, "play1.mp4", records[1][3])
	assert.Equal(t, `Play action deep shot, "mills" concept`, records[1][4])
	assert.Equal(t, "play action pass", records[1][5])
	assert.Equal(t, "6.25", records[1][8])
	assert.Equal(t, "2026-03-01T12:00:00Z", records[1][1])
}

func TestWriteCSVEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, nil))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 1) // header only
}

// fakeStorage serves canned thumbnail bytes.
type fakeStorage struct {
	thumbs map[string][]byte
}

func (f *fakeStorage) UploadClip(context.Context, string, io.Reader, int64, string) error { return nil }
func (f *fakeStorage) DownloadClip(context.Context, string, string) error                 { return nil }
func (f *fakeStorage) UploadThumbnail(context.Context, string, io.Reader, int64) error    { return nil }
func (f *fakeStorage) Remove(context.Context, string, string) error                       { return nil }

func (f *fakeStorage) OpenThumbnail(_ context.Context, key string) (io.ReadCloser, error) {
	data, ok := f.thumbs[key]
	if !ok {
		return nil, fmt.Errorf("thumbnail %s not found", key)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func TestWriteBundle(t *testing.T) {
	withThumb := completedAnalysis("play1.mp4", "thumbs/a.jpg")
	withThumb.ID = uuid.New()
	noThumb := completedAnalysis("play2.mp4", "")

	storage := &fakeStorage{thumbs: map[string][]byte{"thumbs/a.jpg": []byte("jpegdata")}}

	var buf bytes.Buffer
	err := WriteBundle(t.Context(), &buf, []*entity.ClipAnalysis{withThumb, noThumb}, storage)
	require.NoError(t, err)

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)
	require.Len(t, zr.File, 2)

	names := []string{zr.File[0].Name, zr.File[1].Name}
	assert.Contains(t, names, "results.csv")

	var thumbName string
	for _, n := range names {
		if strings.HasPrefix(n, "thumbnails/") {
			thumbName = n
		}
	}
	assert.Equal(t, "thumbnails/"+withThumb.ID.String()+".jpg", thumbName)

	rc, err := zr.Open(thumbName)
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	rc.Close()
	assert.Equal(t, []byte("jpegdata"), data)
}

func TestWriteBundleMissingThumbnail(t *testing.T) {
	a := completedAnalysis("play1.mp4", "thumbs/gone.jpg")

	var buf bytes.Buffer
	err := WriteBundle(t.Context(), &buf, []*entity.ClipAnalysis{a}, &fakeStorage{thumbs: map[string][]byte{}})
	require.ErrorContains(t, err, "thumbs/gone.jpg")
}
