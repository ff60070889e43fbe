package ffmpeg

import (
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func requireFFmpeg(t *testing.T) {
	t.Helper()
	for _, bin := range []string{"ffmpeg", "ffprobe"} {
		if _, err := exec.LookPath(bin); err != nil {
			t.Skipf("%s not installed", bin)
		}
	}
}

func makeTestClip(t *testing.T) string {
	t.Helper()
	out := filepath.Join(t.TempDir(), "test.mp4")
	cmd := exec.Command("ffmpeg",
		"-f", "lavfi", "-i", "testsrc=duration=2:size=320x240:rate=5",
		"-pix_fmt", "yuv420p", "-y", out,
	)
	require.NoError(t, cmd.Run(), "generate test clip")
	return out
}

func TestProbe(t *testing.T) {
	requireFFmpeg(t)

	p := NewProber(zap.NewNop())
	res, err := p.Probe(t.Context(), makeTestClip(t))
	require.NoError(t, err)
	assert.InDelta(t, 2.0, res.Duration, 0.5)
}

func TestProbeMissingFile(t *testing.T) {
	requireFFmpeg(t)

	p := NewProber(zap.NewNop())
	_, err := p.Probe(t.Context(), filepath.Join(t.TempDir(), "nope.mp4"))
	assert.Error(t, err)
}

func TestExtractThumbnail(t *testing.T) {
	requireFFmpeg(t)

	p := NewProber(zap.NewNop())
	clip := makeTestClip(t)
	thumb := filepath.Join(t.TempDir(), "thumb.jpg")

	require.NoError(t, p.ExtractThumbnail(t.Context(), clip, thumb))
	assert.FileExists(t, thumb)
}
