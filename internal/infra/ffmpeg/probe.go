package ffmpeg

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/lidyk-ops/SportScope/internal/domain/port"
	"go.uber.org/zap"
)

// Prober shells out to ffprobe/ffmpeg for clip metadata and a single
// thumbnail frame. All video understanding beyond that is Gemini's job.
type Prober struct {
	logger *zap.Logger
}

func NewProber(logger *zap.Logger) *Prober {
	return &Prober{logger: logger}
}

func (p *Prober) Probe(ctx context.Context, videoPath string) (*port.ProbeResult, error) {
	cmd := exec.CommandContext(ctx, "ffprobe",
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		videoPath,
	)
	output, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("ffprobe: %w", err)
	}

	durationStr := strings.TrimSpace(string(output))
	duration, err := strconv.ParseFloat(durationStr, 64)
	if err != nil {
		return nil, fmt.Errorf("parse duration %q: %w", durationStr, err)
	}

	p.logger.Debug("clip probed", zap.Float64("duration", duration))
	return &port.ProbeResult{Duration: duration}, nil
}

// ExtractThumbnail writes a single JPEG frame from one second in (or the
// first frame for sub-second clips).
func (p *Prober) ExtractThumbnail(ctx context.Context, videoPath string, outputPath string) error {
	cmd := exec.CommandContext(ctx, "ffmpeg",
		"-ss", "00:00:01",
		"-i", videoPath,
		"-frames:v", "1",
		"-q:v", "3",
		"-y",
		outputPath,
	)
	output, err := cmd.CombinedOutput()
	if err != nil {
		// Retry from the very first frame for clips shorter than the seek.
		cmd = exec.CommandContext(ctx, "ffmpeg",
			"-i", videoPath,
			"-frames:v", "1",
			"-q:v", "3",
			"-y",
			outputPath,
		)
		if output2, err2 := cmd.CombinedOutput(); err2 != nil {
			return fmt.Errorf("ffmpeg thumbnail: %w, output: %s %s", err2, string(output), string(output2))
		}
	}
	return nil
}
