package port

import "context"

type ProbeResult struct {
	Duration float64
}

type MediaProber interface {
	Probe(ctx context.Context, videoPath string) (*ProbeResult, error)
	ExtractThumbnail(ctx context.Context, videoPath string, outputPath string) error
}
