package port

import (
	"context"

	"github.com/lidyk-ops/SportScope/internal/domain/entity"
)

// ClipAnalyzer turns a local clip file into structured play commentary.
type ClipAnalyzer interface {
	AnalyzeClip(ctx context.Context, clipPath string, focus entity.Focus, apiKey string) (*entity.PlayBreakdown, error)
	Model() string
}
