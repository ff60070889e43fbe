package port

import (
	"context"

	"github.com/google/uuid"
	"github.com/lidyk-ops/SportScope/internal/domain/entity"
)

type AnalysisRepository interface {
	Create(ctx context.Context, a *entity.ClipAnalysis) error
	Update(ctx context.Context, a *entity.ClipAnalysis) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.ClipAnalysis, error)
	List(ctx context.Context, limit, offset int) ([]*entity.ClipAnalysis, error)
	ListCompleted(ctx context.Context) ([]*entity.ClipAnalysis, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
