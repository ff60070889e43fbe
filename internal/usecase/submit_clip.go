package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/lidyk-ops/SportScope/internal/domain/entity"
	"github.com/lidyk-ops/SportScope/internal/domain/port"
	"github.com/lidyk-ops/SportScope/internal/infra/metrics"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var ErrMissingAPIKey = errors.New("no api key provided and no server default configured")

type SubmitClipUseCase struct {
	repo          port.AnalysisRepository
	storage       port.ClipStorage
	publisher     port.RequestPublisher
	logger        *zap.Logger
	maxRetries    int
	hasDefaultKey bool
}

type SubmitClipConfig struct {
	MaxRetries    int
	HasDefaultKey bool
}

type SubmitClipInput struct {
	Reader       io.Reader
	Size         int64
	OriginalName string
	ContentType  string
	Focus        entity.Focus
	APIKey       string
	UserEmail    string
}

func NewSubmitClipUseCase(
	repo port.AnalysisRepository,
	storage port.ClipStorage,
	publisher port.RequestPublisher,
	logger *zap.Logger,
	cfg SubmitClipConfig,
) *SubmitClipUseCase {
	return &SubmitClipUseCase{
		repo:          repo,
		storage:       storage,
		publisher:     publisher,
		logger:        logger,
		maxRetries:    cfg.MaxRetries,
		hasDefaultKey: cfg.HasDefaultKey,
	}
}

// Execute stores the uploaded clip, records the analysis as PENDING, and
// hands it to the worker via the request queue.
func (uc *SubmitClipUseCase) Execute(ctx context.Context, in SubmitClipInput) (*entity.ClipAnalysis, error) {
	tracer := otel.Tracer("usecase")
	ctx, span := tracer.Start(ctx, "SubmitClipUseCase.Execute")
	defer span.End()

	if in.APIKey == "" && !uc.hasDefaultKey {
		return nil, ErrMissingAPIKey
	}

	clipKey := clipObjectKey(in.OriginalName)
	span.SetAttributes(attribute.String("clip.key", clipKey))

	if err := uc.storage.UploadClip(ctx, clipKey, in.Reader, in.Size, in.ContentType); err != nil {
		return nil, fmt.Errorf("store clip: %w", err)
	}

	a := entity.NewClipAnalysis(in.Focus, clipKey, in.OriginalName, in.Size, in.UserEmail, uc.maxRetries)
	if err := uc.repo.Create(ctx, a); err != nil {
		uc.removeClip(ctx, clipKey)
		return nil, fmt.Errorf("create analysis record: %w", err)
	}

	msg := entity.AnalysisRequestMessage{
		AnalysisID: a.ID,
		ClipKey:    clipKey,
		FileSize:   in.Size,
		Focus:      in.Focus,
		APIKey:     in.APIKey,
		UserEmail:  in.UserEmail,
	}
	data, _ := json.Marshal(msg)
	if err := uc.publisher.PublishRequest(ctx, data); err != nil {
		a.MarkFailed("publish request: " + err.Error())
		_ = uc.repo.Update(ctx, a)
		uc.removeClip(ctx, clipKey)
		return nil, fmt.Errorf("publish analysis request: %w", err)
	}

	metrics.ClipsUploadedTotal.Inc()
	metrics.ClipBytesUploadedTotal.Add(float64(in.Size))

	uc.logger.Info("clip submitted for analysis",
		zap.String("analysis_id", a.ID.String()),
		zap.String("clip_key", clipKey),
		zap.String("focus", string(in.Focus)),
		zap.Int64("file_size", in.Size),
	)
	return a, nil
}

// removeClip drops a clip that will never be analyzed. Best effort: the
// caller is already failing the request.
func (uc *SubmitClipUseCase) removeClip(ctx context.Context, clipKey string) {
	if err := uc.storage.Remove(ctx, clipKey, ""); err != nil {
		uc.logger.Warn("failed to remove orphaned clip", zap.String("clip_key", clipKey), zap.Error(err))
	}
}

func clipObjectKey(originalName string) string {
	safe := strings.ReplaceAll(originalName, " ", "_")
	safe = strings.ReplaceAll(safe, "/", "_")
	return fmt.Sprintf("clip_%d_%s", time.Now().UnixNano(), safe)
}
