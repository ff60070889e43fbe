package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/lidyk-ops/SportScope/internal/domain/entity"
	"github.com/lidyk-ops/SportScope/internal/domain/port"
	"github.com/lidyk-ops/SportScope/internal/infra/metrics"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

type AnalyzeClipUseCase struct {
	repo           port.AnalysisRepository
	storage        port.ClipStorage
	prober         port.MediaProber
	analyzer       port.ClipAnalyzer
	publisher      port.StatusPublisher
	dlq            port.DLQPublisher
	notifier       port.FailureNotifier
	logger         *zap.Logger
	tempDir        string
	maxRetry       int
	maxClipSeconds float64
}

type AnalyzeClipConfig struct {
	TempDir        string
	MaxRetries     int
	MaxClipSeconds float64
}

func NewAnalyzeClipUseCase(
	repo port.AnalysisRepository,
	storage port.ClipStorage,
	prober port.MediaProber,
	analyzer port.ClipAnalyzer,
	publisher port.StatusPublisher,
	dlq port.DLQPublisher,
	notifier port.FailureNotifier,
	logger *zap.Logger,
	cfg AnalyzeClipConfig,
) *AnalyzeClipUseCase {
	return &AnalyzeClipUseCase{
		repo:           repo,
		storage:        storage,
		prober:         prober,
		analyzer:       analyzer,
		publisher:      publisher,
		dlq:            dlq,
		notifier:       notifier,
		logger:         logger,
		tempDir:        cfg.TempDir,
		maxRetry:       cfg.MaxRetries,
		maxClipSeconds: cfg.MaxClipSeconds,
	}
}

func (uc *AnalyzeClipUseCase) Execute(ctx context.Context, rawMsg []byte) error {
	tracer := otel.Tracer("usecase")
	ctx, span := tracer.Start(ctx, "AnalyzeClipUseCase.Execute")
	defer span.End()

	totalTimer := time.Now()

	var msg entity.AnalysisRequestMessage
	if err := json.Unmarshal(rawMsg, &msg); err != nil {
		uc.logger.Error("failed to unmarshal message", zap.Error(err), zap.ByteString("body", rawMsg))
		_ = uc.dlq.PublishToDLQ(ctx, rawMsg, "unmarshal_error: "+err.Error())
		return nil
	}

	span.SetAttributes(
		attribute.String("analysis.id", msg.AnalysisID.String()),
		attribute.String("analysis.clip_key", msg.ClipKey),
	)

	log := uc.logger.With(zap.String("analysis_id", msg.AnalysisID.String()), zap.String("clip_key", msg.ClipKey))

	a, err := uc.repo.FindByID(ctx, msg.AnalysisID)
	if err != nil {
		a = entity.NewClipAnalysis(msg.Focus, msg.ClipKey, "", msg.FileSize, msg.UserEmail, uc.maxRetry)
		a.ID = msg.AnalysisID
		if err := uc.repo.Create(ctx, a); err != nil {
			log.Error("failed to create analysis record", zap.Error(err))
			return fmt.Errorf("create analysis: %w", err)
		}
	}

	if !a.CanRetry() {
		log.Warn("analysis exhausted retries, sending to DLQ")
		_ = uc.handlePermanentFailure(ctx, a, msg, rawMsg, "max retries exceeded")
		return nil
	}

	a.MarkProcessing()
	if err := uc.repo.Update(ctx, a); err != nil {
		log.Error("failed to update analysis to PROCESSING", zap.Error(err))
		return fmt.Errorf("update analysis: %w", err)
	}

	metrics.ActiveWorkers.Inc()
	defer metrics.ActiveWorkers.Dec()

	if err := uc.analysisPipeline(ctx, a, msg, rawMsg, log); err != nil {
		return err
	}

	metrics.AnalysesProcessedTotal.WithLabelValues("completed").Inc()
	metrics.AnalysisStageDuration.WithLabelValues("total").Observe(time.Since(totalTimer).Seconds())

	return nil
}

func (uc *AnalyzeClipUseCase) analysisPipeline(
	ctx context.Context,
	a *entity.ClipAnalysis,
	msg entity.AnalysisRequestMessage,
	rawMsg []byte,
	log *zap.Logger,
) error {
	tracer := otel.Tracer("usecase")

	workDir := filepath.Join(uc.tempDir, a.ID.String())
	if err := os.MkdirAll(workDir, 0755); err != nil {
		return fmt.Errorf("create workdir: %w", err)
	}
	defer os.RemoveAll(workDir)

	// Download clip from storage
	dlStart := time.Now()
	ctx2, spanDl := tracer.Start(ctx, "download_clip")
	clipPath := filepath.Join(workDir, "clip"+filepath.Ext(msg.ClipKey))
	if err := uc.storage.DownloadClip(ctx2, msg.ClipKey, clipPath); err != nil {
		spanDl.End()
		log.Error("failed to download clip", zap.Error(err))
		return uc.handleRetryableFailure(ctx, a, msg, rawMsg, "download_clip: "+err.Error(), log)
	}
	spanDl.End()
	metrics.AnalysisStageDuration.WithLabelValues("download").Observe(time.Since(dlStart).Seconds())

	// Probe the clip; over-long clips fail permanently, a retry won't shrink them.
	ctx3, spanPr := tracer.Start(ctx, "probe_clip")
	probe, err := uc.prober.Probe(ctx3, clipPath)
	spanPr.End()
	if err != nil {
		log.Error("probe failed", zap.Error(err))
		return uc.handleRetryableFailure(ctx, a, msg, rawMsg, "probe_clip: "+err.Error(), log)
	}
	if uc.maxClipSeconds > 0 && probe.Duration > uc.maxClipSeconds {
		reason := fmt.Sprintf("clip too long: %.1fs exceeds limit of %.0fs", probe.Duration, uc.maxClipSeconds)
		log.Warn("rejecting over-long clip", zap.Float64("duration", probe.Duration))
		return uc.handlePermanentFailure(ctx, a, msg, rawMsg, reason)
	}

	// Thumbnail for the history view. Losing it does not fail the analysis.
	thStart := time.Now()
	ctx4, spanTh := tracer.Start(ctx, "extract_thumbnail")
	uc.attachThumbnail(ctx4, a, clipPath, workDir, log)
	spanTh.End()
	metrics.AnalysisStageDuration.WithLabelValues("thumbnail").Observe(time.Since(thStart).Seconds())

	// Gemini analysis
	genStart := time.Now()
	ctx5, spanGen := tracer.Start(ctx, "gemini_analyze")
	breakdown, err := uc.analyzer.AnalyzeClip(ctx5, clipPath, msg.Focus, msg.APIKey)
	spanGen.End()
	if err != nil {
		log.Error("gemini analysis failed", zap.Error(err))
		return uc.handleRetryableFailure(ctx, a, msg, rawMsg, "gemini_analyze: "+err.Error(), log)
	}
	metrics.AnalysisStageDuration.WithLabelValues("gemini").Observe(time.Since(genStart).Seconds())

	// Mark completed
	a.MarkCompleted(*breakdown, uc.analyzer.Model(), probe.Duration)
	if err := uc.repo.Update(ctx, a); err != nil {
		log.Error("failed to update analysis to COMPLETED", zap.Error(err))
		return fmt.Errorf("update analysis completed: %w", err)
	}

	uc.publishStatus(ctx, a, log)

	log.Info("analysis completed successfully",
		zap.String("play_type", a.PlayType),
		zap.Float64("duration_secs", a.ClipDuration),
	)

	return nil
}

func (uc *AnalyzeClipUseCase) attachThumbnail(ctx context.Context, a *entity.ClipAnalysis, clipPath, workDir string, log *zap.Logger) {
	thumbPath := filepath.Join(workDir, "thumb.jpg")
	if err := uc.prober.ExtractThumbnail(ctx, clipPath, thumbPath); err != nil {
		log.Warn("thumbnail extraction failed", zap.Error(err))
		return
	}

	f, err := os.Open(thumbPath)
	if err != nil {
		log.Warn("open thumbnail failed", zap.Error(err))
		return
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		log.Warn("stat thumbnail failed", zap.Error(err))
		return
	}

	thumbKey := fmt.Sprintf("%s.jpg", a.ID)
	if err := uc.storage.UploadThumbnail(ctx, thumbKey, f, stat.Size()); err != nil {
		log.Warn("thumbnail upload failed", zap.Error(err))
		return
	}
	a.ThumbnailKey = thumbKey
}

func (uc *AnalyzeClipUseCase) handleRetryableFailure(
	ctx context.Context,
	a *entity.ClipAnalysis,
	msg entity.AnalysisRequestMessage,
	rawMsg []byte,
	errMsg string,
	log *zap.Logger,
) error {
	a.MarkFailed(errMsg)
	_ = uc.repo.Update(ctx, a)

	if !a.CanRetry() {
		return uc.handlePermanentFailure(ctx, a, msg, rawMsg, errMsg)
	}

	metrics.RetryTotal.WithLabelValues(strconv.Itoa(a.Attempt)).Inc()
	uc.publishStatus(ctx, a, log)

	return fmt.Errorf("retryable failure (attempt %d/%d): %s", a.Attempt, a.MaxAttempts, errMsg)
}

func (uc *AnalyzeClipUseCase) handlePermanentFailure(
	ctx context.Context,
	a *entity.ClipAnalysis,
	msg entity.AnalysisRequestMessage,
	rawMsg []byte,
	errMsg string,
) error {
	a.MarkFailed(errMsg)
	_ = uc.repo.Update(ctx, a)

	_ = uc.dlq.PublishToDLQ(ctx, rawMsg, errMsg)

	uc.publishStatus(ctx, a, uc.logger)

	metrics.AnalysesProcessedTotal.WithLabelValues("dlq").Inc()

	if msg.UserEmail != "" {
		_ = uc.notifier.NotifyFailure(ctx, msg.UserEmail, a.ID.String(), msg.ClipKey, errMsg)
	}

	return nil
}

func (uc *AnalyzeClipUseCase) publishStatus(ctx context.Context, a *entity.ClipAnalysis, log *zap.Logger) {
	statusMsg := entity.AnalysisStatusMessage{
		AnalysisID:   a.ID,
		Status:       a.Status,
		ClipKey:      a.ClipKey,
		Summary:      a.Summary,
		PlayType:     a.PlayType,
		RouteExample: a.RouteExample,
		Duration:     a.ClipDuration,
		ErrorMessage: a.ErrorMessage,
		Attempt:      a.Attempt,
		MaxAttempts:  a.MaxAttempts,
	}
	data, _ := json.Marshal(statusMsg)
	if err := uc.publisher.PublishStatus(ctx, data); err != nil {
		log.Error("failed to publish status", zap.Error(err))
	}
}
