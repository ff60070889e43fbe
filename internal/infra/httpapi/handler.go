package httpapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/lidyk-ops/SportScope/internal/domain/entity"
	"github.com/lidyk-ops/SportScope/internal/domain/port"
	"github.com/lidyk-ops/SportScope/internal/infra/export"
	"github.com/lidyk-ops/SportScope/internal/usecase"
	"go.uber.org/zap"
)

// ClipSubmitter accepts an uploaded clip and queues it for analysis.
type ClipSubmitter interface {
	Execute(ctx context.Context, in usecase.SubmitClipInput) (*entity.ClipAnalysis, error)
}

type Handler struct {
	submitter ClipSubmitter
	repo      port.AnalysisRepository
	storage   port.ClipStorage
	logger    *zap.Logger
	maxUpload int64
}

func NewHandler(submitter ClipSubmitter, repo port.AnalysisRepository, storage port.ClipStorage, logger *zap.Logger, maxUpload int64) *Handler {
	return &Handler{
		submitter: submitter,
		repo:      repo,
		storage:   storage,
		logger:    logger,
		maxUpload: maxUpload,
	}
}

type analysisResponse struct {
	ID           string  `json:"id"`
	Focus        string  `json:"focus"`
	Status       string  `json:"status"`
	OriginalName string  `json:"original_name"`
	Summary      string  `json:"summary,omitempty"`
	PlayType     string  `json:"play_type,omitempty"`
	RouteExample string  `json:"route_example,omitempty"`
	Model        string  `json:"model,omitempty"`
	ClipDuration float64 `json:"clip_duration_seconds,omitempty"`
	ErrorMessage string  `json:"error_message,omitempty"`
	HasThumbnail bool    `json:"has_thumbnail"`
	CreatedAt    string  `json:"created_at"`
	CompletedAt  string  `json:"completed_at,omitempty"`
}

func toResponse(a *entity.ClipAnalysis) analysisResponse {
	resp := analysisResponse{
		ID:           a.ID.String(),
		Focus:        string(a.Focus),
		Status:       string(a.Status),
		OriginalName: a.OriginalName,
		Summary:      a.Summary,
		PlayType:     a.PlayType,
		RouteExample: a.RouteExample,
		Model:        a.Model,
		ClipDuration: a.ClipDuration,
		ErrorMessage: a.ErrorMessage,
		HasThumbnail: a.ThumbnailKey != "",
		CreatedAt:    a.CreatedAt.UTC().Format(time.RFC3339),
	}
	if a.CompletedAt != nil {
		resp.CompletedAt = a.CompletedAt.UTC().Format(time.RFC3339)
	}
	return resp
}

func (h *Handler) CreateAnalysis(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUpload+1<<20)

	file, header, err := c.Request.FormFile("video")
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{
				"error": fmt.Sprintf("file exceeds upload limit of %d bytes", h.maxUpload),
			})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "no video file provided"})
		return
	}
	defer file.Close()

	if header.Filename == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "empty file name"})
		return
	}
	if header.Size > h.maxUpload {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{
			"error": fmt.Sprintf("file exceeds upload limit of %d bytes", h.maxUpload),
		})
		return
	}

	focus, ok := entity.ParseFocus(c.PostForm("focus"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "focus must be offense, defense, or both"})
		return
	}

	a, err := h.submitter.Execute(c.Request.Context(), usecase.SubmitClipInput{
		Reader:       file,
		Size:         header.Size,
		OriginalName: header.Filename,
		ContentType:  header.Header.Get("Content-Type"),
		Focus:        focus,
		APIKey:       c.PostForm("api_key"),
		UserEmail:    c.PostForm("email"),
	})
	if err != nil {
		if errors.Is(err, usecase.ErrMissingAPIKey) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "missing API key"})
			return
		}
		h.logger.Error("submit clip failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to submit clip"})
		return
	}

	c.JSON(http.StatusAccepted, toResponse(a))
}

func (h *Handler) GetAnalysis(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid analysis id"})
		return
	}

	a, err := h.repo.FindByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "analysis not found"})
		return
	}

	c.JSON(http.StatusOK, toResponse(a))
}

func (h *Handler) ListAnalyses(c *gin.Context) {
	limit := intQuery(c, "limit", 50)
	if limit < 1 || limit > 200 {
		limit = 50
	}
	offset := intQuery(c, "offset", 0)
	if offset < 0 {
		offset = 0
	}

	analyses, err := h.repo.List(c.Request.Context(), limit, offset)
	if err != nil {
		h.logger.Error("list analyses failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list analyses"})
		return
	}

	out := make([]analysisResponse, 0, len(analyses))
	for _, a := range analyses {
		out = append(out, toResponse(a))
	}
	c.JSON(http.StatusOK, gin.H{"analyses": out})
}

func (h *Handler) DeleteAnalysis(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid analysis id"})
		return
	}

	a, err := h.repo.FindByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "analysis not found"})
		return
	}

	// Stored objects go first; a stray object is better than a dangling record.
	if err := h.storage.Remove(c.Request.Context(), a.ClipKey, a.ThumbnailKey); err != nil {
		h.logger.Warn("failed to remove stored objects", zap.String("analysis_id", a.ID.String()), zap.Error(err))
	}

	if err := h.repo.Delete(c.Request.Context(), id); err != nil {
		h.logger.Error("delete analysis failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete analysis"})
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *Handler) ExportCSV(c *gin.Context) {
	analyses, err := h.repo.ListCompleted(c.Request.Context())
	if err != nil {
		h.logger.Error("export csv failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to export"})
		return
	}

	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", `attachment; filename="sportscope-analyses.csv"`)
	c.Status(http.StatusOK)

	if err := export.WriteCSV(c.Writer, analyses); err != nil {
		h.logger.Error("write csv failed", zap.Error(err))
	}
}

func (h *Handler) ExportBundle(c *gin.Context) {
	analyses, err := h.repo.ListCompleted(c.Request.Context())
	if err != nil {
		h.logger.Error("export bundle failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to export"})
		return
	}

	c.Header("Content-Type", "application/zip")
	c.Header("Content-Disposition", `attachment; filename="sportscope-analyses.zip"`)
	c.Status(http.StatusOK)

	if err := export.WriteBundle(c.Request.Context(), c.Writer, analyses, h.storage); err != nil {
		h.logger.Error("write bundle failed", zap.Error(err))
	}
}

func (h *Handler) GetThumbnail(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid analysis id"})
		return
	}

	a, err := h.repo.FindByID(c.Request.Context(), id)
	if err != nil || a.ThumbnailKey == "" {
		c.JSON(http.StatusNotFound, gin.H{"error": "thumbnail not found"})
		return
	}

	rc, err := h.storage.OpenThumbnail(c.Request.Context(), a.ThumbnailKey)
	if err != nil {
		h.logger.Error("open thumbnail failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read thumbnail"})
		return
	}
	defer rc.Close()

	c.Header("Content-Type", "image/jpeg")
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, rc); err != nil {
		h.logger.Warn("stream thumbnail failed", zap.Error(err))
	}
}

func intQuery(c *gin.Context, name string, def int) int {
	raw := c.Query(name)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}
