package entity

import (
	"time"

	"github.com/google/uuid"
)

type AnalysisStatus string

const (
	AnalysisStatusPending    AnalysisStatus = "PENDING"
	AnalysisStatusProcessing AnalysisStatus = "PROCESSING"
	AnalysisStatusCompleted  AnalysisStatus = "COMPLETED"
	AnalysisStatusFailed     AnalysisStatus = "FAILED"
)

// Focus selects which side of the ball the commentary covers.
type Focus string

const (
	FocusOffense Focus = "offense"
	FocusDefense Focus = "defense"
	FocusBoth    Focus = "both"
)

func ParseFocus(s string) (Focus, bool) {
	switch Focus(s) {
	case FocusOffense, FocusDefense, FocusBoth:
		return Focus(s), true
	case "":
		return FocusOffense, true
	}
	return "", false
}

// PlayBreakdown is the structured commentary returned by the model.
type PlayBreakdown struct {
	Summary      string `json:"summary"`
	PlayType     string `json:"play_type"`
	RouteExample string `json:"route_example"`
}

// ClipAnalysis is one uploaded clip and its analysis outcome.
type ClipAnalysis struct {
	ID           uuid.UUID
	Focus        Focus
	ClipKey      string
	ThumbnailKey string
	OriginalName string
	Status       AnalysisStatus
	Summary      string
	PlayType     string
	RouteExample string
	Model        string
	ClipDuration float64
	FileSize     int64
	UserEmail    string
	Attempt      int
	MaxAttempts  int
	ErrorMessage string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	CompletedAt  *time.Time
}

func NewClipAnalysis(focus Focus, clipKey, originalName string, fileSize int64, userEmail string, maxAttempts int) *ClipAnalysis {
	now := time.Now().UTC()
	return &ClipAnalysis{
		ID:           uuid.New(),
		Focus:        focus,
		ClipKey:      clipKey,
		OriginalName: originalName,
		FileSize:     fileSize,
		UserEmail:    userEmail,
		Status:       AnalysisStatusPending,
		Attempt:      0,
		MaxAttempts:  maxAttempts,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func (a *ClipAnalysis) MarkProcessing() {
	a.Status = AnalysisStatusProcessing
	a.Attempt++
	a.UpdatedAt = time.Now().UTC()
}

func (a *ClipAnalysis) MarkCompleted(result PlayBreakdown, model string, duration float64) {
	now := time.Now().UTC()
	a.Status = AnalysisStatusCompleted
	a.Summary = result.Summary
	a.PlayType = result.PlayType
	a.RouteExample = result.RouteExample
	a.Model = model
	a.ClipDuration = duration
	a.ErrorMessage = ""
	a.UpdatedAt = now
	a.CompletedAt = &now
}

func (a *ClipAnalysis) MarkFailed(errMsg string) {
	a.Status = AnalysisStatusFailed
	a.ErrorMessage = errMsg
	a.UpdatedAt = time.Now().UTC()
}

func (a *ClipAnalysis) CanRetry() bool {
	return a.Attempt < a.MaxAttempts
}
