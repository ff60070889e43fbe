package entity

import "github.com/google/uuid"

// AnalysisRequestMessage is the inbound message from the analysis.request queue.
// APIKey is transient: it rides the message so the worker can call Gemini on
// the uploader's behalf, and is never written to the database.
type AnalysisRequestMessage struct {
	AnalysisID uuid.UUID `json:"analysis_id"`
	ClipKey    string    `json:"clip_key"`
	FileSize   int64     `json:"file_size"`
	Focus      Focus     `json:"focus"`
	APIKey     string    `json:"api_key,omitempty"`
	UserEmail  string    `json:"user_email,omitempty"`
}

// AnalysisStatusMessage is the outbound message published to the analysis.status queue.
type AnalysisStatusMessage struct {
	AnalysisID   uuid.UUID      `json:"analysis_id"`
	Status       AnalysisStatus `json:"status"`
	ClipKey      string         `json:"clip_key"`
	Summary      string         `json:"summary,omitempty"`
	PlayType     string         `json:"play_type,omitempty"`
	RouteExample string         `json:"route_example,omitempty"`
	Duration     float64        `json:"duration_seconds,omitempty"`
	ErrorMessage string         `json:"error_message,omitempty"`
	Attempt      int            `json:"attempt"`
	MaxAttempts  int            `json:"max_attempts"`
}
