package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/lidyk-ops/SportScope/internal/domain/entity"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

// Analyzer sends football clips to Gemini and returns structured commentary.
// A client is built per call because the API key may come from the uploader
// instead of the server environment.
type Analyzer struct {
	model        string
	defaultKey   string
	pollInterval time.Duration
	maxWait      time.Duration
	logger       *zap.Logger
}

type AnalyzerConfig struct {
	Model        string
	DefaultKey   string
	PollInterval time.Duration
	MaxWait      time.Duration
}

func NewAnalyzer(cfg AnalyzerConfig, logger *zap.Logger) *Analyzer {
	if cfg.Model == "" {
		cfg.Model = "gemini-2.0-flash"
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 2 * time.Second
	}
	if cfg.MaxWait <= 0 {
		cfg.MaxWait = 5 * time.Minute
	}
	return &Analyzer{
		model:        cfg.Model,
		defaultKey:   cfg.DefaultKey,
		pollInterval: cfg.PollInterval,
		maxWait:      cfg.MaxWait,
		logger:       logger,
	}
}

func (a *Analyzer) Model() string { return a.model }

func (a *Analyzer) AnalyzeClip(ctx context.Context, clipPath string, focus entity.Focus, apiKey string) (*entity.PlayBreakdown, error) {
	key := apiKey
	if key == "" {
		key = a.defaultKey
	}
	if key == "" {
		return nil, fmt.Errorf("no gemini api key available")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  key,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	file, err := client.Files.UploadFromPath(ctx, clipPath, &genai.UploadFileConfig{
		MIMEType: clipMIMEType(clipPath),
	})
	if err != nil {
		return nil, fmt.Errorf("upload clip to files api: %w", err)
	}
	a.logger.Info("clip uploaded to gemini", zap.String("file", file.Name))

	defer func() {
		// Best effort: uploaded files expire on their own after 48h.
		if _, err := client.Files.Delete(context.WithoutCancel(ctx), file.Name, nil); err != nil {
			a.logger.Warn("failed to delete gemini file", zap.String("file", file.Name), zap.Error(err))
		}
	}()

	file, err = a.waitForFile(ctx, client, file)
	if err != nil {
		return nil, err
	}

	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromURI(file.URI, file.MIMEType),
			genai.NewPartFromText(promptFor(focus)),
		}, genai.RoleUser),
	}

	resp, err := client.Models.GenerateContent(ctx, a.model, contents, &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   breakdownSchema(),
	})
	if err != nil {
		return nil, fmt.Errorf("generate content: %w", err)
	}

	breakdown, err := parseBreakdown(resp.Text())
	if err != nil {
		return nil, err
	}

	a.logger.Info("clip analyzed",
		zap.String("model", a.model),
		zap.String("play_type", breakdown.PlayType),
	)
	return breakdown, nil
}

// waitForFile polls the Files API until the uploaded clip leaves the
// PROCESSING state.
func (a *Analyzer) waitForFile(ctx context.Context, client *genai.Client, file *genai.File) (*genai.File, error) {
	deadline := time.Now().Add(a.maxWait)
	for file.State == genai.FileStateProcessing {
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("gemini file %s still processing after %s", file.Name, a.maxWait)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(a.pollInterval):
		}

		var err error
		file, err = client.Files.Get(ctx, file.Name, nil)
		if err != nil {
			return nil, fmt.Errorf("poll gemini file: %w", err)
		}
	}

	if file.State != genai.FileStateActive {
		return nil, fmt.Errorf("gemini file %s in unexpected state %q", file.Name, file.State)
	}
	return file, nil
}

func promptFor(focus entity.Focus) string {
	switch focus {
	case entity.FocusDefense:
		return "You are an experienced American football defensive coordinator. " +
			"Watch this clip and analyze the DEFENSE only. " +
			"Focus on the front, coverage shell, and how the defense reacts to the play."
	case entity.FocusBoth:
		return "You are an experienced American football analyst. " +
			"Watch this clip and analyze both the offense and the defense. " +
			"Cover formation, play type, key concepts, and the defensive response."
	default:
		return "You are an experienced American football offensive coordinator. " +
			"Watch this clip and analyze the OFFENSE only. " +
			"Focus on formation, play type, and key passing or running concepts."
	}
}

func breakdownSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"summary": {
				Type:        genai.TypeString,
				Description: "One short sentence describing the play",
			},
			"play_type": {
				Type:        genai.TypeString,
				Description: "Play type, e.g. inside run, outside run, quick pass, screen, RPO, or the coverage shell for defense",
			},
			"route_example": {
				Type:        genai.TypeString,
				Description: "Key route or concept example, e.g. smash, four verts, slant-flat",
			},
		},
		Required: []string{"summary", "play_type", "route_example"},
	}
}

// parseBreakdown tolerates models that wrap the JSON in markdown code fences
// despite the JSON response MIME type.
func parseBreakdown(text string) (*entity.PlayBreakdown, error) {
	cleaned := strings.TrimSpace(text)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	var breakdown entity.PlayBreakdown
	if err := json.Unmarshal([]byte(cleaned), &breakdown); err != nil {
		return nil, fmt.Errorf("parse model response: %w", err)
	}
	if breakdown.Summary == "" {
		return nil, fmt.Errorf("model response missing summary")
	}
	return &breakdown, nil
}

func clipMIMEType(clipPath string) string {
	switch strings.ToLower(filepath.Ext(clipPath)) {
	case ".mov":
		return "video/quicktime"
	case ".webm":
		return "video/webm"
	case ".avi":
		return "video/x-msvideo"
	case ".mkv":
		return "video/x-matroska"
	case ".mpeg", ".mpg":
		return "video/mpeg"
	default:
		return "video/mp4"
	}
}
