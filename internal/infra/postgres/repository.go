package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lidyk-ops/SportScope/internal/domain/entity"
)

type AnalysisRepository struct {
	pool *pgxpool.Pool
}

func NewAnalysisRepository(pool *pgxpool.Pool) *AnalysisRepository {
	return &AnalysisRepository{pool: pool}
}

const analysisColumns = `
	id, focus, clip_key, thumbnail_key, original_name, status,
	summary, play_type, route_example, model, clip_duration,
	file_size, user_email, attempt, max_attempts, error_message,
	created_at, updated_at, completed_at`

func (r *AnalysisRepository) Create(ctx context.Context, a *entity.ClipAnalysis) error {
	query := `
		INSERT INTO clip_analyses (` + analysisColumns + `
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19)`

	_, err := r.pool.Exec(ctx, query,
		a.ID, string(a.Focus), a.ClipKey, a.ThumbnailKey, a.OriginalName, string(a.Status),
		a.Summary, a.PlayType, a.RouteExample, a.Model, a.ClipDuration,
		a.FileSize, a.UserEmail, a.Attempt, a.MaxAttempts, a.ErrorMessage,
		a.CreatedAt, a.UpdatedAt, a.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("insert analysis: %w", err)
	}
	return nil
}

func (r *AnalysisRepository) Update(ctx context.Context, a *entity.ClipAnalysis) error {
	query := `
		UPDATE clip_analyses SET
			status=$2, thumbnail_key=$3, summary=$4, play_type=$5, route_example=$6,
			model=$7, clip_duration=$8, attempt=$9, error_message=$10,
			updated_at=$11, completed_at=$12
		WHERE id=$1`

	_, err := r.pool.Exec(ctx, query,
		a.ID, string(a.Status), a.ThumbnailKey, a.Summary, a.PlayType, a.RouteExample,
		a.Model, a.ClipDuration, a.Attempt, a.ErrorMessage,
		a.UpdatedAt, a.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("update analysis: %w", err)
	}
	return nil
}

func (r *AnalysisRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.ClipAnalysis, error) {
	query := `SELECT ` + analysisColumns + ` FROM clip_analyses WHERE id=$1`

	a := &entity.ClipAnalysis{}
	var focus, status string
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&a.ID, &focus, &a.ClipKey, &a.ThumbnailKey, &a.OriginalName, &status,
		&a.Summary, &a.PlayType, &a.RouteExample, &a.Model, &a.ClipDuration,
		&a.FileSize, &a.UserEmail, &a.Attempt, &a.MaxAttempts, &a.ErrorMessage,
		&a.CreatedAt, &a.UpdatedAt, &a.CompletedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("find analysis by id: %w", err)
	}
	a.Focus = entity.Focus(focus)
	a.Status = entity.AnalysisStatus(status)
	return a, nil
}

func (r *AnalysisRepository) List(ctx context.Context, limit, offset int) ([]*entity.ClipAnalysis, error) {
	query := `SELECT ` + analysisColumns + `
		FROM clip_analyses ORDER BY created_at DESC LIMIT $1 OFFSET $2`

	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list analyses: %w", err)
	}
	defer rows.Close()

	return scanAnalyses(rows)
}

func (r *AnalysisRepository) ListCompleted(ctx context.Context) ([]*entity.ClipAnalysis, error) {
	query := `SELECT ` + analysisColumns + `
		FROM clip_analyses WHERE status=$1 ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, string(entity.AnalysisStatusCompleted))
	if err != nil {
		return nil, fmt.Errorf("list completed analyses: %w", err)
	}
	defer rows.Close()

	return scanAnalyses(rows)
}

func (r *AnalysisRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM clip_analyses WHERE id=$1`, id)
	if err != nil {
		return fmt.Errorf("delete analysis: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("delete analysis: not found")
	}
	return nil
}

type pgxRows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanAnalyses(rows pgxRows) ([]*entity.ClipAnalysis, error) {
	var out []*entity.ClipAnalysis
	for rows.Next() {
		a := &entity.ClipAnalysis{}
		var focus, status string
		err := rows.Scan(
			&a.ID, &focus, &a.ClipKey, &a.ThumbnailKey, &a.OriginalName, &status,
			&a.Summary, &a.PlayType, &a.RouteExample, &a.Model, &a.ClipDuration,
			&a.FileSize, &a.UserEmail, &a.Attempt, &a.MaxAttempts, &a.ErrorMessage,
			&a.CreatedAt, &a.UpdatedAt, &a.CompletedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan analysis: %w", err)
		}
		a.Focus = entity.Focus(focus)
		a.Status = entity.AnalysisStatus(status)
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate analyses: %w", err)
	}
	return out, nil
}
