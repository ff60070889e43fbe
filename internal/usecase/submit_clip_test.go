package usecase

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/lidyk-ops/SportScope/internal/domain/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSubmitClipSuccess(t *testing.T) {
	repo := newFakeRepo()
	storage := newFakeStorage()
	pub := &fakePublisher{}
	uc := NewSubmitClipUseCase(repo, storage, pub, zap.NewNop(), SubmitClipConfig{
		MaxRetries:    3,
		HasDefaultKey: false,
	})

	a, err := uc.Execute(t.Context(), SubmitClipInput{
		Reader:       strings.NewReader("videobytes"),
		Size:         10,
		OriginalName: "red zone play.mp4",
		ContentType:  "video/mp4",
		Focus:        entity.FocusDefense,
		APIKey:       "user-key",
		UserEmail:    "coach@example.com",
	})
	require.NoError(t, err)

	assert.Equal(t, entity.AnalysisStatusPending, a.Status)
	assert.Equal(t, 3, a.MaxAttempts)
	assert.NotContains(t, a.ClipKey, " ", "object key has spaces replaced")
	assert.Contains(t, a.ClipKey, "red_zone_play.mp4")
	assert.Equal(t, []byte("videobytes"), storage.uploads[a.ClipKey])
	require.NotNil(t, repo.get(a.ID))

	var msg entity.AnalysisRequestMessage
	require.NoError(t, json.Unmarshal(pub.last(), &msg))
	assert.Equal(t, a.ID, msg.AnalysisID)
	assert.Equal(t, "user-key", msg.APIKey)
	assert.Equal(t, entity.FocusDefense, msg.Focus)
	assert.Equal(t, "coach@example.com", msg.UserEmail)
}

func TestSubmitClipMissingAPIKey(t *testing.T) {
	uc := NewSubmitClipUseCase(newFakeRepo(), newFakeStorage(), &fakePublisher{}, zap.NewNop(), SubmitClipConfig{
		MaxRetries:    3,
		HasDefaultKey: false,
	})

	_, err := uc.Execute(t.Context(), SubmitClipInput{
		Reader:       strings.NewReader("x"),
		Size:         1,
		OriginalName: "play.mp4",
	})
	assert.ErrorIs(t, err, ErrMissingAPIKey)
}

func TestSubmitClipServerDefaultKey(t *testing.T) {
	pub := &fakePublisher{}
	uc := NewSubmitClipUseCase(newFakeRepo(), newFakeStorage(), pub, zap.NewNop(), SubmitClipConfig{
		MaxRetries:    3,
		HasDefaultKey: true,
	})

	_, err := uc.Execute(t.Context(), SubmitClipInput{
		Reader:       strings.NewReader("x"),
		Size:         1,
		OriginalName: "play.mp4",
	})
	require.NoError(t, err)

	var msg entity.AnalysisRequestMessage
	require.NoError(t, json.Unmarshal(pub.last(), &msg))
	assert.Empty(t, msg.APIKey, "worker falls back to the server key")
}

func TestSubmitClipPublishFailure(t *testing.T) {
	repo := newFakeRepo()
	storage := newFakeStorage()
	pub := &fakePublisher{err: errors.New("channel closed")}
	uc := NewSubmitClipUseCase(repo, storage, pub, zap.NewNop(), SubmitClipConfig{
		MaxRetries:    3,
		HasDefaultKey: true,
	})

	_, err := uc.Execute(t.Context(), SubmitClipInput{
		Reader:       strings.NewReader("x"),
		Size:         1,
		OriginalName: "play.mp4",
	})
	require.Error(t, err)

	// The record survives, marked FAILED, so history shows what happened.
	all, _ := repo.List(t.Context(), 10, 0)
	require.Len(t, all, 1)
	assert.Equal(t, entity.AnalysisStatusFailed, all[0].Status)

	// The clip itself will never be analyzed, so it is not kept around.
	assert.Empty(t, storage.uploads)
	assert.Len(t, storage.removed, 1)
}

func TestSubmitClipCreateFailureCleansUp(t *testing.T) {
	repo := newFakeRepo()
	repo.createErr = errors.New("connection refused")
	storage := newFakeStorage()
	uc := NewSubmitClipUseCase(repo, storage, &fakePublisher{}, zap.NewNop(), SubmitClipConfig{
		MaxRetries:    3,
		HasDefaultKey: true,
	})

	_, err := uc.Execute(t.Context(), SubmitClipInput{
		Reader:       strings.NewReader("x"),
		Size:         1,
		OriginalName: "play.mp4",
	})
	require.Error(t, err)

	// No record was written, so no orphaned object either.
	assert.Empty(t, storage.uploads)
	assert.Len(t, storage.removed, 1)
}
