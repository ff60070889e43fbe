package usecase

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/google/uuid"
	"github.com/lidyk-ops/SportScope/internal/domain/entity"
	"github.com/lidyk-ops/SportScope/internal/domain/port"
)

type fakeRepo struct {
	mu        sync.Mutex
	records   map[uuid.UUID]*entity.ClipAnalysis
	updates   int
	createErr error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{records: make(map[uuid.UUID]*entity.ClipAnalysis)}
}

func (r *fakeRepo) Create(_ context.Context, a *entity.ClipAnalysis) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *a
	r.records[a.ID] = &cp
	return nil
}

func (r *fakeRepo) Update(_ context.Context, a *entity.ClipAnalysis) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *a
	r.records[a.ID] = &cp
	r.updates++
	return nil
}

func (r *fakeRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.ClipAnalysis, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.records[id]
	if !ok {
		return nil, fmt.Errorf("not found")
	}
	cp := *a
	return &cp, nil
}

func (r *fakeRepo) List(_ context.Context, limit, offset int) ([]*entity.ClipAnalysis, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.ClipAnalysis
	for _, a := range r.records {
		cp := *a
		out = append(out, &cp)
	}
	return out, nil
}

func (r *fakeRepo) ListCompleted(ctx context.Context) ([]*entity.ClipAnalysis, error) {
	all, _ := r.List(ctx, 0, 0)
	var out []*entity.ClipAnalysis
	for _, a := range all {
		if a.Status == entity.AnalysisStatusCompleted {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *fakeRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.records[id]; !ok {
		return fmt.Errorf("not found")
	}
	delete(r.records, id)
	return nil
}

func (r *fakeRepo) get(id uuid.UUID) *entity.ClipAnalysis {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.records[id]
}

type fakeStorage struct {
	mu         sync.Mutex
	uploads    map[string][]byte
	thumbnails map[string][]byte
	uploadErr  error
	removed    []string
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{
		uploads:    make(map[string][]byte),
		thumbnails: make(map[string][]byte),
	}
}

func (s *fakeStorage) UploadClip(_ context.Context, key string, reader io.Reader, _ int64, _ string) error {
	if s.uploadErr != nil {
		return s.uploadErr
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.uploads[key] = data
	return nil
}

func (s *fakeStorage) DownloadClip(_ context.Context, key string, destPath string) error {
	s.mu.Lock()
	data, ok := s.uploads[key]
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("object %s not found", key)
	}
	return os.WriteFile(destPath, data, 0644)
}

func (s *fakeStorage) UploadThumbnail(_ context.Context, key string, reader io.Reader, _ int64) error {
	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.thumbnails[key] = data
	return nil
}

func (s *fakeStorage) OpenThumbnail(_ context.Context, key string) (io.ReadCloser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.thumbnails[key]
	if !ok {
		return nil, fmt.Errorf("thumbnail %s not found", key)
	}
	return io.NopCloser(newByteReader(data)), nil
}

func (s *fakeStorage) Remove(_ context.Context, clipKey, thumbKey string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.uploads, clipKey)
	delete(s.thumbnails, thumbKey)
	s.removed = append(s.removed, clipKey)
	return nil
}

type byteReader struct {
	data []byte
	pos  int
}

func newByteReader(data []byte) *byteReader { return &byteReader{data: data} }

func (b *byteReader) Read(p []byte) (int, error) {
	if b.pos >= len(b.data) {
		return 0, io.EOF
	}
	n := copy(p, b.data[b.pos:])
	b.pos += n
	return n, nil
}

type fakeProber struct {
	duration float64
	probeErr error
	thumbErr error
}

func (p *fakeProber) Probe(_ context.Context, _ string) (*port.ProbeResult, error) {
	if p.probeErr != nil {
		return nil, p.probeErr
	}
	return &port.ProbeResult{Duration: p.duration}, nil
}

func (p *fakeProber) ExtractThumbnail(_ context.Context, _ string, outputPath string) error {
	if p.thumbErr != nil {
		return p.thumbErr
	}
	return os.WriteFile(outputPath, []byte("jpeg"), 0644)
}

type fakeAnalyzer struct {
	breakdown *entity.PlayBreakdown
	err       error
	lastKey   string
	lastFocus entity.Focus
	calls     int
}

func (a *fakeAnalyzer) AnalyzeClip(_ context.Context, _ string, focus entity.Focus, apiKey string) (*entity.PlayBreakdown, error) {
	a.calls++
	a.lastKey = apiKey
	a.lastFocus = focus
	if a.err != nil {
		return nil, a.err
	}
	return a.breakdown, nil
}

func (a *fakeAnalyzer) Model() string { return "gemini-2.0-flash" }

type fakePublisher struct {
	mu       sync.Mutex
	messages [][]byte
	err      error
}

func (p *fakePublisher) publish(msg []byte) error {
	if p.err != nil {
		return p.err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	cp := make([]byte, len(msg))
	copy(cp, msg)
	p.messages = append(p.messages, cp)
	return nil
}

func (p *fakePublisher) PublishRequest(_ context.Context, msg []byte) error { return p.publish(msg) }
func (p *fakePublisher) PublishStatus(_ context.Context, msg []byte) error  { return p.publish(msg) }

func (p *fakePublisher) last() []byte {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.messages) == 0 {
		return nil
	}
	return p.messages[len(p.messages)-1]
}

type fakeDLQ struct {
	mu      sync.Mutex
	reasons []string
}

func (d *fakeDLQ) PublishToDLQ(_ context.Context, _ []byte, reason string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.reasons = append(d.reasons, reason)
	return nil
}

type fakeNotifier struct {
	mu     sync.Mutex
	emails []string
}

func (n *fakeNotifier) NotifyFailure(_ context.Context, userEmail, _, _, _ string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.emails = append(n.emails, userEmail)
	return nil
}
