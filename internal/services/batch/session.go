package batch

import (
	"context"
	"errors"
	"sync"

	"github.com/phambaophuc/image-batch-crop/internal/models"
)

// Saver delivers a finished archive somewhere and returns where it went.
type Saver interface {
	Save(ctx context.Context, id string, a *models.Archive) (string, error)
}

type SaverFunc func(ctx context.Context, id string, a *models.Archive) (string, error)

func (f SaverFunc) Save(ctx context.Context, id string, a *models.Archive) (string, error) {
	return f(ctx, id, a)
}

// Session is the operator's working selection: images accumulate until
// they are submitted or cleared. A finished submission removes the images
// it ran, whatever its outcome.
type Session struct {
	orchestrator *Orchestrator

	mu      sync.Mutex
	sources []models.SourceImage
	options models.ProcessingOptions
	// generation changes on Clear so a running Submit knows its images
	// are already gone.
	generation uint64
	submitting bool
}

func NewSession(o *Orchestrator, defaults models.ProcessingOptions) *Session {
	return &Session{
		orchestrator: o,
		options:      defaults,
	}
}

func (s *Session) Add(sources ...models.SourceImage) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sources = append(s.sources, sources...)
	return len(s.sources)
}

func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sources = nil
	s.generation++
}

func (s *Session) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sources)
}

func (s *Session) Filenames() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, len(s.sources))
	for i, src := range s.sources {
		names[i] = src.Filename
	}
	return names
}

func (s *Session) Options() models.ProcessingOptions {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.options
}

func (s *Session) SetOptions(opts models.ProcessingOptions) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.options = opts
}

// Submit runs the current selection and hands the archive to saver.
// It returns (nil, "", nil) when there is nothing to run. The selection
// is kept only when the orchestrator is busy.
func (s *Session) Submit(ctx context.Context, saver Saver) (*Result, string, error) {
	s.mu.Lock()
	if s.submitting {
		s.mu.Unlock()
		return nil, "", ErrBusy
	}
	s.submitting = true
	sources := append([]models.SourceImage(nil), s.sources...)
	opts := s.options
	generation := s.generation
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.submitting = false
		s.mu.Unlock()
	}()

	res, err := s.orchestrator.Start(ctx, sources, opts)
	if errors.Is(err, ErrBusy) {
		return nil, "", err
	}
	if res == nil && err == nil {
		return nil, "", nil
	}

	s.release(generation, len(sources))

	if err != nil {
		return res, "", err
	}

	location, err := saver.Save(ctx, res.ID, res.Archive)
	if err != nil {
		return res, "", err
	}

	return res, location, nil
}

// release drops the first n images, the ones a submission ran. Images
// added meanwhile stay selected.
func (s *Session) release(generation uint64, n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generation != generation {
		return
	}
	s.sources = append([]models.SourceImage(nil), s.sources[n:]...)
}
