package readalong

import (
	"context"
	"fmt"
	"log"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/leonardotrapani/readalong/internal/api"
	"github.com/leonardotrapani/readalong/internal/quiz"
)

// PassageSource returns the OCR text for an uploaded file.
type PassageSource interface {
	OCR(ctx context.Context, fileID string) (api.OCRResult, error)
}

type QuizPrefetcher interface {
	Prefetch(ctx context.Context, req quiz.Request)
}

// FileRecorder remembers the last opened fileId for the quiz command.
type FileRecorder interface {
	SetLastFileID(fileID string) error
}

type LoaderConfig struct {
	Prefetch bool
	// PrefetchNeedsText delays the quiz request until the passage text is
	// known, for sources that build questions from the text itself.
	PrefetchNeedsText bool
	Level             string
	Style             string
}

// Loader fetches passage text and warms the quiz cache alongside it.
// Prefetches outlive Load and are awaited by Close.
type Loader struct {
	source PassageSource
	quiz   QuizPrefetcher
	files  FileRecorder
	config LoaderConfig

	ctx    context.Context
	cancel context.CancelFunc

	mu         sync.Mutex
	background *errgroup.Group
}

func NewLoader(source PassageSource, prefetcher QuizPrefetcher, files FileRecorder, cfg LoaderConfig) *Loader {
	ctx, cancel := context.WithCancel(context.Background())
	return &Loader{
		source:     source,
		quiz:       prefetcher,
		files:      files,
		config:     cfg,
		ctx:        ctx,
		cancel:     cancel,
		background: &errgroup.Group{},
	}
}

// Load fetches and segments the passage for fileID. Upstream errors carry
// the server's reason as *api.APIError.
func (l *Loader) Load(ctx context.Context, fileID string) (Passage, error) {
	if fileID == "" {
		return Passage{}, ErrMissingFileID
	}

	req := quiz.Request{FileID: fileID, Level: l.config.Level, Style: l.config.Style}
	prefetch := l.config.Prefetch && l.quiz != nil

	g, gctx := errgroup.WithContext(ctx)
	var result api.OCRResult
	g.Go(func() error {
		res, err := l.source.OCR(gctx, fileID)
		if err != nil {
			return fmt.Errorf("load passage %s: %w", fileID, err)
		}
		result = res
		return nil
	})
	if prefetch && !l.config.PrefetchNeedsText {
		l.prefetch(req)
	}
	if err := g.Wait(); err != nil {
		return Passage{}, err
	}

	p, err := NewPassage(fileID, result.Text())
	if err != nil {
		return Passage{}, err
	}
	log.Printf("Loader: %s segmented into %d sentences", fileID, len(p.Sentences))

	// only a passage that can be read becomes the default for the quiz
	if l.files != nil {
		if err := l.files.SetLastFileID(fileID); err != nil {
			log.Printf("Loader: error recording last fileId: %v", err)
		}
	}

	if prefetch && l.config.PrefetchNeedsText {
		req.Passage = p.Text
		l.prefetch(req)
	}
	return p, nil
}

func (l *Loader) prefetch(req quiz.Request) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.background.Go(func() error {
		l.quiz.Prefetch(l.ctx, req)
		return nil
	})
}

// Wait blocks until every prefetch started so far has finished.
func (l *Loader) Wait() {
	l.mu.Lock()
	g := l.background
	l.background = &errgroup.Group{}
	l.mu.Unlock()

	_ = g.Wait()
}

// Close cancels outstanding prefetches and waits for them.
func (l *Loader) Close() {
	l.cancel()
	l.Wait()
}
