// Package quiz produces the comprehension questions that unlock after a
// passage has been read.
package quiz

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/leonardotrapani/readalong/internal/api"
	"github.com/leonardotrapani/readalong/internal/store"
)

// Request identifies the passage to build questions for.
type Request struct {
	FileID  string
	Passage string
	Level   string
	Style   string
}

// Source generates questions for a passage
type Source interface {
	Generate(ctx context.Context, req Request) ([]api.Question, error)
}

// Cache is the subset of the session store the quiz needs
type Cache interface {
	PutQuiz(c store.QuizCache) error
	Quiz(fileID string) (store.QuizCache, error)
}

type Config struct {
	Source   string // "backend" or "openai"
	Level    string
	Style    string
	Model    string
	APIKey   string
	Count    int
	Prefetch bool
}

// NewSource creates a question source based on the configured kind
func NewSource(cfg Config, client *api.Client) (Source, error) {
	switch cfg.Source {
	case "", "backend":
		if client == nil {
			return nil, errors.New("backend quiz source requires an api client")
		}
		return NewHTTPSource(client), nil
	case "openai":
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("OpenAI API key required")
		}
		return NewOpenAISource(cfg), nil
	default:
		return nil, fmt.Errorf("unsupported quiz source: %s", cfg.Source)
	}
}

// Service serves questions from the cache and falls back to the source.
type Service struct {
	source Source
	cache  Cache
	now    func() time.Time
}

func NewService(source Source, cache Cache) *Service {
	return &Service{source: source, cache: cache, now: time.Now}
}

// Get returns cached questions for the file or generates and caches them.
func (s *Service) Get(ctx context.Context, req Request) ([]api.Question, error) {
	if s.cache != nil {
		c, err := s.cache.Quiz(req.FileID)
		if err == nil && len(c.Questions) > 0 {
			return c.Questions, nil
		}
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			log.Printf("Quiz: cache read failed for %s: %v", req.FileID, err)
		}
	}
	return s.fetch(ctx, req)
}

// Prefetch warms the cache. Failures are logged and otherwise ignored.
func (s *Service) Prefetch(ctx context.Context, req Request) {
	if _, err := s.fetch(ctx, req); err != nil {
		log.Printf("Quiz: prefetch for %s failed: %v", req.FileID, err)
		return
	}
	log.Printf("Quiz: prefetched questions for %s", req.FileID)
}

func (s *Service) fetch(ctx context.Context, req Request) ([]api.Question, error) {
	raw, err := s.source.Generate(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("generate quiz: %w", err)
	}

	questions, base := NormalizeAnswerIndices(raw)
	if base == OneBased {
		log.Printf("Quiz: answer indices for %s looked 1-based, shifted to 0-based", req.FileID)
	}
	if len(questions) == 0 {
		return nil, errors.New("generate quiz: no usable questions")
	}

	if s.cache != nil {
		entry := store.QuizCache{FileID: req.FileID, Questions: questions, FetchedAt: s.now()}
		if err := s.cache.PutQuiz(entry); err != nil {
			log.Printf("Quiz: cache write failed for %s: %v", req.FileID, err)
		}
	}
	return questions, nil
}

// HTTPSource asks the backend's /api/quiz endpoint
type HTTPSource struct {
	client *api.Client
}

func NewHTTPSource(client *api.Client) *HTTPSource {
	return &HTTPSource{client: client}
}

func (s *HTTPSource) Generate(ctx context.Context, req Request) ([]api.Question, error) {
	return s.client.Quiz(ctx, api.QuizRequest{FileID: req.FileID, Level: req.Level, Style: req.Style})
}
