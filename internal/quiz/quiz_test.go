package quiz

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/leonardotrapani/readalong/internal/api"
	"github.com/leonardotrapani/readalong/internal/store"
)

type fakeSource struct {
	calls     atomic.Int32
	questions []api.Question
	err       error
}

func (f *fakeSource) Generate(ctx context.Context, req Request) ([]api.Question, error) {
	f.calls.Add(1)
	return f.questions, f.err
}

func openStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.OpenInMemory()
	if err != nil {
		t.Fatalf("OpenInMemory() error = %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestServiceCachesQuestions(t *testing.T) {
	src := &fakeSource{questions: []api.Question{q(1, "a", "b"), q(2, "a", "b")}}
	st := openStore(t)
	svc := NewService(src, st)
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	req := Request{FileID: "f1"}
	first, err := svc.Get(context.Background(), req)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	// index 2 of two choices can only be 1-based
	if first[0].AnswerIndex != 0 || first[1].AnswerIndex != 1 {
		t.Errorf("indices not normalized: %+v", first)
	}

	if _, err := svc.Get(context.Background(), req); err != nil {
		t.Fatalf("second Get() error = %v", err)
	}
	if src.calls.Load() != 1 {
		t.Errorf("source called %d times, want 1", src.calls.Load())
	}

	cached, err := st.Quiz("f1")
	if err != nil {
		t.Fatalf("Quiz() error = %v", err)
	}
	if !cached.FetchedAt.Equal(fixed) || len(cached.Questions) != 2 {
		t.Errorf("cache entry = %+v", cached)
	}
}

func TestServicePrefetchIgnoresErrors(t *testing.T) {
	src := &fakeSource{err: errors.New("backend down")}
	st := openStore(t)
	svc := NewService(src, st)

	svc.Prefetch(context.Background(), Request{FileID: "f1"})

	if _, err := st.Quiz("f1"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("cache after failed prefetch error = %v, want ErrNotFound", err)
	}
}

func TestServiceRejectsEmptyBatch(t *testing.T) {
	src := &fakeSource{questions: []api.Question{q(9, "a", "b")}}
	svc := NewService(src, nil)

	if _, err := svc.Get(context.Background(), Request{FileID: "f1"}); err == nil {
		t.Error("Get() error = nil, want error for batch with no usable questions")
	}
}

func TestNewSource(t *testing.T) {
	client := api.NewClient("http://localhost", time.Second)

	tests := []struct {
		name    string
		cfg     Config
		client  *api.Client
		wantErr bool
	}{
		{"default backend", Config{}, client, false},
		{"backend without client", Config{Source: "backend"}, nil, true},
		{"openai", Config{Source: "openai", APIKey: "sk-test"}, nil, false},
		{"openai without key", Config{Source: "openai"}, nil, true},
		{"unknown", Config{Source: "carrier-pigeon"}, client, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSource(tt.cfg, tt.client)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewSource() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestHTTPSource(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"ok":true,"questions":[{"question":"Who?","choices":["a","b"],"answerIndex":1}]}`)
	}))
	defer server.Close()

	src := NewHTTPSource(api.NewClient(server.URL, time.Second))
	qs, err := src.Generate(context.Background(), Request{FileID: "f1"})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if len(qs) != 1 || qs[0].AnswerIndex != 1 {
		t.Errorf("questions = %+v", qs)
	}
}

func fakeOpenAI(t *testing.T, content string) *openai.Client {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		resp := openai.ChatCompletionResponse{
			ID:    "cmpl-test",
			Model: "gpt-4o-mini",
			Choices: []openai.ChatCompletionChoice{
				{Message: openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: content}},
			},
		}
		writeJSON(t, w, resp)
	}))
	t.Cleanup(server.Close)

	cfg := openai.DefaultConfig("sk-test")
	cfg.BaseURL = server.URL + "/v1"
	return openai.NewClientWithConfig(cfg)
}

func TestOpenAISourceGenerate(t *testing.T) {
	content := "```json\n" + `{"questions":[{"question":"What sat?","choices":["cat","dog","hat"],"answerIndex":0,"explanation":"First sentence."}]}` + "\n```"
	src := newOpenAISourceWithClient(fakeOpenAI(t, content), Config{Count: 1})

	qs, err := src.Generate(context.Background(), Request{FileID: "f1", Passage: "The cat sat."})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if len(qs) != 1 || qs[0].Choices[0] != "cat" || qs[0].Explanation == "" {
		t.Errorf("questions = %+v", qs)
	}
}

func TestOpenAISourceBadContent(t *testing.T) {
	src := newOpenAISourceWithClient(fakeOpenAI(t, "sorry, I cannot"), Config{})

	if _, err := src.Generate(context.Background(), Request{Passage: "The cat sat."}); err == nil {
		t.Error("Generate() error = nil, want decode error")
	}
	if _, err := src.Generate(context.Background(), Request{Passage: "  "}); err == nil {
		t.Error("Generate() error = nil for empty passage")
	}
}

func TestBuildSystemPrompt(t *testing.T) {
	p := BuildSystemPrompt("beginner", "inference", 3)
	for _, want := range []string{"3 multiple-choice", "beginner", "inference", "0-based", `"questions"`} {
		if !strings.Contains(p, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
	if !strings.Contains(BuildSystemPrompt("", "", 0), "5 multiple-choice") {
		t.Error("default count should be 5")
	}
}
