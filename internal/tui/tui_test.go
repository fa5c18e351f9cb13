package tui

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/leonardotrapani/readalong/internal/api"
	"github.com/leonardotrapani/readalong/internal/config"
	"github.com/leonardotrapani/readalong/internal/language"
	"github.com/leonardotrapani/readalong/internal/readalong"
)

func init() {
	lipgloss.SetColorProfile(termenv.Ascii)
}

func snapshot() readalong.Snapshot {
	return readalong.Snapshot{
		State:     readalong.StateSentenceActive,
		FileID:    "f",
		Sentences: []string{"The cat sat.", "It was happy!", "Then it slept."},
		Index:     1,
		Passed:    []bool{true, false, false},
		Feedback:  "Reading...",
	}
}

func TestRenderPassage(t *testing.T) {
	got := RenderPassage(snapshot(), 0)
	want := "The cat sat. It was happy! Then it slept."
	if got != want {
		t.Errorf("RenderPassage() = %q, want %q", got, want)
	}

	if got := RenderPassage(readalong.Snapshot{Index: -1}, 0); got != "No passage loaded" {
		t.Errorf("RenderPassage(empty) = %q", got)
	}

	wrapped := RenderPassage(snapshot(), 16)
	if !strings.Contains(wrapped, "\n") {
		t.Errorf("RenderPassage(width=16) should wrap, got %q", wrapped)
	}
}

func TestRenderProgress(t *testing.T) {
	tests := []struct {
		name string
		mod  func(s *readalong.Snapshot)
		want string
	}{
		{name: "active", mod: func(s *readalong.Snapshot) {}, want: "Sentence 2 of 3 - 1 passed"},
		{name: "auto", mod: func(s *readalong.Snapshot) { s.AutoEvaluate = true }, want: "Sentence 2 of 3 - 1 passed - auto"},
		{name: "not started", mod: func(s *readalong.Snapshot) { s.Index = -1; s.Passed = []bool{false, false, false} }, want: "Sentence 1 of 3 - 0 passed"},
		{
			name: "complete",
			mod: func(s *readalong.Snapshot) {
				s.Complete = true
				s.Passed = []bool{true, true, true}
			},
			want: "Finished - 3 of 3 passed",
		},
		{name: "empty", mod: func(s *readalong.Snapshot) { s.Sentences = nil }, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := snapshot()
			tt.mod(&s)
			if got := RenderProgress(s); got != tt.want {
				t.Errorf("RenderProgress() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRenderScreen(t *testing.T) {
	s := snapshot()
	s.Transcript = "it was"
	out := RenderScreen(s, 80)
	for _, want := range []string{"Sentence 2 of 3", "The cat sat.", "heard: it was", "Reading..."} {
		if !strings.Contains(out, want) {
			t.Errorf("RenderScreen() missing %q:\n%s", want, out)
		}
	}

	s.State = readalong.StateFailed
	if strings.Contains(RenderScreen(s, 80), "heard:") {
		t.Error("transcript should only show while reading")
	}
}

func TestGradeQuiz(t *testing.T) {
	questions := []api.Question{
		{Question: "Who sat?", Choices: []string{"cat", "dog"}, AnswerIndex: 0},
		{Question: "How was it?", Choices: []string{"sad", "happy"}, AnswerIndex: 1},
		{Question: "Then?", Choices: []string{"ran", "slept"}, AnswerIndex: 1},
	}

	tests := []struct {
		name    string
		answers []int
		correct int
		missed  []int
	}{
		{name: "all right", answers: []int{0, 1, 1}, correct: 3},
		{name: "one wrong", answers: []int{0, 0, 1}, correct: 2, missed: []int{1}},
		{name: "stopped early", answers: []int{0, -1, -1}, correct: 1, missed: []int{1, 2}},
		{name: "short answers", answers: []int{0}, correct: 1, missed: []int{1, 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := GradeQuiz(questions, tt.answers)
			if res.Correct != tt.correct || res.Total != 3 {
				t.Errorf("GradeQuiz() = %+v, want %d correct", res, tt.correct)
			}
			if len(res.Missed) != len(tt.missed) {
				t.Fatalf("Missed = %v, want %v", res.Missed, tt.missed)
			}
			for i := range tt.missed {
				if res.Missed[i] != tt.missed[i] {
					t.Errorf("Missed = %v, want %v", res.Missed, tt.missed)
				}
			}
		})
	}

	if got := RenderQuizResult(QuizResult{Correct: 3, Total: 3}); got != "You got 3 of 3 right!" {
		t.Errorf("RenderQuizResult() = %q", got)
	}
}

func TestValidators(t *testing.T) {
	tests := []struct {
		name  string
		fn    func(string) error
		input string
		ok    bool
	}{
		{"duration ok", validateDuration, "3s", true},
		{"duration zero", validateDuration, "0s", true},
		{"duration bad", validateDuration, "three", false},
		{"duration negative", validateDuration, "-1s", false},
		{"positive int", validatePositiveInt, "5", true},
		{"positive int zero", validatePositiveInt, "0", false},
		{"non-negative zero", validateNonNegativeInt, "0", true},
		{"non-negative bad", validateNonNegativeInt, "x", false},
		{"ratio ok", validateRatio, "0.6", true},
		{"ratio high", validateRatio, "1.2", false},
		{"http url", validateURLWith("http", "https"), "https://reader.example.com", true},
		{"ws for http", validateURLWith("http", "https"), "ws://localhost:3000", false},
		{"ws url", validateURLWith("ws", "wss"), "ws://localhost:3000/stt", true},
		{"bare host", validateURLWith("ws", "wss"), "localhost", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.fn(tt.input)
			if (err == nil) != tt.ok {
				t.Errorf("validator(%q) error = %v, want ok=%v", tt.input, err, tt.ok)
			}
		})
	}
}

func TestMenuLabels(t *testing.T) {
	cfg := config.DefaultConfig()

	if got := formatLanguageMenuLabel(cfg); got != "Language (Auto-detect)" {
		t.Errorf("language label = %q", got)
	}
	cfg.Transcription.Language = "es-MX"
	if got := formatLanguageMenuLabel(cfg); got != "Language (Spanish)" {
		t.Errorf("language label = %q", got)
	}

	if got := formatReadingLabel(cfg); got != "Reading (auto after 3s silence)" {
		t.Errorf("reading label = %q", got)
	}
	cfg.Reading.AutoEvaluate = false
	if got := formatReadingLabel(cfg); got != "Reading (manual evaluation)" {
		t.Errorf("reading label = %q", got)
	}

	cfg.Notifications.Enabled = false
	if got := formatNotificationsLabel(cfg); got != "Notifications (off)" {
		t.Errorf("notifications label = %q", got)
	}

	if got := maskAPIKey("sk-1234567890abcd"); got != "sk-1234...abcd" {
		t.Errorf("maskAPIKey() = %q", got)
	}
	if got := maskAPIKey(""); got != "(not set)" {
		t.Errorf("maskAPIKey(empty) = %q", got)
	}
}

func TestLanguageOptions(t *testing.T) {
	opts := getLanguageOptions("fr")
	if want := len(language.List()) + 1; len(opts) != want {
		t.Fatalf("getLanguageOptions() returned %d options, want %d", len(opts), want)
	}
	if opts[0].Value != "" {
		t.Errorf("first option should be auto-detect, got %q", opts[0].Value)
	}
	found := false
	for _, o := range opts {
		if o.Value == "fr" && strings.HasSuffix(o.Key, "(current)") {
			found = true
		}
	}
	if !found {
		t.Error("current language not marked")
	}
}
