package store

import (
	"errors"
	"testing"
	"time"

	"github.com/leonardotrapani/readalong/internal/api"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := OpenInMemory()
	if err != nil {
		t.Fatalf("OpenInMemory() error = %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestLastFileID(t *testing.T) {
	s := openTestStore(t)

	if _, err := s.LastFileID(); !errors.Is(err, ErrNotFound) {
		t.Fatalf("LastFileID() on empty store error = %v, want ErrNotFound", err)
	}

	if err := s.SetLastFileID("file-1"); err != nil {
		t.Fatalf("SetLastFileID() error = %v", err)
	}
	if err := s.SetLastFileID("file-2"); err != nil {
		t.Fatalf("SetLastFileID() error = %v", err)
	}

	got, err := s.LastFileID()
	if err != nil {
		t.Fatalf("LastFileID() error = %v", err)
	}
	if got != "file-2" {
		t.Errorf("LastFileID() = %q, want file-2", got)
	}
}

func TestQuizCache(t *testing.T) {
	s := openTestStore(t)

	fetched := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	in := QuizCache{
		FileID: "file-1",
		Questions: []api.Question{
			{Question: "Who sat?", Choices: []string{"cat", "dog", "bird"}, AnswerIndex: 0, Explanation: "The cat sat."},
			{Question: "How was it?", Choices: []string{"sad", "happy"}, AnswerIndex: 1},
		},
		FetchedAt: fetched,
	}
	if err := s.PutQuiz(in); err != nil {
		t.Fatalf("PutQuiz() error = %v", err)
	}

	out, err := s.Quiz("file-1")
	if err != nil {
		t.Fatalf("Quiz() error = %v", err)
	}
	if len(out.Questions) != 2 || out.Questions[1].AnswerIndex != 1 || out.Questions[0].Choices[2] != "bird" {
		t.Errorf("Quiz() questions = %+v", out.Questions)
	}
	if !out.FetchedAt.Equal(fetched) {
		t.Errorf("FetchedAt = %v, want %v", out.FetchedAt, fetched)
	}

	if _, err := s.Quiz("other"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Quiz(other) error = %v, want ErrNotFound", err)
	}
	if err := s.PutQuiz(QuizCache{}); err == nil {
		t.Error("PutQuiz() without fileId should fail")
	}
}

func TestReadingStats(t *testing.T) {
	s := openTestStore(t)

	start := time.Now().Truncate(time.Millisecond)
	st := ReadingStats{
		FileID:    "file-1",
		SessionID: "sess",
		Sentences: 4,
		Passed:    2,
		Failed:    1,
		Attempts:  3,
		StartedAt: start,
	}
	if err := s.PutReadingStats(st); err != nil {
		t.Fatalf("PutReadingStats() error = %v", err)
	}

	got, err := s.ReadingStats("file-1")
	if err != nil {
		t.Fatalf("ReadingStats() error = %v", err)
	}
	if got.Passed != 2 || got.Attempts != 3 || got.SessionID != "sess" || got.Complete() {
		t.Errorf("ReadingStats() = %+v", got)
	}

	st.Passed = 4
	st.CompletedAt = start.Add(time.Minute)
	if err := s.PutReadingStats(st); err != nil {
		t.Fatalf("PutReadingStats() error = %v", err)
	}
	got, _ = s.ReadingStats("file-1")
	if !got.Complete() || got.Passed != 4 {
		t.Errorf("updated stats = %+v", got)
	}
}

func TestOpenOnDisk(t *testing.T) {
	dir := t.TempDir()

	s, err := Open(Options{Dir: dir})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if err := s.SetLastFileID("persisted"); err != nil {
		t.Fatalf("SetLastFileID() error = %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	s, err = Open(Options{Dir: dir})
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer s.Close()

	if got, err := s.LastFileID(); err != nil || got != "persisted" {
		t.Errorf("LastFileID() = %q, %v", got, err)
	}
}
