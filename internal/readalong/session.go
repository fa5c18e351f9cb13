package readalong

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/leonardotrapani/readalong/internal/segment"
	"github.com/leonardotrapani/readalong/internal/similarity"
)

// State is where the controller is in the per-sentence cycle.
type State int

const (
	StateIdle State = iota
	StateSentenceActive
	StateEvaluating
	StatePassed
	StateFailed
	StateComplete
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSentenceActive:
		return "sentence_active"
	case StateEvaluating:
		return "evaluating"
	case StatePassed:
		return "passed"
	case StateFailed:
		return "failed"
	case StateComplete:
		return "complete"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// FailureKind separates content outcomes from transport problems.
type FailureKind int

const (
	FailureNone FailureKind = iota
	FailureTooShort
	FailureMismatch
	FailureConnectivity
	FailurePermission
)

func (k FailureKind) String() string {
	switch k {
	case FailureNone:
		return "none"
	case FailureTooShort:
		return "too_short"
	case FailureMismatch:
		return "mismatch"
	case FailureConnectivity:
		return "connectivity"
	case FailurePermission:
		return "permission"
	default:
		return fmt.Sprintf("failure(%d)", int(k))
	}
}

// Passage is an immutable passage and its sentence list.
type Passage struct {
	FileID    string
	Text      string
	Sentences []string
}

// NewPassage segments text into sentences.
func NewPassage(fileID, text string) (Passage, error) {
	if strings.TrimSpace(fileID) == "" {
		return Passage{}, ErrMissingFileID
	}
	sentences := segment.Split(text)
	if len(sentences) == 0 {
		return Passage{}, ErrEmptyPassage
	}
	return Passage{FileID: fileID, Text: text, Sentences: sentences}, nil
}

// ReadingSession is one pass through a passage. Index -1 means not started.
type ReadingSession struct {
	ID         string
	Passage    Passage
	Index      int
	Passed     []bool
	Transcript string
	Complete   bool

	Attempts  int
	Failures  int
	StartedAt time.Time
	EndedAt   time.Time
}

func newReadingSession(p Passage, now time.Time) *ReadingSession {
	return &ReadingSession{
		ID:        uuid.NewString(),
		Passage:   p,
		Index:     -1,
		Passed:    make([]bool, len(p.Sentences)),
		StartedAt: now,
	}
}

func (s *ReadingSession) Total() int { return len(s.Passage.Sentences) }

func (s *ReadingSession) Current() string {
	if s.Index < 0 || s.Index >= s.Total() {
		return ""
	}
	return s.Passage.Sentences[s.Index]
}

func (s *ReadingSession) IsLast() bool { return s.Index == s.Total()-1 }

func (s *ReadingSession) PassedCount() int {
	n := 0
	for _, p := range s.Passed {
		if p {
			n++
		}
	}
	return n
}

// Snapshot is a read-only copy of controller state for presenters.
type Snapshot struct {
	State          State
	FileID         string
	SessionID      string
	Sentences      []string
	Index          int
	Passed         []bool
	Transcript     string
	Failure        FailureKind
	Feedback       string
	LastVerdict    *similarity.Verdict
	AutoEvaluate   bool
	RecordDisabled bool
	Recording      bool
	SilenceArmed   bool // silence can still end the open attempt
	Settled        bool // latest hypothesis of the open attempt is final
	Complete       bool
}

func (s Snapshot) Total() int { return len(s.Sentences) }

func (s Snapshot) CurrentSentence() string {
	if s.Index < 0 || s.Index >= len(s.Sentences) {
		return ""
	}
	return s.Sentences[s.Index]
}
