package quiz

import (
	"log"
	"strings"

	"github.com/leonardotrapani/readalong/internal/api"
)

// IndexBase is the numbering a batch of answer indices was written in.
type IndexBase int

const (
	ZeroBased IndexBase = iota
	OneBased
)

func (b IndexBase) String() string {
	if b == OneBased {
		return "1-based"
	}
	return "0-based"
}

// NormalizeAnswerIndices converts a batch to 0-based answer indices. Each
// question votes: index 0 can only be 0-based, index len(choices) can only
// be 1-based, anything else abstains. The majority decides for the whole
// batch and ties stay 0-based. Questions that still point outside their
// choices, or have fewer than two choices, are dropped.
func NormalizeAnswerIndices(questions []api.Question) ([]api.Question, IndexBase) {
	base := DetectIndexBase(questions)

	out := make([]api.Question, 0, len(questions))
	for i, q := range questions {
		if base == OneBased {
			q.AnswerIndex--
		}
		if strings.TrimSpace(q.Question) == "" || len(q.Choices) < 2 {
			log.Printf("Quiz: dropping question %d: missing text or choices", i)
			continue
		}
		if q.AnswerIndex < 0 || q.AnswerIndex >= len(q.Choices) {
			log.Printf("Quiz: dropping question %d: answer index %d out of range", i, q.AnswerIndex)
			continue
		}
		q.Choices = append([]string(nil), q.Choices...)
		out = append(out, q)
	}
	return out, base
}

func DetectIndexBase(questions []api.Question) IndexBase {
	var zero, one int
	for _, q := range questions {
		switch {
		case q.AnswerIndex == 0:
			zero++
		case q.AnswerIndex == len(q.Choices) && len(q.Choices) > 0:
			one++
		}
	}
	if one > zero {
		return OneBased
	}
	return ZeroBased
}
