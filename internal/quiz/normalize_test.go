package quiz

import (
	"testing"

	"github.com/leonardotrapani/readalong/internal/api"
)

func q(answer int, choices ...string) api.Question {
	return api.Question{Question: "q?", Choices: choices, AnswerIndex: answer}
}

func TestDetectIndexBase(t *testing.T) {
	tests := []struct {
		name      string
		questions []api.Question
		want      IndexBase
	}{
		{"empty batch", nil, ZeroBased},
		{"clear zero based", []api.Question{q(0, "a", "b"), q(1, "a", "b", "c"), q(0, "a", "b")}, ZeroBased},
		{"clear one based", []api.Question{q(2, "a", "b"), q(3, "a", "b", "c"), q(1, "a", "b")}, OneBased},
		{"all ambiguous", []api.Question{q(1, "a", "b", "c"), q(2, "a", "b", "c", "d")}, ZeroBased},
		{"tie stays zero based", []api.Question{q(0, "a", "b"), q(2, "a", "b")}, ZeroBased},
		{"majority one based", []api.Question{q(0, "a", "b"), q(2, "a", "b"), q(4, "a", "b", "c", "d")}, OneBased},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectIndexBase(tt.questions); got != tt.want {
				t.Errorf("DetectIndexBase() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNormalizeAnswerIndicesShiftsOneBased(t *testing.T) {
	in := []api.Question{q(2, "a", "b"), q(3, "a", "b", "c"), q(1, "a", "b", "c")}

	out, base := NormalizeAnswerIndices(in)
	if base != OneBased {
		t.Fatalf("base = %v, want 1-based", base)
	}
	want := []int{1, 2, 0}
	for i, w := range want {
		if out[i].AnswerIndex != w {
			t.Errorf("question %d AnswerIndex = %d, want %d", i, out[i].AnswerIndex, w)
		}
	}
	if in[0].AnswerIndex != 2 {
		t.Error("input slice was modified")
	}
}

func TestNormalizeAnswerIndicesDropsInvalid(t *testing.T) {
	in := []api.Question{
		q(0, "a", "b"),
		q(5, "a", "b"),
		q(0, "only"),
		{Question: "  ", Choices: []string{"a", "b"}},
		q(-1, "a", "b"),
	}

	out, base := NormalizeAnswerIndices(in)
	if base != ZeroBased {
		t.Errorf("base = %v, want 0-based", base)
	}
	if len(out) != 1 {
		t.Errorf("kept %d questions, want 1: %+v", len(out), out)
	}
}
