package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/leonardotrapani/readalong/internal/readalong"
)

// RenderPassage draws the passage with passed sentences in green, the
// current one highlighted and the rest dimmed. Width 0 disables wrapping.
func RenderPassage(s readalong.Snapshot, width int) string {
	if len(s.Sentences) == 0 {
		return StyleMuted.Render("No passage loaded")
	}

	parts := make([]string, len(s.Sentences))
	for i, sentence := range s.Sentences {
		switch {
		case i < len(s.Passed) && s.Passed[i]:
			parts[i] = StyleSentencePassed.Render(sentence)
		case i == s.Index:
			parts[i] = StyleSentenceCurrent.Render(sentence)
		default:
			parts[i] = StyleSentencePending.Render(sentence)
		}
	}

	text := strings.Join(parts, " ")
	if width > 0 {
		text = lipgloss.NewStyle().Width(width).Render(text)
	}
	return text
}

// RenderProgress is the one-line position summary, e.g. "Sentence 2 of 5 - 1 passed".
func RenderProgress(s readalong.Snapshot) string {
	if s.Total() == 0 {
		return ""
	}
	passed := 0
	for _, p := range s.Passed {
		if p {
			passed++
		}
	}
	if s.Complete {
		return StyleSuccess.Render(fmt.Sprintf("Finished - %d of %d passed", passed, s.Total()))
	}
	pos := s.Index + 1
	if pos < 1 {
		pos = 1
	}
	line := fmt.Sprintf("Sentence %d of %d - %d passed", pos, s.Total(), passed)
	if s.AutoEvaluate {
		line += " - auto"
	}
	return StyleMuted.Render(line)
}

// RenderFeedback colors the learner feedback by outcome.
func RenderFeedback(s readalong.Snapshot) string {
	if s.Feedback == "" {
		return ""
	}
	switch {
	case s.State == readalong.StatePassed || s.State == readalong.StateComplete:
		return StyleSuccess.Render(s.Feedback)
	case s.Failure == readalong.FailureConnectivity || s.Failure == readalong.FailurePermission:
		return StyleError.Render(s.Feedback)
	case s.State == readalong.StateFailed:
		return StyleWarning.Render(s.Feedback)
	default:
		return StyleHighlight.Render(s.Feedback)
	}
}

// RenderScreen composes the full read-along view.
func RenderScreen(s readalong.Snapshot, width int) string {
	inner := width
	if inner > 4 {
		inner -= 4 // box padding
	}
	lines := []string{RenderProgress(s), "", RenderPassage(s, inner)}
	if s.Transcript != "" && s.State == readalong.StateSentenceActive {
		lines = append(lines, "", StyleSubtle.Render("heard: "+s.Transcript))
	}
	if fb := RenderFeedback(s); fb != "" {
		lines = append(lines, "", fb)
	}
	return StyleBox.Render(strings.Join(lines, "\n"))
}
