package quiz

import (
	"fmt"
	"strings"
)

// BuildSystemPrompt generates the system prompt for question generation
func BuildSystemPrompt(level, style string, count int) string {
	if count <= 0 {
		count = 5
	}

	var b strings.Builder
	b.WriteString("You write reading-comprehension quizzes for language learners.\n\n")
	fmt.Fprintf(&b, "Write %d multiple-choice questions about the passage the user sends.\n", count)
	if level != "" {
		fmt.Fprintf(&b, "Target difficulty: %s.\n", level)
	}
	if style != "" {
		fmt.Fprintf(&b, "Question style: %s.\n", style)
	}

	b.WriteString("\nRules:\n")
	b.WriteString("- Ask only about what the passage says\n")
	b.WriteString("- Write questions in the same language as the passage\n")
	b.WriteString("- Give 3 to 5 choices per question with exactly one correct answer\n")
	b.WriteString("- answerIndex is the 0-based position of the correct choice\n")
	b.WriteString("- Keep explanations to one sentence\n")
	b.WriteString("\nRespond with JSON only, shaped as:\n")
	b.WriteString(`{"questions":[{"question":"...","choices":["...","..."],"answerIndex":0,"explanation":"..."}]}`)
	b.WriteString("\n")
	return b.String()
}

// BuildUserPrompt wraps the passage text
func BuildUserPrompt(passage string) string {
	return "Passage:\n" + strings.TrimSpace(passage)
}
