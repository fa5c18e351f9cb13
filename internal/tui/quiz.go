package tui

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/huh"

	"github.com/leonardotrapani/readalong/internal/api"
)

// QuizResult is the outcome of one quiz run.
type QuizResult struct {
	Correct int
	Total   int
	// Missed holds the indexes of wrongly answered questions.
	Missed []int
}

// GradeQuiz compares answers against the questions' answer indexes. A
// missing or negative answer counts as wrong.
func GradeQuiz(questions []api.Question, answers []int) QuizResult {
	res := QuizResult{Total: len(questions)}
	for i, q := range questions {
		if i < len(answers) && answers[i] >= 0 && answers[i] == q.AnswerIndex {
			res.Correct++
			continue
		}
		res.Missed = append(res.Missed, i)
	}
	return res
}

// RunQuiz asks each question in turn and prints the explanation after
// every answer. Esc ends the quiz early; remaining questions count as
// missed.
func RunQuiz(questions []api.Question) (QuizResult, error) {
	answers := make([]int, len(questions))
	for i := range answers {
		answers[i] = -1
	}

	for i, q := range questions {
		if len(q.Choices) == 0 {
			continue
		}
		options := make([]huh.Option[int], len(q.Choices))
		for j, choice := range q.Choices {
			options[j] = huh.NewOption(choice, j)
		}

		choice := -1
		form := huh.NewForm(
			huh.NewGroup(
				huh.NewSelect[int]().
					Title(fmt.Sprintf("%d. %s", i+1, q.Question)).
					Description("↑/↓ navigate • enter answer • esc stop").
					Options(options...).
					Value(&choice),
			),
		).WithTheme(getTheme())

		if err := form.Run(); err != nil {
			if errors.Is(err, huh.ErrUserAborted) {
				break
			}
			return QuizResult{}, err
		}
		answers[i] = choice

		if choice == q.AnswerIndex {
			fmt.Println(StyleSuccess.Render("Correct!"))
		} else if q.AnswerIndex >= 0 && q.AnswerIndex < len(q.Choices) {
			fmt.Println(StyleWarning.Render("The answer was: " + q.Choices[q.AnswerIndex]))
		}
		if q.Explanation != "" {
			fmt.Println(StyleSubtle.Render(q.Explanation))
		}
		fmt.Println()
	}

	return GradeQuiz(questions, answers), nil
}

// RenderQuizResult is the closing score line.
func RenderQuizResult(r QuizResult) string {
	line := fmt.Sprintf("You got %d of %d right", r.Correct, r.Total)
	if r.Total > 0 && r.Correct == r.Total {
		return StyleSuccess.Render(line + "!")
	}
	return StyleHighlight.Render(line)
}
