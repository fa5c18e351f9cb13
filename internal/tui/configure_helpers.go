package tui

import (
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/charmbracelet/huh"

	"github.com/leonardotrapani/readalong/internal/config"
	"github.com/leonardotrapani/readalong/internal/language"
)

func formatBackendLabel(cfg *config.Config) string {
	return fmt.Sprintf("Backend (%s)", cfg.Backend.BaseURL)
}

// formatLanguageMenuLabel formats the language menu option showing current setting
func formatLanguageMenuLabel(cfg *config.Config) string {
	code := language.Normalize(cfg.Transcription.Language)
	if code == "" {
		return "Language (Auto-detect)"
	}
	return fmt.Sprintf("Language (%s)", language.FromCode(code).Name)
}

func formatReadingLabel(cfg *config.Config) string {
	if cfg.Reading.AutoEvaluate {
		return fmt.Sprintf("Reading (auto after %s silence)", cfg.Reading.SilenceTimeout)
	}
	return "Reading (manual evaluation)"
}

func formatQuizLabel(cfg *config.Config) string {
	return fmt.Sprintf("Quiz (%s, %s)", cfg.Quiz.Source, cfg.Quiz.Level)
}

// formatNotificationsLabel formats the notifications menu option
func formatNotificationsLabel(cfg *config.Config) string {
	if !cfg.Notifications.Enabled {
		return "Notifications (off)"
	}
	return fmt.Sprintf("Notifications (%s)", cfg.Notifications.Type)
}

func maskAPIKey(key string) string {
	if key == "" {
		return "(not set)"
	}
	if len(key) <= 8 {
		return "***"
	}
	return key[:7] + "..." + key[len(key)-4:]
}

func validateDuration(s string) error {
	d, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration format (use '500ms', '3s', '1m', etc.)")
	}
	if d < 0 {
		return fmt.Errorf("must not be negative")
	}
	return nil
}

func validatePositiveInt(s string) error {
	n, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("must be a number")
	}
	if n <= 0 {
		return fmt.Errorf("must be greater than zero")
	}
	return nil
}

func validateNonNegativeInt(s string) error {
	n, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("must be a number")
	}
	if n < 0 {
		return fmt.Errorf("must not be negative")
	}
	return nil
}

func validateRatio(s string) error {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("must be a decimal number")
	}
	if f < 0 || f > 1 {
		return fmt.Errorf("must be between 0 and 1")
	}
	return nil
}

func validateURLWith(schemes ...string) func(string) error {
	return func(s string) error {
		u, err := url.Parse(s)
		if err != nil || u.Host == "" {
			return fmt.Errorf("must be a full URL")
		}
		for _, scheme := range schemes {
			if u.Scheme == scheme {
				return nil
			}
		}
		return fmt.Errorf("scheme must be one of %v", schemes)
	}
}

func showSummary(cfg *config.Config) (bool, error) {
	fmt.Println()
	fmt.Println(StyleHeader.Render("Configuration Summary"))
	fmt.Println()

	fmt.Printf("  %s %s\n", StyleLabel.Render("Backend:"), cfg.Backend.BaseURL)
	fmt.Printf("  %s %s\n", StyleLabel.Render("Speech-to-text:"), cfg.Backend.STTURL)
	fmt.Printf("  %s %s\n", StyleLabel.Render("Language:"), language.Label(language.Normalize(cfg.Transcription.Language)))

	if cfg.Reading.AutoEvaluate {
		fmt.Printf("  %s automatic after %s of silence\n", StyleLabel.Render("Evaluation:"), cfg.Reading.SilenceTimeout)
	} else {
		fmt.Printf("  %s manual\n", StyleLabel.Render("Evaluation:"))
	}
	fmt.Printf("  %s %s\n", StyleLabel.Render("Next sentence after:"), cfg.Reading.AdvanceDelay)

	fmt.Printf("  %s %s (%s, %s, %d questions)\n", StyleLabel.Render("Quiz:"), cfg.Quiz.Source, cfg.Quiz.Level, cfg.Quiz.Style, cfg.Quiz.Count)
	if cfg.Quiz.Source == "openai" {
		fmt.Printf("  %s %s\n", StyleLabel.Render("OpenAI key:"), maskAPIKey(cfg.Quiz.APIKey))
	}

	if cfg.Notifications.Enabled {
		fmt.Printf("  %s %s\n", StyleLabel.Render("Notifications:"), cfg.Notifications.Type)
	} else {
		fmt.Printf("  %s disabled\n", StyleLabel.Render("Notifications:"))
	}

	fmt.Println()

	var confirmed bool
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Save this configuration?").
				Affirmative("Save").
				Negative("Cancel").
				Value(&confirmed),
		),
	).WithTheme(getTheme())

	if err := form.Run(); err != nil {
		return false, err
	}

	return confirmed, nil
}
