package tui

import (
	"github.com/charmbracelet/huh"

	"github.com/leonardotrapani/readalong/internal/config"
	"github.com/leonardotrapani/readalong/internal/language"
)

// getLanguageOptions lists auto-detect first, then every language by name
func getLanguageOptions(currentLang string) []huh.Option[string] {
	options := make([]huh.Option[string], 0, len(language.List())+1)

	autoLabel := "Auto-detect (recommended)"
	if currentLang == "" {
		autoLabel += " (current)"
	}
	options = append(options, huh.NewOption(autoLabel, ""))

	for _, lang := range language.List() {
		label := language.Label(lang.Code)
		if lang.Code == currentLang {
			label += " (current)"
		}
		options = append(options, huh.NewOption(label, lang.Code))
	}

	return options
}

// editLanguage selects the language hint sent to the STT endpoint
func editLanguage(cfg *config.Config) error {
	selected := language.Normalize(cfg.Transcription.Language)

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Reading Language").
				Description("Language of the passages. Auto-detect lets the server decide.").
				Options(getLanguageOptions(selected)...).
				Filtering(true).
				Value(&selected),
		),
	).WithTheme(getTheme())

	if err := form.Run(); err != nil {
		return err
	}

	cfg.Transcription.Language = selected
	return nil
}
