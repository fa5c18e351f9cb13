package tui

import (
	"strconv"
	"time"

	"github.com/charmbracelet/huh"

	"github.com/leonardotrapani/readalong/internal/config"
)

// editBackend handles the backend and STT endpoints
func editBackend(cfg *config.Config) error {
	baseURL := cfg.Backend.BaseURL
	sttURL := cfg.Backend.STTURL
	timeout := cfg.Backend.RequestTimeout.String()

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Backend URL").
				Description("Serves /api/ocr, /api/quiz and /api/upload").
				Placeholder("http://localhost:3000").
				Value(&baseURL).
				Validate(validateURLWith("http", "https")),
			huh.NewInput().
				Title("Speech-to-text URL").
				Description("Streaming websocket endpoint").
				Placeholder("ws://localhost:3000/stt").
				Value(&sttURL).
				Validate(validateURLWith("ws", "wss")),
			huh.NewInput().
				Title("Request Timeout").
				Description("Limit for OCR, quiz and upload requests").
				Placeholder("60s").
				Value(&timeout).
				Validate(validateDuration),
		),
	).WithTheme(getTheme())

	if err := form.Run(); err != nil {
		return err
	}

	cfg.Backend.BaseURL = baseURL
	cfg.Backend.STTURL = sttURL
	cfg.Backend.RequestTimeout, _ = time.ParseDuration(timeout)
	return nil
}

// editReading handles evaluation timing and scoring leniency
func editReading(cfg *config.Config) error {
	auto := cfg.Reading.AutoEvaluate
	silenceTimeout := cfg.Reading.SilenceTimeout.String()
	maxDuration := cfg.Reading.MaxSentenceDuration.String()
	advanceDelay := cfg.Reading.AdvanceDelay.String()
	minChars := strconv.Itoa(cfg.Reading.MinSpokenChars)
	minRatio := strconv.FormatFloat(cfg.Reading.MinLengthRatio, 'f', -1, 64)
	prefix := strconv.Itoa(cfg.Reading.PrefixLength)

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Evaluate automatically?").
				Description("Check the sentence once the reader goes quiet. Otherwise press toggle when done.").
				Value(&auto),
			huh.NewInput().
				Title("Silence Timeout").
				Description("Quiet period that ends a sentence (e.g., '3s')").
				Placeholder("3s").
				Value(&silenceTimeout).
				Validate(validateDuration),
			huh.NewInput().
				Title("Max Sentence Duration").
				Description("Evaluate anyway after this long").
				Placeholder("60s").
				Value(&maxDuration).
				Validate(validateDuration),
			huh.NewInput().
				Title("Advance Delay").
				Description("How long \"Good job!\" stays before the next sentence").
				Placeholder("2s").
				Value(&advanceDelay).
				Validate(validateDuration),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Minimum Spoken Characters").
				Description("Shorter attempts are asked to read longer").
				Placeholder("3").
				Value(&minChars).
				Validate(validateNonNegativeInt),
			huh.NewInput().
				Title("Minimum Length Ratio").
				Description("Spoken/expected length below this asks to read to the end (0-1)").
				Placeholder("0.6").
				Value(&minRatio).
				Validate(validateRatio),
			huh.NewInput().
				Title("Prefix Match Length").
				Description("Accept attempts containing the sentence's first N characters (0 disables)").
				Placeholder("4").
				Value(&prefix).
				Validate(validateNonNegativeInt),
		),
	).WithTheme(getTheme())

	if err := form.Run(); err != nil {
		return err
	}

	cfg.Reading.AutoEvaluate = auto
	cfg.Reading.SilenceTimeout, _ = time.ParseDuration(silenceTimeout)
	cfg.Reading.MaxSentenceDuration, _ = time.ParseDuration(maxDuration)
	cfg.Reading.AdvanceDelay, _ = time.ParseDuration(advanceDelay)
	cfg.Reading.MinSpokenChars, _ = strconv.Atoi(minChars)
	cfg.Reading.MinLengthRatio, _ = strconv.ParseFloat(minRatio, 64)
	cfg.Reading.PrefixLength, _ = strconv.Atoi(prefix)
	return nil
}

// editQuiz handles the comprehension quiz source and difficulty
func editQuiz(cfg *config.Config) error {
	source := cfg.Quiz.Source
	level := cfg.Quiz.Level
	style := cfg.Quiz.Style
	prefetch := cfg.Quiz.Prefetch
	count := strconv.Itoa(cfg.Quiz.Count)

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Question Source").
				Options(
					huh.NewOption("Reading backend (/api/quiz)", "backend"),
					huh.NewOption("OpenAI (generated locally from the passage)", "openai"),
				).
				Value(&source),
			huh.NewSelect[string]().
				Title("Level").
				Options(
					huh.NewOption("Easy", "easy"),
					huh.NewOption("Medium", "medium"),
					huh.NewOption("Hard", "hard"),
				).
				Value(&level),
			huh.NewSelect[string]().
				Title("Style").
				Options(
					huh.NewOption("Mixed", "mixed"),
					huh.NewOption("Recall", "recall"),
					huh.NewOption("Inference", "inference"),
					huh.NewOption("Vocabulary", "vocabulary"),
				).
				Value(&style),
			huh.NewInput().
				Title("Questions").
				Placeholder("5").
				Value(&count).
				Validate(validatePositiveInt),
			huh.NewConfirm().
				Title("Prefetch while reading?").
				Description("Warm the question cache as soon as a passage opens").
				Value(&prefetch),
		),
	).WithTheme(getTheme())

	if err := form.Run(); err != nil {
		return err
	}

	cfg.Quiz.Source = source
	cfg.Quiz.Level = level
	cfg.Quiz.Style = style
	cfg.Quiz.Prefetch = prefetch
	cfg.Quiz.Count, _ = strconv.Atoi(count)

	if source != "openai" {
		return nil
	}

	model := cfg.Quiz.Model
	apiKey := cfg.Quiz.APIKey
	keyForm := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("OpenAI Model").
				Placeholder("gpt-4o-mini").
				Value(&model),
			huh.NewInput().
				Title("OpenAI API Key").
				Description("Leave empty to use OPENAI_API_KEY. Current: "+maskAPIKey(cfg.Quiz.APIKey)).
				EchoMode(huh.EchoModePassword).
				Value(&apiKey),
		),
	).WithTheme(getTheme())

	if err := keyForm.Run(); err != nil {
		return err
	}

	cfg.Quiz.Model = model
	cfg.Quiz.APIKey = apiKey
	return nil
}
