package daemon

import (
	"fmt"
	"log"

	"github.com/leonardotrapani/readalong/internal/api"
	"github.com/leonardotrapani/readalong/internal/config"
	"github.com/leonardotrapani/readalong/internal/notify"
	"github.com/leonardotrapani/readalong/internal/quiz"
	"github.com/leonardotrapani/readalong/internal/readalong"
	"github.com/leonardotrapani/readalong/internal/recording"
	"github.com/leonardotrapani/readalong/internal/store"
	"github.com/leonardotrapani/readalong/internal/transcriber"
)

// ControllerConfig maps the reading section of the config file onto the
// controller's settings.
func ControllerConfig(c *config.Config) readalong.Config {
	rc := readalong.DefaultConfig()
	rc.AutoEvaluate = c.Reading.AutoEvaluate
	rc.SilenceTimeout = c.Reading.SilenceTimeout
	rc.MaxSentenceDuration = c.Reading.MaxSentenceDuration
	rc.AdvanceDelay = c.Reading.AdvanceDelay
	rc.DialTimeout = c.Transcription.DialTimeout
	rc.Scorer = c.ToScorerConfig()
	return rc
}

// LoaderConfig maps the quiz section onto the passage loader.
func LoaderConfig(c *config.Config) readalong.LoaderConfig {
	return readalong.LoaderConfig{
		Prefetch:          c.Quiz.Prefetch,
		PrefetchNeedsText: c.Quiz.Source == "openai",
		Level:             c.Quiz.Level,
		Style:             c.Quiz.Style,
	}
}

// Session is a wired reading stack that has not been attached to a socket.
type Session struct {
	Controller *readalong.Controller
	Loader     *readalong.Loader
	Notifier   notify.Notifier
	Store      *store.Store
	Quizzes    *quiz.Service
}

// Close releases the store. The controller is disposed by whoever runs it.
func (s *Session) Close() error {
	s.Loader.Close()
	return s.Store.Close()
}

// Assemble wires the PipeWire recorder, the STT socket dialer, the backend
// client, the session store and the quiz service around one controller.
// onChange may be nil.
func Assemble(cfg *config.Config, onChange func(readalong.Snapshot)) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	st, err := store.Open(cfg.ToStoreOptions())
	if err != nil {
		return nil, err
	}

	client := api.NewClient(cfg.Backend.BaseURL, cfg.Backend.RequestTimeout)
	source, err := quiz.NewSource(cfg.ToQuizConfig(), client)
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("quiz source: %w", err)
	}
	quizzes := quiz.NewService(source, st)

	notifier := notify.New(cfg.Notifications.Type, cfg.Notifications.Enabled)
	ctrl, err := readalong.New(ControllerConfig(cfg), readalong.Deps{
		Microphone: recording.NewRecorder(cfg.ToRecordingConfig()),
		Dialer:     transcriber.NewWSDialer(cfg.ToTranscriberConfig()),
		Notifier:   notifier,
		Stats:      st,
		OnChange:   onChange,
	})
	if err != nil {
		st.Close()
		return nil, err
	}

	log.Printf("Daemon: backend %s, stt %s, quiz source %s", cfg.Backend.BaseURL, cfg.Backend.STTURL, cfg.Quiz.Source)

	return &Session{
		Controller: ctrl,
		Loader:     readalong.NewLoader(client, quizzes, st, LoaderConfig(cfg)),
		Notifier:   notifier,
		Store:      st,
		Quizzes:    quizzes,
	}, nil
}

// Build assembles a daemon from the managed config.
func Build(m *config.Manager) (*Daemon, error) {
	sess, err := Assemble(m.GetConfig(), nil)
	if err != nil {
		return nil, err
	}

	return New(Options{
		Controller: sess.Controller,
		Loader:     sess.Loader,
		Notifier:   sess.Notifier,
		Config:     m,
		Closers:    []func() error{sess.Store.Close},
	})
}
