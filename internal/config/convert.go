package config

import (
	"os"

	"github.com/leonardotrapani/readalong/internal/language"
	"github.com/leonardotrapani/readalong/internal/quiz"
	"github.com/leonardotrapani/readalong/internal/recording"
	"github.com/leonardotrapani/readalong/internal/similarity"
	"github.com/leonardotrapani/readalong/internal/store"
	"github.com/leonardotrapani/readalong/internal/transcriber"
)

func (c *Config) ToRecordingConfig() recording.Config {
	return recording.Config{
		SampleRate:        c.Recording.SampleRate,
		Channels:          c.Recording.Channels,
		Format:            c.Recording.Format,
		BufferSize:        c.Recording.BufferSize,
		Device:            c.Recording.Device,
		ChannelBufferSize: c.Recording.ChannelBufferSize,
		ChunkInterval:     c.Recording.ChunkInterval,
	}
}

func (c *Config) ToTranscriberConfig() transcriber.Config {
	config := transcriber.DefaultConfig()
	config.URL = c.Backend.STTURL
	config.Language = language.Normalize(c.Transcription.Language)
	config.HeartbeatInterval = c.Transcription.HeartbeatInterval
	config.DialTimeout = c.Transcription.DialTimeout
	return config
}

func (c *Config) ToScorerConfig() similarity.Config {
	bps := make([]similarity.Breakpoint, len(c.Reading.Thresholds))
	for i, t := range c.Reading.Thresholds {
		bps[i] = similarity.Breakpoint{MaxLength: t.MaxLength, Threshold: t.Threshold}
	}
	return similarity.Config{
		Thresholds:     bps,
		MinSpokenChars: c.Reading.MinSpokenChars,
		MinLengthRatio: c.Reading.MinLengthRatio,
		PrefixLength:   c.Reading.PrefixLength,
	}
}

func (c *Config) ToQuizConfig() quiz.Config {
	return quiz.Config{
		Source:   c.Quiz.Source,
		Level:    c.Quiz.Level,
		Style:    c.Quiz.Style,
		Model:    c.Quiz.Model,
		APIKey:   c.resolveQuizAPIKey(),
		Count:    c.Quiz.Count,
		Prefetch: c.Quiz.Prefetch,
	}
}

func (c *Config) ToStoreOptions() store.Options {
	return store.Options{
		Dir:     c.Store.Dir,
		QuizTTL: c.Store.QuizTTL,
	}
}

// resolveQuizAPIKey prefers the config file and falls back to OPENAI_API_KEY
func (c *Config) resolveQuizAPIKey() string {
	if c.Quiz.APIKey != "" {
		return c.Quiz.APIKey
	}
	return os.Getenv("OPENAI_API_KEY")
}
