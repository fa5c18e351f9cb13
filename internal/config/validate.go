package config

import (
	"fmt"
	"net/url"

	"github.com/leonardotrapani/readalong/internal/language"
	"github.com/leonardotrapani/readalong/internal/similarity"
)

func (c *Config) Validate() error {
	if err := validateURL("backend.base_url", c.Backend.BaseURL, "http", "https"); err != nil {
		return err
	}
	if err := validateURL("backend.stt_url", c.Backend.STTURL, "ws", "wss"); err != nil {
		return err
	}
	if c.Backend.RequestTimeout <= 0 {
		return fmt.Errorf("invalid backend.request_timeout: %v", c.Backend.RequestTimeout)
	}

	if c.Recording.SampleRate <= 0 {
		return fmt.Errorf("invalid recording.sample_rate: %d", c.Recording.SampleRate)
	}
	if c.Recording.Channels <= 0 {
		return fmt.Errorf("invalid recording.channels: %d", c.Recording.Channels)
	}
	if c.Recording.BufferSize <= 0 {
		return fmt.Errorf("invalid recording.buffer_size: %d", c.Recording.BufferSize)
	}
	if c.Recording.ChannelBufferSize <= 0 {
		return fmt.Errorf("invalid recording.channel_buffer_size: %d", c.Recording.ChannelBufferSize)
	}
	if c.Recording.Format == "" {
		return fmt.Errorf("invalid recording.format: empty")
	}
	if c.Recording.ChunkInterval <= 0 {
		return fmt.Errorf("invalid recording.chunk_interval: %v", c.Recording.ChunkInterval)
	}

	if c.Transcription.Language != "" && !language.IsValidCode(language.Normalize(c.Transcription.Language)) {
		return fmt.Errorf("invalid transcription.language: %s (use empty string for auto-detect or ISO-639-1 codes like 'en', 'es', 'fr')", c.Transcription.Language)
	}
	if c.Transcription.HeartbeatInterval < 0 {
		return fmt.Errorf("invalid transcription.heartbeat_interval: %v", c.Transcription.HeartbeatInterval)
	}
	if c.Transcription.DialTimeout <= 0 {
		return fmt.Errorf("invalid transcription.dial_timeout: %v", c.Transcription.DialTimeout)
	}

	if c.Reading.SilenceTimeout <= 0 {
		return fmt.Errorf("invalid reading.silence_timeout: %v", c.Reading.SilenceTimeout)
	}
	if c.Reading.MaxSentenceDuration <= c.Reading.SilenceTimeout {
		return fmt.Errorf("invalid reading.max_sentence_duration: %v (must exceed silence_timeout %v)", c.Reading.MaxSentenceDuration, c.Reading.SilenceTimeout)
	}
	if c.Reading.AdvanceDelay < 0 {
		return fmt.Errorf("invalid reading.advance_delay: %v", c.Reading.AdvanceDelay)
	}
	if c.Reading.MinSpokenChars < 0 {
		return fmt.Errorf("invalid reading.min_spoken_chars: %d", c.Reading.MinSpokenChars)
	}
	if c.Reading.MinLengthRatio < 0 || c.Reading.MinLengthRatio > 1 {
		return fmt.Errorf("invalid reading.min_length_ratio: %v (must be between 0 and 1)", c.Reading.MinLengthRatio)
	}
	if c.Reading.PrefixLength < 0 {
		return fmt.Errorf("invalid reading.prefix_length: %d", c.Reading.PrefixLength)
	}
	if err := similarity.ValidateBreakpoints(c.ToScorerConfig().Thresholds); err != nil {
		return fmt.Errorf("invalid reading.thresholds: %w", err)
	}

	switch c.Quiz.Source {
	case "backend":
	case "openai":
		if c.Quiz.Model == "" {
			return fmt.Errorf("quiz.model required when quiz.source = openai")
		}
		if c.resolveQuizAPIKey() == "" {
			return fmt.Errorf("OpenAI API key required for quiz: not found in config (quiz.api_key) or environment variable (OPENAI_API_KEY)")
		}
	default:
		return fmt.Errorf("invalid quiz.source: %s (must be backend or openai)", c.Quiz.Source)
	}
	if c.Quiz.Count <= 0 {
		return fmt.Errorf("invalid quiz.count: %d", c.Quiz.Count)
	}

	validTypes := map[string]bool{"desktop": true, "log": true, "none": true}
	if !validTypes[c.Notifications.Type] {
		return fmt.Errorf("invalid notifications.type: %s (must be desktop, log, or none)", c.Notifications.Type)
	}

	if c.Store.QuizTTL < 0 {
		return fmt.Errorf("invalid store.quiz_ttl: %v", c.Store.QuizTTL)
	}

	return nil
}

func validateURL(key, raw string, schemes ...string) error {
	if raw == "" {
		return fmt.Errorf("invalid %s: empty", key)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	for _, s := range schemes {
		if u.Scheme == s && u.Host != "" {
			return nil
		}
	}
	return fmt.Errorf("invalid %s: %s (scheme must be one of %v)", key, raw, schemes)
}
