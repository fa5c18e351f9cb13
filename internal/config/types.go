package config

import "time"

type Config struct {
	Backend       BackendConfig       `toml:"backend"`
	Recording     RecordingConfig     `toml:"recording"`
	Transcription TranscriptionConfig `toml:"transcription"`
	Reading       ReadingConfig       `toml:"reading"`
	Quiz          QuizConfig          `toml:"quiz"`
	Notifications NotificationsConfig `toml:"notifications"`
	Store         StoreConfig         `toml:"store"`
}

// BackendConfig locates the reading backend and its streaming STT socket
type BackendConfig struct {
	BaseURL        string        `toml:"base_url"`
	STTURL         string        `toml:"stt_url"`
	RequestTimeout time.Duration `toml:"request_timeout"`
}

type RecordingConfig struct {
	SampleRate        int           `toml:"sample_rate"`
	Channels          int           `toml:"channels"`
	Format            string        `toml:"format"`
	BufferSize        int           `toml:"buffer_size"`
	Device            string        `toml:"device"`
	ChannelBufferSize int           `toml:"channel_buffer_size"`
	ChunkInterval     time.Duration `toml:"chunk_interval"`
}

type TranscriptionConfig struct {
	Language          string        `toml:"language"`
	HeartbeatInterval time.Duration `toml:"heartbeat_interval"`
	DialTimeout       time.Duration `toml:"dial_timeout"`
}

// ReadingConfig tunes sentence evaluation
type ReadingConfig struct {
	AutoEvaluate        bool              `toml:"auto_evaluate"`
	SilenceTimeout      time.Duration     `toml:"silence_timeout"`
	MaxSentenceDuration time.Duration     `toml:"max_sentence_duration"`
	AdvanceDelay        time.Duration     `toml:"advance_delay"`
	MinSpokenChars      int               `toml:"min_spoken_chars"`
	MinLengthRatio      float64           `toml:"min_length_ratio"`
	PrefixLength        int               `toml:"prefix_length"`
	Thresholds          []ThresholdConfig `toml:"thresholds"`
}

// ThresholdConfig is one step of the length-adaptive pass threshold
type ThresholdConfig struct {
	MaxLength int     `toml:"max_length"`
	Threshold float64 `toml:"threshold"`
}

type QuizConfig struct {
	Source   string `toml:"source"` // "backend" or "openai"
	Level    string `toml:"level"`
	Style    string `toml:"style"`
	Prefetch bool   `toml:"prefetch"`
	Model    string `toml:"model"`
	APIKey   string `toml:"api_key"`
	Count    int    `toml:"count"`
}

type NotificationsConfig struct {
	Enabled bool   `toml:"enabled"`
	Type    string `toml:"type"` // "desktop", "log", "none"
}

type StoreConfig struct {
	// Dir holds the session store; empty keeps it in memory.
	Dir     string        `toml:"dir"`
	QuizTTL time.Duration `toml:"quiz_ttl"`
}
