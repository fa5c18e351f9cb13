package config

import "time"

// DefaultConfig returns the configuration used when no file exists yet.
func DefaultConfig() *Config {
	return &Config{
		Backend: BackendConfig{
			BaseURL:        "http://localhost:3000",
			STTURL:         "ws://localhost:3000/stt",
			RequestTimeout: 60 * time.Second,
		},
		Recording: RecordingConfig{
			SampleRate:        16000,
			Channels:          1,
			Format:            "s16le",
			BufferSize:        4096,
			Device:            "",
			ChannelBufferSize: 20,
			ChunkInterval:     time.Second,
		},
		Transcription: TranscriptionConfig{
			Language:          "",
			HeartbeatInterval: 10 * time.Second,
			DialTimeout:       10 * time.Second,
		},
		Reading: ReadingConfig{
			AutoEvaluate:        true,
			SilenceTimeout:      3 * time.Second,
			MaxSentenceDuration: 60 * time.Second,
			AdvanceDelay:        2 * time.Second,
			MinSpokenChars:      3,
			MinLengthRatio:      0.6,
			PrefixLength:        4,
			Thresholds:          DefaultThresholds(),
		},
		Quiz: QuizConfig{
			Source:   "backend",
			Level:    "medium",
			Style:    "mixed",
			Prefetch: true,
			Model:    "gpt-4o-mini",
			Count:    5,
		},
		Notifications: NotificationsConfig{
			Enabled: true,
			Type:    "desktop",
		},
		Store: StoreConfig{
			Dir:     "",
			QuizTTL: 0,
		},
	}
}

func DefaultThresholds() []ThresholdConfig {
	return []ThresholdConfig{
		{MaxLength: 10, Threshold: 0.55},
		{MaxLength: 20, Threshold: 0.6},
		{MaxLength: 40, Threshold: 0.65},
		{MaxLength: 80, Threshold: 0.7},
	}
}
