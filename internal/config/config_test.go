package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// createTestConfig returns a valid configuration for testing
func createTestConfig() *Config {
	return DefaultConfig()
}

func setConfigHome(t *testing.T) string {
	t.Helper()
	tempDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tempDir)
	return tempDir
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to create config file: %v", err)
	}
	return path
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(c *Config)
		wantErr string
	}{
		{name: "valid config", modify: func(c *Config) {}},
		{name: "empty base url", modify: func(c *Config) { c.Backend.BaseURL = "" }, wantErr: "backend.base_url"},
		{name: "http stt url", modify: func(c *Config) { c.Backend.STTURL = "http://localhost:3000/stt" }, wantErr: "backend.stt_url"},
		{name: "secure stt url", modify: func(c *Config) { c.Backend.STTURL = "wss://reader.example.com/stt" }},
		{name: "zero request timeout", modify: func(c *Config) { c.Backend.RequestTimeout = 0 }, wantErr: "request_timeout"},
		{name: "zero sample rate", modify: func(c *Config) { c.Recording.SampleRate = 0 }, wantErr: "sample_rate"},
		{name: "zero channels", modify: func(c *Config) { c.Recording.Channels = 0 }, wantErr: "channels"},
		{name: "zero buffer size", modify: func(c *Config) { c.Recording.BufferSize = 0 }, wantErr: "buffer_size"},
		{name: "zero channel buffer", modify: func(c *Config) { c.Recording.ChannelBufferSize = 0 }, wantErr: "channel_buffer_size"},
		{name: "empty format", modify: func(c *Config) { c.Recording.Format = "" }, wantErr: "format"},
		{name: "zero chunk interval", modify: func(c *Config) { c.Recording.ChunkInterval = 0 }, wantErr: "chunk_interval"},
		{name: "valid language", modify: func(c *Config) { c.Transcription.Language = "es" }},
		{name: "regional language", modify: func(c *Config) { c.Transcription.Language = "en-US" }},
		{name: "invalid language", modify: func(c *Config) { c.Transcription.Language = "xx" }, wantErr: "transcription.language"},
		{name: "zero dial timeout", modify: func(c *Config) { c.Transcription.DialTimeout = 0 }, wantErr: "dial_timeout"},
		{name: "heartbeat disabled", modify: func(c *Config) { c.Transcription.HeartbeatInterval = 0 }},
		{name: "zero silence timeout", modify: func(c *Config) { c.Reading.SilenceTimeout = 0 }, wantErr: "silence_timeout"},
		{name: "max duration below silence", modify: func(c *Config) { c.Reading.MaxSentenceDuration = 2 * time.Second }, wantErr: "max_sentence_duration"},
		{name: "negative advance delay", modify: func(c *Config) { c.Reading.AdvanceDelay = -time.Second }, wantErr: "advance_delay"},
		{name: "ratio above one", modify: func(c *Config) { c.Reading.MinLengthRatio = 1.5 }, wantErr: "min_length_ratio"},
		{name: "negative prefix", modify: func(c *Config) { c.Reading.PrefixLength = -1 }, wantErr: "prefix_length"},
		{name: "no thresholds", modify: func(c *Config) { c.Reading.Thresholds = nil }, wantErr: "thresholds"},
		{
			name: "unordered thresholds",
			modify: func(c *Config) {
				c.Reading.Thresholds = []ThresholdConfig{{MaxLength: 20, Threshold: 0.6}, {MaxLength: 10, Threshold: 0.7}}
			},
			wantErr: "thresholds",
		},
		{name: "unknown quiz source", modify: func(c *Config) { c.Quiz.Source = "groq" }, wantErr: "quiz.source"},
		{name: "openai quiz with key", modify: func(c *Config) { c.Quiz.Source = "openai"; c.Quiz.APIKey = "sk-test" }},
		{name: "zero quiz count", modify: func(c *Config) { c.Quiz.Count = 0 }, wantErr: "quiz.count"},
		{name: "invalid notification type", modify: func(c *Config) { c.Notifications.Type = "invalid" }, wantErr: "notifications.type"},
		{name: "negative quiz ttl", modify: func(c *Config) { c.Store.QuizTTL = -time.Minute }, wantErr: "quiz_ttl"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := createTestConfig()
			tt.modify(config)
			err := config.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() error = nil, want error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want it to mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_Validate_OpenAIQuizKeyFromEnv(t *testing.T) {
	config := createTestConfig()
	config.Quiz.Source = "openai"

	t.Setenv("OPENAI_API_KEY", "")
	if err := config.Validate(); err == nil {
		t.Error("Validate() should require an OpenAI key")
	}

	t.Setenv("OPENAI_API_KEY", "sk-env")
	if err := config.Validate(); err != nil {
		t.Errorf("Validate() error = %v with OPENAI_API_KEY set", err)
	}
	if got := config.ToQuizConfig().APIKey; got != "sk-env" {
		t.Errorf("ToQuizConfig().APIKey = %q, want sk-env", got)
	}

	config.Quiz.APIKey = "sk-file"
	if got := config.ToQuizConfig().APIKey; got != "sk-file" {
		t.Errorf("ToQuizConfig().APIKey = %q, config file key should win", got)
	}
}

func TestConfig_LoadFile(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := LoadFile(filepath.Join(t.TempDir(), "config.toml"))
		if !isNotFound(err) {
			t.Errorf("LoadFile() error = %v, want ErrConfigNotFound", err)
		}
	})

	t.Run("partial file keeps defaults", func(t *testing.T) {
		path := writeConfig(t, `[backend]
base_url = "https://reader.example.com"
stt_url = "wss://reader.example.com/stt"

[reading]
auto_evaluate = false
silence_timeout = "4s"

[notifications]
type = "log"`)

		config, err := LoadFile(path)
		if err != nil {
			t.Fatalf("LoadFile() error = %v", err)
		}
		if config.Backend.BaseURL != "https://reader.example.com" {
			t.Errorf("BaseURL = %s", config.Backend.BaseURL)
		}
		if config.Reading.AutoEvaluate {
			t.Error("AutoEvaluate should be false")
		}
		if config.Reading.SilenceTimeout != 4*time.Second {
			t.Errorf("SilenceTimeout = %v, want 4s", config.Reading.SilenceTimeout)
		}
		if config.Reading.MaxSentenceDuration != 60*time.Second {
			t.Errorf("MaxSentenceDuration = %v, want default 60s", config.Reading.MaxSentenceDuration)
		}
		if len(config.Reading.Thresholds) != 4 {
			t.Errorf("Thresholds = %v, want defaults", config.Reading.Thresholds)
		}
		if config.Backend.RequestTimeout != 60*time.Second {
			t.Errorf("RequestTimeout = %v, want default", config.Backend.RequestTimeout)
		}
		if err := config.Validate(); err != nil {
			t.Errorf("Validate() error = %v", err)
		}
	})

	t.Run("custom thresholds replace defaults", func(t *testing.T) {
		path := writeConfig(t, `[[reading.thresholds]]
max_length = 15
threshold = 0.5

[[reading.thresholds]]
max_length = 60
threshold = 0.75`)

		config, err := LoadFile(path)
		if err != nil {
			t.Fatalf("LoadFile() error = %v", err)
		}
		want := []ThresholdConfig{{MaxLength: 15, Threshold: 0.5}, {MaxLength: 60, Threshold: 0.75}}
		if len(config.Reading.Thresholds) != len(want) {
			t.Fatalf("Thresholds = %v, want %v", config.Reading.Thresholds, want)
		}
		for i := range want {
			if config.Reading.Thresholds[i] != want[i] {
				t.Errorf("Thresholds[%d] = %v, want %v", i, config.Reading.Thresholds[i], want[i])
			}
		}
	})

	t.Run("invalid toml", func(t *testing.T) {
		path := writeConfig(t, `[backend
base_url = `)
		if _, err := LoadFile(path); err == nil {
			t.Error("LoadFile() should fail on invalid TOML")
		}
	})
}

func TestConfig_LoadOrDefault(t *testing.T) {
	setConfigHome(t)

	config, err := LoadOrDefault()
	if err != nil {
		t.Fatalf("LoadOrDefault() error = %v", err)
	}
	if config.Backend.STTURL != DefaultConfig().Backend.STTURL {
		t.Errorf("STTURL = %s, want default", config.Backend.STTURL)
	}
}

func TestConfig_SaveDefaultConfig(t *testing.T) {
	tempDir := setConfigHome(t)

	if err := SaveDefaultConfig(); err != nil {
		t.Fatalf("SaveDefaultConfig() error = %v", err)
	}

	configPath := filepath.Join(tempDir, "readalong", "config.toml")
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		t.Fatalf("SaveDefaultConfig() did not create config file")
	}

	config, err := Load()
	if err != nil {
		t.Fatalf("SaveDefaultConfig() created invalid config: %v", err)
	}
	if err := config.Validate(); err != nil {
		t.Errorf("SaveDefaultConfig() created invalid config: %v", err)
	}

	defaults := DefaultConfig()
	if config.Reading.SilenceTimeout != defaults.Reading.SilenceTimeout ||
		config.Reading.AdvanceDelay != defaults.Reading.AdvanceDelay ||
		config.Recording.ChunkInterval != defaults.Recording.ChunkInterval {
		t.Errorf("template drifted from defaults: %+v", config.Reading)
	}
	if len(config.Reading.Thresholds) != len(defaults.Reading.Thresholds) {
		t.Errorf("template thresholds = %v", config.Reading.Thresholds)
	}
}

func TestConfig_SaveRoundTrip(t *testing.T) {
	setConfigHome(t)

	config := DefaultConfig()
	config.Reading.AutoEvaluate = false
	config.Quiz.Level = "hard"
	config.Transcription.Language = "fr"
	if err := Save(config); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.Reading.AutoEvaluate || loaded.Quiz.Level != "hard" || loaded.Transcription.Language != "fr" {
		t.Errorf("Load() = %+v", loaded)
	}
	if loaded.Reading.SilenceTimeout != config.Reading.SilenceTimeout {
		t.Errorf("SilenceTimeout = %v, want %v", loaded.Reading.SilenceTimeout, config.Reading.SilenceTimeout)
	}
}

func TestConfig_ConversionMethods(t *testing.T) {
	config := createTestConfig()
	config.Recording.ChunkInterval = 250 * time.Millisecond
	config.Transcription.Language = "de"
	config.Store.Dir = "/tmp/readalong"

	rec := config.ToRecordingConfig()
	if rec.SampleRate != 16000 || rec.ChunkInterval != 250*time.Millisecond || rec.Format != "s16le" {
		t.Errorf("ToRecordingConfig() = %+v", rec)
	}

	tr := config.ToTranscriberConfig()
	if tr.URL != config.Backend.STTURL || tr.Language != "de" || tr.DialTimeout != 10*time.Second {
		t.Errorf("ToTranscriberConfig() = %+v", tr)
	}
	if tr.ResultBufferSize <= 0 {
		t.Errorf("ToTranscriberConfig() should keep a result buffer, got %d", tr.ResultBufferSize)
	}

	sc := config.ToScorerConfig()
	if len(sc.Thresholds) != 4 || sc.Thresholds[0].MaxLength != 10 || sc.Thresholds[3].Threshold != 0.7 {
		t.Errorf("ToScorerConfig().Thresholds = %+v", sc.Thresholds)
	}
	if sc.MinSpokenChars != 3 || sc.MinLengthRatio != 0.6 || sc.PrefixLength != 4 {
		t.Errorf("ToScorerConfig() = %+v", sc)
	}

	qc := config.ToQuizConfig()
	if qc.Source != "backend" || qc.Count != 5 || !qc.Prefetch {
		t.Errorf("ToQuizConfig() = %+v", qc)
	}

	so := config.ToStoreOptions()
	if so.Dir != "/tmp/readalong" || so.QuizTTL != 0 {
		t.Errorf("ToStoreOptions() = %+v", so)
	}
}

func TestGetConfigPath(t *testing.T) {
	tempDir := setConfigHome(t)

	path, err := GetConfigPath()
	if err != nil {
		t.Fatalf("GetConfigPath() error = %v", err)
	}

	expectedPath := filepath.Join(tempDir, "readalong", "config.toml")
	if path != expectedPath {
		t.Errorf("GetConfigPath() = %s, want %s", path, expectedPath)
	}

	if _, err := os.Stat(filepath.Dir(path)); os.IsNotExist(err) {
		t.Errorf("GetConfigPath() did not create config directory")
	}
}

func TestManager(t *testing.T) {
	t.Run("missing file uses defaults", func(t *testing.T) {
		m, err := NewManagerAt(filepath.Join(t.TempDir(), "config.toml"))
		if err != nil {
			t.Fatalf("NewManagerAt() error = %v", err)
		}
		if !m.GetConfig().Reading.AutoEvaluate {
			t.Error("default config should auto-evaluate")
		}
	})

	t.Run("broken file fails", func(t *testing.T) {
		path := writeConfig(t, "not = [valid")
		if _, err := NewManagerAt(path); err == nil {
			t.Error("NewManagerAt() should fail on invalid TOML")
		}
	})

	t.Run("GetConfig returns a copy", func(t *testing.T) {
		m, err := NewManagerAt(filepath.Join(t.TempDir(), "config.toml"))
		if err != nil {
			t.Fatalf("NewManagerAt() error = %v", err)
		}
		c := m.GetConfig()
		c.Reading.SilenceTimeout = time.Hour
		c.Reading.Thresholds[0].Threshold = 0.99
		again := m.GetConfig()
		if again.Reading.SilenceTimeout == time.Hour || again.Reading.Thresholds[0].Threshold == 0.99 {
			t.Error("GetConfig() leaked internal state")
		}
	})

	t.Run("reload notifies", func(t *testing.T) {
		path := writeConfig(t, `[reading]
auto_evaluate = true`)
		m, err := NewManagerAt(path)
		if err != nil {
			t.Fatalf("NewManagerAt() error = %v", err)
		}

		got := make(chan *Config, 1)
		m.OnChange(func(c *Config) { got <- c })

		if err := os.WriteFile(path, []byte("[reading]\nauto_evaluate = false\n"), 0644); err != nil {
			t.Fatal(err)
		}
		m.reloadConfig()

		select {
		case c := <-got:
			if c.Reading.AutoEvaluate {
				t.Error("reloaded config should disable auto-evaluate")
			}
		default:
			t.Fatal("OnChange was not called")
		}
		if m.GetConfig().Reading.AutoEvaluate {
			t.Error("manager kept the old config")
		}
	})

	t.Run("invalid reload keeps previous config", func(t *testing.T) {
		path := writeConfig(t, `[notifications]
type = "log"`)
		m, err := NewManagerAt(path)
		if err != nil {
			t.Fatalf("NewManagerAt() error = %v", err)
		}
		called := false
		m.OnChange(func(*Config) { called = true })

		if err := os.WriteFile(path, []byte("[notifications]\ntype = \"bogus\"\n"), 0644); err != nil {
			t.Fatal(err)
		}
		m.reloadConfig()

		if called {
			t.Error("OnChange should not fire for an invalid config")
		}
		if m.GetConfig().Notifications.Type != "log" {
			t.Errorf("Notifications.Type = %s, want log", m.GetConfig().Notifications.Type)
		}
	})
}
