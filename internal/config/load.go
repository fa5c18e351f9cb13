package config

import (
	"bytes"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

var ErrConfigNotFound = errors.New("config not found")

func GetConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user config directory: %w", err)
	}

	appDir := filepath.Join(configDir, "readalong")
	if err := os.MkdirAll(appDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	return filepath.Join(appDir, "config.toml"), nil
}

// Load reads the config file from the user config directory.
func Load() (*Config, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFile(configPath)
}

// LoadFile decodes path on top of the defaults, so keys missing from the
// file keep their default values.
func LoadFile(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: run readalong configure", ErrConfigNotFound)
	} else if err != nil {
		return nil, fmt.Errorf("failed to stat config file %s: %w", configPath, err)
	}

	log.Printf("Config: loading configuration from %s", configPath)
	config := DefaultConfig()
	meta, err := toml.DecodeFile(configPath, config)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", configPath, err)
	}
	if meta.IsDefined("reading", "thresholds") && len(config.Reading.Thresholds) == 0 {
		config.Reading.Thresholds = DefaultThresholds()
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		log.Printf("Config: ignoring unknown keys: %v", undecoded)
	}

	log.Printf("Config: configuration loaded successfully")
	return config, nil
}

// LoadOrDefault returns the stored config, or the defaults when none has
// been written yet.
func LoadOrDefault() (*Config, error) {
	config, err := Load()
	if errors.Is(err, ErrConfigNotFound) {
		log.Printf("Config: no config file found, using defaults")
		return DefaultConfig(), nil
	}
	return config, err
}

// Save writes config to the user config file.
func Save(config *Config) error {
	configPath, err := GetConfigPath()
	if err != nil {
		return err
	}
	return SaveFile(configPath, config)
}

func SaveFile(configPath string, config *Config) error {
	var buf bytes.Buffer
	buf.WriteString("# Readalong configuration\n# Changes are applied by a running daemon without restart.\n\n")
	if err := toml.NewEncoder(&buf).Encode(config); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	tmp := configPath + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	if err := os.Rename(tmp, configPath); err != nil {
		return fmt.Errorf("failed to replace config file: %w", err)
	}
	return nil
}

// SaveDefaultConfig writes a commented default config file.
func SaveDefaultConfig() error {
	configPath, err := GetConfigPath()
	if err != nil {
		return err
	}

	if err := os.WriteFile(configPath, []byte(defaultConfigContent), 0600); err != nil {
		return fmt.Errorf("failed to write config content: %w", err)
	}
	return nil
}

const defaultConfigContent = `# Readalong Configuration
# Edit values as needed - a running daemon applies changes without restart.

# Reading backend
[backend]
  base_url = "http://localhost:3000"    # OCR, quiz and upload endpoints
  stt_url = "ws://localhost:3000/stt"   # Streaming speech-to-text socket
  request_timeout = "60s"

# Audio Recording Configuration
[recording]
  sample_rate = 16000          # Audio sample rate in Hz (16000 recommended for speech)
  channels = 1                 # Number of audio channels (1 = mono)
  format = "s16le"             # PCM format passed to pw-record
  buffer_size = 4096           # Read buffer size in bytes
  device = ""                  # PipeWire audio device (empty = default microphone)
  channel_buffer_size = 20     # Chunks buffered between recorder and socket
  chunk_interval = "1s"        # One audio chunk is sent per interval (250ms to 1s)

# Speech Transcription Configuration
[transcription]
  language = ""                # Language code (empty for auto-detect, "en", "ko", "es", etc.)
  heartbeat_interval = "10s"   # Keep-alive on the STT socket (0 disables)
  dial_timeout = "10s"

# Sentence Evaluation
[reading]
  auto_evaluate = true         # Evaluate automatically after a quiet period
  silence_timeout = "3s"       # Quiet period that ends a sentence
  max_sentence_duration = "60s"
  advance_delay = "2s"         # Pause on "Good job!" before the next sentence
  min_spoken_chars = 3         # Shorter attempts are "too short"
  min_length_ratio = 0.6       # Spoken/expected length below this asks to read to the end
  prefix_length = 4            # Prefix containment escape hatch (0 disables)

  # Pass threshold by normalized sentence length; the last step covers longer sentences
  [[reading.thresholds]]
    max_length = 10
    threshold = 0.55
  [[reading.thresholds]]
    max_length = 20
    threshold = 0.6
  [[reading.thresholds]]
    max_length = 40
    threshold = 0.65
  [[reading.thresholds]]
    max_length = 80
    threshold = 0.7

# Comprehension Quiz
[quiz]
  source = "backend"           # "backend" (/api/quiz) or "openai"
  level = "medium"
  style = "mixed"
  prefetch = true              # Warm the quiz cache while reading
  model = "gpt-4o-mini"        # OpenAI model when source = "openai"
  api_key = ""                 # Or set OPENAI_API_KEY
  count = 5

# Learner Feedback
[notifications]
  enabled = true
  type = "desktop"             # "desktop", "log", "none"

# Session Store
[store]
  dir = ""                     # Empty keeps state in memory for the daemon's lifetime
  quiz_ttl = "0s"              # 0 keeps cached questions for the session
`

func isNotFound(err error) bool {
	return errors.Is(err, ErrConfigNotFound)
}
