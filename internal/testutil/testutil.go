package testutil

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/leonardotrapani/readalong/internal/config"
)

// TestConfig returns a valid configuration for testing
func TestConfig() *config.Config {
	return &config.Config{
		Backend: config.BackendConfig{
			BaseURL:        "http://localhost:3000",
			STTURL:         "ws://localhost:3000/stt",
			RequestTimeout: 30 * time.Second,
		},
		Recording: config.RecordingConfig{
			SampleRate:        16000,
			Channels:          1,
			Format:            "s16le",
			BufferSize:        4096,
			Device:            "",
			ChannelBufferSize: 20,
			ChunkInterval:     time.Second,
		},
		Transcription: config.TranscriptionConfig{
			Language:          "",
			HeartbeatInterval: 10 * time.Second,
			DialTimeout:       10 * time.Second,
		},
		Reading: config.ReadingConfig{
			AutoEvaluate:        false,
			SilenceTimeout:      3 * time.Second,
			MaxSentenceDuration: 60 * time.Second,
			AdvanceDelay:        2 * time.Second,
			MinSpokenChars:      3,
			MinLengthRatio:      0.6,
			PrefixLength:        4,
			Thresholds: []config.ThresholdConfig{
				{MaxLength: 10, Threshold: 0.55},
				{MaxLength: 20, Threshold: 0.6},
				{MaxLength: 40, Threshold: 0.65},
				{MaxLength: 80, Threshold: 0.7},
			},
		},
		Quiz: config.QuizConfig{
			Source:   "backend",
			Level:    "medium",
			Style:    "mixed",
			Model:    "gpt-4o-mini",
			Count:    5,
			Prefetch: true,
		},
		Notifications: config.NotificationsConfig{
			Enabled: true,
			Type:    "log",
		},
	}
}

// CreateTempConfigFile creates a temporary config file for testing
func CreateTempConfigFile(t *testing.T, configContent string) string {
	t.Helper()

	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "config.toml")

	err := os.WriteFile(configPath, []byte(configContent), 0644)
	if err != nil {
		t.Fatalf("Failed to create temp config file: %v", err)
	}

	return configPath
}

// TestContext returns a context with timeout for testing
func TestContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 5*time.Second)
}

// WaitForCondition waits for a condition to be true or times out
func WaitForCondition(t *testing.T, condition func() bool, timeout time.Duration) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			t.Fatalf("Condition not met within %v", timeout)
		default:
			if condition() {
				return
			}
			time.Sleep(5 * time.Millisecond)
		}
	}
}

// CaptureOutput captures stdout for testing
func CaptureOutput(t *testing.T, fn func()) string {
	t.Helper()

	old := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	fn()

	w.Close()
	os.Stdout = old

	out, _ := io.ReadAll(r)
	return string(out)
}
