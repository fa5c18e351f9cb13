package tui

import (
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/huh"

	"github.com/leonardotrapani/readalong/internal/config"
)

// AdvancedSection represents a section in the advanced settings menu
type AdvancedSection string

const (
	AdvancedRecording     AdvancedSection = "recording"
	AdvancedTranscription AdvancedSection = "transcription"
	AdvancedStore         AdvancedSection = "store"
	AdvancedBack          AdvancedSection = "back"
)

// editAdvanced handles the advanced settings submenu
func editAdvanced(cfg *config.Config) error {
	for {
		options := []huh.Option[AdvancedSection]{
			huh.NewOption(formatAdvancedRecordingLabel(cfg), AdvancedRecording),
			huh.NewOption(formatAdvancedTranscriptionLabel(cfg), AdvancedTranscription),
			huh.NewOption(formatAdvancedStoreLabel(cfg), AdvancedStore),
			huh.NewOption("Back to Main Menu", AdvancedBack),
		}

		var selected AdvancedSection
		form := huh.NewForm(
			huh.NewGroup(
				huh.NewSelect[AdvancedSection]().
					Title("Advanced Settings").
					Description("Configure low-level options").
					Options(options...).
					Value(&selected),
			),
		).WithTheme(getTheme())

		if err := form.Run(); err != nil {
			return err
		}

		switch selected {
		case AdvancedBack:
			return nil
		case AdvancedRecording:
			if err := editRecording(cfg); err != nil {
				continue
			}
		case AdvancedTranscription:
			if err := editTranscriptionTimings(cfg); err != nil {
				continue
			}
		case AdvancedStore:
			if err := editStore(cfg); err != nil {
				continue
			}
		}
	}
}

func formatAdvancedRecordingLabel(cfg *config.Config) string {
	return fmt.Sprintf("Recording Settings (rate=%d, chunk=%s)", cfg.Recording.SampleRate, cfg.Recording.ChunkInterval)
}

func formatAdvancedTranscriptionLabel(cfg *config.Config) string {
	return fmt.Sprintf("Speech-to-text Socket (dial=%s, heartbeat=%s)",
		cfg.Transcription.DialTimeout, cfg.Transcription.HeartbeatInterval)
}

func formatAdvancedStoreLabel(cfg *config.Config) string {
	if cfg.Store.Dir == "" {
		return "Session Store (in memory)"
	}
	return fmt.Sprintf("Session Store (%s)", cfg.Store.Dir)
}

// editRecording handles the recording settings
func editRecording(cfg *config.Config) error {
	sampleRate := strconv.Itoa(cfg.Recording.SampleRate)
	channels := strconv.Itoa(cfg.Recording.Channels)
	format := cfg.Recording.Format
	bufferSize := strconv.Itoa(cfg.Recording.BufferSize)
	device := cfg.Recording.Device
	channelBufferSize := strconv.Itoa(cfg.Recording.ChannelBufferSize)
	chunkInterval := cfg.Recording.ChunkInterval.String()

	channelOptions := []huh.Option[string]{
		huh.NewOption("1 (Mono) - Recommended", "1"),
		huh.NewOption("2 (Stereo)", "2"),
	}

	formatOptions := []huh.Option[string]{
		huh.NewOption("s16le (16-bit signed) - Recommended", "s16le"),
		huh.NewOption("f32le (32-bit float)", "f32le"),
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Sample Rate (Hz)").
				Description("Audio sample rate. 16000 is optimal for speech recognition.").
				Placeholder("16000").
				Value(&sampleRate).
				Validate(validatePositiveInt),
			huh.NewSelect[string]().
				Title("Channels").
				Description("Number of audio channels").
				Options(channelOptions...).
				Value(&channels),
			huh.NewSelect[string]().
				Title("Audio Format").
				Description("Sample format").
				Options(formatOptions...).
				Value(&format),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Buffer Size (bytes)").
				Description("Read buffer size. Larger = less CPU, more latency.").
				Placeholder("4096").
				Value(&bufferSize).
				Validate(validatePositiveInt),
			huh.NewInput().
				Title("Channel Buffer Size").
				Description("Audio chunks buffered between recorder and socket.").
				Placeholder("20").
				Value(&channelBufferSize).
				Validate(validatePositiveInt),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Device").
				Description("PipeWire device name. Empty = default microphone.").
				Placeholder("(default)").
				Value(&device),
			huh.NewInput().
				Title("Chunk Interval").
				Description("How often audio is sent to the server (250ms to 1s).").
				Placeholder("1s").
				Value(&chunkInterval).
				Validate(validateDuration),
		),
	).WithTheme(getTheme())

	if err := form.Run(); err != nil {
		return err
	}

	cfg.Recording.SampleRate, _ = strconv.Atoi(sampleRate)
	cfg.Recording.Channels, _ = strconv.Atoi(channels)
	cfg.Recording.Format = format
	cfg.Recording.BufferSize, _ = strconv.Atoi(bufferSize)
	cfg.Recording.Device = device
	cfg.Recording.ChannelBufferSize, _ = strconv.Atoi(channelBufferSize)
	cfg.Recording.ChunkInterval, _ = time.ParseDuration(chunkInterval)

	return nil
}

// editTranscriptionTimings handles the STT socket timeouts
func editTranscriptionTimings(cfg *config.Config) error {
	dialTimeout := cfg.Transcription.DialTimeout.String()
	heartbeat := cfg.Transcription.HeartbeatInterval.String()

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Dial Timeout").
				Description("Give up connecting to the speech server after this long").
				Placeholder("10s").
				Value(&dialTimeout).
				Validate(validateDuration),
			huh.NewInput().
				Title("Heartbeat Interval").
				Description("Keep-alive ping on the open socket ('0s' disables)").
				Placeholder("10s").
				Value(&heartbeat).
				Validate(validateDuration),
		),
	).WithTheme(getTheme())

	if err := form.Run(); err != nil {
		return err
	}

	cfg.Transcription.DialTimeout, _ = time.ParseDuration(dialTimeout)
	cfg.Transcription.HeartbeatInterval, _ = time.ParseDuration(heartbeat)

	return nil
}

// editStore handles where session state is kept
func editStore(cfg *config.Config) error {
	dir := cfg.Store.Dir
	ttl := cfg.Store.QuizTTL.String()

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Store Directory").
				Description("Empty keeps state in memory for the daemon's lifetime").
				Placeholder("(in memory)").
				Value(&dir),
			huh.NewInput().
				Title("Quiz Cache TTL").
				Description("Expire cached questions after this long ('0s' keeps them)").
				Placeholder("0s").
				Value(&ttl).
				Validate(validateDuration),
		),
	).WithTheme(getTheme())

	if err := form.Run(); err != nil {
		return err
	}

	cfg.Store.Dir = dir
	cfg.Store.QuizTTL, _ = time.ParseDuration(ttl)

	return nil
}
