package main

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/leonardotrapani/readalong/internal/bus"
	"github.com/leonardotrapani/readalong/internal/config"
	"github.com/leonardotrapani/readalong/internal/daemon"
	"github.com/leonardotrapani/readalong/internal/tui"
	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "readalong",
	Short: "Read a scanned passage aloud, one sentence at a time",
}

func init() {
	rootCmd.AddCommand(
		serveCmd(),
		openCmd(),
		toggleCmd(),
		retryCmd(),
		autoCmd(),
		cancelCmd(),
		statusCmd(),
		versionCmd(),
		stopCmd(),
		readCmd(),
		uploadCmd(),
		quizCmd(),
		segmentCmd(),
		scoreCmd(),
		doctorCmd(),
		configureCmd(),
	)
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := config.NewManager()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			d, err := daemon.Build(m)
			if err != nil {
				return fmt.Errorf("failed to create daemon: %w", err)
			}
			return d.Run()
		},
	}
}

// busCmd builds a command that forwards one request to the running daemon.
func busCmd(use, short string, op byte, failure string) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return send(op, "", failure)
		},
	}
}

func send(op byte, arg, failure string) error {
	resp, err := bus.SendCommand(op, arg)
	if err != nil {
		return fmt.Errorf("failed to %s: %w", failure, err)
	}
	fmt.Print(resp)
	if strings.HasPrefix(resp, "ERR") {
		return errors.New(strings.TrimSpace(resp))
	}
	return nil
}

func openCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "open <file-id>",
		Short: "Load an uploaded file into the daemon and start at its first sentence",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return send(bus.CmdOpen, args[0], "open passage")
		},
	}
}

func toggleCmd() *cobra.Command {
	return busCmd("toggle", "Start reading the current sentence, or stop and evaluate it", bus.CmdToggle, "toggle reading")
}

func retryCmd() *cobra.Command {
	return busCmd("retry", "Read the current sentence again", bus.CmdRetry, "retry sentence")
}

func cancelCmd() *cobra.Command {
	return busCmd("cancel", "Stop reading without evaluating", bus.CmdCancel, "cancel reading")
}

func statusCmd() *cobra.Command {
	return busCmd("status", "Get current reading status", bus.CmdStatus, "get status")
}

func versionCmd() *cobra.Command {
	return busCmd("version", "Get protocol version", bus.CmdVersion, "get version")
}

func stopCmd() *cobra.Command {
	return busCmd("stop", "Stop the daemon", bus.CmdQuit, "stop daemon")
}

func autoCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "auto <on|off>",
		Short:     "Turn automatic evaluation after silence on or off",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"on", "off"},
		RunE: func(cmd *cobra.Command, args []string) error {
			on, err := parseOnOff(args[0])
			if err != nil {
				return err
			}
			arg := "off"
			if on {
				arg = "on"
			}
			return send(bus.CmdAuto, arg, "set auto evaluation")
		},
	}
}

func parseOnOff(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "on", "true", "1", "yes":
		return true, nil
	case "off", "false", "0", "no":
		return false, nil
	}
	return false, fmt.Errorf("expected on or off, got %q", s)
}

func configureCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "configure",
		Short: "Interactive configuration setup",
		Long: `Interactive configuration for readalong.
This will guide you through setting up:
- The backend and speech-to-text endpoints
- The reading language
- Silence detection and evaluation
- Quiz generation and notifications`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigure()
		},
	}
}

func runConfigure() error {
	cfg, err := config.LoadOrDefault()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	result, err := tui.Run(cfg)
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	if result.Cancelled {
		fmt.Println("Configuration cancelled.")
		return nil
	}

	if err := result.Config.Validate(); err != nil {
		fmt.Printf("Configuration validation failed: %v\n", err)
		return err
	}

	if err := config.Save(result.Config); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	fmt.Println()
	fmt.Println("Configuration saved successfully!")
	fmt.Println()

	showNextSteps()

	return nil
}

func showNextSteps() {
	serviceRunning := false
	if _, err := exec.Command("systemctl", "--user", "is-active", "--quiet", "readalong.service").CombinedOutput(); err == nil {
		serviceRunning = true
	}

	fmt.Println("Next Steps:")
	if !serviceRunning {
		fmt.Println("1. Start the daemon: readalong serve (or systemctl --user start readalong.service)")
	} else {
		fmt.Println("1. Reading settings apply live; restart the service for backend or recording changes")
	}
	fmt.Println("2. Upload a page: readalong upload page.png")
	fmt.Println("3. Open it and read: readalong open <file-id> && readalong toggle")
	fmt.Println()

	configPath, _ := config.GetConfigPath()
	fmt.Printf("Config file location: %s\n", configPath)
}
