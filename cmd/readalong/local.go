package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/leonardotrapani/readalong/internal/api"
	"github.com/leonardotrapani/readalong/internal/bus"
	"github.com/leonardotrapani/readalong/internal/config"
	"github.com/leonardotrapani/readalong/internal/daemon"
	"github.com/leonardotrapani/readalong/internal/quiz"
	"github.com/leonardotrapani/readalong/internal/readalong"
	"github.com/leonardotrapani/readalong/internal/segment"
	"github.com/leonardotrapani/readalong/internal/similarity"
	"github.com/leonardotrapani/readalong/internal/store"
	"github.com/leonardotrapani/readalong/internal/tui"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
)

func readCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "read <file-id>",
		Short: "Read a passage in this terminal without the daemon",
		Long: `Loads the passage and drives the reader from the keyboard:
  enter  start reading / stop and evaluate
  r      retry the current sentence
  a      toggle automatic evaluation
  c      cancel the current attempt
  q      quit`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRead(cmd.Context(), args[0], os.Stdin)
		},
	}
}

func runRead(parent context.Context, fileID string, in io.Reader) error {
	cfg, err := config.LoadOrDefault()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	out := termenv.NewOutput(os.Stdout)
	draw := func(s readalong.Snapshot) {
		out.ClearScreen()
		fmt.Fprintln(out, tui.RenderScreen(s, 80))
		fmt.Fprintln(out, tui.StyleMuted.Render("enter toggle • r retry • a auto • c cancel • q quit"))
	}

	sess, err := daemon.Assemble(cfg, draw)
	if err != nil {
		return err
	}
	defer sess.Close()

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	runErr := make(chan error, 1)
	go func() { runErr <- sess.Controller.Run(ctx) }()
	defer func() {
		stop()
		sess.Controller.Dispose()
		<-runErr
	}()

	passage, err := sess.Loader.Load(ctx, fileID)
	if err != nil {
		return err
	}
	if err := sess.Controller.Load(passage); err != nil {
		return err
	}

	lines := readLines(ctx, in)

	auto := cfg.Reading.AutoEvaluate
	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			var err error
			switch strings.ToLower(line) {
			case "":
				err = sess.Controller.Toggle()
			case "r":
				err = sess.Controller.Retry()
			case "a":
				auto = !auto
				err = sess.Controller.SetAutoEvaluate(auto)
			case "c":
				err = sess.Controller.Cancel()
			case "q":
				return nil
			}
			if err != nil {
				return err
			}
		}
	}
}

// readLines forwards trimmed input lines until in ends or ctx is done. The
// channel is closed when the forwarder exits.
func readLines(ctx context.Context, in io.Reader) <-chan string {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- strings.TrimSpace(scanner.Text()):
			case <-ctx.Done():
				return
			}
		}
	}()
	return lines
}

func uploadCmd() *cobra.Command {
	var open bool

	cmd := &cobra.Command{
		Use:   "upload <file>",
		Short: "Upload an image or PDF for OCR and print its file id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadOrDefault()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			client := api.NewClient(cfg.Backend.BaseURL, cfg.Backend.RequestTimeout)
			fileID, err := client.Upload(cmd.Context(), filepath.Base(args[0]), f)
			if err != nil {
				return fmt.Errorf("upload failed: %w", err)
			}
			fmt.Println(fileID)

			if open {
				return send(bus.CmdOpen, fileID, "open passage")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&open, "open", false, "open the uploaded file in the running daemon")

	return cmd
}

func quizCmd() *cobra.Command {
	var level, style string

	cmd := &cobra.Command{
		Use:   "quiz [file-id]",
		Short: "Answer comprehension questions about a passage",
		Long:  "Without a file id, quizzes the passage currently open in the daemon.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var fileID string
			if len(args) == 1 {
				fileID = args[0]
			} else {
				id, err := currentFileID()
				if err != nil {
					return err
				}
				fileID = id
			}
			return runQuiz(cmd.Context(), fileID, level, style)
		},
	}

	cmd.Flags().StringVar(&level, "level", "", "difficulty: easy, medium or hard (default from config)")
	cmd.Flags().StringVar(&style, "style", "", "question style (default from config)")

	return cmd
}

// currentFileID asks the daemon which file is open.
func currentFileID() (string, error) {
	resp, err := bus.SendCommand(bus.CmdStatus, "")
	if err != nil {
		return "", fmt.Errorf("no file id given and daemon unreachable: %w", err)
	}
	id := statusField(resp, "file")
	if id == "" {
		return "", errors.New("no file id given and no passage open in the daemon")
	}
	return id, nil
}

// statusField extracts key=value from a STATUS line.
func statusField(resp, key string) string {
	for _, field := range strings.Fields(resp) {
		if v, ok := strings.CutPrefix(field, key+"="); ok {
			return v
		}
	}
	return ""
}

func runQuiz(ctx context.Context, fileID, level, style string) error {
	cfg, err := config.LoadOrDefault()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if level != "" {
		cfg.Quiz.Level = level
	}
	if style != "" {
		cfg.Quiz.Style = style
	}

	client := api.NewClient(cfg.Backend.BaseURL, cfg.Backend.RequestTimeout)
	source, err := quiz.NewSource(cfg.ToQuizConfig(), client)
	if err != nil {
		return err
	}

	cache, err := store.OpenInMemory()
	if err != nil {
		return err
	}
	defer cache.Close()

	req := quiz.Request{FileID: fileID, Level: cfg.Quiz.Level, Style: cfg.Quiz.Style}
	if cfg.Quiz.Source == "openai" {
		ocr, err := client.OCR(ctx, fileID)
		if err != nil {
			return fmt.Errorf("fetch passage: %w", err)
		}
		req.Passage = ocr.Text()
	}

	questions, err := quiz.NewService(source, cache).Get(ctx, req)
	if err != nil {
		return err
	}

	result, err := tui.RunQuiz(questions)
	if err != nil {
		return err
	}
	fmt.Println(tui.RenderQuizResult(result))
	return nil
}

func segmentCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "segment [file]",
		Short: "Print the sentences a passage splits into (reads stdin without a file)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readInput(args)
			if err != nil {
				return err
			}
			for i, s := range segment.Split(text) {
				fmt.Printf("%3d  %s\n", i+1, s)
			}
			return nil
		},
	}
}

func readInput(args []string) (string, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(os.Stdin)
		return string(data), err
	}
	data, err := os.ReadFile(args[0])
	return string(data), err
}

func scoreCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "score <expected> <spoken>",
		Short: "Show how a spoken attempt would be judged against a sentence",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadOrDefault()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			scorer, err := similarity.NewScorer(cfg.ToScorerConfig())
			if err != nil {
				return err
			}

			v := scorer.Evaluate(args[0], args[1])
			fmt.Printf("expected:  %q\n", similarity.Normalize(args[0]))
			fmt.Printf("spoken:    %q\n", similarity.Normalize(args[1]))
			fmt.Printf("length:    %d of %d\n", similarity.Length(args[1]), similarity.Length(args[0]))
			fmt.Printf("outcome:   %s\n", v.Outcome)
			fmt.Printf("distance:  %d\n", v.Result.Distance)
			fmt.Printf("score:     %.3f\n", v.Result.Score)
			if v.Scored {
				fmt.Printf("threshold: %.2f\n", v.Threshold)
			}
			if v.PrefixMatch {
				fmt.Println("prefix:    matched")
			}
			return nil
		},
	}
}
