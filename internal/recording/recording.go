package recording

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os/exec"
	"strconv"
	"sync"
	"sync/atomic"
	"time"
)

var (
	ErrNotAcquired      = errors.New("microphone not acquired")
	ErrAlreadyCapturing = errors.New("already capturing")
)

// Chunk is the audio captured during one chunk interval.
type Chunk struct {
	Seq       int
	Data      []byte
	Timestamp time.Time
}

type Config struct {
	SampleRate        int
	Channels          int
	Format            string
	BufferSize        int
	Device            string
	ChannelBufferSize int
	ChunkInterval     time.Duration
}

func DefaultConfig() Config {
	return Config{
		SampleRate:        16000,
		Channels:          1,
		Format:            "s16le",
		BufferSize:        4096,
		Device:            "",
		ChannelBufferSize: 20,
		ChunkInterval:     time.Second,
	}
}

// source is a running audio producer. wait reaps it after the reader drains.
type source struct {
	stdout io.ReadCloser
	wait   func() error
}

type sourceFunc func(ctx context.Context, cfg Config) (*source, error)

// Recorder keeps one pw-record process for the whole reading session and
// hands out short capture sessions on top of it. Audio read while no capture
// is active is discarded.
type Recorder struct {
	config Config
	open   sourceFunc

	acquired  atomic.Bool
	capturing atomic.Bool

	mu      sync.Mutex // guards cancel, active, last and procErr
	cancel  context.CancelFunc
	active  *capture
	last    *capture // most recent capture, kept until its loop has exited
	procErr error

	readWG sync.WaitGroup
}

type capture struct {
	chunks chan Chunk
	errs   chan error
	buf    []byte
	seq    int
	stop   chan struct{}
	done   chan struct{}
}

func NewRecorder(config Config) *Recorder {
	return &Recorder{config: config, open: startPwRecord}
}

func NewDefaultRecorder() *Recorder { return NewRecorder(DefaultConfig()) }

func (r *Recorder) IsAcquired() bool {
	return r.acquired.Load()
}

func (r *Recorder) IsRecording() bool {
	return r.capturing.Load()
}

// Acquire opens the microphone. Calling it again while acquired is a no-op.
func (r *Recorder) Acquire(ctx context.Context) error {
	if r.acquired.Load() {
		return nil
	}
	if err := r.validateConfig(); err != nil {
		return err
	}

	procCtx, cancel := context.WithCancel(context.Background())
	src, err := r.open(ctx, r.config)
	if err != nil {
		cancel()
		return err
	}

	r.mu.Lock()
	r.cancel = cancel
	r.procErr = nil
	r.mu.Unlock()

	r.acquired.Store(true)
	r.readWG.Add(1)
	go r.readLoop(procCtx, cancel, src)

	log.Printf("Recording: microphone acquired (%d Hz, %d ch, %s)", r.config.SampleRate, r.config.Channels, r.config.Format)
	return nil
}

// Start begins a capture session. Chunks arrive every ChunkInterval until
// Stop is called or ctx ends; both channels are closed afterwards.
func (r *Recorder) Start(ctx context.Context) (<-chan Chunk, <-chan error, error) {
	if !r.acquired.Load() {
		r.mu.Lock()
		procErr := r.procErr
		r.mu.Unlock()
		if procErr != nil {
			return nil, nil, fmt.Errorf("%w: %v", ErrNotAcquired, procErr)
		}
		return nil, nil, ErrNotAcquired
	}
	if !r.capturing.CompareAndSwap(false, true) {
		return nil, nil, ErrAlreadyCapturing
	}

	c := &capture{
		chunks: make(chan Chunk, r.config.ChannelBufferSize),
		errs:   make(chan error, 1),
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}

	r.mu.Lock()
	r.active = c
	r.last = c
	r.mu.Unlock()

	go r.flushLoop(ctx, c)
	return c.chunks, c.errs, nil
}

// Stop ends the current capture session, flushing any buffered audio. The
// microphone stays acquired. A capture that already ended through its context
// is still waited for, so Start can follow immediately.
func (r *Recorder) Stop() error {
	r.mu.Lock()
	c := r.active
	r.active = nil
	last := r.last
	r.mu.Unlock()

	if c != nil {
		close(c.stop)
	}
	if last != nil {
		<-last.done
	}
	return nil
}

// Release stops any capture and closes the microphone.
func (r *Recorder) Release() error {
	_ = r.Stop()

	r.mu.Lock()
	cancel := r.cancel
	r.cancel = nil
	r.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	r.readWG.Wait()
	return nil
}

func (r *Recorder) flushLoop(ctx context.Context, c *capture) {
	ticker := time.NewTicker(r.config.ChunkInterval)
	defer ticker.Stop()

	defer func() {
		r.mu.Lock()
		if r.active == c {
			r.active = nil
		}
		r.flushLocked(c)
		r.mu.Unlock()

		close(c.chunks)
		close(c.errs)
		r.capturing.Store(false)
		close(c.done)
	}()

	for {
		select {
		case <-ticker.C:
			r.mu.Lock()
			r.flushLocked(c)
			r.mu.Unlock()
		case <-c.stop:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (r *Recorder) flushLocked(c *capture) {
	if len(c.buf) == 0 {
		return
	}
	chunk := Chunk{Seq: c.seq, Data: c.buf, Timestamp: time.Now()}
	c.buf = nil

	select {
	case c.chunks <- chunk:
		c.seq++
	default:
		log.Printf("Recording: dropped chunk %d due to backpressure", c.seq)
	}
}

func (r *Recorder) readLoop(ctx context.Context, cancel context.CancelFunc, src *source) {
	defer func() {
		cancel()
		_ = src.stdout.Close()
		if src.wait != nil {
			_ = src.wait()
		}
		r.acquired.Store(false)
		r.readWG.Done()
	}()

	go func() {
		<-ctx.Done()
		_ = src.stdout.Close()
	}()

	buffer := make([]byte, r.config.BufferSize)
	for {
		n, readErr := src.stdout.Read(buffer)
		if n > 0 {
			r.mu.Lock()
			if r.active != nil {
				r.active.buf = append(r.active.buf, buffer[:n]...)
			}
			r.mu.Unlock()
		}

		if readErr != nil {
			if ctx.Err() != nil {
				return
			}
			if errors.Is(readErr, io.EOF) {
				readErr = errors.New("audio source ended")
			}
			r.failActive(fmt.Errorf("read audio: %w", readErr))
			return
		}
	}
}

func (r *Recorder) failActive(err error) {
	log.Printf("Recording error: %v", err)

	r.mu.Lock()
	r.procErr = err
	c := r.active
	r.mu.Unlock()

	if c == nil {
		return
	}
	select {
	case c.errs <- err:
	default:
	}
}

func startPwRecord(ctx context.Context, cfg Config) (*source, error) {
	if err := CheckPipeWireAvailable(ctx); err != nil {
		return nil, fmt.Errorf("PipeWire not available: %w", err)
	}

	cmd := exec.Command("pw-record", buildPwRecordArgs(cfg)...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("create stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("create stderr pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start pw-record: %w", err)
	}

	go func() {
		scanner := bufio.NewScanner(stderr)
		for scanner.Scan() {
			log.Printf("Recording stderr: %s", scanner.Text())
		}
	}()

	return &source{
		stdout: stdout,
		wait: func() error {
			if cmd.Process != nil {
				_ = cmd.Process.Kill()
			}
			return cmd.Wait()
		},
	}, nil
}

func buildPwRecordArgs(cfg Config) []string {
	args := []string{
		"--format", cfg.Format,
		"--rate", strconv.Itoa(cfg.SampleRate),
		"--channels", strconv.Itoa(cfg.Channels),
	}
	if cfg.Device != "" {
		args = append(args, "--target", cfg.Device)
	}
	return append(args, "-")
}

func CheckPipeWireAvailable(ctx context.Context) error {
	if _, err := exec.LookPath("pw-record"); err != nil {
		return fmt.Errorf("pw-record not found: %w (install pipewire-tools)", err)
	}
	if ctx == nil {
		ctx = context.Background()
	}
	checkCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	cmd := exec.CommandContext(checkCtx, "pw-cli", "info")
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("PipeWire not running or accessible: %w", err)
	}
	return nil
}

func (r *Recorder) validateConfig() error {
	if r.config.SampleRate <= 0 {
		return fmt.Errorf("invalid SampleRate: %d", r.config.SampleRate)
	}
	if r.config.Channels <= 0 {
		return fmt.Errorf("invalid Channels: %d", r.config.Channels)
	}
	if r.config.BufferSize <= 0 {
		return fmt.Errorf("invalid BufferSize: %d", r.config.BufferSize)
	}
	if r.config.ChannelBufferSize <= 0 {
		return fmt.Errorf("invalid ChannelBufferSize: %d", r.config.ChannelBufferSize)
	}
	if r.config.ChunkInterval <= 0 {
		return fmt.Errorf("invalid ChunkInterval: %v", r.config.ChunkInterval)
	}
	if r.config.Format == "" {
		return fmt.Errorf("invalid Format: empty")
	}
	if r.config.Format == "s16le" {
		frameBytes := 2 * r.config.Channels
		if r.config.BufferSize%frameBytes != 0 {
			log.Printf("Recording: BufferSize %d not aligned to frame size %d; chunks may split samples",
				r.config.BufferSize, frameBytes)
		}
	}
	return nil
}
