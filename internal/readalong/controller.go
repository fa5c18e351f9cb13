// Package readalong drives a learner through a passage one sentence at a
// time: it opens a capture pipeline per sentence, scores what was heard and
// decides whether to advance, retry or finish.
package readalong

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/leonardotrapani/readalong/internal/clock"
	"github.com/leonardotrapani/readalong/internal/notify"
	"github.com/leonardotrapani/readalong/internal/pipeline"
	"github.com/leonardotrapani/readalong/internal/silence"
	"github.com/leonardotrapani/readalong/internal/similarity"
	"github.com/leonardotrapani/readalong/internal/store"
	"github.com/leonardotrapani/readalong/internal/transcriber"
	"github.com/leonardotrapani/readalong/internal/transcript"
)

// Microphone is held for a whole reading session and lends short captures
// to each sentence.
type Microphone interface {
	Acquire(ctx context.Context) error
	pipeline.Microphone
	Release() error
}

// StatsSink persists per-session reading statistics.
type StatsSink interface {
	PutReadingStats(st store.ReadingStats) error
}

type Config struct {
	AutoEvaluate        bool
	SilenceTimeout      time.Duration
	MaxSentenceDuration time.Duration
	AdvanceDelay        time.Duration
	DialTimeout         time.Duration
	Scorer              similarity.Config
	EventBuffer         int
}

func DefaultConfig() Config {
	return Config{
		AutoEvaluate:        true,
		SilenceTimeout:      silence.DefaultQuiet,
		MaxSentenceDuration: 60 * time.Second,
		AdvanceDelay:        2 * time.Second,
		DialTimeout:         10 * time.Second,
		Scorer:              similarity.DefaultConfig(),
		EventBuffer:         64,
	}
}

type Deps struct {
	Microphone Microphone
	Dialer     transcriber.Dialer
	Notifier   notify.Notifier
	Stats      StatsSink
	Clock      clock.Clock
	// OnChange runs on the event loop after every handled event.
	OnChange func(Snapshot)
}

type Controller struct {
	config   Config
	scorer   *similarity.Scorer
	mic      Microphone
	dialer   transcriber.Dialer
	notifier notify.Notifier
	stats    StatsSink
	clock    clock.Clock
	onChange func(Snapshot)

	events      chan Event
	quit        chan struct{}
	done        chan struct{}
	running     atomic.Bool
	disposeOnce sync.Once

	// Everything below is owned by the event loop.
	session        *ReadingSession
	acc            *transcript.Accumulator
	capture        *pipeline.Pipeline
	gen            uint64
	detector       *silence.Detector
	silenceGen     atomic.Uint64
	deadline       clock.Timer
	advance        clock.Timer
	micReady       bool
	state          State
	failure        FailureKind
	feedback       string
	verdict        *similarity.Verdict
	auto           bool
	recordDisabled bool

	mu   sync.RWMutex
	snap Snapshot
}

func New(cfg Config, deps Deps) (*Controller, error) {
	if deps.Microphone == nil {
		return nil, fmt.Errorf("%w: no microphone", ErrMicrophoneUnavailable)
	}
	if deps.Dialer == nil {
		return nil, errors.New("readalong: no transcription dialer")
	}
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	scorer, err := similarity.NewScorer(cfg.Scorer)
	if err != nil {
		return nil, fmt.Errorf("readalong: %w", err)
	}

	if deps.Notifier == nil {
		deps.Notifier = notify.Nop{}
	}
	if deps.Clock == nil {
		deps.Clock = clock.Real{}
	}
	if cfg.EventBuffer <= 0 {
		cfg.EventBuffer = DefaultConfig().EventBuffer
	}

	c := &Controller{
		config:   cfg,
		scorer:   scorer,
		mic:      deps.Microphone,
		dialer:   deps.Dialer,
		notifier: deps.Notifier,
		stats:    deps.Stats,
		clock:    deps.Clock,
		onChange: deps.OnChange,
		events:   make(chan Event, cfg.EventBuffer),
		quit:     make(chan struct{}),
		done:     make(chan struct{}),
		acc:      transcript.NewAccumulator(),
		auto:     cfg.AutoEvaluate,
	}
	// one detector serves every sentence; the generation it reports is the
	// capture it was last reset for
	c.detector = silence.New(c.clock, cfg.SilenceTimeout, func() {
		c.postTimer(SilenceEvent{Gen: c.silenceGen.Load()})
	})
	c.publish()
	return c, nil
}

func validateConfig(cfg Config) error {
	if cfg.SilenceTimeout <= 0 {
		return fmt.Errorf("readalong: invalid silence timeout: %v", cfg.SilenceTimeout)
	}
	if cfg.MaxSentenceDuration < 0 {
		return fmt.Errorf("readalong: invalid max sentence duration: %v", cfg.MaxSentenceDuration)
	}
	if cfg.AdvanceDelay < 0 {
		return fmt.Errorf("readalong: invalid advance delay: %v", cfg.AdvanceDelay)
	}
	if cfg.DialTimeout <= 0 {
		return fmt.Errorf("readalong: invalid dial timeout: %v", cfg.DialTimeout)
	}
	return nil
}

// Load replaces the current passage. Any open capture is closed first.
func (c *Controller) Load(p Passage) error {
	if p.FileID == "" {
		return ErrMissingFileID
	}
	if len(p.Sentences) == 0 {
		return ErrEmptyPassage
	}
	return c.post(LoadEvent{Passage: p})
}

func (c *Controller) Start() error  { return c.post(StartEvent{}) }
func (c *Controller) Toggle() error { return c.post(ToggleEvent{}) }
func (c *Controller) Retry() error  { return c.post(RetryEvent{}) }
func (c *Controller) Cancel() error { return c.post(CancelEvent{}) }

// SetAutoEvaluate turns silence-triggered evaluation on or off.
func (c *Controller) SetAutoEvaluate(on bool) error {
	return c.post(SetAutoEvent{On: on})
}

// Reconfigure swaps timing and scoring settings. An open capture keeps
// running; the new values apply from the next evaluation or sentence.
func (c *Controller) Reconfigure(cfg Config) error {
	if err := validateConfig(cfg); err != nil {
		return err
	}
	if _, err := similarity.NewScorer(cfg.Scorer); err != nil {
		return fmt.Errorf("readalong: %w", err)
	}
	return c.post(ReconfigureEvent{Config: cfg})
}

// Snapshot returns the state published after the last handled event.
func (c *Controller) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snap
}

func (c *Controller) post(ev Event) error {
	select {
	case <-c.quit:
		return ErrDisposed
	default:
	}
	select {
	case c.events <- ev:
		return nil
	case <-c.quit:
		return ErrDisposed
	}
}

// postAsync is used by timers and pipeline pumps. It gives up when ctx ends
// so a closing pipeline never blocks on a full queue.
func (c *Controller) postAsync(ctx context.Context, ev Event) {
	select {
	case c.events <- ev:
	case <-ctx.Done():
	case <-c.quit:
	}
}

func (c *Controller) postTimer(ev Event) {
	c.postAsync(context.Background(), ev)
}

func (c *Controller) emit(ctx context.Context, u pipeline.Update) {
	var ev Event
	switch u.Kind {
	case pipeline.UpdateTranscript:
		ev = TranscriptEvent{Gen: u.Gen, Event: u.Event}
	case pipeline.UpdateChannelError:
		ev = ChannelErrorEvent{Gen: u.Gen, Err: u.Err}
	case pipeline.UpdateChannelClosed:
		ev = ChannelClosedEvent{Gen: u.Gen}
	case pipeline.UpdateMicError:
		ev = MicErrorEvent{Gen: u.Gen, Err: u.Err}
	default:
		return
	}
	c.postAsync(ctx, ev)
}

// Run processes events until ctx ends or Dispose is called.
func (c *Controller) Run(ctx context.Context) error {
	if !c.running.CompareAndSwap(false, true) {
		return errors.New("readalong: controller already running")
	}
	defer close(c.done)

	log.Printf("Controller: event loop started")
	for {
		select {
		case ev := <-c.events:
			c.HandleEvent(ctx, ev)
		case <-ctx.Done():
			c.teardown()
			return ctx.Err()
		case <-c.quit:
			c.teardown()
			return nil
		}
	}
}

// Dispose stops the event loop, closes any capture and releases the
// microphone. Safe to call more than once.
func (c *Controller) Dispose() {
	c.disposeOnce.Do(func() {
		close(c.quit)
		if c.running.Load() {
			<-c.done
			return
		}
		c.teardown()
	})
}

// HandleEvent applies one event. It must only be called from the goroutine
// running the event loop.
func (c *Controller) HandleEvent(ctx context.Context, ev Event) {
	switch e := ev.(type) {
	case LoadEvent:
		c.handleLoad(e.Passage)
	case StartEvent:
		c.handleStart(ctx)
	case ToggleEvent:
		c.handleToggle(ctx)
	case RetryEvent:
		c.handleRetry(ctx)
	case SetAutoEvent:
		c.handleSetAuto(e.On)
	case CancelEvent:
		c.handleCancel()
	case ReconfigureEvent:
		c.handleReconfigure(e.Config)
	case TranscriptEvent:
		if !c.isCurrent(e.Gen) {
			return
		}
		c.handleTranscript(e.Event)
	case ChannelErrorEvent:
		if !c.isCurrent(e.Gen) {
			return
		}
		c.failTransport(fmt.Errorf("channel: %w", e.Err), notify.MsgConnection)
	case ChannelClosedEvent:
		if !c.isCurrent(e.Gen) {
			return
		}
		c.failTransport(errors.New("channel closed by server"), notify.MsgConnection)
	case MicErrorEvent:
		if !c.isCurrent(e.Gen) {
			return
		}
		c.failTransport(fmt.Errorf("microphone: %w", e.Err), notify.MsgMicLost)
		c.releaseMic()
	case SilenceEvent:
		if !c.isCurrent(e.Gen) || !c.detector.Fired() {
			return
		}
		log.Printf("Controller: silence after %v, evaluating", c.config.SilenceTimeout)
		c.evaluate()
	case DeadlineEvent:
		if !c.isCurrent(e.Gen) {
			return
		}
		log.Printf("Controller: sentence deadline of %v reached, evaluating", c.config.MaxSentenceDuration)
		c.evaluate()
	case AdvanceEvent:
		if c.state != StatePassed || c.session == nil ||
			e.SessionID != c.session.ID || e.Index != c.session.Index {
			return
		}
		c.beginSentence(ctx, e.Index+1)
	default:
		log.Printf("Controller: unknown event %T", ev)
		return
	}
	c.publish()
}

// isCurrent reports whether gen belongs to the open capture.
func (c *Controller) isCurrent(gen uint64) bool {
	return c.capture != nil && c.capture.Gen() == gen && c.state == StateSentenceActive
}

func (c *Controller) handleLoad(p Passage) {
	c.closeCapture()
	c.stopAdvance()
	if c.session != nil {
		c.saveStats()
	}
	c.releaseMic()

	c.session = newReadingSession(p, c.clock.Now())
	c.acc.Reset()
	c.state = StateIdle
	c.failure = FailureNone
	c.feedback = ""
	c.verdict = nil
	c.recordDisabled = false

	log.Printf("Controller: loaded %s (%d sentences), session %s", p.FileID, len(p.Sentences), c.session.ID)
	c.saveStats()
}

func (c *Controller) handleStart(ctx context.Context) {
	switch {
	case c.session == nil:
		log.Printf("Controller: start ignored: %v", ErrNotLoaded)
		return
	case c.session.Complete:
		log.Printf("Controller: start ignored: %v", ErrSessionComplete)
		return
	case c.state != StateIdle:
		return
	}

	if !c.ensureMic(ctx) {
		return
	}
	c.beginSentence(ctx, 0)
}

func (c *Controller) handleToggle(ctx context.Context) {
	switch c.state {
	case StateIdle:
		c.handleStart(ctx)
	case StateSentenceActive:
		c.evaluate()
	case StateFailed:
		c.handleRetry(ctx)
	default:
		log.Printf("Controller: toggle ignored in state %s", c.state)
	}
}

func (c *Controller) handleRetry(ctx context.Context) {
	if c.state != StateFailed || c.session == nil {
		log.Printf("Controller: retry ignored in state %s", c.state)
		return
	}
	if c.recordDisabled {
		c.notifier.Error(notify.MsgMicPermission)
		return
	}
	if !c.ensureMic(ctx) {
		return
	}

	index := c.session.Index
	if index < 0 {
		index = 0
	}
	c.beginSentence(ctx, index)
}

func (c *Controller) handleSetAuto(on bool) {
	if c.auto == on {
		return
	}
	c.auto = on
	log.Printf("Controller: auto evaluate %v", on)

	if c.state != StateSentenceActive {
		return
	}
	if on {
		c.detector.Arm()
	} else {
		c.detector.Stop()
	}
}

func (c *Controller) handleCancel() {
	c.stopAdvance()
	if c.state != StateSentenceActive {
		return
	}
	c.closeCapture()
	c.state = StateFailed
	c.failure = FailureNone
	c.feedback = ""
	log.Printf("Controller: capture cancelled")
}

func (c *Controller) handleReconfigure(cfg Config) {
	scorer, err := similarity.NewScorer(cfg.Scorer)
	if err != nil {
		log.Printf("Controller: reconfigure rejected: %v", err)
		return
	}
	cfg.EventBuffer = c.config.EventBuffer
	prevAuto := c.config.AutoEvaluate
	c.config = cfg
	c.scorer = scorer
	c.detector.SetQuiet(cfg.SilenceTimeout)
	if cfg.AutoEvaluate != prevAuto {
		c.handleSetAuto(cfg.AutoEvaluate)
	}
	log.Printf("Controller: configuration updated")
}

// handleTranscript treats every event from the live channel as activity,
// blank ones included. Blank text never replaces the best guess.
func (c *Controller) handleTranscript(ev transcript.Event) {
	c.detector.Observe()
	if !c.acc.Apply(ev) {
		return
	}
	c.session.Transcript = c.acc.CurrentBestGuess()
}

// ensureMic acquires the microphone once per reading session.
func (c *Controller) ensureMic(ctx context.Context) bool {
	if c.micReady {
		return true
	}
	if err := c.mic.Acquire(ctx); err != nil {
		log.Printf("Controller: microphone unavailable: %v", err)
		c.state = StateFailed
		c.failure = FailurePermission
		c.feedback = notify.MsgMicPermission
		c.recordDisabled = true
		c.notifier.Error(notify.MsgMicPermission)
		return false
	}
	c.micReady = true
	return true
}

func (c *Controller) releaseMic() {
	if !c.micReady {
		return
	}
	c.micReady = false
	if err := c.mic.Release(); err != nil {
		log.Printf("Controller: error releasing microphone: %v", err)
	}
}

// beginSentence enters SentenceActive for index with a fresh pipeline. The
// previous pipeline is fully stopped before the new generation exists.
func (c *Controller) beginSentence(ctx context.Context, index int) {
	c.closeCapture()
	c.stopAdvance()

	s := c.session
	s.Index = index
	s.Transcript = ""
	c.acc.Reset()
	c.verdict = nil
	c.failure = FailureNone
	c.feedback = ""

	c.gen++
	gen := c.gen

	dialCtx, cancel := context.WithTimeout(ctx, c.config.DialTimeout)
	p, err := pipeline.Start(dialCtx, gen, c.mic, c.dialer, c.emit)
	cancel()
	if err != nil {
		if transcriber.IsTransportError(err) {
			c.failTransport(err, notify.MsgConnection)
			return
		}
		c.releaseMic()
		c.failTransport(err, notify.MsgMicLost)
		return
	}

	c.capture = p
	c.silenceGen.Store(gen)
	if c.auto {
		c.detector.Reset()
	}
	if c.config.MaxSentenceDuration > 0 {
		c.deadline = c.clock.AfterFunc(c.config.MaxSentenceDuration, func() {
			c.postTimer(DeadlineEvent{Gen: gen})
		})
	}

	c.state = StateSentenceActive
	c.feedback = notify.MsgReading
	c.notifier.RecordingChanged(true)
	c.notifier.SentenceStarted(index, s.Total(), s.Current())
	log.Printf("Controller: sentence %d/%d active (gen %d)", index+1, s.Total(), gen)
}

// closeCapture stops the recorder, closes the channel and clears the
// sentence timers. Teardown errors are logged by the pipeline.
func (c *Controller) closeCapture() {
	c.detector.Stop()
	if c.deadline != nil {
		c.deadline.Stop()
		c.deadline = nil
	}
	if c.capture == nil {
		return
	}
	c.capture.Stop()
	c.capture = nil
	c.notifier.RecordingChanged(false)
}

func (c *Controller) stopAdvance() {
	if c.advance != nil {
		c.advance.Stop()
		c.advance = nil
	}
}

// failTransport ends the attempt without touching progress.
func (c *Controller) failTransport(err error, msg string) {
	log.Printf("Controller: attempt failed: %v", err)
	c.closeCapture()
	c.state = StateFailed
	c.failure = FailureConnectivity
	c.feedback = msg
	c.notifier.Error(msg)
}

func (c *Controller) evaluate() {
	if c.state != StateSentenceActive {
		return
	}
	c.state = StateEvaluating
	c.closeCapture()

	s := c.session
	expected := s.Current()
	spoken := c.acc.CurrentBestGuess()
	v := c.scorer.Evaluate(expected, spoken)
	c.verdict = &v
	s.Attempts++

	log.Printf("Controller: sentence %d %s after %d transcript events (score %.2f, threshold %.2f, prefix %v)",
		s.Index+1, v.Outcome, c.acc.Events(), v.Result.Score, v.Threshold, v.PrefixMatch)

	if !v.Passed() {
		s.Failures++
		c.state = StateFailed
		switch v.Outcome {
		case similarity.OutcomeTooShort:
			c.failure = FailureTooShort
			c.feedback = notify.MsgReadLonger
		case similarity.OutcomeIncomplete:
			c.failure = FailureTooShort
			c.feedback = notify.MsgReadToEnd
		default:
			c.failure = FailureMismatch
			c.feedback = notify.MsgMismatch
		}
		c.notifier.Feedback(c.feedback)
		c.saveStats()
		return
	}

	s.Passed[s.Index] = true
	c.failure = FailureNone
	c.feedback = notify.MsgGoodJob
	c.notifier.Feedback(c.feedback)

	if s.IsLast() {
		s.Complete = true
		s.EndedAt = c.clock.Now()
		c.state = StateComplete
		c.feedback = notify.MsgFinished
		c.notifier.Finished(s.PassedCount(), s.Total())
		c.releaseMic()
		c.saveStats()
		log.Printf("Controller: session %s complete", s.ID)
		return
	}

	c.state = StatePassed
	c.saveStats()

	id, index := s.ID, s.Index
	c.advance = c.clock.AfterFunc(c.config.AdvanceDelay, func() {
		c.postTimer(AdvanceEvent{SessionID: id, Index: index})
	})
}

func (c *Controller) saveStats() {
	if c.stats == nil || c.session == nil {
		return
	}
	s := c.session
	st := store.ReadingStats{
		FileID:      s.Passage.FileID,
		SessionID:   s.ID,
		Sentences:   s.Total(),
		Passed:      s.PassedCount(),
		Failed:      s.Failures,
		Attempts:    s.Attempts,
		StartedAt:   s.StartedAt,
		CompletedAt: s.EndedAt,
	}
	if err := c.stats.PutReadingStats(st); err != nil {
		log.Printf("Controller: error saving reading stats: %v", err)
	}
}

func (c *Controller) teardown() {
	c.closeCapture()
	c.stopAdvance()
	c.releaseMic()
	if c.session != nil {
		c.saveStats()
	}
	c.publish()
	log.Printf("Controller: disposed")
}

func (c *Controller) publish() {
	snap := Snapshot{
		State:          c.state,
		Index:          -1,
		Failure:        c.failure,
		Feedback:       c.feedback,
		AutoEvaluate:   c.auto,
		RecordDisabled: c.recordDisabled,
		Recording:      c.capture != nil,
		SilenceArmed:   c.capture != nil && c.detector.Armed(),
	}
	if c.verdict != nil {
		v := *c.verdict
		snap.LastVerdict = &v
	}
	if s := c.session; s != nil {
		snap.FileID = s.Passage.FileID
		snap.SessionID = s.ID
		snap.Sentences = append([]string(nil), s.Passage.Sentences...)
		snap.Passed = append([]bool(nil), s.Passed...)
		snap.Index = s.Index
		snap.Transcript = s.Transcript
		snap.Settled = c.capture != nil && c.acc.Settled()
		snap.Complete = s.Complete
	}

	c.mu.Lock()
	c.snap = snap
	c.mu.Unlock()

	if c.onChange != nil {
		c.onChange(snap)
	}
}
