// Package pipeline runs one capture session: microphone chunks are streamed
// into a transcription channel and the channel's results are handed back
// to the owner, tagged with the session generation.
package pipeline

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/leonardotrapani/readalong/internal/recording"
	"github.com/leonardotrapani/readalong/internal/transcriber"
	"github.com/leonardotrapani/readalong/internal/transcript"
)

type Status string

const (
	Idle      Status = "idle"
	Recording Status = "recording"
	Stopped   Status = "stopped"
)

// Microphone is the capture side of an acquired recorder.
type Microphone interface {
	Start(ctx context.Context) (<-chan recording.Chunk, <-chan error, error)
	Stop() error
}

type UpdateKind int

const (
	UpdateTranscript UpdateKind = iota
	UpdateChannelError
	UpdateChannelClosed
	UpdateMicError
)

func (k UpdateKind) String() string {
	switch k {
	case UpdateTranscript:
		return "transcript"
	case UpdateChannelError:
		return "channel_error"
	case UpdateChannelClosed:
		return "channel_closed"
	case UpdateMicError:
		return "mic_error"
	default:
		return fmt.Sprintf("update(%d)", int(k))
	}
}

// Update is one thing that happened inside a capture session.
type Update struct {
	Gen   uint64
	Kind  UpdateKind
	Event transcript.Event
	Err   error
}

// EmitFunc delivers an update. It must give up once ctx is done so that
// Stop never waits on a consumer that is itself waiting on Stop.
type EmitFunc func(ctx context.Context, u Update)

type Pipeline struct {
	gen     uint64
	mic     Microphone
	channel transcriber.Channel
	emit    EmitFunc

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu       sync.Mutex
	status   Status
	chunks   int
	bytes    int
	stopOnce sync.Once
}

// Start dials a fresh transcription channel and then starts the
// microphone. On error nothing is left open.
func Start(ctx context.Context, gen uint64, mic Microphone, dialer transcriber.Dialer, emit EmitFunc) (*Pipeline, error) {
	channel, err := dialer.Dial(ctx)
	if err != nil {
		return nil, err
	}

	runCtx, cancel := context.WithCancel(context.Background())
	chunks, errs, err := mic.Start(runCtx)
	if err != nil {
		cancel()
		if closeErr := channel.Close(); closeErr != nil {
			log.Printf("Pipeline: error closing channel after mic failure: %v", closeErr)
		}
		return nil, fmt.Errorf("start microphone: %w", err)
	}

	p := &Pipeline{
		gen:     gen,
		mic:     mic,
		channel: channel,
		emit:    emit,
		ctx:     runCtx,
		cancel:  cancel,
		status:  Recording,
	}

	p.wg.Add(2)
	go p.pumpAudio(chunks, errs)
	go p.pumpResults()

	log.Printf("Pipeline: gen %d recording", gen)
	return p, nil
}

func (p *Pipeline) Gen() uint64 { return p.gen }

func (p *Pipeline) Status() Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status
}

// Stop stops the microphone, closes the channel and waits for both pumps.
// Safe to call more than once.
func (p *Pipeline) Stop() {
	p.stopOnce.Do(func() {
		p.cancel()

		if err := p.mic.Stop(); err != nil {
			log.Printf("Pipeline: error stopping microphone: %v", err)
		}
		if err := p.channel.Close(); err != nil {
			log.Printf("Pipeline: error closing channel: %v", err)
		}
		p.wg.Wait()

		p.mu.Lock()
		p.status = Stopped
		chunks, bytes := p.chunks, p.bytes
		p.mu.Unlock()

		log.Printf("Pipeline: gen %d stopped after %d chunks (%d bytes)", p.gen, chunks, bytes)
	})
}

func (p *Pipeline) pumpAudio(chunks <-chan recording.Chunk, errs <-chan error) {
	defer p.wg.Done()

	for {
		select {
		case chunk, ok := <-chunks:
			if !ok {
				return
			}
			if err := p.channel.SendChunk(chunk.Data); err != nil {
				p.send(Update{Kind: UpdateChannelError, Err: err})
				return
			}
			p.mu.Lock()
			p.chunks++
			p.bytes += len(chunk.Data)
			p.mu.Unlock()

		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			if err != nil {
				p.send(Update{Kind: UpdateMicError, Err: err})
				return
			}

		case <-p.ctx.Done():
			return
		}
	}
}

func (p *Pipeline) pumpResults() {
	defer p.wg.Done()

	for res := range p.channel.Results() {
		if res.Error != nil {
			p.send(Update{Kind: UpdateChannelError, Err: res.Error})
			continue
		}
		kind := transcript.Partial
		if res.IsFinal {
			kind = transcript.Final
		}
		p.send(Update{Kind: UpdateTranscript, Event: transcript.Event{Kind: kind, Text: res.Text}})
	}
	p.send(Update{Kind: UpdateChannelClosed})
}

func (p *Pipeline) send(u Update) {
	if p.ctx.Err() != nil {
		return
	}
	u.Gen = p.gen
	p.emit(p.ctx, u)
}
