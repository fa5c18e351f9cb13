package testutil

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/leonardotrapani/readalong/internal/recording"
	"github.com/leonardotrapani/readalong/internal/transcriber"
)

// FakeMic stands in for an acquired recorder. Chunks are pushed by the test.
type FakeMic struct {
	AcquireErr error
	StartErr   error

	mu       sync.Mutex
	acquired bool
	chunks   chan recording.Chunk
	errs     chan error
	seq      int

	acquires, starts, stops, releases int
}

func NewFakeMic() *FakeMic {
	return &FakeMic{}
}

func (m *FakeMic) Acquire(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.acquires++
	if m.AcquireErr != nil {
		return m.AcquireErr
	}
	m.acquired = true
	return nil
}

func (m *FakeMic) Start(ctx context.Context) (<-chan recording.Chunk, <-chan error, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.starts++
	if m.StartErr != nil {
		return nil, nil, m.StartErr
	}
	if !m.acquired {
		return nil, nil, recording.ErrNotAcquired
	}
	if m.chunks != nil {
		return nil, nil, recording.ErrAlreadyCapturing
	}
	m.chunks = make(chan recording.Chunk, 16)
	m.errs = make(chan error, 1)
	return m.chunks, m.errs, nil
}

func (m *FakeMic) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.stops++
	m.stopLocked()
	return nil
}

func (m *FakeMic) Release() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.releases++
	m.stopLocked()
	m.acquired = false
	return nil
}

func (m *FakeMic) stopLocked() {
	if m.chunks == nil {
		return
	}
	close(m.chunks)
	close(m.errs)
	m.chunks = nil
	m.errs = nil
}

// Push delivers one chunk to the active capture. It reports false when no
// capture is running or the buffer is full.
func (m *FakeMic) Push(data []byte) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.chunks == nil {
		return false
	}
	select {
	case m.chunks <- recording.Chunk{Seq: m.seq, Data: data, Timestamp: time.Now()}:
		m.seq++
		return true
	default:
		return false
	}
}

// Fail reports a device error on the active capture.
func (m *FakeMic) Fail(err error) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.errs == nil {
		return false
	}
	select {
	case m.errs <- err:
		return true
	default:
		return false
	}
}

func (m *FakeMic) Capturing() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.chunks != nil
}

func (m *FakeMic) Acquired() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.acquired
}

func (m *FakeMic) Acquires() int { m.mu.Lock(); defer m.mu.Unlock(); return m.acquires }
func (m *FakeMic) Starts() int   { m.mu.Lock(); defer m.mu.Unlock(); return m.starts }
func (m *FakeMic) Stops() int    { m.mu.Lock(); defer m.mu.Unlock(); return m.stops }
func (m *FakeMic) Releases() int { m.mu.Lock(); defer m.mu.Unlock(); return m.releases }

// FakeDialer hands out FakeChannels and remembers every one of them.
type FakeDialer struct {
	mu       sync.Mutex
	dialErr  error
	channels []*FakeChannel
}

func NewFakeDialer() *FakeDialer {
	return &FakeDialer{}
}

// FailDials makes every later Dial fail with err. Nil restores dialing.
func (d *FakeDialer) FailDials(err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.dialErr = err
}

func (d *FakeDialer) Dial(ctx context.Context) (transcriber.Channel, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.dialErr != nil {
		return nil, transcriber.NewTransportError("dial", d.dialErr)
	}
	ch := &FakeChannel{results: make(chan transcriber.TranscriptionResult, 32)}
	d.channels = append(d.channels, ch)
	return ch, nil
}

// Opens is how many channels were ever dialed.
func (d *FakeDialer) Opens() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.channels)
}

// Live is how many dialed channels have not been closed by the client.
func (d *FakeDialer) Live() int {
	d.mu.Lock()
	defer d.mu.Unlock()

	n := 0
	for _, ch := range d.channels {
		if !ch.Closed() {
			n++
		}
	}
	return n
}

// Last returns the most recently dialed channel, or nil.
func (d *FakeDialer) Last() *FakeChannel {
	d.mu.Lock()
	defer d.mu.Unlock()

	if len(d.channels) == 0 {
		return nil
	}
	return d.channels[len(d.channels)-1]
}

func (d *FakeDialer) Channel(i int) *FakeChannel {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.channels[i]
}

var errChannelClosed = errors.New("channel closed")

// FakeChannel is a scripted transcription channel.
type FakeChannel struct {
	SendErr error

	mu      sync.Mutex
	results chan transcriber.TranscriptionResult
	sent    [][]byte
	closed  bool
	drained bool
}

func (c *FakeChannel) SendChunk(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed || c.drained {
		return transcriber.NewTransportError("write", errChannelClosed)
	}
	if c.SendErr != nil {
		return c.SendErr
	}
	c.sent = append(c.sent, append([]byte(nil), data...))
	return nil
}

func (c *FakeChannel) Results() <-chan transcriber.TranscriptionResult {
	return c.results
}

func (c *FakeChannel) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true
	c.drainLocked()
	return nil
}

func (c *FakeChannel) drainLocked() {
	if c.drained {
		return
	}
	c.drained = true
	close(c.results)
}

func (c *FakeChannel) push(res transcriber.TranscriptionResult) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.drained {
		return false
	}
	select {
	case c.results <- res:
		return true
	default:
		return false
	}
}

func (c *FakeChannel) Partial(text string) bool {
	return c.push(transcriber.TranscriptionResult{Text: text})
}

func (c *FakeChannel) Final(text string) bool {
	return c.push(transcriber.TranscriptionResult{Text: text, IsFinal: true})
}

// Drop simulates the server going away: an error result followed by the
// end of the result stream.
func (c *FakeChannel) Drop(err error) {
	c.push(transcriber.TranscriptionResult{Error: transcriber.NewTransportError("read", err)})

	c.mu.Lock()
	defer c.mu.Unlock()
	c.drainLocked()
}

// Closed reports whether the client closed the channel.
func (c *FakeChannel) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func (c *FakeChannel) Sent() [][]byte {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([][]byte, len(c.sent))
	copy(out, c.sent)
	return out
}
