package transcriber

import "context"

// TranscriptionResult is one message from the STT channel
type TranscriptionResult struct {
	Text    string // full current hypothesis, not a delta
	IsFinal bool   // true when the service will not revise this hypothesis
	Error   error  // non-nil for service or transport errors
}

// Channel is an open streaming transcription session
type Channel interface {
	// SendChunk sends one chunk of captured audio. It never blocks on results.
	SendChunk(audio []byte) error

	// Results delivers transcripts and errors in transport order. It is closed
	// once the connection is gone, whoever closed it.
	Results() <-chan TranscriptionResult

	// Close tears the connection down with a normal-closure code. It is safe to
	// call more than once.
	Close() error
}

// Dialer opens transcription channels
type Dialer interface {
	Dial(ctx context.Context) (Channel, error)
}
