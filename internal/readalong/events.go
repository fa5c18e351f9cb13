package readalong

import (
	"github.com/leonardotrapani/readalong/internal/transcript"
)

// Event is anything the controller reacts to. Every state change goes
// through HandleEvent.
type Event interface {
	eventName() string
}

type LoadEvent struct{ Passage Passage }

type StartEvent struct{}

type ToggleEvent struct{}

type RetryEvent struct{}

type SetAutoEvent struct{ On bool }

type CancelEvent struct{}

type ReconfigureEvent struct{ Config Config }

// TranscriptEvent and the other capture events carry the generation of the
// pipeline that produced them. Events from a closed pipeline are dropped.
type TranscriptEvent struct {
	Gen   uint64
	Event transcript.Event
}

type ChannelErrorEvent struct {
	Gen uint64
	Err error
}

type ChannelClosedEvent struct{ Gen uint64 }

type MicErrorEvent struct {
	Gen uint64
	Err error
}

type SilenceEvent struct{ Gen uint64 }

type DeadlineEvent struct{ Gen uint64 }

type AdvanceEvent struct {
	SessionID string
	Index     int
}

func (LoadEvent) eventName() string          { return "load" }
func (StartEvent) eventName() string         { return "start" }
func (ToggleEvent) eventName() string        { return "toggle" }
func (RetryEvent) eventName() string         { return "retry" }
func (SetAutoEvent) eventName() string       { return "set_auto" }
func (CancelEvent) eventName() string        { return "cancel" }
func (ReconfigureEvent) eventName() string   { return "reconfigure" }
func (TranscriptEvent) eventName() string    { return "transcript" }
func (ChannelErrorEvent) eventName() string  { return "channel_error" }
func (ChannelClosedEvent) eventName() string { return "channel_closed" }
func (MicErrorEvent) eventName() string      { return "mic_error" }
func (SilenceEvent) eventName() string       { return "silence" }
func (DeadlineEvent) eventName() string      { return "deadline" }
func (AdvanceEvent) eventName() string       { return "advance" }
