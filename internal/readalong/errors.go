package readalong

import "errors"

var (
	ErrMissingFileID         = errors.New("missing fileId")
	ErrEmptyPassage          = errors.New("passage has no readable text")
	ErrMicrophoneUnavailable = errors.New("microphone unavailable")
	ErrNotLoaded             = errors.New("no passage loaded")
	ErrSessionComplete       = errors.New("reading session already complete")
	ErrDisposed              = errors.New("controller disposed")
)
