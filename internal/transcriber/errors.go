package transcriber

import (
	"errors"
	"fmt"
)

// TransportError marks a failure of the channel itself (dial, send, read or
// an undecodable payload) as opposed to a transcript that did not match.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	if e == nil || e.Err == nil {
		return "stt transport error"
	}
	if e.Op == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("stt %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func NewTransportError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &TransportError{Op: op, Err: err}
}

func IsTransportError(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}
