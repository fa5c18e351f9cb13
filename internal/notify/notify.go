package notify

import (
	"fmt"
	"log"
	"os/exec"
)

// Learner-facing feedback lines.
const (
	MsgReading       = "Reading..."
	MsgGoodJob       = "Good job!"
	MsgReadLonger    = "Read a bit longer"
	MsgReadToEnd     = "Read the sentence to the end"
	MsgMismatch      = "That sounded different, try again?"
	MsgConnection    = "Could not connect to the server"
	MsgMicPermission = "Microphone permission denied"
	MsgMicLost       = "The microphone stopped, press retry"
	MsgFinished      = "You finished reading!"
	MsgNoContent     = "This passage has no text to read"
	appName          = "Readalong"
)

type Notifier interface {
	RecordingChanged(on bool)
	SentenceStarted(index, total int, sentence string)
	Feedback(msg string)
	Finished(passed, total int)
	Error(msg string)
}

// New returns the notifier for a configured type ("desktop", "log" or
// "none"). Unknown types fall back to logging.
func New(kind string, enabled bool) Notifier {
	if !enabled {
		return Nop{}
	}
	switch kind {
	case "desktop":
		return Desktop{}
	case "none":
		return Nop{}
	default:
		return Log{}
	}
}

type Desktop struct{}

func (d Desktop) RecordingChanged(on bool) {
	state := "Stopped"
	if on {
		state = "Started"
	}
	d.Notify(appName, fmt.Sprintf("%s Recording", state))
}

func (d Desktop) SentenceStarted(index, total int, sentence string) {
	d.Notify(fmt.Sprintf("%s: sentence %d/%d", appName, index+1, total), sentence)
}

func (d Desktop) Feedback(msg string) {
	d.Notify(appName, msg)
}

func (d Desktop) Finished(passed, total int) {
	d.Notify(appName, fmt.Sprintf("%s (%d/%d sentences)", MsgFinished, passed, total))
}

func (Desktop) Error(msg string) {
	cmd := exec.Command("notify-send", "-a", appName, "-u", "critical", msg)
	if err := cmd.Run(); err != nil {
		log.Printf("Failed to send error notification: %v", err)
	}
}

func (Desktop) Notify(title, message string) {
	cmd := exec.Command("notify-send", "-a", appName, title, message)
	if err := cmd.Run(); err != nil {
		log.Printf("Failed to send notification: %v", err)
	}
}

// Log writes every notification to the standard logger.
type Log struct{}

func (Log) RecordingChanged(on bool) {
	state := "Stopped"
	if on {
		state = "Started"
	}
	log.Printf("%s: Recording %s", appName, state)
}

func (Log) SentenceStarted(index, total int, sentence string) {
	log.Printf("%s: sentence %d/%d: %s", appName, index+1, total, sentence)
}

func (Log) Feedback(msg string) {
	log.Printf("%s: %s", appName, msg)
}

func (Log) Finished(passed, total int) {
	log.Printf("%s: %s (%d/%d sentences)", appName, MsgFinished, passed, total)
}

func (Log) Error(msg string) {
	log.Printf("%s error: %s", appName, msg)
}

// Nop is a Notifier that does absolutely nothing.
// Useful in unit tests or headless builds.
type Nop struct{}

func (Nop) RecordingChanged(on bool)                          {}
func (Nop) SentenceStarted(index, total int, sentence string) {}
func (Nop) Feedback(msg string)                               {}
func (Nop) Finished(passed, total int)                        {}
func (Nop) Error(msg string)                                  {}
