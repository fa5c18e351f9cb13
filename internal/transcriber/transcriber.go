package transcriber

import (
	"time"
)

// Config describes how to reach the streaming STT endpoint
type Config struct {
	URL               string
	Language          string
	HeartbeatInterval time.Duration
	DialTimeout       time.Duration
	ResultBufferSize  int
}

func DefaultConfig() Config {
	return Config{
		URL:               "ws://localhost:3000/stt",
		Language:          "",
		HeartbeatInterval: 10 * time.Second,
		DialTimeout:       10 * time.Second,
		ResultBufferSize:  100,
	}
}
