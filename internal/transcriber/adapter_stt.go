package transcriber

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// sttMessage is the envelope for every JSON frame on the /stt socket
type sttMessage struct {
	Type    string `json:"type"`
	Final   bool   `json:"final,omitempty"`
	Text    string `json:"text,omitempty"`
	Message string `json:"message,omitempty"`
}

// WSDialer opens /stt websocket channels
type WSDialer struct {
	config Config
	dialer *websocket.Dialer
}

func NewWSDialer(config Config) *WSDialer {
	if config.ResultBufferSize <= 0 {
		config.ResultBufferSize = DefaultConfig().ResultBufferSize
	}
	return &WSDialer{
		config: config,
		dialer: &websocket.Dialer{
			HandshakeTimeout: config.DialTimeout,
		},
	}
}

// buildURL adds the language hint when one is configured
func (d *WSDialer) buildURL() (string, error) {
	u, err := url.Parse(d.config.URL)
	if err != nil {
		return "", fmt.Errorf("parse stt url: %w", err)
	}
	if u.Scheme != "ws" && u.Scheme != "wss" {
		return "", fmt.Errorf("stt url must use ws or wss, got %q", u.Scheme)
	}
	if d.config.Language != "" {
		q := u.Query()
		q.Set("language", d.config.Language)
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

func (d *WSDialer) Dial(ctx context.Context) (Channel, error) {
	wsURL, err := d.buildURL()
	if err != nil {
		return nil, NewTransportError("dial", err)
	}

	if d.config.DialTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.config.DialTimeout)
		defer cancel()
	}

	conn, resp, err := d.dialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		if resp != nil {
			log.Printf("stt: dial failed with status %d", resp.StatusCode)
		}
		return nil, NewTransportError("dial", err)
	}

	ch := newWSChannel(conn, d.config)
	log.Printf("stt: connected to %s", wsURL)
	return ch, nil
}

type wsChannel struct {
	conn      *websocket.Conn
	resultsCh chan TranscriptionResult

	writeMu sync.Mutex // gorilla allows one concurrent writer

	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	closeOnce sync.Once
}

func newWSChannel(conn *websocket.Conn, config Config) *wsChannel {
	ctx, cancel := context.WithCancel(context.Background())
	c := &wsChannel{
		conn:      conn,
		resultsCh: make(chan TranscriptionResult, config.ResultBufferSize),
		ctx:       ctx,
		cancel:    cancel,
	}

	c.wg.Add(1)
	go c.readLoop()

	if config.HeartbeatInterval > 0 {
		c.wg.Add(1)
		go c.heartbeatLoop(config.HeartbeatInterval)
	}
	return c
}

func (c *wsChannel) Results() <-chan TranscriptionResult {
	return c.resultsCh
}

// SendChunk sends raw binary audio
func (c *wsChannel) SendChunk(audio []byte) error {
	select {
	case <-c.ctx.Done():
		return NewTransportError("send", errors.New("channel closed"))
	default:
	}

	c.writeMu.Lock()
	err := c.conn.WriteMessage(websocket.BinaryMessage, audio)
	c.writeMu.Unlock()

	if err != nil {
		return NewTransportError("send", err)
	}
	return nil
}

func (c *wsChannel) heartbeatLoop(interval time.Duration) {
	defer c.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.ctx.Done():
			return
		case <-ticker.C:
			c.writeMu.Lock()
			err := c.conn.WriteJSON(sttMessage{Type: "heartbeat"})
			c.writeMu.Unlock()
			if err != nil {
				// the read side reports the broken connection
				log.Printf("stt: heartbeat failed: %v", err)
				return
			}
		}
	}
}

func (c *wsChannel) readLoop() {
	defer c.wg.Done()
	defer close(c.resultsCh)

	for {
		msgType, message, err := c.conn.ReadMessage()
		if err != nil {
			if c.ctx.Err() != nil {
				return
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				err = errors.New("connection closed by server")
			}
			log.Printf("stt: read error: %v", err)
			c.emit(TranscriptionResult{Error: NewTransportError("read", err)})
			return
		}
		if msgType != websocket.TextMessage {
			continue
		}

		var msg sttMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			log.Printf("stt: parse error: %v", err)
			c.emit(TranscriptionResult{Error: NewTransportError("decode", err)})
			continue
		}

		switch msg.Type {
		case "transcript":
			c.emit(TranscriptionResult{Text: msg.Text, IsFinal: msg.Final})
		case "error":
			log.Printf("stt: server error: %s", msg.Message)
			c.emit(TranscriptionResult{Error: NewTransportError("server", errors.New(msg.Message))})
		case "":
			c.emit(TranscriptionResult{Error: NewTransportError("decode", errors.New("message without type"))})
		default:
			log.Printf("stt: ignoring message type %q", msg.Type)
		}
	}
}

func (c *wsChannel) emit(r TranscriptionResult) {
	select {
	case c.resultsCh <- r:
	case <-c.ctx.Done():
	}
}

// Close sends a normal-closure frame and waits for the loops to exit
func (c *wsChannel) Close() error {
	c.closeOnce.Do(func() {
		c.cancel()

		c.writeMu.Lock()
		_ = c.conn.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second),
		)
		c.writeMu.Unlock()

		_ = c.conn.Close()
		c.wg.Wait()
		log.Printf("stt: closed")
	})
	return nil
}
