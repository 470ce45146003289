package chathub

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"dchat/client/internal/models"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 1 << 16
)

var (
	// ErrAuthMissing: no credential to present on the hub handshake.
	ErrAuthMissing = errors.New("auth token missing")
	// ErrConnectFailed: dial/negotiation error. Retryable; the automatic
	// reconnect uses the same path.
	ErrConnectFailed = errors.New("hub connect failed")
	// ErrNotConnected: an invoke was attempted off the Connected state.
	ErrNotConnected = errors.New("hub not connected")
)

// reconnectDelays is the vendor client's default schedule: retry
// immediately, then back off, then give up.
var reconnectDelays = []time.Duration{0, 2 * time.Second, 10 * time.Second, 30 * time.Second}

// ConnState describes the hub connection lifecycle.
type ConnState int32

const (
	StateDisconnected ConnState = iota
	StateConnecting
	StateConnected
	StateReconnecting
)

func (s ConnState) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateReconnecting:
		return "reconnecting"
	default:
		return "disconnected"
	}
}

// TokenSource supplies the bearer credential for the handshake.
type TokenSource interface {
	Token() string
}

// HubEvent is one decoded server-to-client frame.
type HubEvent struct {
	Event   string
	Message *models.Message // set for ReceiveMessage
	Text    string          // set for UserJoined / UserLeft
}

// Conn owns the single long-lived websocket to the hub. One Conn serves the
// whole client session; room membership on top of it is the tracker's job.
type Conn struct {
	url    string
	tokens TokenSource
	dialer *websocket.Dialer
	log    zerolog.Logger

	state  atomic.Int32
	sendCh chan models.HubFrame
	events chan HubEvent
	states chan ConnState
	quit   chan struct{}

	mu        sync.Mutex
	ws        *websocket.Conn
	closeOnce sync.Once
}

// NewConn prepares a connection to the hub endpoint. Nothing is dialed
// until Connect.
func NewConn(url string, tokens TokenSource, log zerolog.Logger) *Conn {
	return &Conn{
		url:    url,
		tokens: tokens,
		dialer: &websocket.Dialer{HandshakeTimeout: 10 * time.Second},
		log:    log,
		sendCh: make(chan models.HubFrame, 64),
		events: make(chan HubEvent, 256),
		states: make(chan ConnState, 16),
		quit:   make(chan struct{}),
	}
}

// State returns the current connection state.
func (c *Conn) State() ConnState {
	return ConnState(c.state.Load())
}

// Events delivers decoded hub events. Single consumer expected.
func (c *Conn) Events() <-chan HubEvent {
	return c.events
}

// StateChanges delivers state transitions, Connected included, so the
// consumer can re-establish room subscriptions after a reconnect.
func (c *Conn) StateChanges() <-chan ConnState {
	return c.states
}

// Connect dials the hub and starts the pumps. Fails fast with
// ErrAuthMissing when no credential is stored.
func (c *Conn) Connect() error {
	if c.tokens.Token() == "" {
		return ErrAuthMissing
	}

	c.setState(StateConnecting)
	ws, err := c.dial()
	if err != nil {
		c.setState(StateDisconnected)
		return fmt.Errorf("%w: %v", ErrConnectFailed, err)
	}

	c.start(ws)
	c.setState(StateConnected)
	return nil
}

// Invoke sends a hub invocation. Allowed only while Connected; anything
// else returns ErrNotConnected and the frame is not queued.
func (c *Conn) Invoke(target string, args ...any) error {
	if c.State() != StateConnected {
		return ErrNotConnected
	}
	frame, err := models.NewHubFrame(target, args...)
	if err != nil {
		return err
	}
	select {
	case c.sendCh <- frame:
		return nil
	case <-c.quit:
		return ErrNotConnected
	case <-time.After(writeWait):
		return ErrNotConnected
	}
}

// Close tears the connection down. Idempotent: safe when never connected
// or already closed.
func (c *Conn) Close() {
	c.closeOnce.Do(func() {
		close(c.quit)
		c.mu.Lock()
		if c.ws != nil {
			c.ws.Close()
		}
		c.mu.Unlock()
		c.setState(StateDisconnected)
	})
}

func (c *Conn) dial() (*websocket.Conn, error) {
	header := http.Header{}
	header.Set("Authorization", "Bearer "+c.tokens.Token())
	ws, _, err := c.dialer.Dial(c.url, header)
	return ws, err
}

func (c *Conn) start(ws *websocket.Conn) {
	c.mu.Lock()
	c.ws = ws
	c.mu.Unlock()

	done := make(chan struct{})
	go c.writePump(ws, done)
	go c.readPump(ws, done)
}

func (c *Conn) setState(s ConnState) {
	if ConnState(c.state.Swap(int32(s))) == s {
		return
	}
	select {
	case c.states <- s:
	default:
		// Консюмер відстав; пропускаємо перехід, State() завжди актуальний.
	}
}

// readPump reads frames until the socket drops, then hands control to the
// reconnect loop.
func (c *Conn) readPump(ws *websocket.Conn, done chan struct{}) {
	defer func() {
		close(done)
		ws.Close()
		c.onDrop()
	}()

	ws.SetReadLimit(maxMessageSize)
	ws.SetReadDeadline(time.Now().Add(pongWait))
	ws.SetPongHandler(func(string) error {
		ws.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.Warn().Err(err).Msg("hub read error")
			}
			return
		}

		var frame models.HubFrame
		if err := json.Unmarshal(data, &frame); err != nil {
			c.log.Warn().Err(err).Msg("bad hub frame, skipping")
			continue
		}

		event, ok := decodeEvent(frame, c.log)
		if !ok {
			continue
		}
		select {
		case c.events <- event:
		case <-c.quit:
			return
		}
	}
}

// writePump владнає всі записи у сокет: кадри з sendCh та пінги.
func (c *Conn) writePump(ws *websocket.Conn, done chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		ws.Close()
	}()

	for {
		select {
		case frame := <-c.sendCh:
			ws.SetWriteDeadline(time.Now().Add(writeWait))
			data, err := json.Marshal(frame)
			if err != nil {
				c.log.Error().Err(err).Str("target", frame.Target).Msg("encode hub frame")
				continue
			}
			if err := ws.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-done:
			return
		case <-c.quit:
			ws.WriteMessage(websocket.CloseMessage, []byte{})
			return
		}
	}
}

// onDrop runs after the read pump exits and drives automatic reconnection.
func (c *Conn) onDrop() {
	select {
	case <-c.quit:
		return
	default:
	}

	c.setState(StateReconnecting)
	go c.reconnect()
}

func (c *Conn) reconnect() {
	for _, delay := range reconnectDelays {
		select {
		case <-time.After(delay):
		case <-c.quit:
			return
		}

		ws, err := c.dial()
		if err != nil {
			c.log.Warn().Err(err).Dur("delay", delay).Msg("hub reconnect attempt failed")
			continue
		}

		c.start(ws)
		c.setState(StateConnected)
		c.log.Info().Msg("hub reconnected")
		return
	}

	c.log.Error().Msg("hub reconnect attempts exhausted")
	c.setState(StateDisconnected)
}

func decodeEvent(frame models.HubFrame, log zerolog.Logger) (HubEvent, bool) {
	switch frame.Target {
	case models.EventReceiveMessage:
		if len(frame.Arguments) == 0 {
			return HubEvent{}, false
		}
		msg, err := models.DecodeHubMessage(frame.Arguments[0])
		if err != nil {
			log.Warn().Err(err).Msg("drop undecodable ReceiveMessage")
			return HubEvent{}, false
		}
		return HubEvent{Event: models.EventReceiveMessage, Message: &msg}, true
	case models.EventUserJoined, models.EventUserLeft:
		var text string
		if len(frame.Arguments) > 0 {
			_ = json.Unmarshal(frame.Arguments[0], &text)
		}
		return HubEvent{Event: frame.Target, Text: text}, true
	default:
		log.Debug().Str("target", frame.Target).Msg("unknown hub event")
		return HubEvent{}, false
	}
}
