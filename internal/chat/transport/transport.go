// Package transport owns one websocket connection to the chat server for
// one conversation: connect, identify, send, receive, and reconnect with
// exponential backoff. Reconnection is invisible to the owner beyond
// connection-change events.
package transport

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"chatlink/internal/config"
)

// Events receives transport callbacks. At most one handler is active per
// transport, and events for a torn-down connection are never delivered.
type Events interface {
	OnFrame(f Frame)
	OnError(msg string)
	OnConnectionChange(connected bool)
	// OnUnavailable fires once, after the reconnect budget is exhausted.
	OnUnavailable()
}

// Transport maintains at most one open connection. All exported methods
// are safe for concurrent use.
type Transport struct {
	url         string
	maxAttempts int
	backoffBase time.Duration
	dialer      *websocket.Dialer
	events      Events
	log         zerolog.Logger

	mu             sync.Mutex
	conn           *websocket.Conn
	gen            uint64 // bumped per physical connection; stale goroutines check it
	userID         string
	conversationID string
	manualClose    bool
	connecting     bool
	attempts       int
	unavailable    bool
	timer          *time.Timer

	writeMu sync.Mutex
}

func New(cnf config.SocketConfig, events Events, log zerolog.Logger) *Transport {
	maxAttempts := cnf.MaxReconnectAttempts
	if maxAttempts <= 0 {
		maxAttempts = 5
	}
	base := time.Duration(cnf.ReconnectBaseMillis) * time.Millisecond
	if base <= 0 {
		base = time.Second
	}

	return &Transport{
		url:         cnf.URL,
		maxAttempts: maxAttempts,
		backoffBase: base,
		dialer:      websocket.DefaultDialer,
		events:      events,
		log:         log.With().Str("component", "transport").Logger(),
	}
}

// Connect opens a connection for (userID, conversationID) and sends the
// IdMessage handshake once open. Calling it again for the same pair while
// connecting or connected is a no-op; calling it for a different pair
// tears down the previous connection first.
func (t *Transport) Connect(userID, conversationID string) {
	t.mu.Lock()

	samePair := t.userID == userID && t.conversationID == conversationID
	if samePair && (t.connecting || t.conn != nil) {
		t.mu.Unlock()
		return
	}
	if samePair && t.unavailable {
		t.mu.Unlock()
		return
	}

	if !samePair && t.conn != nil {
		old := t.conn
		t.conn = nil
		t.gen++
		defer old.Close()
	}
	if !samePair {
		t.attempts = 0
		t.unavailable = false
	}

	// This call owns the dial chain from here; a pending backoff timer
	// would start a second one.
	t.stopTimerLocked()

	t.userID = userID
	t.conversationID = conversationID
	t.manualClose = false
	t.connecting = true
	t.gen++
	gen := t.gen
	t.mu.Unlock()

	t.log.Debug().Str("conversation_id", conversationID).Msg("connecting")
	go t.dial(gen, userID, conversationID)
}

func (t *Transport) dial(gen uint64, userID, conversationID string) {
	conn, resp, err := t.dialer.Dial(t.url, nil)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}

	t.mu.Lock()
	if gen != t.gen || t.manualClose {
		t.mu.Unlock()
		if conn != nil {
			conn.Close()
		}
		return
	}

	if err != nil {
		t.connecting = false
		t.mu.Unlock()
		t.log.Warn().Err(err).Msg("connection failed")
		t.events.OnError("failed to establish connection")
		t.scheduleReconnect(userID, conversationID)
		return
	}

	t.conn = conn
	t.connecting = false
	t.attempts = 0
	t.mu.Unlock()

	t.log.Info().Str("conversation_id", conversationID).Msg("connected")
	t.events.OnConnectionChange(true)
	t.Send(NewIDFrame(userID, conversationID))

	go t.readLoop(gen, conn)
}

func (t *Transport) readLoop(gen uint64, conn *websocket.Conn) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			break
		}

		var f Frame
		if err := json.Unmarshal(data, &f); err != nil {
			// One bad frame must not end the session.
			t.log.Warn().Str("data", string(data)).Msg("dropping malformed frame")
			continue
		}
		t.events.OnFrame(f)
	}
	t.handleClose(gen)
}

func (t *Transport) handleClose(gen uint64) {
	t.mu.Lock()
	if gen != t.gen {
		t.mu.Unlock()
		return
	}
	t.conn = nil
	manual := t.manualClose
	userID, conversationID := t.userID, t.conversationID
	t.mu.Unlock()

	t.log.Info().Bool("manual", manual).Msg("connection closed")
	t.events.OnConnectionChange(false)

	if !manual {
		t.scheduleReconnect(userID, conversationID)
	}
}

func (t *Transport) scheduleReconnect(userID, conversationID string) {
	t.mu.Lock()
	if t.manualClose || t.unavailable {
		t.mu.Unlock()
		return
	}
	if t.attempts >= t.maxAttempts {
		t.unavailable = true
		t.mu.Unlock()
		t.log.Warn().Int("attempts", t.maxAttempts).Msg("reconnect budget exhausted")
		t.events.OnUnavailable()
		return
	}

	t.attempts++
	attempt := t.attempts
	delay := t.reconnectDelay(attempt)
	t.timer = time.AfterFunc(delay, func() {
		t.mu.Lock()
		stale := t.manualClose || t.userID != userID || t.conversationID != conversationID
		t.mu.Unlock()
		if stale {
			return
		}
		t.Connect(userID, conversationID)
	})
	t.mu.Unlock()

	t.log.Info().
		Int("attempt", attempt).
		Int("max", t.maxAttempts).
		Dur("delay", delay).
		Msg("scheduling reconnect")
}

// reconnectDelay is base * 2^(attempt-1): 1s, 2s, 4s, 8s, 16s at the
// default base.
func (t *Transport) reconnectDelay(attempt int) time.Duration {
	return t.backoffBase << (attempt - 1)
}

// Send serializes the frame and transmits it. It returns false, after an
// Error event, when the connection is not open.
func (t *Transport) Send(f Frame) bool {
	t.mu.Lock()
	conn := t.conn
	t.mu.Unlock()

	if conn == nil {
		t.log.Warn().Str("type", f.MessageType).Msg("send while disconnected")
		t.events.OnError("connection is not available")
		return false
	}

	t.writeMu.Lock()
	err := conn.WriteJSON(f)
	t.writeMu.Unlock()
	if err != nil {
		t.log.Warn().Err(err).Msg("send failed")
		t.events.OnError("failed to send message")
		return false
	}
	return true
}

// Disconnect marks the closure intentional, cancels any pending reconnect
// and closes the connection. Idempotent.
func (t *Transport) Disconnect() {
	t.mu.Lock()
	t.manualClose = true
	t.stopTimerLocked()
	conn := t.conn
	t.conn = nil
	t.gen++
	t.mu.Unlock()

	if conn != nil {
		conn.Close()
		t.events.OnConnectionChange(false)
	}
}

// IsConnected reports whether the connection is currently open.
func (t *Transport) IsConnected() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.conn != nil
}

// Unavailable reports whether the transport has given up reconnecting.
func (t *Transport) Unavailable() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.unavailable
}

func (t *Transport) stopTimerLocked() {
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
}
