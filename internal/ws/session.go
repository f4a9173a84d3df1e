package ws

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pingPeriod = 30 * time.Second
	pongWait   = 60 * time.Second
)

// Session wraps one live websocket connection of a user and coordinates
// outbound writes via a buffered channel. A user may hold several sessions
// (phone plus web); each is registered in the Hub independently. Sessions are
// ephemeral: nothing about them is ever persisted.
type Session struct {
	ID     string
	UserID int

	// request metadata captured at handshake, attached to lifecycle events
	DeviceID    string
	IP          string
	RequestID   string
	TraceID     string
	ConnectedAt time.Time

	ws     *websocket.Conn
	send   chan []byte
	once   sync.Once
	closed chan struct{}
}

// NewSession constructs a Session for the given user.
func NewSession(userID int, ws *websocket.Conn) *Session {
	return &Session{
		ID:          uuid.NewString(),
		UserID:      userID,
		ConnectedAt: time.Now(),
		ws:          ws,
		send:        make(chan []byte, 128),
		closed:      make(chan struct{}),
	}
}

// Start launches the write loop. It must be called exactly once per session.
func (s *Session) Start() {
	go s.writeLoop()
}

// Send enqueues payload for delivery. If the client is slow and the buffer is
// full, the session is closed to keep backpressure bounded.
func (s *Session) Send(payload []byte) error {
	select {
	case <-s.closed:
		return errors.New("session closed")
	case s.send <- payload:
		return nil
	default:
		s.Close(websocket.CloseGoingAway, "send buffer full")
		return errors.New("session buffer exceeded")
	}
}

// Close terminates the session and stops the write loop.
func (s *Session) Close(code int, reason string) {
	s.once.Do(func() {
		close(s.closed)
		_ = s.ws.SetWriteDeadline(time.Now().Add(writeWait))
		_ = s.ws.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, reason), time.Now().Add(writeWait))
		_ = s.ws.Close()
	})
}

// ReadLoop blocks consuming inbound frames until the connection errors out.
// Inbound frames carry no application data; reading them services the
// heartbeat. The read deadline is the liveness timeout: any frame or pong
// refreshes it, and a silent client is evicted when it lapses.
func (s *Session) ReadLoop() error {
	_ = s.ws.SetReadDeadline(time.Now().Add(pongWait))
	s.ws.SetPongHandler(func(string) error {
		return s.ws.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := s.ws.ReadMessage(); err != nil {
			return err
		}
		if err := s.ws.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
			return err
		}
	}
}

func (s *Session) writeLoop() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-s.closed:
			return
		case msg := <-s.send:
			if err := s.writeMessage(msg); err != nil {
				return
			}
		case <-ticker.C:
			if err := s.writePing(); err != nil {
				return
			}
		}
	}
}

func (s *Session) writeMessage(payload []byte) error {
	if err := s.ws.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return s.ws.WriteMessage(websocket.TextMessage, payload)
}

func (s *Session) writePing() error {
	if err := s.ws.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return s.ws.WriteMessage(websocket.PingMessage, nil)
}
