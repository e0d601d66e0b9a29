package server

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/ayusman/holoscan/internal/detector"
	"github.com/ayusman/holoscan/internal/scan"
	"github.com/ayusman/holoscan/internal/server/api"
)

const (
	clientBuffer = 32
	writeWait    = 5 * time.Second
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // local kiosk
	},
}

// Message types.
const (
	MsgState            = "state"
	MsgPhase            = "phase"
	MsgPose             = "pose"
	MsgClear            = "clear"
	MsgScanComplete     = "scan_complete"
	MsgSequenceStart    = "sequence_start"
	MsgSequenceLine     = "sequence_line"
	MsgSequenceComplete = "sequence_complete"
	MsgRevealPrimed     = "reveal_primed"
	MsgRevealPlay       = "reveal_play"
	MsgReset            = "reset"
	MsgError            = "error"
)

// Message is pushed to every websocket client.
type Message struct {
	Type       string             `json:"type"`
	Phase      string             `json:"phase,omitempty"`
	From       string             `json:"from,omitempty"`
	Session    string             `json:"session,omitempty"`
	Line       *int               `json:"line,omitempty"`
	EntranceMs int64              `json:"entrance_ms,omitempty"`
	Success    *bool              `json:"success,omitempty"`
	Landmarks  []detector.Point3D `json:"landmarks,omitempty"`
	Snapshot   *scan.Snapshot     `json:"snapshot,omitempty"`
	RevealURL  string             `json:"reveal_url,omitempty"`
	Error      string             `json:"error,omitempty"`
}

// ClientMessage is a command from a websocket client.
type ClientMessage struct {
	Type       string             `json:"type"`
	Success    *bool              `json:"success,omitempty"`
	Landmarks  []detector.Point3D `json:"landmarks,omitempty"`
	Handedness string             `json:"handedness,omitempty"`
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub fans session events out to websocket clients and turns client commands
// into session events. It doubles as an overlay renderer so browsers can draw
// the skeleton themselves.
type Hub struct {
	ctl         api.Controller
	acceptPoses bool
	revealURL   func() string
	onClients   func(int)
	now         func() time.Time

	mu      sync.RWMutex
	clients map[*client]struct{}
}

// HubOption configures a Hub.
type HubOption func(*Hub)

// WithClientPoses lets clients feed poses into the session.
func WithClientPoses() HubOption {
	return func(h *Hub) { h.acceptPoses = true }
}

// WithRevealURL sets where the greeting message points the reveal video.
func WithRevealURL(f func() string) HubOption {
	return func(h *Hub) { h.revealURL = f }
}

// WithClientCount reports the client count after every change.
func WithClientCount(f func(int)) HubOption {
	return func(h *Hub) { h.onClients = f }
}

// NewHub creates a Hub for ctl.
func NewHub(ctl api.Controller, opts ...HubOption) *Hub {
	h := &Hub{
		ctl:     ctl,
		now:     time.Now,
		clients: make(map[*client]struct{}),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// ServeHTTP upgrades the connection and serves one client until it leaves.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	c := &client{conn: conn, send: make(chan []byte, clientBuffer)}
	h.register(c)
	go h.writePump(c)

	h.sendTo(c, h.greeting())
	h.readPump(c)
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Broadcast queues msg for every client. Slow clients miss messages rather
// than stall the caller.
func (h *Hub) Broadcast(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Error().Err(err).Str("type", msg.Type).Msg("marshal hub message")
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			log.Debug().Str("type", msg.Type).Msg("client behind, dropping message")
		}
	}
}

// Render implements overlay.Renderer.
func (h *Hub) Render(pose *detector.Pose) {
	if pose == nil {
		return
	}
	h.Broadcast(Message{Type: MsgPose, Landmarks: pose.Landmarks})
}

// Clear implements overlay.Renderer.
func (h *Hub) Clear() {
	h.Broadcast(Message{Type: MsgClear})
}

// Hooks returns session hooks that broadcast every milestone.
func (h *Hub) Hooks() scan.Hooks {
	return scan.Hooks{
		OnPhase: func(from, to scan.Phase) {
			h.Broadcast(Message{Type: MsgPhase, From: from.String(), Phase: to.String()})
		},
		OnScanComplete:  func() { h.Broadcast(Message{Type: MsgScanComplete}) },
		OnSequenceStart: func() { h.Broadcast(Message{Type: MsgSequenceStart}) },
		OnSequenceLine: func(line int, entrance time.Duration) {
			h.Broadcast(Message{Type: MsgSequenceLine, Line: &line, EntranceMs: entrance.Milliseconds()})
		},
		OnSequenceComplete: func() { h.Broadcast(Message{Type: MsgSequenceComplete}) },
		OnRevealPrimed: func(success bool) {
			h.Broadcast(Message{Type: MsgRevealPrimed, Success: &success})
		},
		OnUserRevealRequest: func() { h.Broadcast(Message{Type: MsgRevealPlay}) },
		OnSessionStart: func(id string, _ time.Time) {
			h.Broadcast(Message{Type: MsgReset, Session: id, Phase: scan.Scanning.String()})
		},
	}
}

func (h *Hub) greeting() Message {
	snap := h.ctl.Snapshot()
	msg := Message{Type: MsgState, Session: snap.ID, Phase: snap.Phase.String(), Snapshot: &snap}
	if h.revealURL != nil {
		msg.RevealURL = h.revealURL()
	}
	return msg
}

func (h *Hub) readPump(c *client) {
	defer h.unregister(c)

	for {
		var msg ClientMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Debug().Err(err).Msg("websocket client gone")
			}
			return
		}
		if errMsg := h.handle(msg); errMsg != "" {
			h.sendTo(c, Message{Type: MsgError, Error: errMsg})
		}
	}
}

// handle applies a client command and returns an error text for the client.
func (h *Hub) handle(msg ClientMessage) string {
	var ok bool
	switch msg.Type {
	case MsgRevealPrimed:
		success := msg.Success != nil && *msg.Success
		ok = h.ctl.Post(scan.RevealPrimedEvent{Success: success})
	case MsgRevealPlay:
		ok = h.ctl.Post(scan.RevealRequestEvent{})
	case MsgReset:
		ok = h.ctl.Reset()
	case MsgPose:
		if !h.acceptPoses {
			return "poses are read from the local camera"
		}
		var pose *detector.Pose
		if len(msg.Landmarks) > 0 {
			pose = &detector.Pose{Landmarks: msg.Landmarks, Handedness: msg.Handedness}
		}
		// A dropped frame is not worth reporting.
		h.ctl.Post(scan.FrameEvent{Pose: pose, At: h.now()})
		return ""
	default:
		return "unknown message type: " + msg.Type
	}
	if !ok {
		return "session is not running"
	}
	return ""
}

func (h *Hub) sendTo(c *client, msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	if _, live := h.clients[c]; !live {
		return
	}
	select {
	case c.send <- data:
	default:
	}
}

func (h *Hub) writePump(c *client) {
	defer c.conn.Close()
	for data := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			return
		}
	}
	c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
}

func (h *Hub) register(c *client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	n := len(h.clients)
	h.mu.Unlock()
	if h.onClients != nil {
		h.onClients(n)
	}
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	n := len(h.clients)
	h.mu.Unlock()
	if h.onClients != nil {
		h.onClients(n)
	}
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		delete(h.clients, c)
		close(c.send)
	}
}
