// Package bridge connects the viewer to the dashboard over websocket. It
// pushes clicked points to every client and turns toggle messages from
// them into input events.
package bridge

import (
	"context"
	"errors"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/samber/lo"

	"tankviewer/core"
	"tankviewer/input"
	"tankviewer/picking"
)

// Message types on the wire
const (
	TypeWelcome = "welcome"
	TypePoint   = "point"
	TypeToggle  = "toggle"
)

// PointMessage is sent for every reported click. X, Y and Z are world
// coordinates; Design is the same point in design units.
type PointMessage struct {
	Type   string     `json:"type"`
	ID     string     `json:"id"`
	Mesh   string     `json:"mesh"`
	X      float64    `json:"x"`
	Y      float64    `json:"y"`
	Z      float64    `json:"z"`
	Design [3]float64 `json:"design"`
}

type welcomeMessage struct {
	Type   string `json:"type"`
	Client string `json:"client"`
}

type clipMessage struct {
	Enabled bool    `json:"enabled"`
	Axis    string  `json:"axis"`
	Offset  float64 `json:"offset"`
}

// ToggleMessage is what the dashboard sends. Omitted fields are left
// unchanged.
type ToggleMessage struct {
	Type      string             `json:"type"`
	Wireframe *bool              `json:"wireframe,omitempty"`
	Clip      *clipMessage       `json:"clip,omitempty"`
	Meshes    []input.MeshToggle `json:"meshes,omitempty"`
	Preset    string             `json:"preset,omitempty"`
}

// State converts the message into a toggle event payload.
func (m ToggleMessage) State() (input.ToggleState, error) {
	st := input.ToggleState{
		Wireframe: m.Wireframe,
		Meshes:    m.Meshes,
		Preset:    m.Preset,
	}
	if m.Clip != nil {
		axis, ok := core.ParseAxis(m.Clip.Axis)
		if !ok {
			return st, errors.New("bridge: unknown clip axis " + m.Clip.Axis)
		}
		st.Clip = &input.ClipToggle{Enabled: m.Clip.Enabled, Axis: axis, Offset: m.Clip.Offset}
	}
	return st, nil
}

type client struct {
	id uuid.UUID
	mu sync.Mutex // serializes writes
}

// Hub tracks connected dashboards.
type Hub struct {
	queue    *input.Queue
	upgrader websocket.Upgrader

	mu      sync.RWMutex
	clients map[*websocket.Conn]*client

	// Logger receives connection diagnostics. Nil discards them.
	Logger *log.Logger
}

// NewHub returns a hub that pushes toggle events onto queue.
func NewHub(queue *input.Queue) *Hub {
	return &Hub{
		queue: queue,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // the dashboard is served from another origin
			},
		},
		clients: make(map[*websocket.Conn]*client),
	}
}

func (h *Hub) logf(format string, args ...any) {
	if h.Logger != nil {
		h.Logger.Printf(format, args...)
	}
}

// Handler serves the websocket endpoint at /ws.
func (h *Hub) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/ws", h)
	return mux
}

// ServeHTTP upgrades the request and reads toggle messages until the
// client goes away.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logf("WebSocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	c := &client{id: uuid.New()}
	h.mu.Lock()
	h.clients[conn] = c
	h.mu.Unlock()
	defer h.remove(conn)
	h.logf("client %s connected from %s", c.id, r.RemoteAddr)

	if err := h.write(conn, c, welcomeMessage{Type: TypeWelcome, Client: c.id.String()}); err != nil {
		return
	}

	for {
		var msg ToggleMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.logf("client %s read error: %v", c.id, err)
			}
			return
		}
		if msg.Type != TypeToggle {
			h.logf("client %s: ignoring message type %q", c.id, msg.Type)
			continue
		}
		st, err := msg.State()
		if err != nil {
			h.logf("client %s: %v", c.id, err)
			continue
		}
		h.queue.Push(input.Event{Kind: input.Toggle, Toggle: &st})
	}
}

func (h *Hub) remove(conn *websocket.Conn) {
	h.mu.Lock()
	c, ok := h.clients[conn]
	delete(h.clients, conn)
	h.mu.Unlock()
	if ok {
		h.logf("client %s disconnected", c.id)
	}
}

func (h *Hub) write(conn *websocket.Conn, c *client, v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	return conn.WriteJSON(v)
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// BroadcastPoint sends a clicked point to every client. Clients that
// cannot be written to are dropped.
func (h *Hub) BroadcastPoint(hit picking.Hit) {
	msg := PointMessage{
		Type:   TypePoint,
		ID:     uuid.NewString(),
		Mesh:   string(hit.ID),
		X:      hit.World[0],
		Y:      hit.World[1],
		Z:      hit.World[2],
		Design: [3]float64(hit.Design),
	}

	h.mu.RLock()
	conns := lo.Keys(h.clients)
	h.mu.RUnlock()

	for _, conn := range conns {
		h.mu.RLock()
		c, ok := h.clients[conn]
		h.mu.RUnlock()
		if !ok {
			continue
		}
		if err := h.write(conn, c, msg); err != nil {
			h.logf("client %s write error: %v", c.id, err)
			h.remove(conn)
			conn.Close()
		}
	}
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	conns := lo.Keys(h.clients)
	h.clients = make(map[*websocket.Conn]*client)
	h.mu.Unlock()
	for _, conn := range conns {
		conn.Close()
	}
}

// Serve listens on addr until ctx is cancelled, then closes every client
// and shuts the server down. It returns the listen error or the shutdown
// error, and never leaves the shutdown goroutine behind.
func (h *Hub) Serve(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: h.Handler()}
	done := make(chan struct{})
	stopped := make(chan error, 1)
	go func() {
		select {
		case <-ctx.Done():
		case <-done:
			stopped <- nil
			return
		}
		h.Close()
		shutdown, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		stopped <- srv.Shutdown(shutdown)
	}()

	h.logf("Bridge listening on ws://%s/ws", addr)
	err := srv.ListenAndServe()
	close(done)
	serr := <-stopped
	if !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	if serr != nil {
		h.logf("shutdown: %v", serr)
	}
	return serr
}
