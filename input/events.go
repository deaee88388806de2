// Package input queues pointer, keyboard and UI toggle events and applies
// them to the view once per frame.
package input

import (
	"sync"

	"tankviewer/core"
)

// Kind is the event type
type Kind int

const (
	PointerDown Kind = iota
	PointerMove
	PointerUp
	Wheel
	KeyPress
	Char
	Toggle
)

// Key is a non-printable key
type Key int

const (
	KeyNone Key = iota
	KeyLeft
	KeyRight
	KeyUp
	KeyDown
	KeyEscape
)

// ClipToggle sets the cross-section state
type ClipToggle struct {
	Enabled bool      `json:"enabled"`
	Axis    core.Axis `json:"-"`
	Offset  float64   `json:"offset"`
}

// MeshToggle changes one mesh's visibility and/or opacity
type MeshToggle struct {
	ID      core.MeshID `json:"id"`
	Visible *bool       `json:"visible,omitempty"`
	Opacity *float64    `json:"opacity,omitempty"`
}

// ToggleState is a UI shell update. Nil fields are left unchanged.
type ToggleState struct {
	Wireframe *bool
	Clip      *ClipToggle
	Meshes    []MeshToggle
	Preset    string
}

// Event is one input event. Pointer coordinates are logical pixels with
// the origin at the top-left of the drawable.
type Event struct {
	Kind   Kind
	X, Y   float64
	DeltaY float64
	Key    Key
	Rune   rune
	Toggle *ToggleState
}

// Queue buffers events between the producers (window callbacks, the
// bridge) and the render loop, which drains it once per frame.
type Queue struct {
	mu     sync.Mutex
	events []Event
}

// NewQueue returns an empty queue.
func NewQueue() *Queue {
	return &Queue{}
}

// Push appends an event.
func (q *Queue) Push(ev Event) {
	q.mu.Lock()
	q.events = append(q.events, ev)
	q.mu.Unlock()
}

// Drain returns and clears everything queued so far.
func (q *Queue) Drain() []Event {
	q.mu.Lock()
	defer q.mu.Unlock()
	events := q.events
	q.events = nil
	return events
}

// Len returns the number of queued events.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.events)
}
