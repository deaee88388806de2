package input

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"tankviewer/core"
	"tankviewer/rendering"
)

// View is the renderer state the controller mutates.
type View interface {
	Rotation() (yaw, pitch float64)
	SetRotation(yaw, pitch float64)
	Zoom() float64
	SetZoom(zoom float64)
	Camera() rendering.Camera
	SetCamera(c rendering.Camera)
	Wireframe() bool
	SetWireframe(on bool)
	Clipping() (enabled bool, axis core.Axis, offset float64)
	SetClipping(enabled bool, axis core.Axis, offset float64)
	SetMeshVisibility(id core.MeshID, visible bool) bool
	SetMeshOpacity(id core.MeshID, opacity float64) bool
}

// Options tune the controller
type Options struct {
	ClickThreshold    float64 // pixels of travel below which a press is a click
	RotateSensitivity float64 // radians per pixel of drag
	ZoomStep          float64 // factor per +/- key press
	PanStep           float64 // world units per arrow key press
	MinZoom, MaxZoom  float64
}

// DefaultOptions returns the standard tuning.
func DefaultOptions() Options {
	return Options{
		ClickThreshold:    4,
		RotateSensitivity: 0.008,
		ZoomStep:          1.2,
		PanStep:           0.05,
		MinZoom:           0.2,
		MaxZoom:           5,
	}
}

// HelpText describes the keyboard and mouse controls.
const HelpText = `Controls:
  Drag             rotate
  Scroll, + / -    zoom, 0 resets zoom
  Arrow keys       pan
  1-7              front, back, left, right, top, bottom, iso
  f b l r t u i    same presets by letter
  W                toggle wireframe
  X / Y / Z        toggle cross-section on that axis
  [ / ]            move the cross-section
  Click            report the point under the cursor
  ?                toggle this help
  Esc              close help, or reset the view`

// pitchLimit keeps the model from flipping over.
const pitchLimit = 1.5

var presetKeys = map[rune]string{
	'1': "front", '2': "back", '3': "left", '4': "right", '5': "top", '6': "bottom", '7': "iso",
	'f': "front", 'b': "back", 'l': "left", 'r': "right", 't': "top", 'u': "bottom", 'i': "iso",
}

// Controller turns events into view mutations and click callbacks
type Controller struct {
	view View
	opts Options
	home rendering.Camera

	down         bool
	dragging     bool
	downX, downY float64
	lastX, lastY float64
	helpVisible  bool

	// OnClick fires for a press and release that stayed under the
	// click threshold, with the release position.
	OnClick func(x, y float64)
	// OnHelp fires when the help overlay is shown or hidden.
	OnHelp func(visible bool)
}

// NewController binds a controller to a view. The view's current camera
// becomes the reset position.
func NewController(view View, opts Options) *Controller {
	if opts.ClickThreshold <= 0 {
		opts.ClickThreshold = DefaultOptions().ClickThreshold
	}
	if opts.MinZoom <= 0 || opts.MaxZoom < opts.MinZoom {
		opts.MinZoom, opts.MaxZoom = DefaultOptions().MinZoom, DefaultOptions().MaxZoom
	}
	return &Controller{view: view, opts: opts, home: view.Camera()}
}

// HelpVisible reports whether the help overlay is showing.
func (c *Controller) HelpVisible() bool { return c.helpVisible }

// Dragging reports whether a drag-rotate is in progress.
func (c *Controller) Dragging() bool { return c.dragging }

// Apply handles a batch of events in order.
func (c *Controller) Apply(events []Event) {
	for _, ev := range events {
		c.Handle(ev)
	}
}

// Handle applies one event.
func (c *Controller) Handle(ev Event) {
	switch ev.Kind {
	case PointerDown:
		c.down, c.dragging = true, false
		c.downX, c.downY = ev.X, ev.Y
		c.lastX, c.lastY = ev.X, ev.Y
	case PointerMove:
		c.onMove(ev.X, ev.Y)
	case PointerUp:
		c.onUp(ev.X, ev.Y)
	case Wheel:
		c.zoomBy(1 + ev.DeltaY*0.1)
	case KeyPress:
		c.onKey(ev.Key)
	case Char:
		c.onChar(ev.Rune)
	case Toggle:
		if ev.Toggle != nil {
			c.applyToggle(*ev.Toggle)
		}
	}
}

func (c *Controller) travel(x, y float64) float64 {
	return math.Hypot(x-c.downX, y-c.downY)
}

func (c *Controller) onMove(x, y float64) {
	if !c.down {
		return
	}
	if !c.dragging {
		if c.travel(x, y) < c.opts.ClickThreshold {
			return
		}
		c.dragging = true
	}

	dx := x - c.lastX
	dy := y - c.lastY
	yaw, pitch := c.view.Rotation()
	yaw += dx * c.opts.RotateSensitivity
	pitch += dy * c.opts.RotateSensitivity

	// Clamp vertical rotation
	pitch = math.Max(-pitchLimit, math.Min(pitchLimit, pitch))
	c.view.SetRotation(yaw, pitch)

	c.lastX, c.lastY = x, y
}

func (c *Controller) onUp(x, y float64) {
	if !c.down {
		return
	}
	click := !c.dragging && c.travel(x, y) < c.opts.ClickThreshold
	c.down, c.dragging = false, false
	if click && c.OnClick != nil {
		c.OnClick(x, y)
	}
}

func (c *Controller) zoomBy(f float64) {
	if f <= 0 {
		return
	}
	z := c.view.Zoom() * f
	c.view.SetZoom(math.Max(c.opts.MinZoom, math.Min(c.opts.MaxZoom, z)))
}

func (c *Controller) pan(dx, dy float64) {
	cam := c.view.Camera()
	cam.Pan(mgl64.Vec3{dx, dy, 0})
	c.view.SetCamera(cam)
}

func (c *Controller) onKey(k Key) {
	step := c.opts.PanStep
	switch k {
	case KeyLeft:
		c.pan(-step, 0)
	case KeyRight:
		c.pan(step, 0)
	case KeyUp:
		c.pan(0, step)
	case KeyDown:
		c.pan(0, -step)
	case KeyEscape:
		if c.helpVisible {
			c.setHelp(false)
			return
		}
		c.Reset()
	}
}

func (c *Controller) onChar(r rune) {
	if name, ok := presetKeys[r]; ok {
		c.ApplyPreset(name)
		return
	}
	switch r {
	case '+', '=':
		c.zoomBy(c.opts.ZoomStep)
	case '-', '_':
		c.zoomBy(1 / c.opts.ZoomStep)
	case '0':
		c.view.SetZoom(1)
	case 'w', 'W':
		c.view.SetWireframe(!c.view.Wireframe())
	case 'x', 'X', 'y', 'Y', 'z', 'Z':
		axis, _ := core.ParseAxis(string(r))
		c.toggleClip(axis)
	case '[':
		c.moveClip(-0.1)
	case ']':
		c.moveClip(0.1)
	case '?':
		c.setHelp(!c.helpVisible)
	}
}

// toggleClip turns the section off when it is already on this axis,
// otherwise switches it on along axis.
func (c *Controller) toggleClip(axis core.Axis) {
	enabled, current, offset := c.view.Clipping()
	if enabled && current == axis {
		c.view.SetClipping(false, axis, offset)
		return
	}
	c.view.SetClipping(true, axis, offset)
}

func (c *Controller) moveClip(delta float64) {
	enabled, axis, offset := c.view.Clipping()
	c.view.SetClipping(enabled, axis, offset+delta)
}

func (c *Controller) setHelp(visible bool) {
	c.helpVisible = visible
	if c.OnHelp != nil {
		c.OnHelp(visible)
	}
}

// ApplyPreset rotates the model to a named preset. It reports whether
// the name is known.
func (c *Controller) ApplyPreset(name string) bool {
	o, ok := rendering.Presets[name]
	if !ok {
		return false
	}
	c.view.SetRotation(o.Yaw, o.Pitch)
	return true
}

// SetHome changes the camera Esc returns to.
func (c *Controller) SetHome(cam rendering.Camera) { c.home = cam }

// Reset restores rotation, zoom and camera.
func (c *Controller) Reset() {
	c.view.SetRotation(0, 0)
	c.view.SetZoom(1)
	c.view.SetCamera(c.home)
}

func (c *Controller) applyToggle(t ToggleState) {
	if t.Wireframe != nil {
		c.view.SetWireframe(*t.Wireframe)
	}
	if t.Clip != nil {
		c.view.SetClipping(t.Clip.Enabled, t.Clip.Axis, t.Clip.Offset)
	}
	for _, m := range t.Meshes {
		if m.Visible != nil {
			c.view.SetMeshVisibility(m.ID, *m.Visible)
		}
		if m.Opacity != nil {
			c.view.SetMeshOpacity(m.ID, *m.Opacity)
		}
	}
	if t.Preset != "" {
		c.ApplyPreset(t.Preset)
	}
}
