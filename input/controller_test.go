package input

import (
	"math"
	"testing"

	"tankviewer/core"
	"tankviewer/rendering"
)

type stubView struct {
	yaw, pitch float64
	zoom       float64
	camera     rendering.Camera
	wireframe  bool
	clipOn     bool
	clipAxis   core.Axis
	clipOffset float64
	visible    map[core.MeshID]bool
	opacity    map[core.MeshID]float64
}

func newStubView() *stubView {
	return &stubView{
		zoom:    1,
		camera:  rendering.DefaultCamera(),
		visible: map[core.MeshID]bool{},
		opacity: map[core.MeshID]float64{},
	}
}

func (v *stubView) Rotation() (float64, float64)         { return v.yaw, v.pitch }
func (v *stubView) SetRotation(yaw, pitch float64)       { v.yaw, v.pitch = yaw, pitch }
func (v *stubView) Zoom() float64                        { return v.zoom }
func (v *stubView) SetZoom(z float64)                    { v.zoom = z }
func (v *stubView) Camera() rendering.Camera             { return v.camera }
func (v *stubView) SetCamera(c rendering.Camera)         { v.camera = c }
func (v *stubView) Wireframe() bool                      { return v.wireframe }
func (v *stubView) SetWireframe(on bool)                 { v.wireframe = on }
func (v *stubView) Clipping() (bool, core.Axis, float64) { return v.clipOn, v.clipAxis, v.clipOffset }
func (v *stubView) SetClipping(on bool, a core.Axis, o float64) {
	v.clipOn, v.clipAxis, v.clipOffset = on, a, o
}
func (v *stubView) SetMeshVisibility(id core.MeshID, on bool) bool { v.visible[id] = on; return true }
func (v *stubView) SetMeshOpacity(id core.MeshID, o float64) bool  { v.opacity[id] = o; return true }

func TestClickVersusDrag(t *testing.T) {
	tests := []struct {
		name      string
		events    []Event
		wantClick bool
		wantYaw   bool
	}{
		{
			name: "still click",
			events: []Event{
				{Kind: PointerDown, X: 100, Y: 100},
				{Kind: PointerUp, X: 100, Y: 100},
			},
			wantClick: true,
		},
		{
			name: "jitter under threshold",
			events: []Event{
				{Kind: PointerDown, X: 100, Y: 100},
				{Kind: PointerMove, X: 102, Y: 101},
				{Kind: PointerUp, X: 102, Y: 101},
			},
			wantClick: true,
		},
		{
			name: "drag",
			events: []Event{
				{Kind: PointerDown, X: 100, Y: 100},
				{Kind: PointerMove, X: 140, Y: 100},
				{Kind: PointerUp, X: 140, Y: 100},
			},
			wantYaw: true,
		},
		{
			name: "drag that returns home",
			events: []Event{
				{Kind: PointerDown, X: 100, Y: 100},
				{Kind: PointerMove, X: 140, Y: 100},
				{Kind: PointerMove, X: 100, Y: 100},
				{Kind: PointerUp, X: 100, Y: 100},
			},
			wantYaw: false,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			view := newStubView()
			c := NewController(view, DefaultOptions())
			clicked := false
			c.OnClick = func(x, y float64) { clicked = true }

			c.Apply(tc.events)
			if clicked != tc.wantClick {
				t.Errorf("clicked = %v, want %v", clicked, tc.wantClick)
			}
			if (view.yaw != 0) != tc.wantYaw {
				t.Errorf("yaw = %f", view.yaw)
			}
		})
	}
}

func TestPitchClamped(t *testing.T) {
	view := newStubView()
	c := NewController(view, DefaultOptions())
	c.Apply([]Event{
		{Kind: PointerDown, X: 0, Y: 0},
		{Kind: PointerMove, X: 0, Y: 5000},
	})
	if view.pitch != pitchLimit {
		t.Errorf("pitch %f, want %f", view.pitch, pitchLimit)
	}
}

func TestZoomKeys(t *testing.T) {
	view := newStubView()
	c := NewController(view, DefaultOptions())

	c.Handle(Event{Kind: Char, Rune: '+'})
	if math.Abs(view.zoom-1.2) > 1e-12 {
		t.Errorf("zoom after + is %f", view.zoom)
	}
	for i := 0; i < 50; i++ {
		c.Handle(Event{Kind: Char, Rune: '-'})
	}
	if view.zoom != 0.2 {
		t.Errorf("zoom not clamped: %f", view.zoom)
	}
	c.Handle(Event{Kind: Char, Rune: '0'})
	if view.zoom != 1 {
		t.Errorf("zoom after 0 is %f", view.zoom)
	}
	c.Handle(Event{Kind: Wheel, DeltaY: 1})
	if math.Abs(view.zoom-1.1) > 1e-12 {
		t.Errorf("zoom after wheel is %f", view.zoom)
	}
}

func TestPresetKeys(t *testing.T) {
	for i, name := range rendering.PresetNames {
		view := newStubView()
		c := NewController(view, DefaultOptions())
		c.Handle(Event{Kind: Char, Rune: rune('1' + i)})
		want := rendering.Presets[name]
		if view.yaw != want.Yaw || view.pitch != want.Pitch {
			t.Errorf("key %d: rotation (%f, %f), want %s", i+1, view.yaw, view.pitch, name)
		}
	}
}

func TestPanAndReset(t *testing.T) {
	view := newStubView()
	c := NewController(view, DefaultOptions())
	c.Handle(Event{Kind: KeyPress, Key: KeyRight})
	c.Handle(Event{Kind: KeyPress, Key: KeyUp})
	cam := view.camera
	if cam.Position[0] != 0.05 || cam.Target[1] != 0.05 {
		t.Errorf("camera after pan %+v", cam)
	}

	view.yaw, view.zoom = 1, 3
	c.Handle(Event{Kind: KeyPress, Key: KeyEscape})
	if view.yaw != 0 || view.zoom != 1 || view.camera != rendering.DefaultCamera() {
		t.Errorf("Esc did not reset: yaw %f zoom %f camera %+v", view.yaw, view.zoom, view.camera)
	}
}

func TestResetUsesHome(t *testing.T) {
	view := newStubView()
	c := NewController(view, DefaultOptions())
	home := rendering.FrameSphere(2, 1)
	c.SetHome(home)
	c.Handle(Event{Kind: KeyPress, Key: KeyLeft})
	c.Handle(Event{Kind: KeyPress, Key: KeyEscape})
	if view.camera != home {
		t.Errorf("Esc restored %+v, want %+v", view.camera, home)
	}
}

func TestHelpAndEscape(t *testing.T) {
	view := newStubView()
	c := NewController(view, DefaultOptions())
	var shown []bool
	c.OnHelp = func(v bool) { shown = append(shown, v) }

	c.Handle(Event{Kind: Char, Rune: '?'})
	view.zoom = 2
	c.Handle(Event{Kind: KeyPress, Key: KeyEscape})

	if len(shown) != 2 || !shown[0] || shown[1] {
		t.Errorf("help transitions %v", shown)
	}
	if view.zoom != 2 {
		t.Error("Esc reset the view while closing help")
	}
}

func TestClipToggleKeys(t *testing.T) {
	view := newStubView()
	c := NewController(view, DefaultOptions())

	c.Handle(Event{Kind: Char, Rune: 'z'})
	if !view.clipOn || view.clipAxis != core.AxisZ {
		t.Fatalf("clip %v %v", view.clipOn, view.clipAxis)
	}
	c.Handle(Event{Kind: Char, Rune: 'x'})
	if !view.clipOn || view.clipAxis != core.AxisX {
		t.Fatalf("switching axis: clip %v %v", view.clipOn, view.clipAxis)
	}
	c.Handle(Event{Kind: Char, Rune: 'x'})
	if view.clipOn {
		t.Error("second x did not disable the section")
	}
}

func TestToggleEvent(t *testing.T) {
	view := newStubView()
	c := NewController(view, DefaultOptions())
	on, hidden, half := true, false, 0.5
	c.Handle(Event{Kind: Toggle, Toggle: &ToggleState{
		Wireframe: &on,
		Clip:      &ClipToggle{Enabled: true, Axis: core.AxisY, Offset: -0.25},
		Meshes:    []MeshToggle{{ID: core.OuterID, Visible: &hidden, Opacity: &half}},
		Preset:    "iso",
	}})

	if !view.wireframe || !view.clipOn || view.clipAxis != core.AxisY || view.clipOffset != -0.25 {
		t.Errorf("toggle not applied: %+v", view)
	}
	if view.visible[core.OuterID] || view.opacity[core.OuterID] != 0.5 {
		t.Errorf("mesh toggle not applied")
	}
	if view.yaw != rendering.Presets["iso"].Yaw {
		t.Error("preset not applied")
	}
}

func TestQueueDrain(t *testing.T) {
	q := NewQueue()
	q.Push(Event{Kind: Char, Rune: 'w'})
	q.Push(Event{Kind: Wheel, DeltaY: 1})
	if q.Len() != 2 {
		t.Fatalf("len %d", q.Len())
	}
	if got := q.Drain(); len(got) != 2 || got[0].Rune != 'w' {
		t.Errorf("drained %v", got)
	}
	if q.Len() != 0 {
		t.Error("queue not empty after drain")
	}
}
