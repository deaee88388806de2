package rendering

import (
	"errors"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"tankviewer/core"
)

// fakeDevice records every call and tracks live buffers.
type fakeDevice struct {
	compileErr error
	next       uint32
	live       map[Buffer]bool
	created    int
	deleted    int
	programs   int
	draws      []DrawCall
	frames     int
	uniforms   FrameUniforms
	inFrame    bool
}

func newFakeDevice() *fakeDevice {
	return &fakeDevice{live: make(map[Buffer]bool)}
}

func (d *fakeDevice) CompileProgram(vs, fs string) (Program, error) {
	if d.compileErr != nil {
		return 0, d.compileErr
	}
	d.programs++
	return 1, nil
}

func (d *fakeDevice) DeleteProgram(p Program) { d.programs-- }

func (d *fakeDevice) alloc() Buffer {
	d.next++
	b := Buffer(d.next)
	d.live[b] = true
	d.created++
	return b
}

func (d *fakeDevice) CreateArrayBuffer(data []float32) Buffer { return d.alloc() }
func (d *fakeDevice) CreateIndexBuffer(data []uint32) Buffer  { return d.alloc() }

func (d *fakeDevice) DeleteBuffer(b Buffer) {
	if !d.live[b] {
		panic("double free or unknown buffer")
	}
	delete(d.live, b)
	d.deleted++
}

func (d *fakeDevice) FramebufferSize() (int, int) { return 800, 600 }

func (d *fakeDevice) BeginFrame(p Program, u FrameUniforms) {
	d.draws = nil
	d.uniforms = u
	d.inFrame = true
}

func (d *fakeDevice) Draw(p Program, b MeshBuffers, call DrawCall) {
	if !d.inFrame {
		panic("draw outside frame")
	}
	for _, buf := range []Buffer{b.Positions, b.Normals, b.Indices} {
		if !d.live[buf] {
			panic("draw with released buffer")
		}
	}
	d.draws = append(d.draws, call)
}

func (d *fakeDevice) EndFrame() {
	d.inFrame = false
	d.frames++
}

func triangle() *core.Mesh {
	return &core.Mesh{
		Positions: []float32{0, 0, 0, 1, 0, 0, 0, 1, 0},
		Normals:   []float32{0, 0, 1, 0, 0, 1, 0, 0, 1},
		Indices:   []uint32{0, 1, 2},
	}
}

func newRenderer(t *testing.T) (*Renderer, *fakeDevice) {
	t.Helper()
	dev := newFakeDevice()
	r, err := New(dev)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return r, dev
}

func drawOrder(calls []DrawCall) []core.MeshID {
	ids := make([]core.MeshID, len(calls))
	for i, c := range calls {
		ids[i] = c.ID
	}
	return ids
}

func TestNewFailsOnCompileError(t *testing.T) {
	dev := newFakeDevice()
	dev.compileErr = errors.New("0:12: syntax error")
	r, err := New(dev)
	if err == nil || r != nil {
		t.Fatalf("New = %v, %v; want failure", r, err)
	}
	if !errors.Is(err, dev.compileErr) {
		t.Errorf("diagnostic lost: %v", err)
	}
}

func TestOpacityDrawOrder(t *testing.T) {
	r, dev := newRenderer(t)

	// register in the worst order
	meshes := []struct {
		id      core.MeshID
		opacity float64
	}{
		{core.OuterID, 0.3},
		{core.LayerID(0), 0.85},
		{core.LinerID, 1.0},
	}
	for _, m := range meshes {
		if err := r.AddMesh(m.id, triangle(), core.RGB(1, 1, 1), m.opacity); err != nil {
			t.Fatalf("AddMesh(%s): %v", m.id, err)
		}
	}
	if err := r.Render(); err != nil {
		t.Fatalf("Render: %v", err)
	}

	want := []core.MeshID{core.LinerID, core.LayerID(0), core.OuterID}
	got := drawOrder(dev.draws)
	if len(got) != len(want) {
		t.Fatalf("draws %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("draws %v, want %v", got, want)
		}
	}
	if !dev.draws[0].DepthWrite || dev.draws[2].DepthWrite {
		t.Error("only opaque meshes should write depth")
	}
}

func TestEqualOpacityKeepsRegistrationOrder(t *testing.T) {
	cfg := RenderFrameConfig{
		Camera: DefaultCamera(),
		Zoom:   1,
		Meshes: []MeshState{
			{ID: "b", Visible: true, Opacity: 0.5, Order: 1},
			{ID: "a", Visible: true, Opacity: 0.5, Order: 0},
			{ID: "hidden", Visible: false, Opacity: 1, Order: 2},
		},
	}
	got := drawOrder(PlanFrame(cfg).Draws)
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("draws %v, want [a b]", got)
	}
}

func TestPlanFrameMatrices(t *testing.T) {
	cfg := RenderFrameConfig{Camera: DefaultCamera(), Zoom: 2, Yaw: 0.3, Pitch: -0.2, Aspect: 4.0 / 3}
	plan := PlanFrame(cfg)

	p := plan.Model.Mul4x1(mgl64.Vec4{0, 0, 1, 1})
	if l := p.Vec3().Len(); math.Abs(l-2) > 1e-9 {
		t.Errorf("zoom 2 scaled a unit vector to %f", l)
	}
	if plan.Normal != plan.Model.Mat3() {
		t.Error("normal matrix is not the model's upper 3x3")
	}
}

func TestReplaceReleasesOldBuffers(t *testing.T) {
	r, dev := newRenderer(t)
	for i := 0; i < 3; i++ {
		if err := r.AddMesh(core.LinerID, triangle(), core.RGB(1, 0, 0), 1); err != nil {
			t.Fatal(err)
		}
	}
	if len(dev.live) != 3 {
		t.Errorf("%d live buffers after replacing, want 3", len(dev.live))
	}
	if ids := r.MeshIDs(); len(ids) != 1 {
		t.Errorf("registered ids %v", ids)
	}
}

func TestDisposeReleasesEverything(t *testing.T) {
	r, dev := newRenderer(t)
	colored := triangle()
	colored.Colors = []float32{1, 0, 0, 0, 1, 0, 0, 0, 1}
	colored.ColorMask = []float32{1, 1, 0}

	_ = r.AddMesh(core.LinerID, triangle(), core.RGB(1, 1, 1), 1)
	_ = r.AddMesh(core.LayerID(0), colored, core.RGB(1, 1, 1), 0.8)
	_ = r.AddMesh(core.BossID(0), triangle(), core.RGB(1, 1, 1), 1)
	r.RemoveMesh(core.BossID(0))

	r.Dispose()
	r.Dispose()

	if dev.created != dev.deleted || len(dev.live) != 0 {
		t.Errorf("created %d, deleted %d, live %d", dev.created, dev.deleted, len(dev.live))
	}
	if dev.programs != 0 {
		t.Errorf("%d programs left", dev.programs)
	}
	if err := r.Render(); !errors.Is(err, ErrDisposed) {
		t.Errorf("Render after Dispose = %v", err)
	}
	if err := r.AddMesh(core.LinerID, triangle(), core.Color{}, 1); !errors.Is(err, ErrDisposed) {
		t.Errorf("AddMesh after Dispose = %v", err)
	}
}

func TestAddMeshRejectsMalformed(t *testing.T) {
	r, dev := newRenderer(t)
	bad := triangle()
	bad.Indices = []uint32{0, 1, 7}
	if err := r.AddMesh(core.LinerID, bad, core.Color{}, 1); !errors.Is(err, ErrInvalidMesh) {
		t.Fatalf("AddMesh = %v, want ErrInvalidMesh", err)
	}
	if dev.created != 0 {
		t.Error("buffers uploaded for a rejected mesh")
	}
}

func TestSettersTakeEffectNextFrame(t *testing.T) {
	r, dev := newRenderer(t)
	_ = r.AddMesh(core.LinerID, triangle(), core.RGB(1, 1, 1), 1)
	_ = r.AddMesh(core.OuterID, triangle(), core.RGB(1, 1, 1), 0.3)

	r.SetMeshVisibility(core.OuterID, false)
	r.SetWireframe(true)
	r.SetClipping(true, core.AxisZ, 0.5)
	if dev.frames != 0 {
		t.Fatal("a setter triggered a redraw")
	}

	if err := r.Render(); err != nil {
		t.Fatal(err)
	}
	if len(dev.draws) != 1 || dev.draws[0].Mode != Wireframe {
		t.Errorf("draws %+v", dev.draws)
	}
	if !dev.uniforms.ClipEnabled || dev.uniforms.ClipPlane[3] != -0.5 {
		t.Errorf("clip uniforms %v %v", dev.uniforms.ClipEnabled, dev.uniforms.ClipPlane)
	}

	r.SetMeshOpacity(core.LinerID, 7)
	if got := r.Config(1).Meshes[0].Opacity; got != 1 {
		t.Errorf("opacity clamped to %f", got)
	}
	if r.SetMeshColor("missing", core.Color{}) {
		t.Error("setter reported success for an unknown id")
	}
}

func TestEmptyFrameIsNoOp(t *testing.T) {
	r, dev := newRenderer(t)
	if err := r.Render(); err != nil {
		t.Fatalf("Render with no meshes: %v", err)
	}
	if dev.frames != 1 || len(dev.draws) != 0 {
		t.Errorf("frames %d draws %d", dev.frames, len(dev.draws))
	}
}

func TestInterleaveColors(t *testing.T) {
	m := triangle()
	m.Colors = []float32{1, 0, 0, 0, 1, 0, 0, 0, 1}
	m.ColorMask = []float32{1, 0, 1}
	got := interleaveColors(m)
	want := []float32{1, 0, 0, 1, 0, 1, 0, 0, 0, 0, 1, 1}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("interleaved %v, want %v", got, want)
		}
	}
}

func TestPresetsCoverKeyboardOrder(t *testing.T) {
	for _, name := range PresetNames {
		if _, ok := Presets[name]; !ok {
			t.Errorf("preset %q has no orientation", name)
		}
	}
}
