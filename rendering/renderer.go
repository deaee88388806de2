package rendering

import (
	"fmt"
	"math"
	"sort"

	"github.com/go-gl/mathgl/mgl64"

	"tankviewer/core"
	"tankviewer/rendering/shaders"
)

// meshHandle is a registered mesh: its GPU buffers and render attributes
type meshHandle struct {
	id      core.MeshID
	buffers MeshBuffers
	visible bool
	opacity float64
	color   core.Color
	order   int
}

// Renderer draws the registered meshes with one shared program. It is
// not safe for concurrent use; every call belongs on the render thread.
type Renderer struct {
	dev     Device
	program Program

	meshes    map[core.MeshID]*meshHandle
	nextOrder int

	camera     Camera
	yaw, pitch float64
	zoom       float64

	wireframe   bool
	clipEnabled bool
	clipAxis    core.Axis
	clipOffset  float64

	last     FramePlan
	disposed bool
}

// New compiles the shading program. The renderer is not usable if this
// fails.
func New(dev Device) (*Renderer, error) {
	program, err := dev.CompileProgram(shaders.Vertex, shaders.Fragment)
	if err != nil {
		return nil, fmt.Errorf("rendering: compile mesh program: %w", err)
	}
	return &Renderer{
		dev:     dev,
		program: program,
		meshes:  make(map[core.MeshID]*meshHandle),
		camera:  DefaultCamera(),
		zoom:    1,
	}, nil
}

// CheckMesh reports whether AddMesh would accept mesh.
func CheckMesh(id core.MeshID, mesh *core.Mesh) error {
	if mesh == nil {
		return fmt.Errorf("%w: %s: nil mesh", ErrInvalidMesh, id)
	}
	if err := mesh.Validate(); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidMesh, id, err)
	}
	if uint64(mesh.VertexCount()) > math.MaxUint32 {
		return fmt.Errorf("%w: %s: %d vertices exceed 32-bit indices", ErrInvalidMesh, id, mesh.VertexCount())
	}
	return nil
}

// AddMesh uploads the mesh under id, replacing and releasing any mesh
// already registered under it. Positions must already be in display
// units. The mesh starts visible.
func (r *Renderer) AddMesh(id core.MeshID, mesh *core.Mesh, color core.Color, opacity float64) error {
	if r.disposed {
		return ErrDisposed
	}
	if err := CheckMesh(id, mesh); err != nil {
		return err
	}

	order := r.nextOrder
	if old, ok := r.meshes[id]; ok {
		r.release(old)
		order = old.order
		logger.Printf("replaced mesh %s", id)
	} else {
		r.nextOrder++
	}

	h := &meshHandle{
		id:      id,
		visible: true,
		opacity: clampUnit(opacity),
		color:   color,
		order:   order,
	}
	h.buffers = r.upload(mesh)
	r.meshes[id] = h
	logger.Printf("added mesh %s: %d vertices, %d triangles", id, mesh.VertexCount(), mesh.TriangleCount())
	return nil
}

func (r *Renderer) upload(mesh *core.Mesh) MeshBuffers {
	b := MeshBuffers{IndexCount: int32(len(mesh.Indices))}
	if mesh.IsEmpty() {
		return b
	}
	b.Positions = r.dev.CreateArrayBuffer(mesh.Positions)
	b.Normals = r.dev.CreateArrayBuffer(mesh.Normals)
	b.Indices = r.dev.CreateIndexBuffer(mesh.Indices)
	if mesh.HasColors() {
		b.Colors = r.dev.CreateArrayBuffer(interleaveColors(mesh))
		b.HasColors = true
	}
	return b
}

// interleaveColors packs RGB plus the per-vertex overlay weight.
func interleaveColors(mesh *core.Mesh) []float32 {
	n := mesh.VertexCount()
	out := make([]float32, 4*n)
	for i := 0; i < n; i++ {
		copy(out[4*i:4*i+3], mesh.Colors[3*i:3*i+3])
		w := float32(1)
		if len(mesh.ColorMask) == n {
			w = mesh.ColorMask[i]
		}
		out[4*i+3] = w
	}
	return out
}

// release deletes every buffer the handle owns.
func (r *Renderer) release(h *meshHandle) {
	for _, b := range []Buffer{h.buffers.Positions, h.buffers.Normals, h.buffers.Indices, h.buffers.Colors} {
		if b != 0 {
			r.dev.DeleteBuffer(b)
		}
	}
	h.buffers = MeshBuffers{}
}

// RemoveMesh releases the mesh registered under id. It reports whether
// there was one.
func (r *Renderer) RemoveMesh(id core.MeshID) bool {
	h, ok := r.meshes[id]
	if !ok {
		return false
	}
	r.release(h)
	delete(r.meshes, id)
	return true
}

// ClearMeshes releases every registered mesh.
func (r *Renderer) ClearMeshes() {
	for id, h := range r.meshes {
		r.release(h)
		delete(r.meshes, id)
	}
	r.nextOrder = 0
}

// Dispose releases the program and all meshes. Further calls are no-ops.
func (r *Renderer) Dispose() {
	if r.disposed {
		return
	}
	r.ClearMeshes()
	r.dev.DeleteProgram(r.program)
	r.disposed = true
	logger.Printf("disposed")
}

// Disposed reports whether Dispose has run.
func (r *Renderer) Disposed() bool { return r.disposed }

// MeshIDs returns the registered ids in registration order.
func (r *Renderer) MeshIDs() []core.MeshID {
	handles := r.sortedHandles()
	ids := make([]core.MeshID, len(handles))
	for i, h := range handles {
		ids[i] = h.id
	}
	return ids
}

func (r *Renderer) sortedHandles() []*meshHandle {
	handles := make([]*meshHandle, 0, len(r.meshes))
	for _, h := range r.meshes {
		handles = append(handles, h)
	}
	sort.Slice(handles, func(i, j int) bool { return handles[i].order < handles[j].order })
	return handles
}

// SetMeshVisibility shows or hides a mesh. It reports whether id is registered.
func (r *Renderer) SetMeshVisibility(id core.MeshID, visible bool) bool {
	h, ok := r.meshes[id]
	if ok {
		h.visible = visible
	}
	return ok
}

// MeshVisible reports whether id is registered and visible.
func (r *Renderer) MeshVisible(id core.MeshID) bool {
	h, ok := r.meshes[id]
	return ok && h.visible
}

// SetMeshOpacity sets a mesh's opacity, clamped to [0,1].
func (r *Renderer) SetMeshOpacity(id core.MeshID, opacity float64) bool {
	h, ok := r.meshes[id]
	if ok {
		h.opacity = clampUnit(opacity)
	}
	return ok
}

// SetMeshColor sets a mesh's base color.
func (r *Renderer) SetMeshColor(id core.MeshID, color core.Color) bool {
	h, ok := r.meshes[id]
	if ok {
		h.color = color
	}
	return ok
}

// SetWireframe switches every mesh between filled and line drawing.
func (r *Renderer) SetWireframe(on bool) { r.wireframe = on }

// Wireframe reports the wireframe toggle.
func (r *Renderer) Wireframe() bool { return r.wireframe }

// SetClipping configures the cross-section plane. offset is clamped to [-1,1].
func (r *Renderer) SetClipping(enabled bool, axis core.Axis, offset float64) {
	r.clipEnabled = enabled
	r.clipAxis = axis
	r.clipOffset = math.Max(-1, math.Min(1, offset))
}

// Clipping returns the cross-section state.
func (r *Renderer) Clipping() (enabled bool, axis core.Axis, offset float64) {
	return r.clipEnabled, r.clipAxis, r.clipOffset
}

// ClipPlane returns the active plane, or nil when clipping is off.
func (r *Renderer) ClipPlane() *core.ClipPlane {
	if !r.clipEnabled {
		return nil
	}
	p := core.ClipPlaneFromAxis(r.clipAxis, r.clipOffset)
	return &p
}

// SetRotation sets the model yaw and pitch in radians.
func (r *Renderer) SetRotation(yaw, pitch float64) {
	r.yaw, r.pitch = yaw, pitch
}

// Rotation returns the model yaw and pitch.
func (r *Renderer) Rotation() (yaw, pitch float64) { return r.yaw, r.pitch }

// SetZoom sets the uniform model scale.
func (r *Renderer) SetZoom(zoom float64) {
	if zoom > 0 {
		r.zoom = zoom
	}
}

// Zoom returns the uniform model scale.
func (r *Renderer) Zoom() float64 { return r.zoom }

// SetCameraPosition moves the eye.
func (r *Renderer) SetCameraPosition(p mgl64.Vec3) { r.camera.Position = p }

// SetCameraTarget moves the look-at point.
func (r *Renderer) SetCameraTarget(p mgl64.Vec3) { r.camera.Target = p }

// Camera returns the current camera.
func (r *Renderer) Camera() Camera { return r.camera }

// SetCamera replaces the whole camera.
func (r *Renderer) SetCamera(c Camera) { r.camera = c }

// Config captures the state the next frame will use.
func (r *Renderer) Config(aspect float64) RenderFrameConfig {
	cfg := RenderFrameConfig{
		Camera:      r.camera,
		Yaw:         r.yaw,
		Pitch:       r.pitch,
		Zoom:        r.zoom,
		Aspect:      aspect,
		Wireframe:   r.wireframe,
		ClipEnabled: r.clipEnabled,
		Clip:        core.ClipPlaneFromAxis(r.clipAxis, r.clipOffset),
	}
	for _, h := range r.sortedHandles() {
		cfg.Meshes = append(cfg.Meshes, MeshState{
			ID:        h.id,
			Visible:   h.visible && h.buffers.IndexCount > 0,
			Opacity:   h.opacity,
			Color:     h.color,
			HasColors: h.buffers.HasColors,
			Order:     h.order,
		})
	}
	return cfg
}

// Aspect returns the framebuffer aspect ratio.
func (r *Renderer) Aspect() float64 {
	w, h := r.dev.FramebufferSize()
	if w <= 0 || h <= 0 {
		return 1
	}
	return float64(w) / float64(h)
}

// Render draws one frame from the current state.
func (r *Renderer) Render() error {
	if r.disposed {
		return ErrDisposed
	}
	w, h := r.dev.FramebufferSize()
	plan := PlanFrame(r.Config(r.Aspect()))

	r.dev.BeginFrame(r.program, plan.Uniforms(w, h))
	for _, call := range plan.Draws {
		r.dev.Draw(r.program, r.meshes[call.ID].buffers, call)
	}
	r.dev.EndFrame()

	r.last = plan
	return nil
}

// Frame returns the plan of the last rendered frame.
func (r *Renderer) Frame() FramePlan { return r.last }

func clampUnit(v float64) float64 {
	if math.IsNaN(v) {
		return 1
	}
	return math.Max(0, math.Min(1, v))
}
