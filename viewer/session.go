// Package viewer ties the builder, the stress mapper, the renderer and the
// picker together for one interactive session.
package viewer

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/samber/lo"

	"tankviewer/config"
	"tankviewer/core"
	"tankviewer/geometry"
	"tankviewer/input"
	"tankviewer/picking"
	"tankviewer/rendering"
	"tankviewer/stress"
)

// ErrNoDesign is returned by operations that need a loaded design.
var ErrNoDesign = errors.New("viewer: no design loaded")

// Surface is the drawable the loop runs on.
type Surface interface {
	Viewport() picking.Viewport
	ShouldClose() bool
	PollEvents()
}

// Session owns the current assembly and the renderer state for it.
// Like the renderer, it belongs to the render thread.
type Session struct {
	renderer *rendering.Renderer
	settings config.Settings
	ctrl     *input.Controller

	asm      *geometry.Assembly
	overlays map[core.MeshID]stress.Overlay
	viewport picking.Viewport

	// OnPointClick receives the world-space point of every genuine click
	// that hits a visible mesh.
	OnPointClick func(hit picking.Hit)
	// Debug logs a line per frame.
	Debug bool
}

// NewSession wraps a renderer. The renderer's current camera is the reset
// position for Esc until a design is loaded.
func NewSession(r *rendering.Renderer, settings config.Settings) *Session {
	r.SetWireframe(settings.Appearance.Wireframe)
	clip := settings.Appearance.Clip
	r.SetClipping(clip.Enabled, settings.ClipAxis(), clip.Offset)
	s := &Session{
		renderer: r,
		settings: settings,
		overlays: make(map[core.MeshID]stress.Overlay),
	}
	s.ctrl = input.NewController(r, settings.ControllerOptions())
	s.ctrl.OnClick = s.click
	s.ctrl.OnHelp = func(visible bool) {
		if visible {
			fmt.Println(input.HelpText)
		}
	}
	return s
}

// Controller returns the input controller.
func (s *Session) Controller() *input.Controller { return s.ctrl }

// Assembly returns the loaded assembly, or nil.
func (s *Session) Assembly() *geometry.Assembly { return s.asm }

// Overlay returns the stress overlay applied to a layer.
func (s *Session) Overlay(id core.MeshID) (stress.Overlay, bool) {
	o, ok := s.overlays[id]
	return o, ok
}

type upload struct {
	id   core.MeshID
	mesh *core.Mesh
	look config.Look
}

// Load builds the meshes for a design and replaces everything registered
// with the renderer, then frames the new assembly and makes that framing
// the Esc position. A build or validation failure leaves the previous
// meshes in place. An empty field leaves every layer at its flat color.
func (s *Session) Load(design core.DesignGeometry, profile []core.ProfilePoint, field stress.Field) error {
	asm, err := geometry.Build(design, profile, geometry.Options{Segments: s.settings.Geometry.RevolutionSegments})
	if err != nil {
		return fmt.Errorf("viewer: build: %w", err)
	}

	opts := s.settings.StressOptions()
	overlays := make(map[core.MeshID]stress.Overlay)
	var uploads []upload
	for _, p := range asm.Parts {
		if p.Kind == geometry.KindBoss && !s.settings.Appearance.ShowBoss {
			continue
		}
		m := p.DisplayMesh(asm.FitScale)
		if p.Kind == geometry.KindLayer {
			if ov, ok := stress.Map(p.Mesh, field, opts); ok {
				ov.Apply(m)
				overlays[p.ID] = ov
			}
		}
		uploads = append(uploads, upload{id: p.ID, mesh: m, look: s.settings.LookFor(p.ID)})
	}

	if err := s.install(uploads); err != nil {
		return err
	}
	s.asm = asm
	s.overlays = overlays
	s.frame(uploads)

	parts, vertices, triangles := asm.Stats()
	log.Printf("Loaded design: %d meshes, %d vertices, %d triangles, fit scale %.5f",
		parts, vertices, triangles, asm.FitScale)
	if len(overlays) > 0 {
		covered := lo.SumBy(lo.Values(overlays), func(o stress.Overlay) int { return o.Covered })
		log.Printf("Stress overlay on %d layers, %d vertices covered", len(overlays), covered)
	}
	return nil
}

// install checks every upload before releasing the current meshes. If the
// renderer still refuses one, nothing stays registered and the session
// drops its assembly.
func (s *Session) install(uploads []upload) error {
	for _, u := range uploads {
		if err := rendering.CheckMesh(u.id, u.mesh); err != nil {
			return fmt.Errorf("viewer: register %s: %w", u.id, err)
		}
	}
	s.renderer.ClearMeshes()
	for _, u := range uploads {
		if err := s.renderer.AddMesh(u.id, u.mesh, u.look.Color, u.look.Opacity); err != nil {
			s.renderer.ClearMeshes()
			s.asm = nil
			s.overlays = make(map[core.MeshID]stress.Overlay)
			return fmt.Errorf("viewer: register %s: %w", u.id, err)
		}
	}
	return nil
}

// frame points the camera at a sphere holding every display vertex.
func (s *Session) frame(uploads []upload) {
	var radius float64
	for _, u := range uploads {
		for i := 0; i < u.mesh.VertexCount(); i++ {
			v := u.mesh.Vertex(i)
			radius = math.Max(radius, mgl64.Vec3{float64(v[0]), float64(v[1]), float64(v[2])}.Len())
		}
	}
	cam := rendering.FrameSphere(radius, s.renderer.Aspect())
	s.renderer.SetCamera(cam)
	s.ctrl.SetHome(cam)
}

// StressRange returns the value range shared by the overlays.
func (s *Session) StressRange() (stress.Range, bool) {
	for _, o := range s.overlays {
		return stress.Range{Min: o.Min, Max: o.Max}, true
	}
	return stress.Range{}, false
}

// WriteLegend renders the color bar for the current overlay.
func (s *Session) WriteLegend(path string) error {
	rng, ok := s.StressRange()
	if !ok {
		return fmt.Errorf("viewer: no stress overlay to describe")
	}
	return stress.WriteLegend(path, stress.NewRamp(rng.Min, rng.Max), "stress (MPa)")
}

// SetViewport records the drawable size used for picking.
func (s *Session) SetViewport(vp picking.Viewport) {
	if r := s.settings.Window.PixelRatio; r > 0 {
		vp.PixelRatio = r
	}
	s.viewport = vp
}

// Targets returns the pickable parts that are currently visible.
func (s *Session) Targets() []picking.Target {
	if s.asm == nil {
		return nil
	}
	return lo.FilterMap(s.asm.Parts, func(p *geometry.Part, _ int) (picking.Target, bool) {
		return picking.Target{ID: p.ID, Mesh: p.Mesh, AxialOffset: p.AxialOffset}, s.renderer.MeshVisible(p.ID)
	})
}

// Request assembles a pick at logical pixel (x, y) against the state the
// next frame will draw.
func (s *Session) Request(x, y float64) (picking.Request, error) {
	if s.asm == nil {
		return picking.Request{}, ErrNoDesign
	}
	plan := rendering.PlanFrame(s.renderer.Config(s.renderer.Aspect()))
	req := picking.Request{
		X: x, Y: y,
		Viewport:   s.viewport,
		Camera:     s.renderer.Camera().Position,
		View:       plan.View,
		Projection: plan.Projection,
		Model:      plan.Model,
		FitScale:   core.FitScale(s.asm.Design),
		Targets:    s.Targets(),
	}
	if s.settings.Interaction.PickHonorsClip {
		req.Clip = s.renderer.ClipPlane()
	}
	return req, nil
}

// Pick returns the closest visible hit under (x, y).
func (s *Session) Pick(x, y float64) (picking.Hit, bool) {
	req, err := s.Request(x, y)
	if err != nil {
		return picking.Hit{}, false
	}
	return picking.Pick(req)
}

func (s *Session) click(x, y float64) {
	hit, ok := s.Pick(x, y)
	if !ok {
		if s.Debug {
			log.Printf("click at (%.0f, %.0f): no hit", x, y)
		}
		return
	}
	if s.Debug {
		log.Printf("click at (%.0f, %.0f): %s design %v world %v", x, y, hit.ID, hit.Design, hit.World)
	}
	if s.OnPointClick != nil {
		s.OnPointClick(hit)
	}
}

// Step applies a batch of events and draws one frame.
func (s *Session) Step(vp picking.Viewport, events []input.Event) error {
	s.SetViewport(vp)
	s.ctrl.Apply(events)
	if err := s.renderer.Render(); err != nil {
		return err
	}
	if s.Debug {
		log.Printf("frame: %d events, %d draws", len(events), len(s.renderer.Frame().Draws))
	}
	return nil
}

// Run drives frames until the surface closes or ctx is cancelled. Every
// frame completes before the loop checks for cancellation, so no GPU state
// is left bound. The caller disposes the renderer afterwards.
func (s *Session) Run(ctx context.Context, surface Surface, queue *input.Queue) error {
	for !surface.ShouldClose() {
		select {
		case <-ctx.Done():
			return nil
		default:
		}
		surface.PollEvents()
		if err := s.Step(surface.Viewport(), queue.Drain()); err != nil {
			return err
		}
	}
	return nil
}
