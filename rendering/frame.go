package rendering

import (
	"sort"

	"github.com/go-gl/mathgl/mgl64"

	"tankviewer/core"
	"tankviewer/linalg"
)

// MeshState is the per-mesh part of a frame config
type MeshState struct {
	ID        core.MeshID
	Visible   bool
	Opacity   float64
	Color     core.Color
	HasColors bool
	Order     int // registration order
}

// RenderFrameConfig is everything a frame depends on, captured at once
// right before drawing.
type RenderFrameConfig struct {
	Camera      Camera
	Yaw, Pitch  float64
	Zoom        float64
	Aspect      float64
	Wireframe   bool
	ClipEnabled bool
	Clip        core.ClipPlane
	Meshes      []MeshState
}

// FramePlan is the result of planning a frame: the shared matrices and
// the ordered draw list.
type FramePlan struct {
	Projection  mgl64.Mat4
	View        mgl64.Mat4
	Model       mgl64.Mat4
	Normal      mgl64.Mat3
	ClipEnabled bool
	Clip        core.ClipPlane
	Draws       []DrawCall
}

// PlanFrame computes the matrices and the draw order for cfg. Visible
// meshes are drawn from most to least opaque so translucent shells blend
// over what is already in the depth buffer; equal opacities keep
// registration order.
func PlanFrame(cfg RenderFrameConfig) FramePlan {
	aspect := cfg.Aspect
	if aspect <= 0 {
		aspect = 1
	}
	cam := cfg.Camera
	model := linalg.ModelMatrix(cfg.Zoom, cfg.Yaw, cfg.Pitch)

	plan := FramePlan{
		Projection:  linalg.Perspective(cam.FOV, aspect, cam.Near, cam.Far),
		View:        linalg.LookAt(cam.Position, cam.Target, cam.Up),
		Model:       model,
		Normal:      linalg.NormalMatrix(model),
		ClipEnabled: cfg.ClipEnabled,
		Clip:        cfg.Clip,
	}

	visible := make([]MeshState, 0, len(cfg.Meshes))
	for _, m := range cfg.Meshes {
		if m.Visible {
			visible = append(visible, m)
		}
	}
	sort.SliceStable(visible, func(i, j int) bool {
		if visible[i].Opacity != visible[j].Opacity {
			return visible[i].Opacity > visible[j].Opacity
		}
		return visible[i].Order < visible[j].Order
	})

	mode := Fill
	if cfg.Wireframe {
		mode = Wireframe
	}
	for _, m := range visible {
		plan.Draws = append(plan.Draws, DrawCall{
			ID:              m.ID,
			Color:           m.Color,
			Opacity:         m.Opacity,
			UseVertexColors: m.HasColors,
			Mode:            mode,
			DepthWrite:      m.Opacity >= 1,
		})
	}
	return plan
}

// Uniforms converts the plan's shared state for upload.
func (p FramePlan) Uniforms(width, height int) FrameUniforms {
	return FrameUniforms{
		Projection:  linalg.Float32(p.Projection),
		View:        linalg.Float32(p.View),
		Model:       linalg.Float32(p.Model),
		Normal:      linalg.Float32Mat3(p.Normal),
		ClipEnabled: p.ClipEnabled,
		ClipPlane:   linalg.Float32Vec4(p.Clip.Vec4()),
		LightDir:    linalg.Float32Vec3(mgl64.Vec3{0.4, 0.6, 1}.Normalize()),
		Width:       width,
		Height:      height,
	}
}
