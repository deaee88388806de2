package picking

import (
	"github.com/go-gl/mathgl/mgl64"

	"tankviewer/core"
)

// Target is a pickable mesh in design units. AxialOffset is the part's
// placement along the tank axis; the mesh itself is not moved.
type Target struct {
	ID          core.MeshID
	Mesh        *core.Mesh
	AxialOffset float64
}

// Request carries everything one pick needs. Nothing in it is mutated.
type Request struct {
	X, Y       float64 // logical pixels, origin top-left
	Viewport   Viewport
	Camera     mgl64.Vec3
	View       mgl64.Mat4
	Projection mgl64.Mat4
	Model      mgl64.Mat4
	FitScale   float64
	Targets    []Target
	Clip       *core.ClipPlane // nil = test the full geometry
}

// Hit is the closest intersection, expressed in all three spaces
type Hit struct {
	ID       core.MeshID
	Distance float64 // along the ray, design units
	Design   core.DesignPoint
	Local    core.LocalPoint
	World    core.WorldPoint
}

// WorldRay returns the request's ray in world space.
func (req Request) WorldRay() core.WorldRay {
	ndcX, ndcY := ScreenToNDC(req.X, req.Y, req.Viewport)
	return CreateRay(ndcX, ndcY, req.Camera, req.View, req.Projection)
}

// DesignRay returns the request's ray in design units.
func (req Request) DesignRay() core.DesignRay {
	return req.WorldRay().ToLocal(req.Model.Inv()).ToDesign(req.FitScale)
}

// Pick casts the request's ray against every target and returns the
// closest hit. A miss is reported by the second result, never as an error.
// An empty viewport always misses.
func Pick(req Request) (Hit, bool) {
	if req.Viewport.Empty() {
		return Hit{}, false
	}
	ray := req.DesignRay()
	fit := req.FitScale
	toWorld := func(p core.DesignPoint) core.WorldPoint {
		return p.ToLocal(fit).ToWorld(req.Model)
	}

	var best Hit
	found := false
	for _, target := range req.Targets {
		if target.Mesh == nil || target.Mesh.IsEmpty() {
			continue
		}

		var accept func(t float64) bool
		if req.Clip != nil {
			clip := *req.Clip
			accept = func(t float64) bool {
				return clip.Visible(toWorld(ray.At(t)))
			}
		}

		t, ok := IntersectMesh(ray.Shift(target.AxialOffset), target.Mesh, accept)
		if !ok || (found && t >= best.Distance) {
			continue
		}
		found = true
		best = Hit{ID: target.ID, Distance: t}
	}
	if !found {
		return Hit{}, false
	}

	best.Design = ray.At(best.Distance)
	best.Local = best.Design.ToLocal(fit)
	best.World = best.Local.ToWorld(req.Model)
	return best, true
}
