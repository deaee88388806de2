package core

import (
	"github.com/go-gl/mathgl/mgl64"
)

// Three coordinate spaces are in play when picking:
//
//	DesignPoint  raw design units (millimetre-like), tank axis along Z
//	LocalPoint   model-local display units: design x FitScale
//	WorldPoint   after the model matrix (rotation and zoom)
//
// Each space has its own type so a point can only move between spaces
// through the conversion functions below.

// DesignPoint is a position in raw design units
type DesignPoint mgl64.Vec3

// LocalPoint is a position in model-local (fit-scaled) units
type LocalPoint mgl64.Vec3

// WorldPoint is a position in world space
type WorldPoint mgl64.Vec3

// Vec returns the untyped vector.
func (p DesignPoint) Vec() mgl64.Vec3 { return mgl64.Vec3(p) }

// Vec returns the untyped vector.
func (p LocalPoint) Vec() mgl64.Vec3 { return mgl64.Vec3(p) }

// Vec returns the untyped vector.
func (p WorldPoint) Vec() mgl64.Vec3 { return mgl64.Vec3(p) }

// ToLocal scales a design point into model-local units.
func (p DesignPoint) ToLocal(fit float64) LocalPoint {
	return LocalPoint(p.Vec().Mul(fit))
}

// ToDesign undoes the fit scale.
func (p LocalPoint) ToDesign(fit float64) DesignPoint {
	return DesignPoint(p.Vec().Mul(1 / fit))
}

// ToWorld applies the model matrix.
func (p LocalPoint) ToWorld(model mgl64.Mat4) WorldPoint {
	return WorldPoint(mgl64.TransformCoordinate(p.Vec(), model))
}

// ToLocal applies the inverse model matrix.
func (p WorldPoint) ToLocal(invModel mgl64.Mat4) LocalPoint {
	return LocalPoint(mgl64.TransformCoordinate(p.Vec(), invModel))
}

// WorldRay is a ray in world space. Dir is unit length.
type WorldRay struct {
	Origin WorldPoint
	Dir    mgl64.Vec3
}

// LocalRay is a ray in model-local space. Dir is unit length.
type LocalRay struct {
	Origin LocalPoint
	Dir    mgl64.Vec3
}

// DesignRay is a ray in design units. Dir is unit length, so the
// parameter along the ray is a distance in design units.
type DesignRay struct {
	Origin DesignPoint
	Dir    mgl64.Vec3
}

// ToLocal transforms the ray by the inverse model matrix. The direction
// is transformed as a vector (w=0) and renormalized.
func (r WorldRay) ToLocal(invModel mgl64.Mat4) LocalRay {
	return LocalRay{
		Origin: r.Origin.ToLocal(invModel),
		Dir:    mgl64.TransformNormal(r.Dir, invModel).Normalize(),
	}
}

// ToDesign undoes the fit scale. A uniform scale leaves the direction alone.
func (r LocalRay) ToDesign(fit float64) DesignRay {
	return DesignRay{Origin: r.Origin.ToDesign(fit), Dir: r.Dir}
}

// At returns the point at distance t along the ray.
func (r DesignRay) At(t float64) DesignPoint {
	return DesignPoint(r.Origin.Vec().Add(r.Dir.Mul(t)))
}

// At returns the point at parameter t along the ray.
func (r WorldRay) At(t float64) WorldPoint {
	return WorldPoint(r.Origin.Vec().Add(r.Dir.Mul(t)))
}

// Shift moves the ray origin along the tank axis by -offset, expressing
// it in the frame of a part that is placed at +offset.
func (r DesignRay) Shift(offset float64) DesignRay {
	o := r.Origin
	o[2] -= offset
	return DesignRay{Origin: o, Dir: r.Dir}
}

// Axis is a cross-section axis
type Axis int

const (
	AxisX Axis = iota
	AxisY
	AxisZ
)

// ParseAxis accepts "x", "y" or "z".
func ParseAxis(s string) (Axis, bool) {
	switch s {
	case "x", "X":
		return AxisX, true
	case "y", "Y":
		return AxisY, true
	case "z", "Z":
		return AxisZ, true
	}
	return AxisX, false
}

func (a Axis) String() string {
	switch a {
	case AxisY:
		return "y"
	case AxisZ:
		return "z"
	}
	return "x"
}

// ClipPlane is the half-space dot(p, Normal) + D >= 0 in world space
type ClipPlane struct {
	Normal mgl64.Vec3
	D      float64
}

// ClipPlaneFromAxis builds the plane for an axis-aligned section at a
// signed offset in [-1,1]; offsets outside the range are clamped.
func ClipPlaneFromAxis(axis Axis, offset float64) ClipPlane {
	if offset < -1 {
		offset = -1
	} else if offset > 1 {
		offset = 1
	}
	var n mgl64.Vec3
	n[int(axis)] = 1
	return ClipPlane{Normal: n, D: -offset}
}

// Visible reports whether p lies on the kept side of the plane.
func (c ClipPlane) Visible(p WorldPoint) bool {
	return p.Vec().Dot(c.Normal)+c.D >= 0
}

// Vec4 packs the plane as (nx, ny, nz, d).
func (c ClipPlane) Vec4() mgl64.Vec4 {
	return mgl64.Vec4{c.Normal[0], c.Normal[1], c.Normal[2], c.D}
}
