// Package picking turns a screen click into a hit on the tank meshes.
//
// A pick walks the coordinate spaces in order: screen → NDC → world ray →
// model-local ray → design-unit ray. Intersection happens in design units
// so distances are physical; the winning point is carried back out to
// world space for the caller.
package picking

import (
	"github.com/go-gl/mathgl/mgl64"

	"tankviewer/core"
)

// Viewport is the drawable size in device pixels. Pointer coordinates
// arrive in logical pixels and are scaled by PixelRatio.
type Viewport struct {
	Width, Height int
	PixelRatio    float64
}

func (v Viewport) ratio() float64 {
	if v.PixelRatio <= 0 {
		return 1
	}
	return v.PixelRatio
}

// Empty reports whether the viewport has no drawable area, as with a
// minimized window.
func (v Viewport) Empty() bool { return v.Width <= 0 || v.Height <= 0 }

// Aspect returns width over height.
func (v Viewport) Aspect() float64 {
	if v.Height == 0 {
		return 1
	}
	return float64(v.Width) / float64(v.Height)
}

// ScreenToNDC converts logical pixel coordinates (origin top-left) to
// normalized device coordinates in [-1,1], y up. An empty viewport maps
// every point to the centre.
func ScreenToNDC(x, y float64, vp Viewport) (float64, float64) {
	if vp.Empty() {
		return 0, 0
	}
	pr := vp.ratio()
	px, py := x*pr, y*pr
	ndcX := 2*px/float64(vp.Width) - 1
	ndcY := 1 - 2*py/float64(vp.Height)
	return ndcX, ndcY
}

// NDCToScreen is the inverse of ScreenToNDC.
func NDCToScreen(ndcX, ndcY float64, vp Viewport) (float64, float64) {
	pr := vp.ratio()
	px := (ndcX + 1) / 2 * float64(vp.Width)
	py := (1 - ndcY) / 2 * float64(vp.Height)
	return px / pr, py / pr
}

// CreateRay unprojects the near and far clip points under the NDC
// position and returns the world-space ray from the camera through them.
func CreateRay(ndcX, ndcY float64, camera mgl64.Vec3, view, projection mgl64.Mat4) core.WorldRay {
	invViewProj := projection.Mul4(view).Inv()

	near := invViewProj.Mul4x1(mgl64.Vec4{ndcX, ndcY, -1, 1})
	far := invViewProj.Mul4x1(mgl64.Vec4{ndcX, ndcY, 1, 1})
	near = near.Mul(1 / near[3])
	far = far.Mul(1 / far[3])

	dir := far.Vec3().Sub(near.Vec3()).Normalize()
	return core.WorldRay{Origin: core.WorldPoint(camera), Dir: dir}
}

// WorldToScreen projects a world point to logical pixel coordinates. The
// second result is false for points behind the camera.
func WorldToScreen(p core.WorldPoint, view, projection mgl64.Mat4, vp Viewport) (float64, float64, bool) {
	clip := projection.Mul4(view).Mul4x1(p.Vec().Vec4(1))
	if clip[3] <= 0 {
		return 0, 0, false
	}
	x, y := NDCToScreen(clip[0]/clip[3], clip[1]/clip[3], vp)
	return x, y, true
}
