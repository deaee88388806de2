// Package linalg is the matrix/vector kernel shared by the renderer and
// the picker. Matrices are 16-float column-major 4x4 (mgl64.Mat4) and
// 9-float 3x3 (mgl64.Mat3), matching OpenGL conventions.
//
// All functions are total except for degenerate inputs: zero-length
// vectors passed to Normalize, Cross or LookAt (zero up-vector, eye equal
// to target) are a precondition violation and produce NaNs.
package linalg

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
)

type (
	Mat4 = mgl64.Mat4
	Mat3 = mgl64.Mat3
	Vec3 = mgl64.Vec3
	Vec4 = mgl64.Vec4
)

// Identity returns the 4x4 identity.
func Identity() Mat4 {
	return mgl64.Ident4()
}

// Perspective builds a right-handed projection with clip-space depth in [-1,1].
func Perspective(fovDeg, aspect, near, far float64) Mat4 {
	return mgl64.Perspective(mgl64.DegToRad(fovDeg), aspect, near, far)
}

// LookAt builds a view matrix for a camera at eye looking at target.
func LookAt(eye, target, up Vec3) Mat4 {
	return mgl64.LookAtV(eye, target, up)
}

// RotateX returns a rotation about the X axis (radians).
func RotateX(angle float64) Mat4 {
	return mgl64.HomogRotate3DX(angle)
}

// RotateY returns a rotation about the Y axis (radians).
func RotateY(angle float64) Mat4 {
	return mgl64.HomogRotate3DY(angle)
}

// Scale returns a uniform scale.
func Scale(s float64) Mat4 {
	return mgl64.Scale3D(s, s, s)
}

// Translate returns a translation.
func Translate(v Vec3) Mat4 {
	return mgl64.Translate3D(v[0], v[1], v[2])
}

// Mul returns a*b.
func Mul(a, b Mat4) Mat4 {
	return a.Mul4(b)
}

// Inverse returns the inverse of m, or the zero matrix when m is singular.
func Inverse(m Mat4) Mat4 {
	return m.Inv()
}

// ModelMatrix is the single transform shared by every mesh:
// scale(zoom) x rotateY(yaw) x rotateX(pitch).
func ModelMatrix(zoom, yaw, pitch float64) Mat4 {
	return Scale(zoom).Mul4(RotateY(yaw)).Mul4(RotateX(pitch))
}

// NormalMatrix extracts the upper-left 3x3 of the model matrix. This is
// only a valid normal transform for rotation plus uniform scale, which is
// all ModelMatrix ever produces; shaders renormalize.
func NormalMatrix(model Mat4) Mat3 {
	return model.Mat3()
}

// TransformPoint applies m to a point (w=1) with perspective divide.
func TransformPoint(m Mat4, p Vec3) Vec3 {
	return mgl64.TransformCoordinate(p, m)
}

// TransformDirection applies m to a direction (w=0). No divide.
func TransformDirection(m Mat4, d Vec3) Vec3 {
	return mgl64.TransformNormal(d, m)
}

// TransformClip applies m to a homogeneous point without dividing.
func TransformClip(m Mat4, p Vec3) Vec4 {
	return m.Mul4x1(p.Vec4(1))
}

// Normalize returns v scaled to unit length.
func Normalize(v Vec3) Vec3 {
	return v.Normalize()
}

// Cross returns a x b.
func Cross(a, b Vec3) Vec3 {
	return a.Cross(b)
}

// Float32 converts a matrix for uniform upload.
func Float32(m Mat4) mgl32.Mat4 {
	var out mgl32.Mat4
	for i := range m {
		out[i] = float32(m[i])
	}
	return out
}

// Float32Mat3 converts a 3x3 matrix for uniform upload.
func Float32Mat3(m Mat3) mgl32.Mat3 {
	var out mgl32.Mat3
	for i := range m {
		out[i] = float32(m[i])
	}
	return out
}

// Float32Vec3 converts a vector for uniform upload.
func Float32Vec3(v Vec3) mgl32.Vec3 {
	return mgl32.Vec3{float32(v[0]), float32(v[1]), float32(v[2])}
}

// Float32Vec4 converts a vector for uniform upload.
func Float32Vec4(v Vec4) mgl32.Vec4 {
	return mgl32.Vec4{float32(v[0]), float32(v[1]), float32(v[2]), float32(v[3])}
}
