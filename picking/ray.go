package picking

import (
	"gonum.org/v1/gonum/spatial/r3"

	"tankviewer/core"
)

const (
	epsilon = 1e-7
	// edge slack so rays through shared edges and vertices are not lost
	// to rounding
	baryEpsilon = 1e-9
)

func vec(v [3]float32) r3.Vec {
	return r3.Vec{X: float64(v[0]), Y: float64(v[1]), Z: float64(v[2])}
}

// IntersectTriangle is the two-sided Möller–Trumbore test. It returns the
// ray parameter of the hit.
func IntersectTriangle(r core.DesignRay, tri *r3.Triangle) (float64, bool) {
	origin := r3.Vec{X: r.Origin[0], Y: r.Origin[1], Z: r.Origin[2]}
	dir := r3.Vec{X: r.Dir[0], Y: r.Dir[1], Z: r.Dir[2]}

	edge1 := r3.Sub(tri[1], tri[0])
	edge2 := r3.Sub(tri[2], tri[0])
	h := r3.Cross(dir, edge2)
	det := r3.Dot(edge1, h)
	// parallel to the triangle plane
	if det > -epsilon && det < epsilon {
		return 0, false
	}
	invDet := 1 / det
	s := r3.Sub(origin, tri[0])
	u := invDet * r3.Dot(s, h)
	if u < -baryEpsilon || u > 1+baryEpsilon {
		return 0, false
	}
	q := r3.Cross(s, edge1)
	v := invDet * r3.Dot(dir, q)
	if v < -baryEpsilon || u+v > 1+baryEpsilon {
		return 0, false
	}
	t := invDet * r3.Dot(edge2, q)
	if t < epsilon {
		return 0, false
	}
	return t, true
}

// IntersectMesh returns the closest accepted hit of the ray on the mesh.
// accept may be nil.
func IntersectMesh(r core.DesignRay, m *core.Mesh, accept func(t float64) bool) (float64, bool) {
	var tri r3.Triangle
	var minT float64
	haveMin := false
	for i := 0; i < m.TriangleCount(); i++ {
		verts := m.Triangle(i)
		for j := range verts {
			tri[j] = vec(verts[j])
		}
		t, ok := IntersectTriangle(r, &tri)
		if !ok || (haveMin && t >= minT) {
			continue
		}
		if accept != nil && !accept(t) {
			continue
		}
		minT, haveMin = t, true
	}
	return minT, haveMin
}
