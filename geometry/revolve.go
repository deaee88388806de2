package geometry

import (
	"math"

	"tankviewer/core"
)

const (
	// MinSegments is the lowest angular resolution accepted for a surface
	// of revolution; anything coarser visibly facets the cylinder.
	MinSegments = 24
	// DefaultSegments is used when the caller does not pick a resolution.
	DefaultSegments = 64
)

// apexRadius is the radius below which a profile vertex is treated as
// sitting on the tank axis.
const apexRadius = 1e-9

// profileVertex is one (r, z) sample of a meridian together with its
// outward unit normal in the (r, z) half-plane.
type profileVertex struct {
	r, z   float64
	nr, nz float64
}

// offset moves the vertex along its normal.
func (v profileVertex) offset(d float64) profileVertex {
	v.r += d * v.nr
	v.z += d * v.nz
	if v.r < 0 {
		v.r = 0
	}
	return v
}

// revolve sweeps each strip around the z axis. Strips are independent
// meridians: vertices are shared within a strip but not across strips,
// which keeps hard edges between them. The seam is closed by wrapping
// indices rather than duplicating the first column of vertices.
//
// Vertex (j, k) of a strip is profile sample j at angle step k. Triangles
// are wound counter-clockwise seen from the side the profile normal
// points to.
func revolve(strips [][]profileVertex, segments int) *core.Mesh {
	total := 0
	quads := 0
	for _, s := range strips {
		total += len(s) * segments
		if len(s) > 1 {
			quads += (len(s) - 1) * segments
		}
	}

	mesh := &core.Mesh{
		Positions: make([]float32, 0, total*3),
		Normals:   make([]float32, 0, total*3),
		Indices:   make([]uint32, 0, quads*6),
	}

	sin := make([]float64, segments)
	cos := make([]float64, segments)
	for k := 0; k < segments; k++ {
		theta := 2 * math.Pi * float64(k) / float64(segments)
		sin[k], cos[k] = math.Sincos(theta)
	}

	for _, strip := range strips {
		base := uint32(mesh.VertexCount())
		for _, v := range strip {
			for k := 0; k < segments; k++ {
				mesh.Positions = append(mesh.Positions,
					float32(v.r*cos[k]), float32(v.r*sin[k]), float32(v.z))
				mesh.Normals = append(mesh.Normals,
					float32(v.nr*cos[k]), float32(v.nr*sin[k]), float32(v.nz))
			}
		}

		seg := uint32(segments)
		for j := 0; j+1 < len(strip); j++ {
			row := base + uint32(j)*seg
			next := row + seg
			for k := uint32(0); k < seg; k++ {
				k1 := (k + 1) % seg
				a, b := row+k, row+k1
				c, d := next+k, next+k1
				mesh.Indices = append(mesh.Indices, a, b, c)
				mesh.Indices = append(mesh.Indices, b, d, c)
			}
		}
	}
	return mesh
}

// meridian expands the apex-to-junction dome profile into the full
// closed meridian of the vessel: inlet apex, inlet junction at z=0,
// outlet junction at z=length, outlet apex. Depths are measured from
// the junction sample so the profile's own z origin does not matter.
func meridian(profile []core.ProfilePoint, length float64) []profileVertex {
	n := len(profile)
	junction := profile[n-1].Z
	out := make([]profileVertex, 0, 2*n)

	for i := 0; i < n; i++ {
		out = append(out, profileVertex{r: profile[i].R, z: -math.Abs(profile[i].Z - junction)})
	}
	for i := n - 1; i >= 0; i-- {
		out = append(out, profileVertex{r: profile[i].R, z: length + math.Abs(profile[i].Z-junction)})
	}

	assignNormals(out, n)
	return out
}

// assignNormals fills in outward normals for a meridian produced by
// meridian: the normal of each sample is perpendicular to the tangent
// through its neighbours, junction samples point straight out, and
// samples on the axis point along it.
func assignNormals(m []profileVertex, n int) {
	last := len(m) - 1
	for i := range m {
		switch {
		case i == n-1 || i == n:
			m[i].nr, m[i].nz = 1, 0
			continue
		case m[i].r <= apexRadius && i < n:
			m[i].nr, m[i].nz = 0, -1
			continue
		case m[i].r <= apexRadius:
			m[i].nr, m[i].nz = 0, 1
			continue
		}

		prev, next := i-1, i+1
		if prev < 0 {
			prev = i
		}
		if next > last {
			next = i
		}
		tr := m[next].r - m[prev].r
		tz := m[next].z - m[prev].z
		l := math.Hypot(tr, tz)
		if l == 0 {
			m[i].nr, m[i].nz = 1, 0
			continue
		}
		m[i].nr, m[i].nz = tz/l, -tr/l
	}
}

// offsetStrip returns a copy of the strip pushed outward by d.
func offsetStrip(strip []profileVertex, d float64) []profileVertex {
	out := make([]profileVertex, len(strip))
	for i, v := range strip {
		out[i] = v.offset(d)
	}
	return out
}

// cylinderStrip is the straight wall at radius r from z=0 to z=length.
func cylinderStrip(r, length float64) []profileVertex {
	return []profileVertex{
		{r: r, z: 0, nr: 1},
		{r: r, z: length, nr: 1},
	}
}

// bossStrips builds the closed annulus of a boss centred on z=0: outer
// wall, top face, bore, bottom face. A zero bore collapses the faces to
// disks and drops the bore wall.
func bossStrips(outer, bore, length float64) [][]profileVertex {
	h := length / 2
	strips := [][]profileVertex{
		{{r: outer, z: -h, nr: 1}, {r: outer, z: h, nr: 1}},
		{{r: outer, z: h, nz: 1}, {r: bore, z: h, nz: 1}},
	}
	if bore > apexRadius {
		strips = append(strips, []profileVertex{{r: bore, z: h, nr: -1}, {r: bore, z: -h, nr: -1}})
	}
	strips = append(strips, []profileVertex{{r: bore, z: -h, nz: -1}, {r: outer, z: -h, nz: -1}})
	return strips
}
