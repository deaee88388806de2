package core

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// MeshID names a mesh registered with the renderer and the picker
type MeshID string

const (
	LinerID MeshID = "liner"
	OuterID MeshID = "outer"
)

// LayerID returns the id of the i-th composite layer, innermost first.
func LayerID(i int) MeshID {
	return MeshID("layer-" + strconv.Itoa(i))
}

// BossID returns the id of boss i (0 = inlet, 1 = outlet).
func BossID(i int) MeshID {
	return MeshID("boss-" + strconv.Itoa(i))
}

// IsLayer reports whether the id names a composite layer.
func (id MeshID) IsLayer() bool {
	return strings.HasPrefix(string(id), "layer-")
}

// IsBoss reports whether the id names a boss.
func (id MeshID) IsBoss() bool {
	return strings.HasPrefix(string(id), "boss-")
}

// ErrMalformedMesh is returned by Mesh.Validate.
var ErrMalformedMesh = errors.New("malformed mesh")

// Mesh is a triangle mesh with flat arrays: 3 floats per vertex for
// positions and normals, 3 indices per triangle. Colors, when present,
// holds 3 floats per vertex and ColorMask one weight per vertex saying how
// much of Colors replaces the base color (0 = base color only).
type Mesh struct {
	Positions []float32 `json:"positions"`
	Normals   []float32 `json:"normals"`
	Indices   []uint32  `json:"indices"`
	Colors    []float32 `json:"colors,omitempty"`
	ColorMask []float32 `json:"colorMask,omitempty"`
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Positions) / 3
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// IsEmpty returns true if the mesh has no geometry.
func (m *Mesh) IsEmpty() bool {
	return len(m.Positions) == 0 || len(m.Indices) == 0
}

// Vertex returns the position of vertex i.
func (m *Mesh) Vertex(i int) [3]float32 {
	return [3]float32{m.Positions[3*i], m.Positions[3*i+1], m.Positions[3*i+2]}
}

// Triangle returns the three vertex positions of triangle i.
func (m *Mesh) Triangle(i int) [3][3]float32 {
	return [3][3]float32{
		m.Vertex(int(m.Indices[3*i])),
		m.Vertex(int(m.Indices[3*i+1])),
		m.Vertex(int(m.Indices[3*i+2])),
	}
}

// Bounds returns the axis-aligned bounding box of the positions.
func (m *Mesh) Bounds() (min, max [3]float32) {
	for i := 0; i < m.VertexCount(); i++ {
		v := m.Vertex(i)
		for c := 0; c < 3; c++ {
			if i == 0 || v[c] < min[c] {
				min[c] = v[c]
			}
			if i == 0 || v[c] > max[c] {
				max[c] = v[c]
			}
		}
	}
	return min, max
}

// HasColors reports whether a per-vertex color overlay is attached.
func (m *Mesh) HasColors() bool {
	return len(m.Colors) > 0
}

// Validate checks array lengths and index bounds.
func (m *Mesh) Validate() error {
	if len(m.Positions)%3 != 0 {
		return fmt.Errorf("%w: %d position floats is not a multiple of 3", ErrMalformedMesh, len(m.Positions))
	}
	if len(m.Normals) != len(m.Positions) {
		return fmt.Errorf("%w: %d normal floats for %d position floats", ErrMalformedMesh, len(m.Normals), len(m.Positions))
	}
	if len(m.Indices)%3 != 0 {
		return fmt.Errorf("%w: %d indices is not a multiple of 3", ErrMalformedMesh, len(m.Indices))
	}
	n := uint32(m.VertexCount())
	for i, idx := range m.Indices {
		if idx >= n {
			return fmt.Errorf("%w: index %d at %d out of range (%d vertices)", ErrMalformedMesh, idx, i, n)
		}
	}
	if len(m.Colors) > 0 {
		if len(m.Colors) != len(m.Positions) {
			return fmt.Errorf("%w: %d color floats for %d position floats", ErrMalformedMesh, len(m.Colors), len(m.Positions))
		}
		if len(m.ColorMask) != 0 && len(m.ColorMask) != int(n) {
			return fmt.Errorf("%w: %d mask weights for %d vertices", ErrMalformedMesh, len(m.ColorMask), n)
		}
	}
	return nil
}

// Clone returns a deep copy of the mesh.
func (m *Mesh) Clone() *Mesh {
	c := &Mesh{
		Positions: append([]float32(nil), m.Positions...),
		Normals:   append([]float32(nil), m.Normals...),
		Indices:   append([]uint32(nil), m.Indices...),
	}
	if m.Colors != nil {
		c.Colors = append([]float32(nil), m.Colors...)
	}
	if m.ColorMask != nil {
		c.ColorMask = append([]float32(nil), m.ColorMask...)
	}
	return c
}
