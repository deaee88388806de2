package stress

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/interp"
	"gonum.org/v1/gonum/spatial/kdtree"

	"tankviewer/core"
)

// Mode selects how a vertex finds its stress value
type Mode int

const (
	// Nearest takes the value of the closest sample or node.
	Nearest Mode = iota
	// AxialInterpolated interpolates linearly between samples by their
	// position along the tank axis.
	AxialInterpolated
)

// ParseMode accepts "nearest" and "axial".
func ParseMode(s string) (Mode, error) {
	switch s {
	case "", "nearest":
		return Nearest, nil
	case "axial":
		return AxialInterpolated, nil
	}
	return Nearest, fmt.Errorf("stress: unknown mode %q", s)
}

func (m Mode) String() string {
	if m == AxialInterpolated {
		return "axial"
	}
	return "nearest"
}

// Range is a fixed value range for the ramp
type Range struct {
	Min, Max float64
}

// Field is a stress field from the FEA provider. When FEA is set it takes
// precedence over Samples.
type Field struct {
	Samples []core.StressSample `json:"samples,omitempty"`
	FEA     *core.FEAMesh       `json:"fea,omitempty"`
}

// Empty reports whether the field carries no values at all.
func (f Field) Empty() bool {
	return len(f.Samples) == 0 && (f.FEA == nil || len(f.FEA.Nodes) == 0)
}

// points returns the positions and values in use.
func (f Field) points() ([][3]float64, []float64) {
	if f.FEA != nil && len(f.FEA.Nodes) > 0 {
		pos := make([][3]float64, len(f.FEA.Nodes))
		val := make([]float64, len(f.FEA.Nodes))
		for i, n := range f.FEA.Nodes {
			pos[i], val[i] = n.Position, n.Stress
		}
		return pos, val
	}
	pos := make([][3]float64, len(f.Samples))
	val := make([]float64, len(f.Samples))
	for i, s := range f.Samples {
		pos[i], val[i] = s.Position, s.Value
	}
	return pos, val
}

// Options tune the mapping
type Options struct {
	Range        *Range  // nil = derive from the field
	SearchRadius float64 // 0 = unlimited
	Mode         Mode
}

// Overlay is a per-vertex color buffer. Mask holds 1 for vertices that
// found a value and 0 for vertices left to the mesh's base color.
type Overlay struct {
	Colors   []float32
	Mask     []float32
	Min, Max float64
	Covered  int
}

// Apply attaches the overlay to the mesh.
func (o Overlay) Apply(m *core.Mesh) {
	m.Colors = o.Colors
	m.ColorMask = o.Mask
}

// Map colors every vertex of mesh from the field. Positions must be in
// the same space as the field, which means design units. The second
// result is false when nothing could be colored; the mesh should then
// keep its flat base color.
func Map(mesh *core.Mesh, field Field, opts Options) (Overlay, bool) {
	n := mesh.VertexCount()
	if field.Empty() || n == 0 {
		return Overlay{}, false
	}

	pos, vals := field.points()
	lo, hi := floats.Min(vals), floats.Max(vals)
	if opts.Range != nil {
		lo, hi = opts.Range.Min, opts.Range.Max
	}

	out := Overlay{
		Colors: make([]float32, 3*n),
		Mask:   make([]float32, n),
		Min:    lo,
		Max:    hi,
	}

	var lookup func(i int, p [3]float64) (float64, bool)
	switch {
	case field.FEA != nil && len(field.FEA.VertexNodes) == n:
		nodes := field.FEA.VertexNodes
		lookup = func(i int, _ [3]float64) (float64, bool) {
			idx := nodes[i]
			if idx < 0 || idx >= len(vals) {
				return 0, false
			}
			return vals[idx], true
		}
	case opts.Mode == AxialInterpolated:
		lookup = axialLookup(pos, vals, opts.SearchRadius)
	default:
		lookup = nearestLookup(pos, vals, opts.SearchRadius)
	}

	for i := 0; i < n; i++ {
		v := mesh.Vertex(i)
		p := [3]float64{float64(v[0]), float64(v[1]), float64(v[2])}
		value, ok := lookup(i, p)
		if !ok {
			continue
		}
		c := RampColor(Normalize(value, lo, hi))
		copy(out.Colors[3*i:3*i+3], c[:])
		out.Mask[i] = 1
		out.Covered++
	}
	return out, out.Covered > 0
}

// nearestLookup indexes the samples in a k-d tree. Coincident samples
// are averaged.
func nearestLookup(pos [][3]float64, vals []float64, radius float64) func(int, [3]float64) (float64, bool) {
	type acc struct {
		sum float64
		n   int
	}
	byPos := make(map[[3]float64]*acc, len(pos))
	var pts kdtree.Points
	for i, p := range pos {
		a, ok := byPos[p]
		if !ok {
			a = &acc{}
			byPos[p] = a
			pts = append(pts, kdtree.Point{p[0], p[1], p[2]})
		}
		a.sum += vals[i]
		a.n++
	}
	tree := kdtree.New(pts, false)
	r2 := radius * radius

	return func(_ int, p [3]float64) (float64, bool) {
		got, d2 := tree.Nearest(kdtree.Point{p[0], p[1], p[2]})
		if got == nil || (radius > 0 && d2 > r2) {
			return 0, false
		}
		q := got.(kdtree.Point)
		a := byPos[[3]float64{q[0], q[1], q[2]}]
		return a.sum / float64(a.n), true
	}
}

// axialLookup interpolates over z. Samples sharing a z are averaged.
// With a single distinct z every vertex in reach takes that value.
func axialLookup(pos [][3]float64, vals []float64, radius float64) func(int, [3]float64) (float64, bool) {
	type zv struct{ z, v float64 }
	samples := make([]zv, len(pos))
	for i, p := range pos {
		samples[i] = zv{p[2], vals[i]}
	}
	sort.SliceStable(samples, func(i, j int) bool { return samples[i].z < samples[j].z })

	var xs, ys []float64
	for i := 0; i < len(samples); {
		j, sum := i, 0.0
		for j < len(samples) && samples[j].z == samples[i].z {
			sum += samples[j].v
			j++
		}
		xs = append(xs, samples[i].z)
		ys = append(ys, sum/float64(j-i))
		i = j
	}

	zmin, zmax := xs[0], xs[len(xs)-1]
	inReach := func(z float64) bool {
		return radius <= 0 || (z >= zmin-radius && z <= zmax+radius)
	}

	if len(xs) == 1 {
		return func(_ int, p [3]float64) (float64, bool) {
			return ys[0], inReach(p[2])
		}
	}

	var pl interp.PiecewiseLinear
	if err := pl.Fit(xs, ys); err != nil {
		return nearestLookup(pos, vals, radius)
	}
	return func(_ int, p [3]float64) (float64, bool) {
		if !inReach(p[2]) {
			return 0, false
		}
		z := math.Max(zmin, math.Min(zmax, p[2]))
		return pl.Predict(z), true
	}
}
