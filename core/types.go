package core

import (
	"fmt"
	"math"

	"github.com/samber/lo"
	"gonum.org/v1/gonum/floats"
)

// LayerType is the winding pattern of a composite layer
type LayerType string

const (
	Helical LayerType = "helical"
	Hoop    LayerType = "hoop"
)

// Layer is one composite ply in the winding stack, innermost first
type Layer struct {
	Type      LayerType `json:"type"`
	Thickness float64   `json:"thickness"` // design units (mm)
	Angle     float64   `json:"angle"`     // winding angle in degrees
}

// DesignGeometry is the parametric tank description supplied by the
// application shell. It is treated as immutable for one render cycle.
//
// The design frame has the tank axis along Z. The cylindrical section runs
// from z=0 (inlet junction) to z=TotalLength (outlet junction); the inlet
// dome extends toward negative z and the outlet dome beyond TotalLength.
type DesignGeometry struct {
	TotalLength     float64 `json:"totalLength"`    // length of the cylindrical section
	CylinderRadius  float64 `json:"cylinderRadius"` // liner radius
	OuterRadius     float64 `json:"outerRadius"`    // outer envelope radius, 0 = derive from layers
	DomeDepth       float64 `json:"domeDepth"`
	BossBoreRadius  float64 `json:"bossBoreRadius"`
	BossOuterRadius float64 `json:"bossOuterRadius,omitempty"` // 0 = 2 x bore radius
	BossLength      float64 `json:"bossLength,omitempty"`      // 0 = dome depth / 4
	Layers          []Layer `json:"layers"`
}

// Thicknesses returns the layer thicknesses, innermost first.
func (d DesignGeometry) Thicknesses() []float64 {
	return lo.Map(d.Layers, func(l Layer, _ int) float64 { return l.Thickness })
}

// LayerThickness returns the summed thickness of the whole layer stack.
func (d DesignGeometry) LayerThickness() float64 {
	return floats.Sum(d.Thicknesses())
}

// EnvelopeGap is the minimum clearance between the outer envelope and the
// outermost layer, as a fraction of the liner radius.
const EnvelopeGap = 0.01

// EnvelopeRadius returns the radius of the outer envelope: the declared
// outer radius, or the liner plus the layer stack plus EnvelopeGap when
// that is larger, so the envelope never sits on the last layer.
func (d DesignGeometry) EnvelopeRadius() float64 {
	stack := d.CylinderRadius + d.LayerThickness() + EnvelopeGap*d.CylinderRadius
	return math.Max(d.OuterRadius, stack)
}

// BossGeometry returns the resolved boss outer radius, bore radius and
// length, filling in defaults for unset values.
func (d DesignGeometry) BossGeometry() (outer, bore, length float64) {
	bore = d.BossBoreRadius
	outer = d.BossOuterRadius
	if outer <= 0 {
		outer = 2 * bore
	}
	length = d.BossLength
	if length <= 0 {
		length = d.DomeDepth / 4
	}
	return outer, bore, length
}

// BossOffset is the axial placement of a boss in design units.
// Index 0 is the inlet boss, index 1 the outlet boss.
func (d DesignGeometry) BossOffset(index int) float64 {
	if index == 0 {
		return -d.DomeDepth
	}
	return d.TotalLength + d.DomeDepth
}

// FitScale is the uniform scale that maps design units into the
// normalized view volume. It depends on the design alone so every
// consumer recomputes the same value.
func FitScale(d DesignGeometry) float64 {
	extent := math.Max(d.TotalLength, 2*d.EnvelopeRadius())
	if extent <= 0 || math.IsNaN(extent) || math.IsInf(extent, 0) {
		return 1
	}
	return 1.5 / extent
}

// ProfilePoint is one (radius, axial position) sample of the dome curve
type ProfilePoint struct {
	R float64 `json:"r"`
	Z float64 `json:"z"`
}

// Color is a linear RGB triple in [0,1]
type Color [3]float32

// RGB builds a Color.
func RGB(r, g, b float32) Color {
	return Color{r, g, b}
}

// String renders the color as a hex triplet.
func (c Color) String() string {
	conv := func(f float32) int {
		return int(math.Round(float64(clamp01(f)) * 255))
	}
	return fmt.Sprintf("#%02X%02X%02X", conv(c[0]), conv(c[1]), conv(c[2]))
}

func clamp01(f float32) float32 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}

// StressSample is one discrete stress value at a design-space position
type StressSample struct {
	Position [3]float64 `json:"position"`
	Value    float64    `json:"value"`
}

// FEANode is one node of an FEA result mesh
type FEANode struct {
	Position [3]float64 `json:"position"`
	Stress   float64    `json:"stress"`
}

// FEAMesh is a full FEA result. Only node positions and the stress scalar
// are consumed. When VertexNodes has one entry per render-mesh vertex the
// topologies match and vertex i takes the value of node VertexNodes[i].
type FEAMesh struct {
	Nodes       []FEANode `json:"nodes"`
	Elements    [][]int   `json:"elements,omitempty"`
	VertexNodes []int     `json:"vertexNodes,omitempty"`
}
