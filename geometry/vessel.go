// Package geometry turns a parametric tank design and a dome profile into
// triangle meshes for the liner, each composite layer, the outer envelope
// and the two boss fittings.
//
// Meshes are produced in design units with the tank axis along Z. Display
// positions are derived on demand with the design's fit scale so the
// renderer and the picker always agree on the transform.
package geometry

import (
	"fmt"

	"gonum.org/v1/gonum/floats"

	"tankviewer/core"
)

// PartKind classifies a generated mesh
type PartKind int

const (
	KindLiner PartKind = iota
	KindLayer
	KindOuter
	KindBoss
)

func (k PartKind) String() string {
	switch k {
	case KindLiner:
		return "liner"
	case KindLayer:
		return "layer"
	case KindOuter:
		return "outer"
	case KindBoss:
		return "boss"
	}
	return "unknown"
}

// Part is one generated mesh and its placement along the tank axis
type Part struct {
	ID          core.MeshID
	Kind        PartKind
	Mesh        *core.Mesh // design units, before AxialOffset
	AxialOffset float64    // design units, added to z at display time
	Layer       int        // layer index for KindLayer, boss index for KindBoss
}

// DisplayPositions returns the positions ready for upload: shifted by the
// axial offset and scaled by fit.
func (p *Part) DisplayPositions(fit float64) []float32 {
	src := p.Mesh.Positions
	out := make([]float32, len(src))
	for i := 0; i < len(src); i += 3 {
		out[i] = float32(float64(src[i]) * fit)
		out[i+1] = float32(float64(src[i+1]) * fit)
		out[i+2] = float32((float64(src[i+2]) + p.AxialOffset) * fit)
	}
	return out
}

// DisplayMesh returns a copy of the mesh with display positions. Normals
// are unaffected by a uniform scale and a translation.
func (p *Part) DisplayMesh(fit float64) *core.Mesh {
	m := p.Mesh.Clone()
	m.Positions = p.DisplayPositions(fit)
	return m
}

// Assembly is the full mesh set for one design
type Assembly struct {
	Design       core.DesignGeometry
	FitScale     float64
	Segments     int
	ProfileSize  int // samples in the revolved meridian
	Parts        []*Part
	LayerOffsets []float64 // cumulative offset of each layer surface from the liner
}

// Part returns the part with the given id.
func (a *Assembly) Part(id core.MeshID) (*Part, bool) {
	for _, p := range a.Parts {
		if p.ID == id {
			return p, true
		}
	}
	return nil, false
}

// Stats summarizes an assembly for logging.
func (a *Assembly) Stats() (parts, vertices, triangles int) {
	for _, p := range a.Parts {
		vertices += p.Mesh.VertexCount()
		triangles += p.Mesh.TriangleCount()
	}
	return len(a.Parts), vertices, triangles
}

// Options tune the builder
type Options struct {
	Segments int // angular resolution, 0 = DefaultSegments
}

// Build generates every mesh for the design. It fails without producing
// any mesh when the design or the profile is malformed.
func Build(design core.DesignGeometry, profile []core.ProfilePoint, opts Options) (*Assembly, error) {
	segments := opts.Segments
	if segments == 0 {
		segments = DefaultSegments
	}
	if segments < MinSegments {
		return nil, fmt.Errorf("%w: %d revolution segments, need at least %d", ErrInvalidDesign, segments, MinSegments)
	}
	if err := ValidateDesign(design); err != nil {
		return nil, err
	}
	if err := ValidateProfile(profile); err != nil {
		return nil, err
	}
	if err := checkJunction(design, profile); err != nil {
		return nil, err
	}

	base := meridian(profile, design.TotalLength)
	asm := &Assembly{
		Design:      design,
		FitScale:    core.FitScale(design),
		Segments:    segments,
		ProfileSize: len(base),
	}

	asm.Parts = append(asm.Parts, &Part{
		ID:   core.LinerID,
		Kind: KindLiner,
		Mesh: revolve([][]profileVertex{base}, segments),
	})

	thick := design.Thicknesses()
	asm.LayerOffsets = floats.CumSum(make([]float64, len(thick)), thick)
	for i, layer := range design.Layers {
		cumulative := asm.LayerOffsets[i]

		var strip []profileVertex
		switch layer.Type {
		case core.Hoop:
			// hoop windings only cover the cylindrical section
			if design.TotalLength == 0 {
				continue
			}
			strip = cylinderStrip(design.CylinderRadius+cumulative, design.TotalLength)
		default:
			strip = offsetStrip(base, cumulative)
		}
		asm.Parts = append(asm.Parts, &Part{
			ID:    core.LayerID(i),
			Kind:  KindLayer,
			Mesh:  revolve([][]profileVertex{strip}, segments),
			Layer: i,
		})
	}

	envelope := design.EnvelopeRadius() - design.CylinderRadius
	asm.Parts = append(asm.Parts, &Part{
		ID:   core.OuterID,
		Kind: KindOuter,
		Mesh: revolve([][]profileVertex{offsetStrip(base, envelope)}, segments),
	})

	outer, bore, length := design.BossGeometry()
	if outer > 0 && length > 0 {
		for i := 0; i < 2; i++ {
			asm.Parts = append(asm.Parts, &Part{
				ID:          core.BossID(i),
				Kind:        KindBoss,
				Mesh:        revolve(bossStrips(outer, bore, length), segments),
				AxialOffset: design.BossOffset(i),
				Layer:       i,
			})
		}
	}

	for _, p := range asm.Parts {
		if err := p.Mesh.Validate(); err != nil {
			return nil, fmt.Errorf("geometry: %s: %w", p.ID, err)
		}
	}
	return asm, nil
}
