package core

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func near(a, b mgl64.Vec3, eps float64) bool {
	return a.Sub(b).Len() < eps
}

func TestSpaceRoundTrip(t *testing.T) {
	model := mgl64.Scale3D(1.7, 1.7, 1.7).Mul4(mgl64.HomogRotate3DY(0.6)).Mul4(mgl64.HomogRotate3DX(-0.3))
	inv := model.Inv()
	fit := 0.01

	tests := []struct {
		name string
		p    DesignPoint
	}{
		{"origin", DesignPoint{0, 0, 0}},
		{"apex", DesignPoint{0, 0, 60}},
		{"cylinder wall", DesignPoint{75, 0, 120}},
		{"inlet boss", DesignPoint{-5, 12, -60}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			world := tc.p.ToLocal(fit).ToWorld(model)
			back := world.ToLocal(inv).ToDesign(fit)
			if !near(back.Vec(), tc.p.Vec(), 1e-9) {
				t.Errorf("round trip: got %v, want %v", back, tc.p)
			}
		})
	}
}

func TestRayToLocalRenormalizes(t *testing.T) {
	model := mgl64.Scale3D(2, 2, 2).Mul4(mgl64.HomogRotate3DY(math.Pi / 2))
	ray := WorldRay{Origin: WorldPoint{0, 0, 3}, Dir: mgl64.Vec3{0, 0, -1}}

	local := ray.ToLocal(model.Inv())
	if math.Abs(local.Dir.Len()-1) > 1e-12 {
		t.Fatalf("direction length %f, want 1", local.Dir.Len())
	}
	// rotY(90) maps local +x onto world -z
	if !near(local.Dir, mgl64.Vec3{1, 0, 0}, 1e-9) {
		t.Errorf("local direction %v, want (1,0,0)", local.Dir)
	}
	if !near(local.Origin.Vec(), mgl64.Vec3{-1.5, 0, 0}, 1e-9) {
		t.Errorf("local origin %v, want (-1.5,0,0)", local.Origin)
	}
}

func TestDesignRayShift(t *testing.T) {
	r := DesignRay{Origin: DesignPoint{1, 2, 3}, Dir: mgl64.Vec3{0, 0, -1}}
	s := r.Shift(-60)
	if s.Origin != (DesignPoint{1, 2, 63}) {
		t.Errorf("shifted origin %v", s.Origin)
	}
	if r.Origin[2] != 3 {
		t.Error("Shift mutated the receiver")
	}
}

func TestClipPlaneVisibility(t *testing.T) {
	plane := ClipPlane{Normal: mgl64.Vec3{0, 0, 1}, D: -0.5}
	if !plane.Visible(WorldPoint{0, 0, 0.6}) {
		t.Error("(0,0,0.6) should be visible")
	}
	if plane.Visible(WorldPoint{0, 0, 0.4}) {
		t.Error("(0,0,0.4) should be clipped")
	}

	fromAxis := ClipPlaneFromAxis(AxisZ, 0.5)
	if fromAxis != plane {
		t.Errorf("ClipPlaneFromAxis(z, 0.5) = %+v, want %+v", fromAxis, plane)
	}
	if clamped := ClipPlaneFromAxis(AxisX, 3); clamped.D != -1 {
		t.Errorf("offset not clamped: D=%f", clamped.D)
	}
}

func TestFitScale(t *testing.T) {
	tests := []struct {
		name string
		d    DesignGeometry
		want float64
	}{
		{"long tank", DesignGeometry{TotalLength: 600, CylinderRadius: 75, OuterRadius: 80}, 1.5 / 600},
		{"short tank", DesignGeometry{TotalLength: 100, CylinderRadius: 75, OuterRadius: 80}, 1.5 / 160},
		{"layers exceed outer radius", DesignGeometry{CylinderRadius: 75, Layers: []Layer{{Type: Hoop, Thickness: 10}}}, 1.5 / (2 * (85 + EnvelopeGap*75))},
		{"empty design", DesignGeometry{}, 1},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := FitScale(tc.d); math.Abs(got-tc.want) > 1e-15 {
				t.Errorf("FitScale = %g, want %g", got, tc.want)
			}
		})
	}
}

func TestLayerThickness(t *testing.T) {
	d := DesignGeometry{CylinderRadius: 75, OuterRadius: 70, Layers: []Layer{
		{Type: Helical, Thickness: 2}, {Type: Hoop, Thickness: 1.5}, {Type: Helical, Thickness: 2},
	}}
	if got := d.LayerThickness(); math.Abs(got-5.5) > 1e-12 {
		t.Errorf("LayerThickness = %f, want 5.5", got)
	}
	if got, want := d.EnvelopeRadius(), 80.5+EnvelopeGap*75; math.Abs(got-want) > 1e-12 {
		t.Errorf("EnvelopeRadius = %f, want %f", got, want)
	}
	if (DesignGeometry{}).LayerThickness() != 0 {
		t.Error("empty stack has thickness")
	}
}

func TestMeshValidate(t *testing.T) {
	good := &Mesh{
		Positions: []float32{0, 0, 0, 1, 0, 0, 0, 1, 0},
		Normals:   []float32{0, 0, 1, 0, 0, 1, 0, 0, 1},
		Indices:   []uint32{0, 1, 2},
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("valid mesh rejected: %v", err)
	}

	bad := good.Clone()
	bad.Indices[2] = 3
	if err := bad.Validate(); err == nil {
		t.Error("out-of-range index accepted")
	}

	colored := good.Clone()
	colored.Colors = []float32{1, 0, 0}
	if err := colored.Validate(); err == nil {
		t.Error("short color buffer accepted")
	}

	min, max := good.Bounds()
	if min != [3]float32{0, 0, 0} || max != [3]float32{1, 1, 0} {
		t.Errorf("bounds %v %v", min, max)
	}
}

func TestBossDefaults(t *testing.T) {
	d := DesignGeometry{TotalLength: 300, DomeDepth: 60, BossBoreRadius: 10}
	outer, bore, length := d.BossGeometry()
	if outer != 20 || bore != 10 || length != 15 {
		t.Errorf("BossGeometry = %v %v %v", outer, bore, length)
	}
	if d.BossOffset(0) != -60 || d.BossOffset(1) != 360 {
		t.Errorf("boss offsets %v %v", d.BossOffset(0), d.BossOffset(1))
	}
}
