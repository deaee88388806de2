package picking

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"gonum.org/v1/gonum/spatial/r3"

	"tankviewer/core"
	"tankviewer/geometry"
	"tankviewer/linalg"
)

const eps = 1e-6

func TestRayHitsTriangleCentroid(t *testing.T) {
	tri := r3.Triangle{{X: 0, Y: 0, Z: 0}, {X: 1, Y: 0, Z: 0}, {X: 0, Y: 1, Z: 0}}
	ray := core.DesignRay{Origin: core.DesignPoint{1.0 / 3, 1.0 / 3, 1}, Dir: mgl64.Vec3{0, 0, -1}}

	d, ok := IntersectTriangle(ray, &tri)
	if !ok {
		t.Fatal("expected a hit")
	}
	if math.Abs(d-1) > eps {
		t.Errorf("distance %f, want 1", d)
	}
	p := ray.At(d)
	if p.Vec().Sub(mgl64.Vec3{1.0 / 3, 1.0 / 3, 0}).Len() > eps {
		t.Errorf("hit point %v, want centroid", p)
	}

	// back face is hit as well
	back := core.DesignRay{Origin: core.DesignPoint{1.0 / 3, 1.0 / 3, -1}, Dir: mgl64.Vec3{0, 0, 1}}
	if _, ok := IntersectTriangle(back, &tri); !ok {
		t.Error("back face missed")
	}
}

func TestRayMisses(t *testing.T) {
	tri := r3.Triangle{{X: 0, Y: 0, Z: 0}, {X: 1, Y: 0, Z: 0}, {X: 0, Y: 1, Z: 0}}
	tests := []struct {
		name string
		ray  core.DesignRay
	}{
		{"outside", core.DesignRay{Origin: core.DesignPoint{2, 2, 1}, Dir: mgl64.Vec3{0, 0, -1}}},
		{"parallel", core.DesignRay{Origin: core.DesignPoint{0.2, 0.2, 1}, Dir: mgl64.Vec3{1, 0, 0}}},
		{"behind origin", core.DesignRay{Origin: core.DesignPoint{0.2, 0.2, 1}, Dir: mgl64.Vec3{0, 0, 1}}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, ok := IntersectTriangle(tc.ray, &tri); ok {
				t.Error("unexpected hit")
			}
		})
	}
}

func TestScreenRoundTrip(t *testing.T) {
	vp := Viewport{Width: 1600, Height: 1200, PixelRatio: 2}
	view := mgl64.LookAtV(mgl64.Vec3{0.4, 0.8, 3}, mgl64.Vec3{0, 0, 0}, mgl64.Vec3{0, 1, 0})
	proj := mgl64.Perspective(mgl64.DegToRad(45), vp.Aspect(), 0.01, 100)
	camera := mgl64.Vec3{0.4, 0.8, 3}

	pixels := [][2]float64{{0, 0}, {400, 300}, {799, 599}, {123.5, 456.25}}
	for _, px := range pixels {
		ndcX, ndcY := ScreenToNDC(px[0], px[1], vp)
		ray := CreateRay(ndcX, ndcY, camera, view, proj)
		x, y, ok := WorldToScreen(ray.At(2.5), view, proj, vp)
		if !ok {
			t.Fatalf("pixel %v projected behind the camera", px)
		}
		if math.Abs(x-px[0]) > 1e-6 || math.Abs(y-px[1]) > 1e-6 {
			t.Errorf("pixel %v round-tripped to (%f, %f)", px, x, y)
		}
	}
}

func TestEmptyViewportMisses(t *testing.T) {
	if x, y := ScreenToNDC(10, 10, Viewport{}); x != 0 || y != 0 {
		t.Errorf("empty viewport maps to (%f, %f)", x, y)
	}
	req := centreRequest(Target{ID: "quad", Mesh: quad(0)})
	for _, vp := range []Viewport{{}, {Width: 800}, {Height: 600, PixelRatio: 2}} {
		req.Viewport = vp
		if hit, ok := Pick(req); ok {
			t.Errorf("viewport %+v: unexpected hit %+v", vp, hit)
		}
	}
}

func TestScreenToNDCPixelRatio(t *testing.T) {
	vp := Viewport{Width: 800, Height: 600, PixelRatio: 2}
	x, y := ScreenToNDC(200, 150, vp)
	if x != 0 || y != 0 {
		t.Errorf("centre of a 2x display maps to (%f, %f)", x, y)
	}
}

// quad is a square at height z covering [-1,1]^2.
func quad(z float32) *core.Mesh {
	return &core.Mesh{
		Positions: []float32{-1, -1, z, 1, -1, z, 1, 1, z, -1, 1, z},
		Normals:   []float32{0, 0, 1, 0, 0, 1, 0, 0, 1, 0, 0, 1},
		Indices:   []uint32{0, 1, 2, 0, 2, 3},
	}
}

func centreRequest(targets ...Target) Request {
	vp := Viewport{Width: 800, Height: 600, PixelRatio: 1}
	camera := mgl64.Vec3{0, 0, 3}
	return Request{
		X: 400, Y: 300,
		Viewport:   vp,
		Camera:     camera,
		View:       mgl64.LookAtV(camera, mgl64.Vec3{}, mgl64.Vec3{0, 1, 0}),
		Projection: mgl64.Perspective(mgl64.DegToRad(45), vp.Aspect(), 0.01, 100),
		Model:      mgl64.Ident4(),
		FitScale:   1,
		Targets:    targets,
	}
}

func TestPickClosestRegardlessOfOrder(t *testing.T) {
	near := Target{ID: "near", Mesh: quad(0.5)}
	far := Target{ID: "far", Mesh: quad(0)}

	orders := map[string][]Target{
		"near first": {near, far},
		"far first":  {far, near},
	}
	for name, targets := range orders {
		t.Run(name, func(t *testing.T) {
			hit, ok := Pick(centreRequest(targets...))
			if !ok {
				t.Fatal("expected a hit")
			}
			if hit.ID != "near" {
				t.Errorf("hit %s, want near", hit.ID)
			}
			if math.Abs(hit.Distance-2.5) > eps {
				t.Errorf("distance %f, want 2.5", hit.Distance)
			}
		})
	}
}

func TestPickHonorsClip(t *testing.T) {
	req := centreRequest(Target{ID: "near", Mesh: quad(0.5)}, Target{ID: "far", Mesh: quad(0)})
	// keep z <= 0.25
	req.Clip = &core.ClipPlane{Normal: mgl64.Vec3{0, 0, -1}, D: 0.25}

	hit, ok := Pick(req)
	if !ok {
		t.Fatal("expected a hit")
	}
	if hit.ID != "far" {
		t.Errorf("hit %s through the clipped-away surface", hit.ID)
	}
}

func TestPickAxialOffset(t *testing.T) {
	hit, ok := Pick(centreRequest(Target{ID: "boss", Mesh: quad(0), AxialOffset: 0.75}))
	if !ok {
		t.Fatal("expected a hit")
	}
	if math.Abs(hit.World[2]-0.75) > eps {
		t.Errorf("boss hit at z=%f, want 0.75", hit.World[2])
	}
}

func TestPickMiss(t *testing.T) {
	req := centreRequest(Target{ID: "quad", Mesh: quad(0)})
	req.X, req.Y = 5, 5
	if hit, ok := Pick(req); ok {
		t.Errorf("unexpected hit %+v", hit)
	}
	if _, ok := Pick(centreRequest()); ok {
		t.Error("hit with no targets")
	}
}

func TestPickApex(t *testing.T) {
	design := core.DesignGeometry{
		CylinderRadius: 75,
		DomeDepth:      60,
		BossBoreRadius: 10,
	}
	profile := geometry.EllipticalProfile(75, 60, 20)
	asm, err := geometry.Build(design, profile, geometry.Options{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	liner, _ := asm.Part(core.LinerID)
	if got, want := liner.Mesh.VertexCount(), geometry.DefaultSegments*asm.ProfileSize; got != want {
		t.Fatalf("liner vertex count %d, want %d", got, want)
	}

	req := centreRequest(Target{ID: liner.ID, Mesh: liner.Mesh})
	req.FitScale = core.FitScale(design)
	if req.FitScale != asm.FitScale {
		t.Fatalf("picker fit %g, builder fit %g", req.FitScale, asm.FitScale)
	}

	hit, ok := Pick(req)
	if !ok {
		t.Fatal("apex missed")
	}
	if d := hit.Design.Vec().Sub(mgl64.Vec3{0, 0, design.DomeDepth}).Len(); d > 0.01 {
		t.Errorf("hit %v is %f from the apex", hit.Design, d)
	}
	if hit.World.Vec().Sub(mgl64.Vec3{0, 0, 0.6}).Len() > 1e-4 {
		t.Errorf("world hit %v, want (0,0,0.6)", hit.World)
	}
}

func TestPickRotatedAssembly(t *testing.T) {
	design := core.DesignGeometry{
		TotalLength:    300,
		CylinderRadius: 75,
		DomeDepth:      60,
		BossBoreRadius: 10,
		Layers: []core.Layer{
			{Type: core.Helical, Thickness: 2},
			{Type: core.Hoop, Thickness: 1.5},
			{Type: core.Helical, Thickness: 2},
		},
	}
	asm, err := geometry.Build(design, geometry.EllipticalProfile(75, 60, 16), geometry.Options{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	var targets []Target
	for _, p := range asm.Parts {
		targets = append(targets, Target{ID: p.ID, Mesh: p.Mesh, AxialOffset: p.AxialOffset})
	}

	// outlet boss end face: z = L + D + length/2
	face := design.TotalLength + design.DomeDepth + design.DomeDepth/8
	tests := []struct {
		name             string
		yaw, pitch, zoom float64
		point            core.DesignPoint
	}{
		{"slight turn zoomed in", 0.2, 0.1, 1.4, core.DesignPoint{15, 0, face}},
		{"turned back zoomed out", -0.3, 0.25, 0.8, core.DesignPoint{0, 15, face}},
		{"pitched down", 0.5, -0.2, 1, core.DesignPoint{-12, -9, face}},
	}
	vp := Viewport{Width: 1280, Height: 800, PixelRatio: 1}
	camera := mgl64.Vec3{0, 0, 6}
	view := mgl64.LookAtV(camera, mgl64.Vec3{}, mgl64.Vec3{0, 1, 0})
	proj := mgl64.Perspective(mgl64.DegToRad(45), vp.Aspect(), 0.01, 100)
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			model := linalg.ModelMatrix(tc.zoom, tc.yaw, tc.pitch)
			world := tc.point.ToLocal(asm.FitScale).ToWorld(model)
			x, y, ok := WorldToScreen(world, view, proj, vp)
			if !ok || x < 0 || x > float64(vp.Width) || y < 0 || y > float64(vp.Height) {
				t.Fatalf("%v projects to (%f, %f), off screen", tc.point, x, y)
			}

			hit, ok := Pick(Request{
				X: x, Y: y,
				Viewport:   vp,
				Camera:     camera,
				View:       view,
				Projection: proj,
				Model:      model,
				FitScale:   core.FitScale(design),
				Targets:    targets,
			})
			if !ok {
				t.Fatal("missed")
			}
			if hit.ID != core.BossID(1) {
				t.Errorf("hit %s, want %s", hit.ID, core.BossID(1))
			}
			if d := hit.Design.Vec().Sub(tc.point.Vec()).Len(); d > 1e-3 {
				t.Errorf("design hit %v is %g from %v", hit.Design, d, tc.point)
			}
			if d := hit.World.Vec().Sub(world.Vec()).Len(); d > 1e-6 {
				t.Errorf("world hit %v is %g from %v", hit.World, d, world)
			}
		})
	}
}
