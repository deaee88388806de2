// Command pickpoint builds a tank and picks one pixel without opening a
// window, printing the hit in every coordinate space.
package main

import (
	"flag"
	"fmt"
	"log"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"tankviewer/core"
	"tankviewer/geometry"
	"tankviewer/picking"
	"tankviewer/rendering"
	"tankviewer/viewer"
)

func main() {
	var (
		designPath  = flag.String("design", "", "Design geometry JSON (default: built-in sample)")
		profilePath = flag.String("profile", "", "Dome profile JSON (default: elliptical dome)")
		width       = flag.Int("width", 1280, "Viewport width in device pixels")
		height      = flag.Int("height", 800, "Viewport height in device pixels")
		ratio       = flag.Float64("ratio", 1, "Device pixel ratio")
		x           = flag.Float64("x", -1, "Click x in logical pixels (default: centre)")
		y           = flag.Float64("y", -1, "Click y in logical pixels (default: centre)")
		preset      = flag.String("preset", "front", "Camera preset")
		zoom        = flag.Float64("zoom", 1, "Model zoom")
		segments    = flag.Int("segments", geometry.DefaultSegments, "Revolution segments")
		clipAxis    = flag.String("clip", "", "Honor a cross-section on this axis (x, y or z)")
		clipOffset  = flag.Float64("offset", 0, "Cross-section offset in [-1,1]")
	)
	flag.Parse()

	in, err := viewer.ReadInputs(*designPath, *profilePath, "", 32)
	if err != nil {
		log.Fatalf("Failed to read inputs: %v", err)
	}
	asm, err := geometry.Build(in.Design, in.Profile, geometry.Options{Segments: *segments})
	if err != nil {
		log.Fatalf("Failed to build tank geometry: %v", err)
	}

	orientation, ok := rendering.Presets[*preset]
	if !ok {
		log.Fatalf("Unknown preset %q (have %v)", *preset, rendering.PresetNames)
	}

	vp := picking.Viewport{Width: *width, Height: *height, PixelRatio: *ratio}
	var radius float64
	for _, p := range asm.Parts {
		m := p.DisplayMesh(asm.FitScale)
		for i := 0; i < m.VertexCount(); i++ {
			v := m.Vertex(i)
			radius = math.Max(radius, mgl64.Vec3{float64(v[0]), float64(v[1]), float64(v[2])}.Len())
		}
	}
	camera := rendering.FrameSphere(radius, vp.Aspect())
	plan := rendering.PlanFrame(rendering.RenderFrameConfig{
		Camera: camera,
		Yaw:    orientation.Yaw,
		Pitch:  orientation.Pitch,
		Zoom:   *zoom,
		Aspect: vp.Aspect(),
	})

	px, py := *x, *y
	if px < 0 || py < 0 {
		px = float64(*width) / *ratio / 2
		py = float64(*height) / *ratio / 2
	}

	req := picking.Request{
		X: px, Y: py,
		Viewport:   vp,
		Camera:     camera.Position,
		View:       plan.View,
		Projection: plan.Projection,
		Model:      plan.Model,
		FitScale:   core.FitScale(in.Design),
	}
	for _, p := range asm.Parts {
		req.Targets = append(req.Targets, picking.Target{ID: p.ID, Mesh: p.Mesh, AxialOffset: p.AxialOffset})
	}
	if *clipAxis != "" {
		axis, ok := core.ParseAxis(*clipAxis)
		if !ok {
			log.Fatalf("Unknown clip axis %q", *clipAxis)
		}
		plane := core.ClipPlaneFromAxis(axis, *clipOffset)
		req.Clip = &plane
	}

	parts, vertices, triangles := asm.Stats()
	fmt.Printf("Assembly: %d meshes, %d vertices, %d triangles, fit scale %.6f\n", parts, vertices, triangles, asm.FitScale)
	ray := req.WorldRay()
	fmt.Printf("Ray at (%.1f, %.1f): origin %v direction %v\n", px, py, ray.Origin, ray.Dir)

	hit, ok := picking.Pick(req)
	if !ok {
		fmt.Println("No hit")
		return
	}
	fmt.Printf("Hit %s at distance %.4f (design units)\n", hit.ID, hit.Distance)
	fmt.Printf("  design: %8.3f %8.3f %8.3f\n", hit.Design[0], hit.Design[1], hit.Design[2])
	fmt.Printf("  local:  %8.5f %8.5f %8.5f\n", hit.Local[0], hit.Local[1], hit.Local[2])
	fmt.Printf("  world:  %8.5f %8.5f %8.5f\n", hit.World[0], hit.World[1], hit.World[2])
	if sx, sy, ok := picking.WorldToScreen(hit.World, plan.View, plan.Projection, vp); ok {
		fmt.Printf("  back on screen: (%.2f, %.2f)\n", sx, sy)
	}
}
