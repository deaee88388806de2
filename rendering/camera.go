package rendering

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Camera is the view state mutated by interaction and read every frame
type Camera struct {
	Position mgl64.Vec3
	Target   mgl64.Vec3
	Up       mgl64.Vec3
	FOV      float64 // vertical, degrees
	Near     float64
	Far      float64
}

// DefaultCamera looks at the origin from +z.
func DefaultCamera() Camera {
	return Camera{
		Position: mgl64.Vec3{0, 0, 3},
		Target:   mgl64.Vec3{0, 0, 0},
		Up:       mgl64.Vec3{0, 1, 0},
		FOV:      45,
		Near:     0.01,
		Far:      100,
	}
}

// frameMargin leaves a border around a framed sphere.
const frameMargin = 1.1

// FrameSphere returns the default camera pulled back along +z until a
// sphere of the given radius around the origin fits both the vertical and
// the horizontal field of view at aspect. The clip planes bracket the
// sphere.
func FrameSphere(radius, aspect float64) Camera {
	c := DefaultCamera()
	if radius <= 0 {
		return c
	}
	if aspect <= 0 {
		aspect = 1
	}
	half := mgl64.DegToRad(c.FOV) / 2
	if h := math.Atan(math.Tan(half) * aspect); h < half {
		half = h
	}
	d := radius / math.Sin(half) * frameMargin
	c.Position = mgl64.Vec3{0, 0, d}
	c.Near = math.Max(c.Near, (d-radius)*0.1)
	c.Far = math.Max(c.Far, (d+radius)*2)
	return c
}

// Pan moves position and target together.
func (c *Camera) Pan(delta mgl64.Vec3) {
	c.Position = c.Position.Add(delta)
	c.Target = c.Target.Add(delta)
}

// Orientation is a model rotation in radians
type Orientation struct {
	Yaw, Pitch float64
}

// PresetNames lists the camera presets in keyboard order (keys 1-7).
var PresetNames = []string{"front", "back", "left", "right", "top", "bottom", "iso"}

// Presets maps a preset name to its model rotation.
var Presets = map[string]Orientation{
	"front":  {Yaw: math.Pi / 2},
	"back":   {Yaw: -math.Pi / 2},
	"left":   {Yaw: math.Pi},
	"right":  {Yaw: 0},
	"top":    {Pitch: math.Pi / 2},
	"bottom": {Pitch: -math.Pi / 2},
	"iso":    {Yaw: math.Pi / 4, Pitch: math.Pi / 6},
}
