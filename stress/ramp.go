// Package stress maps scalar stress fields onto per-vertex colors.
package stress

import (
	"image/color"
	"math"

	"gonum.org/v1/plot/palette"

	"tankviewer/core"
)

// Stops is the five-stop diverging ramp, low to high.
var Stops = [5]core.Color{
	{0, 0, 1}, // blue
	{0, 1, 1}, // cyan
	{0, 1, 0}, // green
	{1, 1, 0}, // yellow
	{1, 0, 0}, // red
}

// RampColor returns the ramp color at t, clamped to [0,1].
func RampColor(t float64) core.Color {
	if !(t > 0) {
		return Stops[0]
	}
	if t >= 1 {
		return Stops[len(Stops)-1]
	}
	seg := t * float64(len(Stops)-1)
	i := int(seg)
	f := float32(seg - float64(i))
	a, b := Stops[i], Stops[i+1]
	return core.Color{
		a[0] + (b[0]-a[0])*f,
		a[1] + (b[1]-a[1])*f,
		a[2] + (b[2]-a[2])*f,
	}
}

// Normalize maps v into [0,1] against the range. A flat range maps
// everything to 0.
func Normalize(v, min, max float64) float64 {
	if max <= min {
		return 0
	}
	t := (v - min) / (max - min)
	return math.Max(0, math.Min(1, t))
}

// Ramp is the stress ramp over a value range. It satisfies
// palette.ColorMap so it can drive plot color bars.
type Ramp struct {
	min, max float64
	alpha    float64
}

var _ palette.ColorMap = (*Ramp)(nil)

// NewRamp returns an opaque ramp over [min, max].
func NewRamp(min, max float64) *Ramp {
	return &Ramp{min: min, max: max, alpha: 1}
}

// At returns the color for v. Out-of-range values are clamped and
// reported with the palette errors.
func (r *Ramp) At(v float64) (color.Color, error) {
	var err error
	switch {
	case math.IsNaN(v):
		return nil, palette.ErrNaN
	case v < r.min:
		err = palette.ErrUnderflow
	case v > r.max:
		err = palette.ErrOverflow
	}
	return r.rgba(RampColor(Normalize(v, r.min, r.max))), err
}

func (r *Ramp) rgba(c core.Color) color.Color {
	a := r.alpha
	return color.NRGBA{
		R: uint8(math.Round(float64(c[0]) * 255)),
		G: uint8(math.Round(float64(c[1]) * 255)),
		B: uint8(math.Round(float64(c[2]) * 255)),
		A: uint8(math.Round(a * 255)),
	}
}

func (r *Ramp) Max() float64       { return r.max }
func (r *Ramp) SetMax(v float64)   { r.max = v }
func (r *Ramp) Min() float64       { return r.min }
func (r *Ramp) SetMin(v float64)   { r.min = v }
func (r *Ramp) Alpha() float64     { return r.alpha }
func (r *Ramp) SetAlpha(a float64) { r.alpha = math.Max(0, math.Min(1, a)) }

// Palette samples n evenly spaced colors from the ramp.
func (r *Ramp) Palette(n int) palette.Palette {
	cols := make(colors, n)
	for i := range cols {
		t := 0.0
		if n > 1 {
			t = float64(i) / float64(n-1)
		}
		cols[i] = r.rgba(RampColor(t))
	}
	return cols
}

type colors []color.Color

func (c colors) Colors() []color.Color { return c }
