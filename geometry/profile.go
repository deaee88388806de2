package geometry

import (
	"errors"
	"fmt"
	"math"

	"tankviewer/core"
)

var (
	// ErrDegenerateProfile reports a dome profile that cannot be revolved.
	ErrDegenerateProfile = errors.New("geometry: degenerate dome profile")
	// ErrInvalidDesign reports design dimensions that cannot produce a mesh.
	ErrInvalidDesign = errors.New("geometry: invalid design")
)

// junctionTolerance is the allowed relative mismatch between the last
// profile radius and the design's cylinder radius.
const junctionTolerance = 0.01

// ValidateProfile checks the dome profile invariants: at least two
// samples, strictly monotonic z, and r non-decreasing from apex to
// cylinder junction.
func ValidateProfile(profile []core.ProfilePoint) error {
	if len(profile) < 2 {
		return fmt.Errorf("%w: %d samples, need at least 2", ErrDegenerateProfile, len(profile))
	}
	for i, p := range profile {
		if math.IsNaN(p.R) || math.IsNaN(p.Z) || math.IsInf(p.R, 0) || math.IsInf(p.Z, 0) {
			return fmt.Errorf("%w: sample %d is not finite", ErrDegenerateProfile, i)
		}
		if p.R < 0 {
			return fmt.Errorf("%w: sample %d has negative radius %g", ErrDegenerateProfile, i, p.R)
		}
	}
	increasing := profile[1].Z > profile[0].Z
	for i := 1; i < len(profile); i++ {
		dz := profile[i].Z - profile[i-1].Z
		if dz == 0 || (dz > 0) != increasing {
			return fmt.Errorf("%w: z not strictly monotonic at sample %d", ErrDegenerateProfile, i)
		}
		if profile[i].R < profile[i-1].R {
			return fmt.Errorf("%w: r decreases toward the cylinder at sample %d", ErrDegenerateProfile, i)
		}
	}
	if profile[len(profile)-1].R == 0 {
		return fmt.Errorf("%w: profile never leaves the axis", ErrDegenerateProfile)
	}
	return nil
}

// ValidateDesign checks the dimensions the builder depends on.
func ValidateDesign(d core.DesignGeometry) error {
	switch {
	case !(d.CylinderRadius > 0):
		return fmt.Errorf("%w: cylinder radius %g", ErrInvalidDesign, d.CylinderRadius)
	case d.TotalLength < 0 || math.IsNaN(d.TotalLength):
		return fmt.Errorf("%w: total length %g", ErrInvalidDesign, d.TotalLength)
	case !(d.DomeDepth > 0):
		return fmt.Errorf("%w: dome depth %g", ErrInvalidDesign, d.DomeDepth)
	case d.OuterRadius < 0:
		return fmt.Errorf("%w: outer radius %g", ErrInvalidDesign, d.OuterRadius)
	case d.BossBoreRadius < 0 || d.BossBoreRadius >= d.CylinderRadius:
		return fmt.Errorf("%w: boss bore radius %g", ErrInvalidDesign, d.BossBoreRadius)
	}
	outer, bore, length := d.BossGeometry()
	if outer < bore || length < 0 {
		return fmt.Errorf("%w: boss outer radius %g smaller than bore %g", ErrInvalidDesign, outer, bore)
	}
	for i, l := range d.Layers {
		if l.Type != core.Helical && l.Type != core.Hoop {
			return fmt.Errorf("%w: layer %d has unknown type %q", ErrInvalidDesign, i, l.Type)
		}
		if !(l.Thickness > 0) {
			return fmt.Errorf("%w: layer %d thickness %g", ErrInvalidDesign, i, l.Thickness)
		}
	}
	return nil
}

// checkJunction makes sure the profile meets the cylinder wall.
func checkJunction(d core.DesignGeometry, profile []core.ProfilePoint) error {
	r := profile[len(profile)-1].R
	if math.Abs(r-d.CylinderRadius) > junctionTolerance*d.CylinderRadius {
		return fmt.Errorf("%w: junction radius %g does not meet cylinder radius %g",
			ErrDegenerateProfile, r, d.CylinderRadius)
	}
	return nil
}

// EllipticalProfile samples an ellipsoidal dome of the given radius and
// depth from apex to junction. It stands in for the isotensoid solver
// when no physics profile is available.
func EllipticalProfile(radius, depth float64, samples int) []core.ProfilePoint {
	if samples < 2 {
		samples = 2
	}
	profile := make([]core.ProfilePoint, samples)
	for i := range profile {
		phi := float64(i) / float64(samples-1) * math.Pi / 2
		profile[i] = core.ProfilePoint{
			R: radius * math.Sin(phi),
			Z: depth * math.Cos(phi),
		}
	}
	profile[samples-1].Z = 0
	return profile
}
