package viewer

import (
	"encoding/json"
	"fmt"
	"os"

	"tankviewer/core"
	"tankviewer/geometry"
	"tankviewer/stress"
)

// Inputs is everything one viewing job reads from disk
type Inputs struct {
	Design  core.DesignGeometry
	Profile []core.ProfilePoint
	Field   stress.Field
}

// SampleDesign is shown when no design file is given: a 300 mm cylinder
// with a helical/hoop/helical stack.
func SampleDesign() core.DesignGeometry {
	return core.DesignGeometry{
		TotalLength:    300,
		CylinderRadius: 75,
		DomeDepth:      60,
		BossBoreRadius: 10,
		Layers: []core.Layer{
			{Type: core.Helical, Thickness: 2.0, Angle: 15},
			{Type: core.Hoop, Thickness: 1.5, Angle: 88},
			{Type: core.Helical, Thickness: 2.0, Angle: 25},
		},
	}
}

// ReadInputs loads a design, a dome profile and a stress field. Empty
// paths fall back to the sample design, an elliptical dome with the given
// number of samples, and no stress field.
func ReadInputs(designPath, profilePath, stressPath string, samples int) (Inputs, error) {
	in := Inputs{Design: SampleDesign()}
	if designPath != "" {
		if err := readJSON(designPath, &in.Design); err != nil {
			return in, err
		}
	}

	if profilePath != "" {
		if err := readJSON(profilePath, &in.Profile); err != nil {
			return in, err
		}
	} else {
		in.Profile = geometry.EllipticalProfile(in.Design.CylinderRadius, in.Design.DomeDepth, samples)
	}

	if stressPath != "" {
		if err := readJSON(stressPath, &in.Field); err != nil {
			return in, err
		}
	}
	return in, nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("error parsing %s: %w", path, err)
	}
	return nil
}
