package stress

import (
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// WriteLegend renders a horizontal color bar for the ramp's range to
// path. The image format follows the file extension.
func WriteLegend(path string, ramp *Ramp, label string) error {
	cm := NewRamp(ramp.Min(), ramp.Max())
	if cm.Max() <= cm.Min() {
		cm.SetMax(cm.Min() + 1)
	}

	p := plot.New()
	p.Title.Text = label
	p.X.Label.Text = "stress"
	p.HideY()
	p.Add(&plotter.ColorBar{ColorMap: cm, Colors: 64})

	if err := p.Save(12*vg.Centimeter, 4*vg.Centimeter, path); err != nil {
		return fmt.Errorf("stress: write legend %s: %w", path, err)
	}
	return nil
}
