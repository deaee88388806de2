package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"tankviewer/core"
	"tankviewer/geometry"
	"tankviewer/input"
	"tankviewer/stress"
)

type Settings struct {
	Window      WindowSettings      `json:"window"`
	Geometry    GeometrySettings    `json:"geometry"`
	Appearance  AppearanceSettings  `json:"appearance"`
	Interaction InteractionSettings `json:"interaction"`
	Stress      StressSettings      `json:"stress"`
	Bridge      BridgeSettings      `json:"bridge"`
}

type WindowSettings struct {
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Title  string `json:"title"`
	VSync  bool   `json:"vsync"`

	// PixelRatio overrides the ratio reported by the window when > 0.
	PixelRatio float64 `json:"pixelRatio,omitempty"`
}

type GeometrySettings struct {
	RevolutionSegments int `json:"revolutionSegments"`
	ProfileSamples     int `json:"profileSamples"` // used when no profile file is given
}

// Look is the base color and opacity of one mesh class
type Look struct {
	Color   core.Color `json:"color"`
	Opacity float64    `json:"opacity"`
}

type AppearanceSettings struct {
	Liner     Look         `json:"liner"`
	Layer     Look         `json:"layer"`
	Outer     Look         `json:"outer"`
	Boss      Look         `json:"boss"`
	Wireframe bool         `json:"wireframe"`
	ShowBoss  bool         `json:"showBoss"`
	Clip      ClipSettings `json:"clip"`
}

// ClipSettings is the cross-section state at startup
type ClipSettings struct {
	Enabled bool    `json:"enabled"`
	Axis    string  `json:"axis"`
	Offset  float64 `json:"offset"`
}

type InteractionSettings struct {
	ClickThreshold    float64 `json:"clickThreshold"`
	RotateSensitivity float64 `json:"rotateSensitivity"`
	ZoomStep          float64 `json:"zoomStep"`
	PanStep           float64 `json:"panStep"`
	PickHonorsClip    bool    `json:"pickHonorsClip"`
}

type StressSettings struct {
	Mode         string   `json:"mode"` // "nearest" or "axial"
	SearchRadius float64  `json:"searchRadius"`
	Min          *float64 `json:"min,omitempty"`
	Max          *float64 `json:"max,omitempty"`
}

type BridgeSettings struct {
	Addr string `json:"addr"` // empty disables the websocket bridge
}

// ErrInvalid is wrapped by Validate.
var ErrInvalid = errors.New("config: invalid settings")

// Default returns the built-in settings.
func Default() Settings {
	opts := input.DefaultOptions()
	return Settings{
		Window: WindowSettings{
			Width:  1280,
			Height: 800,
			Title:  "Composite Tank Viewer",
			VSync:  true,
		},
		Geometry: GeometrySettings{
			RevolutionSegments: geometry.DefaultSegments,
			ProfileSamples:     32,
		},
		Appearance: AppearanceSettings{
			Liner:    Look{Color: core.RGB(0.75, 0.77, 0.80), Opacity: 1},
			Layer:    Look{Color: core.RGB(0.20, 0.45, 0.80), Opacity: 0.85},
			Outer:    Look{Color: core.RGB(0.85, 0.85, 0.90), Opacity: 0.3},
			Boss:     Look{Color: core.RGB(0.55, 0.55, 0.58), Opacity: 1},
			ShowBoss: true,
			Clip:     ClipSettings{Axis: "x"},
		},
		Interaction: InteractionSettings{
			ClickThreshold:    opts.ClickThreshold,
			RotateSensitivity: opts.RotateSensitivity,
			ZoomStep:          opts.ZoomStep,
			PanStep:           opts.PanStep,
		},
		Stress: StressSettings{
			Mode: "nearest",
		},
	}
}

// Load reads settings from path on top of the defaults. A missing file
// is not an error.
func Load(path string) (Settings, error) {
	s := Default()

	// Try to load from file
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			fmt.Printf("No %s found, using defaults\n", path)
			return s, nil
		}
		return s, err
	}
	defer file.Close()

	decoder := json.NewDecoder(file)
	if err := decoder.Decode(&s); err != nil {
		return s, fmt.Errorf("error parsing %s: %w", path, err)
	}
	if err := s.Validate(); err != nil {
		return s, err
	}

	fmt.Printf("Loaded settings: %d revolution segments, stress mode %s\n",
		s.Geometry.RevolutionSegments, s.Stress.Mode)
	return s, nil
}

// Validate checks ranges.
func (s Settings) Validate() error {
	switch {
	case s.Window.Width <= 0 || s.Window.Height <= 0:
		return fmt.Errorf("%w: window %dx%d", ErrInvalid, s.Window.Width, s.Window.Height)
	case s.Geometry.RevolutionSegments < geometry.MinSegments:
		return fmt.Errorf("%w: revolutionSegments %d below %d", ErrInvalid, s.Geometry.RevolutionSegments, geometry.MinSegments)
	case s.Geometry.ProfileSamples < 2:
		return fmt.Errorf("%w: profileSamples %d", ErrInvalid, s.Geometry.ProfileSamples)
	case s.Interaction.ClickThreshold <= 0:
		return fmt.Errorf("%w: clickThreshold %g", ErrInvalid, s.Interaction.ClickThreshold)
	case s.Interaction.ZoomStep <= 1:
		return fmt.Errorf("%w: zoomStep %g must exceed 1", ErrInvalid, s.Interaction.ZoomStep)
	case s.Window.PixelRatio < 0:
		return fmt.Errorf("%w: pixelRatio %g", ErrInvalid, s.Window.PixelRatio)
	case s.Appearance.Clip.Offset < -1 || s.Appearance.Clip.Offset > 1:
		return fmt.Errorf("%w: clip offset %g outside [-1,1]", ErrInvalid, s.Appearance.Clip.Offset)
	case s.Stress.SearchRadius < 0:
		return fmt.Errorf("%w: searchRadius %g", ErrInvalid, s.Stress.SearchRadius)
	case s.Stress.Min != nil && s.Stress.Max != nil && *s.Stress.Max < *s.Stress.Min:
		return fmt.Errorf("%w: stress range [%g, %g]", ErrInvalid, *s.Stress.Min, *s.Stress.Max)
	}
	if _, ok := core.ParseAxis(s.Appearance.Clip.Axis); !ok {
		return fmt.Errorf("%w: clip axis %q", ErrInvalid, s.Appearance.Clip.Axis)
	}
	if _, err := stress.ParseMode(s.Stress.Mode); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	for name, look := range map[string]Look{
		"liner": s.Appearance.Liner, "layer": s.Appearance.Layer,
		"outer": s.Appearance.Outer, "boss": s.Appearance.Boss,
	} {
		if look.Opacity < 0 || look.Opacity > 1 {
			return fmt.Errorf("%w: %s opacity %g", ErrInvalid, name, look.Opacity)
		}
	}
	return nil
}

// ControllerOptions converts the interaction settings.
func (s Settings) ControllerOptions() input.Options {
	opts := input.DefaultOptions()
	opts.ClickThreshold = s.Interaction.ClickThreshold
	opts.RotateSensitivity = s.Interaction.RotateSensitivity
	opts.ZoomStep = s.Interaction.ZoomStep
	opts.PanStep = s.Interaction.PanStep
	return opts
}

// StressOptions converts the stress settings. The mode is assumed valid.
func (s Settings) StressOptions() stress.Options {
	mode, _ := stress.ParseMode(s.Stress.Mode)
	opts := stress.Options{Mode: mode, SearchRadius: s.Stress.SearchRadius}
	if s.Stress.Min != nil && s.Stress.Max != nil {
		opts.Range = &stress.Range{Min: *s.Stress.Min, Max: *s.Stress.Max}
	}
	return opts
}

// ClipAxis returns the startup cross-section axis. The axis is assumed valid.
func (s Settings) ClipAxis() core.Axis {
	axis, _ := core.ParseAxis(s.Appearance.Clip.Axis)
	return axis
}

// LookFor returns the appearance of a mesh id.
func (s Settings) LookFor(id core.MeshID) Look {
	switch {
	case id == core.LinerID:
		return s.Appearance.Liner
	case id == core.OuterID:
		return s.Appearance.Outer
	case id.IsBoss():
		return s.Appearance.Boss
	}
	return s.Appearance.Layer
}
