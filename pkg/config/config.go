// Package config loads viewer settings from TOML.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/chazu/brepview/pkg/brep"
	"github.com/chazu/brepview/pkg/gl"
	"github.com/pelletier/go-toml/v2"
	"github.com/samber/lo"
)

// Config is the full viewer configuration.
type Config struct {
	Render       Render       `toml:"render"`
	Selection    Selection    `toml:"selection"`
	Tessellation Tessellation `toml:"tessellation"`
	Camera       Camera       `toml:"camera"`
}

// Render controls the software raster and overlay passes.
type Render struct {
	Width          int     `toml:"width"`
	Height         int     `toml:"height"`
	Overlay        string  `toml:"overlay"` // "legacy" or "clean"
	PointSize      float32 `toml:"point_size"`
	SphereSegments int     `toml:"sphere_segments"`
	LineWidth      float32 `toml:"line_width"`
	Background     string  `toml:"background"`
	PickRadius     float32 `toml:"pick_radius"` // pixels
}

// Selection holds the overlay colors.
type Selection struct {
	HighlightColor string `toml:"highlight_color"`
	SelectionColor string `toml:"selection_color"`
}

// Tessellation controls how scene solids become faces, edges and vertices.
type Tessellation struct {
	Kernel       string  `toml:"kernel"` // "auto", "facet" or "sdfx"
	MeshCells    int     `toml:"mesh_cells"`
	FeatureAngle float64 `toml:"feature_angle"` // degrees
	WeldEpsilon  float64 `toml:"weld_epsilon"`
}

// Camera sets the initial projection.
type Camera struct {
	FovY float32 `toml:"fov"`
	Near float32 `toml:"near"`
	Far  float32 `toml:"far"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Render: Render{
			Width:          800,
			Height:         600,
			Overlay:        brep.OverlayLegacy.String(),
			PointSize:      brep.DefaultPointSize,
			SphereSegments: gl.DefaultSphereSegments,
			LineWidth:      2,
			Background:     "#202428",
			PickRadius:     5,
		},
		Selection: Selection{
			HighlightColor: brep.DefaultHighlightColor.Hex(),
			SelectionColor: brep.DefaultSelectionColor.Hex(),
		},
		Tessellation: Tessellation{
			Kernel:       "auto",
			MeshCells:    200,
			FeatureAngle: 30,
			WeldEpsilon:  1e-6,
		},
		Camera: Camera{
			FovY: 45,
			Near: 0.1,
			Far:  1000,
		},
	}
}

// Parse decodes TOML on top of the defaults. Unknown keys are an error.
func Parse(data []byte) (Config, error) {
	c := Default()
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&c); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return Config{}, fmt.Errorf("config: %s", strict.String())
		}
		return Config{}, fmt.Errorf("config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Load reads and parses a TOML file.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	c, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("%w (in %s)", err, path)
	}
	return c, nil
}

// Marshal encodes the configuration as TOML.
func (c Config) Marshal() ([]byte, error) {
	return toml.Marshal(c)
}

// Validate reports every invalid setting.
func (c Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf("config: "+format, args...))
		}
	}

	r := c.Render
	check(r.Width > 0 && r.Height > 0, "render size %dx%d must be positive", r.Width, r.Height)
	_, ok := brep.ParseOverlayOrder(r.Overlay)
	check(ok, "render.overlay %q must be legacy or clean", r.Overlay)
	check(r.PointSize > 0, "render.point_size must be positive")
	check(r.SphereSegments >= 3, "render.sphere_segments must be at least 3")
	check(r.LineWidth > 0, "render.line_width must be positive")
	check(r.PickRadius >= 0, "render.pick_radius must not be negative")

	for key, s := range map[string]string{
		"render.background":         r.Background,
		"selection.highlight_color": c.Selection.HighlightColor,
		"selection.selection_color": c.Selection.SelectionColor,
	} {
		_, err := gl.ParseColor(s)
		check(err == nil, "%s: %v", key, err)
	}

	t := c.Tessellation
	check(lo.Contains([]string{"auto", "facet", "sdfx"}, t.Kernel), "tessellation.kernel %q must be auto, facet or sdfx", t.Kernel)
	check(t.MeshCells > 0, "tessellation.mesh_cells must be positive")
	check(t.FeatureAngle > 0 && t.FeatureAngle < 180, "tessellation.feature_angle %g must be in (0, 180)", t.FeatureAngle)
	check(t.WeldEpsilon > 0, "tessellation.weld_epsilon must be positive")

	cam := c.Camera
	check(cam.FovY > 0 && cam.FovY < 180, "camera.fov %g must be in (0, 180)", cam.FovY)
	check(cam.Near > 0 && cam.Far > cam.Near, "camera near/far %g/%g must satisfy 0 < near < far", cam.Near, cam.Far)

	return errors.Join(errs...)
}

// OverlayOrder returns the parsed overlay order.
func (r Render) OverlayOrder() brep.OverlayOrder {
	o, _ := brep.ParseOverlayOrder(r.Overlay)
	return o
}

// Colors returns the parsed highlight and selection colors, falling back to
// the defaults for malformed values.
func (s Selection) Colors() (highlight, selection gl.Color) {
	highlight, selection = brep.DefaultHighlightColor, brep.DefaultSelectionColor
	if c, err := gl.ParseColor(s.HighlightColor); err == nil {
		highlight = c
	}
	if c, err := gl.ParseColor(s.SelectionColor); err == nil {
		selection = c
	}
	return highlight, selection
}

// BackgroundColor returns the parsed background color.
func (r Render) BackgroundColor() gl.Color {
	c, err := gl.ParseColor(r.Background)
	if err != nil {
		return gl.RGB(0, 0, 0)
	}
	return c
}
