package main

import (
	"bytes"
	"encoding/base64"
	"image/png"
	"os"
	"testing"

	"github.com/chazu/brepview/pkg/config"
)

// decodeImage checks that s is a base64 PNG and returns its size.
func decodeImage(t *testing.T, s string) (int, int) {
	t.Helper()
	if s == "" {
		t.Fatal("expected an image")
	}
	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		t.Fatalf("image is not base64: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("image is not a PNG: %v", err)
	}
	b := img.Bounds()
	return b.Dx(), b.Dy()
}

// fastConfig keeps the sampled kernel coarse so boolean scenes mesh quickly.
func fastConfig() config.Config {
	cfg := config.Default()
	cfg.Tessellation.MeshCells = 48
	return cfg
}

// TestE2ECubeExample exercises the full pipeline: Lisp source → engine → graph
// → tessellate → view → PNG. This is the same path that the Wails Evaluate
// binding takes, but without the Wails runtime.
func TestE2ECubeExample(t *testing.T) {
	app := NewApp()

	source, err := os.ReadFile("examples/cube.scene")
	if err != nil {
		t.Fatalf("failed to read cube.scene: %v", err)
	}

	result := app.Evaluate(string(source))

	// No errors expected.
	if len(result.Errors) > 0 {
		for _, e := range result.Errors {
			t.Errorf("eval error (line %d): %s", e.Line, e.Message)
		}
		t.FailNow()
	}
	if len(result.Warnings) > 0 {
		t.Errorf("unexpected warnings: %v", result.Warnings)
	}

	if len(result.Shapes) != 1 {
		t.Fatalf("expected 1 shape, got %d", len(result.Shapes))
	}
	s := result.Shapes[0]
	if s.Name != "cube" {
		t.Errorf("expected shape name 'cube', got %q", s.Name)
	}
	if s.Faces != 6 || s.Edges != 12 || s.Vertices != 8 || s.Triangles != 12 {
		t.Errorf("cube topology = %d faces, %d edges, %d vertices, %d triangles", s.Faces, s.Edges, s.Vertices, s.Triangles)
	}
	if s.Kernel != "facet" {
		t.Errorf("expected the exact kernel, got %q", s.Kernel)
	}
	// No :color in the script, so the palette applies.
	if s.Color != colorPalette[0] {
		t.Errorf("expected palette color %s, got %s", colorPalette[0], s.Color)
	}

	w, h := decodeImage(t, result.Image)
	if w != 800 || h != 600 {
		t.Errorf("image is %dx%d, want 800x600", w, h)
	}

	// The scripted selections were replayed onto the view.
	sel := app.view.Selected()
	if len(sel) != 3 {
		t.Fatalf("expected 3 selected elements, got %d: %v", len(sel), sel)
	}
	want := []string{"cube face 0", "cube edge 3", "cube vertex 5"}
	for i, h := range sel {
		if h.String() != want[i] {
			t.Errorf("selection %d = %q, want %q", i, h.String(), want[i])
		}
	}
}

// TestE2EBracketExample runs a scene with booleans, which falls back to the
// sampled kernel.
func TestE2EBracketExample(t *testing.T) {
	app := NewAppWithConfig(fastConfig())

	source, err := os.ReadFile("examples/bracket.scene")
	if err != nil {
		t.Fatalf("failed to read bracket.scene: %v", err)
	}

	result := app.Evaluate(string(source))
	if len(result.Errors) > 0 {
		for _, e := range result.Errors {
			t.Errorf("eval error (line %d): %s", e.Line, e.Message)
		}
		t.FailNow()
	}

	if len(result.Shapes) != 2 {
		t.Fatalf("expected 2 shapes, got %d", len(result.Shapes))
	}
	if result.Shapes[0].Name != "bracket" || result.Shapes[1].Name != "pin" {
		t.Errorf("shapes out of order: %v", result.Shapes)
	}
	if result.Shapes[0].Color != "#cc8844" {
		t.Errorf("bracket color = %q", result.Shapes[0].Color)
	}
	for _, s := range result.Shapes {
		if s.Kernel != "sdfx" {
			t.Errorf("shape %q: booleans fall back to sdfx, got %q", s.Name, s.Kernel)
		}
		if s.Faces == 0 || s.Triangles == 0 {
			t.Errorf("shape %q has no geometry: %+v", s.Name, s)
		}
	}
	decodeImage(t, result.Image)

	hl, ok := app.view.Highlighted()
	if !ok || hl.Object != "bracket" || hl.Index != 0 {
		t.Errorf("expected bracket face 0 highlighted, got %v (%v)", hl, ok)
	}
	for _, h := range app.view.Selected() {
		if h.Object != "pin" {
			t.Errorf("only the pin should be selected, got %v", h)
		}
	}
}

// TestE2EEmptySource ensures the pipeline handles empty input gracefully.
func TestE2EEmptySource(t *testing.T) {
	app := NewApp()
	result := app.Evaluate("")

	if len(result.Errors) > 0 {
		t.Errorf("unexpected errors for empty source: %v", result.Errors)
	}
	if len(result.Shapes) != 0 {
		t.Errorf("expected 0 shapes for empty source, got %d", len(result.Shapes))
	}
}

// TestE2ESyntaxError ensures eval errors are reported, not fatal errors.
func TestE2ESyntaxError(t *testing.T) {
	app := NewApp()
	result := app.Evaluate("(shape \"test\"")

	if len(result.Errors) == 0 {
		t.Fatal("expected eval errors for syntax error")
	}
	if len(result.Shapes) != 0 {
		t.Errorf("expected 0 shapes on error, got %d", len(result.Shapes))
	}
	if result.Image != "" {
		t.Error("no image on error")
	}
}

// TestE2ESingleShape ensures a minimal source renders one shape.
func TestE2ESingleShape(t *testing.T) {
	app := NewApp()
	source := `(shape "shelf" (box 600 300 18) :color "#8B5A2B")`
	result := app.Evaluate(source)

	if len(result.Errors) > 0 {
		for _, e := range result.Errors {
			t.Errorf("eval error: %s", e.Message)
		}
		t.FailNow()
	}
	if len(result.Shapes) != 1 {
		t.Fatalf("expected 1 shape, got %d", len(result.Shapes))
	}
	if result.Shapes[0].Name != "shelf" {
		t.Errorf("expected shape name 'shelf', got %q", result.Shapes[0].Name)
	}
	if result.Shapes[0].Color != "#8B5A2B" {
		t.Errorf("expected script color, got %q", result.Shapes[0].Color)
	}
}
