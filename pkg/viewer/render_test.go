package viewer

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"math"
	"testing"

	"github.com/philipparndt/plmview/pkg/geometry"
	"github.com/philipparndt/plmview/pkg/scene"
	"github.com/philipparndt/plmview/pkg/stl"
)

func plateViewer(t *testing.T) *scene.Viewer {
	t.Helper()
	m := stl.NewModel("plate")
	m.AddTriangle(geometry.NewVector3(0, 0, 0), geometry.NewVector3(10, 0, 0), geometry.NewVector3(10, 10, 0))
	m.AddTriangle(geometry.NewVector3(0, 0, 0), geometry.NewVector3(10, 10, 0), geometry.NewVector3(0, 10, 0))
	m.ComputeFaceNormals()

	group, parts := scene.NewSingleMesh(m)
	opts := scene.DefaultOptions()
	opts.Group = group
	opts.Parts = parts
	opts.Width, opts.Height = 100, 100
	v := scene.New(opts)
	if err := v.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	return v
}

func TestFillTriangleWithDepth(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 10, 10))
	zbuffer := make([]float64, 100)
	for i := range zbuffer {
		zbuffer[i] = math.Inf(1)
	}
	red := color.RGBA{255, 0, 0, 255}
	blue := color.RGBA{0, 0, 255, 255}

	fillTriangleWithDepth(img, zbuffer, 0, 0, 5, 9, 0, 5, 0, 9, 5, red)
	if img.RGBAAt(1, 1) != red {
		t.Errorf("expected red inside triangle, got %v", img.RGBAAt(1, 1))
	}
	if img.RGBAAt(9, 9) == red {
		t.Errorf("pixel outside triangle was filled")
	}

	// farther triangle must not overwrite
	fillTriangleWithDepth(img, zbuffer, 0, 0, 8, 9, 0, 8, 0, 9, 8, blue)
	if img.RGBAAt(1, 1) != red {
		t.Errorf("depth test failed, got %v", img.RGBAAt(1, 1))
	}
}

func TestBlend(t *testing.T) {
	got := blend(color.RGBA{0, 0, 0, 255}, color.RGBA{255, 255, 255, 128})
	if got.R < 127 || got.R > 129 || got.A != 255 {
		t.Errorf("unexpected blend result %v", got)
	}
}

func TestRenderDrawsModel(t *testing.T) {
	v := plateViewer(t)
	v.SetTransparency(false)
	frame, err := v.Frame()
	if err != nil {
		t.Fatalf("Frame failed: %v", err)
	}

	img := Render(frame, 100, 100)

	background := color.RGBA{255, 255, 255, 255}
	if img.RGBAAt(50, 50) == background {
		t.Errorf("model not drawn at the centre")
	}
	if img.RGBAAt(0, 0) != background {
		t.Errorf("expected background in the corner, got %v", img.RGBAAt(0, 0))
	}
}

func TestRenderHiddenPart(t *testing.T) {
	v := plateViewer(t)
	v.TogglePart(scene.SinglePartID)
	frame, _ := v.Frame()

	img := Render(frame, 50, 50)
	if img.RGBAAt(25, 25) != (color.RGBA{255, 255, 255, 255}) {
		t.Errorf("hidden part was drawn")
	}
}

func TestThumbnail(t *testing.T) {
	v := plateViewer(t)
	v.Resize(200, 100)
	frame, _ := v.Frame()

	img := Thumbnail(frame, 64)
	if b := img.Bounds(); b.Dx() != 64 || b.Dy() != 32 {
		t.Errorf("expected 64x32 thumbnail, got %v", b)
	}

	var buf bytes.Buffer
	if err := WritePNG(&buf, img); err != nil {
		t.Fatalf("WritePNG failed: %v", err)
	}
	decoded, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("png.Decode failed: %v", err)
	}
	if decoded.Bounds() != img.Bounds() {
		t.Errorf("decoded bounds %v, expected %v", decoded.Bounds(), img.Bounds())
	}
}
