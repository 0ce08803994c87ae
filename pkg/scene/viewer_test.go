package scene

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"math"
	"math/rand"
	"sync"
	"testing"

	"github.com/philipparndt/plmview/pkg/geometry"
	"github.com/philipparndt/plmview/pkg/stl"
)

func cubeModel(size float64) *stl.Model {
	m := stl.NewModel("cube")
	p := func(x, y, z float64) geometry.Vector3 { return geometry.NewVector3(x*size, y*size, z*size) }
	m.AddTriangle(p(0, 0, 0), p(1, 0, 0), p(1, 1, 0))
	m.AddTriangle(p(0, 0, 0), p(1, 1, 0), p(0, 1, 0))
	m.AddTriangle(p(0, 0, 1), p(1, 0, 1), p(1, 1, 1))
	m.AddTriangle(p(0, 0, 1), p(1, 1, 1), p(0, 1, 1))
	m.ComputeFaceNormals()
	return m
}

func newTestViewer(t *testing.T) *Viewer {
	t.Helper()
	group, parts := NewSingleMesh(cubeModel(10))
	opts := DefaultOptions()
	opts.Group = group
	opts.Parts = parts
	v := New(opts)
	if err := v.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	return v
}

type bytesFetcher struct {
	data []byte
	err  error
}

func (f bytesFetcher) Fetch(ctx context.Context, location string) ([]byte, error) {
	return f.data, f.err
}

func TestViewerInit(t *testing.T) {
	v := newTestViewer(t)

	if v.Radius() != 10 {
		t.Errorf("Radius failed: expected 10, got %v", v.Radius())
	}

	cam := v.Camera()
	if cam.FOV != 40 || cam.Near != 10.0/50 || cam.Far != 10*200 {
		t.Errorf("camera failed: got fov %v near %v far %v", cam.FOV, cam.Near, cam.Far)
	}
	if cam.Position != geometry.NewVector3(0, 0, 15) {
		t.Errorf("camera position failed: got %v", cam.Position)
	}

	expected := geometry.NewVector3(-5, -5, -5)
	if got := v.Group().Position; got != expected {
		t.Errorf("centering failed: expected %v, got %v", expected, got)
	}

	m := v.Group().Children[0].Material
	if m.Color != SingleMeshColor || m.Opacity != 0.8 || m.Shininess != 200 {
		t.Errorf("material failed: got %+v", m)
	}
	if m.OriginalColor != SingleMeshColor || m.OriginalStepColor != SingleMeshColor || m.OriginalOpacity != 0.8 {
		t.Errorf("baseline failed: got %+v", m)
	}
	if v.Zoom() != 50 {
		t.Errorf("Zoom failed: expected 50, got %v", v.Zoom())
	}
}

func TestViewerInitTwice(t *testing.T) {
	v := newTestViewer(t)
	before := v.Version()
	if err := v.Init(); err != nil {
		t.Fatalf("second Init failed: %v", err)
	}
	if v.Version() != before {
		t.Errorf("second Init changed the scene")
	}
}

func TestViewerNoRenderer(t *testing.T) {
	opts := DefaultOptions()
	opts.Group = NewGroup()
	opts.HasRenderer = func() bool { return false }
	v := New(opts)

	if err := v.Init(); !errors.Is(err, ErrRendererUnavailable) {
		t.Fatalf("Init failed: expected ErrRendererUnavailable, got %v", err)
	}
	if v.Warning() != RendererWarning {
		t.Errorf("Warning failed: got %q", v.Warning())
	}
	if err := v.ZoomIn(); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("ZoomIn before Init: expected ErrNotInitialized, got %v", err)
	}
}

func TestViewerNoScene(t *testing.T) {
	v := New(DefaultOptions())
	if err := v.Init(); !errors.Is(err, ErrNoScene) {
		t.Errorf("Init failed: expected ErrNoScene, got %v", err)
	}
}

func TestViewerEmptyGroupRadius(t *testing.T) {
	opts := DefaultOptions()
	opts.Group = NewGroup()
	v := New(opts)
	if err := v.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	if v.Radius() != 1 {
		t.Errorf("Radius failed: expected fallback 1, got %v", v.Radius())
	}
}

func TestViewerLoadSTL(t *testing.T) {
	var buf bytes.Buffer
	if err := stl.WriteBinary(&buf, cubeModel(4)); err != nil {
		t.Fatalf("WriteBinary failed: %v", err)
	}

	opts := DefaultOptions()
	opts.STLFile = "cube.stl"
	v := New(opts)
	if err := v.Load(context.Background(), bytesFetcher{data: buf.Bytes()}); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	part, ok := v.Graph().Object(SinglePartID)
	if !ok {
		t.Fatalf("Load failed: %s not registered", SinglePartID)
	}
	if part.Mesh.TriangleCount() != 4 {
		t.Errorf("Load failed: expected 4 triangles, got %d", part.Mesh.TriangleCount())
	}
	if v.Radius() != 4 {
		t.Errorf("Radius failed: expected 4, got %v", v.Radius())
	}
	if v.Menu() != nil {
		t.Errorf("Menu failed: expected none for a single STL")
	}
}

func TestViewerLoadTruncated(t *testing.T) {
	var buf bytes.Buffer
	if err := stl.WriteBinary(&buf, cubeModel(4)); err != nil {
		t.Fatalf("WriteBinary failed: %v", err)
	}
	data := buf.Bytes()[:buf.Len()-60]

	opts := DefaultOptions()
	opts.STLFile = "cube.stl"
	v := New(opts)
	if err := v.Load(context.Background(), bytesFetcher{data: data}); err != nil {
		t.Fatalf("Load of truncated file failed: %v", err)
	}
	part, _ := v.Graph().Object(SinglePartID)
	if part.Mesh.TriangleCount() != 2 {
		t.Errorf("expected 2 complete triangles, got %d", part.Mesh.TriangleCount())
	}
}

func TestViewerLoadBadNumber(t *testing.T) {
	text := "solid x\n" +
		"facet normal 0 0 1 outer loop vertex a 0 0 vertex 1 0 0 vertex 0 1 0 endloop endfacet\n" +
		"facet normal 0 0 1 outer loop vertex 0 0 0 vertex 2 0 0 vertex 0 2 0 endloop endfacet\n" +
		"endsolid\n"

	opts := DefaultOptions()
	opts.STLFile = "bad.stl"
	v := New(opts)
	if err := v.Load(context.Background(), bytesFetcher{data: []byte(text)}); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if r := v.Radius(); math.IsNaN(r) || math.IsInf(r, 0) || r != 2 {
		t.Errorf("Radius failed: expected 2, got %v", r)
	}
	if pos := v.Camera().Position; math.IsNaN(pos.Z) {
		t.Errorf("camera position failed: got %v", pos)
	}
	if _, err := json.Marshal(v.State()); err != nil {
		t.Errorf("State not serializable: %v", err)
	}
}

func TestViewerLoadFetchError(t *testing.T) {
	opts := DefaultOptions()
	opts.STLFile = "missing.stl"
	v := New(opts)

	fetchErr := errors.New("boom")
	if err := v.Load(context.Background(), bytesFetcher{err: fetchErr}); !errors.Is(err, fetchErr) {
		t.Errorf("Load failed: expected fetch error, got %v", err)
	}
	if v.Initialized() {
		t.Errorf("viewer initialized after failed fetch")
	}
}

func TestSetScaleIdempotent(t *testing.T) {
	v := newTestViewer(t)

	if err := v.SetScale(30); err != nil {
		t.Fatalf("SetScale failed: %v", err)
	}
	first := v.Camera().Position
	if err := v.SetScale(30); err != nil {
		t.Fatalf("SetScale failed: %v", err)
	}
	if got := v.Camera().Position; got != first {
		t.Errorf("SetScale not idempotent: %v then %v", first, got)
	}

	// 20 zoom units at radius 10 move the camera by 1.5 * 10 * 20 / 50
	if math.Abs(first.Z-(15+6)) > 1e-9 {
		t.Errorf("SetScale failed: expected z 21, got %v", first.Z)
	}
}

func TestZoomClamps(t *testing.T) {
	v := newTestViewer(t)

	for i := 0; i < 20; i++ {
		if err := v.ZoomIn(); err != nil {
			t.Fatalf("ZoomIn failed: %v", err)
		}
	}
	if v.Zoom() != 100 {
		t.Errorf("ZoomIn failed: expected 100, got %v", v.Zoom())
	}
	position := v.Camera().Position
	v.ZoomIn()
	if v.Zoom() != 100 || v.Camera().Position != position {
		t.Errorf("ZoomIn at 100 moved the camera")
	}

	for i := 0; i < 20; i++ {
		v.ZoomOut()
	}
	if v.Zoom() != 0 {
		t.Errorf("ZoomOut failed: expected 0, got %v", v.Zoom())
	}

	v.SetScale(250)
	if v.Zoom() != 100 {
		t.Errorf("SetScale failed: expected clamp to 100, got %v", v.Zoom())
	}
}

func TestFitAllRestoresCamera(t *testing.T) {
	v := newTestViewer(t)
	start := v.Camera().Position

	v.ZoomIn()
	v.ZoomIn()
	v.FitAll()

	if got := v.Camera().Position; got.Distance(start) > 1e-9 {
		t.Errorf("FitAll failed: expected %v, got %v", start, got)
	}
}

func TestWheel(t *testing.T) {
	v := newTestViewer(t)

	v.Wheel(WheelDelta(120, 0))
	if v.Zoom() != 53 {
		t.Errorf("Wheel failed: expected 53, got %v", v.Zoom())
	}

	v.Wheel(WheelDelta(0, 2))
	if v.Zoom() != 50 {
		t.Errorf("Wheel failed: expected 50, got %v", v.Zoom())
	}

	v.SetScale(6)
	v.Wheel(-3)
	if v.Zoom() != 6 {
		t.Errorf("Wheel below 5 should be ignored, got %v", v.Zoom())
	}
}

func TestViewRearEqualsFrontTurned(t *testing.T) {
	v := newTestViewer(t)
	v.Drag(0.3, -0.2)
	v.Tick()

	if err := v.View(ViewFront); err != nil {
		t.Fatalf("View failed: %v", err)
	}
	expected := v.Pivot()
	expected.RotateAroundObjectAxis(geometry.NewVector3(0, 0, 1), math.Pi)

	if err := v.View(ViewRear); err != nil {
		t.Fatalf("View failed: %v", err)
	}
	if got := v.Pivot(); got.Matrix != expected.Matrix {
		t.Errorf("rear view failed: expected %v, got %v", expected.Matrix, got.Matrix)
	}
}

func TestViewTopFollowsCamera(t *testing.T) {
	v := newTestViewer(t)

	v.View(ViewTop)
	if got := v.Pivot().Matrix; got != geometry.Identity() {
		t.Errorf("top view failed: expected identity, got %v", got)
	}

	v.View(ViewFront)
	// front turns -90 degrees about X: +Y points away from the camera
	got := v.Pivot().Matrix.TransformDirection(geometry.NewVector3(0, 1, 0))
	if got.Distance(geometry.NewVector3(0, 0, -1)) > 1e-9 {
		t.Errorf("front view failed: +Y maps to %v", got)
	}
}

func TestViewUnknown(t *testing.T) {
	v := newTestViewer(t)
	if err := v.View("sideways"); !errors.Is(err, ErrUnknownView) {
		t.Errorf("View failed: expected ErrUnknownView, got %v", err)
	}
}

func TestRandomAndReinitColor(t *testing.T) {
	v := newTestViewer(t)
	part := v.Group().Children[0]

	if err := v.RandomColor(rand.New(rand.NewSource(1))); err != nil {
		t.Fatalf("RandomColor failed: %v", err)
	}
	if part.Material.Color != part.Material.OriginalColor {
		t.Errorf("RandomColor failed: original colour not updated")
	}
	if part.Material.OriginalStepColor != SingleMeshColor {
		t.Errorf("RandomColor changed the step colour")
	}

	v.HighlightPart(SinglePartID)
	v.UnhighlightPart(SinglePartID)
	if part.Material.Color != part.Material.OriginalColor {
		t.Errorf("unhighlight did not restore the random colour")
	}

	v.ReinitColor()
	if part.Material.Color != SingleMeshColor || part.Material.OriginalColor != SingleMeshColor {
		t.Errorf("ReinitColor failed: got %v", part.Material.Color)
	}
}

func TestTransparencyAndAxis(t *testing.T) {
	v := newTestViewer(t)
	part := v.Group().Children[0]

	v.SetTransparency(false)
	if part.Material.Opacity != 1 {
		t.Errorf("opaque failed: got %v", part.Material.Opacity)
	}
	v.SetTransparency(true)
	if part.Material.Opacity != 0.8 {
		t.Errorf("transparent failed: got %v", part.Material.Opacity)
	}

	v.SetAxisVisible(true)
	frame, err := v.Frame()
	if err != nil {
		t.Fatalf("Frame failed: %v", err)
	}
	if len(frame.Arrows) != 3 {
		t.Errorf("axis failed: expected 3 arrows, got %d", len(frame.Arrows))
	}

	v.SetAxisVisible(false)
	frame, _ = v.Frame()
	if len(frame.Arrows) != 0 {
		t.Errorf("axis failed: expected no arrows, got %d", len(frame.Arrows))
	}
}

func TestPartCommandsBeforeInit(t *testing.T) {
	group, parts := NewSingleMesh(cubeModel(1))
	opts := DefaultOptions()
	opts.Group = group
	opts.Parts = parts
	v := New(opts)
	part := group.Children[0]

	if err := v.HighlightPart(SinglePartID); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("HighlightPart failed: expected ErrNotInitialized, got %v", err)
	}
	if err := v.UnhighlightPart(SinglePartID); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("UnhighlightPart failed: expected ErrNotInitialized, got %v", err)
	}
	if _, err := v.TogglePart(SinglePartID); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("TogglePart failed: expected ErrNotInitialized, got %v", err)
	}
	if err := v.Apply(Command{Action: ActionHighlight, Part: SinglePartID}); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("Apply failed: expected ErrNotInitialized, got %v", err)
	}
	if !part.Visible {
		t.Errorf("TogglePart hid the part before Init")
	}

	if err := v.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	m := part.Material
	if m.Color != SingleMeshColor || m.OriginalColor != SingleMeshColor || m.OriginalStepColor != SingleMeshColor {
		t.Errorf("baseline failed: got %+v", m)
	}
}

func TestConcurrentToggles(t *testing.T) {
	v := newTestViewer(t)
	transparent, axis := v.Transparent(), v.AxisVisible()

	const n = 50
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := v.Apply(Command{Action: ActionTransparency}); err != nil {
				t.Errorf("transparency toggle failed: %v", err)
			}
			if err := v.Apply(Command{Action: ActionAxis}); err != nil {
				t.Errorf("axis toggle failed: %v", err)
			}
		}()
	}
	wg.Wait()

	if v.Transparent() != transparent {
		t.Errorf("transparency toggle lost an update: expected %v", transparent)
	}
	if v.AxisVisible() != axis {
		t.Errorf("axis toggle lost an update: expected %v", axis)
	}

	on := true
	if err := v.Apply(Command{Action: ActionAxis, On: &on}); err != nil || !v.AxisVisible() {
		t.Errorf("explicit axis failed: %v", err)
	}
	if err := v.Apply(Command{Action: ActionAxis, On: &on}); err != nil || !v.AxisVisible() {
		t.Errorf("explicit axis is not idempotent: %v", err)
	}
}

func TestSwatches(t *testing.T) {
	group, parts := NewSingleMesh(cubeModel(1))
	opts := DefaultOptions()
	opts.Group = group
	opts.Parts = parts
	opts.HasMenu = true
	v := New(opts)
	v.Init()

	swatches := v.Swatches()
	if swatches[SinglePartID] != SingleMeshColor.CSS() {
		t.Errorf("Swatches failed: got %v", swatches)
	}
}
