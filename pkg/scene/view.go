package scene

import (
	"math"
	"math/rand"

	"github.com/philipparndt/plmview/pkg/geometry"
)

const (
	// MinZoom and MaxZoom bound the zoom level
	MinZoom = 0
	MaxZoom = 100
	// FitAllZoom is the neutral zoom level the camera starts at
	FitAllZoom = 50
	// minWheelZoom is the lowest level the mouse wheel may reach
	minWheelZoom = 5
)

// SetScale moves the camera along its viewing axis so the zoom level
// becomes factor. Calling it twice with the same factor moves only once.
// Factors outside [0, 100] are clamped.
func (v *Viewer) SetScale(factor float64) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.setScale(factor)
}

func (v *Viewer) setScale(factor float64) error {
	if !v.initialized {
		return ErrNotInitialized
	}
	factor = math.Max(MinZoom, math.Min(MaxZoom, factor))
	total := v.zoom - factor
	v.zoom = factor
	if total != 0 {
		v.camera.TranslateZ(1.5 * v.radius * (total / 50))
		v.version++
	}
	return nil
}

// Slide follows the zoom slider; it moves the camera like SetScale
func (v *Viewer) Slide(value float64) error {
	return v.SetScale(value)
}

// ZoomIn raises the zoom level by one step, stopping at 100
func (v *Viewer) ZoomIn() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.zoomIn()
}

func (v *Viewer) zoomIn() error {
	if !v.initialized {
		return ErrNotInitialized
	}
	if v.zoom >= MaxZoom {
		return nil
	}
	return v.setScale(math.Min(v.zoom+v.opts.ZoomStep, MaxZoom))
}

// ZoomOut lowers the zoom level by one step, stopping at 0
func (v *Viewer) ZoomOut() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.zoomOut()
}

func (v *Viewer) zoomOut() error {
	if !v.initialized {
		return ErrNotInitialized
	}
	if v.zoom <= MinZoom {
		return nil
	}
	return v.setScale(math.Max(v.zoom-v.opts.ZoomStep, MinZoom))
}

// FitAll returns to the neutral zoom level
func (v *Viewer) FitAll() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.setScale(FitAllZoom)
}

// WheelDelta converts raw wheel event fields into a zoom delta. wheelDelta
// is the WebKit style value, detail the Gecko style line count; the former
// wins when both are set.
func WheelDelta(wheelDelta, detail float64) float64 {
	switch {
	case wheelDelta != 0:
		return wheelDelta / 40
	case detail != 0:
		return -detail * 1.5
	default:
		return 0
	}
}

// Wheel applies a wheel zoom delta. Moves that would leave [5, 100] are
// ignored rather than clamped.
func (v *Viewer) Wheel(delta float64) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.wheel(delta)
}

func (v *Viewer) wheel(delta float64) error {
	if !v.initialized {
		return ErrNotInitialized
	}
	factor := v.zoom + delta
	if factor < minWheelZoom || factor > MaxZoom {
		return nil
	}
	return v.setScale(factor)
}

// reinitRotation aligns the pivot with the camera orientation
func (v *Viewer) reinitRotation() {
	v.pivot.Rotation = v.camera.Rotation
	v.pivot.UpdateMatrix()
}

var (
	axisX = geometry.NewVector3(1, 0, 0)
	axisZ = geometry.NewVector3(0, 0, 1)
)

func (v *Viewer) viewTop() {
	v.reinitRotation()
}

func (v *Viewer) viewFront() {
	v.reinitRotation()
	v.pivot.RotateAroundObjectAxis(axisX, -math.Pi/2)
	v.pivot.UpdateMatrix()
}

func (v *Viewer) viewRear() {
	v.viewFront()
	v.pivot.RotateAroundObjectAxis(axisZ, math.Pi)
}

func (v *Viewer) viewLeft() {
	v.viewFront()
	v.pivot.RotateAroundObjectAxis(axisZ, math.Pi/2)
}

func (v *Viewer) viewRight() {
	v.viewFront()
	v.pivot.RotateAroundObjectAxis(axisZ, -math.Pi/2)
}

func (v *Viewer) viewBottom() {
	v.reinitRotation()
	v.pivot.RotateAroundObjectAxis(axisX, math.Pi)
}

func (v *Viewer) viewAxonometric() {
	v.viewFront()
	v.pivot.RotateAroundObjectAxis(axisZ, -math.Sqrt2/2)
	v.pivot.UpdateMatrix()
	tilt := geometry.NewVector3(math.Sin(math.Sqrt2/2), math.Cos(math.Sqrt2/2), 0)
	v.pivot.RotateAroundObjectAxis(tilt, math.Pi/6)
}

// View orients the pivot to one of the named views
func (v *Viewer) View(name ViewName) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.view(name)
}

func (v *Viewer) view(name ViewName) error {
	if !v.initialized {
		return ErrNotInitialized
	}
	switch name {
	case ViewTop:
		v.viewTop()
	case ViewBottom:
		v.viewBottom()
	case ViewFront:
		v.viewFront()
	case ViewRear:
		v.viewRear()
	case ViewLeft:
		v.viewLeft()
	case ViewRight:
		v.viewRight()
	case ViewAxonometric:
		v.viewAxonometric()
	default:
		return ErrUnknownView
	}
	v.version++
	return nil
}

// SetTransparency restores each part's baseline opacity when on and makes
// every part opaque when off.
func (v *Viewer) SetTransparency(on bool) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.initialized {
		return ErrNotInitialized
	}
	v.applyTransparency(on)
	v.version++
	return nil
}

func (v *Viewer) applyTransparency(on bool) {
	v.transparent = on
	for _, part := range v.group.Children {
		if on {
			part.Material.Opacity = part.Material.OriginalOpacity
		} else {
			part.Material.Opacity = 1
		}
	}
}

// ToggleTransparency flips the transparency toggle
func (v *Viewer) ToggleTransparency() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.initialized {
		return ErrNotInitialized
	}
	v.applyTransparency(!v.transparent)
	v.version++
	return nil
}

// Transparent reports the transparency toggle
func (v *Viewer) Transparent() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.transparent
}

// SetAxisVisible shows or hides the axis helper
func (v *Viewer) SetAxisVisible(visible bool) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.initialized {
		return ErrNotInitialized
	}
	v.showAxis(visible)
	v.version++
	return nil
}

// ToggleAxis flips the axis helper
func (v *Viewer) ToggleAxis() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.initialized {
		return ErrNotInitialized
	}
	v.showAxis(!v.axisVisible)
	v.version++
	return nil
}

func (v *Viewer) showAxis(visible bool) {
	v.axisVisible = visible
	v.axis.SetVisible(visible)
}

// AxisVisible reports the axis toggle
func (v *Viewer) AxisVisible() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.axisVisible
}

// RandomColor gives every part a random saturated colour, which also
// becomes the colour unhighlighting restores. A nil rng uses the global
// source.
func (v *Viewer) RandomColor(rng *rand.Rand) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.initialized {
		return ErrNotInitialized
	}
	float := rand.Float64
	if rng != nil {
		float = rng.Float64
	}
	for _, part := range v.group.Children {
		// keep away from the darkest colours
		c := HSV(float(), float()*0.3+0.7, float()*0.4+0.6)
		part.Material.Color = c
		part.Material.OriginalColor = c
	}
	v.version++
	return nil
}

// ReinitColor restores the colours of the source document
func (v *Viewer) ReinitColor() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.initialized {
		return ErrNotInitialized
	}
	for _, part := range v.group.Children {
		part.Material.Color = part.Material.OriginalStepColor
		part.Material.OriginalColor = part.Material.OriginalStepColor
	}
	v.version++
	return nil
}

// HighlightPart paints a part and everything below it in the highlight
// colour. Unknown ids are ignored.
func (v *Viewer) HighlightPart(id string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.initialized {
		return ErrNotInitialized
	}
	v.graph.Highlight(id, v.opts.HighlightColor)
	v.version++
	return nil
}

// UnhighlightPart restores the colours of a part and everything below it
func (v *Viewer) UnhighlightPart(id string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.initialized {
		return ErrNotInitialized
	}
	v.graph.Unhighlight(id)
	v.version++
	return nil
}

// TogglePart flips the visibility of a part subtree and returns the new
// state.
func (v *Viewer) TogglePart(id string) (bool, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.initialized {
		return false, ErrNotInitialized
	}
	visible := v.graph.Toggle(id)
	v.version++
	return visible, nil
}
