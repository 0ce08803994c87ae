package scene

import (
	"math"

	"github.com/philipparndt/plmview/pkg/geometry"
)

// Orbiter is anything a trackball can move around its target
type Orbiter interface {
	Location() geometry.Vector3
	MoveTo(geometry.Vector3)
	Up() geometry.Vector3
	SetUp(geometry.Vector3)
	LookAt(target geometry.Vector3)
}

// ControlSettings are the sensitivity constants shared by every trackball
type ControlSettings struct {
	RotateSpeed          float64
	ZoomSpeed            float64
	PanSpeed             float64
	NoZoom               bool
	NoPan                bool
	StaticMoving         bool
	DynamicDampingFactor float64
	// Keys held to switch a drag to rotate, zoom and pan
	Keys [3]rune
}

// DefaultControlSettings returns the viewer's trackball tuning
func DefaultControlSettings() ControlSettings {
	return ControlSettings{
		RotateSpeed:          1.0,
		ZoomSpeed:            1.2,
		PanSpeed:             0.2,
		NoZoom:               true,
		NoPan:                false,
		StaticMoving:         false,
		DynamicDampingFactor: 0.3,
		Keys:                 [3]rune{'A', 'S', 'D'},
	}
}

type dragMode int

const (
	dragRotate dragMode = iota
	dragZoom
	dragPan
)

// Trackball orbits an object around a target point. Input accumulates
// between frames and is consumed by Update, once per frame.
type Trackball struct {
	ControlSettings
	MinDistance float64
	MaxDistance float64
	Target      geometry.Vector3

	object Orbiter
	mode   dragMode

	rotateX, rotateY float64
	zoom             float64
	panX, panY       float64
}

// NewTrackball creates a trackball around the origin clamped to
// [0, maxDistance].
func NewTrackball(object Orbiter, settings ControlSettings, maxDistance float64) *Trackball {
	return &Trackball{
		ControlSettings: settings,
		MaxDistance:     maxDistance,
		object:          object,
	}
}

// KeyDown switches the drag mode when one of the configured keys is held
func (t *Trackball) KeyDown(key rune) {
	switch key {
	case t.Keys[0]:
		t.mode = dragRotate
	case t.Keys[1]:
		t.mode = dragZoom
	case t.Keys[2]:
		t.mode = dragPan
	}
}

// KeyUp returns to rotating
func (t *Trackball) KeyUp() {
	t.mode = dragRotate
}

// Drag feeds a pointer movement in normalized screen units
func (t *Trackball) Drag(dx, dy float64) {
	switch t.mode {
	case dragZoom:
		if !t.NoZoom {
			t.zoom += dy
		}
	case dragPan:
		if !t.NoPan {
			t.panX += dx
			t.panY += dy
		}
	default:
		t.rotateX += dx
		t.rotateY += dy
	}
}

// Pending reports whether Update still has motion to apply
func (t *Trackball) Pending() bool {
	return t.rotateX != 0 || t.rotateY != 0 || t.zoom != 0 || t.panX != 0 || t.panY != 0
}

// Update applies accumulated input to the object, then damps or clears it
func (t *Trackball) Update() {
	position := t.object.Location()
	eye := position.Sub(t.Target)

	if t.rotateX != 0 || t.rotateY != 0 {
		eye = t.rotate(eye)
	}
	if t.zoom != 0 {
		eye = eye.Mul(1 + t.zoom*t.ZoomSpeed)
	}
	if t.panX != 0 || t.panY != 0 {
		t.pan(eye)
	}

	if length := eye.Length(); length > t.MaxDistance && length > 0 {
		eye = eye.Mul(t.MaxDistance / length)
	} else if length < t.MinDistance && length > 0 {
		eye = eye.Mul(t.MinDistance / length)
	}

	t.object.MoveTo(t.Target.Add(eye))
	t.object.LookAt(t.Target)
	t.damp()
}

func (t *Trackball) rotate(eye geometry.Vector3) geometry.Vector3 {
	angle := math.Hypot(t.rotateX, t.rotateY) * t.RotateSpeed
	if angle == 0 || eye.Length() == 0 {
		return eye
	}

	up := t.object.Up().Normalize()
	sideways := up.Cross(eye.Normalize()).Normalize()
	move := up.Mul(t.rotateY).Add(sideways.Mul(t.rotateX))
	axis := move.Cross(eye).Normalize()
	if axis.Length() == 0 {
		return eye
	}

	rotation := geometry.RotationAxis(axis, angle)
	t.object.SetUp(rotation.TransformDirection(t.object.Up()))
	return rotation.TransformDirection(eye)
}

func (t *Trackball) pan(eye geometry.Vector3) {
	scale := eye.Length() * t.PanSpeed
	up := t.object.Up().Normalize()
	sideways := eye.Cross(up).Normalize()
	offset := sideways.Mul(t.panX * scale).Add(up.Mul(t.panY * scale))

	t.Target = t.Target.Add(offset)
}

func (t *Trackball) damp() {
	if t.StaticMoving {
		t.rotateX, t.rotateY, t.zoom, t.panX, t.panY = 0, 0, 0, 0, 0
		return
	}
	rotateDamping := math.Sqrt(1 - t.DynamicDampingFactor)
	t.rotateX = settle(t.rotateX * rotateDamping)
	t.rotateY = settle(t.rotateY * rotateDamping)
	t.zoom = settle(t.zoom * (1 - t.DynamicDampingFactor))
	t.panX = settle(t.panX * (1 - t.DynamicDampingFactor))
	t.panY = settle(t.panY * (1 - t.DynamicDampingFactor))
}

// settle snaps residual motion to zero so damping terminates
func settle(v float64) float64 {
	if math.Abs(v) < 1e-6 {
		return 0
	}
	return v
}
