package scene

import (
	"github.com/philipparndt/plmview/pkg/geometry"
)

// axisLength is the arrow length of the helper before scaling
const axisLength = 100

// AxisArrow is one child of the axis helper: the shaft or the cone of an
// axis arrow.
type AxisArrow struct {
	Axis    int // 0=X, 1=Y, 2=Z
	Cone    bool
	Color   Color
	Visible bool
}

// AxisHelper draws the X, Y and Z arrows next to the assembly
type AxisHelper struct {
	Position geometry.Vector3
	Scale    float64
	Children []*AxisArrow
}

// NewAxisHelper creates the six arrow parts coloured red, green and blue
func NewAxisHelper() *AxisHelper {
	colors := [3]Color{0xff0000, 0x00ff00, 0x0000ff}
	a := &AxisHelper{Scale: 1}
	for axis, c := range colors {
		a.Children = append(a.Children,
			&AxisArrow{Axis: axis, Color: c, Visible: true},
			&AxisArrow{Axis: axis, Cone: true, Color: c, Visible: true},
		)
	}
	return a
}

// Matrix returns the helper transform inside the pivot
func (a *AxisHelper) Matrix() geometry.Matrix4 {
	return geometry.Translation(a.Position).Mul(geometry.Scaling(a.Scale))
}

// SetVisible shows or hides every arrow
func (a *AxisHelper) SetVisible(visible bool) {
	for _, child := range a.Children {
		child.Visible = visible
	}
}

// Tip returns the end point of an axis arrow in pivot space
func (a *AxisHelper) Tip(axis int) geometry.Vector3 {
	var dir geometry.Vector3
	switch axis {
	case 0:
		dir.X = axisLength
	case 1:
		dir.Y = axisLength
	default:
		dir.Z = axisLength
	}
	return a.Matrix().TransformPoint(dir)
}

// Pivot is the rotatable frame between the camera and the assembly. Named
// views rotate the pivot instead of the camera.
type Pivot struct {
	Rotation geometry.Euler
	Matrix   geometry.Matrix4
}

func newPivot() *Pivot {
	return &Pivot{Matrix: geometry.Identity()}
}

// UpdateMatrix recomposes the matrix from the Euler rotation
func (p *Pivot) UpdateMatrix() {
	p.Matrix = geometry.RotationEuler(p.Rotation)
}

// RotateAroundObjectAxis post-multiplies the pivot by a rotation around a
// local axis and re-derives the Euler rotation from the result.
func (p *Pivot) RotateAroundObjectAxis(axis geometry.Vector3, radians float64) {
	p.Matrix = p.Matrix.Mul(geometry.RotationAxis(axis, radians))
	p.Rotation = p.Matrix.Euler()
}
