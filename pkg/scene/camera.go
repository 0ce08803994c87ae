package scene

import (
	"math"

	"github.com/philipparndt/plmview/pkg/geometry"
)

// Camera is a perspective camera placed by position and Euler rotation
type Camera struct {
	Position geometry.Vector3
	Rotation geometry.Euler
	up       geometry.Vector3
	FOV      float64 // vertical field of view in degrees
	Aspect   float64
	Near     float64
	Far      float64
}

// NewCamera creates a camera with a 40 degree field of view whose clip
// planes scale with the scene radius, placed on +Z at 1.5 radii.
func NewCamera(radius, aspect float64) *Camera {
	return &Camera{
		Position: geometry.NewVector3(0, 0, radius*1.5),
		up:       geometry.NewVector3(0, 1, 0),
		FOV:      40,
		Aspect:   aspect,
		Near:     radius / 50,
		Far:      radius * 200,
	}
}

// Matrix returns the camera's world transform
func (c *Camera) Matrix() geometry.Matrix4 {
	return geometry.Translation(c.Position).Mul(geometry.RotationEuler(c.Rotation))
}

// TranslateZ moves the camera along its local Z axis. Positive distances
// move away from what it looks at.
func (c *Camera) TranslateZ(distance float64) {
	axis := geometry.RotationEuler(c.Rotation).TransformDirection(geometry.NewVector3(0, 0, 1))
	c.Position = c.Position.Add(axis.Mul(distance))
}

// Up returns the camera's up vector used when orbiting
func (c *Camera) Up() geometry.Vector3 { return c.up }

// SetUp replaces the up vector
func (c *Camera) SetUp(up geometry.Vector3) { c.up = up }

// Location returns the camera position
func (c *Camera) Location() geometry.Vector3 { return c.Position }

// MoveTo places the camera
func (c *Camera) MoveTo(p geometry.Vector3) { c.Position = p }

// LookAt rotates the camera so it faces target
func (c *Camera) LookAt(target geometry.Vector3) {
	c.Rotation = geometry.LookAt(c.Position, target, c.up).Euler()
}

// Project projects a world point to screen coordinates and returns the
// depth along the viewing direction.
func (c *Camera) Project(point geometry.Vector3, width, height float64) (float64, float64, float64) {
	rotation := geometry.RotationEuler(c.Rotation)
	right := rotation.TransformDirection(geometry.NewVector3(1, 0, 0))
	up := rotation.TransformDirection(geometry.NewVector3(0, 1, 0))
	forward := rotation.TransformDirection(geometry.NewVector3(0, 0, -1))

	relative := point.Sub(c.Position)
	x := relative.Dot(right)
	y := relative.Dot(up)
	z := relative.Dot(forward)

	if z <= 1e-9 {
		z = 1e-9 // Prevent division by zero
	}

	aspect := c.Aspect
	if aspect <= 0 {
		aspect = width / height
	}
	fovScale := math.Tan(c.FOV * math.Pi / 360)

	screenX := (x/(z*fovScale*aspect))*(width/2) + (width / 2)
	screenY := (-y/(z*fovScale))*(height/2) + (height / 2)

	return screenX, screenY, z
}

// Visible reports whether a depth lies between the clip planes
func (c *Camera) Visible(depth float64) bool {
	return depth >= c.Near && depth <= c.Far
}
