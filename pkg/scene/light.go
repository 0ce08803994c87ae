package scene

import (
	"github.com/philipparndt/plmview/pkg/geometry"
)

// LightKind distinguishes how a light contributes to shading
type LightKind int

const (
	AmbientLight LightKind = iota
	DirectionalLight
	SpotLight
)

// Light is a scene light. Directional and spot lights can be orbited by a
// trackball so that shading follows the camera.
type Light struct {
	Kind       LightKind
	Color      Color
	Intensity  float64
	Position   geometry.Vector3
	Target     geometry.Vector3
	CastShadow bool

	ShadowDarkness   float64
	ShadowCameraNear float64
	// ShadowBounds is the half extent of the shadow camera frustum
	ShadowBounds float64

	up geometry.Vector3
}

func newLights() (ambient, directional, spot *Light) {
	ambient = &Light{Kind: AmbientLight, Color: 0xffffff, Intensity: 1.1, ShadowDarkness: 0.001}

	directional = &Light{
		Kind:           DirectionalLight,
		Color:          0xffffff,
		Intensity:      1.2,
		Position:       geometry.NewVector3(1, 1, 4).Normalize(),
		ShadowDarkness: 0.05,
		up:             geometry.NewVector3(0, 1, 0),
	}

	spot = &Light{
		Kind:             SpotLight,
		Color:            0xffffff,
		Intensity:        1.1,
		Position:         geometry.NewVector3(0, 1, 0),
		Target:           geometry.NewVector3(0, 10, 0).Normalize(),
		CastShadow:       true,
		ShadowDarkness:   0.005,
		ShadowCameraNear: 0.01,
		ShadowBounds:     5,
		up:               geometry.NewVector3(0, 1, 0),
	}
	return ambient, directional, spot
}

// Direction returns the unit vector the light travels along
func (l *Light) Direction() geometry.Vector3 {
	return l.Target.Sub(l.Position).Normalize()
}

// Location returns the light position
func (l *Light) Location() geometry.Vector3 { return l.Position }

// MoveTo places the light
func (l *Light) MoveTo(p geometry.Vector3) { l.Position = p }

// Up returns the up vector used when orbiting
func (l *Light) Up() geometry.Vector3 { return l.up }

// SetUp replaces the up vector
func (l *Light) SetUp(up geometry.Vector3) { l.up = up }

// LookAt is a no-op: lights keep aiming at their own target
func (l *Light) LookAt(geometry.Vector3) {}
