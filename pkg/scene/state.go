package scene

import (
	"github.com/philipparndt/plmview/pkg/geometry"
	"github.com/philipparndt/plmview/pkg/stl"
)

// FramePart is one part ready to be drawn
type FramePart struct {
	ID        string
	Mesh      *stl.Model
	Matrix    geometry.Matrix4 // part to world
	Color     Color
	Opacity   float64
	Shininess float64
}

// FrameArrow is one visible axis arrow in world space
type FrameArrow struct {
	From  geometry.Vector3
	To    geometry.Vector3
	Color Color
}

// Frame is everything a renderer needs for one image. It is a copy taken
// under the viewer lock; meshes are shared and must not be modified.
type Frame struct {
	Camera       Camera
	Parts        []FramePart
	Arrows       []FrameArrow
	Ambient      float64
	LightDir     geometry.Vector3 // direction light travels, world space
	LightPower   float64
	SpotDir      geometry.Vector3
	SpotPower    float64
	Background   Color
	RadiusHint   float64
	Transparent  bool
	NotAvailable string
}

// Frame snapshots the scene for rendering. It returns ErrNotInitialized
// before Init.
func (v *Viewer) Frame() (Frame, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if !v.initialized {
		return Frame{NotAvailable: v.warning}, ErrNotInitialized
	}

	world := v.pivot.Matrix.Mul(v.group.Matrix())
	f := Frame{
		Camera:      *v.camera,
		Ambient:     v.ambient.Intensity,
		LightDir:    v.spot1.Position.Mul(-1).Normalize(),
		LightPower:  v.spot1.Intensity,
		SpotDir:     v.spot2.Direction(),
		SpotPower:   v.spot2.Intensity,
		Background:  0xffffff,
		RadiusHint:  v.radius,
		Transparent: v.transparent,
	}

	for _, part := range v.group.Children {
		if !part.Visible || part.Mesh == nil {
			continue
		}
		f.Parts = append(f.Parts, FramePart{
			ID:        part.ID,
			Mesh:      part.Mesh,
			Matrix:    world.Mul(part.Matrix),
			Color:     part.Material.Color,
			Opacity:   part.Material.Opacity,
			Shininess: part.Material.Shininess,
		})
	}

	axisWorld := v.pivot.Matrix
	for _, arrow := range v.axis.Children {
		if !arrow.Visible || arrow.Cone {
			continue
		}
		f.Arrows = append(f.Arrows, FrameArrow{
			From:  axisWorld.TransformPoint(v.axis.Position),
			To:    axisWorld.TransformPoint(v.axis.Tip(arrow.Axis)),
			Color: arrow.Color,
		})
	}
	return f, nil
}

// PartState is the published state of one part
type PartState struct {
	ID          string `json:"id"`
	Name        string `json:"name,omitempty"`
	Color       string `json:"color"`
	Visible     bool   `json:"visible"`
	Highlighted bool   `json:"highlighted"`
}

// State is the JSON view of the viewer that hosts publish to clients
type State struct {
	Version     uint64      `json:"version"`
	Initialized bool        `json:"initialized"`
	Warning     string      `json:"warning,omitempty"`
	Zoom        float64     `json:"zoom"`
	Radius      float64     `json:"radius"`
	Transparent bool        `json:"transparent"`
	Axis        bool        `json:"axis"`
	Camera      []float64   `json:"camera,omitempty"`
	Pivot       []float64   `json:"pivot,omitempty"`
	Parts       []PartState `json:"parts"`
}

// State returns a snapshot of the view state
func (v *Viewer) State() State {
	v.mu.Lock()
	defer v.mu.Unlock()

	s := State{
		Version:     v.version,
		Initialized: v.initialized,
		Warning:     v.warning,
		Zoom:        v.zoom,
		Radius:      v.radius,
		Transparent: v.transparent,
		Axis:        v.axisVisible,
		Parts:       []PartState{},
	}
	if v.camera != nil {
		m := v.camera.Matrix()
		s.Camera = m[:]
	}
	if v.pivot != nil {
		m := v.pivot.Matrix
		s.Pivot = m[:]
	}
	if v.group == nil {
		return s
	}
	for _, part := range v.group.Children {
		s.Parts = append(s.Parts, PartState{
			ID:          part.ID,
			Name:        part.Name,
			Color:       part.Material.Color.Hex(),
			Visible:     part.Visible,
			Highlighted: part.Material.Color != part.Material.OriginalColor,
		})
	}
	return s
}

// Warning returns the message to show instead of the viewer, if any
func (v *Viewer) Warning() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.warning
}
