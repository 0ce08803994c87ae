package scene

import (
	"context"
)

// MenuItem is one entry of the part tree shown next to the viewer. Leaf
// items own geometry and get a colour swatch.
type MenuItem struct {
	ID       string      `json:"id"`
	Name     string      `json:"name"`
	Leaf     bool        `json:"leaf"`
	Children []*MenuItem `json:"children,omitempty"`
}

// Fetcher retrieves the raw bytes of an STL resource
type Fetcher interface {
	Fetch(ctx context.Context, location string) ([]byte, error)
}

// Options configures a Viewer. It replaces the page globals the viewer
// used to read: the part map, relation map, group and menu are passed in
// explicitly.
type Options struct {
	// HasMenu enables menu swatches and part hover handling
	HasMenu bool
	// STLFile, when set, is fetched and decoded into a single part group,
	// replacing Group, Parts and Relations.
	STLFile string

	Group     *Group
	Parts     map[string]*Part
	Relations Relations
	Menu      *MenuItem

	HighlightColor Color
	// ZoomStep is the zoom-in/zoom-out increment: 10 for the button
	// driven viewer, 0.05 for the scaled wheel-driven variant.
	ZoomStep    float64
	InitialZoom float64

	Width  float64
	Height float64

	AxisVisible bool
	Transparent bool

	Controls ControlSettings

	// HasRenderer reports whether the host can render at all; nil means yes
	HasRenderer func() bool
}

// DefaultOptions returns options for an empty viewer
func DefaultOptions() Options {
	return Options{
		HighlightColor: HighlightRed,
		ZoomStep:       10,
		InitialZoom:    50,
		Width:          800,
		Height:         600,
		AxisVisible:    false,
		Transparent:    true,
		Controls:       DefaultControlSettings(),
	}
}

// withDefaults fills zero values a caller did not set
func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.HighlightColor == 0 {
		o.HighlightColor = d.HighlightColor
	}
	if o.ZoomStep == 0 {
		o.ZoomStep = d.ZoomStep
	}
	if o.InitialZoom == 0 {
		o.InitialZoom = d.InitialZoom
	}
	if o.Width <= 0 {
		o.Width = d.Width
	}
	if o.Height <= 0 {
		o.Height = d.Height
	}
	if o.Controls == (ControlSettings{}) {
		o.Controls = d.Controls
	}
	return o
}
