package scene

import (
	"fmt"
	"image/color"
	"math"
	"strconv"
	"strings"
)

// Color is a 24-bit 0xRRGGBB colour
type Color uint32

const (
	// HighlightRed is the live colour of a hovered part
	HighlightRed Color = 0xff0000
	// SingleMeshColor is the colour of a standalone STL (rgb 0.4, 0.3, 0.3)
	SingleMeshColor Color = 0x664c4c
	// DefaultPartColor is used for parts without a colour of their own
	DefaultPartColor Color = 0xffffff
)

// RGB builds a colour from components in [0, 1]
func RGB(r, g, b float64) Color {
	return Color(channel(r)<<16 | channel(g)<<8 | channel(b))
}

// HSV builds a colour from hue, saturation and value in [0, 1]
func HSV(h, s, v float64) Color {
	if s == 0 {
		return RGB(v, v, v)
	}
	h = math.Mod(h, 1) * 6
	i := math.Floor(h)
	f := h - i
	p := v * (1 - s)
	q := v * (1 - s*f)
	t := v * (1 - s*(1-f))

	switch int(i) {
	case 0:
		return RGB(v, t, p)
	case 1:
		return RGB(q, v, p)
	case 2:
		return RGB(p, v, t)
	case 3:
		return RGB(p, q, v)
	case 4:
		return RGB(t, p, v)
	default:
		return RGB(v, p, q)
	}
}

// ParseColor reads "#rrggbb", "rrggbb" or "0xrrggbb"
func ParseColor(s string) (Color, error) {
	s = strings.TrimPrefix(strings.TrimPrefix(strings.TrimSpace(s), "#"), "0x")
	if len(s) != 6 {
		return 0, fmt.Errorf("invalid colour %q", s)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid colour %q: %w", s, err)
	}
	return Color(v), nil
}

// Components returns the red, green and blue channels in [0, 1]
func (c Color) Components() (r, g, b float64) {
	return float64(c>>16&0xff) / 255, float64(c>>8&0xff) / 255, float64(c&0xff) / 255
}

// RGBA converts the colour for image drawing with the given opacity
func (c Color) RGBA(opacity float64) color.RGBA {
	return color.RGBA{
		R: uint8(c >> 16),
		G: uint8(c >> 8),
		B: uint8(c),
		A: uint8(math.Round(clamp01(opacity) * 255)),
	}
}

// Hex formats the colour as #rrggbb
func (c Color) Hex() string {
	return fmt.Sprintf("#%06x", uint32(c)&0xffffff)
}

// CSS formats the colour for a menu swatch background
func (c Color) CSS() string {
	return fmt.Sprintf("rgb(%d,%d,%d)", c>>16&0xff, c>>8&0xff, c&0xff)
}

func (c Color) String() string {
	return c.Hex()
}

// channel truncates like a float to byte conversion of the browser renderer
func channel(v float64) uint32 {
	return uint32(clamp01(v) * 255)
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
