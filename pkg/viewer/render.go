package viewer

import (
	"image"
	"image/color"
	"math"
	"sort"

	"github.com/philipparndt/plmview/pkg/geometry"
	"github.com/philipparndt/plmview/pkg/scene"
)

// projected is one triangle in screen space
type projected struct {
	x, y, z [3]float64
	depth   float64
	color   color.RGBA
}

// Render rasterizes a frame with flat shading. Opaque triangles are drawn
// first; translucent ones follow back to front.
func Render(frame scene.Frame, width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	background := frame.Background.RGBA(1)
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = background.R, background.G, background.B, background.A
	}
	if width == 0 || height == 0 {
		return img
	}

	zbuffer := make([]float64, width*height)
	for i := range zbuffer {
		zbuffer[i] = math.Inf(1)
	}

	var opaque, translucent []projected
	for _, part := range frame.Parts {
		for i := range part.Mesh.Faces {
			tri, ok := project(frame, part, i, float64(width), float64(height))
			if !ok {
				continue
			}
			if tri.color.A == 255 {
				opaque = append(opaque, tri)
			} else {
				translucent = append(translucent, tri)
			}
		}
	}
	sort.SliceStable(translucent, func(i, j int) bool {
		return translucent[i].depth > translucent[j].depth
	})

	for _, list := range [][]projected{opaque, translucent} {
		for _, t := range list {
			fillTriangleWithDepth(img, zbuffer,
				t.x[0], t.y[0], t.z[0],
				t.x[1], t.y[1], t.z[1],
				t.x[2], t.y[2], t.z[2],
				t.color)
		}
	}

	for _, arrow := range frame.Arrows {
		x1, y1, z1 := frame.Camera.Project(arrow.From, float64(width), float64(height))
		x2, y2, z2 := frame.Camera.Project(arrow.To, float64(width), float64(height))
		if !frame.Camera.Visible(z1) || !frame.Camera.Visible(z2) {
			continue
		}
		drawLine(img, int(x1), int(y1), int(x2), int(y2), arrow.Color.RGBA(1))
	}
	return img
}

func project(frame scene.Frame, part scene.FramePart, face int, width, height float64) (projected, bool) {
	tri := part.Mesh.Triangle(face)
	var p projected
	for k, v := range [3]geometry.Vector3{tri.V1, tri.V2, tri.V3} {
		world := part.Matrix.TransformPoint(v)
		x, y, z := frame.Camera.Project(world, width, height)
		if !frame.Camera.Visible(z) || math.IsNaN(x) || math.IsNaN(y) {
			return projected{}, false
		}
		p.x[k], p.y[k], p.z[k] = x, y, z
	}
	p.depth = (p.z[0] + p.z[1] + p.z[2]) / 3

	normal := part.Matrix.TransformDirection(part.Mesh.Faces[face].Normal).Normalize()
	p.color = shade(frame, part, normal)
	return p, true
}

// shade lights a face from both sides since part materials are double sided
func shade(frame scene.Frame, part scene.FramePart, normal geometry.Vector3) color.RGBA {
	intensity := frame.Ambient * 0.4
	intensity += frame.LightPower * 0.5 * math.Abs(normal.Dot(frame.LightDir))
	intensity += frame.SpotPower * 0.2 * math.Abs(normal.Dot(frame.SpotDir))

	r, g, b := part.Color.Components()
	c := scene.RGB(
		math.Min(1, r*intensity),
		math.Min(1, g*intensity),
		math.Min(1, b*intensity),
	)
	return c.RGBA(part.Opacity)
}
