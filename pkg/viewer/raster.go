package viewer

import (
	"image"
	"image/color"
	"math"
)

// fillTriangleWithDepth fills a triangle with depth testing. Translucent
// colours are blended over what is already drawn and still claim the depth.
func fillTriangleWithDepth(img *image.RGBA, zbuffer []float64, x1, y1, z1, x2, y2, z2, x3, y3, z3 float64, col color.RGBA) {
	vertices := [3][3]float64{
		{x1, y1, z1},
		{x2, y2, z2},
		{x3, y3, z3},
	}

	// Sort vertices by Y coordinate (top to bottom)
	if vertices[0][1] > vertices[1][1] {
		vertices[0], vertices[1] = vertices[1], vertices[0]
	}
	if vertices[1][1] > vertices[2][1] {
		vertices[1], vertices[2] = vertices[2], vertices[1]
	}
	if vertices[0][1] > vertices[1][1] {
		vertices[0], vertices[1] = vertices[1], vertices[0]
	}

	x1, y1, z1 = vertices[0][0], vertices[0][1], vertices[0][2]
	x2, y2, z2 = vertices[1][0], vertices[1][1], vertices[1][2]
	x3, y3, z3 = vertices[2][0], vertices[2][1], vertices[2][2]

	bounds := img.Bounds()
	width := bounds.Max.X

	// Scanline algorithm with depth interpolation
	for y := int(math.Max(0, math.Ceil(y1))); y <= int(math.Min(float64(bounds.Max.Y-1), y3)); y++ {
		fy := float64(y)

		var xStart, xEnd, zStart, zEnd float64
		foundStart := false
		foundEnd := false

		edge := func(ax, ay, az, bx, by, bz float64) {
			if ay == by || fy < ay || fy > by {
				return
			}
			t := (fy - ay) / (by - ay)
			x := ax + t*(bx-ax)
			z := az + t*(bz-az)
			if !foundStart {
				xStart, zStart = x, z
				foundStart = true
			} else if !foundEnd {
				xEnd, zEnd = x, z
				foundEnd = true
			}
		}
		// long edge first, then whichever short edge spans this row
		edge(x1, y1, z1, x3, y3, z3)
		edge(x1, y1, z1, x2, y2, z2)
		edge(x2, y2, z2, x3, y3, z3)

		if !foundStart || !foundEnd {
			continue
		}
		if xStart > xEnd {
			xStart, xEnd = xEnd, xStart
			zStart, zEnd = zEnd, zStart
		}

		// Clamp to image bounds
		xStartInt := int(math.Max(0, math.Ceil(xStart)))
		xEndInt := int(math.Min(float64(bounds.Max.X-1), xEnd))

		for x := xStartInt; x <= xEndInt; x++ {
			t := 0.0
			if xEnd != xStart {
				t = (float64(x) - xStart) / (xEnd - xStart)
			}
			z := zStart + t*(zEnd-zStart)

			// Depth test - draw if closer (smaller z)
			idx := y*width + x
			if idx < 0 || idx >= len(zbuffer) || z >= zbuffer[idx] {
				continue
			}
			zbuffer[idx] = z
			if col.A == 255 {
				img.SetRGBA(x, y, col)
			} else {
				img.SetRGBA(x, y, blend(img.RGBAAt(x, y), col))
			}
		}
	}
}

// blend composites a straight alpha colour over dst
func blend(dst, src color.RGBA) color.RGBA {
	a := float64(src.A) / 255
	mix := func(d, s uint8) uint8 {
		return uint8(math.Round(float64(s)*a + float64(d)*(1-a)))
	}
	return color.RGBA{
		R: mix(dst.R, src.R),
		G: mix(dst.G, src.G),
		B: mix(dst.B, src.B),
		A: 255,
	}
}

// drawLine draws a line on an image using Bresenham's algorithm
func drawLine(img *image.RGBA, x1, y1, x2, y2 int, col color.RGBA) {
	bounds := img.Bounds()

	dx := abs(x2 - x1)
	dy := abs(y2 - y1)

	var sx, sy int
	if x1 < x2 {
		sx = 1
	} else {
		sx = -1
	}
	if y1 < y2 {
		sy = 1
	} else {
		sy = -1
	}

	err := dx - dy

	for {
		// Check bounds
		if x1 >= 0 && x1 < bounds.Max.X && y1 >= 0 && y1 < bounds.Max.Y {
			img.SetRGBA(x1, y1, col)
		}

		if x1 == x2 && y1 == y2 {
			break
		}

		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x1 += sx
		}
		if e2 < dx {
			err += dx
			y1 += sy
		}
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
