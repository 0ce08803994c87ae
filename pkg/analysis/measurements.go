package analysis

import (
	"fmt"
	"math"

	"github.com/philipparndt/plmview/pkg/geometry"
	"github.com/philipparndt/plmview/pkg/stl"
)

// MeshStats summarizes a decoded mesh and the viewer parameters derived
// from its size.
type MeshStats struct {
	Format        stl.Format
	BoundingBox   geometry.BoundingBox
	Dimensions    geometry.Vector3
	Radius        float64
	SurfaceArea   float64
	TriangleCount int
	VertexCount   int
	Degenerate    int // faces with zero area or non-finite vertices
	MinEdgeLength float64
	MaxEdgeLength float64
	AvgEdgeLength float64

	// Camera and control parameters the viewer derives from Radius
	NearPlane   float64
	FarPlane    float64
	CameraZ     float64
	MaxDistance float64
	AxisScale   float64
}

// AnalyzeModel collects mesh statistics
func AnalyzeModel(model *stl.Model) *MeshStats {
	result := &MeshStats{
		Format:        model.Format,
		BoundingBox:   model.BoundingBox(),
		SurfaceArea:   model.SurfaceArea(),
		TriangleCount: model.TriangleCount(),
		VertexCount:   len(model.Vertices),
	}

	if !result.BoundingBox.IsEmpty() {
		result.Dimensions = result.BoundingBox.Size()
		result.Radius = result.BoundingBox.Radius()
	}
	result.NearPlane = result.Radius / 50
	result.FarPlane = result.Radius * 200
	result.CameraZ = result.Radius * 1.5
	result.MaxDistance = result.Radius * 1000
	result.AxisScale = result.Radius / 600

	minLength := math.MaxFloat64
	maxLength := 0.0
	totalLength := 0.0
	edgeCount := 0

	for i := range model.Faces {
		triangle := model.Triangle(i)
		if !finite(triangle) || triangle.Area() == 0 {
			result.Degenerate++
		}
		for _, length := range triangle.EdgeLengths() {
			edgeCount++
			totalLength += length
			if length < minLength {
				minLength = length
			}
			if length > maxLength {
				maxLength = length
			}
		}
	}

	if edgeCount > 0 {
		result.MinEdgeLength = minLength
		result.MaxEdgeLength = maxLength
		result.AvgEdgeLength = totalLength / float64(edgeCount)
	}

	return result
}

func finite(t geometry.Triangle) bool {
	for _, v := range []geometry.Vector3{t.V1, t.V2, t.V3} {
		for _, c := range []float64{v.X, v.Y, v.Z} {
			if math.IsNaN(c) || math.IsInf(c, 0) {
				return false
			}
		}
	}
	return true
}

// FormatMeasurement formats a measurement with appropriate units
func FormatMeasurement(value float64, unit string) string {
	if unit == "" {
		unit = "units"
	}
	return fmt.Sprintf("%.6f %s", value, unit)
}

// FormatVector formats a 3D vector
func FormatVector(v geometry.Vector3) string {
	return fmt.Sprintf("(%.6f, %.6f, %.6f)", v.X, v.Y, v.Z)
}
