package analysis

import (
	"math"
	"testing"

	"github.com/philipparndt/plmview/pkg/geometry"
	"github.com/philipparndt/plmview/pkg/stl"
)

func TestAnalyzeModel(t *testing.T) {
	model := stl.NewModel("test")
	model.AddTriangle(
		geometry.NewVector3(0, 0, 0),
		geometry.NewVector3(3, 0, 0),
		geometry.NewVector3(0, 4, 0),
	)
	model.AddTriangle(
		geometry.NewVector3(1, 1, 1),
		geometry.NewVector3(1, 1, 1),
		geometry.NewVector3(1, 1, 1),
	)
	model.ComputeFaceNormals()

	result := AnalyzeModel(model)

	if result.TriangleCount != 2 || result.VertexCount != 6 {
		t.Errorf("unexpected counts: %d triangles, %d vertices", result.TriangleCount, result.VertexCount)
	}
	if result.Radius != 4 {
		t.Errorf("Radius failed: expected 4, got %v", result.Radius)
	}
	if math.Abs(result.SurfaceArea-6) > 1e-10 {
		t.Errorf("SurfaceArea failed: expected 6, got %v", result.SurfaceArea)
	}
	if result.Degenerate != 1 {
		t.Errorf("expected 1 degenerate face, got %d", result.Degenerate)
	}
	if result.MaxEdgeLength != 5 || result.MinEdgeLength != 0 {
		t.Errorf("unexpected edge range %v..%v", result.MinEdgeLength, result.MaxEdgeLength)
	}
	if result.NearPlane != 4.0/50 || result.FarPlane != 800 || result.CameraZ != 6 {
		t.Errorf("unexpected camera parameters: %+v", result)
	}
}

func TestAnalyzeEmptyModel(t *testing.T) {
	result := AnalyzeModel(stl.NewModel(""))

	if result.Radius != 0 || result.TriangleCount != 0 {
		t.Errorf("empty model should have zero stats, got %+v", result)
	}
	if result.MinEdgeLength != 0 {
		t.Errorf("empty model should have no edge lengths, got %v", result.MinEdgeLength)
	}
}
