package export

import (
	"github.com/philipparndt/plmview/pkg/scene"
	"github.com/philipparndt/plmview/pkg/stl"
)

// Merge combines the visible parts into one mesh in assembly coordinates.
// The group centring and the view rotation are not applied.
func Merge(name string, parts []*scene.Part) *stl.Model {
	merged := stl.NewModel(name)
	for _, part := range parts {
		if !part.Visible || part.Mesh == nil {
			continue
		}
		for _, f := range part.Mesh.Faces {
			merged.AddTriangle(
				part.Matrix.TransformPoint(part.Mesh.Vertices[f.A]),
				part.Matrix.TransformPoint(part.Mesh.Vertices[f.B]),
				part.Matrix.TransformPoint(part.Mesh.Vertices[f.C]),
			)
		}
	}
	merged.ComputeFaceNormals()
	return merged
}
