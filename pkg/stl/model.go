package stl

import (
	"github.com/philipparndt/plmview/pkg/geometry"
)

// Format identifies the on-disk layout an STL buffer was decoded from
type Format int

const (
	FormatBinary Format = iota
	FormatASCII
)

func (f Format) String() string {
	if f == FormatASCII {
		return "ascii"
	}
	return "binary"
}

// Face is a triangle referencing three vertices of the model by index
type Face struct {
	A, B, C int
	Normal  geometry.Vector3
}

// Model is a triangulated surface: an ordered vertex list and an ordered
// face list. Faces of a decoded file reference vertices 3i, 3i+1, 3i+2.
type Model struct {
	Name     string
	Format   Format
	Vertices []geometry.Vector3
	Faces    []Face
}

// NewModel creates a new STL model
func NewModel(name string) *Model {
	return &Model{
		Name:     name,
		Vertices: make([]geometry.Vector3, 0),
		Faces:    make([]Face, 0),
	}
}

// AddTriangle appends three fresh vertices and the face joining them
func (m *Model) AddTriangle(v1, v2, v3 geometry.Vector3) {
	j := len(m.Vertices)
	m.Vertices = append(m.Vertices, v1, v2, v3)
	m.Faces = append(m.Faces, Face{A: j, B: j + 1, C: j + 2})
}

// ComputeFaceNormals derives one normal per face from its winding.
// It runs once after the full vertex and face lists are built.
func (m *Model) ComputeFaceNormals() {
	for i := range m.Faces {
		m.Faces[i].Normal = m.Triangle(i).CalculateNormal()
	}
}

// Triangle returns face i as a standalone triangle
func (m *Model) Triangle(i int) geometry.Triangle {
	f := m.Faces[i]
	return geometry.NewTriangle(f.Normal, m.Vertices[f.A], m.Vertices[f.B], m.Vertices[f.C])
}

// TriangleCount returns the number of triangles in the model
func (m *Model) TriangleCount() int {
	return len(m.Faces)
}

// BoundingBox calculates the bounding box of the entire model
func (m *Model) BoundingBox() geometry.BoundingBox {
	return m.TransformedBoundingBox(geometry.Identity())
}

// TransformedBoundingBox returns the bounds of the model's vertices after
// applying matrix, leaving the model itself untouched.
func (m *Model) TransformedBoundingBox(matrix geometry.Matrix4) geometry.BoundingBox {
	bbox := geometry.NewBoundingBox()
	for _, v := range m.Vertices {
		bbox.Extend(matrix.TransformPoint(v))
	}
	return bbox
}

// SurfaceArea calculates the total surface area of the model
func (m *Model) SurfaceArea() float64 {
	totalArea := 0.0
	for i := range m.Faces {
		totalArea += m.Triangle(i).Area()
	}
	return totalArea
}
