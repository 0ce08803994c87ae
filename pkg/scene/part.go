package scene

import (
	"github.com/philipparndt/plmview/pkg/geometry"
	"github.com/philipparndt/plmview/pkg/stl"
)

// SinglePartID is the identifier a standalone STL mesh is registered under
const SinglePartID = "part2"

// Part is one renderable sub-object of an assembly
type Part struct {
	ID       string // key in the part map, e.g. "part3"
	Name     string
	Mesh     *stl.Model
	Matrix   geometry.Matrix4 // local transform, never recomputed
	Material *Material
	Visible  bool
}

// NewPart creates a visible part with an identity transform
func NewPart(id string, mesh *stl.Model, c Color) *Part {
	return &Part{
		ID:       id,
		Mesh:     mesh,
		Matrix:   geometry.Identity(),
		Material: NewBasicMaterial(c),
		Visible:  true,
	}
}

// Group is the parent of every part. Its position is the translation that
// centres the assembly on the origin.
type Group struct {
	Position geometry.Vector3
	Children []*Part
}

// NewGroup creates a group containing the given parts
func NewGroup(parts ...*Part) *Group {
	return &Group{Children: parts}
}

// Add appends a part to the group
func (g *Group) Add(p *Part) {
	g.Children = append(g.Children, p)
}

// Matrix returns the group's own transform
func (g *Group) Matrix() geometry.Matrix4 {
	return geometry.Translation(g.Position)
}

// NewSingleMesh builds the viewer input for one STL file: a group with a
// single part registered as SinglePartID and no relations.
func NewSingleMesh(model *stl.Model) (*Group, map[string]*Part) {
	part := NewPart(SinglePartID, model, SingleMeshColor)
	part.Name = model.Name
	return NewGroup(part), map[string]*Part{SinglePartID: part}
}
