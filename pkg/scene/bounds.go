package scene

import (
	"github.com/philipparndt/plmview/pkg/geometry"
)

// GroupBoundingBox returns the union of the children's bounds, each child
// measured after its local transform. ok is false when no child has
// geometry.
func GroupBoundingBox(g *Group) (box geometry.BoundingBox, ok bool) {
	box = geometry.NewBoundingBox()
	for _, child := range g.Children {
		if child.Mesh == nil || len(child.Mesh.Vertices) == 0 {
			continue
		}
		box.Union(child.Mesh.TransformedBoundingBox(child.Matrix))
		ok = true
	}
	return box, ok
}

// CenterGroup moves the group so its bounding box centre sits at the origin
// and returns the largest box extent. An empty group keeps its position and
// has radius 0.
func CenterGroup(g *Group) float64 {
	box, ok := GroupBoundingBox(g)
	if !ok {
		return 0
	}
	g.Position = box.Center().Mul(-1)
	return box.Radius()
}
