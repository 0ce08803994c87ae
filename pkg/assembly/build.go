package assembly

import (
	"fmt"
	"strconv"

	"github.com/philipparndt/plmview/pkg/geometry"
	"github.com/philipparndt/plmview/pkg/scene"
	"github.com/philipparndt/plmview/pkg/stl"
)

// MeshLoader returns the mesh of a geometry reference
type MeshLoader func(geometry string) (*stl.Model, error)

// Assembly is a product tree expanded into the viewer's inputs
type Assembly struct {
	Group     *scene.Group
	Parts     map[string]*scene.Part
	Relations scene.Relations
	Menu      *scene.MenuItem
}

// PartID formats the identifier of menu entry n
func PartID(n int) string {
	return "part" + strconv.Itoa(n)
}

// Build expands the product tree. Menu entries are numbered depth first:
// the root is part0 and every occurrence takes the next free number when
// it is reached. An occurrence of a part registers its mesh under its own
// entry id; an occurrence of an assembly lists its children's ids in the
// relation map. Each mesh is loaded once and shared by all occurrences.
func Build(root *Product, load MeshLoader) (*Assembly, error) {
	b := &builder{
		load:   load,
		meshes: make(map[string]*stl.Model),
		assembly: &Assembly{
			Group:     scene.NewGroup(),
			Parts:     make(map[string]*scene.Part),
			Relations: make(scene.Relations),
		},
	}

	b.assembly.Menu = &scene.MenuItem{ID: PartID(0), Name: root.Name, Leaf: root.IsPart()}
	if err := b.process(root, nil, 0, b.assembly.Menu); err != nil {
		return nil, err
	}
	return b.assembly, nil
}

type builder struct {
	counter  int
	load     MeshLoader
	meshes   map[string]*stl.Model
	assembly *Assembly
}

func (b *builder) process(p *Product, locations []Location, entry int, item *scene.MenuItem) error {
	b.counter++

	if p.IsPart() {
		return b.addPart(p, locations, entry, item.Name)
	}

	children := []string{}
	for _, link := range p.Links {
		for i := 0; i < link.Quantity; i++ {
			id := b.counter
			children = append(children, PartID(id))

			child := &scene.MenuItem{ID: PartID(id), Name: link.Name(i), Leaf: link.Product.IsPart()}
			item.Children = append(item.Children, child)

			nested := append(locations[:len(locations):len(locations)], link.Location(i))
			if err := b.process(link.Product, nested, id, child); err != nil {
				return err
			}
		}
	}
	b.assembly.Relations[PartID(entry)] = children
	return nil
}

func (b *builder) addPart(p *Product, locations []Location, entry int, name string) error {
	mesh, err := b.mesh(p.Geometry)
	if err != nil {
		return err
	}

	part := scene.NewPart(PartID(entry), mesh, p.PartColor())
	part.Name = name
	matrix := geometry.Identity()
	for _, l := range locations {
		matrix = matrix.Mul(l.Matrix())
	}
	part.Matrix = matrix

	b.assembly.Group.Add(part)
	b.assembly.Parts[part.ID] = part
	return nil
}

func (b *builder) mesh(ref string) (*stl.Model, error) {
	if mesh, ok := b.meshes[ref]; ok {
		return mesh, nil
	}
	mesh, err := b.load(ref)
	if err != nil {
		return nil, fmt.Errorf("failed to load geometry %s: %w", ref, err)
	}
	b.meshes[ref] = mesh
	return mesh, nil
}

// Options fills the scene inputs of base with the assembly
func (a *Assembly) Options(base scene.Options) scene.Options {
	base.HasMenu = true
	base.STLFile = ""
	base.Group = a.Group
	base.Parts = a.Parts
	base.Relations = a.Relations
	base.Menu = a.Menu
	return base
}

// FileLoader loads geometry references as STL files, tolerating truncated
// files the same way the viewer does.
func FileLoader(ref string) (*stl.Model, error) {
	model, err := stl.Parse(ref)
	if err != nil && model == nil {
		return nil, err
	}
	return model, nil
}
