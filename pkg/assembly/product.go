package assembly

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/philipparndt/plmview/pkg/geometry"
	"github.com/philipparndt/plmview/pkg/scene"
	"github.com/samber/lo"
)

// ErrInvalidProduct is wrapped by every structural error of a product tree
var ErrInvalidProduct = errors.New("assembly: invalid product")

// Product is a node of an assembly tree. A product with geometry is a
// part; otherwise it is an assembly made of links.
type Product struct {
	Name     string    `json:"name"`
	Geometry string    `json:"geometry,omitempty"`
	Color    []float64 `json:"color,omitempty"` // r, g, b in [0, 1]
	Links    []*Link   `json:"links,omitempty"`
}

// Link places Quantity occurrences of a child product, each with its own
// name and location.
type Link struct {
	Quantity  int        `json:"quantity"`
	Names     []string   `json:"names,omitempty"`
	Locations []Location `json:"locations"`
	Product   *Product   `json:"product"`
}

// Location is a rigid transform given as the first three rows of a 4x4
// matrix, row by row: x1 x2 x3 x4, y1 y2 y3 y4, z1 z2 z3 z4.
type Location [12]float64

// IdentityLocation leaves an occurrence where its product is modelled
var IdentityLocation = Location{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0}

// Matrix expands the location to a 4x4 matrix with 0 0 0 1 as last row
func (l Location) Matrix() geometry.Matrix4 {
	return geometry.NewMatrix4(
		l[0], l[1], l[2], l[3],
		l[4], l[5], l[6], l[7],
		l[8], l[9], l[10], l[11],
		0, 0, 0, 1,
	)
}

// IsPart reports whether the product carries geometry
func (p *Product) IsPart() bool {
	return p.Geometry != ""
}

// PartColor returns the product colour, white when none is given
func (p *Product) PartColor() scene.Color {
	if len(p.Color) != 3 {
		return scene.DefaultPartColor
	}
	return scene.RGB(p.Color[0], p.Color[1], p.Color[2])
}

// Name returns the name of occurrence i. Occurrences without a name are
// called after their product.
func (l *Link) Name(i int) string {
	if i < len(l.Names) && l.Names[i] != "" {
		return l.Names[i]
	}
	return l.Product.Name
}

// Location returns the location of occurrence i
func (l *Link) Location(i int) Location {
	if i < len(l.Locations) {
		return l.Locations[i]
	}
	return IdentityLocation
}

// Validate checks that every link points to a product and has one
// location per occurrence.
func (p *Product) Validate() error {
	return p.validate(p.Name)
}

func (p *Product) validate(path string) error {
	if p.IsPart() && len(p.Links) > 0 {
		return fmt.Errorf("%w: %s has both geometry and links", ErrInvalidProduct, path)
	}
	for i, link := range p.Links {
		if link == nil || link.Product == nil {
			return fmt.Errorf("%w: %s link %d has no product", ErrInvalidProduct, path, i)
		}
		if link.Quantity < 0 {
			return fmt.Errorf("%w: %s link %d has quantity %d", ErrInvalidProduct, path, i, link.Quantity)
		}
		if len(link.Locations) != link.Quantity {
			return fmt.Errorf("%w: %s link %d has %d locations for %d occurrences",
				ErrInvalidProduct, path, i, len(link.Locations), link.Quantity)
		}
		if err := link.Product.validate(path + "/" + link.Product.Name); err != nil {
			return err
		}
	}
	return nil
}

// Geometries lists the distinct geometry references of the tree in
// first-seen order.
func (p *Product) Geometries() []string {
	var refs []string
	var collect func(*Product)
	collect = func(p *Product) {
		if p.IsPart() {
			refs = append(refs, p.Geometry)
		}
		for _, link := range p.Links {
			if link != nil && link.Product != nil {
				collect(link.Product)
			}
		}
	}
	collect(p)
	return lo.Uniq(refs)
}

// Occurrences counts the part instances the tree expands to
func (p *Product) Occurrences() int {
	if p.IsPart() {
		return 1
	}
	return lo.SumBy(p.Links, func(link *Link) int {
		return link.Quantity * link.Product.Occurrences()
	})
}

// Decode reads an assembly tree from JSON and validates it
func Decode(r io.Reader) (*Product, error) {
	var p Product
	if err := json.NewDecoder(r).Decode(&p); err != nil {
		return nil, fmt.Errorf("failed to decode assembly: %w", err)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// Load reads an assembly file. Relative geometry references are resolved
// against the file's directory.
func Load(filename string) (*Product, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open assembly: %w", err)
	}
	defer file.Close()

	p, err := Decode(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	p.resolve(filepath.Dir(filename))
	return p, nil
}

func (p *Product) resolve(dir string) {
	if p.IsPart() && !filepath.IsAbs(p.Geometry) {
		p.Geometry = filepath.Join(dir, p.Geometry)
	}
	for _, link := range p.Links {
		link.Product.resolve(dir)
	}
}

// Encode writes the tree as indented JSON
func Encode(w io.Writer, p *Product) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(p)
}
