package scene

import (
	"fmt"
	"sort"

	"github.com/samber/lo"
)

// Relations maps a part id to the ids of the parts it visually groups.
// A missing key means the part has no children.
type Relations map[string][]string

// Graph links part ids to render objects and child part ids. Traversals
// carry a visited set, so a cyclic relation map cannot loop forever.
type Graph struct {
	objects   map[string]*Part
	relations Relations
	hidden    map[string]bool
}

// NewGraph creates a graph over the part map and relation map; either may
// be nil.
func NewGraph(objects map[string]*Part, relations Relations) *Graph {
	if objects == nil {
		objects = make(map[string]*Part)
	}
	if relations == nil {
		relations = make(Relations)
	}
	return &Graph{objects: objects, relations: relations, hidden: make(map[string]bool)}
}

// Object returns the render object registered for id
func (g *Graph) Object(id string) (*Part, bool) {
	p, ok := g.objects[id]
	return p, ok
}

// Children returns the direct child ids of id
func (g *Graph) Children(id string) []string {
	return g.relations[id]
}

// IDs returns every id known as an object or a relation node, sorted
func (g *Graph) IDs() []string {
	ids := lo.Uniq(append(lo.Keys(g.objects), lo.Keys(g.relations)...))
	sort.Strings(ids)
	return ids
}

// Walk visits id and everything reachable from it exactly once, in
// depth-first pre-order.
func (g *Graph) Walk(id string, visit func(id string, part *Part)) {
	visited := make(map[string]bool)
	var walk func(string)
	walk = func(id string) {
		if visited[id] {
			return
		}
		visited[id] = true
		part := g.objects[id]
		visit(id, part)
		for _, child := range g.relations[id] {
			walk(child)
		}
	}
	walk(id)
}

// Descendants lists the ids reachable from id, excluding id itself
func (g *Graph) Descendants(id string) []string {
	var out []string
	g.Walk(id, func(visited string, _ *Part) {
		if visited != id {
			out = append(out, visited)
		}
	})
	return out
}

// Highlight paints id and all its descendants with c. Ids without a
// render object are structural nodes and are skipped silently.
func (g *Graph) Highlight(id string, c Color) {
	g.Walk(id, func(_ string, part *Part) {
		if part != nil {
			part.Material.Color = c
		}
	})
}

// Unhighlight restores the original colour of id and its descendants
func (g *Graph) Unhighlight(id string) {
	g.Walk(id, func(_ string, part *Part) {
		if part != nil {
			part.Material.Color = part.Material.OriginalColor
		}
	})
}

// Visible reports the visibility flag of a part or structural node
func (g *Graph) Visible(id string) bool {
	return !g.hidden[id]
}

// SetVisible shows or hides id and every part below it
func (g *Graph) SetVisible(id string, visible bool) {
	g.Walk(id, func(id string, part *Part) {
		g.hidden[id] = !visible
		if part != nil {
			part.Visible = visible
		}
	})
}

// Toggle flips the visibility of id and propagates it downwards
func (g *Graph) Toggle(id string) bool {
	visible := !g.Visible(id)
	g.SetVisible(id, visible)
	return visible
}

// ValidationSeverity indicates whether a finding breaks the graph
type ValidationSeverity int

const (
	SeverityError   ValidationSeverity = iota // cycle
	SeverityWarning                           // dangling reference
)

func (s ValidationSeverity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return fmt.Sprintf("ValidationSeverity(%d)", int(s))
	}
}

// ValidationError describes one problem in the relation map
type ValidationError struct {
	PartID   string
	Message  string
	Severity ValidationSeverity
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] part %s: %s", e.Severity, e.PartID, e.Message)
}

// Validate reports relation cycles and child ids that are neither objects
// nor relation nodes. It never mutates the graph.
func (g *Graph) Validate() []ValidationError {
	var errs []ValidationError

	const (
		unvisited = iota
		inProgress
		done
	)
	state := make(map[string]int)
	var visit func(id string, path []string)
	visit = func(id string, path []string) {
		switch state[id] {
		case inProgress:
			errs = append(errs, ValidationError{
				PartID:   id,
				Message:  fmt.Sprintf("relation cycle %v", append(path[:len(path):len(path)], id)),
				Severity: SeverityError,
			})
			return
		case done:
			return
		}
		state[id] = inProgress
		path = append(path[:len(path):len(path)], id)
		for _, child := range g.relations[id] {
			visit(child, path)
		}
		state[id] = done
	}

	parents := lo.Keys(g.relations)
	sort.Strings(parents)
	for _, id := range parents {
		visit(id, nil)
	}

	for _, id := range parents {
		for _, child := range g.relations[id] {
			_, isObject := g.objects[child]
			_, isNode := g.relations[child]
			if !isObject && !isNode {
				errs = append(errs, ValidationError{
					PartID:   id,
					Message:  fmt.Sprintf("child %s has no object and no children", child),
					Severity: SeverityWarning,
				})
			}
		}
	}
	return errs
}
