package scene

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/philipparndt/plmview/pkg/stl"
)

var (
	// ErrRendererUnavailable means the host cannot render; it should show
	// its warning panel and stop.
	ErrRendererUnavailable = errors.New("scene: renderer unavailable")
	// ErrNoScene means neither an STL file nor a group was supplied
	ErrNoScene = errors.New("scene: nothing to display")
	// ErrNotInitialized is returned for commands sent before Init
	ErrNotInitialized = errors.New("scene: viewer not initialized")
)

// RendererWarning is the text hosts display when ErrRendererUnavailable is
// returned.
const RendererWarning = "Your graphics card does not seem to support WebGL. The 3D view is not available."

// Viewer owns the scene, the camera rig and the view state of one
// document. Methods are safe for concurrent use; each call, including a
// render tick, runs to completion before the next one starts.
type Viewer struct {
	mu sync.Mutex

	opts  Options
	group *Group
	graph *Graph
	menu  *MenuItem

	pivot  *Pivot
	axis   *AxisHelper
	camera *Camera

	ambient *Light
	spot1   *Light
	spot2   *Light

	controls      *Trackball
	spot1Controls *Trackball
	spot2Controls *Trackball

	radius      float64
	zoom        float64
	transparent bool
	axisVisible bool

	initialized bool
	warning     string
	version     uint64

	bindings map[Action]func(Command) error
}

// New creates a viewer. Nothing is built until Load or Init runs.
func New(opts Options) *Viewer {
	opts = opts.withDefaults()
	v := &Viewer{
		opts:        opts,
		group:       opts.Group,
		menu:        opts.Menu,
		zoom:        opts.InitialZoom,
		transparent: opts.Transparent,
		axisVisible: opts.AxisVisible,
	}
	v.graph = NewGraph(opts.Parts, opts.Relations)
	v.bindings = v.actionTable()
	return v
}

// Load fetches and decodes the STL file named in the options, if any, then
// builds the scene. A fetch that never returns blocks until ctx is done.
func (v *Viewer) Load(ctx context.Context, fetcher Fetcher) error {
	v.mu.Lock()
	location := v.opts.STLFile
	v.mu.Unlock()

	if location != "" {
		data, err := fetcher.Fetch(ctx, location)
		if err != nil {
			return fmt.Errorf("failed to fetch %s: %w", location, err)
		}
		model, err := stl.Decode(data)
		if err != nil {
			if !errors.Is(err, stl.ErrTruncated) {
				return fmt.Errorf("failed to decode %s: %w", location, err)
			}
			log.Printf("Warning: %s: %v", location, err)
		}

		group, parts := NewSingleMesh(model)
		v.mu.Lock()
		v.group = group
		v.graph = NewGraph(parts, nil)
		v.menu = nil
		v.mu.Unlock()
	}

	return v.Init()
}

// Init builds lights, materials, the pivot, the axis helper, the camera
// and the three trackballs. Calling it again is a no-op.
func (v *Viewer) Init() error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.initialized {
		return nil
	}
	if v.opts.HasRenderer != nil && !v.opts.HasRenderer() {
		v.warning = RendererWarning
		return ErrRendererUnavailable
	}
	if v.group == nil {
		return ErrNoScene
	}

	v.ambient, v.spot1, v.spot2 = newLights()

	v.radius = CenterGroup(v.group)
	if v.radius == 0 {
		// empty or flat-point scene, keep clip planes usable
		v.radius = 1
	}

	for _, part := range v.group.Children {
		c := DefaultPartColor
		if part.Material != nil {
			c = part.Material.Color
		}
		part.Material = phongMaterial(c)
		part.Material.setBaseline()
	}

	v.pivot = newPivot()
	v.axis = NewAxisHelper()
	v.axis.Position = v.group.Position.Mul(1.3)
	v.axis.Scale = v.radius / 600
	v.axis.SetVisible(v.axisVisible)

	v.camera = NewCamera(v.radius, v.opts.Width/v.opts.Height)

	maxDistance := v.radius * 1000
	v.controls = NewTrackball(v.camera, v.opts.Controls, maxDistance)
	v.spot1Controls = NewTrackball(v.spot1, v.opts.Controls, maxDistance)
	v.spot2Controls = NewTrackball(v.spot2, v.opts.Controls, maxDistance)

	v.applyTransparency(v.transparent)
	v.initialized = true
	v.version++
	return nil
}

// Tick runs one frame: the three trackballs consume pending input.
// It reports whether anything moved.
func (v *Viewer) Tick() bool {
	v.mu.Lock()
	defer v.mu.Unlock()

	if !v.initialized {
		return false
	}
	moved := v.controls.Pending() || v.spot1Controls.Pending() || v.spot2Controls.Pending()
	v.controls.Update()
	v.spot1Controls.Update()
	v.spot2Controls.Update()
	if moved {
		v.version++
	}
	return moved
}

// Resize adapts the camera aspect and re-centres the assembly, as done
// when entering or leaving full screen.
func (v *Viewer) Resize(width, height float64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.resize(width, height)
}

func (v *Viewer) resize(width, height float64) {
	if width <= 0 || height <= 0 {
		return
	}
	v.opts.Width, v.opts.Height = width, height
	if !v.initialized {
		return
	}
	v.camera.Aspect = width / height
	if radius := CenterGroup(v.group); radius > 0 {
		v.radius = radius
	}
	v.version++
}

// Radius returns the largest extent of the assembly
func (v *Viewer) Radius() float64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.radius
}

// Zoom returns the current zoom level in [0, 100]
func (v *Viewer) Zoom() float64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.zoom
}

// Camera returns a copy of the camera
func (v *Viewer) Camera() Camera {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.camera == nil {
		return Camera{}
	}
	return *v.camera
}

// Pivot returns a copy of the pivot transform
func (v *Viewer) Pivot() Pivot {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.pivot == nil {
		return Pivot{}
	}
	return *v.pivot
}

// Graph exposes the part graph
func (v *Viewer) Graph() *Graph {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.graph
}

// Group exposes the displayed group
func (v *Viewer) Group() *Group {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.group
}

// Menu returns the part tree, nil for a single STL
func (v *Viewer) Menu() *MenuItem {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.menu
}

// Initialized reports whether Init completed
func (v *Viewer) Initialized() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.initialized
}

// Version increases on every visible change; hosts use it to decide
// whether to publish a new state.
func (v *Viewer) Version() uint64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.version
}

// Swatches returns the CSS colour of every part keyed by part id, for the
// colour boxes of the menu. It is empty when the viewer has no menu.
func (v *Viewer) Swatches() map[string]string {
	v.mu.Lock()
	defer v.mu.Unlock()

	out := make(map[string]string)
	if !v.opts.HasMenu || v.group == nil {
		return out
	}
	for _, part := range v.group.Children {
		out[part.ID] = part.Material.Color.CSS()
	}
	return out
}
