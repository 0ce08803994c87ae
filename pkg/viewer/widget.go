package viewer

import (
	"context"
	"image"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"
	"github.com/philipparndt/plmview/pkg/scene"
)

// scrollToWheel converts fyne scroll steps to browser wheelDelta units
const scrollToWheel = 12

// ViewerWidget displays a scene.Viewer. Drags orbit the camera and the
// lights, the scroll wheel zooms and holding A, S or D switches the drag
// between rotate, zoom and pan.
type ViewerWidget struct {
	widget.BaseWidget
	viewer *scene.Viewer
	raster *canvas.Raster

	mu    sync.Mutex
	frame scene.Frame
	ready bool
	size  fyne.Size
}

var (
	_ fyne.Draggable  = (*ViewerWidget)(nil)
	_ fyne.Scrollable = (*ViewerWidget)(nil)
	_ fyne.Tappable   = (*ViewerWidget)(nil)
	_ desktop.Keyable = (*ViewerWidget)(nil)
)

// NewViewerWidget creates a widget for an initialized viewer
func NewViewerWidget(v *scene.Viewer) *ViewerWidget {
	w := &ViewerWidget{viewer: v}
	w.raster = canvas.NewRaster(w.draw)
	w.ExtendBaseWidget(w)
	if frame, err := v.Frame(); err == nil {
		w.frame, w.ready = frame, true
	}
	return w
}

// Run ticks the viewer until ctx is done and repaints after every change
func (w *ViewerWidget) Run(ctx context.Context) error {
	return scene.RenderLoop(ctx, w.viewer, scene.DefaultFrameInterval, func(frame scene.Frame) {
		w.mu.Lock()
		w.frame, w.ready = frame, true
		w.mu.Unlock()
		fyne.Do(w.raster.Refresh)
	})
}

func (w *ViewerWidget) draw(width, height int) image.Image {
	w.mu.Lock()
	frame, ready := w.frame, w.ready
	w.mu.Unlock()

	if !ready {
		return image.NewRGBA(image.Rect(0, 0, width, height))
	}
	return Render(frame, width, height)
}

// CreateRenderer creates the renderer for the widget
func (w *ViewerWidget) CreateRenderer() fyne.WidgetRenderer {
	return &viewerWidgetRenderer{widget: w}
}

// Dragged orbits the camera and the lights
func (w *ViewerWidget) Dragged(event *fyne.DragEvent) {
	size := w.Size()
	if size.Width == 0 || size.Height == 0 {
		return
	}
	w.viewer.Drag(float64(event.Dragged.DX/size.Width), float64(event.Dragged.DY/size.Height))
}

// DragEnd handles the end of a drag event
func (w *ViewerWidget) DragEnd() {}

// Scrolled zooms like the browser mouse wheel
func (w *ViewerWidget) Scrolled(event *fyne.ScrollEvent) {
	w.viewer.Wheel(scene.WheelDelta(float64(event.Scrolled.DY)*scrollToWheel, 0))
}

// Tapped takes keyboard focus so the trackball keys reach the viewer
func (w *ViewerWidget) Tapped(*fyne.PointEvent) {
	if c := fyne.CurrentApp().Driver().CanvasForObject(w); c != nil {
		c.Focus(w)
	}
}

// FocusGained implements fyne.Focusable
func (w *ViewerWidget) FocusGained() {}

// FocusLost releases any held trackball key
func (w *ViewerWidget) FocusLost() {
	w.viewer.Key("", false)
}

// TypedRune implements fyne.Focusable
func (w *ViewerWidget) TypedRune(rune) {}

// TypedKey implements fyne.Focusable
func (w *ViewerWidget) TypedKey(*fyne.KeyEvent) {}

// KeyDown switches the trackball drag mode
func (w *ViewerWidget) KeyDown(event *fyne.KeyEvent) {
	w.viewer.Key(string(event.Name), true)
}

// KeyUp returns the trackballs to rotating
func (w *ViewerWidget) KeyUp(event *fyne.KeyEvent) {
	w.viewer.Key(string(event.Name), false)
}

// viewerWidgetRenderer implements fyne.WidgetRenderer
type viewerWidgetRenderer struct {
	widget *ViewerWidget
}

func (r *viewerWidgetRenderer) Layout(size fyne.Size) {
	r.widget.raster.Resize(size)
	if size == r.widget.size {
		return
	}
	r.widget.size = size
	r.widget.viewer.Resize(float64(size.Width), float64(size.Height))
}

func (r *viewerWidgetRenderer) MinSize() fyne.Size {
	return fyne.NewSize(400, 400)
}

func (r *viewerWidgetRenderer) Refresh() {
	r.widget.raster.Refresh()
}

func (r *viewerWidgetRenderer) Objects() []fyne.CanvasObject {
	return []fyne.CanvasObject{r.widget.raster}
}

func (r *viewerWidgetRenderer) Destroy() {}
