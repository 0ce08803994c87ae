package main

import (
	"context"
	"errors"
	"fmt"
	"image/color"
	"log"
	"os"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/widget"
	"github.com/philipparndt/plmview/internal/config"
	"github.com/philipparndt/plmview/internal/loader"
	"github.com/philipparndt/plmview/pkg/scene"
	"github.com/philipparndt/plmview/pkg/viewer"
)

type App struct {
	window fyne.Window
	cfg    config.Config

	source *loader.Source
	viewer *scene.Viewer
	widget *viewer.ViewerWidget
	cancel context.CancelFunc

	zoomSlider  *widget.Slider
	transparent *widget.Check
	axis        *widget.Check
	tree        *widget.Tree
	selected    string
	colors      map[string]color.Color
}

func main() {
	cfg, err := config.Load(os.Getenv("PLMVIEW_CONFIG"))
	if err != nil {
		log.Fatalf("Error: %v", err)
	}

	a := app.New()
	w := a.NewWindow("PLM Viewer")

	appInstance := &App{
		window: w,
		cfg:    cfg,
		colors: make(map[string]color.Color),
	}

	if len(os.Args) > 1 {
		appInstance.loadFile(os.Args[1])
	} else {
		appInstance.showWelcomeScreen()
	}

	w.SetOnClosed(appInstance.close)
	w.Resize(fyne.NewSize(1200, 800))
	w.ShowAndRun()
}

func (a *App) showWelcomeScreen() {
	welcomeLabel := widget.NewLabel("Welcome to the PLM Viewer")
	welcomeLabel.TextStyle = fyne.TextStyle{Bold: true}

	instructionLabel := widget.NewLabel("Open an STL file or an assembly (.arb) to display it")

	openButton := widget.NewButton("Open File", func() {
		a.showFileDialog()
	})

	content := container.NewVBox(
		layout.NewSpacer(),
		container.NewCenter(welcomeLabel),
		container.NewCenter(instructionLabel),
		layout.NewSpacer(),
		container.NewCenter(openButton),
		layout.NewSpacer(),
	)

	a.window.SetContent(content)
}

func (a *App) showFileDialog() {
	dialog.ShowFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil {
			dialog.ShowError(err, a.window)
			return
		}
		if reader == nil {
			return
		}
		defer reader.Close()

		a.loadFile(reader.URI().Path())
	}, a.window)
}

// close stops the render loop and removes conversion output
func (a *App) close() {
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	if a.source != nil {
		a.source.Close()
		a.source = nil
	}
}

func (a *App) loadFile(filename string) {
	ctx := context.Background()
	src, err := loader.Open(ctx, filename, a.cfg)
	if err != nil {
		dialog.ShowError(fmt.Errorf("failed to load %s: %w", filename, err), a.window)
		return
	}
	v, err := src.NewViewer(ctx)
	if err != nil && !errors.Is(err, scene.ErrRendererUnavailable) {
		src.Close()
		dialog.ShowError(fmt.Errorf("failed to load %s: %w", filename, err), a.window)
		return
	}

	a.close()
	a.source, a.viewer = src, v
	a.selected = ""

	if warning := v.Warning(); warning != "" {
		a.window.SetContent(container.NewCenter(widget.NewLabel(warning)))
		return
	}

	a.widget = viewer.NewViewerWidget(v)
	runCtx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel
	go a.widget.Run(runCtx)

	a.setupMainUI(filename)
}

// apply runs a command and brings the controls in line with the viewer
func (a *App) apply(cmd scene.Command) {
	if err := a.viewer.Apply(cmd); err != nil {
		dialog.ShowError(err, a.window)
		return
	}
	a.syncControls()
}

func (a *App) syncControls() {
	a.zoomSlider.SetValue(a.viewer.Zoom())
	a.transparent.SetChecked(a.viewer.Transparent())
	a.axis.SetChecked(a.viewer.AxisVisible())
	a.refreshColors()
	a.tree.Refresh()
}

func (a *App) actionButton(label string, action scene.Action) *widget.Button {
	return widget.NewButton(label, func() {
		a.apply(scene.Command{Action: action})
	})
}

func (a *App) setupMainUI(filename string) {
	zoomButtons := container.NewGridWithColumns(3,
		a.actionButton("Zoom +", scene.ActionZoomIn),
		a.actionButton("Zoom -", scene.ActionZoomOut),
		a.actionButton("Fit all", scene.ActionFitAll),
	)

	viewButtons := container.NewGridWithColumns(4,
		a.actionButton("Axo", scene.ActionViewAxo),
		a.actionButton("Top", scene.ActionViewTop),
		a.actionButton("Bottom", scene.ActionViewBottom),
		a.actionButton("Front", scene.ActionViewFront),
		a.actionButton("Rear", scene.ActionViewRear),
		a.actionButton("Left", scene.ActionViewLeft),
		a.actionButton("Right", scene.ActionViewRight),
	)

	colorButtons := container.NewGridWithColumns(2,
		a.actionButton("Random colours", scene.ActionRandomColor),
		a.actionButton("Initial colours", scene.ActionInitialColor),
	)

	a.zoomSlider = widget.NewSlider(scene.MinZoom, scene.MaxZoom)
	a.zoomSlider.Orientation = widget.Vertical
	a.zoomSlider.SetValue(a.viewer.Zoom())
	a.zoomSlider.OnChanged = func(value float64) {
		a.viewer.Slide(value)
	}

	a.transparent = widget.NewCheck("Transparency", func(on bool) {
		if on != a.viewer.Transparent() {
			a.apply(scene.Command{Action: scene.ActionTransparency, On: &on})
		}
	})
	a.transparent.SetChecked(a.viewer.Transparent())

	a.axis = widget.NewCheck("Axis", func(on bool) {
		if on != a.viewer.AxisVisible() {
			a.apply(scene.Command{Action: scene.ActionAxis, On: &on})
		}
	})
	a.axis.SetChecked(a.viewer.AxisVisible())

	a.tree = a.partTree()
	hideButton := widget.NewButton("Show / hide selected", func() {
		if a.selected != "" {
			a.apply(scene.Command{Action: scene.ActionTogglePart, Part: a.selected})
		}
	})

	instructions := widget.NewLabel(
		"Drag to rotate the view and the lights\n" +
			"Scroll or use the slider to zoom\n" +
			"Hold S while dragging to zoom, D to pan\n" +
			"Select a part to highlight it",
	)
	instructions.Wrapping = fyne.TextWrapWord

	controls := container.NewVBox(
		widget.NewLabel(filename),
		widget.NewSeparator(),
		widget.NewLabel("Zoom:"),
		zoomButtons,
		widget.NewLabel("Views:"),
		viewButtons,
		widget.NewSeparator(),
		colorButtons,
		container.NewHBox(a.transparent, a.axis),
		widget.NewSeparator(),
		instructions,
		widget.NewButton("Open File", a.showFileDialog),
	)

	sidebar := container.NewBorder(
		controls,   // top
		hideButton, // bottom
		nil,        // left
		nil,        // right
		a.tree,     // center
	)
	split := container.NewHSplit(
		container.NewBorder(nil, nil, a.zoomSlider, nil, a.widget),
		sidebar,
	)
	split.Offset = 0.72

	a.window.SetContent(split)
	a.window.Canvas().Focus(a.widget)
}

func (a *App) refreshColors() {
	for _, part := range a.viewer.State().Parts {
		if c, err := scene.ParseColor(part.Color); err == nil {
			alpha := 1.0
			if !part.Visible {
				alpha = 0.25
			}
			a.colors[part.ID] = c.RGBA(alpha)
		}
	}
}

// partTree shows the assembly menu. Selecting a node highlights it and
// every part below it.
func (a *App) partTree() *widget.Tree {
	menu := a.viewer.Menu()
	if menu == nil {
		part, _ := a.viewer.Graph().Object(scene.SinglePartID)
		menu = &scene.MenuItem{ID: scene.SinglePartID, Name: part.Name, Leaf: true}
	}

	items := make(map[string]*scene.MenuItem)
	var index func(*scene.MenuItem)
	index = func(item *scene.MenuItem) {
		items[item.ID] = item
		for _, child := range item.Children {
			index(child)
		}
	}
	index(menu)
	a.refreshColors()

	tree := widget.NewTree(
		func(uid widget.TreeNodeID) []widget.TreeNodeID {
			if uid == "" {
				return []widget.TreeNodeID{menu.ID}
			}
			var ids []widget.TreeNodeID
			if item, ok := items[uid]; ok {
				for _, child := range item.Children {
					ids = append(ids, child.ID)
				}
			}
			return ids
		},
		func(uid widget.TreeNodeID) bool {
			if uid == "" {
				return true
			}
			item, ok := items[uid]
			return ok && len(item.Children) > 0
		},
		func(branch bool) fyne.CanvasObject {
			swatch := canvas.NewRectangle(color.Transparent)
			swatch.SetMinSize(fyne.NewSize(12, 12))
			return container.NewHBox(swatch, widget.NewLabel(""))
		},
		func(uid widget.TreeNodeID, branch bool, node fyne.CanvasObject) {
			row := node.(*fyne.Container)
			swatch := row.Objects[0].(*canvas.Rectangle)
			label := row.Objects[1].(*widget.Label)

			item := items[uid]
			label.SetText(fmt.Sprintf("%s (%s)", item.Name, item.ID))
			if c, ok := a.colors[uid]; ok {
				swatch.FillColor = c
			} else {
				swatch.FillColor = color.Transparent
			}
			swatch.Refresh()
		},
	)

	tree.OnSelected = func(uid widget.TreeNodeID) {
		if a.selected != "" {
			a.viewer.UnhighlightPart(a.selected)
		}
		a.selected = uid
		a.apply(scene.Command{Action: scene.ActionHighlight, Part: uid})
	}
	tree.OnUnselected = func(uid widget.TreeNodeID) {
		if a.selected == uid {
			a.selected = ""
		}
		a.apply(scene.Command{Action: scene.ActionUnhighlight, Part: uid})
	}
	tree.OpenAllBranches()
	return tree
}
