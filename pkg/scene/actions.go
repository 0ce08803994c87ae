package scene

import (
	"errors"
	"fmt"
	"sort"
	"unicode"

	"github.com/samber/lo"
)

var (
	// ErrUnknownAction is returned for an action name with no binding
	ErrUnknownAction = errors.New("scene: unknown action")
	// ErrUnknownView is returned for a view name with no orientation
	ErrUnknownView = errors.New("scene: unknown view")
	// ErrMissingPart is returned when a part command carries no part id
	ErrMissingPart = errors.New("scene: command needs a part id")
)

// ViewName names one of the fixed pivot orientations
type ViewName string

const (
	ViewTop         ViewName = "top"
	ViewBottom      ViewName = "bottom"
	ViewFront       ViewName = "front"
	ViewRear        ViewName = "rear"
	ViewLeft        ViewName = "left"
	ViewRight       ViewName = "right"
	ViewAxonometric ViewName = "axo"
)

// Action identifies a toolbar button or input event a host forwards to the
// viewer.
type Action string

const (
	ActionZoomIn       Action = "zoom-in"
	ActionZoomOut      Action = "zoom-out"
	ActionFitAll       Action = "zoom-fit-all"
	ActionZoom         Action = "zoom"
	ActionWheel        Action = "wheel"
	ActionViewAxo      Action = "view-axo"
	ActionViewTop      Action = "view-top"
	ActionViewBottom   Action = "view-bottom"
	ActionViewLeft     Action = "view-left"
	ActionViewRight    Action = "view-right"
	ActionViewFront    Action = "view-front"
	ActionViewRear     Action = "view-rear"
	ActionRandomColor  Action = "random-color"
	ActionInitialColor Action = "initial-color"
	ActionTransparency Action = "transparency"
	ActionAxis         Action = "axis"
	ActionHighlight    Action = "highlight"
	ActionUnhighlight  Action = "unhighlight"
	ActionTogglePart   Action = "toggle-part"
	ActionResize       Action = "resize"
	ActionDrag         Action = "drag"
	ActionKeyDown      Action = "key-down"
	ActionKeyUp        Action = "key-up"
)

// Command is one action with its arguments. Fields an action does not use
// are ignored.
type Command struct {
	Action Action  `json:"action"`
	Part   string  `json:"part,omitempty"`
	Value  float64 `json:"value,omitempty"`
	// On sets a toggle explicitly; nil flips it
	On     *bool   `json:"on,omitempty"`
	Width  float64 `json:"width,omitempty"`
	Height float64 `json:"height,omitempty"`
	DX     float64 `json:"dx,omitempty"`
	DY     float64 `json:"dy,omitempty"`
	Key    string  `json:"key,omitempty"`
}

// ParseAction validates an action name
func ParseAction(name string) (Action, error) {
	a := Action(name)
	if !lo.Contains(Actions(), a) {
		return "", fmt.Errorf("%w: %q", ErrUnknownAction, name)
	}
	return a, nil
}

// Actions lists every bound action, sorted
func Actions() []Action {
	actions := lo.Keys((&Viewer{}).actionTable())
	sort.Slice(actions, func(i, j int) bool { return actions[i] < actions[j] })
	return actions
}

// Apply runs a command against the viewer
func (v *Viewer) Apply(cmd Command) error {
	fn, ok := v.bindings[cmd.Action]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownAction, cmd.Action)
	}
	return fn(cmd)
}

func (v *Viewer) actionTable() map[Action]func(Command) error {
	view := func(name ViewName) func(Command) error {
		return func(Command) error { return v.View(name) }
	}
	part := func(fn func(id string) error) func(Command) error {
		return func(cmd Command) error {
			if cmd.Part == "" {
				return ErrMissingPart
			}
			return fn(cmd.Part)
		}
	}

	return map[Action]func(Command) error{
		ActionZoomIn:       func(Command) error { return v.ZoomIn() },
		ActionZoomOut:      func(Command) error { return v.ZoomOut() },
		ActionFitAll:       func(Command) error { return v.FitAll() },
		ActionZoom:         func(cmd Command) error { return v.SetScale(cmd.Value) },
		ActionWheel:        func(cmd Command) error { return v.Wheel(cmd.Value) },
		ActionViewAxo:      view(ViewAxonometric),
		ActionViewTop:      view(ViewTop),
		ActionViewBottom:   view(ViewBottom),
		ActionViewLeft:     view(ViewLeft),
		ActionViewRight:    view(ViewRight),
		ActionViewFront:    view(ViewFront),
		ActionViewRear:     view(ViewRear),
		ActionRandomColor:  func(Command) error { return v.RandomColor(nil) },
		ActionInitialColor: func(Command) error { return v.ReinitColor() },
		ActionTransparency: func(cmd Command) error {
			if cmd.On != nil {
				return v.SetTransparency(*cmd.On)
			}
			return v.ToggleTransparency()
		},
		ActionAxis: func(cmd Command) error {
			if cmd.On != nil {
				return v.SetAxisVisible(*cmd.On)
			}
			return v.ToggleAxis()
		},
		ActionHighlight:   part(v.HighlightPart),
		ActionUnhighlight: part(v.UnhighlightPart),
		ActionTogglePart: part(func(id string) error {
			_, err := v.TogglePart(id)
			return err
		}),
		ActionResize: func(cmd Command) error {
			v.Resize(cmd.Width, cmd.Height)
			return nil
		},
		ActionDrag: func(cmd Command) error {
			return v.Drag(cmd.DX, cmd.DY)
		},
		ActionKeyDown: func(cmd Command) error {
			return v.Key(cmd.Key, true)
		},
		ActionKeyUp: func(cmd Command) error {
			return v.Key(cmd.Key, false)
		},
	}
}

// Drag feeds a pointer movement to the camera and both light trackballs
func (v *Viewer) Drag(dx, dy float64) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.initialized {
		return ErrNotInitialized
	}
	for _, t := range v.trackballs() {
		t.Drag(dx, dy)
	}
	return nil
}

// Key forwards a key press or release to the trackballs
func (v *Viewer) Key(key string, down bool) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.initialized {
		return ErrNotInitialized
	}
	r := []rune(key)
	for _, t := range v.trackballs() {
		switch {
		case !down:
			t.KeyUp()
		case len(r) == 1:
			t.KeyDown(unicode.ToUpper(r[0]))
		}
	}
	return nil
}

func (v *Viewer) trackballs() []*Trackball {
	return []*Trackball{v.controls, v.spot1Controls, v.spot2Controls}
}
