package scene

import (
	"context"
	"time"
)

// DefaultFrameInterval is the tick period of RenderLoop, 60 frames a second
const DefaultFrameInterval = time.Second / 60

// RenderLoop ticks the viewer every interval and passes each frame to
// render. It returns when ctx is done. Ticks never overlap: a slow render
// delays the next tick instead of running beside it.
func RenderLoop(ctx context.Context, v *Viewer, interval time.Duration, render func(Frame)) error {
	if interval <= 0 {
		interval = DefaultFrameInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var rendered uint64
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			v.Tick()
			version := v.Version()
			if version == rendered {
				continue
			}
			rendered = version
			frame, err := v.Frame()
			if err != nil {
				continue
			}
			render(frame)
		}
	}
}
