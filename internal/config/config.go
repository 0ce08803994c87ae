package config

import (
	"fmt"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/philipparndt/plmview/pkg/converter"
	"github.com/philipparndt/plmview/pkg/scene"
)

// Duration is a time.Duration written as "300ms" or "2s" in TOML
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Viewer holds the scene defaults
type Viewer struct {
	Width          float64 `toml:"width"`
	Height         float64 `toml:"height"`
	ZoomStep       float64 `toml:"zoom_step"`
	InitialZoom    float64 `toml:"initial_zoom"`
	HighlightColor string  `toml:"highlight_color"`
	Transparent    bool    `toml:"transparent"`
	Axis           bool    `toml:"axis"`
	RotateSpeed    float64 `toml:"rotate_speed"`
	PanSpeed       float64 `toml:"pan_speed"`
	Damping        float64 `toml:"damping"`
}

// Server holds the serve command settings
type Server struct {
	Addr          string   `toml:"addr"`
	ThumbnailSize int      `toml:"thumbnail_size"`
	FrameInterval Duration `toml:"frame_interval"`
	Debounce      Duration `toml:"debounce"`
	Watch         bool     `toml:"watch"`
}

// Config is the plmview configuration file
type Config struct {
	Viewer     Viewer              `toml:"viewer"`
	Server     Server              `toml:"server"`
	Converters []converter.Command `toml:"converter"`
}

// Default returns the built-in configuration
func Default() Config {
	opts := scene.DefaultOptions()
	return Config{
		Viewer: Viewer{
			Width:          opts.Width,
			Height:         opts.Height,
			ZoomStep:       opts.ZoomStep,
			InitialZoom:    opts.InitialZoom,
			HighlightColor: opts.HighlightColor.Hex(),
			Transparent:    opts.Transparent,
			Axis:           opts.AxisVisible,
			RotateSpeed:    opts.Controls.RotateSpeed,
			PanSpeed:       opts.Controls.PanSpeed,
			Damping:        opts.Controls.DynamicDampingFactor,
		},
		Server: Server{
			Addr:          ":8080",
			ThumbnailSize: 256,
			FrameInterval: Duration{scene.DefaultFrameInterval},
			Debounce:      Duration{300 * time.Millisecond},
			Watch:         true,
		},
		Converters: converter.DefaultCommands(),
	}
}

// Load reads path over the defaults. Keys missing from the file keep their
// default value; converter entries extend the default commands.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	var file Config
	file.Viewer = cfg.Viewer
	file.Server = cfg.Server
	md, err := toml.DecodeFile(path, &file)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return cfg, fmt.Errorf("unknown config key %s in %s", undecoded[0], path)
	}

	cfg.Viewer = file.Viewer
	cfg.Server = file.Server
	cfg.Converters = append(cfg.Converters, file.Converters...)
	return cfg, cfg.Validate()
}

// Validate checks values that would otherwise fail late
func (c Config) Validate() error {
	if _, err := scene.ParseColor(c.Viewer.HighlightColor); err != nil {
		return fmt.Errorf("viewer.highlight_color: %w", err)
	}
	if c.Viewer.InitialZoom < scene.MinZoom || c.Viewer.InitialZoom > scene.MaxZoom {
		return fmt.Errorf("viewer.initial_zoom %v outside [%v, %v]", c.Viewer.InitialZoom, scene.MinZoom, scene.MaxZoom)
	}
	if c.Server.ThumbnailSize <= 0 {
		return fmt.Errorf("server.thumbnail_size must be positive")
	}
	for i, cmd := range c.Converters {
		if len(cmd.Args) == 0 || len(cmd.Extensions) == 0 {
			return fmt.Errorf("converter %d needs extensions and args", i)
		}
	}
	return nil
}

// Options builds scene options from the viewer section
func (c Config) Options() scene.Options {
	opts := scene.DefaultOptions()
	opts.Width = c.Viewer.Width
	opts.Height = c.Viewer.Height
	opts.ZoomStep = c.Viewer.ZoomStep
	opts.InitialZoom = c.Viewer.InitialZoom
	if highlight, err := scene.ParseColor(c.Viewer.HighlightColor); err == nil {
		opts.HighlightColor = highlight
	}
	opts.Transparent = c.Viewer.Transparent
	opts.AxisVisible = c.Viewer.Axis
	opts.Controls.RotateSpeed = c.Viewer.RotateSpeed
	opts.Controls.PanSpeed = c.Viewer.PanSpeed
	opts.Controls.DynamicDampingFactor = c.Viewer.Damping
	return opts
}

// Converter creates the external converter for files below workDir
func (c Config) Converter(workDir string) *converter.Converter {
	return converter.New(workDir, c.Converters)
}
