package main

import (
	"context"
	"fmt"
	"os"

	"github.com/philipparndt/plmview/internal/config"
	"github.com/philipparndt/plmview/internal/loader"
	"github.com/philipparndt/plmview/pkg/scene"
	"github.com/philipparndt/plmview/version"
	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "plmview",
	Short: "Inspect, serve and export PLM assemblies and STL models",
	Long: `plmview loads STL files, assembly descriptions (.arb) and CAD files an
external converter can turn into STL. It prints model information, exports the
scene as glTF or PNG and serves an interactive view to browser clients.`,
	Version: version.GetFullVersion(),
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "TOML configuration file")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func fail(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}

func loadConfig() config.Config {
	cfg, err := config.Load(configPath)
	if err != nil {
		fail("%v", err)
	}
	return cfg
}

// openViewer loads filename into an initialized viewer. The caller closes
// the returned source.
func openViewer(ctx context.Context, filename string, cfg config.Config) (*scene.Viewer, *loader.Source) {
	src, err := loader.Open(ctx, filename, cfg)
	if err != nil {
		fail("loading %s: %v", filename, err)
	}
	v, err := src.NewViewer(ctx)
	if err != nil {
		src.Close()
		fail("loading %s: %v", filename, err)
	}
	return v, src
}

// viewFlags are shared by the commands that render the scene
type viewFlags struct {
	view        string
	zoom        float64
	transparent bool
	axis        bool
	width       int
	height      int
}

func (f *viewFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.view, "view", string(scene.ViewAxonometric), "View: top, bottom, front, rear, left, right or axo")
	cmd.Flags().Float64Var(&f.zoom, "zoom", scene.FitAllZoom, "Zoom level between 0 and 100")
	cmd.Flags().BoolVar(&f.transparent, "transparent", false, "Render parts with their own opacity")
	cmd.Flags().BoolVar(&f.axis, "axis", false, "Show the axis helper")
	cmd.Flags().IntVar(&f.width, "width", 800, "Viewport width")
	cmd.Flags().IntVar(&f.height, "height", 600, "Viewport height")
}

// apply sets up the viewer and returns the resulting frame
func (f *viewFlags) apply(v *scene.Viewer) scene.Frame {
	v.Resize(float64(f.width), float64(f.height))
	if err := v.View(scene.ViewName(f.view)); err != nil {
		fail("%v", err)
	}
	if err := v.SetScale(f.zoom); err != nil {
		fail("%v", err)
	}
	if err := v.SetTransparency(f.transparent); err != nil {
		fail("%v", err)
	}
	if err := v.SetAxisVisible(f.axis); err != nil {
		fail("%v", err)
	}
	frame, err := v.Frame()
	if err != nil {
		fail("%v", err)
	}
	return frame
}
