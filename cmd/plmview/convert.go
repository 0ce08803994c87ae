package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/philipparndt/plmview/internal/loader"
	"github.com/philipparndt/plmview/pkg/export"
	"github.com/philipparndt/plmview/pkg/stl"
	"github.com/spf13/cobra"
)

var convertOutput string

var convertCmd = &cobra.Command{
	Use:   "convert [file]",
	Short: "Convert a CAD file or an assembly into one STL file",
	Long: `Run the configured external converter for CAD files, or merge every part
of an assembly into a single binary STL in assembly coordinates.`,
	Args: cobra.ExactArgs(1),
	Run:  runConvert,
}

func init() {
	rootCmd.AddCommand(convertCmd)

	convertCmd.Flags().StringVarP(&convertOutput, "output", "o", "", "Output file (default: input name with .stl)")
}

func runConvert(cmd *cobra.Command, args []string) {
	input := args[0]
	output := outputName(input, convertOutput, ".stl")
	cfg := loadConfig()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if loader.IsAssembly(input) {
		v, src := openViewer(ctx, input, cfg)
		defer src.Close()

		merged := export.Merge(filepath.Base(input), v.Group().Children)
		if err := stl.WriteFile(output, merged); err != nil {
			fail("%v", err)
		}
		fmt.Printf("Merged %d parts (%d triangles) into %s\n", len(v.Group().Children), merged.TriangleCount(), output)
		return
	}

	absInput, err := filepath.Abs(input)
	if err != nil {
		fail("%v", err)
	}
	conv := cfg.Converter(filepath.Dir(absInput))
	if !conv.Supports(absInput) {
		fail("no converter for %s (configured: %v)", filepath.Ext(input), conv.Extensions())
	}
	if err := conv.ConvertToSTL(ctx, absInput, output); err != nil {
		fail("%v", err)
	}
	fmt.Printf("Converted %s to %s\n", input, output)
}
