package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/philipparndt/plmview/pkg/export"
	"github.com/philipparndt/plmview/pkg/viewer"
	"github.com/spf13/cobra"
)

var (
	exportOutput string
	exportView   viewFlags

	thumbOutput string
	thumbSize   int
	thumbView   viewFlags
)

var exportCmd = &cobra.Command{
	Use:   "export [file]",
	Short: "Export the scene as binary glTF",
	Long:  "Write the visible parts with their colours and world transforms to a .glb file.",
	Args:  cobra.ExactArgs(1),
	Run:   runExport,
}

var thumbnailCmd = &cobra.Command{
	Use:   "thumbnail [file]",
	Short: "Render a PNG thumbnail",
	Long:  "Render the scene with the software rasterizer and write a PNG scaled to fit the given size.",
	Args:  cobra.ExactArgs(1),
	Run:   runThumbnail,
}

func init() {
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(thumbnailCmd)

	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Output file (default: input name with .glb)")
	exportView.register(exportCmd)

	thumbnailCmd.Flags().StringVarP(&thumbOutput, "output", "o", "", "Output file (default: input name with .png)")
	thumbnailCmd.Flags().IntVarP(&thumbSize, "size", "s", 256, "Largest thumbnail dimension in pixels")
	thumbView.register(thumbnailCmd)
}

func outputName(input, output, ext string) string {
	if output != "" {
		return output
	}
	base := filepath.Base(input)
	return strings.TrimSuffix(base, filepath.Ext(base)) + ext
}

func runExport(cmd *cobra.Command, args []string) {
	v, src := openViewer(context.Background(), args[0], loadConfig())
	defer src.Close()

	output := outputName(args[0], exportOutput, ".glb")
	frame := exportView.apply(v)
	if err := export.WriteFile(output, frame); err != nil {
		fail("%v", err)
	}
	fmt.Printf("Exported %d parts to %s\n", len(frame.Parts), output)
}

func runThumbnail(cmd *cobra.Command, args []string) {
	if thumbSize <= 0 {
		fail("size must be positive")
	}
	v, src := openViewer(context.Background(), args[0], loadConfig())
	defer src.Close()

	output := outputName(args[0], thumbOutput, ".png")
	img := viewer.Thumbnail(thumbView.apply(v), thumbSize)
	if err := viewer.SavePNG(output, img); err != nil {
		fail("%v", err)
	}
	fmt.Printf("Wrote %dx%d thumbnail to %s\n", img.Bounds().Dx(), img.Bounds().Dy(), output)
}
