package main

import (
	"context"
	"fmt"

	"github.com/philipparndt/plmview/pkg/analysis"
	"github.com/philipparndt/plmview/pkg/scene"
	"github.com/spf13/cobra"
)

var infoCmd = &cobra.Command{
	Use:   "info [file]",
	Short: "Display general information about a model or assembly",
	Long:  "Show dimensions, triangle counts and the camera parameters the viewer derives from the model size.",
	Args:  cobra.ExactArgs(1),
	Run:   runInfo,
}

func init() {
	rootCmd.AddCommand(infoCmd)
}

func runInfo(cmd *cobra.Command, args []string) {
	filename := args[0]
	v, src := openViewer(context.Background(), filename, loadConfig())
	defer src.Close()

	parts := v.Group().Children
	triangles := 0
	for _, part := range parts {
		triangles += part.Mesh.TriangleCount()
	}

	fmt.Println("Model Information")
	fmt.Println("=================")
	fmt.Printf("File: %s\n", filename)
	fmt.Printf("Kind: %s\n", src.Kind)
	fmt.Printf("Parts: %d\n", len(parts))
	fmt.Printf("Triangles: %d\n\n", triangles)

	if len(parts) == 1 {
		printMeshStats(parts[0].Mesh.Name, analysis.AnalyzeModel(parts[0].Mesh))
	}

	if box, ok := scene.GroupBoundingBox(v.Group()); ok {
		fmt.Println("Scene Bounds:")
		fmt.Printf("  Min: %s\n", analysis.FormatVector(box.Min))
		fmt.Printf("  Max: %s\n", analysis.FormatVector(box.Max))
		fmt.Printf("  Size: %s\n\n", analysis.FormatVector(box.Size()))
	}

	cam := v.Camera()
	fmt.Println("Viewer:")
	fmt.Printf("  Radius: %.6f units\n", v.Radius())
	fmt.Printf("  Camera: fov %.0f, near %.6f, far %.6f\n", cam.FOV, cam.Near, cam.Far)
	fmt.Printf("  Camera Z: %.6f\n", cam.Position.Z)
	fmt.Printf("  Zoom: %.0f\n", v.Zoom())
	if w := v.Warning(); w != "" {
		fmt.Printf("  Warning: %s\n", w)
	}
}

func printMeshStats(name string, result *analysis.MeshStats) {
	if name != "" {
		fmt.Printf("Mesh: %s (%s)\n", name, result.Format)
	}
	fmt.Printf("  Vertices: %d\n", result.VertexCount)
	fmt.Printf("  Degenerate faces: %d\n", result.Degenerate)
	fmt.Printf("  Surface Area: %.6f square units\n", result.SurfaceArea)
	fmt.Printf("  Width (X): %.6f units\n", result.Dimensions.X)
	fmt.Printf("  Depth (Y): %.6f units\n", result.Dimensions.Y)
	fmt.Printf("  Height (Z): %.6f units\n", result.Dimensions.Z)
	fmt.Printf("  Edge lengths: min %.6f, max %.6f, avg %.6f\n\n",
		result.MinEdgeLength, result.MaxEdgeLength, result.AvgEdgeLength)
}
