package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/philipparndt/plmview/pkg/scene"
	"github.com/spf13/cobra"
)

var partsJSON bool

var partsCmd = &cobra.Command{
	Use:   "parts [file]",
	Short: "List the part tree of an assembly",
	Long:  "Print the part tree with the part ids the viewer and the websocket commands use.",
	Args:  cobra.ExactArgs(1),
	Run:   runParts,
}

func init() {
	rootCmd.AddCommand(partsCmd)

	partsCmd.Flags().BoolVar(&partsJSON, "json", false, "Print the tree as JSON")
}

func runParts(cmd *cobra.Command, args []string) {
	v, src := openViewer(context.Background(), args[0], loadConfig())
	defer src.Close()

	menu := v.Menu()
	if menu == nil {
		part, _ := v.Graph().Object(scene.SinglePartID)
		menu = &scene.MenuItem{ID: scene.SinglePartID, Name: part.Name, Leaf: true}
	}

	if partsJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(menu); err != nil {
			fail("%v", err)
		}
		return
	}

	graph := v.Graph()
	var walk func(item *scene.MenuItem, depth int)
	walk = func(item *scene.MenuItem, depth int) {
		line := fmt.Sprintf("%s%-8s %s", strings.Repeat("  ", depth), item.ID, item.Name)
		if part, ok := graph.Object(item.ID); ok {
			line += fmt.Sprintf("  %s  %d triangles", part.Material.Color.Hex(), part.Mesh.TriangleCount())
		} else if children := graph.Children(item.ID); len(children) > 0 {
			line += fmt.Sprintf("  (%d children)", len(children))
		}
		fmt.Println(line)
		for _, child := range item.Children {
			walk(child, depth+1)
		}
	}
	walk(menu, 0)
}
