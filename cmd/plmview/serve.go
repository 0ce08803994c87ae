package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/philipparndt/plmview/internal/server"
	"github.com/spf13/cobra"
)

var (
	serveAddr    string
	serveNoWatch bool
)

var serveCmd = &cobra.Command{
	Use:   "serve [file]",
	Short: "Serve the viewer to browser clients",
	Long: `Serve state, part tree, glTF model and thumbnails over HTTP and accept view
commands over a websocket. The model is reloaded when the file or one of its
dependencies changes.`,
	Args: cobra.ExactArgs(1),
	Run:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default from config, :8080)")
	serveCmd.Flags().BoolVar(&serveNoWatch, "no-watch", false, "Do not reload on file changes")
}

func runServe(cmd *cobra.Command, args []string) {
	cfg := loadConfig()
	if serveAddr != "" {
		cfg.Server.Addr = serveAddr
	}
	if serveNoWatch {
		cfg.Server.Watch = false
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := server.New(args[0], cfg).Run(ctx, cfg.Server.Addr); err != nil {
		fail("%v", err)
	}
}
