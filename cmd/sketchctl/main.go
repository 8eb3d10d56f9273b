package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"floorplan-sketch/internal/common/config"
)

var cfg = config.Load()

var rootCmd = &cobra.Command{
	Use:   "sketchctl",
	Short: "Offline tools for floor plan sketches",
	Long: `sketchctl works with the same building footprints, snapping rules and
sketch database as the HTTP service, without starting a server.`,
	Version: "1.0.0",
}

var (
	canvasWidth  float64
	canvasHeight float64
)

func init() {
	rootCmd.PersistentFlags().Float64Var(&canvasWidth, "width", float64(cfg.CanvasWidth), "canvas width in pixels")
	rootCmd.PersistentFlags().Float64Var(&canvasHeight, "height", float64(cfg.CanvasHeight), "canvas height in pixels")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}
