package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"floorplan-sketch/internal/footprint"
	"floorplan-sketch/internal/sketch/export"
	"floorplan-sketch/internal/sketch/session"
)

var (
	lat, lng     float64
	radius       float64
	simplifyTol  float64
	featureIndex int
	outputPath   string
)

var footprintCmd = &cobra.Command{
	Use:   "footprint",
	Short: "Fetch the building at a location from OpenStreetMap",
	Long: `Query the Overpass API for the first building around the given point,
project it onto the canvas and optionally write it as an SVG sketch.`,
	Args: cobra.NoArgs,
	Run:  runFootprint,
}

var geojsonCmd = &cobra.Command{
	Use:   "geojson [file]",
	Short: "Load a building footprint from a GeoJSON FeatureCollection",
	Args:  cobra.ExactArgs(1),
	Run:   runGeoJSON,
}

func init() {
	rootCmd.AddCommand(footprintCmd)
	rootCmd.AddCommand(geojsonCmd)

	footprintCmd.Flags().Float64Var(&lat, "lat", 0, "latitude in degrees")
	footprintCmd.Flags().Float64Var(&lng, "lng", 0, "longitude in degrees")
	footprintCmd.Flags().Float64Var(&radius, "radius", cfg.FootprintRadius, "search radius in meters")
	footprintCmd.MarkFlagRequired("lat")
	footprintCmd.MarkFlagRequired("lng")

	geojsonCmd.Flags().IntVar(&featureIndex, "index", 0, "feature index in the collection")

	for _, cmd := range []*cobra.Command{footprintCmd, geojsonCmd} {
		cmd.Flags().Float64Var(&simplifyTol, "simplify", 0, "Douglas-Peucker tolerance in pixels")
		cmd.Flags().StringVarP(&outputPath, "output", "o", "", "write the footprint as SVG")
	}
}

func runFootprint(cmd *cobra.Command, args []string) {
	client := footprint.NewOverpassClient(cfg.OverpassURL, radius, time.Duration(cfg.HTTPTimeout)*time.Second)

	building, err := client.FetchBuilding(context.Background(), lat, lng)
	if err != nil {
		fatalf("fetching building: %v", err)
	}
	reportBuilding(building)
}

func runGeoJSON(cmd *cobra.Command, args []string) {
	f, err := os.Open(args[0])
	if err != nil {
		fatalf("opening file: %v", err)
	}
	defer f.Close()

	building, err := footprint.LoadGeoJSON(f, featureIndex)
	if err != nil {
		fatalf("reading GeoJSON: %v", err)
	}
	reportBuilding(building)
}

func reportBuilding(b *footprint.Building) {
	projector, err := footprint.UTMProjectorFor(b.Coordinates)
	if err != nil {
		fatalf("projection: %v", err)
	}
	polygon, err := footprint.ToCanvas(b.Coordinates, projector, footprint.Canvas{Width: canvasWidth, Height: canvasHeight}, footprint.Options{Simplify: simplifyTol})
	if err != nil {
		fatalf("projection: %v", err)
	}

	fmt.Println("Building Footprint")
	fmt.Println("==================")
	if b.ID != 0 {
		fmt.Printf("OSM way: %d\n", b.ID)
	}
	if b.Info.Kind != "" {
		fmt.Printf("Type: %s\n", b.Info.Kind)
	}
	if addr := b.Info.Address(); addr != "" {
		fmt.Printf("Address: %s\n", addr)
	}
	if b.Info.Levels != nil {
		fmt.Printf("Levels: %d\n", *b.Info.Levels)
	}
	if b.Info.Height != nil {
		suffix := ""
		if b.Info.HeightEstimated {
			suffix = " (estimated)"
		}
		fmt.Printf("Height: %.1f m%s\n", *b.Info.Height, suffix)
	}
	fmt.Printf("UTM zone: %d%s\n", projector.Zone, hemisphere(projector.South))
	fmt.Printf("Vertices: %d\n", len(polygon))

	if outputPath == "" {
		return
	}
	out, err := os.Create(outputPath)
	if err != nil {
		fatalf("creating output: %v", err)
	}
	defer out.Close()

	if err := export.WriteSVG(out, session.Scene{Footprint: polygon}, int(canvasWidth), int(canvasHeight)); err != nil {
		fatalf("writing SVG: %v", err)
	}
	fmt.Printf("\nWrote %s\n", outputPath)
}

func hemisphere(south bool) string {
	if south {
		return "S"
	}
	return "N"
}
