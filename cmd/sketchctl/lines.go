package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"floorplan-sketch/internal/lines"
)

var filterOpts = lines.DefaultFilterOptions()

var linesCmd = &cobra.Command{
	Use:   "lines [file]",
	Short: "Merge near-duplicate wall lines and normalise them",
	Long: `Read a JSON array of raw [x1, y1, x2, y2] Hough lines in pixel coordinates,
keep the longest line of every cluster of similar lines and print the result
normalised to [0, 1].`,
	Args: cobra.ExactArgs(1),
	Run:  runLines,
}

func init() {
	rootCmd.AddCommand(linesCmd)

	linesCmd.Flags().Float64Var(&filterOpts.DeltaTheta, "delta-theta", filterOpts.DeltaTheta, "angle tolerance in radians")
	linesCmd.Flags().Float64Var(&filterOpts.DeltaRho, "delta-rho", filterOpts.DeltaRho, "distance tolerance in pixels")
	linesCmd.Flags().IntVar(&filterOpts.MinParallel, "min-parallel", filterOpts.MinParallel, "minimum lines per cluster")
}

func runLines(cmd *cobra.Command, args []string) {
	data, err := os.ReadFile(args[0])
	if err != nil {
		fatalf("reading file: %v", err)
	}

	var raw []lines.Line
	if err := json.Unmarshal(data, &raw); err != nil {
		fatalf("decoding lines: %v", err)
	}

	filtered := lines.Normalize(lines.FilterSimilar(raw, filterOpts))
	if filtered == nil {
		filtered = []lines.Line{}
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(filtered); err != nil {
		fatalf("encoding result: %v", err)
	}
}
