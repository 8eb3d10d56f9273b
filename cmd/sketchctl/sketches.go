package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"floorplan-sketch/internal/sketch/export"
	"floorplan-sketch/internal/sketch/parser"
	"floorplan-sketch/internal/sketch/repository"
)

var (
	dbPath     string
	sketchName string
)

var sketchesCmd = &cobra.Command{
	Use:   "sketches",
	Short: "Manage saved sketches",
}

var sketchesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved sketches",
	Args:  cobra.NoArgs,
	Run:   runSketchesList,
}

var sketchesExportCmd = &cobra.Command{
	Use:   "export [id]",
	Short: "Write a saved sketch as SVG",
	Args:  cobra.ExactArgs(1),
	Run:   runSketchesExport,
}

var sketchesImportCmd = &cobra.Command{
	Use:   "import [svg-file]",
	Short: "Store an SVG sketch in the database",
	Args:  cobra.ExactArgs(1),
	Run:   runSketchesImport,
}

func init() {
	rootCmd.AddCommand(sketchesCmd)
	sketchesCmd.AddCommand(sketchesListCmd, sketchesExportCmd, sketchesImportCmd)

	sketchesCmd.PersistentFlags().StringVar(&dbPath, "db", cfg.SketchDBPath, "path to the sketch database")
	sketchesExportCmd.Flags().StringVarP(&outputPath, "output", "o", "", "output file (default stdout)")
	sketchesImportCmd.Flags().StringVar(&sketchName, "name", "", "sketch name (default file name)")
}

func openRepo() (*repository.Repository, func()) {
	db, err := repository.OpenSQLite(dbPath)
	if err != nil {
		fatalf("opening database: %v", err)
	}
	repo := repository.New(db)
	if err := repo.Init(context.Background()); err != nil {
		db.Close()
		fatalf("initialising database: %v", err)
	}
	return repo, func() { db.Close() }
}

func runSketchesList(cmd *cobra.Command, args []string) {
	repo, closeDB := openRepo()
	defer closeDB()

	sketches, err := repo.List(context.Background())
	if err != nil {
		fatalf("listing sketches: %v", err)
	}
	if len(sketches) == 0 {
		fmt.Println("No sketches")
		return
	}
	for _, s := range sketches {
		fmt.Printf("%s  %-24s  %3d walls  %3d rooms  %s\n",
			s.ID, s.Name, len(s.Scene.Segments), len(s.Scene.Rects), s.UpdatedAt.Format("2006-01-02 15:04"))
	}
}

func runSketchesExport(cmd *cobra.Command, args []string) {
	repo, closeDB := openRepo()
	defer closeDB()

	sketch, err := repo.Get(context.Background(), args[0])
	if err != nil {
		fatalf("loading sketch: %v", err)
	}

	out := os.Stdout
	if outputPath != "" {
		f, err := os.Create(outputPath)
		if err != nil {
			fatalf("creating output: %v", err)
		}
		defer f.Close()
		out = f
	}

	if err := export.WriteSVG(out, sketch.Scene, int(canvasWidth), int(canvasHeight)); err != nil {
		fatalf("writing SVG: %v", err)
	}
}

func runSketchesImport(cmd *cobra.Command, args []string) {
	f, err := os.Open(args[0])
	if err != nil {
		fatalf("opening file: %v", err)
	}
	defer f.Close()

	scene, err := parser.ParseSVG(f)
	if err != nil {
		fatalf("parsing SVG: %v", err)
	}

	name := sketchName
	if name == "" {
		base := filepath.Base(args[0])
		name = strings.TrimSuffix(base, filepath.Ext(base))
	}

	repo, closeDB := openRepo()
	defer closeDB()

	sketch := &repository.Sketch{Name: name, Scene: scene}
	if err := repo.Save(context.Background(), sketch); err != nil {
		fatalf("saving sketch: %v", err)
	}
	fmt.Printf("Imported %s as %s (%d walls, %d rooms)\n", args[0], sketch.ID, len(scene.Segments), len(scene.Rects))
}
