package export

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	svg "github.com/ajstarks/svgo"

	"floorplan-sketch/internal/sketch/session"
)

// ============================================================
// SVG Export
// ============================================================

const (
	footprintStyle = "fill:rgba(0,0,255,0.3);stroke:black;stroke-width:2"
	wallStyle      = "fill:none;stroke:black;stroke-width:2"
	roomStyle      = "fill:rgba(0,0,255,0.3);stroke:blue;stroke-width:2"
)

// WriteSVG пишет сцену в SVG: контур здания, стены и комнаты.
// Координаты округляются до целых пикселей.
func WriteSVG(w io.Writer, scene session.Scene, width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("invalid canvas size %dx%d", width, height)
	}

	canvas := svg.New(w)
	canvas.Start(width, height, fmt.Sprintf(`viewBox="0 0 %d %d"`, width, height))

	if len(scene.Footprint) > 0 {
		xs := make([]int, 0, len(scene.Footprint))
		ys := make([]int, 0, len(scene.Footprint))
		for _, p := range scene.Footprint {
			xs = append(xs, px(p.X))
			ys = append(ys, px(p.Y))
		}
		canvas.Polygon(xs, ys, `id="Footprint"`, footprintStyle)
	}

	n := 0
	for _, seg := range scene.Segments {
		if seg == nil {
			continue
		}
		n++
		canvas.Line(px(seg.Start.X), px(seg.Start.Y), px(seg.End.X), px(seg.End.Y),
			`id="Wall_`+strconv.Itoa(n)+`"`, wallStyle)
	}

	for i, r := range scene.Rects {
		canvas.Rect(px(r.Min.X), px(r.Min.Y), px(r.Width()), px(r.Height()),
			`id="Room_`+strconv.Itoa(i+1)+`"`, roomStyle)
	}

	canvas.End()
	return nil
}

// String пишет SVG в строку.
func String(scene session.Scene, width, height int) (string, error) {
	var b strings.Builder
	if err := WriteSVG(&b, scene, width, height); err != nil {
		return "", err
	}
	return b.String(), nil
}

func px(v float64) int {
	return int(math.Round(v))
}
