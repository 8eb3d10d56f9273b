package parser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"floorplan-sketch/internal/sketch/geometry"
)

// ============================================================
// Path Parser
// ============================================================

var pathCommand = regexp.MustCompile(`([MmLlHhVvZz])([^MmLlHhVvZz]*)`)

// ParsePath парсит SVG path (M, L, H, V, Z и относительные варианты) в список точек.
// Z добавляет начальную точку текущего подпути.
func ParsePath(d string) ([]geometry.Point, error) {
	d = strings.TrimSpace(d)
	if d == "" {
		return nil, fmt.Errorf("empty path")
	}

	var points []geometry.Point
	var cur, start geometry.Point

	for _, match := range pathCommand.FindAllStringSubmatch(d, -1) {
		cmd := match[1]
		coords := parseCoords(match[2])

		switch cmd {
		case "M", "m", "L", "l":
			// Пары после первой у M трактуются как L
			for i := 0; i+1 < len(coords); i += 2 {
				next := geometry.Point{X: coords[i], Y: coords[i+1]}
				if cmd == "m" || cmd == "l" {
					next = cur.Add(next)
				}
				cur = next
				if i == 0 && (cmd == "M" || cmd == "m") {
					start = cur
				}
				points = append(points, cur)
			}

		case "H", "h":
			for _, v := range coords {
				if cmd == "h" {
					cur.X += v
				} else {
					cur.X = v
				}
				points = append(points, cur)
			}

		case "V", "v":
			for _, v := range coords {
				if cmd == "v" {
					cur.Y += v
				} else {
					cur.Y = v
				}
				points = append(points, cur)
			}

		case "Z", "z":
			if len(points) > 0 {
				points = append(points, start)
				cur = start
			}
		}
	}

	if len(points) == 0 {
		return nil, fmt.Errorf("path has no points: %q", d)
	}
	return points, nil
}

// parseCoords: разделитель запятая или пробел.
func parseCoords(s string) []float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}

	s = strings.ReplaceAll(s, ",", " ")
	parts := strings.Fields(s)

	var coords []float64
	for _, part := range parts {
		val, err := strconv.ParseFloat(part, 64)
		if err == nil {
			coords = append(coords, val)
		}
	}

	return coords
}

// parsePoints разбирает атрибут points у polygon/polyline.
func parsePoints(s string) []geometry.Point {
	coords := parseCoords(s)
	points := make([]geometry.Point, 0, len(coords)/2)
	for i := 0; i+1 < len(coords); i += 2 {
		points = append(points, geometry.Point{X: coords[i], Y: coords[i+1]})
	}
	return points
}
