package parser

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"floorplan-sketch/internal/sketch/geometry"
	"floorplan-sketch/internal/sketch/session"
)

// ============================================================
// XML Structures
// ============================================================

type SVG struct {
	XMLName xml.Name `xml:"svg"`
	Group
}

// Group: содержимое <svg> или <g>; группы разбираются рекурсивно.
type Group struct {
	Lines    []Line    `xml:"line"`
	Rects    []Rect    `xml:"rect"`
	Polygons []Polygon `xml:"polygon"`
	Paths    []Path    `xml:"path"`
	Groups   []Group   `xml:"g"`
}

type Line struct {
	ID string  `xml:"id,attr"`
	X1 float64 `xml:"x1,attr"`
	Y1 float64 `xml:"y1,attr"`
	X2 float64 `xml:"x2,attr"`
	Y2 float64 `xml:"y2,attr"`
}

type Rect struct {
	ID     string  `xml:"id,attr"`
	X      float64 `xml:"x,attr"`
	Y      float64 `xml:"y,attr"`
	Width  float64 `xml:"width,attr"`
	Height float64 `xml:"height,attr"`
}

type Polygon struct {
	ID     string `xml:"id,attr"`
	Points string `xml:"points,attr"`
}

type Path struct {
	ID string `xml:"id,attr"`
	D  string `xml:"d,attr"`
}

const (
	kindWall      = "wall"
	kindRoom      = "room"
	kindFootprint = "footprint"
)

// ============================================================
// Parser
// ============================================================

// ParseSVG восстанавливает сцену из экспортированного SVG.
// Элементы без известного префикса id пропускаются.
func ParseSVG(r io.Reader) (session.Scene, error) {
	var doc SVG
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return session.Scene{}, fmt.Errorf("decode svg: %w", err)
	}

	var scene session.Scene
	if err := collect(&scene, doc.Group); err != nil {
		return session.Scene{}, err
	}
	return scene, nil
}

func collect(scene *session.Scene, g Group) error {
	for _, l := range g.Lines {
		if classifyElementByID(l.ID) != kindWall {
			continue
		}
		addSegment(scene, geometry.Point{X: l.X1, Y: l.Y1}, geometry.Point{X: l.X2, Y: l.Y2})
	}

	for _, rect := range g.Rects {
		switch classifyElementByID(rect.ID) {
		case kindRoom:
			scene.Rects = append(scene.Rects, geometry.Rect{
				Min: geometry.Point{X: rect.X, Y: rect.Y},
				Max: geometry.Point{X: rect.X + rect.Width, Y: rect.Y + rect.Height},
			})
		case kindWall:
			p1, p2 := rectCenterLine(rect)
			addSegment(scene, p1, p2)
		}
	}

	for _, pg := range g.Polygons {
		points := parsePoints(pg.Points)
		switch classifyElementByID(pg.ID) {
		case kindFootprint:
			scene.Footprint = geometry.Polygon(dropClosing(points))
		case kindWall:
			for _, e := range geometry.Polygon(dropClosing(points)).Edges() {
				addSegment(scene, e.Start, e.End)
			}
		}
	}

	for _, path := range g.Paths {
		kind := classifyElementByID(path.ID)
		if kind == "" {
			continue
		}
		points, err := ParsePath(path.D)
		if err != nil {
			return fmt.Errorf("path %s: %w", path.ID, err)
		}
		switch kind {
		case kindFootprint:
			scene.Footprint = geometry.Polygon(dropClosing(points))
		case kindWall:
			for i := 0; i+1 < len(points); i++ {
				addSegment(scene, points[i], points[i+1])
			}
		}
	}

	for _, child := range g.Groups {
		if err := collect(scene, child); err != nil {
			return err
		}
	}
	return nil
}

func classifyElementByID(id string) string {
	if strings.HasPrefix(id, "Wall_") {
		return kindWall
	}
	if strings.HasPrefix(id, "Room_") ||
		strings.HasSuffix(id, "_room") ||
		strings.HasSuffix(id, "_Room") {
		return kindRoom
	}
	if id == "Footprint" || strings.HasPrefix(id, "Footprint_") {
		return kindFootprint
	}
	return ""
}

// rectCenterLine превращает толстую стену-прямоугольник в осевую линию по длинной стороне.
func rectCenterLine(rect Rect) (geometry.Point, geometry.Point) {
	if rect.Width > rect.Height {
		y := rect.Y + rect.Height/2
		return geometry.Point{X: rect.X, Y: y}, geometry.Point{X: rect.X + rect.Width, Y: y}
	}
	x := rect.X + rect.Width/2
	return geometry.Point{X: x, Y: rect.Y}, geometry.Point{X: x, Y: rect.Y + rect.Height}
}

func addSegment(scene *session.Scene, p1, p2 geometry.Point) {
	scene.Segments = append(scene.Segments, &geometry.Segment{Start: p1, End: p2})
}

// dropClosing убирает дубль замыкания.
func dropClosing(points []geometry.Point) []geometry.Point {
	if len(points) > 1 && points[0] == points[len(points)-1] {
		return points[:len(points)-1]
	}
	return points
}
