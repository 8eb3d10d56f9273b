package footprint

import (
	"errors"
	"fmt"
	"math"

	"github.com/ctessum/geom/proj"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/simplify"

	"floorplan-sketch/internal/sketch/geometry"
)

// ============================================================
// Projection pipeline
// ============================================================

// canvasFill: доля холста под контур, остальное уходит на поля.
const canvasFill = 0.9

var ErrNoCoordinates = errors.New("no coordinates")

type Canvas struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

type Projector interface {
	Project(LatLng) (x, y float64, err error)
}

// UTMProjector переводит WGS84 в метры UTM выбранной зоны.
type UTMProjector struct {
	Zone  int
	South bool

	transform proj.Transformer
}

func NewUTMProjector(zone int, south bool) (*UTMProjector, error) {
	if zone < 1 || zone > 60 {
		return nil, fmt.Errorf("utm zone %d out of range", zone)
	}

	def := fmt.Sprintf("+proj=utm +zone=%d +datum=WGS84 +units=m +no_defs", zone)
	if south {
		def = fmt.Sprintf("+proj=utm +zone=%d +south +datum=WGS84 +units=m +no_defs", zone)
	}

	src, err := proj.Parse("+proj=longlat +datum=WGS84 +no_defs")
	if err != nil {
		return nil, fmt.Errorf("parse wgs84: %w", err)
	}
	dst, err := proj.Parse(def)
	if err != nil {
		return nil, fmt.Errorf("parse utm: %w", err)
	}
	transform, err := src.NewTransform(dst)
	if err != nil {
		return nil, fmt.Errorf("utm transform: %w", err)
	}

	return &UTMProjector{Zone: zone, South: south, transform: transform}, nil
}

// UTMZone оценивает номер зоны по долготе.
func UTMZone(lng float64) int {
	zone := int(math.Floor((lng+180)/6)) + 1
	if zone > 60 {
		zone = 60
	}
	if zone < 1 {
		zone = 1
	}
	return zone
}

// UTMProjectorFor выбирает зону по первой координате.
func UTMProjectorFor(coords []LatLng) (*UTMProjector, error) {
	if len(coords) == 0 {
		return nil, ErrNoCoordinates
	}
	first := coords[0]
	return NewUTMProjector(UTMZone(first.Lng), first.Lat < 0)
}

func (p *UTMProjector) Project(ll LatLng) (float64, float64, error) {
	return p.transform(ll.Lng, ll.Lat)
}

// FitToCanvas переводит координаты в метрах в пиксели: сдвиг к минимуму,
// масштаб с полями, переворот оси Y и центрирование.
func FitToCanvas(projected []geometry.Point, canvas Canvas) []geometry.Point {
	min, max, ok := geometry.Bounds(projected)
	if !ok {
		return nil
	}

	width := max.X - min.X
	height := max.Y - min.Y

	var scale float64
	switch {
	case width == 0 && height == 0:
		scale = 1
	case width == 0:
		scale = canvas.Height * canvasFill / height
	case height == 0:
		scale = canvas.Width * canvasFill / width
	default:
		scale = math.Min(canvas.Width*canvasFill/width, canvas.Height*canvasFill/height)
	}

	left := (canvas.Width - width*scale) / 2
	top := (canvas.Height - height*scale) / 2

	out := make([]geometry.Point, 0, len(projected))
	for _, p := range projected {
		out = append(out, geometry.Point{
			X: (p.X-min.X)*scale + left,
			Y: (max.Y-p.Y)*scale + top,
		})
	}
	return out
}

type Options struct {
	// Simplify: допуск Douglas-Peucker в пикселях, 0 отключает упрощение.
	Simplify float64
}

// ToCanvas переводит географические координаты в UTM и затем на холст.
func ToCanvas(coords []LatLng, projector Projector, canvas Canvas, opts Options) (geometry.Polygon, error) {
	coords = dropClosing(coords)
	if len(coords) == 0 {
		return nil, ErrNoCoordinates
	}

	projected := make([]geometry.Point, 0, len(coords))
	for _, ll := range coords {
		x, y, err := projector.Project(ll)
		if err != nil {
			return nil, fmt.Errorf("project %v: %w", ll, err)
		}
		projected = append(projected, geometry.Point{X: x, Y: y})
	}

	polygon := geometry.Polygon(FitToCanvas(projected, canvas))
	if opts.Simplify > 0 {
		polygon = simplifyPolygon(polygon, opts.Simplify)
	}
	return polygon, nil
}

func simplifyPolygon(pg geometry.Polygon, tolerance float64) geometry.Polygon {
	if len(pg) < 4 {
		return pg
	}

	ring := make(orb.Ring, 0, len(pg)+1)
	for _, p := range pg {
		ring = append(ring, orb.Point{p.X, p.Y})
	}
	ring = append(ring, ring[0])

	simplified, ok := simplify.DouglasPeucker(tolerance).Simplify(ring).(orb.Ring)
	if !ok || len(simplified) < 4 {
		return pg
	}

	out := make(geometry.Polygon, 0, len(simplified)-1)
	for _, p := range simplified[:len(simplified)-1] {
		out = append(out, geometry.Point{X: p[0], Y: p[1]})
	}
	return out
}

func dropClosing(coords []LatLng) []LatLng {
	if len(coords) > 1 && coords[0] == coords[len(coords)-1] {
		return coords[:len(coords)-1]
	}
	return coords
}
