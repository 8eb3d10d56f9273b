package geometry

import (
	"math"
)

// ============================================================
// Geometry primitives
// ============================================================

// Point: точка в пиксельных координатах холста.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Segment: отрезок между двумя точками. Start == End допустимо.
type Segment struct {
	Start Point `json:"start"`
	End   Point `json:"end"`
}

// Polygon: замкнутый контур: последняя вершина соединяется с первой.
type Polygon []Point

// Rect: прямоугольник, выровненный по осям.
type Rect struct {
	Min Point `json:"min"`
	Max Point `json:"max"`
}

func (p Point) Add(o Point) Point {
	return Point{X: p.X + o.X, Y: p.Y + o.Y}
}

func (p Point) Sub(o Point) Point {
	return Point{X: p.X - o.X, Y: p.Y - o.Y}
}

func (p Point) Scale(k float64) Point {
	return Point{X: p.X * k, Y: p.Y * k}
}

func (p Point) Dot(o Point) float64 {
	return p.X*o.X + p.Y*o.Y
}

// DistanceSquared возвращает квадрат расстояния, без извлечения корня.
func DistanceSquared(p1, p2 Point) float64 {
	dx := p1.X - p2.X
	dy := p1.Y - p2.Y
	return dx*dx + dy*dy
}

func Distance(p1, p2 Point) float64 {
	return math.Sqrt(DistanceSquared(p1, p2))
}

// ClosestPointOnSegment проецирует точку на отрезок.
// Параметр проекции зажат в [0, 1], поэтому результат всегда лежит на самом отрезке.
func ClosestPointOnSegment(seg Segment, p Point) Point {
	d := seg.End.Sub(seg.Start)
	lenSq := d.Dot(d)
	if lenSq == 0 {
		return seg.Start
	}

	t := p.Sub(seg.Start).Dot(d) / lenSq
	t = clamp(t, 0, 1)

	return seg.Start.Add(d.Scale(t))
}

func (s Segment) Length() float64 {
	return Distance(s.Start, s.End)
}

func (s Segment) IsDegenerate() bool {
	return s.Start == s.End
}

// Edges возвращает n рёбер для n вершин, включая ребро от последней вершины к первой.
func (pg Polygon) Edges() []Segment {
	n := len(pg)
	if n == 0 {
		return nil
	}

	edges := make([]Segment, 0, n)
	for i := 0; i < n; i++ {
		edges = append(edges, Segment{Start: pg[i], End: pg[(i+1)%n]})
	}
	return edges
}

// RectFromCorners нормализует два произвольных угла в min/max.
func RectFromCorners(a, b Point) Rect {
	return Rect{
		Min: Point{X: math.Min(a.X, b.X), Y: math.Min(a.Y, b.Y)},
		Max: Point{X: math.Max(a.X, b.X), Y: math.Max(a.Y, b.Y)},
	}
}

func (r Rect) Width() float64 {
	return r.Max.X - r.Min.X
}

func (r Rect) Height() float64 {
	return r.Max.Y - r.Min.Y
}

func (r Rect) IsEmpty() bool {
	return r.Width() == 0 || r.Height() == 0
}

// Edges обходит прямоугольник по часовой стрелке от левого верхнего угла.
func (r Rect) Edges() []Segment {
	tl := r.Min
	tr := Point{X: r.Max.X, Y: r.Min.Y}
	br := r.Max
	bl := Point{X: r.Min.X, Y: r.Max.Y}
	return []Segment{
		{Start: tl, End: tr},
		{Start: tr, End: br},
		{Start: br, End: bl},
		{Start: bl, End: tl},
	}
}

// Bounds считает bounding box. ok == false для пустого набора.
func Bounds(points []Point) (min, max Point, ok bool) {
	if len(points) == 0 {
		return Point{}, Point{}, false
	}

	min, max = points[0], points[0]
	for _, p := range points[1:] {
		if p.X < min.X {
			min.X = p.X
		}
		if p.X > max.X {
			max.X = p.X
		}
		if p.Y < min.Y {
			min.Y = p.Y
		}
		if p.Y > max.Y {
			max.Y = p.Y
		}
	}
	return min, max, true
}

func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
