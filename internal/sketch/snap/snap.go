package snap

import (
	"errors"
	"fmt"
	"math"

	"floorplan-sketch/internal/sketch/geometry"
)

// ============================================================
// Snap Resolver
// ============================================================

var ErrInvalidThreshold = errors.New("snap threshold must be a positive finite number")

// FindSnapPoint ищет ближайшую точку на рёбрах полигона и свободных отрезках.
// Точка на расстоянии ровно threshold не подходит. Рёбра полигона проверяются
// раньше свободных отрезков, при равенстве расстояний побеждает первый.
// exclude сравнивается по указателю.
func FindSnapPoint(
	query geometry.Point,
	polygonEdges []geometry.Segment,
	freeSegments []*geometry.Segment,
	exclude *geometry.Segment,
	threshold float64,
) (geometry.Point, bool) {
	var best geometry.Point
	found := false
	bestDistance := threshold

	consider := func(seg geometry.Segment) {
		candidate := geometry.ClosestPointOnSegment(seg, query)
		if d := geometry.Distance(candidate, query); d < bestDistance {
			best = candidate
			bestDistance = d
			found = true
		}
	}

	for _, edge := range polygonEdges {
		consider(edge)
	}
	for _, seg := range freeSegments {
		if seg == nil || seg == exclude {
			continue
		}
		consider(*seg)
	}

	return best, found
}

// Resolver хранит радиус снаппинга из конфигурации.
type Resolver struct {
	Threshold float64
}

func NewResolver(threshold float64) (*Resolver, error) {
	if err := ValidateThreshold(threshold); err != nil {
		return nil, err
	}
	return &Resolver{Threshold: threshold}, nil
}

func ValidateThreshold(threshold float64) error {
	if math.IsNaN(threshold) || math.IsInf(threshold, 0) || threshold <= 0 {
		return fmt.Errorf("%w: %v", ErrInvalidThreshold, threshold)
	}
	return nil
}

// Resolve строит рёбра полигона и делегирует в FindSnapPoint.
func (r *Resolver) Resolve(query geometry.Point, polygon geometry.Polygon, free []*geometry.Segment, exclude *geometry.Segment) (geometry.Point, bool) {
	return FindSnapPoint(query, polygon.Edges(), free, exclude, r.Threshold)
}
