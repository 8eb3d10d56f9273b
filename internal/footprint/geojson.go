package footprint

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/planar"
)

// ============================================================
// GeoJSON import
// ============================================================

var ErrNotPolygon = errors.New("geometry is not a polygon")

// LoadGeoJSON читает FeatureCollection и возвращает контур feature с индексом index.
// Для MultiPolygon берётся наибольшая часть.
func LoadGeoJSON(r io.Reader, index int) (*Building, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read geojson: %w", err)
	}

	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("decode geojson: %w", err)
	}
	if index < 0 || index >= len(fc.Features) {
		return nil, fmt.Errorf("feature index %d out of range (%d features)", index, len(fc.Features))
	}

	feature := fc.Features[index]
	polygon, err := outerPolygon(feature.Geometry)
	if err != nil {
		return nil, err
	}
	if len(polygon) == 0 {
		return nil, ErrNoCoordinates
	}

	coords := make([]LatLng, 0, len(polygon[0]))
	for _, p := range polygon[0] {
		coords = append(coords, LatLng{Lat: p.Lat(), Lng: p.Lon()})
	}

	return &Building{
		Coordinates: coords,
		Info:        ParseTags(stringProperties(feature.Properties)),
	}, nil
}

func outerPolygon(g orb.Geometry) (orb.Polygon, error) {
	switch geom := g.(type) {
	case orb.Polygon:
		return geom, nil
	case orb.MultiPolygon:
		if len(geom) == 0 {
			return nil, ErrNoCoordinates
		}
		best := geom[0]
		bestArea := math.Abs(planar.Area(best))
		for _, p := range geom[1:] {
			if a := math.Abs(planar.Area(p)); a > bestArea {
				best, bestArea = p, a
			}
		}
		return best, nil
	}
	return nil, ErrNotPolygon
}

func stringProperties(props geojson.Properties) map[string]string {
	out := make(map[string]string, len(props))
	for k, v := range props {
		switch val := v.(type) {
		case string:
			out[k] = val
		case float64:
			out[k] = strconv.FormatFloat(val, 'f', -1, 64)
		case bool:
			out[k] = strconv.FormatBool(val)
		}
	}
	return out
}
