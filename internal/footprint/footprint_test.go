package footprint

import (
	"context"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"floorplan-sketch/internal/sketch/geometry"
)

type projectorFunc func(LatLng) (float64, float64, error)

func (f projectorFunc) Project(ll LatLng) (float64, float64, error) {
	return f(ll)
}

// flat считает градусы метрами, чтобы проверять конвейер без UTM.
var flat = projectorFunc(func(ll LatLng) (float64, float64, error) {
	return ll.Lng, ll.Lat, nil
})

var approx = cmpopts.EquateApprox(0, 1e-9)

func TestParseTags(t *testing.T) {
	tests := []struct {
		name      string
		tags      map[string]string
		height    *float64
		levels    *int
		estimated bool
	}{
		{"explicit height", map[string]string{"height": "12.5"}, ptr(12.5), nil, false},
		{"height with unit", map[string]string{"height": "9 m", "building:levels": "4"}, ptr(9.0), ptr(4), false},
		{"levels only", map[string]string{"building:levels": "4"}, ptr(12.0), ptr(4), true},
		{"fractional levels", map[string]string{"building:levels": "2.5"}, ptr(9.0), ptr(3), true},
		{"garbage height falls back", map[string]string{"height": "tall", "building:levels": "2"}, ptr(6.0), ptr(2), true},
		{"nothing", map[string]string{"building": "yes"}, nil, nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := ParseTags(tt.tags)
			if diff := cmp.Diff(tt.height, info.Height); diff != "" {
				t.Errorf("height mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tt.levels, info.Levels); diff != "" {
				t.Errorf("levels mismatch (-want +got):\n%s", diff)
			}
			if info.HeightEstimated != tt.estimated {
				t.Errorf("estimated: expected %v, got %v", tt.estimated, info.HeightEstimated)
			}
		})
	}
}

func TestAddress(t *testing.T) {
	info := ParseTags(map[string]string{
		"addr:street":      "Unter den Linden",
		"addr:housenumber": "5",
		"addr:postcode":    "10117",
		"addr:city":        "Berlin",
	})
	if got := info.Address(); got != "Unter den Linden 5, 10117 Berlin" {
		t.Errorf("unexpected address %q", got)
	}

	if got := (BuildingInfo{City: "Oslo"}).Address(); got != "Oslo" {
		t.Errorf("unexpected address %q", got)
	}
	if got := (BuildingInfo{}).Address(); got != "" {
		t.Errorf("expected empty address, got %q", got)
	}
}

func TestFitToCanvas(t *testing.T) {
	projected := []geometry.Point{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}, {X: 0, Y: 10}}
	got := FitToCanvas(projected, Canvas{Width: 800, Height: 600})

	want := []geometry.Point{{X: 130, Y: 570}, {X: 670, Y: 570}, {X: 670, Y: 30}, {X: 130, Y: 30}}
	if diff := cmp.Diff(want, got, approx); diff != "" {
		t.Errorf("FitToCanvas mismatch (-want +got):\n%s", diff)
	}
}

func TestFitToCanvasKeepsAspect(t *testing.T) {
	projected := []geometry.Point{{X: 100, Y: 200}, {X: 140, Y: 200}, {X: 140, Y: 210}}
	got := FitToCanvas(projected, Canvas{Width: 800, Height: 600})

	// 40x10 м: ширина ограничивает масштаб (720/40 = 18).
	want := []geometry.Point{{X: 40, Y: 390}, {X: 760, Y: 390}, {X: 760, Y: 210}}
	if diff := cmp.Diff(want, got, approx); diff != "" {
		t.Errorf("FitToCanvas mismatch (-want +got):\n%s", diff)
	}
}

func TestFitToCanvasDegenerate(t *testing.T) {
	if got := FitToCanvas(nil, Canvas{Width: 800, Height: 600}); got != nil {
		t.Errorf("expected nil for no points, got %v", got)
	}

	got := FitToCanvas([]geometry.Point{{X: 5, Y: 5}, {X: 5, Y: 5}}, Canvas{Width: 800, Height: 600})
	for _, p := range got {
		if p != (geometry.Point{X: 400, Y: 300}) {
			t.Errorf("single location should land in the centre, got %v", p)
		}
	}

	got = FitToCanvas([]geometry.Point{{X: 0, Y: 0}, {X: 0, Y: 20}}, Canvas{Width: 800, Height: 600})
	want := []geometry.Point{{X: 400, Y: 570}, {X: 400, Y: 30}}
	if diff := cmp.Diff(want, got, approx); diff != "" {
		t.Errorf("vertical line mismatch (-want +got):\n%s", diff)
	}
}

func TestToCanvasDropsClosingVertex(t *testing.T) {
	coords := []LatLng{
		{Lat: 0, Lng: 0}, {Lat: 0, Lng: 10}, {Lat: 10, Lng: 10}, {Lat: 10, Lng: 0}, {Lat: 0, Lng: 0},
	}

	polygon, err := ToCanvas(coords, flat, Canvas{Width: 800, Height: 600}, Options{})
	if err != nil {
		t.Fatalf("ToCanvas: %v", err)
	}
	if len(polygon) != 4 {
		t.Fatalf("expected 4 vertices, got %d", len(polygon))
	}
	if len(polygon.Edges()) != 4 {
		t.Errorf("expected 4 edges, got %d", len(polygon.Edges()))
	}
	// Север наверху: lat 10 → меньший Y.
	if polygon[2].Y >= polygon[0].Y {
		t.Errorf("y axis should be flipped, got %v", polygon)
	}
}

func TestToCanvasErrors(t *testing.T) {
	if _, err := ToCanvas(nil, flat, Canvas{Width: 800, Height: 600}, Options{}); !errors.Is(err, ErrNoCoordinates) {
		t.Errorf("expected ErrNoCoordinates, got %v", err)
	}

	failing := projectorFunc(func(LatLng) (float64, float64, error) {
		return 0, 0, errors.New("boom")
	})
	if _, err := ToCanvas([]LatLng{{Lat: 1, Lng: 1}}, failing, Canvas{Width: 800, Height: 600}, Options{}); err == nil {
		t.Errorf("expected projector error")
	}
}

func TestToCanvasSimplify(t *testing.T) {
	coords := []LatLng{
		{Lat: 0, Lng: 0}, {Lat: 0, Lng: 5}, {Lat: 0.0001, Lng: 7}, {Lat: 0, Lng: 10},
		{Lat: 10, Lng: 10}, {Lat: 10, Lng: 0},
	}

	polygon, err := ToCanvas(coords, flat, Canvas{Width: 800, Height: 600}, Options{Simplify: 1})
	if err != nil {
		t.Fatalf("ToCanvas: %v", err)
	}
	if len(polygon) != 4 {
		t.Errorf("expected collinear vertices to be removed, got %d: %v", len(polygon), polygon)
	}
}

func TestUTMZone(t *testing.T) {
	for lng, want := range map[float64]int{-180: 1, -177.5: 1, 0: 31, 13.4: 33, 179.9: 60, 180: 60} {
		if got := UTMZone(lng); got != want {
			t.Errorf("UTMZone(%v) = %d, want %d", lng, got, want)
		}
	}
}

func TestUTMProjector(t *testing.T) {
	p, err := NewUTMProjector(33, false)
	if err != nil {
		t.Fatalf("NewUTMProjector: %v", err)
	}

	// Центральный меридиан зоны 33 проходит по 15°E, на экваторе это (500000, 0).
	x, y, err := p.Project(LatLng{Lat: 0, Lng: 15})
	if err != nil {
		t.Fatalf("Project: %v", err)
	}
	if math.Abs(x-500000) > 1 || math.Abs(y) > 1 {
		t.Errorf("expected (500000, 0), got (%v, %v)", x, y)
	}

	x1, y1, _ := p.Project(LatLng{Lat: 52.5, Lng: 13.4})
	x2, y2, _ := p.Project(LatLng{Lat: 52.501, Lng: 13.4})
	if d := math.Hypot(x2-x1, y2-y1); math.Abs(d-111.26) > 1 {
		t.Errorf("0.001° of latitude should be ~111 m, got %v", d)
	}

	if _, err := NewUTMProjector(0, false); err == nil {
		t.Errorf("expected error for zone 0")
	}
}

func TestUTMProjectorFor(t *testing.T) {
	if _, err := UTMProjectorFor(nil); !errors.Is(err, ErrNoCoordinates) {
		t.Errorf("expected ErrNoCoordinates, got %v", err)
	}

	p, err := UTMProjectorFor([]LatLng{{Lat: -33.9, Lng: 18.4}})
	if err != nil {
		t.Fatalf("UTMProjectorFor: %v", err)
	}
	if p.Zone != 34 || !p.South {
		t.Errorf("expected zone 34 south, got %d south=%v", p.Zone, p.South)
	}
}

const overpassFixture = `{
  "elements": [
    {"type": "node", "id": 1, "lat": 52.5000, "lon": 13.4000},
    {"type": "node", "id": 2, "lat": 52.5000, "lon": 13.4002},
    {"type": "node", "id": 3, "lat": 52.5001, "lon": 13.4002},
    {"type": "node", "id": 4, "lat": 52.5001, "lon": 13.4000},
    {"type": "way", "id": 99, "nodes": [1, 2, 3, 4, 1],
     "tags": {"building": "house", "addr:street": "Main", "building:levels": "2"}}
  ]
}`

func TestFetchBuilding(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("data")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(overpassFixture))
	}))
	defer srv.Close()

	client := NewOverpassClient(srv.URL, 50, 5*time.Second)
	b, err := client.FetchBuilding(context.Background(), 52.5, 13.4)
	if err != nil {
		t.Fatalf("FetchBuilding: %v", err)
	}

	if !strings.Contains(gotQuery, `way(around:50,52.5,13.4)["building"]`) {
		t.Errorf("unexpected query %q", gotQuery)
	}
	if b.ID != 99 || len(b.Coordinates) != 5 {
		t.Errorf("unexpected building %+v", b)
	}
	if b.Coordinates[1] != (LatLng{Lat: 52.5, Lng: 13.4002}) {
		t.Errorf("unexpected second coordinate %v", b.Coordinates[1])
	}
	if b.Info.Kind != "house" || b.Info.Height == nil || *b.Info.Height != 6 || !b.Info.HeightEstimated {
		t.Errorf("unexpected info %+v", b.Info)
	}
}

func TestFetchBuildingNoWay(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"elements": [{"type": "node", "id": 1, "lat": 1, "lon": 2}]}`))
	}))
	defer srv.Close()

	_, err := NewOverpassClient(srv.URL, 50, time.Second).FetchBuilding(context.Background(), 1, 2)
	if !errors.Is(err, ErrNoBuilding) {
		t.Errorf("expected ErrNoBuilding, got %v", err)
	}
}

func TestFetchBuildingUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := NewOverpassClient(srv.URL, 50, time.Second).FetchBuilding(context.Background(), 1, 2)
	if err == nil || !strings.Contains(err.Error(), "429") {
		t.Errorf("expected status error, got %v", err)
	}
}

func TestExtractBuildingMissingNode(t *testing.T) {
	data := overpassResponse{Elements: []overpassElement{{Type: "way", ID: 5, Nodes: []int64{7}}}}
	if _, err := extractBuilding(data); err == nil {
		t.Errorf("expected error for missing node")
	}
}

const geojsonFixture = `{
  "type": "FeatureCollection",
  "features": [
    {"type": "Feature", "properties": {"height": 15, "addr:city": "Bergen"},
     "geometry": {"type": "Polygon", "coordinates": [[[5.0, 60.0], [5.001, 60.0], [5.001, 60.001], [5.0, 60.0]]]}},
    {"type": "Feature", "properties": {},
     "geometry": {"type": "MultiPolygon", "coordinates": [
       [[[0, 0], [1, 0], [1, 1], [0, 0]]],
       [[[10, 10], [14, 10], [14, 14], [10, 14], [10, 10]]]
     ]}},
    {"type": "Feature", "properties": {},
     "geometry": {"type": "Point", "coordinates": [1, 2]}}
  ]
}`

func TestLoadGeoJSON(t *testing.T) {
	b, err := LoadGeoJSON(strings.NewReader(geojsonFixture), 0)
	if err != nil {
		t.Fatalf("LoadGeoJSON: %v", err)
	}
	if len(b.Coordinates) != 4 || b.Coordinates[1] != (LatLng{Lat: 60, Lng: 5.001}) {
		t.Errorf("unexpected coordinates %v", b.Coordinates)
	}
	if b.Info.Height == nil || *b.Info.Height != 15 || b.Info.City != "Bergen" {
		t.Errorf("unexpected info %+v", b.Info)
	}

	b, err = LoadGeoJSON(strings.NewReader(geojsonFixture), 1)
	if err != nil {
		t.Fatalf("LoadGeoJSON multipolygon: %v", err)
	}
	if b.Coordinates[0] != (LatLng{Lat: 10, Lng: 10}) || len(b.Coordinates) != 5 {
		t.Errorf("largest polygon should be picked, got %v", b.Coordinates)
	}

	if _, err := LoadGeoJSON(strings.NewReader(geojsonFixture), 2); !errors.Is(err, ErrNotPolygon) {
		t.Errorf("expected ErrNotPolygon, got %v", err)
	}
	if _, err := LoadGeoJSON(strings.NewReader(geojsonFixture), 3); err == nil {
		t.Errorf("expected index error")
	}
	if _, err := LoadGeoJSON(strings.NewReader("not json"), 0); err == nil {
		t.Errorf("expected decode error")
	}
}

func ptr[T any](v T) *T {
	return &v
}
