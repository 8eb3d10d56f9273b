package footprint

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"
)

// ============================================================
// Overpass Client
// ============================================================

const DefaultOverpassURL = "https://overpass-api.de/api/interpreter"

var ErrNoBuilding = errors.New("no building found at this location")

type OverpassClient struct {
	BaseURL string
	Radius  float64
	HTTP    *http.Client
}

func NewOverpassClient(baseURL string, radius float64, timeout time.Duration) *OverpassClient {
	if baseURL == "" {
		baseURL = DefaultOverpassURL
	}
	return &OverpassClient{
		BaseURL: baseURL,
		Radius:  radius,
		HTTP:    &http.Client{Timeout: timeout},
	}
}

type overpassResponse struct {
	Elements []overpassElement `json:"elements"`
}

type overpassElement struct {
	Type  string            `json:"type"`
	ID    int64             `json:"id"`
	Lat   float64           `json:"lat"`
	Lon   float64           `json:"lon"`
	Nodes []int64           `json:"nodes"`
	Tags  map[string]string `json:"tags"`
}

// Query собирает запрос зданий в радиусе вокруг точки.
func (c *OverpassClient) Query(lat, lng float64) string {
	return fmt.Sprintf(`[out:json];way(around:%g,%g,%g)["building"];(._;>;);out body;`, c.Radius, lat, lng)
}

// FetchBuilding возвращает контур первого здания рядом с точкой.
func (c *OverpassClient) FetchBuilding(ctx context.Context, lat, lng float64) (*Building, error) {
	target := c.BaseURL + "?data=" + url.QueryEscape(c.Query(lat, lng))
	log.Printf("[FOOTPRINT] Overpass request around %.6f,%.6f (r=%gm)", lat, lng, c.Radius)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("build overpass request: %w", err)
	}

	client := c.HTTP
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("overpass request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read overpass response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("overpass status %d: %s", resp.StatusCode, truncate(body, 200))
	}

	var data overpassResponse
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, fmt.Errorf("decode overpass response: %w", err)
	}

	return extractBuilding(data)
}

// extractBuilding берёт первую way и разворачивает её узлы в координаты.
func extractBuilding(data overpassResponse) (*Building, error) {
	nodes := make(map[int64]LatLng)
	for _, el := range data.Elements {
		if el.Type == "node" {
			nodes[el.ID] = LatLng{Lat: el.Lat, Lng: el.Lon}
		}
	}

	for _, el := range data.Elements {
		if el.Type != "way" {
			continue
		}

		coords := make([]LatLng, 0, len(el.Nodes))
		for _, id := range el.Nodes {
			ll, ok := nodes[id]
			if !ok {
				return nil, fmt.Errorf("way %d references missing node %d", el.ID, id)
			}
			coords = append(coords, ll)
		}

		return &Building{
			ID:          el.ID,
			Coordinates: coords,
			Info:        ParseTags(el.Tags),
		}, nil
	}

	return nil, ErrNoBuilding
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
