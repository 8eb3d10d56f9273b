package footprint

import (
	"strconv"
	"strings"
)

// ============================================================
// Building
// ============================================================

// MetersPerLevel используется для оценки высоты по количеству этажей.
const MetersPerLevel = 3.0

type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type Building struct {
	ID          int64        `json:"id,omitempty"`
	Coordinates []LatLng     `json:"coordinates"`
	Info        BuildingInfo `json:"info"`
}

// BuildingInfo: явные опциональные поля вместо поиска по сырым тегам.
type BuildingInfo struct {
	Kind            string   `json:"kind,omitempty"`
	Street          string   `json:"street,omitempty"`
	HouseNumber     string   `json:"house_number,omitempty"`
	City            string   `json:"city,omitempty"`
	Postcode        string   `json:"postcode,omitempty"`
	Height          *float64 `json:"height,omitempty"`
	Levels          *int     `json:"levels,omitempty"`
	HeightEstimated bool     `json:"height_estimated"`
}

// ParseTags разбирает OSM-теги. Если высоты нет, она оценивается по этажам.
func ParseTags(tags map[string]string) BuildingInfo {
	info := BuildingInfo{
		Kind:        strings.TrimSpace(tags["building"]),
		Street:      strings.TrimSpace(tags["addr:street"]),
		HouseNumber: strings.TrimSpace(tags["addr:housenumber"]),
		City:        strings.TrimSpace(tags["addr:city"]),
		Postcode:    strings.TrimSpace(tags["addr:postcode"]),
	}

	if levels, ok := parseLevels(tags["building:levels"]); ok {
		info.Levels = &levels
	}

	if height, ok := parseHeight(tags["height"]); ok {
		info.Height = &height
	} else if info.Levels != nil {
		estimated := float64(*info.Levels) * MetersPerLevel
		info.Height = &estimated
		info.HeightEstimated = true
	}

	return info
}

// Address склеивает доступные части адреса.
func (b BuildingInfo) Address() string {
	var parts []string

	street := strings.TrimSpace(strings.Join(nonEmpty(b.Street, b.HouseNumber), " "))
	if street != "" {
		parts = append(parts, street)
	}
	city := strings.TrimSpace(strings.Join(nonEmpty(b.Postcode, b.City), " "))
	if city != "" {
		parts = append(parts, city)
	}

	return strings.Join(parts, ", ")
}

func parseHeight(raw string) (float64, bool) {
	s := strings.TrimSpace(strings.ToLower(raw))
	s = strings.TrimSuffix(s, "m")
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}

	v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64)
	if err != nil || v <= 0 {
		return 0, false
	}
	return v, true
}

func parseLevels(raw string) (int, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, false
	}

	if v, err := strconv.Atoi(s); err == nil && v > 0 {
		return v, true
	}
	// "2.5" встречается в OSM для мансард
	if f, err := strconv.ParseFloat(s, 64); err == nil && f > 0 {
		return int(f + 0.5), true
	}
	return 0, false
}

func nonEmpty(values ...string) []string {
	var out []string
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}
