package lines

import (
	"math"
	"slices"

	"github.com/dhconnelly/rtreego"

	"floorplan-sketch/internal/sketch/geometry"
)

// ============================================================
// Similar Lines Filter
// ============================================================

// Line: x1, y1, x2, y2.
type Line [4]float64

func (l Line) Length() float64 {
	return math.Hypot(l[2]-l[0], l[3]-l[1])
}

type FilterOptions struct {
	DeltaTheta  float64 `json:"delta_theta"`
	DeltaRho    float64 `json:"delta_rho"`
	MinParallel int     `json:"min_parallel"`
}

func DefaultFilterOptions() FilterOptions {
	return FilterOptions{DeltaTheta: 1.0, DeltaRho: 4.0, MinParallel: 5}
}

// withDefaults подставляет значения по умолчанию вместо неположительных.
func (o FilterOptions) withDefaults() FilterOptions {
	def := DefaultFilterOptions()
	if o.DeltaTheta <= 0 {
		o.DeltaTheta = def.DeltaTheta
	}
	if o.DeltaRho <= 0 {
		o.DeltaRho = def.DeltaRho
	}
	if o.MinParallel < 1 {
		o.MinParallel = 1
	}
	return o
}

// clusterEps: радиус соседства в нормированном пространстве (θ/Δθ, ρ/Δρ).
var clusterEps = math.Sqrt2

type feature struct {
	idx int
	at  rtreego.Point
}

func (f *feature) Bounds() rtreego.Rect {
	return f.at.ToRect(1e-9)
}

// FilterSimilar группирует почти параллельные близкие линии и оставляет
// по самой длинной линии из каждой группы, где линий не меньше MinParallel.
func FilterSimilar(lines []Line, opts FilterOptions) []Line {
	if len(lines) == 0 {
		return nil
	}
	opts = opts.withDefaults()

	features := make([]*feature, len(lines))
	tree := rtreego.NewTree(2, 25, 50)
	for i, l := range lines {
		theta, rho := normalForm(l)
		f := &feature{idx: i, at: rtreego.Point{theta / opts.DeltaTheta, rho / opts.DeltaRho}}
		features[i] = f
		tree.Insert(f)
	}

	labels := make([]int, len(lines))
	for i := range labels {
		labels[i] = -1
	}

	var clusters [][]int
	for i := range features {
		if labels[i] != -1 {
			continue
		}
		label := len(clusters)
		labels[i] = label
		members := []int{i}

		for q := 0; q < len(members); q++ {
			cur := features[members[q]]
			for _, s := range tree.SearchIntersect(cur.at.ToRect(clusterEps)) {
				n := s.(*feature)
				if labels[n.idx] != -1 || dist(cur.at, n.at) > clusterEps {
					continue
				}
				labels[n.idx] = label
				members = append(members, n.idx)
			}
		}
		clusters = append(clusters, members)
	}

	var out []Line
	for _, members := range clusters {
		if len(members) < opts.MinParallel {
			continue
		}
		out = append(out, longest(lines, members))
	}
	return out
}

// normalForm возвращает θ ∈ [0, π) нормали и расстояние ρ до начала координат.
func normalForm(l Line) (float64, float64) {
	dx := l[2] - l[0]
	dy := l[3] - l[1]

	theta := math.Mod(math.Atan2(dx, -dy), math.Pi)
	if theta < 0 {
		theta += math.Pi
	}
	rho := l[0]*math.Cos(theta) + l[1]*math.Sin(theta)
	return theta, rho
}

// longest выбирает самую длинную линию; при равенстве побеждает меньший индекс.
func longest(lines []Line, members []int) Line {
	best := -1
	bestLen := -1.0
	sorted := slices.Clone(members)
	slices.Sort(sorted)
	for _, idx := range sorted {
		if l := lines[idx].Length(); l > bestLen {
			best, bestLen = idx, l
		}
	}
	return lines[best]
}

func dist(a, b rtreego.Point) float64 {
	return math.Hypot(a[0]-b[0], a[1]-b[1])
}

// ============================================================
// Normalisation
// ============================================================

// Normalize переводит координаты в [0, 1] по общему bounding box.
func Normalize(lines []Line) []Line {
	if len(lines) == 0 {
		return nil
	}

	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, l := range lines {
		minX = math.Min(minX, math.Min(l[0], l[2]))
		maxX = math.Max(maxX, math.Max(l[0], l[2]))
		minY = math.Min(minY, math.Min(l[1], l[3]))
		maxY = math.Max(maxY, math.Max(l[1], l[3]))
	}

	scale := func(v, min, max float64) float64 {
		if max == min {
			return 0
		}
		return (v - min) / (max - min)
	}

	out := make([]Line, 0, len(lines))
	for _, l := range lines {
		out = append(out, Line{
			scale(l[0], minX, maxX),
			scale(l[1], minY, maxY),
			scale(l[2], minX, maxX),
			scale(l[3], minY, maxY),
		})
	}
	return out
}

// ToSegments растягивает нормированные линии на холст.
func ToSegments(lines []Line, width, height float64) []geometry.Segment {
	out := make([]geometry.Segment, 0, len(lines))
	for _, l := range lines {
		out = append(out, geometry.Segment{
			Start: geometry.Point{X: l[0] * width, Y: l[1] * height},
			End:   geometry.Point{X: l[2] * width, Y: l[3] * height},
		})
	}
	return out
}
