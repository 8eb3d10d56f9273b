package session

import (
	"fmt"

	"floorplan-sketch/internal/sketch/geometry"
	"floorplan-sketch/internal/sketch/snap"
)

// ============================================================
// Drawing State
// ============================================================

type Mode string

const (
	ModeNone Mode = "none"
	ModeLine Mode = "line"
	ModeRect Mode = "rect"
)

func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeNone, ModeLine, ModeRect:
		return Mode(s), nil
	case "":
		return ModeNone, nil
	}
	return "", fmt.Errorf("unknown mode %q", s)
}

// State хранит то, что раньше жило в глобальных флагах холста.
type State struct {
	Mode      Mode              `json:"mode"`
	Drawing   bool              `json:"drawing"`
	Current   *geometry.Segment `json:"current,omitempty"`
	Anchor    geometry.Point    `json:"anchor"`
	Preview   *geometry.Rect    `json:"preview,omitempty"`
	Threshold float64           `json:"threshold"`
}

// Scene: снимок геометрии, которым владеет вызывающая сторона.
type Scene struct {
	Footprint geometry.Polygon    `json:"footprint"`
	Segments  []*geometry.Segment `json:"segments"`
	Rects     []geometry.Rect     `json:"rects"`
}

type EventKind string

const (
	PointerDown EventKind = "down"
	PointerMove EventKind = "move"
	PointerUp   EventKind = "up"
)

type Event struct {
	Kind  EventKind      `json:"kind"`
	Point geometry.Point `json:"point"`
}

// Feedback говорит UI, рисовать ли индикатор снаппинга.
type Feedback struct {
	Snap    *geometry.Point `json:"snap,omitempty"`
	Changed bool            `json:"changed"`
}

func NewState(mode Mode, threshold float64) (State, error) {
	if err := snap.ValidateThreshold(threshold); err != nil {
		return State{}, err
	}
	return State{Mode: mode, Threshold: threshold}, nil
}

// SnapCandidates возвращает свободные отрезки: сначала линии, потом рёбра прямоугольников.
func (sc Scene) SnapCandidates() []*geometry.Segment {
	out := make([]*geometry.Segment, 0, len(sc.Segments)+4*len(sc.Rects))
	out = append(out, sc.Segments...)
	for _, r := range sc.Rects {
		for _, e := range r.Edges() {
			out = append(out, &e)
		}
	}
	return out
}

// Snap спрашивает резолвер с текущим снимком сцены.
func Snap(st State, sc Scene, p geometry.Point) (geometry.Point, bool) {
	return snap.FindSnapPoint(p, sc.Footprint.Edges(), sc.SnapCandidates(), st.Current, st.Threshold)
}

// Step обрабатывает одно событие указателя и возвращает новое состояние и сцену.
func Step(st State, sc Scene, ev Event) (State, Scene, Feedback) {
	switch st.Mode {
	case ModeLine:
		return stepLine(st, sc, ev)
	case ModeRect:
		return stepRect(st, sc, ev)
	}
	return st, sc, Feedback{}
}

func stepLine(st State, sc Scene, ev Event) (State, Scene, Feedback) {
	switch ev.Kind {
	case PointerDown:
		if st.Drawing {
			return st, sc, Feedback{}
		}
		start, fb := anchor(st, sc, ev.Point)
		line := &geometry.Segment{Start: start, End: start}

		segments := make([]*geometry.Segment, len(sc.Segments), len(sc.Segments)+1)
		copy(segments, sc.Segments)
		sc.Segments = append(segments, line)

		st.Drawing = true
		st.Current = line
		fb.Changed = true
		return st, sc, fb

	case PointerMove:
		if !st.Drawing || st.Current == nil {
			return st, sc, Feedback{}
		}
		end, fb := anchor(st, sc, ev.Point)
		idx := indexOf(sc.Segments, st.Current)
		if idx < 0 {
			st.Drawing = false
			st.Current = nil
			return st, sc, Feedback{}
		}

		line := &geometry.Segment{Start: st.Current.Start, End: end}
		segments := make([]*geometry.Segment, len(sc.Segments))
		copy(segments, sc.Segments)
		segments[idx] = line
		sc.Segments = segments

		st.Current = line
		fb.Changed = true
		return st, sc, fb

	case PointerUp:
		if !st.Drawing {
			return st, sc, Feedback{}
		}
		if st.Current != nil && st.Current.IsDegenerate() {
			if idx := indexOf(sc.Segments, st.Current); idx >= 0 {
				segments := make([]*geometry.Segment, 0, len(sc.Segments)-1)
				segments = append(segments, sc.Segments[:idx]...)
				sc.Segments = append(segments, sc.Segments[idx+1:]...)
			}
		}
		st.Drawing = false
		st.Current = nil
		return st, sc, Feedback{Changed: true}
	}
	return st, sc, Feedback{}
}

func stepRect(st State, sc Scene, ev Event) (State, Scene, Feedback) {
	switch ev.Kind {
	case PointerDown:
		if st.Drawing {
			return st, sc, Feedback{}
		}
		st.Drawing = true
		st.Anchor = ev.Point
		preview := geometry.RectFromCorners(ev.Point, ev.Point)
		st.Preview = &preview
		return st, sc, Feedback{Changed: true}

	case PointerMove:
		if !st.Drawing {
			return st, sc, Feedback{}
		}
		preview := geometry.RectFromCorners(st.Anchor, ev.Point)
		st.Preview = &preview
		return st, sc, Feedback{Changed: true}

	case PointerUp:
		if !st.Drawing {
			return st, sc, Feedback{}
		}
		if st.Preview != nil && !st.Preview.IsEmpty() {
			rects := make([]geometry.Rect, len(sc.Rects), len(sc.Rects)+1)
			copy(rects, sc.Rects)
			sc.Rects = append(rects, *st.Preview)
		}
		st.Drawing = false
		st.Preview = nil
		return st, sc, Feedback{Changed: true}
	}
	return st, sc, Feedback{}
}

// anchor предпочитает точку снаппинга сырому курсору.
func anchor(st State, sc Scene, p geometry.Point) (geometry.Point, Feedback) {
	if snapped, ok := Snap(st, sc, p); ok {
		return snapped, Feedback{Snap: &snapped}
	}
	return p, Feedback{}
}

// SetMode переключает режим; незавершённый штрих завершается как при отпускании.
func SetMode(st State, sc Scene, mode Mode) (State, Scene) {
	if st.Drawing {
		st, sc, _ = Step(st, sc, Event{Kind: PointerUp})
	}
	st.Mode = mode
	return st, sc
}

// Clear удаляет все пользовательские элементы, включая контур здания.
func Clear(st State) (State, Scene) {
	st.Drawing = false
	st.Current = nil
	st.Preview = nil
	return st, Scene{}
}

func indexOf(segments []*geometry.Segment, target *geometry.Segment) int {
	for i, s := range segments {
		if s == target {
			return i
		}
	}
	return -1
}
