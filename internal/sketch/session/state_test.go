package session

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"floorplan-sketch/internal/sketch/geometry"
)

func pt(x, y float64) geometry.Point {
	return geometry.Point{X: x, Y: y}
}

func square() geometry.Polygon {
	return geometry.Polygon{pt(0, 0), pt(100, 0), pt(100, 100), pt(0, 100)}
}

func mustState(t *testing.T, mode Mode) State {
	t.Helper()
	st, err := NewState(mode, 10)
	if err != nil {
		t.Fatalf("NewState: %v", err)
	}
	return st
}

func TestLineDrawingSnapsBothEnds(t *testing.T) {
	st := mustState(t, ModeLine)
	sc := Scene{Footprint: square()}

	st, sc, fb := Step(st, sc, Event{Kind: PointerDown, Point: pt(3, 50)})
	if fb.Snap == nil || *fb.Snap != pt(0, 50) {
		t.Fatalf("start should snap to (0,50), got %v", fb.Snap)
	}
	if !st.Drawing || st.Current == nil || len(sc.Segments) != 1 {
		t.Fatalf("expected drawing state with one segment, got %+v / %d", st, len(sc.Segments))
	}

	st, sc, fb = Step(st, sc, Event{Kind: PointerMove, Point: pt(50, 52)})
	if fb.Snap != nil {
		t.Errorf("free move should not snap, got %v", *fb.Snap)
	}
	if *st.Current != (geometry.Segment{Start: pt(0, 50), End: pt(50, 52)}) {
		t.Errorf("live endpoint should follow the cursor, got %+v", *st.Current)
	}

	st, sc, fb = Step(st, sc, Event{Kind: PointerMove, Point: pt(97, 50)})
	if fb.Snap == nil || *fb.Snap != pt(100, 50) {
		t.Fatalf("end should snap to (100,50), got %v", fb.Snap)
	}
	if sc.Segments[0] != st.Current {
		t.Errorf("Current must point at the scene slot")
	}

	st, sc, _ = Step(st, sc, Event{Kind: PointerUp})
	if st.Drawing || st.Current != nil {
		t.Errorf("pointer up should end drawing, got %+v", st)
	}

	want := []*geometry.Segment{{Start: pt(0, 50), End: pt(100, 50)}}
	if diff := cmp.Diff(want, sc.Segments); diff != "" {
		t.Errorf("segments mismatch (-want +got):\n%s", diff)
	}
}

func TestNewLineSnapsToCommittedLine(t *testing.T) {
	st := mustState(t, ModeLine)
	sc := Scene{Segments: []*geometry.Segment{{Start: pt(0, 50), End: pt(100, 50)}}}

	st, sc, fb := Step(st, sc, Event{Kind: PointerDown, Point: pt(50, 51)})
	if fb.Snap == nil || *fb.Snap != pt(50, 50) {
		t.Fatalf("expected snap to (50,50), got %v", fb.Snap)
	}

	// Сам рисуемый отрезок исключён, поэтому точка рядом с его началом не липнет к нему.
	st, sc, fb = Step(st, sc, Event{Kind: PointerMove, Point: pt(50, 70)})
	if fb.Snap != nil {
		t.Errorf("in-progress line must not snap to itself, got %v", *fb.Snap)
	}
	if st.Current.End != pt(50, 70) {
		t.Errorf("expected raw endpoint (50,70), got %v", st.Current.End)
	}
	if len(sc.Segments) != 2 {
		t.Errorf("expected 2 segments, got %d", len(sc.Segments))
	}
}

func TestClickWithoutDragDropsSegment(t *testing.T) {
	st := mustState(t, ModeLine)
	sc := Scene{}

	st, sc, _ = Step(st, sc, Event{Kind: PointerDown, Point: pt(10, 10)})
	st, sc, _ = Step(st, sc, Event{Kind: PointerUp, Point: pt(10, 10)})

	if len(sc.Segments) != 0 {
		t.Errorf("degenerate stroke should be dropped, got %d segments", len(sc.Segments))
	}
	if st.Drawing {
		t.Errorf("drawing should be false")
	}
}

func TestStepDoesNotMutateInputScene(t *testing.T) {
	st := mustState(t, ModeLine)
	first := &geometry.Segment{Start: pt(0, 0), End: pt(10, 0)}
	sc := Scene{Segments: []*geometry.Segment{first}}

	st, next, _ := Step(st, sc, Event{Kind: PointerDown, Point: pt(200, 200)})
	_, _, _ = Step(st, next, Event{Kind: PointerMove, Point: pt(300, 300)})

	if len(sc.Segments) != 1 || sc.Segments[0] != first {
		t.Errorf("input scene was modified: %+v", sc.Segments)
	}
	if *first != (geometry.Segment{Start: pt(0, 0), End: pt(10, 0)}) {
		t.Errorf("committed segment was modified: %+v", *first)
	}
}

func TestModeNoneIgnoresEvents(t *testing.T) {
	st := mustState(t, ModeNone)
	sc := Scene{}

	for _, kind := range []EventKind{PointerDown, PointerMove, PointerUp} {
		var fb Feedback
		st, sc, fb = Step(st, sc, Event{Kind: kind, Point: pt(1, 1)})
		if fb.Changed || st.Drawing {
			t.Errorf("%s: mode none should ignore events", kind)
		}
	}
	if len(sc.Segments) != 0 {
		t.Errorf("no segments expected")
	}
}

func TestRectDrawing(t *testing.T) {
	st := mustState(t, ModeRect)
	sc := Scene{}

	st, sc, _ = Step(st, sc, Event{Kind: PointerDown, Point: pt(40, 40)})
	st, sc, _ = Step(st, sc, Event{Kind: PointerMove, Point: pt(10, 60)})

	wantPreview := geometry.Rect{Min: pt(10, 40), Max: pt(40, 60)}
	if st.Preview == nil || *st.Preview != wantPreview {
		t.Fatalf("expected preview %v, got %v", wantPreview, st.Preview)
	}

	st, sc, _ = Step(st, sc, Event{Kind: PointerUp, Point: pt(10, 60)})
	if st.Preview != nil || st.Drawing {
		t.Errorf("pointer up should reset rect drawing, got %+v", st)
	}
	if diff := cmp.Diff([]geometry.Rect{wantPreview}, sc.Rects); diff != "" {
		t.Errorf("rects mismatch (-want +got):\n%s", diff)
	}

	// Рёбра прямоугольника участвуют в снаппинге.
	if got, ok := Snap(mustState(t, ModeLine), sc, pt(25, 62)); !ok || got != pt(25, 60) {
		t.Errorf("expected snap to rect edge (25,60), got %v (ok=%v)", got, ok)
	}
}

func TestEmptyRectNotCommitted(t *testing.T) {
	st := mustState(t, ModeRect)
	sc := Scene{}

	st, sc, _ = Step(st, sc, Event{Kind: PointerDown, Point: pt(5, 5)})
	_, sc, _ = Step(st, sc, Event{Kind: PointerUp, Point: pt(5, 5)})

	if len(sc.Rects) != 0 {
		t.Errorf("empty rect should not be committed")
	}
}

func TestSetModeFinishesStroke(t *testing.T) {
	st := mustState(t, ModeLine)
	sc := Scene{}

	st, sc, _ = Step(st, sc, Event{Kind: PointerDown, Point: pt(0, 0)})
	st, sc, _ = Step(st, sc, Event{Kind: PointerMove, Point: pt(30, 0)})
	st, sc = SetMode(st, sc, ModeRect)

	if st.Mode != ModeRect || st.Drawing || st.Current != nil {
		t.Errorf("unexpected state after SetMode: %+v", st)
	}
	if len(sc.Segments) != 1 {
		t.Errorf("finished stroke should be kept, got %d", len(sc.Segments))
	}
}

func TestClear(t *testing.T) {
	st := mustState(t, ModeLine)
	sc := Scene{Footprint: square()}
	st, sc, _ = Step(st, sc, Event{Kind: PointerDown, Point: pt(50, 50)})

	st, sc = Clear(st)
	if st.Drawing || st.Current != nil {
		t.Errorf("Clear should reset drawing, got %+v", st)
	}
	if len(sc.Footprint) != 0 || len(sc.Segments) != 0 || len(sc.Rects) != 0 {
		t.Errorf("Clear should empty the scene, got %+v", sc)
	}
	if st.Mode != ModeLine {
		t.Errorf("Clear should keep the mode")
	}
}

func TestParseMode(t *testing.T) {
	for in, want := range map[string]Mode{"": ModeNone, "none": ModeNone, "line": ModeLine, "rect": ModeRect} {
		got, err := ParseMode(in)
		if err != nil || got != want {
			t.Errorf("ParseMode(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseMode("circle"); err == nil {
		t.Errorf("expected error for unknown mode")
	}
}
