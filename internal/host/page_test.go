package host

import (
	"image/color"
	"testing"
)

type nopSurface struct{ w, h float64 }

func (s *nopSurface) Size() (float64, float64) { return s.w, s.h }
func (s *nopSurface) SetSize(w, h float64)     { s.w, s.h = w, h }
func (s *nopSurface) Clear()                   {}

func (s *nopSurface) FillCircle(_, _, _ float64, _ color.Color)       {}
func (s *nopSurface) StrokeLine(_, _, _, _, _ float64, _ color.Color) {}

func TestSurfaceLookup(t *testing.T) {
	p := NewPage(100, 100)
	s := &nopSurface{}
	p.AddSurface("particles-bg", s)

	got, ok := p.Surface("particles-bg")
	if !ok || got != s {
		t.Error("Expected registered surface to be found")
	}
	if _, ok := p.Surface("particles-fg"); ok {
		t.Error("Expected unknown id to be missing")
	}
}

func TestListenerRegistration(t *testing.T) {
	p := NewPage(100, 100)

	var moves, touches int
	removeMove := p.AddListener(PointerMove, func(Event) { moves++ })
	p.AddListener(TouchStart, func(Event) { touches++ })

	if p.ListenerCount() != 2 {
		t.Fatalf("Expected 2 listeners, got %d", p.ListenerCount())
	}

	p.Dispatch(Event{Kind: PointerMove})
	p.Dispatch(Event{Kind: TouchStart})
	p.Dispatch(Event{Kind: TouchEnd})
	if moves != 1 || touches != 1 {
		t.Errorf("Expected one delivery each, got moves=%d touches=%d", moves, touches)
	}

	removeMove()
	removeMove()
	if p.ListenerCount() != 1 {
		t.Errorf("Expected 1 listener after removal, got %d", p.ListenerCount())
	}
	p.Dispatch(Event{Kind: PointerMove})
	if moves != 1 {
		t.Errorf("Expected removed listener to stay silent, got %d", moves)
	}
}

func TestListenerRemovedDuringDispatch(t *testing.T) {
	p := NewPage(100, 100)

	var calls int
	var remove func()
	remove = p.AddListener(PointerMove, func(Event) {
		calls++
		remove()
	})
	p.AddListener(PointerMove, func(Event) { calls++ })

	p.Dispatch(Event{Kind: PointerMove})
	p.Dispatch(Event{Kind: PointerMove})

	if calls != 3 {
		t.Errorf("Expected 3 calls, got %d", calls)
	}
}

func TestSetViewport(t *testing.T) {
	p := NewPage(800, 600)

	var resizes []Event
	p.AddListener(Resize, func(e Event) { resizes = append(resizes, e) })

	p.SetViewport(800, 600)
	if len(resizes) != 0 {
		t.Errorf("Expected no resize for an unchanged viewport, got %d", len(resizes))
	}

	p.SetViewport(375, 667)
	if len(resizes) != 1 {
		t.Fatalf("Expected one resize, got %d", len(resizes))
	}
	if resizes[0].X != 375 || resizes[0].Y != 667 {
		t.Errorf("Expected resize to 375x667, got %vx%v", resizes[0].X, resizes[0].Y)
	}
	if w, h := p.Viewport(); w != 375 || h != 667 {
		t.Errorf("Expected viewport 375x667, got %vx%v", w, h)
	}
}

func TestRunFramesDefersRequestsMadeDuringRun(t *testing.T) {
	p := NewPage(100, 100)

	var ticks int
	var tick func()
	tick = func() {
		ticks++
		p.RequestFrame(tick)
	}
	p.RequestFrame(tick)

	for i := 0; i < 5; i++ {
		if ran := p.RunFrames(); ran != 1 {
			t.Fatalf("Run %d: expected 1 callback, got %d", i, ran)
		}
	}
	if ticks != 5 {
		t.Errorf("Expected 5 ticks, got %d", ticks)
	}
	if p.PendingFrames() != 1 {
		t.Errorf("Expected 1 pending frame, got %d", p.PendingFrames())
	}
}

func TestCancelFrame(t *testing.T) {
	p := NewPage(100, 100)

	var ran []string
	a := p.RequestFrame(func() { ran = append(ran, "a") })
	p.RequestFrame(func() { ran = append(ran, "b") })
	p.CancelFrame(a)
	p.CancelFrame(FrameID(999))

	if n := p.RunFrames(); n != 1 {
		t.Errorf("Expected 1 callback, got %d", n)
	}
	if len(ran) != 1 || ran[0] != "b" {
		t.Errorf("Expected only b to run, got %v", ran)
	}
	if p.RunFrames() != 0 {
		t.Error("Expected an empty queue")
	}
}

func TestCancelFrameDuringRun(t *testing.T) {
	p := NewPage(100, 100)

	var later FrameID
	var laterRan bool
	p.RequestFrame(func() { p.CancelFrame(later) })
	later = p.RequestFrame(func() { laterRan = true })

	if n := p.RunFrames(); n != 1 {
		t.Errorf("Expected 1 callback, got %d", n)
	}
	if laterRan {
		t.Error("Expected cancelled callback to be skipped")
	}
}

func TestEventKindString(t *testing.T) {
	tests := []struct {
		kind     EventKind
		expected string
	}{
		{Resize, "resize"},
		{PointerMove, "pointermove"},
		{PointerLeave, "pointerleave"},
		{TouchStart, "touchstart"},
		{TouchMove, "touchmove"},
		{TouchEnd, "touchend"},
		{EventKind(42), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.expected {
			t.Errorf("EventKind(%d).String() = %q, expected %q", tt.kind, got, tt.expected)
		}
	}
}
