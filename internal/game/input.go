package game

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/iburimskiy/particlefield/internal/host"
)

type point struct{ x, y int }

// inputTracker turns ebiten's polled input into page events.
type inputTracker struct {
	inside  bool
	cursor  point
	touches map[ebiten.TouchID]point

	touchIDs []ebiten.TouchID
}

func newInputTracker() *inputTracker {
	return &inputTracker{touches: map[ebiten.TouchID]point{}}
}

func (t *inputTracker) poll(page *host.Page, w, h int) {
	t.pollCursor(page, w, h)
	t.pollTouches(page)
}

func (t *inputTracker) pollCursor(page *host.Page, w, h int) {
	x, y := ebiten.CursorPosition()
	in := ebiten.IsFocused() && x >= 0 && y >= 0 && x < w && y < h

	switch {
	case in && (!t.inside || x != t.cursor.x || y != t.cursor.y):
		page.Dispatch(host.Event{Kind: host.PointerMove, X: float64(x), Y: float64(y)})
	case !in && t.inside:
		page.Dispatch(host.Event{Kind: host.PointerLeave})
	}
	t.inside = in
	t.cursor = point{x, y}
}

func (t *inputTracker) pollTouches(page *host.Page) {
	t.touchIDs = inpututil.AppendJustPressedTouchIDs(t.touchIDs[:0])
	for _, id := range t.touchIDs {
		x, y := ebiten.TouchPosition(id)
		t.touches[id] = point{x, y}
		page.Dispatch(host.Event{Kind: host.TouchStart, X: float64(x), Y: float64(y)})
	}

	t.touchIDs = ebiten.AppendTouchIDs(t.touchIDs[:0])
	for _, id := range t.touchIDs {
		x, y := ebiten.TouchPosition(id)
		if prev, ok := t.touches[id]; ok && prev == (point{x, y}) {
			continue
		}
		t.touches[id] = point{x, y}
		page.Dispatch(host.Event{Kind: host.TouchMove, X: float64(x), Y: float64(y)})
	}

	t.touchIDs = inpututil.AppendJustReleasedTouchIDs(t.touchIDs[:0])
	for _, id := range t.touchIDs {
		x, y := inpututil.TouchPositionInPreviousTick(id)
		delete(t.touches, id)
		page.Dispatch(host.Event{Kind: host.TouchEnd, X: float64(x), Y: float64(y)})
	}
}
