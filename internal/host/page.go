package host

import "image/color"

// Surface is a raster drawing target addressed by id on a Page.
type Surface interface {
	Size() (w, h float64)
	SetSize(w, h float64)
	Clear()
	FillCircle(x, y, r float64, c color.Color)
	StrokeLine(x0, y0, x1, y1, width float64, c color.Color)
}

// EventKind identifies an input or window event stream.
type EventKind int

const (
	Resize EventKind = iota
	PointerMove
	PointerLeave
	TouchStart
	TouchMove
	TouchEnd
)

func (k EventKind) String() string {
	switch k {
	case Resize:
		return "resize"
	case PointerMove:
		return "pointermove"
	case PointerLeave:
		return "pointerleave"
	case TouchStart:
		return "touchstart"
	case TouchMove:
		return "touchmove"
	case TouchEnd:
		return "touchend"
	}
	return "unknown"
}

// Event carries viewport coordinates. Resize events report the new viewport
// size in X and Y.
type Event struct {
	Kind EventKind
	X, Y float64
}

// FrameID identifies a pending animation-frame callback.
type FrameID uint64

type listener struct {
	id uint64
	fn func(Event)
}

type frame struct {
	id FrameID
	fn func()
}

// Page stands in for the document and window a simulator is hosted by.
// It is not safe for concurrent use: every method must be called from the
// goroutine that runs the game loop.
type Page struct {
	surfaces  map[string]Surface
	listeners map[EventKind][]listener
	frames    []frame
	running   []frame

	width, height float64

	nextListener uint64
	nextFrame    FrameID
}

func NewPage(width, height float64) *Page {
	return &Page{
		surfaces:  map[string]Surface{},
		listeners: map[EventKind][]listener{},
		width:     width,
		height:    height,
	}
}

func (p *Page) AddSurface(id string, s Surface) {
	p.surfaces[id] = s
}

// Surface looks up a drawing surface by element id.
func (p *Page) Surface(id string) (Surface, bool) {
	s, ok := p.surfaces[id]
	return s, ok
}

func (p *Page) Viewport() (w, h float64) {
	return p.width, p.height
}

// SetViewport updates the viewport and dispatches a Resize event when the
// size actually changed.
func (p *Page) SetViewport(w, h float64) {
	if w == p.width && h == p.height {
		return
	}
	p.width, p.height = w, h
	p.Dispatch(Event{Kind: Resize, X: w, Y: h})
}

// AddListener registers fn for events of the given kind. The returned func
// removes the registration; calling it more than once is harmless.
func (p *Page) AddListener(kind EventKind, fn func(Event)) (remove func()) {
	p.nextListener++
	id := p.nextListener
	p.listeners[kind] = append(p.listeners[kind], listener{id: id, fn: fn})

	return func() {
		ls := p.listeners[kind]
		for i, l := range ls {
			if l.id == id {
				p.listeners[kind] = append(ls[:i:i], ls[i+1:]...)
				return
			}
		}
	}
}

func (p *Page) ListenerCount() int {
	n := 0
	for _, ls := range p.listeners {
		n += len(ls)
	}
	return n
}

// Dispatch delivers e synchronously to the listeners registered for its kind
// at the time of the call.
func (p *Page) Dispatch(e Event) {
	ls := p.listeners[e.Kind]
	if len(ls) == 0 {
		return
	}
	snapshot := make([]listener, len(ls))
	copy(snapshot, ls)
	for _, l := range snapshot {
		l.fn(e)
	}
}

// RequestFrame queues fn to run on the next RunFrames call.
func (p *Page) RequestFrame(fn func()) FrameID {
	p.nextFrame++
	p.frames = append(p.frames, frame{id: p.nextFrame, fn: fn})
	return p.nextFrame
}

// CancelFrame drops a pending callback. A callback already picked up by an
// in-progress RunFrames call is skipped if it has not run yet.
func (p *Page) CancelFrame(id FrameID) {
	for i, f := range p.frames {
		if f.id == id {
			p.frames = append(p.frames[:i:i], p.frames[i+1:]...)
			return
		}
	}
	for i := range p.running {
		if p.running[i].id == id {
			p.running[i].fn = nil
			return
		}
	}
}

func (p *Page) PendingFrames() int {
	return len(p.frames)
}

// RunFrames runs every callback queued before the call and returns how many
// ran. Callbacks requested while running wait for the next call.
func (p *Page) RunFrames() int {
	p.running = p.frames
	p.frames = nil
	defer func() { p.running = nil }()

	n := 0
	for i := range p.running {
		fn := p.running[i].fn
		if fn == nil {
			continue
		}
		p.running[i].fn = nil
		fn()
		n++
	}
	return n
}
