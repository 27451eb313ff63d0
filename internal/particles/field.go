// Package particles implements the animated particle field drawn behind the
// page: drifting points joined by proximity lines and pulled toward the
// pointer.
package particles

import (
	"math"
	"math/rand"
	"time"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/iburimskiy/particlefield/internal/host"
)

const (
	// Attraction scales the per-frame pull toward the pointer. It moves
	// position, not velocity.
	Attraction = 0.02

	// MaxLineAlpha is the opacity of a connection between coincident
	// particles.
	MaxLineAlpha = 0.3

	lineWidth = 1.0

	minAlpha = 0.3
	maxAlpha = 0.8
)

// Host is what a Field consumes from its page.
type Host interface {
	Surface(id string) (host.Surface, bool)
	Viewport() (w, h float64)
	AddListener(kind host.EventKind, fn func(host.Event)) (remove func())
	RequestFrame(fn func()) host.FrameID
	CancelFrame(id host.FrameID)
}

// Particle is a point drifting across the surface.
type Particle struct {
	X, Y   float64
	VX, VY float64
	Size   float64
	Alpha  float64
}

// Pointer is the last known pointer or touch position.
type Pointer struct {
	X, Y    float64
	Present bool
}

type state int

const (
	inert state = iota
	active
	stopped
)

// Field owns a fixed set of particles bound to one surface. All methods must
// be called from the host's loop goroutine.
type Field struct {
	host    Host
	surface host.Surface
	cfg     Config
	color   colorful.Color

	particles []Particle
	pointer   Pointer

	state    state
	frame    host.FrameID
	removers []func()
}

// New binds a field to the surface with the given id and starts its frame
// loop. When the surface does not exist the field is inert: it never
// schedules a frame and registers no listeners.
func New(h Host, surfaceID string, opts Options) *Field {
	cfg := Resolve(opts)
	f := &Field{host: h, cfg: cfg}

	s, ok := h.Surface(surfaceID)
	if !ok || s == nil {
		return f
	}
	f.surface = s
	// Resolve has already validated the color.
	f.color, _ = ParseColor(cfg.ParticleColor)

	w, hgt := h.Viewport()
	s.SetSize(w, hgt)

	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	f.populate(rng, w, hgt)

	f.listen(host.Resize, f.onResize)
	f.listen(host.PointerMove, f.onPointer)
	f.listen(host.TouchStart, f.onPointer)
	f.listen(host.TouchMove, f.onPointer)
	f.listen(host.PointerLeave, f.onLeave)
	f.listen(host.TouchEnd, f.onLeave)

	f.state = active
	f.frame = h.RequestFrame(f.tick)
	return f
}

func (f *Field) populate(rng *rand.Rand, w, h float64) {
	f.particles = make([]Particle, f.cfg.ParticleCount)
	for i := range f.particles {
		f.particles[i] = Particle{
			X:     rng.Float64() * w,
			Y:     rng.Float64() * h,
			VX:    (rng.Float64() - 0.5) * f.cfg.Speed,
			VY:    (rng.Float64() - 0.5) * f.cfg.Speed,
			Size:  rng.Float64()*f.cfg.ParticleSize + 1,
			Alpha: rng.Float64()*(maxAlpha-minAlpha) + minAlpha,
		}
	}
}

func (f *Field) listen(kind host.EventKind, fn func(host.Event)) {
	f.removers = append(f.removers, f.host.AddListener(kind, fn))
}

func (f *Field) onResize(host.Event) {
	w, h := f.host.Viewport()
	f.surface.SetSize(w, h)
}

func (f *Field) onPointer(e host.Event) {
	f.pointer = Pointer{X: e.X, Y: e.Y, Present: true}
}

func (f *Field) onLeave(host.Event) {
	f.pointer = Pointer{}
}

func (f *Field) tick() {
	if f.state != active {
		return
	}
	f.Step()
	f.frame = f.host.RequestFrame(f.tick)
}

// Step advances every particle by one frame and redraws the surface.
func (f *Field) Step() {
	if f.surface == nil {
		return
	}
	w, h := f.surface.Size()
	f.surface.Clear()

	md := f.cfg.MouseDistance
	cd := f.cfg.ConnectDistance

	for i := range f.particles {
		p := &f.particles[i]

		p.X += p.VX
		p.Y += p.VY

		// Flip only while still heading outward so a particle past the
		// edge reverses once per crossing.
		if (p.X < 0 && p.VX < 0) || (p.X > w && p.VX > 0) {
			p.VX = -p.VX
		}
		if (p.Y < 0 && p.VY < 0) || (p.Y > h && p.VY > 0) {
			p.VY = -p.VY
		}

		if f.pointer.Present {
			dx := f.pointer.X - p.X
			dy := f.pointer.Y - p.Y
			d := math.Hypot(dx, dy)
			if d < md {
				force := (md - d) / md
				p.X += dx * force * Attraction
				p.Y += dy * force * Attraction
			}
		}

		f.surface.FillCircle(p.X, p.Y, p.Size, withAlpha(f.color, p.Alpha))

		for j := i + 1; j < len(f.particles); j++ {
			q := &f.particles[j]
			d := math.Hypot(p.X-q.X, p.Y-q.Y)
			if d < cd {
				alpha := (1 - d/cd) * MaxLineAlpha
				f.surface.StrokeLine(p.X, p.Y, q.X, q.Y, lineWidth, withAlpha(f.color, alpha))
			}
		}
	}
}

// Dispose stops the frame loop and removes every listener the field
// registered. It is safe to call more than once and on an inert field.
func (f *Field) Dispose() {
	if f.state != active {
		return
	}
	f.state = stopped
	f.host.CancelFrame(f.frame)
	for _, remove := range f.removers {
		remove()
	}
	f.removers = nil
}

// Active reports whether the field is bound to a surface and still running.
func (f *Field) Active() bool { return f.state == active }

// Config returns the resolved configuration.
func (f *Field) Config() Config { return f.cfg }

// Pointer returns the last pointer or touch position the field saw.
func (f *Field) Pointer() Pointer { return f.pointer }

// Particles returns a copy of the current particle set.
func (f *Field) Particles() []Particle {
	out := make([]Particle, len(f.particles))
	copy(out, f.particles)
	return out
}

// Len reports the number of particles.
func (f *Field) Len() int { return len(f.particles) }
