package game

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// imageSurface is an offscreen ebiten image a particle field draws into.
type imageSurface struct {
	img  *ebiten.Image
	w, h float64
}

func newImageSurface(w, h int) *imageSurface {
	s := &imageSurface{}
	s.SetSize(float64(w), float64(h))
	return s
}

func (s *imageSurface) Size() (float64, float64) { return s.w, s.h }

// SetSize reallocates the backing image. The field redraws every frame, so
// the old contents are not copied.
func (s *imageSurface) SetSize(w, h float64) {
	pw, ph := max(int(w), 1), max(int(h), 1)
	if s.img != nil {
		b := s.img.Bounds()
		if b.Dx() == pw && b.Dy() == ph {
			s.w, s.h = w, h
			return
		}
		s.img.Deallocate()
	}
	s.img = ebiten.NewImage(pw, ph)
	s.w, s.h = w, h
}

func (s *imageSurface) Clear() { s.img.Clear() }

func (s *imageSurface) FillCircle(x, y, r float64, c color.Color) {
	vector.DrawFilledCircle(s.img, float32(x), float32(y), float32(r), c, true)
}

func (s *imageSurface) StrokeLine(x0, y0, x1, y1, width float64, c color.Color) {
	vector.StrokeLine(s.img, float32(x0), float32(y0), float32(x1), float32(y1), float32(width), c, true)
}
