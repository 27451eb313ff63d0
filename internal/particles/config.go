package particles

import (
	"image/color"
	"log"
	"math/rand"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/pkg/errors"
)

// Config is the resolved, immutable configuration of a Field.
type Config struct {
	ParticleCount   int
	ParticleColor   string  // "R,G,B" or "#rrggbb"
	ParticleSize    float64 // max extra radius
	Speed           float64 // max per-axis velocity span, px/frame
	ConnectDistance float64 // px
	MouseDistance   float64 // px
}

// Options are caller-supplied construction parameters. Zero values mean
// "unspecified" and fall back to the defaults for the device class.
type Options struct {
	// Constrained selects the lighter defaults row. Hosts resolve it, see
	// package device.
	Constrained bool

	ParticleCount   int
	ParticleColor   string
	ParticleSize    float64
	Speed           float64
	ConnectDistance float64
	MouseDistance   float64

	// Rand is the sampling source for initial particle state. Nil uses a
	// time-seeded source.
	Rand *rand.Rand
}

const DefaultColor = "255,255,255"

// Defaults returns the base configuration for a device class.
func Defaults(constrained bool) Config {
	if constrained {
		return Config{
			ParticleCount:   30,
			ParticleColor:   DefaultColor,
			ParticleSize:    2,
			Speed:           0.3,
			ConnectDistance: 80,
			MouseDistance:   100,
		}
	}
	return Config{
		ParticleCount:   80,
		ParticleColor:   DefaultColor,
		ParticleSize:    3,
		Speed:           0.5,
		ConnectDistance: 120,
		MouseDistance:   150,
	}
}

// With returns o with every specified field of over applied on top. Out of
// range values in over are logged and skipped, so o keeps its own.
func (o Options) With(over Options) Options {
	if over.Constrained {
		o.Constrained = true
	}
	switch {
	case over.ParticleCount > 0:
		o.ParticleCount = over.ParticleCount
	case over.ParticleCount < 0:
		log.Printf("particles: ignoring particleCount %d", over.ParticleCount)
	}
	if over.ParticleColor != "" {
		if _, err := ParseColor(over.ParticleColor); err != nil {
			log.Printf("particles: ignoring particleColor: %v", err)
		} else {
			o.ParticleColor = over.ParticleColor
		}
	}
	positive(&o.ParticleSize, over.ParticleSize, "particleSize")
	positive(&o.Speed, over.Speed, "speed")
	positive(&o.ConnectDistance, over.ConnectDistance, "connectDistance")
	positive(&o.MouseDistance, over.MouseDistance, "mouseDistance")
	if over.Rand != nil {
		o.Rand = over.Rand
	}
	return o
}

// Resolve merges o over the defaults for its device class. Out of range
// values are logged and ignored.
func Resolve(o Options) Config {
	cfg := Defaults(o.Constrained)

	if o.ParticleCount > 0 {
		cfg.ParticleCount = o.ParticleCount
	} else if o.ParticleCount < 0 {
		log.Printf("particles: ignoring particleCount %d", o.ParticleCount)
	}
	if o.ParticleColor != "" {
		if _, err := ParseColor(o.ParticleColor); err != nil {
			log.Printf("particles: ignoring particleColor: %v", err)
		} else {
			cfg.ParticleColor = o.ParticleColor
		}
	}
	positive(&cfg.ParticleSize, o.ParticleSize, "particleSize")
	positive(&cfg.Speed, o.Speed, "speed")
	positive(&cfg.ConnectDistance, o.ConnectDistance, "connectDistance")
	positive(&cfg.MouseDistance, o.MouseDistance, "mouseDistance")

	return cfg
}

func positive(dst *float64, v float64, name string) {
	switch {
	case v > 0:
		*dst = v
	case v < 0:
		log.Printf("particles: ignoring %s %v", name, v)
	}
}

// ParseColor accepts an "R,G,B" triple of 0-255 integers or a "#rrggbb" hex
// string.
func ParseColor(s string) (colorful.Color, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "#") {
		c, err := colorful.Hex(s)
		if err != nil {
			return colorful.Color{}, errors.Wrapf(err, "color %q", s)
		}
		return c, nil
	}

	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return colorful.Color{}, errors.Errorf("color %q: want R,G,B", s)
	}
	var rgb [3]uint8
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return colorful.Color{}, errors.Wrapf(err, "color %q", s)
		}
		if v < 0 || v > 255 {
			return colorful.Color{}, errors.Errorf("color %q: component %d out of range", s, v)
		}
		rgb[i] = uint8(v)
	}
	return colorful.Color{
		R: float64(rgb[0]) / 255,
		G: float64(rgb[1]) / 255,
		B: float64(rgb[2]) / 255,
	}, nil
}

// withAlpha converts c to a non-premultiplied color at the given opacity.
func withAlpha(c colorful.Color, alpha float64) color.NRGBA {
	r, g, b := c.Clamped().RGB255()
	if alpha < 0 {
		alpha = 0
	}
	if alpha > 1 {
		alpha = 1
	}
	return color.NRGBA{R: r, G: g, B: b, A: uint8(alpha*255 + 0.5)}
}
