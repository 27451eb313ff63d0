package config

import (
	"os"

	"github.com/pkg/errors"
	"github.com/tidwall/gjson"

	"github.com/iburimskiy/particlefield/internal/particles"
)

const (
	WindowWidth  = 1280
	WindowHeight = 720

	// Surface ids
	BackgroundSurface = "particles-bg"
	ForegroundSurface = "particles-fg"

	// Audio control button, anchored to the bottom-right corner
	ButtonSize   = 44
	ButtonMargin = 20

	AudioRingSize = 4096
)

// Layer holds the presets for one particle layer, per device class.
type Layer struct {
	Desktop     particles.Options
	Constrained particles.Options
}

// Background is the primary page background.
var Background = Layer{
	Desktop: particles.Options{
		ParticleCount:   100,
		ParticleColor:   "212,175,55",
		ConnectDistance: 150,
	},
	Constrained: particles.Options{
		ParticleCount: 30,
		ParticleColor: "212,175,55",
	},
}

// Foreground is the sparser decorative layer drawn over the background.
var Foreground = Layer{
	Desktop: particles.Options{
		ParticleCount: 40,
		ParticleColor: "255,69,0",
		ParticleSize:  2,
		Speed:         0.8,
	},
	Constrained: particles.Options{
		ParticleCount: 15,
		ParticleColor: "255,69,0",
		ParticleSize:  1.5,
		Speed:         0.5,
	},
}

// Options picks the preset for the device class and applies overrides on
// top.
func (l Layer) Options(constrained bool, overrides particles.Options) particles.Options {
	o := l.Desktop
	if constrained {
		o = l.Constrained
	}
	o.Constrained = constrained
	return o.With(overrides)
}

type Audio struct {
	Path     string
	Autoplay bool
}

// File is the content of the optional JSON config file.
type File struct {
	Background particles.Options
	Foreground particles.Options
	Audio      Audio
}

// Default returns the config used when no file is given.
func Default() File {
	return File{Audio: Audio{Autoplay: true}}
}

// Load reads a JSON config file. Keys that are absent keep their defaults.
func Load(path string) (File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Default(), errors.Wrap(err, "read config")
	}
	return Parse(data)
}

// Parse decodes a JSON config document.
func Parse(data []byte) (File, error) {
	f := Default()
	if !gjson.ValidBytes(data) {
		return f, errors.New("config: invalid JSON")
	}
	doc := gjson.ParseBytes(data)

	f.Background = parseOptions(doc.Get("background"))
	f.Foreground = parseOptions(doc.Get("foreground"))

	if v := doc.Get("audio.path"); v.Exists() {
		f.Audio.Path = v.String()
	}
	if v := doc.Get("audio.autoplay"); v.Exists() {
		f.Audio.Autoplay = v.Bool()
	}
	return f, nil
}

func parseOptions(r gjson.Result) particles.Options {
	var o particles.Options
	if !r.IsObject() {
		return o
	}
	if v := r.Get("particleCount"); v.Exists() {
		o.ParticleCount = int(v.Int())
	}
	if v := r.Get("particleColor"); v.Exists() {
		o.ParticleColor = v.String()
	}
	if v := r.Get("particleSize"); v.Exists() {
		o.ParticleSize = v.Float()
	}
	if v := r.Get("speed"); v.Exists() {
		o.Speed = v.Float()
	}
	if v := r.Get("connectDistance"); v.Exists() {
		o.ConnectDistance = v.Float()
	}
	if v := r.Get("mouseDistance"); v.Exists() {
		o.MouseDistance = v.Float()
	}
	return o
}
