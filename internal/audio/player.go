// Package audio plays the looping background track and keeps the state of
// its mute/unmute control.
package audio

import (
	"io"
	"log"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/effects"
	"github.com/faiface/beep/flac"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/speaker"
	"github.com/faiface/beep/wav"
	"github.com/pkg/errors"
)

var ErrNoTrack = errors.New("no track loaded")

// Output is the sound device the player feeds.
type Output interface {
	Init(rate beep.SampleRate, bufferSize int) error
	Play(s ...beep.Streamer)
	Clear()
	Lock()
	Unlock()
}

type speakerOutput struct{}

func (speakerOutput) Init(rate beep.SampleRate, bufferSize int) error {
	return speaker.Init(rate, bufferSize)
}
func (speakerOutput) Play(s ...beep.Streamer) { speaker.Play(s...) }
func (speakerOutput) Clear()                  { speaker.Clear() }
func (speakerOutput) Lock()                   { speaker.Lock() }
func (speakerOutput) Unlock()                 { speaker.Unlock() }

// Speaker returns the system speaker.
func Speaker() Output { return speakerOutput{} }

// Icon is the glyph shown on the audio control.
type Icon int

const (
	IconMuted Icon = iota
	IconVolumeUp
)

func (i Icon) String() string {
	if i == IconVolumeUp {
		return "volume-up"
	}
	return "volume-mute"
}

const (
	levelWindow    = 1024
	levelSmoothing = 0.6
)

// Player loops one track at a time. Methods other than the tap's Stream are
// called from the UI goroutine.
type Player struct {
	out      Output
	initDone bool
	format   beep.Format

	streamer beep.StreamSeekCloser
	file     io.Closer
	ctrl     *beep.Ctrl
	volume   *effects.Volume
	tap      *levelTap
	ringSize int

	playing     bool
	muted       bool
	unavailable bool
	level       float64
	lastErr     error
}

// NewPlayer returns a player feeding out. ringSize is the number of samples
// kept for the level meter; values below 1 are raised to 1.
func NewPlayer(out Output, ringSize int) *Player {
	return &Player{out: out, ringSize: max(ringSize, 1)}
}

// Load opens and decodes a wav, mp3 or flac file and attaches it paused.
// On failure the control is marked unavailable.
func (p *Player) Load(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return p.fail(errors.Wrap(err, "open track"))
	}

	var (
		streamer beep.StreamSeekCloser
		format   beep.Format
	)
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".wav":
		streamer, format, err = wav.Decode(f)
	case ".mp3":
		streamer, format, err = mp3.Decode(f)
	case ".flac":
		streamer, format, err = flac.Decode(f)
	default:
		_ = f.Close()
		return p.fail(errors.Errorf("unsupported file type: %s", ext))
	}
	if err != nil {
		_ = f.Close()
		return p.fail(errors.Wrapf(err, "decode %s", filepath.Base(path)))
	}

	log.Printf("audio: loaded %s", path)
	return p.Attach(streamer, format, f)
}

// Attach replaces the current track with s, looping forever. file, if not
// nil, is closed along with s.
func (p *Player) Attach(s beep.StreamSeekCloser, format beep.Format, file io.Closer) error {
	bufferSize := format.SampleRate.N(time.Second / 20)
	switch {
	case !p.initDone:
		if err := p.out.Init(format.SampleRate, bufferSize); err != nil {
			closeAll(s, file)
			return p.fail(errors.Wrap(err, "init speaker"))
		}
		p.initDone = true
	case p.format.SampleRate != format.SampleRate:
		p.out.Lock()
		p.out.Clear()
		p.out.Unlock()
		if err := p.out.Init(format.SampleRate, bufferSize); err != nil {
			closeAll(s, file)
			return p.fail(errors.Wrap(err, "init speaker"))
		}
	default:
		p.out.Lock()
		p.out.Clear()
		p.out.Unlock()
	}
	p.release()

	tap := newLevelTap(beep.Loop(-1, s), p.ringSize)
	volume := &effects.Volume{Streamer: tap, Base: 2, Silent: p.muted}
	ctrl := &beep.Ctrl{Streamer: volume, Paused: true}

	p.streamer = s
	p.file = file
	p.format = format
	p.tap = tap
	p.volume = volume
	p.ctrl = ctrl
	p.playing = false
	p.unavailable = false
	p.lastErr = nil

	p.out.Play(ctrl)
	return nil
}

// Play resumes playback.
func (p *Player) Play() error {
	if p.ctrl == nil {
		p.playing = false
		return ErrNoTrack
	}
	p.out.Lock()
	p.ctrl.Paused = false
	p.out.Unlock()
	p.playing = true
	return nil
}

// Pause stops playback without touching the mute state.
func (p *Player) Pause() {
	if p.ctrl == nil {
		return
	}
	p.out.Lock()
	p.ctrl.Paused = true
	p.out.Unlock()
	p.playing = false
}

// Toggle starts playback when paused and flips mute while playing.
func (p *Player) Toggle() {
	if !p.playing {
		if err := p.Play(); err != nil {
			log.Printf("audio: playback failed: %v", err)
			p.lastErr = err
		}
		return
	}
	p.muted = !p.muted
	p.out.Lock()
	p.volume.Silent = p.muted
	p.out.Unlock()
}

// Update refreshes the smoothed level from the tap. Call once per tick.
func (p *Player) Update() {
	if p.tap == nil || !p.playing || p.muted {
		p.level *= levelSmoothing
		return
	}
	mag := math.Pow(p.tap.rms(levelWindow), 0.3)
	p.level = levelSmoothing*p.level + (1-levelSmoothing)*mag
}

func (p *Player) Icon() Icon {
	if p.playing && !p.muted {
		return IconVolumeUp
	}
	return IconMuted
}

func (p *Player) Playing() bool     { return p.playing }
func (p *Player) Muted() bool       { return p.muted }
func (p *Player) Unavailable() bool { return p.unavailable }
func (p *Player) Level() float64    { return p.level }
func (p *Player) Err() error        { return p.lastErr }

// Close stops playback and releases the current track.
func (p *Player) Close() {
	if p.initDone {
		p.out.Lock()
		p.out.Clear()
		p.out.Unlock()
	}
	p.release()
	p.ctrl = nil
	p.volume = nil
	p.tap = nil
	p.playing = false
}

func (p *Player) release() {
	closeAll(p.streamer, p.file)
	p.streamer = nil
	p.file = nil
}

func (p *Player) fail(err error) error {
	log.Printf("audio: %v", err)
	p.unavailable = true
	p.lastErr = err
	return err
}

func closeAll(s beep.StreamSeekCloser, file io.Closer) {
	if s != nil {
		_ = s.Close()
	}
	if file != nil {
		_ = file.Close()
	}
}
