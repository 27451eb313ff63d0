package audio

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/faiface/beep"
)

type fakeOutput struct {
	inits   []beep.SampleRate
	initErr error
	played  []beep.Streamer
	clears  int
}

func (o *fakeOutput) Init(rate beep.SampleRate, _ int) error {
	o.inits = append(o.inits, rate)
	return o.initErr
}
func (o *fakeOutput) Play(s ...beep.Streamer) { o.played = append(o.played, s...) }
func (o *fakeOutput) Clear()                  { o.clears++ }
func (o *fakeOutput) Lock()                   {}
func (o *fakeOutput) Unlock()                 {}

type closeCounter struct {
	beep.StreamSeeker
	closed int
}

func (c *closeCounter) Close() error {
	c.closed++
	return nil
}

func testTrack(rate beep.SampleRate, samples int) (*closeCounter, beep.Format) {
	format := beep.Format{SampleRate: rate, NumChannels: 2, Precision: 2}
	buf := beep.NewBuffer(format)
	buf.Append(beep.Take(samples, beep.StreamerFunc(func(s [][2]float64) (int, bool) {
		for i := range s {
			s[i] = [2]float64{0.5, 0.5}
		}
		return len(s), true
	})))
	return &closeCounter{StreamSeeker: buf.Streamer(0, buf.Len())}, format
}

func TestToggleStateMachine(t *testing.T) {
	out := &fakeOutput{}
	p := NewPlayer(out, 256)
	track, format := testTrack(44100, 512)

	if err := p.Attach(track, format, nil); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if p.Icon() != IconMuted {
		t.Errorf("Expected muted icon before playback, got %v", p.Icon())
	}
	if len(out.played) != 1 {
		t.Fatalf("Expected the track queued on the output, got %d", len(out.played))
	}

	p.Toggle()
	if !p.Playing() || p.Muted() || p.Icon() != IconVolumeUp {
		t.Errorf("Expected playing unmuted, got playing=%v muted=%v", p.Playing(), p.Muted())
	}

	p.Toggle()
	if !p.Playing() || !p.Muted() || p.Icon() != IconMuted {
		t.Errorf("Expected playing muted, got playing=%v muted=%v", p.Playing(), p.Muted())
	}

	p.Toggle()
	if p.Muted() || p.Icon() != IconVolumeUp {
		t.Error("Expected unmuted after third toggle")
	}

	p.Pause()
	if p.Playing() || p.Icon() != IconMuted {
		t.Error("Expected paused player to show the muted icon")
	}
}

func TestToggleWithoutTrack(t *testing.T) {
	p := NewPlayer(&fakeOutput{}, 256)

	p.Toggle()

	if p.Playing() {
		t.Error("Expected no playback without a track")
	}
	if !errors.Is(p.Err(), ErrNoTrack) {
		t.Errorf("Expected ErrNoTrack, got %v", p.Err())
	}
	if p.Icon() != IconMuted {
		t.Errorf("Expected muted icon, got %v", p.Icon())
	}
}

func TestAttachInitFailure(t *testing.T) {
	out := &fakeOutput{initErr: errors.New("no device")}
	p := NewPlayer(out, 256)
	track, format := testTrack(44100, 64)

	if err := p.Attach(track, format, nil); err == nil {
		t.Fatal("Expected init error")
	}
	if !p.Unavailable() {
		t.Error("Expected control marked unavailable")
	}
	if track.closed != 1 {
		t.Errorf("Expected track closed once, got %d", track.closed)
	}
	if err := p.Play(); !errors.Is(err, ErrNoTrack) {
		t.Errorf("Expected ErrNoTrack, got %v", err)
	}
}

func TestAttachReinitOnRateChange(t *testing.T) {
	out := &fakeOutput{}
	p := NewPlayer(out, 256)

	first, f1 := testTrack(44100, 64)
	second, f2 := testTrack(44100, 64)
	third, f3 := testTrack(48000, 64)

	for _, tr := range []struct {
		s *closeCounter
		f beep.Format
	}{{first, f1}, {second, f2}, {third, f3}} {
		if err := p.Attach(tr.s, tr.f, nil); err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
	}

	if len(out.inits) != 2 || out.inits[0] != 44100 || out.inits[1] != 48000 {
		t.Errorf("Expected inits at 44100 then 48000, got %v", out.inits)
	}
	if first.closed != 1 || second.closed != 1 || third.closed != 0 {
		t.Errorf("Expected replaced tracks closed, got %d %d %d", first.closed, second.closed, third.closed)
	}

	p.Close()
	if third.closed != 1 {
		t.Errorf("Expected current track closed on Close, got %d", third.closed)
	}
}

func TestLoadUnsupported(t *testing.T) {
	path := filepath.Join(t.TempDir(), "drums.ogg")
	if err := os.WriteFile(path, []byte("OggS"), 0o644); err != nil {
		t.Fatal(err)
	}
	p := NewPlayer(&fakeOutput{}, 256)

	if err := p.Load(path); err == nil {
		t.Fatal("Expected error for unsupported extension")
	}
	if !p.Unavailable() {
		t.Error("Expected control marked unavailable")
	}
}

func TestLoadMissing(t *testing.T) {
	p := NewPlayer(&fakeOutput{}, 256)
	if err := p.Load(filepath.Join(t.TempDir(), "missing.mp3")); err == nil {
		t.Fatal("Expected error for a missing file")
	}
	if !p.Unavailable() {
		t.Error("Expected control marked unavailable")
	}
}

func TestLevelFollowsTap(t *testing.T) {
	out := &fakeOutput{}
	p := NewPlayer(out, 2048)
	track, format := testTrack(44100, 4096)
	if err := p.Attach(track, format, nil); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if err := p.Play(); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	samples := make([][2]float64, 1024)
	for i := 0; i < 8; i++ {
		p.tap.Stream(samples)
		p.Update()
	}
	want := math.Pow(0.5, 0.3)
	if got := p.Level(); got < want*0.9 || got > want {
		t.Errorf("Expected level close to %.3f, got %.3f", want, got)
	}

	p.Toggle()
	for i := 0; i < 30; i++ {
		p.Update()
	}
	if p.Level() > 0.01 {
		t.Errorf("Expected level to decay while muted, got %.3f", p.Level())
	}
}

func TestLevelTapRMS(t *testing.T) {
	src := beep.StreamerFunc(func(s [][2]float64) (int, bool) {
		for i := range s {
			s[i] = [2]float64{1, 0}
		}
		return len(s), true
	})
	tap := newLevelTap(src, 8)

	if tap.rms(4) != 0 {
		t.Error("Expected zero level before any samples")
	}
	tap.Stream(make([][2]float64, 3))
	if got := tap.rms(8); math.Abs(got-0.5) > 1e-12 {
		t.Errorf("Expected rms 0.5 over recorded samples, got %v", got)
	}
	tap.Stream(make([][2]float64, 20))
	if got := tap.rms(100); math.Abs(got-0.5) > 1e-12 {
		t.Errorf("Expected rms 0.5 after wrap, got %v", got)
	}
}

func TestNewPlayerNonPositiveRing(t *testing.T) {
	for _, size := range []int{0, -3} {
		p := NewPlayer(&fakeOutput{}, size)
		track, format := testTrack(44100, 64)
		if err := p.Attach(track, format, nil); err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if err := p.Play(); err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}

		p.tap.Stream(make([][2]float64, 16))
		p.Update()

		if p.Level() <= 0 {
			t.Errorf("Ring size %d: expected a positive level, got %v", size, p.Level())
		}
	}
}
