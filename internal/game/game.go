// Package game hosts the particle layers in an ebiten window: it owns the
// surfaces, forwards input and resize events, drives the frame queue and
// draws the audio control.
package game

import (
	"errors"
	"fmt"
	"image/color"
	"log"
	"math"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/ncruces/zenity"

	"github.com/iburimskiy/particlefield/internal/audio"
	"github.com/iburimskiy/particlefield/internal/config"
	"github.com/iburimskiy/particlefield/internal/host"
	"github.com/iburimskiy/particlefield/internal/particles"
)

var backgroundColor = color.RGBA{R: 10, G: 10, B: 14, A: 255}

type Options struct {
	Config      config.File
	Constrained bool
	Width       int
	Height      int
	Player      *audio.Player
}

type Game struct {
	page   *host.Page
	bg, fg *imageSurface

	background *particles.Field
	foreground *particles.Field

	cfg         config.File
	constrained bool
	input       *inputTracker
	player      *audio.Player

	width, height    int
	layoutW, layoutH int

	// input edge detection
	prevKey map[ebiten.Key]bool

	buttonHovered bool
	buttonPressed bool

	started time.Time
	lastErr error
}

func New(opts Options) *Game {
	g := &Game{
		page:        host.NewPage(float64(opts.Width), float64(opts.Height)),
		bg:          newImageSurface(opts.Width, opts.Height),
		fg:          newImageSurface(opts.Width, opts.Height),
		cfg:         opts.Config,
		constrained: opts.Constrained,
		input:       newInputTracker(),
		player:      opts.Player,
		width:       opts.Width,
		height:      opts.Height,
		layoutW:     opts.Width,
		layoutH:     opts.Height,
		prevKey:     map[ebiten.Key]bool{},
		started:     time.Now(),
	}
	g.page.AddSurface(config.BackgroundSurface, g.bg)
	g.page.AddSurface(config.ForegroundSurface, g.fg)

	g.background = particles.New(g.page, config.BackgroundSurface,
		config.Background.Options(g.constrained, g.cfg.Background))
	g.foreground = g.newForeground()

	if g.player != nil && g.cfg.Audio.Path != "" {
		if err := g.player.Load(g.cfg.Audio.Path); err != nil {
			g.lastErr = err
		} else if g.cfg.Audio.Autoplay {
			if err := g.player.Play(); err != nil {
				g.lastErr = err
			}
		}
	}
	return g
}

func (g *Game) newForeground() *particles.Field {
	return particles.New(g.page, config.ForegroundSurface,
		config.Foreground.Options(g.constrained, g.cfg.Foreground))
}

// resetForeground disposes the decorative layer and builds a fresh one.
func (g *Game) resetForeground() {
	g.foreground.Dispose()
	g.foreground = g.newForeground()
	log.Printf("game: foreground reset, %d listeners registered", g.page.ListenerCount())
}

func (g *Game) Update() error {
	justPressed := func(k ebiten.Key) bool {
		pressed := ebiten.IsKeyPressed(k)
		jp := pressed && !g.prevKey[k]
		g.prevKey[k] = pressed
		return jp
	}

	if g.layoutW != g.width || g.layoutH != g.height {
		g.width, g.height = g.layoutW, g.layoutH
		g.page.SetViewport(float64(g.width), float64(g.height))
	}

	g.input.poll(g.page, g.width, g.height)

	mouseX, mouseY := ebiten.CursorPosition()
	bx, by := g.buttonOrigin()
	g.buttonHovered = mouseX >= bx && mouseX <= bx+config.ButtonSize &&
		mouseY >= by && mouseY <= by+config.ButtonSize

	if g.buttonHovered && inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		g.buttonPressed = true
	}
	if inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft) {
		if g.buttonPressed && g.buttonHovered {
			g.toggleAudio()
		}
		g.buttonPressed = false
	}

	if justPressed(ebiten.KeyM) {
		g.toggleAudio()
	}
	if justPressed(ebiten.KeyO) {
		if err := g.openTrackDialog(); err != nil {
			g.lastErr = err
		}
	}
	if justPressed(ebiten.KeyR) {
		g.resetForeground()
	}
	if justPressed(ebiten.KeyEscape) || justPressed(ebiten.KeyQ) {
		return ebiten.Termination
	}

	g.page.RunFrames()
	if g.player != nil {
		g.player.Update()
	}
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(backgroundColor)
	screen.DrawImage(g.bg.img, nil)
	screen.DrawImage(g.fg.img, nil)

	g.drawAudioButton(screen)

	status := fmt.Sprintf("%s | %d + %d particles | M: sound  O: open track  R: reset foreground  Esc/Q: quit",
		formatDuration(time.Since(g.started)), g.background.Len(), g.foreground.Len())
	if g.constrained {
		status += " | lite"
	}
	if g.lastErr != nil {
		status += " | Error: " + g.lastErr.Error()
	}
	ebitenutil.DebugPrintAt(screen, status, 12, 12)
}

// Layout follows the window so the page viewport tracks resizes.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	g.layoutW, g.layoutH = outsideWidth, outsideHeight
	return outsideWidth, outsideHeight
}

// Close disposes both layers and stops the audio.
func (g *Game) Close() {
	g.background.Dispose()
	g.foreground.Dispose()
	if g.player != nil {
		g.player.Close()
	}
}

func (g *Game) buttonOrigin() (int, int) {
	return g.width - config.ButtonSize - config.ButtonMargin, g.height - config.ButtonSize - config.ButtonMargin
}

func (g *Game) toggleAudio() {
	if g.player == nil {
		return
	}
	g.player.Toggle()
	if err := g.player.Err(); err != nil {
		g.lastErr = err
	}
}

func (g *Game) drawAudioButton(screen *ebiten.Image) {
	if g.player == nil {
		return
	}
	bx, by := g.buttonOrigin()
	cx := float32(bx) + config.ButtonSize/2
	cy := float32(by) + config.ButtonSize/2

	alpha := 1.0
	if g.player.Unavailable() {
		alpha = 0.5
	}

	value := 0.55
	switch {
	case g.buttonPressed:
		value = 0.35
	case g.buttonHovered:
		value = 0.45
	}
	hue := math.Mod(time.Since(g.started).Seconds()*20, 360)
	vector.DrawFilledCircle(screen, cx, cy, config.ButtonSize/2, hueColor(hue, value, alpha*0.85), true)
	vector.StrokeCircle(screen, cx, cy, config.ButtonSize/2, 2, hueColor(hue, 0.9, alpha), true)

	// speaker body
	ink := color.NRGBA{R: 255, G: 255, B: 255, A: uint8(255 * alpha)}
	vector.DrawFilledRect(screen, cx-11, cy-4, 6, 8, ink, true)
	var cone vector.Path
	cone.MoveTo(cx-5, cy-4)
	cone.LineTo(cx+1, cy-10)
	cone.LineTo(cx+1, cy+10)
	cone.LineTo(cx-5, cy+4)
	cone.Close()
	vs, is := cone.AppendVerticesAndIndicesForFilling(nil, nil)
	for i := range vs {
		// premultiplied white
		vs[i].ColorR = float32(alpha)
		vs[i].ColorG = float32(alpha)
		vs[i].ColorB = float32(alpha)
		vs[i].ColorA = float32(alpha)
	}
	screen.DrawTriangles(vs, is, whiteSubImage, &ebiten.DrawTrianglesOptions{AntiAlias: true})

	if g.player.Icon() == audio.IconMuted {
		vector.StrokeLine(screen, cx+4, cy-5, cx+12, cy+5, 2, ink, true)
		vector.StrokeLine(screen, cx+4, cy+5, cx+12, cy-5, 2, ink, true)
		return
	}

	// level meter
	level := clamp01(g.player.Level())
	for i := 0; i < 3; i++ {
		h := float32(4 + 12*level*float64(i+1)/3)
		x := cx + 4 + float32(i)*3.5
		vector.DrawFilledRect(screen, x, cy-h/2, 2, h, ink, true)
	}
}

var whiteSubImage = func() *ebiten.Image {
	img := ebiten.NewImage(3, 3)
	img.Fill(color.White)
	return img.SubImage(img.Bounds().Inset(1)).(*ebiten.Image)
}()

func (g *Game) openTrackDialog() error {
	if g.player == nil {
		return nil
	}
	filename, err := zenity.SelectFile(
		zenity.Title("Open Soundtrack"),
		zenity.FileFilters{{
			Name:     "Audio",
			Patterns: []string{"*.wav", "*.mp3", "*.flac"},
		}},
	)
	if err != nil {
		if errors.Is(err, zenity.ErrCanceled) {
			return nil
		}
		return err
	}

	if err := g.player.Load(filename); err != nil {
		return err
	}
	g.lastErr = nil
	return g.player.Play()
}
