package main

import (
	"errors"
	"flag"
	"log"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/iburimskiy/particlefield/internal/audio"
	"github.com/iburimskiy/particlefield/internal/config"
	"github.com/iburimskiy/particlefield/internal/device"
	"github.com/iburimskiy/particlefield/internal/game"
)

func main() {
	configPath := flag.String("config", "", "JSON file with particle and audio overrides")
	audioPath := flag.String("audio", "", "background track (wav, mp3 or flac)")
	width := flag.Int("width", config.WindowWidth, "window width")
	height := flag.Int("height", config.WindowHeight, "window height")
	mobile := flag.Bool("mobile", false, "use the lighter particle settings")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			log.Printf("config: %v, using defaults", err)
		} else {
			cfg = loaded
		}
	}
	if *audioPath != "" {
		cfg.Audio.Path = *audioPath
	}

	constrained := *mobile || device.Constrained(float64(*width), device.UserAgent())

	ebiten.SetWindowSize(*width, *height)
	ebiten.SetWindowTitle("Particle Field - M: sound, O: open track, R: reset foreground, Esc/Q: quit")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	g := game.New(game.Options{
		Config:      cfg,
		Constrained: constrained,
		Width:       *width,
		Height:      *height,
		Player:      audio.NewPlayer(audio.Speaker(), config.AudioRingSize),
	})

	err := ebiten.RunGame(g)
	g.Close()
	if err != nil && !errors.Is(err, ebiten.Termination) {
		log.Fatal(err)
	}
}
