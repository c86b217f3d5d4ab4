package main

import (
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/benwiggins/modtracker/pkg/mod"
	"github.com/benwiggins/modtracker/pkg/speaker"
)

const sampleRate = 48000

func loadPlayer(path string) (*mod.Player, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	song, err := mod.LoadSong(data)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	return mod.NewPlayer(song, mod.Config{
		SampleRate: sampleRate,
		Mixing:     mod.StereoMixing,
		Loop:       mod.LoopSong,
	})
}

func main() {
	var path string
	if len(os.Args) > 1 {
		path = os.Args[1]
	} else {
		path = browse(".")
	}

	player, err := loadPlayer(path)
	if err != nil {
		log.Fatal(err)
	}

	// 10ms drain chunks: small enough to stay responsive, large
	// enough not to thrash the device.
	spk, err := speaker.New(sampleRate, sampleRate/100*2)
	if err != nil {
		log.Fatal(err)
	}
	spk.Play(player)
	if err := player.Start(); err != nil {
		log.Fatal(err)
	}

	defStyle := tcell.StyleDefault.Background(backgroundColour).Foreground(tcell.ColorReset)

	s, err := tcell.NewScreen()
	if err != nil {
		log.Fatalf("%+v", err)
	}
	if err := s.Init(); err != nil {
		log.Fatalf("%+v", err)
	}
	s.SetStyle(defStyle)
	s.Clear()

	// The draw goroutine and the event loop share the player handle;
	// it changes when a new song is loaded.
	var mu sync.Mutex
	paused := false

	current := func() (*mod.Player, bool) {
		mu.Lock()
		defer mu.Unlock()
		return player, paused
	}

	quit := func() {
		p, _ := current()
		p.Close()
		spk.Close()
		s.Fini()
		os.Exit(0)
	}

	redraw := make(chan struct{}, 1)
	go func() {
		for {
			p, pausedNow := current()
			st := p.State()
			song := p.Song()
			drawSamples(s, song, st)
			drawPattern(s, song, st)
			drawMeters(s, st)
			drawStatusLine(s, song, st, pausedNow)
			s.Show()

			select {
			case <-redraw:
			case <-time.After(time.Second / 60):
			}
		}
	}()

	for {
		switch ev := s.PollEvent().(type) {
		case *tcell.EventResize:
			s.Sync()
		case *tcell.EventKey:
			if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC {
				quit()
			}
			switch ev.Rune() {
			case 'q', 'Q':
				quit()
			case 'm', 'M':
				player.CycleMixing()
			case ' ':
				if paused {
					player.Start()
				} else {
					player.Stop()
				}
				mu.Lock()
				paused = !paused
				mu.Unlock()
			case '1', '2', '3', '4':
				player.ToggleMute(int(ev.Rune() - '1'))
			case 'l', 'L':
				s.Suspend()
				next := browse(".")
				newPlayer, err := loadPlayer(next)
				s.Resume()
				s.Clear()
				if err != nil {
					// Keep the current song playing if the new one is bad.
					continue
				}
				old := player
				mu.Lock()
				player = newPlayer
				paused = false
				mu.Unlock()
				spk.Play(newPlayer)
				newPlayer.Start()
				old.Close()
			}
			select {
			case redraw <- struct{}{}:
			default:
			}
		}
	}
}
