// This small tool plays a MOD file through the Ebitengine audio
// player instead of the bundled oto speaker, with a pause toggle.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/audio"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/benwiggins/modtracker/pkg/mod"
)

const sampleRate = 44100

// pcmReader exposes the player's ring buffer as the 16-bit
// little-endian stereo PCM stream Ebitengine expects, substituting
// silence whenever the buffer runs short.
type pcmReader struct {
	player *mod.Player
	buf    []int16
}

func (r *pcmReader) Read(p []byte) (int, error) {
	samples := len(p) / 2
	if cap(r.buf) < samples {
		r.buf = make([]int16, samples)
	}
	buf := r.buf[:samples]
	n := r.player.Pop(buf)
	for i := n; i < samples; i++ {
		buf[i] = 0
	}
	for i, v := range buf {
		p[i*2] = byte(v)
		p[i*2+1] = byte(v >> 8)
	}
	return samples * 2, nil
}

func main() {
	flag.Usage = func() {
		fmt.Println("usage: go run ./cmd/ebitengine-example path/to/music.mod")
		flag.PrintDefaults()
	}
	flag.Parse()
	if len(flag.Args()) < 1 {
		panic("expected at least 1 command-line argument")
	}
	filename := flag.Args()[0]

	data, err := os.ReadFile(filename)
	if err != nil {
		panic(fmt.Errorf("read MOD file: %v", err))
	}
	song, err := mod.LoadSong(data)
	if err != nil {
		panic(fmt.Errorf("parsing MOD file: %v", err))
	}
	modPlayer, err := mod.NewPlayer(song, mod.Config{SampleRate: sampleRate})
	if err != nil {
		panic(err)
	}
	if err := modPlayer.Start(); err != nil {
		panic(err)
	}

	audioContext := audio.NewContext(sampleRate)
	player, err := audioContext.NewPlayer(&pcmReader{player: modPlayer})
	if err != nil {
		panic(err)
	}
	player.Play()

	g := &game{
		player:   player,
		song:     song,
		filename: filename,
	}
	if err := ebiten.RunGame(g); err != nil {
		panic(err)
	}
}

type game struct {
	player   *audio.Player
	song     *mod.Song
	filename string
	paused   bool
}

func (g *game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		g.paused = !g.paused
		if g.player.IsPlaying() {
			g.player.Pause()
		} else {
			g.player.Play()
		}
	}
	return nil
}

func (g *game) Draw(screen *ebiten.Image) {
	if g.paused {
		ebitenutil.DebugPrint(screen, "Paused... press SPACE")
	} else {
		ebitenutil.DebugPrint(screen, fmt.Sprintf("Playing %q from %s", g.song.Title, g.filename))
	}
}

func (g *game) Layout(_, _ int) (int, int) {
	return 640, 480
}
