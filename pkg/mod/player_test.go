package mod

import (
	"errors"
	"testing"
	"time"
)

func playableSong() *Song {
	p := blankPattern()
	p.Rows[0][0] = makeNote(1, 428, 0, 0)
	return testSong([]uint8{0}, p)
}

func twoChannelSong() *Song {
	song := testSong([]uint8{0}, blankPattern())
	song.NumChannels = 2
	return song
}

func TestNewPlayerValidation(t *testing.T) {
	song := playableSong()

	cases := []struct {
		name string
		song *Song
		cfg  Config
	}{
		{"nil song", nil, Config{}},
		{"no orders", &Song{NumChannels: 4, Patterns: []Pattern{blankPattern()}}, Config{}},
		{"no patterns", &Song{NumChannels: 4, Orders: []uint8{0}}, Config{}},
		{"wrong channel count", twoChannelSong(), Config{}},
		{"rate too low", song, Config{SampleRate: 4000}},
		{"rate too high", song, Config{SampleRate: 500000}},
		{"buffer not power of two", song, Config{BufferSize: 1000}},
		{"buffer smaller than a tick", song, Config{BufferSize: 1024}},
	}
	for _, c := range cases {
		_, err := NewPlayer(c.song, c.cfg)
		var ce *ConfigurationError
		if !errors.As(err, &ce) {
			t.Errorf("%s: NewPlayer = %v, want *ConfigurationError", c.name, err)
		}
	}

	if _, err := NewPlayer(song, Config{}); err != nil {
		t.Errorf("default config rejected: %v", err)
	}
}

func TestPlayerProducesAudio(t *testing.T) {
	p, err := NewPlayer(playableSong(), Config{Mixing: MonoMixing})
	if err != nil {
		t.Fatal(err)
	}
	defer p.Close()
	if err := p.Start(); err != nil {
		t.Fatal(err)
	}

	dst := make([]int16, 2048)
	heard := false
	deadline := time.Now().Add(5 * time.Second)
	for !heard && time.Now().Before(deadline) {
		n := p.Pop(dst)
		for _, v := range dst[:n] {
			if v != 0 {
				heard = true
				break
			}
		}
		if n == 0 {
			time.Sleep(time.Millisecond)
		}
	}
	if !heard {
		t.Fatal("no audible samples produced")
	}

	st := p.BufferStats()
	if st.Pushed == 0 {
		t.Error("ring never saw a push")
	}
	if st.Popped > st.Pushed {
		t.Errorf("popped %d > pushed %d", st.Popped, st.Pushed)
	}
}

func TestPlayerStopKeepsBufferedAudio(t *testing.T) {
	p, err := NewPlayer(playableSong(), Config{Mixing: MonoMixing})
	if err != nil {
		t.Fatal(err)
	}
	defer p.Close()
	p.Start()

	// Let the producer fill the ring, then stop it.
	deadline := time.Now().Add(5 * time.Second)
	for p.Buffered() == 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	p.Stop()
	p.Stop() // idempotent

	buffered := p.Buffered()
	if buffered == 0 {
		t.Fatal("ring empty after stop")
	}

	// The unread samples stay poppable; nothing new arrives.
	dst := make([]int16, buffered)
	if n := p.Pop(dst); n != buffered {
		t.Errorf("drained %d of %d buffered samples", n, buffered)
	}
	time.Sleep(5 * time.Millisecond)
	if n := p.Pop(dst); n != 0 {
		t.Errorf("stopped player produced %d more samples", n)
	}
}

func TestPlayerStopWithoutConsumer(t *testing.T) {
	p, err := NewPlayer(playableSong(), Config{})
	if err != nil {
		t.Fatal(err)
	}
	defer p.Close()
	p.Start()

	// With nobody popping, the producer fills the ring and parks.
	prev := -1
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		n := p.Buffered()
		if n > 0 && n == prev {
			break
		}
		prev = n
		time.Sleep(5 * time.Millisecond)
	}

	// Stop must wake the parked producer and return, whether the stop
	// request lands before or during the wait.
	done := make(chan struct{})
	go func() {
		p.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Stop hung with the ring full and no consumer")
	}
}

func TestPlayerRestartsAfterStop(t *testing.T) {
	p, err := NewPlayer(playableSong(), Config{})
	if err != nil {
		t.Fatal(err)
	}
	defer p.Close()

	p.Start()
	p.Stop()
	if err := p.Start(); err != nil {
		t.Fatalf("restart failed: %v", err)
	}

	dst := make([]int16, 256)
	deadline := time.Now().Add(5 * time.Second)
	for p.Pop(dst) == 0 {
		if time.Now().After(deadline) {
			t.Fatal("no samples after restart")
		}
		time.Sleep(time.Millisecond)
	}
}

func TestPlayerStartAfterCloseFails(t *testing.T) {
	p, err := NewPlayer(playableSong(), Config{})
	if err != nil {
		t.Fatal(err)
	}
	p.Close()
	if err := p.Start(); err != ErrPlayerClosed {
		t.Errorf("Start after Close = %v, want ErrPlayerClosed", err)
	}
}

func TestPlayerFinishesInPlayOnce(t *testing.T) {
	p, err := NewPlayer(testSong([]uint8{0}, blankPattern()), Config{
		SampleRate: 8000,
		Loop:       PlayOnce,
	})
	if err != nil {
		t.Fatal(err)
	}
	defer p.Close()
	p.Start()

	dst := make([]int16, 4096)
	deadline := time.Now().Add(30 * time.Second)
	for !p.Finished() || p.Buffered() > 0 {
		if time.Now().After(deadline) {
			t.Fatal("song never finished")
		}
		if p.Pop(dst) == 0 {
			time.Sleep(time.Millisecond)
		}
	}

	if !p.State().Finished {
		t.Error("snapshot does not report completion")
	}
	// Finishing parks the producer on its own; Stop stays a no-op.
	p.Stop()
}

func TestPlayerStateSnapshot(t *testing.T) {
	p, err := NewPlayer(playableSong(), Config{Mixing: StereoMixing})
	if err != nil {
		t.Fatal(err)
	}
	defer p.Close()

	st := p.State()
	if st.Speed != 6 || st.Tempo != 125 {
		t.Errorf("initial speed/tempo = %d/%d, want 6/125", st.Speed, st.Tempo)
	}
	if st.Mixing != StereoMixing {
		t.Errorf("initial mixing = %v", st.Mixing)
	}

	p.Start()
	dst := make([]int16, 1024)
	deadline := time.Now().Add(5 * time.Second)
	for p.Pop(dst) == 0 {
		if time.Now().After(deadline) {
			t.Fatal("no samples produced")
		}
		time.Sleep(time.Millisecond)
	}
	p.Stop()

	st = p.State()
	if st.Channels[0].SampleNum != 1 {
		t.Errorf("channel 1 sample = %d, want 1", st.Channels[0].SampleNum)
	}
	if st.Channels[0].State == VoiceIdle {
		t.Error("channel 1 idle after a note trigger")
	}
	if st.LeftLevel <= 0 || st.LeftLevel > 1 {
		t.Errorf("LeftLevel = %v, want within (0, 1]", st.LeftLevel)
	}
}

func TestPlayerToggleMute(t *testing.T) {
	p, err := NewPlayer(playableSong(), Config{Mixing: MonoMixing})
	if err != nil {
		t.Fatal(err)
	}
	defer p.Close()
	p.ToggleMute(0)
	p.ToggleMute(7) // out of range, ignored
	p.Start()

	// The only active channel is muted, so the stream is pure silence.
	dst := make([]int16, 2048)
	total := 0
	deadline := time.Now().Add(5 * time.Second)
	for total < 8192 {
		if time.Now().After(deadline) {
			t.Fatal("not enough samples produced")
		}
		n := p.Pop(dst)
		for _, v := range dst[:n] {
			if v != 0 {
				t.Fatalf("muted channel produced sample %d", v)
			}
		}
		total += n
		if n == 0 {
			time.Sleep(time.Millisecond)
		}
	}

	if !p.State().Channels[0].Muted {
		t.Error("snapshot does not show the mute")
	}
}

func TestPlayerCycleMixing(t *testing.T) {
	p, err := NewPlayer(playableSong(), Config{})
	if err != nil {
		t.Fatal(err)
	}
	defer p.Close()

	p.CycleMixing()
	p.Start()

	dst := make([]int16, 1024)
	deadline := time.Now().Add(5 * time.Second)
	for p.Pop(dst) == 0 {
		if time.Now().After(deadline) {
			t.Fatal("no samples produced")
		}
		time.Sleep(time.Millisecond)
	}
	p.Stop()

	if got := p.State().Mixing; got != StereoMixing {
		t.Errorf("mixing = %v after one cycle from Amiga, want Stereo", got)
	}
}

func TestStreamerDrainsPlayer(t *testing.T) {
	p, err := NewPlayer(testSong([]uint8{0}, blankPattern()), Config{
		SampleRate: 8000,
		Loop:       PlayOnce,
	})
	if err != nil {
		t.Fatal(err)
	}
	defer p.Close()
	p.Start()

	s := NewStreamer(p)
	if s.Err() != nil {
		t.Fatalf("Err = %v", s.Err())
	}

	chunk := make([][2]float64, 512)
	frames := 0
	deadline := time.Now().Add(30 * time.Second)
	for {
		if time.Now().After(deadline) {
			t.Fatal("streamer never reported completion")
		}
		n, ok := s.Stream(chunk)
		if !ok {
			break
		}
		if n != len(chunk) {
			t.Fatalf("short stream: %d of %d frames", n, len(chunk))
		}
		frames += n
	}
	if frames == 0 {
		t.Error("streamer delivered no frames")
	}
}
