package mod

import "github.com/gopxl/beep/v2"

// PlayerStreamer adapts a Player to beep.Streamer, so the engine can
// sit inside a beep pipeline (effects, volume, speaker) instead of the
// bundled oto drain. It reads from the same ring buffer as Pop and
// substitutes silence on underrun while the song is still producing.
type PlayerStreamer struct {
	p   *Player
	buf []int16
}

var _ beep.Streamer = (*PlayerStreamer)(nil)

// NewStreamer wraps the player. The chunk buffer grows to the largest
// request beep makes and is reused afterwards.
func NewStreamer(p *Player) *PlayerStreamer {
	return &PlayerStreamer{p: p, buf: make([]int16, 1024)}
}

// Stream fills samples from the ring buffer. It reports ok=false only
// once the song has finished and the ring is fully drained.
func (s *PlayerStreamer) Stream(samples [][2]float64) (int, bool) {
	if s.p.Finished() && s.p.Buffered() == 0 {
		return 0, false
	}

	need := len(samples) * 2
	if cap(s.buf) < need {
		s.buf = make([]int16, need)
	}
	buf := s.buf[:need]
	n := s.p.Pop(buf)
	for i := n; i < need; i++ {
		buf[i] = 0
	}

	for i := range samples {
		samples[i][0] = float64(buf[i*2]) / 32768
		samples[i][1] = float64(buf[i*2+1]) / 32768
	}
	return len(samples), true
}

// Err implements beep.Streamer. The ring buffer path has no terminal
// errors; underruns surface as silence and counters instead.
func (s *PlayerStreamer) Err() error { return nil }
