// Package speaker drains rendered samples to the audio device through
// oto. It is the consumer side of the player's ring buffer: it pulls
// fixed-size chunks at the rate the device accepts them and fills any
// shortfall with silence so the audio clock never stalls.
package speaker

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/hajimehoshi/oto"
)

// Source supplies interleaved stereo int16 samples. Pop must never
// block and may return fewer samples than requested.
type Source interface {
	Pop(dst []int16) int
}

// Speaker owns the oto context and the drain goroutine. All state
// lives on the struct so independent players can coexist in one
// process.
type Speaker struct {
	ctx    *oto.Context
	player *oto.Player

	frames []int16
	buf    []byte

	src         atomic.Pointer[sourceBox]
	substituted atomic.Uint64 // silence samples written on underrun

	done      chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

type sourceBox struct{ src Source }

// New opens the audio device for interleaved 16-bit stereo output.
// chunkSamples is the number of int16 samples drained per iteration;
// smaller chunks lower latency, larger chunks lower wakeup overhead.
func New(sampleRate, chunkSamples int) (*Speaker, error) {
	if chunkSamples <= 0 || chunkSamples%2 != 0 {
		return nil, fmt.Errorf("speaker: chunk of %d samples is not a whole number of stereo frames", chunkSamples)
	}
	ctx, err := oto.NewContext(sampleRate, 2, 2, chunkSamples*2)
	if err != nil {
		return nil, fmt.Errorf("speaker: opening audio device: %w", err)
	}
	s := &Speaker{
		ctx:    ctx,
		player: ctx.NewPlayer(),
		frames: make([]int16, chunkSamples),
		buf:    make([]byte, chunkSamples*2),
		done:   make(chan struct{}),
	}
	s.wg.Add(1)
	go s.pump()
	return s, nil
}

// Play makes src the drained source. It can be called again to swap
// sources, e.g. when a new song is loaded; with no source set the
// speaker outputs silence.
func (s *Speaker) Play(src Source) {
	s.src.Store(&sourceBox{src: src})
}

func (s *Speaker) pump() {
	defer s.wg.Done()
	for {
		select {
		case <-s.done:
			return
		default:
		}

		n := 0
		if box := s.src.Load(); box != nil {
			n = box.src.Pop(s.frames)
		}
		if n < len(s.frames) {
			s.substituted.Add(uint64(len(s.frames) - n))
			for i := n; i < len(s.frames); i++ {
				s.frames[i] = 0
			}
		}

		for i, v := range s.frames {
			s.buf[i*2] = byte(v)
			s.buf[i*2+1] = byte(v >> 8)
		}
		// Write blocks at the device rate; this is the hardware clock
		// that paces the whole pipeline.
		s.player.Write(s.buf)
	}
}

// Substituted returns the cumulative count of silence samples written
// because the source underran.
func (s *Speaker) Substituted() uint64 {
	return s.substituted.Load()
}

// Close stops the drain goroutine and releases the audio device.
// Safe to call more than once.
func (s *Speaker) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
		s.wg.Wait()
		s.player.Close()
		s.ctx.Close()
	})
}
