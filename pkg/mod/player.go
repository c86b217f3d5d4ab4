// Package mod decodes 4-channel Amiga MOD modules and renders them to
// interleaved 16-bit stereo PCM. The Player runs the decode/mix
// producer ahead of real time into a ring buffer; an external audio
// driver drains the buffer at the hardware clock via Pop.
package mod

import (
	"errors"
	"sync"
	"sync/atomic"

	"github.com/benwiggins/modtracker/pkg/ring"
)

const (
	defaultSampleRate = 44100
	defaultBufferSize = 8192
)

// ErrPlayerClosed is returned by Start after Close.
var ErrPlayerClosed = errors.New("mod: player closed")

// Config carries the player setup parameters. Zero values pick the
// defaults; invalid values fail NewPlayer with a *ConfigurationError.
type Config struct {
	SampleRate int        // output rate in Hz, default 44100
	Mixing     MixingMode // channel-to-speaker policy, default AmigaMixing
	Loop       LoopMode   // behaviour at order-list end, default LoopSong
	BufferSize int        // ring capacity in int16 samples, power of two, default 8192
}

// ChannelStatus is a read-only view of one voice, published once per
// tick for the UI.
type ChannelStatus struct {
	State     VoiceState
	SampleNum int // 1-based, 0 when nothing has played yet
	Volume    int
	Period    int
	Muted     bool
}

// State is a per-tick snapshot of the playback position. It is a value
// copy; holding one never blocks the producer.
type State struct {
	Order   int
	Pattern int
	Row     int
	Speed   int
	Tempo   int

	Channels [4]ChannelStatus

	Mixing MixingMode

	// Peak levels of the last rendered tick, 0..1.
	LeftLevel  float32
	RightLevel float32

	Finished    bool
	Looped      bool
	Unsupported uint64 // effect commands skipped as no-ops so far
}

// Player owns the decode pipeline: sequencer -> voices -> mixer ->
// ring buffer. Exactly one producer goroutine mutates the sequencer
// and voices; the consumer side only ever touches Pop and State.
type Player struct {
	song *Song
	cfg  Config

	buf    *ring.Buffer
	voices []*voice
	seq    *sequencer
	mix    *mixer

	tickBuf []int16 // pre-sized for the longest legal tick
	pending int     // samples rendered but not yet pushed

	running  atomic.Bool
	closed   atomic.Bool
	finished atomic.Bool
	muteMask atomic.Uint32
	mixMode  atomic.Int32
	wg       sync.WaitGroup

	stateMu sync.Mutex
	state   State
}

// NewPlayer validates the configuration and pre-allocates every buffer
// the playback path needs; after this call the steady-state loop does
// not allocate.
func NewPlayer(song *Song, cfg Config) (*Player, error) {
	if song == nil {
		return nil, &ConfigurationError{Reason: "nil song"}
	}
	if len(song.Orders) == 0 || len(song.Patterns) == 0 {
		return nil, &ConfigurationError{Reason: "song has no pattern data"}
	}
	if song.NumChannels != 4 {
		return nil, &ConfigurationError{Reason: "song must have exactly 4 channels"}
	}
	if cfg.SampleRate == 0 {
		cfg.SampleRate = defaultSampleRate
	}
	if cfg.SampleRate < 8000 || cfg.SampleRate > 192000 {
		return nil, &ConfigurationError{Reason: "sample rate out of range"}
	}
	if cfg.BufferSize == 0 {
		cfg.BufferSize = defaultBufferSize
	}

	buf, err := ring.New(cfg.BufferSize)
	if err != nil {
		return nil, &ConfigurationError{Reason: err.Error()}
	}

	maxTick := maxSamplesPerTick(cfg.SampleRate) * 2
	if cfg.BufferSize < maxTick {
		return nil, &ConfigurationError{Reason: "buffer smaller than one tick of audio"}
	}

	p := &Player{
		song:    song,
		cfg:     cfg,
		buf:     buf,
		seq:     newSequencer(song, cfg.SampleRate, cfg.Loop),
		mix:     newMixer(cfg.Mixing, cfg.SampleRate, maxTick),
		tickBuf: make([]int16, maxTick),
	}
	p.voices = make([]*voice, song.NumChannels)
	for i := range p.voices {
		p.voices[i] = &voice{index: i, fineTune: 8}
	}
	p.state.Speed = p.seq.speed
	p.state.Tempo = p.seq.tempo
	p.state.Mixing = cfg.Mixing
	p.mixMode.Store(int32(cfg.Mixing))
	return p, nil
}

// Song returns the loaded song. The returned value is shared and must
// be treated as read-only.
func (p *Player) Song() *Song { return p.song }

// SampleRate returns the configured output rate.
func (p *Player) SampleRate() int { return p.cfg.SampleRate }

// Start begins producing audio into the ring buffer. Starting an
// already-running player is a no-op; starting a closed one fails.
func (p *Player) Start() error {
	if p.closed.Load() {
		return ErrPlayerClosed
	}
	if !p.running.CompareAndSwap(false, true) {
		return nil
	}
	p.wg.Add(1)
	go p.produce()
	return nil
}

// Stop halts production at the next tick boundary and waits for the
// producer to park. The ring buffer keeps its unread samples so the
// consumer can drain them. Stopping a stopped player is a no-op.
func (p *Player) Stop() {
	if p.running.CompareAndSwap(true, false) {
		p.buf.Interrupt()
	}
	p.wg.Wait()
}

// Close stops the player and closes the ring buffer. The player cannot
// be restarted afterwards.
func (p *Player) Close() {
	p.Stop()
	p.closed.Store(true)
	p.buf.Close()
}

// Pop drains up to len(dst) samples for the audio driver and returns
// the number supplied. The driver substitutes silence for the rest; a
// short read never blocks and never stalls the audio clock.
func (p *Player) Pop(dst []int16) int {
	return p.buf.Pop(dst)
}

// Finished reports whether the song ran to completion (PlayOnce mode).
func (p *Player) Finished() bool { return p.finished.Load() }

// Buffered returns the number of unread samples in the ring.
func (p *Player) Buffered() int { return p.buf.Len() }

// BufferStats exposes the ring diagnostics counters.
func (p *Player) BufferStats() ring.Stats { return p.buf.Stats() }

// ToggleMute flips the mute flag of one channel. Takes effect at the
// next tick boundary.
func (p *Player) ToggleMute(channel int) {
	if channel < 0 || channel >= len(p.voices) {
		return
	}
	for {
		old := p.muteMask.Load()
		if p.muteMask.CompareAndSwap(old, old^(1<<uint(channel))) {
			return
		}
	}
}

// CycleMixing steps to the next mixing mode. Takes effect at the next
// tick boundary; the policy otherwise stays fixed for the whole song.
func (p *Player) CycleMixing() {
	for {
		old := p.mixMode.Load()
		if p.mixMode.CompareAndSwap(old, (old+1)%3) {
			return
		}
	}
}

// State returns the latest per-tick snapshot.
func (p *Player) State() State {
	p.stateMu.Lock()
	defer p.stateMu.Unlock()
	return p.state
}

// produce is the producer loop: render one tick, park until the ring
// has room, push, repeat. The stop flag is only observed between
// ticks, never mid-frame.
func (p *Player) produce() {
	defer p.wg.Done()

	for p.running.Load() {
		if p.pending == 0 {
			mask := p.muteMask.Load()
			for i, v := range p.voices {
				v.muted = mask&(1<<uint(i)) != 0
			}
			p.mix.mode = MixingMode(p.mixMode.Load())

			if !p.seq.advanceTick(p.voices) {
				p.finished.Store(true)
				p.running.Store(false)
				p.publishState(nil)
				return
			}
			p.pending = p.seq.samplesPerTick * 2
			p.mix.render(p.voices, p.tickBuf[:p.pending])
			p.publishState(p.tickBuf[:p.pending])
		}

		if !p.buf.WaitWritable(p.pending) {
			// Interrupted (stop request) or closed; re-check the flag.
			continue
		}
		if err := p.buf.Push(p.tickBuf[:p.pending]); err != nil {
			return // closed underneath us
		}
		p.pending = 0
	}
}

func (p *Player) publishState(rendered []int16) {
	var peakL, peakR int32
	for i := 0; i+1 < len(rendered); i += 2 {
		if l := abs32(rendered[i]); l > peakL {
			peakL = l
		}
		if r := abs32(rendered[i+1]); r > peakR {
			peakR = r
		}
	}

	st := State{
		Order:       p.seq.curOrder,
		Pattern:     int(p.song.Orders[p.seq.curOrder]),
		Row:         p.seq.curRow,
		Speed:       p.seq.speed,
		Tempo:       p.seq.tempo,
		Mixing:      p.mix.mode,
		LeftLevel:   float32(peakL) / 32768,
		RightLevel:  float32(peakR) / 32768,
		Finished:    p.finished.Load(),
		Looped:      p.seq.looped,
		Unsupported: p.seq.unsupported,
	}
	for i, v := range p.voices {
		if i >= len(st.Channels) {
			break
		}
		st.Channels[i] = ChannelStatus{
			State:     v.state,
			SampleNum: v.sampleNum,
			Volume:    v.currentVolume(),
			Period:    v.currentPeriod(),
			Muted:     v.muted,
		}
	}

	p.stateMu.Lock()
	p.state = st
	p.stateMu.Unlock()
}

func abs32(v int16) int32 {
	if v < 0 {
		return -int32(v)
	}
	return int32(v)
}
