package mod

// VoiceState describes what a channel voice is doing with its sample
// cursor.
type VoiceState uint8

const (
	// VoiceIdle: no sample playing, the voice contributes silence.
	VoiceIdle VoiceState = iota
	// VoicePlaying: advancing through the sample's first pass.
	VoicePlaying
	// VoiceLooping: wrapped into the sample's loop region.
	VoiceLooping
)

func (s VoiceState) String() string {
	return [...]string{"Idle", "Playing", "Looping"}[s]
}

// voice is the per-channel playback cursor. It is owned by the
// producer loop: the sequencer mutates it once per tick and the mixer
// reads it while rendering. Nothing on the consumer side ever sees it.
type voice struct {
	index int // channel number, fixes the pan position

	state     VoiceState
	sample    *Sample
	sampleNum int // 1-based, for display; 0 when nothing assigned yet
	nextNum   int // sample armed by the last instrument column

	pos      float64 // fractional cursor into sample.Data
	period   int     // sounding period after finetune and slides
	fineTune int
	volume   int

	effect     Effect
	effectTick int // ticks elapsed since the row started

	portaPeriod int // tone portamento target
	portaSpeed  int

	vibratoDepth, vibratoSpeed, vibratoPhase, vibratoAdjust int
	tremoloDepth, tremoloSpeed, tremoloPhase, tremoloAdjust int

	arpPeriods [3]int // periods for the arpeggio tick cycle, 0 = off
	arpPeriod  int    // period override while an arpeggio runs

	pendingPeriod int // note waiting on an EDx delay

	muted bool
}

// applyRow installs a pattern cell at a row boundary (tick 0).
// Sequencer-global effects (jumps, speed, loops) are handled by the
// caller; everything here is channel-local.
func (v *voice) applyRow(note Note, samples []*Sample) {
	v.effect = note.Effect
	v.effectTick = 0
	v.vibratoAdjust = 0
	v.tremoloAdjust = 0
	v.arpPeriod = 0
	v.arpPeriods = [3]int{}
	v.pendingPeriod = 0

	// An instrument column resets volume and finetune even without a
	// period; the sample itself only restarts when a period arrives.
	if n := note.SampleNumber; n > 0 && n <= len(samples) {
		smp := samples[n-1]
		v.volume = smp.Volume
		v.fineTune = smp.FineTune
		v.nextNum = n
	}

	if note.Period > 0 {
		v.portaPeriod = fineTunePeriod(note.Period, v.fineTune)

		switch {
		case note.Effect.isContinuousPorta():
			// Tone portamento slides from the current position, no retrigger.
		case note.Effect.Op == EffectNoteDelay:
			v.pendingPeriod = note.Period
		default:
			v.trigger(note.Period, samples)
		}
	}

	v.applyRowEffect(note)
}

// trigger restarts the armed sample at the given pattern period.
func (v *voice) trigger(period int, samples []*Sample) {
	v.period = fineTunePeriod(period, v.fineTune)
	v.pos = 0
	v.vibratoPhase = 0
	v.tremoloPhase = 0

	if v.nextNum > 0 && v.nextNum <= len(samples) && samples[v.nextNum-1].Length > 0 {
		v.sample = samples[v.nextNum-1]
		v.sampleNum = v.nextNum
		v.state = VoicePlaying
	} else {
		v.sample = nil
		v.state = VoiceIdle
	}
}

// applyRowEffect handles the tick-0 part of a channel-local effect.
func (v *voice) applyRowEffect(note Note) {
	arg := note.Effect.Arg

	switch note.Effect.Op {
	case EffectArpeggio:
		base := v.period
		idx := periodIndex(base)
		if idx >= 0 {
			v.arpPeriods[0] = base
			v.arpPeriods[1] = arpPeriodAt(idx, int(arg>>4), v.fineTune)
			v.arpPeriods[2] = arpPeriodAt(idx, int(arg&0x0F), v.fineTune)
		}
	case EffectTonePortamento:
		if arg > 0 {
			v.portaSpeed = int(arg)
		}
	case EffectVibrato:
		if arg>>4 > 0 {
			v.vibratoSpeed = int(arg >> 4)
		}
		if arg&0x0F > 0 {
			v.vibratoDepth = int(arg & 0x0F)
		}
	case EffectTremolo:
		if arg>>4 > 0 {
			v.tremoloSpeed = int(arg >> 4)
		}
		if arg&0x0F > 0 {
			v.tremoloDepth = int(arg & 0x0F)
		}
	case EffectSampleOffset:
		if v.sample != nil {
			offset := int(arg) << 8
			if offset >= v.sample.Length {
				offset = v.sample.Length
			}
			v.pos = float64(offset)
		}
	case EffectSetVolume:
		v.volume = clampVolume(int(arg))
	case EffectFinePortaUp:
		v.period = clampPeriod(v.period - int(arg))
	case EffectFinePortaDown:
		v.period = clampPeriod(v.period + int(arg))
	case EffectFineVolSlideUp:
		v.volume = clampVolume(v.volume + int(arg))
	case EffectFineVolSlideDown:
		v.volume = clampVolume(v.volume - int(arg))
	case EffectNoteCut:
		if arg == 0 {
			v.volume = 0
		}
	}
}

// tick applies continuous effects. Called once per tracker tick on
// ticks 1..speed-1; this per-tick cadence is what makes slides and
// modulation audible.
func (v *voice) tick(samples []*Sample) {
	v.effectTick++
	arg := v.effect.Arg

	switch v.effect.Op {
	case EffectArpeggio:
		if v.arpPeriods[0] != 0 {
			v.arpPeriod = v.arpPeriods[v.effectTick%3]
		}
	case EffectPortamentoUp:
		v.period = clampPeriod(v.period - int(arg))
	case EffectPortamentoDown:
		v.period = clampPeriod(v.period + int(arg))
	case EffectTonePortamento:
		v.portaToNote()
	case EffectTonePortaVolSlide:
		v.portaToNote()
		v.volume = clampVolume(v.volume + volumeSlideDelta(arg))
	case EffectVibrato:
		v.vibratoTick()
	case EffectVibratoVolSlide:
		v.vibratoTick()
		v.volume = clampVolume(v.volume + volumeSlideDelta(arg))
	case EffectTremolo:
		v.tremoloAdjust = sineValue(v.tremoloPhase) * v.tremoloDepth >> 6
		v.tremoloPhase = (v.tremoloPhase + v.tremoloSpeed) & 63
	case EffectVolumeSlide:
		v.volume = clampVolume(v.volume + volumeSlideDelta(arg))
	case EffectRetrigNote:
		if arg > 0 && v.effectTick%int(arg) == 0 {
			v.pos = 0
			if v.state == VoiceLooping {
				v.state = VoicePlaying
			}
		}
	case EffectNoteCut:
		if v.effectTick == int(arg) {
			v.volume = 0
		}
	case EffectNoteDelay:
		if v.effectTick == int(arg) && v.pendingPeriod > 0 {
			v.trigger(v.pendingPeriod, samples)
			v.pendingPeriod = 0
		}
	}
}

func (v *voice) portaToNote() {
	period := v.period
	if period < v.portaPeriod {
		period += v.portaSpeed
		if period > v.portaPeriod {
			period = v.portaPeriod
		}
	} else if period > v.portaPeriod {
		period -= v.portaSpeed
		if period < v.portaPeriod {
			period = v.portaPeriod
		}
	}
	v.period = period
}

func (v *voice) vibratoTick() {
	v.vibratoAdjust = sineValue(v.vibratoPhase) * v.vibratoDepth >> 7
	v.vibratoPhase = (v.vibratoPhase + v.vibratoSpeed) & 63
}

// currentPeriod is the period the mixer should sound this tick:
// arpeggio override if one is running, plus the vibrato offset.
func (v *voice) currentPeriod() int {
	p := v.period
	if v.arpPeriod != 0 {
		p = v.arpPeriod
	}
	return p + v.vibratoAdjust
}

// currentVolume folds the tremolo offset into the channel volume.
func (v *voice) currentVolume() int {
	return clampVolume(v.volume + v.tremoloAdjust)
}

// step returns the sample-cursor advance per output frame for the
// current period. Zero period means the voice cannot sound.
func (v *voice) step(sampleRate int) float64 {
	p := v.currentPeriod()
	if p <= 0 {
		return 0
	}
	return palClock / (2 * float64(p)) / float64(sampleRate)
}

// advance moves the cursor one output frame and runs the
// Playing -> Looping / Playing -> Idle transitions at the sample end.
func (v *voice) advance(step float64) {
	if v.state == VoiceIdle || v.sample == nil {
		return
	}
	v.pos += step

	limit := float64(v.sample.Length)
	if v.state == VoiceLooping {
		limit = float64(v.sample.LoopStart + v.sample.LoopLen)
	}
	if v.pos < limit {
		return
	}

	if v.sample.LoopLen > 2 {
		overflow := v.pos - limit
		loopLen := float64(v.sample.LoopLen)
		for overflow >= loopLen {
			overflow -= loopLen
		}
		v.pos = float64(v.sample.LoopStart) + overflow
		v.state = VoiceLooping
	} else {
		// No loop: the voice goes quiet exactly at the declared end
		// and never reads past it.
		v.state = VoiceIdle
		v.pos = 0
	}
}

// nextValue returns the sample byte under the cursor and advances the
// cursor one output frame. ok is false once the voice has gone idle.
func (v *voice) nextValue(step float64) (value int8, ok bool) {
	if v.state == VoiceIdle || v.sample == nil {
		return 0, false
	}
	idx := int(v.pos)
	if idx >= len(v.sample.Data) {
		// Cursor parked past the end (sample offset overshoot or a
		// freshly exhausted pass): resolve the transition first.
		v.advance(0)
		if v.state == VoiceIdle {
			return 0, false
		}
		idx = int(v.pos)
		if idx >= len(v.sample.Data) {
			return 0, false
		}
	}
	value = v.sample.Data[idx]
	v.advance(step)
	return value, true
}

func arpPeriodAt(baseIdx, semitones, fineTune int) int {
	idx := baseIdx + semitones
	if idx >= len(periodTable) {
		idx = len(periodTable) - 1
	}
	return fineTunePeriod(periodTable[idx], fineTune)
}

func sineValue(phase int) int {
	val := sineTable[phase&31]
	if phase&63 >= 32 {
		return -val
	}
	return val
}

func clampVolume(vol int) int {
	if vol < 0 {
		return 0
	}
	if vol > 64 {
		return 64
	}
	return vol
}
