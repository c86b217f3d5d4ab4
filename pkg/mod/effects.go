package mod

// EffectOp is the closed set of effect commands the engine handles.
// Decoding maps every raw effect nibble onto exactly one of these, so
// an unsupported command is an explicit EffectUnsupported value rather
// than a switch fallthrough somewhere downstream.
type EffectOp uint8

const (
	EffectNone EffectOp = iota

	// Encoding: 0xy. Arg packs two semitone offsets.
	EffectArpeggio

	// Encoding: 1xx / 2xx. Arg: period change per tick.
	EffectPortamentoUp
	EffectPortamentoDown

	// Encoding: 3xx. Arg: slide speed towards the target period.
	EffectTonePortamento

	// Encoding: 4xy. Arg: speed / depth nibbles.
	EffectVibrato

	// Encoding: 5xy / 6xy. Continue portamento/vibrato with a volume slide.
	EffectTonePortaVolSlide
	EffectVibratoVolSlide

	// Encoding: 7xy. Arg: speed / depth nibbles.
	EffectTremolo

	// Encoding: 9xx. Arg: offset in 256-byte pages.
	EffectSampleOffset

	// Encoding: Axy. Arg: slide up nibble or slide down nibble.
	EffectVolumeSlide

	// Encoding: Bxx. Arg: order-list position to jump to.
	EffectPositionJump

	// Encoding: Cxx. Arg: volume 0..64.
	EffectSetVolume

	// Encoding: Dxx. Arg: target row in the next pattern, BCD.
	EffectPatternBreak

	// Encoding: E1x / E2x. Arg: one-shot period change on tick 0.
	EffectFinePortaUp
	EffectFinePortaDown

	// Encoding: E6x. x=0 marks the loop row, x>0 jumps back x times.
	EffectPatternLoop

	// Encoding: E9x. Arg: retrigger interval in ticks.
	EffectRetrigNote

	// Encoding: EAx / EBx. Arg: one-shot volume change on tick 0.
	EffectFineVolSlideUp
	EffectFineVolSlideDown

	// Encoding: ECx. Arg: tick at which the note is silenced.
	EffectNoteCut

	// Encoding: EDx. Arg: tick at which the note actually triggers.
	EffectNoteDelay

	// Encoding: EEx. Arg: number of extra rows the current row lasts.
	EffectRowDelay

	// Encoding: Fxx. Arg < 0x20 sets ticks per row, >= 0x20 sets tempo.
	EffectSetSpeed

	// Anything the engine does not implement: 8xx pan, E0x filter,
	// E3x glissando, E4x/E7x waveforms, E5x finetune, EFx invert loop.
	// Applied as a no-op and counted for diagnostics.
	EffectUnsupported
)

// Effect is a decoded pattern-cell command.
type Effect struct {
	Op  EffectOp
	Arg uint8
}

// decodeEffect converts the raw effect nibble and parameter byte from
// a pattern cell into a closed Effect value.
func decodeEffect(effect, param uint8) Effect {
	e := Effect{Arg: param}

	switch effect {
	case 0x0:
		if param != 0 {
			e.Op = EffectArpeggio
		}
	case 0x1:
		e.Op = EffectPortamentoUp
	case 0x2:
		e.Op = EffectPortamentoDown
	case 0x3:
		e.Op = EffectTonePortamento
	case 0x4:
		e.Op = EffectVibrato
	case 0x5:
		e.Op = EffectTonePortaVolSlide
	case 0x6:
		e.Op = EffectVibratoVolSlide
	case 0x7:
		e.Op = EffectTremolo
	case 0x9:
		e.Op = EffectSampleOffset
	case 0xA:
		e.Op = EffectVolumeSlide
	case 0xB:
		e.Op = EffectPositionJump
	case 0xC:
		e.Op = EffectSetVolume
	case 0xD:
		e.Op = EffectPatternBreak
	case 0xE:
		e.Arg = param & 0x0F
		switch param >> 4 {
		case 0x1:
			e.Op = EffectFinePortaUp
		case 0x2:
			e.Op = EffectFinePortaDown
		case 0x6:
			e.Op = EffectPatternLoop
		case 0x9:
			e.Op = EffectRetrigNote
		case 0xA:
			e.Op = EffectFineVolSlideUp
		case 0xB:
			e.Op = EffectFineVolSlideDown
		case 0xC:
			e.Op = EffectNoteCut
		case 0xD:
			e.Op = EffectNoteDelay
		case 0xE:
			e.Op = EffectRowDelay
		default:
			e.Op = EffectUnsupported
			e.Arg = param
		}
	case 0xF:
		e.Op = EffectSetSpeed
	default:
		e.Op = EffectUnsupported
	}
	return e
}

// isContinuousPorta reports whether the effect keeps the current
// sample position on a new note instead of retriggering it.
func (e Effect) isContinuousPorta() bool {
	return e.Op == EffectTonePortamento || e.Op == EffectTonePortaVolSlide
}

// volumeSlideDelta decodes a shared Axy-style parameter: the upper
// nibble slides up, otherwise the lower nibble slides down.
func volumeSlideDelta(param uint8) int {
	if param>>4 > 0 {
		return int(param >> 4)
	}
	return -int(param & 0x0F)
}
