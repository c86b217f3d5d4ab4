package mod

const (
	defaultSpeed = 6
	defaultTempo = 125
	minTempo     = 32
)

// sequencer walks the order list and pattern rows one tracker tick at
// a time, dispatching row cells to the channel voices and handling the
// song-global effects (speed, tempo, jumps, pattern loop, row delay).
type sequencer struct {
	song       *Song
	sampleRate int
	loopMode   LoopMode

	order int
	row   int
	tick  int

	// Position of the row currently sounding, for display. The
	// order/row fields above already point at the next row once a
	// row has been dispatched.
	curOrder int
	curRow   int

	speed          int // ticks per row
	tempo          int
	samplesPerTick int

	delayRows int // EEx: rows the current row repeats for
	loopRow   int // E60 marker row within the current pattern
	loopCount int

	finished    bool
	looped      bool
	unsupported uint64
}

func newSequencer(song *Song, sampleRate int, loopMode LoopMode) *sequencer {
	s := &sequencer{
		song:       song,
		sampleRate: sampleRate,
		loopMode:   loopMode,
		speed:      defaultSpeed,
	}
	s.setTempo(defaultTempo)
	return s
}

// setTempo derives the tick length in output frames: 2.5 * rate / bpm.
func (s *sequencer) setTempo(tempo int) {
	if tempo < minTempo {
		tempo = minTempo
	}
	s.tempo = tempo
	s.samplesPerTick = ((s.sampleRate << 1) + (s.sampleRate >> 1)) / tempo
}

// maxSamplesPerTick bounds the tick length over every legal tempo, so
// the player can pre-size its mix buffer once.
func maxSamplesPerTick(sampleRate int) int {
	return ((sampleRate << 1) + (sampleRate >> 1)) / minTempo
}

// advanceTick runs exactly one tracker tick. Tick 0 of a row reads and
// dispatches the row's cells; later ticks re-apply continuous effects.
// Returns false once the song has completed (PlayOnce mode only).
func (s *sequencer) advanceTick(voices []*voice) bool {
	if s.finished {
		return false
	}

	if s.tick == 0 {
		if s.delayRows > 0 {
			// EEx holds the row: notes are not re-triggered but
			// continuous effects keep running.
			s.delayRows--
			s.tickVoices(voices)
		} else {
			s.playRow(voices)
		}
	} else {
		s.tickVoices(voices)
	}

	s.tick++
	if s.tick >= s.speed {
		s.tick = 0
	}
	return !s.finished
}

func (s *sequencer) tickVoices(voices []*voice) {
	for _, v := range voices {
		v.tick(s.song.Samples)
	}
}

func (s *sequencer) playRow(voices []*voice) {
	pattern := int(s.song.Orders[s.order])
	row := s.song.Patterns[pattern].Rows[s.row]
	s.curOrder, s.curRow = s.order, s.row

	jumpOrder := -1
	breakRow := -1
	loopJumpRow := -1

	for c := range row {
		note := row[c]
		voices[c].applyRow(note, s.song.Samples)

		arg := note.Effect.Arg
		switch note.Effect.Op {
		case EffectPositionJump:
			jumpOrder = int(arg)
		case EffectPatternBreak:
			breakRow = int(arg>>4)*10 + int(arg&0x0F)
			if breakRow > rowsPerPattern-1 {
				breakRow = 0
			}
		case EffectSetSpeed:
			switch {
			case arg == 0:
				// F00 historically means "stop"; ignored here.
			case arg < 0x20:
				s.speed = int(arg)
			default:
				s.setTempo(int(arg))
			}
		case EffectPatternLoop:
			if arg == 0 {
				s.loopRow = s.row
			} else {
				if s.loopCount == 0 {
					s.loopCount = int(arg)
				} else {
					s.loopCount--
				}
				if s.loopCount > 0 {
					loopJumpRow = s.loopRow
				}
			}
		case EffectRowDelay:
			s.delayRows = int(arg)
		case EffectUnsupported:
			s.unsupported++
		}
	}

	// Position jump outranks pattern break when both land on one row;
	// the break then only supplies the row inside the jump target.
	switch {
	case jumpOrder >= 0:
		targetRow := 0
		if breakRow >= 0 {
			targetRow = breakRow
		}
		if jumpOrder <= s.order {
			s.looped = true
		}
		s.setOrder(jumpOrder, targetRow)
	case breakRow >= 0:
		s.setOrder(s.order+1, breakRow)
	case loopJumpRow >= 0:
		s.row = loopJumpRow
	default:
		s.row++
		if s.row >= rowsPerPattern {
			s.setOrder(s.order+1, 0)
		}
	}
}

// setOrder moves to a new order-list entry, honouring the loop policy
// when the position runs off the end of the list.
func (s *sequencer) setOrder(order, row int) {
	if order >= len(s.song.Orders) {
		if s.loopMode == PlayOnce {
			s.finished = true
			return
		}
		order = s.song.RestartPos
		s.looped = true
	}
	if row < 0 || row >= rowsPerPattern {
		row = 0
	}
	s.order = order
	s.row = row
	s.loopRow = 0
	s.loopCount = 0
}
