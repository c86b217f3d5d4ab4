package mod

// Amiga PAL clock in Hz. A channel playing at period P outputs sample
// bytes at palClock / (2 * P) Hz.
const palClock = 7093789.2

// periodTable maps note indices to Amiga period values, three octaves
// from C-1 down to B-3. Used for note display and arpeggio lookup, not
// by the mixer.
var periodTable = []int{
	856, 808, 762, 720, 678, 640, 604, 570, 538, 508, 480, 453,
	428, 404, 381, 360, 339, 320, 302, 285, 269, 254, 240, 226,
	214, 202, 190, 180, 170, 160, 151, 143, 135, 127, 120, 113,
}

// fineTuning scales a period per the sample's finetune nibble. Values
// are .12 fixed point; index 8 (scale 4096) is no adjustment, and a
// finetune of -8 lands on the next lower note.
var fineTuning = []int{
	4340, 4308, 4277, 4247, 4216, 4186, 4156, 4126,
	4096, 4067, 4037, 4008, 3979, 3951, 3922, 3894,
}

// sineTable is the ProTracker half-sine used by vibrato and tremolo.
// The second half of the waveform is the same magnitude negated:
// phase >= 32 reads sineTable[phase&31] with the sign flipped.
var sineTable = []int{
	0, 24, 49, 74, 97, 120, 141, 161, 180, 197, 212, 224, 235, 244, 250, 253,
	255, 253, 250, 244, 235, 224, 212, 197, 180, 161, 141, 120, 97, 74, 49, 24,
}

var noteNames = []string{
	"C-", "C#", "D-", "D#", "E-", "F-", "F#", "G-", "G#", "A-", "A#", "B-",
}

// fineTunePeriod applies the sample finetune to a raw pattern period.
func fineTunePeriod(period, fineTune int) int {
	return (period * fineTuning[fineTune&0xF]) >> 12
}

// periodIndex finds the note index closest to the given period, or -1
// when the period is outside the table.
func periodIndex(period int) int {
	for i, p := range periodTable {
		if period >= p {
			return i
		}
	}
	return -1
}

// noteName renders a period for display, e.g. "A-2". Non-standard
// periods come back as "???".
func noteName(period int) string {
	if period == 0 {
		return "---"
	}
	idx := periodIndex(period)
	if idx < 0 || periodTable[idx] != period {
		return "???"
	}
	octave := idx/12 + 1
	return noteNames[idx%12] + string(rune('0'+octave))
}

// clampPeriod keeps slides inside the three-octave ProTracker range.
func clampPeriod(period int) int {
	if period > 856 {
		return 856
	}
	if period < 113 {
		return 113
	}
	return period
}
