package mod

// mixer renders blocks of interleaved stereo int16 frames from the
// four channel voices. Sample stepping is nearest-neighbour, matching
// the Amiga's own zero-order hold; contributions are accumulated in
// int32 and saturated to the int16 range on the way out, never
// wrapped.
type mixer struct {
	mode       MixingMode
	sampleRate int
	acc        []int32 // pre-sized accumulator, no allocation per block
}

func newMixer(mode MixingMode, sampleRate, maxSamples int) *mixer {
	return &mixer{
		mode:       mode,
		sampleRate: sampleRate,
		acc:        make([]int32, maxSamples),
	}
}

// render fills out (len must be frames*2, interleaved L/R) from the
// current voice states, advancing each voice cursor by one frame per
// output frame. Idle voices contribute exactly zero.
func (m *mixer) render(voices []*voice, out []int16) {
	acc := m.acc[:len(out)]
	for i := range acc {
		acc[i] = 0
	}
	frames := len(out) / 2

	for _, v := range voices {
		if v.state == VoiceIdle || v.sample == nil {
			continue
		}
		step := v.step(m.sampleRate)
		if step <= 0 {
			continue
		}

		vol := v.currentVolume()
		if vol == 0 || v.muted {
			// Keep the cursor honest so an unmute resumes in place.
			for f := 0; f < frames; f++ {
				if _, ok := v.nextValue(step); !ok {
					break
				}
			}
			continue
		}

		lvol, rvol := m.pan(v.index, vol)
		for f := 0; f < frames; f++ {
			value, ok := v.nextValue(step)
			if !ok {
				break
			}
			acc[f*2] += int32(value) * lvol
			acc[f*2+1] += int32(value) * rvol
		}
	}

	for i, a := range acc {
		if a > 32767 {
			a = 32767
		} else if a < -32768 {
			a = -32768
		}
		out[i] = int16(a)
	}
}

// pan maps a channel volume onto left/right gains per the fixed
// panning policy: Amiga hardware assigns channels 1 and 4 to the left
// speaker and 2 and 3 to the right. The factor of 2 scales a
// full-volume int8 sample to the int16 range.
func (m *mixer) pan(channel, vol int) (lvol, rvol int32) {
	gain := int32(vol) * 2
	left := channel == 0 || channel == 3

	switch m.mode {
	case MonoMixing:
		return gain, gain
	case StereoMixing:
		if left {
			return gain, gain / 3
		}
		return gain / 3, gain
	default: // AmigaMixing
		if left {
			return gain, 0
		}
		return 0, gain
	}
}
