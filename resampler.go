package ptplayer

import "math"

const (
	// palClockHz is the Amiga PAL color-subcarrier-derived clock used to
	// derive sample playback rates from MOD periods.
	palClockHz = 7093789.2

	// OutputSampleRateHz is the fixed output rate the engine renders at;
	// every Sink receives frames at this rate.
	OutputSampleRateHz = 44100.0
	outputSampleRateHz = OutputSampleRateHz

	// waveformLoopHeaderBytes is the two bytes at the start of every
	// instrument's waveform that ProTracker reserves for loop metadata
	// and never plays.
	waveformLoopHeaderBytes = 2.0
)

// resampler reads a bound instrument's 8-bit waveform at a fractional
// position, advancing by a per-sample step derived from the channel's
// effective period, and linearly interpolates between adjacent
// samples. See spec §4.2.
type resampler struct {
	instrument *Instrument
	pos        float64
	step       float64
	exhausted  bool
}

// bind attaches a new instrument and clears the exhausted flag. It
// leaves the read position unchanged; resetToWaveformStart moves it to
// the start of playable waveform data.
func (rs *resampler) bind(in *Instrument) {
	rs.instrument = in
	rs.exhausted = false
}

// setPosition writes pos directly, e.g. for the Instrument-Offset effect.
func (rs *resampler) setPosition(pos float64) {
	rs.pos = pos
}

// recalculateStep updates step from an effective (post-finetune,
// post-effect) period. Calling it twice with the same period leaves
// step unchanged.
func (rs *resampler) recalculateStep(period float64) {
	if period <= 0 {
		rs.step = 0
		return
	}
	rs.step = (palClockHz / (period * 2)) / outputSampleRateHz
}

// waveformAt returns the normalized float sample at integer waveform
// index i, or 0 if i is out of range.
func waveformAt(in *Instrument, i int) float64 {
	if i < 0 || i >= len(in.Data) {
		return 0
	}
	return float64(in.Data[i]) / 128.0
}

// nextSample returns one interpolated waveform value in approximately
// [-1, 1] and advances pos by step. Once a non-looped instrument's
// waveform is exhausted, it returns 0 until rebound via bind.
func (rs *resampler) nextSample() float64 {
	if rs.exhausted || rs.instrument == nil || len(rs.instrument.Data) == 0 {
		return 0
	}

	in := rs.instrument
	length := len(in.Data)

	i := int(math.Floor(rs.pos))
	s0 := waveformAt(in, i)

	var s1 float64
	if i+1 < length {
		s1 = waveformAt(in, i+1)
	} else if in.Looped() {
		s1 = waveformAt(in, in.RepeatStartWords*2)
	} else {
		s1 = 0
	}

	out := s0
	if rs.step > 0 {
		stepsPassed := math.Floor((rs.pos - float64(i)) / rs.step)
		stepsRemaining := math.Floor((float64(i+1) - rs.pos) / rs.step)
		run := stepsRemaining + stepsPassed + 1
		if run > 0 {
			out = s0 + (s1-s0)*stepsPassed/run
		}
	}

	rs.pos += rs.step
	if rs.pos >= float64(length) {
		if in.Looped() {
			loopStart := float64(in.RepeatStartWords * 2)
			frac := rs.pos - math.Floor(rs.pos)
			rs.pos = loopStart + frac
		} else {
			rs.exhausted = true
		}
	}

	return out
}

// resetToWaveformStart positions the resampler at the first playable
// sample (index 2: the two preceding bytes are loop header metadata).
func (rs *resampler) resetToWaveformStart() {
	rs.pos = waveformLoopHeaderBytes
	rs.exhausted = false
}
