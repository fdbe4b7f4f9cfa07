package ptplayer

// These are the scalar (non-SIMD) clip routines the scheduler's
// per-sample loop calls into. Kept as their own small file in the
// teacher's tradition of isolating the inner mixing arithmetic from
// the higher-level sequencing logic (mixer.go / mixer_scalar.go /
// mixer_arm64.go in the teacher repo); there is no NEON/SIMD variant
// here because nothing in this spec calls for one.

const (
	pcm16Min = -32768
	pcm16Max = 32767
)

// accumulateStereo adds a channel's contribution into the running
// floating-point stereo accumulators.
func accumulateStereo(accL, accR, l, r float64) (float64, float64) {
	return accL + l, accR + r
}

// clipToInt16 converts a floating-point sample in roughly [-1, 1] to a
// clipped, rounded 16-bit signed integer.
func clipToInt16(sample float64) int16 {
	v := int(sample*32767 + sign(sample)*0.5) // round half away from zero
	if v < pcm16Min {
		v = pcm16Min
	}
	if v > pcm16Max {
		v = pcm16Max
	}
	return int16(v)
}

func sign(f float64) float64 {
	if f < 0 {
		return -1
	}
	return 1
}
