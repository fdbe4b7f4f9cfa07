// Package reverb implements a simple comb-filter reverb as an optional
// post-mix decorator for a ptplayer.Sink. It has no bearing on the core
// synthesis engine: a caller wires it in at the CLI level, between the
// Player and whatever Sink actually emits the audio.
package reverb

import "fmt"

// Reverber is the shape a comb filter (fixed-decay or pass-through)
// presents to its caller: feed it raw mixed samples, read back the
// (possibly delayed) reverberated samples.
type Reverber interface {
	InputSamples(in []int16) int
	GetAudio(out []int16) int
}

// PassThrough is a Reverber that applies no reverb at all, used when the
// caller asked for "none". It still goes through the ring-buffer dance
// so callers don't need a separate code path for the no-reverb case.
type PassThrough struct {
	audio             []int16
	bufSize           int
	readPos, writePos int
	n                 int
}

var _ Reverber = &PassThrough{}

// NewPassThrough creates a PassThrough with the given ring buffer size
// (in sample pairs... really just int16 slots, matching Comb's slots).
func NewPassThrough(bufferSize int) *PassThrough {
	return &PassThrough{
		audio:   make([]int16, bufferSize),
		bufSize: bufferSize,
	}
}

func (r *PassThrough) InputSamples(in []int16) int {
	free := r.bufSize - r.n
	n := len(in)
	if n > free {
		n = free
	}
	if n == 0 {
		return 0
	}

	if r.writePos+n >= r.bufSize {
		n1 := r.bufSize - r.writePos
		n2 := n - n1
		copy(r.audio[r.writePos:r.writePos+n1], in[:n1])
		copy(r.audio[:n2], in[n1:n1+n2])
		r.writePos = n2
	} else {
		copy(r.audio[r.writePos:r.writePos+n], in[:n])
		r.writePos += n
	}
	r.n += n

	return n
}

func (r *PassThrough) GetAudio(out []int16) int {
	n := len(out)
	if n > r.n {
		n = r.n
	}
	if n == 0 {
		return 0
	}

	if r.readPos+n > r.bufSize {
		n1 := r.bufSize - r.readPos
		n2 := n - n1
		copy(out[:n1], r.audio[r.readPos:r.readPos+n1])
		copy(out[n1:n], r.audio[:n2])
		r.readPos = n2
	} else {
		copy(out[:n], r.audio[r.readPos:r.readPos+n])
		r.readPos += n
	}
	r.n -= n

	return n
}

// CombFixed is a comb filter reverb with a fixed decay and delay, fed
// incrementally. It accumulates all audio seen so far and has no upper
// bound on the memory it uses, matching the accumulate-then-decay shape
// of a simple feedback comb.
type CombFixed struct {
	delayOffset int
	decay       float32
	audio       []int16
	readPos     int
	writePos    int
}

var _ Reverber = &CombFixed{}

// NewCombFixed creates a CombFixed with initialSize sample pairs of
// headroom preallocated, the given decay factor, delay in milliseconds,
// and the sample rate the delay is computed against.
func NewCombFixed(initialSize int, decay float32, delayMs, sampleRate int) *CombFixed {
	return &CombFixed{
		delayOffset: (delayMs * sampleRate) / 1000,
		decay:       decay,
		audio:       make([]int16, 0, initialSize*2),
	}
}

func (c *CombFixed) InputSamples(in []int16) int {
	c.audio = append(c.audio, in...)
	if len(c.audio) > c.delayOffset*2 {
		ns := len(c.audio) - (c.delayOffset*2 + c.writePos)
		for i := 0; i < ns; i++ {
			c.audio[i+c.delayOffset*2+c.writePos] += int16(float32(c.audio[i+c.writePos]) * c.decay)
		}
		c.writePos += ns
	}
	rem := c.delayOffset*2 - len(c.audio)
	if rem < 0 {
		rem = 0
	}
	return rem
}

func (c *CombFixed) GetAudio(out []int16) int {
	wanted := len(out)
	have := len(c.audio) - c.readPos
	if wanted > have {
		wanted = have
	}
	if wanted > 0 {
		copy(out, c.audio[c.readPos:c.readPos+wanted])
		c.readPos += wanted
	}
	return wanted
}

// FromFlag builds a Reverber from a CLI preset name, matching the
// presets a command-line flag exposes: "none", "light", "medium", or
// "silly".
func FromFlag(preset string, sampleRate int) (Reverber, error) {
	rf := float32(0.2)
	rd := 150
	switch preset {
	case "medium":
		rf = 0.3
		rd = 250
	case "silly":
		rf = 0.5
		rd = 2500
	case "none":
		rf = 0
	case "light":
	default:
		return nil, fmt.Errorf("unrecognized reverb preset %q", preset)
	}

	if rf == 0 {
		return NewPassThrough(10 * 1024), nil
	}
	return NewCombFixed(10*1024, rf, rd, sampleRate), nil
}
