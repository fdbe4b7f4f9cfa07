package ptplayer

import (
	"encoding/binary"
	"io"
)

// Sink is the engine's only external collaborator: a surface that
// accepts interleaved 16-bit stereo PCM frames at 44,100 Hz. The OS
// audio device, a file, or a pipe can all implement it; the engine
// never inspects what's on the other end and a short write is the
// caller's responsibility to retry (see spec §5).
type Sink interface {
	Write(frames []int16) (int, error)
}

// PCMSink writes interleaved frames to an io.Writer as signed 16-bit
// big-endian samples, exactly the byte-order contract spec §6.4 names
// for the audio sink. It is the literal reference implementation of
// that contract; portaudio and the WAV writer are separate, concrete
// Sinks with their own (native / little-endian) byte orders.
type PCMSink struct {
	w   io.Writer
	buf []byte
}

// NewPCMSink wraps w as a big-endian 16-bit PCM Sink.
func NewPCMSink(w io.Writer) *PCMSink {
	return &PCMSink{w: w}
}

// Write encodes frames (interleaved L,R int16 pairs) as big-endian
// bytes and writes them to the underlying io.Writer, retrying on short
// writes.
func (s *PCMSink) Write(frames []int16) (int, error) {
	need := len(frames) * 2
	if cap(s.buf) < need {
		s.buf = make([]byte, need)
	}
	buf := s.buf[:need]
	for i, v := range frames {
		binary.BigEndian.PutUint16(buf[i*2:], uint16(v))
	}

	total := 0
	for total < len(buf) {
		n, err := s.w.Write(buf[total:])
		total += n
		if err != nil {
			return total / 2, err
		}
	}
	return len(frames), nil
}
