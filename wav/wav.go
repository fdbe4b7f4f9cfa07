// Package wav is a very small incremental WAVE file writer: it patches
// the RIFF/data chunk sizes in Finish once the total sample count is
// known, rather than requiring the caller to buffer the whole render
// up front. See http://soundfile.sapp.org/doc/WaveFormat/ for format
// documentation.
package wav

import (
	"encoding/binary"
	"io"
)

const pcmFormat = 1

// Writer incrementally writes a 16-bit stereo WAVE file.
type Writer struct {
	ws io.WriteSeeker
}

type waveFormat struct {
	AudioFormat   uint16
	Channels      uint16
	SampleRate    uint32
	ByteRate      uint32
	BlockAlign    uint16
	BitsPerSample uint16
}

// NewWriter writes the RIFF/WAVE/fmt headers (with placeholder sizes)
// and returns a Writer ready to accept frames.
func NewWriter(ws io.WriteSeeker, sampleRate int) (*Writer, error) {
	w := &Writer{ws: ws}

	if _, err := ws.Write([]byte("RIFF")); err != nil {
		return nil, err
	}
	if err := binary.Write(ws, binary.LittleEndian, int32(0)); err != nil {
		return nil, err
	}
	if _, err := ws.Write([]byte("WAVE")); err != nil {
		return nil, err
	}

	if _, err := ws.Write([]byte("fmt ")); err != nil {
		return nil, err
	}
	if err := binary.Write(ws, binary.LittleEndian, int32(16)); err != nil {
		return nil, err
	}
	format := waveFormat{AudioFormat: pcmFormat, Channels: 2, SampleRate: uint32(sampleRate), BitsPerSample: 16}
	format.ByteRate = format.SampleRate * 2 * (16 / 8)
	format.BlockAlign = 2 * (16 / 8)
	if err := binary.Write(ws, binary.LittleEndian, format); err != nil {
		return nil, err
	}

	if _, err := ws.Write([]byte("data")); err != nil {
		return nil, err
	}
	if err := binary.Write(ws, binary.LittleEndian, int32(0)); err != nil {
		return nil, err
	}

	return w, nil
}

// Write implements ptplayer.Sink: frames is interleaved L,R int16
// pairs, written little-endian per the WAVE format's own requirement
// (independent of the byte order spec names for the real-time audio
// sink contract).
func (w *Writer) Write(frames []int16) (int, error) {
	if err := binary.Write(w.ws, binary.LittleEndian, frames); err != nil {
		return 0, err
	}
	return len(frames), nil
}

// Finish patches the RIFF and data chunk sizes now that the total
// length is known, and must be called exactly once after the last Write.
func (w *Writer) Finish() (int64, error) {
	wlen, err := w.ws.Seek(0, io.SeekCurrent)
	if err != nil {
		return 0, err
	}

	if _, err := w.ws.Seek(4, io.SeekStart); err != nil {
		return 0, err
	}
	if err := binary.Write(w.ws, binary.LittleEndian, int32(wlen-8)); err != nil {
		return 0, err
	}

	if _, err := w.ws.Seek(40, io.SeekStart); err != nil {
		return 0, err
	}
	if err := binary.Write(w.ws, binary.LittleEndian, int32(wlen-44)); err != nil {
		return 0, err
	}

	return wlen, nil
}
