// Command ptwav renders a ProTracker module to a 16-bit stereo WAV
// file from start to end, with no real-time audio device involved.
package main

import (
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/cj-audio/ptplayer"
	"github.com/cj-audio/ptplayer/internal/demo"
	"github.com/cj-audio/ptplayer/internal/reverb"
	"github.com/cj-audio/ptplayer/wav"
	"github.com/spf13/pflag"
)

// reverbSink decorates a Sink with a Reverber: every Write passes
// through the comb filter before reaching the wrapped Sink.
type reverbSink struct {
	rv   reverb.Reverber
	next ptplayer.Sink
	buf  []int16
}

func newReverbSink(next ptplayer.Sink, preset string) *reverbSink {
	rv, err := reverb.FromFlag(preset, int(ptplayer.OutputSampleRateHz))
	if err != nil {
		log.Fatal(err)
	}
	return &reverbSink{rv: rv, next: next}
}

func (s *reverbSink) Write(frames []int16) (int, error) {
	s.rv.InputSamples(frames)
	if cap(s.buf) < len(frames) {
		s.buf = make([]int16, len(frames))
	}
	out := s.buf[:len(frames)]
	n := s.rv.GetAudio(out)
	if n == 0 {
		return len(frames), nil
	}
	return s.next.Write(out[:n])
}

func main() {
	log.SetFlags(0)
	log.SetPrefix("ptwav: ")

	wavOut := pflag.StringP("out", "o", "", "output WAV file path")
	reverbPreset := pflag.String("reverb", "none", "reverb preset: none, light, medium, silly")
	pflag.Parse()

	if *wavOut == "" {
		log.Fatal("-out is required")
	}

	modF := demo.MOD
	if pflag.NArg() > 0 {
		var err error
		modF, err = os.ReadFile(pflag.Arg(0))
		if err != nil {
			log.Print(err)
			os.Exit(1)
		}
	}

	song, err := ptplayer.DecodeSong(modF)
	if err != nil {
		log.Print(err)
		if errors.Is(err, ptplayer.ErrUnsupportedFormat) {
			os.Exit(2)
		}
		os.Exit(1)
	}

	player := ptplayer.NewPlayer(song)

	wavF, err := os.Create(*wavOut)
	if err != nil {
		log.Fatal(err)
	}
	defer wavF.Close()

	wavW, err := wav.NewWriter(wavF, int(ptplayer.OutputSampleRateHz))
	if err != nil {
		log.Fatal(err)
	}
	defer wavW.Finish()

	var sink ptplayer.Sink = wavW
	if *reverbPreset != "none" {
		sink = newReverbSink(wavW, *reverbPreset)
	}

	audioOut := make([]int16, 2048)
	lastOrder := -1

	for !player.Ended() {
		frames := player.GenerateAudio(audioOut)
		if frames == 0 {
			break
		}
		if _, err := sink.Write(audioOut[:frames*2]); err != nil {
			log.Fatal(err)
		}

		pos := player.Position()
		if pos.Order != lastOrder {
			fmt.Printf("%d/%d\n", pos.Order+1, song.UsedOrders)
			lastOrder = pos.Order
		}
	}
}
