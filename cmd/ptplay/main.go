// Command ptplay is an interactive real-time ProTracker module player
// with a live colored tracker-style display.
package main

import (
	"errors"
	"flag"
	"log"
	"os"

	"github.com/cj-audio/ptplayer"
	"github.com/cj-audio/ptplayer/internal/demo"
	"github.com/cj-audio/ptplayer/internal/reverb"
	"github.com/gordonklaus/portaudio"
)

var (
	flagStartOrd = flag.Int("start", 0, "starting order in the MOD, clamped to song max")
	flagReverb   = flag.String("reverb", "none", "reverb preset: none, light, medium, silly")
	flagNoUI     = flag.Bool("noui", false, "disable the live tracker UI")
)

func main() {
	log.SetFlags(0)
	log.SetPrefix("ptplay: ")
	flag.Parse()

	modF := demo.MOD
	if len(flag.Args()) > 0 {
		var err error
		modF, err = os.ReadFile(flag.Arg(0))
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
	player.SeekToOrder(*flagStartOrd)

	rv, err := reverb.FromFlag(*flagReverb, int(ptplayer.OutputSampleRateHz))
	if err != nil {
		log.Fatal(err)
	}

	if err := portaudio.Initialize(); err != nil {
		log.Fatal(err)
	}
	defer portaudio.Terminate()

	play(player, rv)
}
