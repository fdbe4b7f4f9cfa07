// Command ptdump decodes a ProTracker module and prints its structure:
// title, instrument table, order list, and pattern count.
package main

import (
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/cj-audio/ptplayer"
	"github.com/cj-audio/ptplayer/internal/demo"
)

func main() {
	log.SetFlags(0)
	log.SetPrefix("ptdump: ")

	songF := demo.MOD
	if len(os.Args) > 1 {
		var err error
		songF, err = os.ReadFile(os.Args[1])
		if err != nil {
			log.Print(err)
			os.Exit(1)
		}
	}

	song, err := ptplayer.DecodeSong(songF)
	if err != nil {
		log.Print(err)
		if errors.Is(err, ptplayer.ErrUnsupportedFormat) {
			os.Exit(2)
		}
		os.Exit(1)
	}

	dumpSong(os.Stdout, song)
}

func dumpSong(w *os.File, song *ptplayer.Song) {
	fmt.Fprintf(w, "Title: %q\n", song.Title)
	fmt.Fprintf(w, "Used orders: %d (restart at %d)\n", song.UsedOrders, song.RestartPosition)
	fmt.Fprintf(w, "Patterns: %d\n", len(song.Patterns))

	fmt.Fprintln(w, "\nInstruments:")
	for i, in := range song.Instruments {
		if !in.HasWaveform() {
			continue
		}
		fmt.Fprintf(w, "  %2d %-22q len=%-6d vol=%-3d finetune=%-3d loop=%v\n",
			i+1, in.Name, len(in.Data), in.Volume, in.FineTune, in.Looped())
	}

	fmt.Fprintln(w, "\nOrder list:")
	for i := 0; i < song.UsedOrders; i++ {
		fmt.Fprintf(w, "  %3d -> pattern %d\n", i, song.Orders[i])
	}
}
