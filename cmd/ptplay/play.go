package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"atomicgo.dev/keyboard"
	"atomicgo.dev/keyboard/keys"
	"github.com/cj-audio/ptplayer"
	"github.com/cj-audio/ptplayer/internal/reverb"
	"github.com/fatih/color"
	"github.com/gordonklaus/portaudio"
)

var (
	white   = color.New(color.FgWhite).SprintfFunc()
	cyan    = color.New(color.FgCyan).SprintfFunc()
	magenta = color.New(color.FgMagenta).SprintfFunc()
	yellow  = color.New(color.FgYellow).SprintfFunc()
	blue    = color.New(color.FgHiBlue).SprintFunc()
	green   = color.New(color.FgGreen).SprintfFunc()
)

const (
	escape     = "\x1b["
	hideCursor = escape + "?25l"
	showCursor = escape + "?25h"
)

const (
	scratchBufferSize = 10 * 1024
	audioBufferSize   = 756 / 2
	patternRowsBefore = 4
	patternRowsAfter  = 4
	uiLineCount       = 15
)

// AudioPlayer wires a Player to a live portaudio stream and renders a
// colored tracker-style view of the currently playing pattern.
type AudioPlayer struct {
	player  *ptplayer.Player
	reverb  reverb.Reverber
	stream  *portaudio.Stream
	scratch []int16

	uiWriter        io.Writer
	selectedChannel int
	soloChannel     int
	lastPos         ptplayer.PlayerPosition
	havePos         bool
	formatter       *noteFormatter

	ctx            context.Context
	cancelFn       context.CancelFunc
	wg             sync.WaitGroup
	stopOnce       sync.Once
	terminated     bool
	keyboardDoneCh chan struct{}
}

type noteFormatter struct{}

// NewAudioPlayer creates an AudioPlayer for player, decorating its
// output with rv before it reaches the audio device.
func NewAudioPlayer(player *ptplayer.Player, rv reverb.Reverber, noUI bool) *AudioPlayer {
	var uiw io.Writer = os.Stdout
	if noUI {
		uiw = io.Discard
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &AudioPlayer{
		player:         player,
		reverb:         rv,
		scratch:        make([]int16, scratchBufferSize),
		uiWriter:       uiw,
		soloChannel:    -1,
		formatter:      &noteFormatter{},
		ctx:            ctx,
		cancelFn:       cancel,
		keyboardDoneCh: make(chan struct{}),
	}
}

// Run starts audio playback and blocks rendering the UI until Stop is
// called or the stream runs dry.
func (ap *AudioPlayer) Run() error {
	if err := ap.setupAudioStream(); err != nil {
		return err
	}

	ap.setupSignalHandlers()
	ap.setupKeyboardHandlers()

	fmt.Fprint(ap.uiWriter, hideCursor)

	for {
		select {
		case <-ap.ctx.Done():
			goto exit
		default:
		}

		pos := ap.player.Position()
		if !ap.havePos || pos != ap.lastPos {
			ap.renderUI(pos)
			ap.lastPos = pos
			ap.havePos = true
		}

		if ap.player.Ended() {
			ap.Stop()
		}
	}

exit:
	fmt.Fprint(ap.uiWriter, showCursor)

	select {
	case <-ap.keyboardDoneCh:
	case <-time.After(500 * time.Millisecond):
	}

	ap.wg.Wait()
	return nil
}

func (ap *AudioPlayer) setupAudioStream() error {
	stream, err := portaudio.OpenDefaultStream(
		0, 2,
		ptplayer.OutputSampleRateHz,
		audioBufferSize,
		ap.streamCallback,
	)
	if err != nil {
		return err
	}
	ap.stream = stream

	if err := stream.Start(); err != nil {
		stream.Close()
		return err
	}
	return nil
}

// streamCallback is invoked by portaudio on its own audio thread to
// fill out with the next block of interleaved stereo samples.
func (ap *AudioPlayer) streamCallback(out []int16) {
	sc := ap.scratch[:len(out)]

	if ap.player.IsPlaying() {
		ap.player.GenerateAudio(sc)
	} else {
		clear(sc)
	}

	ap.reverb.InputSamples(sc)
	n := ap.reverb.GetAudio(out)

	if n == 0 {
		clear(out)
	}
}

func (ap *AudioPlayer) setupSignalHandlers() {
	sigch := make(chan os.Signal, 5)
	signal.Notify(sigch, syscall.SIGINT)

	ap.wg.Add(1)
	go func() {
		defer ap.wg.Done()
		select {
		case <-ap.ctx.Done():
		case <-sigch:
			ap.Stop()
		}
	}()
}

func (ap *AudioPlayer) setupKeyboardHandlers() {
	ap.wg.Add(1)
	go func() {
		defer ap.wg.Done()
		keyboard.Listen(func(key keys.Key) (stop bool, err error) {
			if key.Code == keys.CtrlC || key.Code == keys.Escape {
				ap.Stop()
				return true, nil
			}
			ap.handleKeyPress(key)
			return false, nil
		})
		close(ap.keyboardDoneCh)
	}()
}

func (ap *AudioPlayer) handleKeyPress(key keys.Key) {
	switch key.Code {
	case keys.Left:
		ap.selectedChannel = max(ap.selectedChannel-1, 0)

	case keys.Right:
		ap.selectedChannel = min(ap.selectedChannel+1, 3)

	case keys.Space:
		if ap.player.IsPlaying() {
			ap.player.Stop()
		} else {
			ap.player.Start()
		}

	case keys.RuneKey:
		if len(key.Runes) == 0 {
			return
		}
		switch key.Runes[0] {
		case 'q':
			ap.player.SetMute(ap.player.Mute() ^ (1 << uint(ap.selectedChannel)))

		case 's':
			if ap.soloChannel != ap.selectedChannel {
				ap.soloChannel = ap.selectedChannel
				ap.player.SetSolo([]int{ap.selectedChannel})
			} else {
				ap.soloChannel = -1
				ap.player.SetSolo(nil)
			}
		}
	}
}

// Stop performs clean shutdown of the audio stream and terminal state.
func (ap *AudioPlayer) Stop() {
	ap.stopOnce.Do(func() {
		ap.player.Stop()
		ap.cancelFn()

		if ap.stream != nil {
			ap.stream.Stop()
			ap.stream.Close()
		}

		if !ap.terminated {
			portaudio.Terminate()
			ap.terminated = true
		}

		fmt.Fprint(ap.uiWriter, showCursor)
	})
}

func (ap *AudioPlayer) renderUI(pos ptplayer.PlayerPosition) {
	state := ap.player.State()

	ap.renderHeader(pos)
	ap.renderInstrumentStatus(state)
	ap.renderChannelHeaders()
	ap.renderPatternRows(pos)

	fmt.Fprintf(ap.uiWriter, escape+"%dF", uiLineCount)
}

func (ap *AudioPlayer) renderHeader(pos ptplayer.PlayerPosition) {
	song := ap.player.Song
	if len(song.Title) > 0 {
		fmt.Fprint(ap.uiWriter, song.Title+" ")
	}
	fmt.Fprintf(ap.uiWriter, "%s %02X %s %02X/%02X\n",
		blue("row"), pos.Row,
		blue("order"), pos.Order, song.UsedOrders)
}

func (ap *AudioPlayer) renderInstrumentStatus(state ptplayer.PlayerState) {
	song := ap.player.Song
	for i, ch := range state.Channels {
		tc := ' '
		if ch.Playing {
			tc = '■'
		}
		outs := fmt.Sprintf("%2d%c ", i+1, tc)

		if ch.Instrument > 0 && ch.Instrument <= len(song.Instruments) {
			outs += song.Instruments[ch.Instrument-1].Name
		}
		fmt.Fprintf(ap.uiWriter, "%-32s", outs)
		if i&1 == 1 {
			fmt.Fprintln(ap.uiWriter)
		}
	}
	fmt.Fprintln(ap.uiWriter)
	fmt.Fprintln(ap.uiWriter)
}

func (ap *AudioPlayer) renderChannelHeaders() {
	fmt.Fprint(ap.uiWriter, "        ")
	for i := 0; i < 4; i++ {
		const chanstr = "%2d       "
		if i == ap.selectedChannel {
			fmt.Fprint(ap.uiWriter, green(chanstr, i+1))
			continue
		}
		fmt.Fprintf(ap.uiWriter, chanstr, i+1)
	}
	fmt.Fprintln(ap.uiWriter)
}

func (ap *AudioPlayer) renderPatternRows(pos ptplayer.PlayerPosition) {
	for i := -patternRowsBefore; i <= patternRowsAfter; i++ {
		ap.renderNoteRow(pos.Order, pos.Row+i, i == 0)
	}
}

func (ap *AudioPlayer) renderNoteRow(order, row int, isCurrent bool) {
	nd := ap.player.NoteDataFor(order, row)
	if nd == nil {
		fmt.Fprintln(ap.uiWriter)
		return
	}

	if isCurrent {
		fmt.Fprint(ap.uiWriter, ">>> ")
	} else {
		fmt.Fprint(ap.uiWriter, "    ")
	}

	for ni, n := range nd {
		ap.formatter.formatNote(ni, n, ap.uiWriter)
	}

	if isCurrent {
		fmt.Fprint(ap.uiWriter, " <<<")
	}
	fmt.Fprintln(ap.uiWriter)
}

// formatNote renders one channel's decoded row: instrument, period,
// and effect/params, separated by | between channels.
func (nf *noteFormatter) formatNote(ni int, n ptplayer.ChannelNoteData, w io.Writer) {
	fmt.Fprint(w, cyan("%2d", n.Instrument), " ", white("%3.0f", n.Period), " ")
	fmt.Fprint(w, magenta("%d", n.Effect), yellow("%X%X", n.EffectX, n.EffectY))
	if ni < 3 {
		fmt.Fprint(w, "|")
	}
}

// play runs the interactive player until stopped.
func play(player *ptplayer.Player, rv reverb.Reverber) {
	ap := NewAudioPlayer(player, rv, *flagNoUI)

	defer func() {
		if ap.stream != nil {
			ap.stream.Stop()
			ap.stream.Close()
		}
		if !ap.terminated {
			portaudio.Terminate()
		}
		fmt.Fprint(ap.uiWriter, showCursor)
	}()

	if err := ap.Run(); err != nil {
		log.Fatal(err)
	}
}
