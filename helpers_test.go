package ptplayer

import (
	"strconv"
	"strings"
	"testing"

	clone "github.com/huandu/go-clone/generic"
)

const testWaveformLen = 1000

// noteToPeriod is the standard Amiga period table for octaves 1-3,
// spanning the full playable range ([113, 856]).
var noteToPeriod = map[string]float64{
	"C-1": 856, "C#1": 808, "D-1": 762, "D#1": 720, "E-1": 678, "F-1": 640,
	"F#1": 604, "G-1": 570, "G#1": 538, "A-1": 508, "A#1": 480, "B-1": 453,
	"C-2": 428, "C#2": 404, "D-2": 381, "D#2": 360, "E-2": 339, "F-2": 320,
	"F#2": 302, "G-2": 285, "G#2": 269, "A-2": 254, "A#2": 240, "B-2": 226,
	"C-3": 214, "C#3": 202, "D-3": 190, "D#3": 180, "E-3": 170, "F-3": 160,
	"F#3": 151, "G-3": 143, "G#3": 135, "A-3": 127, "A#3": 120, "B-3": 113,
}

var testSong = Song{
	Title:      "testsong",
	Orders:     [numOrderEntries]byte{0},
	UsedOrders: 1,
	Instruments: [numInstruments]Instrument{
		{Name: "testins1", Volume: 64, Data: make([]int8, testWaveformLen)},
		{Name: "testins2", Volume: 64, Data: make([]int8, testWaveformLen)},
	},
}

// buildTestSong clones the shared template song and installs a single
// pattern built from a text DSL, one string per channel per row:
//
//	"C-3 01 A02" - play C-3 with instrument 1, effect A (VolumeSlide) param 02
//	"... 01 ..." - no note, switch to instrument 1, no effect
//	""           - completely empty cell
func buildTestSong(rows [][]string) *Song {
	song := clone.Clone(testSong)

	pattern := Pattern{}
	for r, row := range rows {
		for ch, col := range row {
			*pattern.RowAt(ch, r) = parseTestRow(col)
		}
	}
	song.Patterns = []Pattern{pattern}

	return &song
}

func parseTestRow(col string) Row {
	if col == "" {
		return Row{}
	}
	fields := strings.Fields(col)
	for len(fields) < 3 {
		fields = append(fields, "...")
	}

	var row Row
	if p, ok := noteToPeriod[fields[0]]; ok {
		row.Period = p
	}
	if fields[1] != ".." && fields[1] != "" {
		n, err := strconv.Atoi(fields[1])
		if err != nil {
			panic(err)
		}
		row.InstrumentNumber = n
	}
	if fields[2] != "..." && len(fields[2]) == 3 {
		code := parseHexDigit(fields[2][0])
		x := parseHexDigit(fields[2][1])
		y := parseHexDigit(fields[2][2])
		row.Effect = decodeEffect(code, x, y)
		row.EffectX = x
		row.EffectY = y
	}
	return row
}

func parseHexDigit(b byte) int {
	v, err := strconv.ParseInt(string(b), 16, 16)
	if err != nil {
		panic(err)
	}
	return int(v)
}

// newTestPlayer builds a Player over a single-pattern song from the DSL
// described in buildTestSong and advances it past its first enterRow.
func newTestPlayer(t *testing.T, rows [][]string) *Player {
	t.Helper()
	song := buildTestSong(rows)
	p := NewPlayer(song)
	p.enterRow()
	p.started = true
	return p
}

// advanceToNextRow pumps GenerateAudio one frame at a time until the row
// position changes (or the song ends), leaving the player positioned at
// the first sample of the new row.
func advanceToNextRow(p *Player) {
	out := make([]int16, 2)
	startRow, startOrder := p.rowPosition, p.orderPosition
	for (p.rowPosition == startRow && p.orderPosition == startOrder) && !p.ended {
		if p.GenerateAudio(out) == 0 {
			return
		}
	}
}
