package ptplayer

import "testing"

func TestSamplesPerRowAndTick(t *testing.T) {
	// At the canonical 125 BPM / 6 ticks-per-row this is 882 samples
	// per row and 147 samples per tick.
	if got := samplesPerRowFor(defaultBPM); got != 882.0 {
		t.Errorf("samplesPerRowFor(125) = %v, want 882", got)
	}

	p := NewPlayer(buildTestSong([][]string{
		{"C-2 01 ...", "", "", ""},
	}))
	if p.samplesPerTick != 147 {
		t.Errorf("samplesPerTick = %d, want 147", p.samplesPerTick)
	}
}

func TestNewPlayerDefaults(t *testing.T) {
	song := buildTestSong([][]string{
		{"C-2 01 ...", "", "", ""},
	})
	p := NewPlayer(song)

	if p.ticksPerRow != defaultTicksPerRow {
		t.Errorf("ticksPerRow = %d, want %d", p.ticksPerRow, defaultTicksPerRow)
	}
	if p.bpm != defaultBPM {
		t.Errorf("bpm = %d, want %d", p.bpm, defaultBPM)
	}
	if p.samplesPerTick <= 0 {
		t.Errorf("samplesPerTick = %d, want positive", p.samplesPerTick)
	}
}

func TestChangeSpeedBelow32SetsTicksPerRow(t *testing.T) {
	song := buildTestSong([][]string{
		{"C-2 01 F03", "", "", ""},
	})
	p := NewPlayer(song)
	p.enterRow()

	if p.ticksPerRow != 3 {
		t.Errorf("ticksPerRow = %d, want 3", p.ticksPerRow)
	}
}

func TestChangeSpeedZeroIsNoOp(t *testing.T) {
	song := buildTestSong([][]string{
		{"C-2 01 F00", "", "", ""},
	})
	p := NewPlayer(song)
	before := p.ticksPerRow
	p.enterRow()

	if p.ticksPerRow != before {
		t.Errorf("ticksPerRow = %d, want unchanged %d after Change-Speed 0", p.ticksPerRow, before)
	}
}

func TestChangeSpeedAbove31SetsBPM(t *testing.T) {
	song := buildTestSong([][]string{
		{"C-2 01 F90", "", "", ""}, // 0x90 = 144
	})
	p := NewPlayer(song)
	p.enterRow()

	if p.bpm != 144 {
		t.Errorf("bpm = %d, want 144", p.bpm)
	}
}

func TestGenerateAudioEndsAtLastRow(t *testing.T) {
	song := buildTestSong([][]string{
		{"C-2 01 ...", "", "", ""},
	})
	song.UsedOrders = 1
	p := NewPlayer(song)

	out := make([]int16, 2)
	for i := 0; i < 1_000_000 && !p.Ended(); i++ {
		if p.GenerateAudio(out) == 0 {
			break
		}
	}
	if !p.Ended() {
		t.Fatal("player never ended on a single-order, single-pattern song")
	}
}

func TestGenerateAudioAllSilentSong(t *testing.T) {
	// Every row across every channel is completely empty: no note, no
	// instrument, no effect. Nothing ever starts playing, so the mix is
	// silence from the first sample to the last, and the song still
	// runs its full, deterministic length: one row is exactly
	// 44100*2.5/125 = 882 samples at the default tempo, so a
	// single-order, single-pattern song renders UsedOrders*64*882 frames.
	rows := make([][]string, rowsPerPattern)
	for i := range rows {
		rows[i] = []string{"", "", "", ""}
	}
	song := buildTestSong(rows)
	song.UsedOrders = 1
	p := NewPlayer(song)

	wantFrames := song.UsedOrders * rowsPerPattern * 882
	out := make([]int16, 2)
	gotFrames := 0
	for !p.Ended() {
		n := p.GenerateAudio(out)
		if n == 0 {
			break
		}
		gotFrames += n
		if out[0] != 0 || out[1] != 0 {
			t.Fatalf("frame %d = (%d, %d), want (0, 0) on an all-silent song", gotFrames-1, out[0], out[1])
		}
	}

	if !p.Ended() {
		t.Fatal("player never ended on an all-silent song")
	}
	if gotFrames != wantFrames {
		t.Errorf("total frames = %d, want %d (UsedOrders*64*882)", gotFrames, wantFrames)
	}
}

func TestPatternBreakJumpsRow(t *testing.T) {
	// Pattern break's param is two decimal digits (x*10+y), not hex:
	// D28 breaks to row 2*10+8 = 28. A second order/pattern is required
	// so the break (which always advances to the next order) doesn't
	// itself hit the end of the song.
	rows := make([][]string, rowsPerPattern)
	rows[0] = []string{"C-2 01 D28", "", "", ""}
	for i := 1; i < rowsPerPattern; i++ {
		rows[i] = []string{"", "", "", ""}
	}
	song := buildTestSong(rows)
	song.UsedOrders = 2
	song.Orders[1] = 1
	song.Patterns = append(song.Patterns, Pattern{})
	p := NewPlayer(song)
	p.enterRow()

	if p.nextRow != 28 {
		t.Errorf("nextRow = %d, want 28 after pattern break D28", p.nextRow)
	}
	if p.nextOrderPosition != 1 {
		t.Errorf("nextOrderPosition = %d, want 1 (pattern break always advances the order)", p.nextOrderPosition)
	}
}

func TestPatternBreakPastLastOrderEndsSong(t *testing.T) {
	song := buildTestSong([][]string{
		{"C-2 01 D00", "", "", ""},
	})
	song.UsedOrders = 1
	p := NewPlayer(song)
	p.enterRow()

	if p.nextRow != -1 {
		t.Errorf("nextRow = %d, want -1 (song end) since there is no next order", p.nextRow)
	}
}

func TestPositionJumpClampsToOrderRange(t *testing.T) {
	song := buildTestSong([][]string{
		{"C-2 01 BFF", "", "", ""}, // jump to order 0xFF, way out of range
	})
	song.UsedOrders = 2
	song.Patterns = append(song.Patterns, Pattern{})
	p := NewPlayer(song)
	p.enterRow()

	// Clamped to numOrderEntries-1, which is still >= UsedOrders, so the
	// song ends rather than jumping out of bounds.
	if p.nextRow != -1 {
		t.Errorf("nextRow = %d, want -1 after an out-of-range position jump", p.nextRow)
	}
}

func TestMuteSilencesChannel(t *testing.T) {
	song := buildTestSong([][]string{
		{"C-2 01 ...", "", "", ""},
	})
	p := NewPlayer(song)
	p.SetMute(1) // mute channel 0

	out := make([]int16, 8)
	p.GenerateAudio(out)

	for i, v := range out {
		if v != 0 {
			t.Errorf("out[%d] = %d, want 0 with channel 0 muted and no other notes", i, v)
		}
	}
}

func TestSoloRestrictsToSelectedChannels(t *testing.T) {
	song := buildTestSong([][]string{
		{"C-2 01 ...", "", "", ""},
	})
	song.Instruments[0].Data[3] = 127 // nonzero waveform so a mixed sample would be audible
	p := NewPlayer(song)
	p.SetSolo([]int{1}) // only channel 1, which has no note

	out := make([]int16, 8)
	p.GenerateAudio(out)

	for i, v := range out {
		if v != 0 {
			t.Errorf("out[%d] = %d, want 0 when soloing a silent channel", i, v)
		}
	}
}

func TestClipToInt16Bounds(t *testing.T) {
	if got := clipToInt16(10.0); got != pcm16Max {
		t.Errorf("clipToInt16(10.0) = %d, want %d", got, pcm16Max)
	}
	if got := clipToInt16(-10.0); got != pcm16Min {
		t.Errorf("clipToInt16(-10.0) = %d, want %d", got, pcm16Min)
	}
	if got := clipToInt16(0); got != 0 {
		t.Errorf("clipToInt16(0) = %d, want 0", got)
	}
}
