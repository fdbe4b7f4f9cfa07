package ptplayer

import "math"

const (
	defaultTicksPerRow = 6
	defaultBPM         = 125
)

// PlayerPosition reports where the scheduler currently is in the song,
// for display/introspection purposes only — it is never read back into
// the synthesis path.
type PlayerPosition struct {
	Order int
	Row   int
}

// ChannelNoteData is a single channel's decoded row, formatted for
// display (e.g. a live tracker-style UI).
type ChannelNoteData struct {
	Instrument int
	Period     float64
	Effect     Effect
	EffectX    int
	EffectY    int
}

// PlayerState is a snapshot of scheduler + channel state, for UI use.
type PlayerState struct {
	Order    int
	Row      int
	Channels []ChannelStatus
}

// ChannelStatus summarizes one channel's playback state for display.
type ChannelStatus struct {
	Instrument int
	Playing    bool
	Volume     int
}

// Player is the song scheduler and mixer: it drives the musical clock
// (sample -> tick -> row -> pattern -> order), dispatches row/tick
// events to its four channel synthesizers, and mixes their output into
// clipped 16-bit stereo frames. See spec §4.4.
type Player struct {
	Song *Song

	channels [channelsPerSong]*channelSynth

	orderPosition  int
	rowPosition    int
	tickPosition   int
	samplePosition int
	currentPattern int

	nextRow           int
	nextRowPattern    int
	nextOrderPosition int

	ticksPerRow    int
	bpm            int
	samplesPerTick int

	mute    uint32 // bitmask, channel 0 in LSB
	soloSet map[int]bool

	ended   bool
	started bool
	playing bool
}

// NewPlayer creates a Player ready to render the given song from its
// first order/row.
func NewPlayer(song *Song) *Player {
	p := &Player{
		Song:        song,
		ticksPerRow: defaultTicksPerRow,
		bpm:         defaultBPM,
		playing:     true,
	}
	for i := range p.channels {
		p.channels[i] = newChannelSynth(song, i)
	}
	p.currentPattern = int(song.Orders[0])
	p.recomputeSamplesPerTick()
	return p
}

// SeekToOrder repositions playback to the start of the given order,
// clamped to the song's used order range. Must be called before the
// first GenerateAudio call.
func (p *Player) SeekToOrder(order int) {
	p.orderPosition = clampInt(order, 0, p.Song.UsedOrders-1)
	p.rowPosition = 0
	p.currentPattern = int(p.Song.Orders[p.orderPosition])
}

// samplesPerRowFor returns the length of one row in output samples: a
// row lasts 2.5/bpm seconds and is split into ticksPerRow ticks. At
// bpm=125 this yields 882 samples/row (147 samples/tick over 6 ticks).
func samplesPerRowFor(bpm int) float64 {
	return outputSampleRateHz * 2.5 / float64(bpm)
}

func (p *Player) recomputeSamplesPerTick() {
	p.samplesPerTick = int(math.Round(samplesPerRowFor(p.bpm) / float64(p.ticksPerRow)))
}

// SetMute replaces the channel mute bitmask (bit i = channel i muted).
func (p *Player) SetMute(mask uint32) { p.mute = mask }

// Mute returns the current mute bitmask.
func (p *Player) Mute() uint32 { return p.mute }

// SetSolo restricts mixing to exactly the given channel indices. An
// empty slice disables solo mode and all unmuted channels contribute.
func (p *Player) SetSolo(channels []int) {
	if len(channels) == 0 {
		p.soloSet = nil
		return
	}
	p.soloSet = make(map[int]bool, len(channels))
	for _, c := range channels {
		p.soloSet[c] = true
	}
}

// Ended reports whether the scheduler has reached the end of the song.
func (p *Player) Ended() bool { return p.ended }

// Start resumes audio generation after a Stop. A freshly constructed
// Player is already started.
func (p *Player) Start() { p.playing = true }

// Stop pauses audio generation; GenerateAudio keeps advancing frames
// but every caller is expected to check IsPlaying and substitute
// silence, since the Sink still needs samples to stay synchronized.
func (p *Player) Stop() { p.playing = false }

// IsPlaying reports whether the scheduler is currently advancing, i.e.
// neither paused via Stop nor finished.
func (p *Player) IsPlaying() bool { return p.playing && !p.ended }

// Position reports the scheduler's current order/row.
func (p *Player) Position() PlayerPosition {
	return PlayerPosition{Order: p.orderPosition, Row: p.rowPosition}
}

// State snapshots scheduler and channel state for UI consumption.
func (p *Player) State() PlayerState {
	st := PlayerState{Order: p.orderPosition, Row: p.rowPosition}
	for _, c := range p.channels {
		st.Channels = append(st.Channels, ChannelStatus{
			Instrument: c.instrumentIdx,
			Playing:    c.isPlaying,
			Volume:     c.volume,
		})
	}
	return st
}

// NoteDataFor returns the decoded row data for every channel at the
// given order/row, or nil if out of range. Intended for UI lookback
// and lookahead display.
func (p *Player) NoteDataFor(order, row int) []ChannelNoteData {
	if order < 0 || order >= p.Song.UsedOrders || row < 0 || row >= rowsPerPattern {
		return nil
	}
	pattern := &p.Song.Patterns[p.Song.Orders[order]]
	out := make([]ChannelNoteData, channelsPerSong)
	for ch := 0; ch < channelsPerSong; ch++ {
		r := pattern.RowAt(ch, row)
		out[ch] = ChannelNoteData{
			Instrument: r.InstrumentNumber,
			Period:     r.Period,
			Effect:     r.Effect,
			EffectX:    r.EffectX,
			EffectY:    r.EffectY,
		}
	}
	return out
}

// scanGlobalEffect finds the given effect across the row's 4 channels.
// When multiple channels carry the same global effect, the last one in
// channel order wins, matching the common tracker convention.
func scanGlobalEffect(pattern *Pattern, row int, effect Effect) (x, y int, found bool) {
	for ch := 0; ch < channelsPerSong; ch++ {
		r := pattern.RowAt(ch, row)
		if r.Effect == effect {
			x, y, found = r.EffectX, r.EffectY, true
		}
	}
	return
}

// enterRow performs all of the start-of-row bookkeeping: applying a
// Change-Speed global effect, dispatching the row to each channel,
// applying start-of-row channel effects, and computing the lookahead
// for the next row.
func (p *Player) enterRow() {
	pattern := &p.Song.Patterns[p.currentPattern]

	if x, y, found := scanGlobalEffect(pattern, p.rowPosition, EffectChangeSpeed); found {
		v := x*16 + y
		if v < 32 {
			if v > 0 {
				p.ticksPerRow = v
			}
		} else {
			p.bpm = v
		}
		p.recomputeSamplesPerTick()
	}

	for ch := 0; ch < channelsPerSong; ch++ {
		row := pattern.RowAt(ch, p.rowPosition)
		p.channels[ch].setRow(row, p.ticksPerRow, p.bpm)
	}
	for ch := 0; ch < channelsPerSong; ch++ {
		p.channels[ch].applyStartOfRowEffects()
	}

	p.computeLookahead(pattern)
}

func (p *Player) computeLookahead(pattern *Pattern) {
	pbX, pbY, hasBreak := scanGlobalEffect(pattern, p.rowPosition, EffectPatternBreak)
	pjX, pjY, hasJump := scanGlobalEffect(pattern, p.rowPosition, EffectPositionJump)

	var nextRow, nextOrder int
	switch {
	case hasBreak || hasJump:
		if hasJump {
			nextOrder = clampInt(pjX*16+pjY, 0, numOrderEntries-1)
		} else {
			nextOrder = p.orderPosition + 1
		}
		if hasBreak {
			nextRow = clampInt(pbX*10+pbY, 0, rowsPerPattern-1)
		} else {
			nextRow = 0
		}
	case p.rowPosition == rowsPerPattern-1:
		nextOrder = p.orderPosition + 1
		nextRow = 0
	default:
		nextOrder = p.orderPosition
		nextRow = p.rowPosition + 1
	}

	if nextOrder >= p.Song.UsedOrders {
		p.nextRow = -1
		return
	}
	p.nextRow = nextRow
	p.nextOrderPosition = nextOrder
	p.nextRowPattern = int(p.Song.Orders[nextOrder])
}

// GenerateAudio renders len(out)/2 stereo frames (interleaved L,R
// int16) into out, stopping early if the song ends. It returns the
// number of frames actually written.
func (p *Player) GenerateAudio(out []int16) int {
	if !p.started {
		p.enterRow()
		p.started = true
	}

	frames := len(out) / 2
	for f := 0; f < frames; f++ {
		if p.ended {
			return f
		}

		if p.samplePosition == 0 && p.tickPosition != 0 {
			for ch := 0; ch < channelsPerSong; ch++ {
				p.channels[ch].applyPerTickEffect(p.tickPosition)
			}
		}

		var accL, accR float64
		for ch := 0; ch < channelsPerSong; ch++ {
			if p.mute&(1<<uint(ch)) != 0 {
				continue
			}
			if p.soloSet != nil && !p.soloSet[ch] {
				continue
			}
			l, r := p.channels[ch].nextSample()
			accL, accR = accumulateStereo(accL, accR, l, r)
		}

		out[f*2+0] = clipToInt16(accL)
		out[f*2+1] = clipToInt16(accR)

		p.samplePosition++
		if p.samplePosition >= p.samplesPerTick {
			p.samplePosition = 0
			p.tickPosition++
		}
		if p.tickPosition >= p.ticksPerRow {
			p.tickPosition = 0
			p.rowPosition = p.nextRow
			p.currentPattern = p.nextRowPattern
			p.orderPosition = p.nextOrderPosition

			if p.rowPosition == -1 {
				p.ended = true
			} else {
				p.enterRow()
			}
		}
	}

	return frames
}
