package midi

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/jsphweid/chordview/chord"
	"github.com/jsphweid/chordview/model"
	"github.com/jsphweid/chordview/util"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

const ticksPerQuarter = 960
const bpm = 120
const ticksPerSecond = ticksPerQuarter * bpm / 60

// voicing starts at middle C
const baseNote = 60
const velocity = 90

type Onset struct {
	Time  float64
	Notes model.Notes
}

func toTicks(seconds float64) uint32 {
	return uint32(math.Round(seconds * ticksPerSecond))
}

// BuildChordTrack turns a result into a single track SMF. Each chord sounds
// until the next entry, the last one until the end of the audio. Entries
// that cannot be voiced are left silent. It also returns how many chords
// were voiced.
func BuildChordTrack(res model.ChordResult) (*smf.SMF, int) {
	var tr smf.Track
	tr.Add(0, smf.MetaTempo(bpm))

	var cursor uint32
	voiced := 0
	for i, entry := range res.Chords {
		end := res.Duration
		if i+1 < len(res.Chords) {
			end = res.Chords[i+1].Time
		}
		on, off := toTicks(entry.Time), toTicks(end)
		if off <= on || on < cursor {
			continue
		}
		c, err := chord.Parse(entry.Chord)
		if err != nil {
			continue
		}

		notes := c.Notes(baseNote)
		for j, n := range notes {
			var delta uint32
			if j == 0 {
				delta = on - cursor
			}
			tr.Add(delta, midi.NoteOn(0, n, velocity))
		}
		for j, n := range notes {
			var delta uint32
			if j == 0 {
				delta = off - on
			}
			tr.Add(delta, midi.NoteOff(0, n))
		}
		cursor = off
		voiced++
	}
	tr.Close(0)

	var s smf.SMF
	s.TimeFormat = smf.MetricTicks(ticksPerQuarter)
	s.Tracks = append(s.Tracks, tr)
	return &s, voiced
}

func WriteChordTrack(w io.Writer, res model.ChordResult) (int, error) {
	s, voiced := BuildChordTrack(res)
	if _, err := s.WriteTo(w); err != nil {
		return 0, fmt.Errorf("could not write midi: %w", err)
	}
	return voiced, nil
}

func WriteChordFile(path string, res model.ChordResult) (int, error) {
	f, err := os.Create(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	return WriteChordTrack(f, res)
}

func ReadMidiFile(filepath string) (s *smf.SMF, e error) {
	// smf can panic on corrupt input
	defer func() {
		if r := recover(); r != nil {
			s = nil
			e = fmt.Errorf("Error parsing midi file... %v", r)
		}
	}()

	dat, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("Error reading midi file... %w", err)
	}
	res, err := smf.ReadFrom(bytes.NewReader(dat))
	if err != nil {
		return nil, fmt.Errorf("Error parsing midi file... %w", err)
	}
	return res, nil
}

// Onsets lists the moments at which notes start, with every note that
// starts at that moment.
func Onsets(s *smf.SMF) ([]Onset, error) {
	if s == nil {
		return nil, errors.New("no midi data")
	}

	starts := make(map[int64]model.Notes)
	for _, events := range s.Tracks {
		var absTicks int64
		for _, event := range events {
			absTicks += int64(event.Delta)
			var channel, key, vel uint8
			if event.Message.GetNoteOn(&channel, &key, &vel) && vel > 0 {
				starts[absTicks] = append(starts[absTicks], key)
			}
		}
	}

	res := make([]Onset, 0, len(starts))
	for _, t := range util.GetKeysSorted(starts) {
		res = append(res, Onset{
			Time:  float64(s.TimeAt(t)) / 1e6,
			Notes: starts[t],
		})
	}
	return res, nil
}
