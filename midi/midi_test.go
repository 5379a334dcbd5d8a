package midi

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/jsphweid/chordview/chord"
	"github.com/jsphweid/chordview/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/gomidi/midi/v2/smf"
)

func TestExportedChordsReadBack(t *testing.T) {
	res := model.ChordResult{
		Duration: 6,
		Chords: []model.ChordEntry{
			{Time: 0, Chord: "E"},
			{Time: 2.31, Chord: "A"},
			{Time: 4, Chord: "N"},
			{Time: 5, Chord: "Am"},
		},
	}

	var buf bytes.Buffer
	voiced, err := WriteChordTrack(&buf, res)
	require.NoError(t, err)
	assert.Equal(t, 3, voiced)

	s, err := smf.ReadFrom(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	onsets, err := Onsets(s)
	require.NoError(t, err)
	require.Len(t, onsets, 3)

	assert := assert.New(t)
	assert.InDelta(0, onsets[0].Time, 0.001)
	assert.Equal("64-68-71", chord.CreateChordKey(onsets[0].Notes))
	assert.InDelta(2.31, onsets[1].Time, 0.001)
	assert.Equal("69-73-76", chord.CreateChordKey(onsets[1].Notes))
	assert.InDelta(5, onsets[2].Time, 0.001)
	assert.Equal("69-72-76", chord.CreateChordKey(onsets[2].Notes))
}

func TestUnvoicedEntriesAreSkipped(t *testing.T) {
	res := model.ChordResult{
		Duration: 3,
		Chords: []model.ChordEntry{
			{Time: 0, Chord: "what"},
			{Time: 1, Chord: "C"},
			{Time: 3, Chord: "G"},
		},
	}
	_, voiced := BuildChordTrack(res)
	assert.Equal(t, 1, voiced)
}

func TestChordFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chords.mid")
	_, err := WriteChordFile(path, model.ChordResult{Duration: 2, Chords: []model.ChordEntry{{Time: 0.5, Chord: "G7"}}})
	require.NoError(t, err)

	s, err := ReadMidiFile(path)
	require.NoError(t, err)
	onsets, err := Onsets(s)
	require.NoError(t, err)
	require.Len(t, onsets, 1)
	assert.InDelta(t, 0.5, onsets[0].Time, 0.001)
	assert.Equal(t, "67-71-74-77", chord.CreateChordKey(onsets[0].Notes))
}

func TestReadMissingFile(t *testing.T) {
	_, err := ReadMidiFile(filepath.Join(t.TempDir(), "nope.mid"))
	assert.Error(t, err)
}
