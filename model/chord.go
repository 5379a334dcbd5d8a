package model

type ChordEntry struct {
	Time  float64 `json:"time"`
	Chord string  `json:"chord"`
}

// ChordResult is only populated while a submission is Succeeded.
type ChordResult struct {
	Duration float64      `json:"duration"`
	Chords   []ChordEntry `json:"chords"`
}

type Notes = []uint8
