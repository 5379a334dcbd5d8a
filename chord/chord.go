package chord

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/jsphweid/chordview/model"
)

var ErrNoChord = errors.New("no chord")

var roots = map[byte]int{'C': 0, 'D': 2, 'E': 4, 'F': 5, 'G': 7, 'A': 9, 'B': 11}

// longest suffixes first so "maj7" wins over "m"
var qualities = []struct {
	suffix    string
	intervals []uint8
}{
	{"maj7", []uint8{0, 4, 7, 11}},
	{"sus2", []uint8{0, 2, 7}},
	{"sus4", []uint8{0, 5, 7}},
	{"min", []uint8{0, 3, 7}},
	{"dim", []uint8{0, 3, 6}},
	{"aug", []uint8{0, 4, 8}},
	{"m7", []uint8{0, 3, 7, 10}},
	{"7", []uint8{0, 4, 7, 10}},
	{"m", []uint8{0, 3, 7}},
	{"", []uint8{0, 4, 7}},
}

type Chord struct {
	Label string
	// pitch class, C = 0
	Root      uint8
	Intervals []uint8
}

// Parse understands the common guitar chord spellings. "N" and the empty
// label mean no chord and return ErrNoChord.
func Parse(label string) (Chord, error) {
	l := strings.TrimSpace(label)
	if l == "" || l == "N" {
		return Chord{}, ErrNoChord
	}

	root, ok := roots[l[0]]
	if !ok {
		return Chord{}, fmt.Errorf("unrecognised root in %q", label)
	}
	rest := l[1:]
	if strings.HasPrefix(rest, "#") {
		root++
		rest = rest[1:]
	} else if strings.HasPrefix(rest, "b") {
		root--
		rest = rest[1:]
	}
	root = (root + 12) % 12

	for _, q := range qualities {
		if rest == q.suffix {
			return Chord{Label: label, Root: uint8(root), Intervals: q.intervals}, nil
		}
	}
	return Chord{}, fmt.Errorf("unrecognised quality %q in %q", rest, label)
}

// Notes voices the chord upwards from the given base note.
func (c Chord) Notes(base uint8) model.Notes {
	notes := make(model.Notes, 0, len(c.Intervals))
	for _, iv := range c.Intervals {
		notes = append(notes, base+c.Root+iv)
	}
	return notes
}

func CreateChordKey(notes []uint8) string {
	sorted := append([]uint8(nil), notes...)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i] < sorted[j]
	})
	var res string
	for i, note := range sorted {
		res += fmt.Sprintf("%v", note)
		if i < len(sorted)-1 {
			res += "-"
		}
	}
	return res
}
