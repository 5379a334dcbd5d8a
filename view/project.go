package view

import (
	"fmt"

	"github.com/jsphweid/chordview/model"
)

type Kind int

const (
	KindNone Kind = iota
	KindError
	KindResult
)

type ErrorView struct {
	Message string
}

func (e ErrorView) Banner() string {
	return "Error: " + e.Message
}

type Row struct {
	Time  string
	Chord string
}

func (r Row) Label() string {
	return r.Time + "s " + r.Chord
}

type ResultView struct {
	Duration string
	Rows     []Row
}

func (r ResultView) DurationLine() string {
	return "Duration: " + r.Duration + " seconds"
}

// Projection holds at most one of Error and Result, as told by Kind.
type Projection struct {
	Kind   Kind
	Error  *ErrorView
	Result *ResultView
}

func seconds(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

// Project derives what, if anything, to show below the form. Chord labels
// pass through untouched.
func Project(state model.SubmissionState, result *model.ChordResult, errMsg string) Projection {
	switch {
	case state == model.Failed && errMsg != "":
		return Projection{Kind: KindError, Error: &ErrorView{Message: errMsg}}
	case state == model.Succeeded && result != nil:
		rv := &ResultView{Duration: seconds(result.Duration), Rows: make([]Row, 0, len(result.Chords))}
		for _, c := range result.Chords {
			rv.Rows = append(rv.Rows, Row{Time: seconds(c.Time), Chord: c.Chord})
		}
		return Projection{Kind: KindResult, Result: rv}
	}
	return Projection{Kind: KindNone}
}
