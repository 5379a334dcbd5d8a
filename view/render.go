package view

import (
	"fmt"
	"html/template"
	"io"

	"github.com/jsphweid/chordview/constants"
	"github.com/jsphweid/chordview/model"
)

const (
	PlaceholderLabel = "Choose an audio file"
	SubmitLabel      = "Detect Chords"
	BusyLabel        = "Detecting Chords..."
)

// Page is everything the renderers need. It is a pure function of a
// session snapshot.
type Page struct {
	FileLabel      string
	Accept         string
	SubmitLabel    string
	SubmitDisabled bool
	PreviewURL     string
	// set while a request is in flight so the page polls for the outcome
	Refresh   bool
	ExportURL string
	Projection
}

func Build(snap model.Snapshot) Page {
	p := Page{
		FileLabel:      PlaceholderLabel,
		Accept:         constants.AcceptedAudioTypes,
		SubmitLabel:    SubmitLabel,
		SubmitDisabled: snap.File == nil || snap.State == model.InFlight,
		PreviewURL:     snap.PreviewURL,
		Refresh:        snap.State == model.InFlight,
		Projection:     Project(snap.State, snap.Result, snap.Error),
	}
	if snap.File != nil {
		p.FileLabel = snap.File.Name
	}
	if snap.State == model.InFlight {
		p.SubmitLabel = BusyLabel
	}
	if p.Kind == KindResult {
		p.ExportURL = "/export.mid"
	}
	return p
}

var page = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Guitar Chord Detector</title>
{{- if .Refresh}}
<meta http-equiv="refresh" content="1">
{{- end}}
</head>
<body>
<header>
<h1>Guitar Chord Detector</h1>
<p>Upload an MP3 file and get the guitar chords</p>
</header>
<main>
<form action="/select" method="post" enctype="multipart/form-data" class="upload-form">
<div class="file-input-wrapper">
<input type="file" name="audio" id="file-input" accept="{{.Accept}}" onchange="this.form.submit()">
<label for="file-input" class="file-label">{{.FileLabel}}</label>
<noscript><button type="submit">Use file</button></noscript>
</div>
</form>
<form action="/submit" method="post">
<button type="submit"{{if .SubmitDisabled}} disabled{{end}}>{{.SubmitLabel}}</button>
</form>
{{- with .Error}}
<div class="error"><strong>Error:</strong> {{.Message}}</div>
{{- end}}
{{- if .PreviewURL}}
<div class="audio-player">
<h3>Audio Preview:</h3>
<audio controls src="{{.PreviewURL}}"></audio>
</div>
{{- end}}
{{- with .Result}}
<div class="results">
<h2>Detected Chords</h2>
<p>{{.DurationLine}}</p>
<div class="chord-list">
{{- range .Rows}}
<div class="chord-item"><span class="time">{{.Time}}s</span> <span class="chord">{{.Chord}}</span></div>
{{- end}}
</div>
{{- if $.ExportURL}}
<p><a href="{{$.ExportURL}}">Download as MIDI</a></p>
{{- end}}
</div>
{{- end}}
<form action="/teardown" method="post"><button type="submit">Start over</button></form>
</main>
</body>
</html>
`))

func RenderHTML(w io.Writer, p Page) error {
	return page.Execute(w, p)
}

// RenderText writes the same view as plain lines, for terminals.
func RenderText(w io.Writer, p Page) error {
	lines := []string{"File: " + p.FileLabel, "[" + p.SubmitLabel + "]"}
	if p.Error != nil {
		lines = append(lines, p.Error.Banner())
	}
	if p.PreviewURL != "" {
		lines = append(lines, "Preview: "+p.PreviewURL)
	}
	if p.Result != nil {
		lines = append(lines, p.Result.DurationLine())
		for _, r := range p.Result.Rows {
			lines = append(lines, r.Label())
		}
	}
	for _, l := range lines {
		if _, err := fmt.Fprintln(w, l); err != nil {
			return err
		}
	}
	return nil
}
