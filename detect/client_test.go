package detect

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jsphweid/chordview/constants"
	"github.com/jsphweid/chordview/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serviceReturning(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

var upload = model.SelectedFile{Name: "riff.mp3", ContentType: "audio/mpeg", Data: []byte("ID3fake")}

func TestDetectSendsMultipartAudioField(t *testing.T) {
	var gotName, gotType string
	var gotData []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, constants.DetectPath, r.URL.Path)

		f, header, err := r.FormFile(constants.AudioField)
		if !assert.NoError(t, err) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		defer f.Close()
		gotName = header.Filename
		gotType = header.Header.Get("Content-Type")
		gotData, _ = io.ReadAll(f)

		io.WriteString(w, `{"success": true, "duration": 1, "chords": []}`)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL+"/").Detect(context.Background(), upload)
	require.NoError(t, err)

	assert := assert.New(t)
	assert.Equal("riff.mp3", gotName)
	assert.Equal("audio/mpeg", gotType)
	assert.Equal([]byte("ID3fake"), gotData)
}

func TestDetectSuccess(t *testing.T) {
	srv := serviceReturning(t, 200, `{"success": true, "duration": 182.5, "chords": [{"time": 0.0, "chord": "E"}, {"time": 2.31, "chord": "A"}]}`)

	res, err := NewClient(srv.URL).Detect(context.Background(), upload)
	require.NoError(t, err)
	assert.Equal(t, model.ChordResult{
		Duration: 182.5,
		Chords:   []model.ChordEntry{{Time: 0, Chord: "E"}, {Time: 2.31, Chord: "A"}},
	}, res)
}

func TestDetectServiceErrors(t *testing.T) {
	cases := []struct {
		name    string
		status  int
		body    string
		message string
	}{
		{"explicit error", 200, `{"success": false, "error": "Unsupported file format"}`, "Unsupported file format"},
		{"error with 500", 500, `{"error": "could not decode"}`, "could not decode"},
		{"no error field", 200, `{"success": false}`, constants.FallbackMessage},
		{"not json", 502, `<html>bad gateway</html>`, constants.FallbackMessage},
		{"missing chords", 200, `{"success": true, "duration": 3}`, constants.MalformedMessage},
		{"missing duration", 200, `{"success": true, "chords": []}`, constants.MalformedMessage},
		{"negative time", 200, `{"success": true, "duration": 3, "chords": [{"time": -1, "chord": "C"}]}`, constants.MalformedMessage},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			srv := serviceReturning(t, c.status, c.body)
			_, err := NewClient(srv.URL).Detect(context.Background(), upload)

			var se *ServiceError
			require.True(t, errors.As(err, &se), "got %v", err)
			assert.Equal(t, c.status, se.StatusCode)
			assert.Equal(t, c.message, Message(err))
		})
	}
}

func TestDetectTransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewClient(url).Detect(context.Background(), upload)

	var te *TransportError
	require.True(t, errors.As(err, &te), "got %v", err)
	assert.Equal(t, constants.UnreachableMessage, Message(err))
}

func TestHealth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != constants.HealthPath {
			http.NotFound(w, r)
			return
		}
		io.WriteString(w, `{"status": "ok"}`)
	}))
	defer srv.Close()

	hr, err := NewClient(srv.URL).Health(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ok", hr.Status)

	down := serviceReturning(t, 503, `{}`)
	_, err = NewClient(down.URL).Health(context.Background())
	var se *ServiceError
	assert.True(t, errors.As(err, &se))
}
