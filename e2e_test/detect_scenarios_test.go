//go:build e2e
// +build e2e

package e2e_test

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jsphweid/chordview/constants"
	"github.com/jsphweid/chordview/detect"
	"github.com/jsphweid/chordview/preview"
	"github.com/jsphweid/chordview/session"
	"github.com/jsphweid/chordview/web"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// detectionService answers every upload with whatever reply returns for
// the uploaded file name.
func detectionService(t *testing.T, reply func(filename string) string) string {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != constants.DetectPath {
			http.NotFound(w, r)
			return
		}
		_, header, err := r.FormFile(constants.AudioField)
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			io.WriteString(w, `{"error": "No audio file provided"}`)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, reply(header.Filename))
	}))
	t.Cleanup(srv.Close)
	return srv.URL
}

type page struct {
	t      *testing.T
	base   string
	client *http.Client
}

func openPage(t *testing.T, serviceURL string) *page {
	store, err := session.NewStore(detect.NewClient(serviceURL), preview.NewRegistry(), time.Hour, nil)
	require.NoError(t, err)
	srv := httptest.NewServer(web.NewServer(store, nil).Handler(nil))
	t.Cleanup(srv.Close)
	t.Cleanup(store.Close)

	jar, _ := cookiejar.New(nil)
	p := &page{t: t, base: srv.URL, client: &http.Client{Jar: jar}}
	p.load()
	return p
}

func (p *page) do(req *http.Request) string {
	resp, err := p.client.Do(req)
	require.NoError(p.t, err)
	defer resp.Body.Close()
	require.Equal(p.t, http.StatusOK, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	return string(body)
}

func (p *page) load() string {
	req, _ := http.NewRequest(http.MethodGet, p.base+"/", nil)
	return p.do(req)
}

func (p *page) pick(name string) string {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, _ := w.CreateFormFile(constants.AudioField, name)
	part.Write([]byte("audio bytes of " + name))
	w.Close()

	req, _ := http.NewRequest(http.MethodPost, p.base+"/select", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return p.do(req)
}

// submit clicks the button and reloads until the page stops polling.
func (p *page) submit() string {
	req, _ := http.NewRequest(http.MethodPost, p.base+"/submit", nil)
	body := p.do(req)
	deadline := time.Now().Add(2 * time.Second)
	for strings.Contains(body, `http-equiv="refresh"`) {
		require.True(p.t, time.Now().Before(deadline), "submission never settled")
		time.Sleep(5 * time.Millisecond)
		body = p.load()
	}
	return body
}

func TestScenarioA_ResultIsListed(t *testing.T) {
	url := detectionService(t, func(string) string {
		return `{"success": true, "duration": 182.5, "chords": [{"time": 0.0, "chord": "E"}, {"time": 2.31, "chord": "A"}]}`
	})
	p := openPage(t, url)
	p.pick("song.mp3")
	body := p.submit()

	assert := assert.New(t)
	assert.Contains(body, "Duration: 182.50 seconds")
	assert.Contains(body, `<span class="time">0.00s</span> <span class="chord">E</span>`)
	assert.Contains(body, `<span class="time">2.31s</span> <span class="chord">A</span>`)
	assert.NotContains(body, `class="error"`)
	assert.Contains(body, ">Detect Chords</button>")
}

func TestScenarioB_ServiceErrorBanner(t *testing.T) {
	url := detectionService(t, func(string) string {
		return `{"success": false, "error": "Unsupported file format"}`
	})
	p := openPage(t, url)
	p.pick("notes.txt")
	body := p.submit()

	assert.Contains(t, body, "<strong>Error:</strong> Unsupported file format")
	assert.NotContains(t, body, "chord-list")
}

func TestScenarioC_BackendUnreachable(t *testing.T) {
	dead := httptest.NewServer(http.NotFoundHandler())
	url := dead.URL
	dead.Close()

	p := openPage(t, url)
	p.pick("song.mp3")
	body := p.submit()

	assert.Contains(t, body, "<strong>Error:</strong> "+constants.UnreachableMessage)
}

func TestScenarioD_NewSelectionClearsResult(t *testing.T) {
	url := detectionService(t, func(name string) string {
		if name == "a.mp3" {
			return `{"success": true, "duration": 10, "chords": [{"time": 0, "chord": "Am7"}]}`
		}
		return `{"success": false, "error": "should not be asked"}`
	})
	p := openPage(t, url)
	p.pick("a.mp3")
	body := p.submit()
	require.Contains(t, body, `<span class="chord">Am7</span>`)

	body = p.pick("b.mp3")
	assert.NotContains(t, body, "Am7")
	assert.NotContains(t, body, "Detected Chords")
	assert.NotContains(t, body, `class="error"`)
	assert.Contains(t, body, `<label for="file-input" class="file-label">b.mp3</label>`)
}
