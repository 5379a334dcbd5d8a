package detect

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"

	"github.com/jsphweid/chordview/constants"
	"github.com/jsphweid/chordview/model"
)

// Detector turns an audio file into a chord result.
type Detector interface {
	Detect(ctx context.Context, file model.SelectedFile) (model.ChordResult, error)
}

// Client talks to the chord detection service over HTTP.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a client for the service rooted at baseURL. Requests
// have no timeout and are never retried.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{},
	}
}

func encodeUpload(file model.SelectedFile) (*bytes.Buffer, string, error) {
	body := new(bytes.Buffer)
	w := multipart.NewWriter(body)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, constants.AudioField, file.Name))
	contentType := file.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	h.Set("Content-Type", contentType)

	part, err := w.CreatePart(h)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(file.Data); err != nil {
		return nil, "", err
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return body, w.FormDataContentType(), nil
}

// Detect posts the file once. Errors are always *TransportError or
// *ServiceError.
func (c *Client) Detect(ctx context.Context, file model.SelectedFile) (model.ChordResult, error) {
	body, contentType, err := encodeUpload(file)
	if err != nil {
		return model.ChordResult{}, &TransportError{Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+constants.DetectPath, body)
	if err != nil {
		return model.ChordResult{}, &TransportError{Err: err}
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return model.ChordResult{}, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return model.ChordResult{}, &TransportError{Err: err}
	}

	return parseDetectResponse(resp.StatusCode, raw)
}

func parseDetectResponse(status int, raw []byte) (model.ChordResult, error) {
	var dr model.DetectResponse
	if err := json.Unmarshal(raw, &dr); err != nil {
		return model.ChordResult{}, &ServiceError{StatusCode: status, Message: constants.FallbackMessage, Err: err}
	}

	if !dr.Success {
		msg := dr.Error
		if msg == "" {
			msg = constants.FallbackMessage
		}
		return model.ChordResult{}, &ServiceError{StatusCode: status, Message: msg}
	}

	if err := validate(dr); err != nil {
		return model.ChordResult{}, &ServiceError{StatusCode: status, Message: constants.MalformedMessage, Err: err}
	}

	chords := make([]model.ChordEntry, len(*dr.Chords))
	copy(chords, *dr.Chords)
	return model.ChordResult{Duration: *dr.Duration, Chords: chords}, nil
}

// validate checks the shape of a response that claims success. Ordering
// of the chords is trusted.
func validate(dr model.DetectResponse) error {
	if dr.Duration == nil {
		return errors.New("missing duration")
	}
	if *dr.Duration < 0 {
		return fmt.Errorf("negative duration %v", *dr.Duration)
	}
	if dr.Chords == nil {
		return errors.New("missing chords")
	}
	for i, c := range *dr.Chords {
		if c.Time < 0 {
			return fmt.Errorf("chord %d has negative time %v", i, c.Time)
		}
	}
	return nil
}

// Health probes the service's health endpoint.
func (c *Client) Health(ctx context.Context) (model.HealthResponse, error) {
	var hr model.HealthResponse

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+constants.HealthPath, nil)
	if err != nil {
		return hr, &TransportError{Err: err}
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return hr, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return hr, &ServiceError{StatusCode: resp.StatusCode, Message: "health check failed"}
	}
	if err := json.NewDecoder(resp.Body).Decode(&hr); err != nil {
		return hr, &ServiceError{StatusCode: resp.StatusCode, Message: "health check failed", Err: err}
	}
	return hr, nil
}

// Message returns the user-facing text for an error returned by Detect.
func Message(err error) string {
	var se *ServiceError
	if errors.As(err, &se) {
		return se.Message
	}
	return constants.UnreachableMessage
}
