package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/jsphweid/chordview/detect"
	"github.com/jsphweid/chordview/model"
	"github.com/jsphweid/chordview/preview"
)

// Session is the state container of one chord detector view. It is
// created on mount and must be torn down on unmount so that its preview
// handle is released.
type Session struct {
	id       string
	detector detect.Detector
	previews *preview.Registry
	log      *slog.Logger

	mu     sync.Mutex
	file   *model.SelectedFile
	handle *preview.Handle
	state  model.SubmissionState
	result *model.ChordResult
	errMsg string
	// bumped on every selection so a stale attempt can be recognised
	generation uint64
	// rejection that arrived while in flight, shown once the attempt settles
	pending string
	closed  bool
}

type attempt struct {
	file       model.SelectedFile
	generation uint64
}

func New(id string, detector detect.Detector, previews *preview.Registry, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{
		id:       id,
		detector: detector,
		previews: previews,
		log:      logger.With("session", id),
	}
}

func (s *Session) ID() string { return s.id }

// SelectFile stores the pick, swaps the preview handle and clears any
// previous result or error. The file is not validated.
func (s *Session) SelectFile(f model.SelectedFile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	s.releasePreview()
	h := s.previews.Acquire(f.Name, f.ContentType, f.Data)
	s.handle = &h
	s.file = &f
	s.result = nil
	s.errMsg = ""
	s.pending = ""
	s.generation++
	if s.state != model.InFlight {
		s.state = model.Idle
	}
	s.log.Info("file selected", "file", f.Name, "bytes", len(f.Data), "preview", h.ID)
}

// RejectFile records a pick that never reached the session, for instance
// an upload over the size limit. Any previous selection is dropped and the
// message is shown as an error.
func (s *Session) RejectFile(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	s.releasePreview()
	s.file = nil
	s.result = nil
	s.generation++
	if s.state == model.InFlight {
		s.pending = message
	} else {
		s.state = model.Failed
		s.errMsg = message
	}
	s.log.Warn("file rejected", "reason", message)
}

func (s *Session) releasePreview() {
	if s.handle == nil {
		return
	}
	s.previews.Revoke(*s.handle)
	s.handle = nil
}

// begin moves the session to InFlight if a submission is allowed.
func (s *Session) begin() (attempt, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.file == nil || s.state == model.InFlight {
		return attempt{}, false
	}
	s.state = model.InFlight
	s.errMsg = ""
	s.result = nil
	s.log.Info("submission started", "file", s.file.Name)
	return attempt{file: *s.file, generation: s.generation}, true
}

func (s *Session) settle(a attempt, res model.ChordResult, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	if a.generation != s.generation {
		s.state = model.Idle
		if s.pending != "" {
			s.state = model.Failed
			s.errMsg = s.pending
			s.pending = ""
		}
		s.log.Info("discarded stale submission", "file", a.file.Name)
		return
	}
	if err != nil {
		s.state = model.Failed
		s.result = nil
		s.errMsg = detect.Message(err)
		s.log.Warn("submission failed", "file", a.file.Name, "err", err)
		return
	}
	s.state = model.Succeeded
	s.result = &res
	s.errMsg = ""
	s.log.Info("submission succeeded", "file", a.file.Name, "chords", len(res.Chords), "duration", res.Duration)
}

func (s *Session) run(ctx context.Context, a attempt) {
	var (
		res model.ChordResult
		err error
	)
	// whatever happens the attempt must leave InFlight
	defer func() {
		if r := recover(); r != nil {
			err = &detect.TransportError{Err: fmt.Errorf("detector panicked: %v", r)}
		}
		s.settle(a, res, err)
	}()
	res, err = s.detector.Detect(ctx, a.file)
}

// Submit sends the selected file and blocks until the attempt settles.
// It returns false, doing nothing, when no file is selected or an attempt
// is already in flight.
func (s *Session) Submit(ctx context.Context) bool {
	a, ok := s.begin()
	if !ok {
		return false
	}
	s.run(ctx, a)
	return true
}

// SubmitAsync is Submit without waiting. The request is not bound to any
// caller context and cannot be cancelled.
func (s *Session) SubmitAsync() bool {
	a, ok := s.begin()
	if !ok {
		return false
	}
	go s.run(context.Background(), a)
	return true
}

// Teardown releases the preview handle. The session ignores everything
// afterwards, including a late response.
func (s *Session) Teardown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.releasePreview()
	s.file = nil
	s.result = nil
	s.errMsg = ""
	s.pending = ""
	s.log.Info("session torn down")
}

func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *Session) Snapshot() model.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := model.Snapshot{State: s.state, Error: s.errMsg}
	if s.file != nil {
		f := *s.file
		snap.File = &f
		snap.Filename = f.Name
	}
	if s.handle != nil {
		snap.PreviewURL = s.handle.URL
	}
	if s.result != nil {
		r := model.ChordResult{Duration: s.result.Duration}
		r.Chords = append([]model.ChordEntry(nil), s.result.Chords...)
		snap.Result = &r
	}
	return snap
}
