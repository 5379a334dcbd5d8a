package web

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/jsphweid/chordview/constants"
	"github.com/jsphweid/chordview/midi"
	"github.com/jsphweid/chordview/model"
	"github.com/jsphweid/chordview/preview"
	"github.com/jsphweid/chordview/session"
	"github.com/jsphweid/chordview/view"
	"github.com/rs/cors"
)

type Server struct {
	store *session.Store
	log   *slog.Logger
	// uploads above this many bytes are turned away before reaching the
	// session
	MaxUpload int64
}

func NewServer(store *session.Store, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{store: store, log: logger, MaxUpload: constants.MaxUploadSize}
}

func (s *Server) Router() *mux.Router {
	router := mux.NewRouter().StrictSlash(true)
	router.HandleFunc("/", s.HandlePage).Methods("GET")
	router.HandleFunc("/select", s.HandleSelect).Methods("POST")
	router.HandleFunc("/submit", s.HandleSubmit).Methods("POST")
	router.HandleFunc("/teardown", s.HandleTeardown).Methods("POST")
	router.HandleFunc("/state", s.HandleState).Methods("GET")
	router.HandleFunc("/export.mid", s.HandleExport).Methods("GET")
	router.HandleFunc("/preview/{id}", s.HandlePreview).Methods("GET")
	router.HandleFunc("/healthz", s.HandleHealth).Methods("GET")
	return router
}

// Handler wraps the router with CORS for the given origins. An empty list
// allows every origin, without credentials.
func (s *Server) Handler(origins []string) http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost},
		AllowCredentials: len(origins) > 0,
	})
	return c.Handler(s.Router())
}

func respondJSON(w http.ResponseWriter, data interface{}, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, message string, status int) {
	respondJSON(w, model.ErrorResponse{Error: message}, status)
}

func backToPage(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// current returns the caller's session, creating one (and its cookie) if
// the caller has none or it expired.
func (s *Server) current(w http.ResponseWriter, r *http.Request) *session.Session {
	if c, err := r.Cookie(constants.SessionCookie); err == nil {
		if sess, ok := s.store.Get(c.Value); ok {
			return sess
		}
	}
	sess := s.store.Create()
	http.SetCookie(w, &http.Cookie{
		Name:     constants.SessionCookie,
		Value:    sess.ID(),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return sess
}

func (s *Server) HandlePage(w http.ResponseWriter, r *http.Request) {
	sess := s.current(w, r)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	if err := view.RenderHTML(w, view.Build(sess.Snapshot())); err != nil {
		s.log.Error("could not render page", "session", sess.ID(), "err", err)
	}
}

func (s *Server) HandleSelect(w http.ResponseWriter, r *http.Request) {
	sess := s.current(w, r)

	if r.ContentLength > s.MaxUpload {
		sess.RejectFile(constants.TooLargeMessage)
		backToPage(w, r)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.MaxUpload)
	f, header, err := r.FormFile(constants.AudioField)
	if errors.Is(err, http.ErrMissingFile) {
		// picker was dismissed without a file
		backToPage(w, r)
		return
	}
	if err != nil {
		s.rejectUpload(sess, err)
		backToPage(w, r)
		return
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		s.rejectUpload(sess, err)
		backToPage(w, r)
		return
	}

	sess.SelectFile(model.SelectedFile{
		Name:        header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	})
	backToPage(w, r)
}

func (s *Server) rejectUpload(sess *session.Session, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		sess.RejectFile(constants.TooLargeMessage)
		return
	}
	s.log.Warn("could not read upload", "session", sess.ID(), "err", err)
	sess.RejectFile(constants.UnreadableMessage)
}

func (s *Server) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	sess := s.current(w, r)
	if !sess.SubmitAsync() {
		s.log.Debug("submit ignored", "session", sess.ID(), "state", sess.Snapshot().State)
	}
	backToPage(w, r)
}

func (s *Server) HandleTeardown(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(constants.SessionCookie); err == nil {
		s.store.Remove(c.Value)
	}
	http.SetCookie(w, &http.Cookie{Name: constants.SessionCookie, Path: "/", MaxAge: -1})
	backToPage(w, r)
}

func (s *Server) HandleState(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, s.current(w, r).Snapshot(), http.StatusOK)
}

// HandlePreview only serves the handle of the caller's own selection.
func (s *Server) HandlePreview(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if s.current(w, r).Snapshot().PreviewURL != preview.RoutePrefix+id {
		http.NotFound(w, r)
		return
	}
	e, ok := s.store.Previews().Lookup(id)
	if !ok {
		http.NotFound(w, r)
		return
	}
	if e.ContentType != "" {
		w.Header().Set("Content-Type", e.ContentType)
	}
	http.ServeContent(w, r, e.Name, e.Created, bytes.NewReader(e.Data))
}

func (s *Server) HandleExport(w http.ResponseWriter, r *http.Request) {
	snap := s.current(w, r).Snapshot()
	if snap.State != model.Succeeded || snap.Result == nil {
		respondError(w, "No chords detected yet", http.StatusNotFound)
		return
	}

	var buf bytes.Buffer
	if _, err := midi.WriteChordTrack(&buf, *snap.Result); err != nil {
		s.log.Error("could not export midi", "err", err)
		respondError(w, "Failed to export chords", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "audio/midi")
	w.Header().Set("Content-Disposition", `attachment; filename="chords.mid"`)
	w.Write(buf.Bytes())
}

func (s *Server) HandleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, model.HealthResponse{Status: "ok"}, http.StatusOK)
}
