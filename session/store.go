package session

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/bep/debounce"
	"github.com/google/uuid"
	"github.com/jsphweid/chordview/detect"
	"github.com/jsphweid/chordview/preview"
	"github.com/jsphweid/chordview/util"
)

type storeEntry struct {
	session *Session
	touch   func(f func())
	// guarded by Store.mu
	touched time.Time
}

// Store keeps one Session per browser. A session that sees no activity
// for the idle duration is torn down.
type Store struct {
	detector detect.Detector
	previews *preview.Registry
	idle     time.Duration
	log      *slog.Logger

	mu       sync.Mutex
	sessions map[string]*storeEntry
}

func NewStore(detector detect.Detector, previews *preview.Registry, idle time.Duration, logger *slog.Logger) (*Store, error) {
	if idle <= 0 {
		return nil, fmt.Errorf("session idle time must be positive, got %v", idle)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		detector: detector,
		previews: previews,
		idle:     idle,
		log:      logger,
		sessions: make(map[string]*storeEntry),
	}, nil
}

func (st *Store) Previews() *preview.Registry { return st.previews }

func (st *Store) Create() *Session {
	id := uuid.New().String()
	e := &storeEntry{
		session: New(id, st.detector, st.previews, st.log),
		touch:   debounce.New(st.idle),
		touched: time.Now(),
	}

	st.mu.Lock()
	st.sessions[id] = e
	st.arm(id, e)
	st.mu.Unlock()

	st.log.Info("session created", "session", id)
	return e.session
}

// arm must be called with st.mu held.
func (st *Store) arm(id string, e *storeEntry) {
	e.touch(func() { st.expire(id) })
}

// expire removes the session unless it was touched again after the timer
// fired.
func (st *Store) expire(id string) {
	st.mu.Lock()
	e, ok := st.sessions[id]
	if !ok || time.Since(e.touched) < st.idle {
		st.mu.Unlock()
		return
	}
	delete(st.sessions, id)
	st.mu.Unlock()

	e.session.Teardown()
	st.log.Info("session expired", "session", id)
}

// Get looks up a live session and postpones its expiry.
func (st *Store) Get(id string) (*Session, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()
	e, ok := st.sessions[id]
	if !ok || e.session.Closed() {
		return nil, false
	}
	e.touched = time.Now()
	st.arm(id, e)
	return e.session, true
}

// Remove tears the session down and forgets it.
func (st *Store) Remove(id string) bool {
	st.mu.Lock()
	e, ok := st.sessions[id]
	delete(st.sessions, id)
	st.mu.Unlock()
	if !ok {
		return false
	}
	e.session.Teardown()
	return true
}

func (st *Store) IDs() []string {
	st.mu.Lock()
	defer st.mu.Unlock()
	return util.GetKeysSorted(st.sessions)
}

// Close tears down every session.
func (st *Store) Close() {
	for _, id := range st.IDs() {
		st.Remove(id)
	}
}
