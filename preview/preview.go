package preview

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

const RoutePrefix = "/preview/"

// Handle is a locally resolvable reference to a selected file's bytes.
type Handle struct {
	ID  string
	URL string
}

type Entry struct {
	Name        string
	ContentType string
	Data        []byte
	Created     time.Time
}

// Registry holds the bytes behind live handles. A revoked handle no
// longer resolves.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]Entry)}
}

func (r *Registry) Acquire(name, contentType string, data []byte) Handle {
	id := uuid.New().String()
	r.mu.Lock()
	r.entries[id] = Entry{Name: name, ContentType: contentType, Data: data, Created: time.Now()}
	r.mu.Unlock()
	return Handle{ID: id, URL: RoutePrefix + id}
}

// Revoke reports whether the handle was live.
func (r *Registry) Revoke(h Handle) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entries[h.ID]; !ok {
		return false
	}
	delete(r.entries, h.ID)
	return true
}

func (r *Registry) Lookup(id string) (Entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[id]
	return e, ok
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}
