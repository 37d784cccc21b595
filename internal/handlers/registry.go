package handlers

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Record is the observable state of one launched run. A background
// goroutine updates it at every tick; readers see the latest snapshot.
type Record struct {
	ID   string
	Kind string

	mu           sync.RWMutex
	state        string
	message      string
	elapsed      time.Duration
	taskID       string
	text         string
	artifactPath string
	location     string
	errMsg       string
	terminal     bool
}

// Snapshot is a copyable view of a record.
type Snapshot struct {
	ID           string        `json:"id"`
	Kind         string        `json:"kind"`
	State        string        `json:"state"`
	Message      string        `json:"message"`
	Elapsed      time.Duration `json:"elapsed_ms"`
	TaskID       string        `json:"task_id,omitempty"`
	Text         string        `json:"text,omitempty"`
	Location     string        `json:"location,omitempty"`
	Error        string        `json:"error,omitempty"`
	Terminal     bool          `json:"terminal"`
	ArtifactPath string        `json:"-"`
}

func (r *Record) Snapshot() Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return Snapshot{
		ID:           r.ID,
		Kind:         r.Kind,
		State:        r.state,
		Message:      r.message,
		Elapsed:      r.elapsed / time.Millisecond,
		TaskID:       r.taskID,
		Text:         r.text,
		Location:     r.location,
		Error:        r.errMsg,
		Terminal:     r.terminal,
		ArtifactPath: r.artifactPath,
	}
}

func (r *Record) update(fn func(*Record)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fn(r)
}

// Registry tracks launched runs in memory for the lifetime of the process.
type Registry struct {
	mu   sync.RWMutex
	runs map[string]*Record
}

func NewRegistry() *Registry {
	return &Registry{runs: make(map[string]*Record)}
}

func (reg *Registry) Create(kind string) *Record {
	rec := &Record{
		ID:    uuid.NewString(),
		Kind:  kind,
		state: "created",
	}
	reg.mu.Lock()
	reg.runs[rec.ID] = rec
	reg.mu.Unlock()
	return rec
}

func (reg *Registry) Get(id string) (*Record, bool) {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	rec, ok := reg.runs[id]
	return rec, ok
}
