// Package jobs tracks asynchronous document generation.
//
// A Runner turns a generation request into a Job, runs the provider, the
// renderer and the artifact upload in the background, and records progress
// in a Store. Stores expire jobs after a TTL; MemoryStore serves a single
// process, RedisStore lets several API replicas share job state.
package jobs

import (
	"context"
	"errors"
	"sync"
	"time"
)

// Sentinel errors.
var (
	ErrNotFound  = errors.New("job not found")
	ErrDuplicate = errors.New("job already exists")
)

// Status is the lifecycle state of a job.
type Status string

// Job states.
const (
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// Job is the recorded state of one generation.
type Job struct {
	ID           string     `json:"id"`
	Status       Status     `json:"status"`
	Progress     int        `json:"progress"`
	Error        string     `json:"error,omitempty"`
	Title        string     `json:"title,omitempty"`
	Provider     string     `json:"provider,omitempty"`
	Model        string     `json:"model,omitempty"`
	Chunks       int        `json:"chunks,omitempty"`
	InputTokens  int        `json:"input_tokens,omitempty"`
	OutputTokens int        `json:"output_tokens,omitempty"`
	ArtifactKey  string     `json:"artifact_key,omitempty"`
	Filename     string     `json:"filename,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
}

// Done reports whether the job reached a terminal state.
func (j *Job) Done() bool {
	return j.Status == StatusCompleted || j.Status == StatusFailed
}

// Store persists jobs. Implementations must be safe for concurrent use.
type Store interface {
	Create(ctx context.Context, job *Job) error
	Get(ctx context.Context, id string) (*Job, error)
	// Update applies fn to the stored job and returns the updated copy.
	Update(ctx context.Context, id string, fn func(*Job)) (*Job, error)
}

// DefaultTTL is how long jobs are kept when no TTL is configured.
const DefaultTTL = 24 * time.Hour

type memEntry struct {
	job     Job
	expires time.Time
}

// MemoryStore keeps jobs in process memory. Expired jobs are invisible to
// Get and removed by Sweep.
type MemoryStore struct {
	mu   sync.Mutex
	ttl  time.Duration
	now  func() time.Time
	jobs map[string]memEntry
}

// NewMemoryStore returns an empty store. A non-positive ttl uses DefaultTTL.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemoryStore{
		ttl:  ttl,
		now:  time.Now,
		jobs: make(map[string]memEntry),
	}
}

// Create implements Store.
func (s *MemoryStore) Create(_ context.Context, job *Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.jobs[job.ID]; ok && s.now().Before(e.expires) {
		return ErrDuplicate
	}
	s.jobs[job.ID] = memEntry{job: *job, expires: s.now().Add(s.ttl)}
	return nil
}

// Get implements Store.
func (s *MemoryStore) Get(_ context.Context, id string) (*Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.lookup(id)
	if !ok {
		return nil, ErrNotFound
	}
	job := e.job
	return &job, nil
}

// Update implements Store. The TTL is not extended.
func (s *MemoryStore) Update(_ context.Context, id string, fn func(*Job)) (*Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.lookup(id)
	if !ok {
		return nil, ErrNotFound
	}
	fn(&e.job)
	e.job.ID = id
	s.jobs[id] = e
	job := e.job
	return &job, nil
}

// Sweep drops expired jobs and returns how many were removed.
func (s *MemoryStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	removed := 0
	for id, e := range s.jobs {
		if !now.Before(e.expires) {
			delete(s.jobs, id)
			removed++
		}
	}
	return removed
}

// Len returns the number of stored jobs, expired or not.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.jobs)
}

// lookup returns a live entry, evicting it if expired. Caller holds mu.
func (s *MemoryStore) lookup(id string) (memEntry, bool) {
	e, ok := s.jobs[id]
	if !ok {
		return memEntry{}, false
	}
	if !s.now().Before(e.expires) {
		delete(s.jobs, id)
		return memEntry{}, false
	}
	return e, true
}
