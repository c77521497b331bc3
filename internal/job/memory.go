package job

import (
	"context"
	"errors"
	"sync"

	"github.com/maauso/sfxgen-api/internal/job/id"
)

// Compile-time check that MemoryRepository implements Repository.
var _ Repository = (*MemoryRepository)(nil)

// MemoryRepository is an in-memory implementation of Repository.
// It uses a map with RWMutex for thread-safe access.
// Suitable for development and testing; records are lost on restart.
type MemoryRepository struct {
	mu   sync.RWMutex
	jobs map[string]*Job
}

// NewMemoryRepository creates a new in-memory job repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		jobs: make(map[string]*Job),
	}
}

// Create stores a clone of job under a newly generated ID.
func (r *MemoryRepository) Create(ctx context.Context, job *Job) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", recordError("create", "", err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	job.ID = id.Generate()
	r.jobs[job.ID] = job.Clone()
	return job.ID, nil
}

// Update applies u to the stored job.
func (r *MemoryRepository) Update(ctx context.Context, jobID string, u Update) error {
	if err := ctx.Err(); err != nil {
		return recordError("update", jobID, err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.jobs[jobID]
	if !ok {
		return recordError("update", jobID, ErrJobNotUpdated)
	}
	next := stored.Clone()
	if err := next.Apply(u); err != nil {
		if errors.Is(err, ErrInvalidTransition) {
			err = ErrJobNotUpdated
		}
		return recordError("update", jobID, err)
	}
	r.jobs[jobID] = next
	return nil
}

// FindByID retrieves a job by its ID.
// Returns a clone to prevent external mutations.
func (r *MemoryRepository) FindByID(_ context.Context, jobID string) (*Job, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	job, ok := r.jobs[jobID]
	if !ok {
		return nil, recordError("find", jobID, ErrJobNotFound)
	}
	return job.Clone(), nil
}
