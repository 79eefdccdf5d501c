package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/bug-tracker/internal/domain"
)

// MemoryBugRepository is an in-memory implementation of BugRepository.
type MemoryBugRepository struct {
	mu   sync.RWMutex
	bugs map[string]domain.Bug
	seq  map[string]uint64
	next uint64
	now  func() time.Time
}

// NewMemoryBugRepository creates an empty repository.
func NewMemoryBugRepository() *MemoryBugRepository {
	return &MemoryBugRepository{
		bugs: make(map[string]domain.Bug),
		seq:  make(map[string]uint64),
		now:  time.Now,
	}
}

func (r *MemoryBugRepository) Create(_ context.Context, bug *domain.Bug) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	bug.ID = uuid.NewString()
	now := r.now().UTC()
	bug.CreatedAt = now
	bug.UpdatedAt = now
	r.bugs[bug.ID] = *bug
	r.next++
	r.seq[bug.ID] = r.next
	return nil
}

func (r *MemoryBugRepository) List(_ context.Context, filter BugFilter) ([]domain.Bug, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]domain.Bug, 0, len(r.bugs))
	for _, bug := range r.bugs {
		if filter.Status != nil && bug.Status != *filter.Status {
			continue
		}
		if filter.Priority != nil && bug.Priority != *filter.Priority {
			continue
		}
		result = append(result, bug)
	}

	// Equal timestamps fall back to insertion order.
	sort.SliceStable(result, func(i, j int) bool {
		a, b := result[i].CreatedAt, result[j].CreatedAt
		if a.Equal(b) {
			a, b := r.seq[result[i].ID], r.seq[result[j].ID]
			if filter.Sort == BugSortRecent {
				return a > b
			}
			return a < b
		}
		if filter.Sort == BugSortRecent {
			return a.After(b)
		}
		return a.Before(b)
	})
	return result, nil
}

func (r *MemoryBugRepository) GetByID(_ context.Context, id string) (*domain.Bug, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	bug, ok := r.bugs[id]
	if !ok {
		return nil, domain.ErrBugNotFound
	}
	return &bug, nil
}

func (r *MemoryBugRepository) Update(_ context.Context, id string, patch domain.BugPatch) (*domain.Bug, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	bug, ok := r.bugs[id]
	if !ok {
		return nil, domain.ErrBugNotFound
	}
	patch.Apply(&bug)
	bug.UpdatedAt = r.now().UTC()
	r.bugs[id] = bug
	return &bug, nil
}

func (r *MemoryBugRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.bugs[id]; !ok {
		return domain.ErrBugNotFound
	}
	delete(r.bugs, id)
	delete(r.seq, id)
	return nil
}
