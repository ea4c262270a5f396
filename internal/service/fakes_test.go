package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/library-service/internal/domain"
	"github.com/spec-kit/library-service/internal/events"
	"github.com/spec-kit/library-service/internal/repository"
)

type fakeLibrarianRepo struct {
	mu    sync.Mutex
	byID  map[string]*domain.Librarian
	fail  error
	raced bool // CreateFirst behaves as if another request won
}

func newFakeLibrarianRepo(seed ...*domain.Librarian) *fakeLibrarianRepo {
	r := &fakeLibrarianRepo{byID: map[string]*domain.Librarian{}}
	for _, l := range seed {
		_ = r.Create(context.Background(), l)
	}
	return r
}

func (r *fakeLibrarianRepo) find(match func(*domain.Librarian) bool) (*domain.Librarian, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail != nil {
		return nil, r.fail
	}
	for _, l := range r.byID {
		if match(l) {
			cp := *l
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeLibrarianRepo) GetByEmail(_ context.Context, email string) (*domain.Librarian, error) {
	return r.find(func(l *domain.Librarian) bool { return l.Email == email })
}

func (r *fakeLibrarianRepo) GetByID(_ context.Context, id string) (*domain.Librarian, error) {
	return r.find(func(l *domain.Librarian) bool { return l.ID == id })
}

func (r *fakeLibrarianRepo) GetByEmployeeID(_ context.Context, employeeID string) (*domain.Librarian, error) {
	return r.find(func(l *domain.Librarian) bool { return l.EmployeeID == employeeID })
}

func (r *fakeLibrarianRepo) Exists(context.Context) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byID) > 0, r.fail
}

func (r *fakeLibrarianRepo) insertLocked(l *domain.Librarian) error {
	for _, existing := range r.byID {
		if existing.Email == l.Email || existing.EmployeeID == l.EmployeeID {
			return repository.ErrDuplicate
		}
	}
	l.ID = uuid.NewString()
	l.CreatedAt = time.Now()
	l.UpdatedAt = l.CreatedAt
	cp := *l
	r.byID[l.ID] = &cp
	return nil
}

func (r *fakeLibrarianRepo) Create(_ context.Context, l *domain.Librarian) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail != nil {
		return r.fail
	}
	return r.insertLocked(l)
}

func (r *fakeLibrarianRepo) CreateFirst(_ context.Context, l *domain.Librarian) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.raced || len(r.byID) > 0 {
		return repository.ErrBootstrapClosed
	}
	return r.insertLocked(l)
}

func (r *fakeLibrarianRepo) Update(_ context.Context, id string, update domain.LibrarianUpdate) (*domain.Librarian, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if update.Email != nil {
		for _, other := range r.byID {
			if other.ID != id && other.Email == *update.Email {
				return nil, repository.ErrDuplicate
			}
		}
	}
	update.Apply(l)
	l.UpdatedAt = time.Now()
	cp := *l
	return &cp, nil
}

func (r *fakeLibrarianRepo) List(_ context.Context, filter repository.LibrarianFilter) ([]domain.Librarian, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := []domain.Librarian{}
	for _, l := range r.byID {
		if filter.Role != nil && l.Role != *filter.Role {
			continue
		}
		result = append(result, *l)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Email < result[j].Email })
	return result, nil
}

func (r *fakeLibrarianRepo) DeleteByID(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *fakeLibrarianRepo) DeleteByEmployeeID(_ context.Context, employeeID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, l := range r.byID {
		if l.EmployeeID == employeeID {
			delete(r.byID, id)
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r *fakeLibrarianRepo) DeleteAll(context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := int64(len(r.byID))
	r.byID = map[string]*domain.Librarian{}
	return n, nil
}

func (r *fakeLibrarianRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byID)
}

// recordingDispatcher captures published events.
type recordingDispatcher struct {
	mu     sync.Mutex
	events []events.Event
}

func (d *recordingDispatcher) Publish(_ context.Context, e events.Event) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, e)
	return nil
}

func (d *recordingDispatcher) Subscribe(events.EventType, events.EventHandler) {}

func (d *recordingDispatcher) types() []events.EventType {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]events.EventType, 0, len(d.events))
	for _, e := range d.events {
		out = append(out, e.Type)
	}
	return out
}

type fakeLimiter struct {
	blocked  bool
	failures map[string]int
	resets   []string
}

func newFakeLimiter() *fakeLimiter {
	return &fakeLimiter{failures: map[string]int{}}
}

func (l *fakeLimiter) Allowed(context.Context, string) (bool, error) {
	return !l.blocked, nil
}

func (l *fakeLimiter) RecordFailure(_ context.Context, email string) error {
	l.failures[email]++
	return nil
}

func (l *fakeLimiter) Reset(_ context.Context, email string) error {
	l.resets = append(l.resets, email)
	return nil
}

type countingRecorder struct {
	mu     sync.Mutex
	counts map[string]int
}

func (r *countingRecorder) RecordAuthEvent(event string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.counts == nil {
		r.counts = map[string]int{}
	}
	r.counts[event]++
}
