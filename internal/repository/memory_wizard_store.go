package repository

import (
	"context"
	"sync"
	"time"

	bookingDomain "github.com/Kilat-Home-Services/service-booking/internal/domain/booking"
	"github.com/Kilat-Home-Services/service-booking/internal/platform/apperr"
	"github.com/google/uuid"
)

type memoryEntry struct {
	record    wizardRecord
	expiresAt time.Time
}

// MemoryWizardStore keeps wizard sessions in process memory. Sessions expire
// ttl after their last write; a zero ttl keeps them forever.
type MemoryWizardStore struct {
	mu      sync.Mutex
	entries map[uuid.UUID]memoryEntry
	ttl     time.Duration
	now     func() time.Time
}

// NewMemoryWizardStore creates an empty MemoryWizardStore.
func NewMemoryWizardStore(ttl time.Duration) *MemoryWizardStore {
	return &MemoryWizardStore{
		entries: make(map[uuid.UUID]memoryEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

var _ bookingDomain.WizardRepository = (*MemoryWizardStore)(nil)

// FindByID retrieves a wizard session by its identifier.
func (s *MemoryWizardStore) FindByID(ctx context.Context, id uuid.UUID) (*bookingDomain.Wizard, error) {
	s.mu.Lock()
	entry, ok := s.lookup(id)
	s.mu.Unlock()

	if !ok {
		return nil, apperr.NewNotFoundError("Wizard", id.String())
	}
	return toDomainWizard(entry.record)
}

// Save persists a new wizard session.
func (s *MemoryWizardStore) Save(ctx context.Context, w *bookingDomain.Wizard) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.lookup(w.ID()); exists {
		return apperr.NewConflictError("wizard already exists")
	}
	s.entries[w.ID()] = s.entry(toWizardRecord(w))
	return nil
}

// Update persists changes with optimistic locking on the version.
func (s *MemoryWizardStore) Update(ctx context.Context, w *bookingDomain.Wizard) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.lookup(w.ID())
	if !ok {
		return apperr.NewNotFoundError("Wizard", w.ID().String())
	}
	if current.record.Version != w.Version()-1 {
		return apperr.NewConflictError("wizard was modified by another request")
	}
	s.entries[w.ID()] = s.entry(toWizardRecord(w))
	return nil
}

// Delete discards a session.
func (s *MemoryWizardStore) Delete(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	delete(s.entries, id)
	s.mu.Unlock()
	return nil
}

// Sweep drops every expired session and returns how many were removed.
func (s *MemoryWizardStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for id, e := range s.entries {
		if s.expired(e, now) {
			delete(s.entries, id)
			removed++
		}
	}
	return removed
}

// RunJanitor sweeps expired sessions every interval until ctx is cancelled.
func (s *MemoryWizardStore) RunJanitor(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep()
		}
	}
}

// Len returns the number of live sessions.
func (s *MemoryWizardStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	n := 0
	for _, e := range s.entries {
		if !s.expired(e, now) {
			n++
		}
	}
	return n
}

// lookup must be called with mu held. Expired entries are removed.
func (s *MemoryWizardStore) lookup(id uuid.UUID) (memoryEntry, bool) {
	e, ok := s.entries[id]
	if !ok {
		return memoryEntry{}, false
	}
	if s.expired(e, s.now()) {
		delete(s.entries, id)
		return memoryEntry{}, false
	}
	return e, true
}

func (s *MemoryWizardStore) entry(r wizardRecord) memoryEntry {
	e := memoryEntry{record: r}
	if s.ttl > 0 {
		e.expiresAt = s.now().Add(s.ttl)
	}
	return e
}

func (s *MemoryWizardStore) expired(e memoryEntry, now time.Time) bool {
	return !e.expiresAt.IsZero() && !now.Before(e.expiresAt)
}
