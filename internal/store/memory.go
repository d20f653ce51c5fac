package store

import (
	"errors"
	"sync"
	"time"

	"github.com/i474232898/greenhouse-dashboard/internal/greenhouse"
)

var (
	// ErrNotFound is returned when no fresh records are cached for a file.
	ErrNotFound = errors.New("no cached records for file")
)

type entry struct {
	readings []greenhouse.Reading
	savedAt  time.Time
}

// MemoryStore is a concurrency-safe in-memory cache of daily file records.
type MemoryStore struct {
	mu sync.RWMutex

	// key: file name
	data  map[string]entry
	order []string // insertion order, oldest first

	// retention configuration
	maxFiles int           // max number of cached files
	maxAge   time.Duration // optional max age of an entry

	now func() time.Time
}

// NewMemoryStore creates a new MemoryStore with optional limits.
// If maxFiles is <= 0, it is treated as unlimited; the same goes for maxAge.
func NewMemoryStore(maxFiles int, maxAge time.Duration) *MemoryStore {
	return &MemoryStore{
		data:     make(map[string]entry),
		maxFiles: maxFiles,
		maxAge:   maxAge,
		now:      time.Now,
	}
}

// Save stores a copy of readings for fileName and enforces retention.
func (s *MemoryStore) Save(fileName string, readings []greenhouse.Reading) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.data[fileName]; ok {
		s.removeFromOrder(fileName)
	}
	s.data[fileName] = entry{
		readings: append([]greenhouse.Reading(nil), readings...),
		savedAt:  s.now(),
	}
	s.order = append(s.order, fileName)

	// Enforce retention by count.
	for s.maxFiles > 0 && len(s.order) > s.maxFiles {
		oldest := s.order[0]
		s.order = s.order[1:]
		delete(s.data, oldest)
	}

	// Enforce retention by age.
	if s.maxAge > 0 {
		cutoff := s.now().Add(-s.maxAge)
		i := 0
		for ; i < len(s.order); i++ {
			if !s.data[s.order[i]].savedAt.Before(cutoff) {
				break
			}
			delete(s.data, s.order[i])
		}
		s.order = s.order[i:]
	}
}

// Get returns a copy of the cached readings of fileName.
func (s *MemoryStore) Get(fileName string) ([]greenhouse.Reading, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.data[fileName]
	if !ok {
		return nil, ErrNotFound
	}
	if s.maxAge > 0 && e.savedAt.Before(s.now().Add(-s.maxAge)) {
		return nil, ErrNotFound
	}
	return append([]greenhouse.Reading(nil), e.readings...), nil
}

// Len returns the number of cached files, expired ones included.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}

func (s *MemoryStore) removeFromOrder(fileName string) {
	for i, name := range s.order {
		if name == fileName {
			s.order = append(s.order[:i], s.order[i+1:]...)
			return
		}
	}
}
