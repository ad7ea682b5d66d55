package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"
)

// CleanupInterval is how often expired records are swept.
const CleanupInterval = time.Minute

type entry struct {
	data      []byte
	expiresAt time.Time
}

// MemoryStore keeps encoded records in process memory. Used when no Redis
// address is configured and in tests.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]entry
	ttl     time.Duration
	now     func() time.Time

	stopCleanup chan struct{}
	wg          sync.WaitGroup
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	s := &MemoryStore{
		records:     make(map[string]entry),
		ttl:         ttl,
		now:         time.Now,
		stopCleanup: make(chan struct{}),
	}

	s.wg.Add(1)
	go s.cleanupLoop()

	return s
}

func (s *MemoryStore) cleanupLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.expire()
		case <-s.stopCleanup:
			return
		}
	}
}

func (s *MemoryStore) expire() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for key, e := range s.records {
		if now.After(e.expiresAt) {
			delete(s.records, key)
		}
	}
}

func (s *MemoryStore) Load(_ context.Context, sessionID string) (*Record, error) {
	s.mu.RLock()
	e, ok := s.records[Key(sessionID)]
	s.mu.RUnlock()

	if !ok || s.now().After(e.expiresAt) {
		return nil, ErrNotFound
	}
	return decode(e.data)
}

func (s *MemoryStore) Save(_ context.Context, sessionID string, rec *Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal cart record failed: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[Key(sessionID)] = entry{data: data, expiresAt: s.now().Add(s.ttl)}
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, Key(sessionID))
	return nil
}

// Len reports how many records are held, expired or not.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Close stops the background cleanup and waits for it to finish
func (s *MemoryStore) Close() error {
	close(s.stopCleanup)
	s.wg.Wait()
	return nil
}
