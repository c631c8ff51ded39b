package core

import (
	"sync"
	"time"

	"github.com/familyfinance/finchat/internal/store"
	"github.com/shopspring/decimal"
)

const defaultPendingTTL = 10 * time.Minute

// PendingAction is an income or expense waiting for the user to answer sim/não.
type PendingAction struct {
	ID          string
	Kind        Intent
	Amount      decimal.Decimal
	Description string
	Bank        *store.Bank
	CreatedAt   time.Time
	ExpiresAt   time.Time
}

// FinanceType maps the staged intent to the persisted finance type.
func (a PendingAction) FinanceType() store.FinanceType {
	if a.Kind == IntentIncome {
		return store.FinanceIncome
	}
	return store.FinanceExpense
}

// PendingStore holds at most one pending action per user.
type PendingStore interface {
	Get(userID int64) (PendingAction, bool)
	// Set replaces any action already staged for the user.
	Set(userID int64, action PendingAction)
	Delete(userID int64)
}

// MemoryPendingStore is a process-local PendingStore whose entries expire after a TTL.
type MemoryPendingStore struct {
	entries  map[int64]PendingAction
	now      func() time.Time
	stopCh   chan struct{}
	ttl      time.Duration
	mu       sync.RWMutex
	stopOnce sync.Once
}

// NewMemoryPendingStore creates the store and starts its cleanup goroutine.
// Call Close to stop it.
func NewMemoryPendingStore(ttl time.Duration) *MemoryPendingStore {
	return newMemoryPendingStore(ttl, time.Now)
}

func newMemoryPendingStore(ttl time.Duration, now func() time.Time) *MemoryPendingStore {
	if ttl <= 0 {
		ttl = defaultPendingTTL
	}

	s := &MemoryPendingStore{
		entries: make(map[int64]PendingAction),
		now:     now,
		stopCh:  make(chan struct{}),
		ttl:     ttl,
	}

	go s.cleanup(cleanupInterval(ttl))

	return s
}

func cleanupInterval(ttl time.Duration) time.Duration {
	interval := ttl / 2
	if interval < time.Second {
		interval = time.Second
	}
	if interval > 5*time.Minute {
		interval = 5 * time.Minute
	}
	return interval
}

func (s *MemoryPendingStore) Get(userID int64) (PendingAction, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	action, ok := s.entries[userID]
	if !ok || !s.now().Before(action.ExpiresAt) {
		return PendingAction{}, false
	}
	return action, true
}

func (s *MemoryPendingStore) Set(userID int64, action PendingAction) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if action.CreatedAt.IsZero() {
		action.CreatedAt = now
	}
	if action.ExpiresAt.IsZero() {
		action.ExpiresAt = now.Add(s.ttl)
	}
	s.entries[userID] = action
}

func (s *MemoryPendingStore) Delete(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, userID)
}

// Len counts entries that have not expired yet.
func (s *MemoryPendingStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	now := s.now()
	n := 0
	for _, action := range s.entries {
		if now.Before(action.ExpiresAt) {
			n++
		}
	}
	return n
}

// Close stops the cleanup goroutine. It is safe to call more than once.
func (s *MemoryPendingStore) Close() {
	s.stopOnce.Do(func() { close(s.stopCh) })
}

func (s *MemoryPendingStore) cleanup(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopCh:
			return
		case <-ticker.C:
			s.purgeExpired()
		}
	}
}

func (s *MemoryPendingStore) purgeExpired() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for userID, action := range s.entries {
		if !now.Before(action.ExpiresAt) {
			delete(s.entries, userID)
		}
	}
}
