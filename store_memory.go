package feez

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

// InMemoryStore is a TransactionStore backed by process memory.
//
// Suitable for tests and single-instance demo deployments; persistent
// deployments use the GORM-backed store with the same contract.
type InMemoryStore struct {
	mu      sync.Mutex
	records map[string]*TransactionRecord
	order   map[string]int
	seq     int
}

// NewInMemoryStore creates an empty in-memory transaction store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		records: make(map[string]*TransactionRecord),
		order:   make(map[string]int),
	}
}

// Create inserts a new record. Fails if the ID is already present.
func (s *InMemoryStore) Create(ctx context.Context, rec *TransactionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.records[rec.ID]; exists {
		return NewOpError(ErrCodePersistenceFailure,
			fmt.Sprintf("duplicate transaction id: %s", rec.ID), nil)
	}

	cp := *rec
	s.records[rec.ID] = &cp
	s.order[rec.ID] = s.seq
	s.seq++
	return nil
}

// Get returns a copy of the record, or nil when absent.
func (s *InMemoryStore) Get(ctx context.Context, id string) (*TransactionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[id]
	if !ok {
		return nil, nil
	}
	cp := *rec
	return &cp, nil
}

// List returns matching records newest-first with the pre-pagination total.
func (s *InMemoryStore) List(ctx context.Context, f TransactionFilter) ([]TransactionRecord, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	matched := make([]TransactionRecord, 0, len(s.records))
	for _, rec := range s.records {
		if s.matches(rec, f) {
			matched = append(matched, *rec)
		}
	}

	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return s.order[matched[i].ID] > s.order[matched[j].ID]
	})

	total := int64(len(matched))
	if f.Offset > 0 {
		if f.Offset >= len(matched) {
			matched = nil
		} else {
			matched = matched[f.Offset:]
		}
	}
	if f.Limit > 0 && len(matched) > f.Limit {
		matched = matched[:f.Limit]
	}
	return matched, total, nil
}

// UpdateStatus applies the single status transition for a record. The
// update only lands when the current status equals from, so a record never
// leaves a terminal state.
func (s *InMemoryStore) UpdateStatus(ctx context.Context, id string, from, to TxStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[id]
	if !ok {
		return NewOpError(ErrCodePersistenceFailure,
			fmt.Sprintf("transaction not found: %s", id), nil)
	}
	if rec.Status != from {
		return NewOpError(ErrCodePersistenceFailure,
			fmt.Sprintf("transaction %s is %s, not %s", id, rec.Status, from), nil)
	}

	rec.Status = to
	if to.Terminal() {
		now := time.Now().UTC()
		rec.ConfirmedAt = &now
	}
	return nil
}

func (s *InMemoryStore) matches(rec *TransactionRecord, f TransactionFilter) bool {
	if f.WalletAddress != "" && !strings.EqualFold(rec.WalletAddress, f.WalletAddress) {
		return false
	}
	if f.Chain != "" && rec.Chain != f.Chain {
		return false
	}
	if f.Status != "" && rec.Status != f.Status {
		return false
	}
	if !f.Since.IsZero() && rec.CreatedAt.Before(f.Since) {
		return false
	}
	return true
}
