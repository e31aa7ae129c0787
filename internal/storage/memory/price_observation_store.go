package memory

import (
	"context"
	"sort"
	"sync"

	"sniper-bowl-bot/internal/domain"
	"sniper-bowl-bot/internal/storage"
)

// PriceObservationStore is an in-memory implementation of storage.PriceObservationStore.
type PriceObservationStore struct {
	mu   sync.RWMutex
	data []*domain.PriceObservation
}

// NewPriceObservationStore creates a new in-memory price tape.
func NewPriceObservationStore() *PriceObservationStore {
	return &PriceObservationStore{}
}

// InsertBulk adds multiple observations.
func (s *PriceObservationStore) InsertBulk(_ context.Context, obs []*domain.PriceObservation) error {
	for _, o := range obs {
		if o == nil {
			return storage.ErrInvalidInput
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, o := range obs {
		obsCopy := *o
		s.data = append(s.data, &obsCopy)
	}
	return nil
}

// GetByChat retrieves observations for a chat within [start, end] (inclusive).
func (s *PriceObservationStore) GetByChat(_ context.Context, chatID int64, start, end int64) ([]*domain.PriceObservation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.PriceObservation
	for _, o := range s.data {
		if o.ChatID == chatID && o.ObservedAt >= start && o.ObservedAt <= end {
			obsCopy := *o
			result = append(result, &obsCopy)
		}
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].ObservedAt < result[j].ObservedAt
	})
	return result, nil
}

var _ storage.PriceObservationStore = (*PriceObservationStore)(nil)
