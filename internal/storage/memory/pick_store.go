package memory

import (
	"context"
	"sync"

	"sniper-bowl-bot/internal/domain"
	"sniper-bowl-bot/internal/storage"
)

type chatMintKey struct {
	chatID int64
	mint   string
}

// PickStore is an in-memory implementation of storage.PickStore.
type PickStore struct {
	mu     sync.RWMutex
	data   []*domain.Pick // insertion order
	byMint map[chatMintKey]*domain.Pick
}

// NewPickStore creates a new in-memory pick store.
func NewPickStore() *PickStore {
	return &PickStore{
		byMint: make(map[chatMintKey]*domain.Pick),
	}
}

// Insert adds a new pick. Returns ErrDuplicateKey if (chat_id, mint_address) exists.
func (s *PickStore) Insert(_ context.Context, p *domain.Pick) error {
	if p == nil || p.ID == "" || p.MintAddress == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := chatMintKey{p.ChatID, p.MintAddress}
	if _, exists := s.byMint[key]; exists {
		return storage.ErrDuplicateKey
	}

	// Store a copy to prevent external mutation
	pickCopy := *p
	s.data = append(s.data, &pickCopy)
	s.byMint[key] = &pickCopy
	return nil
}

// GetByChat retrieves all picks in a chat.
func (s *PickStore) GetByChat(_ context.Context, chatID int64) ([]*domain.Pick, error) {
	return s.filter(func(p *domain.Pick) bool {
		return p.ChatID == chatID
	}), nil
}

// GetByChatUser retrieves all picks made by a user in a chat.
func (s *PickStore) GetByChatUser(_ context.Context, chatID, userID int64) ([]*domain.Pick, error) {
	return s.filter(func(p *domain.Pick) bool {
		return p.ChatID == chatID && p.UserID == userID
	}), nil
}

// GetByChatMint retrieves the pick for a mint in a chat. Returns ErrNotFound if not exists.
func (s *PickStore) GetByChatMint(_ context.Context, chatID int64, mint string) (*domain.Pick, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, exists := s.byMint[chatMintKey{chatID, mint}]
	if !exists {
		return nil, storage.ErrNotFound
	}

	pickCopy := *p
	return &pickCopy, nil
}

// Len returns the number of stored picks.
func (s *PickStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}

func (s *PickStore) filter(match func(*domain.Pick) bool) []*domain.Pick {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Pick
	for _, p := range s.data {
		if match(p) {
			pickCopy := *p
			result = append(result, &pickCopy)
		}
	}
	return result
}

// Verify interface compliance at compile time.
var _ storage.PickStore = (*PickStore)(nil)
