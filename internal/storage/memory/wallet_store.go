package memory

import (
	"context"
	"sync"

	"sniper-bowl-bot/internal/domain"
	"sniper-bowl-bot/internal/storage"
)

type chatWalletKey struct {
	chatID int64
	wallet string
}

type chatUserKey struct {
	chatID int64
	userID int64
}

// WalletStore is an in-memory implementation of storage.WalletStore.
type WalletStore struct {
	mu       sync.RWMutex
	data     []*domain.WalletRegistration // insertion order
	byWallet map[chatWalletKey]*domain.WalletRegistration
	byUser   map[chatUserKey]*domain.WalletRegistration
}

// NewWalletStore creates a new in-memory wallet store.
func NewWalletStore() *WalletStore {
	return &WalletStore{
		byWallet: make(map[chatWalletKey]*domain.WalletRegistration),
		byUser:   make(map[chatUserKey]*domain.WalletRegistration),
	}
}

// Insert adds a new registration.
// Returns ErrDuplicateKey if (chat_id, wallet_address) or (chat_id, user_id) exists.
func (s *WalletStore) Insert(_ context.Context, w *domain.WalletRegistration) error {
	if w == nil || w.ID == "" || w.WalletAddress == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	wk := chatWalletKey{w.ChatID, w.WalletAddress}
	uk := chatUserKey{w.ChatID, w.UserID}
	if _, exists := s.byWallet[wk]; exists {
		return storage.ErrDuplicateKey
	}
	if _, exists := s.byUser[uk]; exists {
		return storage.ErrDuplicateKey
	}

	walletCopy := *w
	s.data = append(s.data, &walletCopy)
	s.byWallet[wk] = &walletCopy
	s.byUser[uk] = &walletCopy
	return nil
}

// GetByChat retrieves all registrations in a chat.
func (s *WalletStore) GetByChat(_ context.Context, chatID int64) ([]*domain.WalletRegistration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.WalletRegistration
	for _, w := range s.data {
		if w.ChatID == chatID {
			walletCopy := *w
			result = append(result, &walletCopy)
		}
	}
	return result, nil
}

// GetByChatWallet retrieves the registration of a wallet in a chat. Returns ErrNotFound if not exists.
func (s *WalletStore) GetByChatWallet(_ context.Context, chatID int64, wallet string) (*domain.WalletRegistration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	w, exists := s.byWallet[chatWalletKey{chatID, wallet}]
	if !exists {
		return nil, storage.ErrNotFound
	}
	walletCopy := *w
	return &walletCopy, nil
}

// GetByChatUser retrieves the registration of a user in a chat. Returns ErrNotFound if not exists.
func (s *WalletStore) GetByChatUser(_ context.Context, chatID, userID int64) (*domain.WalletRegistration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	w, exists := s.byUser[chatUserKey{chatID, userID}]
	if !exists {
		return nil, storage.ErrNotFound
	}
	walletCopy := *w
	return &walletCopy, nil
}

// Len returns the number of stored registrations.
func (s *WalletStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}

var _ storage.WalletStore = (*WalletStore)(nil)
