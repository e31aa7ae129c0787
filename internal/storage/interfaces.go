package storage

import (
	"context"

	"sniper-bowl-bot/internal/domain"
)

// PickStore provides access to picks storage.
// Results are returned in insertion order.
type PickStore interface {
	// Insert adds a new pick. Returns ErrDuplicateKey if (chat_id, mint_address) exists.
	Insert(ctx context.Context, p *domain.Pick) error

	// GetByChat retrieves all picks in a chat.
	GetByChat(ctx context.Context, chatID int64) ([]*domain.Pick, error)

	// GetByChatUser retrieves all picks made by a user in a chat.
	GetByChatUser(ctx context.Context, chatID, userID int64) ([]*domain.Pick, error)

	// GetByChatMint retrieves the pick for a mint in a chat. Returns ErrNotFound if not exists.
	GetByChatMint(ctx context.Context, chatID int64, mint string) (*domain.Pick, error)
}

// WalletStore provides access to wallets storage.
// Results are returned in insertion order.
type WalletStore interface {
	// Insert adds a new registration.
	// Returns ErrDuplicateKey if (chat_id, wallet_address) or (chat_id, user_id) exists.
	Insert(ctx context.Context, w *domain.WalletRegistration) error

	// GetByChat retrieves all registrations in a chat.
	GetByChat(ctx context.Context, chatID int64) ([]*domain.WalletRegistration, error)

	// GetByChatWallet retrieves the registration of a wallet in a chat. Returns ErrNotFound if not exists.
	GetByChatWallet(ctx context.Context, chatID int64, wallet string) (*domain.WalletRegistration, error)

	// GetByChatUser retrieves the registration of a user in a chat. Returns ErrNotFound if not exists.
	GetByChatUser(ctx context.Context, chatID, userID int64) (*domain.WalletRegistration, error)
}

// PriceObservationStore provides access to the price tape.
type PriceObservationStore interface {
	// InsertBulk adds multiple observations in one batch.
	InsertBulk(ctx context.Context, obs []*domain.PriceObservation) error

	// GetByChat retrieves observations for a chat within [start, end] (inclusive), ordered by observed_at ASC.
	GetByChat(ctx context.Context, chatID int64, start, end int64) ([]*domain.PriceObservation, error)
}
