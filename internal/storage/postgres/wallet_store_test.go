package postgres

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sniper-bowl-bot/internal/domain"
	"sniper-bowl-bot/internal/storage"
)

func testWallet(id string, chatID, userID int64, addr string) *domain.WalletRegistration {
	return &domain.WalletRegistration{
		ID:            id,
		ChatID:        chatID,
		UserID:        userID,
		Username:      "bob",
		WalletAddress: addr,
		StartUSDValue: 80.5,
		CreatedAt:     1700000000000,
	}
}

func TestWalletStore_InsertAndLookups(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewWalletStore(pool)

	w := testWallet("w-1", 1, 42, "WalletA")
	require.NoError(t, store.Insert(ctx, w))

	byWallet, err := store.GetByChatWallet(ctx, 1, "WalletA")
	require.NoError(t, err)
	assert.Equal(t, w, byWallet)

	byUser, err := store.GetByChatUser(ctx, 1, 42)
	require.NoError(t, err)
	assert.Equal(t, w, byUser)

	_, err = store.GetByChatUser(ctx, 2, 42)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestWalletStore_UniqueConstraints(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewWalletStore(pool)

	require.NoError(t, store.Insert(ctx, testWallet("w-1", 1, 42, "WalletA")))

	// wallet reuse by another user
	assert.ErrorIs(t, store.Insert(ctx, testWallet("w-2", 1, 43, "WalletA")), storage.ErrDuplicateKey)
	// second wallet for the same user
	assert.ErrorIs(t, store.Insert(ctx, testWallet("w-3", 1, 42, "WalletB")), storage.ErrDuplicateKey)
	// another chat is independent
	require.NoError(t, store.Insert(ctx, testWallet("w-4", 2, 42, "WalletA")))

	wallets, err := store.GetByChat(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, wallets, 1)
}
