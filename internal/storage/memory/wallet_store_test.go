package memory

import (
	"context"
	"errors"
	"testing"

	"sniper-bowl-bot/internal/domain"
	"sniper-bowl-bot/internal/storage"
)

func newWallet(id string, chatID, userID int64, addr string) *domain.WalletRegistration {
	return &domain.WalletRegistration{
		ID:            id,
		ChatID:        chatID,
		UserID:        userID,
		Username:      "user" + id,
		WalletAddress: addr,
		StartUSDValue: 80,
		CreatedAt:     1704067200000,
	}
}

func TestWalletStore_InsertAndLookups(t *testing.T) {
	store := NewWalletStore()
	ctx := context.Background()

	if err := store.Insert(ctx, newWallet("w1", 100, 1, "WalletA")); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	byWallet, err := store.GetByChatWallet(ctx, 100, "WalletA")
	if err != nil {
		t.Fatalf("GetByChatWallet failed: %v", err)
	}
	if byWallet.UserID != 1 {
		t.Errorf("UserID = %d, want 1", byWallet.UserID)
	}

	byUser, err := store.GetByChatUser(ctx, 100, 1)
	if err != nil {
		t.Fatalf("GetByChatUser failed: %v", err)
	}
	if byUser.WalletAddress != "WalletA" {
		t.Errorf("WalletAddress = %s, want WalletA", byUser.WalletAddress)
	}

	if _, err := store.GetByChatUser(ctx, 100, 2); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestWalletStore_UniqueWalletPerChat(t *testing.T) {
	store := NewWalletStore()
	ctx := context.Background()

	if err := store.Insert(ctx, newWallet("w1", 100, 1, "WalletA")); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	// Another user reusing the same wallet in the same chat
	err := store.Insert(ctx, newWallet("w2", 100, 2, "WalletA"))
	if !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("expected ErrDuplicateKey, got %v", err)
	}

	// Same wallet in another chat is allowed
	if err := store.Insert(ctx, newWallet("w3", 200, 2, "WalletA")); err != nil {
		t.Errorf("Insert in other chat failed: %v", err)
	}
}

func TestWalletStore_UniqueUserPerChat(t *testing.T) {
	store := NewWalletStore()
	ctx := context.Background()

	if err := store.Insert(ctx, newWallet("w1", 100, 1, "WalletA")); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	err := store.Insert(ctx, newWallet("w2", 100, 1, "WalletB"))
	if !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("expected ErrDuplicateKey, got %v", err)
	}

	// The rejected insert must not leave a partial index entry behind
	if _, err := store.GetByChatWallet(ctx, 100, "WalletB"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound for rejected wallet, got %v", err)
	}
	if store.Len() != 1 {
		t.Errorf("expected 1 registration, got %d", store.Len())
	}
}

func TestWalletStore_GetByChatOrder(t *testing.T) {
	store := NewWalletStore()
	ctx := context.Background()

	store.Insert(ctx, newWallet("w1", 100, 1, "A"))
	store.Insert(ctx, newWallet("w2", 200, 2, "B"))
	store.Insert(ctx, newWallet("w3", 100, 3, "C"))

	wallets, err := store.GetByChat(ctx, 100)
	if err != nil {
		t.Fatalf("GetByChat failed: %v", err)
	}
	if len(wallets) != 2 || wallets[0].ID != "w1" || wallets[1].ID != "w3" {
		t.Errorf("unexpected wallets: %+v", wallets)
	}
}
