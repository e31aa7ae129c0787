package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"sniper-bowl-bot/internal/domain"
	"sniper-bowl-bot/internal/storage"
)

const walletColumns = `id, chat_id, user_id, username, wallet_address, start_usd_value, created_at`

// WalletStore implements storage.WalletStore using SQLite.
type WalletStore struct {
	db *DB
}

// NewWalletStore creates a new WalletStore.
func NewWalletStore(db *DB) *WalletStore {
	return &WalletStore{db: db}
}

var _ storage.WalletStore = (*WalletStore)(nil)

// Insert adds a new registration.
// Returns ErrDuplicateKey if (chat_id, wallet_address) or (chat_id, user_id) exists.
func (s *WalletStore) Insert(ctx context.Context, w *domain.WalletRegistration) error {
	if w == nil || w.ID == "" || w.WalletAddress == "" {
		return storage.ErrInvalidInput
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO wallets (`+walletColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		w.ID, w.ChatID, w.UserID, w.Username, w.WalletAddress, w.StartUSDValue, w.CreatedAt,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert wallet: %w", err)
	}
	return nil
}

// GetByChat retrieves all registrations in a chat.
func (s *WalletStore) GetByChat(ctx context.Context, chatID int64) ([]*domain.WalletRegistration, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+walletColumns+` FROM wallets WHERE chat_id = ? ORDER BY seq`, chatID)
	if err != nil {
		return nil, fmt.Errorf("query wallets: %w", err)
	}
	defer rows.Close()

	var wallets []*domain.WalletRegistration
	for rows.Next() {
		w, err := scanWallet(rows)
		if err != nil {
			return nil, fmt.Errorf("scan wallet row: %w", err)
		}
		wallets = append(wallets, w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate wallet rows: %w", err)
	}
	return wallets, nil
}

// GetByChatWallet retrieves the registration of a wallet in a chat. Returns ErrNotFound if not exists.
func (s *WalletStore) GetByChatWallet(ctx context.Context, chatID int64, wallet string) (*domain.WalletRegistration, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+walletColumns+` FROM wallets WHERE chat_id = ? AND wallet_address = ?`, chatID, wallet)
	return getOne(row)
}

// GetByChatUser retrieves the registration of a user in a chat. Returns ErrNotFound if not exists.
func (s *WalletStore) GetByChatUser(ctx context.Context, chatID, userID int64) (*domain.WalletRegistration, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+walletColumns+` FROM wallets WHERE chat_id = ? AND user_id = ?`, chatID, userID)
	return getOne(row)
}

func getOne(row *sql.Row) (*domain.WalletRegistration, error) {
	w, err := scanWallet(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get wallet: %w", err)
	}
	return w, nil
}

func scanWallet(row scanner) (*domain.WalletRegistration, error) {
	var w domain.WalletRegistration
	if err := row.Scan(&w.ID, &w.ChatID, &w.UserID, &w.Username, &w.WalletAddress, &w.StartUSDValue, &w.CreatedAt); err != nil {
		return nil, err
	}
	return &w, nil
}
