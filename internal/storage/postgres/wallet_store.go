package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"sniper-bowl-bot/internal/domain"
	"sniper-bowl-bot/internal/storage"
)

const walletColumns = `id, chat_id, user_id, username, wallet_address, start_usd_value, created_at`

// WalletStore implements storage.WalletStore using PostgreSQL.
type WalletStore struct {
	pool *Pool
}

// NewWalletStore creates a new WalletStore.
func NewWalletStore(pool *Pool) *WalletStore {
	return &WalletStore{pool: pool}
}

// Compile-time interface check.
var _ storage.WalletStore = (*WalletStore)(nil)

// Insert adds a new registration. Both (chat_id, wallet_address) and
// (chat_id, user_id) are unique; either violation yields ErrDuplicateKey.
func (s *WalletStore) Insert(ctx context.Context, w *domain.WalletRegistration) error {
	if w == nil || w.ID == "" || w.WalletAddress == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO wallets (` + walletColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := s.pool.Exec(ctx, query,
		w.ID,
		w.ChatID,
		w.UserID,
		w.Username,
		w.WalletAddress,
		w.StartUSDValue,
		w.CreatedAt,
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
	query := `SELECT ` + walletColumns + ` FROM wallets WHERE chat_id = $1 ORDER BY seq ASC`

	rows, err := s.pool.Query(ctx, query, chatID)
	if err != nil {
		return nil, fmt.Errorf("get wallets by chat: %w", err)
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
	query := `SELECT ` + walletColumns + ` FROM wallets WHERE chat_id = $1 AND wallet_address = $2`
	return s.getOne(ctx, "get wallet by chat wallet", query, chatID, wallet)
}

// GetByChatUser retrieves the registration of a user in a chat. Returns ErrNotFound if not exists.
func (s *WalletStore) GetByChatUser(ctx context.Context, chatID, userID int64) (*domain.WalletRegistration, error) {
	query := `SELECT ` + walletColumns + ` FROM wallets WHERE chat_id = $1 AND user_id = $2`
	return s.getOne(ctx, "get wallet by chat user", query, chatID, userID)
}

func (s *WalletStore) getOne(ctx context.Context, op, query string, args ...any) (*domain.WalletRegistration, error) {
	w, err := scanWallet(s.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return w, nil
}

func scanWallet(row pgx.Row) (*domain.WalletRegistration, error) {
	var w domain.WalletRegistration
	err := row.Scan(
		&w.ID,
		&w.ChatID,
		&w.UserID,
		&w.Username,
		&w.WalletAddress,
		&w.StartUSDValue,
		&w.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &w, nil
}
