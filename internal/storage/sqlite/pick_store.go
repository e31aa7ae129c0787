package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"sniper-bowl-bot/internal/domain"
	"sniper-bowl-bot/internal/storage"
)

const pickColumns = `id, chat_id, user_id, username, mint_address, cost_basis_usd, num_tokens, created_at`

// PickStore implements storage.PickStore using SQLite.
type PickStore struct {
	db *DB
}

// NewPickStore creates a new PickStore.
func NewPickStore(db *DB) *PickStore {
	return &PickStore{db: db}
}

var _ storage.PickStore = (*PickStore)(nil)

// Insert adds a new pick. Returns ErrDuplicateKey if (chat_id, mint_address) exists.
func (s *PickStore) Insert(ctx context.Context, p *domain.Pick) error {
	if p == nil || p.ID == "" || p.MintAddress == "" {
		return storage.ErrInvalidInput
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO picks (`+pickColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.ChatID, p.UserID, p.Username, p.MintAddress, p.CostBasisUSD, p.NumTokens, p.CreatedAt,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert pick: %w", err)
	}
	return nil
}

// GetByChat retrieves all picks in a chat.
func (s *PickStore) GetByChat(ctx context.Context, chatID int64) ([]*domain.Pick, error) {
	return s.query(ctx, `SELECT `+pickColumns+` FROM picks WHERE chat_id = ? ORDER BY seq`, chatID)
}

// GetByChatUser retrieves all picks made by a user in a chat.
func (s *PickStore) GetByChatUser(ctx context.Context, chatID, userID int64) ([]*domain.Pick, error) {
	return s.query(ctx, `SELECT `+pickColumns+` FROM picks WHERE chat_id = ? AND user_id = ? ORDER BY seq`, chatID, userID)
}

// GetByChatMint retrieves the pick for a mint in a chat. Returns ErrNotFound if not exists.
func (s *PickStore) GetByChatMint(ctx context.Context, chatID int64, mint string) (*domain.Pick, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+pickColumns+` FROM picks WHERE chat_id = ? AND mint_address = ?`, chatID, mint)
	p, err := scanPick(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get pick by chat mint: %w", err)
	}
	return p, nil
}

func (s *PickStore) query(ctx context.Context, query string, args ...any) ([]*domain.Pick, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query picks: %w", err)
	}
	defer rows.Close()

	var picks []*domain.Pick
	for rows.Next() {
		p, err := scanPick(rows)
		if err != nil {
			return nil, fmt.Errorf("scan pick row: %w", err)
		}
		picks = append(picks, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pick rows: %w", err)
	}
	return picks, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPick(row scanner) (*domain.Pick, error) {
	var p domain.Pick
	if err := row.Scan(&p.ID, &p.ChatID, &p.UserID, &p.Username, &p.MintAddress, &p.CostBasisUSD, &p.NumTokens, &p.CreatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}
