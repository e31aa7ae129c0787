package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"sniper-bowl-bot/internal/domain"
	"sniper-bowl-bot/internal/storage"
)

const pickColumns = `id, chat_id, user_id, username, mint_address, cost_basis_usd, num_tokens, created_at`

// PickStore implements storage.PickStore using PostgreSQL.
type PickStore struct {
	pool *Pool
}

// NewPickStore creates a new PickStore.
func NewPickStore(pool *Pool) *PickStore {
	return &PickStore{pool: pool}
}

// Compile-time interface check.
var _ storage.PickStore = (*PickStore)(nil)

// Insert adds a new pick. The picks_chat_mint_unique constraint serializes
// concurrent shills of the same mint; the loser gets ErrDuplicateKey.
func (s *PickStore) Insert(ctx context.Context, p *domain.Pick) error {
	if p == nil || p.ID == "" || p.MintAddress == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO picks (` + pickColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := s.pool.Exec(ctx, query,
		p.ID,
		p.ChatID,
		p.UserID,
		p.Username,
		p.MintAddress,
		p.CostBasisUSD,
		p.NumTokens,
		p.CreatedAt,
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
	query := `SELECT ` + pickColumns + ` FROM picks WHERE chat_id = $1 ORDER BY seq ASC`

	rows, err := s.pool.Query(ctx, query, chatID)
	if err != nil {
		return nil, fmt.Errorf("get picks by chat: %w", err)
	}
	defer rows.Close()

	return scanPicks(rows)
}

// GetByChatUser retrieves all picks made by a user in a chat.
func (s *PickStore) GetByChatUser(ctx context.Context, chatID, userID int64) ([]*domain.Pick, error) {
	query := `SELECT ` + pickColumns + ` FROM picks WHERE chat_id = $1 AND user_id = $2 ORDER BY seq ASC`

	rows, err := s.pool.Query(ctx, query, chatID, userID)
	if err != nil {
		return nil, fmt.Errorf("get picks by chat user: %w", err)
	}
	defer rows.Close()

	return scanPicks(rows)
}

// GetByChatMint retrieves the pick for a mint in a chat. Returns ErrNotFound if not exists.
func (s *PickStore) GetByChatMint(ctx context.Context, chatID int64, mint string) (*domain.Pick, error) {
	query := `SELECT ` + pickColumns + ` FROM picks WHERE chat_id = $1 AND mint_address = $2`

	p, err := scanPick(s.pool.QueryRow(ctx, query, chatID, mint))
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get pick by chat mint: %w", err)
	}
	return p, nil
}

func scanPick(row pgx.Row) (*domain.Pick, error) {
	var p domain.Pick
	err := row.Scan(
		&p.ID,
		&p.ChatID,
		&p.UserID,
		&p.Username,
		&p.MintAddress,
		&p.CostBasisUSD,
		&p.NumTokens,
		&p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func scanPicks(rows pgx.Rows) ([]*domain.Pick, error) {
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
