package clickhouse

import (
	"context"
	"fmt"

	"sniper-bowl-bot/internal/domain"
	"sniper-bowl-bot/internal/storage"
)

// PriceObservationStore implements storage.PriceObservationStore using ClickHouse.
type PriceObservationStore struct {
	conn *Conn
}

// NewPriceObservationStore creates a new PriceObservationStore.
func NewPriceObservationStore(conn *Conn) *PriceObservationStore {
	return &PriceObservationStore{conn: conn}
}

// Compile-time interface check.
var _ storage.PriceObservationStore = (*PriceObservationStore)(nil)

// InsertBulk appends observations in a single batch. Repeated prices are kept.
func (s *PriceObservationStore) InsertBulk(ctx context.Context, obs []*domain.PriceObservation) error {
	if len(obs) == 0 {
		return nil
	}
	for _, o := range obs {
		if o == nil {
			return storage.ErrInvalidInput
		}
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO price_observations (
			observed_at, chat_id, board, kind, mint, price_native, native_usd
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, o := range obs {
		err = batch.Append(
			uint64(o.ObservedAt), o.ChatID, o.Board, o.Kind,
			o.Mint, o.PriceNative, o.NativeUSD,
		)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}
	return nil
}

// GetByChat retrieves observations for a chat within [start, end] (inclusive).
func (s *PriceObservationStore) GetByChat(ctx context.Context, chatID int64, start, end int64) ([]*domain.PriceObservation, error) {
	query := `
		SELECT observed_at, chat_id, board, kind, mint, price_native, native_usd
		FROM price_observations
		WHERE chat_id = ? AND observed_at >= ? AND observed_at <= ?
		ORDER BY observed_at ASC, kind ASC, mint ASC
	`

	rows, err := s.conn.Query(ctx, query, chatID, uint64(start), uint64(end))
	if err != nil {
		return nil, fmt.Errorf("query price observations: %w", err)
	}
	defer rows.Close()

	var result []*domain.PriceObservation
	for rows.Next() {
		var o domain.PriceObservation
		var observedAt uint64
		if err := rows.Scan(
			&observedAt, &o.ChatID, &o.Board, &o.Kind,
			&o.Mint, &o.PriceNative, &o.NativeUSD,
		); err != nil {
			return nil, fmt.Errorf("scan price observation row: %w", err)
		}
		o.ObservedAt = int64(observedAt)
		result = append(result, &o)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate price observation rows: %w", err)
	}
	return result, nil
}
