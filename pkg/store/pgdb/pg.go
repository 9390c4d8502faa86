// Package pgdb implements the durable store on PostgreSQL via bun.
package pgdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"

	"github.com/chainscope/redeemscan/pkg/store"
)

type pgStore struct {
	db *bun.DB
}

var _ store.Store = (*pgStore)(nil)

// NewStore creates a new postgres implementation of the durable store
func NewStore(db *bun.DB) *pgStore {
	return &pgStore{db: db}
}

func (s *pgStore) GetRedemption(ctx context.Context, network, srcTxHash string) (string, error) {
	dao := new(RedemptionDao)
	err := s.db.NewSelect().
		Model(dao).
		Where("network = ?", network).
		Where("source_tx_hash = ?", store.NormalizeTxHash(srcTxHash)).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", store.ErrNotFound
		}
		return "", fmt.Errorf("failed to get redemption: %w", err)
	}

	return dao.RedeemTxHash, nil
}

func (s *pgStore) PutRedemption(ctx context.Context, network, srcTxHash, redeemTxHash string) error {
	dao := &RedemptionDao{
		Network:      network,
		SourceTxHash: store.NormalizeTxHash(srcTxHash),
		RedeemTxHash: redeemTxHash,
	}

	// Last writer wins on conflicting inserts for the same source tx.
	_, err := s.db.NewInsert().
		Model(dao).
		On("CONFLICT (network, source_tx_hash) DO UPDATE").
		Set("redeem_tx_hash = EXCLUDED.redeem_tx_hash").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to put redemption: %w", err)
	}

	return nil
}

func (s *pgStore) GetTokenMeta(ctx context.Context, chain, address string) (store.TokenMeta, error) {
	dao := new(TokenMetaDao)
	err := s.db.NewSelect().
		Model(dao).
		Where("chain = ?", chain).
		Where("address = ?", store.NormalizeTxHash(address)).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return store.TokenMeta{}, store.ErrNotFound
		}
		return store.TokenMeta{}, fmt.Errorf("failed to get token meta: %w", err)
	}

	return store.TokenMeta{Symbol: dao.Symbol, Decimals: dao.Decimals}, nil
}

func (s *pgStore) PutTokenMeta(ctx context.Context, chain, address string, meta store.TokenMeta) error {
	dao := &TokenMetaDao{
		Chain:    chain,
		Address:  store.NormalizeTxHash(address),
		Symbol:   meta.Symbol,
		Decimals: meta.Decimals,
	}

	_, err := s.db.NewInsert().
		Model(dao).
		On("CONFLICT (chain, address) DO UPDATE").
		Set("symbol = EXCLUDED.symbol").
		Set("decimals = EXCLUDED.decimals").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to put token meta: %w", err)
	}

	return nil
}

func (s *pgStore) Close() error {
	return s.db.Close()
}
