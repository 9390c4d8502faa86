// Package pebbledb implements the durable store on an embedded pebble
// database. It is the default backend and needs no external service.
package pebbledb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/cockroachdb/pebble"

	"github.com/chainscope/redeemscan/pkg/store"
)

type Store struct {
	db *pebble.DB
}

var _ store.Store = (*Store)(nil)

// New opens (or creates) the pebble database under storeDir.
func New(storeDir string) (*Store, error) {
	db, err := pebble.Open(filepath.Join(storeDir, "redemption-store"), &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("opening pebble db: %v", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) GetRedemption(_ context.Context, network, srcTxHash string) (string, error) {
	value, err := s.get([]byte(store.RedemptionKey(network, srcTxHash)))
	if err != nil {
		return "", err
	}
	return string(value), nil
}

func (s *Store) PutRedemption(_ context.Context, network, srcTxHash, redeemTxHash string) error {
	key := []byte(store.RedemptionKey(network, srcTxHash))
	if err := s.db.Set(key, []byte(redeemTxHash), pebble.Sync); err != nil {
		return fmt.Errorf("setting redemption: %v", err)
	}
	return nil
}

func (s *Store) GetTokenMeta(_ context.Context, chain, address string) (store.TokenMeta, error) {
	value, err := s.get([]byte(store.TokenMetaKey(chain, address)))
	if err != nil {
		return store.TokenMeta{}, err
	}

	var meta store.TokenMeta
	if err := json.Unmarshal(value, &meta); err != nil {
		return store.TokenMeta{}, fmt.Errorf("decoding token meta: %v", err)
	}
	return meta, nil
}

func (s *Store) PutTokenMeta(_ context.Context, chain, address string, meta store.TokenMeta) error {
	value, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("encoding token meta: %v", err)
	}
	if err := s.db.Set([]byte(store.TokenMetaKey(chain, address)), value, pebble.Sync); err != nil {
		return fmt.Errorf("setting token meta: %v", err)
	}
	return nil
}

func (s *Store) get(key []byte) ([]byte, error) {
	value, closer, err := s.db.Get(key)
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting key: %v", err)
	}
	defer closer.Close()

	out := make([]byte, len(value))
	copy(out, value)

	return out, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}
