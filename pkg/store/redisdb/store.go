// Package redisdb implements the durable store on redis, for deployments
// that already run one and want the memo shared between replicas.
package redisdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	redis "github.com/redis/go-redis/v9"

	"github.com/chainscope/redeemscan/pkg/store"
)

type Store struct {
	conn *redis.Client
}

var _ store.Store = (*Store)(nil)

// New connects to redis and verifies the connection with a ping.
func New(ctx context.Context, addr, username, password string, db int) (*Store, error) {
	conn := redis.NewClient(&redis.Options{
		Addr:     addr,
		Username: username,
		Password: password,
		DB:       db,
	})

	if err := conn.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return &Store{conn: conn}, nil
}

func (s *Store) GetRedemption(ctx context.Context, network, srcTxHash string) (string, error) {
	val, err := s.conn.Get(ctx, store.RedemptionKey(network, srcTxHash)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			err = store.ErrNotFound
		}
		return "", err
	}
	return val, nil
}

// PutRedemption stores the fact with no expiration. Redeemed transfers do not
// change, so concurrent writers overwriting each other is benign.
func (s *Store) PutRedemption(ctx context.Context, network, srcTxHash, redeemTxHash string) error {
	return s.conn.Set(ctx, store.RedemptionKey(network, srcTxHash), redeemTxHash, 0).Err()
}

func (s *Store) GetTokenMeta(ctx context.Context, chain, address string) (store.TokenMeta, error) {
	val, err := s.conn.Get(ctx, store.TokenMetaKey(chain, address)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			err = store.ErrNotFound
		}
		return store.TokenMeta{}, err
	}

	var meta store.TokenMeta
	if err := json.Unmarshal([]byte(val), &meta); err != nil {
		return store.TokenMeta{}, fmt.Errorf("failed to decode token meta: %w", err)
	}
	return meta, nil
}

func (s *Store) PutTokenMeta(ctx context.Context, chain, address string, meta store.TokenMeta) error {
	val, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("failed to encode token meta: %w", err)
	}
	return s.conn.Set(ctx, store.TokenMetaKey(chain, address), val, 0).Err()
}

func (s *Store) Close() error {
	return s.conn.Close()
}
