package pgdb

import (
	"time"

	"github.com/uptrace/bun"
)

// RedemptionDao is a data access object that maps directly to the 'redemptions' table in PostgreSQL.
type RedemptionDao struct {
	bun.BaseModel `bun:"table:redemptions,alias:r"`
	ID            int64     `bun:"id,pk,autoincrement"`
	Network       string    `bun:"network,notnull,type:varchar(16),unique:redemptions_network_source_key"`
	SourceTxHash  string    `bun:"source_tx_hash,notnull,type:varchar(128),unique:redemptions_network_source_key"`
	RedeemTxHash  string    `bun:"redeem_tx_hash,notnull,type:varchar(128)"`
	CreatedAt     time.Time `bun:"created_at,nullzero,default:current_timestamp"`
}

// TokenMetaDao is a data access object that maps directly to the 'token_meta' table in PostgreSQL.
type TokenMetaDao struct {
	bun.BaseModel `bun:"table:token_meta,alias:tm"`
	ID            int64     `bun:"id,pk,autoincrement"`
	Chain         string    `bun:"chain,notnull,type:varchar(32),unique:token_meta_chain_address_key"`
	Address       string    `bun:"address,notnull,type:varchar(128),unique:token_meta_chain_address_key"`
	Symbol        string    `bun:"symbol,notnull,type:varchar(64)"`
	Decimals      uint8     `bun:"decimals,notnull,type:smallint"`
	CreatedAt     time.Time `bun:"created_at,nullzero,default:current_timestamp"`
}
