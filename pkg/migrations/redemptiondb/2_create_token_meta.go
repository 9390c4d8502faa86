package redemptiondb

import (
	"context"
	"log"

	"github.com/uptrace/bun"

	mghelper "github.com/chainscope/redeemscan/pkg/pgutil/migrations"
	"github.com/chainscope/redeemscan/pkg/store/pgdb"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		log.Println("creating token_meta table...")
		return mghelper.CreateSchema(ctx, db, &pgdb.TokenMetaDao{})
	}, func(ctx context.Context, db *bun.DB) error {
		log.Println("dropping token_meta table...")
		return mghelper.DropTables(ctx, db, &pgdb.TokenMetaDao{})
	})
}
