// Package redemptiondb holds all the migrations for the locator database
package redemptiondb

import "github.com/uptrace/bun/migrate"

// Migrations is the collection every migration file registers into.
var Migrations = migrate.NewMigrations()
