package migrations

import (
	"context"

	"github.com/pkg/errors"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/migrate"
)

var Migrations = migrate.NewMigrations()

// Tables lists every catalog table the migrations create.
var Tables = []string{
	"admins",
	"book_views",
	"books",
	"reading_history",
	"reading_sessions",
	"system_stats",
	"users",
	"watchlist",
}

// BringUpToDate creates any missing catalog tables, columns, and indexes. It's
// safe to call on every start and never drops data.
func BringUpToDate(ctx context.Context, db *bun.DB) (*migrate.MigrationGroup, error) {
	migrator := migrate.NewMigrator(db, Migrations)
	err := migrator.Init(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	group, err := migrator.Migrate(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return group, nil
}
