package migrations

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

type legacyColumn struct {
	table      string
	column     string
	definition string
}

// Catalog files from older app builds are missing some of these. Only
// nullable or defaulted columns belong here.
var legacyColumns = []legacyColumn{
	{"users", "phone", "TEXT"},
	{"users", "is_active", "BOOLEAN NOT NULL DEFAULT 1"},
	{"books", "created_at", "TIMESTAMP"},
	{"books", "views", "INTEGER NOT NULL DEFAULT 0"},
	{"books", "rating", "REAL NOT NULL DEFAULT 0"},
	{"books", "rating_count", "INTEGER NOT NULL DEFAULT 0"},
}

func init() {
	up := func(ctx context.Context, db *bun.DB) error {
		for _, lc := range legacyColumns {
			exists, err := columnExists(ctx, db, lc.table, lc.column)
			if err != nil {
				return err
			}
			if exists {
				continue
			}
			_, err = db.ExecContext(ctx, fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", lc.table, lc.column, lc.definition))
			if err != nil {
				return errors.Wrapf(err, "failed to add %s.%s", lc.table, lc.column)
			}
		}
		return nil
	}

	down := func(_ context.Context, _ *bun.DB) error {
		return nil
	}

	Migrations.MustRegister(up, down)
}

func columnExists(ctx context.Context, db *bun.DB, table, column string) (bool, error) {
	var count int
	err := db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM pragma_table_info(?) WHERE name = ?", table, column,
	).Scan(&count)
	if err != nil {
		return false, errors.WithStack(err)
	}
	return count > 0, nil
}
