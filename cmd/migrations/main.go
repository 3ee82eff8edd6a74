package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
	"github.com/shishobooks/shelf/pkg/config"
	"github.com/shishobooks/shelf/pkg/database"
	"github.com/shishobooks/shelf/pkg/migrations"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/migrate"
	"github.com/urfave/cli/v2"
)

func main() {
	log := logger.New()

	cfg, err := config.New()
	if err != nil {
		log.Err(err).Fatal("config error")
	}

	// Fatal exits without running defers, so the database is closed inside run.
	if err := run(cfg, os.Args); err != nil {
		log.Err(err).Fatal("app run error")
	}
}

func run(cfg *config.Config, args []string) error {
	db, err := database.New(cfg)
	if err != nil {
		return errors.Wrap(err, "database error")
	}
	defer db.Close()

	return newApp(db).Run(args)
}

// tableCount is the row count of one catalog table. Missing is set when the
// table hasn't been created yet.
type tableCount struct {
	Table   string
	Rows    int
	Missing bool
}

func tableCounts(ctx context.Context, db bun.IDB) ([]tableCount, error) {
	counts := make([]tableCount, 0, len(migrations.Tables))
	for _, table := range migrations.Tables {
		n, err := db.NewSelect().TableExpr(table).Count(ctx)
		if database.IsMissingTable(err) {
			counts = append(counts, tableCount{Table: table, Missing: true})
			continue
		}
		if err != nil {
			return nil, errors.WithStack(err)
		}
		counts = append(counts, tableCount{Table: table, Rows: n})
	}
	return counts, nil
}

func newApp(db *bun.DB) *cli.App {
	app := &cli.App{
		Name:        "migrations",
		Usage:       "manage the shelf catalog schema",
		Description: "Creates and upgrades the catalog tables. Catalog files written by the old mobile app are adopted in place.",
		Commands: []*cli.Command{
			{
				Name:  "init",
				Usage: "create migration tables",
				Action: func(c *cli.Context) error {
					migrator := migrate.NewMigrator(db, migrations.Migrations)
					return migrator.Init(c.Context)
				},
			},
			{
				Name:  "migrate",
				Usage: "create missing catalog tables, columns and indexes",
				Action: func(c *cli.Context) error {
					group, err := migrations.BringUpToDate(c.Context, db)
					if err != nil {
						return err
					}

					if group.ID == 0 {
						fmt.Printf("Catalog schema is already up to date\n")
						return nil
					}

					fmt.Printf("Migrated to %s\n", group)
					return nil
				},
			},
			{
				Name:  "rollback",
				Usage: "rollback the last migration group",
				Action: func(c *cli.Context) error {
					migrator := migrate.NewMigrator(db, migrations.Migrations)

					group, err := migrator.Rollback(c.Context)
					if err != nil {
						return err
					}

					if group.ID == 0 {
						fmt.Printf("There are no groups to roll back\n")
						return nil
					}

					fmt.Printf("Rolled back %s\n", group)
					return nil
				},
			},
			{
				Name:  "create",
				Usage: "create Go migration",
				Action: func(c *cli.Context) error {
					migrator := migrate.NewMigrator(db, migrations.Migrations)

					name := strings.Join(c.Args().Slice(), "_")
					mf, err := migrator.CreateGoMigration(
						c.Context,
						name,
						migrate.WithGoTemplate(migrationTemplate),
					)
					if err != nil {
						return err
					}
					fmt.Printf("Created migration %s (%s)\n", mf.Name, mf.Path)

					return nil
				},
			},
			{
				Name:  "status",
				Usage: "print migrations status and catalog row counts",
				Action: func(c *cli.Context) error {
					migrator := migrate.NewMigrator(db, migrations.Migrations)

					ms, err := migrator.MigrationsWithStatus(c.Context)
					if err != nil {
						return err
					}
					fmt.Printf("Migrations: %s\n", ms)
					fmt.Printf("Unapplied migrations: %s\n", ms.Unapplied())
					fmt.Printf("Last migration group: %s\n", ms.LastGroup())

					counts, err := tableCounts(c.Context, db)
					if err != nil {
						return err
					}
					fmt.Printf("Catalog tables:\n")
					for _, tc := range counts {
						if tc.Missing {
							fmt.Printf("  %-18s missing\n", tc.Table)
							continue
						}
						fmt.Printf("  %-18s %d rows\n", tc.Table, tc.Rows)
					}

					return nil
				},
			},
		},
	}
	return app
}

const migrationTemplate = `package %s

import (
	"context"

	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

func init() {
	up := func(_ context.Context, db *bun.DB) error {
		_, err := db.Exec("")
		return errors.WithStack(err)
	}

	down := func(_ context.Context, db *bun.DB) error {
		_, err := db.Exec("")
		return errors.WithStack(err)
	}

	Migrations.MustRegister(up, down)
}
`
