package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
	"github.com/shishobooks/shelf/pkg/auth"
	"github.com/shishobooks/shelf/pkg/books"
	"github.com/shishobooks/shelf/pkg/config"
	"github.com/shishobooks/shelf/pkg/database"
	"github.com/shishobooks/shelf/pkg/importer"
	"github.com/shishobooks/shelf/pkg/migrations"
	"github.com/shishobooks/shelf/pkg/stats"
	"github.com/shishobooks/shelf/pkg/users"
	"github.com/uptrace/bun"
	"github.com/urfave/cli/v2"
	"golang.org/x/term"
)

func main() {
	log := logger.New()

	cfg, err := config.New()
	if err != nil {
		log.Err(err).Fatal("config error")
	}

	// Fatal exits without running defers, so the database is opened and
	// closed inside run.
	if err := run(log, cfg, os.Args); err != nil {
		log.Err(err).Fatal("app run error")
	}
}

func run(log logger.Logger, cfg *config.Config, args []string) error {
	db, err := database.New(cfg)
	if err != nil {
		return errors.Wrap(err, "database error")
	}
	defer db.Close()

	return newApp(log, cfg, db).Run(args)
}

func newApp(log logger.Logger, cfg *config.Config, db *bun.DB) *cli.App {
	app := &cli.App{
		Name:  "catalog",
		Usage: "maintenance commands for the shelf catalog",
		Before: func(c *cli.Context) error {
			c.Context = log.WithContext(c.Context)
			_, err := migrations.BringUpToDate(c.Context, db)
			return err
		},
		Commands: []*cli.Command{
			{
				Name:      "import",
				Usage:     "upsert books from a JSON table export",
				ArgsUsage: "<file>",
				Action: func(c *cli.Context) error {
					if c.NArg() != 1 {
						return cli.Exit("expected exactly one export file", 1)
					}
					res, err := importer.New(db).ImportFile(c.Context, c.Args().First())
					if err != nil {
						return err
					}
					fmt.Printf("Imported %d books, skipped %d\n", res.Imported, res.Skipped)
					return nil
				},
			},
			{
				Name:  "prune-unlinked",
				Usage: "delete books that have no PDF link",
				Action: func(c *cli.Context) error {
					n, err := books.NewService(db).PruneUnlinked(c.Context)
					if err != nil {
						return err
					}
					fmt.Printf("Deleted %d books\n", n)
					return nil
				},
			},
			{
				Name:  "snapshot-stats",
				Usage: "record today's totals in the stats history",
				Action: func(c *cli.Context) error {
					stat, err := stats.NewService(db).SnapshotDaily(c.Context, time.Now().UTC())
					if err != nil {
						return err
					}
					fmt.Printf("Recorded %s: %d books, %d users, %d active\n",
						stat.StatDate, stat.TotalBooks, stat.TotalUsers, stat.ActiveUsers)
					return nil
				},
			},
			{
				Name:  "change-admin-password",
				Usage: "change the administrator password",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "username", Value: auth.DefaultAdminUsername},
				},
				Action: func(c *cli.Context) error {
					return changeAdminPassword(c.Context, db, cfg, c.String("username"))
				},
			},
			{
				Name:  "create-user",
				Usage: "create a reader account",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "username", Required: true},
					&cli.StringFlag{Name: "email"},
					&cli.StringFlag{Name: "phone"},
				},
				Action: func(c *cli.Context) error {
					password, err := promptPassword("Password: ")
					if err != nil {
						return err
					}
					opts := users.CreateUserOptions{
						Username: c.String("username"),
						Password: password,
					}
					if c.IsSet("email") {
						email := c.String("email")
						opts.Email = &email
					}
					if c.IsSet("phone") {
						phone := c.String("phone")
						opts.Phone = &phone
					}
					user, err := users.NewService(db).Create(c.Context, opts)
					if err != nil {
						return err
					}
					fmt.Printf("Created user %s (id %d)\n", user.Username, user.ID)
					return nil
				},
			},
		},
	}
	return app
}

func changeAdminPassword(ctx context.Context, db *bun.DB, cfg *config.Config, username string) error {
	svc := auth.NewService(db, cfg.JWTSecret)

	current, err := promptPassword("Current password: ")
	if err != nil {
		return err
	}
	admin, err := svc.Authenticate(ctx, username, current)
	if err != nil {
		return err
	}

	next, err := promptPassword("New password: ")
	if err != nil {
		return err
	}
	confirm, err := promptPassword("Confirm new password: ")
	if err != nil {
		return err
	}
	if next != confirm {
		return cli.Exit("new passwords do not match", 1)
	}

	if err := svc.ChangePassword(ctx, admin.ID, current, next); err != nil {
		return err
	}
	fmt.Println("Password updated")
	return nil
}

func promptPassword(prompt string) (string, error) {
	fmt.Print(prompt)
	b, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", errors.Wrap(err, "failed to read password")
	}
	return strings.TrimSpace(string(b)), nil
}
