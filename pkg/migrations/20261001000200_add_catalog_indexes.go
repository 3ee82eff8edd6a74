package migrations

import (
	"context"

	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

func init() {
	up := func(ctx context.Context, db *bun.DB) error {
		// Legacy watchlist tables had no unique constraint, so collapse repeated
		// pairs before enforcing one.
		_, err := db.ExecContext(ctx, `
			DELETE FROM watchlist
			WHERE id NOT IN (SELECT MIN(id) FROM watchlist GROUP BY user_id, book_id)
		`)
		if err != nil {
			return errors.WithStack(err)
		}

		stmts := []string{
			`CREATE UNIQUE INDEX IF NOT EXISTS ux_watchlist_user_book ON watchlist (user_id, book_id)`,
			`CREATE INDEX IF NOT EXISTS ix_watchlist_book_id ON watchlist (book_id)`,
			`CREATE INDEX IF NOT EXISTS ix_reading_history_user_id ON reading_history (user_id, opened_at)`,
			`CREATE INDEX IF NOT EXISTS ix_reading_history_book_id ON reading_history (book_id)`,
			`CREATE INDEX IF NOT EXISTS ix_reading_sessions_start_time ON reading_sessions (start_time)`,
			`CREATE INDEX IF NOT EXISTS ix_reading_sessions_book_id ON reading_sessions (book_id)`,
			`CREATE INDEX IF NOT EXISTS ix_book_views_book_id ON book_views (book_id)`,
			`CREATE INDEX IF NOT EXISTS ix_books_title ON books (title)`,
			`CREATE INDEX IF NOT EXISTS ix_books_subject ON books (subject)`,
			`CREATE INDEX IF NOT EXISTS ix_books_views ON books (views)`,
			`CREATE INDEX IF NOT EXISTS ix_users_last_login ON users (last_login)`,
		}
		for _, stmt := range stmts {
			if _, err := db.ExecContext(ctx, stmt); err != nil {
				return errors.WithStack(err)
			}
		}
		return nil
	}

	down := func(ctx context.Context, db *bun.DB) error {
		stmts := []string{
			`DROP INDEX IF EXISTS ux_watchlist_user_book`,
			`DROP INDEX IF EXISTS ix_watchlist_book_id`,
			`DROP INDEX IF EXISTS ix_reading_history_user_id`,
			`DROP INDEX IF EXISTS ix_reading_history_book_id`,
			`DROP INDEX IF EXISTS ix_reading_sessions_start_time`,
			`DROP INDEX IF EXISTS ix_reading_sessions_book_id`,
			`DROP INDEX IF EXISTS ix_book_views_book_id`,
			`DROP INDEX IF EXISTS ix_books_title`,
			`DROP INDEX IF EXISTS ix_books_subject`,
			`DROP INDEX IF EXISTS ix_books_views`,
			`DROP INDEX IF EXISTS ix_users_last_login`,
		}
		for _, stmt := range stmts {
			if _, err := db.ExecContext(ctx, stmt); err != nil {
				return errors.WithStack(err)
			}
		}
		return nil
	}

	Migrations.MustRegister(up, down)
}
