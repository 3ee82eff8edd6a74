package migrations

import (
	"context"

	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

// Every statement tolerates an existing table so that catalog files written
// by the previous mobile app are adopted in place.
var catalogTables = []string{
	`
	CREATE TABLE IF NOT EXISTS admins (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		username TEXT UNIQUE NOT NULL,
		password_hash TEXT NOT NULL,
		email TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		last_login TIMESTAMP
	)
	`,
	`
	CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		username TEXT UNIQUE NOT NULL,
		password_hash TEXT NOT NULL,
		email TEXT,
		phone TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		last_login TIMESTAMP,
		is_active BOOLEAN NOT NULL DEFAULT 1
	)
	`,
	`
	CREATE TABLE IF NOT EXISTS books (
		id INTEGER PRIMARY KEY,
		title TEXT NOT NULL,
		author TEXT,
		publisher TEXT,
		medium TEXT,
		standard TEXT,
		issn TEXT,
		subject TEXT,
		syllabus TEXT,
		description TEXT,
		year_of_publication TEXT,
		content_type TEXT,
		book_type TEXT,
		pdf_link TEXT,
		thumbnail_link TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		views INTEGER NOT NULL DEFAULT 0,
		rating REAL NOT NULL DEFAULT 0,
		rating_count INTEGER NOT NULL DEFAULT 0
	)
	`,
	`
	CREATE TABLE IF NOT EXISTS watchlist (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL,
		book_id INTEGER NOT NULL,
		added_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		UNIQUE (user_id, book_id)
	)
	`,
	`
	CREATE TABLE IF NOT EXISTS reading_history (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL,
		book_id INTEGER NOT NULL,
		opened_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)
	`,
	`
	CREATE TABLE IF NOT EXISTS reading_sessions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		book_id INTEGER NOT NULL,
		user_id INTEGER NOT NULL,
		start_time TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		end_time TIMESTAMP,
		duration_minutes INTEGER
	)
	`,
	`
	CREATE TABLE IF NOT EXISTS book_views (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		book_id INTEGER NOT NULL,
		user_id INTEGER,
		view_date TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)
	`,
	`
	CREATE TABLE IF NOT EXISTS system_stats (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		stat_date TEXT UNIQUE NOT NULL,
		total_users INTEGER NOT NULL DEFAULT 0,
		active_users INTEGER NOT NULL DEFAULT 0,
		total_books INTEGER NOT NULL DEFAULT 0,
		new_registrations INTEGER NOT NULL DEFAULT 0
	)
	`,
}

func init() {
	up := func(ctx context.Context, db *bun.DB) error {
		for _, stmt := range catalogTables {
			if _, err := db.ExecContext(ctx, stmt); err != nil {
				return errors.WithStack(err)
			}
		}
		return nil
	}

	// Catalog data predates this migration, so rolling it back never drops
	// tables.
	down := func(_ context.Context, _ *bun.DB) error {
		return nil
	}

	Migrations.MustRegister(up, down)
}
