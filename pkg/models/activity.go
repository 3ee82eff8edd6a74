package models

import (
	"time"

	"github.com/uptrace/bun"
)

type WatchlistEntry struct {
	bun.BaseModel `bun:"table:watchlist,alias:w"`

	ID      int       `bun:",pk,nullzero" json:"id"`
	UserID  int       `bun:",notnull" json:"user_id"`
	BookID  int       `bun:",notnull" json:"book_id"`
	AddedAt time.Time `bun:",nullzero" json:"added_at"`

	Book *Book `bun:"rel:belongs-to,join:book_id=id" json:"book,omitempty"`
}

// ReadingHistoryEntry is appended every time a reader opens a book. Repeats
// are expected.
type ReadingHistoryEntry struct {
	bun.BaseModel `bun:"table:reading_history,alias:rh"`

	ID       int       `bun:",pk,nullzero" json:"id"`
	UserID   int       `bun:",notnull" json:"user_id"`
	BookID   int       `bun:",notnull" json:"book_id"`
	OpenedAt time.Time `bun:",nullzero" json:"opened_at"`

	Book *Book `bun:"rel:belongs-to,join:book_id=id" json:"book,omitempty"`
}

type ReadingSession struct {
	bun.BaseModel `bun:"table:reading_sessions,alias:rs"`

	ID              int        `bun:",pk,nullzero" json:"id"`
	BookID          int        `bun:",notnull" json:"book_id"`
	UserID          int        `bun:",notnull" json:"user_id"`
	StartTime       time.Time  `bun:",nullzero" json:"start_time"`
	EndTime         *time.Time `json:"end_time,omitempty"`
	DurationMinutes *int       `json:"duration_minutes,omitempty"`
}

// BookView has a nil UserID for anonymous views.
type BookView struct {
	bun.BaseModel `bun:"table:book_views,alias:bv"`

	ID       int       `bun:",pk,nullzero" json:"id"`
	BookID   int       `bun:",notnull" json:"book_id"`
	UserID   *int      `json:"user_id"`
	ViewDate time.Time `bun:",nullzero" json:"view_date"`
}

type SystemStat struct {
	bun.BaseModel `bun:"table:system_stats,alias:ss"`

	ID               int    `bun:",pk,nullzero" json:"id"`
	StatDate         string `bun:",notnull" json:"stat_date"`
	TotalUsers       int    `json:"total_users"`
	ActiveUsers      int    `json:"active_users"`
	TotalBooks       int    `json:"total_books"`
	NewRegistrations int    `json:"new_registrations"`
}
