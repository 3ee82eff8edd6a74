package activity

import (
	"context"
	"database/sql"
	"time"

	"github.com/pkg/errors"
	"github.com/shishobooks/shelf/pkg/errcodes"
	"github.com/shishobooks/shelf/pkg/models"
	"github.com/uptrace/bun"
)

const DefaultListLimit = 20

// UserStats is the reader profile summary.
type UserStats struct {
	BooksRead int `json:"books_read"`
	Saved     int `json:"saved"`
}

// Service records what readers do with books.
type Service struct {
	db  *bun.DB
	now func() time.Time
}

func NewService(db *bun.DB) *Service {
	return &Service{db: db, now: func() time.Time { return time.Now().UTC() }}
}

func bookExists(ctx context.Context, db bun.IDB, bookID int) error {
	exists, err := db.NewSelect().
		Model((*models.Book)(nil)).
		Where("id = ?", bookID).
		Exists(ctx)
	if err != nil {
		return errors.WithStack(err)
	}
	if !exists {
		return errcodes.NotFound("Book")
	}
	return nil
}

// AddToWatchlist saves a book for a reader. Saving the same book twice is a
// no-op; added reports whether a row was written.
func (s *Service) AddToWatchlist(ctx context.Context, userID, bookID int) (added bool, err error) {
	if err := bookExists(ctx, s.db, bookID); err != nil {
		return false, err
	}

	res, err := s.db.NewInsert().
		Model(&models.WatchlistEntry{
			UserID:  userID,
			BookID:  bookID,
			AddedAt: s.now(),
		}).
		On("CONFLICT (user_id, book_id) DO NOTHING").
		Returning("NULL").
		Exec(ctx)
	if err != nil {
		return false, errors.WithStack(err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// RemoveFromWatchlist is idempotent.
func (s *Service) RemoveFromWatchlist(ctx context.Context, userID, bookID int) error {
	_, err := s.db.NewDelete().
		Model((*models.WatchlistEntry)(nil)).
		Where("user_id = ?", userID).
		Where("book_id = ?", bookID).
		Exec(ctx)
	return errors.WithStack(err)
}

func (s *Service) ListWatchlist(ctx context.Context, userID, limit int) ([]*models.WatchlistEntry, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	entries := []*models.WatchlistEntry{}
	err := s.db.NewSelect().
		Model(&entries).
		Relation("Book").
		Where("w.user_id = ?", userID).
		Order("w.added_at DESC", "w.id DESC").
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return entries, nil
}

// RecordRead logs that a reader opened a book. The history row, the view row
// and the view counter are written together or not at all.
func (s *Service) RecordRead(ctx context.Context, userID, bookID int) (*models.ReadingHistoryEntry, error) {
	entry := &models.ReadingHistoryEntry{
		UserID:   userID,
		BookID:   bookID,
		OpenedAt: s.now(),
	}

	err := s.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		if err := bookExists(ctx, tx, bookID); err != nil {
			return err
		}
		if _, err := tx.NewInsert().Model(entry).Exec(ctx); err != nil {
			return errors.WithStack(err)
		}
		return s.recordView(ctx, tx, bookID, &userID)
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// RecordView counts a view of a book. userID is nil for anonymous readers.
func (s *Service) RecordView(ctx context.Context, bookID int, userID *int) error {
	return s.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		if err := bookExists(ctx, tx, bookID); err != nil {
			return err
		}
		return s.recordView(ctx, tx, bookID, userID)
	})
}

func (s *Service) recordView(ctx context.Context, tx bun.Tx, bookID int, userID *int) error {
	_, err := tx.NewInsert().
		Model(&models.BookView{
			BookID:   bookID,
			UserID:   userID,
			ViewDate: s.now(),
		}).
		Exec(ctx)
	if err != nil {
		return errors.WithStack(err)
	}

	_, err = tx.NewUpdate().
		Model((*models.Book)(nil)).
		Set("views = views + 1").
		Where("id = ?", bookID).
		Exec(ctx)
	return errors.WithStack(err)
}

func (s *Service) ListReadingHistory(ctx context.Context, userID, limit int) ([]*models.ReadingHistoryEntry, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	entries := []*models.ReadingHistoryEntry{}
	err := s.db.NewSelect().
		Model(&entries).
		Relation("Book").
		Where("rh.user_id = ?", userID).
		Order("rh.opened_at DESC", "rh.id DESC").
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return entries, nil
}

func (s *Service) StartSession(ctx context.Context, userID, bookID int) (*models.ReadingSession, error) {
	if err := bookExists(ctx, s.db, bookID); err != nil {
		return nil, err
	}

	session := &models.ReadingSession{
		BookID:    bookID,
		UserID:    userID,
		StartTime: s.now(),
	}
	if _, err := s.db.NewInsert().Model(session).Exec(ctx); err != nil {
		return nil, errors.WithStack(err)
	}
	return session, nil
}

// EndSession closes one of the reader's open sessions and stores its length
// in whole minutes.
func (s *Service) EndSession(ctx context.Context, userID, sessionID int) (*models.ReadingSession, error) {
	session := &models.ReadingSession{}
	err := s.db.NewSelect().
		Model(session).
		Where("rs.id = ?", sessionID).
		Where("rs.user_id = ?", userID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound("Reading session")
		}
		return nil, errors.WithStack(err)
	}
	if session.EndTime != nil {
		return nil, errcodes.ValidationError("Reading session has already ended")
	}

	end := s.now()
	minutes := int(end.Sub(session.StartTime) / time.Minute)
	if minutes < 0 {
		minutes = 0
	}
	session.EndTime = &end
	session.DurationMinutes = &minutes

	_, err = s.db.NewUpdate().
		Model(session).
		Column("end_time", "duration_minutes").
		WherePK().
		Exec(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return session, nil
}

func (s *Service) UserStats(ctx context.Context, userID int) (*UserStats, error) {
	read, err := s.db.NewSelect().
		Model((*models.ReadingHistoryEntry)(nil)).
		Where("user_id = ?", userID).
		Count(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	saved, err := s.db.NewSelect().
		Model((*models.WatchlistEntry)(nil)).
		Where("user_id = ?", userID).
		Count(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return &UserStats{BooksRead: read, Saved: saved}, nil
}
