package stats

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/shishobooks/shelf/pkg/labelutil"
	"github.com/shishobooks/shelf/pkg/models"
	"github.com/uptrace/bun"
)

const (
	DefaultActiveWindowDays = 7
	DefaultTopSubjects      = 8
	DefaultTrendingBooks    = 5

	statDateLayout = "2006-01-02"
	week           = 7 * 24 * time.Hour
)

type SubjectCount struct {
	Subject string `json:"subject"`
	Count   int    `json:"count"`
}

// Service computes read-only catalog metrics. Nothing is cached between
// calls.
type Service struct {
	db  *bun.DB
	now func() time.Time
}

func NewService(db *bun.DB) *Service {
	return &Service{db: db, now: func() time.Time { return time.Now().UTC() }}
}

func (s *Service) TotalBooks(ctx context.Context) (int, error) {
	n, err := s.db.NewSelect().Model((*models.Book)(nil)).Count(ctx)
	return n, errors.WithStack(err)
}

func (s *Service) TotalUsers(ctx context.Context) (int, error) {
	n, err := s.db.NewSelect().Model((*models.User)(nil)).Count(ctx)
	return n, errors.WithStack(err)
}

// ActiveUsers counts users whose last login falls in the trailing window.
func (s *Service) ActiveUsers(ctx context.Context, windowDays int) (int, error) {
	if windowDays <= 0 {
		windowDays = DefaultActiveWindowDays
	}
	since := s.now().AddDate(0, 0, -windowDays)
	return s.countBetween(ctx, (*models.User)(nil), "last_login", since, time.Time{})
}

// TotalViews sums the view counters of every book.
func (s *Service) TotalViews(ctx context.Context) (int, error) {
	var total int
	err := s.db.NewSelect().
		Model((*models.Book)(nil)).
		ColumnExpr("COALESCE(SUM(b.views), 0)").
		Scan(ctx, &total)
	return total, errors.WithStack(err)
}

func (s *Service) NewUsersSince(ctx context.Context, since time.Time) (int, error) {
	return s.countBetween(ctx, (*models.User)(nil), "created_at", since, time.Time{})
}

// ActiveReadersToday counts distinct readers with a reading session started
// since midnight UTC.
func (s *Service) ActiveReadersToday(ctx context.Context) (int, error) {
	var n int
	err := s.db.NewSelect().
		Model((*models.ReadingSession)(nil)).
		ColumnExpr("COUNT(DISTINCT rs.user_id)").
		Where("rs.start_time >= ?", startOfDay(s.now())).
		Scan(ctx, &n)
	return n, errors.WithStack(err)
}

// countBetween counts rows of model whose column is in [from, to). A zero to
// leaves the range open-ended.
func (s *Service) countBetween(ctx context.Context, model interface{}, column string, from, to time.Time) (int, error) {
	q := s.db.NewSelect().
		Model(model).
		Where("? >= ?", bun.Ident(column), from)
	if !to.IsZero() {
		q = q.Where("? < ?", bun.Ident(column), to)
	}
	n, err := q.Count(ctx)
	return n, errors.WithStack(err)
}

// TopSubjects ranks subjects by book count, skipping labels that aren't
// printable ASCII.
func (s *Service) TopSubjects(ctx context.Context, limit int) ([]SubjectCount, error) {
	if limit <= 0 {
		limit = DefaultTopSubjects
	}

	var rows []SubjectCount
	err := s.db.NewSelect().
		Model((*models.Book)(nil)).
		ColumnExpr("b.subject AS subject").
		ColumnExpr("COUNT(*) AS count").
		Where("b.subject IS NOT NULL").
		Where("TRIM(b.subject) != ''").
		Group("b.subject").
		OrderExpr("COUNT(*) DESC").
		Order("b.subject ASC").
		Scan(ctx, &rows)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	top := make([]SubjectCount, 0, limit)
	for _, row := range rows {
		if len(top) == limit {
			break
		}
		if labelutil.IsPrintableASCII(row.Subject) {
			top = append(top, row)
		}
	}
	return top, nil
}

// TrendingBooks returns the most viewed books. Books nobody has opened are
// left out.
func (s *Service) TrendingBooks(ctx context.Context, limit int) ([]*models.Book, error) {
	if limit <= 0 {
		limit = DefaultTrendingBooks
	}

	books := []*models.Book{}
	err := s.db.NewSelect().
		Model(&books).
		Where("b.views > 0").
		Order("b.views DESC", "b.title ASC").
		Limit(limit).
		Scan(ctx)
	return books, errors.WithStack(err)
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
