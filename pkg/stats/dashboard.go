package stats

import (
	"context"

	"github.com/shishobooks/shelf/pkg/models"
)

// Card is one KPI tile on the admin dashboard.
type Card struct {
	Value int    `json:"value"`
	Trend string `json:"trend,omitempty"`
}

type Dashboard struct {
	TotalBooks         Card           `json:"total_books"`
	TotalViews         Card           `json:"total_views"`
	ActiveUsers        Card           `json:"active_users"`
	TotalUsers         Card           `json:"total_users"`
	NewUsersThisWeek   Card           `json:"new_users_this_week"`
	ActiveReadersToday Card           `json:"active_readers_today"`
	TopSubjects        []SubjectCount `json:"top_subjects"`
	TrendingBooks      []*models.Book `json:"trending_books"`
}

// Dashboard gathers every admin KPI. Trends compare the trailing seven days
// with the seven days before them.
func (s *Service) Dashboard(ctx context.Context) (*Dashboard, error) {
	now := s.now()
	weekAgo := now.Add(-week)
	twoWeeksAgo := now.Add(-2 * week)

	d := &Dashboard{}
	var err error

	if d.TotalBooks.Value, err = s.TotalBooks(ctx); err != nil {
		return nil, err
	}
	booksThisWeek, err := s.countBetween(ctx, (*models.Book)(nil), "created_at", weekAgo, now)
	if err != nil {
		return nil, err
	}
	booksLastWeek, err := s.countBetween(ctx, (*models.Book)(nil), "created_at", twoWeeksAgo, weekAgo)
	if err != nil {
		return nil, err
	}
	d.TotalBooks.Trend = Trend(booksThisWeek, booksLastWeek)

	if d.TotalViews.Value, err = s.TotalViews(ctx); err != nil {
		return nil, err
	}

	if d.ActiveUsers.Value, err = s.ActiveUsers(ctx, DefaultActiveWindowDays); err != nil {
		return nil, err
	}
	activeLastWeek, err := s.countBetween(ctx, (*models.User)(nil), "last_login", twoWeeksAgo, weekAgo)
	if err != nil {
		return nil, err
	}
	d.ActiveUsers.Trend = Trend(d.ActiveUsers.Value, activeLastWeek)

	if d.TotalUsers.Value, err = s.TotalUsers(ctx); err != nil {
		return nil, err
	}
	if d.NewUsersThisWeek.Value, err = s.NewUsersSince(ctx, weekAgo); err != nil {
		return nil, err
	}
	newLastWeek, err := s.countBetween(ctx, (*models.User)(nil), "created_at", twoWeeksAgo, weekAgo)
	if err != nil {
		return nil, err
	}
	d.NewUsersThisWeek.Trend = Trend(d.NewUsersThisWeek.Value, newLastWeek)
	d.TotalUsers.Trend = d.NewUsersThisWeek.Trend

	if d.ActiveReadersToday.Value, err = s.ActiveReadersToday(ctx); err != nil {
		return nil, err
	}

	if d.TopSubjects, err = s.TopSubjects(ctx, DefaultTopSubjects); err != nil {
		return nil, err
	}
	if d.TrendingBooks, err = s.TrendingBooks(ctx, DefaultTrendingBooks); err != nil {
		return nil, err
	}

	return d, nil
}
