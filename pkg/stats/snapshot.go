package stats

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/shishobooks/shelf/pkg/models"
)

// SnapshotDaily writes the system_stats row for day, replacing any earlier
// snapshot of the same date.
func (s *Service) SnapshotDaily(ctx context.Context, day time.Time) (*models.SystemStat, error) {
	start := startOfDay(day)

	stat := &models.SystemStat{StatDate: start.Format(statDateLayout)}
	var err error

	if stat.TotalUsers, err = s.TotalUsers(ctx); err != nil {
		return nil, err
	}
	if stat.ActiveUsers, err = s.ActiveUsers(ctx, DefaultActiveWindowDays); err != nil {
		return nil, err
	}
	if stat.TotalBooks, err = s.TotalBooks(ctx); err != nil {
		return nil, err
	}
	stat.NewRegistrations, err = s.countBetween(ctx, (*models.User)(nil), "created_at", start, start.AddDate(0, 0, 1))
	if err != nil {
		return nil, err
	}

	_, err = s.db.NewInsert().
		Model(stat).
		On("CONFLICT (stat_date) DO UPDATE").
		Set("total_users = EXCLUDED.total_users").
		Set("active_users = EXCLUDED.active_users").
		Set("total_books = EXCLUDED.total_books").
		Set("new_registrations = EXCLUDED.new_registrations").
		Returning("NULL").
		Exec(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return stat, nil
}

// ListSnapshots returns the most recent daily snapshots, newest first.
func (s *Service) ListSnapshots(ctx context.Context, limit int) ([]*models.SystemStat, error) {
	if limit <= 0 {
		limit = 30
	}

	// Catalogs from the old app declare stat_date as DATE, which the driver
	// would hand back as a timestamp.
	snapshots := []*models.SystemStat{}
	err := s.db.NewSelect().
		Model(&snapshots).
		Column("id", "total_users", "active_users", "total_books", "new_registrations").
		ColumnExpr("CAST(ss.stat_date AS TEXT) AS stat_date").
		Order("ss.stat_date DESC").
		Limit(limit).
		Scan(ctx)
	return snapshots, errors.WithStack(err)
}
