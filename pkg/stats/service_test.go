package stats

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shishobooks/shelf/internal/testdb"
	"github.com/shishobooks/shelf/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
)

var fixedNow = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

func newTestService(t *testing.T) (*Service, *bun.DB) {
	t.Helper()
	db := testdb.New(t)
	svc := NewService(db)
	svc.now = func() time.Time { return fixedNow }
	return svc, db
}

func daysAgo(n int) time.Time {
	return fixedNow.AddDate(0, 0, -n)
}

func insertUser(t *testing.T, db *bun.DB, name string, created time.Time, lastLogin *time.Time) {
	t.Helper()
	_, err := db.NewInsert().Model(&models.User{
		CreatedAt:    created,
		Username:     name,
		PasswordHash: "x",
		LastLogin:    lastLogin,
		IsActive:     true,
	}).Exec(context.Background())
	require.NoError(t, err)
}

func insertBook(t *testing.T, db *bun.DB, title string, subject *string, views int, created time.Time) {
	t.Helper()
	_, err := db.NewInsert().Model(&models.Book{
		CreatedAt: created,
		Title:     title,
		Subject:   subject,
		Views:     views,
	}).Exec(context.Background())
	require.NoError(t, err)
}

func ptr[T any](v T) *T { return &v }

func TestCounts(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, db := newTestService(t)

	insertUser(t, db, "recent", daysAgo(1), ptr(daysAgo(2)))
	insertUser(t, db, "lapsed", daysAgo(40), ptr(daysAgo(10)))
	insertUser(t, db, "never", daysAgo(3), nil)
	insertBook(t, db, "A", nil, 3, daysAgo(1))
	insertBook(t, db, "B", nil, 4, daysAgo(20))

	total, err := svc.TotalUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, total)

	active, err := svc.ActiveUsers(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, 1, active)

	active, err = svc.ActiveUsers(ctx, 30)
	require.NoError(t, err)
	assert.Equal(t, 2, active)

	newUsers, err := svc.NewUsersSince(ctx, daysAgo(7))
	require.NoError(t, err)
	assert.Equal(t, 2, newUsers)

	books, err := svc.TotalBooks(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, books)

	views, err := svc.TotalViews(ctx)
	require.NoError(t, err)
	assert.Equal(t, 7, views)
}

func TestTotalViews_EmptyCatalog(t *testing.T) {
	t.Parallel()
	svc, _ := newTestService(t)

	views, err := svc.TotalViews(context.Background())
	require.NoError(t, err)
	assert.Zero(t, views)
}

func TestTopSubjectsAndTrending(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, db := newTestService(t)

	subjects := map[string]int{"Math": 3, "Art": 1, "Biology": 3, "Ünïcode": 5}
	i := 0
	for subject, n := range subjects {
		for range n {
			i++
			insertBook(t, db, fmt.Sprintf("Book %02d", i), ptr(subject), 0, fixedNow)
		}
	}
	insertBook(t, db, "Popular", nil, 50, fixedNow)
	insertBook(t, db, "Liked", nil, 10, fixedNow)
	insertBook(t, db, "Also liked", nil, 10, fixedNow)

	top, err := svc.TopSubjects(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, []SubjectCount{{"Biology", 3}, {"Math", 3}}, top)

	trending, err := svc.TrendingBooks(ctx, 0)
	require.NoError(t, err)
	require.Len(t, trending, 3)
	assert.Equal(t, "Popular", trending[0].Title)
	assert.Equal(t, "Also liked", trending[1].Title)
	assert.Equal(t, "Liked", trending[2].Title)
}

func TestDashboard(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, db := newTestService(t)

	insertBook(t, db, "This week 1", nil, 0, daysAgo(1))
	insertBook(t, db, "This week 2", nil, 2, daysAgo(2))
	insertBook(t, db, "Last week", nil, 0, daysAgo(10))
	insertUser(t, db, "u1", daysAgo(1), ptr(daysAgo(1)))
	insertUser(t, db, "u2", daysAgo(9), ptr(daysAgo(8)))
	insertUser(t, db, "u3", daysAgo(12), ptr(daysAgo(9)))
	testdb.Exec(t, db, `INSERT INTO reading_sessions (book_id, user_id, start_time) VALUES (1, 1, ?), (2, 1, ?), (1, 2, ?)`,
		fixedNow.Add(-time.Hour), fixedNow.Add(-2*time.Hour), daysAgo(2))

	d, err := svc.Dashboard(ctx)
	require.NoError(t, err)

	assert.Equal(t, Card{Value: 3, Trend: "+100%"}, d.TotalBooks)
	assert.Equal(t, 2, d.TotalViews.Value)
	assert.Equal(t, Card{Value: 1, Trend: "-50%"}, d.ActiveUsers)
	assert.Equal(t, Card{Value: 1, Trend: "-50%"}, d.NewUsersThisWeek)
	assert.Equal(t, 3, d.TotalUsers.Value)
	assert.Equal(t, 1, d.ActiveReadersToday.Value)
	assert.Len(t, d.TrendingBooks, 1)
}

func TestSnapshotDaily_Upserts(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, db := newTestService(t)

	insertUser(t, db, "today", fixedNow.Add(-time.Hour), nil)
	insertUser(t, db, "yesterday", daysAgo(1), nil)

	stat, err := svc.SnapshotDaily(ctx, fixedNow)
	require.NoError(t, err)
	assert.Equal(t, "2026-03-15", stat.StatDate)
	assert.Equal(t, 2, stat.TotalUsers)
	assert.Equal(t, 1, stat.NewRegistrations)

	insertBook(t, db, "Later", nil, 0, fixedNow)
	_, err = svc.SnapshotDaily(ctx, fixedNow)
	require.NoError(t, err)

	snapshots, err := svc.ListSnapshots(ctx, 0)
	require.NoError(t, err)
	require.Len(t, snapshots, 1)
	assert.Equal(t, "2026-03-15", snapshots[0].StatDate)
	assert.Equal(t, 1, snapshots[0].TotalBooks)
}

func TestListSnapshots_LegacyDateColumn(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, db := newTestService(t)

	testdb.Exec(t, db, `DROP TABLE system_stats`)
	testdb.Exec(t, db, `
		CREATE TABLE system_stats (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			stat_date DATE UNIQUE NOT NULL,
			total_users INTEGER,
			active_users INTEGER,
			total_books INTEGER,
			new_registrations INTEGER
		)
	`)
	testdb.Exec(t, db, `INSERT INTO system_stats (stat_date, total_users, active_users, total_books, new_registrations) VALUES ('2026-03-14', 4, 2, 10, 1)`)

	_, err := svc.SnapshotDaily(ctx, fixedNow)
	require.NoError(t, err)

	snapshots, err := svc.ListSnapshots(ctx, 0)
	require.NoError(t, err)
	require.Len(t, snapshots, 2)
	assert.Equal(t, "2026-03-15", snapshots[0].StatDate)
	assert.Equal(t, "2026-03-14", snapshots[1].StatDate)
	assert.Equal(t, 10, snapshots[1].TotalBooks)
}
