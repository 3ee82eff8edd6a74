package activity

import (
	"context"
	"testing"
	"time"

	"github.com/shishobooks/shelf/internal/testdb"
	"github.com/shishobooks/shelf/pkg/errcodes"
	"github.com/shishobooks/shelf/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
)

func newTestService(t *testing.T) (*Service, *bun.DB) {
	t.Helper()
	db := testdb.New(t)
	testdb.Exec(t, db, `INSERT INTO users (username, password_hash) VALUES ('reader', 'x'), ('other', 'x')`)
	testdb.Exec(t, db, `INSERT INTO books (id, title) VALUES (1, 'Walden'), (2, 'Emma'), (3, 'Ulysses')`)
	return NewService(db), db
}

func TestAddToWatchlist_Idempotent(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, db := newTestService(t)

	added, err := svc.AddToWatchlist(ctx, 1, 2)
	require.NoError(t, err)
	assert.True(t, added)

	added, err = svc.AddToWatchlist(ctx, 1, 2)
	require.NoError(t, err)
	assert.False(t, added)

	count, err := db.NewSelect().Model((*models.WatchlistEntry)(nil)).
		Where("user_id = 1").Where("book_id = 2").Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	_, err = svc.AddToWatchlist(ctx, 1, 99)
	assert.True(t, errcodes.HasCode(err, errcodes.CodeNotFound))
}

func TestWatchlist_ListAndRemove(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, _ := newTestService(t)

	base := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	for i, bookID := range []int{1, 3, 2} {
		at := base.Add(time.Duration(i) * time.Minute)
		svc.now = func() time.Time { return at }
		_, err := svc.AddToWatchlist(ctx, 1, bookID)
		require.NoError(t, err)
	}
	_, err := svc.AddToWatchlist(ctx, 2, 1)
	require.NoError(t, err)

	entries, err := svc.ListWatchlist(ctx, 1, 0)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "Emma", entries[0].Book.Title)
	assert.Equal(t, "Walden", entries[2].Book.Title)

	limited, err := svc.ListWatchlist(ctx, 1, 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)

	require.NoError(t, svc.RemoveFromWatchlist(ctx, 1, 3))
	require.NoError(t, svc.RemoveFromWatchlist(ctx, 1, 3))

	entries, err = svc.ListWatchlist(ctx, 1, 0)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestRecordRead(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, db := newTestService(t)

	for range 3 {
		_, err := svc.RecordRead(ctx, 1, 1)
		require.NoError(t, err)
	}
	require.NoError(t, svc.RecordView(ctx, 1, nil))

	book := &models.Book{}
	require.NoError(t, db.NewSelect().Model(book).Where("b.id = 1").Scan(ctx))
	assert.Equal(t, 4, book.Views)

	anonymous, err := db.NewSelect().Model((*models.BookView)(nil)).Where("user_id IS NULL").Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, anonymous)

	history, err := svc.ListReadingHistory(ctx, 1, 0)
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, "Walden", history[0].Book.Title)

	_, err = svc.RecordRead(ctx, 1, 42)
	assert.True(t, errcodes.HasCode(err, errcodes.CodeNotFound))
	viewRows, err := db.NewSelect().Model((*models.BookView)(nil)).Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, viewRows)

	stats, err := svc.UserStats(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, &UserStats{BooksRead: 3, Saved: 0}, stats)
}

func TestReadingSessions(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, _ := newTestService(t)

	start := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return start }
	session, err := svc.StartSession(ctx, 1, 2)
	require.NoError(t, err)
	assert.Nil(t, session.EndTime)

	_, err = svc.EndSession(ctx, 2, session.ID)
	assert.True(t, errcodes.HasCode(err, errcodes.CodeNotFound))

	svc.now = func() time.Time { return start.Add(42*time.Minute + 30*time.Second) }
	ended, err := svc.EndSession(ctx, 1, session.ID)
	require.NoError(t, err)
	require.NotNil(t, ended.DurationMinutes)
	assert.Equal(t, 42, *ended.DurationMinutes)

	_, err = svc.EndSession(ctx, 1, session.ID)
	assert.True(t, errcodes.HasCode(err, errcodes.CodeValidationError))

	_, err = svc.StartSession(ctx, 1, 77)
	assert.True(t, errcodes.HasCode(err, errcodes.CodeNotFound))
}
