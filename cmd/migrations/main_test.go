package main

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shishobooks/shelf/pkg/config"
	"github.com/shishobooks/shelf/pkg/database"
	"github.com/shishobooks/shelf/pkg/migrations"
	"github.com/shishobooks/shelf/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTableCounts(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	db, err := database.New(config.NewForTest())
	require.NoError(t, err)
	defer db.Close()

	counts, err := tableCounts(ctx, db)
	require.NoError(t, err)
	require.Len(t, counts, len(migrations.Tables))
	for _, tc := range counts {
		assert.True(t, tc.Missing, tc.Table)
	}

	_, err = migrations.BringUpToDate(ctx, db)
	require.NoError(t, err)
	_, err = db.NewInsert().Model(&models.User{
		CreatedAt:    time.Now(),
		Username:     "reader",
		PasswordHash: "x",
		IsActive:     true,
	}).Exec(ctx)
	require.NoError(t, err)

	counts, err = tableCounts(ctx, db)
	require.NoError(t, err)
	for _, tc := range counts {
		assert.False(t, tc.Missing, tc.Table)
		if tc.Table == "users" {
			assert.Equal(t, 1, tc.Rows)
		} else {
			assert.Equal(t, 0, tc.Rows, tc.Table)
		}
	}
}

func TestRun_MigrateThenStatus(t *testing.T) {
	t.Parallel()
	cfg := config.NewForTest()
	cfg.DatabaseFilePath = filepath.Join(t.TempDir(), "shelf.sqlite")

	require.NoError(t, run(cfg, []string{"migrations", "migrate"}))
	// Already up to date on the second pass.
	require.NoError(t, run(cfg, []string{"migrations", "migrate"}))
	require.NoError(t, run(cfg, []string{"migrations", "status"}))

	db, err := database.New(cfg)
	require.NoError(t, err)
	defer db.Close()

	counts, err := tableCounts(context.Background(), db)
	require.NoError(t, err)
	for _, tc := range counts {
		assert.False(t, tc.Missing, tc.Table)
	}
}
