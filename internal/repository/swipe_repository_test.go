package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/wandermatch/wandermatch/internal/db"
	"github.com/wandermatch/wandermatch/internal/repository"
)

// setup in-memory DB
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	database, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		NowFunc: func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
	})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := db.Migrate(database); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return database
}

func TestSwipeUpsert(t *testing.T) {
	ctx := context.Background()
	dbase := setupTestDB(t)
	repo := repository.NewSwipeRepository(dbase)

	// first swipe: no previous
	prev, err := repo.Upsert(ctx, 1, 10, true)
	require.NoError(t, err)
	assert.Nil(t, prev)

	// unchanged like: previous reported, row untouched
	prev, err = repo.Upsert(ctx, 1, 10, true)
	require.NoError(t, err)
	require.NotNil(t, prev)
	assert.True(t, *prev)

	// overwrite with pass
	prev, err = repo.Upsert(ctx, 1, 10, false)
	require.NoError(t, err)
	require.NotNil(t, prev)
	assert.True(t, *prev)

	var s db.Swipe
	require.NoError(t, dbase.First(&s).Error)
	assert.False(t, s.Liked)

	var count int64
	require.NoError(t, dbase.Model(&db.Swipe{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestSwipedExperienceIDs(t *testing.T) {
	ctx := context.Background()
	dbase := setupTestDB(t)
	repo := repository.NewSwipeRepository(dbase)

	_, _ = repo.Upsert(ctx, 1, 10, true)
	_, _ = repo.Upsert(ctx, 1, 20, false)
	_, _ = repo.Upsert(ctx, 2, 30, true)

	ids, err := repo.SwipedExperienceIDs(ctx, 1)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uint64{10, 20}, ids)
}

func TestLatestSwipeAt(t *testing.T) {
	ctx := context.Background()
	dbase := setupTestDB(t)
	repo := repository.NewSwipeRepository(dbase)

	ts, err := repo.LatestSwipeAt(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, ts)

	_, _ = repo.Upsert(ctx, 1, 10, true)

	ts, err = repo.LatestSwipeAt(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, ts)
	assert.WithinDuration(t, time.Now().UTC(), *ts, time.Minute)
}

func TestCountLikes(t *testing.T) {
	ctx := context.Background()
	dbase := setupTestDB(t)
	repo := repository.NewSwipeRepository(dbase)

	_, _ = repo.Upsert(ctx, 1, 10, true)
	_, _ = repo.Upsert(ctx, 2, 10, true)
	_, _ = repo.Upsert(ctx, 3, 10, false)

	count, err := repo.CountLikes(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}
