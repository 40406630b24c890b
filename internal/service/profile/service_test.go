package profile_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/wandermatch/wandermatch/internal/app"
	"github.com/wandermatch/wandermatch/internal/cache"
	"github.com/wandermatch/wandermatch/internal/config"
	"github.com/wandermatch/wandermatch/internal/db"
	svcErr "github.com/wandermatch/wandermatch/internal/errors"
	"github.com/wandermatch/wandermatch/internal/service/profile"
	"github.com/wandermatch/wandermatch/internal/vectorindex"
)

type stubEmbedder struct{}

func (stubEmbedder) Embed(context.Context, string) ([]float32, error) {
	return []float32{1, 0}, nil
}

func (stubEmbedder) Dimensions() int { return 2 }

func setupService(t *testing.T) (*profile.Service, *cache.RedisCache, *gorm.DB) {
	t.Helper()

	dbName := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	gdb, err := gorm.Open(sqlite.Open(dbName), &gorm.Config{
		NowFunc: func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
	})
	require.NoError(t, err)
	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, db.Migrate(gdb))

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(func() { mr.Close() })

	cfg := config.New()
	cfg.Redis.Addr = mr.Addr()
	redisCache := cache.NewRedisCache(cfg)

	require.NoError(t, gdb.Create(&db.User{
		ID: 1, Username: "alice", Email: "a@test.com", PasswordHash: "x",
		PreferredTypes: []string{"Coffee"},
		Preferences:    map[string]string{"radius_km": "25"},
	}).Error)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	appCtx := app.New(gdb, redisCache, logger, stubEmbedder{}, vectorindex.NewMemoryIndex())
	return profile.NewService(appCtx), redisCache, gdb
}

// TestUpdatePreferencesMarksCacheStale: a preference edit persists the
// new types and flags the preference vector for regeneration.
func TestUpdatePreferencesMarksCacheStale(t *testing.T) {
	ctx := context.Background()
	svc, redisCache, gdb := setupService(t)

	assert.False(t, redisCache.PrefsDirty(ctx, 1))

	user, err := svc.UpdatePreferences(ctx, 1, []string{"Hiking", "Museum"}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"Hiking", "Museum"}, user.PreferredTypes)
	// unchanged open preferences carried over
	assert.Equal(t, "25", user.Preferences["radius_km"])

	assert.True(t, redisCache.PrefsDirty(ctx, 1))

	var stored db.User
	require.NoError(t, gdb.First(&stored, 1).Error)
	assert.Equal(t, []string{"Hiking", "Museum"}, stored.PreferredTypes)
	assert.Equal(t, "25", stored.Preferences["radius_km"])
}

func TestUpdatePreferencesUnknownUser(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := setupService(t)

	_, err := svc.UpdatePreferences(ctx, 99, []string{"Hiking"}, nil)
	assert.True(t, svcErr.IsNotFound(err))
}

func TestClearPreferences(t *testing.T) {
	ctx := context.Background()
	svc, _, gdb := setupService(t)

	user, err := svc.UpdatePreferences(ctx, 1, nil, nil)
	require.NoError(t, err)
	assert.Empty(t, user.PreferredTypes)

	var stored db.User
	require.NoError(t, gdb.First(&stored, 1).Error)
	assert.Empty(t, stored.PreferredTypes)
}
