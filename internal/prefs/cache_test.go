package prefs_test

import (
	"context"
	"errors"
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

	"github.com/wandermatch/wandermatch/internal/cache"
	"github.com/wandermatch/wandermatch/internal/config"
	"github.com/wandermatch/wandermatch/internal/db"
	"github.com/wandermatch/wandermatch/internal/prefs"
	"github.com/wandermatch/wandermatch/internal/repository"
)

const testDim = 4

type stubEmbedder struct {
	fail  bool
	calls int
}

func (s *stubEmbedder) Embed(context.Context, string) ([]float32, error) {
	s.calls++
	if s.fail {
		return nil, errors.New("embedding service down")
	}
	return []float32{1, 0, 0, 0}, nil
}

func (s *stubEmbedder) Dimensions() int { return testDim }

func setupCache(t *testing.T) (*prefs.Cache, *gorm.DB, *stubEmbedder) {
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

	embedder := &stubEmbedder{}
	c := prefs.NewCache(
		repository.NewUserRepository(gdb),
		repository.NewSwipeRepository(gdb),
		cache.NewRedisCache(cfg),
		embedder,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
	)
	return c, gdb, embedder
}

func TestIsStale(t *testing.T) {
	now := time.Now().UTC()
	earlier := now.Add(-time.Hour)
	later := now.Add(time.Hour)
	goodVec := []float32{1, 0, 0, 0}

	cases := []struct {
		name          string
		user          db.User
		latestSwipeAt *time.Time
		dirty         bool
		want          bool
	}{
		{
			name: "fresh vector",
			user: db.User{PrefVector: goodVec, PrefGeneratedAt: &now},
			want: false,
		},
		{
			name: "no vector",
			user: db.User{},
			want: true,
		},
		{
			name: "wrong dimension",
			user: db.User{PrefVector: []float32{1, 2}, PrefGeneratedAt: &now},
			want: true,
		},
		{
			name: "missing timestamp",
			user: db.User{PrefVector: goodVec},
			want: true,
		},
		{
			name:          "swipe newer than vector",
			user:          db.User{PrefVector: goodVec, PrefGeneratedAt: &now},
			latestSwipeAt: &later,
			want:          true,
		},
		{
			name:          "swipe older than vector",
			user:          db.User{PrefVector: goodVec, PrefGeneratedAt: &now},
			latestSwipeAt: &earlier,
			want:          false,
		},
		{
			name:  "dirty flag set",
			user:  db.User{PrefVector: goodVec, PrefGeneratedAt: &now},
			dirty: true,
			want:  true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := prefs.IsStale(&tc.user, tc.latestSwipeAt, tc.dirty, testDim)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestPreferenceText(t *testing.T) {
	assert.Equal(t, "No specific preferences", prefs.PreferenceText(nil))
	assert.Equal(t,
		"Preferred experience types: Coffee, Hiking",
		prefs.PreferenceText([]string{"Coffee", "Hiking"}))
}

// TestGetOrRefreshStoresVector: a user without a cached vector gets
// one generated and persisted; the second call reuses it.
func TestGetOrRefreshStoresVector(t *testing.T) {
	ctx := context.Background()
	c, gdb, embedder := setupCache(t)

	user := db.User{ID: 1, Username: "alice", Email: "a@test.com", PasswordHash: "x", PreferredTypes: []string{"Coffee"}}
	require.NoError(t, gdb.Create(&user).Error)

	vec, degraded := c.GetOrRefresh(ctx, &user)
	assert.False(t, degraded)
	assert.Equal(t, []float32{1, 0, 0, 0}, vec)
	assert.Equal(t, 1, embedder.calls)

	var stored db.User
	require.NoError(t, gdb.First(&stored, 1).Error)
	assert.Equal(t, vec, stored.PrefVector)
	require.NotNil(t, stored.PrefGeneratedAt)

	// cached on the second call
	_, degraded = c.GetOrRefresh(ctx, &stored)
	assert.False(t, degraded)
	assert.Equal(t, 1, embedder.calls)
}

// TestGetOrRefreshFallback: embedding failure yields the neutral
// fallback vector, leaves the timestamp unset, and retries next call.
func TestGetOrRefreshFallback(t *testing.T) {
	ctx := context.Background()
	c, gdb, embedder := setupCache(t)

	user := db.User{ID: 1, Username: "alice", Email: "a@test.com", PasswordHash: "x"}
	require.NoError(t, gdb.Create(&user).Error)

	embedder.fail = true
	vec, degraded := c.GetOrRefresh(ctx, &user)
	assert.True(t, degraded)
	assert.Equal(t, []float32{0.1, 0.1, 0.1, 0.1}, vec)

	var stored db.User
	require.NoError(t, gdb.First(&stored, 1).Error)
	assert.Nil(t, stored.PrefGeneratedAt)

	// service recovers → next call regenerates for real
	embedder.fail = false
	vec, degraded = c.GetOrRefresh(ctx, &stored)
	assert.False(t, degraded)
	assert.Equal(t, []float32{1, 0, 0, 0}, vec)
}
