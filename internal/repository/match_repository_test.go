package repository_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wandermatch/wandermatch/internal/db"
	"github.com/wandermatch/wandermatch/internal/repository"
)

func TestFindForPairIsUnordered(t *testing.T) {
	ctx := context.Background()
	dbase := setupTestDB(t)
	repo := repository.NewMatchRepository(dbase)

	created, err := repo.Create(ctx, 1, 2, 10)
	require.NoError(t, err)
	assert.Equal(t, db.MatchPending, created.Status)

	// both orders resolve to the same row
	m, err := repo.FindForPair(ctx, 10, 1, 2)
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.Equal(t, created.ID, m.ID)

	m, err = repo.FindForPair(ctx, 10, 2, 1)
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.Equal(t, created.ID, m.ID)

	// different experience → no match
	m, err = repo.FindForPair(ctx, 11, 1, 2)
	require.NoError(t, err)
	assert.Nil(t, m)
}

func TestSetStatusAndDelete(t *testing.T) {
	ctx := context.Background()
	dbase := setupTestDB(t)
	repo := repository.NewMatchRepository(dbase)

	created, err := repo.Create(ctx, 1, 2, 10)
	require.NoError(t, err)

	require.NoError(t, repo.SetStatus(ctx, created.ID, db.MatchConfirmed))
	m, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.Equal(t, db.MatchConfirmed, m.Status)

	require.NoError(t, repo.Delete(ctx, created.ID))
	m, err = repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Nil(t, m)
}

func TestListForUser(t *testing.T) {
	ctx := context.Background()
	dbase := setupTestDB(t)
	repo := repository.NewMatchRepository(dbase)

	_, err := repo.Create(ctx, 1, 2, 10)
	require.NoError(t, err)
	_, err = repo.Create(ctx, 3, 1, 20)
	require.NoError(t, err)
	_, err = repo.Create(ctx, 2, 3, 30) // user 1 not involved
	require.NoError(t, err)

	matches, err := repo.ListForUser(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, matches, 2)
}

func TestDeleteForExperienceCascade(t *testing.T) {
	ctx := context.Background()
	dbase := setupTestDB(t)
	matches := repository.NewMatchRepository(dbase)
	swipes := repository.NewSwipeRepository(dbase)

	_, err := matches.Create(ctx, 1, 2, 10)
	require.NoError(t, err)
	_, err = swipes.Upsert(ctx, 1, 10, true)
	require.NoError(t, err)
	_, err = swipes.Upsert(ctx, 1, 20, true)
	require.NoError(t, err)

	require.NoError(t, matches.DeleteForExperience(ctx, 10))
	require.NoError(t, swipes.DeleteForExperience(ctx, 10))

	var matchCount, swipeCount int64
	require.NoError(t, dbase.Model(&db.Match{}).Count(&matchCount).Error)
	require.NoError(t, dbase.Model(&db.Swipe{}).Count(&swipeCount).Error)
	assert.Equal(t, int64(0), matchCount)
	assert.Equal(t, int64(1), swipeCount)
}
