package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/wandermatch/wandermatch/internal/db"
)

// SwipeRepository provides data access methods for the Swipe model.
// It encapsulates all queries related to like/pass decisions on
// experiences.
type SwipeRepository struct {
	db *gorm.DB
}

// NewSwipeRepository creates a new repository bound to the given DB
// connection (or transaction).
func NewSwipeRepository(database *gorm.DB) *SwipeRepository {
	return &SwipeRepository{db: database}
}

// Upsert inserts or updates the swipe (userID, experienceID) → liked.
//
// Behavior:
//   - If the pair does not exist → a new row is inserted.
//   - If it exists → the row is updated with the new "liked" value.
//   - Composite PK ensures the overwrite guarantee even when two
//     concurrent requests race on the insert.
//
// Returns prevLiked (nil when the swipe is new) so the caller can tell
// no-op repeats from real transitions.
func (r *SwipeRepository) Upsert(
	ctx context.Context,
	userID, experienceID uint64,
	liked bool,
) (prevLiked *bool, err error) {
	var existing db.Swipe
	err = r.db.WithContext(ctx).
		Where("user_id = ? AND experience_id = ?", userID, experienceID).
		First(&existing).Error
	switch {
	case err == nil:
		prev := existing.Liked
		prevLiked = &prev
		if prev == liked {
			return prevLiked, nil
		}
		err = r.db.WithContext(ctx).
			Model(&db.Swipe{}).
			Where("user_id = ? AND experience_id = ?", userID, experienceID).
			Update("liked", liked).Error
		return prevLiked, err

	case errors.Is(err, gorm.ErrRecordNotFound):
		swipe := db.Swipe{
			UserID:       userID,
			ExperienceID: experienceID,
			Liked:        liked,
		}
		err = r.db.WithContext(ctx).
			Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "user_id"}, {Name: "experience_id"}},
				DoUpdates: clause.AssignmentColumns([]string{"liked"}),
			}).
			Create(&swipe).Error
		return nil, err

	default:
		return nil, err
	}
}

// SwipedExperienceIDs returns the ids of every experience the user has
// already swiped on, regardless of direction.
func (r *SwipeRepository) SwipedExperienceIDs(ctx context.Context, userID uint64) ([]uint64, error) {
	var ids []uint64
	err := r.db.WithContext(ctx).
		Model(&db.Swipe{}).
		Where("user_id = ?", userID).
		Pluck("experience_id", &ids).Error
	return ids, err
}

// LatestSwipeAt returns the timestamp of the user's most recent swipe,
// or nil if the user has never swiped. Feeds the preference-cache
// staleness check.
func (r *SwipeRepository) LatestSwipeAt(ctx context.Context, userID uint64) (*time.Time, error) {
	var swipe db.Swipe
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("updated_at DESC").
		First(&swipe).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	ts := swipe.UpdatedAt
	return &ts, nil
}

// CountLikes returns how many users liked the given experience.
// Used in conjunction with the Redis counter (DB is fallback).
func (r *SwipeRepository) CountLikes(ctx context.Context, experienceID uint64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&db.Swipe{}).
		Where("experience_id = ? AND liked = ?", experienceID, true).
		Count(&count).Error
	return count, err
}

// DeleteForExperience removes every swipe on an experience. Part of
// the experience-deletion cascade and expected to run inside that
// transaction.
func (r *SwipeRepository) DeleteForExperience(ctx context.Context, experienceID uint64) error {
	return r.db.WithContext(ctx).
		Where("experience_id = ?", experienceID).
		Delete(&db.Swipe{}).Error
}
