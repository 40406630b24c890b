package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/wandermatch/wandermatch/internal/db"
)

// MatchRepository provides data access methods for the Match model.
//
// Every lookup treats (userA, userB) as an unordered pair: rows with
// swapped user order for the same experience are the same logical
// match. Callers must never compare user columns directly without the
// swap.
type MatchRepository struct {
	db *gorm.DB
}

// NewMatchRepository creates a new repository bound to the given DB
// connection (or transaction).
func NewMatchRepository(database *gorm.DB) *MatchRepository {
	return &MatchRepository{db: database}
}

// GetByID fetches a match by primary key. Returns nil without error
// when absent.
func (r *MatchRepository) GetByID(ctx context.Context, id uint64) (*db.Match, error) {
	var match db.Match
	err := r.db.WithContext(ctx).First(&match, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &match, nil
}

// FindForPair looks up the match for the unordered pair {userX, userY}
// scoped to one experience. Returns nil without error when absent.
func (r *MatchRepository) FindForPair(ctx context.Context, experienceID, userX, userY uint64) (*db.Match, error) {
	var match db.Match
	err := r.db.WithContext(ctx).
		Where("experience_id = ?", experienceID).
		Where("(user_a_id = ? AND user_b_id = ?) OR (user_a_id = ? AND user_b_id = ?)",
			userX, userY, userY, userX).
		First(&match).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &match, nil
}

// Create inserts a new pending match with userA = swiper, userB =
// owner. Callers check FindForPair first inside the same transaction
// to keep the insert idempotent.
func (r *MatchRepository) Create(ctx context.Context, swiperID, ownerID, experienceID uint64) (*db.Match, error) {
	match := db.Match{
		UserAID:      swiperID,
		UserBID:      ownerID,
		ExperienceID: experienceID,
		Status:       db.MatchPending,
	}
	if err := r.db.WithContext(ctx).Create(&match).Error; err != nil {
		return nil, err
	}
	return &match, nil
}

// SetStatus updates the match status.
func (r *MatchRepository) SetStatus(ctx context.Context, id uint64, status string) error {
	return r.db.WithContext(ctx).
		Model(&db.Match{}).
		Where("id = ?", id).
		Update("status", status).Error
}

// Delete removes a match row entirely. Rejecting is terminal: there is
// no "rejected" status retained.
func (r *MatchRepository) Delete(ctx context.Context, id uint64) error {
	return r.db.WithContext(ctx).Delete(&db.Match{}, id).Error
}

// ListForUser returns every match the user participates in, newest
// first. Read paths tolerate duplicate rows from insert races; the
// service collapses them with the canonical pair key.
func (r *MatchRepository) ListForUser(ctx context.Context, userID uint64) ([]db.Match, error) {
	var matches []db.Match
	err := r.db.WithContext(ctx).
		Where("user_a_id = ? OR user_b_id = ?", userID, userID).
		Order("updated_at DESC, id DESC").
		Find(&matches).Error
	return matches, err
}

// DeleteForExperience removes every match on an experience. Part of
// the experience-deletion cascade.
func (r *MatchRepository) DeleteForExperience(ctx context.Context, experienceID uint64) error {
	return r.db.WithContext(ctx).
		Where("experience_id = ?", experienceID).
		Delete(&db.Match{}).Error
}
