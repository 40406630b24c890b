package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/wandermatch/wandermatch/internal/db"
	"github.com/wandermatch/wandermatch/internal/utils/pagination"
)

// ExperienceRepository provides data access methods for the Experience
// model.
type ExperienceRepository struct {
	db *gorm.DB
}

// NewExperienceRepository creates a new repository bound to the given
// DB connection (or transaction).
func NewExperienceRepository(database *gorm.DB) *ExperienceRepository {
	return &ExperienceRepository{db: database}
}

// Create inserts a new experience.
func (r *ExperienceRepository) Create(ctx context.Context, exp *db.Experience) error {
	return r.db.WithContext(ctx).Create(exp).Error
}

// GetByID fetches an experience by primary key. Returns nil without
// error when absent.
func (r *ExperienceRepository) GetByID(ctx context.Context, id uint64) (*db.Experience, error) {
	var exp db.Experience
	err := r.db.WithContext(ctx).First(&exp, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &exp, nil
}

// GetMap batch-loads experiences by id into a map. Missing ids are
// simply absent from the result.
func (r *ExperienceRepository) GetMap(ctx context.Context, ids []uint64) (map[uint64]db.Experience, error) {
	result := make(map[uint64]db.Experience, len(ids))
	if len(ids) == 0 {
		return result, nil
	}
	var exps []db.Experience
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&exps).Error; err != nil {
		return nil, err
	}
	for _, e := range exps {
		result[e.ID] = e
	}
	return result, nil
}

// Save persists updates to an existing experience.
func (r *ExperienceRepository) Save(ctx context.Context, exp *db.Experience) error {
	return r.db.WithContext(ctx).Save(exp).Error
}

// Delete removes an experience. The service wraps this together with
// the swipe and match cascades in one transaction.
func (r *ExperienceRepository) Delete(ctx context.Context, id uint64) error {
	return r.db.WithContext(ctx).Delete(&db.Experience{}, id).Error
}

// ListByOwner returns all experiences owned by a user, newest first.
func (r *ExperienceRepository) ListByOwner(ctx context.Context, ownerID uint64) ([]db.Experience, error) {
	var exps []db.Experience
	err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC, id DESC").
		Find(&exps).Error
	return exps, err
}

// ListCandidates returns the swipeable experiences for a user: not
// self-owned, not already swiped, and whose owner still exists.
//
// Behavior:
//   - Joins users to drop experiences whose owner row vanished.
//   - excludeIDs is the caller's already-swiped set.
func (r *ExperienceRepository) ListCandidates(
	ctx context.Context,
	userID uint64,
	excludeIDs []uint64,
) ([]db.Experience, error) {
	var exps []db.Experience
	query := r.db.WithContext(ctx).
		Table("experiences e").
		Select("e.*").
		Joins("JOIN users u ON u.id = e.owner_id").
		Where("e.owner_id != ?", userID).
		Order("e.created_at DESC, e.id DESC")
	if len(excludeIDs) > 0 {
		query = query.Where("e.id NOT IN ?", excludeIDs)
	}
	err := query.Find(&exps).Error
	return exps, err
}

// ListAll returns a creation-ordered page of all experiences.
//
// Behavior:
//   - Ordered by created_at DESC, id DESC.
//   - Supports cursor-based pagination via paginationToken.
func (r *ExperienceRepository) ListAll(
	ctx context.Context,
	paginationToken *string,
	limit int,
) ([]db.Experience, *string, error) {
	var exps []db.Experience

	cursor, err := pagination.Decode(getString(paginationToken))
	if err != nil {
		return nil, nil, err
	}

	query := r.db.WithContext(ctx).
		Table("experiences e").
		Order("e.created_at DESC, e.id DESC").
		Limit(limit + 1)

	// apply cursor
	if cursor.ID > 0 && cursor.CreatedUnix > 0 {
		ts := time.UnixMilli(cursor.CreatedUnix)
		query = query.Where(
			"(e.created_at < ? OR (e.created_at = ? AND e.id < ?))",
			ts, ts, cursor.ID,
		)
	}

	if err := query.Find(&exps).Error; err != nil {
		return nil, nil, err
	}

	// pagination: build next cursor if needed
	var nextToken *string
	if len(exps) > limit {
		last := exps[limit-1]
		token, _ := pagination.Encode(pagination.Cursor{
			ID:          last.ID,
			CreatedUnix: last.CreatedAt.UnixMilli(),
		})
		nextToken = &token
		exps = exps[:limit]
	}

	return exps, nextToken, nil
}

// getString safely dereferences a string pointer for pagination tokens.
func getString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
