// Package experience manages user-authored experience posts: the CRUD
// surface, the deletion cascade over swipes and matches, and the
// best-effort vector-index sync issued after each write commits.
package experience

import (
	"context"

	"gorm.io/gorm"

	"github.com/wandermatch/wandermatch/internal/app"
	"github.com/wandermatch/wandermatch/internal/db"
	svcErr "github.com/wandermatch/wandermatch/internal/errors"
	"github.com/wandermatch/wandermatch/internal/repository"
)

// Indexer is the slice of the ranking engine this service needs:
// keeping the vector index in sync with experience writes. Calls are
// best-effort and issued only after the primary transaction commits.
type Indexer interface {
	IndexExperience(ctx context.Context, exp *db.Experience)
	DeindexExperience(ctx context.Context, experienceID uint64)
}

// Input carries the mutable fields of an experience.
type Input struct {
	Title          string   `json:"title"`
	Description    string   `json:"description"`
	ExperienceType string   `json:"experience_type"`
	Lat            *float64 `json:"lat"`
	Lng            *float64 `json:"lng"`
	PlaceRef       string   `json:"place_ref"`
	ImageURL       string   `json:"image_url"`
}

// Service contains the experience CRUD logic on top of the repository
// and cache layers.
type Service struct {
	appCtx      *app.AppContext
	experiences *repository.ExperienceRepository
	swipes      *repository.SwipeRepository
	indexer     Indexer
}

// NewService creates the experience service with dependencies from
// AppContext plus the ranking engine's indexer.
func NewService(appCtx *app.AppContext, indexer Indexer) *Service {
	return &Service{
		appCtx:      appCtx,
		experiences: repository.NewExperienceRepository(appCtx.DB),
		swipes:      repository.NewSwipeRepository(appCtx.DB),
		indexer:     indexer,
	}
}

// Create inserts a new experience owned by the acting user and indexes
// it after commit.
func (s *Service) Create(ctx context.Context, ownerID uint64, in Input) (*db.Experience, error) {
	exp := &db.Experience{
		OwnerID:        ownerID,
		Title:          in.Title,
		Description:    in.Description,
		ExperienceType: in.ExperienceType,
		Lat:            in.Lat,
		Lng:            in.Lng,
		PlaceRef:       in.PlaceRef,
		ImageURL:       in.ImageURL,
	}
	if err := s.experiences.Create(ctx, exp); err != nil {
		return nil, err
	}

	s.indexer.IndexExperience(ctx, exp)
	return exp, nil
}

// Get fetches one experience.
func (s *Service) Get(ctx context.Context, id uint64) (*db.Experience, error) {
	exp, err := s.experiences.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if exp == nil {
		return nil, svcErr.NotFoundf("experience %d", id)
	}
	return exp, nil
}

// Update mutates an experience. Owner only. Reindexes after commit.
func (s *Service) Update(ctx context.Context, actorID, id uint64, in Input) (*db.Experience, error) {
	exp, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if exp.OwnerID != actorID {
		return nil, svcErr.Forbiddenf("user %d does not own experience %d", actorID, id)
	}

	exp.Title = in.Title
	exp.Description = in.Description
	exp.ExperienceType = in.ExperienceType
	exp.Lat = in.Lat
	exp.Lng = in.Lng
	exp.PlaceRef = in.PlaceRef
	exp.ImageURL = in.ImageURL

	if err := s.experiences.Save(ctx, exp); err != nil {
		return nil, err
	}

	s.indexer.IndexExperience(ctx, exp)
	return exp, nil
}

// Delete removes an experience. Owner only. The row and its swipes and
// matches go in one transaction; the vector-index delete runs after
// commit and never rolls anything back.
func (s *Service) Delete(ctx context.Context, actorID, id uint64) error {
	exp, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if exp.OwnerID != actorID {
		return svcErr.Forbiddenf("user %d does not own experience %d", actorID, id)
	}

	err = s.appCtx.DB.Transaction(func(tx *gorm.DB) error {
		if err := repository.NewSwipeRepository(tx).DeleteForExperience(ctx, id); err != nil {
			return err
		}
		if err := repository.NewMatchRepository(tx).DeleteForExperience(ctx, id); err != nil {
			return err
		}
		return repository.NewExperienceRepository(tx).Delete(ctx, id)
	})
	if err != nil {
		return err
	}

	s.indexer.DeindexExperience(ctx, id)
	_ = s.appCtx.RedisCache.Del(ctx, s.appCtx.RedisCache.KeyForLikeCount(id))

	s.appCtx.Logger.Info("experience deleted", "experience", id, "owner", actorID)
	return nil
}

// ListOwn returns the acting user's experiences.
func (s *Service) ListOwn(ctx context.Context, ownerID uint64) ([]db.Experience, error) {
	return s.experiences.ListByOwner(ctx, ownerID)
}

// ListAll returns a page of all experiences for browsing.
func (s *Service) ListAll(ctx context.Context, paginationToken *string, limit int) ([]db.Experience, *string, error) {
	return s.experiences.ListAll(ctx, paginationToken, limit)
}

// CountLikes returns how many users liked the experience.
// Cache-first strategy:
//  1. Attempts to read from Redis (likes:count:exp:<id>).
//  2. On cache miss, falls back to the DB.
//  3. On DB fetch, updates Redis with a 1h TTL.
func (s *Service) CountLikes(ctx context.Context, id uint64) (int64, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return 0, err
	}

	if count, ok, err := s.appCtx.RedisCache.GetLikeCount(ctx, id); err == nil && ok {
		return count, nil
	}

	count, err := s.swipes.CountLikes(ctx, id)
	if err != nil {
		return 0, err
	}
	if err := s.appCtx.RedisCache.UpdateLikeCount(ctx, id, count); err != nil {
		s.appCtx.Logger.Warn("failed to cache like count", "experience", id, "err", err)
	}
	return count, nil
}
