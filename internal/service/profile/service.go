// Package profile handles preference edits on the user profile. The
// matching-relevant part is small: updating the preferred experience
// types must flag the cached preference vector stale.
package profile

import (
	"context"

	"github.com/wandermatch/wandermatch/internal/app"
	"github.com/wandermatch/wandermatch/internal/db"
	svcErr "github.com/wandermatch/wandermatch/internal/errors"
	"github.com/wandermatch/wandermatch/internal/repository"
)

// Service contains the profile logic on top of the repository and
// cache layers.
type Service struct {
	appCtx *app.AppContext
	users  *repository.UserRepository
}

// NewService creates the profile service with dependencies from
// AppContext.
func NewService(appCtx *app.AppContext) *Service {
	return &Service{
		appCtx: appCtx,
		users:  repository.NewUserRepository(appCtx.DB),
	}
}

// Get fetches the acting user's profile.
func (s *Service) Get(ctx context.Context, userID uint64) (*db.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, svcErr.NotFoundf("user %d", userID)
	}
	return user, nil
}

// UpdatePreferences replaces the user's preferred experience types and
// optionally the open preference map, then marks the cached preference
// vector stale so the next ranking call regenerates it.
func (s *Service) UpdatePreferences(
	ctx context.Context,
	userID uint64,
	preferredTypes []string,
	preferences map[string]string,
) (*db.User, error) {
	user, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	if preferredTypes == nil {
		preferredTypes = []string{}
	}
	if preferences == nil {
		preferences = user.Preferences
	}

	if err := s.users.UpdatePreferences(ctx, userID, preferredTypes, preferences); err != nil {
		return nil, err
	}
	if err := s.appCtx.RedisCache.MarkPrefsDirty(ctx, userID); err != nil {
		s.appCtx.Logger.Warn("failed to mark prefs dirty", "user", userID, "err", err)
	}

	user.PreferredTypes = preferredTypes
	user.Preferences = preferences
	s.appCtx.Logger.Debug("preferences updated", "user", userID, "types", preferredTypes)
	return user, nil
}
