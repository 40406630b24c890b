// Package match implements the swipe/match state machine: recording
// like/pass decisions and deriving mutual-interest matches with
// idempotent, race-safe semantics.
package match

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/wandermatch/wandermatch/internal/app"
	"github.com/wandermatch/wandermatch/internal/db"
	svcErr "github.com/wandermatch/wandermatch/internal/errors"
	"github.com/wandermatch/wandermatch/internal/repository"
)

// Direction is a swipe decision.
type Direction string

const (
	DirectionLike Direction = "like"
	DirectionPass Direction = "pass"
)

// Valid reports whether the direction is one of like/pass.
func (d Direction) Valid() bool {
	return d == DirectionLike || d == DirectionPass
}

// SwipeResult reports the outcome of RecordSwipe. Match is nil unless
// the swipe is a non-owner like: then it carries the (new or existing)
// match.
type SwipeResult struct {
	MatchCreated bool
	Match        *db.Match
}

// MatchView is a match joined with display fields from its experience.
type MatchView struct {
	ID             uint64    `json:"id"`
	SwiperID       uint64    `json:"swiper_id"`
	OwnerID        uint64    `json:"owner_id"`
	ExperienceID   uint64    `json:"experience_id"`
	Title          string    `json:"title"`
	ExperienceType string    `json:"experience_type"`
	Status         string    `json:"status"`
	MatchedAt      time.Time `json:"matched_at"`
}

// MatchList partitions a user's matches by what action they imply:
// confirmed (done), pending_received (this user must accept),
// pending_sent (waiting for the other side).
type MatchList struct {
	Confirmed       []MatchView `json:"confirmed"`
	PendingReceived []MatchView `json:"pending_received"`
	PendingSent     []MatchView `json:"pending_sent"`
}

// Service contains the state machine logic on top of the repository
// and cache layers.
type Service struct {
	appCtx      *app.AppContext
	experiences *repository.ExperienceRepository
	matches     *repository.MatchRepository
}

// NewService creates the match service with dependencies from
// AppContext.
func NewService(appCtx *app.AppContext) *Service {
	return &Service{
		appCtx:      appCtx,
		experiences: repository.NewExperienceRepository(appCtx.DB),
		matches:     repository.NewMatchRepository(appCtx.DB),
	}
}

// RecordSwipe upserts the actor's decision on an experience and, for a
// non-owner like, derives the match.
//
// Behavior:
//   - Unknown experience → NotFound.
//   - Self-swipes are recorded but never create a match.
//   - Repeated pass with unchanged direction is a no-op success.
//   - A like reuses the existing match for the unordered pair
//     {actor, owner} on this experience; otherwise creates a pending
//     one with userA = actor (swiper), userB = owner.
//   - Swipe upsert and match check-or-create run in one transaction so
//     concurrent likes cannot produce duplicate rows.
//   - Any newly recorded or changed swipe marks the actor's preference
//     cache stale and adjusts the experience's like counter.
func (s *Service) RecordSwipe(ctx context.Context, actorID, experienceID uint64, direction Direction) (*SwipeResult, error) {
	exp, err := s.experiences.GetByID(ctx, experienceID)
	if err != nil {
		return nil, err
	}
	if exp == nil {
		return nil, svcErr.NotFoundf("experience %d", experienceID)
	}

	liked := direction == DirectionLike
	result := &SwipeResult{}
	var prevLiked *bool

	err = s.appCtx.DB.Transaction(func(tx *gorm.DB) error {
		swipes := repository.NewSwipeRepository(tx)

		prev, err := swipes.Upsert(ctx, actorID, experienceID, liked)
		if err != nil {
			return err
		}
		prevLiked = prev

		// Owner swipes on their own experience are recorded for
		// completeness, never matched.
		if exp.OwnerID == actorID || !liked {
			return nil
		}

		matches := repository.NewMatchRepository(tx)
		existing, err := matches.FindForPair(ctx, experienceID, actorID, exp.OwnerID)
		if err != nil {
			return err
		}
		if existing != nil {
			result.Match = existing
			return nil
		}

		created, err := matches.Create(ctx, actorID, exp.OwnerID, experienceID)
		if err != nil {
			return err
		}
		result.Match = created
		result.MatchCreated = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Post-commit side effects, never part of the transaction.
	changed := prevLiked == nil || *prevLiked != liked
	if changed {
		if err := s.appCtx.RedisCache.MarkPrefsDirty(ctx, actorID); err != nil {
			s.appCtx.Logger.Warn("failed to mark prefs dirty", "user", actorID, "err", err)
		}
		switch {
		case liked:
			s.appCtx.RedisCache.IncrLikeCount(ctx, experienceID)
		case prevLiked != nil && *prevLiked:
			// like → pass transition
			s.appCtx.RedisCache.DecrLikeCount(ctx, experienceID)
		}
	}

	s.appCtx.Logger.Debug("swipe recorded",
		"actor", actorID, "experience", experienceID,
		"direction", direction, "match_created", result.MatchCreated)

	return result, nil
}

// AcceptMatch confirms a pending match.
//
// Behavior:
//   - Absent match → NotFound.
//   - Actor must be both a participant and the experience owner.
//   - Accepting an already-confirmed match is a no-op success.
func (s *Service) AcceptMatch(ctx context.Context, actorID, matchID uint64) (*db.Match, error) {
	m, exp, err := s.loadMatchForUpdate(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if actorID != m.UserAID && actorID != m.UserBID {
		return nil, svcErr.Forbiddenf("user %d is not part of match %d", actorID, matchID)
	}
	if actorID != exp.OwnerID {
		return nil, svcErr.Forbiddenf("only the experience owner can accept match %d", matchID)
	}

	if m.Status == db.MatchConfirmed {
		return m, nil
	}
	if err := s.matches.SetStatus(ctx, m.ID, db.MatchConfirmed); err != nil {
		return nil, err
	}
	m.Status = db.MatchConfirmed

	s.appCtx.Logger.Info("match confirmed", "match", m.ID, "owner", actorID)
	return m, nil
}

// RejectMatch deletes a match entirely. Either participant may reject;
// rejecting is terminal, there is no retained "rejected" status.
func (s *Service) RejectMatch(ctx context.Context, actorID, matchID uint64) error {
	m, _, err := s.loadMatchForUpdate(ctx, matchID)
	if err != nil {
		return err
	}
	if actorID != m.UserAID && actorID != m.UserBID {
		return svcErr.Forbiddenf("user %d is not part of match %d", actorID, matchID)
	}

	if err := s.matches.Delete(ctx, m.ID); err != nil {
		return err
	}
	s.appCtx.Logger.Info("match rejected", "match", m.ID, "by", actorID)
	return nil
}

// ListMatchesForUser partitions the user's matches into confirmed,
// pending_received and pending_sent.
//
// Dedup rule: rows sharing the same unordered user pair and experience
// collapse into a single entry, keyed (min(id1,id2), max(id1,id2),
// experienceID). Defends against duplicate-insert races.
func (s *Service) ListMatchesForUser(ctx context.Context, userID uint64) (*MatchList, error) {
	matches, err := s.matches.ListForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	expIDs := make([]uint64, 0, len(matches))
	for _, m := range matches {
		expIDs = append(expIDs, m.ExperienceID)
	}
	exps, err := s.experiences.GetMap(ctx, expIDs)
	if err != nil {
		return nil, err
	}

	type pairKey struct {
		lo, hi, exp uint64
	}
	seen := make(map[pairKey]bool, len(matches))

	list := &MatchList{
		Confirmed:       []MatchView{},
		PendingReceived: []MatchView{},
		PendingSent:     []MatchView{},
	}
	for _, m := range matches {
		lo, hi := db.PairKey(m.UserAID, m.UserBID)
		key := pairKey{lo: lo, hi: hi, exp: m.ExperienceID}
		if seen[key] {
			continue
		}
		seen[key] = true

		exp, ok := exps[m.ExperienceID]
		if !ok {
			// experience vanished mid-read; cascade will clean up
			continue
		}

		// Derive roles from the experience, not column order: a raced
		// duplicate row may carry the pair swapped.
		swiperID := m.UserAID
		if swiperID == exp.OwnerID {
			swiperID = m.UserBID
		}

		view := MatchView{
			ID:             m.ID,
			SwiperID:       swiperID,
			OwnerID:        exp.OwnerID,
			ExperienceID:   m.ExperienceID,
			Title:          exp.Title,
			ExperienceType: exp.ExperienceType,
			Status:         m.Status,
			MatchedAt:      m.CreatedAt,
		}

		switch {
		case m.Status == db.MatchConfirmed:
			list.Confirmed = append(list.Confirmed, view)
		case exp.OwnerID == userID:
			list.PendingReceived = append(list.PendingReceived, view)
		default:
			list.PendingSent = append(list.PendingSent, view)
		}
	}
	return list, nil
}

// loadMatchForUpdate fetches a match plus its experience, translating
// absence into NotFound.
func (s *Service) loadMatchForUpdate(ctx context.Context, matchID uint64) (*db.Match, *db.Experience, error) {
	m, err := s.matches.GetByID(ctx, matchID)
	if err != nil {
		return nil, nil, err
	}
	if m == nil {
		return nil, nil, svcErr.NotFoundf("match %d", matchID)
	}
	exp, err := s.experiences.GetByID(ctx, m.ExperienceID)
	if err != nil {
		return nil, nil, err
	}
	if exp == nil {
		return nil, nil, svcErr.NotFoundf("experience %d for match %d", m.ExperienceID, matchID)
	}
	return m, exp, nil
}
