// Package discover implements the personalized ranking engine: it
// blends the user's cached preference embedding, vector-index
// similarity and direct attribute scoring into an ordered candidate
// feed, and keeps the index in sync with experience writes.
package discover

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/wandermatch/wandermatch/internal/app"
	"github.com/wandermatch/wandermatch/internal/db"
	svcErr "github.com/wandermatch/wandermatch/internal/errors"
	"github.com/wandermatch/wandermatch/internal/prefs"
	"github.com/wandermatch/wandermatch/internal/repository"
	"github.com/wandermatch/wandermatch/internal/vectorindex"
)

// Scoring constants. Index hits carry their similarity score; the rest
// are fixed attribute weights.
const (
	baselineScore     = 0.3 // index reachable but candidate not returned
	fallbackBase      = 0.5
	fallbackExactType = 0.3
	fallbackSubstring = 0.2
)

const genericReason = "Something new to try"

// Candidate is one ranked entry in the discovery feed.
type Candidate struct {
	Experience db.Experience `json:"experience"`
	Score      float32       `json:"score"`
	Reason     string        `json:"reason"`
}

// Service contains the ranking logic on top of the repositories, the
// preference cache and the vector index.
type Service struct {
	appCtx      *app.AppContext
	users       *repository.UserRepository
	swipes      *repository.SwipeRepository
	experiences *repository.ExperienceRepository
	prefCache   *prefs.Cache
}

// NewService creates the discover service with dependencies from
// AppContext.
func NewService(appCtx *app.AppContext) *Service {
	users := repository.NewUserRepository(appCtx.DB)
	swipes := repository.NewSwipeRepository(appCtx.DB)
	return &Service{
		appCtx:      appCtx,
		users:       users,
		swipes:      swipes,
		experiences: repository.NewExperienceRepository(appCtx.DB),
		prefCache:   prefs.NewCache(users, swipes, appCtx.RedisCache, appCtx.Embedder, appCtx.Logger),
	}
}

// GetCandidates returns up to limit unseen experiences for the user,
// ordered best-first and annotated with a score and a human-readable
// reason.
//
// Behavior:
//   - Excludes self-owned and already-swiped experiences.
//   - With a reachable index and a usable preference vector, index
//     similarity order wins; candidates the index missed are appended
//     with a fixed low baseline so the union still covers every
//     candidate exactly once.
//   - Otherwise scores candidates locally on type attributes alone.
//   - Never hard-fails on embedding or index trouble.
func (s *Service) GetCandidates(ctx context.Context, userID uint64, limit int) ([]Candidate, error) {
	if limit <= 0 {
		limit = 20
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, svcErr.NotFoundf("user %d", userID)
	}

	swiped, err := s.swipes.SwipedExperienceIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	candidates, err := s.experiences.ListCandidates(ctx, userID, swiped)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return []Candidate{}, nil
	}

	vector, degraded := s.prefCache.GetOrRefresh(ctx, user)

	if !degraded {
		if err := s.appCtx.Index.Ping(ctx); err == nil {
			ranked, err := s.rankByIndex(ctx, user, vector, candidates, limit)
			if err == nil {
				return ranked, nil
			}
			s.appCtx.Logger.Warn("vector index query failed, falling back to attribute scoring",
				"user", userID, "err", err)
		} else {
			s.appCtx.Logger.Warn("vector index unreachable, falling back to attribute scoring",
				"user", userID)
		}
	}

	return rankByAttributes(user, candidates, limit), nil
}

// rankByIndex orders candidates by vector-index similarity, appending
// any candidate the index did not return at a fixed baseline score.
func (s *Service) rankByIndex(
	ctx context.Context,
	user *db.User,
	vector []float32,
	candidates []db.Experience,
	limit int,
) ([]Candidate, error) {
	hits, err := s.appCtx.Index.Query(ctx, vector, 2*limit, vectorindex.Filter{
		ExcludeOwnerID: strconv.FormatUint(user.ID, 10),
	})
	if err != nil {
		return nil, err
	}

	byID := make(map[uint64]db.Experience, len(candidates))
	for _, exp := range candidates {
		byID[exp.ID] = exp
	}

	ranked := make([]Candidate, 0, len(candidates))
	added := make(map[uint64]bool, len(candidates))

	// Index order takes precedence.
	for _, hit := range hits {
		id, ok := parseVectorID(hit.ID)
		if !ok {
			continue
		}
		exp, ok := byID[id]
		if !ok || added[id] {
			continue
		}
		added[id] = true
		ranked = append(ranked, Candidate{
			Experience: exp,
			Score:      hit.Score,
			Reason:     reasonFor(user, exp),
		})
	}

	// Index incompleteness: the union must still cover every candidate
	// exactly once.
	for _, exp := range candidates {
		if added[exp.ID] {
			continue
		}
		ranked = append(ranked, Candidate{
			Experience: exp,
			Score:      baselineScore,
			Reason:     genericReason,
		})
	}

	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked, nil
}

// rankByAttributes scores candidates locally when the index is
// unreachable or the user has no usable preference signal.
func rankByAttributes(user *db.User, candidates []db.Experience, limit int) []Candidate {
	ranked := make([]Candidate, 0, len(candidates))
	for _, exp := range candidates {
		score := float32(fallbackBase)
		reason := genericReason

		if hasExactType(user.PreferredTypes, exp.ExperienceType) {
			score += fallbackExactType
			reason = preferenceReason(exp.ExperienceType)
		} else if hasSubstringType(user.PreferredTypes, exp.ExperienceType) {
			score += fallbackSubstring
			reason = preferenceReason(exp.ExperienceType)
		}

		ranked = append(ranked, Candidate{Experience: exp, Score: score, Reason: reason})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		// ties broken by most-recent-first
		return ranked[i].Experience.CreatedAt.After(ranked[j].Experience.CreatedAt)
	})

	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

func reasonFor(user *db.User, exp db.Experience) string {
	if hasExactType(user.PreferredTypes, exp.ExperienceType) {
		return preferenceReason(exp.ExperienceType)
	}
	return genericReason
}

func preferenceReason(experienceType string) string {
	return fmt.Sprintf("Matches your preference for %s", experienceType)
}

func hasExactType(preferred []string, experienceType string) bool {
	for _, t := range preferred {
		if t == experienceType {
			return true
		}
	}
	return false
}

func hasSubstringType(preferred []string, experienceType string) bool {
	lower := strings.ToLower(experienceType)
	for _, t := range preferred {
		lt := strings.ToLower(t)
		if strings.Contains(lower, lt) || strings.Contains(lt, lower) {
			return true
		}
	}
	return false
}

// IndexExperience embeds a minimal description of the experience and
// upserts it into the vector index. Best-effort: failures are logged
// and never block the owning write.
func (s *Service) IndexExperience(ctx context.Context, exp *db.Experience) {
	text := "Experience type: " + exp.ExperienceType
	vector, err := s.appCtx.Embedder.Embed(ctx, text)
	if err != nil {
		s.appCtx.Logger.Warn("failed to embed experience for indexing",
			"experience", exp.ID, "err", err)
		return
	}

	err = s.appCtx.Index.Upsert(ctx, vectorID(exp.ID), vector, map[string]any{
		"owner_id":        strconv.FormatUint(exp.OwnerID, 10),
		"experience_type": exp.ExperienceType,
	})
	if err != nil {
		s.appCtx.Logger.Warn("failed to upsert experience vector",
			"experience", exp.ID, "err", err)
	}
}

// DeindexExperience removes a deleted experience from the vector
// index. Best-effort, like IndexExperience.
func (s *Service) DeindexExperience(ctx context.Context, experienceID uint64) {
	if err := s.appCtx.Index.Delete(ctx, vectorID(experienceID)); err != nil {
		s.appCtx.Logger.Warn("failed to delete experience vector",
			"experience", experienceID, "err", err)
	}
}

// vectorID derives the stable index id for an experience.
func vectorID(experienceID uint64) string {
	return "exp-" + strconv.FormatUint(experienceID, 10)
}

func parseVectorID(id string) (uint64, bool) {
	raw, ok := strings.CutPrefix(id, "exp-")
	if !ok {
		return 0, false
	}
	n, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}
