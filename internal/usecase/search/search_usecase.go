package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/google/uuid"

	"github.com/kidsactivitytracker/backend/internal/cache"
	"github.com/kidsactivitytracker/backend/internal/domain"
	"github.com/kidsactivitytracker/backend/internal/infrastructure/catalog"
	"github.com/kidsactivitytracker/backend/internal/merge"
	"github.com/kidsactivitytracker/backend/internal/query"
	"github.com/kidsactivitytracker/backend/internal/repository"
)

// ProfileCache is the read-through side of the preference cache.
type ProfileCache interface {
	Get(ctx context.Context, childID uuid.UUID) (*domain.ChildProfile, error)
	Set(ctx context.Context, child *domain.ChildProfile) error
}

// CatalogClient runs the actual catalog search; ranking lives there.
type CatalogClient interface {
	Search(ctx context.Context, params url.Values) ([]catalog.Activity, error)
}

type SearchUseCase struct {
	childRepo repository.ChildRepository
	prefCache ProfileCache
	catalog   CatalogClient
	logger    *slog.Logger
}

func NewSearchUseCase(
	childRepo repository.ChildRepository,
	prefCache ProfileCache,
	catalogClient CatalogClient,
	logger *slog.Logger,
) *SearchUseCase {
	return &SearchUseCase{
		childRepo: childRepo,
		prefCache: prefCache,
		catalog:   catalogClient,
		logger:    logger,
	}
}

// SearchRequest selects which children to search for and how to combine
// them. An empty ChildIDs list means all of the guardian's children.
type SearchRequest struct {
	GuardianID uuid.UUID
	ChildIDs   []uuid.UUID
	Mode       merge.Mode
}

type SearchResponse struct {
	Activities  []catalog.Activity        `json:"activities"`
	Constraints merge.MergedConstraintSet `json:"constraints"`
	Feasible    bool                      `json:"feasible"`
}

// Search merges the selected children's profiles under the requested mode
// and queries the catalog with the result. A contradictory merged set (a
// together-mode search over incompatible ages or budgets) short-circuits to
// zero results without touching the catalog.
func (uc *SearchUseCase) Search(ctx context.Context, req *SearchRequest) (*SearchResponse, error) {
	profiles, err := uc.loadProfiles(ctx, req)
	if err != nil {
		return nil, err
	}

	merged := merge.Merge(profiles, req.Mode)
	resp := &SearchResponse{
		Activities:  []catalog.Activity{},
		Constraints: merged,
		Feasible:    merged.Feasible(),
	}

	params, ok := query.Build(&merged)
	if !ok {
		uc.logger.Info("merged constraints infeasible, skipping catalog",
			"guardian_id", req.GuardianID, "mode", req.Mode, "children", len(profiles))
		return resp, nil
	}

	activities, err := uc.catalog.Search(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("catalog search: %w", err)
	}
	if activities != nil {
		resp.Activities = activities
	}
	return resp, nil
}

// loadProfiles reads the selected profiles fresh for this search, in request
// order so the merged primary location stays deterministic. Explicit ids go
// through the preference cache; "all children" reads the store directly.
func (uc *SearchUseCase) loadProfiles(ctx context.Context, req *SearchRequest) ([]*domain.ChildProfile, error) {
	if len(req.ChildIDs) == 0 {
		return uc.childRepo.ListByGuardian(ctx, req.GuardianID)
	}

	profiles := make([]*domain.ChildProfile, 0, len(req.ChildIDs))
	for _, id := range req.ChildIDs {
		child, err := uc.loadProfile(ctx, id)
		if err != nil {
			return nil, err
		}
		if child.GuardianID != req.GuardianID {
			return nil, domain.ErrForbidden
		}
		profiles = append(profiles, child)
	}
	return profiles, nil
}

func (uc *SearchUseCase) loadProfile(ctx context.Context, childID uuid.UUID) (*domain.ChildProfile, error) {
	if uc.prefCache != nil {
		child, err := uc.prefCache.Get(ctx, childID)
		if err == nil {
			return child, nil
		}
		if !errors.Is(err, cache.ErrMiss) {
			// Cache trouble degrades to the store.
			uc.logger.Warn("preference cache read failed", "child_id", childID, "error", err)
		}
	}

	child, err := uc.childRepo.GetByID(ctx, childID)
	if err != nil {
		return nil, err
	}
	if uc.prefCache != nil {
		if err := uc.prefCache.Set(ctx, child); err != nil {
			uc.logger.Warn("preference cache write failed", "child_id", childID, "error", err)
		}
	}
	return child, nil
}
