package children

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/kidsactivitytracker/backend/internal/domain"
	"github.com/kidsactivitytracker/backend/internal/merge"
	"github.com/kidsactivitytracker/backend/internal/repository"
)

// PreferenceCache is the write-invalidation side of the preference cache.
// Every mutation must invalidate so the next search merges fresh profiles.
type PreferenceCache interface {
	Invalidate(ctx context.Context, childID uuid.UUID) error
}

type ChildrenUseCase struct {
	childRepo repository.ChildRepository
	prefCache PreferenceCache
	logger    *slog.Logger
}

func NewChildrenUseCase(
	childRepo repository.ChildRepository,
	prefCache PreferenceCache,
	logger *slog.Logger,
) *ChildrenUseCase {
	return &ChildrenUseCase{
		childRepo: childRepo,
		prefCache: prefCache,
		logger:    logger,
	}
}

// CreateChildRequest carries a new child profile. Enum fields use the
// custom weekday/oneof validators registered on the binding engine.
type CreateChildRequest struct {
	Name                  string            `json:"name" binding:"required,min=1,max=100"`
	Age                   int               `json:"age" binding:"min=0,max=18"`
	Gender                domain.Gender     `json:"gender" binding:"omitempty,oneof=male female"`
	ActivityTypesAllowed  []string          `json:"activity_types_allowed" binding:"omitempty,max=30,dive,min=1,max=50"`
	ActivityTypesExcluded []string          `json:"activity_types_excluded" binding:"omitempty,max=30,dive,min=1,max=50"`
	DaysAvailable         []domain.Weekday  `json:"days_available" binding:"omitempty,max=7,dive,weekday"`
	TimeSlots             domain.TimeSlots  `json:"time_slots"`
	PriceRange            domain.PriceRange `json:"price_range"`
	DistanceRadiusKm      float64           `json:"distance_radius_km" binding:"omitempty,gt=0"`
	HomeAddress           json.RawMessage   `json:"home_address"`
	EnvironmentPreference domain.Environment `json:"environment_preference" binding:"omitempty,oneof=all indoor outdoor"`
}

// UpdateChildRequest updates only the provided fields; a nil pointer means
// "leave unchanged".
type UpdateChildRequest struct {
	Name                  *string            `json:"name" binding:"omitempty,min=1,max=100"`
	Age                   *int               `json:"age" binding:"omitempty,min=0,max=18"`
	Gender                *domain.Gender     `json:"gender" binding:"omitempty,oneof=male female"`
	ActivityTypesAllowed  *[]string          `json:"activity_types_allowed" binding:"omitempty,max=30,dive,min=1,max=50"`
	ActivityTypesExcluded *[]string          `json:"activity_types_excluded" binding:"omitempty,max=30,dive,min=1,max=50"`
	DaysAvailable         *[]domain.Weekday  `json:"days_available" binding:"omitempty,max=7,dive,weekday"`
	TimeSlots             *domain.TimeSlots  `json:"time_slots"`
	PriceRange            *domain.PriceRange `json:"price_range"`
	DistanceRadiusKm      *float64           `json:"distance_radius_km" binding:"omitempty,gt=0"`
	HomeAddress           json.RawMessage    `json:"home_address"`
	EnvironmentPreference *domain.Environment `json:"environment_preference" binding:"omitempty,oneof=all indoor outdoor"`
}

// validatePriceRange covers the cross-field rule binding tags can't express.
// The merge engine does not defend against malformed profiles, so inverted
// stored ranges must be rejected here (a merged result may still invert).
func validatePriceRange(p domain.PriceRange) error {
	if p.Min < 0 {
		return fmt.Errorf("%w: price minimum must not be negative", domain.ErrInvalidInput)
	}
	if p.Max != nil && *p.Max < p.Min {
		return fmt.Errorf("%w: price maximum below minimum", domain.ErrInvalidInput)
	}
	return nil
}

func (uc *ChildrenUseCase) Create(ctx context.Context, guardianID uuid.UUID, req *CreateChildRequest) (*domain.ChildProfile, error) {
	if err := validatePriceRange(req.PriceRange); err != nil {
		return nil, err
	}

	child := &domain.ChildProfile{
		ID:                    uuid.New(),
		GuardianID:            guardianID,
		Name:                  req.Name,
		Age:                   req.Age,
		Gender:                req.Gender,
		ActivityTypesAllowed:  req.ActivityTypesAllowed,
		ActivityTypesExcluded: req.ActivityTypesExcluded,
		DaysAvailable:         req.DaysAvailable,
		TimeSlots:             req.TimeSlots,
		PriceRange:            req.PriceRange,
		DistanceRadiusKm:      req.DistanceRadiusKm,
		HomeAddress:           req.HomeAddress,
		EnvironmentPreference: req.EnvironmentPreference,
	}
	if child.DistanceRadiusKm == 0 {
		child.DistanceRadiusKm = merge.DefaultRadiusKm
	}
	if child.EnvironmentPreference == "" {
		child.EnvironmentPreference = domain.EnvironmentAll
	}

	if err := uc.childRepo.Create(ctx, child); err != nil {
		return nil, fmt.Errorf("create child profile: %w", err)
	}
	uc.invalidate(ctx, child.ID)
	return child, nil
}

func (uc *ChildrenUseCase) Get(ctx context.Context, guardianID, childID uuid.UUID) (*domain.ChildProfile, error) {
	child, err := uc.childRepo.GetByID(ctx, childID)
	if err != nil {
		return nil, err
	}
	if child.GuardianID != guardianID {
		return nil, domain.ErrForbidden
	}
	return child, nil
}

func (uc *ChildrenUseCase) List(ctx context.Context, guardianID uuid.UUID) ([]*domain.ChildProfile, error) {
	children, err := uc.childRepo.ListByGuardian(ctx, guardianID)
	if err != nil {
		return nil, fmt.Errorf("list child profiles: %w", err)
	}
	return children, nil
}

func (uc *ChildrenUseCase) Update(ctx context.Context, guardianID, childID uuid.UUID, req *UpdateChildRequest) (*domain.ChildProfile, error) {
	child, err := uc.Get(ctx, guardianID, childID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		child.Name = *req.Name
	}
	if req.Age != nil {
		child.Age = *req.Age
	}
	if req.Gender != nil {
		child.Gender = *req.Gender
	}
	if req.ActivityTypesAllowed != nil {
		child.ActivityTypesAllowed = *req.ActivityTypesAllowed
	}
	if req.ActivityTypesExcluded != nil {
		child.ActivityTypesExcluded = *req.ActivityTypesExcluded
	}
	if req.DaysAvailable != nil {
		child.DaysAvailable = *req.DaysAvailable
	}
	if req.TimeSlots != nil {
		child.TimeSlots = *req.TimeSlots
	}
	if req.PriceRange != nil {
		if err := validatePriceRange(*req.PriceRange); err != nil {
			return nil, err
		}
		child.PriceRange = *req.PriceRange
	}
	if req.DistanceRadiusKm != nil {
		child.DistanceRadiusKm = *req.DistanceRadiusKm
	}
	if req.HomeAddress != nil {
		child.HomeAddress = req.HomeAddress
	}
	if req.EnvironmentPreference != nil {
		child.EnvironmentPreference = *req.EnvironmentPreference
	}

	if err := uc.childRepo.Update(ctx, child); err != nil {
		return nil, fmt.Errorf("update child profile: %w", err)
	}
	uc.invalidate(ctx, child.ID)
	return child, nil
}

func (uc *ChildrenUseCase) Delete(ctx context.Context, guardianID, childID uuid.UUID) error {
	if _, err := uc.Get(ctx, guardianID, childID); err != nil {
		return err
	}
	if err := uc.childRepo.Delete(ctx, childID); err != nil {
		return fmt.Errorf("delete child profile: %w", err)
	}
	uc.invalidate(ctx, childID)
	return nil
}

// invalidate is best effort: a failed invalidation must not fail the write,
// the cache entry expires on its own TTL.
func (uc *ChildrenUseCase) invalidate(ctx context.Context, childID uuid.UUID) {
	if uc.prefCache == nil {
		return
	}
	if err := uc.prefCache.Invalidate(ctx, childID); err != nil {
		uc.logger.Warn("preference cache invalidation failed", "child_id", childID, "error", err)
	}
}
