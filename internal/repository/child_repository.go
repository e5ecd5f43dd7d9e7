package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/kidsactivitytracker/backend/internal/domain"
)

type ChildRepository interface {
	Create(ctx context.Context, child *domain.ChildProfile) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.ChildProfile, error)
	ListByGuardian(ctx context.Context, guardianID uuid.UUID) ([]*domain.ChildProfile, error)
	Update(ctx context.Context, child *domain.ChildProfile) error
	Delete(ctx context.Context, id uuid.UUID) error
}
