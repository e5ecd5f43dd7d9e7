package children

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"

	"github.com/kidsactivitytracker/backend/internal/domain"
	"github.com/kidsactivitytracker/backend/internal/merge"
)

type fakeChildRepo struct {
	children map[uuid.UUID]*domain.ChildProfile
}

func newFakeRepo() *fakeChildRepo {
	return &fakeChildRepo{children: map[uuid.UUID]*domain.ChildProfile{}}
}

func (f *fakeChildRepo) Create(ctx context.Context, child *domain.ChildProfile) error {
	f.children[child.ID] = child
	return nil
}

func (f *fakeChildRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.ChildProfile, error) {
	child, ok := f.children[id]
	if !ok {
		return nil, domain.ErrChildNotFound
	}
	copied := *child
	return &copied, nil
}

func (f *fakeChildRepo) ListByGuardian(ctx context.Context, guardianID uuid.UUID) ([]*domain.ChildProfile, error) {
	var out []*domain.ChildProfile
	for _, c := range f.children {
		if c.GuardianID == guardianID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeChildRepo) Update(ctx context.Context, child *domain.ChildProfile) error {
	if _, ok := f.children[child.ID]; !ok {
		return domain.ErrChildNotFound
	}
	f.children[child.ID] = child
	return nil
}

func (f *fakeChildRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := f.children[id]; !ok {
		return domain.ErrChildNotFound
	}
	delete(f.children, id)
	return nil
}

type fakeInvalidator struct {
	invalidated []uuid.UUID
}

func (f *fakeInvalidator) Invalidate(ctx context.Context, childID uuid.UUID) error {
	f.invalidated = append(f.invalidated, childID)
	return nil
}

func newTestUseCase(repo *fakeChildRepo, inv *fakeInvalidator) *ChildrenUseCase {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewChildrenUseCase(repo, inv, logger)
}

func TestCreateAppliesDefaults(t *testing.T) {
	repo := newFakeRepo()
	inv := &fakeInvalidator{}
	uc := newTestUseCase(repo, inv)

	child, err := uc.Create(context.Background(), uuid.New(), &CreateChildRequest{
		Name: "Mila",
		Age:  6,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if child.DistanceRadiusKm != merge.DefaultRadiusKm {
		t.Errorf("radius = %v, want default %v", child.DistanceRadiusKm, merge.DefaultRadiusKm)
	}
	if child.EnvironmentPreference != domain.EnvironmentAll {
		t.Errorf("environment = %v, want all", child.EnvironmentPreference)
	}
	if child.ID == uuid.Nil {
		t.Error("expected a generated child id")
	}
	if len(inv.invalidated) != 1 || inv.invalidated[0] != child.ID {
		t.Errorf("invalidated = %v, want the new child id", inv.invalidated)
	}
}

// The merge engine assumes validated profiles, so the inverted window has
// to be stopped here.
func TestCreateRejectsInvertedPriceRange(t *testing.T) {
	uc := newTestUseCase(newFakeRepo(), &fakeInvalidator{})

	low := 10.0
	_, err := uc.Create(context.Background(), uuid.New(), &CreateChildRequest{
		Name:       "Mila",
		Age:        6,
		PriceRange: domain.PriceRange{Min: 50, Max: &low},
	})
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("err = %v, want ErrInvalidInput", err)
	}
}

func TestUpdateOwnershipAndInvalidation(t *testing.T) {
	repo := newFakeRepo()
	inv := &fakeInvalidator{}
	uc := newTestUseCase(repo, inv)

	gid := uuid.New()
	child, err := uc.Create(context.Background(), gid, &CreateChildRequest{Name: "Theo", Age: 8})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	name := "Theodore"
	age := 9
	updated, err := uc.Update(context.Background(), gid, child.ID, &UpdateChildRequest{Name: &name, Age: &age})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Name != "Theodore" || updated.Age != 9 {
		t.Errorf("updated = %+v, want new name and age", updated)
	}
	if len(inv.invalidated) != 2 {
		t.Errorf("invalidations = %d, want one per write", len(inv.invalidated))
	}

	// Another guardian must not be able to touch the profile.
	_, err = uc.Update(context.Background(), uuid.New(), child.ID, &UpdateChildRequest{Name: &name})
	if !errors.Is(err, domain.ErrForbidden) {
		t.Errorf("err = %v, want ErrForbidden", err)
	}
}

func TestUpdateKeepsUnsetFields(t *testing.T) {
	repo := newFakeRepo()
	uc := newTestUseCase(repo, &fakeInvalidator{})

	gid := uuid.New()
	child, err := uc.Create(context.Background(), gid, &CreateChildRequest{
		Name:                 "Nora",
		Age:                  7,
		ActivityTypesAllowed: []string{"swim"},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	age := 8
	updated, err := uc.Update(context.Background(), gid, child.ID, &UpdateChildRequest{Age: &age})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Name != "Nora" {
		t.Errorf("name = %q, want unchanged", updated.Name)
	}
	if len(updated.ActivityTypesAllowed) != 1 || updated.ActivityTypesAllowed[0] != "swim" {
		t.Errorf("allowed = %v, want unchanged", updated.ActivityTypesAllowed)
	}
}

func TestDelete(t *testing.T) {
	repo := newFakeRepo()
	inv := &fakeInvalidator{}
	uc := newTestUseCase(repo, inv)

	gid := uuid.New()
	child, err := uc.Create(context.Background(), gid, &CreateChildRequest{Name: "Ada", Age: 5})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := uc.Delete(context.Background(), uuid.New(), child.ID); !errors.Is(err, domain.ErrForbidden) {
		t.Errorf("foreign delete err = %v, want ErrForbidden", err)
	}
	if err := uc.Delete(context.Background(), gid, child.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := uc.Get(context.Background(), gid, child.ID); !errors.Is(err, domain.ErrChildNotFound) {
		t.Errorf("get after delete err = %v, want ErrChildNotFound", err)
	}
	if len(inv.invalidated) != 2 {
		t.Errorf("invalidations = %d, want one for create and one for delete", len(inv.invalidated))
	}
}
