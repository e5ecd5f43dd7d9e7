package search

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/url"
	"testing"

	"github.com/google/uuid"

	"github.com/kidsactivitytracker/backend/internal/cache"
	"github.com/kidsactivitytracker/backend/internal/domain"
	"github.com/kidsactivitytracker/backend/internal/infrastructure/catalog"
	"github.com/kidsactivitytracker/backend/internal/merge"
)

type fakeChildRepo struct {
	children map[uuid.UUID]*domain.ChildProfile
	ordered  []*domain.ChildProfile
	gets     int
}

func (f *fakeChildRepo) Create(ctx context.Context, child *domain.ChildProfile) error { return nil }

func (f *fakeChildRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.ChildProfile, error) {
	f.gets++
	child, ok := f.children[id]
	if !ok {
		return nil, domain.ErrChildNotFound
	}
	return child, nil
}

func (f *fakeChildRepo) ListByGuardian(ctx context.Context, guardianID uuid.UUID) ([]*domain.ChildProfile, error) {
	var out []*domain.ChildProfile
	for _, c := range f.ordered {
		if c.GuardianID == guardianID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeChildRepo) Update(ctx context.Context, child *domain.ChildProfile) error { return nil }
func (f *fakeChildRepo) Delete(ctx context.Context, id uuid.UUID) error               { return nil }

type fakeCache struct {
	store map[uuid.UUID]*domain.ChildProfile
	sets  int
	hits  int
}

func newFakeCache() *fakeCache {
	return &fakeCache{store: map[uuid.UUID]*domain.ChildProfile{}}
}

func (f *fakeCache) Get(ctx context.Context, childID uuid.UUID) (*domain.ChildProfile, error) {
	child, ok := f.store[childID]
	if !ok {
		return nil, cache.ErrMiss
	}
	f.hits++
	return child, nil
}

func (f *fakeCache) Set(ctx context.Context, child *domain.ChildProfile) error {
	f.sets++
	f.store[child.ID] = child
	return nil
}

type fakeCatalog struct {
	lastParams url.Values
	activities []catalog.Activity
	err        error
	calls      int
}

func (f *fakeCatalog) Search(ctx context.Context, params url.Values) ([]catalog.Activity, error) {
	f.calls++
	f.lastParams = params
	return f.activities, f.err
}

func testChild(guardianID uuid.UUID, age int) *domain.ChildProfile {
	return &domain.ChildProfile{
		ID:                    uuid.New(),
		GuardianID:            guardianID,
		Name:                  "kid",
		Age:                   age,
		DaysAvailable:         domain.AllWeekdays(),
		TimeSlots:             domain.TimeSlots{Morning: true, Afternoon: true, Evening: true},
		DistanceRadiusKm:      merge.DefaultRadiusKm,
		EnvironmentPreference: domain.EnvironmentAll,
	}
}

func newTestUseCase(repo *fakeChildRepo, prefCache *fakeCache, cat *fakeCatalog) *SearchUseCase {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	var pc ProfileCache
	if prefCache != nil {
		pc = prefCache
	}
	return NewSearchUseCase(repo, pc, cat, logger)
}

func TestSearchAllChildren(t *testing.T) {
	gid := uuid.New()
	a := testChild(gid, 5)
	b := testChild(gid, 7)
	repo := &fakeChildRepo{
		children: map[uuid.UUID]*domain.ChildProfile{a.ID: a, b.ID: b},
		ordered:  []*domain.ChildProfile{a, b},
	}
	cat := &fakeCatalog{activities: []catalog.Activity{{ID: "act-1", Name: "Swim class"}}}
	uc := newTestUseCase(repo, nil, cat)

	resp, err := uc.Search(context.Background(), &SearchRequest{GuardianID: gid, Mode: merge.ModeAny})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if !resp.Feasible {
		t.Error("expected feasible result")
	}
	if len(resp.Activities) != 1 || resp.Activities[0].ID != "act-1" {
		t.Errorf("activities = %v, want the catalog result", resp.Activities)
	}
	if cat.calls != 1 {
		t.Errorf("catalog calls = %d, want 1", cat.calls)
	}
	if got := cat.lastParams.Get("min_age"); got != "4" {
		t.Errorf("min_age param = %q, want 4", got)
	}
	if got := cat.lastParams.Get("max_age"); got != "8" {
		t.Errorf("max_age param = %q, want 8", got)
	}
}

// Children whose ages cannot be satisfied together must not hit the
// catalog at all: the response reports infeasibility with zero items.
func TestSearchInfeasibleTogether(t *testing.T) {
	gid := uuid.New()
	a := testChild(gid, 4)
	b := testChild(gid, 9)
	repo := &fakeChildRepo{
		children: map[uuid.UUID]*domain.ChildProfile{a.ID: a, b.ID: b},
		ordered:  []*domain.ChildProfile{a, b},
	}
	cat := &fakeCatalog{}
	uc := newTestUseCase(repo, nil, cat)

	resp, err := uc.Search(context.Background(), &SearchRequest{GuardianID: gid, Mode: merge.ModeAll})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if resp.Feasible {
		t.Error("expected infeasible result for a five-year age spread")
	}
	if len(resp.Activities) != 0 {
		t.Errorf("activities = %v, want none", resp.Activities)
	}
	if cat.calls != 0 {
		t.Errorf("catalog calls = %d, want 0 for an infeasible set", cat.calls)
	}
	if resp.Constraints.AgeRange != (merge.AgeRange{Min: 8, Max: 5}) {
		t.Errorf("constraints age range = %+v, want inverted [8,5]", resp.Constraints.AgeRange)
	}
}

func TestSearchByIDsReadsThroughCache(t *testing.T) {
	gid := uuid.New()
	child := testChild(gid, 6)
	repo := &fakeChildRepo{children: map[uuid.UUID]*domain.ChildProfile{child.ID: child}}
	prefCache := newFakeCache()
	uc := newTestUseCase(repo, prefCache, &fakeCatalog{})

	req := &SearchRequest{GuardianID: gid, ChildIDs: []uuid.UUID{child.ID}, Mode: merge.ModeAny}
	if _, err := uc.Search(context.Background(), req); err != nil {
		t.Fatalf("first search: %v", err)
	}
	if repo.gets != 1 || prefCache.sets != 1 {
		t.Errorf("after miss: repo gets = %d, cache sets = %d, want 1 and 1", repo.gets, prefCache.sets)
	}

	if _, err := uc.Search(context.Background(), req); err != nil {
		t.Fatalf("second search: %v", err)
	}
	if repo.gets != 1 {
		t.Errorf("repo gets = %d, want cached read to skip the store", repo.gets)
	}
	if prefCache.hits != 1 {
		t.Errorf("cache hits = %d, want 1", prefCache.hits)
	}
}

func TestSearchRejectsForeignChild(t *testing.T) {
	child := testChild(uuid.New(), 6)
	repo := &fakeChildRepo{children: map[uuid.UUID]*domain.ChildProfile{child.ID: child}}
	cat := &fakeCatalog{}
	uc := newTestUseCase(repo, nil, cat)

	_, err := uc.Search(context.Background(), &SearchRequest{
		GuardianID: uuid.New(),
		ChildIDs:   []uuid.UUID{child.ID},
		Mode:       merge.ModeAll,
	})
	if !errors.Is(err, domain.ErrForbidden) {
		t.Errorf("err = %v, want ErrForbidden", err)
	}
	if cat.calls != 0 {
		t.Error("catalog must not be queried for a foreign child")
	}
}

func TestSearchUnknownChild(t *testing.T) {
	repo := &fakeChildRepo{children: map[uuid.UUID]*domain.ChildProfile{}}
	uc := newTestUseCase(repo, nil, &fakeCatalog{})

	_, err := uc.Search(context.Background(), &SearchRequest{
		GuardianID: uuid.New(),
		ChildIDs:   []uuid.UUID{uuid.New()},
		Mode:       merge.ModeAny,
	})
	if !errors.Is(err, domain.ErrChildNotFound) {
		t.Errorf("err = %v, want ErrChildNotFound", err)
	}
}

// A guardian with no children gets the unrestricted default search, not an
// error.
func TestSearchNoChildren(t *testing.T) {
	repo := &fakeChildRepo{children: map[uuid.UUID]*domain.ChildProfile{}}
	cat := &fakeCatalog{}
	uc := newTestUseCase(repo, nil, cat)

	resp, err := uc.Search(context.Background(), &SearchRequest{GuardianID: uuid.New(), Mode: merge.ModeAny})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if resp.Constraints.AgeRange != (merge.AgeRange{Min: 0, Max: 18}) {
		t.Errorf("constraints = %+v, want unrestricted default", resp.Constraints.AgeRange)
	}
	if cat.calls != 1 {
		t.Errorf("catalog calls = %d, want 1", cat.calls)
	}
}
