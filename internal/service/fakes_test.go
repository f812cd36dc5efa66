package service_test

import (
	"context"
	"maps"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/goormcoder/ieum/backend/internal/domain"
	"github.com/goormcoder/ieum/backend/internal/repo"
)

// memStore is an in-memory repo.Transactor. Each InTx call works on the live
// maps and restores a snapshot taken before fn if fn fails, which mirrors the
// all-or-nothing behaviour of the Postgres store closely enough for service
// tests.
type memStore struct {
	members map[uuid.UUID]domain.Member
	dests   map[int64]domain.Destination
	cats    map[int64]domain.Category
	plans   map[uuid.UUID]domain.Plan
	places  map[uuid.UUID]domain.Place
	seq     int // insertion counter used to order places and plans

	// modes records the TxMode of every unit of work, in order.
	modes []repo.TxMode

	// wrap lets a test swap in failing repos for one run.
	wrap func(repo.Repos) repo.Repos
}

var _ repo.Transactor = (*memStore)(nil)

func newMemStore() *memStore {
	return &memStore{
		members: map[uuid.UUID]domain.Member{},
		dests: map[int64]domain.Destination{
			1: {ID: 1, Name: domain.DestinationJeju},
			2: {ID: 2, Name: domain.DestinationSeoul},
		},
		cats: map[int64]domain.Category{
			1: {ID: 1, Name: "CAFE"},
		},
		plans:  map[uuid.UUID]domain.Plan{},
		places: map[uuid.UUID]domain.Place{},
	}
}

func (s *memStore) InTx(_ context.Context, mode repo.TxMode, fn func(repo.Repos) error) error {
	s.modes = append(s.modes, mode)

	plans := maps.Clone(s.plans)
	places := maps.Clone(s.places)
	seq := s.seq

	r := repo.Repos{
		Members:      memMembers{s},
		Destinations: memDestinations{s},
		Categories:   memCategories{s},
		Plans:        memPlans{s},
		Places:       memPlaces{s},
	}
	if s.wrap != nil {
		r = s.wrap(r)
	}

	if err := fn(r); err != nil {
		s.plans, s.places, s.seq = plans, places, seq
		return err
	}
	return nil
}

func (s *memStore) addMember() uuid.UUID {
	id := uuid.New()
	s.members[id] = domain.Member{ID: id, Name: "member", Email: id.String() + "@example.com"}
	return id
}

// ---- members / reference data ----------------------------------------------

type memMembers struct{ s *memStore }

func (m memMembers) Create(_ context.Context, in domain.Member) (domain.Member, error) {
	in.ID = uuid.New()
	m.s.members[in.ID] = in
	return in, nil
}

func (m memMembers) GetByID(_ context.Context, id uuid.UUID) (domain.Member, error) {
	v, ok := m.s.members[id]
	if !ok {
		return domain.Member{}, domain.ErrNotFound
	}
	return v, nil
}

type memDestinations struct{ s *memStore }

func (m memDestinations) List(_ context.Context) ([]domain.Destination, error) {
	out := slices.Collect(maps.Values(m.s.dests))
	slices.SortFunc(out, func(a, b domain.Destination) int { return int(a.ID - b.ID) })
	return out, nil
}

func (m memDestinations) GetByID(_ context.Context, id int64) (domain.Destination, error) {
	v, ok := m.s.dests[id]
	if !ok {
		return domain.Destination{}, domain.ErrNotFound
	}
	return v, nil
}

type memCategories struct{ s *memStore }

func (m memCategories) List(_ context.Context) ([]domain.Category, error) {
	out := slices.Collect(maps.Values(m.s.cats))
	slices.SortFunc(out, func(a, b domain.Category) int { return int(a.ID - b.ID) })
	return out, nil
}

func (m memCategories) GetByID(_ context.Context, id int64) (domain.Category, error) {
	v, ok := m.s.cats[id]
	if !ok {
		return domain.Category{}, domain.ErrNotFound
	}
	return v, nil
}

// ---- plans ----------------------------------------------------------------

type memPlans struct{ s *memStore }

func (m memPlans) Create(_ context.Context, p domain.Plan) (domain.Plan, error) {
	m.s.seq++
	p.ID = uuid.New()
	p.CreatedAt = time.Unix(int64(m.s.seq), 0)
	p.UpdatedAt = p.CreatedAt
	p.Members = slices.Clone(p.Members)
	for i := range p.Members {
		p.Members[i].PlanID = p.ID
	}
	m.s.plans[p.ID] = p
	return p, nil
}

func (m memPlans) GetByID(_ context.Context, id uuid.UUID) (domain.Plan, error) {
	p, ok := m.s.plans[id]
	if !ok || p.IsDeleted() {
		return domain.Plan{}, domain.ErrNotFound
	}
	p.Members = slices.Clone(p.Members)
	return p, nil
}

func (m memPlans) Save(_ context.Context, p domain.Plan) (domain.Plan, error) {
	if _, ok := m.s.plans[p.ID]; !ok {
		return domain.Plan{}, domain.ErrNotFound
	}
	p.Members = slices.Clone(p.Members)
	m.s.plans[p.ID] = p
	return p, nil
}

func (m memPlans) active() []domain.Plan {
	var out []domain.Plan
	for _, p := range m.s.plans {
		if !p.IsDeleted() {
			out = append(out, p)
		}
	}
	slices.SortFunc(out, func(a, b domain.Plan) int { return a.CreatedAt.Compare(b.CreatedAt) })
	return out
}

func byStartDesc(a, b domain.Plan) int { return b.StartedAt.Compare(a.StartedAt) }

func (m memPlans) List(_ context.Context) ([]domain.Plan, error) {
	return m.active(), nil
}

func (m memPlans) ListByStartDesc(_ context.Context) ([]domain.Plan, error) {
	out := m.active()
	slices.SortStableFunc(out, byStartDesc)
	return out, nil
}

func (m memPlans) ListByDestination(_ context.Context, name domain.DestinationName) ([]domain.Plan, error) {
	out := slices.DeleteFunc(m.active(), func(p domain.Plan) bool { return p.Destination.Name != name })
	slices.SortStableFunc(out, byStartDesc)
	return out, nil
}

func (m memPlans) ListByDestinationAndRange(ctx context.Context, name domain.DestinationName, from, to time.Time) ([]domain.Plan, error) {
	out, _ := m.ListByDestination(ctx, name)
	return slices.DeleteFunc(out, func(p domain.Plan) bool {
		return p.StartedAt.Before(from) || p.StartedAt.After(to)
	}), nil
}

// ---- places ---------------------------------------------------------------

type memPlaces struct{ s *memStore }

func (m memPlaces) live(keep func(domain.Place) bool) []domain.Place {
	var out []domain.Place
	for _, p := range m.s.places {
		if p.DeletedAt == nil && keep(p) {
			out = append(out, p)
		}
	}
	slices.SortFunc(out, func(a, b domain.Place) int { return a.CreatedAt.Compare(b.CreatedAt) })
	return out
}

func (m memPlaces) Create(_ context.Context, p domain.Place) (domain.Place, error) {
	m.s.seq++
	p.ID = uuid.New()
	p.CreatedAt = time.Unix(int64(m.s.seq), 0)
	p.UpdatedAt = p.CreatedAt
	m.s.places[p.ID] = p
	return p, nil
}

func (m memPlaces) GetByID(_ context.Context, planID, placeID uuid.UUID) (domain.Place, error) {
	p, ok := m.s.places[placeID]
	if !ok || p.PlanID != planID || p.DeletedAt != nil {
		return domain.Place{}, domain.ErrNotFound
	}
	return p, nil
}

func (m memPlaces) FindByNaturalKey(_ context.Context, planID, memberID uuid.UUID, name, address string) (domain.Place, error) {
	found := m.live(func(p domain.Place) bool {
		return p.PlanID == planID && p.MemberID == memberID && p.Name == name && p.Address == address
	})
	if len(found) == 0 {
		return domain.Place{}, domain.ErrNotFound
	}
	return found[0], nil
}

func (m memPlaces) ExistsByNaturalKey(ctx context.Context, planID, memberID uuid.UUID, name, address string) (bool, error) {
	_, err := m.FindByNaturalKey(ctx, planID, memberID, name, address)
	return err == nil, nil
}

func (m memPlaces) ExistsShared(_ context.Context, planID uuid.UUID, name, address string) (bool, error) {
	found := m.live(func(p domain.Place) bool {
		return p.PlanID == planID && p.ActivatedAt != nil && p.Name == name && p.Address == address
	})
	return len(found) > 0, nil
}

func (m memPlaces) ListPrivateByMember(_ context.Context, planID, memberID uuid.UUID) ([]domain.Place, error) {
	return m.live(func(p domain.Place) bool {
		return p.PlanID == planID && p.MemberID == memberID && p.ActivatedAt == nil
	}), nil
}

func (m memPlaces) ListShared(_ context.Context, planID uuid.UUID) ([]domain.Place, error) {
	return m.live(func(p domain.Place) bool {
		return p.PlanID == planID && p.ActivatedAt != nil
	}), nil
}

func (m memPlaces) ListSharedOnDate(_ context.Context, planID uuid.UUID, day time.Time) ([]domain.Place, error) {
	end := day.AddDate(0, 0, 1)
	return m.live(func(p domain.Place) bool {
		return p.PlanID == planID && p.ActivatedAt != nil && p.StartedAt != nil &&
			!p.StartedAt.Before(day) && p.StartedAt.Before(end)
	}), nil
}

func (m memPlaces) Update(_ context.Context, p domain.Place) (domain.Place, error) {
	old, ok := m.s.places[p.ID]
	if !ok || old.PlanID != p.PlanID {
		return domain.Place{}, domain.ErrNotFound
	}
	m.s.places[p.ID] = p
	return p, nil
}

// ---- failure injection ----------------------------------------------------

// failingPlaces wraps a PlaceRepo and overrides single methods with errors.
type failingPlaces struct {
	repo.PlaceRepo
	findByNaturalKeyErr error
	updateErr           error
	existsSharedErr     error
}

func (f failingPlaces) FindByNaturalKey(ctx context.Context, planID, memberID uuid.UUID, name, address string) (domain.Place, error) {
	if f.findByNaturalKeyErr != nil {
		return domain.Place{}, f.findByNaturalKeyErr
	}
	return f.PlaceRepo.FindByNaturalKey(ctx, planID, memberID, name, address)
}

func (f failingPlaces) Update(ctx context.Context, p domain.Place) (domain.Place, error) {
	if f.updateErr != nil {
		return domain.Place{}, f.updateErr
	}
	return f.PlaceRepo.Update(ctx, p)
}

func (f failingPlaces) ExistsShared(ctx context.Context, planID uuid.UUID, name, address string) (bool, error) {
	if f.existsSharedErr != nil {
		return false, f.existsSharedErr
	}
	return f.PlaceRepo.ExistsShared(ctx, planID, name, address)
}
