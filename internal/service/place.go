package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/goormcoder/ieum/backend/internal/domain"
	"github.com/goormcoder/ieum/backend/internal/repo"
)

// PlaceInput carries the fields needed to propose a place.
type PlaceInput struct {
	CategoryID int64
	Name       string
	Address    string
}

// VisitTimeInput is a requested visit window for a shared place.
type VisitTimeInput struct {
	StartedAt time.Time
	EndedAt   time.Time
}

// ShareInput identifies the place to share on the real-time channel.
type ShareInput struct {
	PlanID  uuid.UUID
	PlaceID uuid.UUID
}

// PlaceService implements business logic for Place operations.
// Every operation first resolves the plan and checks membership; a missing
// plan and a non-member caller both surface as domain.ErrNotFound.
type PlaceService struct {
	store repo.Transactor
	now   func() time.Time
}

// NewPlaceService constructs a PlaceService backed by the provided Transactor.
func NewPlaceService(store repo.Transactor, opts ...Option) *PlaceService {
	o := buildOptions(opts)
	return &PlaceService{store: store, now: o.now}
}

// CreatePlace proposes a private place in a plan.
// Returns domain.ErrConflict if the member already proposed a live place with
// the same name and address in this plan, domain.ErrNotFound if the plan or
// category is missing, and domain.ErrBadRequest for blank name or address.
func (s *PlaceService) CreatePlace(ctx context.Context, planID, memberID uuid.UUID, in PlaceInput) (domain.Place, error) {
	if err := validatePlaceInput(in); err != nil {
		return domain.Place{}, fmt.Errorf("service.PlaceService.CreatePlace: %w", err)
	}

	var created domain.Place
	err := s.store.InTx(ctx, repo.ReadWrite, func(r repo.Repos) error {
		plan, err := findByPlanID(ctx, r.Plans, planID)
		if err != nil {
			return err
		}
		category, err := r.Categories.GetByID(ctx, in.CategoryID)
		if err != nil {
			return notFoundAs(err, "category not found")
		}
		if err := validatePlanMember(plan, memberID); err != nil {
			return err
		}

		dup, err := r.Places.ExistsByNaturalKey(ctx, plan.ID, memberID, in.Name, in.Address)
		if err != nil {
			return err
		}
		if dup {
			return fmt.Errorf("%w: place already proposed by this member", domain.ErrConflict)
		}

		place := domain.NewPlace(plan.ID, memberID, in.Name, in.Address, category.ID)
		if _, err := r.Places.Create(ctx, place); err != nil {
			return err
		}
		created, err = r.Places.FindByNaturalKey(ctx, plan.ID, memberID, in.Name, in.Address)
		return err
	})
	if err != nil {
		return domain.Place{}, fmt.Errorf("service.PlaceService.CreatePlace: %w", err)
	}
	return created, nil
}

// GetPlace returns one place of the plan. A private place is visible only to
// its creator; anyone else gets domain.ErrForbidden.
func (s *PlaceService) GetPlace(ctx context.Context, planID, placeID, memberID uuid.UUID) (domain.Place, error) {
	var place domain.Place
	err := s.store.InTx(ctx, repo.ReadOnly, func(r repo.Repos) error {
		plan, err := authorizePlan(ctx, r, planID, memberID)
		if err != nil {
			return err
		}
		place, err = findPlace(ctx, r, plan.ID, placeID)
		if err != nil {
			return err
		}
		return checkPrivateAccess(place, memberID)
	})
	if err != nil {
		return domain.Place{}, fmt.Errorf("service.PlaceService.GetPlace: %w", err)
	}
	return place, nil
}

// GetAllPlaces returns the member's own private places in the plan.
func (s *PlaceService) GetAllPlaces(ctx context.Context, planID, memberID uuid.UUID) ([]domain.Place, error) {
	var places []domain.Place
	err := s.store.InTx(ctx, repo.ReadOnly, func(r repo.Repos) error {
		plan, err := authorizePlan(ctx, r, planID, memberID)
		if err != nil {
			return err
		}
		places, err = r.Places.ListPrivateByMember(ctx, plan.ID, memberID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("service.PlaceService.GetAllPlaces: %w", err)
	}
	return nonNil(places), nil
}

// GetSharedPlaces returns every shared place in the plan.
func (s *PlaceService) GetSharedPlaces(ctx context.Context, planID, memberID uuid.UUID) ([]domain.Place, error) {
	var places []domain.Place
	err := s.store.InTx(ctx, repo.ReadOnly, func(r repo.Repos) error {
		plan, err := authorizePlan(ctx, r, planID, memberID)
		if err != nil {
			return err
		}
		places, err = r.Places.ListShared(ctx, plan.ID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("service.PlaceService.GetSharedPlaces: %w", err)
	}
	return nonNil(places), nil
}

// GetSharedPlacesByDay returns the shared places whose visit starts on the
// plan's day-th calendar day (1-based).
// Only the start date counts: a place shared with the default whole-plan
// window appears on day 1 alone until UpdateVisitTime moves it.
// Returns domain.ErrBadRequest if day is outside [1, plan.Duration()].
func (s *PlaceService) GetSharedPlacesByDay(ctx context.Context, planID uuid.UUID, day int64, memberID uuid.UUID) ([]domain.Place, error) {
	var places []domain.Place
	err := s.store.InTx(ctx, repo.ReadOnly, func(r repo.Repos) error {
		plan, err := authorizePlan(ctx, r, planID, memberID)
		if err != nil {
			return err
		}
		if !plan.ContainsDay(day) {
			return fmt.Errorf("%w: day %d is outside the plan (1-%d)", domain.ErrBadRequest, day, plan.Duration())
		}
		places, err = r.Places.ListSharedOnDate(ctx, plan.ID, plan.NthDayDate(day))
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("service.PlaceService.GetSharedPlacesByDay: %w", err)
	}
	return nonNil(places), nil
}

// Itinerary returns the plan's shared places as a flat export, ordered by
// visit start.
func (s *PlaceService) Itinerary(ctx context.Context, planID, memberID uuid.UUID) ([]domain.ItineraryRow, error) {
	var rows []domain.ItineraryRow
	err := s.store.InTx(ctx, repo.ReadOnly, func(r repo.Repos) error {
		plan, err := authorizePlan(ctx, r, planID, memberID)
		if err != nil {
			return err
		}
		shared, err := r.Places.ListShared(ctx, plan.ID)
		if err != nil {
			return err
		}
		rows = domain.BuildItinerary(plan, shared)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("service.PlaceService.Itinerary: %w", err)
	}
	return rows, nil
}

// DeletePlace soft-deletes a place. A private place can only be deleted by
// its creator; anyone else gets domain.ErrForbidden.
func (s *PlaceService) DeletePlace(ctx context.Context, planID, placeID, memberID uuid.UUID) error {
	err := s.store.InTx(ctx, repo.ReadWrite, func(r repo.Repos) error {
		plan, err := authorizePlan(ctx, r, planID, memberID)
		if err != nil {
			return err
		}
		place, err := findPlace(ctx, r, plan.ID, placeID)
		if err != nil {
			return err
		}
		if err := checkPrivateAccess(place, memberID); err != nil {
			return err
		}
		place.MarkDeleted(s.now())
		_, err = r.Places.Update(ctx, place)
		return err
	})
	if err != nil {
		return fmt.Errorf("service.PlaceService.DeletePlace: %w", err)
	}
	return nil
}

// UpdateVisitTime narrows the visit window of a shared place.
// A private place always fails with domain.ErrBadRequest, whatever the window.
// The window must lie inside the plan and start strictly before it ends.
func (s *PlaceService) UpdateVisitTime(ctx context.Context, planID, placeID, memberID uuid.UUID, in VisitTimeInput) (domain.Place, error) {
	var updated domain.Place
	err := s.store.InTx(ctx, repo.ReadWrite, func(r repo.Repos) error {
		plan, err := authorizePlan(ctx, r, planID, memberID)
		if err != nil {
			return err
		}
		place, err := findPlace(ctx, r, plan.ID, placeID)
		if err != nil {
			return err
		}
		if place.IsDeactivated() {
			return fmt.Errorf("%w: visit time can only be set on a shared place", domain.ErrBadRequest)
		}
		if err := domain.ValidateVisitWindow(plan, in.StartedAt, in.EndedAt); err != nil {
			return err
		}
		place.SetVisitTime(in.StartedAt, in.EndedAt)
		updated, err = r.Places.Update(ctx, place)
		return err
	})
	if err != nil {
		return domain.Place{}, fmt.Errorf("service.PlaceService.UpdateVisitTime: %w", err)
	}
	return updated, nil
}

// SharePlace moves a private place into the plan's shared itinerary with the
// whole plan as its default visit window.
//
// Domain failures are always *domain.ShareError carrying the acting member
// and, once resolved, the plan, so the real-time channel can route them to
// the right session. A place that is already shared conflicts with itself and
// fails with SHARED_PLACE_CONFLICT.
func (s *PlaceService) SharePlace(ctx context.Context, in ShareInput, memberID uuid.UUID) (domain.Place, error) {
	var shared domain.Place
	err := s.store.InTx(ctx, repo.ReadWrite, func(r repo.Repos) error {
		plan, err := r.Plans.GetByID(ctx, in.PlanID)
		if err != nil {
			return shareErrorFrom(err, domain.SharePlanNotFound, memberID, nil)
		}
		if !plan.HasMember(memberID) {
			return domain.NewShareError(domain.SharePlanMemberNotFound, memberID, &plan)
		}

		place, err := r.Places.GetByID(ctx, plan.ID, in.PlaceID)
		if err != nil {
			return shareErrorFrom(err, domain.SharePlaceNotFound, memberID, &plan)
		}
		if !place.IsCreatedBy(memberID) {
			return domain.NewShareError(domain.ShareForbiddenAccess, memberID, &plan)
		}

		taken, err := r.Places.ExistsShared(ctx, plan.ID, place.Name, place.Address)
		if err != nil {
			return err
		}
		if taken {
			return domain.NewShareError(domain.ShareSharedPlaceConflict, memberID, &plan)
		}

		place.Activate(plan, s.now())
		shared, err = r.Places.Update(ctx, place)
		if errors.Is(err, domain.ErrConflict) {
			// A concurrent share that slipped past ExistsShared trips the unique index.
			return domain.NewShareError(domain.ShareSharedPlaceConflict, memberID, &plan)
		}
		return err
	})
	if err != nil {
		return domain.Place{}, fmt.Errorf("service.PlaceService.SharePlace: %w", err)
	}
	return shared, nil
}

// findPlace returns a live place of the plan or domain.ErrNotFound.
func findPlace(ctx context.Context, r repo.Repos, planID, placeID uuid.UUID) (domain.Place, error) {
	place, err := r.Places.GetByID(ctx, planID, placeID)
	if err != nil {
		return domain.Place{}, notFoundAs(err, "place not found")
	}
	return place, nil
}

// checkPrivateAccess rejects non-creators touching a private place.
func checkPrivateAccess(place domain.Place, memberID uuid.UUID) error {
	if place.IsDeactivated() && !place.IsCreatedBy(memberID) {
		return fmt.Errorf("%w: this place has not been shared", domain.ErrForbidden)
	}
	return nil
}

func validatePlaceInput(in PlaceInput) error {
	if strings.TrimSpace(in.Name) == "" {
		return fmt.Errorf("%w: place name is required", domain.ErrBadRequest)
	}
	if strings.TrimSpace(in.Address) == "" {
		return fmt.Errorf("%w: address is required", domain.ErrBadRequest)
	}
	return nil
}

// shareErrorFrom converts a repo not-found error into a ShareError with the
// given reason. Infrastructure errors pass through unchanged.
func shareErrorFrom(err error, reason domain.ShareReason, memberID uuid.UUID, plan *domain.Plan) error {
	if errors.Is(err, domain.ErrNotFound) {
		return domain.NewShareError(reason, memberID, plan)
	}
	return err
}
