package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/goormcoder/ieum/backend/internal/domain"
	"github.com/goormcoder/ieum/backend/internal/repo"
)

// PlanInput carries the fields needed to create a plan.
type PlanInput struct {
	DestinationID int64
	StartedAt     time.Time
	EndedAt       time.Time
	Vehicle       domain.Vehicle
}

// PlanService implements business logic for Plan operations.
type PlanService struct {
	store repo.Transactor
	now   func() time.Time
}

// NewPlanService constructs a PlanService backed by the provided Transactor.
func NewPlanService(store repo.Transactor, opts ...Option) *PlanService {
	o := buildOptions(opts)
	return &PlanService{store: store, now: o.now}
}

// ListDestinations returns every destination. No membership is required.
func (s *PlanService) ListDestinations(ctx context.Context) ([]domain.Destination, error) {
	var out []domain.Destination
	err := s.store.InTx(ctx, repo.ReadOnly, func(r repo.Repos) error {
		var err error
		out, err = r.Destinations.List(ctx)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("service.PlanService.ListDestinations: %w", err)
	}
	return nonNil(out), nil
}

// ListCategories returns every place category. No membership is required.
func (s *PlanService) ListCategories(ctx context.Context) ([]domain.Category, error) {
	var out []domain.Category
	err := s.store.InTx(ctx, repo.ReadOnly, func(r repo.Repos) error {
		var err error
		out, err = r.Categories.List(ctx)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("service.PlanService.ListCategories: %w", err)
	}
	return nonNil(out), nil
}

// CreatePlan creates a plan with memberID as its first member.
// Returns domain.ErrNotFound if the member or destination does not exist.
// The date range is stored as given; start is not checked against end.
func (s *PlanService) CreatePlan(ctx context.Context, in PlanInput, memberID uuid.UUID) (domain.Plan, error) {
	var created domain.Plan
	err := s.store.InTx(ctx, repo.ReadWrite, func(r repo.Repos) error {
		if _, err := findMember(ctx, r, memberID); err != nil {
			return err
		}
		dest, err := r.Destinations.GetByID(ctx, in.DestinationID)
		if err != nil {
			return notFoundAs(err, "destination not found")
		}

		plan := domain.NewPlan(dest, in.StartedAt, in.EndedAt, in.Vehicle, memberID)
		created, err = r.Plans.Create(ctx, plan)
		return err
	})
	if err != nil {
		return domain.Plan{}, fmt.Errorf("service.PlanService.CreatePlan: %w", err)
	}
	return created, nil
}

// GetPlan returns a plan the member belongs to.
// Returns domain.ErrNotFound when the plan is absent, deleted, or the member
// is not on its roster.
func (s *PlanService) GetPlan(ctx context.Context, planID, memberID uuid.UUID) (domain.Plan, error) {
	var plan domain.Plan
	err := s.store.InTx(ctx, repo.ReadOnly, func(r repo.Repos) error {
		if _, err := findMember(ctx, r, memberID); err != nil {
			return err
		}
		var err error
		plan, err = authorizePlan(ctx, r, planID, memberID)
		return err
	})
	if err != nil {
		return domain.Plan{}, fmt.Errorf("service.PlanService.GetPlan: %w", err)
	}
	return plan, nil
}

// ListAllPlans returns every active plan.
func (s *PlanService) ListAllPlans(ctx context.Context) ([]domain.Plan, error) {
	return s.listPlans(ctx, "ListAllPlans", func(r repo.Repos) ([]domain.Plan, error) {
		return r.Plans.List(ctx)
	})
}

// ListPlansByStartDate returns every active plan, latest start first.
func (s *PlanService) ListPlansByStartDate(ctx context.Context) ([]domain.Plan, error) {
	return s.listPlans(ctx, "ListPlansByStartDate", func(r repo.Repos) ([]domain.Plan, error) {
		return r.Plans.ListByStartDesc(ctx)
	})
}

// ListPlansByDestination returns active plans for a destination, latest start first.
func (s *PlanService) ListPlansByDestination(ctx context.Context, name domain.DestinationName) ([]domain.Plan, error) {
	return s.listPlans(ctx, "ListPlansByDestination", func(r repo.Repos) ([]domain.Plan, error) {
		return r.Plans.ListByDestination(ctx, name)
	})
}

// ListPlansByDestinationAndRange returns active plans for a destination that
// start between from and to, latest start first.
func (s *PlanService) ListPlansByDestinationAndRange(ctx context.Context, name domain.DestinationName, from, to time.Time) ([]domain.Plan, error) {
	return s.listPlans(ctx, "ListPlansByDestinationAndRange", func(r repo.Repos) ([]domain.Plan, error) {
		return r.Plans.ListByDestinationAndRange(ctx, name, from, to)
	})
}

// DeletePlan soft-deletes a plan the member belongs to.
func (s *PlanService) DeletePlan(ctx context.Context, planID, memberID uuid.UUID) error {
	err := s.store.InTx(ctx, repo.ReadWrite, func(r repo.Repos) error {
		if _, err := findMember(ctx, r, memberID); err != nil {
			return err
		}
		plan, err := authorizePlan(ctx, r, planID, memberID)
		if err != nil {
			return err
		}
		plan.MarkDeleted(s.now())
		_, err = r.Plans.Save(ctx, plan)
		return err
	})
	if err != nil {
		return fmt.Errorf("service.PlanService.DeletePlan: %w", err)
	}
	return nil
}

func (s *PlanService) listPlans(ctx context.Context, op string, list func(repo.Repos) ([]domain.Plan, error)) ([]domain.Plan, error) {
	var plans []domain.Plan
	err := s.store.InTx(ctx, repo.ReadOnly, func(r repo.Repos) error {
		var err error
		plans, err = list(r)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("service.PlanService.%s: %w", op, err)
	}
	return nonNil(plans), nil
}

// findByPlanID returns the active plan or domain.ErrNotFound.
func findByPlanID(ctx context.Context, plans repo.PlanRepo, planID uuid.UUID) (domain.Plan, error) {
	plan, err := plans.GetByID(ctx, planID)
	if err != nil {
		return domain.Plan{}, notFoundAs(err, "plan not found")
	}
	return plan, nil
}

// validatePlanMember scans the plan's loaded roster for memberID.
// Non-membership reports the same error as a missing plan.
func validatePlanMember(plan domain.Plan, memberID uuid.UUID) error {
	if !plan.HasMember(memberID) {
		return fmt.Errorf("%w: plan not found", domain.ErrNotFound)
	}
	return nil
}

// authorizePlan resolves an active plan and checks that memberID is on it.
// Every plan-scoped operation goes through here.
func authorizePlan(ctx context.Context, r repo.Repos, planID, memberID uuid.UUID) (domain.Plan, error) {
	plan, err := findByPlanID(ctx, r.Plans, planID)
	if err != nil {
		return domain.Plan{}, err
	}
	if err := validatePlanMember(plan, memberID); err != nil {
		return domain.Plan{}, err
	}
	return plan, nil
}

func findMember(ctx context.Context, r repo.Repos, memberID uuid.UUID) (domain.Member, error) {
	m, err := r.Members.GetByID(ctx, memberID)
	if err != nil {
		return domain.Member{}, notFoundAs(err, "member not found")
	}
	return m, nil
}

// notFoundAs replaces a repo-level not-found error with one carrying msg.
// Other errors pass through unchanged.
func notFoundAs(err error, msg string) error {
	if errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("%w: %s", domain.ErrNotFound, msg)
	}
	return err
}

// nonNil returns an empty slice instead of nil so callers can safely range
// over the result and JSON encodes it as [].
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
