package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/goormcoder/ieum/backend/internal/domain"
)

// PlanRepo defines the persistence operations for Plans and their rosters.
// Every read excludes soft-deleted plans.
type PlanRepo interface {
	// Create inserts a plan together with its roster and returns the persisted
	// record (with DB-generated id and timestamps populated).
	Create(ctx context.Context, plan domain.Plan) (domain.Plan, error)

	// GetByID retrieves an active plan with its destination and roster loaded.
	// Returns domain.ErrNotFound if the plan does not exist or was soft-deleted.
	GetByID(ctx context.Context, id uuid.UUID) (domain.Plan, error)

	// Save persists the mutable fields of plan (dates, vehicle, deleted_at) and
	// inserts any roster entries not stored yet.
	// Returns domain.ErrNotFound if no plan with that ID exists.
	Save(ctx context.Context, plan domain.Plan) (domain.Plan, error)

	// List returns all active plans in creation order.
	List(ctx context.Context) ([]domain.Plan, error)

	// ListByStartDesc returns all active plans, latest start first.
	ListByStartDesc(ctx context.Context) ([]domain.Plan, error)

	// ListByDestination returns active plans for a destination, latest start first.
	ListByDestination(ctx context.Context, name domain.DestinationName) ([]domain.Plan, error)

	// ListByDestinationAndRange narrows ListByDestination to plans starting
	// between from and to, inclusive.
	ListByDestinationAndRange(ctx context.Context, name domain.DestinationName, from, to time.Time) ([]domain.Plan, error)
}

type pgPlanRepo struct {
	db db
}

// NewPlanRepo constructs a PlanRepo backed by the provided db connection.
// In production pass a pgx.Tx from Store.InTx; in tests pass a rolled-back pgx.Tx.
func NewPlanRepo(db db) PlanRepo {
	return &pgPlanRepo{db: db}
}

const planSelect = `
		SELECT p.id, d.id, d.name, p.started_at, p.ended_at, p.vehicle,
		       p.created_at, p.updated_at, p.deleted_at
		FROM plans p
		JOIN destinations d ON d.id = p.destination_id`

func (r *pgPlanRepo) Create(ctx context.Context, plan domain.Plan) (domain.Plan, error) {
	const q = `
		WITH inserted AS (
			INSERT INTO plans (destination_id, started_at, ended_at, vehicle)
			VALUES (@destination_id, @started_at, @ended_at, @vehicle)
			RETURNING *
		)
		SELECT p.id, d.id, d.name, p.started_at, p.ended_at, p.vehicle,
		       p.created_at, p.updated_at, p.deleted_at
		FROM inserted p
		JOIN destinations d ON d.id = p.destination_id`

	args := pgx.NamedArgs{
		"destination_id": plan.Destination.ID,
		"started_at":     plan.StartedAt,
		"ended_at":       plan.EndedAt,
		"vehicle":        string(plan.Vehicle),
	}

	result, err := scanPlan(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Plan{}, fmt.Errorf("repo.PlanRepo.Create: %w", err)
	}

	members, err := r.saveMembers(ctx, result.ID, plan.Members)
	if err != nil {
		return domain.Plan{}, fmt.Errorf("repo.PlanRepo.Create: %w", err)
	}
	result.Members = members
	return result, nil
}

func (r *pgPlanRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Plan, error) {
	const q = planSelect + `
		WHERE p.id = @id AND p.deleted_at IS NULL`

	result, err := scanPlan(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.Plan{}, fmt.Errorf("repo.PlanRepo.GetByID: %w", err)
	}

	result.Members, err = r.listMembers(ctx, id)
	if err != nil {
		return domain.Plan{}, fmt.Errorf("repo.PlanRepo.GetByID: %w", err)
	}
	return result, nil
}

func (r *pgPlanRepo) Save(ctx context.Context, plan domain.Plan) (domain.Plan, error) {
	const q = `
		UPDATE plans
		SET started_at = @started_at,
		    ended_at   = @ended_at,
		    vehicle    = @vehicle,
		    deleted_at = @deleted_at,
		    updated_at = now()
		WHERE id = @id
		RETURNING updated_at`

	args := pgx.NamedArgs{
		"id":         plan.ID,
		"started_at": plan.StartedAt,
		"ended_at":   plan.EndedAt,
		"vehicle":    string(plan.Vehicle),
		"deleted_at": plan.DeletedAt, // nil becomes NULL
	}

	if err := r.db.QueryRow(ctx, q, args).Scan(&plan.UpdatedAt); err != nil {
		return domain.Plan{}, fmt.Errorf("repo.PlanRepo.Save: %w", mapWriteError(err))
	}

	members, err := r.saveMembers(ctx, plan.ID, plan.Members)
	if err != nil {
		return domain.Plan{}, fmt.Errorf("repo.PlanRepo.Save: %w", err)
	}
	plan.Members = members
	return plan, nil
}

func (r *pgPlanRepo) List(ctx context.Context) ([]domain.Plan, error) {
	const q = planSelect + `
		WHERE p.deleted_at IS NULL
		ORDER BY p.created_at, p.id`

	plans, err := r.queryPlans(ctx, q, pgx.NamedArgs{})
	if err != nil {
		return nil, fmt.Errorf("repo.PlanRepo.List: %w", err)
	}
	return plans, nil
}

func (r *pgPlanRepo) ListByStartDesc(ctx context.Context) ([]domain.Plan, error) {
	const q = planSelect + `
		WHERE p.deleted_at IS NULL
		ORDER BY p.started_at DESC`

	plans, err := r.queryPlans(ctx, q, pgx.NamedArgs{})
	if err != nil {
		return nil, fmt.Errorf("repo.PlanRepo.ListByStartDesc: %w", err)
	}
	return plans, nil
}

func (r *pgPlanRepo) ListByDestination(ctx context.Context, name domain.DestinationName) ([]domain.Plan, error) {
	const q = planSelect + `
		WHERE p.deleted_at IS NULL AND d.name = @name
		ORDER BY p.started_at DESC`

	plans, err := r.queryPlans(ctx, q, pgx.NamedArgs{"name": string(name)})
	if err != nil {
		return nil, fmt.Errorf("repo.PlanRepo.ListByDestination: %w", err)
	}
	return plans, nil
}

func (r *pgPlanRepo) ListByDestinationAndRange(ctx context.Context, name domain.DestinationName, from, to time.Time) ([]domain.Plan, error) {
	const q = planSelect + `
		WHERE p.deleted_at IS NULL
		  AND d.name = @name
		  AND p.started_at BETWEEN @from AND @to
		ORDER BY p.started_at DESC`

	args := pgx.NamedArgs{"name": string(name), "from": from, "to": to}
	plans, err := r.queryPlans(ctx, q, args)
	if err != nil {
		return nil, fmt.Errorf("repo.PlanRepo.ListByDestinationAndRange: %w", err)
	}
	return plans, nil
}

// queryPlans runs a plan listing query. Rosters are not loaded for listings.
func (r *pgPlanRepo) queryPlans(ctx context.Context, q string, args pgx.NamedArgs) ([]domain.Plan, error) {
	rows, err := r.db.Query(ctx, q, args)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	plans := []domain.Plan{}
	for rows.Next() {
		p, err := scanPlan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		plans = append(plans, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return plans, nil
}

// saveMembers inserts roster entries idempotently and returns the stored roster.
func (r *pgPlanRepo) saveMembers(ctx context.Context, planID uuid.UUID, members []domain.PlanMember) ([]domain.PlanMember, error) {
	const q = `
		INSERT INTO plan_members (plan_id, member_id)
		VALUES (@plan_id, @member_id)
		ON CONFLICT (plan_id, member_id) DO NOTHING`

	for _, m := range members {
		args := pgx.NamedArgs{"plan_id": planID, "member_id": m.MemberID}
		if _, err := r.db.Exec(ctx, q, args); err != nil {
			return nil, fmt.Errorf("save member %s: %w", m.MemberID, err)
		}
	}
	return r.listMembers(ctx, planID)
}

func (r *pgPlanRepo) listMembers(ctx context.Context, planID uuid.UUID) ([]domain.PlanMember, error) {
	const q = `
		SELECT plan_id, member_id, joined_at
		FROM plan_members
		WHERE plan_id = @plan_id
		ORDER BY joined_at, member_id`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"plan_id": planID})
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	defer rows.Close()

	var members []domain.PlanMember
	for rows.Next() {
		var (
			m                  domain.PlanMember
			planRaw, memberRaw pgtype.UUID
		)
		if err := rows.Scan(&planRaw, &memberRaw, &m.JoinedAt); err != nil {
			return nil, fmt.Errorf("list members: scan: %w", err)
		}
		m.PlanID = toUUID(planRaw)
		m.MemberID = toUUID(memberRaw)
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list members: rows: %w", err)
	}
	return members, nil
}

// scanPlan maps a single planSelect row into a domain.Plan without its roster.
func scanPlan(s scanner) (domain.Plan, error) {
	var (
		p         domain.Plan
		id        pgtype.UUID
		vehicle   string
		destName  string
		deletedAt pgtype.Timestamptz
	)

	err := s.Scan(&id, &p.Destination.ID, &destName, &p.StartedAt, &p.EndedAt, &vehicle,
		&p.CreatedAt, &p.UpdatedAt, &deletedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Plan{}, domain.ErrNotFound
		}
		return domain.Plan{}, err
	}

	p.ID = toUUID(id)
	p.Destination.Name = domain.DestinationName(destName)
	p.Vehicle = domain.Vehicle(vehicle)
	p.DeletedAt = optTime(deletedAt)
	return p, nil
}
