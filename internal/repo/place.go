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

// PlaceRepo defines the persistence operations for Places.
// All reads are scoped to one plan and exclude soft-deleted places.
type PlaceRepo interface {
	// Create inserts a new place. A duplicate live proposal by the same member
	// is rejected by the store with domain.ErrConflict.
	Create(ctx context.Context, place domain.Place) (domain.Place, error)

	// GetByID retrieves a live place by id within planID.
	// Returns domain.ErrNotFound if it does not exist, was deleted, or belongs
	// to another plan.
	GetByID(ctx context.Context, planID, placeID uuid.UUID) (domain.Place, error)

	// FindByNaturalKey retrieves the live place proposed by memberID in planID
	// with the given name and address.
	FindByNaturalKey(ctx context.Context, planID, memberID uuid.UUID, name, address string) (domain.Place, error)

	// ExistsByNaturalKey reports whether memberID already proposed a live place
	// with this name and address in planID.
	ExistsByNaturalKey(ctx context.Context, planID, memberID uuid.UUID, name, address string) (bool, error)

	// ExistsShared reports whether any live, activated place in planID has this
	// name and address.
	ExistsShared(ctx context.Context, planID uuid.UUID, name, address string) (bool, error)

	// ListPrivateByMember returns memberID's live, not yet shared places in planID.
	ListPrivateByMember(ctx context.Context, planID, memberID uuid.UUID) ([]domain.Place, error)

	// ListShared returns every live, activated place in planID ordered by visit start.
	ListShared(ctx context.Context, planID uuid.UUID) ([]domain.Place, error)

	// ListSharedOnDate returns live, activated places in planID whose visit
	// starts on the UTC calendar date of day. A visit spanning several days is
	// listed on its first day only.
	ListSharedOnDate(ctx context.Context, planID uuid.UUID, day time.Time) ([]domain.Place, error)

	// Update persists the visit window, activation and deletion state of place.
	// Returns domain.ErrNotFound if the place does not exist under its plan.
	Update(ctx context.Context, place domain.Place) (domain.Place, error)
}

type pgPlaceRepo struct {
	db db
}

// NewPlaceRepo constructs a PlaceRepo backed by the provided db connection.
func NewPlaceRepo(db db) PlaceRepo {
	return &pgPlaceRepo{db: db}
}

const placeColumns = `id, plan_id, member_id, place_name, address, category_id,
		       started_at, ended_at, activated_at, deleted_at, created_at, updated_at`

func (r *pgPlaceRepo) Create(ctx context.Context, place domain.Place) (domain.Place, error) {
	const q = `
		INSERT INTO places (plan_id, member_id, place_name, address, category_id,
		                    started_at, ended_at, activated_at)
		VALUES (@plan_id, @member_id, @place_name, @address, @category_id,
		        @started_at, @ended_at, @activated_at)
		RETURNING ` + placeColumns

	args := pgx.NamedArgs{
		"plan_id":      place.PlanID,
		"member_id":    place.MemberID,
		"place_name":   place.Name,
		"address":      place.Address,
		"category_id":  place.CategoryID,
		"started_at":   place.StartedAt,
		"ended_at":     place.EndedAt,
		"activated_at": place.ActivatedAt,
	}

	result, err := scanPlace(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Place{}, fmt.Errorf("repo.PlaceRepo.Create: %w", mapWriteError(err))
	}
	return result, nil
}

func (r *pgPlaceRepo) GetByID(ctx context.Context, planID, placeID uuid.UUID) (domain.Place, error) {
	const q = `
		SELECT ` + placeColumns + `
		FROM places
		WHERE id = @id AND plan_id = @plan_id AND deleted_at IS NULL`

	result, err := scanPlace(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": placeID, "plan_id": planID}))
	if err != nil {
		return domain.Place{}, fmt.Errorf("repo.PlaceRepo.GetByID: %w", err)
	}
	return result, nil
}

func (r *pgPlaceRepo) FindByNaturalKey(ctx context.Context, planID, memberID uuid.UUID, name, address string) (domain.Place, error) {
	const q = `
		SELECT ` + placeColumns + `
		FROM places
		WHERE plan_id = @plan_id
		  AND member_id = @member_id
		  AND place_name = @place_name
		  AND address = @address
		  AND deleted_at IS NULL`

	args := pgx.NamedArgs{"plan_id": planID, "member_id": memberID, "place_name": name, "address": address}
	result, err := scanPlace(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Place{}, fmt.Errorf("repo.PlaceRepo.FindByNaturalKey: %w", err)
	}
	return result, nil
}

func (r *pgPlaceRepo) ExistsByNaturalKey(ctx context.Context, planID, memberID uuid.UUID, name, address string) (bool, error) {
	const q = `
		SELECT EXISTS (
			SELECT 1 FROM places
			WHERE plan_id = @plan_id
			  AND member_id = @member_id
			  AND place_name = @place_name
			  AND address = @address
			  AND deleted_at IS NULL
		)`

	var exists bool
	args := pgx.NamedArgs{"plan_id": planID, "member_id": memberID, "place_name": name, "address": address}
	if err := r.db.QueryRow(ctx, q, args).Scan(&exists); err != nil {
		return false, fmt.Errorf("repo.PlaceRepo.ExistsByNaturalKey: %w", err)
	}
	return exists, nil
}

func (r *pgPlaceRepo) ExistsShared(ctx context.Context, planID uuid.UUID, name, address string) (bool, error) {
	const q = `
		SELECT EXISTS (
			SELECT 1 FROM places
			WHERE plan_id = @plan_id
			  AND place_name = @place_name
			  AND address = @address
			  AND activated_at IS NOT NULL
			  AND deleted_at IS NULL
		)`

	var exists bool
	args := pgx.NamedArgs{"plan_id": planID, "place_name": name, "address": address}
	if err := r.db.QueryRow(ctx, q, args).Scan(&exists); err != nil {
		return false, fmt.Errorf("repo.PlaceRepo.ExistsShared: %w", err)
	}
	return exists, nil
}

func (r *pgPlaceRepo) ListPrivateByMember(ctx context.Context, planID, memberID uuid.UUID) ([]domain.Place, error) {
	const q = `
		SELECT ` + placeColumns + `
		FROM places
		WHERE plan_id = @plan_id
		  AND member_id = @member_id
		  AND activated_at IS NULL
		  AND deleted_at IS NULL
		ORDER BY created_at, id`

	places, err := r.queryPlaces(ctx, q, pgx.NamedArgs{"plan_id": planID, "member_id": memberID})
	if err != nil {
		return nil, fmt.Errorf("repo.PlaceRepo.ListPrivateByMember: %w", err)
	}
	return places, nil
}

func (r *pgPlaceRepo) ListShared(ctx context.Context, planID uuid.UUID) ([]domain.Place, error) {
	const q = `
		SELECT ` + placeColumns + `
		FROM places
		WHERE plan_id = @plan_id
		  AND activated_at IS NOT NULL
		  AND deleted_at IS NULL
		ORDER BY started_at, id`

	places, err := r.queryPlaces(ctx, q, pgx.NamedArgs{"plan_id": planID})
	if err != nil {
		return nil, fmt.Errorf("repo.PlaceRepo.ListShared: %w", err)
	}
	return places, nil
}

func (r *pgPlaceRepo) ListSharedOnDate(ctx context.Context, planID uuid.UUID, day time.Time) ([]domain.Place, error) {
	const q = `
		SELECT ` + placeColumns + `
		FROM places
		WHERE plan_id = @plan_id
		  AND activated_at IS NOT NULL
		  AND deleted_at IS NULL
		  AND started_at >= @day_start
		  AND started_at <  @day_end
		ORDER BY started_at, id`

	u := day.UTC()
	dayStart := time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
	args := pgx.NamedArgs{
		"plan_id":   planID,
		"day_start": dayStart,
		"day_end":   dayStart.AddDate(0, 0, 1),
	}

	places, err := r.queryPlaces(ctx, q, args)
	if err != nil {
		return nil, fmt.Errorf("repo.PlaceRepo.ListSharedOnDate: %w", err)
	}
	return places, nil
}

func (r *pgPlaceRepo) Update(ctx context.Context, place domain.Place) (domain.Place, error) {
	const q = `
		UPDATE places
		SET started_at   = @started_at,
		    ended_at     = @ended_at,
		    activated_at = @activated_at,
		    deleted_at   = @deleted_at,
		    updated_at   = now()
		WHERE id = @id AND plan_id = @plan_id
		RETURNING ` + placeColumns

	args := pgx.NamedArgs{
		"id":           place.ID,
		"plan_id":      place.PlanID,
		"started_at":   place.StartedAt,
		"ended_at":     place.EndedAt,
		"activated_at": place.ActivatedAt,
		"deleted_at":   place.DeletedAt,
	}

	result, err := scanPlace(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Place{}, fmt.Errorf("repo.PlaceRepo.Update: %w", mapWriteError(err))
	}
	return result, nil
}

func (r *pgPlaceRepo) queryPlaces(ctx context.Context, q string, args pgx.NamedArgs) ([]domain.Place, error) {
	rows, err := r.db.Query(ctx, q, args)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	places := []domain.Place{}
	for rows.Next() {
		p, err := scanPlace(rows)
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		places = append(places, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return places, nil
}

// scanPlace maps a placeColumns row into a domain.Place.
func scanPlace(s scanner) (domain.Place, error) {
	var (
		p                                        domain.Place
		id, planID, memberID                     pgtype.UUID
		startedAt, endedAt, activatedAt, deleted pgtype.Timestamptz
	)

	err := s.Scan(&id, &planID, &memberID, &p.Name, &p.Address, &p.CategoryID,
		&startedAt, &endedAt, &activatedAt, &deleted, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Place{}, domain.ErrNotFound
		}
		return domain.Place{}, err
	}

	p.ID = toUUID(id)
	p.PlanID = toUUID(planID)
	p.MemberID = toUUID(memberID)
	p.StartedAt = optTime(startedAt)
	p.EndedAt = optTime(endedAt)
	p.ActivatedAt = optTime(activatedAt)
	p.DeletedAt = optTime(deleted)
	return p, nil
}
