package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Place is a candidate itinerary item proposed by one member of a plan.
// It stays private to its creator until it is shared (activated); sharing
// gives it a visit window and makes it visible to the whole plan.
type Place struct {
	ID          uuid.UUID
	PlanID      uuid.UUID
	MemberID    uuid.UUID // creator
	Name        string
	Address     string
	CategoryID  int64
	StartedAt   *time.Time
	EndedAt     *time.Time
	ActivatedAt *time.Time // nil while the place is private
	DeletedAt   *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewPlace builds an unsaved private place with no visit window.
func NewPlace(planID, memberID uuid.UUID, name, address string, categoryID int64) Place {
	return Place{
		PlanID:     planID,
		MemberID:   memberID,
		Name:       name,
		Address:    address,
		CategoryID: categoryID,
	}
}

// IsDeactivated reports whether the place is still private.
func (p Place) IsDeactivated() bool {
	return p.ActivatedAt == nil
}

// IsCreatedBy reports whether memberID proposed this place.
func (p Place) IsCreatedBy(memberID uuid.UUID) bool {
	return p.MemberID == memberID
}

// Activate shares the place with the plan. The visit window defaults to the
// whole plan and can be narrowed later with SetVisitTime.
func (p *Place) Activate(plan Plan, now time.Time) {
	p.ActivatedAt = &now
	p.SetVisitTime(plan.StartedAt, plan.EndedAt)
}

// SetVisitTime overwrites the visit window. Callers validate it first with
// ValidateVisitWindow.
func (p *Place) SetVisitTime(start, end time.Time) {
	p.StartedAt = &start
	p.EndedAt = &end
}

// MarkDeleted soft-deletes the place.
func (p *Place) MarkDeleted(now time.Time) {
	p.DeletedAt = &now
}

// ValidateVisitWindow checks that [start, end] lies inside the plan and that
// start is strictly before end.
func ValidateVisitWindow(plan Plan, start, end time.Time) error {
	if !plan.Contains(start) || !plan.Contains(end) {
		return fmt.Errorf("%w: visit time must be within the plan's date range", ErrBadRequest)
	}
	if !start.Before(end) {
		return fmt.Errorf("%w: visit start must be before visit end", ErrBadRequest)
	}
	return nil
}
