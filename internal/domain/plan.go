// Package domain contains the core data types for the Ieum travel planner.
// This package has no infrastructure dependencies and is imported by every
// other internal package (repo, service, handler, realtime).
package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Vehicle is how the group travels during a plan.
type Vehicle string

const (
	VehicleCar           Vehicle = "CAR"
	VehiclePublicTransit Vehicle = "PUBLIC_TRANSIT"
	VehicleWalk          Vehicle = "WALK"
	VehicleBicycle       Vehicle = "BICYCLE"
)

// ParseVehicle validates a raw vehicle value.
func ParseVehicle(s string) (Vehicle, error) {
	switch v := Vehicle(s); v {
	case VehicleCar, VehiclePublicTransit, VehicleWalk, VehicleBicycle:
		return v, nil
	}
	return "", fmt.Errorf("%w: unknown vehicle %q", ErrBadRequest, s)
}

// PlanMember links a member to a plan. The existence of this link is the
// only authorization predicate for plan and place operations.
type PlanMember struct {
	PlanID   uuid.UUID
	MemberID uuid.UUID
	JoinedAt time.Time
}

// Plan is a trip jointly owned by its members.
// Places are not held here; they are queried by plan id.
type Plan struct {
	ID          uuid.UUID
	Destination Destination
	StartedAt   time.Time
	EndedAt     time.Time
	Vehicle     Vehicle
	Members     []PlanMember
	CreatedAt   time.Time
	UpdatedAt   time.Time
	DeletedAt   *time.Time // nil while the plan is active
}

// NewPlan builds an unsaved plan with the creator as its first member.
func NewPlan(dest Destination, start, end time.Time, vehicle Vehicle, creator uuid.UUID) Plan {
	p := Plan{
		Destination: dest,
		StartedAt:   start,
		EndedAt:     end,
		Vehicle:     vehicle,
	}
	p.AddMember(creator)
	return p
}

// AddMember appends memberID to the roster. Adding an existing member is a no-op.
func (p *Plan) AddMember(memberID uuid.UUID) {
	if p.HasMember(memberID) {
		return
	}
	p.Members = append(p.Members, PlanMember{PlanID: p.ID, MemberID: memberID})
}

// HasMember reports whether memberID is on the roster. Rosters are small, so
// this is a plain scan over the loaded snapshot.
func (p Plan) HasMember(memberID uuid.UUID) bool {
	for _, m := range p.Members {
		if m.MemberID == memberID {
			return true
		}
	}
	return false
}

// Duration returns the number of calendar days the plan touches, counting
// both the start and end dates. A plan from June 1 00:00 to June 3 00:00
// lasts 3 days, so day 3 maps onto the end date.
func (p Plan) Duration() int64 {
	start := calendarDate(p.StartedAt)
	end := calendarDate(p.EndedAt)
	return int64(end.Sub(start)/(24*time.Hour)) + 1
}

// ContainsDay reports whether day is a valid 1-based day index of the plan.
func (p Plan) ContainsDay(day int64) bool {
	return day >= 1 && day <= p.Duration()
}

// NthDayDate returns midnight UTC of the plan's day-th calendar day.
// Day 1 is the start date.
func (p Plan) NthDayDate(day int64) time.Time {
	return calendarDate(p.StartedAt).AddDate(0, 0, int(day-1))
}

// DayOf returns the 1-based day index of the calendar day t falls on.
// Times before the plan's start date yield values below 1.
func (p Plan) DayOf(t time.Time) int64 {
	return int64(calendarDate(t).Sub(calendarDate(p.StartedAt))/(24*time.Hour)) + 1
}

// Contains reports whether t lies within [StartedAt, EndedAt].
func (p Plan) Contains(t time.Time) bool {
	return !t.Before(p.StartedAt) && !t.After(p.EndedAt)
}

// IsDeleted reports whether the plan has been soft-deleted.
func (p Plan) IsDeleted() bool {
	return p.DeletedAt != nil
}

// MarkDeleted soft-deletes the plan.
func (p *Plan) MarkDeleted(now time.Time) {
	p.DeletedAt = &now
}

func calendarDate(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}
