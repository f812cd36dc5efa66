package domain

import (
	"errors"
	"strings"

	"github.com/google/uuid"
)

// ErrNotFound is returned by repo and service functions when the requested
// resource does not exist, has been soft-deleted, or belongs to a plan the
// caller is not a member of. The last case is deliberately indistinguishable
// from the first two so plan existence is never leaked to outsiders.
// Handlers should map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrBadRequest is returned by service functions when input fails business
// rule validation (day outside the plan, visit window outside the plan,
// visit start not before visit end, editing a private place's visit time).
// Handlers should map this to HTTP 400.
var ErrBadRequest = errors.New("bad request")

// ErrConflict is returned when a place duplicates an existing proposal by the
// same member, or an already shared place in the same plan.
// Handlers should map this to HTTP 409.
var ErrConflict = errors.New("conflict")

// ErrForbidden is returned when a member touches a private place they did not
// create. Handlers should map this to HTTP 403.
var ErrForbidden = errors.New("forbidden")

// ErrUnauthorized is returned by the auth boundary when the request carries no
// valid member identity. Handlers should map this to HTTP 401.
var ErrUnauthorized = errors.New("unauthorized")

// Message extracts the human-readable detail from an error wrapped around one
// of the sentinels above.
// e.g. "service.PlaceService.CreatePlace: conflict: place already proposed" → "place already proposed"
func Message(err error, sentinel error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	prefix := sentinel.Error() + ": "
	if i := strings.LastIndex(msg, prefix); i >= 0 {
		return msg[i+len(prefix):]
	}
	return sentinel.Error()
}

// ShareReason classifies a failure on the real-time sharing path.
type ShareReason string

const (
	SharePlanNotFound        ShareReason = "PLAN_NOT_FOUND"
	SharePlanMemberNotFound  ShareReason = "PLAN_MEMBER_NOT_FOUND"
	SharePlaceNotFound       ShareReason = "PLACE_NOT_FOUND"
	ShareForbiddenAccess     ShareReason = "FORBIDDEN_ACCESS"
	ShareSharedPlaceConflict ShareReason = "SHARED_PLACE_CONFLICT"
)

var shareMessages = map[ShareReason]string{
	SharePlanNotFound:        "plan not found",
	SharePlanMemberNotFound:  "member is not part of this plan",
	SharePlaceNotFound:       "place not found",
	ShareForbiddenAccess:     "only the creator of a place can share it",
	ShareSharedPlaceConflict: "a place with the same name and address is already shared in this plan",
}

// ShareError is the session-scoped counterpart of the sentinel errors above.
// It carries the acting member and, when it was resolved, the plan, so the
// real-time channel can route the failure back to the right session without
// an HTTP response to attach it to.
type ShareError struct {
	Reason ShareReason
	Member uuid.UUID
	// Plan is nil when the plan could not be resolved.
	Plan *Plan
}

// NewShareError builds a ShareError. Pass a nil plan when it was not resolved.
func NewShareError(reason ShareReason, member uuid.UUID, plan *Plan) *ShareError {
	return &ShareError{Reason: reason, Member: member, Plan: plan}
}

func (e *ShareError) Error() string {
	return "share place: " + string(e.Reason) + ": " + e.Message()
}

// Message returns the human-readable description of the failure.
func (e *ShareError) Message() string {
	if m, ok := shareMessages[e.Reason]; ok {
		return m
	}
	return string(e.Reason)
}

// PlanID returns the id of the resolved plan, or nil.
func (e *ShareError) PlanID() *uuid.UUID {
	if e.Plan == nil {
		return nil
	}
	id := e.Plan.ID
	return &id
}

// Unwrap maps the reason onto the common taxonomy so callers can still use
// errors.Is(err, domain.ErrNotFound) and friends.
func (e *ShareError) Unwrap() error {
	switch e.Reason {
	case ShareForbiddenAccess:
		return ErrForbidden
	case ShareSharedPlaceConflict:
		return ErrConflict
	default:
		return ErrNotFound
	}
}
