package realtime

import (
	"github.com/google/uuid"

	"github.com/goormcoder/ieum/backend/internal/domain"
)

// Frame types sent to clients.
const (
	FramePlaceShared = "place_shared"
	FrameError       = "error"
)

// CodeBadRequest is the error code for frames the server could not understand.
// Internal failures use CodeInternal; domain failures use the ShareReason.
const (
	CodeBadRequest = "BAD_REQUEST"
	CodeInternal   = "INTERNAL"
)

// Frame is one server-to-client message. Place is set on place_shared frames;
// the error fields are set on error frames.
type Frame struct {
	Type     string     `json:"type"`
	Place    any        `json:"place,omitempty"`
	Code     string     `json:"code,omitempty"`
	Message  string     `json:"message,omitempty"`
	MemberID *uuid.UUID `json:"member_id,omitempty"`
	PlanID   *uuid.UUID `json:"plan_id,omitempty"`
}

// ShareRequest is the only client-to-server message.
type ShareRequest struct {
	PlaceID string `json:"place_id"`
}

// PlaceShared builds the broadcast frame for a newly shared place. place is
// the already-encoded payload.
func PlaceShared(place any) Frame {
	return Frame{Type: FramePlaceShared, Place: place}
}

// ShareFailed builds the error frame for a failed share, carrying the member
// and plan the error was raised for.
func ShareFailed(err *domain.ShareError) Frame {
	member := err.Member
	return Frame{
		Type:     FrameError,
		Code:     string(err.Reason),
		Message:  err.Message(),
		MemberID: &member,
		PlanID:   err.PlanID(),
	}
}

// ErrorFrame builds an error frame not tied to a domain failure.
func ErrorFrame(code, message string) Frame {
	return Frame{Type: FrameError, Code: code, Message: message}
}
