package handler

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/goormcoder/ieum/backend/internal/domain"
	"github.com/goormcoder/ieum/backend/internal/service"
)

// CreatePlaceRequest is the body of POST /plans/{planId}/places.
type CreatePlaceRequest struct {
	CategoryID int64  `json:"category_id"`
	Name       string `json:"name"`
	Address    string `json:"address"`
}

// VisitTimeRequest is the body of PUT /plans/{planId}/places/{placeId}/visit-time.
type VisitTimeRequest struct {
	StartedAt *time.Time `json:"started_at"`
	EndedAt   *time.Time `json:"ended_at"`
}

// PlaceResponse is the JSON shape of a place. The visit window and
// activated_at are null while the place is private.
type PlaceResponse struct {
	ID          uuid.UUID  `json:"id"`
	PlanID      uuid.UUID  `json:"plan_id"`
	MemberID    uuid.UUID  `json:"member_id"`
	Name        string     `json:"name"`
	Address     string     `json:"address"`
	CategoryID  int64      `json:"category_id"`
	Shared      bool       `json:"shared"`
	StartedAt   *time.Time `json:"started_at"`
	EndedAt     *time.Time `json:"ended_at"`
	ActivatedAt *time.Time `json:"activated_at"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// CreatePlace handles POST /plans/{planId}/places.
func (s *Server) CreatePlace(w http.ResponseWriter, r *http.Request) {
	planID, err := pathUUID(r, "planId")
	if err != nil {
		requestError(w, err.Error())
		return
	}
	var body CreatePlaceRequest
	if !decodeBody(w, r, &body) {
		return
	}
	if body.CategoryID == 0 {
		requestError(w, "category_id is required")
		return
	}

	created, err := s.places.CreatePlace(r.Context(), planID, currentMember(r), service.PlaceInput{
		CategoryID: body.CategoryID,
		Name:       body.Name,
		Address:    body.Address,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, placeToResponse(created))
}

// ListPlaces handles GET /plans/{planId}/places: the caller's own private places.
func (s *Server) ListPlaces(w http.ResponseWriter, r *http.Request) {
	planID, err := pathUUID(r, "planId")
	if err != nil {
		requestError(w, err.Error())
		return
	}
	places, err := s.places.GetAllPlaces(r.Context(), planID, currentMember(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, placesToResponse(places))
}

// ListSharedPlaces handles GET /plans/{planId}/places/shared.
// With ?day=N only the shared places visited on the plan's N-th day are returned.
func (s *Server) ListSharedPlaces(w http.ResponseWriter, r *http.Request) {
	planID, err := pathUUID(r, "planId")
	if err != nil {
		requestError(w, err.Error())
		return
	}
	var day *int64
	if err := queryParam(r, "day", &day); err != nil {
		requestError(w, err.Error())
		return
	}

	var places []domain.Place
	if day != nil {
		places, err = s.places.GetSharedPlacesByDay(r.Context(), planID, *day, currentMember(r))
	} else {
		places, err = s.places.GetSharedPlaces(r.Context(), planID, currentMember(r))
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, placesToResponse(places))
}

// GetPlace handles GET /plans/{planId}/places/{placeId}.
func (s *Server) GetPlace(w http.ResponseWriter, r *http.Request) {
	planID, placeID, ok := placePath(w, r)
	if !ok {
		return
	}
	place, err := s.places.GetPlace(r.Context(), planID, placeID, currentMember(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, placeToResponse(place))
}

// DeletePlace handles DELETE /plans/{planId}/places/{placeId}.
func (s *Server) DeletePlace(w http.ResponseWriter, r *http.Request) {
	planID, placeID, ok := placePath(w, r)
	if !ok {
		return
	}
	if err := s.places.DeletePlace(r.Context(), planID, placeID, currentMember(r)); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UpdateVisitTime handles PUT /plans/{planId}/places/{placeId}/visit-time.
func (s *Server) UpdateVisitTime(w http.ResponseWriter, r *http.Request) {
	planID, placeID, ok := placePath(w, r)
	if !ok {
		return
	}
	var body VisitTimeRequest
	if !decodeBody(w, r, &body) {
		return
	}
	if body.StartedAt == nil || body.EndedAt == nil {
		requestError(w, "started_at and ended_at are required")
		return
	}

	updated, err := s.places.UpdateVisitTime(r.Context(), planID, placeID, currentMember(r), service.VisitTimeInput{
		StartedAt: body.StartedAt.UTC(),
		EndedAt:   body.EndedAt.UTC(),
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, placeToResponse(updated))
}

// --- mapping helpers --------------------------------------------------------

func placePath(w http.ResponseWriter, r *http.Request) (planID, placeID uuid.UUID, ok bool) {
	planID, err := pathUUID(r, "planId")
	if err != nil {
		requestError(w, err.Error())
		return uuid.Nil, uuid.Nil, false
	}
	placeID, err = pathUUID(r, "placeId")
	if err != nil {
		requestError(w, err.Error())
		return uuid.Nil, uuid.Nil, false
	}
	return planID, placeID, true
}

func placeToResponse(p domain.Place) PlaceResponse {
	return PlaceResponse{
		ID:          p.ID,
		PlanID:      p.PlanID,
		MemberID:    p.MemberID,
		Name:        p.Name,
		Address:     p.Address,
		CategoryID:  p.CategoryID,
		Shared:      !p.IsDeactivated(),
		StartedAt:   p.StartedAt,
		EndedAt:     p.EndedAt,
		ActivatedAt: p.ActivatedAt,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func placesToResponse(places []domain.Place) []PlaceResponse {
	out := make([]PlaceResponse, len(places))
	for i, p := range places {
		out[i] = placeToResponse(p)
	}
	return out
}
