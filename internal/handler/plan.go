package handler

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/goormcoder/ieum/backend/internal/domain"
	"github.com/goormcoder/ieum/backend/internal/service"
)

// DestinationResponse is the JSON shape of a destination.
type DestinationResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// CategoryResponse is the JSON shape of a place category.
type CategoryResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// CreatePlanRequest is the body of POST /plans.
type CreatePlanRequest struct {
	DestinationID int64      `json:"destination_id"`
	StartedAt     *time.Time `json:"started_at"`
	EndedAt       *time.Time `json:"ended_at"`
	Vehicle       string     `json:"vehicle"`
}

// PlanResponse is the JSON shape of a plan.
type PlanResponse struct {
	ID          uuid.UUID           `json:"id"`
	Destination DestinationResponse `json:"destination"`
	StartedAt   time.Time           `json:"started_at"`
	EndedAt     time.Time           `json:"ended_at"`
	Vehicle     string              `json:"vehicle"`
	Duration    int64               `json:"duration_days"`
	MemberIDs   []uuid.UUID         `json:"member_ids,omitempty"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

// ListDestinations handles GET /destinations.
func (s *Server) ListDestinations(w http.ResponseWriter, r *http.Request) {
	dests, err := s.plans.ListDestinations(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	out := make([]DestinationResponse, len(dests))
	for i, d := range dests {
		out[i] = destinationToResponse(d)
	}
	writeJSON(w, http.StatusOK, out)
}

// ListCategories handles GET /categories.
func (s *Server) ListCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := s.plans.ListCategories(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	out := make([]CategoryResponse, len(cats))
	for i, c := range cats {
		out[i] = CategoryResponse{ID: c.ID, Name: c.Name}
	}
	writeJSON(w, http.StatusOK, out)
}

// CreatePlan handles POST /plans. The caller becomes the plan's first member.
func (s *Server) CreatePlan(w http.ResponseWriter, r *http.Request) {
	var body CreatePlanRequest
	if !decodeBody(w, r, &body) {
		return
	}
	in, msg := requestToPlanInput(body)
	if msg != "" {
		requestError(w, msg)
		return
	}

	created, err := s.plans.CreatePlan(r.Context(), in, currentMember(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, planToResponse(created))
}

// ListPlans handles GET /plans.
// Query parameters select the listing:
//   - none: every plan in creation order
//   - ?sort=started_at: every plan, latest start first
//   - ?destination=JEJU: plans for one destination, latest start first
//   - ?destination=JEJU&from=2025-06-01&to=2025-06-30: additionally starting
//     within [from, to], both dates inclusive
func (s *Server) ListPlans(w http.ResponseWriter, r *http.Request) {
	var (
		sort        *string
		destination *string
		from, to    *openapi_types.Date
	)
	params := []struct {
		name string
		dest any
	}{
		{"sort", &sort},
		{"destination", &destination},
		{"from", &from},
		{"to", &to},
	}
	for _, p := range params {
		if err := queryParam(r, p.name, p.dest); err != nil {
			requestError(w, err.Error())
			return
		}
	}

	ctx := r.Context()
	var (
		plans []domain.Plan
		err   error
	)
	switch {
	case destination != nil:
		name, perr := domain.ParseDestinationName(*destination)
		if perr != nil {
			s.writeError(w, r, perr)
			return
		}
		if (from == nil) != (to == nil) {
			requestError(w, "from and to must be given together")
			return
		}
		if from != nil {
			start := from.Time
			end := to.Time.AddDate(0, 0, 1).Add(-time.Nanosecond)
			plans, err = s.plans.ListPlansByDestinationAndRange(ctx, name, start, end)
		} else {
			plans, err = s.plans.ListPlansByDestination(ctx, name)
		}
	case from != nil || to != nil:
		requestError(w, "from and to require destination")
		return
	case sort != nil && *sort == "started_at":
		plans, err = s.plans.ListPlansByStartDate(ctx)
	case sort != nil:
		requestError(w, "unsupported sort "+*sort)
		return
	default:
		plans, err = s.plans.ListAllPlans(ctx)
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	out := make([]PlanResponse, len(plans))
	for i, p := range plans {
		out[i] = planToResponse(p)
	}
	writeJSON(w, http.StatusOK, out)
}

// GetPlan handles GET /plans/{planId}.
func (s *Server) GetPlan(w http.ResponseWriter, r *http.Request) {
	planID, err := pathUUID(r, "planId")
	if err != nil {
		requestError(w, err.Error())
		return
	}
	plan, err := s.plans.GetPlan(r.Context(), planID, currentMember(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, planToResponse(plan))
}

// DeletePlan handles DELETE /plans/{planId}.
func (s *Server) DeletePlan(w http.ResponseWriter, r *http.Request) {
	planID, err := pathUUID(r, "planId")
	if err != nil {
		requestError(w, err.Error())
		return
	}
	if err := s.plans.DeletePlan(r.Context(), planID, currentMember(r)); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- mapping helpers --------------------------------------------------------

// requestToPlanInput validates a CreatePlanRequest body. A non-empty message
// means the request is rejected.
func requestToPlanInput(body CreatePlanRequest) (service.PlanInput, string) {
	if body.DestinationID == 0 {
		return service.PlanInput{}, "destination_id is required"
	}
	if body.StartedAt == nil || body.EndedAt == nil {
		return service.PlanInput{}, "started_at and ended_at are required"
	}
	vehicle, err := domain.ParseVehicle(body.Vehicle)
	if err != nil {
		return service.PlanInput{}, domain.Message(err, domain.ErrBadRequest)
	}
	return service.PlanInput{
		DestinationID: body.DestinationID,
		StartedAt:     body.StartedAt.UTC(),
		EndedAt:       body.EndedAt.UTC(),
		Vehicle:       vehicle,
	}, ""
}

func destinationToResponse(d domain.Destination) DestinationResponse {
	return DestinationResponse{ID: d.ID, Name: string(d.Name)}
}

// planToResponse converts a domain.Plan into its JSON shape. Listings do not
// load rosters, so member_ids is omitted there.
func planToResponse(p domain.Plan) PlanResponse {
	resp := PlanResponse{
		ID:          p.ID,
		Destination: destinationToResponse(p.Destination),
		StartedAt:   p.StartedAt,
		EndedAt:     p.EndedAt,
		Vehicle:     string(p.Vehicle),
		Duration:    p.Duration(),
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
	for _, m := range p.Members {
		resp.MemberIDs = append(resp.MemberIDs, m.MemberID)
	}
	return resp
}
