package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/goormcoder/ieum/backend/internal/auth"
	"github.com/goormcoder/ieum/backend/internal/domain"
	"github.com/goormcoder/ieum/backend/internal/handler"
	"github.com/goormcoder/ieum/backend/internal/realtime"
	"github.com/goormcoder/ieum/backend/internal/service"
)

// mockPlanServicer is a test double for handler.PlanServicer.
// Set only the method fields your test needs.
type mockPlanServicer struct {
	listDestinations               func(ctx context.Context) ([]domain.Destination, error)
	listCategories                 func(ctx context.Context) ([]domain.Category, error)
	createPlan                     func(ctx context.Context, in service.PlanInput, memberID uuid.UUID) (domain.Plan, error)
	getPlan                        func(ctx context.Context, planID, memberID uuid.UUID) (domain.Plan, error)
	listAllPlans                   func(ctx context.Context) ([]domain.Plan, error)
	listPlansByStartDate           func(ctx context.Context) ([]domain.Plan, error)
	listPlansByDestination         func(ctx context.Context, name domain.DestinationName) ([]domain.Plan, error)
	listPlansByDestinationAndRange func(ctx context.Context, name domain.DestinationName, from, to time.Time) ([]domain.Plan, error)
	deletePlan                     func(ctx context.Context, planID, memberID uuid.UUID) error
}

func (m *mockPlanServicer) ListDestinations(ctx context.Context) ([]domain.Destination, error) {
	return m.listDestinations(ctx)
}
func (m *mockPlanServicer) ListCategories(ctx context.Context) ([]domain.Category, error) {
	return m.listCategories(ctx)
}
func (m *mockPlanServicer) CreatePlan(ctx context.Context, in service.PlanInput, memberID uuid.UUID) (domain.Plan, error) {
	return m.createPlan(ctx, in, memberID)
}
func (m *mockPlanServicer) GetPlan(ctx context.Context, planID, memberID uuid.UUID) (domain.Plan, error) {
	return m.getPlan(ctx, planID, memberID)
}
func (m *mockPlanServicer) ListAllPlans(ctx context.Context) ([]domain.Plan, error) {
	return m.listAllPlans(ctx)
}
func (m *mockPlanServicer) ListPlansByStartDate(ctx context.Context) ([]domain.Plan, error) {
	return m.listPlansByStartDate(ctx)
}
func (m *mockPlanServicer) ListPlansByDestination(ctx context.Context, name domain.DestinationName) ([]domain.Plan, error) {
	return m.listPlansByDestination(ctx, name)
}
func (m *mockPlanServicer) ListPlansByDestinationAndRange(ctx context.Context, name domain.DestinationName, from, to time.Time) ([]domain.Plan, error) {
	return m.listPlansByDestinationAndRange(ctx, name, from, to)
}
func (m *mockPlanServicer) DeletePlan(ctx context.Context, planID, memberID uuid.UUID) error {
	return m.deletePlan(ctx, planID, memberID)
}

// compile-time check: mockPlanServicer must satisfy handler.PlanServicer.
var _ handler.PlanServicer = (*mockPlanServicer)(nil)

// mockPlaceServicer is a test double for handler.PlaceServicer.
type mockPlaceServicer struct {
	createPlace          func(ctx context.Context, planID, memberID uuid.UUID, in service.PlaceInput) (domain.Place, error)
	getPlace             func(ctx context.Context, planID, placeID, memberID uuid.UUID) (domain.Place, error)
	getAllPlaces         func(ctx context.Context, planID, memberID uuid.UUID) ([]domain.Place, error)
	getSharedPlaces      func(ctx context.Context, planID, memberID uuid.UUID) ([]domain.Place, error)
	getSharedPlacesByDay func(ctx context.Context, planID uuid.UUID, day int64, memberID uuid.UUID) ([]domain.Place, error)
	deletePlace          func(ctx context.Context, planID, placeID, memberID uuid.UUID) error
	updateVisitTime      func(ctx context.Context, planID, placeID, memberID uuid.UUID, in service.VisitTimeInput) (domain.Place, error)
	sharePlace           func(ctx context.Context, in service.ShareInput, memberID uuid.UUID) (domain.Place, error)
	itinerary            func(ctx context.Context, planID, memberID uuid.UUID) ([]domain.ItineraryRow, error)
}

func (m *mockPlaceServicer) CreatePlace(ctx context.Context, planID, memberID uuid.UUID, in service.PlaceInput) (domain.Place, error) {
	return m.createPlace(ctx, planID, memberID, in)
}
func (m *mockPlaceServicer) GetPlace(ctx context.Context, planID, placeID, memberID uuid.UUID) (domain.Place, error) {
	return m.getPlace(ctx, planID, placeID, memberID)
}
func (m *mockPlaceServicer) GetAllPlaces(ctx context.Context, planID, memberID uuid.UUID) ([]domain.Place, error) {
	return m.getAllPlaces(ctx, planID, memberID)
}
func (m *mockPlaceServicer) GetSharedPlaces(ctx context.Context, planID, memberID uuid.UUID) ([]domain.Place, error) {
	return m.getSharedPlaces(ctx, planID, memberID)
}
func (m *mockPlaceServicer) GetSharedPlacesByDay(ctx context.Context, planID uuid.UUID, day int64, memberID uuid.UUID) ([]domain.Place, error) {
	return m.getSharedPlacesByDay(ctx, planID, day, memberID)
}
func (m *mockPlaceServicer) DeletePlace(ctx context.Context, planID, placeID, memberID uuid.UUID) error {
	return m.deletePlace(ctx, planID, placeID, memberID)
}
func (m *mockPlaceServicer) UpdateVisitTime(ctx context.Context, planID, placeID, memberID uuid.UUID, in service.VisitTimeInput) (domain.Place, error) {
	return m.updateVisitTime(ctx, planID, placeID, memberID, in)
}
func (m *mockPlaceServicer) SharePlace(ctx context.Context, in service.ShareInput, memberID uuid.UUID) (domain.Place, error) {
	return m.sharePlace(ctx, in, memberID)
}

func (m *mockPlaceServicer) Itinerary(ctx context.Context, planID, memberID uuid.UUID) ([]domain.ItineraryRow, error) {
	return m.itinerary(ctx, planID, memberID)
}

// compile-time check: mockPlaceServicer must satisfy handler.PlaceServicer.
var _ handler.PlaceServicer = (*mockPlaceServicer)(nil)

// ---- helpers ---------------------------------------------------------------

const testSecret = "handler-test-secret"

var (
	june1 = time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	june3 = time.Date(2025, 6, 3, 0, 0, 0, 0, time.UTC)
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newHTTPHandler wires a Server with the given mocks the same way main.go
// does, minus the cross-cutting middleware.
func newHTTPHandler(plans handler.PlanServicer, places handler.PlaceServicer) http.Handler {
	return handler.NewServer(handler.Deps{
		Plans:    plans,
		Places:   places,
		Hub:      realtime.NewHub(discardLogger(), 0),
		Verifier: auth.NewVerifier(testSecret),
		Logger:   discardLogger(),
		OpenAPI:  []byte("openapi: 3.0.3\n"),
	}).Routes()
}

func tokenFor(t *testing.T, memberID uuid.UUID) string {
	t.Helper()
	token, err := auth.NewVerifier(testSecret).Issue(memberID, time.Hour)
	require.NoError(t, err)
	return token
}

// do sends a request as memberID (uuid.Nil sends no token) and returns the recorder.
func do(t *testing.T, h http.Handler, method, path string, memberID uuid.UUID, body any) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	if memberID != uuid.Nil {
		req.Header.Set("Authorization", "Bearer "+tokenFor(t, memberID))
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) handler.ErrorDetail {
	t.Helper()
	var resp handler.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp.Error
}

func planFixture(members ...uuid.UUID) domain.Plan {
	p := domain.Plan{
		ID:          uuid.New(),
		Destination: domain.Destination{ID: 1, Name: domain.DestinationJeju},
		StartedAt:   june1,
		EndedAt:     june3,
		Vehicle:     domain.VehicleCar,
		CreatedAt:   time.Now().UTC(),
		UpdatedAt:   time.Now().UTC(),
	}
	for _, m := range members {
		p.AddMember(m)
	}
	return p
}

func placeFixture(planID, memberID uuid.UUID) domain.Place {
	return domain.Place{
		ID:         uuid.New(),
		PlanID:     planID,
		MemberID:   memberID,
		Name:       "Blue Bottle",
		Address:    "1 Harbor Rd",
		CategoryID: 1,
		CreatedAt:  time.Now().UTC(),
		UpdatedAt:  time.Now().UTC(),
	}
}
