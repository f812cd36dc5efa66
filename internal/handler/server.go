// Package handler implements the HTTP boundary of the Ieum planner API.
// All handlers are methods on Server. Methods are split into resource files
// (plan.go, place.go, share.go, itinerary.go, ...) but share the same Server
// struct so they can access its dependencies. Routes wires them into a chi router.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/goormcoder/ieum/backend/internal/auth"
	"github.com/goormcoder/ieum/backend/internal/domain"
	"github.com/goormcoder/ieum/backend/internal/metrics"
	"github.com/goormcoder/ieum/backend/internal/realtime"
	"github.com/goormcoder/ieum/backend/internal/service"
)

// PlanServicer defines the plan operations the handlers depend on.
// Defining the interface here (in the consumer package) follows the Go
// convention: "accept interfaces, return concrete types". It lets handler
// tests inject a mock without touching the database or service layer.
type PlanServicer interface {
	ListDestinations(ctx context.Context) ([]domain.Destination, error)
	ListCategories(ctx context.Context) ([]domain.Category, error)
	CreatePlan(ctx context.Context, in service.PlanInput, memberID uuid.UUID) (domain.Plan, error)
	GetPlan(ctx context.Context, planID, memberID uuid.UUID) (domain.Plan, error)
	ListAllPlans(ctx context.Context) ([]domain.Plan, error)
	ListPlansByStartDate(ctx context.Context) ([]domain.Plan, error)
	ListPlansByDestination(ctx context.Context, name domain.DestinationName) ([]domain.Plan, error)
	ListPlansByDestinationAndRange(ctx context.Context, name domain.DestinationName, from, to time.Time) ([]domain.Plan, error)
	DeletePlan(ctx context.Context, planID, memberID uuid.UUID) error
}

// PlaceServicer defines the place operations the handlers depend on.
type PlaceServicer interface {
	CreatePlace(ctx context.Context, planID, memberID uuid.UUID, in service.PlaceInput) (domain.Place, error)
	GetPlace(ctx context.Context, planID, placeID, memberID uuid.UUID) (domain.Place, error)
	GetAllPlaces(ctx context.Context, planID, memberID uuid.UUID) ([]domain.Place, error)
	GetSharedPlaces(ctx context.Context, planID, memberID uuid.UUID) ([]domain.Place, error)
	GetSharedPlacesByDay(ctx context.Context, planID uuid.UUID, day int64, memberID uuid.UUID) ([]domain.Place, error)
	DeletePlace(ctx context.Context, planID, placeID, memberID uuid.UUID) error
	UpdateVisitTime(ctx context.Context, planID, placeID, memberID uuid.UUID, in service.VisitTimeInput) (domain.Place, error)
	SharePlace(ctx context.Context, in service.ShareInput, memberID uuid.UUID) (domain.Place, error)
	Itinerary(ctx context.Context, planID, memberID uuid.UUID) ([]domain.ItineraryRow, error)
}

// Deps bundles everything the Server needs. Metrics may be nil.
type Deps struct {
	Plans    PlanServicer
	Places   PlaceServicer
	Hub      *realtime.Hub
	Verifier *auth.Verifier
	Metrics  *metrics.Metrics
	Logger   *slog.Logger

	// AllowedOrigins restricts the Origin of sharing websocket upgrades.
	// Empty accepts any origin.
	AllowedOrigins []string

	// OpenAPI is served verbatim at /openapi.yaml when non-empty.
	OpenAPI []byte
}

// Server holds the handler dependencies.
type Server struct {
	plans    PlanServicer
	places   PlaceServicer
	hub      *realtime.Hub
	verifier *auth.Verifier
	metrics  *metrics.Metrics
	logger   *slog.Logger
	origins  []string
	openAPI  []byte
}

// NewServer constructs the Server with all its dependencies.
func NewServer(d Deps) *Server {
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		plans:    d.Plans,
		places:   d.Places,
		hub:      d.Hub,
		verifier: d.Verifier,
		metrics:  d.Metrics,
		logger:   logger,
		origins:  d.AllowedOrigins,
		openAPI:  d.OpenAPI,
	}
}

// Routes returns the API router. Cross-cutting middleware (request id,
// logging, CORS, body limits, metrics) is applied by the caller.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeErrorBody(w, http.StatusNotFound, "not_found", "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeErrorBody(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
	})

	r.Get("/healthz", s.GetHealth)
	r.Get("/openapi.yaml", s.GetOpenAPI)
	r.Get("/destinations", s.ListDestinations)
	r.Get("/categories", s.ListCategories)
	r.Get("/plans", s.ListPlans)

	r.Group(func(r chi.Router) {
		r.Use(auth.Middleware(s.verifier, s.unauthorized))

		r.Post("/plans", s.CreatePlan)
		r.Route("/plans/{planId}", func(r chi.Router) {
			r.Get("/", s.GetPlan)
			r.Delete("/", s.DeletePlan)
			r.Get("/share", s.SharePlaces)
			r.Get("/itinerary", s.GetItinerary)

			r.Post("/places", s.CreatePlace)
			r.Get("/places", s.ListPlaces)
			r.Get("/places/shared", s.ListSharedPlaces)
			r.Get("/places/{placeId}", s.GetPlace)
			r.Delete("/places/{placeId}", s.DeletePlace)
			r.Put("/places/{placeId}/visit-time", s.UpdateVisitTime)
		})
	})
	return r
}
