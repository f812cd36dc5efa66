package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/goormcoder/ieum/backend/internal/domain"
)

// ErrorDetail is the machine code plus human-readable message of a failure.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse is the body of every non-2xx JSON response.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// errorStatus maps each sentinel to its status and code. Order matters only
// in that a ShareError unwraps to exactly one of them.
var errorStatus = []struct {
	sentinel error
	status   int
	code     string
}{
	{domain.ErrNotFound, http.StatusNotFound, "not_found"},
	{domain.ErrConflict, http.StatusConflict, "conflict"},
	{domain.ErrForbidden, http.StatusForbidden, "forbidden"},
	{domain.ErrBadRequest, http.StatusBadRequest, "bad_request"},
	{domain.ErrUnauthorized, http.StatusUnauthorized, "unauthorized"},
}

// writeError maps a service error onto an HTTP response. The message is the
// human-readable part after the sentinel, e.g.
// "service.PlaceService.CreatePlace: conflict: place already proposed" → "place already proposed".
// Unknown errors are logged and answered with a generic 500.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var shareErr *domain.ShareError
	if errors.As(err, &shareErr) {
		for _, e := range errorStatus {
			if errors.Is(err, e.sentinel) {
				writeErrorBody(w, e.status, e.code, shareErr.Message())
				return
			}
		}
	}
	for _, e := range errorStatus {
		if errors.Is(err, e.sentinel) {
			writeErrorBody(w, e.status, e.code, domain.Message(err, e.sentinel))
			return
		}
	}

	s.logger.ErrorContext(r.Context(), "unhandled error",
		"error", err,
		"method", r.Method,
		"path", r.URL.Path,
		"request_id", chimiddleware.GetReqID(r.Context()),
	)
	writeErrorBody(w, http.StatusInternalServerError, "internal_error", "internal server error")
}

// unauthorized is the auth middleware's failure callback.
func (s *Server) unauthorized(w http.ResponseWriter, r *http.Request, err error) {
	s.writeError(w, r, err)
}

// requestError answers 400 for input rejected before reaching the service
// layer (missing or malformed body, unparsable parameter).
func requestError(w http.ResponseWriter, message string) {
	writeErrorBody(w, http.StatusBadRequest, "bad_request", message)
}

func writeErrorBody(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{Error: ErrorDetail{Code: code, Message: message}})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
