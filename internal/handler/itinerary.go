package handler

import (
	"bytes"
	"encoding/csv"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/goormcoder/ieum/backend/internal/domain"
)

// csvHeaders defines the column names written as the first row of a CSV itinerary.
var csvHeaders = []string{
	"plan_id", "destination", "plan_start_date", "plan_end_date",
	"day", "place_id", "place_name", "address", "category_id",
	"started_at", "ended_at",
}

// ItineraryRow is the JSON shape of one itinerary entry.
type ItineraryRow struct {
	PlanID        uuid.UUID  `json:"plan_id"`
	Destination   string     `json:"destination"`
	PlanStartDate string     `json:"plan_start_date"`
	PlanEndDate   string     `json:"plan_end_date"`
	Day           int64      `json:"day"`
	PlaceID       uuid.UUID  `json:"place_id"`
	PlaceName     string     `json:"place_name"`
	Address       string     `json:"address"`
	CategoryID    int64      `json:"category_id"`
	StartedAt     *time.Time `json:"started_at"`
	EndedAt       *time.Time `json:"ended_at"`
}

// GetItinerary handles GET /plans/{planId}/itinerary.
// It returns the plan's shared places as a flat table ordered by visit start.
// Use ?format=csv to receive CSV; default is JSON.
func (s *Server) GetItinerary(w http.ResponseWriter, r *http.Request) {
	planID, err := pathUUID(r, "planId")
	if err != nil {
		requestError(w, err.Error())
		return
	}
	var format *string
	if err := queryParam(r, "format", &format); err != nil {
		requestError(w, err.Error())
		return
	}
	wantCSV := false
	if format != nil {
		switch *format {
		case "csv":
			wantCSV = true
		case "json":
		default:
			requestError(w, "format must be csv or json")
			return
		}
	}

	rows, err := s.places.Itinerary(r.Context(), planID, currentMember(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if wantCSV {
		writeCSV(w, rows)
		return
	}
	out := make([]ItineraryRow, len(rows))
	for i, row := range rows {
		out[i] = itineraryRowToResponse(row)
	}
	writeJSON(w, http.StatusOK, out)
}

// writeCSV buffers the whole table before writing the response.
func writeCSV(w http.ResponseWriter, rows []domain.ItineraryRow) {
	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)
	_ = cw.Write(csvHeaders)
	for _, row := range rows {
		_ = cw.Write(itineraryRowToCSVRecord(row))
	}
	cw.Flush()

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="itinerary.csv"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

func itineraryRowToResponse(r domain.ItineraryRow) ItineraryRow {
	return ItineraryRow{
		PlanID:        r.PlanID,
		Destination:   string(r.Destination),
		PlanStartDate: r.PlanStart,
		PlanEndDate:   r.PlanEnd,
		Day:           r.Day,
		PlaceID:       r.PlaceID,
		PlaceName:     r.PlaceName,
		Address:       r.Address,
		CategoryID:    r.CategoryID,
		StartedAt:     r.StartedAt,
		EndedAt:       r.EndedAt,
	}
}

// itineraryRowToCSVRecord encodes a row as a flat string slice.
// Nil time pointers are encoded as empty strings.
func itineraryRowToCSVRecord(r domain.ItineraryRow) []string {
	return []string{
		r.PlanID.String(),
		string(r.Destination),
		r.PlanStart,
		r.PlanEnd,
		strconv.FormatInt(r.Day, 10),
		r.PlaceID.String(),
		r.PlaceName,
		r.Address,
		strconv.FormatInt(r.CategoryID, 10),
		formatOptionalTime(r.StartedAt),
		formatOptionalTime(r.EndedAt),
	}
}

// formatOptionalTime returns the RFC3339 representation of t, or "" if t is nil.
func formatOptionalTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
