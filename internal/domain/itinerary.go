package domain

import (
	"cmp"
	"slices"
	"time"

	"github.com/google/uuid"
)

// ItineraryRow is one shared place in a plan's itinerary export.
// It is a flat view: plan fields are repeated on every row so the export
// can be loaded into a spreadsheet without joins.
type ItineraryRow struct {
	// Plan fields, repeated for every place.
	PlanID      uuid.UUID
	Destination DestinationName
	PlanStart   string // "2006-01-02" formatted date
	PlanEnd     string // "2006-01-02" formatted date

	// Day is the 1-based plan day the visit starts on.
	Day int64

	PlaceID    uuid.UUID
	PlaceName  string
	Address    string
	CategoryID int64
	StartedAt  *time.Time
	EndedAt    *time.Time
}

// BuildItinerary turns the shared places of plan into itinerary rows ordered
// by visit start, then name. Places without a visit window are skipped.
func BuildItinerary(plan Plan, shared []Place) []ItineraryRow {
	rows := make([]ItineraryRow, 0, len(shared))
	for _, p := range shared {
		if p.IsDeactivated() || p.StartedAt == nil {
			continue
		}
		rows = append(rows, ItineraryRow{
			PlanID:      plan.ID,
			Destination: plan.Destination.Name,
			PlanStart:   plan.StartedAt.UTC().Format(time.DateOnly),
			PlanEnd:     plan.EndedAt.UTC().Format(time.DateOnly),
			Day:         plan.DayOf(*p.StartedAt),
			PlaceID:     p.ID,
			PlaceName:   p.Name,
			Address:     p.Address,
			CategoryID:  p.CategoryID,
			StartedAt:   p.StartedAt,
			EndedAt:     p.EndedAt,
		})
	}
	slices.SortStableFunc(rows, func(a, b ItineraryRow) int {
		if c := a.StartedAt.Compare(*b.StartedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.PlaceName, b.PlaceName)
	})
	return rows
}
