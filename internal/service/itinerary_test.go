package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goormcoder/ieum/backend/internal/domain"
	"github.com/goormcoder/ieum/backend/internal/service"
)

func TestPlaceService_Itinerary(t *testing.T) {
	store, plan, owner := seedPlan(t)
	svc := service.NewPlaceService(store, clock())
	ctx := context.Background()

	museum := mustPropose(t, svc, plan.ID, owner, service.PlaceInput{CategoryID: 1, Name: "Museum", Address: "2 Hill St"})
	cafe := mustPropose(t, svc, plan.ID, owner, cafeInput())
	mustPropose(t, svc, plan.ID, owner, service.PlaceInput{CategoryID: 1, Name: "Private", Address: "3 Side St"})
	mustSharePlace(t, svc, plan.ID, museum.ID, owner)
	mustSharePlace(t, svc, plan.ID, cafe.ID, owner)

	_, err := svc.UpdateVisitTime(ctx, plan.ID, museum.ID, owner, service.VisitTimeInput{
		StartedAt: june1.Add(24*time.Hour + 10*time.Hour),
		EndedAt:   june1.Add(24*time.Hour + 12*time.Hour),
	})
	require.NoError(t, err)

	rows, err := svc.Itinerary(ctx, plan.ID, owner)

	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, cafe.ID, rows[0].PlaceID)
	assert.EqualValues(t, 1, rows[0].Day)
	assert.Equal(t, museum.ID, rows[1].PlaceID)
	assert.EqualValues(t, 2, rows[1].Day)
	assert.Equal(t, domain.DestinationJeju, rows[1].Destination)
}

func TestPlaceService_Itinerary_NonMember(t *testing.T) {
	store, plan, _ := seedPlan(t)
	svc := service.NewPlaceService(store, clock())

	_, err := svc.Itinerary(context.Background(), plan.ID, uuid.New())

	assert.ErrorIs(t, err, domain.ErrNotFound)
}
