package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/veskar/guildhall/internal/models"
)

func TestCreateEventSingle(t *testing.T) {
	repo := newMockEventRepo()
	service := NewEventService(repo)

	start := time.Date(2026, 9, 4, 20, 0, 0, 0, time.UTC)
	created, err := service.CreateEvent(context.Background(), &models.Event{
		Title: "Molten Core",
		Start: start,
	}, false, "admin-1")

	require.NoError(t, err)
	require.Len(t, created, 1)

	event := created[0]
	assert.False(t, event.ID.IsZero())
	assert.Equal(t, "admin-1", event.CreatedBy)
	assert.Equal(t, "raid", event.Type)
	assert.Equal(t, models.DefaultMaxPlayers, event.MaxPlayers)
	assert.Equal(t, start.Add(models.EventDuration), event.End)
	assert.Equal(t, "2026-09-04", event.Date)
	assert.Equal(t, "20:00", event.Time)
	assert.NotNil(t, event.Signups)
	assert.Empty(t, event.Signups)
}

func TestCreateEventValidation(t *testing.T) {
	service := NewEventService(newMockEventRepo())

	_, err := service.CreateEvent(context.Background(), &models.Event{
		Start: time.Now(),
	}, false, "admin-1")
	assert.Error(t, err)

	_, err = service.CreateEvent(context.Background(), &models.Event{
		Title: "Molten Core",
	}, false, "admin-1")
	assert.Error(t, err)
}

func TestCreateEventWeeklySeries(t *testing.T) {
	repo := newMockEventRepo()
	service := NewEventService(repo)

	start := time.Date(2026, 12, 20, 20, 0, 0, 0, time.UTC)
	created, err := service.CreateEvent(context.Background(), &models.Event{
		Title:      "Molten Core",
		Start:      start,
		MaxPlayers: 25,
	}, true, "admin-1")

	require.NoError(t, err)
	require.Len(t, created, 2)
	assert.Equal(t, start, created[0].Start)
	assert.Equal(t, start.AddDate(0, 0, 7), created[1].Start)
	// Each instance is its own document with its own empty ledger.
	assert.NotEqual(t, created[0].ID, created[1].ID)
	for _, event := range created {
		assert.Equal(t, 25, event.MaxPlayers)
		assert.Empty(t, event.Signups)
		assert.Equal(t, event.Start.Add(models.EventDuration), event.End)
	}
}

func TestCreateEventSeriesPartialFailure(t *testing.T) {
	repo := newMockEventRepo()
	repo.failCreateAfter = 2
	service := NewEventService(repo)

	start := time.Date(2026, 11, 1, 20, 0, 0, 0, time.UTC)
	created, err := service.CreateEvent(context.Background(), &models.Event{
		Title: "Molten Core",
		Start: start,
	}, true, "admin-1")

	require.Error(t, err)
	var partial *models.SeriesPartialError
	require.True(t, errors.As(err, &partial))
	assert.Equal(t, 2, partial.Created)
	// The instances persisted before the failure are returned, not rolled back.
	require.Len(t, created, 2)
	assert.Len(t, repo.events, 2)
}

func TestListEventsRejectsBadPagination(t *testing.T) {
	service := NewEventService(newMockEventRepo())

	_, _, err := service.ListEvents(context.Background(), time.Time{}, -1, 10)
	assert.Error(t, err)
	_, _, err = service.ListEvents(context.Background(), time.Time{}, 0, 0)
	assert.Error(t, err)
}

func TestDeleteEventCascadesSignups(t *testing.T) {
	repo := newMockEventRepo()
	service := NewEventService(repo)

	created, err := service.CreateEvent(context.Background(), &models.Event{
		Title: "Molten Core",
		Start: time.Date(2026, 9, 4, 20, 0, 0, 0, time.UTC),
	}, false, "admin-1")
	require.NoError(t, err)

	id := created[0].ID.Hex()
	require.NoError(t, service.DeleteEvent(context.Background(), id))

	_, err = service.GetEvent(context.Background(), id)
	assert.ErrorIs(t, err, models.ErrEventNotFound)
	assert.ErrorIs(t, service.DeleteEvent(context.Background(), id), models.ErrEventNotFound)
}
