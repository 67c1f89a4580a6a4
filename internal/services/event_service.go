package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/veskar/guildhall/internal/models"
)

type EventService struct {
	eventRepo models.EventRepo
}

func NewEventService(eventRepo models.EventRepo) *EventService {
	return &EventService{
		eventRepo: eventRepo,
	}
}

// CreateEvent persists one event, or a weekly series through year-end when
// weekly is true. Instances are created sequentially in chronological order,
// each with its own store-generated id. If persistence fails partway through
// a series, creation stops and a SeriesPartialError reports how many
// instances already exist; earlier instances are not rolled back.
func (es *EventService) CreateEvent(ctx context.Context, event *models.Event, weekly bool, createdBy string) ([]*models.Event, error) {
	if strings.TrimSpace(event.Title) == "" {
		return nil, fmt.Errorf("event title is required")
	}
	if event.Start.IsZero() {
		return nil, fmt.Errorf("event start time is required")
	}
	if event.MaxPlayers <= 0 {
		event.MaxPlayers = models.DefaultMaxPlayers
	}
	if event.Type == "" {
		event.Type = "raid"
	}

	now := time.Now()
	occurrences := ExpandWeekly(event.Start, weekly)

	created := make([]*models.Event, 0, len(occurrences))
	for _, start := range occurrences {
		instance := &models.Event{
			Title:       event.Title,
			Description: event.Description,
			Start:       start,
			Type:        event.Type,
			Difficulty:  event.Difficulty,
			MaxPlayers:  event.MaxPlayers,
			CreatedBy:   createdBy,
			Signups:     map[string]models.SignupEntry{},
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		instance.SyncSchedule()

		persisted, err := es.eventRepo.CreateEvent(ctx, instance)
		if err != nil {
			return created, &models.SeriesPartialError{Created: len(created), Err: err}
		}
		created = append(created, persisted)
	}

	return created, nil
}

func (es *EventService) GetEvent(ctx context.Context, id string) (*models.Event, error) {
	if strings.TrimSpace(id) == "" {
		return nil, models.ErrEventNotFound
	}
	return es.eventRepo.GetEventByID(ctx, id)
}

func (es *EventService) ListEvents(ctx context.Context, from time.Time, offset, limit int) ([]*models.Event, int, error) {
	if offset < 0 || limit <= 0 {
		return nil, 0, fmt.Errorf("invalid offset or limit")
	}
	return es.eventRepo.ListEvents(ctx, from, offset, limit)
}

func (es *EventService) DeleteEvent(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return models.ErrEventNotFound
	}
	return es.eventRepo.DeleteEvent(ctx, id)
}
