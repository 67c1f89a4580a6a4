package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/veskar/guildhall/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// mockEventRepo is an in-memory stand-in for the Mongo event collection,
// including the revision-guarded signup write so conflict handling can be
// exercised without a database.
type mockEventRepo struct {
	events map[string]*models.Event
	// injectConflicts makes the next N UpdateSignups calls fail with
	// ErrStoreConflict while bumping the stored revision, as if another
	// writer got there first.
	injectConflicts int
	updateCalls     int
	// failCreateAfter makes CreateEvent fail once this many events exist
	// (-1 disables).
	failCreateAfter int
	createdOrder    []string
}

func newMockEventRepo() *mockEventRepo {
	return &mockEventRepo{
		events:          map[string]*models.Event{},
		failCreateAfter: -1,
	}
}

func copyEvent(e *models.Event) *models.Event {
	clone := *e
	clone.Signups = map[string]models.SignupEntry{}
	for k, v := range e.Signups {
		clone.Signups[k] = v
	}
	return &clone
}

func (m *mockEventRepo) CreateEvent(ctx context.Context, event *models.Event) (*models.Event, error) {
	if m.failCreateAfter >= 0 && len(m.events) >= m.failCreateAfter {
		return nil, fmt.Errorf("store unavailable")
	}
	if event.ID.IsZero() {
		event.ID = primitive.NewObjectID()
	}
	if event.Signups == nil {
		event.Signups = map[string]models.SignupEntry{}
	}
	m.events[event.ID.Hex()] = copyEvent(event)
	m.createdOrder = append(m.createdOrder, event.ID.Hex())
	return copyEvent(event), nil
}

func (m *mockEventRepo) GetEventByID(ctx context.Context, id string) (*models.Event, error) {
	event, ok := m.events[id]
	if !ok {
		return nil, models.ErrEventNotFound
	}
	return copyEvent(event), nil
}

func (m *mockEventRepo) ListEvents(ctx context.Context, from time.Time, offset, limit int) ([]*models.Event, int, error) {
	var out []*models.Event
	for _, id := range m.createdOrder {
		event := m.events[id]
		if !from.IsZero() && event.Start.Before(from) {
			continue
		}
		out = append(out, copyEvent(event))
	}
	return out, len(out), nil
}

func (m *mockEventRepo) DeleteEvent(ctx context.Context, id string) error {
	if _, ok := m.events[id]; !ok {
		return models.ErrEventNotFound
	}
	delete(m.events, id)
	return nil
}

func (m *mockEventRepo) UpdateSignups(ctx context.Context, id string, revision int64, signups map[string]models.SignupEntry) (*models.Event, error) {
	m.updateCalls++
	stored, ok := m.events[id]
	if !ok {
		return nil, models.ErrEventNotFound
	}
	if m.injectConflicts > 0 {
		m.injectConflicts--
		stored.Revision++
		return nil, models.ErrStoreConflict
	}
	if stored.Revision != revision {
		return nil, models.ErrStoreConflict
	}
	stored.Signups = map[string]models.SignupEntry{}
	for k, v := range signups {
		stored.Signups[k] = v
	}
	stored.Revision++
	stored.UpdatedAt = time.Now()
	return copyEvent(stored), nil
}

type mockCharacterRepo struct {
	characters map[string]*models.Character // key ownerID+characterID
}

func newMockCharacterRepo() *mockCharacterRepo {
	return &mockCharacterRepo{characters: map[string]*models.Character{}}
}

func (m *mockCharacterRepo) add(character *models.Character) *models.Character {
	if character.ID.IsZero() {
		character.ID = primitive.NewObjectID()
	}
	m.characters[character.OwnerUserID.String()+character.ID.Hex()] = character
	return character
}

func (m *mockCharacterRepo) CreateCharacter(ctx context.Context, character *models.Character) (*models.Character, error) {
	return m.add(character), nil
}

func (m *mockCharacterRepo) FindCharacter(ctx context.Context, ownerUserID uuid.UUID, characterID string) (*models.Character, error) {
	character, ok := m.characters[ownerUserID.String()+characterID]
	if !ok {
		return nil, models.ErrCharacterNotFound
	}
	return character, nil
}

func (m *mockCharacterRepo) ListCharactersByOwner(ctx context.Context, ownerUserID uuid.UUID) ([]*models.Character, error) {
	var out []*models.Character
	for _, character := range m.characters {
		if character.OwnerUserID == ownerUserID {
			out = append(out, character)
		}
	}
	return out, nil
}

func (m *mockCharacterRepo) UpdateCharacter(ctx context.Context, ownerUserID uuid.UUID, characterID string, updates map[string]interface{}) (*models.Character, error) {
	character, ok := m.characters[ownerUserID.String()+characterID]
	if !ok {
		return nil, models.ErrCharacterNotFound
	}
	return character, nil
}

func (m *mockCharacterRepo) DeleteCharacter(ctx context.Context, ownerUserID uuid.UUID, characterID string) error {
	key := ownerUserID.String() + characterID
	if _, ok := m.characters[key]; !ok {
		return models.ErrCharacterNotFound
	}
	delete(m.characters, key)
	return nil
}

type mockAuditRepo struct {
	records []*models.AuditRecord
}

func (m *mockAuditRepo) Append(ctx context.Context, record *models.AuditRecord) error {
	m.records = append(m.records, record)
	return nil
}

func (m *mockAuditRepo) ListByEvent(ctx context.Context, eventID string, offset, limit int) ([]*models.AuditRecord, int, error) {
	var out []*models.AuditRecord
	for _, record := range m.records {
		if eventID == "" || record.EventID == eventID {
			out = append(out, record)
		}
	}
	return out, len(out), nil
}

func (m *mockAuditRepo) actions() []models.AuditAction {
	out := make([]models.AuditAction, 0, len(m.records))
	for _, record := range m.records {
		out = append(out, record.Action)
	}
	return out
}

type mockLinkRepo struct {
	links map[string]uuid.UUID // discord id -> user id
}

func newMockLinkRepo() *mockLinkRepo {
	return &mockLinkRepo{links: map[string]uuid.UUID{}}
}

func (m *mockLinkRepo) SaveLink(ctx context.Context, link *models.DiscordLink) error {
	m.links[link.DiscordUserID] = link.UserID
	return nil
}

func (m *mockLinkRepo) ResolveLinkedUser(ctx context.Context, discordUserID string) (uuid.UUID, bool, error) {
	userID, ok := m.links[discordUserID]
	return userID, ok, nil
}

func (m *mockLinkRepo) GetLinkByUser(ctx context.Context, userID uuid.UUID) (*models.DiscordLink, error) {
	for discordID, linked := range m.links {
		if linked == userID {
			return &models.DiscordLink{DiscordUserID: discordID, UserID: userID}, nil
		}
	}
	return nil, nil
}

func (m *mockLinkRepo) DeleteLink(ctx context.Context, userID uuid.UUID) error {
	for discordID, linked := range m.links {
		if linked == userID {
			delete(m.links, discordID)
		}
	}
	return nil
}
