package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/veskar/guildhall/internal/models"
)

type reconcileFixture struct {
	events  *mockEventRepo
	links   *mockLinkRepo
	audit   *mockAuditRepo
	service *ReconcileService
	event   *models.Event
}

func newReconcileFixture(t *testing.T, maxPlayers int) *reconcileFixture {
	t.Helper()

	events := newMockEventRepo()
	links := newMockLinkRepo()
	audit := &mockAuditRepo{}

	event := &models.Event{
		Title:      "Blackwing Lair",
		Start:      time.Date(2026, 9, 11, 20, 0, 0, 0, time.UTC),
		MaxPlayers: maxPlayers,
		Signups:    map[string]models.SignupEntry{},
	}
	event.SyncSchedule()
	created, err := events.CreateEvent(context.Background(), event)
	require.NoError(t, err)

	return &reconcileFixture{
		events:  events,
		links:   links,
		audit:   audit,
		service: NewReconcileService(events, links, audit, testLogger()),
		event:   created,
	}
}

func TestReconcileUnlinkedDiscordSignup(t *testing.T) {
	f := newReconcileFixture(t, 10)
	ctx := context.Background()

	results := f.service.ReconcileBatch(ctx, []BotNotification{{
		DiscordUserID:       "999",
		Nickname:            "Bob",
		CharacterClassGuess: "Blademaster",
		EventID:             f.event.ID.Hex(),
	}})

	require.Len(t, results, 1)
	assert.True(t, results[0].Applied)

	event, err := f.events.GetEventByID(ctx, f.event.ID.Hex())
	require.NoError(t, err)
	entry, ok := event.Entry(models.DiscordIdentity("999"))
	require.True(t, ok)
	assert.True(t, entry.IsDiscordSignup)
	assert.Equal(t, "Bob", entry.OriginalDiscordName)
	assert.Equal(t, "Bob", entry.DiscordNickname)
	// Unknown class string is preserved raw, not guessed at.
	assert.Empty(t, entry.CharacterClass)
	assert.Equal(t, "Blademaster", entry.OriginalClass)
	assert.Equal(t, models.RoleUnassigned, entry.CharacterRole)
	assert.Empty(t, entry.CharacterID)
	assert.Empty(t, entry.UserID)
}

func TestReconcileLinkedUserCollapsesOntoAppIdentity(t *testing.T) {
	f := newReconcileFixture(t, 10)
	ctx := context.Background()

	alice := uuid.New()
	require.NoError(t, f.links.SaveLink(ctx, &models.DiscordLink{DiscordUserID: "123", UserID: alice}))

	identity := models.UserIdentity(alice.String())
	f.event.Signups[string(identity)] = models.SignupEntry{
		UserID:         alice.String(),
		Username:       "alice",
		CharacterID:    "507f1f77bcf86cd799439011",
		CharacterName:  "Ironhide",
		CharacterClass: "Warrior",
		CharacterRole:  models.RoleTank,
		SignedUpAt:     time.Now(),
	}
	_, err := f.events.UpdateSignups(ctx, f.event.ID.Hex(), f.event.Revision, f.event.Signups)
	require.NoError(t, err)

	results := f.service.ReconcileBatch(ctx, []BotNotification{{
		DiscordUserID:       "123",
		Nickname:            "AliceTheTank",
		CharacterClassGuess: "warrior",
		Role:                "tank",
		EventID:             f.event.ID.Hex(),
	}})

	require.Len(t, results, 1)
	assert.True(t, results[0].Applied)

	event, err := f.events.GetEventByID(ctx, f.event.ID.Hex())
	require.NoError(t, err)
	// Still exactly one entry: the bot report merged into the app signup.
	require.Len(t, event.Signups, 1)
	entry, ok := event.Entry(identity)
	require.True(t, ok)
	assert.False(t, entry.IsDiscordSignup)
	assert.Equal(t, "Ironhide", entry.CharacterName)
	assert.Equal(t, "Warrior", entry.CharacterClass)
	assert.Equal(t, "AliceTheTank", entry.DiscordNickname)
}

func TestReconcileRepeatedReportKeepsLatestFields(t *testing.T) {
	f := newReconcileFixture(t, 10)
	ctx := context.Background()
	eventID := f.event.ID.Hex()

	f.service.ReconcileBatch(ctx, []BotNotification{{
		DiscordUserID: "999",
		Nickname:      "Bob",
		EventID:       eventID,
	}})
	f.service.ReconcileBatch(ctx, []BotNotification{{
		DiscordUserID:       "999",
		Nickname:            "Bobby",
		CharacterClassGuess: "mage",
		Role:                "dps",
		EventID:             eventID,
	}})

	event, err := f.events.GetEventByID(ctx, eventID)
	require.NoError(t, err)
	require.Len(t, event.Signups, 1)
	entry, _ := event.Entry(models.DiscordIdentity("999"))
	assert.Equal(t, "Bobby", entry.DiscordNickname)
	assert.Equal(t, "Bobby", entry.OriginalDiscordName)
	assert.Equal(t, "Mage", entry.CharacterClass)
	assert.Equal(t, models.RoleDPS, entry.CharacterRole)
}

func TestReconcileMissingEventDoesNotAbortBatch(t *testing.T) {
	f := newReconcileFixture(t, 10)
	ctx := context.Background()

	results := f.service.ReconcileBatch(ctx, []BotNotification{
		{DiscordUserID: "111", Nickname: "Gone", EventID: "aaaaaaaaaaaaaaaaaaaaaaaa"},
		{DiscordUserID: "222", Nickname: "Here", EventID: f.event.ID.Hex()},
	})

	require.Len(t, results, 2)
	assert.False(t, results[0].Applied)
	assert.Contains(t, results[0].Error, "event not found")
	assert.True(t, results[1].Applied)

	event, err := f.events.GetEventByID(ctx, f.event.ID.Hex())
	require.NoError(t, err)
	assert.Len(t, event.Signups, 1)
}

func TestReconcileEnforcesCapacityForNewEntries(t *testing.T) {
	f := newReconcileFixture(t, 1)
	ctx := context.Background()
	eventID := f.event.ID.Hex()

	results := f.service.ReconcileBatch(ctx, []BotNotification{
		{DiscordUserID: "111", Nickname: "First", EventID: eventID},
		{DiscordUserID: "222", Nickname: "Second", EventID: eventID},
		// A repeat for an existing entry is an update, not a new slot.
		{DiscordUserID: "111", Nickname: "FirstRenamed", EventID: eventID},
	})

	require.Len(t, results, 3)
	assert.True(t, results[0].Applied)
	assert.False(t, results[1].Applied)
	assert.Contains(t, results[1].Error, "full")
	assert.True(t, results[2].Applied)
}

func TestReconcileRetriesOnConflict(t *testing.T) {
	f := newReconcileFixture(t, 10)
	ctx := context.Background()

	f.events.injectConflicts = 1
	results := f.service.ReconcileBatch(ctx, []BotNotification{{
		DiscordUserID: "999",
		Nickname:      "Bob",
		EventID:       f.event.ID.Hex(),
	}})

	require.Len(t, results, 1)
	assert.True(t, results[0].Applied)
	assert.Equal(t, 2, f.events.updateCalls)
}

func TestReconcileAuditsAppliedNotifications(t *testing.T) {
	f := newReconcileFixture(t, 10)
	ctx := context.Background()

	f.service.ReconcileBatch(ctx, []BotNotification{
		{DiscordUserID: "999", Nickname: "Bob", EventID: f.event.ID.Hex()},
		{DiscordUserID: "888", Nickname: "Eve", EventID: "aaaaaaaaaaaaaaaaaaaaaaaa"},
	})

	require.Len(t, f.audit.records, 1)
	assert.Equal(t, models.AuditReconcile, f.audit.records[0].Action)
	assert.Equal(t, string(models.DiscordIdentity("999")), f.audit.records[0].ActorIdentity)
}
