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

type signupFixture struct {
	events     *mockEventRepo
	characters *mockCharacterRepo
	audit      *mockAuditRepo
	service    *SignupService
	event      *models.Event
}

func newSignupFixture(t *testing.T, maxPlayers int) *signupFixture {
	t.Helper()

	events := newMockEventRepo()
	characters := newMockCharacterRepo()
	audit := &mockAuditRepo{}

	event := &models.Event{
		Title:      "Molten Core",
		Start:      time.Date(2026, 9, 4, 20, 0, 0, 0, time.UTC),
		MaxPlayers: maxPlayers,
		Signups:    map[string]models.SignupEntry{},
	}
	event.SyncSchedule()
	created, err := events.CreateEvent(context.Background(), event)
	require.NoError(t, err)

	return &signupFixture{
		events:     events,
		characters: characters,
		audit:      audit,
		service:    NewSignupService(events, characters, audit, testLogger()),
		event:      created,
	}
}

func (f *signupFixture) addCharacter(owner uuid.UUID, name, class string, role models.Role) *models.Character {
	return f.characters.add(&models.Character{
		OwnerUserID: owner,
		Name:        name,
		Class:       class,
		Role:        role,
	})
}

func TestSignUpFillsRosterUntilCapacity(t *testing.T) {
	f := newSignupFixture(t, 2)
	ctx := context.Background()
	eventID := f.event.ID.Hex()

	alice, bob, carol := uuid.New(), uuid.New(), uuid.New()
	tank := f.addCharacter(alice, "Ironhide", "Warrior", models.RoleTank)
	healer := f.addCharacter(bob, "Lumen", "Priest", models.RoleHealer)
	dps := f.addCharacter(carol, "Shiv", "Rogue", models.RoleDPS)

	roster, err := f.service.SignUp(ctx, eventID, alice, "alice", tank.ID.Hex(), "", "Protection")
	require.NoError(t, err)
	assert.Len(t, roster.Active, 1)
	assert.Equal(t, 1, roster.Remaining)

	roster, err = f.service.SignUp(ctx, eventID, bob, "bob", healer.ID.Hex(), "", "")
	require.NoError(t, err)
	assert.Len(t, roster.Active, 2)
	assert.Equal(t, 0, roster.Remaining)

	_, err = f.service.SignUp(ctx, eventID, carol, "carol", dps.ID.Hex(), "", "")
	assert.ErrorIs(t, err, models.ErrCapacityExceeded)

	// The rejected signup left no trace.
	view, err := f.service.RosterView(ctx, eventID)
	require.NoError(t, err)
	assert.Len(t, view.Active, 2)
	assert.Equal(t, 1, view.RoleCounts[models.RoleTank])
	assert.Equal(t, 1, view.RoleCounts[models.RoleHealer])
	assert.Zero(t, view.RoleCounts[models.RoleDPS])
}

func TestSignUpRejectsDuplicate(t *testing.T) {
	f := newSignupFixture(t, 10)
	ctx := context.Background()
	eventID := f.event.ID.Hex()

	alice := uuid.New()
	first := f.addCharacter(alice, "Ironhide", "Warrior", models.RoleTank)
	second := f.addCharacter(alice, "Lumen", "Priest", models.RoleHealer)

	_, err := f.service.SignUp(ctx, eventID, alice, "alice", first.ID.Hex(), "", "")
	require.NoError(t, err)

	// Even with a different character the identity already holds an entry.
	_, err = f.service.SignUp(ctx, eventID, alice, "alice", second.ID.Hex(), "", "")
	assert.ErrorIs(t, err, models.ErrDuplicateSignup)
}

func TestSignUpRoleDefaultsToCharacterRole(t *testing.T) {
	f := newSignupFixture(t, 10)
	ctx := context.Background()
	eventID := f.event.ID.Hex()

	alice := uuid.New()
	character := f.addCharacter(alice, "Lumen", "Priest", models.RoleHealer)

	roster, err := f.service.SignUp(ctx, eventID, alice, "alice", character.ID.Hex(), "", "")
	require.NoError(t, err)
	require.Len(t, roster.Active, 1)
	assert.Equal(t, models.RoleHealer, roster.Active[0].CharacterRole)

	// An explicit role overrides the character default.
	_, err = f.service.Withdraw(ctx, eventID, models.UserIdentity(alice.String()))
	require.NoError(t, err)
	roster, err = f.service.SignUp(ctx, eventID, alice, "alice", character.ID.Hex(), models.RoleDPS, "Shadow")
	require.NoError(t, err)
	require.Len(t, roster.Active, 1)
	assert.Equal(t, models.RoleDPS, roster.Active[0].CharacterRole)
	assert.Equal(t, "Shadow", roster.Active[0].Spec)
}

func TestSignUpUnknownCharacter(t *testing.T) {
	f := newSignupFixture(t, 10)

	_, err := f.service.SignUp(context.Background(), f.event.ID.Hex(), uuid.New(), "alice", "deadbeefdeadbeefdeadbeef", "", "")
	assert.ErrorIs(t, err, models.ErrCharacterNotFound)
}

func TestEditSignupRequiresExistingEntry(t *testing.T) {
	f := newSignupFixture(t, 10)
	ctx := context.Background()
	eventID := f.event.ID.Hex()

	alice := uuid.New()
	tank := f.addCharacter(alice, "Ironhide", "Warrior", models.RoleTank)
	healer := f.addCharacter(alice, "Lumen", "Priest", models.RoleHealer)

	_, err := f.service.EditSignup(ctx, eventID, alice, healer.ID.Hex(), "", "")
	assert.ErrorIs(t, err, models.ErrSignupNotFound)

	_, err = f.service.SignUp(ctx, eventID, alice, "alice", tank.ID.Hex(), "", "")
	require.NoError(t, err)

	roster, err := f.service.EditSignup(ctx, eventID, alice, healer.ID.Hex(), "", "Holy")
	require.NoError(t, err)
	require.Len(t, roster.Active, 1)
	assert.Equal(t, "Lumen", roster.Active[0].CharacterName)
	assert.Equal(t, models.RoleHealer, roster.Active[0].CharacterRole)
	assert.Equal(t, "Holy", roster.Active[0].Spec)
}

func TestMarkAbsentFreesSlotKeepsRoleCount(t *testing.T) {
	f := newSignupFixture(t, 1)
	ctx := context.Background()
	eventID := f.event.ID.Hex()

	alice, bob := uuid.New(), uuid.New()
	tank := f.addCharacter(alice, "Ironhide", "Warrior", models.RoleTank)
	healer := f.addCharacter(bob, "Lumen", "Priest", models.RoleHealer)

	_, err := f.service.SignUp(ctx, eventID, alice, "alice", tank.ID.Hex(), "", "")
	require.NoError(t, err)

	// Event is full now.
	_, err = f.service.SignUp(ctx, eventID, bob, "bob", healer.ID.Hex(), "", "")
	require.ErrorIs(t, err, models.ErrCapacityExceeded)

	roster, err := f.service.MarkAbsent(ctx, eventID, models.UserIdentity(alice.String()), "on vacation")
	require.NoError(t, err)
	assert.Empty(t, roster.Active)
	require.Len(t, roster.Absent, 1)
	assert.Equal(t, "on vacation", roster.Absent[0].AbsenceReason)
	assert.Equal(t, 1, roster.Remaining)

	// The freed slot is backfillable.
	roster, err = f.service.SignUp(ctx, eventID, bob, "bob", healer.ID.Hex(), "", "")
	require.NoError(t, err)
	assert.Len(t, roster.Active, 1)
	assert.Len(t, roster.Absent, 1)
	// Absent entries still count in the role composition.
	assert.Equal(t, 1, roster.RoleCounts[models.RoleTank])
	assert.Equal(t, 1, roster.RoleCounts[models.RoleHealer])
	assert.Equal(t, 0, roster.Remaining)
}

func TestMarkAbsentDefaultsReason(t *testing.T) {
	f := newSignupFixture(t, 5)
	ctx := context.Background()
	eventID := f.event.ID.Hex()

	alice := uuid.New()
	tank := f.addCharacter(alice, "Ironhide", "Warrior", models.RoleTank)
	_, err := f.service.SignUp(ctx, eventID, alice, "alice", tank.ID.Hex(), "", "")
	require.NoError(t, err)

	roster, err := f.service.MarkAbsent(ctx, eventID, models.UserIdentity(alice.String()), "")
	require.NoError(t, err)
	require.Len(t, roster.Absent, 1)
	assert.Equal(t, "absent", roster.Absent[0].AbsenceReason)
}

func TestWithdrawIsIdempotent(t *testing.T) {
	f := newSignupFixture(t, 5)
	ctx := context.Background()
	eventID := f.event.ID.Hex()

	alice := uuid.New()
	tank := f.addCharacter(alice, "Ironhide", "Warrior", models.RoleTank)
	identity := models.UserIdentity(alice.String())

	_, err := f.service.SignUp(ctx, eventID, alice, "alice", tank.ID.Hex(), "", "")
	require.NoError(t, err)

	roster, err := f.service.Withdraw(ctx, eventID, identity)
	require.NoError(t, err)
	assert.Empty(t, roster.Active)

	writesAfterFirst := f.events.updateCalls

	// Second withdraw: same outcome, no write, no audit record.
	roster, err = f.service.Withdraw(ctx, eventID, identity)
	require.NoError(t, err)
	assert.Empty(t, roster.Active)
	assert.Equal(t, writesAfterFirst, f.events.updateCalls)
	assert.Equal(t,
		[]models.AuditAction{models.AuditSignUp, models.AuditWithdraw},
		f.audit.actions(),
	)
}

func TestSignUpRetriesOnConflict(t *testing.T) {
	f := newSignupFixture(t, 5)
	ctx := context.Background()
	eventID := f.event.ID.Hex()

	alice := uuid.New()
	tank := f.addCharacter(alice, "Ironhide", "Warrior", models.RoleTank)

	f.events.injectConflicts = 1
	roster, err := f.service.SignUp(ctx, eventID, alice, "alice", tank.ID.Hex(), "", "")
	require.NoError(t, err)
	assert.Len(t, roster.Active, 1)
	assert.Equal(t, 2, f.events.updateCalls)
}

func TestSignUpGivesUpAfterRepeatedConflicts(t *testing.T) {
	f := newSignupFixture(t, 5)
	ctx := context.Background()
	eventID := f.event.ID.Hex()

	alice := uuid.New()
	tank := f.addCharacter(alice, "Ironhide", "Warrior", models.RoleTank)

	f.events.injectConflicts = maxConflictRetries
	_, err := f.service.SignUp(ctx, eventID, alice, "alice", tank.ID.Hex(), "", "")
	assert.ErrorIs(t, err, models.ErrStoreConflict)
	assert.Empty(t, f.audit.records)
}

func TestSignUpEventNotFound(t *testing.T) {
	f := newSignupFixture(t, 5)

	alice := uuid.New()
	tank := f.addCharacter(alice, "Ironhide", "Warrior", models.RoleTank)

	_, err := f.service.SignUp(context.Background(), "aaaaaaaaaaaaaaaaaaaaaaaa", alice, "alice", tank.ID.Hex(), "", "")
	assert.ErrorIs(t, err, models.ErrEventNotFound)
}

func TestRosterViewOrdersBySignupTime(t *testing.T) {
	f := newSignupFixture(t, 10)
	ctx := context.Background()
	eventID := f.event.ID.Hex()

	names := []string{"Ironhide", "Lumen", "Shiv"}
	for _, name := range names {
		owner := uuid.New()
		character := f.addCharacter(owner, name, "Warrior", models.RoleDPS)
		_, err := f.service.SignUp(ctx, eventID, owner, name, character.ID.Hex(), "", "")
		require.NoError(t, err)
		time.Sleep(time.Millisecond)
	}

	view, err := f.service.RosterView(ctx, eventID)
	require.NoError(t, err)
	require.Len(t, view.Active, 3)
	for i, name := range names {
		assert.Equal(t, name, view.Active[i].CharacterName)
	}
}
