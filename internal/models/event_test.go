package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	cases := map[string]Role{
		"tank":    RoleTank,
		"Tanks":   RoleTank,
		"HEALER":  RoleHealer,
		"heal":    RoleHealer,
		"dps":     RoleDPS,
		"Melee":   RoleDPS,
		"ranged":  RoleDPS,
		"":        RoleUnassigned,
		"support": RoleUnassigned,
	}
	for in, want := range cases {
		assert.Equal(t, want, ParseRole(in), "input %q", in)
	}
}

func TestParseClass(t *testing.T) {
	class, ok := ParseClass("warrior")
	assert.True(t, ok)
	assert.Equal(t, "Warrior", class)

	class, ok = ParseClass("  Death Knight ")
	assert.True(t, ok)
	assert.Equal(t, "Death Knight", class)

	_, ok = ParseClass("Blademaster")
	assert.False(t, ok)
}

func TestDiscordIdentity(t *testing.T) {
	identity := DiscordIdentity("999")
	assert.Equal(t, Identity("discord:999"), identity)
	assert.True(t, identity.IsDiscord())
	assert.False(t, UserIdentity("b7a9e6ce-8a47-4f6e-b2ab-3f1b0c0a2f11").IsDiscord())
}

func TestSyncSchedule(t *testing.T) {
	event := &Event{Start: time.Date(2026, 9, 4, 20, 30, 0, 0, time.UTC)}
	event.SyncSchedule()

	assert.Equal(t, time.Date(2026, 9, 4, 23, 30, 0, 0, time.UTC), event.End)
	assert.Equal(t, "2026-09-04", event.Date)
	assert.Equal(t, "20:30", event.Time)
}

func TestRosterPartitionsActiveAndAbsent(t *testing.T) {
	base := time.Date(2026, 9, 4, 12, 0, 0, 0, time.UTC)
	event := &Event{
		MaxPlayers: 3,
		Signups: map[string]SignupEntry{
			"a": {CharacterName: "Ironhide", CharacterRole: RoleTank, SignedUpAt: base.Add(2 * time.Minute)},
			"b": {CharacterName: "Lumen", CharacterRole: RoleHealer, SignedUpAt: base.Add(time.Minute), AbsenceReason: "sick"},
			"c": {CharacterName: "Shiv", CharacterRole: RoleDPS, SignedUpAt: base},
		},
	}

	view := event.Roster()

	require.Len(t, view.Active, 2)
	// Active sorted by signup time.
	assert.Equal(t, "Shiv", view.Active[0].CharacterName)
	assert.Equal(t, "Ironhide", view.Active[1].CharacterName)
	require.Len(t, view.Absent, 1)
	assert.Equal(t, "Lumen", view.Absent[0].CharacterName)

	// Absent entries count toward composition but not toward capacity.
	assert.Equal(t, 1, view.RoleCounts[RoleTank])
	assert.Equal(t, 1, view.RoleCounts[RoleHealer])
	assert.Equal(t, 1, view.RoleCounts[RoleDPS])
	assert.Equal(t, 1, view.Remaining)
	assert.Equal(t, 2, event.ActiveCount())
}

func TestRosterRemainingNeverNegative(t *testing.T) {
	event := &Event{
		MaxPlayers: 1,
		Signups: map[string]SignupEntry{
			"a": {CharacterRole: RoleTank},
			"b": {CharacterRole: RoleHealer},
		},
	}

	assert.Equal(t, 0, event.Roster().Remaining)
}
