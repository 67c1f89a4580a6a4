package models

import (
	"sort"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	GuildDbName  = "guildhall"
	EventColName = "events"

	// EventDuration is fixed for every raid: end is always start + 3h.
	EventDuration = 3 * time.Hour

	DefaultMaxPlayers = 40
)

// Role is a validated raid role. Externally reported roles that cannot be
// mapped fall back to RoleUnassigned rather than being guessed.
type Role string

const (
	RoleTank       Role = "tank"
	RoleHealer     Role = "healer"
	RoleDPS        Role = "dps"
	RoleUnassigned Role = "unassigned"
)

func ParseRole(s string) Role {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "tank", "tanks":
		return RoleTank
	case "healer", "healers", "heal":
		return RoleHealer
	case "dps", "damage", "melee", "ranged":
		return RoleDPS
	default:
		return RoleUnassigned
	}
}

func (r Role) Valid() bool {
	switch r {
	case RoleTank, RoleHealer, RoleDPS, RoleUnassigned:
		return true
	}
	return false
}

var knownClasses = map[string]string{
	"warrior":      "Warrior",
	"paladin":      "Paladin",
	"hunter":       "Hunter",
	"rogue":        "Rogue",
	"priest":       "Priest",
	"shaman":       "Shaman",
	"mage":         "Mage",
	"warlock":      "Warlock",
	"monk":         "Monk",
	"druid":        "Druid",
	"demonhunter":  "Demon Hunter",
	"demon hunter": "Demon Hunter",
	"deathknight":  "Death Knight",
	"death knight": "Death Knight",
	"evoker":       "Evoker",
}

// ParseClass maps an externally reported class string onto the canonical
// class name. The second return is false when the string is unrecognized;
// callers preserve the raw value in OriginalClass instead of dropping it.
func ParseClass(s string) (string, bool) {
	canonical, ok := knownClasses[strings.ToLower(strings.TrimSpace(s))]
	return canonical, ok
}

// Identity is the key a signup is deduplicated under: a linked in-app user id,
// or a normalized Discord id for bot signups with no in-app account.
type Identity string

const discordIdentityPrefix = "discord:"

func UserIdentity(userID string) Identity {
	return Identity(userID)
}

func DiscordIdentity(discordUserID string) Identity {
	return Identity(discordIdentityPrefix + discordUserID)
}

func (i Identity) IsDiscord() bool {
	return strings.HasPrefix(string(i), discordIdentityPrefix)
}

// SignupEntry is one player's signup on one event. At most one non-absent
// entry exists per (event, identity); the repo's revision-guarded write and
// the ledger's duplicate check uphold that together.
type SignupEntry struct {
	UserID              string    `bson:"user_id,omitempty" json:"user_id,omitempty"`
	Username            string    `bson:"username,omitempty" json:"username,omitempty"`
	CharacterID         string    `bson:"character_id,omitempty" json:"character_id,omitempty"`
	CharacterName       string    `bson:"character_name,omitempty" json:"character_name,omitempty"`
	CharacterClass      string    `bson:"character_class,omitempty" json:"character_class,omitempty"`
	CharacterRole       Role      `bson:"character_role" json:"character_role"`
	Spec                string    `bson:"spec,omitempty" json:"spec,omitempty"`
	DiscordNickname     string    `bson:"discord_nickname,omitempty" json:"discord_nickname,omitempty"`
	OriginalDiscordName string    `bson:"original_discord_name,omitempty" json:"original_discord_name,omitempty"`
	IsDiscordSignup     bool      `bson:"is_discord_signup,omitempty" json:"is_discord_signup,omitempty"`
	OriginalClass       string    `bson:"original_class,omitempty" json:"original_class,omitempty"`
	AbsenceReason       string    `bson:"absence_reason,omitempty" json:"absence_reason,omitempty"`
	SignedUpAt          time.Time `bson:"signed_up_at" json:"signed_up_at"`
	UpdatedAt           time.Time `bson:"updated_at" json:"updated_at"`
}

func (s *SignupEntry) IsAbsent() bool {
	return s.AbsenceReason != ""
}

type Event struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title       string             `bson:"title" json:"title" validate:"required"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	// Date and Time are the display-oriented mirror of Start and are kept
	// consistent with it on every write.
	Date       string                 `bson:"date" json:"date"`
	Time       string                 `bson:"time" json:"time"`
	Start      time.Time              `bson:"start" json:"start" validate:"required"`
	End        time.Time              `bson:"end" json:"end"`
	Type       string                 `bson:"type" json:"type"`
	Difficulty string                 `bson:"difficulty,omitempty" json:"difficulty,omitempty"`
	MaxPlayers int                    `bson:"max_players" json:"max_players"`
	CreatedBy  string                 `bson:"created_by" json:"created_by"`
	Signups    map[string]SignupEntry `bson:"signups" json:"signups"`
	// Revision guards read-modify-write cycles on the embedded signups map.
	Revision  int64     `bson:"revision" json:"-"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// SyncSchedule derives End, Date and Time from Start.
func (e *Event) SyncSchedule() {
	e.End = e.Start.Add(EventDuration)
	e.Date = e.Start.Format("2006-01-02")
	e.Time = e.Start.Format("15:04")
}

// ActiveCount is the number of non-absent signups, the figure capacity
// checks run against. Absent entries do not hold a slot.
func (e *Event) ActiveCount() int {
	n := 0
	for _, entry := range e.Signups {
		if !entry.IsAbsent() {
			n++
		}
	}
	return n
}

func (e *Event) Entry(identity Identity) (SignupEntry, bool) {
	entry, ok := e.Signups[string(identity)]
	return entry, ok
}

// RosterView is the derived per-event summary: active entries plus per-role
// counts. Absent entries stay in the role composition counts (the raid leader
// still plans around them) but are excluded from the active list and from
// remaining-capacity math.
type RosterView struct {
	EventID    string        `json:"event_id"`
	MaxPlayers int           `json:"max_players"`
	Active     []SignupEntry `json:"active"`
	Absent     []SignupEntry `json:"absent"`
	RoleCounts map[Role]int  `json:"role_counts"`
	Remaining  int           `json:"remaining"`
}

func (e *Event) Roster() *RosterView {
	view := &RosterView{
		EventID:    e.ID.Hex(),
		MaxPlayers: e.MaxPlayers,
		RoleCounts: map[Role]int{},
	}
	for _, entry := range e.Signups {
		view.RoleCounts[entry.CharacterRole]++
		if entry.IsAbsent() {
			view.Absent = append(view.Absent, entry)
		} else {
			view.Active = append(view.Active, entry)
		}
	}
	sort.Slice(view.Active, func(i, j int) bool {
		return view.Active[i].SignedUpAt.Before(view.Active[j].SignedUpAt)
	})
	sort.Slice(view.Absent, func(i, j int) bool {
		return view.Absent[i].SignedUpAt.Before(view.Absent[j].SignedUpAt)
	})
	view.Remaining = e.MaxPlayers - len(view.Active)
	if view.Remaining < 0 {
		view.Remaining = 0
	}
	return view
}
