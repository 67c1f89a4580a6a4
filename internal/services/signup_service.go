package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/veskar/guildhall/internal/models"
)

// maxConflictRetries bounds the re-read-and-reapply loop around the
// revision-guarded signup write.
const maxConflictRetries = 3

// errNoChange signals that a mutation turned out to be a no-op (idempotent
// withdraw); the write and the audit record are both skipped.
var errNoChange = errors.New("no change")

// SignupService is the signup ledger: every in-app signup mutation goes
// through it, one entry per effective identity per event. The duplicate
// policy is reject-on-duplicate; changing an existing signup is the separate
// EditSignup operation.
type SignupService struct {
	eventRepo     models.EventRepo
	characterRepo models.CharacterRepo
	auditRepo     models.AuditRepo
	logger        *slog.Logger
}

func NewSignupService(eventRepo models.EventRepo, characterRepo models.CharacterRepo, auditRepo models.AuditRepo, logger *slog.Logger) *SignupService {
	return &SignupService{
		eventRepo:     eventRepo,
		characterRepo: characterRepo,
		auditRepo:     auditRepo,
		logger:        logger,
	}
}

// mutate runs one read-validate-write cycle against the event's signup map,
// retrying on ErrStoreConflict with a fresh read so validation always runs
// against current state. Validation failures from apply are returned as-is
// and never retried.
func (ss *SignupService) mutate(ctx context.Context, eventID string, apply func(event *models.Event) error) (*models.Event, error) {
	var lastErr error
	for attempt := 0; attempt < maxConflictRetries; attempt++ {
		event, err := ss.eventRepo.GetEventByID(ctx, eventID)
		if err != nil {
			return nil, err
		}

		if event.Signups == nil {
			event.Signups = map[string]models.SignupEntry{}
		}

		if err := apply(event); err != nil {
			if errors.Is(err, errNoChange) {
				return event, errNoChange
			}
			return nil, err
		}

		updated, err := ss.eventRepo.UpdateSignups(ctx, eventID, event.Revision, event.Signups)
		if err == nil {
			return updated, nil
		}
		if !errors.Is(err, models.ErrStoreConflict) {
			return nil, err
		}
		lastErr = err
	}
	return nil, lastErr
}

func (ss *SignupService) audit(ctx context.Context, action models.AuditAction, identity models.Identity, eventID, details string) {
	record := &models.AuditRecord{
		Action:        action,
		ActorIdentity: string(identity),
		EventID:       eventID,
		Timestamp:     time.Now(),
		Details:       details,
	}
	if err := ss.auditRepo.Append(ctx, record); err != nil {
		// The mutation already succeeded; a lost audit record is logged,
		// not surfaced.
		ss.logger.Error("failed to append audit record", "action", action, "event_id", eventID, "error", err)
	}
}

// SignUp records a new signup for the user with one of their registered
// characters. Fails with ErrDuplicateSignup when the identity already holds
// an entry, ErrCapacityExceeded when the event's active (non-absent) count
// has reached max_players, and ErrCharacterNotFound when the character is
// not on the user's roster.
func (ss *SignupService) SignUp(ctx context.Context, eventID string, userID uuid.UUID, username, characterID string, role models.Role, spec string) (*models.RosterView, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("invalid user ID")
	}

	character, err := ss.characterRepo.FindCharacter(ctx, userID, characterID)
	if err != nil {
		return nil, err
	}

	if role == "" || role == models.RoleUnassigned {
		role = character.Role
	}
	if !role.Valid() {
		return nil, fmt.Errorf("invalid role: %s", role)
	}

	identity := models.UserIdentity(userID.String())
	now := time.Now()

	updated, err := ss.mutate(ctx, eventID, func(event *models.Event) error {
		if _, exists := event.Entry(identity); exists {
			return models.ErrDuplicateSignup
		}
		if event.ActiveCount() >= event.MaxPlayers {
			return models.ErrCapacityExceeded
		}
		event.Signups[string(identity)] = models.SignupEntry{
			UserID:         userID.String(),
			Username:       username,
			CharacterID:    character.ID.Hex(),
			CharacterName:  character.Name,
			CharacterClass: character.Class,
			CharacterRole:  role,
			Spec:           spec,
			SignedUpAt:     now,
			UpdatedAt:      now,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	ss.audit(ctx, models.AuditSignUp, identity, eventID, fmt.Sprintf("%s as %s (%s)", character.Name, role, character.Class))
	return updated.Roster(), nil
}

// EditSignup swaps character, role or spec on an existing entry. The entry
// must exist; use SignUp for a first-time signup.
func (ss *SignupService) EditSignup(ctx context.Context, eventID string, userID uuid.UUID, characterID string, role models.Role, spec string) (*models.RosterView, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("invalid user ID")
	}

	character, err := ss.characterRepo.FindCharacter(ctx, userID, characterID)
	if err != nil {
		return nil, err
	}

	if role == "" || role == models.RoleUnassigned {
		role = character.Role
	}
	if !role.Valid() {
		return nil, fmt.Errorf("invalid role: %s", role)
	}

	identity := models.UserIdentity(userID.String())

	updated, err := ss.mutate(ctx, eventID, func(event *models.Event) error {
		entry, exists := event.Entry(identity)
		if !exists {
			return models.ErrSignupNotFound
		}
		entry.CharacterID = character.ID.Hex()
		entry.CharacterName = character.Name
		entry.CharacterClass = character.Class
		entry.CharacterRole = role
		entry.Spec = spec
		entry.UpdatedAt = time.Now()
		event.Signups[string(identity)] = entry
		return nil
	})
	if err != nil {
		return nil, err
	}

	ss.audit(ctx, models.AuditEditSignup, identity, eventID, fmt.Sprintf("%s as %s", character.Name, role))
	return updated.Roster(), nil
}

// MarkAbsent keeps the entry on the roster but flags the absence reason.
// Absent entries stay in the per-role composition counts but stop counting
// toward the active capacity check, so the freed slot can be backfilled.
func (ss *SignupService) MarkAbsent(ctx context.Context, eventID string, identity models.Identity, reason string) (*models.RosterView, error) {
	if reason == "" {
		reason = "absent"
	}

	updated, err := ss.mutate(ctx, eventID, func(event *models.Event) error {
		entry, exists := event.Entry(identity)
		if !exists {
			return models.ErrSignupNotFound
		}
		entry.AbsenceReason = reason
		entry.UpdatedAt = time.Now()
		event.Signups[string(identity)] = entry
		return nil
	})
	if err != nil {
		return nil, err
	}

	ss.audit(ctx, models.AuditMarkAbsent, identity, eventID, reason)
	return updated.Roster(), nil
}

// Withdraw removes the identity's entry entirely. Withdrawing an identity
// that has no entry is a no-op, not an error.
func (ss *SignupService) Withdraw(ctx context.Context, eventID string, identity models.Identity) (*models.RosterView, error) {
	updated, err := ss.mutate(ctx, eventID, func(event *models.Event) error {
		if _, exists := event.Entry(identity); !exists {
			return errNoChange
		}
		delete(event.Signups, string(identity))
		return nil
	})
	if errors.Is(err, errNoChange) {
		return updated.Roster(), nil
	}
	if err != nil {
		return nil, err
	}

	ss.audit(ctx, models.AuditWithdraw, identity, eventID, "")
	return updated.Roster(), nil
}

// RosterView is a pure read; it never mutates the event.
func (ss *SignupService) RosterView(ctx context.Context, eventID string) (*models.RosterView, error) {
	event, err := ss.eventRepo.GetEventByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	return event.Roster(), nil
}
