package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/veskar/guildhall/internal/models"
)

// BotNotification is one inbound signup report from the external Discord
// raid-scheduling bot.
type BotNotification struct {
	DiscordUserID       string `json:"discord_user_id" binding:"required"`
	Nickname            string `json:"nickname"`
	CharacterClassGuess string `json:"character_class_guess,omitempty"`
	Role                string `json:"role,omitempty"`
	EventID             string `json:"event_id" binding:"required"`
}

// ReconcileResult reports the outcome for a single notification. One failed
// notification never aborts the rest of a batch.
type ReconcileResult struct {
	DiscordUserID string `json:"discord_user_id"`
	EventID       string `json:"event_id"`
	Applied       bool   `json:"applied"`
	Error         string `json:"error,omitempty"`
}

// ReconcileService merges bot-sourced signups into the same per-event ledger
// in-app signups use. A Discord account linked to an in-app user collapses
// onto that user's identity; an unlinked account gets a normalized
// discord:<id> identity and an entry marked as a Discord signup.
type ReconcileService struct {
	eventRepo models.EventRepo
	linkRepo  models.DiscordLinkRepo
	auditRepo models.AuditRepo
	logger    *slog.Logger
}

func NewReconcileService(eventRepo models.EventRepo, linkRepo models.DiscordLinkRepo, auditRepo models.AuditRepo, logger *slog.Logger) *ReconcileService {
	return &ReconcileService{
		eventRepo: eventRepo,
		linkRepo:  linkRepo,
		auditRepo: auditRepo,
		logger:    logger,
	}
}

// ReconcileBatch processes each notification independently and reports
// per-notification outcomes. A deleted target event is a recorded failure
// for that notification, never a retry and never a recreated event.
func (rs *ReconcileService) ReconcileBatch(ctx context.Context, notifications []BotNotification) []ReconcileResult {
	results := make([]ReconcileResult, 0, len(notifications))
	for _, n := range notifications {
		result := ReconcileResult{DiscordUserID: n.DiscordUserID, EventID: n.EventID}
		if err := rs.reconcileOne(ctx, n); err != nil {
			result.Error = err.Error()
			rs.logger.Warn("bot signup not reconciled",
				"discord_user_id", n.DiscordUserID,
				"event_id", n.EventID,
				"error", err,
			)
		} else {
			result.Applied = true
		}
		results = append(results, result)
	}
	return results
}

func (rs *ReconcileService) reconcileOne(ctx context.Context, n BotNotification) error {
	if strings.TrimSpace(n.DiscordUserID) == "" {
		return fmt.Errorf("discord user id is required")
	}
	if strings.TrimSpace(n.EventID) == "" {
		return fmt.Errorf("event id is required")
	}

	userID, linked, err := rs.linkRepo.ResolveLinkedUser(ctx, n.DiscordUserID)
	if err != nil {
		return fmt.Errorf("resolving discord link: %v", err)
	}

	identity := models.DiscordIdentity(n.DiscordUserID)
	if linked {
		identity = models.UserIdentity(userID.String())
	}

	canonicalClass, classKnown := models.ParseClass(n.CharacterClassGuess)
	role := models.ParseRole(n.Role)
	now := time.Now()

	var lastErr error
	for attempt := 0; attempt < maxConflictRetries; attempt++ {
		event, err := rs.eventRepo.GetEventByID(ctx, n.EventID)
		if err != nil {
			return err
		}
		if event.Signups == nil {
			event.Signups = map[string]models.SignupEntry{}
		}

		entry, exists := event.Entry(identity)
		if exists {
			// Existing entry from either source: update transient fields in
			// place, never create a second entry for the same identity.
			if n.Nickname != "" {
				entry.DiscordNickname = n.Nickname
				if entry.IsDiscordSignup {
					entry.OriginalDiscordName = n.Nickname
				}
			}
			if n.CharacterClassGuess != "" {
				if classKnown {
					entry.CharacterClass = canonicalClass
					entry.OriginalClass = ""
				} else {
					entry.OriginalClass = n.CharacterClassGuess
				}
			}
			if n.Role != "" && role != models.RoleUnassigned {
				entry.CharacterRole = role
			}
			entry.UpdatedAt = now
		} else {
			if event.ActiveCount() >= event.MaxPlayers {
				return models.ErrCapacityExceeded
			}
			entry = models.SignupEntry{
				CharacterRole:   role,
				DiscordNickname: n.Nickname,
				SignedUpAt:      now,
				UpdatedAt:       now,
			}
			if linked {
				entry.UserID = userID.String()
			} else {
				// The bot knows nothing about in-app characters, so the
				// entry carries the reported strings and no character ref.
				entry.IsDiscordSignup = true
				entry.OriginalDiscordName = n.Nickname
			}
			if classKnown {
				entry.CharacterClass = canonicalClass
			} else if n.CharacterClassGuess != "" {
				entry.OriginalClass = n.CharacterClassGuess
			}
		}

		event.Signups[string(identity)] = entry

		_, err = rs.eventRepo.UpdateSignups(ctx, n.EventID, event.Revision, event.Signups)
		if err == nil {
			rs.auditReconcile(ctx, identity, n)
			return nil
		}
		if !errors.Is(err, models.ErrStoreConflict) {
			return err
		}
		lastErr = err
	}
	return lastErr
}

func (rs *ReconcileService) auditReconcile(ctx context.Context, identity models.Identity, n BotNotification) {
	record := &models.AuditRecord{
		Action:        models.AuditReconcile,
		ActorIdentity: string(identity),
		EventID:       n.EventID,
		Timestamp:     time.Now(),
		Details:       fmt.Sprintf("bot signup from %s (%s)", n.Nickname, n.DiscordUserID),
	}
	if err := rs.auditRepo.Append(ctx, record); err != nil {
		rs.logger.Error("failed to append audit record", "action", models.AuditReconcile, "event_id", n.EventID, "error", err)
	}
}
