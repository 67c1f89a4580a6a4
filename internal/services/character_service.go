package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/veskar/guildhall/internal/models"
)

type CharacterService struct {
	characterRepo models.CharacterRepo
}

func NewCharacterService(characterRepo models.CharacterRepo) *CharacterService {
	return &CharacterService{
		characterRepo: characterRepo,
	}
}

func (cs *CharacterService) CreateCharacter(ctx context.Context, character *models.Character) (*models.Character, error) {
	if character.OwnerUserID == uuid.Nil {
		return nil, fmt.Errorf("invalid owner user ID")
	}

	character.Name = strings.TrimSpace(character.Name)

	canonical, ok := models.ParseClass(character.Class)
	if !ok {
		return nil, fmt.Errorf("unknown class: %s", character.Class)
	}
	character.Class = canonical

	character.Role = models.ParseRole(string(character.Role))
	if character.Role == models.RoleUnassigned {
		return nil, fmt.Errorf("character role must be tank, healer or dps")
	}

	if err := models.Validate.Struct(character); err != nil {
		return nil, fmt.Errorf("invalid character data: %v", err)
	}

	now := time.Now()
	character.CreatedAt = now
	character.UpdatedAt = now

	return cs.characterRepo.CreateCharacter(ctx, character)
}

func (cs *CharacterService) ListCharacters(ctx context.Context, ownerUserID uuid.UUID) ([]*models.Character, error) {
	if ownerUserID == uuid.Nil {
		return nil, fmt.Errorf("invalid owner user ID")
	}
	return cs.characterRepo.ListCharactersByOwner(ctx, ownerUserID)
}

func (cs *CharacterService) UpdateCharacter(ctx context.Context, ownerUserID uuid.UUID, characterID string, updates map[string]interface{}) (*models.Character, error) {
	if ownerUserID == uuid.Nil {
		return nil, fmt.Errorf("invalid owner user ID")
	}
	if strings.TrimSpace(characterID) == "" {
		return nil, models.ErrCharacterNotFound
	}

	allowed := map[string]bool{"name": true, "class": true, "role": true}
	filtered := map[string]interface{}{}
	for key, value := range updates {
		if !allowed[key] {
			continue
		}
		switch key {
		case "class":
			raw, _ := value.(string)
			canonical, ok := models.ParseClass(raw)
			if !ok {
				return nil, fmt.Errorf("unknown class: %s", raw)
			}
			filtered[key] = canonical
		case "role":
			raw, _ := value.(string)
			role := models.ParseRole(raw)
			if role == models.RoleUnassigned {
				return nil, fmt.Errorf("character role must be tank, healer or dps")
			}
			filtered[key] = role
		default:
			filtered[key] = value
		}
	}
	if len(filtered) == 0 {
		return nil, fmt.Errorf("no valid fields to update")
	}

	return cs.characterRepo.UpdateCharacter(ctx, ownerUserID, characterID, filtered)
}

func (cs *CharacterService) DeleteCharacter(ctx context.Context, ownerUserID uuid.UUID, characterID string) error {
	if ownerUserID == uuid.Nil {
		return fmt.Errorf("invalid owner user ID")
	}
	if strings.TrimSpace(characterID) == "" {
		return models.ErrCharacterNotFound
	}
	return cs.characterRepo.DeleteCharacter(ctx, ownerUserID, characterID)
}
