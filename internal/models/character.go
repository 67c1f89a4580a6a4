package models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const CharacterColName = "characters"

// Character is one playable character on a user's roster. Characters are
// created and managed independently of events; signups hold a non-owning
// reference by id.
type Character struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OwnerUserID uuid.UUID          `bson:"owner_user_id" json:"owner_user_id" validate:"required"`
	Name        string             `bson:"name" json:"name" validate:"required,min=2,max=24"`
	Class       string             `bson:"class" json:"class" validate:"required"`
	Role        Role               `bson:"role" json:"role" validate:"required"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at" json:"updated_at"`
}

type CharacterRepo interface {
	CreateCharacter(ctx context.Context, character *Character) (*Character, error)
	// FindCharacter looks a character up within one owner's roster only;
	// the ledger never validates a signup against another user's character.
	FindCharacter(ctx context.Context, ownerUserID uuid.UUID, characterID string) (*Character, error)
	ListCharactersByOwner(ctx context.Context, ownerUserID uuid.UUID) ([]*Character, error)
	UpdateCharacter(ctx context.Context, ownerUserID uuid.UUID, characterID string, updates map[string]interface{}) (*Character, error)
	DeleteCharacter(ctx context.Context, ownerUserID uuid.UUID, characterID string) error
}

func (mdb *MongodbRepo) CreateCharacter(ctx context.Context, character *Character) (*Character, error) {
	col, err := mdb.GetCollection(ctx, GuildDbName, CharacterColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	if character.ID.IsZero() {
		character.ID = primitive.NewObjectID()
	}

	if _, err := col.InsertOne(ctx, character); err != nil {
		return nil, fmt.Errorf("error inserting character: %v", err)
	}

	return character, nil
}

func (mdb *MongodbRepo) FindCharacter(ctx context.Context, ownerUserID uuid.UUID, characterID string) (*Character, error) {
	col, err := mdb.GetCollection(ctx, GuildDbName, CharacterColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	oid, err := primitive.ObjectIDFromHex(characterID)
	if err != nil {
		return nil, ErrCharacterNotFound
	}

	var character Character
	err = col.FindOne(ctx, bson.M{"_id": oid, "owner_user_id": ownerUserID}).Decode(&character)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrCharacterNotFound
		}
		return nil, fmt.Errorf("error finding character: %v", err)
	}

	return &character, nil
}

func (mdb *MongodbRepo) ListCharactersByOwner(ctx context.Context, ownerUserID uuid.UUID) ([]*Character, error) {
	col, err := mdb.GetCollection(ctx, GuildDbName, CharacterColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	opts := options.Find().SetSort(bson.M{"name": 1})
	cursor, err := col.Find(ctx, bson.M{"owner_user_id": ownerUserID}, opts)
	if err != nil {
		return nil, fmt.Errorf("error finding characters: %v", err)
	}
	defer cursor.Close(ctx)

	var characters []*Character
	for cursor.Next(ctx) {
		var character Character
		if err := cursor.Decode(&character); err != nil {
			return nil, fmt.Errorf("error decoding character: %v", err)
		}
		characters = append(characters, &character)
	}

	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %v", err)
	}

	return characters, nil
}

func (mdb *MongodbRepo) UpdateCharacter(ctx context.Context, ownerUserID uuid.UUID, characterID string, updates map[string]interface{}) (*Character, error) {
	col, err := mdb.GetCollection(ctx, GuildDbName, CharacterColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	oid, err := primitive.ObjectIDFromHex(characterID)
	if err != nil {
		return nil, ErrCharacterNotFound
	}

	updates["updated_at"] = time.Now()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	filter := bson.M{"_id": oid, "owner_user_id": ownerUserID}

	var updated Character
	err = col.FindOneAndUpdate(ctx, filter, bson.M{"$set": updates}, opts).Decode(&updated)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrCharacterNotFound
		}
		return nil, fmt.Errorf("error updating character: %v", err)
	}

	return &updated, nil
}

func (mdb *MongodbRepo) DeleteCharacter(ctx context.Context, ownerUserID uuid.UUID, characterID string) error {
	col, err := mdb.GetCollection(ctx, GuildDbName, CharacterColName)
	if err != nil {
		return fmt.Errorf("error getting collection: %v", err)
	}

	oid, err := primitive.ObjectIDFromHex(characterID)
	if err != nil {
		return ErrCharacterNotFound
	}

	res, err := col.DeleteOne(ctx, bson.M{"_id": oid, "owner_user_id": ownerUserID})
	if err != nil {
		return fmt.Errorf("error deleting character: %v", err)
	}
	if res.DeletedCount == 0 {
		return ErrCharacterNotFound
	}

	return nil
}
