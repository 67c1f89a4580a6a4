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

const MediaColName = "media"

// MediaItem is one gallery entry. The binary lives in Cloudinary; this
// document carries the delivery URL plus the public id needed to delete it.
type MediaItem struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UploaderUserID   uuid.UUID          `bson:"uploader_user_id" json:"uploader_user_id"`
	UploaderUsername string             `bson:"uploader_username,omitempty" json:"uploader_username,omitempty"`
	Caption          string             `bson:"caption,omitempty" json:"caption,omitempty"`
	URL              string             `bson:"url" json:"url"`
	PublicID         string             `bson:"public_id" json:"-"`
	CreatedAt        time.Time          `bson:"created_at" json:"created_at"`
}

type MediaRepo interface {
	SaveMediaItem(ctx context.Context, item *MediaItem) (*MediaItem, error)
	GetMediaItem(ctx context.Context, id string) (*MediaItem, error)
	ListMedia(ctx context.Context, offset, limit int) ([]*MediaItem, int, error)
	DeleteMediaItem(ctx context.Context, id string) error
}

func (mdb *MongodbRepo) SaveMediaItem(ctx context.Context, item *MediaItem) (*MediaItem, error) {
	col, err := mdb.GetCollection(ctx, GuildDbName, MediaColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	if item.ID.IsZero() {
		item.ID = primitive.NewObjectID()
	}
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now()
	}

	if _, err := col.InsertOne(ctx, item); err != nil {
		return nil, fmt.Errorf("error inserting media item: %v", err)
	}

	return item, nil
}

func (mdb *MongodbRepo) GetMediaItem(ctx context.Context, id string) (*MediaItem, error) {
	col, err := mdb.GetCollection(ctx, GuildDbName, MediaColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("invalid media id: %v", err)
	}

	var item MediaItem
	if err := col.FindOne(ctx, bson.M{"_id": oid}).Decode(&item); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("error finding media item: %v", err)
	}

	return &item, nil
}

func (mdb *MongodbRepo) ListMedia(ctx context.Context, offset, limit int) ([]*MediaItem, int, error) {
	col, err := mdb.GetCollection(ctx, GuildDbName, MediaColName)
	if err != nil {
		return nil, 0, fmt.Errorf("error getting collection: %v", err)
	}

	total, err := col.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, 0, fmt.Errorf("error counting media items: %v", err)
	}

	opts := options.Find().
		SetSort(bson.M{"created_at": -1}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))

	cursor, err := col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("error finding media items: %v", err)
	}
	defer cursor.Close(ctx)

	var items []*MediaItem
	for cursor.Next(ctx) {
		var item MediaItem
		if err := cursor.Decode(&item); err != nil {
			return nil, 0, fmt.Errorf("error decoding media item: %v", err)
		}
		items = append(items, &item)
	}

	if err := cursor.Err(); err != nil {
		return nil, 0, fmt.Errorf("cursor error: %v", err)
	}

	return items, int(total), nil
}

func (mdb *MongodbRepo) DeleteMediaItem(ctx context.Context, id string) error {
	col, err := mdb.GetCollection(ctx, GuildDbName, MediaColName)
	if err != nil {
		return fmt.Errorf("error getting collection: %v", err)
	}

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("invalid media id: %v", err)
	}

	if _, err := col.DeleteOne(ctx, bson.M{"_id": oid}); err != nil {
		return fmt.Errorf("error deleting media item: %v", err)
	}

	return nil
}
