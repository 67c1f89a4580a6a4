package models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type EventRepo interface {
	CreateEvent(ctx context.Context, event *Event) (*Event, error)
	GetEventByID(ctx context.Context, id string) (*Event, error)
	ListEvents(ctx context.Context, from time.Time, offset, limit int) ([]*Event, int, error)
	DeleteEvent(ctx context.Context, id string) error
	// UpdateSignups replaces the embedded signups map, guarded by the
	// revision read alongside it. A stale revision yields ErrStoreConflict;
	// a deleted event yields ErrEventNotFound so in-flight reconciliation
	// cannot resurrect it.
	UpdateSignups(ctx context.Context, id string, revision int64, signups map[string]SignupEntry) (*Event, error)
}

func (mdb *MongodbRepo) CreateEvent(ctx context.Context, event *Event) (*Event, error) {
	col, err := mdb.GetCollection(ctx, GuildDbName, EventColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	if event.ID.IsZero() {
		event.ID = primitive.NewObjectID()
	}
	if event.Signups == nil {
		event.Signups = map[string]SignupEntry{}
	}

	if _, err := col.InsertOne(ctx, event); err != nil {
		return nil, fmt.Errorf("error inserting event: %v", err)
	}

	return event, nil
}

func (mdb *MongodbRepo) GetEventByID(ctx context.Context, id string) (*Event, error) {
	col, err := mdb.GetCollection(ctx, GuildDbName, EventColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrEventNotFound
	}

	var event Event
	if err := col.FindOne(ctx, bson.M{"_id": oid}).Decode(&event); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("error finding event: %v", err)
	}

	return &event, nil
}

func (mdb *MongodbRepo) ListEvents(ctx context.Context, from time.Time, offset, limit int) ([]*Event, int, error) {
	col, err := mdb.GetCollection(ctx, GuildDbName, EventColName)
	if err != nil {
		return nil, 0, fmt.Errorf("error getting collection: %v", err)
	}

	filter := bson.M{}
	if !from.IsZero() {
		filter["start"] = bson.M{"$gte": from}
	}

	total, err := col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("error counting events: %v", err)
	}

	opts := options.Find().
		SetSort(bson.M{"start": 1}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))

	cursor, err := col.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("error finding events: %v", err)
	}
	defer cursor.Close(ctx)

	var events []*Event
	for cursor.Next(ctx) {
		var event Event
		if err := cursor.Decode(&event); err != nil {
			return nil, 0, fmt.Errorf("error decoding event: %v", err)
		}
		events = append(events, &event)
	}

	if err := cursor.Err(); err != nil {
		return nil, 0, fmt.Errorf("cursor error: %v", err)
	}

	return events, int(total), nil
}

func (mdb *MongodbRepo) DeleteEvent(ctx context.Context, id string) error {
	col, err := mdb.GetCollection(ctx, GuildDbName, EventColName)
	if err != nil {
		return fmt.Errorf("error getting collection: %v", err)
	}

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrEventNotFound
	}

	// Signups are embedded in the event document, so the delete cascades.
	res, err := col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("error deleting event: %v", err)
	}
	if res.DeletedCount == 0 {
		return ErrEventNotFound
	}

	return nil
}

func (mdb *MongodbRepo) UpdateSignups(ctx context.Context, id string, revision int64, signups map[string]SignupEntry) (*Event, error) {
	col, err := mdb.GetCollection(ctx, GuildDbName, EventColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrEventNotFound
	}

	filter := bson.M{"_id": oid, "revision": revision}
	update := bson.M{
		"$set": bson.M{
			"signups":    signups,
			"updated_at": time.Now(),
		},
		"$inc": bson.M{"revision": 1},
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated Event
	err = col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&updated)
	if err == nil {
		return &updated, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("error updating signups: %v", err)
	}

	// No match: either the event is gone or someone wrote in between.
	count, countErr := col.CountDocuments(ctx, bson.M{"_id": oid})
	if countErr != nil {
		return nil, fmt.Errorf("error checking event existence: %v", countErr)
	}
	if count == 0 {
		return nil, ErrEventNotFound
	}
	return nil, ErrStoreConflict
}
