package models

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const AuditColName = "audit_log"

type AuditAction string

const (
	AuditSignUp     AuditAction = "signup"
	AuditEditSignup AuditAction = "edit_signup"
	AuditMarkAbsent AuditAction = "mark_absent"
	AuditWithdraw   AuditAction = "withdraw"
	AuditReconcile  AuditAction = "reconcile"
)

// AuditRecord is one ledger mutation, written by the signup ledger and read
// by the admin audit viewer.
type AuditRecord struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Action        AuditAction        `bson:"action" json:"action"`
	ActorIdentity string             `bson:"actor_identity" json:"actor_identity"`
	EventID       string             `bson:"event_id" json:"event_id"`
	Timestamp     time.Time          `bson:"timestamp" json:"timestamp"`
	Details       string             `bson:"details,omitempty" json:"details,omitempty"`
}

type AuditRepo interface {
	Append(ctx context.Context, record *AuditRecord) error
	ListByEvent(ctx context.Context, eventID string, offset, limit int) ([]*AuditRecord, int, error)
}

func (mdb *MongodbRepo) Append(ctx context.Context, record *AuditRecord) error {
	col, err := mdb.GetCollection(ctx, GuildDbName, AuditColName)
	if err != nil {
		return fmt.Errorf("error getting collection: %v", err)
	}

	if record.ID.IsZero() {
		record.ID = primitive.NewObjectID()
	}
	if record.Timestamp.IsZero() {
		record.Timestamp = time.Now()
	}

	if _, err := col.InsertOne(ctx, record); err != nil {
		return fmt.Errorf("error inserting audit record: %v", err)
	}

	return nil
}

func (mdb *MongodbRepo) ListByEvent(ctx context.Context, eventID string, offset, limit int) ([]*AuditRecord, int, error) {
	col, err := mdb.GetCollection(ctx, GuildDbName, AuditColName)
	if err != nil {
		return nil, 0, fmt.Errorf("error getting collection: %v", err)
	}

	filter := bson.M{}
	if eventID != "" {
		filter["event_id"] = eventID
	}

	total, err := col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("error counting audit records: %v", err)
	}

	opts := options.Find().
		SetSort(bson.M{"timestamp": -1}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))

	cursor, err := col.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("error finding audit records: %v", err)
	}
	defer cursor.Close(ctx)

	var records []*AuditRecord
	for cursor.Next(ctx) {
		var record AuditRecord
		if err := cursor.Decode(&record); err != nil {
			return nil, 0, fmt.Errorf("error decoding audit record: %v", err)
		}
		records = append(records, &record)
	}

	if err := cursor.Err(); err != nil {
		return nil, 0, fmt.Errorf("cursor error: %v", err)
	}

	return records, int(total), nil
}
