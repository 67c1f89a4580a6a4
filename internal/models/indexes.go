package models

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the indexes the query paths rely on. Called once at
// startup; CreateMany is a no-op for indexes that already exist.
func (mdb *MongodbRepo) EnsureIndexes(ctx context.Context) error {
	type colIndexes struct {
		name    string
		indexes []mongo.IndexModel
	}

	plans := []colIndexes{
		{
			name: EventColName,
			indexes: []mongo.IndexModel{
				// Calendar listing sorts upcoming events by start.
				{
					Keys:    bson.D{{Key: "start", Value: 1}},
					Options: options.Index().SetName("start_idx"),
				},
			},
		},
		{
			name: CharacterColName,
			indexes: []mongo.IndexModel{
				{
					Keys:    bson.D{{Key: "owner_user_id", Value: 1}},
					Options: options.Index().SetName("owner_idx"),
				},
				// One character name per owner.
				{
					Keys: bson.D{
						{Key: "owner_user_id", Value: 1},
						{Key: "name", Value: 1},
					},
					Options: options.Index().
						SetUnique(true).
						SetName("owner_name_unique"),
				},
			},
		},
		{
			name: DiscordLinkColName,
			indexes: []mongo.IndexModel{
				{
					Keys: bson.D{{Key: "discord_user_id", Value: 1}},
					Options: options.Index().
						SetUnique(true).
						SetName("discord_user_unique"),
				},
				{
					Keys:    bson.D{{Key: "user_id", Value: 1}},
					Options: options.Index().SetName("user_id_idx"),
				},
			},
		},
		{
			name: AuditColName,
			indexes: []mongo.IndexModel{
				// Audit viewer filters by event and pages newest-first.
				{
					Keys: bson.D{
						{Key: "event_id", Value: 1},
						{Key: "timestamp", Value: -1},
					},
					Options: options.Index().SetName("event_timestamp_idx"),
				},
			},
		},
		{
			name: MediaColName,
			indexes: []mongo.IndexModel{
				{
					Keys:    bson.D{{Key: "created_at", Value: -1}},
					Options: options.Index().SetName("created_at_idx"),
				},
			},
		},
	}

	for _, plan := range plans {
		col, err := mdb.GetCollection(ctx, GuildDbName, plan.name)
		if err != nil {
			return fmt.Errorf("error getting collection: %v", err)
		}
		if _, err := col.Indexes().CreateMany(ctx, plan.indexes); err != nil {
			return fmt.Errorf("error creating indexes for %s: %v", plan.name, err)
		}
	}

	return nil
}
