package models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const DiscordLinkColName = "discord_links"

// DiscordLink associates a Discord account with an in-app user. The
// reconciler resolves bot-reported signups through this mapping so a linked
// player ends up with a single signup entry regardless of source.
type DiscordLink struct {
	DiscordUserID   string    `bson:"discord_user_id" json:"discord_user_id" validate:"required"`
	UserID          uuid.UUID `bson:"user_id" json:"user_id" validate:"required"`
	DiscordUsername string    `bson:"discord_username,omitempty" json:"discord_username,omitempty"`
	LinkedAt        time.Time `bson:"linked_at" json:"linked_at"`
}

type DiscordLinkRepo interface {
	SaveLink(ctx context.Context, link *DiscordLink) error
	// ResolveLinkedUser returns the linked in-app user id, or ok=false when
	// no link exists for the Discord account.
	ResolveLinkedUser(ctx context.Context, discordUserID string) (uuid.UUID, bool, error)
	GetLinkByUser(ctx context.Context, userID uuid.UUID) (*DiscordLink, error)
	DeleteLink(ctx context.Context, userID uuid.UUID) error
}

func (mdb *MongodbRepo) SaveLink(ctx context.Context, link *DiscordLink) error {
	col, err := mdb.GetCollection(ctx, GuildDbName, DiscordLinkColName)
	if err != nil {
		return fmt.Errorf("error getting collection: %v", err)
	}

	link.LinkedAt = time.Now()

	filter := bson.M{"discord_user_id": link.DiscordUserID}
	update := bson.M{"$set": link}
	opts := options.Update().SetUpsert(true)

	if _, err := col.UpdateOne(ctx, filter, update, opts); err != nil {
		return fmt.Errorf("error upserting discord link: %v", err)
	}

	return nil
}

func (mdb *MongodbRepo) ResolveLinkedUser(ctx context.Context, discordUserID string) (uuid.UUID, bool, error) {
	col, err := mdb.GetCollection(ctx, GuildDbName, DiscordLinkColName)
	if err != nil {
		return uuid.Nil, false, fmt.Errorf("error getting collection: %v", err)
	}

	var link DiscordLink
	err = col.FindOne(ctx, bson.M{"discord_user_id": discordUserID}).Decode(&link)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return uuid.Nil, false, nil
		}
		return uuid.Nil, false, fmt.Errorf("error finding discord link: %v", err)
	}

	return link.UserID, true, nil
}

func (mdb *MongodbRepo) GetLinkByUser(ctx context.Context, userID uuid.UUID) (*DiscordLink, error) {
	col, err := mdb.GetCollection(ctx, GuildDbName, DiscordLinkColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	var link DiscordLink
	err = col.FindOne(ctx, bson.M{"user_id": userID}).Decode(&link)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("error finding discord link: %v", err)
	}

	return &link, nil
}

func (mdb *MongodbRepo) DeleteLink(ctx context.Context, userID uuid.UUID) error {
	col, err := mdb.GetCollection(ctx, GuildDbName, DiscordLinkColName)
	if err != nil {
		return fmt.Errorf("error getting collection: %v", err)
	}

	if _, err := col.DeleteOne(ctx, bson.M{"user_id": userID}); err != nil {
		return fmt.Errorf("error deleting discord link: %v", err)
	}

	return nil
}

const (
	linkCacheTTL         = 10 * time.Minute
	linkCacheNegativeTTL = time.Minute
	linkCacheMiss        = "__none__"
)

// CachedDiscordLinkRepo fronts link resolution with Redis. Webhook batches
// resolve the same handful of Discord ids over and over, so both hits and
// misses are cached (misses briefly, so a fresh link takes effect quickly).
type CachedDiscordLinkRepo struct {
	inner DiscordLinkRepo
	rdb   *redis.Client
}

func NewCachedDiscordLinkRepo(inner DiscordLinkRepo, rdb *redis.Client) *CachedDiscordLinkRepo {
	return &CachedDiscordLinkRepo{inner: inner, rdb: rdb}
}

func linkCacheKey(discordUserID string) string {
	return "discord_link:" + discordUserID
}

func (c *CachedDiscordLinkRepo) ResolveLinkedUser(ctx context.Context, discordUserID string) (uuid.UUID, bool, error) {
	key := linkCacheKey(discordUserID)

	cached, err := c.rdb.Get(ctx, key).Result()
	if err == nil {
		if cached == linkCacheMiss {
			return uuid.Nil, false, nil
		}
		if id, parseErr := uuid.Parse(cached); parseErr == nil {
			return id, true, nil
		}
	}

	userID, ok, err := c.inner.ResolveLinkedUser(ctx, discordUserID)
	if err != nil {
		return uuid.Nil, false, err
	}

	// Cache failures are ignored; resolution already succeeded.
	if ok {
		c.rdb.Set(ctx, key, userID.String(), linkCacheTTL)
	} else {
		c.rdb.Set(ctx, key, linkCacheMiss, linkCacheNegativeTTL)
	}

	return userID, ok, nil
}

func (c *CachedDiscordLinkRepo) SaveLink(ctx context.Context, link *DiscordLink) error {
	if err := c.inner.SaveLink(ctx, link); err != nil {
		return err
	}
	c.rdb.Del(ctx, linkCacheKey(link.DiscordUserID))
	return nil
}

func (c *CachedDiscordLinkRepo) GetLinkByUser(ctx context.Context, userID uuid.UUID) (*DiscordLink, error) {
	return c.inner.GetLinkByUser(ctx, userID)
}

func (c *CachedDiscordLinkRepo) DeleteLink(ctx context.Context, userID uuid.UUID) error {
	link, err := c.inner.GetLinkByUser(ctx, userID)
	if err != nil {
		return err
	}
	if err := c.inner.DeleteLink(ctx, userID); err != nil {
		return err
	}
	if link != nil {
		c.rdb.Del(ctx, linkCacheKey(link.DiscordUserID))
	}
	return nil
}
