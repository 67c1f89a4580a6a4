package container

import (
	"log/slog"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/redis/go-redis/v9"
	"github.com/supabase-community/supabase-go"
	"github.com/veskar/guildhall/internal/config"
	"github.com/veskar/guildhall/internal/models"
	"github.com/veskar/guildhall/internal/services"
	"go.mongodb.org/mongo-driver/mongo"
)

// Container holds all application dependencies
type Container struct {
	Logger     *slog.Logger
	Cloudinary *cloudinary.Cloudinary
	Config     *config.Config
	// Database clients
	SupabaseClient   *supabase.Client
	MongoDBClient    *mongo.Client
	RedisClient      *redis.Client
	UserService      *services.UserService
	EventService     *services.EventService
	SignupService    *services.SignupService
	ReconcileService *services.ReconcileService
	CharacterService *services.CharacterService
	DiscordService   *services.DiscordService
	MediaService     *services.MediaService
	AuditService     *services.AuditService
}

// NewContainer creates a new dependency injection container
func NewContainer(
	logger *slog.Logger,
	cfg *config.Config,
	cloudinary *cloudinary.Cloudinary,
	supabaseClient *supabase.Client,
	mongoDBClient *mongo.Client,
	redisClient *redis.Client,
	supaUrl, supaKey string,
) *Container {
	// Initialize repositories
	supa := models.SupabaseNewRepo(supabaseClient, supaUrl, supaKey)
	mongo := models.MongodbNewRepo(mongoDBClient)
	linkRepo := models.NewCachedDiscordLinkRepo(mongo, redisClient)

	userService := services.NewUserService(supa)
	eventService := services.NewEventService(mongo)
	signupService := services.NewSignupService(mongo, mongo, mongo, logger)
	reconcileService := services.NewReconcileService(mongo, linkRepo, mongo, logger)
	characterService := services.NewCharacterService(mongo)
	discordService := services.NewDiscordService(linkRepo, cfg.DiscordClientID, cfg.DiscordClientSecret, cfg.DiscordRedirectURI)
	mediaService := services.NewMediaService(mongo, cloudinary)
	auditService := services.NewAuditService(mongo)

	return &Container{
		Logger:           logger,
		Cloudinary:       cloudinary,
		Config:           cfg,
		SupabaseClient:   supabaseClient,
		MongoDBClient:    mongoDBClient,
		RedisClient:      redisClient,
		UserService:      userService,
		EventService:     eventService,
		SignupService:    signupService,
		ReconcileService: reconcileService,
		CharacterService: characterService,
		DiscordService:   discordService,
		MediaService:     mediaService,
		AuditService:     auditService,
	}
}
