package routes

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/veskar/guildhall/internal/container"
	"github.com/veskar/guildhall/internal/handlers"
	"github.com/veskar/guildhall/internal/helpers"
	"github.com/veskar/guildhall/internal/middleware"
)

// SetupRoutes configures all routes with the dependency container
func SetupRoutes(container *container.Container) *gin.Engine {
	// Set Gin mode for production
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID", "X-Webhook-Secret"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	// Add middleware
	r.Use(middleware.RequestID())
	r.Use(middleware.StructuredLogger(container.Logger))
	r.Use(middleware.ErrorHandler(container.Logger))
	r.Use(gin.Recovery())

	// API version 1
	v1 := r.Group("/api/v1")
	{
		// Health check
		v1.GET("/health", func(c *gin.Context) {
			c.JSON(200, gin.H{
				"status":  "OK",
				"service": "guildhall-api",
			})
		})

		// public routes
		v1.POST("/signup", handlers.CreateUser(container.UserService))
		v1.POST("/login", handlers.AuthenticateUser(container.UserService))
		v1.POST("/refresh", handlers.RefreshToken(container.UserService))

		// external raid-bot webhook, authenticated by shared secret
		v1.POST("/webhooks/raid-bot",
			middleware.WebhookAuth(container.Config.RaidBotWebhookSecret),
			handlers.RaidBotWebhook(container.ReconcileService),
		)
	}

	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware(container.SupabaseClient, container.UserService, container.Logger))

	userRoutes := protected.Group("/users")
	{
		protected.GET("/profile", func(c *gin.Context) {
			user, exist := c.Get("user")
			if !exist {
				c.JSON(401, gin.H{"error": "Unauthorized"})
				return
			}

			enhancedClaims, ok := user.(*helpers.EnhancedClaims)
			if !ok {
				c.JSON(500, gin.H{"error": "Invalid user claims format"})
				return
			}

			c.JSON(200, gin.H{
				"status":   "OK",
				"user_id":  enhancedClaims.UserID,
				"email":    enhancedClaims.Email,
				"role":     enhancedClaims.Role,
				"username": enhancedClaims.Username,
				"is_admin": enhancedClaims.IsAdmin(),
			})
		})

		protected.POST("/logout", handlers.Logout())

		userRoutes.GET("/:id", handlers.GetUser(container.UserService))
		userRoutes.PATCH("/:id", handlers.UpdateUser(container.UserService))
		userRoutes.DELETE("/:id", handlers.DeleteUser(container.UserService))
		userRoutes.POST("/:id/avatar", handlers.UploadAvatar(container.UserService))
	}

	eventRoutes := protected.Group("/events")
	{
		eventRoutes.GET("/", handlers.ListEvents(container.EventService))
		eventRoutes.GET("/:id", handlers.GetEvent(container.EventService))
		eventRoutes.GET("/:id/roster", handlers.GetRoster(container.SignupService))

		// signups for the authenticated user
		eventRoutes.POST("/:id/signups", handlers.SignUpForEvent(container.SignupService))
		eventRoutes.PATCH("/:id/signups", handlers.EditSignup(container.SignupService))
		eventRoutes.POST("/:id/signups/absence", handlers.MarkAbsent(container.SignupService))
		eventRoutes.DELETE("/:id/signups", handlers.Withdraw(container.SignupService))

		// event lifecycle is admin-only
		eventRoutes.POST("/", middleware.AdminOnly(), handlers.CreateEvent(container.EventService))
		eventRoutes.DELETE("/:id", middleware.AdminOnly(), handlers.DeleteEvent(container.EventService))
	}

	characterRoutes := protected.Group("/characters")
	{
		characterRoutes.POST("/", handlers.CreateCharacter(container.CharacterService))
		characterRoutes.GET("/", handlers.ListCharacters(container.CharacterService))
		characterRoutes.PATCH("/:id", handlers.UpdateCharacter(container.CharacterService))
		characterRoutes.DELETE("/:id", handlers.DeleteCharacter(container.CharacterService))
	}

	discordRoutes := protected.Group("/discord")
	{
		discordRoutes.POST("/link", handlers.LinkDiscord(container.DiscordService))
		discordRoutes.GET("/link", handlers.GetDiscordLink(container.DiscordService))
		discordRoutes.DELETE("/link", handlers.UnlinkDiscord(container.DiscordService))
	}

	mediaRoutes := protected.Group("/media")
	{
		mediaRoutes.POST("/", handlers.UploadMedia(container.MediaService))
		mediaRoutes.GET("/", handlers.ListMedia(container.MediaService))
		mediaRoutes.DELETE("/:id", handlers.DeleteMedia(container.MediaService))
	}

	auditRoutes := protected.Group("/audit")
	auditRoutes.Use(middleware.AdminOnly())
	{
		auditRoutes.GET("/", handlers.ListAuditLog(container.AuditService))
	}

	return r
}
