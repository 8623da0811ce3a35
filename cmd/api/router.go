package api

import (
	"net/http"

	"questlog-backend/internal/auth/delivery"
	"questlog-backend/internal/auth/domain"
	"questlog-backend/pkg/secure"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(r *gin.Engine, h *Handler) {
	r.Use(secure.Headers(), secure.CORS(h.config.CORSAllowedOrigins), h.csrfGuard.Middleware())

	authenticate := h.provider.Authenticate()
	anyRole := delivery.Authorize(domain.RoleUser, domain.RoleAdmin, domain.RoleModerator)

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "Hello from a secure Server"})
	})
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Auth routes
	auth := r.Group("/auth")
	{
		auth.GET("/csrf-token", h.csrfGuard.Handler)
		auth.POST("/register", h.authHandler.Register)
		auth.POST("/login", h.loginLimiter.Middleware("Too many login attempts, please try again later"), h.authHandler.Login)
		auth.POST("/refresh-token", h.authHandler.RefreshToken)
		auth.POST("/logout", h.authHandler.Logout)
		auth.POST("/forgot-password", h.authHandler.ForgotPassword)
		auth.GET("/reset-password/:token", h.authHandler.ValidateResetToken)
		auth.POST("/reset-password/:token", h.authHandler.ResetPassword)
		auth.GET("/google", h.authHandler.GoogleLogin)
		auth.GET("/google/callback", h.authHandler.GoogleCallback)
		auth.GET("/login-failure", h.authHandler.LoginFailure)
		auth.GET("/me", authenticate, h.authHandler.Me)
	}

	// Role demo routes (protected)
	protected := r.Group("/protected")
	protected.Use(authenticate)
	{
		protected.GET("/admin", delivery.Authorize(domain.RoleAdmin), h.dashboardHandler.Admin)
		protected.GET("/moderator", delivery.Authorize(domain.RoleModerator), h.dashboardHandler.Moderator)
		protected.GET("/profile", anyRole, h.dashboardHandler.Profile)
		protected.GET("/dashboard", h.dashboardHandler.RoleDashboard)
	}

	r.GET("/dashboard", authenticate, anyRole, h.dashboardHandler.Dashboard)

	// Profile routes (protected, role User)
	profile := r.Group("/profile")
	profile.Use(authenticate, delivery.Authorize(domain.RoleUser))
	{
		profile.GET("", h.profileHandler.GetProfile)
		profile.POST("/update", h.profileHandler.UpdateProfile)
	}

	// Quest routes: reads are public, writes need a login
	quests := r.Group("/quests")
	{
		quests.GET("", h.questHandler.GetQuests)
		quests.GET("/:id", h.questHandler.GetQuestByID)
		quests.POST("", authenticate, h.questHandler.CreateQuest)
		quests.PUT("/:id", authenticate, h.questHandler.UpdateQuest)
		quests.DELETE("/:id", authenticate, h.questHandler.DeleteQuest)
	}

	// Guild routes: reads are public, deletes are Admin only
	guilds := r.Group("/guilds")
	{
		guilds.GET("", h.guildHandler.GetGuilds)
		guilds.GET("/:id", h.guildHandler.GetGuildByID)
		guilds.POST("", authenticate, h.guildHandler.CreateGuild)
		guilds.DELETE("/:id", authenticate, delivery.Authorize(domain.RoleAdmin), h.guildHandler.DeleteGuild)
	}

	// Push notification targets (protected)
	devices := r.Group("/devices")
	devices.Use(authenticate)
	{
		devices.POST("", h.deviceHandler.Register)
		devices.DELETE("/:token", h.deviceHandler.Unregister)
	}
}
