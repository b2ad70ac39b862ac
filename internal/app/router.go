package app

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"eventdesk.io/eventdesk/internal/api/handlers"
	"eventdesk.io/eventdesk/internal/api/middleware"
	"eventdesk.io/eventdesk/internal/config"
	"eventdesk.io/eventdesk/internal/repository"
)

func newRouter(cfg *config.Config, server *handlers.Server, signingKey []byte, users repository.UserRepository) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestID(), corsMiddleware(cfg.CORS), middleware.ErrorHandler())

	api := router.Group("/api/v1")
	api.GET("/health", server.Health)
	api.POST("/auth/login", server.Login)

	// Public catalog, no authentication.
	public := api.Group("/public/events")
	public.GET("/upcoming", server.PublicUpcomingEvents)
	public.GET("/featured", server.PublicFeaturedEvents)
	public.GET("/category/:category", server.PublicEventsByCategory)
	public.GET("/slug/:slug", server.PublicEventBySlug)
	public.POST("/:id/register", server.Register)

	admin := api.Group("", middleware.JWTAuth(signingKey), middleware.LoadPrincipal(users))

	admin.POST("/auth/logout", server.Logout)
	admin.GET("/auth/me", server.Me)

	events := admin.Group("/events")
	events.GET("", server.ListEvents)
	events.GET("/stats", server.EventStats)
	events.GET("/:id", server.GetEvent)
	events.GET("/:id/occurrences", server.EventOccurrences)
	events.POST("", server.CreateEvent)
	events.PUT("/:id", server.UpdateEvent)
	events.PUT("/:id/status", server.ChangeEventStatus)
	events.PUT("/:id/restore", server.RestoreEvent)
	events.POST("/:id/duplicate", server.DuplicateEvent)
	events.DELETE("/:id", server.DeleteEvent)
	events.DELETE("/:id/permanent", server.PermanentDeleteEvent)

	regs := admin.Group("/registrations")
	regs.GET("", server.ListRegistrations)
	regs.GET("/stats", server.RegistrationStats)
	regs.GET("/export", server.ExportRegistrations)
	regs.GET("/event/:eventId", server.ListRegistrationsByEvent)
	regs.PUT("/bulk-status", server.BulkChangeRegistrationStatus)
	regs.GET("/:id", server.GetRegistration)
	regs.PUT("/:id", server.UpdateRegistration)
	regs.PUT("/:id/status", server.ChangeRegistrationStatus)
	regs.DELETE("/:id", server.DeleteRegistration)
	regs.DELETE("/:id/permanent", server.PermanentDeleteRegistration)

	accounts := admin.Group("/users", middleware.RequireSuperAdmin())
	accounts.GET("", server.ListUsers)
	accounts.GET("/:id", server.GetUser)
	accounts.POST("", server.CreateUser)
	accounts.PUT("/:id", server.UpdateUser)
	accounts.DELETE("/:id", server.DeactivateUser)
	accounts.DELETE("/:id/permanent", server.PermanentDeleteUser)

	activity := admin.Group("/activity-logs", middleware.RequireSuperAdmin())
	activity.GET("", server.ListActivity)
	activity.GET("/stats", server.ActivityStats)

	return router
}

func corsMiddleware(cfg config.CORSConfig) gin.HandlerFunc {
	return cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Disposition", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	})
}
