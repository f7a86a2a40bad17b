package routes

import (
	"time"

	"github.com/Nanpapu/eventhub-sub001/internal/container"
	"github.com/Nanpapu/eventhub-sub001/internal/handlers"
	"github.com/Nanpapu/eventhub-sub001/internal/middleware"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// SetupRoutes configures all routes with the dependency container
func SetupRoutes(c *container.Container) *gin.Engine {
	if c.Config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     c.Config.CorsOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.Use(middleware.RequestID())
	r.Use(middleware.StructuredLogger(c.Logger))
	r.Use(middleware.ErrorHandler(c.Logger))
	r.Use(gin.Recovery())

	secure := c.Config.IsProduction()
	auth := middleware.AuthMiddleware(c.Verifier, c.Logger)

	v1 := r.Group("/api/v1")
	{
		v1.GET("/health", func(ctx *gin.Context) {
			ctx.JSON(200, gin.H{
				"status":  "OK",
				"service": "eventhub-api",
			})
		})

		v1.GET("/events", handlers.ListEvents(c.EventService))
		v1.GET("/events/:id", handlers.GetEvent(c.EventService))

		if c.UserService != nil {
			v1.POST("/signup", handlers.Signup(c.UserService))
			v1.POST("/login", handlers.Login(c.UserService, secure))
			v1.POST("/refresh", handlers.RefreshToken(c.UserService, secure))
		}
		v1.POST("/logout", handlers.Logout(secure))
	}

	protected := v1.Group("/")
	protected.Use(auth)

	protected.GET("/users/me", handlers.Profile())
	protected.GET("/users/me/saved-events", handlers.SavedEvents(c.SavedEventService))

	events := protected.Group("/events")
	{
		events.POST("", handlers.CreateEvent(c.EventService))
		events.PATCH("/:id", handlers.UpdateEvent(c.EventService))
		events.POST("/:id/publish", handlers.PublishEvent(c.EventService))
		events.POST("/:id/cancel", handlers.CancelEvent(c.EventService))
		events.POST("/:id/save", handlers.SaveEvent(c.SavedEventService))
		events.DELETE("/:id/save", handlers.UnsaveEvent(c.SavedEventService))
	}

	protected.POST("/checkout/process-payment",
		c.RateLimiter.Middleware(),
		handlers.ProcessPayment(c.CheckoutService),
	)

	tickets := protected.Group("/tickets")
	{
		tickets.GET("/my-tickets", handlers.MyTickets(c.TicketService))
		tickets.GET("/status/:eventId", handlers.FreeTicketStatus(c.TicketService))
		tickets.GET("/:id", handlers.GetTicket(c.TicketService))
	}
	protected.GET("/registrations/my", handlers.MyRegistrations(c.TicketService))

	notifications := protected.Group("/notifications")
	{
		notifications.GET("", handlers.ListNotifications(c.NotificationService))
		notifications.GET("/unread-count", handlers.UnreadCount(c.NotificationService))
		notifications.POST("/read-all", handlers.MarkAllNotificationsRead(c.NotificationService))
		notifications.POST("/:id/read", handlers.MarkNotificationRead(c.NotificationService))
		notifications.DELETE("/:id", handlers.DeleteNotification(c.NotificationService))
		notifications.DELETE("", handlers.DeleteReadNotifications(c.NotificationService))
	}

	return r
}
