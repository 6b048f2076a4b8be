// File: /routes/routes.go
package routes

import (
	"net/http"

	"eventhub-api/config"
	"eventhub-api/controllers"
	"eventhub-api/middleware"
	"eventhub-api/models"
	"eventhub-api/repositories"
	"eventhub-api/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const webhookPath = "/api/v1/payments/webhook"

// Services bundles the application services behind the HTTP handlers.
type Services struct {
	Auth       *services.AuthService
	Events     *services.EventService
	Hosts      *services.HostService
	Enrollment *services.EnrollmentService
	Payments   *services.PaymentService
	Reviews    *services.ReviewService
	Tickets    *services.TicketService
}

func NewServices(db *gorm.DB, cfg *config.Config, gateway services.Gateway, notifier services.Notifier) *Services {
	store := repositories.NewStore(db)
	return &Services{
		Auth:       services.NewAuthService(store, cfg.JWTSecret),
		Events:     services.NewEventService(store),
		Hosts:      services.NewHostService(store),
		Enrollment: services.NewEnrollmentService(store, gateway, notifier, cfg.PaymentCurrency, cfg.ReservationTTL),
		Payments:   services.NewPaymentService(store, gateway, notifier),
		Reviews:    services.NewReviewService(store),
		Tickets:    services.NewTicketService(store, cfg.TicketSecret),
	}
}

func SetupRoutes(r *gin.Engine, svc *Services, cfg *config.Config) {
	authController := controllers.NewAuthController(svc.Auth)
	eventController := controllers.NewEventController(svc.Events, svc.Tickets)
	participantController := controllers.NewParticipantController(svc.Enrollment, svc.Payments, svc.Tickets)
	paymentController := controllers.NewPaymentController(svc.Payments)
	reviewController := controllers.NewReviewController(svc.Reviews)
	hostController := controllers.NewHostController(svc.Hosts)

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
			"status":  "healthy",
		})
	})

	// API version 1
	v1 := r.Group("/api/v1")
	v1.Use(middleware.RateLimit(cfg.RateLimitPerMinute, cfg.RateLimitBurst))
	v1.Use(middleware.ValidateJSON(webhookPath))

	// Gateway notifications, authenticated by signature
	v1.POST("/payments/webhook", paymentController.Webhook)

	auth := v1.Group("/auth")
	{
		auth.POST("/register", authController.Register)
		auth.POST("/login", authController.Login)
		auth.POST("/logout", authController.Logout)
	}

	// Public reads
	v1.GET("/events", eventController.GetEvents)
	v1.GET("/events/:id", eventController.GetEvent)
	v1.GET("/hosts/top-rated", hostController.TopRated)
	v1.GET("/hosts/:id", hostController.GetHost)
	v1.GET("/hosts/:id/events", hostController.HostEvents)
	v1.GET("/reviews/:id", reviewController.GetReview)
	v1.GET("/reviews/host/:hostId", reviewController.HostReviews)
	v1.GET("/reviews/event/:eventId", reviewController.EventReviews)

	// Protected routes
	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	{
		events := protected.Group("/events")
		events.Use(middleware.RequireRoles(models.RoleHost, models.RoleAdmin))
		{
			events.POST("", eventController.CreateEvent)
			events.PUT("/:id", eventController.UpdateEvent)
			events.PATCH("/:id/status", eventController.UpdateEventStatus)
			events.DELETE("/:id", eventController.DeleteEvent)
			events.POST("/:id/check-in", eventController.CheckIn)
		}

		participants := protected.Group("/participants")
		{
			participants.POST("/join", participantController.JoinEvent)
			participants.POST("/confirm-payment", participantController.ConfirmPayment)
			participants.DELETE("/leave/:eventId", participantController.LeaveEvent)
			participants.GET("/my-events", participantController.MyEvents)
			participants.GET("/event/:eventId", participantController.EventParticipants)
			participants.GET("/ticket/:eventId", participantController.Ticket)
		}

		reviews := protected.Group("/reviews")
		{
			reviews.POST("", reviewController.CreateReview)
			reviews.GET("/mine", reviewController.MyReviews)
			reviews.PUT("/:id", reviewController.UpdateReview)
			reviews.DELETE("/:id", reviewController.DeleteReview)
		}

		protected.GET("/payments/mine", paymentController.MyPayments)
		protected.GET("/hosts/me", middleware.RequireRoles(models.RoleHost, models.RoleAdmin), hostController.MyProfile)
	}
}
