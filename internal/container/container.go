package container

import (
	"log/slog"

	"github.com/Nanpapu/eventhub-sub001/internal/config"
	"github.com/Nanpapu/eventhub-sub001/internal/helpers"
	"github.com/Nanpapu/eventhub-sub001/internal/middleware"
	"github.com/Nanpapu/eventhub-sub001/internal/models"
	"github.com/Nanpapu/eventhub-sub001/internal/queue"
	"github.com/Nanpapu/eventhub-sub001/internal/scheduler"
	"github.com/Nanpapu/eventhub-sub001/internal/services"
	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/redis/go-redis/v9"
	"github.com/supabase-community/supabase-go"
	"go.mongodb.org/mongo-driver/mongo"
)

// Clients are the external connections the container is built from.
// Everything except Mongo is optional.
type Clients struct {
	Mongo      *mongo.Client
	Supabase   *supabase.Client
	Redis      *redis.Client
	Cloudinary *cloudinary.Cloudinary
	Publisher  *queue.Publisher
}

// Container holds all application dependencies
type Container struct {
	Config   *config.Config
	Logger   *slog.Logger
	Verifier *helpers.TokenVerifier

	Indexes     models.IndexRepo
	RateLimiter *middleware.RateLimiter
	Scheduler   *scheduler.Scheduler

	UserService         *services.UserService
	EventService        *services.EventService
	CheckoutService     *services.CheckoutService
	TicketService       *services.TicketService
	NotificationService *services.NotificationService
	SavedEventService   *services.SavedEventService
	ReminderService     *services.ReminderService
}

// NewContainer creates a new dependency injection container
func NewContainer(cfg *config.Config, logger *slog.Logger, verifier *helpers.TokenVerifier, clients Clients) *Container {
	mongoRepo := models.MongodbNewRepo(clients.Mongo, cfg.MongoDBDatabase)

	notifications := services.NewNotificationService(mongoRepo, logger)

	var uploader services.ImageUploader
	if clients.Cloudinary != nil {
		uploader = helpers.NewCloudinaryUploader(clients.Cloudinary, logger)
	}
	// keep the interface nil rather than holding a nil *Publisher
	var publisher services.PurchasePublisher
	if clients.Publisher != nil {
		publisher = clients.Publisher
	}

	var userService *services.UserService
	if clients.Supabase != nil {
		userService = services.NewUserService(models.SupabaseNewRepo(clients.Supabase))
	}

	var locker scheduler.Locker = scheduler.NoopLocker{}
	if clients.Redis != nil {
		locker = scheduler.NewRedisLocker(clients.Redis)
	}
	reminders := services.NewReminderService(mongoRepo, mongoRepo, notifications, cfg.EventTimezone, logger)

	return &Container{
		Config:   cfg,
		Logger:   logger,
		Verifier: verifier,

		Indexes:     mongoRepo,
		RateLimiter: middleware.NewRateLimiter(cfg.RateLimit, clients.Redis, logger),
		Scheduler:   scheduler.New(reminders, locker, cfg.ReminderInterval, logger),

		UserService:         userService,
		EventService:        services.NewEventService(mongoRepo, mongoRepo, mongoRepo, notifications, uploader, logger),
		CheckoutService:     services.NewCheckoutService(mongoRepo, notifications, publisher, logger),
		TicketService:       services.NewTicketService(mongoRepo),
		NotificationService: notifications,
		SavedEventService:   services.NewSavedEventService(mongoRepo, mongoRepo),
		ReminderService:     reminders,
	}
}
