package bootstrap

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	appControllers "github.com/campusconnect/campusconnect/internal/app/controllers"
	"github.com/campusconnect/campusconnect/internal/app/coordinator"
	appMigrations "github.com/campusconnect/campusconnect/internal/app/migrations"
	appRepos "github.com/campusconnect/campusconnect/internal/app/repositories"
	appRoutes "github.com/campusconnect/campusconnect/internal/app/routes"
	appServices "github.com/campusconnect/campusconnect/internal/app/services"
	"github.com/campusconnect/campusconnect/internal/config"
	"github.com/campusconnect/campusconnect/internal/db"
	appMiddleware "github.com/campusconnect/campusconnect/internal/middleware"
	pkgAuth "github.com/campusconnect/campusconnect/internal/pkg/auth"
	"github.com/campusconnect/campusconnect/internal/pkg/docstore"
	"github.com/campusconnect/campusconnect/internal/pkg/events"
	"github.com/campusconnect/campusconnect/internal/pkg/helpers"
	"github.com/campusconnect/campusconnect/internal/pkg/logger"
	"github.com/campusconnect/campusconnect/internal/pkg/metrics"
	"github.com/campusconnect/campusconnect/internal/pkg/suggest"
	"github.com/campusconnect/campusconnect/internal/pkg/videoroom"
	"github.com/campusconnect/campusconnect/internal/pkg/websocket"
	"github.com/campusconnect/campusconnect/internal/seed"
)

// Storage is the document store together with the resources backing it.
type Storage struct {
	Store    docstore.Store
	Notifier docstore.Notifier
	Database *db.PostgresDB
	Redis    *redis.Client
}

// Close releases the store first, then the connections it used.
func (s *Storage) Close(lgr zerolog.Logger) {
	if closer, ok := s.Store.(interface{ Close() }); ok {
		closer.Close()
	}
	if s.Notifier != nil {
		if err := s.Notifier.Close(); err != nil {
			lgr.Error().Err(err).Msg("Failed to close change notifier")
		}
	}
	if s.Redis != nil {
		if err := s.Redis.Close(); err != nil {
			lgr.Error().Err(err).Msg("Failed to close redis client")
		}
	}
	if s.Database != nil {
		s.Database.Close()
	}
}

// Dependencies holds all the application dependencies
type Dependencies struct {
	Storage   *Storage
	Repos     *appRepos.Repositories
	Services  *appServices.Services
	Publisher events.Publisher
	Rooms     *videoroom.Builder

	JWTService     *pkgAuth.JWTService
	AuthMiddleware *appMiddleware.AuthMiddleware

	ProfileController      *appControllers.ProfileController
	SessionController      *appControllers.SessionController
	CommunityController    *appControllers.CommunityController
	ChatController         *appControllers.ChatController
	NotificationController *appControllers.NotificationController

	Hub       *websocket.Hub
	WSHandler *websocket.Handler

	Logger zerolog.Logger
}

// Close releases the publisher and the storage.
func (d *Dependencies) Close() {
	if d.Publisher != nil {
		if err := d.Publisher.Close(); err != nil {
			d.Logger.Error().Err(err).Msg("Failed to close event publisher")
		}
	}
	if d.Storage != nil {
		d.Storage.Close(d.Logger)
	}
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger() (*config.Config, zerolog.Logger, error) {
	configPath := filepath.Join("configs", "config.yaml")
	if path := os.Getenv("CONFIG_PATH"); path != "" {
		configPath = path
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	logger.Configure(logger.ConfigFromStrings(cfg.Logging.Level, cfg.Logging.Format))

	lgr := logger.Get()
	lgr.Info().
		Str("logLevel", cfg.Logging.Level).
		Str("logFormat", cfg.Logging.Format).
		Str("storeDriver", cfg.Store.Driver).
		Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupStorage opens the configured document store. The postgres driver
// connects, applies migrations and picks Redis for the change feed when it is
// configured.
func SetupStorage(ctx context.Context, cfg *config.Config, lgr zerolog.Logger) (*Storage, error) {
	if cfg.Store.Driver == config.StoreDriverMemory {
		lgr.Info().Msg("Using in-memory document store")
		storage := &Storage{Store: docstore.NewMemoryStore(docstore.WithLogger(logger.Named("docstore")))}
		seedIfEnabled(ctx, cfg, storage.Store, lgr)
		return storage, nil
	}

	lgr.Info().Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}
	storage := &Storage{Database: database}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := database.Pool.Ping(pingCtx); err != nil {
		lgr.Error().Err(err).Msg("Failed to ping database")
		storage.Close(lgr)
		return nil, err
	}
	lgr.Info().Msg("Database connection successfully established.")

	migrationsDir := cfg.Server.MigrationsPath
	if _, err := os.Stat(migrationsDir); os.IsNotExist(err) {
		storage.Close(lgr)
		return nil, fmt.Errorf("migrations directory not found at %s: %w", migrationsDir, err)
	}
	if err := appMigrations.NewMigrator(database.Pool, lgr).MigrateFromDirectory(ctx, migrationsDir); err != nil {
		lgr.Error().Err(err).Msg("Database migration error")
		storage.Close(lgr)
		return nil, fmt.Errorf("database migrations failed: %w", err)
	}
	lgr.Info().Msg("Database migrations successfully applied.")

	storage.Redis, err = db.NewRedisClient(cfg)
	if err != nil {
		storage.Close(lgr)
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	if storage.Redis != nil {
		notifier, err := docstore.NewRedisNotifier(ctx, storage.Redis, cfg.Redis.Channel, logger.Named("notifier"))
		if err != nil {
			storage.Close(lgr)
			return nil, fmt.Errorf("failed to subscribe to change feed: %w", err)
		}
		storage.Notifier = notifier
		lgr.Info().Str("channel", cfg.Redis.Channel).Msg("Change feed over redis")
	} else {
		storage.Notifier = docstore.NewLocalNotifier()
		lgr.Info().Msg("Change feed is process-local")
	}

	storage.Store = docstore.NewPostgresStore(database, storage.Notifier, logger.Named("docstore"))
	seedIfEnabled(ctx, cfg, storage.Store, lgr)
	return storage, nil
}

func seedIfEnabled(ctx context.Context, cfg *config.Config, store docstore.Store, lgr zerolog.Logger) {
	if !cfg.Store.Seed {
		return
	}
	if err := seed.CreateDefaultData(ctx, store, lgr); err != nil {
		lgr.Error().Err(err).Msg("Failed to create default data, proceeding anyway...")
	}
}

// newSuggester returns nil when no API key is configured so the profile
// service reports the feature as unavailable.
func newSuggester(cfg *config.Config, lgr zerolog.Logger) suggest.Suggester {
	if cfg.Suggest.APIKey == "" {
		lgr.Info().Msg("Skill suggestions disabled: no API key")
		return nil
	}
	return suggest.NewClient(suggest.Config{
		Endpoint: cfg.Suggest.Endpoint,
		APIKey:   cfg.Suggest.APIKey,
		Model:    cfg.Suggest.Model,
		Timeout:  helpers.ParseDuration(cfg.Suggest.Timeout, 15*time.Second),
	}, logger.Named("suggest"))
}

// BuildDependencies initializes application repositories, services, and controllers.
func BuildDependencies(cfg *config.Config, storage *Storage, lgr zerolog.Logger) *Dependencies {
	deps := &Dependencies{Storage: storage, Logger: lgr}

	deps.Repos = appRepos.NewRepositories(storage.Store)
	deps.Publisher = events.NewPublisher(cfg.AMQP.URL, cfg.AMQP.Exchange, logger.Named("events"))
	lgr.Info().Str("mode", events.Mode(deps.Publisher)).Msg("Event publisher ready")

	deps.Rooms = videoroom.NewBuilder(cfg.Video.BaseURL, cfg.Video.RoomPrefix)
	deps.Services = appServices.NewServices(deps.Repos, deps.Publisher, newSuggester(cfg, lgr), deps.Rooms, lgr)

	deps.JWTService = pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:   cfg.Identity.Secret,
		TokenIssuer: cfg.Identity.Issuer,
	})
	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.JWTService)

	deps.ProfileController = appControllers.NewProfileController(deps.Services.Profiles)
	deps.SessionController = appControllers.NewSessionController(deps.Services.Sessions)
	deps.CommunityController = appControllers.NewCommunityController(deps.Services.Communities)
	deps.ChatController = appControllers.NewChatController(deps.Services.Chats)
	deps.NotificationController = appControllers.NewNotificationController(deps.Services.Notifications)

	deps.Hub = websocket.NewHub(logger.Named("ws"))
	deps.WSHandler = websocket.NewHandler(deps.Hub, deps.JWTService, coordinator.Deps{
		Repos:        deps.Repos,
		Services:     deps.Services,
		Rooms:        deps.Rooms,
		FeedSize:     cfg.Feed.Size,
		DiscoverSize: cfg.Feed.DiscoverSize,
		Logger:       logger.Named("coordinator"),
	}, logger.Named("ws"))
	deps.WSHandler.AllowOrigins(cfg.Server.AllowedOrigins)

	return deps
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) *gin.Engine {
	if strings.ToLower(cfg.Server.Mode) == "production" {
		gin.SetMode(gin.ReleaseMode)
		lgr.Info().Msg("Setting Gin mode to release")
	} else {
		gin.SetMode(gin.DebugMode)
		lgr.Info().Msg("Setting Gin mode to debug")
	}

	router := gin.New()
	router.Use(gin.Recovery(), appMiddleware.RequestLogger(), metrics.HTTPMetricsMiddleware())

	appRoutes.SetupRouter(router,
		deps.ProfileController,
		deps.SessionController,
		deps.CommunityController,
		deps.ChatController,
		deps.NotificationController,
		deps.WSHandler,
		deps.AuthMiddleware,
	)

	return router
}
