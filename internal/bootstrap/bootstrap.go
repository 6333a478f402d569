package bootstrap

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	appAuth "github.com/yigit/campusconnect/internal/app/auth"
	appControllers "github.com/yigit/campusconnect/internal/app/controllers"
	appMigrations "github.com/yigit/campusconnect/internal/app/migrations"
	appRepos "github.com/yigit/campusconnect/internal/app/repositories"
	appRoutes "github.com/yigit/campusconnect/internal/app/routes"
	appServices "github.com/yigit/campusconnect/internal/app/services"
	"github.com/yigit/campusconnect/internal/config"
	"github.com/yigit/campusconnect/internal/db"
	appMiddleware "github.com/yigit/campusconnect/internal/middleware"
	pkgAuth "github.com/yigit/campusconnect/internal/pkg/auth"
	"github.com/yigit/campusconnect/internal/pkg/email"
	"github.com/yigit/campusconnect/internal/pkg/filestorage"
	"github.com/yigit/campusconnect/internal/pkg/helpers"
	"github.com/yigit/campusconnect/internal/pkg/logger"
	"github.com/yigit/campusconnect/internal/pkg/validation"
	"github.com/yigit/campusconnect/internal/pkg/websocket"
	"github.com/yigit/campusconnect/internal/seed"
)

const uploadsURLPrefix = "/uploads"

// Dependencies holds all the application dependencies
type Dependencies struct {
	Repos       *appRepos.Repositories
	JWTService  *pkgAuth.JWTService
	AuthService *appServices.AuthService

	AuthMiddleware *appMiddleware.AuthMiddleware
	Controllers    appRoutes.Controllers

	Hub         *websocket.Hub
	FileStorage *filestorage.LocalStorage
	Logger      zerolog.Logger
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger() (*config.Config, zerolog.Logger, error) {
	configPath := filepath.Join("configs", "config.yaml")
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	lgr := logger.Configure(logger.ConfigFrom(cfg.Logging.Level, cfg.Logging.Format))
	lgr.Info().Str("logLevel", cfg.Logging.Level).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupDatabase establishes the database connection, runs migrations and
// seeds the badge catalog.
func SetupDatabase(cfg *config.Config, lgr zerolog.Logger) (*pgxpool.Pool, error) {
	lgr.Info().Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}
	dbPool := database.Pool
	lgr.Info().Msg("Database connection successfully established.")

	migrationsDir := cfg.Database.MigrationsDir
	if _, err := os.Stat(migrationsDir); os.IsNotExist(err) {
		dbPool.Close()
		lgr.Error().Str("path", migrationsDir).Msg("Migrations directory not found")
		return nil, fmt.Errorf("migrations directory not found at %s: %w", migrationsDir, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	lgr.Info().Msg("Running database migrations...")
	migrator := appMigrations.NewMigrator(dbPool, lgr)
	if err := migrator.MigrateFromDirectory(ctx, migrationsDir); err != nil {
		dbPool.Close()
		lgr.Error().Err(err).Msg("Database migration error")
		return nil, fmt.Errorf("database migrations failed: %w", err)
	}
	lgr.Info().Msg("Database migrations successfully applied.")

	if err := seed.CreateDefaultData(ctx, appRepos.NewBadgeRepository(dbPool), lgr); err != nil {
		lgr.Error().Err(err).Msg("Failed to create default data, proceeding anyway...")
	}

	return dbPool, nil
}

// BuildDependencies initializes repositories, services and controllers. The
// websocket hub runs until ctx is cancelled.
func BuildDependencies(ctx context.Context, cfg *config.Config, dbPool *pgxpool.Pool, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{Logger: lgr}
	deps.Repos = appRepos.NewRepositories(dbPool)
	repos := deps.Repos

	var err error
	deps.FileStorage, err = filestorage.NewLocalStorage(cfg.Server.StoragePath, uploadsURLPrefix)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to initialize file storage")
		return nil, fmt.Errorf("failed to initialize file storage: %w", err)
	}

	emailRule := validation.NewCollegeEmailRule(cfg.Auth.AllowedEmailDomains)
	if err := appMiddleware.RegisterValidators(emailRule); err != nil {
		return nil, fmt.Errorf("failed to register validators: %w", err)
	}

	deps.JWTService = pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:      cfg.JWT.Secret,
		AccessTokenExp: helpers.ParseDuration(cfg.JWT.AccessTokenExpiration, 7*24*time.Hour),
		TokenIssuer:    cfg.JWT.Issuer,
	})

	mailer := email.NewEmailService(email.SMTPConfig{
		Host:      cfg.SMTP.Host,
		Port:      cfg.SMTP.Port,
		Username:  cfg.SMTP.Username,
		Password:  cfg.SMTP.Password,
		FromName:  cfg.SMTP.FromName,
		FromEmail: cfg.SMTP.FromEmail,
		UseTLS:    cfg.SMTP.UseTLS,
		BaseURL:   cfg.PublicBaseURL(),
	}, lgr)

	deps.AuthService = appServices.NewAuthService(
		repos.UserRepository,
		deps.JWTService,
		mailer,
		appServices.AuthOptions{
			EmailRule:               emailRule,
			MinPasswordLength:       cfg.Auth.MinPasswordLength,
			ExposeVerificationToken: cfg.Auth.ExposeVerificationToken,
		},
		lgr,
	)

	deps.Hub = websocket.NewHub(lgr)
	go deps.Hub.Run(ctx)

	authz := appAuth.NewAuthorizationService(repos.WorkshopRepository)

	userService := appServices.NewUserService(repos.UserRepository, repos.ConnectionRepository, repos.PostRepository, deps.FileStorage, logger.Component("users"))
	connectionService := appServices.NewConnectionService(repos.ConnectionRepository, repos.UserRepository, logger.Component("connections"))
	messageService := appServices.NewMessageService(repos.MessageRepository, repos.ConnectionRepository, repos.UserRepository, logger.Component("messages"))
	workshopService := appServices.NewWorkshopService(repos.WorkshopRepository, authz, deps.Hub, logger.Component("workshops"))
	chatService := appServices.NewWorkshopChatService(repos.WorkshopRepository, authz, deps.Hub, logger.Component("workshop-chat"))
	badgeService := appServices.NewBadgeService(repos.BadgeRepository, repos.UserRepository, logger.Component("badges"))
	postService := appServices.NewPostService(repos.PostRepository, deps.FileStorage, logger.Component("posts"))
	presenceService := appServices.NewPresenceService(repos.UserRepository, logger.Component("presence"))
	chatbotService := appServices.NewChatbotService(appServices.ChatbotConfig{
		APIKey:   cfg.Chatbot.APIKey,
		Endpoint: cfg.Chatbot.Endpoint,
		Model:    cfg.Chatbot.Model,
		Referer:  cfg.Chatbot.Referer,
		Timeout:  cfg.Chatbot.Timeout,
	}, nil, logger.Component("chatbot"))
	if !chatbotService.Enabled() {
		lgr.Warn().Msg("Chatbot API key not set, assistant endpoint will answer 503")
	}

	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.JWTService, deps.AuthService)

	socketHandler := websocket.NewHandler(
		deps.Hub,
		chatService,
		websocket.NewMessageHandler(chatService, deps.AuthService, lgr),
		websocket.NewUpgrader(cfg.Server.AllowedOrigins),
		appMiddleware.HandleAPIError,
		lgr,
	)

	deps.Controllers = appRoutes.Controllers{
		Auth:           appControllers.NewAuthController(deps.AuthService, lgr),
		User:           appControllers.NewUserController(userService, lgr),
		Connection:     appControllers.NewConnectionController(connectionService, lgr),
		Message:        appControllers.NewMessageController(messageService, lgr),
		Workshop:       appControllers.NewWorkshopController(workshopService, lgr),
		Chat:           appControllers.NewChatController(chatService, lgr),
		Badge:          appControllers.NewBadgeController(badgeService, lgr),
		Post:           appControllers.NewPostController(postService, lgr),
		Presence:       appControllers.NewPresenceController(presenceService, lgr),
		Chatbot:        appControllers.NewChatbotController(chatbotService, lgr),
		WorkshopSocket: socketHandler.HandleConnection,
	}

	return deps, nil
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
		lgr.Info().Msg("Setting Gin mode to release")
	} else {
		gin.SetMode(gin.DebugMode)
		lgr.Info().Msg("Setting Gin mode to debug")
	}

	router := gin.New()
	router.Use(
		appMiddleware.Recovery(),
		appMiddleware.RequestLogger(lgr),
		appMiddleware.CORS(cfg.Server.AllowedOrigins),
	)
	router.MaxMultipartMemory = filestorage.MaxImageSize + 1<<20

	router.Static(uploadsURLPrefix, deps.FileStorage.BasePath())

	appRoutes.SetupRouter(router, deps.Controllers, deps.AuthMiddleware)

	return router
}
