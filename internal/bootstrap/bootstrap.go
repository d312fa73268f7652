package bootstrap

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	appAuth "github.com/yigit/unisupport/internal/app/auth"
	appControllers "github.com/yigit/unisupport/internal/app/controllers"
	appMigrations "github.com/yigit/unisupport/internal/app/migrations"
	appRepos "github.com/yigit/unisupport/internal/app/repositories"
	"github.com/yigit/unisupport/internal/app/repositories/memory"
	appRoutes "github.com/yigit/unisupport/internal/app/routes"
	appServices "github.com/yigit/unisupport/internal/app/services"
	"github.com/yigit/unisupport/internal/config"
	"github.com/yigit/unisupport/internal/db"
	appMiddleware "github.com/yigit/unisupport/internal/middleware"
	pkgAuth "github.com/yigit/unisupport/internal/pkg/auth"
	"github.com/yigit/unisupport/internal/pkg/logger"
	"github.com/yigit/unisupport/internal/pkg/sequence"
	"github.com/yigit/unisupport/internal/seed"
)

// Dependencies holds all the application dependencies
type Dependencies struct {
	Repos              *appRepos.Repositories
	Sequences          *sequence.Generator
	JWTService         *pkgAuth.JWTService
	Revocations        pkgAuth.RevocationStore
	AuthzService       *appAuth.AuthorizationService
	AuthService        *appServices.AuthService
	StudentService     appServices.StudentService
	AccountService     appServices.AccountService
	AdminService       appServices.AdminService
	FacultyService     appServices.FacultyService
	ChatService        appServices.ChatService
	IssueService       appServices.IssueService
	FeedbackService    appServices.FeedbackService
	InstructionService appServices.InstructionService
	AuthMiddleware     *appMiddleware.AuthMiddleware
	Controllers        appRoutes.Controllers
	Logger             zerolog.Logger
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger(configPath string) (*config.Config, zerolog.Logger, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	logLevel := logger.LogLevel(strings.ToLower(cfg.Logging.Level))
	lgr := logger.Configure(logger.Config{
		Level:  logLevel,
		Pretty: logger.ParseFormat(cfg.Logging.Format),
	})

	lgr.Info().Str("logLevel", string(logLevel)).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupDatabase connects to Postgres and applies pending migrations. It returns
// nil for the memory driver.
func SetupDatabase(ctx context.Context, cfg *config.Config, lgr zerolog.Logger) (*db.PostgresDB, error) {
	if cfg.UsesMemoryStore() {
		lgr.Warn().Msg("Using in-memory store; data is lost on restart")
		return nil, nil
	}

	database, err := OpenDatabase(ctx, cfg, lgr)
	if err != nil {
		return nil, err
	}

	if err := RunMigrations(ctx, database, lgr, func(ctx context.Context, m *appMigrations.Migrator) error {
		return m.Up(ctx)
	}); err != nil {
		database.Close()
		return nil, err
	}

	return database, nil
}

// OpenDatabase connects to Postgres without touching the schema
func OpenDatabase(ctx context.Context, cfg *config.Config, lgr zerolog.Logger) (*db.PostgresDB, error) {
	lgr.Info().Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(ctx, cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}
	lgr.Info().Msg("Database connection successfully established.")
	return database, nil
}

// RunMigrations opens a migrator over the pool and runs fn with it
func RunMigrations(ctx context.Context, database *db.PostgresDB, lgr zerolog.Logger, fn func(context.Context, *appMigrations.Migrator) error) error {
	migrator, err := appMigrations.NewMigrator(database.Pool, lgr)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}
	defer func() {
		if err := migrator.Close(); err != nil {
			lgr.Warn().Err(err).Msg("Failed to close migrator")
		}
	}()

	if err := fn(ctx, migrator); err != nil {
		lgr.Error().Err(err).Msg("Database migration error")
		return fmt.Errorf("database migrations failed: %w", err)
	}
	return nil
}

// SetupRevocationStore picks where logged-out token ids are kept: Redis when an
// address is configured, process memory otherwise. The returned client is nil
// without Redis.
func SetupRevocationStore(ctx context.Context, cfg *config.Config, lgr zerolog.Logger) (pkgAuth.RevocationStore, *redis.Client, error) {
	if cfg.Redis.Addr == "" {
		lgr.Info().Msg("Redis not configured, keeping revoked sessions in memory")
		return pkgAuth.NewMemoryRevocationStore(), nil, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		lgr.Error().Err(err).Str("addr", cfg.Redis.Addr).Msg("Failed to ping redis")
		return nil, nil, fmt.Errorf("redis ping failed: %w", err)
	}

	lgr.Info().Str("addr", cfg.Redis.Addr).Msg("Session revocation backed by redis")
	return pkgAuth.NewRedisRevocationStore(client), client, nil
}

// BuildDependencies initializes application repositories, services, and controllers.
// database may be nil, in which case the in-memory repositories are used.
func BuildDependencies(cfg *config.Config, database *db.PostgresDB, revocations pkgAuth.RevocationStore, lgr zerolog.Logger) (*Dependencies, error) {
	if database == nil && !cfg.UsesMemoryStore() {
		return nil, fmt.Errorf("database driver %q requires a connection", cfg.Database.Driver)
	}

	deps := &Dependencies{Logger: lgr, Revocations: revocations}

	var pinger appControllers.Pinger
	if database != nil {
		deps.Repos = appRepos.NewRepositories(database.Pool)
		pinger = database
	} else {
		deps.Repos = memory.NewRepositories()
	}

	deps.Sequences = sequence.NewGenerator(deps.Repos.SequenceRepository)
	deps.AuthzService = appAuth.NewAuthorizationService(deps.Repos.ChatRepository, deps.Repos.IssueRepository)
	deps.JWTService = pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:   cfg.JWT.Secret,
		TokenIssuer: cfg.JWT.Issuer,
	})

	deps.StudentService = appServices.NewStudentService(
		deps.Repos.AccountRepository,
		deps.Repos.StudentRepository,
		deps.Sequences,
		deps.AuthzService,
		revocations,
		lgr.With().Str("service", "student").Logger(),
	)
	deps.AccountService = appServices.NewAccountService(deps.Repos.AccountRepository, revocations, lgr.With().Str("service", "account").Logger())
	deps.AdminService = appServices.NewAdminService(
		deps.Repos.AccountRepository,
		deps.Repos.AdminRepository,
		deps.Sequences,
		revocations,
		lgr.With().Str("service", "admin").Logger(),
	)
	deps.FacultyService = appServices.NewFacultyService(
		deps.Repos.AccountRepository,
		deps.Repos.FacultyRepository,
		deps.Sequences,
		revocations,
		lgr.With().Str("service", "faculty").Logger(),
	)
	deps.ChatService = appServices.NewChatService(
		deps.Repos.ChatRepository,
		deps.Repos.ChatMessageRepository,
		deps.Repos.StudentRepository,
		deps.Sequences,
		deps.AuthzService,
		lgr.With().Str("service", "chat").Logger(),
	)
	deps.IssueService = appServices.NewIssueService(
		deps.Repos.IssueRepository,
		deps.Repos.StudentRepository,
		deps.Repos.AdminRepository,
		deps.Repos.ChatRepository,
		deps.Repos.ChatMessageRepository,
		deps.Sequences,
		deps.AuthzService,
		lgr.With().Str("service", "issue").Logger(),
	)
	deps.FeedbackService = appServices.NewFeedbackService(
		deps.Repos.FeedbackRepository,
		deps.Repos.StudentRepository,
		deps.Repos.ChatRepository,
		deps.Repos.ChatMessageRepository,
		lgr.With().Str("service", "feedback").Logger(),
	)
	deps.InstructionService = appServices.NewInstructionService(
		deps.Repos.InstructionRepository,
		deps.Repos.AdminRepository,
		deps.Sequences,
		lgr.With().Str("service", "instruction").Logger(),
	)
	deps.AuthService = appServices.NewAuthService(
		deps.Repos.AccountRepository,
		deps.Repos.StudentRepository,
		deps.StudentService,
		deps.JWTService,
		revocations,
		lgr.With().Str("service", "auth").Logger(),
	)

	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.JWTService, revocations, cfg.Session.CookieName)

	deps.Controllers = appRoutes.Controllers{
		Auth: appControllers.NewAuthController(deps.AuthService, appControllers.CookieSettings{
			Name:   deps.AuthMiddleware.CookieName(),
			Domain: cfg.Session.Domain,
			Secure: cfg.Session.Secure,
		}, lgr),
		Student:     appControllers.NewStudentController(deps.StudentService),
		Admin:       appControllers.NewAdminController(deps.AdminService),
		Faculty:     appControllers.NewFacultyController(deps.FacultyService),
		Account:     appControllers.NewAccountController(deps.AccountService),
		Chat:        appControllers.NewChatController(deps.ChatService),
		Issue:       appControllers.NewIssueController(deps.IssueService),
		Feedback:    appControllers.NewFeedbackController(deps.FeedbackService),
		Instruction: appControllers.NewInstructionController(deps.InstructionService),
		Health:      appControllers.NewHealthController(cfg.Database.Driver, pinger),
	}

	return deps, nil
}

// SeedDefaultAdmin creates the configured bootstrap administrator. Failures are
// logged and returned; startup callers may choose to continue.
func SeedDefaultAdmin(ctx context.Context, cfg *config.Config, deps *Dependencies) error {
	_, err := seed.CreateDefaultAdmin(ctx, deps.Repos.AccountRepository, deps.AdminService, seed.DefaultAdmin{
		Email:    cfg.Seed.AdminEmail,
		Password: cfg.Seed.AdminPassword,
		Name:     cfg.Seed.AdminName,
	}, deps.Logger)
	if err != nil {
		deps.Logger.Error().Err(err).Msg("Failed to create default admin")
	}
	return err
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) (*gin.Engine, error) {
	switch strings.ToLower(cfg.Server.Mode) {
	case "production", "release":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.DebugMode)
	}
	lgr.Info().Str("mode", gin.Mode()).Msg("Gin mode configured")

	if err := appMiddleware.RegisterValidators(); err != nil {
		return nil, fmt.Errorf("register validators: %w", err)
	}

	router := gin.New()
	router.Use(appMiddleware.Recovery())
	router.Use(appMiddleware.RequestLogger(lgr))

	if len(cfg.Server.AllowedOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.Server.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
			ExposeHeaders:    []string{"Content-Length"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	appRoutes.SetupRouter(router, deps.Controllers, deps.AuthMiddleware)

	return router, nil
}
