package bootstrap

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	appControllers "github.com/tarcin/docissuer/internal/app/controllers"
	appMigrations "github.com/tarcin/docissuer/internal/app/migrations"
	appRepos "github.com/tarcin/docissuer/internal/app/repositories"
	appRoutes "github.com/tarcin/docissuer/internal/app/routes"
	appServices "github.com/tarcin/docissuer/internal/app/services"
	"github.com/tarcin/docissuer/internal/config"
	"github.com/tarcin/docissuer/internal/db"
	appMiddleware "github.com/tarcin/docissuer/internal/middleware"
	pkgAuth "github.com/tarcin/docissuer/internal/pkg/auth"
	"github.com/tarcin/docissuer/internal/pkg/filestorage"
	"github.com/tarcin/docissuer/internal/pkg/logger"
	"github.com/tarcin/docissuer/internal/pkg/pdfgen"
	"github.com/tarcin/docissuer/internal/pkg/validation"
	"github.com/tarcin/docissuer/internal/seed"
)

// DefaultConfigPath is read when CONFIG_PATH is unset
const DefaultConfigPath = "configs/config.yaml"

// Dependencies holds all the application dependencies
type Dependencies struct {
	Repos       *appRepos.Repositories
	JWTService  *pkgAuth.JWTService
	FileStorage *filestorage.LocalStorage
	Generator   *pdfgen.Generator
	Allocator   *appServices.SequenceAllocator

	AuthService        *appServices.AuthService
	CertificateService *appServices.CertificateService
	LetterService      *appServices.LetterService
	ImportService      *appServices.ImportService
	BatchService       *appServices.BatchService
	DocumentService    *appServices.DocumentService
	StatsService       *appServices.StatsService

	AuthMiddleware *appMiddleware.AuthMiddleware
	Controllers    appRoutes.Controllers
	Logger         zerolog.Logger
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger() (*config.Config, zerolog.Logger, error) {
	configPath := config.GetEnv("CONFIG_PATH", filepath.FromSlash(DefaultConfigPath))
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Str("path", configPath).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	lgr := logger.Configure(logger.Config{
		Level:   logger.ParseLevel(cfg.Logging.Level),
		Pretty:  strings.ToLower(cfg.Logging.Format) == "text",
		Service: "docissuer",
	})
	lgr.Info().Str("logLevel", cfg.Logging.Level).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupDatabase establishes the database connection and runs migrations.
func SetupDatabase(ctx context.Context, cfg *config.Config, lgr zerolog.Logger) (*pgxpool.Pool, error) {
	lgr.Info().Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}
	pool := database.Pool

	if err := RunMigrations(ctx, pool, cfg.Server.MigrationsDir, lgr); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}

// RunMigrations applies every pending SQL file in dir
func RunMigrations(ctx context.Context, pool *pgxpool.Pool, dir string, lgr zerolog.Logger) error {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		lgr.Error().Str("path", dir).Msg("Migrations directory not found")
		return fmt.Errorf("migrations directory not found at %s: %w", dir, err)
	}

	lgr.Info().Str("path", dir).Msg("Running database migrations...")
	applied, err := appMigrations.NewMigrator(pool, lgr).MigrateFromDirectory(ctx, dir)
	if err != nil {
		lgr.Error().Err(err).Msg("Database migration error")
		return fmt.Errorf("database migrations failed: %w", err)
	}
	lgr.Info().Int("applied", applied).Msg("Database migrations complete")
	return nil
}

// NewGenerator builds the PDF generator from the documents config section
func NewGenerator(cfg *config.Config) (*pdfgen.Generator, error) {
	return pdfgen.NewGenerator(pdfgen.Options{
		AssetsDir:     cfg.Documents.AssetsDir,
		TemplatesDir:  cfg.Documents.TemplatesDir,
		Organization:  cfg.Documents.Organization,
		VerifyBaseURL: cfg.Documents.VerifyBaseURL,
	})
}

// NewAllocator builds the sequence allocator from the sequence config section
func NewAllocator(cfg *config.Config, store appServices.SequenceStore, lgr zerolog.Logger) *appServices.SequenceAllocator {
	return appServices.NewSequenceAllocator(store, lgr, appServices.AllocatorOptions{
		MaxAttempts:    cfg.Sequence.MaxAttempts,
		ConflictPolicy: cfg.Sequence.ConflictPolicy,
	})
}

// NewJWTService builds the token service from the jwt config section
func NewJWTService(cfg *config.Config) *pkgAuth.JWTService {
	return pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:      cfg.JWT.Secret,
		AccessTokenExp: cfg.AccessTokenTTL(),
		TokenIssuer:    cfg.JWT.Issuer,
	})
}

// NewPasswordHasher builds the bcrypt hasher from the auth config section
func NewPasswordHasher(cfg *config.Config) *pkgAuth.PasswordHasher {
	return pkgAuth.NewPasswordHasher(cfg.Auth.BcryptCost)
}

// BuildDependencies initializes application repositories, services, and controllers.
func BuildDependencies(cfg *config.Config, pool *pgxpool.Pool, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{Logger: lgr}
	deps.Repos = appRepos.NewRepositories(pool)

	var err error
	deps.FileStorage, err = filestorage.NewLocalStorage(cfg.Server.StoragePath)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to initialize file storage")
		return nil, fmt.Errorf("failed to initialize file storage: %w", err)
	}

	deps.Generator, err = NewGenerator(cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to load letter templates")
		return nil, fmt.Errorf("failed to initialize pdf generator: %w", err)
	}

	deps.JWTService = NewJWTService(cfg)
	deps.Allocator = NewAllocator(cfg, deps.Repos.SequenceRepository, lgr)
	prefix := cfg.Sequence.IDPrefix

	deps.AuthService = appServices.NewAuthService(deps.Repos.UserRepository, deps.JWTService, NewPasswordHasher(cfg), lgr)
	deps.CertificateService = appServices.NewCertificateService(deps.Repos.CertificateRepository, deps.Allocator, prefix, lgr)
	deps.LetterService = appServices.NewLetterService(deps.Repos.LetterRepository, lgr)
	deps.ImportService = appServices.NewImportService(deps.Repos.BatchRepository, deps.Allocator, deps.FileStorage, prefix, lgr)
	deps.BatchService = appServices.NewBatchService(deps.Repos.BatchRepository, deps.Repos.CertificateRepository, deps.Repos.LetterRepository, deps.FileStorage)
	deps.DocumentService = appServices.NewDocumentService(
		deps.Repos.CertificateRepository,
		deps.Repos.LetterRepository,
		deps.Repos.BatchRepository,
		deps.Repos.StatsRepository,
		deps.Generator,
		lgr,
	)
	deps.StatsService = appServices.NewStatsService(deps.Repos.StatsRepository)

	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.JWTService, cfg.Auth.StaticToken)

	maxUpload := cfg.Import.MaxUploadBytes
	deps.Controllers = appRoutes.Controllers{
		Auth:         appControllers.NewAuthController(deps.AuthService),
		Certificates: appControllers.NewCertificateController(deps.CertificateService, deps.ImportService, deps.DocumentService, maxUpload),
		Letters:      appControllers.NewLetterController(deps.LetterService, deps.ImportService, deps.DocumentService, maxUpload),
		Batches:      appControllers.NewBatchController(deps.BatchService, deps.DocumentService),
		Stats:        appControllers.NewStatsController(deps.StatsService, pool),
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := seed.CreateDefaultData(ctx, deps.AuthService, cfg.Auth.DefaultUsername, cfg.Auth.DefaultPassword, lgr); err != nil {
		lgr.Error().Err(err).Msg("Failed to create default data, proceeding anyway...")
	}

	return deps, nil
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

	appMiddleware.UseJSONFieldNames()
	if err := validation.RegisterWithGin(); err != nil {
		lgr.Fatal().Err(err).Msg("Failed to register validation rules")
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(appMiddleware.RequestLogger(lgr))
	router.Use(appMiddleware.CORS(cfg.Server.AllowedOrigins, cfg.AllowsAnyOrigin()))
	router.MaxMultipartMemory = cfg.Import.MaxUploadBytes

	appRoutes.SetupRouter(router, deps.Controllers, deps.AuthMiddleware)
	return router
}
