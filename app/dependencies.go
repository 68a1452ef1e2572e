package app

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/upb/schoolms-api/config"
	"github.com/upb/schoolms-api/internal/observability"
	"github.com/upb/schoolms-api/middleware"
	"github.com/upb/schoolms-api/repositories"
	"github.com/upb/schoolms-api/repositories/postgres"
	"github.com/upb/schoolms-api/services"
	"github.com/upb/schoolms-api/services/activity"
	"github.com/upb/schoolms-api/token"
)

// activityStopTimeout bounds how long Close waits for queued activity entries
const activityStopTimeout = 5 * time.Second

// Dependencies holds all application dependencies.
// This is the central wiring point for dependency injection.
type Dependencies struct {
	// Infrastructure
	Config   *config.Config
	DB       *postgres.DB
	Logger   *zap.Logger
	Registry *prometheus.Registry
	Metrics  *observability.Metrics

	// Repository Factory
	RepoFactory *postgres.RepositoryFactory

	// Repositories
	Repos     *repositories.Repositories
	TxManager repositories.TransactionManager

	// Services
	Tokens         *token.Codec
	Activity       *activity.Service
	Auth           *services.AuthService
	PasswordResets *services.PasswordResetService
	Onboarding     *services.OnboardingService
	Students       *services.StudentService
	Schools        *services.SchoolService
	Profiles       *services.ProfileService
	Webhooks       *services.PaymentWebhookService

	// Security pipeline
	Authenticator *middleware.Authenticator
	AccessPolicy  *middleware.AccessPolicy
	Guards        *middleware.Guards
}

// NewDependencies connects to the database and wires up all application dependencies
func NewDependencies(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Dependencies, error) {
	factory, err := postgres.NewRepositoryFactory(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	deps, err := NewDependenciesFromFactory(ctx, cfg, factory, logger)
	if err != nil {
		_ = factory.Close()
		return nil, err
	}
	return deps, nil
}

// NewDependenciesFromFactory wires the application on top of an existing repository factory
func NewDependenciesFromFactory(ctx context.Context, cfg *config.Config, factory *postgres.RepositoryFactory, logger *zap.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config:      cfg,
		Logger:      logger,
		RepoFactory: factory,
		DB:          factory.GetDB(),
	}

	if err := deps.initDatabase(ctx, cfg); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	deps.initRepositories()
	deps.initMetrics()

	if err := deps.initServices(cfg); err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	if err := deps.initSecurity(); err != nil {
		return nil, fmt.Errorf("failed to initialize security: %w", err)
	}

	logger.Info("all dependencies initialized successfully")
	return deps, nil
}

// initDatabase checks connectivity and creates the schema when enabled
func (d *Dependencies) initDatabase(ctx context.Context, cfg *config.Config) error {
	if err := d.DB.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	if cfg.Database.AutoMigrate {
		if err := d.RepoFactory.InitSchema(ctx); err != nil {
			return fmt.Errorf("failed to initialize schema: %w", err)
		}
	}

	d.Logger.Info("database connection established",
		zap.String("connection", cfg.Database.LogString()))
	return nil
}

// initRepositories initializes all repository instances
func (d *Dependencies) initRepositories() {
	d.Repos = d.RepoFactory.NewRepositories()
	d.TxManager = d.RepoFactory.GetTransactionManager()
	d.Logger.Info("repositories initialized")
}

// initMetrics creates the Prometheus registry with the process and Go collectors
func (d *Dependencies) initMetrics() {
	d.Registry = prometheus.NewRegistry()
	d.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	d.Metrics = observability.NewMetrics(d.Registry)
}

// initServices creates the token codec, the activity pipeline and the domain services
func (d *Dependencies) initServices(cfg *config.Config) error {
	codec, err := token.NewCodec(token.Config{
		Secret: cfg.JWT.Secret,
		Issuer: cfg.JWT.Issuer,
		TTL:    cfg.JWT.Expiration,
		Leeway: cfg.JWT.ClockSkew,
	})
	if err != nil {
		return fmt.Errorf("failed to create token codec: %w", err)
	}
	d.Tokens = codec

	d.Activity = activity.NewService(d.Repos.ActivityLogs, d.Metrics, d.Logger, activity.Config{
		BufferSize:  cfg.Activity.BufferSize,
		WorkerCount: cfg.Activity.WorkerCount,
	})
	if err := d.Activity.Start(); err != nil {
		return fmt.Errorf("failed to start activity service: %w", err)
	}

	repos := d.Repos
	d.Auth = services.NewAuthService(repos.Schools, repos.Users, codec, d.Activity, d.Logger)
	d.PasswordResets = services.NewPasswordResetService(repos.Users, repos.PasswordResets, d.TxManager,
		services.NewLogNotifier(d.Logger), cfg.PasswordReset.TokenTTL, d.Logger)
	d.Onboarding = services.NewOnboardingService(repos.Schools, repos.Users, d.TxManager, codec, d.Activity, d.Logger)
	d.Students = services.NewStudentService(repos.Students, repos.Schools, d.Activity, d.Logger)
	d.Schools = services.NewSchoolService(repos.Schools, d.Logger)
	d.Profiles = services.NewProfileService(repos.Users, repos.Schools, repos.Students, d.Logger)
	d.Webhooks = services.NewPaymentWebhookService(cfg.Payments.WebhookSecret, d.Logger)

	if cfg.Payments.WebhookSecret == "" {
		d.Logger.Warn("payment webhook secret not configured, webhooks will be rejected")
	}

	d.Logger.Info("services initialized")
	return nil
}

// initSecurity builds the authenticator, the path access policy and the operation guards
func (d *Dependencies) initSecurity() error {
	d.Authenticator = middleware.NewAuthenticator(d.Tokens, d.Metrics, d.Logger)

	policy, err := middleware.NewAccessPolicy(middleware.PublicPaths, middleware.DefaultAccessRules(), d.Activity, d.Metrics, d.Logger)
	if err != nil {
		return fmt.Errorf("failed to compile access policy: %w", err)
	}
	d.AccessPolicy = policy
	d.Guards = middleware.NewGuards(d.Activity, d.Metrics, d.Logger)
	return nil
}

// Close gracefully shuts down all dependencies
func (d *Dependencies) Close(ctx context.Context) error {
	d.Logger.Info("shutting down dependencies")

	var errs []error

	// drain queued activity before the pool goes away
	if d.Activity != nil {
		timeout := activityStopTimeout
		if deadline, ok := ctx.Deadline(); ok {
			if remaining := time.Until(deadline); remaining < timeout {
				timeout = remaining
			}
		}
		if err := d.Activity.Stop(timeout); err != nil {
			errs = append(errs, fmt.Errorf("failed to stop activity service: %w", err))
		}
	}

	if d.RepoFactory != nil {
		if err := d.RepoFactory.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		} else {
			d.Logger.Info("database connection closed")
		}
	}

	if d.Logger != nil {
		_ = d.Logger.Sync()
	}

	if len(errs) > 0 {
		return fmt.Errorf("errors during shutdown: %v", errs)
	}

	return nil
}
