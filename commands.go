package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/rpupo63/tenant-site-backend/api"
	"github.com/rpupo63/tenant-site-backend/config"
	"github.com/rpupo63/tenant-site-backend/database"
	"github.com/rpupo63/tenant-site-backend/models"
	"github.com/rpupo63/tenant-site-backend/services"
)

type Globals struct {
	Dev     bool
	Version string
}

type ServeCmd struct {
	WithWorker      bool          `help:"Also run the job worker in this process." env:"RUN_WORKER"`
	ShutdownTimeout time.Duration `help:"Time allowed for in-flight requests on shutdown." default:"30s" env:"SHUTDOWN_TIMEOUT"`
}

func (c *ServeCmd) Run(ctx context.Context, globals *Globals) error {
	app, err := bootstrap(ctx, globals)
	if err != nil {
		return err
	}

	svc, err := app.services(ctx)
	if err != nil {
		return err
	}

	server, err := api.NewServer(app.cfg, app.db, svc)
	if err != nil {
		return fmt.Errorf("initialize server: %w", err)
	}

	errChannel := make(chan error, 2)
	go server.Start(errChannel)

	if c.WithWorker {
		worker := app.worker(svc)
		go func() {
			errChannel <- worker.Run(ctx)
		}()
	}

	select {
	case <-ctx.Done():
		log.Info().Msg("Shutdown signal received")
	case err := <-errChannel:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("Server stopped")
		}
	}

	server.ShutdownGracefully(c.ShutdownTimeout)
	return nil
}

type WorkerCmd struct{}

func (c *WorkerCmd) Run(ctx context.Context, globals *Globals) error {
	app, err := bootstrap(ctx, globals)
	if err != nil {
		return err
	}

	svc, err := app.services(ctx)
	if err != nil {
		return err
	}
	return app.worker(svc).Run(ctx)
}

type MigrateCmd struct{}

func (c *MigrateCmd) Run(ctx context.Context, globals *Globals) error {
	app, err := bootstrap(ctx, globals)
	if err != nil {
		return err
	}
	if err := app.db.Migrate(ctx); err != nil {
		return err
	}
	log.Info().Msg("Database schema up to date")
	return nil
}

type SeedCmd struct {
	File string `arg:"" type:"existingfile" help:"YAML seed file."`
}

func (c *SeedCmd) Run(ctx context.Context, globals *Globals) error {
	app, err := bootstrap(ctx, globals)
	if err != nil {
		return err
	}

	f, err := os.Open(c.File)
	if err != nil {
		return err
	}
	defer f.Close()

	seed, err := services.ParseSeed(f)
	if err != nil {
		return err
	}

	svc, err := app.services(ctx)
	if err != nil {
		return err
	}

	return services.Seed(ctx, seed, services.SeedTargets{
		Tenants:  app.db.TenantRepo(),
		Users:    app.db.UserRepo(),
		Pages:    svc.Pages,
		Products: svc.Products,
		Variants: svc.Variants,
		Projects: svc.Projects,
	})
}

type GenerateModelsCmd struct {
	Out string `help:"Output directory for generated query code." default:"./query" type:"path"`
}

func (c *GenerateModelsCmd) Run(ctx context.Context, globals *Globals) error {
	app, err := bootstrap(ctx, globals)
	if err != nil {
		return err
	}
	return models.GenerateModels(app.gormDB, c.Out)
}

type ColumnReportCmd struct{}

func (c *ColumnReportCmd) Run(ctx context.Context, globals *Globals) error {
	app, err := bootstrap(ctx, globals)
	if err != nil {
		return err
	}
	if n := models.GenerateColumnMismatchReport(app.gormDB); n > 0 {
		return fmt.Errorf("%d tables differ from their models", n)
	}
	return nil
}

type application struct {
	cfg    map[string]string
	gormDB *gorm.DB
	db     database.Database
}

// bootstrap loads configuration, sets up logging and connects to PostgreSQL.
func bootstrap(ctx context.Context, globals *Globals) (*application, error) {
	config.LoadDotEnv()
	cfg, err := config.WithSSM(ctx, config.New())
	if err != nil {
		return nil, err
	}

	dev := globals.Dev || config.GetBool(cfg, "DEV", false)
	services.SetupLogger(dev)
	log.Info().Str("version", globals.Version).Msg("Initializing app")

	dsn, err := databaseDSN(cfg)
	if err != nil {
		return nil, err
	}

	gormDB, err := database.Open(database.Config{
		DSN:           dsn,
		ReplicaDSNs:   config.GetStrings(cfg, "DATABASE_REPLICA_URLS"),
		SlowThreshold: config.GetDuration(cfg, "DB_SLOW_THRESHOLD", 10*time.Second),
		MaxOpenConns:  config.GetInt(cfg, "DB_MAX_OPEN_CONNS", 0),
		MaxIdleConns:  config.GetInt(cfg, "DB_MAX_IDLE_CONNS", 0),
	})
	if err != nil {
		return nil, err
	}

	return &application{cfg: cfg, gormDB: gormDB, db: database.New(gormDB)}, nil
}

// databaseDSN prefers DATABASE_URL and falls back to the SUPABASE_DB_* parts.
func databaseDSN(cfg map[string]string) (string, error) {
	if dsn := config.GetString(cfg, "DATABASE_URL", ""); dsn != "" {
		return dsn, nil
	}
	host := config.GetString(cfg, "SUPABASE_DB_HOST", "")
	if host == "" {
		return "", errors.New("DATABASE_URL or SUPABASE_DB_HOST must be set")
	}
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=require",
		host,
		config.GetString(cfg, "SUPABASE_DB_USER", ""),
		config.GetString(cfg, "SUPABASE_DB_PASSWORD", ""),
		config.GetString(cfg, "SUPABASE_DB_NAME", "postgres"),
		config.GetString(cfg, "SUPABASE_DB_PORT", "5432"),
	), nil
}

// services wires the business services. Optional integrations that are not
// configured are left nil.
func (a *application) services(ctx context.Context) (api.Services, error) {
	secret := config.GetString(a.cfg, "JWT_SECRET", "")
	if len(secret) < 32 {
		return api.Services{}, errors.New("JWT_SECRET must be at least 32 characters")
	}

	var (
		email   services.EmailSender
		sms     services.SMSSender
		storage services.ObjectStorage
	)
	if c := services.NewResendClientFromConfig(a.cfg); c != nil {
		email = c
	}
	if c := services.NewTwilioClientFromConfig(a.cfg); c != nil {
		sms = c
	}
	s3Storage, err := services.NewS3StorageFromConfig(ctx, a.cfg)
	if err != nil {
		return api.Services{}, err
	}
	if s3Storage != nil {
		storage = s3Storage
	}

	notifier := services.NewTenantNotifier(email, sms)
	queue := services.NewQueue(a.db.JobRepo())

	return api.Services{
		Auth:        services.NewAuthService(a.db.UserRepo(), secret, config.GetDuration(a.cfg, "JWT_TTL", 12*time.Hour)),
		Orders:      services.NewOrderService(a.db.ProductRepo(), a.db.VariantRepo(), a.db.CustomerRepo(), a.db.OrderRepo(), notifier),
		Products:    services.NewProductService(a.db.ProductRepo(), a.db.VariantRepo()),
		Variants:    services.NewVariantService(a.db.ProductRepo(), a.db.VariantRepo()),
		Projects:    services.NewProjectService(a.db.ProjectRepo(), queue),
		Pages:       services.NewPageService(a.db.PageRepo()),
		Forms:       services.NewFormService(a.db.InquiryRepo(), notifier),
		Theme:       services.NewThemeService(a.db.TenantRepo(), storage, config.GetString(a.cfg, "THEME_CACHE_DIR", ""), config.GetString(a.cfg, "THEME_ASSET_BASE_URL", "")),
		DeployHooks: services.NewDeployHooks(queue, a.db.TenantRepo()),
		Storage:     storage,
	}, nil
}

// worker builds the job worker with every job kind registered.
func (a *application) worker(svc api.Services) *services.Worker {
	worker := services.NewWorker(a.db.JobRepo(), services.WorkerConfig{
		Concurrency:  config.GetInt(a.cfg, "WORKER_CONCURRENCY", 4),
		PollInterval: config.GetDuration(a.cfg, "WORKER_POLL_INTERVAL", 2*time.Second),
		Lease:        config.GetDuration(a.cfg, "WORKER_LEASE", 5*time.Minute),
		BaseDelay:    config.GetDuration(a.cfg, "WORKER_RETRY_BASE", 10*time.Second),
		MaxDelay:     config.GetDuration(a.cfg, "WORKER_RETRY_MAX", time.Hour),
	})
	services.NewHighlightSyncer(a.db.ProjectRepo(), a.db.HighlightRepo()).Register(worker)
	svc.DeployHooks.Register(worker)
	return worker
}
