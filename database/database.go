package database

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/plugin/dbresolver"

	"github.com/rpupo63/tenant-site-backend/models"
)

// Config describes the primary database and optional read replicas.
type Config struct {
	DSN           string
	ReplicaDSNs   []string
	SlowThreshold time.Duration
	MaxOpenConns  int
	MaxIdleConns  int
}

type Database struct {
	db            *gorm.DB
	tenantRepo    *TenantRepo
	userRepo      *UserRepo
	productRepo   *ProductRepo
	variantRepo   *VariantRepo
	customerRepo  *CustomerRepo
	orderRepo     *OrderRepo
	inquiryRepo   *InquiryRepo
	projectRepo   *ProjectRepo
	highlightRepo *HighlightRepo
	pageRepo      *PageRepo
	mediaRepo     *MediaRepo
	jobRepo       *JobRepo
}

// Open connects to PostgreSQL and registers replicas for reads when configured.
func Open(cfg Config) (*gorm.DB, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("database DSN is required")
	}
	if cfg.SlowThreshold == 0 {
		cfg.SlowThreshold = 10 * time.Second
	}

	gormLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             cfg.SlowThreshold,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  true,
		},
	)

	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  cfg.DSN,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		PrepareStmt: false,
		Logger:      gormLogger,
	})
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	if len(cfg.ReplicaDSNs) > 0 {
		replicas := make([]gorm.Dialector, 0, len(cfg.ReplicaDSNs))
		for _, dsn := range cfg.ReplicaDSNs {
			replicas = append(replicas, postgres.New(postgres.Config{DSN: dsn, PreferSimpleProtocol: true}))
		}
		if err := db.Use(dbresolver.Register(dbresolver.Config{
			Replicas: replicas,
			Policy:   dbresolver.RandomPolicy{},
		})); err != nil {
			return nil, fmt.Errorf("register read replicas: %w", err)
		}
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql handle: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}

	var result int
	if err := db.Raw("SELECT 1").Scan(&result).Error; err != nil {
		return nil, fmt.Errorf("test database connection: %w", err)
	}

	return db, nil
}

// New initializes a new Database struct with each repository using a shared GORM database instance
func New(db *gorm.DB) Database {
	return Database{
		db:            db,
		tenantRepo:    NewTenantRepo(db),
		userRepo:      NewUserRepo(db),
		productRepo:   NewProductRepo(db),
		variantRepo:   NewVariantRepo(db),
		customerRepo:  NewCustomerRepo(db),
		orderRepo:     NewOrderRepo(db),
		inquiryRepo:   NewInquiryRepo(db),
		projectRepo:   NewProjectRepo(db),
		highlightRepo: NewHighlightRepo(db),
		pageRepo:      NewPageRepo(db),
		mediaRepo:     NewMediaRepo(db),
		jobRepo:       NewJobRepo(db),
	}
}

// Migrate creates or updates every table, then adds the indexes gorm tags can't express.
func (d Database) Migrate(ctx context.Context) error {
	db := d.db.WithContext(ctx)
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS "pgcrypto"`).Error; err != nil {
		return fmt.Errorf("enable pgcrypto: %w", err)
	}
	if err := db.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	stmts := []string{
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_jobs_pending_dedupe ON jobs (dedupe_key) WHERE status = 'pending' AND dedupe_key IS NOT NULL`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_products_tenant_sku_unique ON products (tenant_id, sku) WHERE sku IS NOT NULL AND sku <> ''`,
	}
	for _, stmt := range stmts {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("create index: %w", err)
		}
	}
	return nil
}

// Ping checks the primary connection.
func (d Database) Ping(ctx context.Context) error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Accessor methods for each repository

func (d Database) TenantRepo() *TenantRepo {
	return d.tenantRepo
}

func (d Database) UserRepo() *UserRepo {
	return d.userRepo
}

func (d Database) ProductRepo() *ProductRepo {
	return d.productRepo
}

func (d Database) VariantRepo() *VariantRepo {
	return d.variantRepo
}

func (d Database) CustomerRepo() *CustomerRepo {
	return d.customerRepo
}

func (d Database) OrderRepo() *OrderRepo {
	return d.orderRepo
}

func (d Database) InquiryRepo() *InquiryRepo {
	return d.inquiryRepo
}

func (d Database) ProjectRepo() *ProjectRepo {
	return d.projectRepo
}

func (d Database) HighlightRepo() *HighlightRepo {
	return d.highlightRepo
}

func (d Database) PageRepo() *PageRepo {
	return d.pageRepo
}

func (d Database) MediaRepo() *MediaRepo {
	return d.mediaRepo
}

func (d Database) JobRepo() *JobRepo {
	return d.jobRepo
}
