package product

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"github.com/go-monolith/mono/pkg/types"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Config selects the database the product module connects to.
type Config struct {
	// Driver is one of "sqlite", "mysql" or "postgres".
	Driver string
	// DSN is a file path for sqlite, a connection string otherwise.
	DSN   string
	Debug bool
}

// ProductModule owns the product catalog storage and lifecycle.
type ProductModule struct {
	config  Config
	db      *gorm.DB
	repo    *Repository
	service *Service
	logger  types.Logger
}

// Compile-time interface checks.
var _ mono.Module = (*ProductModule)(nil)
var _ mono.ServiceProviderModule = (*ProductModule)(nil)
var _ mono.HealthCheckableModule = (*ProductModule)(nil)

// NewModule creates a new ProductModule.
func NewModule(config Config, logger types.Logger) *ProductModule {
	return &ProductModule{
		config: config,
		logger: logger,
	}
}

// Name returns the module name.
func (m *ProductModule) Name() string {
	return "product"
}

// Service returns the lifecycle service. It is nil until the module has started.
func (m *ProductModule) Service() *Service {
	return m.service
}

// Health performs a health check on the product module.
func (m *ProductModule) Health(ctx context.Context) mono.HealthStatus {
	if m.db == nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: "database not initialized",
		}
	}

	sqlDB, err := m.db.DB()
	if err != nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: fmt.Sprintf("failed to get sql.DB: %v", err),
		}
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: fmt.Sprintf("database ping failed: %v", err),
		}
	}

	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"driver": m.config.Driver,
		},
	}
}

// RegisterServices exposes read-only product queries to other modules as
// services.product.get and services.product.list.
func (m *ProductModule) RegisterServices(container mono.ServiceContainer) error {
	if err := helper.RegisterTypedRequestReplyService(
		container, "get", json.Unmarshal, json.Marshal, m.getProduct,
	); err != nil {
		return fmt.Errorf("failed to register get service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "list", json.Unmarshal, json.Marshal, m.listProducts,
	); err != nil {
		return fmt.Errorf("failed to register list service: %w", err)
	}

	m.logger.Info("Registered services", "services", "services.product.{get,list}")
	return nil
}

// Start connects to the database, runs migrations and builds the service.
func (m *ProductModule) Start(_ context.Context) error {
	dialector, err := openDialector(m.config)
	if err != nil {
		return err
	}

	logLevel := logger.Silent
	if m.config.Debug {
		logLevel = logger.Info
	}

	m.logger.Info("Connecting to database", "driver", m.config.Driver)
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	m.db = db

	m.repo = NewRepository(m.db)
	if err := m.repo.Migrate(); err != nil {
		return err
	}
	m.service = NewService(m.repo, m.logger)

	m.logger.Info("Product module started")
	return nil
}

// Stop closes the database connection.
func (m *ProductModule) Stop(_ context.Context) error {
	if m.db == nil {
		return nil
	}

	sqlDB, err := m.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB: %w", err)
	}

	if err := sqlDB.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	m.logger.Info("Database connection closed")
	return nil
}

func openDialector(config Config) (gorm.Dialector, error) {
	switch config.Driver {
	case "", "sqlite":
		return sqlite.Open(config.DSN), nil
	case "mysql":
		return mysql.Open(config.DSN), nil
	case "postgres":
		return postgres.Open(config.DSN), nil
	}
	return nil, fmt.Errorf("unsupported database driver %q", config.Driver)
}
