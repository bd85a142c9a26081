// internal/database/connection.go
package database

import (
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/exportplatform/export-api/internal/config"
	"github.com/exportplatform/export-api/internal/models"
)

const uniqueViolation = "23505"

func Initialize(cfg config.DatabaseConfig) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), GormConfig(cfg.LogLevel))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Get underlying sql.DB
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	// Configure connection pool
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.MaxLifetime) * time.Second)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logrus.Info("Database connection established")
	return db, nil
}

// GormConfig is shared by the production driver and the test driver.
func GormConfig(logLevel string) *gorm.Config {
	mode := logger.Silent
	switch logLevel {
	case "info":
		mode = logger.Info
	case "warn":
		mode = logger.Warn
	case "error":
		mode = logger.Error
	}

	return &gorm.Config{
		Logger:         logger.Default.LogMode(mode),
		TranslateError: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	}
}

func Close(db *gorm.DB) {
	sqlDB, err := db.DB()
	if err != nil {
		logrus.WithError(err).Error("Error getting underlying sql.DB")
		return
	}

	if err := sqlDB.Close(); err != nil {
		logrus.WithError(err).Error("Error closing database connection")
	} else {
		logrus.Info("Database connection closed")
	}
}

// Migrate creates or updates every table. It is dialect neutral.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

func RunMigrations(db *gorm.DB) error {
	logrus.Info("Running database migrations...")

	if err := Migrate(db); err != nil {
		return err
	}

	if db.Dialector.Name() == "postgres" {
		createIndexes(db)
	}

	logrus.Info("Database migrations completed")
	return nil
}

func createIndexes(db *gorm.DB) {
	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_users_company_role ON users(company_id, role)",
		"CREATE INDEX IF NOT EXISTS idx_companies_status_country ON companies(status, country)",
		"CREATE INDEX IF NOT EXISTS idx_companies_languages ON companies USING GIN(languages)",
		"CREATE INDEX IF NOT EXISTS idx_companies_name_lower ON companies(LOWER(name))",
		"CREATE INDEX IF NOT EXISTS idx_company_views_company_created ON company_views(company_id, created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_messages_chat_created ON messages(chat_id, created_at)",
		"CREATE INDEX IF NOT EXISTS idx_messages_company_created ON messages(company_id, created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_notifications_user_read ON notifications(user_id, read, created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_audit_logs_resource ON audit_logs(resource_type, resource_id)",
		"CREATE INDEX IF NOT EXISTS idx_audit_logs_created ON audit_logs(created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_companies_search ON companies USING GIN(to_tsvector('simple', name || ' ' || description))",
	}

	for _, index := range indexes {
		if err := db.Exec(index).Error; err != nil {
			// Continue with other indexes instead of failing completely
			logrus.WithError(err).WithField("statement", index).Warn("Failed to create index")
		}
	}
}

// SeedInitialData creates the platform administrator and the shared
// catalog categories on an empty database.
func SeedInitialData(db *gorm.DB, cfg config.AdminSeedConfig) error {
	if cfg.Email != "" && cfg.Password != "" {
		var adminCount int64
		if err := db.Model(&models.User{}).Where("role = ?", models.RoleAdmin).Count(&adminCount).Error; err != nil {
			return fmt.Errorf("failed to count admins: %w", err)
		}

		if adminCount == 0 {
			admin := &models.User{
				Name:   "Administrator",
				Email:  cfg.Email,
				Role:   models.RoleAdmin,
				Status: models.UserStatusActive,
			}
			if err := admin.SetPassword(cfg.Password); err != nil {
				return fmt.Errorf("failed to set admin password: %w", err)
			}
			if err := db.Create(admin).Error; err != nil {
				return fmt.Errorf("failed to create admin user: %w", err)
			}
			logrus.WithField("email", cfg.Email).Info("Default admin user created")
		}
	}

	defaultCategories := []models.Category{
		{Name: "Passenger cars", Slug: "passenger-cars"},
		{Name: "Premium", Slug: "premium"},
		{Name: "Electric vehicles", Slug: "electric-vehicles"},
		{Name: "Hybrids", Slug: "hybrids"},
		{Name: "SUVs", Slug: "suvs"},
		{Name: "Pickups", Slug: "pickups"},
		{Name: "Special machinery", Slug: "special-machinery"},
	}

	for _, category := range defaultCategories {
		var count int64
		db.Model(&models.Category{}).Where("slug = ?", category.Slug).Count(&count)
		if count > 0 {
			continue
		}
		category := category
		if err := db.Create(&category).Error; err != nil {
			logrus.WithError(err).WithField("slug", category.Slug).Warn("Failed to seed category")
		}
	}

	return nil
}

// Transaction helper
func WithTransaction(db *gorm.DB, fn func(*gorm.DB) error) error {
	tx := db.Begin()
	if tx.Error != nil {
		return tx.Error
	}

	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit().Error
}

// IsUniqueViolation recognises duplicate key errors from the translated
// gorm error or directly from the Postgres driver.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
