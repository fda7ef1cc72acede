package db

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/BruksfildServices01/meister-web/internal/config"
	"github.com/BruksfildServices01/meister-web/internal/models"
)

// NewDB opens the audit database. It returns nil when no URL is
// configured; auditing is then disabled.
func NewDB(cfg *config.Config, log *zap.Logger) *gorm.DB {
	if cfg.AuditDatabaseURL == "" {
		log.Info("audit database not configured, audit trail disabled")
		return nil
	}

	db, err := Open(postgres.Open(cfg.AuditDatabaseURL), cfg.IsProduction())
	if err != nil {
		log.Fatal("failed to open audit database", zap.Error(err))
	}
	return db
}

// Open connects through dialector, tunes the pool and migrates.
func Open(dialector gorm.Dialector, quiet bool) (*gorm.DB, error) {
	gcfg := &gorm.Config{PrepareStmt: true}
	if quiet {
		gcfg.Logger = gormlogger.Default.LogMode(gormlogger.Silent)
	}

	db, err := gorm.Open(dialector, gcfg)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(10 * time.Minute)

	if err := db.AutoMigrate(&models.AuditLog{}); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}
