package config

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/Sujan7036/friends-momo-sub001/models"

	"github.com/glebarez/sqlite"
	_ "github.com/lib/pq"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// OpenDatabase connects to the configured store. The returned handle is
// passed to every repository; there is no package-level connection.
func OpenDatabase(cfg DatabaseConfig, debug bool) (*gorm.DB, error) {
	gcfg := &gorm.Config{Logger: newGormLogger(log.New(os.Stdout, "\r\n", log.LstdFlags), debug)}

	switch cfg.Driver {
	case "sqlite", "":
		db, err := gorm.Open(sqlite.Open(cfg.Path), gcfg)
		if err != nil {
			return nil, fmt.Errorf("open sqlite %s: %w", cfg.Path, err)
		}
		return db, nil
	case "postgres":
		sqlDB, err := sql.Open("postgres", cfg.PostgresDSN())
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := sqlDB.PingContext(ctx); err != nil {
			sqlDB.Close()
			return nil, fmt.Errorf("ping postgres %s:%s: %w", cfg.Host, cfg.Port, err)
		}
		sqlDB.SetMaxOpenConns(25)
		sqlDB.SetMaxIdleConns(5)
		sqlDB.SetConnMaxLifetime(time.Hour)
		return OpenWithConn(sqlDB, gcfg)
	}
	return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.Driver)
}

// newGormLogger logs slow and failed queries. Missing rows are an expected
// outcome of lookups and are not logged.
func newGormLogger(w logger.Writer, debug bool) logger.Interface {
	level := logger.Warn
	if debug {
		level = logger.Info
	}
	return logger.New(w, logger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  level,
		IgnoreRecordNotFoundError: true,
		Colorful:                  debug,
	})
}

// OpenWithConn wraps an existing postgres-dialect *sql.DB.
func OpenWithConn(conn *sql.DB, gcfg *gorm.Config) (*gorm.DB, error) {
	if gcfg == nil {
		gcfg = &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)}
	}
	db, err := gorm.Open(postgres.New(postgres.Config{Conn: conn}), gcfg)
	if err != nil {
		return nil, fmt.Errorf("open gorm on postgres connection: %w", err)
	}
	return db, nil
}

func (c DatabaseConfig) PostgresDSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode)
}

// Migrate creates or updates every table.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.MenuItem{},
		&models.Order{},
		&models.OrderItem{},
		&models.OrderStatusHistory{},
		&models.Reservation{},
		&models.Setting{},
		&models.ActivityLog{},
	)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	slog.Info("Database migrated")
	return nil
}
