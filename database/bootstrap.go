// database/bootstrap.go
package database

import (
	"fmt"
	stdlog "log"
	"os"
	"time"

	sqlite "github.com/glebarez/sqlite" // CGO-free driver
	_ "github.com/lib/pq"
	"github.com/labstack/gommon/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"fertplan/config"
	"fertplan/entities"
)

// Factory opens a ready-to-use store. The server takes one so tests can hand
// it an ephemeral database instead of the configured one.
type Factory func() (*gorm.DB, error)

// NewFactory builds the Factory described by cfg.
func NewFactory(cfg config.AppConfig) Factory {
	return func() (*gorm.DB, error) {
		var (
			db  *gorm.DB
			err error
		)
		switch cfg.DBDriver {
		case "postgres":
			db, err = OpenPostgres(cfg.DatabaseURL, cfg.DBMaxOpenConns)
		case "sqlite", "":
			db, err = OpenSQLite(cfg.DBPath, cfg.DBMaxOpenConns)
		default:
			return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
		}
		if err != nil {
			return nil, err
		}
		if err := Migrate(db); err != nil {
			return nil, err
		}
		return db, nil
	}
}

func gormConfig() *gorm.Config {
	return &gorm.Config{Logger: newGormLogger(stdlog.New(os.Stdout, "\r\n", stdlog.LstdFlags))}
}

// newGormLogger logs slow queries and errors. A miss on First is a normal
// lookup result here, not an error worth a log line.
func newGormLogger(w logger.Writer) logger.Interface {
	return logger.New(w, logger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  logger.Warn,
		IgnoreRecordNotFoundError: true,
		Colorful:                  true,
	})
}

// OpenSQLite opens path (":memory:" for an ephemeral store).
func OpenSQLite(path string, maxOpen int) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), gormConfig())
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// SQLite serialises writers anyway; a single connection also keeps an
	// in-memory database alive for the life of the pool.
	if maxOpen <= 0 {
		maxOpen = 1
	}
	return db, limitPool(db, maxOpen)
}

// OpenPostgres opens dsn through the lib/pq driver.
func OpenPostgres(dsn string, maxOpen int) (*gorm.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("open postgres: DATABASE_URL is empty")
	}
	db, err := gorm.Open(postgres.New(postgres.Config{DriverName: "postgres", DSN: dsn}), gormConfig())
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if maxOpen <= 0 {
		maxOpen = 1
	}
	return db, limitPool(db, maxOpen)
}

func limitPool(db *gorm.DB, maxOpen int) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	sqlDB.SetMaxOpenConns(maxOpen)
	sqlDB.SetMaxIdleConns(maxOpen)
	sqlDB.SetConnMaxLifetime(0)
	sqlDB.SetConnMaxIdleTime(30 * time.Minute)
	return nil
}

// Migrate creates the eight tables.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&entities.SKU{},
		&entities.BottleInventory{},
		&entities.ClosureInventory{},
		&entities.LabelInventory{},
		&entities.FormulaInventory{},
		&entities.Shipment{},
		&entities.ShipmentLine{},
		&entities.ShipmentFormulaRollup{},
	); err != nil {
		return fmt.Errorf("automigrate: %w", err)
	}
	log.Debugf("[db] migrated (%s)", db.Dialector.Name())
	return nil
}
