package database

import (
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	DriverPostgres = "postgres"
	DriverSqlite   = "sqlite"
)

func getLogger(level logger.LogLevel) logger.Interface {
	return logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  level,
			IgnoreRecordNotFoundError: true,
			ParameterizedQueries:      true,
			Colorful:                  true,
		},
	)
}

func configureConnectionPool(db *gorm.DB, driver string) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}

	if driver == DriverSqlite {
		// sqlite allows a single writer; ":memory:" is also per-connection.
		sqlDB.SetMaxOpenConns(1)
		return nil
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	return nil
}

func dialector(driver, dsn string) (gorm.Dialector, error) {
	switch driver {
	case DriverPostgres:
		return postgres.Open(dsn), nil
	case DriverSqlite:
		return sqlite.Open(dsn), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
}

// NewGormDB opens driver ("postgres" or "sqlite") with SQL logging at warn level.
func NewGormDB(driver, dsn string) (*gorm.DB, error) {
	return open(driver, dsn, logger.Warn)
}

// NewQuietGormDB is NewGormDB without SQL logging, for the terminal client.
func NewQuietGormDB(driver, dsn string) (*gorm.DB, error) {
	return open(driver, dsn, logger.Silent)
}

func open(driver, dsn string, level logger.LogLevel) (*gorm.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("empty connection string for driver %q", driver)
	}

	d, err := dialector(driver, dsn)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(d, &gorm.Config{
		Logger: getLogger(level),
	})
	if err != nil {
		return nil, err
	}

	if err := configureConnectionPool(db, driver); err != nil {
		return nil, err
	}

	return db, nil
}
