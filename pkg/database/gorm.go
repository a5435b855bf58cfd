package database

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type GormConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

func (c GormConfig) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		c.Host, c.User, c.Password, c.DBName, c.Port, c.SSLMode)
}

func getLogger(level logger.LogLevel) logger.Interface {
	return logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags), // io writer
		logger.Config{
			SlowThreshold:             time.Second, // Slow SQL threshold
			LogLevel:                  level,
			IgnoreRecordNotFoundError: true, // Ignore ErrRecordNotFound error for logger
			ParameterizedQueries:      true, // Don't include params in the SQL log
			Colorful:                  true,
		},
	)
}

func configureConnectionPool(db *gorm.DB, maxOpen int) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}

	sqlDB.SetMaxIdleConns(min(10, maxOpen))
	sqlDB.SetMaxOpenConns(maxOpen)
	sqlDB.SetConnMaxLifetime(time.Hour)

	return nil
}

func NewGormDB(cfg GormConfig) (*gorm.DB, error) {
	return Open(DriverPostgres, cfg.DSN())
}

func NewGormDBFromDSN(dsn string) (*gorm.DB, error) {
	return Open(DriverPostgres, dsn)
}

// Open connects with the given driver. SQLite is meant for local runs and
// tests; it is limited to a single connection so in-memory databases stay
// shared across the pool.
func Open(driver, dsn string) (*gorm.DB, error) {
	var (
		dialector gorm.Dialector
		maxOpen   = 100
		level     = logger.Warn
	)

	switch strings.ToLower(driver) {
	case "", DriverPostgres, "postgresql":
		dialector = postgres.Open(dsn)
	case DriverSQLite, "sqlite3":
		dialector = sqlite.Open(dsn)
		maxOpen = 1
		level = logger.Silent
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         getLogger(level),
		TranslateError: true, // surfaces gorm.ErrDuplicatedKey
	})
	if err != nil {
		return nil, err
	}

	if err := configureConnectionPool(db, maxOpen); err != nil {
		return nil, err
	}

	return db, nil
}

// IsPostgres reports whether vector operators are available.
func IsPostgres(db *gorm.DB) bool {
	return db.Dialector.Name() == DriverPostgres
}
