package database

import (
	"fmt"
	"sync"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type Options struct {
	Host     string
	User     string
	Password string
	Name     string
	Port     string
	Verbose  bool
}

var (
	DB   *gorm.DB
	once sync.Once
)

// Connect opens the shared postgres connection. Later calls return the first handle.
func Connect(opts Options) (*gorm.DB, error) {
	var err error
	once.Do(func() {
		dsn := fmt.Sprintf(
			"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
			opts.Host,
			opts.User,
			opts.Password,
			opts.Name,
			opts.Port,
		)

		logLevel := logger.Warn
		if opts.Verbose {
			logLevel = logger.Info
		}

		var db *gorm.DB
		db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
			Logger: logger.Default.LogMode(logLevel),
		})
		if err != nil {
			err = fmt.Errorf("failed to connect database: %w", err)
			return
		}

		DB = db
	})

	if err != nil {
		return nil, err
	}
	return DB, nil
}
