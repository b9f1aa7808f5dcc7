package datastore

import (
	"net"
	"time"

	mysqldriver "github.com/go-sql-driver/mysql"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/tphakala/vocab-manager/internal/conf"
	"github.com/tphakala/vocab-manager/internal/logger"
)

// MySQLStore implements Interface for MySQL.
type MySQLStore struct {
	DataStore
	Settings conf.MySQLSettings
	opts     Options
}

// DSN builds the driver connection string.
func (store *MySQLStore) DSN() string {
	cfg := mysqldriver.NewConfig()
	cfg.User = store.Settings.Username
	cfg.Passwd = store.Settings.Password
	cfg.Net = "tcp"
	cfg.Addr = net.JoinHostPort(store.Settings.Host, store.Settings.Port)
	cfg.DBName = store.Settings.Database
	cfg.ParseTime = true
	cfg.Loc = time.UTC
	cfg.Params = map[string]string{"charset": "utf8mb4"}
	return cfg.FormatDSN()
}

// Open connects and migrates the schema.
func (store *MySQLStore) Open() error {
	db, err := gorm.Open(mysql.Open(store.DSN()), &gorm.Config{
		Logger:         logger.NewGormLoggerAdapter(store.log.Module("gorm"), store.opts.SlowThreshold),
		TranslateError: true,
	})
	if err != nil {
		store.log.Error("failed to open MySQL database",
			logger.String("host", store.Settings.Host),
			logger.String("port", store.Settings.Port),
			logger.String("database", store.Settings.Database),
			logger.Error(err))
		return dbError(err, "open", "host", store.Settings.Host, "database", store.Settings.Database)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return dbError(err, "open")
	}
	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(time.Hour)

	store.DB = db
	store.log.Info("MySQL database opened",
		logger.String("host", store.Settings.Host),
		logger.String("database", store.Settings.Database))
	return store.migrate("mysql")
}

// Close closes the connection pool.
func (store *MySQLStore) Close() error {
	return store.closeDB()
}
