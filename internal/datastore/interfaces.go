// Package datastore persists the language catalog and vocabulary for the
// reference API using gorm. SQLite is the default backend; MySQL is
// optional.
package datastore

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/tphakala/vocab-manager/internal/conf"
	"github.com/tphakala/vocab-manager/internal/errors"
	"github.com/tphakala/vocab-manager/internal/logger"
	"github.com/tphakala/vocab-manager/internal/model"
	"github.com/tphakala/vocab-manager/internal/observability/metrics"
)

// Interface is the storage contract of the reference API.
type Interface interface {
	Open() error
	Close() error
	Ping(ctx context.Context) error

	ListLanguages(ctx context.Context) ([]model.Language, error)
	GetLanguage(ctx context.Context, id int64) (model.Language, error)
	CreateLanguage(ctx context.Context, fields model.LanguageFields) (model.Language, error)
	UpdateLanguage(ctx context.Context, id int64, fields model.LanguageFields) (model.Language, error)
	// DeleteLanguage removes the language and all of its entries and
	// returns how many entries went with it.
	DeleteLanguage(ctx context.Context, id int64) (int64, error)

	ListEntries(ctx context.Context, languageID int64) ([]model.VocabularyEntry, error)
	CreateEntry(ctx context.Context, languageID int64, fields model.EntryFields) (model.VocabularyEntry, error)
	UpdateEntry(ctx context.Context, languageID, wordID int64, fields model.EntryFields) (model.VocabularyEntry, error)
	DeleteEntry(ctx context.Context, languageID, wordID int64) error
}

// DataStore implements Interface on a gorm database.
type DataStore struct {
	DB       *gorm.DB
	log      logger.Logger
	recorder metrics.Recorder
	rows     rowCounter
}

// rowCounter receives table sizes; satisfied by *metrics.DatastoreMetrics
type rowCounter interface {
	SetRowCount(table string, count int64)
}

// Options are shared by both backends.
type Options struct {
	Logger        logger.Logger
	Metrics       *metrics.DatastoreMetrics
	SlowThreshold time.Duration
	Debug         bool
}

// New returns an unopened store for the configured database type.
func New(settings *conf.DatabaseSettings, opts Options) (Interface, error) {
	if opts.Logger == nil {
		opts.Logger = logger.Global(componentName)
	}
	if opts.SlowThreshold <= 0 {
		opts.SlowThreshold = settings.SlowThreshold
	}

	base := DataStore{log: opts.Logger.Module(componentName), recorder: metrics.NoopRecorder{}}
	if opts.Metrics != nil {
		base.recorder = opts.Metrics
		base.rows = opts.Metrics
	}

	switch settings.Type {
	case conf.DatabaseSQLite, "":
		return &SQLiteStore{DataStore: base, Path: settings.SQLite.Path, opts: opts}, nil
	case conf.DatabaseMySQL:
		return &MySQLStore{DataStore: base, Settings: settings.MySQL, opts: opts}, nil
	default:
		return nil, errors.Newf("unsupported database type %q", settings.Type).
			Component(componentName).
			Category(errors.CategoryConfiguration).
			Build()
	}
}

// Ping checks the database connection.
func (ds *DataStore) Ping(ctx context.Context) error {
	if ds.DB == nil {
		return errors.Newf("database connection is not initialized").
			Component(componentName).
			Category(errors.CategoryDatabase).
			Build()
	}
	sqlDB, err := ds.DB.DB()
	if err != nil {
		return dbError(err, "ping")
	}
	return dbError(sqlDB.PingContext(ctx), "ping")
}

// closeDB closes the underlying connection pool
func (ds *DataStore) closeDB() error {
	if ds.DB == nil {
		return nil
	}
	sqlDB, err := ds.DB.DB()
	if err != nil {
		return dbError(err, "close")
	}
	if err := sqlDB.Close(); err != nil {
		return dbError(err, "close")
	}
	ds.log.Debug("database connection closed")
	return nil
}

// migrate creates or updates the schema
func (ds *DataStore) migrate(dialect string) error {
	start := time.Now()
	if err := ds.DB.AutoMigrate(&LanguageRow{}, &VocabularyRow{}); err != nil {
		return dbError(err, "migrate", "dialect", dialect)
	}
	ds.log.Info("database schema ready",
		logger.String("dialect", dialect),
		logger.Duration("elapsed", time.Since(start)))
	ds.updateRowCounts(context.Background())
	return nil
}

// observe records the outcome and duration of one store operation
func (ds *DataStore) observe(operation string, start time.Time, err error) {
	ds.recorder.RecordDuration(operation, time.Since(start).Seconds())
	if err != nil {
		ds.recorder.RecordOperation(operation, metrics.StatusError)
		var enhanced *errors.EnhancedError
		if errors.As(err, &enhanced) {
			ds.recorder.RecordError(operation, enhanced.GetCategory())
		}
		return
	}
	ds.recorder.RecordOperation(operation, metrics.StatusSuccess)
}

func (ds *DataStore) updateRowCounts(ctx context.Context) {
	if ds.rows == nil {
		return
	}
	for table, row := range map[string]any{"languages": &LanguageRow{}, "vocabulary": &VocabularyRow{}} {
		var n int64
		if err := ds.DB.WithContext(ctx).Model(row).Count(&n).Error; err != nil {
			ds.log.Warn("row count failed", logger.String("table", table), logger.Error(err))
			continue
		}
		ds.rows.SetRowCount(table, n)
	}
}
