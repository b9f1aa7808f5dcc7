package datastore

import (
	"github.com/go-sql-driver/mysql"
	"github.com/mattn/go-sqlite3"
	"gorm.io/gorm"

	"github.com/tphakala/vocab-manager/internal/errors"
)

const componentName = "datastore"

// MySQL server error numbers treated as conflicts.
const (
	mysqlDuplicateEntry     = 1062
	mysqlRowIsReferenced    = 1451
	mysqlNoReferencedRow    = 1452
	mysqlRowIsReferencedOld = 1217
)

// dbError categorizes err and attaches the operation. Record-not-found
// becomes a not-found error and constraint violations become conflicts.
func dbError(err error, operation string, context ...any) error {
	if err == nil {
		return nil
	}

	category := errors.CategoryDatabase
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		category = errors.CategoryNotFound
	case isConstraintViolation(err):
		category = errors.CategoryConflict
	}

	builder := errors.New(err).
		Component(componentName).
		Category(category).
		Context("operation", operation)
	for i := 0; i+1 < len(context); i += 2 {
		if key, ok := context[i].(string); ok {
			builder.Context(key, context[i+1])
		}
	}
	return builder.Build()
}

// notFound reports a missing row of the named resource.
func notFound(resource string, id int64) error {
	return errors.Newf("%s %d not found", resource, id).
		Component(componentName).
		Category(errors.CategoryNotFound).
		Context("resource", resource).
		Context("id", id).
		Build()
}

func isConstraintViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code == sqlite3.ErrConstraint
	}
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		switch mysqlErr.Number {
		case mysqlDuplicateEntry, mysqlRowIsReferenced, mysqlNoReferencedRow, mysqlRowIsReferencedOld:
			return true
		}
	}
	return errors.Is(err, gorm.ErrDuplicatedKey) || errors.Is(err, gorm.ErrForeignKeyViolated)
}
