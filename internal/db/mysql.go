package db

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"recipes/internal/model"
)

// Models lists every table in creation order.
var Models = []interface{}{
	&model.User{},
	&model.Recipe{},
	&model.Ingredient{},
}

// NewMySQL returns a connected GORM DB instance.
// Driver errors are translated so a unique-key clash surfaces as gorm.ErrDuplicatedKey.
func NewMySQL(dsn string, logger zerolog.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger: gormlogger.New(&logger, gormlogger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
	})
	if err != nil {
		return nil, fmt.Errorf("connect mysql: %w", err)
	}
	return db, nil
}

// Migrate creates or updates the schema.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models...); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}
	return nil
}

// Reset drops every table, newest first. Missing tables are not an error.
func Reset(db *gorm.DB, logger zerolog.Logger) {
	for i := len(Models) - 1; i >= 0; i-- {
		if err := db.Migrator().DropTable(Models[i]); err != nil {
			logger.Warn().Err(err).Msg("failed to drop table (may not exist)")
		}
	}
}
