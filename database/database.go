package database

import (
	"fmt"
	"time"

	"github.com/lshigami/examhub/config"
	"github.com/lshigami/examhub/internal/model"
	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase opens the Postgres connection pool.
func NewDatabase(cfg *config.Config) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.Database.DSN()), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		log.Error().Err(err).Str("host", cfg.Database.Host).Msg("Failed to connect to PostgreSQL")
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	log.Info().Str("host", cfg.Database.Host).Str("name", cfg.Database.Name).Msg("Connected to PostgreSQL")
	return db, nil
}

// activeAttemptIndex backs the single IN_PROGRESS attempt rule. Partial indexes are
// understood by both Postgres and SQLite.
const activeAttemptIndex = `CREATE UNIQUE INDEX IF NOT EXISTS idx_attempts_active_user_assessment
	ON attempts (user_id, assessment_id) WHERE status = 'IN_PROGRESS'`

// Migrate creates or updates the schema.
func Migrate(db *gorm.DB) error {
	log.Info().Msg("Running database migrations...")
	err := db.AutoMigrate(
		&model.Account{},
		&model.Assessment{},
		&model.Argument{},
		&model.Question{},
		&model.QuestionOption{},
		&model.AnswerKey{},
		&model.Attempt{},
		&model.AttemptAnswer{},
	)
	if err != nil {
		log.Error().Err(err).Msg("Database migration failed")
		return err
	}
	if err := db.Exec(activeAttemptIndex).Error; err != nil {
		log.Error().Err(err).Msg("Failed to create active attempt index")
		return err
	}
	log.Info().Msg("Database migration completed successfully.")
	return nil
}
