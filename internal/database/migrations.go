package database

import (
	"fmt"

	"github.com/devzoku/devzoku-api/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AddIndexes adds lookup indexes that are not expressed in model tags
func AddIndexes(db *gorm.DB, log *zap.Logger) error {
	indexes := []struct {
		model   any
		table   string
		name    string
		columns string
	}{
		// Interaction dedup lookups
		{&models.UserInteraction{}, "user_interactions", "idx_interactions_user_hackathon_type", "user_id, hackathon_id, type, created_at"},
		{&models.UserInteraction{}, "user_interactions", "idx_interactions_created_at", "created_at"},

		// Hackathon listing filters
		{&models.Hackathon{}, "hackathons", "idx_hackathons_registration_start", "registration_start"},
		{&models.Hackathon{}, "hackathons", "idx_hackathons_end_time", "end_time"},

		// Dead-letter retry scan
		{&models.FailedEmailJob{}, "failed_email_jobs", "idx_failed_email_jobs_resolved_created", "resolved, created_at"},
	}

	migrator := db.Migrator()
	for _, idx := range indexes {
		if migrator.HasIndex(idx.model, idx.name) {
			log.Debug("Index already exists, skipping", zap.String("index", idx.name))
			continue
		}

		sql := fmt.Sprintf("CREATE INDEX %s ON %s (%s)", idx.name, idx.table, idx.columns)
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}

		log.Info("Created index", zap.String("index", idx.name), zap.String("table", idx.table), zap.String("columns", idx.columns))
	}

	return nil
}

// binaryColumns back the exact-match uniqueness checks on team names and
// hackathon titles.
var binaryColumns = []struct {
	table      string
	column     string
	definition string
}{
	{"teams", "name", "varchar(100) NOT NULL"},
	{"hackathons", "title", "varchar(255) NOT NULL"},
}

// PinCollations switches unique text columns to a binary collation on MySQL,
// whose default utf8mb4 collation compares case-insensitively. Postgres and
// SQLite already compare byte-for-byte.
func PinCollations(db *gorm.DB, log *zap.Logger) error {
	if db.Dialector.Name() != "mysql" {
		return nil
	}

	for _, col := range binaryColumns {
		sql := fmt.Sprintf("ALTER TABLE %s MODIFY %s %s COLLATE utf8mb4_bin", col.table, col.column, col.definition)
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("failed to pin collation on %s.%s: %w", col.table, col.column, err)
		}
		log.Info("Pinned binary collation", zap.String("table", col.table), zap.String("column", col.column))
	}

	return nil
}

// MigrateDatabase runs schema migration followed by collation pinning and
// index creation
func MigrateDatabase(db *gorm.DB, log *zap.Logger) error {
	if err := Migrate(db, log); err != nil {
		return err
	}

	if err := PinCollations(db, log); err != nil {
		return err
	}

	if err := AddIndexes(db, log); err != nil {
		return fmt.Errorf("failed to add indexes: %w", err)
	}

	return nil
}
