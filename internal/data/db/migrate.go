package db

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/yungbote/pulseboard-backend/internal/domain"
)

func AutoMigrateAll(db *gorm.DB) error {
	if err := db.AutoMigrate(domain.Tables()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	if db.Dialector.Name() == "postgres" {
		return EnsurePostgresIndexes(db)
	}
	return nil
}

// EnsurePostgresIndexes adds indexes gorm tags cannot express.
func EnsurePostgresIndexes(db *gorm.DB) error {
	stmts := []struct {
		name string
		sql  string
	}{
		{
			name: "idx_post_user_calendar",
			sql: `CREATE INDEX IF NOT EXISTS idx_post_user_calendar
				ON post(user_id, (COALESCE(scheduled_at, published_at)))
				WHERE deleted_at IS NULL;`,
		},
		{
			name: "idx_insight_user_unread",
			sql: `CREATE INDEX IF NOT EXISTS idx_insight_user_unread
				ON insight(user_id, created_at DESC)
				WHERE is_read = false;`,
		},
	}
	for _, s := range stmts {
		if err := db.Exec(s.sql).Error; err != nil {
			return fmt.Errorf("create %s: %w", s.name, err)
		}
	}
	return nil
}
