package database

import (
	"fmt"

	"gorm.io/gorm"
)

// AddIndexes adds performance-critical indexes to the database
func AddIndexes(db *gorm.DB) error {
	// The catalog probe below is postgres-specific; the other drivers rely on
	// the indexes declared in the model tags.
	if db.Dialector.Name() != "postgres" {
		return nil
	}

	indexes := []struct {
		table   string
		name    string
		columns string
	}{
		// Task indexes for the visibility filters
		{"tasks", "idx_tasks_creator", "creator_id, creator_model"},
		{"tasks", "idx_tasks_assigned_to", "assigned_to"},
		{"tasks", "idx_tasks_status", "status"},
		{"tasks", "idx_tasks_due_date", "due_date"},

		// Team roster indexes
		{"team_members", "idx_team_members_manager_id", "manager_id"},
		{"team_members", "idx_team_members_user_id", "user_id"},

		// Pointer side of the team relation
		{"users", "idx_users_manager_id", "manager_id"},
	}

	for _, idx := range indexes {
		// Check if index already exists (postgres catalog)
		var count int64
		err := db.Raw(`
			SELECT COUNT(*)
			FROM pg_indexes
			WHERE tablename = ? AND indexname = ?
		`, idx.table, idx.name).Count(&count).Error

		if err != nil {
			return fmt.Errorf("failed to check index %s: %w", idx.name, err)
		}

		if count > 0 {
			continue
		}

		sql := fmt.Sprintf("CREATE INDEX %s ON %s (%s)", idx.name, idx.table, idx.columns)
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}
	}

	return nil
}
