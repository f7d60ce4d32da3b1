package db

import (
	"fmt"

	"wordduel/models"

	"gorm.io/gorm"
)

// jsonFieldIndexes - поля документов, по которым Where фильтрует в сервисах
var jsonFieldIndexes = map[string]string{
	"idx_documents_target_user": "targetUserId",
	"idx_documents_status":      "status",
	"idx_documents_app_user":    "appUserId",
	"idx_documents_email":       "email",
}

// Migrate создаёт таблицу документов. Точечные чтения и сканы коллекции
// покрывает первичный ключ (collection, doc_id)
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.Document{}); err != nil {
		return fmt.Errorf("failed to migrate documents: %w", err)
	}

	// индекс по updated_at ни один запрос не использовал
	if err := db.Exec(`DROP INDEX IF EXISTS idx_documents_collection_updated_at;`).Error; err != nil {
		return fmt.Errorf("failed to drop index on documents: %w", err)
	}

	if db.Dialector.Name() != "postgres" {
		return nil
	}
	// выражения совпадают с тем, что datatypes.JSONQuery(...).Equals строит для postgres
	for name, field := range jsonFieldIndexes {
		createIndexSQL := fmt.Sprintf(
			`CREATE INDEX IF NOT EXISTS %s ON documents (collection, json_extract_path_text(data::json, '%s'));`,
			name, field,
		)
		if err := db.Exec(createIndexSQL).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", name, err)
		}
	}
	return nil
}
