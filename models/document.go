package models

import (
	"time"

	"gorm.io/datatypes"
)

// Document - строка таблицы документов, в которой GormStore хранит коллекции.
// Вложенные коллекции адресуются путём: friends/<uid>/friendlist
type Document struct {
	Collection string         `gorm:"size:255;primaryKey" json:"collection"`
	DocID      string         `gorm:"size:255;primaryKey" json:"doc_id"`
	Data       datatypes.JSON `gorm:"not null" json:"data"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

// TableName возвращает имя таблицы для модели Document
func (Document) TableName() string {
	return "documents"
}
