package db

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"wordduel/models"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/plugin/dbresolver"
)

// GormStore хранит документы в одной таблице documents (collection, doc_id, data).
// Чтения идут на реплики, записи на мастер. Контекст из WithPrimary
// переводит чтения на мастер
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// readDB возвращает подключение для чтения: реплики или мастер для WithPrimary
func (s *GormStore) readDB(ctx context.Context) *gorm.DB {
	if ReadsPrimary(ctx) {
		return s.writeDB(ctx)
	}
	return s.db.WithContext(ctx).Clauses(dbresolver.Read)
}

// writeDB возвращает подключение для записи (мастер)
func (s *GormStore) writeDB(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).Clauses(dbresolver.Write)
}

func (s *GormStore) Get(ctx context.Context, collection, id string) (Snapshot, error) {
	var doc models.Document
	err := s.readDB(ctx).
		Where("collection = ? AND doc_id = ?", collection, id).
		First(&doc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Snapshot{ID: id}, nil
	}
	if err != nil {
		return Snapshot{}, fmt.Errorf("failed to get %s/%s: %w", collection, id, err)
	}
	data, err := decodeDocument(doc.Data)
	if err != nil {
		return Snapshot{}, err
	}
	return Snapshot{ID: id, Exists: true, Data: data}, nil
}

func (s *GormStore) Set(ctx context.Context, collection, id string, data map[string]any) error {
	raw, err := encodeDocument(data)
	if err != nil {
		return err
	}
	now := time.Now()
	doc := models.Document{Collection: collection, DocID: id, Data: datatypes.JSON(raw), CreatedAt: now, UpdatedAt: now}
	err = s.writeDB(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "collection"}, {Name: "doc_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"data", "updated_at"}),
	}).Create(&doc).Error
	if err != nil {
		return fmt.Errorf("failed to set %s/%s: %w", collection, id, err)
	}
	return nil
}

func (s *GormStore) Create(ctx context.Context, collection, id string, data map[string]any) (bool, error) {
	raw, err := encodeDocument(data)
	if err != nil {
		return false, err
	}
	now := time.Now()
	doc := models.Document{Collection: collection, DocID: id, Data: datatypes.JSON(raw), CreatedAt: now, UpdatedAt: now}
	result := s.writeDB(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&doc)
	if result.Error != nil {
		return false, fmt.Errorf("failed to create %s/%s: %w", collection, id, result.Error)
	}
	return result.RowsAffected == 1, nil
}

func (s *GormStore) Update(ctx context.Context, collection, id string, fields map[string]any) error {
	return s.writeDB(ctx).Transaction(func(tx *gorm.DB) error {
		var doc models.Document
		err := lockedDocument(tx, collection, id).First(&doc).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to read %s/%s for update: %w", collection, id, err)
		}

		data, err := decodeDocument(doc.Data)
		if err != nil {
			return err
		}
		mergeFields(data, fields)
		raw, err := encodeDocument(data)
		if err != nil {
			return err
		}

		err = tx.Model(&models.Document{}).
			Where("collection = ? AND doc_id = ?", collection, id).
			Updates(map[string]any{"data": datatypes.JSON(raw), "updated_at": time.Now()}).Error
		if err != nil {
			return fmt.Errorf("failed to update %s/%s: %w", collection, id, err)
		}
		return nil
	})
}

// lockedDocument читает строку с SELECT ... FOR UPDATE: до конца транзакции
// параллельный Update того же документа ждёт. sqlite блокирует всю базу сам
func lockedDocument(tx *gorm.DB, collection, id string) *gorm.DB {
	return tx.Clauses(clause.Locking{Strength: clause.LockingStrengthUpdate}).
		Where("collection = ? AND doc_id = ?", collection, id)
}

// Where выбирает документы коллекции; условия на поля уходят в SQL через
// json выражения драйвера
func (s *GormStore) Where(ctx context.Context, collection string, filters ...Filter) ([]Snapshot, error) {
	query := s.readDB(ctx).Where("collection = ?", collection)
	for _, f := range filters {
		query = query.Where(jsonEquals(f))
	}

	var docs []models.Document
	if err := query.Order("doc_id").Find(&docs).Error; err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", collection, err)
	}

	result := make([]Snapshot, 0, len(docs))
	for _, doc := range docs {
		data, err := decodeDocument(doc.Data)
		if err != nil {
			return nil, err
		}
		result = append(result, Snapshot{ID: doc.DocID, Exists: true, Data: data})
	}
	return result, nil
}

// jsonEquals - условие "поле документа равно значению" на диалекте базы
func jsonEquals(f Filter) *datatypes.JSONQueryExpression {
	return datatypes.JSONQuery("data").Equals(f.Value, strings.Split(f.Field, ".")...)
}
