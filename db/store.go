package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound возвращается из Update, если документа нет
var ErrNotFound = errors.New("document not found")

// Store - документное хранилище: коллекции JSON документов по id.
// Транзакций между документами нет
type Store interface {
	Get(ctx context.Context, collection, id string) (Snapshot, error)
	// Set перезаписывает документ целиком
	Set(ctx context.Context, collection, id string, data map[string]any) error
	// Create пишет документ, только если его ещё нет; false - документ уже был
	Create(ctx context.Context, collection, id string, data map[string]any) (bool, error)
	// Update сливает поля в существующий документ. Ключ вида "a.b" пишет во вложенное поле
	Update(ctx context.Context, collection, id string, fields map[string]any) error
	Where(ctx context.Context, collection string, filters ...Filter) ([]Snapshot, error)
}

type primaryKey struct{}

// WithPrimary помечает контекст: чтения по нему идут на мастер, а не на реплики.
// Нужен там, где прочитанное сразу определяет запись
func WithPrimary(ctx context.Context) context.Context {
	return context.WithValue(ctx, primaryKey{}, true)
}

// ReadsPrimary сообщает, помечен ли контекст через WithPrimary
func ReadsPrimary(ctx context.Context) bool {
	primary, _ := ctx.Value(primaryKey{}).(bool)
	return primary
}

// Snapshot - прочитанный документ
type Snapshot struct {
	ID     string
	Exists bool
	Data   map[string]any
}

// Decode раскладывает данные документа в структуру через json теги
func (s Snapshot) Decode(v any) error {
	raw, err := json.Marshal(s.Data)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, v)
}

// Filter - условие равенства поля значению
type Filter struct {
	Field string
	Value any
}

func Eq(field string, value any) Filter {
	return Filter{Field: field, Value: value}
}

// Path собирает путь вложенной коллекции: Path("friends", uid, "friendlist")
func Path(parts ...string) string {
	return strings.Join(parts, "/")
}

func encodeDocument(data map[string]any) ([]byte, error) {
	if data == nil {
		data = map[string]any{}
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to encode document: %w", err)
	}
	return raw, nil
}

func decodeDocument(raw []byte) (map[string]any, error) {
	data := map[string]any{}
	if len(raw) == 0 {
		return data, nil
	}
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("failed to decode document: %w", err)
	}
	return data, nil
}

// mergeFields накладывает частичное обновление на документ
func mergeFields(doc map[string]any, fields map[string]any) {
	for key, value := range fields {
		path := strings.Split(key, ".")
		target := doc
		for _, part := range path[:len(path)-1] {
			next, ok := target[part].(map[string]any)
			if !ok {
				next = map[string]any{}
				target[part] = next
			}
			target = next
		}
		target[path[len(path)-1]] = value
	}
}
