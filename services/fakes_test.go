package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"wordduel/db"
	"wordduel/models"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/stretchr/testify/require"
)

var errStoreDown = errors.New("store is down")

// recordingStore пишет журнал вызовов и умеет падать на выбранных операциях
type recordingStore struct {
	db.Store
	mu    sync.Mutex
	calls []string
	// replicaReads - чтения без db.WithPrimary
	replicaReads []string
	// fail получает "op collection/id" и возвращает ошибку, которую надо отдать
	fail func(call string) error
}

func newRecordingStore() *recordingStore {
	return &recordingStore{Store: db.NewMemoryStore()}
}

func (s *recordingStore) record(op, collection, id string) error {
	call := fmt.Sprintf("%s %s/%s", op, collection, id)
	s.mu.Lock()
	s.calls = append(s.calls, call)
	fail := s.fail
	s.mu.Unlock()
	if fail != nil {
		return fail(call)
	}
	return nil
}

func (s *recordingStore) recordRead(ctx context.Context, op, collection, id string) error {
	if !db.ReadsPrimary(ctx) {
		s.mu.Lock()
		s.replicaReads = append(s.replicaReads, fmt.Sprintf("%s %s/%s", op, collection, id))
		s.mu.Unlock()
	}
	return s.record(op, collection, id)
}

func (s *recordingStore) ReplicaReads() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.replicaReads...)
}

func (s *recordingStore) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}

// CallsWithPrefix - вызовы, начинающиеся с prefix, например "set duels"
func (s *recordingStore) CallsWithPrefix(prefix string) []string {
	var out []string
	for _, call := range s.Calls() {
		if strings.HasPrefix(call, prefix) {
			out = append(out, call)
		}
	}
	return out
}

func (s *recordingStore) Get(ctx context.Context, collection, id string) (db.Snapshot, error) {
	if err := s.recordRead(ctx, "get", collection, id); err != nil {
		return db.Snapshot{}, err
	}
	return s.Store.Get(ctx, collection, id)
}

func (s *recordingStore) Set(ctx context.Context, collection, id string, data map[string]any) error {
	if err := s.record("set", collection, id); err != nil {
		return err
	}
	return s.Store.Set(ctx, collection, id, data)
}

func (s *recordingStore) Create(ctx context.Context, collection, id string, data map[string]any) (bool, error) {
	if err := s.record("create", collection, id); err != nil {
		return false, err
	}
	return s.Store.Create(ctx, collection, id, data)
}

func (s *recordingStore) Update(ctx context.Context, collection, id string, fields map[string]any) error {
	if err := s.record("update", collection, id); err != nil {
		return err
	}
	return s.Store.Update(ctx, collection, id, fields)
}

func (s *recordingStore) Where(ctx context.Context, collection string, filters ...db.Filter) ([]db.Snapshot, error) {
	if err := s.recordRead(ctx, "where", collection, ""); err != nil {
		return nil, err
	}
	return s.Store.Where(ctx, collection, filters...)
}

func failOn(prefix string) func(string) error {
	return func(call string) error {
		if strings.HasPrefix(call, prefix) {
			return errStoreDown
		}
		return nil
	}
}

// recordingPublisher запоминает опубликованные уведомления
type recordingPublisher struct {
	mu            sync.Mutex
	notifications []models.DuelNotification
	err           error
}

func (p *recordingPublisher) Publish(_ context.Context, n models.DuelNotification) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.notifications = append(p.notifications, n)
	return p.err
}

func (p *recordingPublisher) Last() models.DuelNotification {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.notifications[len(p.notifications)-1]
}

// fakeIdentityProvider выдаёт uid по порядку
type fakeIdentityProvider struct {
	mu     sync.Mutex
	inputs []ProfileInput
	err    error
}

func (p *fakeIdentityProvider) CreateUser(_ context.Context, input ProfileInput) (Identity, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.inputs = append(p.inputs, input)
	if p.err != nil {
		return Identity{}, p.err
	}
	return Identity{
		UID:         fmt.Sprintf("uid-%d", len(p.inputs)),
		DisplayName: input.DisplayName,
		Email:       input.Email,
	}, nil
}

// sequentialIDs - предсказуемые id для дуэлей и вызовов
func sequentialIDs(prefix string) func() string {
	var mu sync.Mutex
	n := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("%s-%d", prefix, n)
	}
}

// seedUser кладёт профиль прямо в хранилище
func seedUser(t *testing.T, store db.Store, userID string) models.User {
	t.Helper()
	user := models.User{UserID: userID, Name: gofakeit.Name(), Email: gofakeit.Email()}
	require.NoError(t, NewUserRepository(store, nil).AddUser(context.Background(), user))
	return user
}

func jumble(sourceUserID, word string) *models.Challenge {
	return &models.Challenge{
		SourceUserID: sourceUserID,
		Question: &models.Question{
			Type:    models.QuestionJumble,
			Content: &models.QuestionContent{Word: word},
		},
	}
}
