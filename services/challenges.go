package services

import (
	"context"
	"fmt"
	"log"

	"wordduel/db"
	"wordduel/models"

	"github.com/google/uuid"
)

const challengesCollection = "challenges"

// ChallengeCatalog хранит неизменяемые вызовы
type ChallengeCatalog struct {
	store db.Store
	newID func() string
}

func NewChallengeCatalog(store db.Store, newID func() string) *ChallengeCatalog {
	if newID == nil {
		newID = uuid.NewString
	}
	return &ChallengeCatalog{store: store, newID: newID}
}

// Create сохраняет вызов как есть и возвращает его id. Валидация - на вызывающем
func (c *ChallengeCatalog) Create(ctx context.Context, challenge models.Challenge) (string, error) {
	challengeID := c.newID()
	data := map[string]any{
		"sourceUserId": challenge.SourceUserID,
	}
	if q := challenge.Question; q != nil {
		question := map[string]any{"type": string(q.Type)}
		if q.Content != nil {
			question["content"] = map[string]any{"word": q.Content.Word}
		}
		data["question"] = question
	}
	if err := c.store.Set(ctx, challengesCollection, challengeID, data); err != nil {
		log.Printf("Error creating challenge: %v", err)
		return "", &CreationError{Entity: "challenge", Err: err}
	}
	return challengeID, nil
}

// Get возвращает вызов. Документ без вопроса считается отсутствующим
func (c *ChallengeCatalog) Get(ctx context.Context, challengeID string) (models.ChallengeData, bool, error) {
	if isBlank(challengeID) {
		return models.ChallengeData{}, false, nil
	}
	snap, err := c.store.Get(ctx, challengesCollection, challengeID)
	if err != nil {
		return models.ChallengeData{}, false, fmt.Errorf("failed to get challenge %s: %w", challengeID, err)
	}
	if !snap.Exists {
		return models.ChallengeData{}, false, nil
	}
	var challenge models.Challenge
	if err := snap.Decode(&challenge); err != nil {
		return models.ChallengeData{}, false, err
	}
	if challenge.Question == nil || challenge.Question.Content == nil {
		return models.ChallengeData{}, false, nil
	}
	return models.ChallengeData{
		SourceUserID: challenge.SourceUserID,
		Type:         challenge.Question.Type,
		Question:     *challenge.Question.Content,
	}, true, nil
}
