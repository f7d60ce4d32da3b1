package services

import (
	"context"
	"errors"
	"fmt"

	"wordduel/db"
	"wordduel/models"
)

const duelsCollection = "duels"

// DuelStateMachine - дуэли и все допустимые переходы между их состояниями.
//
// open -> pendingAction -> inProgress -> active -> pendingAction -> ...
//
// Переход читает дуэль, считает частичное обновление и пишет его через Update.
// Чтение и запись не атомарны: два параллельных перехода одной дуэли могут
// потерять обновление друг друга
type DuelStateMachine struct {
	store      db.Store
	challenges *ChallengeCatalog
}

func NewDuelStateMachine(store db.Store, challenges *ChallengeCatalog) *DuelStateMachine {
	return &DuelStateMachine{store: store, challenges: challenges}
}

// CreateDuel заводит дуэль пары: статус open, у обоих по нулю очков
func (m *DuelStateMachine) CreateDuel(ctx context.Context, duelID, sourceUserID, targetUserID string) error {
	duel := models.Duel{
		SourceUserID: sourceUserID,
		TargetUserID: targetUserID,
		Status:       models.DuelOpen,
		Score: map[string]int{
			sourceUserID: 0,
			targetUserID: 0,
		},
	}
	if err := m.store.Set(ctx, duelsCollection, duelID, duel.Fields()); err != nil {
		return fmt.Errorf("failed to create duel %s: %w", duelID, err)
	}
	return nil
}

// GetDuel читает дуэль; found=false, если её нет
func (m *DuelStateMachine) GetDuel(ctx context.Context, duelID string) (models.Duel, bool, error) {
	if isBlank(duelID) {
		return models.Duel{}, false, nil
	}
	snap, err := m.store.Get(ctx, duelsCollection, duelID)
	if err != nil {
		return models.Duel{}, false, fmt.Errorf("failed to get duel %s: %w", duelID, err)
	}
	if !snap.Exists {
		return models.Duel{}, false, nil
	}
	var duel models.Duel
	if err := snap.Decode(&duel); err != nil {
		return models.Duel{}, false, err
	}
	duel.ID = duelID
	return duel, true, nil
}

// NextPatch считает обновление дуэли для события. Обмен ролями и счёт
// берутся из переданного (прочитанного) состояния
func NextPatch(duel models.Duel, event models.DuelEvent, challengeID string) (models.DuelPatch, error) {
	var patch models.DuelPatch
	switch event {
	case models.EventChallenge:
		if isBlank(challengeID) {
			return patch, fmt.Errorf("%w: challenge id is required", ErrInvalidRequest)
		}
		patch.Status = statusPtr(models.DuelPendingAction)
		patch.ChallengeID = &challengeID
	case models.EventAttempt:
		patch.Status = statusPtr(models.DuelInProgress)
	case models.EventSuccess:
		patch.Status = statusPtr(models.DuelActive)
		patch.Score = map[string]int{
			duel.TargetUserID: duel.Score[duel.TargetUserID] + 1,
		}
		swapRoles(&patch, duel)
	case models.EventFailure:
		patch.Status = statusPtr(models.DuelActive)
		swapRoles(&patch, duel)
	default:
		return patch, fmt.Errorf("%w: unknown event %q", ErrInvalidRequest, event)
	}
	return patch, nil
}

func swapRoles(patch *models.DuelPatch, duel models.Duel) {
	source, target := duel.TargetUserID, duel.SourceUserID
	patch.SourceUserID = &source
	patch.TargetUserID = &target
}

func statusPtr(s models.DuelStatus) *models.DuelStatus {
	return &s
}

// Transition применяет событие к дуэли и возвращает её новое состояние.
// Для challenge сначала проверяется и создаётся вызов; при ошибке дуэль не меняется
func (m *DuelStateMachine) Transition(ctx context.Context, req models.DuelUpdateRequest) (models.Duel, error) {
	if isBlank(req.DuelID) || isBlank(string(req.Event)) {
		return models.Duel{}, fmt.Errorf("%w: duel id and event are required", ErrInvalidRequest)
	}
	if !req.Event.Valid() {
		return models.Duel{}, fmt.Errorf("%w: unknown event %q", ErrInvalidRequest, req.Event)
	}
	if req.Event == models.EventChallenge {
		if err := ValidateChallenge(req.Challenge); err != nil {
			return models.Duel{}, err
		}
	}

	// следующий патч считается от прочитанной дуэли, реплика может отставать
	ctx = db.WithPrimary(ctx)
	duel, found, err := m.GetDuel(ctx, req.DuelID)
	if err != nil {
		return models.Duel{}, err
	}
	if !found {
		return models.Duel{}, fmt.Errorf("%w: %s", ErrDuelNotFound, req.DuelID)
	}

	var challengeID string
	if req.Event == models.EventChallenge {
		challengeID, err = m.challenges.Create(ctx, *req.Challenge)
		if err != nil {
			return models.Duel{}, err
		}
	}

	patch, err := NextPatch(duel, req.Event, challengeID)
	if err != nil {
		return models.Duel{}, err
	}
	if err := m.store.Update(ctx, duelsCollection, req.DuelID, patch.Fields()); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return models.Duel{}, fmt.Errorf("%w: %s", ErrDuelNotFound, req.DuelID)
		}
		return models.Duel{}, fmt.Errorf("failed to update duel %s: %w", req.DuelID, err)
	}
	return patch.ApplyTo(duel), nil
}

// PendingForTarget - дуэли, где пользователь должен ответить на вызов
func (m *DuelStateMachine) PendingForTarget(ctx context.Context, targetUserID string) ([]models.Duel, error) {
	snaps, err := m.store.Where(ctx, duelsCollection,
		db.Eq("targetUserId", targetUserID),
		db.Eq("status", string(models.DuelPendingAction)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query pending duels of %s: %w", targetUserID, err)
	}
	duels := make([]models.Duel, 0, len(snaps))
	for _, snap := range snaps {
		var duel models.Duel
		if err := snap.Decode(&duel); err != nil {
			return nil, err
		}
		duel.ID = snap.ID
		duels = append(duels, duel)
	}
	return duels, nil
}
