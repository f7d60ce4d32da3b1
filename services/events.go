package services

import (
	"context"
	"time"

	"wordduel/models"
)

// EventPublisher рассылает события дуэлей. Ошибка публикации не откатывает переход
type EventPublisher interface {
	Publish(ctx context.Context, notification models.DuelNotification) error
}

// notificationFor строит уведомление о переходе. Получатель - тот, чей ход
// теперь ждут: на challenge - отвечающий, на attempt - бросивший вызов,
// на success/failure - бросивший вызов в завершённом раунде (после обмена он target)
func notificationFor(event models.DuelEvent, duel models.Duel) models.DuelNotification {
	recipient := duel.TargetUserID
	if event == models.EventAttempt {
		recipient = duel.SourceUserID
	}
	return models.DuelNotification{
		Event:        event,
		UserID:       recipient,
		DuelID:       duel.ID,
		SourceUserID: duel.SourceUserID,
		TargetUserID: duel.TargetUserID,
		Status:       duel.Status,
		ChallengeID:  duel.ChallengeID,
		Score:        duel.Score,
		CreatedAt:    time.Now().UTC(),
	}
}
