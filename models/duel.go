package models

import "time"

// DuelStatus - состояние дуэли
type DuelStatus string

const (
	DuelOpen          DuelStatus = "open"
	DuelPendingAction DuelStatus = "pendingAction"
	DuelInProgress    DuelStatus = "inProgress"
	DuelActive        DuelStatus = "active"
)

// DuelEvent - событие, переводящее дуэль в новое состояние
type DuelEvent string

const (
	EventChallenge DuelEvent = "challenge"
	EventAttempt   DuelEvent = "attempt"
	EventSuccess   DuelEvent = "success"
	EventFailure   DuelEvent = "failure"
)

// Valid сообщает, известно ли событие
func (e DuelEvent) Valid() bool {
	switch e {
	case EventChallenge, EventAttempt, EventSuccess, EventFailure:
		return true
	}
	return false
}

// Duel - общая дуэль пары друзей. Source - тот, кто сейчас бросает вызов,
// target - тот, кто отвечает; роли меняются после каждого раунда
type Duel struct {
	ID           string         `json:"duelId,omitempty"`
	SourceUserID string         `json:"sourceUserId"`
	TargetUserID string         `json:"targetUserId"`
	Status       DuelStatus     `json:"status"`
	Score        map[string]int `json:"score"`
	ChallengeID  string         `json:"challengeId,omitempty"`
}

// Fields - документ дуэли для хранилища (без id, он ключ документа)
func (d Duel) Fields() map[string]any {
	score := make(map[string]any, len(d.Score))
	for uid, points := range d.Score {
		score[uid] = points
	}
	fields := map[string]any{
		"sourceUserId": d.SourceUserID,
		"targetUserId": d.TargetUserID,
		"status":       string(d.Status),
		"score":        score,
	}
	if d.ChallengeID != "" {
		fields["challengeId"] = d.ChallengeID
	}
	return fields
}

// DuelPatch - частичное обновление дуэли. Пустые поля в обновление не попадают
type DuelPatch struct {
	Status       *DuelStatus
	ChallengeID  *string
	SourceUserID *string
	TargetUserID *string
	Score        map[string]int
}

// Fields возвращает только заданные поля; очки пишутся по ключу score.<uid>,
// чтобы не затереть счёт второго участника
func (p DuelPatch) Fields() map[string]any {
	fields := make(map[string]any)
	if p.Status != nil {
		fields["status"] = string(*p.Status)
	}
	if p.ChallengeID != nil {
		fields["challengeId"] = *p.ChallengeID
	}
	if p.SourceUserID != nil {
		fields["sourceUserId"] = *p.SourceUserID
	}
	if p.TargetUserID != nil {
		fields["targetUserId"] = *p.TargetUserID
	}
	for uid, points := range p.Score {
		fields["score."+uid] = points
	}
	return fields
}

// DuelUpdateRequest - запрос на переход дуэли. Challenge нужен только для
// события challenge
type DuelUpdateRequest struct {
	DuelID    string     `json:"duelId"`
	Event     DuelEvent  `json:"duelEvent"`
	Challenge *Challenge `json:"challengeData,omitempty"`
}

// PendingDuel - дуэль, ожидающая ответа пользователя
type PendingDuel struct {
	DuelID       string `json:"duelId"`
	SourceUserID string `json:"sourceUserId"`
	SourceName   string `json:"sourceName"`
	ChallengeID  string `json:"challengeId,omitempty"`
}

// ChallengeStatus - может ли пользователь бросить вызов другу, и текущий счёт
type ChallengeStatus struct {
	Eligible bool           `json:"eligible"`
	DuelID   string         `json:"duelId,omitempty"`
	Score    map[string]int `json:"score,omitempty"`
}

// DuelNotification - событие дуэли для push-уведомлений
type DuelNotification struct {
	Event        DuelEvent      `json:"event"`
	UserID       string         `json:"user_id"`
	DuelID       string         `json:"duel_id"`
	SourceUserID string         `json:"source_user_id"`
	TargetUserID string         `json:"target_user_id"`
	Status       DuelStatus     `json:"status"`
	ChallengeID  string         `json:"challenge_id,omitempty"`
	Score        map[string]int `json:"score,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
}

// ApplyTo возвращает копию дуэли с применённым обновлением
func (p DuelPatch) ApplyTo(d Duel) Duel {
	next := d
	next.Score = make(map[string]int, len(d.Score))
	for uid, points := range d.Score {
		next.Score[uid] = points
	}
	if p.Status != nil {
		next.Status = *p.Status
	}
	if p.ChallengeID != nil {
		next.ChallengeID = *p.ChallengeID
	}
	if p.SourceUserID != nil {
		next.SourceUserID = *p.SourceUserID
	}
	if p.TargetUserID != nil {
		next.TargetUserID = *p.TargetUserID
	}
	for uid, points := range p.Score {
		next.Score[uid] = points
	}
	return next
}
