package services

import (
	"context"
	"errors"
	"log"

	"wordduel/db"
	"wordduel/models"

	"github.com/google/uuid"
)

// GameService связывает пользователей, дружбу, дуэли и вызовы.
// Операции не транзакционны: при сбое посередине частично записанное остаётся
type GameService struct {
	users      *UserRepository
	identity   IdentityProvider
	ledger     *FriendshipLedger
	duels      *DuelStateMachine
	challenges *ChallengeCatalog
	events     []EventPublisher
	counters   *DuelCounters
	cache      ProfileCache
	newID      func() string
}

type Option func(*GameService)

// WithEventPublisher добавляет получателя событий дуэлей
func WithEventPublisher(p EventPublisher) Option {
	return func(s *GameService) { s.events = append(s.events, p) }
}

// WithCounters включает счетчики игроков; они получают те же события
func WithCounters(c *DuelCounters) Option {
	return func(s *GameService) {
		s.counters = c
		s.events = append(s.events, c)
	}
}

// WithProfileCache включает кеш профилей
func WithProfileCache(c ProfileCache) Option {
	return func(s *GameService) { s.cache = c }
}

// WithIDGenerator подменяет генератор id дуэлей и вызовов
func WithIDGenerator(newID func() string) Option {
	return func(s *GameService) { s.newID = newID }
}

func NewGameService(store db.Store, identity IdentityProvider, opts ...Option) *GameService {
	s := &GameService{
		identity: identity,
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.users = NewUserRepository(store, s.cache)
	s.ledger = NewFriendshipLedger(store)
	s.challenges = NewChallengeCatalog(store, s.newID)
	s.duels = NewDuelStateMachine(store, s.challenges)
	return s
}

// SignUp регистрирует пользователя у identity-провайдера и сохраняет профиль.
// ResultRejected - невалидный ввод, ResultConflict - appUserId занят,
// ResultFailed - ошибка проверки appUserId или *CreationError при создании
func (s *GameService) SignUp(ctx context.Context, input ProfileInput) (string, ResultCode, error) {
	if err := ValidateSignUp(input); err != nil {
		return "", ResultRejected, err
	}

	ctx = db.WithPrimary(ctx)
	if input.AppUserID != "" {
		_, code := s.users.FindUserByAppUserID(ctx, input.AppUserID)
		switch code {
		case ResultOK:
			return "", ResultConflict, errors.New("appUserId already exists")
		case ResultFailed:
			return "", ResultFailed, errors.New("appUserId check failed")
		}
	}

	identity, err := s.identity.CreateUser(ctx, input)
	if err != nil {
		log.Printf("Error in identity provider: %v", err)
		if errors.Is(err, ErrEmailTaken) {
			return "", ResultConflict, err
		}
		return "", ResultFailed, &CreationError{Entity: "user", Err: err}
	}

	err = s.users.AddUser(ctx, models.User{
		UserID:    identity.UID,
		Name:      identity.DisplayName,
		Email:     identity.Email,
		AppUserID: input.AppUserID,
	})
	if err != nil {
		return "", ResultFailed, err
	}
	return identity.UID, ResultOK, nil
}

// AddFriend создаёт заявку в друзья: две направленные записи и общую дуэль
func (s *GameService) AddFriend(ctx context.Context, sourceUserID, targetUserID string) Result {
	if isBlank(sourceUserID) || isBlank(targetUserID) {
		return rejected("source and target users are required")
	}
	if sourceUserID == targetUserID {
		return rejected("cannot add yourself as friend")
	}

	// обе записи независимы, проверяем оба направления на мастере
	ctx = db.WithPrimary(ctx)
	forward, forwardErr := s.ledger.Exists(ctx, sourceUserID, targetUserID)
	reverse, reverseErr := s.ledger.Exists(ctx, targetUserID, sourceUserID)
	if forwardErr != nil || reverseErr != nil {
		log.Printf("Error checking friendship %s <-> %s: %v %v", sourceUserID, targetUserID, forwardErr, reverseErr)
		return failed("error in repository")
	}
	if forward || reverse {
		return rejected("a friend relation already exists")
	}

	sourceUser, found, err := s.users.GetUser(ctx, sourceUserID)
	if err != nil {
		log.Printf("Error getting user %s: %v", sourceUserID, err)
		return failed("error in repository")
	}
	if !found {
		return rejected("requestor user does not exist")
	}
	targetUser, found, err := s.users.GetUser(ctx, targetUserID)
	if err != nil {
		log.Printf("Error getting user %s: %v", targetUserID, err)
		return failed("error in repository")
	}
	if !found {
		return rejected("target friend user does not exist")
	}

	duelID := s.newID()
	if err := s.ledger.AddEdge(ctx, sourceUserID, targetUserID, targetUser.Name, models.FriendAwaiting, duelID); err != nil {
		log.Println(err)
		return failed("error in repository")
	}
	if err := s.ledger.AddEdge(ctx, targetUserID, sourceUserID, sourceUser.Name, models.FriendPending, duelID); err != nil {
		log.Println(err)
		return failed("error in repository")
	}
	if err := s.duels.CreateDuel(ctx, duelID, sourceUserID, targetUserID); err != nil {
		log.Println(err)
		return failed("error in repository")
	}
	return okResult("friend request created")
}

// ConfirmFriend подтверждает дружбу в обе стороны. Удачная первая запись
// при сбое второй не откатывается
func (s *GameService) ConfirmFriend(ctx context.Context, sourceUserID, targetUserID string) Result {
	if isBlank(sourceUserID) || isBlank(targetUserID) {
		return rejected("source and target users are required")
	}
	if err := s.ledger.UpdateStatus(ctx, sourceUserID, targetUserID, models.FriendConfirmed); err != nil {
		log.Println(err)
		return failed("error in repository")
	}
	if err := s.ledger.UpdateStatus(ctx, targetUserID, sourceUserID, models.FriendConfirmed); err != nil {
		log.Println(err)
		return failed("error in repository")
	}
	return okResult("friend status updated")
}

// ListFriendsByStatus - друзья пользователя с заданным статусом
func (s *GameService) ListFriendsByStatus(ctx context.Context, sourceUserID string, status models.FriendStatus) ([]models.FriendSummary, ResultCode) {
	if isBlank(sourceUserID) || !status.Valid() {
		return nil, ResultRejected
	}
	friends, err := s.ledger.QueryByStatus(ctx, sourceUserID, status)
	if err != nil {
		log.Println(err)
		return nil, ResultFailed
	}
	return friends, ResultOK
}

// IsFriend - есть ли запись source -> target. Ошибка хранилища даёт false
func (s *GameService) IsFriend(ctx context.Context, sourceUserID, targetUserID string) bool {
	exists, err := s.ledger.Exists(ctx, sourceUserID, targetUserID)
	if err != nil {
		log.Printf("service error: %v", err)
		return false
	}
	return exists
}

// IsEligibleForChallenge - может ли source бросить вызов target прямо сейчас
func (s *GameService) IsEligibleForChallenge(ctx context.Context, sourceUserID, targetUserID string) bool {
	status, _ := s.ChallengeStatus(ctx, sourceUserID, targetUserID)
	return status.Eligible
}

// ChallengeStatus - пригодность к вызову и текущий счёт пары.
// found=false, если дружба не подтверждена или дуэль не найдена
func (s *GameService) ChallengeStatus(ctx context.Context, sourceUserID, targetUserID string) (models.ChallengeStatus, bool) {
	details, err := s.ledger.EdgeDetails(ctx, sourceUserID, targetUserID)
	if err != nil {
		log.Printf("service error: %v", err)
		return models.ChallengeStatus{}, false
	}
	if !details.Found || details.Status != models.FriendConfirmed || isBlank(details.DuelID) {
		return models.ChallengeStatus{}, false
	}

	duel, found, err := s.duels.GetDuel(ctx, details.DuelID)
	if err != nil {
		log.Printf("service error: %v", err)
		return models.ChallengeStatus{}, false
	}
	if !found {
		return models.ChallengeStatus{}, false
	}

	eligible := duel.Status == models.DuelOpen ||
		(duel.Status == models.DuelActive && sourceUserID == duel.SourceUserID)
	return models.ChallengeStatus{
		Eligible: eligible,
		DuelID:   details.DuelID,
		Score: map[string]int{
			sourceUserID: duel.Score[sourceUserID],
			targetUserID: duel.Score[targetUserID],
		},
	}, true
}

// UpdateDuel применяет событие к дуэли. false - запрос отклонён или не записан
func (s *GameService) UpdateDuel(ctx context.Context, req models.DuelUpdateRequest) bool {
	duel, err := s.duels.Transition(ctx, req)
	if err != nil {
		if errors.Is(err, ErrInvalidRequest) || errors.Is(err, ErrInvalidChallenge) || errors.Is(err, ErrDuelNotFound) {
			log.Printf("Duel update rejected: %v", err)
		} else {
			log.Printf("Duel update failed: %v", err)
		}
		return false
	}

	notification := notificationFor(req.Event, duel)
	for _, publisher := range s.events {
		if err := publisher.Publish(ctx, notification); err != nil {
			log.Printf("Failed to publish %s event for duel %s: %v", req.Event, duel.ID, err)
		}
	}
	return true
}

// GetCounters - счетчики игрока. ResultRejected, если счетчики выключены
func (s *GameService) GetCounters(ctx context.Context, userID string) (map[CounterType]int64, ResultCode) {
	if s.counters == nil || isBlank(userID) {
		return nil, ResultRejected
	}
	counters, err := s.counters.GetAll(ctx, userID)
	if err != nil {
		log.Println(err)
		return nil, ResultFailed
	}
	return counters, ResultOK
}

// GetDuel - дуэль по id; ошибка хранилища не отличается от отсутствия
func (s *GameService) GetDuel(ctx context.Context, duelID string) (models.Duel, bool) {
	duel, found, err := s.duels.GetDuel(ctx, duelID)
	if err != nil {
		log.Println(err)
		return models.Duel{}, false
	}
	return duel, found
}

// GetChallenge - вызов по id; ошибка хранилища не отличается от отсутствия
func (s *GameService) GetChallenge(ctx context.Context, challengeID string) (models.ChallengeData, bool) {
	challenge, found, err := s.challenges.Get(ctx, challengeID)
	if err != nil {
		log.Println(err)
		return models.ChallengeData{}, false
	}
	return challenge, found
}

// ListPendingDuels - дуэли, ждущие ответа пользователя, с именами бросивших вызов.
// Записи, для которых имя не нашлось, пропускаются
func (s *GameService) ListPendingDuels(ctx context.Context, targetUserID string) ([]models.PendingDuel, bool) {
	if isBlank(targetUserID) {
		return nil, false
	}
	duels, err := s.duels.PendingForTarget(ctx, targetUserID)
	if err != nil {
		log.Println(err)
		return nil, false
	}

	pending := make([]models.PendingDuel, 0, len(duels))
	for _, duel := range duels {
		if isBlank(duel.SourceUserID) {
			continue
		}
		challenger, found, err := s.users.GetUser(ctx, duel.SourceUserID)
		if err != nil || !found {
			continue
		}
		pending = append(pending, models.PendingDuel{
			DuelID:       duel.ID,
			SourceUserID: duel.SourceUserID,
			SourceName:   challenger.Name,
			ChallengeID:  duel.ChallengeID,
		})
	}
	return pending, true
}
