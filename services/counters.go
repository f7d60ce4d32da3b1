package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"wordduel/models"

	"github.com/go-redis/redis/v8"
)

// CounterType тип счетчика
type CounterType string

const (
	CounterPendingChallenges CounterType = "pending_challenges"
	CounterRoundsPlayed      CounterType = "rounds_played"
	CounterRoundsWon         CounterType = "rounds_won"

	COUNTER_TTL = 30 * 24 * time.Hour
)

var counterTypes = []CounterType{
	CounterPendingChallenges,
	CounterRoundsPlayed,
	CounterRoundsWon,
}

// Lua скрипты для атомарных операций
const (
	// счетчик не уходит ниже нуля
	incrementCounterLua = `
		local current = tonumber(redis.call('GET', KEYS[1]) or '0')
		local new_count = math.max(0, current + tonumber(ARGV[1]))
		redis.call('SET', KEYS[1], new_count)
		redis.call('EXPIRE', KEYS[1], tonumber(ARGV[2]))
		return new_count
	`

	getCountersLua = `
		local result = {}
		for i, key in ipairs(KEYS) do
			result[i] = tonumber(redis.call('GET', key) or '0')
		end
		return result
	`
)

var (
	incrementCounterScript = redis.NewScript(incrementCounterLua)
	getCountersScript      = redis.NewScript(getCountersLua)
)

// DuelCounters - счетчики игрока в redis. Обновляются по событиям дуэлей
type DuelCounters struct {
	scripter redis.Scripter
	ttl      time.Duration
}

func NewDuelCounters(scripter redis.Scripter) *DuelCounters {
	return &DuelCounters{scripter: scripter, ttl: COUNTER_TTL}
}

func counterKey(userID string, counterType CounterType) string {
	return fmt.Sprintf("counter:%s:%s", userID, counterType)
}

// Increment атомарно меняет счетчик на delta и возвращает новое значение
func (c *DuelCounters) Increment(ctx context.Context, userID string, counterType CounterType, delta int64) (int64, error) {
	count, err := incrementCounterScript.Run(ctx, c.scripter,
		[]string{counterKey(userID, counterType)},
		delta, int64(c.ttl.Seconds()),
	).Int64()
	if err != nil {
		return 0, fmt.Errorf("failed to increment counter %s of %s: %w", counterType, userID, err)
	}
	return count, nil
}

// GetAll читает все счетчики пользователя одним скриптом
func (c *DuelCounters) GetAll(ctx context.Context, userID string) (map[CounterType]int64, error) {
	keys := make([]string, len(counterTypes))
	for i, t := range counterTypes {
		keys[i] = counterKey(userID, t)
	}
	values, err := getCountersScript.Run(ctx, c.scripter, keys).Slice()
	if err != nil {
		return nil, fmt.Errorf("failed to get counters of %s: %w", userID, err)
	}
	counters := make(map[CounterType]int64, len(counterTypes))
	for i, t := range counterTypes {
		counters[t] = 0
		if i < len(values) {
			if count, ok := values[i].(int64); ok {
				counters[t] = count
			}
		}
	}
	return counters, nil
}

type counterUpdate struct {
	userID      string
	counterType CounterType
	delta       int64
}

// counterUpdates - изменения счетчиков по уведомлению. Роли в уведомлении
// уже после перехода: на success/failure source - тот, кто отвечал в раунде
func counterUpdates(n models.DuelNotification) []counterUpdate {
	switch n.Event {
	case models.EventChallenge:
		return []counterUpdate{{n.TargetUserID, CounterPendingChallenges, 1}}
	case models.EventAttempt:
		return []counterUpdate{{n.TargetUserID, CounterPendingChallenges, -1}}
	case models.EventSuccess:
		return []counterUpdate{
			{n.SourceUserID, CounterRoundsPlayed, 1},
			{n.TargetUserID, CounterRoundsPlayed, 1},
			{n.SourceUserID, CounterRoundsWon, 1},
		}
	case models.EventFailure:
		return []counterUpdate{
			{n.SourceUserID, CounterRoundsPlayed, 1},
			{n.TargetUserID, CounterRoundsPlayed, 1},
		}
	}
	return nil
}

// Publish применяет событие дуэли к счетчикам. Первая ошибка возвращается,
// остальные обновления всё равно выполняются
func (c *DuelCounters) Publish(ctx context.Context, n models.DuelNotification) error {
	var firstErr error
	for _, u := range counterUpdates(n) {
		if u.userID == "" {
			continue
		}
		if _, err := c.Increment(ctx, u.userID, u.counterType, u.delta); err != nil {
			log.Println(err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}
