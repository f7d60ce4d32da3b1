package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"wordduel/models"

	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeScripter исполняет оба скрипта счетчиков над map вместо redis
type fakeScripter struct {
	mu     sync.Mutex
	values map[string]int64
	err    error
}

func newFakeScripter() *fakeScripter {
	return &fakeScripter{values: make(map[string]int64)}
}

func (f *fakeScripter) EvalSha(_ context.Context, _ string, _ []string, _ ...interface{}) *redis.Cmd {
	return redis.NewCmdResult(nil, errors.New("NOSCRIPT No matching script"))
}

func (f *fakeScripter) Eval(_ context.Context, script string, keys []string, args ...interface{}) *redis.Cmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return redis.NewCmdResult(nil, f.err)
	}
	switch script {
	case incrementCounterLua:
		count := f.values[keys[0]] + args[0].(int64)
		if count < 0 {
			count = 0
		}
		f.values[keys[0]] = count
		return redis.NewCmdResult(count, nil)
	case getCountersLua:
		out := make([]interface{}, len(keys))
		for i, key := range keys {
			out[i] = f.values[key]
		}
		return redis.NewCmdResult(out, nil)
	}
	return redis.NewCmdResult(nil, errors.New("unknown script"))
}

func (f *fakeScripter) ScriptExists(_ context.Context, hashes ...string) *redis.BoolSliceCmd {
	return redis.NewBoolSliceResult(make([]bool, len(hashes)), nil)
}

func (f *fakeScripter) ScriptLoad(_ context.Context, _ string) *redis.StringCmd {
	return redis.NewStringResult("", nil)
}

func TestCountersIncrementClampsAtZero(t *testing.T) {
	ctx := context.Background()
	counters := NewDuelCounters(newFakeScripter())

	count, err := counters.Increment(ctx, "A", CounterPendingChallenges, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	count, err = counters.Increment(ctx, "A", CounterPendingChallenges, -5)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}

func TestCountersGetAll(t *testing.T) {
	ctx := context.Background()
	counters := NewDuelCounters(newFakeScripter())
	_, err := counters.Increment(ctx, "A", CounterRoundsWon, 3)
	require.NoError(t, err)

	all, err := counters.GetAll(ctx, "A")
	require.NoError(t, err)
	assert.Equal(t, map[CounterType]int64{
		CounterPendingChallenges: 0,
		CounterRoundsPlayed:      0,
		CounterRoundsWon:         3,
	}, all)
}

func TestCountersFollowDuelEvents(t *testing.T) {
	ctx := context.Background()
	scripter := newFakeScripter()
	f := newGameFixture(t)
	counters := NewDuelCounters(scripter)
	f.game = NewGameService(f.store, f.identity,
		WithIDGenerator(sequentialIDs("id")),
		WithEventPublisher(f.publisher),
		WithCounters(counters),
	)
	seedUser(t, f.store, "A")
	seedUser(t, f.store, "B")
	duelID := f.befriend(t, "A", "B")

	require.True(t, f.game.UpdateDuel(ctx, models.DuelUpdateRequest{DuelID: duelID, Event: models.EventChallenge, Challenge: jumble("A", "WORD")}))
	pending, code := f.game.GetCounters(ctx, "B")
	require.Equal(t, ResultOK, code)
	assert.Equal(t, int64(1), pending[CounterPendingChallenges])

	require.True(t, f.game.UpdateDuel(ctx, models.DuelUpdateRequest{DuelID: duelID, Event: models.EventAttempt}))
	require.True(t, f.game.UpdateDuel(ctx, models.DuelUpdateRequest{DuelID: duelID, Event: models.EventSuccess}))

	b, _ := f.game.GetCounters(ctx, "B")
	assert.Equal(t, map[CounterType]int64{
		CounterPendingChallenges: 0,
		CounterRoundsPlayed:      1,
		CounterRoundsWon:         1,
	}, b)
	a, _ := f.game.GetCounters(ctx, "A")
	assert.Equal(t, int64(1), a[CounterRoundsPlayed])
	assert.Equal(t, int64(0), a[CounterRoundsWon])

	// остальные получатели событий работают как раньше
	assert.Len(t, f.publisher.notifications, 3)
}

func TestCountersFailureDoesNotBlockDuel(t *testing.T) {
	ctx := context.Background()
	scripter := newFakeScripter()
	scripter.err = errors.New("redis down")
	f := newGameFixture(t)
	f.game = NewGameService(f.store, f.identity, WithIDGenerator(sequentialIDs("id")), WithCounters(NewDuelCounters(scripter)))
	seedUser(t, f.store, "A")
	seedUser(t, f.store, "B")
	duelID := f.befriend(t, "A", "B")

	assert.True(t, f.game.UpdateDuel(ctx, models.DuelUpdateRequest{DuelID: duelID, Event: models.EventFailure}))
	_, code := f.game.GetCounters(ctx, "A")
	assert.Equal(t, ResultFailed, code)
}

func TestGetCountersDisabled(t *testing.T) {
	f := newGameFixture(t)
	_, code := f.game.GetCounters(context.Background(), "A")
	assert.Equal(t, ResultRejected, code)
}
