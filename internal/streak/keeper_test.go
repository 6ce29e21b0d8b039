package streak

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type countingExpirer struct {
	calls atomic.Int32
	err   error
}

func (e *countingExpirer) ExpireStreak(ctx context.Context) (bool, error) {
	e.calls.Add(1)
	return e.err == nil, e.err
}

func TestKeeperRunsImmediatelyAndOnTick(t *testing.T) {
	e := &countingExpirer{}
	k := NewKeeper(e, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	k.Start(ctx)

	assert.Eventually(t, func() bool { return e.calls.Load() >= 3 }, time.Second, 5*time.Millisecond)
	cancel()
}

func TestKeeperSurvivesErrors(t *testing.T) {
	e := &countingExpirer{err: errors.New("storage down")}
	k := NewKeeper(e, time.Hour)

	k.Check(context.Background())
	k.Check(context.Background())
	assert.Equal(t, int32(2), e.calls.Load())
}

func TestNewKeeperDefaultsInterval(t *testing.T) {
	k := NewKeeper(&countingExpirer{}, 0)
	assert.Equal(t, time.Hour, k.interval)
}
