package events

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func waitForCount(t *testing.T, counter *atomic.Int32, want int32) {
	t.Helper()
	require.Eventually(t, func() bool {
		return counter.Load() == want
	}, time.Second, 5*time.Millisecond)
}

func TestBus_EmitReachesAllSubscribers(t *testing.T) {
	bus := NewBus()
	var handled atomic.Int32

	bus.Subscribe(EventTypeBalanceChange, func(ctx context.Context, e Event) {
		handled.Add(1)
	})
	bus.Subscribe(EventTypeBalanceChange, func(ctx context.Context, e Event) {
		handled.Add(1)
	})
	bus.Subscribe(EventTypeModerationLog, func(ctx context.Context, e Event) {
		t.Error("wrong event type delivered")
	})

	bus.Emit(context.Background(), BalanceChangeEvent{UserID: 1, CashDelta: 100})
	waitForCount(t, &handled, 2)
}

func TestBus_PanickingHandlerIsContained(t *testing.T) {
	bus := NewBus()
	var handled atomic.Int32

	bus.Subscribe(EventTypeBalanceChange, func(ctx context.Context, e Event) {
		panic("handler bug")
	})
	bus.Subscribe(EventTypeBalanceChange, func(ctx context.Context, e Event) {
		handled.Add(1)
	})

	bus.Emit(context.Background(), BalanceChangeEvent{UserID: 1})
	waitForCount(t, &handled, 1)
}

func TestTransactionalBus_FlushAfterCommit(t *testing.T) {
	bus := NewBus()
	var handled atomic.Int32
	bus.Subscribe(EventTypeBalanceChange, func(ctx context.Context, e Event) {
		handled.Add(1)
	})

	txBus := NewTransactionalBus(bus)
	txBus.Publish(BalanceChangeEvent{UserID: 1})
	txBus.Publish(BalanceChangeEvent{UserID: 2})

	// Nothing is delivered before the flush.
	time.Sleep(20 * time.Millisecond)
	assert.Zero(t, handled.Load())

	txBus.Flush()
	waitForCount(t, &handled, 2)

	// A second flush must not replay.
	txBus.Flush()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, int32(2), handled.Load())
}

func TestTransactionalBus_DiscardDropsPending(t *testing.T) {
	bus := NewBus()
	var handled atomic.Int32
	bus.Subscribe(EventTypeBalanceChange, func(ctx context.Context, e Event) {
		handled.Add(1)
	})

	txBus := NewTransactionalBus(bus)
	txBus.Publish(BalanceChangeEvent{UserID: 1})
	txBus.Discard()
	txBus.Flush()

	time.Sleep(20 * time.Millisecond)
	assert.Zero(t, handled.Load())
}
