package gamesession

import (
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quizSession(answer string, timeout time.Duration, outcomes chan<- string) *Session {
	return &Session{
		Timeout: timeout,
		OnMessage: func(content string) Outcome {
			if strings.TrimSpace(content) == "" {
				return Ignore
			}
			if content == answer {
				return Match
			}
			return Fail
		},
		OnSuccess: func(string) { outcomes <- "success" },
		OnFailure: func(string) { outcomes <- "failure" },
		OnTimeout: func() { outcomes <- "timeout" },
	}
}

func TestStart_RejectsSecondSessionForSameKey(t *testing.T) {
	m := NewManager()
	key := Key{UserID: "1", ChannelID: "2"}
	outcomes := make(chan string, 1)

	require.NoError(t, m.Start(key, quizSession("42", time.Minute, outcomes)))
	assert.ErrorIs(t, m.Start(key, quizSession("42", time.Minute, outcomes)), ErrSessionActive)

	// A different channel is a different game.
	other := Key{UserID: "1", ChannelID: "3"}
	assert.NoError(t, m.Start(other, quizSession("42", time.Minute, outcomes)))
}

func TestResolve_MatchAndFail(t *testing.T) {
	m := NewManager()
	key := Key{UserID: "1", ChannelID: "2"}
	outcomes := make(chan string, 1)

	require.NoError(t, m.Start(key, quizSession("42", time.Minute, outcomes)))
	assert.False(t, m.Resolve(key, "   "), "ignored message leaves the session running")
	assert.True(t, m.Active(key))

	assert.True(t, m.Resolve(key, "42"))
	assert.Equal(t, "success", <-outcomes)
	assert.False(t, m.Active(key))

	require.NoError(t, m.Start(key, quizSession("42", time.Minute, outcomes)))
	assert.True(t, m.Resolve(key, "41"))
	assert.Equal(t, "failure", <-outcomes)
	assert.False(t, m.Active(key))
}

func TestResolve_UnknownKey(t *testing.T) {
	m := NewManager()
	assert.False(t, m.Resolve(Key{UserID: "1", ChannelID: "2"}, "42"))
}

func TestTimeout_FiresExactlyOnce(t *testing.T) {
	m := NewManager()
	key := Key{UserID: "1", ChannelID: "2"}
	outcomes := make(chan string, 2)

	require.NoError(t, m.Start(key, quizSession("42", 20*time.Millisecond, outcomes)))

	select {
	case got := <-outcomes:
		assert.Equal(t, "timeout", got)
	case <-time.After(time.Second):
		t.Fatal("timeout callback never fired")
	}
	assert.False(t, m.Active(key))

	// The slot is free again after expiry.
	assert.NoError(t, m.Start(key, quizSession("42", time.Minute, outcomes)))
	assert.True(t, m.Resolve(key, "42"))
	assert.Equal(t, "success", <-outcomes)

	select {
	case got := <-outcomes:
		t.Fatalf("unexpected extra outcome %q", got)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestResolve_ConcurrentAnswersFireOneCallback(t *testing.T) {
	m := NewManager()
	key := Key{UserID: "1", ChannelID: "2"}

	var fired atomic.Int32
	session := &Session{
		Timeout:   time.Minute,
		OnMessage: func(string) Outcome { return Match },
		OnSuccess: func(string) { fired.Add(1) },
		OnFailure: func(string) { fired.Add(1) },
		OnTimeout: func() { fired.Add(1) },
	}
	require.NoError(t, m.Start(key, session))

	var wg sync.WaitGroup
	for n := 0; n < 16; n++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.Resolve(key, "42")
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), fired.Load())
}

func TestTimeout_PanickingCallbackFreesSlot(t *testing.T) {
	m := NewManager()
	key := Key{UserID: "1", ChannelID: "2"}

	fired := make(chan struct{})
	session := &Session{
		Timeout:   20 * time.Millisecond,
		OnMessage: func(string) Outcome { return Ignore },
		OnTimeout: func() {
			close(fired)
			panic("boom")
		},
	}
	require.NoError(t, m.Start(key, session))

	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("timeout callback never fired")
	}

	// The panic stays inside the manager and the key is usable again.
	require.Eventually(t, func() bool {
		return !m.Active(key)
	}, time.Second, 10*time.Millisecond)
	outcomes := make(chan string, 1)
	assert.NoError(t, m.Start(key, quizSession("42", time.Minute, outcomes)))
}

func TestResolve_PanickingJudgeDropsSession(t *testing.T) {
	m := NewManager()
	key := Key{UserID: "1", ChannelID: "2"}

	session := &Session{
		Timeout:   time.Minute,
		OnMessage: func(string) Outcome { panic("boom") },
	}
	require.NoError(t, m.Start(key, session))

	assert.NotPanics(t, func() {
		m.Resolve(key, "anything")
	})
	assert.False(t, m.Active(key))
}

func TestCancel_SuppressesCallbacks(t *testing.T) {
	m := NewManager()
	key := Key{UserID: "1", ChannelID: "2"}
	outcomes := make(chan string, 1)

	require.NoError(t, m.Start(key, quizSession("42", 20*time.Millisecond, outcomes)))
	assert.True(t, m.Cancel(key))
	assert.False(t, m.Cancel(key))

	select {
	case got := <-outcomes:
		t.Fatalf("callback %q fired after cancel", got)
	case <-time.After(60 * time.Millisecond):
	}
}
