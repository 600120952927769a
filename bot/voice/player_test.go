package voice

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConnection struct {
	mu           sync.Mutex
	played       []string
	volumes      []float64
	offsets      []time.Duration
	started      chan string
	finish       chan error
	active       atomic.Int32
	disconnected atomic.Bool
}

func newFakeConnection() *fakeConnection {
	return &fakeConnection{
		started: make(chan string, 16),
		finish:  make(chan error),
	}
}

func (f *fakeConnection) Play(ctx context.Context, track *Track, volume float64, offset time.Duration) error {
	f.active.Add(1)
	defer f.active.Add(-1)

	f.mu.Lock()
	f.played = append(f.played, track.Title)
	f.volumes = append(f.volumes, volume)
	f.offsets = append(f.offsets, offset)
	f.mu.Unlock()
	f.started <- track.Title

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-f.finish:
		return err
	}
}

func (f *fakeConnection) Disconnect() error {
	f.disconnected.Store(true)
	return nil
}

func (f *fakeConnection) playedTitles() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.played...)
}

func (f *fakeConnection) playedVolumes() []float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]float64(nil), f.volumes...)
}

func (f *fakeConnection) playedOffsets() []time.Duration {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]time.Duration(nil), f.offsets...)
}

type fakeConnector struct {
	conn *fakeConnection
}

func (f *fakeConnector) Join(guildID, channelID string) (Connection, error) {
	return f.conn, nil
}

type staticResolver struct{}

func (staticResolver) Resolve(ctx context.Context, query string) (*Track, error) {
	return &Track{Title: query, StreamURL: "https://stream/" + query}, nil
}

func newTestManager(t *testing.T, grace time.Duration) (*Manager, *fakeConnection) {
	t.Helper()
	conn := newFakeConnection()
	m := NewManager(&fakeConnector{conn: conn}, staticResolver{}, nil, grace, 0.5)
	return m, conn
}

func waitStarted(t *testing.T, conn *fakeConnection) string {
	t.Helper()
	select {
	case title := <-conn.started:
		return title
	case <-time.After(time.Second):
		t.Fatal("no track started")
		return ""
	}
}

func TestPlayer_PlaysQueueInOrder(t *testing.T) {
	m, conn := newTestManager(t, time.Hour)
	p, err := m.Join("g1", "c1")
	require.NoError(t, err)

	assert.Equal(t, 0, p.Enqueue(&Track{Title: "one"}))
	assert.Equal(t, 1, p.Enqueue(&Track{Title: "two"}))
	assert.Equal(t, 2, p.Enqueue(&Track{Title: "three"}))

	assert.Equal(t, "one", waitStarted(t, conn))
	assert.Equal(t, StatePlaying, p.State())
	assert.Len(t, p.Queue(), 2)

	conn.finish <- nil
	assert.Equal(t, "two", waitStarted(t, conn))
	conn.finish <- nil
	assert.Equal(t, "three", waitStarted(t, conn))
	conn.finish <- nil

	require.Eventually(t, func() bool {
		return p.State() == StateIdle
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{"one", "two", "three"}, conn.playedTitles())
	assert.Empty(t, p.Queue())
}

func TestPlayer_SkipAdvancesOnce(t *testing.T) {
	m, conn := newTestManager(t, time.Hour)
	p, err := m.Join("g1", "c1")
	require.NoError(t, err)

	p.Enqueue(&Track{Title: "one"})
	p.Enqueue(&Track{Title: "two"})
	waitStarted(t, conn)

	assert.True(t, p.Skip())
	assert.Equal(t, "two", waitStarted(t, conn))
	assert.Equal(t, []string{"one", "two"}, conn.playedTitles())

	conn.finish <- nil
	require.Eventually(t, func() bool {
		return p.State() == StateIdle
	}, time.Second, 5*time.Millisecond)
	assert.False(t, p.Skip(), "nothing left to skip")
}

func TestPlayer_StopClearsQueue(t *testing.T) {
	m, conn := newTestManager(t, time.Hour)
	p, err := m.Join("g1", "c1")
	require.NoError(t, err)

	p.Enqueue(&Track{Title: "one"})
	p.Enqueue(&Track{Title: "two"})
	waitStarted(t, conn)

	p.Stop()

	assert.Equal(t, StateIdle, p.State())
	assert.Empty(t, p.Queue())
	assert.Nil(t, p.NowPlaying())

	// The cancelled stream's completion report must not restart anything.
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, []string{"one"}, conn.playedTitles())
}

func TestPlayer_LoopRequeuesFinishedTrack(t *testing.T) {
	m, conn := newTestManager(t, time.Hour)
	p, err := m.Join("g1", "c1")
	require.NoError(t, err)

	p.SetLoop(true)
	p.Enqueue(&Track{Title: "one"})
	waitStarted(t, conn)
	conn.finish <- nil
	assert.Equal(t, "one", waitStarted(t, conn))

	p.SetLoop(false)
	conn.finish <- nil
	require.Eventually(t, func() bool {
		return p.State() == StateIdle
	}, time.Second, 5*time.Millisecond)
}

func TestPlayer_SetVolumeAppliesToRunningTrack(t *testing.T) {
	m, conn := newTestManager(t, time.Hour)
	p, err := m.Join("g1", "c1")
	require.NoError(t, err)

	p.Enqueue(&Track{Title: "one"})
	p.Enqueue(&Track{Title: "two"})
	waitStarted(t, conn)

	p.SetVolume(0.8)

	// The running track restarts at its elapsed position with the new
	// volume, without touching the queue.
	assert.Equal(t, "one", waitStarted(t, conn))
	require.Eventually(t, func() bool {
		return conn.active.Load() == 1
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, []float64{0.5, 0.8}, conn.playedVolumes())
	offsets := conn.playedOffsets()
	require.Len(t, offsets, 2)
	assert.Zero(t, offsets[0])
	assert.GreaterOrEqual(t, offsets[1], time.Duration(0))
	assert.Equal(t, StatePlaying, p.State())
	assert.Len(t, p.Queue(), 1)

	// The restarted stream's natural completion advances the queue once.
	conn.finish <- nil
	assert.Equal(t, "two", waitStarted(t, conn))
	assert.Equal(t, 0.8, p.Volume())

	conn.finish <- nil
	require.Eventually(t, func() bool {
		return p.State() == StateIdle
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{"one", "one", "two"}, conn.playedTitles())
}

func TestPlayer_SetVolumeWhileIdleOnlySetsDefault(t *testing.T) {
	m, conn := newTestManager(t, time.Hour)
	p, err := m.Join("g1", "c1")
	require.NoError(t, err)

	p.SetVolume(0.2)
	assert.Equal(t, 0.2, p.Volume())
	assert.Empty(t, conn.playedTitles())

	p.Enqueue(&Track{Title: "one"})
	waitStarted(t, conn)
	assert.Equal(t, []float64{0.2}, conn.playedVolumes())
	conn.finish <- nil
}

func TestPlayer_IdleGraceDisconnects(t *testing.T) {
	m, conn := newTestManager(t, 30*time.Millisecond)
	_, err := m.Join("g1", "c1")
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return conn.disconnected.Load()
	}, time.Second, 5*time.Millisecond)
	_, connected := m.Player("g1")
	assert.False(t, connected)
}

func TestPlayer_EnqueueDuringGraceKeepsConnection(t *testing.T) {
	m, conn := newTestManager(t, 40*time.Millisecond)
	p, err := m.Join("g1", "c1")
	require.NoError(t, err)

	// Start a track before the join grace elapses, then keep the player
	// busy past the original deadline.
	p.Enqueue(&Track{Title: "one"})
	waitStarted(t, conn)
	time.Sleep(80 * time.Millisecond)

	assert.False(t, conn.disconnected.Load())
	assert.Equal(t, StatePlaying, p.State())

	conn.finish <- nil
	require.Eventually(t, func() bool {
		return conn.disconnected.Load()
	}, time.Second, 5*time.Millisecond)
}

func TestPlayer_IdleGraceKeepsConnectionWithListeners(t *testing.T) {
	m, conn := newTestManager(t, 30*time.Millisecond)
	m.Listeners = func(guildID string) int { return 2 }

	_, err := m.Join("g1", "c1")
	require.NoError(t, err)

	// Nothing ever plays, but people are in the channel.
	time.Sleep(80 * time.Millisecond)
	assert.False(t, conn.disconnected.Load())
	_, connected := m.Player("g1")
	assert.True(t, connected)
}

func TestManager_AloneGraceRechecksListeners(t *testing.T) {
	m, conn := newTestManager(t, 30*time.Millisecond)
	var listeners atomic.Int32
	listeners.Store(1)
	m.Listeners = func(guildID string) int { return int(listeners.Load()) }

	p, err := m.Join("g1", "c1")
	require.NoError(t, err)
	p.Enqueue(&Track{Title: "one"})
	waitStarted(t, conn)

	// Everyone leaves, but someone returns before the grace elapses.
	m.HandleListenerChange("g1", 0)
	listeners.Store(1)
	time.Sleep(60 * time.Millisecond)
	assert.False(t, conn.disconnected.Load())

	// Everyone leaves for good.
	listeners.Store(0)
	m.HandleListenerChange("g1", 0)
	require.Eventually(t, func() bool {
		return conn.disconnected.Load()
	}, time.Second, 5*time.Millisecond)
	_, connected := m.Player("g1")
	assert.False(t, connected)
}

func TestManager_LeaveWithoutConnection(t *testing.T) {
	m, _ := newTestManager(t, time.Hour)
	assert.ErrorIs(t, m.Leave("g1"), ErrNotConnected)
}
