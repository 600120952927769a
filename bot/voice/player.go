package voice

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	log "github.com/sirupsen/logrus"

	"rumia/events"
)

var transitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "rumia_playback_transitions_total",
	Help: "Audio player state transitions.",
}, []string{"from", "to"})

// State is the audio player's lifecycle state.
type State int

const (
	// StateIdle means connected with nothing playing.
	StateIdle State = iota
	// StatePlaying means a track is streaming.
	StatePlaying
)

func (s State) String() string {
	switch s {
	case StatePlaying:
		return "playing"
	default:
		return "idle"
	}
}

// Player runs one guild's audio playback. All mutation goes through its
// mutex; the blocking stream itself runs on a playback goroutine that
// reports back through finished.
type Player struct {
	guildID   string
	channelID string
	bus       *events.Bus
	grace     time.Duration
	onIdle    func()

	mu        sync.Mutex
	state     State
	conn      Connection
	queue     []*Track
	current   *Track
	cancel    context.CancelFunc
	playSeq   int
	startedAt time.Time
	offset    time.Duration
	volume    float64
	loop      bool
	idleTimer *time.Timer
	closed    bool
}

// Enqueue adds a track. When nothing is playing the track starts
// immediately and position 0 is returned; otherwise the queue position.
func (p *Player) Enqueue(track *Track) int {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return 0
	}
	if p.state == StateIdle && p.current == nil {
		p.startLocked(track)
		return 0
	}
	p.queue = append(p.queue, track)
	return len(p.queue)
}

// Skip stops the current track. The playback goroutine then advances the
// queue, so one skip causes exactly one advance.
func (p *Player) Skip() bool {
	p.mu.Lock()
	cancel := p.cancel
	p.mu.Unlock()
	if cancel == nil {
		return false
	}
	cancel()
	return true
}

// Stop drops the queue and the current track and returns the player to idle.
func (p *Player) Stop() {
	p.mu.Lock()
	p.queue = nil
	cancel := p.cancel
	p.cancel = nil
	p.current = nil
	if p.state != StateIdle {
		p.transitionLocked(StateIdle, "")
	}
	p.armIdleLocked()
	p.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}

// SetVolume applies a volume to the running track and to everything after
// it. The encoder fixes gain when a stream starts, so the live stream is
// restarted at its elapsed position with the new volume.
func (p *Player) SetVolume(volume float64) {
	p.mu.Lock()
	p.volume = volume
	if p.closed || p.current == nil {
		p.mu.Unlock()
		return
	}
	oldCancel := p.cancel
	elapsed := p.offset + time.Since(p.startedAt)
	p.beginStreamLocked(p.current, elapsed)
	p.mu.Unlock()

	if oldCancel != nil {
		oldCancel()
	}
}

func (p *Player) Volume() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.volume
}

// SetLoop toggles re-queueing of finished tracks.
func (p *Player) SetLoop(loop bool) {
	p.mu.Lock()
	p.loop = loop
	p.mu.Unlock()
}

// NowPlaying returns the current track, nil when idle.
func (p *Player) NowPlaying() *Track {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current
}

// Queue returns a snapshot of the pending tracks.
func (p *Player) Queue() []*Track {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]*Track(nil), p.queue...)
}

// ChannelID returns the voice channel the player joined.
func (p *Player) ChannelID() string {
	return p.channelID
}

func (p *Player) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// startLocked launches playback of a track from the top. Caller holds the
// lock and has verified the player is idle.
func (p *Player) startLocked(track *Track) {
	p.current = track
	if p.idleTimer != nil {
		p.idleTimer.Stop()
		p.idleTimer = nil
	}
	p.transitionLocked(StatePlaying, track.Title)
	p.beginStreamLocked(track, 0)
}

// beginStreamLocked spawns a playback goroutine for the current track at an
// offset. Each stream carries a generation number; a superseded stream's
// completion report is discarded, so a volume restart never advances the
// queue.
func (p *Player) beginStreamLocked(track *Track, offset time.Duration) {
	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	p.playSeq++
	p.startedAt = time.Now()
	p.offset = offset

	seq := p.playSeq
	conn := p.conn
	volume := p.volume
	go func() {
		err := conn.Play(ctx, track, volume, offset)
		p.finished(seq, track, err)
	}()
}

// finished is a playback goroutine's completion report. The generation and
// identity checks discard reports from superseded streams and from tracks
// that Stop already cleared, so the queue advances at most once per
// completion.
func (p *Player) finished(seq int, track *Track, err error) {
	p.mu.Lock()
	if p.closed || seq != p.playSeq || p.current != track {
		p.mu.Unlock()
		return
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		log.WithError(err).WithFields(log.Fields{
			"guild_id": p.guildID,
			"track":    track.Title,
		}).Warn("playback ended with error")
	}
	p.current = nil
	p.cancel = nil

	if p.loop {
		p.queue = append(p.queue, track)
	}
	if len(p.queue) > 0 {
		next := p.queue[0]
		p.queue = p.queue[1:]
		p.startLocked(next)
		p.mu.Unlock()
		return
	}
	p.transitionLocked(StateIdle, "")
	p.armIdleLocked()
	p.mu.Unlock()
}

// armIdleLocked schedules the idle disconnect. When the timer fires the
// player re-checks its state; an enqueue during the grace period keeps the
// connection.
func (p *Player) armIdleLocked() {
	if p.idleTimer != nil {
		p.idleTimer.Stop()
	}
	p.idleTimer = time.AfterFunc(p.grace, p.idleCheck)
}

func (p *Player) idleCheck() {
	p.mu.Lock()
	if p.closed || p.state != StateIdle || p.current != nil || len(p.queue) > 0 {
		p.mu.Unlock()
		return
	}
	p.mu.Unlock()

	log.WithField("guild_id", p.guildID).Info("idle grace elapsed, leaving voice channel")
	if p.onIdle != nil {
		p.onIdle()
	}
}

// shutdown tears the player down. Called by the manager with the player
// already unregistered.
func (p *Player) shutdown() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	cancel := p.cancel
	p.cancel = nil
	p.current = nil
	p.queue = nil
	if p.idleTimer != nil {
		p.idleTimer.Stop()
		p.idleTimer = nil
	}
	conn := p.conn
	p.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	return conn.Disconnect()
}

func (p *Player) transitionLocked(to State, track string) {
	from := p.state
	p.state = to
	transitionsTotal.WithLabelValues(from.String(), to.String()).Inc()
	if p.bus != nil {
		guildID, _ := strconv.ParseInt(p.guildID, 10, 64)
		p.bus.Emit(context.Background(), events.PlaybackChangeEvent{
			GuildID: guildID,
			From:    from.String(),
			To:      to.String(),
			Track:   track,
		})
	}
}
