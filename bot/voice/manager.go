package voice

import (
	"context"
	"errors"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"rumia/events"
)

// ErrNotConnected is returned for playback operations in a guild without a
// voice connection.
var ErrNotConnected = errors.New("not connected to a voice channel")

// Manager owns one player per guild. It also watches listener counts and
// disconnects players left alone, with the same grace and re-check rules as
// playback idling.
type Manager struct {
	connector Connector
	resolver  TrackResolver
	bus       *events.Bus
	grace     time.Duration
	volume    float64

	// Listeners reports the human listener count in a guild's voice
	// channel. Set by the gateway before use.
	Listeners func(guildID string) int

	mu          sync.Mutex
	players     map[string]*Player
	aloneTimers map[string]*time.Timer
}

func NewManager(connector Connector, resolver TrackResolver, bus *events.Bus, grace time.Duration, defaultVolume float64) *Manager {
	return &Manager{
		connector:   connector,
		resolver:    resolver,
		bus:         bus,
		grace:       grace,
		volume:      defaultVolume,
		players:     make(map[string]*Player),
		aloneTimers: make(map[string]*time.Timer),
	}
}

// Join connects to a voice channel and registers the guild's player. Joining
// while already connected moves the connection by recreating the player,
// dropping its queue.
func (m *Manager) Join(guildID, channelID string) (*Player, error) {
	m.mu.Lock()
	existing, ok := m.players[guildID]
	m.mu.Unlock()
	if ok {
		if existing.channelID == channelID {
			return existing, nil
		}
		if err := m.Leave(guildID); err != nil {
			log.WithError(err).WithField("guild_id", guildID).Warn("failed to leave previous voice channel")
		}
	}

	conn, err := m.connector.Join(guildID, channelID)
	if err != nil {
		return nil, err
	}

	p := &Player{
		guildID:   guildID,
		channelID: channelID,
		bus:       m.bus,
		grace:     m.grace,
		conn:      conn,
		volume:    m.volume,
	}
	p.onIdle = func() {
		// People still listening keep the connection; emptying out later
		// is handled by the alone-timer.
		if ls := m.Listeners; ls != nil && ls(guildID) > 0 {
			return
		}
		if err := m.Leave(guildID); err != nil {
			log.WithError(err).WithField("guild_id", guildID).Warn("idle disconnect failed")
		}
	}

	m.mu.Lock()
	m.players[guildID] = p
	m.mu.Unlock()

	p.mu.Lock()
	p.armIdleLocked()
	p.mu.Unlock()
	return p, nil
}

// Player returns the guild's player, if connected.
func (m *Manager) Player(guildID string) (*Player, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.players[guildID]
	return p, ok
}

// Resolve looks up a playable track for a query.
func (m *Manager) Resolve(ctx context.Context, query, requesterID string) (*Track, error) {
	track, err := m.resolver.Resolve(ctx, query)
	if err != nil {
		return nil, err
	}
	track.RequesterID = requesterID
	return track, nil
}

// Leave disconnects and discards the guild's player.
func (m *Manager) Leave(guildID string) error {
	m.mu.Lock()
	p, ok := m.players[guildID]
	delete(m.players, guildID)
	if timer, armed := m.aloneTimers[guildID]; armed {
		timer.Stop()
		delete(m.aloneTimers, guildID)
	}
	m.mu.Unlock()
	if !ok {
		return ErrNotConnected
	}
	return p.shutdown()
}

// Shutdown disconnects every player.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	players := make([]*Player, 0, len(m.players))
	for _, p := range m.players {
		players = append(players, p)
	}
	m.players = make(map[string]*Player)
	for _, timer := range m.aloneTimers {
		timer.Stop()
	}
	m.aloneTimers = make(map[string]*time.Timer)
	m.mu.Unlock()

	for _, p := range players {
		if err := p.shutdown(); err != nil {
			log.WithError(err).WithField("guild_id", p.guildID).Warn("voice disconnect failed")
		}
	}
}

// HandleListenerChange reacts to voice channel occupancy. Zero listeners
// arms a grace timer; the timer re-checks occupancy before disconnecting so
// a listener returning in time keeps the connection.
func (m *Manager) HandleListenerChange(guildID string, listeners int) {
	m.mu.Lock()
	_, connected := m.players[guildID]
	if !connected {
		m.mu.Unlock()
		return
	}

	if listeners > 0 {
		if timer, armed := m.aloneTimers[guildID]; armed {
			timer.Stop()
			delete(m.aloneTimers, guildID)
		}
		m.mu.Unlock()
		return
	}

	if _, armed := m.aloneTimers[guildID]; armed {
		m.mu.Unlock()
		return
	}
	m.aloneTimers[guildID] = time.AfterFunc(m.grace, func() {
		m.aloneCheck(guildID)
	})
	m.mu.Unlock()
}

func (m *Manager) aloneCheck(guildID string) {
	m.mu.Lock()
	delete(m.aloneTimers, guildID)
	listeners := m.Listeners
	m.mu.Unlock()

	if listeners != nil && listeners(guildID) > 0 {
		return
	}

	log.WithField("guild_id", guildID).Info("alone in voice channel, disconnecting")
	if err := m.Leave(guildID); err != nil && !errors.Is(err, ErrNotConnected) {
		log.WithError(err).WithField("guild_id", guildID).Warn("alone disconnect failed")
	}
}
