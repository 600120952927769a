package gamesession

import (
	"errors"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

// ErrSessionActive is returned when a user already has a running game in the
// channel.
var ErrSessionActive = errors.New("a game is already running in this channel")

// Outcome is a session's verdict on an incoming message.
type Outcome int

const (
	// Ignore leaves the session running; the message was not an answer.
	Ignore Outcome = iota
	// Match ends the session as a win.
	Match
	// Fail ends the session as a loss.
	Fail
)

// Key identifies a session. One user can run one game per channel.
type Key struct {
	UserID    string
	ChannelID string
}

// Session is a message-driven game awaiting the player's answer. OnMessage
// judges each message from the player; exactly one of OnSuccess, OnFailure
// and OnTimeout will fire, after which the session is gone.
type Session struct {
	Timeout   time.Duration
	OnMessage func(content string) Outcome
	OnSuccess func(content string)
	OnFailure func(content string)
	OnTimeout func()
}

type active struct {
	session *Session
	timer   *time.Timer
}

// Manager owns the running sessions. All callbacks run outside the manager
// lock, so a callback may freely start a new session.
type Manager struct {
	mu       sync.Mutex
	sessions map[Key]*active
}

func NewManager() *Manager {
	return &Manager{sessions: make(map[Key]*active)}
}

// Start registers a session and arms its timeout. It fails with
// ErrSessionActive when the key is taken.
func (m *Manager) Start(key Key, session *Session) error {
	m.mu.Lock()
	if _, exists := m.sessions[key]; exists {
		m.mu.Unlock()
		return ErrSessionActive
	}
	a := &active{session: session}
	a.timer = time.AfterFunc(session.Timeout, func() {
		m.expire(key, a)
	})
	m.sessions[key] = a
	m.mu.Unlock()
	return nil
}

// Resolve feeds a message to the key's session, if any. It reports whether a
// session consumed the message. An Ignore verdict leaves the session and its
// timer untouched.
func (m *Manager) Resolve(key Key, content string) bool {
	m.mu.Lock()
	a, ok := m.sessions[key]
	m.mu.Unlock()
	if !ok {
		return false
	}

	switch m.judge(key, a, content) {
	case Match:
		if m.remove(key, a) {
			m.fire(key, func() { a.session.OnSuccess(content) })
		}
		return true
	case Fail:
		if m.remove(key, a) {
			m.fire(key, func() { a.session.OnFailure(content) })
		}
		return true
	default:
		return false
	}
}

// judge runs OnMessage. A panicking judge kills its own session rather than
// the gateway handler that delivered the message.
func (m *Manager) judge(key Key, a *active, content string) Outcome {
	defer func() {
		if r := recover(); r != nil {
			log.WithFields(log.Fields{
				"channel_id": key.ChannelID,
				"panic":      r,
			}).Error("Game session judge panicked")
			m.remove(key, a)
		}
	}()
	return a.session.OnMessage(content)
}

// fire runs a terminal callback. The session is already gone by the time it
// runs, so a panic here must not escape into the caller's goroutine.
func (m *Manager) fire(key Key, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			log.WithFields(log.Fields{
				"channel_id": key.ChannelID,
				"panic":      r,
			}).Error("Game session callback panicked")
		}
	}()
	fn()
}

// Cancel drops a session without firing any callback. It reports whether a
// session was running.
func (m *Manager) Cancel(key Key) bool {
	m.mu.Lock()
	a, ok := m.sessions[key]
	m.mu.Unlock()
	if !ok {
		return false
	}
	return m.remove(key, a)
}

// Active reports whether the key has a running session.
func (m *Manager) Active(key Key) bool {
	m.mu.Lock()
	_, ok := m.sessions[key]
	m.mu.Unlock()
	return ok
}

// remove deletes the session only if it is still the one we resolved. The
// identity check is what makes resolution and timeout mutually exclusive.
func (m *Manager) remove(key Key, a *active) bool {
	m.mu.Lock()
	current, ok := m.sessions[key]
	if !ok || current != a {
		m.mu.Unlock()
		return false
	}
	delete(m.sessions, key)
	m.mu.Unlock()
	a.timer.Stop()
	return true
}

func (m *Manager) expire(key Key, a *active) {
	if m.remove(key, a) {
		m.fire(key, a.session.OnTimeout)
	}
}
