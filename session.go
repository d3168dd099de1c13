package main

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const maxSessions = 100

// Session is one joinable match, identified by an opaque UUID
type Session struct {
	ID   string
	Name string
	Game *Game
}

// SessionManager handles creation and lookup of sessions. This is the
// matchmaking boundary: create, list and join by opaque identifier.
type SessionManager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	log      *zap.Logger
}

// NewSessionManager creates a new SessionManager
func NewSessionManager(log *zap.Logger) *SessionManager {
	if log == nil {
		log = zap.NewNop()
	}
	return &SessionManager{
		sessions: make(map[string]*Session),
		log:      log,
	}
}

// CreateSession creates a new game session and starts its tick loop.
// Returns nil if the session limit is reached.
func (sm *SessionManager) CreateSession(name string, db *DB, analytics *Analytics) *Session {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if len(sm.sessions) >= maxSessions {
		return nil
	}

	id := uuid.NewString()
	game := NewGame(DefaultMatchConfig(), db, analytics, sm.log.With(zap.String("session", id)))
	sess := &Session{
		ID:   id,
		Name: name,
		Game: game,
	}
	sm.sessions[id] = sess
	go game.Run()
	sm.log.Info("session created", zap.String("session", id), zap.String("name", name))
	return sess
}

// GetSession returns a session by ID
func (sm *SessionManager) GetSession(id string) *Session {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.sessions[id]
}

// RemovePlayer removes a player from a session and reaps the session
// once it is empty.
func (sm *SessionManager) RemovePlayer(sessionID, playerID string) {
	sm.mu.RLock()
	sess, ok := sm.sessions[sessionID]
	sm.mu.RUnlock()
	if !ok {
		return
	}
	sess.Game.Leave(playerID)

	if sess.Game.PlayerCount() <= 1 {
		// The leave above is applied at the next tick; reap lazily when
		// the last known player is going away.
		go sm.reapIfEmpty(sessionID)
	}
}

// reapIfEmpty stops and removes a session with no players left. Waits a
// few ticks first so a pending leave has been drained.
func (sm *SessionManager) reapIfEmpty(sessionID string) {
	time.Sleep(3 * TickDuration)
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sess, ok := sm.sessions[sessionID]
	if !ok || sess.Game.PlayerCount() > 0 {
		return
	}
	sess.Game.Stop()
	delete(sm.sessions, sessionID)
	sm.log.Info("session reaped", zap.String("session", sessionID))
}

// ListSessions returns info about all active sessions
func (sm *SessionManager) ListSessions() []SessionInfo {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	list := make([]SessionInfo, 0, len(sm.sessions))
	for _, sess := range sm.sessions {
		list = append(list, SessionInfo{
			ID:      sess.ID,
			Name:    sess.Name,
			Players: sess.Game.PlayerCount(),
		})
	}
	return list
}
