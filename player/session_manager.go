package player

import (
	"encoding/json"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SessionManager maintains the registry of all connected player sessions.
// The guild service uses it for online lookups and notification fan-out.
type SessionManager struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*Session
	logger   *zap.Logger
}

// NewSessionManager creates a new SessionManager.
func NewSessionManager(logger *zap.Logger) *SessionManager {
	return &SessionManager{
		sessions: make(map[uuid.UUID]*Session),
		logger:   logger,
	}
}

// Register adds a session. If a previous session exists for the same player,
// it is closed first (handles duplicate login / reconnect).
func (sm *SessionManager) Register(s *Session) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if old, ok := sm.sessions[s.PlayerUUID]; ok {
		old.Close()
		sm.logger.Info("duplicate session displaced",
			zap.String("player_uuid", s.PlayerUUID.String()))
	}
	sm.sessions[s.PlayerUUID] = s
	sm.logger.Info("player session registered",
		zap.String("player_uuid", s.PlayerUUID.String()),
		zap.String("player_name", s.PlayerName))
}

// Unregister removes the session for a player.
func (sm *SessionManager) Unregister(playerUUID uuid.UUID) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	delete(sm.sessions, playerUUID)
	sm.logger.Info("player session unregistered",
		zap.String("player_uuid", playerUUID.String()))
}

// Get returns the session for a player, or nil if not connected.
func (sm *SessionManager) Get(playerUUID uuid.UUID) *Session {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.sessions[playerUUID]
}

// IsOnline reports whether a player is currently connected.
func (sm *SessionManager) IsOnline(playerUUID uuid.UUID) bool {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	_, ok := sm.sessions[playerUUID]
	return ok
}

// Count returns the number of currently connected sessions.
func (sm *SessionManager) Count() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.sessions)
}

// NotifyPlayers sends a packet to each listed player that is online.
// Offline players are skipped; slow connections drop rather than block.
func (sm *SessionManager) NotifyPlayers(players []uuid.UUID, pkt *Packet) {
	data, err := json.Marshal(pkt)
	if err != nil {
		sm.logger.Error("failed to marshal notification packet", zap.Error(err))
		return
	}

	sm.mu.RLock()
	targets := make([]*Session, 0, len(players))
	for _, p := range players {
		if s, ok := sm.sessions[p]; ok {
			targets = append(targets, s)
		}
	}
	sm.mu.RUnlock()

	for _, s := range targets {
		s.SendRaw(data)
	}
}

// CloseAll closes every connected session.
func (sm *SessionManager) CloseAll() {
	sm.mu.Lock()
	sessions := make([]*Session, 0, len(sm.sessions))
	for _, s := range sm.sessions {
		sessions = append(sessions, s)
	}
	sm.mu.Unlock()

	sm.logger.Info("closing all sessions", zap.Int("count", len(sessions)))
	for _, s := range sessions {
		s.Close()
	}
}
