package session

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/wricardo/boxpusher/game/engine"
	"github.com/wricardo/boxpusher/game/level"
	"github.com/wricardo/boxpusher/game/service"
	"github.com/wricardo/boxpusher/logger"
)

var (
	ErrSessionNotFound      = errors.New("session not found")
	ErrSessionAlreadyExists = errors.New("session already exists")
	ErrInvalidSessionID     = errors.New("invalid session ID")
)

const maxSessionIDLength = 32

// Manager handles game session lifecycle
type Manager struct {
	sessions map[string]*service.Session
	profile  engine.Profile
	scenes   func(sessionID string) engine.Scene
	mu       sync.RWMutex
}

// Option configures a Manager
type Option func(*Manager)

// WithProfile sets the animation profile of new engines
func WithProfile(p engine.Profile) Option {
	return func(m *Manager) {
		m.profile = p
	}
}

// WithSceneFactory gives every session its own rendering collaborator
func WithSceneFactory(f func(sessionID string) engine.Scene) Option {
	return func(m *Manager) {
		m.scenes = f
	}
}

// NewManager creates a new session manager
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		sessions: make(map[string]*service.Session),
		profile:  engine.DefaultProfile(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// SetProfile changes the animation profile of engines created from now on
func (m *Manager) SetProfile(p engine.Profile) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.profile = p
}

// Create creates a new session playing the given level of a pack
func (m *Manager) Create(id, packID string, pack *level.Pack, levelIndex int) (*service.Session, error) {
	if id != "" && !validSessionID(id) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidSessionID, id)
	}
	if pack == nil {
		return nil, fmt.Errorf("failed to create session: %w", level.ErrEmptyPack)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if id == "" {
		id = m.generateSessionID()
		for m.sessions[id] != nil {
			id = m.generateSessionID()
		}
	}

	// Check if session already exists (case-insensitive)
	if _, exists := m.sessions[strings.ToLower(id)]; exists {
		return nil, ErrSessionAlreadyExists
	}

	eng, err := m.newEngine(id, pack, levelIndex)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	session := &service.Session{
		ID:             id,
		PackID:         packID,
		Pack:           pack,
		LevelIndex:     levelIndex,
		Engine:         eng,
		CreatedAt:      now,
		LastAccessedAt: now,
	}
	m.sessions[strings.ToLower(id)] = session

	logger.Component("session").WithFields(logrus.Fields{
		"session": id,
		"pack":    packID,
		"level":   levelIndex,
	}).Info("session created")

	return session, nil
}

func (m *Manager) newEngine(id string, pack *level.Pack, levelIndex int) (*engine.GameEngine, error) {
	lvl, err := pack.Level(levelIndex)
	if err != nil {
		return nil, err
	}

	opts := []engine.Option{engine.WithProfile(m.profile)}
	if m.scenes != nil {
		opts = append(opts, engine.WithScene(m.scenes(id)))
	}
	eng, err := engine.NewEngine(lvl, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create engine: %w", err)
	}
	return eng, nil
}

// Get retrieves a session by ID (case-insensitive)
func (m *Manager) Get(id string) (*service.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if session, exists := m.sessions[strings.ToLower(id)]; exists {
		return session, nil
	}
	return nil, ErrSessionNotFound
}

// SetLevel replaces the session's engine with one on another level of the
// same pack
func (m *Manager) SetLevel(id string, levelIndex int) (*service.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, exists := m.sessions[strings.ToLower(id)]
	if !exists {
		return nil, ErrSessionNotFound
	}

	eng, err := m.newEngine(session.ID, session.Pack, levelIndex)
	if err != nil {
		return nil, err
	}
	session.Engine.Close()
	session.Engine = eng
	session.LevelIndex = levelIndex
	session.LastAccessedAt = time.Now()

	return session, nil
}

// List returns all active sessions
func (m *Manager) List() []*service.Session {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*service.Session, 0, len(m.sessions))
	for _, session := range m.sessions {
		result = append(result, session)
	}

	return result
}

// Delete removes a session and releases its engine
func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := strings.ToLower(id)
	session, exists := m.sessions[key]
	if !exists {
		return ErrSessionNotFound
	}

	session.Engine.Close()
	delete(m.sessions, key)
	return nil
}

// UpdateLastAccessed updates the last accessed time for a session
func (m *Manager) UpdateLastAccessed(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, exists := m.sessions[strings.ToLower(id)]
	if !exists {
		return ErrSessionNotFound
	}

	session.LastAccessedAt = time.Now()
	return nil
}

// CleanupExpiredSessions removes sessions that haven't been accessed in the given duration
// It closes engines, so callers must not run it alongside engine ticks.
func (m *Manager) CleanupExpiredSessions(maxAge time.Duration) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := time.Now().Add(-maxAge)
	removed := 0

	for id, session := range m.sessions {
		if session.LastAccessedAt.Before(cutoff) {
			session.Engine.Close()
			delete(m.sessions, id)
			removed++
		}
	}

	return removed
}

// Count returns the number of active sessions
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// generateSessionID generates a random 4-character session ID
func (m *Manager) generateSessionID() string {
	// Generate 2 random bytes (4 hex characters)
	bytes := make([]byte, 2)
	rand.Read(bytes)
	return hex.EncodeToString(bytes)
}

func validSessionID(id string) bool {
	if len(id) > maxSessionIDLength {
		return false
	}
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
		default:
			return false
		}
	}
	return true
}
