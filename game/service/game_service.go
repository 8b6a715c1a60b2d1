package service

import (
	"context"
	"time"

	"github.com/wricardo/boxpusher/game/engine"
	"github.com/wricardo/boxpusher/game/level"
)

// GameService defines all game-related operations
type GameService interface {
	// Session Management
	CreateSession(ctx context.Context, packID string, levelIndex int) (*SessionInfo, error)
	GetSession(ctx context.Context, sessionID string) (*SessionInfo, error)
	ListSessions(ctx context.Context) ([]*SessionInfo, error)
	DeleteSession(ctx context.Context, sessionID string) error
	CleanupExpired(ctx context.Context, maxAge time.Duration) int

	// Game Operations
	Move(ctx context.Context, sessionID, direction string) (*MoveResult, error)
	BulkMove(ctx context.Context, sessionID string, moves []string) (*BulkMoveResult, error)
	Restart(ctx context.Context, sessionID string) (*engine.Snapshot, error)
	NextLevel(ctx context.Context, sessionID string) (*SessionInfo, error)
	Tick(ctx context.Context, dt float64) []SessionFrames

	// Game State
	GetGameState(ctx context.Context, sessionID string) (*engine.Snapshot, error)
	GetMoveHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error)

	// Packs
	ListPacks(ctx context.Context) ([]*PackInfo, error)
	GetPack(ctx context.Context, packID string) (*PackDetail, error)
	GetLevel(ctx context.Context, packID string, index int) (*LevelDetail, error)
	SavePack(ctx context.Context, packID, text string) (*PackInfo, error)
}

// SessionManager defines session storage operations
type SessionManager interface {
	Create(id, packID string, pack *level.Pack, levelIndex int) (*Session, error)
	Get(id string) (*Session, error)
	List() []*Session
	Delete(id string) error
	UpdateLastAccessed(id string) error
	SetLevel(id string, levelIndex int) (*Session, error)
	CleanupExpiredSessions(maxAge time.Duration) int
}

// PackManager handles level pack loading
type PackManager interface {
	LoadPack(name string) (*level.Pack, error)
	ListPacks() ([]*PackInfo, error)
	DefaultPackID() string
	SavePack(name, text string) (*level.Pack, error)
}

// Session represents an active game session
type Session struct {
	ID             string
	PackID         string
	Pack           *level.Pack
	LevelIndex     int
	Engine         *engine.GameEngine
	CreatedAt      time.Time
	LastAccessedAt time.Time
}

// HasNextLevel reports whether the pack continues after the current level
func (s *Session) HasNextLevel() bool {
	return s.LevelIndex+1 < s.Pack.Len()
}
