package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/wricardo/boxpusher/game/engine"
	"github.com/wricardo/boxpusher/game/level"
	"github.com/wricardo/boxpusher/logger"
)

var (
	ErrLevelNotSolved = errors.New("level not solved yet")
	ErrNoMoreLevels   = errors.New("no more levels in pack")
)

// settleLimit bounds the animation time a bulk move may fast-forward
const settleLimit = 10.0

// gameServiceImpl implements the GameService interface
type gameServiceImpl struct {
	sessions SessionManager
	packs    PackManager
	mu       sync.RWMutex
	log      *logrus.Entry
}

// NewGameService creates a new game service instance
func NewGameService(sessions SessionManager, packs PackManager) GameService {
	return &gameServiceImpl{
		sessions: sessions,
		packs:    packs,
		log:      logger.Component("service"),
	}
}

// CreateSession creates a new game session. An empty packID uses the
// default pack.
func (s *gameServiceImpl) CreateSession(ctx context.Context, packID string, levelIndex int) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if packID == "" {
		packID = s.packs.DefaultPackID()
	}

	pack, err := s.packs.LoadPack(packID)
	if err != nil {
		// Provide helpful error message with available options
		if infos, listErr := s.packs.ListPacks(); listErr == nil && len(infos) > 0 {
			var ids []string
			for _, info := range infos {
				ids = append(ids, info.PackID)
			}
			return nil, fmt.Errorf("failed to load pack '%s' (available: %s): %w", packID, strings.Join(ids, ", "), err)
		}
		return nil, fmt.Errorf("failed to load pack '%s': %w", packID, err)
	}

	// Let session manager generate a proper 4-character ID
	sess, err := s.sessions.Create("", packID, pack, levelIndex)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return sessionInfo(sess), nil
}

func sessionInfo(sess *Session) *SessionInfo {
	return &SessionInfo{
		ID:             sess.ID,
		PackID:         sess.PackID,
		PackName:       sess.Pack.Name,
		LevelIndex:     sess.LevelIndex,
		LevelCount:     sess.Pack.Len(),
		LevelName:      sess.Engine.Level().Name,
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: sess.LastAccessedAt,
		GameState:      sess.Engine.Snapshot(),
	}
}

// GetSession retrieves session information
func (s *gameServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.touch(sessionID)
	if err != nil {
		return nil, err
	}
	return sessionInfo(sess), nil
}

// touch writes LastAccessedAt, so callers hold the write lock
func (s *gameServiceImpl) touch(sessionID string) (*Session, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}
	s.sessions.UpdateLastAccessed(sessionID)
	return sess, nil
}

// ListSessions returns all active sessions
func (s *gameServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := s.sessions.List()
	result := make([]*SessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		result = append(result, sessionInfo(sess))
	}
	return result, nil
}

// DeleteSession removes a session
func (s *gameServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.sessions.Delete(sessionID)
}

// CleanupExpired closes sessions idle for longer than maxAge. It shares the
// lock with Tick so no engine is closed mid-frame.
func (s *gameServiceImpl) CleanupExpired(ctx context.Context, maxAge time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := s.sessions.CleanupExpiredSessions(maxAge)
	if removed > 0 {
		s.log.WithField("removed", removed).Info("expired sessions cleaned up")
	}
	return removed
}

// Move starts a single move. The result reflects the logical grid right
// away; the animation runs on later ticks.
func (s *gameServiceImpl) Move(ctx context.Context, sessionID, direction string) (*MoveResult, error) {
	dir, err := engine.ParseDirection(direction)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.touch(sessionID)
	if err != nil {
		return nil, err
	}

	out := sess.Engine.TryMove(dir)
	result := &MoveResult{
		Success:   !out.Blocked(),
		Outcome:   out,
		GameState: sess.Engine.Snapshot(),
		Message:   out.Message(),
		Events:    moveEvents(sess.Engine, out),
	}

	s.log.WithFields(logrus.Fields{
		"session":   sess.ID,
		"direction": dir.String(),
		"result":    out.Result.String(),
	}).Debug("move")

	return result, nil
}

// moveEvents generates events from a move outcome
func moveEvents(eng engine.Engine, out engine.MoveOutcome) []GameEvent {
	now := time.Now()
	switch out.Result {
	case engine.Blocked:
		return []GameEvent{{Type: "blocked", Message: out.Message(), Timestamp: now, Position: out.Player.From}}
	case engine.Moved:
		return []GameEvent{{Type: "move", Message: out.Message(), Timestamp: now, Position: out.Player.To}}
	}

	events := []GameEvent{{Type: "push", Message: out.Message(), Timestamp: now, Position: out.Box.To}}
	if t, ok := eng.State().Tile(out.Box.To); ok && t.Kind == level.Target {
		events = append(events, GameEvent{
			Type:      "box_on_target",
			Message:   fmt.Sprintf("Box on target (%d/%d)", engine.BoxesOnTargets(eng.State()), len(eng.State().Targets())),
			Timestamp: now,
			Position:  out.Box.To,
		})
	}
	return events
}

// BulkMove executes multiple moves in sequence, fast-forwarding each
// animation, and stops at the first blocked move or once solved
func (s *gameServiceImpl) BulkMove(ctx context.Context, sessionID string, moves []string) (*BulkMoveResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.touch(sessionID)
	if err != nil {
		return nil, err
	}
	eng := sess.Engine
	eng.Settle(settleLimit)

	result := &BulkMoveResult{
		RequestedMoves: len(moves),
		Events:         make([]GameEvent, 0),
		Success:        true,
		StartPos:       eng.State().PlayerPosition(),
	}

	if len(moves) > engine.MaxBulkMoves {
		moves = moves[:engine.MaxBulkMoves]
		result.Truncated = true
		result.Limit = engine.MaxBulkMoves
	}

	for i, raw := range moves {
		if eng.IsFinishedAndSolved() {
			result.StopReasonCode = "solved"
			result.StoppedReason = "Level already solved"
			result.StoppedOnMove = i + 1
			break
		}

		dir, err := engine.ParseDirection(raw)
		if err != nil {
			result.Success = false
			result.StopReasonCode = "invalid_direction"
			result.StoppedReason = err.Error()
			result.StoppedOnMove = i + 1
			break
		}

		out := eng.TryMove(dir)
		eng.Settle(settleLimit)
		result.Events = append(result.Events, moveEvents(eng, out)...)
		result.Steps = append(result.Steps, StepInfo{
			Idx:    i + 1,
			Dir:    dir.String(),
			From:   out.Player.From,
			To:     out.Player.To,
			Result: out.Result,
			Box:    out.Box,
		})

		if out.Blocked() {
			result.Success = false
			result.StopReasonCode = string(out.Reason)
			result.StoppedReason = out.Message()
			result.StoppedOnMove = i + 1
			break
		}
		result.MovesExecuted++
	}

	result.EndPos = eng.State().PlayerPosition()
	result.Solved = eng.IsFinishedAndSolved()
	if result.Solved {
		result.Events = append(result.Events, GameEvent{
			Type:      "solved",
			Message:   fmt.Sprintf("Level %q solved", eng.Level().Name),
			Timestamp: time.Now(),
			Position:  result.EndPos,
		})
	}
	result.GameState = eng.Snapshot()
	result.Message = result.GameState.Message
	result.PossibleMoves = eng.GetPossibleMoves()

	return result, nil
}

// Restart puts the session's level back to its starting layout
func (s *gameServiceImpl) Restart(ctx context.Context, sessionID string) (*engine.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.touch(sessionID)
	if err != nil {
		return nil, err
	}
	sess.Engine.Restart()
	return sess.Engine.Snapshot(), nil
}

// NextLevel moves a solved session on to the next level of its pack
func (s *gameServiceImpl) NextLevel(ctx context.Context, sessionID string) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.touch(sessionID)
	if err != nil {
		return nil, err
	}
	if !sess.Engine.IsFinishedAndSolved() {
		return nil, ErrLevelNotSolved
	}
	if !sess.HasNextLevel() {
		return nil, ErrNoMoreLevels
	}

	sess, err = s.sessions.SetLevel(sess.ID, sess.LevelIndex+1)
	if err != nil {
		return nil, fmt.Errorf("failed to load next level: %w", err)
	}

	s.log.WithFields(logrus.Fields{
		"session": sess.ID,
		"level":   sess.LevelIndex,
	}).Info("advanced to next level")

	return sessionInfo(sess), nil
}

// Tick advances the animations of every session by dt seconds
func (s *gameServiceImpl) Tick(ctx context.Context, dt float64) []SessionFrames {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []SessionFrames
	for _, sess := range s.sessions.List() {
		wasLocked := sess.Engine.InputLocked()
		frames := sess.Engine.Tick(dt)
		unlocked := wasLocked && !sess.Engine.InputLocked()
		if len(frames) == 0 && !unlocked {
			continue
		}
		update := SessionFrames{
			SessionID: sess.ID,
			Frames:    frames,
			Unlocked:  unlocked,
			Solved:    unlocked && sess.Engine.IsFinishedAndSolved(),
		}
		if unlocked {
			update.State = sess.Engine.Snapshot()
		}
		out = append(out, update)
	}
	return out
}

// GetGameState retrieves the current game state
func (s *gameServiceImpl) GetGameState(ctx context.Context, sessionID string) (*engine.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.touch(sessionID)
	if err != nil {
		return nil, err
	}
	return sess.Engine.Snapshot(), nil
}

// GetMoveHistory returns paginated move history
func (s *gameServiceImpl) GetMoveHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}

	history := sess.Engine.GetMoveHistory()
	total := len(history)

	// Apply defaults
	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.Limit <= 0 {
		opts.Limit = 20
	}
	if opts.Limit > 100 {
		opts.Limit = 100
	}
	if opts.Order == "" {
		opts.Order = "desc"
	}

	totalPages := (total + opts.Limit - 1) / opts.Limit
	if totalPages == 0 {
		totalPages = 1
	}

	start := (opts.Page - 1) * opts.Limit
	end := start + opts.Limit
	if end > total {
		end = total
	}

	moves := []engine.MoveHistoryEntry{}
	if opts.Order == "desc" {
		// Most recent first
		for i := total - 1 - start; i >= 0 && i >= total-end; i-- {
			moves = append(moves, history[i])
		}
	} else if start < total {
		moves = append(moves, history[start:end]...)
	}

	return &HistoryResponse{
		Moves:       moves,
		TotalMoves:  total,
		Page:        opts.Page,
		PageSize:    opts.Limit,
		TotalPages:  totalPages,
		HasNext:     opts.Page < totalPages,
		HasPrevious: opts.Page > 1,
	}, nil
}

// ListPacks returns available level packs
func (s *gameServiceImpl) ListPacks(ctx context.Context) ([]*PackInfo, error) {
	return s.packs.ListPacks()
}

// GetPack describes every level of a pack
func (s *gameServiceImpl) GetPack(ctx context.Context, packID string) (*PackDetail, error) {
	pack, err := s.packs.LoadPack(packID)
	if err != nil {
		return nil, err
	}

	detail := &PackDetail{PackInfo: packInfo(packID, "", pack)}
	for i, l := range pack.Levels {
		detail.LevelList = append(detail.LevelList, LevelSummary{Index: i, Name: l.Name, Stats: l.Stats()})
	}
	for _, e := range pack.Rejected {
		detail.Errors = append(detail.Errors, e.Error())
	}
	return detail, nil
}

// GetLevel returns the static layout of one level
func (s *gameServiceImpl) GetLevel(ctx context.Context, packID string, index int) (*LevelDetail, error) {
	pack, err := s.packs.LoadPack(packID)
	if err != nil {
		return nil, err
	}
	l, err := pack.Level(index)
	if err != nil {
		return nil, err
	}
	return &LevelDetail{
		PackID:      packID,
		Index:       index,
		Name:        l.Name,
		Description: l.Description,
		Rows:        strings.Split(level.Format(l), "\n"),
		Stats:       l.Stats(),
	}, nil
}

// SavePack validates pack text and stores it
func (s *gameServiceImpl) SavePack(ctx context.Context, packID, text string) (*PackInfo, error) {
	pack, err := s.packs.SavePack(packID, text)
	if err != nil {
		return nil, err
	}
	info := packInfo(packID, "", pack)
	return &info, nil
}

// packInfo summarizes a pack
func packInfo(packID, filename string, pack *level.Pack) PackInfo {
	return PackInfo{
		Filename:    filename,
		PackID:      packID,
		Name:        pack.Name,
		Description: pack.Description,
		Levels:      pack.Len(),
		Rejected:    len(pack.Rejected),
	}
}

// NewPackInfo summarizes a pack loaded from filename
func NewPackInfo(packID, filename string, pack *level.Pack) *PackInfo {
	info := packInfo(packID, filename, pack)
	return &info
}
