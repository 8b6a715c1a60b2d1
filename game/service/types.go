package service

import (
	"time"

	"github.com/wricardo/boxpusher/game/engine"
	"github.com/wricardo/boxpusher/game/level"
)

// SessionInfo provides information about a game session
type SessionInfo struct {
	ID             string           `json:"id"`
	PackID         string           `json:"pack_id"`
	PackName       string           `json:"pack_name"`
	LevelIndex     int              `json:"level_index"`
	LevelCount     int              `json:"level_count"`
	LevelName      string           `json:"level_name"`
	CreatedAt      time.Time        `json:"created_at"`
	LastAccessedAt time.Time        `json:"last_accessed_at"`
	GameState      *engine.Snapshot `json:"game_state"`
}

// MoveResult contains the result of a move operation
type MoveResult struct {
	Success   bool               `json:"success"`
	Outcome   engine.MoveOutcome `json:"outcome"`
	GameState *engine.Snapshot   `json:"game_state"`
	Message   string             `json:"message"`
	Events    []GameEvent        `json:"events,omitempty"`
}

// BulkMoveResult contains the result of multiple moves. Each move is
// fast-forwarded to the end of its animation before the next one.
type BulkMoveResult struct {
	MovesExecuted  int              `json:"moves_executed"`
	RequestedMoves int              `json:"requested_moves"`
	Success        bool             `json:"success"`
	GameState      *engine.Snapshot `json:"game_state"`
	Events         []GameEvent      `json:"events"`
	StoppedReason  string           `json:"stopped_reason,omitempty"`
	StopReasonCode string           `json:"stop_reason_code,omitempty"` // wall|void|out_of_bounds|box_blocked|invalid_direction|solved
	StoppedOnMove  int              `json:"stopped_on_move,omitempty"`  // 1-based index of the move that caused stop
	Truncated      bool             `json:"truncated,omitempty"`
	Limit          int              `json:"limit,omitempty"`

	StartPos level.Coordinates `json:"start_pos"`
	EndPos   level.Coordinates `json:"end_pos"`

	Steps []StepInfo `json:"steps,omitempty"`

	Solved        bool               `json:"solved"`
	Message       string             `json:"message,omitempty"`
	PossibleMoves []engine.Direction `json:"possible_moves,omitempty"`
}

// StepInfo is a compact record for each executed move in the bulk call
type StepInfo struct {
	Idx    int               `json:"idx"`
	Dir    string            `json:"dir"`
	From   level.Coordinates `json:"from"`
	To     level.Coordinates `json:"to"`
	Result engine.MoveResult `json:"result"`
	Box    *engine.Step      `json:"box,omitempty"`
}

// GameEvent represents an event that occurred during gameplay
type GameEvent struct {
	Type      string            `json:"type"` // "move", "push", "box_on_target", "blocked", "restart", "level", "solved"
	Message   string            `json:"message"`
	Timestamp time.Time         `json:"timestamp"`
	Position  level.Coordinates `json:"position,omitempty"`
}

// HistoryOptions configures move history retrieval
type HistoryOptions struct {
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
	Order string `json:"order"` // "asc" or "desc"
}

// HistoryResponse contains paginated move history
type HistoryResponse struct {
	Moves       []engine.MoveHistoryEntry `json:"moves"`
	TotalMoves  int                       `json:"total_moves"`
	Page        int                       `json:"page"`
	PageSize    int                       `json:"page_size"`
	TotalPages  int                       `json:"total_pages"`
	HasNext     bool                      `json:"has_next"`
	HasPrevious bool                      `json:"has_previous"`
}

// PackInfo provides information about a level pack
type PackInfo struct {
	Filename    string `json:"filename"`
	PackID      string `json:"pack_id"` // The identifier to use for session creation
	Name        string `json:"name"`    // Display name from the pack header
	Description string `json:"description"`
	Levels      int    `json:"levels"`
	Rejected    int    `json:"rejected"`
}

// LevelSummary describes one level of a pack
type LevelSummary struct {
	Index int    `json:"index"`
	Name  string `json:"name"`
	level.Stats
}

// PackDetail lists the levels of a pack
type PackDetail struct {
	PackInfo
	LevelList []LevelSummary `json:"level_list"`
	Errors    []string       `json:"errors,omitempty"`
}

// LevelDetail is the static layout of one level
type LevelDetail struct {
	PackID      string   `json:"pack_id"`
	Index       int      `json:"index"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Rows        []string `json:"rows"`
	level.Stats
}

// SessionFrames is what one clock tick changed in a session
type SessionFrames struct {
	SessionID string         `json:"session_id"`
	Frames    []engine.Frame `json:"frames"`
	Unlocked  bool           `json:"unlocked"`
	Solved    bool           `json:"solved"`
	// State is set on unlock
	State *engine.Snapshot `json:"state,omitempty"`
}
