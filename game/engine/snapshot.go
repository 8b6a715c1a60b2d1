package engine

import "github.com/wricardo/boxpusher/game/level"

// Snapshot is a serializable view of an engine
type Snapshot struct {
	LevelName      string              `json:"level_name"`
	Width          int                 `json:"width"`
	Height         int                 `json:"height"`
	Rows           []string            `json:"rows"`
	Player         level.Coordinates   `json:"player"`
	Facing         Direction           `json:"facing"`
	Boxes          []level.Coordinates `json:"boxes"`
	Targets        []level.Coordinates `json:"targets"`
	BoxesOnTargets int                 `json:"boxes_on_targets"`
	InputLocked    bool                `json:"input_locked"`
	Solved         bool                `json:"solved"`
	Finished       bool                `json:"finished"`
	Message        string              `json:"message"`
	PossibleMoves  []Direction         `json:"possible_moves"`
	LocalView      []SurroundingCell   `json:"local_view"`
	MoveHistory    []MoveHistoryEntry  `json:"move_history"`
	Actors         []Frame             `json:"actors"`
}

// Snapshot captures the current state
func (e *GameEngine) Snapshot() *Snapshot {
	s := e.state
	snap := &Snapshot{
		LevelName:      s.Name(),
		Width:          s.Width(),
		Height:         s.Height(),
		Rows:           s.Rows(),
		Player:         s.PlayerPosition(),
		Facing:         s.Facing(),
		Boxes:          s.Boxes(),
		Targets:        s.Targets(),
		BoxesOnTargets: BoxesOnTargets(s),
		InputLocked:    e.inputLocked,
		Solved:         s.IsSolved(),
		Finished:       e.IsFinishedAndSolved(),
		Message:        e.message,
		PossibleMoves:  e.GetPossibleMoves(),
		LocalView:      s.LocalView(),
		MoveHistory:    append([]MoveHistoryEntry(nil), e.history...),
	}

	for _, row := range s.tiles {
		for _, t := range row {
			if a, ok := e.actors[t.Object.Handle]; ok && t.Object.Kind != level.None {
				snap.Actors = append(snap.Actors, Frame{
					Handle:      a.handle,
					Kind:        a.kind,
					Coordinates: a.cell,
					Transform:   a.tf,
				})
			}
		}
	}
	return snap
}
