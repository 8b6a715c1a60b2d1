package engine

import (
	"sync"

	"github.com/wricardo/boxpusher/game/level"
)

// Handle is an opaque key for a visual instance owned by a Scene. Zero
// means no instance.
type Handle uint64

// HandleKind tells the scene what to instantiate
type HandleKind int

const (
	HandleFloor HandleKind = iota
	HandleWall
	HandleTarget
	HandlePlayer
	HandleBox
)

// Transform is the visual placement of an instance
type Transform struct {
	X    float64 `json:"x"`
	Z    float64 `json:"z"`
	RotY float64 `json:"rot_y"`
}

// Scene is the rendering collaborator. Implementations must hand out
// distinct non-zero handles.
type Scene interface {
	Acquire(kind HandleKind, at level.Coordinates) Handle
	Release(h Handle)
	Apply(h Handle, t Transform)
	Pose(h Handle, name string, duration float64)
}

// NopScene hands out handles and ignores everything else
type NopScene struct {
	mu   sync.Mutex
	next Handle
}

func (s *NopScene) Acquire(HandleKind, level.Coordinates) Handle {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	return s.next
}

func (s *NopScene) Release(Handle)               {}
func (s *NopScene) Apply(Handle, Transform)      {}
func (s *NopScene) Pose(Handle, string, float64) {}

// RecordingScene keeps the latest state of every live handle
type RecordingScene struct {
	mu         sync.Mutex
	next       Handle
	Kinds      map[Handle]HandleKind
	Transforms map[Handle]Transform
	Poses      map[Handle][]string
	Released   []Handle
}

func NewRecordingScene() *RecordingScene {
	return &RecordingScene{
		Kinds:      make(map[Handle]HandleKind),
		Transforms: make(map[Handle]Transform),
		Poses:      make(map[Handle][]string),
	}
}

func (s *RecordingScene) Acquire(kind HandleKind, _ level.Coordinates) Handle {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	s.Kinds[s.next] = kind
	return s.next
}

func (s *RecordingScene) Release(h Handle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.Kinds, h)
	delete(s.Transforms, h)
	s.Released = append(s.Released, h)
}

func (s *RecordingScene) Apply(h Handle, t Transform) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Transforms[h] = t
}

func (s *RecordingScene) Pose(h Handle, name string, _ float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Poses[h] = append(s.Poses[h], name)
}

// Live returns the number of handles not yet released
func (s *RecordingScene) Live() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Kinds)
}

func tileHandleKind(k level.TileKind) (HandleKind, bool) {
	switch k {
	case level.Floor:
		return HandleFloor, true
	case level.Wall:
		return HandleWall, true
	case level.Target:
		return HandleTarget, true
	}
	return 0, false
}
