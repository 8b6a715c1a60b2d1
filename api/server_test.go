package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	gorillaws "github.com/gorilla/websocket"

	"github.com/wricardo/boxpusher/game/config"
	"github.com/wricardo/boxpusher/game/engine"
	"github.com/wricardo/boxpusher/game/level"
	"github.com/wricardo/boxpusher/game/service"
	"github.com/wricardo/boxpusher/game/session"
	"github.com/wricardo/boxpusher/logger"
	"github.com/wricardo/boxpusher/transport/websocket"
)

func init() {
	logger.Silence()
}

// MockGameService implements service.GameService for testing
type MockGameService struct {
	CreateSessionFunc  func(ctx context.Context, packID string, levelIndex int) (*service.SessionInfo, error)
	GetSessionFunc     func(ctx context.Context, sessionID string) (*service.SessionInfo, error)
	ListSessionsFunc   func(ctx context.Context) ([]*service.SessionInfo, error)
	DeleteSessionFunc  func(ctx context.Context, sessionID string) error
	CleanupExpiredFunc func(ctx context.Context, maxAge time.Duration) int
	MoveFunc           func(ctx context.Context, sessionID, direction string) (*service.MoveResult, error)
	BulkMoveFunc       func(ctx context.Context, sessionID string, moves []string) (*service.BulkMoveResult, error)
	RestartFunc        func(ctx context.Context, sessionID string) (*engine.Snapshot, error)
	NextLevelFunc      func(ctx context.Context, sessionID string) (*service.SessionInfo, error)
	GetGameStateFunc   func(ctx context.Context, sessionID string) (*engine.Snapshot, error)
	GetMoveHistoryFunc func(ctx context.Context, sessionID string, opts service.HistoryOptions) (*service.HistoryResponse, error)
	ListPacksFunc      func(ctx context.Context) ([]*service.PackInfo, error)
	GetPackFunc        func(ctx context.Context, packID string) (*service.PackDetail, error)
	GetLevelFunc       func(ctx context.Context, packID string, index int) (*service.LevelDetail, error)
	SavePackFunc       func(ctx context.Context, packID, text string) (*service.PackInfo, error)
}

func (m *MockGameService) CreateSession(ctx context.Context, packID string, levelIndex int) (*service.SessionInfo, error) {
	if m.CreateSessionFunc != nil {
		return m.CreateSessionFunc(ctx, packID, levelIndex)
	}
	return &service.SessionInfo{ID: "test", PackID: packID, LevelIndex: levelIndex, CreatedAt: time.Now()}, nil
}

func (m *MockGameService) GetSession(ctx context.Context, sessionID string) (*service.SessionInfo, error) {
	if m.GetSessionFunc != nil {
		return m.GetSessionFunc(ctx, sessionID)
	}
	return &service.SessionInfo{ID: sessionID, GameState: &engine.Snapshot{LevelName: "Test"}}, nil
}

func (m *MockGameService) ListSessions(ctx context.Context) ([]*service.SessionInfo, error) {
	if m.ListSessionsFunc != nil {
		return m.ListSessionsFunc(ctx)
	}
	return []*service.SessionInfo{}, nil
}

func (m *MockGameService) DeleteSession(ctx context.Context, sessionID string) error {
	if m.DeleteSessionFunc != nil {
		return m.DeleteSessionFunc(ctx, sessionID)
	}
	return nil
}

func (m *MockGameService) CleanupExpired(ctx context.Context, maxAge time.Duration) int {
	if m.CleanupExpiredFunc != nil {
		return m.CleanupExpiredFunc(ctx, maxAge)
	}
	return 0
}

func (m *MockGameService) Move(ctx context.Context, sessionID, direction string) (*service.MoveResult, error) {
	if m.MoveFunc != nil {
		return m.MoveFunc(ctx, sessionID, direction)
	}
	return &service.MoveResult{Success: true, GameState: &engine.Snapshot{}}, nil
}

func (m *MockGameService) BulkMove(ctx context.Context, sessionID string, moves []string) (*service.BulkMoveResult, error) {
	if m.BulkMoveFunc != nil {
		return m.BulkMoveFunc(ctx, sessionID, moves)
	}
	return &service.BulkMoveResult{MovesExecuted: len(moves), Success: true, GameState: &engine.Snapshot{}}, nil
}

func (m *MockGameService) Restart(ctx context.Context, sessionID string) (*engine.Snapshot, error) {
	if m.RestartFunc != nil {
		return m.RestartFunc(ctx, sessionID)
	}
	return &engine.Snapshot{}, nil
}

func (m *MockGameService) NextLevel(ctx context.Context, sessionID string) (*service.SessionInfo, error) {
	if m.NextLevelFunc != nil {
		return m.NextLevelFunc(ctx, sessionID)
	}
	return &service.SessionInfo{ID: sessionID, LevelIndex: 1, GameState: &engine.Snapshot{}}, nil
}

func (m *MockGameService) Tick(ctx context.Context, dt float64) []service.SessionFrames {
	return nil
}

func (m *MockGameService) GetGameState(ctx context.Context, sessionID string) (*engine.Snapshot, error) {
	if m.GetGameStateFunc != nil {
		return m.GetGameStateFunc(ctx, sessionID)
	}
	return &engine.Snapshot{}, nil
}

func (m *MockGameService) GetMoveHistory(ctx context.Context, sessionID string, opts service.HistoryOptions) (*service.HistoryResponse, error) {
	if m.GetMoveHistoryFunc != nil {
		return m.GetMoveHistoryFunc(ctx, sessionID, opts)
	}
	return &service.HistoryResponse{Page: opts.Page, PageSize: opts.Limit}, nil
}

func (m *MockGameService) ListPacks(ctx context.Context) ([]*service.PackInfo, error) {
	if m.ListPacksFunc != nil {
		return m.ListPacksFunc(ctx)
	}
	return []*service.PackInfo{}, nil
}

func (m *MockGameService) GetPack(ctx context.Context, packID string) (*service.PackDetail, error) {
	if m.GetPackFunc != nil {
		return m.GetPackFunc(ctx, packID)
	}
	return &service.PackDetail{PackInfo: service.PackInfo{PackID: packID}}, nil
}

func (m *MockGameService) GetLevel(ctx context.Context, packID string, index int) (*service.LevelDetail, error) {
	if m.GetLevelFunc != nil {
		return m.GetLevelFunc(ctx, packID, index)
	}
	return &service.LevelDetail{PackID: packID, Index: index}, nil
}

func (m *MockGameService) SavePack(ctx context.Context, packID, text string) (*service.PackInfo, error) {
	if m.SavePackFunc != nil {
		return m.SavePackFunc(ctx, packID, text)
	}
	return &service.PackInfo{PackID: packID, Levels: 1}, nil
}

func doRequest(t *testing.T, server *Server, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("Failed to encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	rr := httptest.NewRecorder()
	server.ServeHTTP(rr, req)
	return rr
}

func decode(t *testing.T, rr *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(rr.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("session not found: %w", session.ErrSessionNotFound), http.StatusNotFound},
		{fmt.Errorf("wrapped: %w", config.ErrPackNotFound), http.StatusNotFound},
		{fmt.Errorf("%w: %q", engine.ErrInvalidDirection, "x"), http.StatusBadRequest},
		{level.ErrLevelIndex, http.StatusBadRequest},
		{&level.LevelError{Reason: "no player", Err: level.ErrInvalidLevel}, http.StatusBadRequest},
		{config.ErrInvalidPack, http.StatusBadRequest},
		{service.ErrLevelNotSolved, http.StatusConflict},
		{service.ErrNoMoreLevels, http.StatusConflict},
		{fmt.Errorf("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			if got := statusFor(tt.err); got != tt.want {
				t.Errorf("statusFor(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestCreateSession(t *testing.T) {
	tests := []struct {
		name       string
		body       interface{}
		mockErr    error
		wantStatus int
		wantPack   string
		wantLevel  int
	}{
		{"empty body uses defaults", nil, nil, http.StatusCreated, "", 0},
		{"pack and level", map[string]interface{}{"pack_id": "classic", "level_index": 2}, nil, http.StatusCreated, "classic", 2},
		{"unknown pack", map[string]string{"pack_id": "nope"}, config.ErrPackNotFound, http.StatusNotFound, "", 0},
		{"bad level", map[string]interface{}{"level_index": 99}, level.ErrLevelIndex, http.StatusBadRequest, "", 0},
		{"malformed body", "{", nil, http.StatusBadRequest, "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotPack string
			var gotLevel int
			mock := &MockGameService{
				CreateSessionFunc: func(ctx context.Context, packID string, levelIndex int) (*service.SessionInfo, error) {
					gotPack, gotLevel = packID, levelIndex
					if tt.mockErr != nil {
						return nil, tt.mockErr
					}
					return &service.SessionInfo{ID: "ab12", PackID: packID, LevelIndex: levelIndex}, nil
				},
			}
			server := NewServer(mock, nil)

			rr := doRequest(t, server, "POST", "/api/sessions", tt.body)
			if rr.Code != tt.wantStatus {
				t.Fatalf("Expected status %d, got %d: %s", tt.wantStatus, rr.Code, rr.Body.String())
			}
			if tt.wantStatus != http.StatusCreated {
				return
			}
			if gotPack != tt.wantPack || gotLevel != tt.wantLevel {
				t.Errorf("Expected pack %q level %d, got %q %d", tt.wantPack, tt.wantLevel, gotPack, gotLevel)
			}
			var info service.SessionInfo
			decode(t, rr, &info)
			if info.ID != "ab12" {
				t.Errorf("Expected session ab12, got %q", info.ID)
			}
		})
	}
}

func TestListSessions(t *testing.T) {
	now := time.Now()
	mock := &MockGameService{
		ListSessionsFunc: func(ctx context.Context) ([]*service.SessionInfo, error) {
			return []*service.SessionInfo{
				{ID: "old", CreatedAt: now.Add(-2 * time.Hour), LastAccessedAt: now},
				{ID: "mid", CreatedAt: now.Add(-1 * time.Hour), LastAccessedAt: now.Add(-time.Hour)},
				{ID: "new", CreatedAt: now, LastAccessedAt: now.Add(-2 * time.Hour)},
			}, nil
		},
	}
	server := NewServer(mock, nil)

	tests := []struct {
		name    string
		query   string
		wantIDs []string
		total   int
	}{
		{"default accessed desc", "", []string{"old", "mid", "new"}, 3},
		{"created desc", "?sort=created", []string{"new", "mid", "old"}, 3},
		{"created asc with limit", "?sort=created&order=asc&limit=2", []string{"old", "mid"}, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := doRequest(t, server, "GET", "/api/sessions"+tt.query, nil)
			if rr.Code != http.StatusOK {
				t.Fatalf("Expected 200, got %d", rr.Code)
			}
			var resp struct {
				Count    int                    `json:"count"`
				Total    int                    `json:"total"`
				Sessions []*service.SessionInfo `json:"sessions"`
			}
			decode(t, rr, &resp)
			var ids []string
			for _, s := range resp.Sessions {
				ids = append(ids, s.ID)
			}
			if strings.Join(ids, ",") != strings.Join(tt.wantIDs, ",") {
				t.Errorf("Expected %v, got %v", tt.wantIDs, ids)
			}
			if resp.Total != tt.total || resp.Count != len(tt.wantIDs) {
				t.Errorf("Unexpected count/total %d/%d", resp.Count, resp.Total)
			}
		})
	}
}

func TestGetAndDeleteSession(t *testing.T) {
	mock := &MockGameService{
		GetSessionFunc: func(ctx context.Context, sessionID string) (*service.SessionInfo, error) {
			if sessionID != "ab12" {
				return nil, fmt.Errorf("session not found: %w", session.ErrSessionNotFound)
			}
			return &service.SessionInfo{ID: sessionID}, nil
		},
		DeleteSessionFunc: func(ctx context.Context, sessionID string) error {
			if sessionID != "ab12" {
				return session.ErrSessionNotFound
			}
			return nil
		},
	}
	server := NewServer(mock, nil)

	tests := []struct {
		method, path string
		want         int
	}{
		{"GET", "/api/sessions/ab12", http.StatusOK},
		{"GET", "/api/sessions/zz99", http.StatusNotFound},
		{"DELETE", "/api/sessions/ab12", http.StatusOK},
		{"DELETE", "/api/sessions/zz99", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rr := doRequest(t, server, tt.method, tt.path, nil)
			if rr.Code != tt.want {
				t.Errorf("Expected %d, got %d: %s", tt.want, rr.Code, rr.Body.String())
			}
		})
	}
}

func TestMove(t *testing.T) {
	var gotDirection string
	mock := &MockGameService{
		MoveFunc: func(ctx context.Context, sessionID, direction string) (*service.MoveResult, error) {
			gotDirection = direction
			if _, err := engine.ParseDirection(direction); err != nil {
				return nil, err
			}
			return &service.MoveResult{
				Success:   true,
				Outcome:   engine.MoveOutcome{Result: engine.Moved, Direction: engine.Up},
				GameState: &engine.Snapshot{LevelName: "Test"},
				Message:   "Moved up",
			}, nil
		},
	}
	server := NewServer(mock, nil)

	t.Run("valid move", func(t *testing.T) {
		rr := doRequest(t, server, "POST", "/api/sessions/ab12/move", map[string]string{"direction": "up"})
		if rr.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", rr.Code, rr.Body.String())
		}
		if gotDirection != "up" {
			t.Errorf("Expected direction 'up', got %q", gotDirection)
		}
		var result service.MoveResult
		decode(t, rr, &result)
		if !result.Success || result.Outcome.Result != engine.Moved {
			t.Errorf("Unexpected result %+v", result)
		}
	})

	t.Run("invalid direction", func(t *testing.T) {
		rr := doRequest(t, server, "POST", "/api/sessions/ab12/move", map[string]string{"direction": "north"})
		if rr.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d", rr.Code)
		}
	})

	t.Run("malformed body", func(t *testing.T) {
		rr := doRequest(t, server, "POST", "/api/sessions/ab12/move", "not json")
		if rr.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d", rr.Code)
		}
	})

	t.Run("wrong method", func(t *testing.T) {
		rr := doRequest(t, server, "GET", "/api/sessions/ab12/move", nil)
		if rr.Code != http.StatusMethodNotAllowed {
			t.Errorf("Expected 405, got %d", rr.Code)
		}
	})
}

func TestBulkMove(t *testing.T) {
	var gotMoves []string
	mock := &MockGameService{
		BulkMoveFunc: func(ctx context.Context, sessionID string, moves []string) (*service.BulkMoveResult, error) {
			gotMoves = moves
			return &service.BulkMoveResult{
				MovesExecuted:  len(moves),
				RequestedMoves: len(moves),
				Success:        true,
				Solved:         true,
				GameState:      &engine.Snapshot{Finished: true},
			}, nil
		},
	}
	server := NewServer(mock, nil)

	rr := doRequest(t, server, "POST", "/api/sessions/ab12/bulk-move", map[string][]string{"moves": {"right", "right"}})
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if len(gotMoves) != 2 {
		t.Errorf("Expected 2 moves passed through, got %v", gotMoves)
	}
	var result service.BulkMoveResult
	decode(t, rr, &result)
	if !result.Solved || result.MovesExecuted != 2 {
		t.Errorf("Unexpected result %+v", result)
	}

	rr = doRequest(t, server, "POST", "/api/sessions/ab12/bulk-move", map[string][]string{"moves": {}})
	if rr.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for empty moves, got %d", rr.Code)
	}
}

func TestRestartAndNextLevel(t *testing.T) {
	solved := false
	mock := &MockGameService{
		RestartFunc: func(ctx context.Context, sessionID string) (*engine.Snapshot, error) {
			return &engine.Snapshot{LevelName: "First"}, nil
		},
		NextLevelFunc: func(ctx context.Context, sessionID string) (*service.SessionInfo, error) {
			if !solved {
				return nil, service.ErrLevelNotSolved
			}
			return &service.SessionInfo{ID: sessionID, LevelIndex: 1, LevelName: "Second", GameState: &engine.Snapshot{}}, nil
		},
	}
	server := NewServer(mock, nil)

	rr := doRequest(t, server, "POST", "/api/sessions/ab12/restart", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rr.Code)
	}
	var restart struct {
		Message string          `json:"message"`
		State   engine.Snapshot `json:"state"`
	}
	decode(t, rr, &restart)
	if restart.State.LevelName != "First" {
		t.Errorf("Expected restarted state, got %+v", restart)
	}

	rr = doRequest(t, server, "POST", "/api/sessions/ab12/next", nil)
	if rr.Code != http.StatusConflict {
		t.Errorf("Expected 409 before solving, got %d", rr.Code)
	}

	solved = true
	rr = doRequest(t, server, "POST", "/api/sessions/ab12/next", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rr.Code)
	}
	var info service.SessionInfo
	decode(t, rr, &info)
	if info.LevelIndex != 1 || info.LevelName != "Second" {
		t.Errorf("Unexpected next level %+v", info)
	}
}

func TestGetHistory(t *testing.T) {
	var got service.HistoryOptions
	mock := &MockGameService{
		GetMoveHistoryFunc: func(ctx context.Context, sessionID string, opts service.HistoryOptions) (*service.HistoryResponse, error) {
			got = opts
			return &service.HistoryResponse{Page: opts.Page}, nil
		},
	}
	server := NewServer(mock, nil)

	tests := []struct {
		query string
		want  service.HistoryOptions
	}{
		{"", service.HistoryOptions{Page: 1, Limit: 20, Order: "desc"}},
		{"?page=3&limit=5&order=asc", service.HistoryOptions{Page: 3, Limit: 5, Order: "asc"}},
		{"?page=-1&limit=abc&order=sideways", service.HistoryOptions{Page: 1, Limit: 20, Order: "desc"}},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			rr := doRequest(t, server, "GET", "/api/sessions/ab12/history"+tt.query, nil)
			if rr.Code != http.StatusOK {
				t.Fatalf("Expected 200, got %d", rr.Code)
			}
			if got != tt.want {
				t.Errorf("Expected options %+v, got %+v", tt.want, got)
			}
		})
	}
}

func TestGetGameState(t *testing.T) {
	mock := &MockGameService{
		GetGameStateFunc: func(ctx context.Context, sessionID string) (*engine.Snapshot, error) {
			return &engine.Snapshot{LevelName: "First", Width: 5, Height: 3}, nil
		},
	}
	server := NewServer(mock, nil)

	rr := doRequest(t, server, "GET", "/api/sessions/ab12/state", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rr.Code)
	}
	var state engine.Snapshot
	decode(t, rr, &state)
	if state.LevelName != "First" || state.Width != 5 {
		t.Errorf("Unexpected state %+v", state)
	}
}

func TestPacks(t *testing.T) {
	var savedName, savedText string
	mock := &MockGameService{
		ListPacksFunc: func(ctx context.Context) ([]*service.PackInfo, error) {
			return []*service.PackInfo{{PackID: "classic", Levels: 3}}, nil
		},
		GetPackFunc: func(ctx context.Context, packID string) (*service.PackDetail, error) {
			if packID != "classic" {
				return nil, config.ErrPackNotFound
			}
			return &service.PackDetail{PackInfo: service.PackInfo{PackID: packID}}, nil
		},
		GetLevelFunc: func(ctx context.Context, packID string, index int) (*service.LevelDetail, error) {
			if index > 2 {
				return nil, level.ErrLevelIndex
			}
			return &service.LevelDetail{PackID: packID, Index: index, Rows: []string{"#####"}}, nil
		},
		SavePackFunc: func(ctx context.Context, packID, text string) (*service.PackInfo, error) {
			savedName, savedText = packID, text
			if strings.Contains(text, "bad") {
				return nil, config.ErrInvalidPack
			}
			return &service.PackInfo{PackID: packID, Levels: 1}, nil
		},
	}
	server := NewServer(mock, nil)

	tests := []struct {
		name   string
		method string
		path   string
		body   interface{}
		want   int
	}{
		{"list", "GET", "/api/packs", nil, http.StatusOK},
		{"get", "GET", "/api/packs/classic", nil, http.StatusOK},
		{"get missing", "GET", "/api/packs/nope", nil, http.StatusNotFound},
		{"level", "GET", "/api/packs/classic/levels/1", nil, http.StatusOK},
		{"level out of range", "GET", "/api/packs/classic/levels/9", nil, http.StatusBadRequest},
		{"level not numeric", "GET", "/api/packs/classic/levels/x", nil, http.StatusNotFound},
		{"save", "POST", "/api/packs", map[string]string{"name": "mine", "text": "#####\n#@$.#\n#####"}, http.StatusCreated},
		{"save invalid", "POST", "/api/packs", map[string]string{"name": "mine", "text": "bad"}, http.StatusBadRequest},
		{"save missing fields", "POST", "/api/packs", map[string]string{"name": "mine"}, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := doRequest(t, server, tt.method, tt.path, tt.body)
			if rr.Code != tt.want {
				t.Errorf("Expected %d, got %d: %s", tt.want, rr.Code, rr.Body.String())
			}
		})
	}

	if savedName != "mine" || savedText != "bad" {
		t.Errorf("Expected last save to pass name and text through, got %q %q", savedName, savedText)
	}
}

func TestIndexAndHealth(t *testing.T) {
	server := NewServer(&MockGameService{}, nil)

	for _, path := range []string{"/api", "/health"} {
		rr := doRequest(t, server, "GET", path, nil)
		if rr.Code != http.StatusOK {
			t.Errorf("Expected 200 for %s, got %d", path, rr.Code)
		}
	}
}

func TestWebSocket(t *testing.T) {
	moved := make(chan string, 1)
	mock := &MockGameService{
		GetSessionFunc: func(ctx context.Context, sessionID string) (*service.SessionInfo, error) {
			if sessionID != "ab12" {
				return nil, session.ErrSessionNotFound
			}
			return &service.SessionInfo{ID: sessionID, GameState: &engine.Snapshot{LevelName: "First"}}, nil
		},
		MoveFunc: func(ctx context.Context, sessionID, direction string) (*service.MoveResult, error) {
			moved <- direction
			return &service.MoveResult{Success: true, GameState: &engine.Snapshot{LevelName: "Moved"}}, nil
		},
	}

	hub := websocket.NewHub()
	server := NewServer(mock, hub)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	ts := httptest.NewServer(server)
	defer ts.Close()
	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"

	t.Run("missing session parameter", func(t *testing.T) {
		rr := doRequest(t, server, "GET", "/ws", nil)
		if rr.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d", rr.Code)
		}
	})

	t.Run("unknown session", func(t *testing.T) {
		rr := doRequest(t, server, "GET", "/ws?session=zz99", nil)
		if rr.Code != http.StatusNotFound {
			t.Errorf("Expected 404, got %d", rr.Code)
		}
	})

	t.Run("initial state and move command", func(t *testing.T) {
		conn, _, err := gorillaws.DefaultDialer.Dial(wsURL+"?session=ab12", nil)
		if err != nil {
			t.Fatalf("Failed to connect: %v", err)
		}
		defer conn.Close()

		read := func() websocket.Message {
			conn.SetReadDeadline(time.Now().Add(2 * time.Second))
			var msg websocket.Message
			if err := conn.ReadJSON(&msg); err != nil {
				t.Fatalf("Failed to read message: %v", err)
			}
			return msg
		}

		if msg := read(); msg.GameState == nil || msg.GameState.LevelName != "First" {
			t.Fatalf("Expected initial state, got %+v", msg)
		}

		if err := conn.WriteJSON(websocket.Command{Action: "move", Direction: "left"}); err != nil {
			t.Fatalf("Failed to send command: %v", err)
		}
		if msg := read(); msg.GameState == nil || msg.GameState.LevelName != "Moved" {
			t.Errorf("Expected state after move, got %+v", msg)
		}
		if dir := <-moved; dir != "left" {
			t.Errorf("Expected the move to reach the service, got %q", dir)
		}
	})
}
