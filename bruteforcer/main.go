// Command bruteforcer plays a level pack against a running boxpusher server.
// It reads each level's rows from the API, solves it locally with a
// breadth-first search, sends the solution as bulk moves, and advances to
// the next level until the pack is done.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v3"

	"github.com/wricardo/boxpusher/game/engine"
	"github.com/wricardo/boxpusher/game/level"
	"github.com/wricardo/boxpusher/game/service"
	"github.com/wricardo/boxpusher/logger"
)

const sessionFile = ".session"

var log = logger.Component("bruteforcer")

// Client talks to the REST API for one session
type Client struct {
	baseURL   string
	sessionID string
	client    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (c *Client) do(method, path string, body, result interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequest(method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 400 {
		return fmt.Errorf("%s %s failed: %s - %s", method, path, resp.Status, bytes.TrimSpace(data))
	}
	if result != nil {
		if err := json.Unmarshal(data, result); err != nil {
			return fmt.Errorf("parse response: %w", err)
		}
	}
	return nil
}

func (c *Client) sessionPath(suffix string) string {
	return "/api/sessions/" + c.sessionID + suffix
}

func (c *Client) CreateSession(packID string, levelIndex int) (*service.SessionInfo, error) {
	var info service.SessionInfo
	body := map[string]interface{}{"pack_id": packID, "level_index": levelIndex}
	if err := c.do("POST", "/api/sessions", body, &info); err != nil {
		return nil, err
	}
	c.sessionID = info.ID
	return &info, nil
}

func (c *Client) GetSession() (*service.SessionInfo, error) {
	var info service.SessionInfo
	if err := c.do("GET", c.sessionPath(""), nil, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

func (c *Client) Restart() (*engine.Snapshot, error) {
	var resp struct {
		Message string           `json:"message"`
		State   *engine.Snapshot `json:"state"`
	}
	if err := c.do("POST", c.sessionPath("/restart"), nil, &resp); err != nil {
		return nil, err
	}
	return resp.State, nil
}

func (c *Client) BulkMove(moves []string) (*service.BulkMoveResult, error) {
	var result service.BulkMoveResult
	if err := c.do("POST", c.sessionPath("/bulk-move"), map[string]interface{}{"moves": moves}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) NextLevel() (*service.SessionInfo, error) {
	var info service.SessionInfo
	if err := c.do("POST", c.sessionPath("/next"), nil, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// Play solves the session's current level and sends the solution. It
// returns the number of moves played.
func Play(c *Client, solver *Solver, state *engine.Snapshot, delay time.Duration) (int, error) {
	lvl, err := level.ParseLevel(state.Rows)
	if err != nil {
		return 0, fmt.Errorf("rebuild level: %w", err)
	}
	lvl.Name = state.LevelName

	started := time.Now()
	moves, err := solver.Solve(lvl)
	if err != nil {
		return 0, fmt.Errorf("solve %s: %w", state.LevelName, err)
	}
	log.WithFields(logrus.Fields{
		"level":   state.LevelName,
		"moves":   len(moves),
		"elapsed": time.Since(started).Round(time.Millisecond),
	}).Info("solution found")

	names := directionNames(moves)
	played := 0
	for len(names) > 0 {
		n := len(names)
		if n > engine.MaxBulkMoves {
			n = engine.MaxBulkMoves
		}
		result, err := c.BulkMove(names[:n])
		if err != nil {
			return played, err
		}
		played += result.MovesExecuted
		if result.Solved {
			return played, nil
		}
		if result.MovesExecuted < n {
			return played, fmt.Errorf("stopped on move %d: %s", played+1, result.StoppedReason)
		}
		names = names[n:]
		if delay > 0 {
			time.Sleep(delay)
		}
	}
	return played, nil
}

func run(ctx context.Context, cmd *cli.Command) error {
	if cmd.Bool("verbose") {
		logger.Init("debug", "text")
	} else {
		logger.Init("info", "text")
	}

	client := NewClient(cmd.String("url"))
	solver := NewSolver(int(cmd.Int("max-states")))
	log.Infof("Connecting to game server at %s", cmd.String("url"))

	var info *service.SessionInfo
	var err error

	savedSessionID := cmd.String("continue")
	if savedSessionID == "" {
		if data, err := os.ReadFile(sessionFile); err == nil {
			savedSessionID = string(bytes.TrimSpace(data))
		}
	}

	if savedSessionID != "" {
		client.sessionID = savedSessionID
		if info, err = client.GetSession(); err != nil {
			log.WithError(err).Warn("failed to resume session (may be expired), creating a new one")
			info = nil
		} else {
			log.Infof("🔄 Resuming session %s at level %d", info.ID, info.LevelIndex+1)
		}
	}

	if info == nil {
		if info, err = client.CreateSession(cmd.String("pack"), int(cmd.Int("level"))); err != nil {
			return fmt.Errorf("failed to create session: %w", err)
		}
		log.Infof("✨ Session created: %s (%s, %d levels)", info.ID, info.PackName, info.LevelCount)
		if err := os.WriteFile(sessionFile, []byte(info.ID), 0644); err != nil {
			log.WithError(err).Warn("failed to save session ID")
		}
	}

	delay := cmd.Duration("delay")
	total := 0
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		state, err := client.Restart()
		if err != nil {
			return fmt.Errorf("failed to restart level: %w", err)
		}

		played, err := Play(client, solver, state, delay)
		total += played
		if err != nil {
			return err
		}
		log.Infof("✅ Level %d/%d solved in %d moves", info.LevelIndex+1, info.LevelCount, played)

		if info.LevelIndex+1 >= info.LevelCount {
			break
		}
		if info, err = client.NextLevel(); err != nil {
			return fmt.Errorf("failed to advance: %w", err)
		}
	}

	log.Infof("🎉 Pack complete: %d moves, session %s", total, client.sessionID)
	return nil
}

func main() {
	cmd := &cli.Command{
		Name:  "bruteforcer",
		Usage: "Solve every level of a pack against a running server",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "url", Value: "http://localhost:8080", Usage: "Game server URL"},
			&cli.StringFlag{Name: "pack", Usage: "Pack to play (server default when empty)"},
			&cli.IntFlag{Name: "level", Usage: "Zero-based level to start from"},
			&cli.StringFlag{Name: "continue", Usage: "Resume playing an existing session by ID"},
			&cli.IntFlag{Name: "max-states", Value: 2000000, Usage: "Search states per level before giving up"},
			&cli.DurationFlag{Name: "delay", Usage: "Pause between bulk moves"},
			&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}, Usage: "Verbose output"},
		},
		Action: run,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.WithError(err).Error("bruteforcer failed")
		os.Exit(1)
	}
}
