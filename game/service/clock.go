package service

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/wricardo/boxpusher/game/engine"
	"github.com/wricardo/boxpusher/logger"
)

// maxTickSeconds caps the time one tick may advance, so a stalled process
// does not teleport every animation to its end
const maxTickSeconds = 0.25

// Notifier receives what the clock produces
type Notifier interface {
	BroadcastToSession(sessionID string, state *engine.Snapshot)
	BroadcastEvent(sessionID, eventType string, data interface{})
}

// Clock drives GameService.Tick at a fixed interval
type Clock struct {
	svc      GameService
	interval time.Duration
	notifier Notifier
	log      *logrus.Entry
}

// NewClock creates a clock. A nil notifier discards output.
func NewClock(svc GameService, interval time.Duration, notifier Notifier) *Clock {
	if interval <= 0 {
		interval = time.Second / 60
	}
	return &Clock{
		svc:      svc,
		interval: interval,
		notifier: notifier,
		log:      logger.Component("clock"),
	}
}

// Run ticks until ctx is done
func (c *Clock) Run(ctx context.Context) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	c.log.WithField("interval", c.interval).Info("animation clock started")
	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			c.log.Info("animation clock stopped")
			return
		case now := <-ticker.C:
			c.Step(ctx, now.Sub(last).Seconds())
			last = now
		}
	}
}

// Step advances every session by dt seconds and notifies about the result
func (c *Clock) Step(ctx context.Context, dt float64) []SessionFrames {
	if dt > maxTickSeconds {
		dt = maxTickSeconds
	}
	updates := c.svc.Tick(ctx, dt)
	if c.notifier == nil {
		return updates
	}

	for _, u := range updates {
		if len(u.Frames) > 0 {
			c.notifier.BroadcastEvent(u.SessionID, "frame", u.Frames)
		}
		if !u.Unlocked || u.State == nil {
			continue
		}
		state := u.State
		c.notifier.BroadcastToSession(u.SessionID, state)
		if u.Solved {
			c.notifier.BroadcastEvent(u.SessionID, "solved", map[string]interface{}{
				"level_name": state.LevelName,
				"message":    state.Message,
			})
		}
	}
	return updates
}
