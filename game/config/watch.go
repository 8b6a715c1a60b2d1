package config

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// debounce drops repeated events for the same file
const debounce = 100 * time.Millisecond

// Watch invalidates cached packs when their files change. The returned
// channel receives the id of each changed pack, or ProfileFile when the
// animation profile changed, and is closed when ctx ends.
func (m *Manager) Watch(ctx context.Context) (<-chan string, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := w.Add(m.packDir); err != nil {
		_ = w.Close()
		return nil, err
	}

	changes := make(chan string, 16)
	go m.watch(ctx, w, changes)
	return changes, nil
}

func (m *Manager) watch(ctx context.Context, w *fsnotify.Watcher, changes chan<- string) {
	defer close(changes)
	defer w.Close()

	last := make(map[string]time.Time)
	for {
		select {
		case event, ok := <-w.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			name := filepath.Base(event.Name)
			now := time.Now()
			if t, ok := last[name]; ok && now.Sub(t) < debounce {
				continue
			}
			last[name] = now

			var change string
			switch {
			case name == ProfileFile:
				change = ProfileFile
			case IsPackFile(name):
				change = strings.TrimSuffix(name, filepath.Ext(name))
				m.Invalidate(change)
				if change == m.DefaultPackID() && event.Op&(fsnotify.Remove|fsnotify.Rename) != 0 {
					m.RefreshCache()
				}
			default:
				continue
			}

			m.log.WithField("file", name).WithField("op", event.Op.String()).Info("pack directory changed")
			select {
			case changes <- change:
			case <-ctx.Done():
				return
			}
		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			m.log.WithError(err).Warn("pack watcher error")
		case <-ctx.Done():
			return
		}
	}
}
