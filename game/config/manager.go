package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/wricardo/boxpusher/game/engine"
	"github.com/wricardo/boxpusher/game/level"
	"github.com/wricardo/boxpusher/game/service"
	"github.com/wricardo/boxpusher/logger"
)

var (
	ErrPackNotFound    = errors.New("pack not found")
	ErrInvalidPack     = errors.New("invalid pack")
	ErrInvalidPackName = errors.New("invalid pack name")
)

const (
	// DefaultPack is preferred as the default when present
	DefaultPack = "classic"
	// BuiltinPack names the pack compiled into the binary
	BuiltinPack = "builtin"
	// ProfileFile holds animation timings inside the packs directory
	ProfileFile = "animation.yaml"
	// SaveExtension is used for packs written by SavePack
	SaveExtension = ".txt"
)

// Extensions lists the file types read as level packs
var Extensions = []string{".txt", ".sok", ".xsb"}

const builtinPackText = `; Builtin
; Used when the packs directory holds no packs

; First Push
#####
#@$.#
#####

; Around The Corner
 ####
##  #
#@$ #
## .#
 ####

; Two Boxes
#######
#.@ $ #
# $   #
#.    #
#######
`

type cachedPack struct {
	pack     *level.Pack
	filename string
}

// Manager handles level pack loading and caching
type Manager struct {
	packDir   string
	defaultID string
	packs     map[string]*cachedPack
	mu        sync.RWMutex
	log       *logrus.Entry
}

// NewManager creates a new pack manager
func NewManager(packDir string) (*Manager, error) {
	// Ensure pack directory exists
	if info, err := os.Stat(packDir); err != nil || !info.IsDir() {
		return nil, fmt.Errorf("pack directory does not exist: %s", packDir)
	}

	m := &Manager{
		packDir: packDir,
		packs:   make(map[string]*cachedPack),
		log:     logger.Component("packs").WithField("dir", packDir),
	}
	m.defaultID = m.pickDefault()
	return m, nil
}

// Dir returns the directory packs are read from
func (m *Manager) Dir() string {
	return m.packDir
}

// LoadPack loads a pack by id. The id is the file name without extension.
func (m *Manager) LoadPack(name string) (*level.Pack, error) {
	id, err := packID(name)
	if err != nil {
		return nil, err
	}

	m.mu.RLock()
	// Check cache first
	if cached, exists := m.packs[id]; exists {
		m.mu.RUnlock()
		return cached.pack, nil
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	// Double-check after acquiring write lock
	if cached, exists := m.packs[id]; exists {
		return cached.pack, nil
	}

	cached, err := m.read(id)
	if err != nil {
		return nil, err
	}
	m.packs[id] = cached
	return cached.pack, nil
}

// read parses a pack from disk, falling back to the builtin pack
func (m *Manager) read(id string) (*cachedPack, error) {
	filename, found := m.locate(id)
	if !found {
		if id == BuiltinPack {
			pack, err := level.ParsePackString(builtinPackText, level.Strict())
			if err != nil {
				return nil, fmt.Errorf("%w: builtin: %v", ErrInvalidPack, err)
			}
			return &cachedPack{pack: pack}, nil
		}
		return nil, fmt.Errorf("%w: %s", ErrPackNotFound, id)
	}

	f, err := os.Open(filepath.Join(m.packDir, filename))
	if err != nil {
		return nil, fmt.Errorf("failed to read pack file: %w", err)
	}
	defer f.Close()

	pack, err := level.ParsePack(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidPack, filename, err)
	}
	if pack.Name == level.UnnamedLevel {
		pack.Name = id
	}

	entry := m.log.WithFields(logrus.Fields{"pack": id, "levels": pack.Len()})
	if len(pack.Rejected) > 0 {
		entry.WithField("rejected", len(pack.Rejected)).Warn("pack loaded with rejected levels")
	} else {
		entry.Debug("pack loaded")
	}
	return &cachedPack{pack: pack, filename: filename}, nil
}

// locate finds the file holding a pack id
func (m *Manager) locate(id string) (string, bool) {
	for _, ext := range Extensions {
		filename := id + ext
		if info, err := os.Stat(filepath.Join(m.packDir, filename)); err == nil && !info.IsDir() {
			return filename, true
		}
	}
	return "", false
}

// packFiles lists pack files in the directory, sorted by name
func (m *Manager) packFiles() ([]string, error) {
	entries, err := os.ReadDir(m.packDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read pack directory: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() || !IsPackFile(entry.Name()) {
			continue
		}
		files = append(files, entry.Name())
	}
	sort.Strings(files)
	return files, nil
}

// ListPacks returns information about all available packs. The builtin
// pack is listed when the directory holds no usable pack.
func (m *Manager) ListPacks() ([]*service.PackInfo, error) {
	files, err := m.packFiles()
	if err != nil {
		return nil, err
	}

	var packs []*service.PackInfo
	seen := make(map[string]bool)
	for _, filename := range files {
		id := strings.TrimSuffix(filename, filepath.Ext(filename))
		if seen[id] {
			continue
		}
		seen[id] = true

		// Try to load the pack to get details
		pack, err := m.LoadPack(id)
		if err != nil {
			// Skip invalid packs
			m.log.WithError(err).WithField("pack", id).Warn("skipping pack")
			continue
		}
		packs = append(packs, service.NewPackInfo(id, filename, pack))
	}

	if len(packs) == 0 {
		pack, err := m.LoadPack(BuiltinPack)
		if err != nil {
			return nil, err
		}
		packs = append(packs, service.NewPackInfo(BuiltinPack, "", pack))
	}
	return packs, nil
}

// DefaultPackID returns the id of the default pack
func (m *Manager) DefaultPackID() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.defaultID
}

// GetDefault returns the default pack
func (m *Manager) GetDefault() (*level.Pack, error) {
	return m.LoadPack(m.DefaultPackID())
}

// SetDefault sets the default pack by id
func (m *Manager) SetDefault(name string) error {
	if _, err := m.LoadPack(name); err != nil {
		return err
	}
	id, _ := packID(name)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaultID = id
	return nil
}

// pickDefault prefers the classic pack, then the first loadable one
func (m *Manager) pickDefault() string {
	if _, err := m.LoadPack(DefaultPack); err == nil {
		return DefaultPack
	}
	packs, err := m.ListPacks()
	if err != nil || len(packs) == 0 {
		return BuiltinPack
	}
	return packs[0].PackID
}

// RefreshCache drops every cached pack and re-selects the default
func (m *Manager) RefreshCache() {
	m.mu.Lock()
	m.packs = make(map[string]*cachedPack)
	m.mu.Unlock()

	id := m.pickDefault()

	m.mu.Lock()
	m.defaultID = id
	m.mu.Unlock()
}

// Invalidate drops one pack from the cache so the next load rereads it
func (m *Manager) Invalidate(name string) {
	id, err := packID(name)
	if err != nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.packs, id)
}

// SavePack validates pack text and writes it to disk. Every level must
// parse; nothing is written otherwise.
func (m *Manager) SavePack(name, text string) (*level.Pack, error) {
	id, err := packID(name)
	if err != nil {
		return nil, err
	}

	pack, err := level.ParsePackString(text, level.Strict())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPack, err)
	}
	if pack.Name == level.UnnamedLevel {
		pack.Name = id
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	filename, found := m.locate(id)
	if !found {
		filename = id + SaveExtension
	}
	if err := os.WriteFile(filepath.Join(m.packDir, filename), []byte(text), 0644); err != nil {
		return nil, fmt.Errorf("failed to write pack file: %w", err)
	}

	// Update cache
	m.packs[id] = &cachedPack{pack: pack, filename: filename}
	m.log.WithFields(logrus.Fields{"pack": id, "levels": pack.Len()}).Info("pack saved")
	return pack, nil
}

// LoadProfile reads animation timings from the packs directory. A missing
// file yields the default profile.
func (m *Manager) LoadProfile() (engine.Profile, error) {
	p, err := engine.LoadProfile(filepath.Join(m.packDir, ProfileFile))
	if errors.Is(err, os.ErrNotExist) {
		return engine.DefaultProfile(), nil
	}
	if err != nil {
		return engine.Profile{}, err
	}
	return *p, nil
}

// IsPackFile reports whether path has a pack extension
func IsPackFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range Extensions {
		if ext == e {
			return true
		}
	}
	return false
}

// packID strips a pack extension and rejects names that would leave the
// packs directory
func packID(name string) (string, error) {
	if IsPackFile(name) {
		name = strings.TrimSuffix(name, filepath.Ext(name))
	}
	if name == "" || strings.HasPrefix(name, ".") || strings.ContainsAny(name, `/\`) {
		return "", fmt.Errorf("%w: %q", ErrInvalidPackName, name)
	}
	return name, nil
}
