package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/colorrails/colorrails/game/engine"
	"github.com/colorrails/colorrails/game/service"
)

var (
	ErrLevelNotFound = errors.New("level not found")
	ErrInvalidLevel  = errors.New("invalid level")
)

// levelExtensions lists the file extensions a level may use, in the order
// they are tried when resolving a bare level name.
var levelExtensions = []string{".json", ".yaml", ".yml"}

// Manager handles level loading and caching
type Manager struct {
	levelDir     string
	defaultLevel *engine.LevelConfig
	levels       map[string]*engine.LevelConfig
	mu           sync.RWMutex
}

// NewManager creates a new level manager. An empty levelDir is allowed and
// serves only the built-in level.
func NewManager(levelDir string) (*Manager, error) {
	if levelDir != "" {
		if _, err := os.Stat(levelDir); os.IsNotExist(err) {
			return nil, fmt.Errorf("level directory does not exist: %s", levelDir)
		}
	}

	m := &Manager{
		levelDir: levelDir,
		levels:   make(map[string]*engine.LevelConfig),
	}

	if err := m.loadDefaultLevel(); err != nil {
		return nil, fmt.Errorf("failed to load default level: %w", err)
	}

	return m, nil
}

// LoadLevel loads a level by name. The name may carry a .json, .yaml or .yml
// extension; a bare name tries each in turn.
func (m *Manager) LoadLevel(name string) (*engine.LevelConfig, error) {
	m.mu.RLock()
	if level, exists := m.levels[name]; exists {
		m.mu.RUnlock()
		return level, nil
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	// Double-check after acquiring write lock
	if level, exists := m.levels[name]; exists {
		return level, nil
	}

	path, err := m.resolve(name)
	if err != nil {
		return nil, err
	}

	level, err := engine.LoadLevelConfig(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrLevelNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidLevel, err)
	}

	m.levels[name] = level
	return level, nil
}

// resolve maps a level name to the file that holds it
func (m *Manager) resolve(name string) (string, error) {
	if m.levelDir == "" {
		return "", ErrLevelNotFound
	}
	if ext := filepath.Ext(name); ext != "" {
		return filepath.Join(m.levelDir, name), nil
	}
	for _, ext := range levelExtensions {
		path := filepath.Join(m.levelDir, name+ext)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", ErrLevelNotFound
}

// ListLevels returns information about all available levels, including the
// built-in one.
func (m *Manager) ListLevels() ([]*service.LevelInfo, error) {
	builtin := engine.DefaultLevel()
	levels := []*service.LevelInfo{{
		LevelID:     "default",
		Name:        builtin.Name,
		Description: builtin.Description,
		GridWidth:   builtin.GridWidth,
		GridHeight:  builtin.GridHeight,
		Trains:      len(builtin.Trains),
		Waiting:     totalWaiting(builtin),
	}}

	if m.levelDir == "" {
		return levels, nil
	}

	entries, err := os.ReadDir(m.levelDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read level directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !hasLevelExtension(entry.Name()) {
			continue
		}

		name := strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name()))

		level, err := m.LoadLevel(name)
		if err != nil {
			// Skip broken level files rather than failing the listing
			continue
		}

		levels = append(levels, &service.LevelInfo{
			Filename:    entry.Name(),
			LevelID:     name, // the identifier to use for session creation
			Name:        level.Name,
			Description: level.Description,
			GridWidth:   level.GridWidth,
			GridHeight:  level.GridHeight,
			Trains:      len(level.Trains),
			Waiting:     totalWaiting(level),
		})
	}

	return levels, nil
}

// GetDefault returns the default level
func (m *Manager) GetDefault() *engine.LevelConfig {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.defaultLevel
}

// SetDefault sets the default level by name
func (m *Manager) SetDefault(name string) error {
	level, err := m.LoadLevel(name)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaultLevel = level
	return nil
}

// RefreshCache drops all cached levels and reloads the default
func (m *Manager) RefreshCache() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.levels = make(map[string]*engine.LevelConfig)
	return m.loadDefaultLevel()
}

// loadDefaultLevel resolves the default level: a file named "default" in the
// level directory wins, otherwise the built-in level is used.
func (m *Manager) loadDefaultLevel() error {
	if m.levelDir != "" {
		if path, err := m.resolve("default"); err == nil {
			if level, err := engine.LoadLevelConfig(path); err == nil {
				m.defaultLevel = level
				return nil
			}
		}
	}
	m.defaultLevel = engine.DefaultLevel()
	return nil
}

func hasLevelExtension(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, known := range levelExtensions {
		if ext == known {
			return true
		}
	}
	return false
}

func totalWaiting(level *engine.LevelConfig) int {
	total := 0
	for _, pt := range level.Points {
		total += len(pt.Waiting)
	}
	return total
}
