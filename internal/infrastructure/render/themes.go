// Package render turns fetched map geometry into poster images.
package render

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/cartoprint/backend/internal/domain/poster"
	"go.uber.org/zap"
)

// ThemeStore loads poster themes from JSON files in a directory and
// caches them in memory.
type ThemeStore struct {
	dir    string
	logger *zap.Logger

	mu    sync.RWMutex
	cache map[string]poster.Theme
}

// NewThemeStore creates a theme store over the given directory.
func NewThemeStore(dir string, logger *zap.Logger) *ThemeStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ThemeStore{
		dir:    dir,
		logger: logger,
		cache:  make(map[string]poster.Theme),
	}
}

// Available scans the themes directory and returns the sorted theme names.
func (s *ThemeStore) Available() []string {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		s.logger.Warn("Could not read themes directory", zap.String("dir", s.dir), zap.Error(err))
		return nil
	}
	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		names = append(names, strings.TrimSuffix(entry.Name(), ".json"))
	}
	sort.Strings(names)
	return names
}

// Exists reports whether a theme file is present for the name.
func (s *ThemeStore) Exists(name string) bool {
	if !validThemeName(name) {
		return false
	}
	_, err := os.Stat(filepath.Join(s.dir, name+".json"))
	return err == nil
}

// Load reads a theme by name. A missing or unreadable file falls back to
// the embedded feature_based theme.
func (s *ThemeStore) Load(name string) poster.Theme {
	if !validThemeName(name) {
		return poster.FallbackTheme()
	}

	s.mu.RLock()
	if theme, ok := s.cache[name]; ok {
		s.mu.RUnlock()
		return theme
	}
	s.mu.RUnlock()

	data, err := os.ReadFile(filepath.Join(s.dir, name+".json"))
	if err != nil {
		s.logger.Warn("Theme file not found, using fallback",
			zap.String("theme", name), zap.Error(err))
		return poster.FallbackTheme()
	}

	var theme poster.Theme
	if err := json.Unmarshal(data, &theme); err != nil {
		s.logger.Warn("Theme file is invalid, using fallback",
			zap.String("theme", name), zap.Error(err))
		return poster.FallbackTheme()
	}

	s.mu.Lock()
	s.cache[name] = theme
	s.mu.Unlock()

	s.logger.Debug("Loaded theme", zap.String("theme", name), zap.String("name", theme.Name))
	return theme
}

// Describe returns display name and description for each available theme.
func (s *ThemeStore) Describe() []ThemeInfo {
	names := s.Available()
	infos := make([]ThemeInfo, 0, len(names))
	for _, name := range names {
		theme := s.Load(name)
		infos = append(infos, ThemeInfo{
			Key:         name,
			Name:        theme.Name,
			Description: theme.Description,
		})
	}
	return infos
}

// ThemeInfo is the list entry for a theme.
type ThemeInfo struct {
	Key         string `json:"key"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

func validThemeName(name string) bool {
	if name == "" || strings.ContainsAny(name, "/\\") || strings.Contains(name, "..") {
		return false
	}
	return true
}
