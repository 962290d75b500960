package theme

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gdamore/tcell/v2"
	"github.com/pelletier/go-toml/v2"
)

// ThemeConfig represents the raw TOML theme configuration
type ThemeConfig struct {
	Name   string `toml:"name"`
	Colors struct {
		PaneText         string `toml:"pane_text"`
		PaneBorder       string `toml:"pane_border"`
		PaneTitle        string `toml:"pane_title"`
		PaneActive       string `toml:"pane_active"`
		PaneSelection    string `toml:"pane_selection"`
		GroupPlaceholder string `toml:"group_placeholder"`
		DiffInserted     string `toml:"diff_inserted"`
		DiffDeleted      string `toml:"diff_deleted"`
		DiffModified     string `toml:"diff_modified"`
		DiffMoved        string `toml:"diff_moved"`
		DiffGhost        string `toml:"diff_ghost"`
		DiffSummary      string `toml:"diff_summary"`
		StatusMode       string `toml:"status_mode"`
		StatusMessage    string `toml:"status_message"`
		Background       string `toml:"background"`
	} `toml:"colors"`
}

// getThemePaths returns the search paths for theme files
func getThemePaths() []string {
	paths := []string{}

	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths,
			filepath.Join(home, ".config", "chunkview", "themes"),
			filepath.Join(home, ".local", "share", "chunkview", "themes"),
		)
	}

	return paths
}

// findThemeFile searches for a theme file in standard locations
func findThemeFile(themeName string) (string, error) {
	filename := themeName + ".toml"

	for _, dir := range getThemePaths() {
		path := filepath.Join(dir, filename)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}

	return "", fmt.Errorf("theme file not found: %s", filename)
}

// LoadThemeFromFile loads a theme from a TOML file
func LoadThemeFromFile(filePath string) (*Theme, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read theme file: %w", err)
	}

	var config ThemeConfig
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse theme file: %w", err)
	}

	return configToTheme(config), nil
}

// LoadTheme loads a theme by name, searching standard theme directories
func LoadTheme(themeName string) (*Theme, error) {
	filePath, err := findThemeFile(themeName)
	if err != nil {
		return nil, err
	}

	return LoadThemeFromFile(filePath)
}

// configToTheme converts a ThemeConfig to a Theme, with fallback to Tokyo Night for missing colors
func configToTheme(config ThemeConfig) *Theme {
	t := TokyoNight()
	c := &t.Colors
	cfg := config.Colors

	overrides := []struct {
		value  string
		target *tcell.Color
	}{
		{cfg.PaneText, &c.PaneText},
		{cfg.PaneBorder, &c.PaneBorder},
		{cfg.PaneTitle, &c.PaneTitle},
		{cfg.PaneActive, &c.PaneActive},
		{cfg.PaneSelection, &c.PaneSelection},
		{cfg.GroupPlaceholder, &c.GroupPlaceholder},
		{cfg.DiffInserted, &c.DiffInserted},
		{cfg.DiffDeleted, &c.DiffDeleted},
		{cfg.DiffModified, &c.DiffModified},
		{cfg.DiffMoved, &c.DiffMoved},
		{cfg.DiffGhost, &c.DiffGhost},
		{cfg.DiffSummary, &c.DiffSummary},
		{cfg.StatusMode, &c.StatusMode},
		{cfg.StatusMessage, &c.StatusMessage},
		{cfg.Background, &c.Background},
	}
	for _, o := range overrides {
		if o.value != "" {
			*o.target = ParseColorString(o.value)
		}
	}

	if config.Name != "" {
		t.Name = config.Name
	}

	return t
}

// LoadThemeOrDefault loads a theme by name, or returns Tokyo Night if not found
func LoadThemeOrDefault(themeName string) *Theme {
	switch themeName {
	case "default":
		return Default()
	case "", "tokyo-night":
		return TokyoNight()
	}

	theme, err := LoadTheme(themeName)
	if err != nil {
		return TokyoNight()
	}

	return theme
}
