package config

import (
	"sort"

	"github.com/san-kum/covplay/internal/coverage"
)

// Presets are common grid layouts. A preset only sets grid and rendering
// fields; log paths always come from flags or the config file.
var Presets = map[string]*Config{
	"scenario": {
		Grid:     coverage.Grid{XLen: 2, YLen: 2},
		Playback: PlaybackConfig{Substeps: 10, FrameRate: 25},
		Render:   RenderConfig{CellSize: 96, Theme: "classic", AgentRadius: 0.45},
	},
	"room": {
		Grid:     coverage.Grid{XLen: 10, YLen: 10},
		Playback: PlaybackConfig{Substeps: 10, FrameRate: 25},
		Render:   RenderConfig{CellSize: 40, Theme: "classic", AgentRadius: 0.45},
	},
	"office": {
		Grid:     coverage.Grid{XLen: 20, YLen: 15},
		Playback: PlaybackConfig{Substeps: 6, FrameRate: 25},
		Render:   RenderConfig{CellSize: 24, Theme: "classic", AgentRadius: 0.45},
	},
	"warehouse": {
		Grid:     coverage.Grid{XLen: 40, YLen: 30},
		Playback: PlaybackConfig{Substeps: 4, FrameRate: 30},
		Render:   RenderConfig{CellSize: 16, Theme: "classic", AgentRadius: 0.4},
	},
	"corridor": {
		Grid:     coverage.Grid{XLen: 60, YLen: 5},
		Playback: PlaybackConfig{Substeps: 5, FrameRate: 25},
		Render:   RenderConfig{CellSize: 16, Theme: "classic", AgentRadius: 0.45},
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	cfg := *p
	return &cfg
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Apply copies the preset's grid, playback and render settings onto c.
func (c *Config) Apply(preset *Config) {
	c.Grid = preset.Grid
	c.Playback = preset.Playback
	c.Render = preset.Render
}
