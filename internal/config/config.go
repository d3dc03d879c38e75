package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/covplay/internal/coverage"
)

const (
	DefaultSubsteps    = 10
	DefaultFrameRate   = 25
	DefaultCellSize    = 32
	DefaultAgentRadius = 0.45
	DefaultTheme       = "classic"
)

type Config struct {
	Grid     coverage.Grid  `yaml:"grid"`
	Playback PlaybackConfig `yaml:"playback"`
	Render   RenderConfig   `yaml:"render"`
	Logs     LogsConfig     `yaml:"logs"`
	Output   string         `yaml:"output,omitempty"`
}

type PlaybackConfig struct {
	Substeps  int `yaml:"substeps"`
	FrameRate int `yaml:"frame_rate"`
}

type RenderConfig struct {
	CellSize    int     `yaml:"cell_size"`
	Theme       string  `yaml:"theme"`
	AgentRadius float64 `yaml:"agent_radius"` // in cells
}

type LogsConfig struct {
	Visited string `yaml:"visited,omitempty"`
	Map     string `yaml:"map,omitempty"`
}

func DefaultConfig() *Config {
	return &Config{
		Playback: PlaybackConfig{
			Substeps:  DefaultSubsteps,
			FrameRate: DefaultFrameRate,
		},
		Render: RenderConfig{
			CellSize:    DefaultCellSize,
			Theme:       DefaultTheme,
			AgentRadius: DefaultAgentRadius,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", coverage.ErrInvalidConfig, path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks the settings playback cannot run without. Log paths are
// not checked here since runs may come from storage.
func (c *Config) Validate() error {
	if c.Grid.XLen <= 0 || c.Grid.YLen <= 0 {
		return fmt.Errorf("%w: grid %dx%d", coverage.ErrInvalidConfig, c.Grid.XLen, c.Grid.YLen)
	}
	if c.Playback.Substeps <= 0 {
		return fmt.Errorf("%w: substeps %d", coverage.ErrInvalidConfig, c.Playback.Substeps)
	}
	if c.Playback.FrameRate <= 0 {
		return fmt.Errorf("%w: frame_rate %d", coverage.ErrInvalidConfig, c.Playback.FrameRate)
	}
	if c.Render.CellSize < 4 {
		return fmt.Errorf("%w: cell_size %d is below 4 pixels", coverage.ErrInvalidConfig, c.Render.CellSize)
	}
	if c.Render.AgentRadius <= 0 || c.Render.AgentRadius > 0.5 {
		return fmt.Errorf("%w: agent_radius %g not in (0, 0.5]", coverage.ErrInvalidConfig, c.Render.AgentRadius)
	}
	return nil
}
