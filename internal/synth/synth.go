// Package synth generates seeded fake planner runs: a random-walk visited
// path and a two-state Markov occupancy log.
package synth

import (
	"fmt"
	"math/rand"
	"os"
	"path/filepath"

	"github.com/san-kum/covplay/internal/coverage"
	"github.com/san-kum/covplay/internal/logging"
	"github.com/san-kum/covplay/internal/logs"
)

const (
	VisitedFile = "visited.csv"
	MapFile     = "map.csv"
)

type Config struct {
	Grid  coverage.Grid
	Steps int
	Seed  int64

	// POccupy is the per-timestep chance a free cell becomes occupied,
	// PRelease the chance an occupied cell becomes free.
	POccupy  float64
	PRelease float64
	// PInitial is the occupied fraction in the first, full report.
	PInitial float64
}

func DefaultConfig() Config {
	return Config{
		Grid:     coverage.Grid{XLen: 10, YLen: 10},
		Steps:    100,
		Seed:     1,
		POccupy:  0.02,
		PRelease: 0.2,
		PInitial: 0.1,
	}
}

func (c Config) Validate() error {
	if c.Grid.XLen <= 0 || c.Grid.YLen <= 0 {
		return fmt.Errorf("%w: grid %dx%d", coverage.ErrInvalidConfig, c.Grid.XLen, c.Grid.YLen)
	}
	if c.Steps <= 0 {
		return fmt.Errorf("%w: steps must be positive, got %d", coverage.ErrInvalidConfig, c.Steps)
	}
	for name, p := range map[string]float64{"p_occupy": c.POccupy, "p_release": c.PRelease, "p_initial": c.PInitial} {
		if p < 0 || p > 1 {
			return fmt.Errorf("%w: %s %g not in [0,1]", coverage.ErrInvalidConfig, name, p)
		}
	}
	return nil
}

type Generator struct {
	cfg        Config
	randSource *rand.Rand
}

func New(cfg Config) *Generator {
	return &Generator{
		cfg:        cfg,
		randSource: rand.New(rand.NewSource(cfg.Seed)),
	}
}

var moves = [...]coverage.Cell{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: -1, Y: 0}, {X: 0, Y: 1}, {X: 0, Y: -1}}

// Generate produces a run of cfg.Steps timesteps. The first map row reports
// every cell; later rows only report cells whose occupancy flipped.
func (g *Generator) Generate() (*coverage.Run, error) {
	if err := g.cfg.Validate(); err != nil {
		return nil, err
	}
	grid := g.cfg.Grid
	run := &coverage.Run{
		Grid:    grid,
		Visited: make(coverage.VisitedPath, 0, g.cfg.Steps),
		Map:     make(coverage.MapDynamics, 0, g.cfg.Steps),
	}

	pos := coverage.Cell{X: g.randSource.Intn(grid.XLen), Y: g.randSource.Intn(grid.YLen)}
	occ := make(map[coverage.Cell]coverage.Occupancy, grid.Size())

	for t := 0; t < g.cfg.Steps; t++ {
		if t > 0 {
			pos = g.step(pos)
		}
		run.Visited = append(run.Visited, pos)

		report := make(map[coverage.Cell]coverage.Occupancy)
		for _, c := range grid.Cells() {
			if t == 0 {
				occ[c] = g.flag(g.cfg.PInitial)
				report[c] = occ[c]
				continue
			}
			p := g.cfg.POccupy
			if occ[c] == coverage.Occupied {
				p = g.cfg.PRelease
			}
			if g.randSource.Float64() < p {
				occ[c] ^= 1
				report[c] = occ[c]
			}
		}
		run.Map = append(run.Map, report)
	}
	return run, nil
}

func (g *Generator) step(pos coverage.Cell) coverage.Cell {
	for {
		m := moves[g.randSource.Intn(len(moves))]
		next := coverage.Cell{X: pos.X + m.X, Y: pos.Y + m.Y}
		if g.cfg.Grid.Contains(next) {
			return next
		}
	}
}

func (g *Generator) flag(p float64) coverage.Occupancy {
	if g.randSource.Float64() < p {
		return coverage.Occupied
	}
	return coverage.Free
}

// WriteRun writes run's logs into dir and returns their paths.
func WriteRun(dir string, run *coverage.Run) (visitedPath, mapPath string, err error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", "", err
	}
	visitedPath = filepath.Join(dir, VisitedFile)
	mapPath = filepath.Join(dir, MapFile)
	if err := logs.SaveVisited(visitedPath, run.Visited); err != nil {
		return "", "", err
	}
	if err := logs.SaveMap(mapPath, run.Map); err != nil {
		return "", "", err
	}
	logging.Logf("synth: wrote %d timesteps to %s", run.Timesteps(), dir)
	return visitedPath, mapPath, nil
}
