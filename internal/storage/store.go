// Package storage keeps imported coverage runs under a data directory, one
// directory per run holding metadata.json, visited.csv and map.csv.
package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/san-kum/covplay/internal/coverage"
	"github.com/san-kum/covplay/internal/logging"
	"github.com/san-kum/covplay/internal/logs"
	"github.com/san-kum/covplay/internal/metrics"
	"github.com/san-kum/covplay/internal/playback"
)

const (
	metadataFile = "metadata.json"
	visitedFile  = "visited.csv"
	mapFile      = "map.csv"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID        string             `json:"id"`
	Name      string             `json:"name"`
	Timestamp time.Time          `json:"timestamp"`
	Grid      coverage.Grid      `json:"grid"`
	Timesteps int                `json:"timesteps"`
	Source    Source             `json:"source"`
	Metrics   map[string]float64 `json:"metrics"`
}

// Source records where an imported run came from.
type Source struct {
	Visited string `json:"visited,omitempty"`
	Map     string `json:"map,omitempty"`
}

// Save validates run and stores it under a new ID.
func (s *Store) Save(name string, run *coverage.Run, src Source) (string, error) {
	if _, err := playback.New(run.Visited, run.Map, run.Grid); err != nil {
		return "", fmt.Errorf("storage: %w", err)
	}

	series, err := metrics.Collect(context.Background(), run.Visited, run.Map, run.Grid)
	if err != nil {
		return "", err
	}
	sum := metrics.Summarize(series)

	runID := uuid.New().String()
	runDir := filepath.Join(s.baseDir, runID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:        runID,
		Name:      name,
		Timestamp: time.Now(),
		Grid:      run.Grid,
		Timesteps: run.Timesteps(),
		Source:    src,
		Metrics: map[string]float64{
			"final_coverage":       sum.FinalCoverage,
			"mean_occupied":        sum.MeanOccupied,
			"max_occupied":         sum.MaxOccupied,
			"max_covered_occupied": sum.MaxCoveredOcc,
			"time_to_50":           float64(sum.TimeTo50),
			"time_to_90":           float64(sum.TimeTo90),
		},
	}

	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}
	if err := logs.SaveVisited(filepath.Join(runDir, visitedFile), run.Visited); err != nil {
		return "", err
	}
	if err := logs.SaveMap(filepath.Join(runDir, mapFile), run.Map); err != nil {
		return "", err
	}

	logging.Logf("storage: saved run %s (%d timesteps) to %s", runID, meta.Timesteps, runDir)
	return runID, nil
}

// Import loads a pair of planner logs and saves them as a new run.
func (s *Store) Import(name string, grid coverage.Grid, visitedPath, mapPath string) (string, error) {
	visited, err := logs.LoadVisited(visitedPath)
	if err != nil {
		return "", err
	}
	dyn, err := logs.LoadMap(mapPath)
	if err != nil {
		return "", err
	}
	if name == "" {
		name = filepath.Base(filepath.Dir(visitedPath))
	}
	run := &coverage.Run{Grid: grid, Visited: visited, Map: dyn}
	return s.Save(name, run, Source{Visited: visitedPath, Map: mapPath})
}

// List returns every stored run, oldest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].Timestamp.Before(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// LoadRun reads a stored run's logs back.
func (s *Store) LoadRun(runID string) (*coverage.Run, *RunMetadata, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return nil, nil, err
	}
	visited, err := logs.LoadVisited(s.VisitedPath(runID))
	if err != nil {
		return nil, nil, err
	}
	dyn, err := logs.LoadMap(s.MapPath(runID))
	if err != nil {
		return nil, nil, err
	}
	return &coverage.Run{Grid: meta.Grid, Visited: visited, Map: dyn}, meta, nil
}

func (s *Store) RunDir(runID string) string      { return filepath.Join(s.baseDir, runID) }
func (s *Store) VisitedPath(runID string) string { return filepath.Join(s.baseDir, runID, visitedFile) }
func (s *Store) MapPath(runID string) string     { return filepath.Join(s.baseDir, runID, mapFile) }

// WriteJSON encodes runs as indented JSON.
func WriteJSON(w io.Writer, runs []RunMetadata) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(runs)
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return err
	}
	return f.Close()
}
