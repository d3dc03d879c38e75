package metrics

import (
	"context"

	"github.com/san-kum/covplay/internal/coverage"
	"github.com/san-kum/covplay/internal/playback"
)

// Series records every metric once per timestep.
type Series struct {
	metrics   []Metric
	timesteps []int
	values    map[string][]float64
	lastT     int
}

func NewSeries(ms ...Metric) *Series {
	if len(ms) == 0 {
		ms = Default()
	}
	s := &Series{metrics: ms}
	s.Reset()
	return s
}

func (s *Series) Reset() {
	s.timesteps = nil
	s.values = make(map[string][]float64, len(s.metrics))
	s.lastT = -1
	for _, m := range s.metrics {
		m.Reset()
	}
}

// Observe feeds sample to every metric and appends their values.
func (s *Series) Observe(sample Sample) {
	s.timesteps = append(s.timesteps, sample.Timestep)
	for _, m := range s.metrics {
		m.Observe(sample)
		s.values[m.Name()] = append(s.values[m.Name()], m.Value())
	}
	s.lastT = sample.Timestep
}

// Hook returns a frame callback that samples d on the first frame of each
// timestep. next, when non-nil, is called after sampling.
func (s *Series) Hook(d *playback.Driver, next playback.FrameFunc) playback.FrameFunc {
	return func(st playback.State) error {
		if st.Timestep != s.lastT {
			s.Observe(Sample{
				Timestep: st.Timestep,
				Grid:     d.Grid(),
				States:   d.CellStates(),
				Covered:  d.CoveredCount(),
			})
		}
		if next != nil {
			return next(st)
		}
		return nil
	}
}

// Names returns the recorded metric names in registration order.
func (s *Series) Names() []string {
	names := make([]string, len(s.metrics))
	for i, m := range s.metrics {
		names[i] = m.Name()
	}
	return names
}

func (s *Series) Timesteps() []int { return s.timesteps }

// Values returns the recorded values of the named metric, or nil.
func (s *Series) Values(name string) []float64 { return s.values[name] }

func (s *Series) Len() int { return len(s.timesteps) }

// Collect plays a run without drawing and returns its series.
func Collect(ctx context.Context, visited coverage.VisitedPath, dyn coverage.MapDynamics, grid coverage.Grid, ms ...Metric) (*Series, error) {
	d, err := playback.New(visited, dyn, grid, playback.WithSubsteps(1))
	if err != nil {
		return nil, err
	}
	s := NewSeries(ms...)
	if err := d.Run(ctx, playback.Discard, s.Hook(d, nil)); err != nil {
		return nil, err
	}
	return s, nil
}
