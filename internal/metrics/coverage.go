package metrics

import "github.com/san-kum/covplay/internal/coverage"

// CoveredFraction is the share of grid cells the agent has visited.
type CoveredFraction struct {
	name  string
	value float64
}

func NewCoveredFraction() *CoveredFraction {
	return &CoveredFraction{name: "coverage"}
}

func (c *CoveredFraction) Name() string { return c.name }

func (c *CoveredFraction) Observe(s Sample) {
	size := s.Grid.Size()
	if size == 0 {
		c.value = 0
		return
	}
	c.value = float64(s.Covered) / float64(size)
}

func (c *CoveredFraction) Value() float64 { return c.value }

func (c *CoveredFraction) Reset() { c.value = 0 }

// Occupied counts cells whose last report was occupied.
type Occupied struct {
	name  string
	count int
}

func NewOccupied() *Occupied {
	return &Occupied{name: "occupied"}
}

func (o *Occupied) Name() string { return o.name }

func (o *Occupied) Observe(s Sample) {
	o.count = countStates(s.States, coverage.ColorState.IsOccupied)
}

func (o *Occupied) Value() float64 { return float64(o.count) }

func (o *Occupied) Reset() { o.count = 0 }

// CoveredOccupied counts visited cells that are currently occupied.
type CoveredOccupied struct {
	name  string
	count int
}

func NewCoveredOccupied() *CoveredOccupied {
	return &CoveredOccupied{name: "covered_occupied"}
}

func (c *CoveredOccupied) Name() string { return c.name }

func (c *CoveredOccupied) Observe(s Sample) {
	c.count = countStates(s.States, func(st coverage.ColorState) bool {
		return st == coverage.StateCoveredOccupied
	})
}

func (c *CoveredOccupied) Value() float64 { return float64(c.count) }

func (c *CoveredOccupied) Reset() { c.count = 0 }

// MeanOccupied averages the occupied cell count over all observed timesteps.
type MeanOccupied struct {
	name    string
	sum     float64
	samples int
}

func NewMeanOccupied() *MeanOccupied {
	return &MeanOccupied{name: "mean_occupied"}
}

func (m *MeanOccupied) Name() string { return m.name }

func (m *MeanOccupied) Observe(s Sample) {
	m.sum += float64(countStates(s.States, coverage.ColorState.IsOccupied))
	m.samples++
}

func (m *MeanOccupied) Value() float64 {
	if m.samples == 0 {
		return 0
	}
	return m.sum / float64(m.samples)
}

func (m *MeanOccupied) Reset() {
	m.sum = 0
	m.samples = 0
}

// Default returns the per-timestep metrics recorded by the stats command.
func Default() []Metric {
	return []Metric{NewCoveredFraction(), NewOccupied(), NewCoveredOccupied(), NewMeanOccupied()}
}
