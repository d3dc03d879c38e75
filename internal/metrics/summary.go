package metrics

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Summary condenses a coverage series.
type Summary struct {
	Timesteps     int
	FinalCoverage float64
	MeanOccupied  float64
	StdOccupied   float64
	MaxOccupied   float64
	MaxCoveredOcc float64
	TimeTo50      int // first timestep reaching 50% coverage, -1 if never
	TimeTo90      int
}

// Summarize derives a Summary from a series recorded with the default
// metrics.
func Summarize(s *Series) Summary {
	sum := Summary{Timesteps: s.Len(), TimeTo50: -1, TimeTo90: -1}
	if s.Len() == 0 {
		return sum
	}

	cov := s.Values("coverage")
	if len(cov) > 0 {
		sum.FinalCoverage = cov[len(cov)-1]
		sum.TimeTo50 = firstReaching(s.Timesteps(), cov, 0.5)
		sum.TimeTo90 = firstReaching(s.Timesteps(), cov, 0.9)
	}

	if occ := s.Values("occupied"); len(occ) > 0 {
		sum.MeanOccupied = stat.Mean(occ, nil)
		if len(occ) > 1 {
			sum.StdOccupied = stat.StdDev(occ, nil)
		}
		sum.MaxOccupied = floats.Max(occ)
	}
	// The running mean, when recorded, is the value at the last timestep.
	if mean := s.Values("mean_occupied"); len(mean) > 0 {
		sum.MeanOccupied = mean[len(mean)-1]
	}
	if co := s.Values("covered_occupied"); len(co) > 0 {
		sum.MaxCoveredOcc = floats.Max(co)
	}
	return sum
}

func firstReaching(ts []int, values []float64, threshold float64) int {
	for i, v := range values {
		if v >= threshold {
			return ts[i]
		}
	}
	return -1
}
