package logs

import (
	"encoding/csv"
	"io"
	"os"
	"sort"
	"strconv"

	"github.com/san-kum/covplay/internal/coverage"
)

// WriteVisited writes one "x,y" row per timestep.
func WriteVisited(w io.Writer, visited coverage.VisitedPath) error {
	cw := csv.NewWriter(w)
	for _, c := range visited {
		if err := cw.Write([]string{strconv.Itoa(c.X), strconv.Itoa(c.Y)}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteMap writes one row per timestep: the timestep followed by the
// reported cells as x,y,occupied triples, ordered by row then column.
func WriteMap(w io.Writer, dyn coverage.MapDynamics) error {
	cw := csv.NewWriter(w)
	for t, snapshot := range dyn {
		row := make([]string, 0, 1+3*len(snapshot))
		row = append(row, strconv.Itoa(t))
		for _, c := range sortedCells(snapshot) {
			row = append(row,
				strconv.Itoa(c.X),
				strconv.Itoa(c.Y),
				strconv.Itoa(int(snapshot[c])),
			)
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// SaveVisited writes a visited-path log to path.
func SaveVisited(path string, visited coverage.VisitedPath) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return WriteVisited(f, visited)
}

// SaveMap writes a map-dynamics log to path.
func SaveMap(path string, dyn coverage.MapDynamics) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return WriteMap(f, dyn)
}

func sortedCells(snapshot map[coverage.Cell]coverage.Occupancy) []coverage.Cell {
	cells := make([]coverage.Cell, 0, len(snapshot))
	for c := range snapshot {
		cells = append(cells, c)
	}
	sort.Slice(cells, func(i, j int) bool {
		if cells[i].Y != cells[j].Y {
			return cells[i].Y < cells[j].Y
		}
		return cells[i].X < cells[j].X
	})
	return cells
}
