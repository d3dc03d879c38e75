// Package logs reads and writes the planner's visited-path and map-dynamics
// CSV logs.
package logs

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/san-kum/covplay/internal/coverage"
	"github.com/san-kum/covplay/internal/logging"
)

// LoadVisited reads a visited-path log from path.
func LoadVisited(path string) (coverage.VisitedPath, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	visited, err := readVisited(f, path)
	if err != nil {
		return nil, err
	}
	logging.Logf("logs: %s: %d timesteps", path, len(visited))
	return visited, nil
}

// LoadMap reads a map-dynamics log from path.
func LoadMap(path string) (coverage.MapDynamics, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	dyn, err := readMap(f, path)
	if err != nil {
		return nil, err
	}
	logging.Logf("logs: %s: %d timesteps", path, len(dyn))
	return dyn, nil
}

// ReadVisited parses a visited-path log. Each row is exactly "x,y".
func ReadVisited(r io.Reader) (coverage.VisitedPath, error) {
	return readVisited(r, "")
}

// ReadMap parses a map-dynamics log. Each row is a leading ignored field
// followed by (x, y, occupied) triples.
func ReadMap(r io.Reader) (coverage.MapDynamics, error) {
	return readMap(r, "")
}

func readVisited(r io.Reader, name string) (coverage.VisitedPath, error) {
	visited := make(coverage.VisitedPath, 0)
	err := eachRow(r, name, func(row int, record []string) error {
		if len(record) != 2 {
			return malformed(name, row, 0, fmt.Sprintf("expected 2 fields, got %d", len(record)))
		}
		x, err := parseCoord(name, row, 1, record[0])
		if err != nil {
			return err
		}
		y, err := parseCoord(name, row, 2, record[1])
		if err != nil {
			return err
		}
		visited = append(visited, coverage.Cell{X: x, Y: y})
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(visited) == 0 {
		return nil, &coverage.MalformedLogError{File: name, Reason: "no rows", Err: coverage.ErrEmptyPath}
	}
	return visited, nil
}

func readMap(r io.Reader, name string) (coverage.MapDynamics, error) {
	dyn := make(coverage.MapDynamics, 0)
	err := eachRow(r, name, func(row int, record []string) error {
		// A trailing separator leaves one empty field behind.
		if n := len(record); n > 1 && record[n-1] == "" {
			record = record[:n-1]
		}
		fields := record[1:]
		if len(fields)%3 != 0 {
			return malformed(name, row, 0, fmt.Sprintf("%d fields after the leading one, not a multiple of 3", len(fields)))
		}

		snapshot := make(map[coverage.Cell]coverage.Occupancy, len(fields)/3)
		for i := 1; i < len(record); i += 3 {
			x, err := parseCoord(name, row, i+1, record[i])
			if err != nil {
				return err
			}
			y, err := parseCoord(name, row, i+2, record[i+1])
			if err != nil {
				return err
			}
			occ, err := parseOccupancy(name, row, i+3, record[i+2])
			if err != nil {
				return err
			}
			snapshot[coverage.Cell{X: x, Y: y}] = occ
		}
		dyn = append(dyn, snapshot)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dyn, nil
}

// eachRow feeds trimmed CSV records to fn together with their 1-based line.
func eachRow(r io.Reader, name string, fn func(row int, record []string) error) error {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	for {
		record, err := cr.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				return malformed(name, pe.Line, pe.Column, pe.Err.Error())
			}
			return err
		}

		line, _ := cr.FieldPos(0)
		for i := range record {
			record[i] = strings.TrimSpace(record[i])
		}
		if err := fn(line, record); err != nil {
			return err
		}
	}
}

func parseCoord(name string, row, col int, field string) (int, error) {
	v, err := strconv.Atoi(field)
	if err != nil {
		return 0, malformed(name, row, col, fmt.Sprintf("%q is not an integer", field))
	}
	if v < 0 {
		return 0, malformed(name, row, col, fmt.Sprintf("negative coordinate %d", v))
	}
	return v, nil
}

func parseOccupancy(name string, row, col int, field string) (coverage.Occupancy, error) {
	v, err := strconv.Atoi(field)
	if err != nil {
		return 0, malformed(name, row, col, fmt.Sprintf("%q is not an integer", field))
	}
	switch v {
	case 0:
		return coverage.Free, nil
	case 1:
		return coverage.Occupied, nil
	}
	return 0, malformed(name, row, col, fmt.Sprintf("occupancy %d not in {0,1}", v))
}

func malformed(name string, row, col int, reason string) error {
	return &coverage.MalformedLogError{File: name, Row: row, Column: col, Reason: reason}
}
