package coverage

import (
	"errors"
	"fmt"
)

// Domain errors for log loading and playback.
var (
	// ErrMalformedLog indicates a structurally invalid log row.
	ErrMalformedLog = errors.New("coverage: malformed log")

	// ErrEmptyPath indicates a visited log without any timestep.
	ErrEmptyPath = errors.New("coverage: visited path is empty")

	// ErrLengthMismatch indicates the two logs disagree on the number of timesteps.
	ErrLengthMismatch = errors.New("coverage: visited and map logs differ in length")

	// ErrCellOutOfRange indicates a logged cell outside the grid.
	ErrCellOutOfRange = errors.New("coverage: cell outside grid")

	// ErrFrameOutOfRange indicates a frame index outside [0, S*T).
	ErrFrameOutOfRange = errors.New("coverage: frame out of range")

	// ErrCanceled indicates playback was stopped before the last frame.
	ErrCanceled = errors.New("coverage: playback canceled")

	// ErrInvalidConfig indicates unusable grid or playback settings.
	ErrInvalidConfig = errors.New("coverage: invalid configuration")
)

// MalformedLogError locates a parse failure inside a log file.
type MalformedLogError struct {
	File   string
	Row    int // 1-based
	Column int // 1-based, 0 when the whole row is at fault
	Reason string
	Err    error // optional more specific sentinel
}

func (e *MalformedLogError) Error() string {
	loc := e.File
	if loc == "" {
		loc = "<input>"
	}
	switch {
	case e.Row == 0:
		return fmt.Sprintf("%s: %s: %s", ErrMalformedLog, loc, e.Reason)
	case e.Column > 0:
		return fmt.Sprintf("%s: %s:%d:%d: %s", ErrMalformedLog, loc, e.Row, e.Column, e.Reason)
	default:
		return fmt.Sprintf("%s: %s:%d: %s", ErrMalformedLog, loc, e.Row, e.Reason)
	}
}

func (e *MalformedLogError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrMalformedLog, e.Err}
	}
	return []error{ErrMalformedLog}
}

// PlaybackError wraps an error with the frame it occurred on.
type PlaybackError struct {
	Frame    int
	Timestep int
	Wrapped  error
}

func (e *PlaybackError) Error() string {
	return fmt.Sprintf("frame %d (t=%d): %v", e.Frame, e.Timestep, e.Wrapped)
}

func (e *PlaybackError) Unwrap() error {
	return e.Wrapped
}
