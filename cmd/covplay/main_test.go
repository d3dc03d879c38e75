package main

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/covplay/internal/config"
	"github.com/san-kum/covplay/internal/coverage"
	"github.com/san-kum/covplay/internal/playback"
	"github.com/san-kum/covplay/internal/viz"
)

func scenarioDriver(t *testing.T) *playback.Driver {
	t.Helper()
	visited := coverage.VisitedPath{{X: 0, Y: 0}, {X: 0, Y: 1}, {X: 1, Y: 1}}
	dyn := coverage.MapDynamics{
		{{X: 1, Y: 1}: coverage.Occupied},
		{},
		{{X: 0, Y: 0}: coverage.Free},
	}
	d, err := playback.New(visited, dyn, coverage.Grid{XLen: 2, YLen: 2})
	if err != nil {
		t.Fatalf("new driver: %v", err)
	}
	return d
}

// playToEnd ticks m through every remaining frame and returns the last command.
func playToEnd(t *testing.T, m viz.Model, frames int) tea.Cmd {
	t.Helper()
	var cmd tea.Cmd
	for i := 1; i < frames; i++ {
		next, c := m.Update(viz.TickMsg(time.Now()))
		m = next.(viz.Model)
		cmd = c
	}
	if !m.Finished() {
		t.Fatalf("expected player to finish, at frame %d", m.Frame())
	}
	return cmd
}

func TestNewPlayerOnceQuits(t *testing.T) {
	d := scenarioDriver(t)
	m, err := newPlayer(d, config.DefaultConfig(), nil, true)
	if err != nil {
		t.Fatal(err)
	}

	cmd := playToEnd(t, m, d.Frames())
	if cmd == nil {
		t.Fatal("expected quit command after the last frame")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg after the last frame")
	}
}

func TestNewPlayerKeepsOpen(t *testing.T) {
	d := scenarioDriver(t)
	m, err := newPlayer(d, config.DefaultConfig(), nil, false)
	if err != nil {
		t.Fatal(err)
	}

	if cmd := playToEnd(t, m, d.Frames()); cmd != nil {
		if _, ok := cmd().(tea.QuitMsg); ok {
			t.Error("player without once should not quit at the end")
		}
	}
}
