// Package viz renders coverage playback in the terminal.
//
// [Terminal] is a playback surface that paints grid cells with lipgloss
// background colors and places the agent with sub-cell resolution. [Model]
// wraps a driver and a terminal surface in a Bubble Tea program with a
// coverage chart drawn by asciigraph.
//
// # Key Bindings
//
//	Space - Pause/Resume playback
//	R     - Restart
//	[ ]   - Previous/next timestep
//	← →   - Previous/next frame
//	T     - Cycle color themes
//	?     - Show help overlay
//
// Themes are shared with the raster and SVG outputs through [Theme.Color]
// and [RGBA].
package viz
