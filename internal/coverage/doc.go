// Package coverage defines the shared types of a recorded coverage run.
//
// A run is two timestep-indexed logs written by an external coverage
// planner:
//
//   - [VisitedPath]: the agent's grid cell at every timestep
//   - [MapDynamics]: a sparse per-timestep report of cell occupancy
//
// Together with the static [Grid] dimensions they are everything the
// playback packages need to reconstruct the run frame by frame. Cell colors
// are expressed as a [ColorState].
//
// # Coordinates
//
// Grid coordinates are stored with Y growing downward (row order of the
// planner's map). Render surfaces use Y growing upward; see the interp
// package for the mapping.
package coverage
