// Package planner turns one frame group plus config and probe data into a
// Job that the backend package consumes.
//
// Implemented:
//   - Job, FrameTarget (types.go)
//   - BuildJob: output paths, frame rate, loop mapping, scale width and
//     alpha decisions (planner.go)
package planner
