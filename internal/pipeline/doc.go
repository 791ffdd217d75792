// Package pipeline drives one conversion pipeline over an input directory:
// group frames, plan each group, run the primary backend then the fallback,
// and report aggregate results.
//
// Files:
//   - discover.go: input validation and frame grouping
//   - runner.go: Prepare, Run and per-group processing
//   - lock.go: per-output-directory run lock
//   - scan.go: Scan report for "texanim scan"
//   - stats.go: RunStats and per-group records
//
// A failure on one group never aborts the batch; only setup errors
// (missing input, no tools, lock held) are returned to the caller.
package pipeline
