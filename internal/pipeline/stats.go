package pipeline

import (
	"time"

	"github.com/backmassage/texanim/internal/check"
	"github.com/backmassage/texanim/internal/config"
)

// Status is the final state of one group.
type Status string

const (
	StatusConverted Status = "converted"
	StatusSkipped   Status = "skipped"
	StatusFailed    Status = "failed"
	StatusPartial   Status = "partial" // transparent-png: some frames failed.
	StatusDryRun    Status = "dry run"
)

// GroupResult records what happened to one group.
type GroupResult struct {
	Name     string
	Frames   int
	First    int
	Last     int
	Backend  check.Backend // Backend that produced the output, if any.
	Fallback bool          // The fallback ran.
	Status   Status
	Bytes    int64
	Err      error

	// FailedFrames counts transparent-png frames that failed on every
	// backend. Their outputs are removed; the other frames are kept.
	FailedFrames int
}

// RunStats tracks aggregate counters and byte totals across one pipeline run.
type RunStats struct {
	Kind         config.Kind
	Total        int
	Current      int
	Converted    int
	Skipped      int
	Failed       int
	Partial      int
	FailedFrames int
	FallbackUsed int
	OutputBytes  int64
	Elapsed      time.Duration
	Groups       []GroupResult
}

// Attempted returns the number of groups that reached a backend.
func (s *RunStats) Attempted() int {
	return s.Converted + s.Partial + s.Failed
}

func (s *RunStats) record(r GroupResult) {
	switch r.Status {
	case StatusConverted, StatusDryRun:
		s.Converted++
	case StatusSkipped:
		s.Skipped++
	case StatusPartial:
		s.Partial++
	case StatusFailed:
		s.Failed++
	}
	s.FailedFrames += r.FailedFrames
	if r.Fallback {
		s.FallbackUsed++
	}
	s.OutputBytes += r.Bytes
	s.Groups = append(s.Groups, r)
}
