// Package frames discovers numbered texture files in a directory and groups
// them into ordered animation sequences.
//
// A file belongs to a sequence when its name is <base>_<digits><ext>. The
// base is everything before the final underscore-digit run, so a name with
// several trailing groups binds to the last one: "room_12_3.png" is frame 3
// of "room_12".
package frames

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// stemPattern splits a file stem into base and frame index. The greedy
// first group binds the last underscore-digit run.
var stemPattern = regexp.MustCompile(`^(.+)_(\d+)$`)

// MinFrames is the smallest sequence that is materialized as a group.
const MinFrames = 2

// Frame is one numbered file of a sequence.
type Frame struct {
	Name  string // File name, e.g. "door_2.png".
	Index int    // Parsed frame number.
	Path  string // Path inside the scanned directory.
}

// Group is a named sequence of at least [MinFrames] frames ordered strictly
// ascending by Index.
type Group struct {
	Name   string
	Frames []Frame
}

// Paths returns the frame paths in playback order.
func (g Group) Paths() []string {
	out := make([]string, len(g.Frames))
	for i, f := range g.Frames {
		out[i] = f.Path
	}
	return out
}

// First returns the lowest-numbered frame.
func (g Group) First() Frame { return g.Frames[0] }

// Last returns the highest-numbered frame.
func (g Group) Last() Frame { return g.Frames[len(g.Frames)-1] }

// Gaps counts missing indices between the first and last frame.
func (g Group) Gaps() int {
	return g.Last().Index - g.First().Index + 1 - len(g.Frames)
}

// Listing is the full result of scanning one directory.
type Listing struct {
	Dir        string
	Extension  string
	Groups     []Group  // Sorted by Name.
	Singles    []string // Bases with a single frame, sorted.
	Duplicates []string // Files dropped because their index was already taken.
	Unmatched  int      // Files with the extension but no frame suffix.
}

// ParseName splits a file name into base and frame index. ext is matched
// case-insensitively and must include the leading dot.
func ParseName(name, ext string) (base string, index int, ok bool) {
	if ext == "" || !strings.EqualFold(filepath.Ext(name), ext) {
		return "", 0, false
	}
	stem := name[:len(name)-len(ext)]
	m := stemPattern.FindStringSubmatch(stem)
	if m == nil {
		return "", 0, false
	}
	n, err := strconv.Atoi(m[2])
	if err != nil {
		return "", 0, false
	}
	return m[1], n, true
}

// Scan reads dir (not recursively) and partitions files with extension ext
// into groups. Subdirectories and non-matching files are skipped. Within a
// base, two files with the same index (door_1, door_01) keep the
// lexicographically first name; the rest are listed in Duplicates.
func Scan(dir, ext string) (*Listing, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", dir, err)
	}

	listing := &Listing{Dir: dir, Extension: ext}
	buckets := make(map[string][]Frame)

	// os.ReadDir returns entries sorted by name, which makes the
	// duplicate tie-break deterministic.
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		base, idx, ok := ParseName(name, ext)
		if !ok {
			if strings.EqualFold(filepath.Ext(name), ext) {
				listing.Unmatched++
			}
			continue
		}
		buckets[base] = append(buckets[base], Frame{
			Name:  name,
			Index: idx,
			Path:  filepath.Join(dir, name),
		})
	}

	for base, frames := range buckets {
		frames, dups := orderFrames(frames)
		listing.Duplicates = append(listing.Duplicates, dups...)
		if len(frames) < MinFrames {
			listing.Singles = append(listing.Singles, base)
			continue
		}
		listing.Groups = append(listing.Groups, Group{Name: base, Frames: frames})
	}

	sort.Slice(listing.Groups, func(i, j int) bool { return listing.Groups[i].Name < listing.Groups[j].Name })
	sort.Strings(listing.Singles)
	sort.Strings(listing.Duplicates)
	return listing, nil
}

// GroupByBaseName returns only the animatable groups of dir.
func GroupByBaseName(dir, ext string) ([]Group, error) {
	listing, err := Scan(dir, ext)
	if err != nil {
		return nil, err
	}
	return listing.Groups, nil
}

// orderFrames sorts frames by index and drops repeated indices, returning
// the names of the dropped files.
func orderFrames(frames []Frame) ([]Frame, []string) {
	sort.SliceStable(frames, func(i, j int) bool {
		if frames[i].Index != frames[j].Index {
			return frames[i].Index < frames[j].Index
		}
		return frames[i].Name < frames[j].Name
	})
	out := frames[:0]
	var dups []string
	for _, f := range frames {
		if len(out) > 0 && f.Index == out[len(out)-1].Index {
			dups = append(dups, f.Name)
			continue
		}
		out = append(out, f)
	}
	return out, dups
}
