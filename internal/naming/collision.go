package naming

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"
)

// CollisionResolver tracks output paths claimed by sequences and resolves
// duplicates by appending " - dupN" suffixes. Paths are compared
// case-insensitively. All methods are goroutine-safe.
type CollisionResolver struct {
	mu       sync.Mutex
	owners   map[string]string // folded output path → owner that claimed it
	counters map[string]int    // folded requested path → next dup counter
}

// NewCollisionResolver creates a ready-to-use resolver.
func NewCollisionResolver() *CollisionResolver {
	return &CollisionResolver{
		owners:   make(map[string]string),
		counters: make(map[string]int),
	}
}

// Resolve returns the final output path for owner (a sequence name).
// If requestedOutput is unclaimed, or already owned by owner, it is returned
// as-is. Otherwise a " - dupN" variant is generated.
func (cr *CollisionResolver) Resolve(owner, requestedOutput string) string {
	cr.mu.Lock()
	defer cr.mu.Unlock()

	key := fold(requestedOutput)
	claimed, exists := cr.owners[key]
	if !exists || claimed == owner {
		cr.owners[key] = owner
		return requestedOutput
	}

	dir := filepath.Dir(requestedOutput)
	base := filepath.Base(requestedOutput)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)

	counter := cr.counters[key]
	if counter == 0 {
		counter = 1
	}

	for {
		candidate := filepath.Join(dir, fmt.Sprintf("%s - dup%d%s", stem, counter, ext))
		cKey := fold(candidate)
		cOwner, cExists := cr.owners[cKey]
		if !cExists || cOwner == owner {
			cr.counters[key] = counter + 1
			cr.owners[cKey] = owner
			return candidate
		}
		counter++
	}
}

func fold(path string) string {
	return strings.ToLower(filepath.Clean(path))
}
