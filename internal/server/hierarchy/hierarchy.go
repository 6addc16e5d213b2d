// Package hierarchy implements pure functions over a snapshot of one user's
// categories: ancestor-privacy resolution, descendant expansion and
// recursive quantity aggregation.
//
// Every function builds its lookup tables and memo inside the call and
// discards them on return; nothing is cached across requests. The stored
// parent pointers are supposed to form a forest, but all walks carry a
// visited set so corrupted data with a cycle terminates instead of looping:
// a cycle resolves to not-private, no extra descendants, direct-count-only.
package hierarchy

import "minventory/internal/server/models"

// Snapshot indexes one user's categories for the duration of a single
// request. Build it once per call with NewSnapshot and let it go.
type Snapshot struct {
	byID     map[string]*models.Category
	children map[string][]string
}

func NewSnapshot(categories []models.Category) *Snapshot {
	s := &Snapshot{
		byID:     make(map[string]*models.Category, len(categories)),
		children: make(map[string][]string),
	}
	for i := range categories {
		c := &categories[i]
		s.byID[c.ID] = c
		if c.ParentID != "" {
			s.children[c.ParentID] = append(s.children[c.ParentID], c.ID)
		}
	}
	return s
}

// IsEffectivelyPrivate walks the parent chain starting at id (inclusive) and
// reports whether any visited node has its own private flag set. Unknown ids
// and cycles resolve to false.
func (s *Snapshot) IsEffectivelyPrivate(id string) bool {
	visited := make(map[string]bool)
	for id != "" && !visited[id] {
		visited[id] = true
		cat, ok := s.byID[id]
		if !ok {
			return false
		}
		if cat.Private {
			return true
		}
		id = cat.ParentID
	}
	return false
}

// ResolvePrivacy computes effective privacy for every category in the
// snapshot in one pass.
func (s *Snapshot) ResolvePrivacy() map[string]bool {
	out := make(map[string]bool, len(s.byID))
	for id := range s.byID {
		out[id] = s.IsEffectivelyPrivate(id)
	}
	return out
}

// DescendantIDs returns rootID plus every category reachable through child
// links, transitively. Used to expand a category-scoped filter into the
// whole subtree. Unknown roots yield just the root id, matching the
// behaviour of filtering by a category that has no children.
func (s *Snapshot) DescendantIDs(rootID string) []string {
	visited := map[string]bool{rootID: true}
	out := []string{rootID}

	stack := append([]string(nil), s.children[rootID]...)
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if visited[id] {
			continue
		}
		visited[id] = true
		out = append(out, id)
		stack = append(stack, s.children[id]...)
	}
	return out
}

// AggregateCounts returns, for every category, its direct count plus the
// recursive sum over its children. The memo is scoped to this call so shared
// subtrees are computed once and nothing stale survives the request.
func (s *Snapshot) AggregateCounts(direct map[string]int) map[string]int {
	memo := make(map[string]int, len(s.byID))

	var walk func(id string, onPath map[string]bool) int
	walk = func(id string, onPath map[string]bool) int {
		if total, ok := memo[id]; ok {
			return total
		}
		if onPath[id] {
			// cycle: count the node's own items only
			return direct[id]
		}
		onPath[id] = true
		total := direct[id]
		for _, child := range s.children[id] {
			total += walk(child, onPath)
		}
		delete(onPath, id)
		memo[id] = total
		return total
	}

	out := make(map[string]int, len(s.byID))
	for id := range s.byID {
		out[id] = walk(id, make(map[string]bool))
	}
	return out
}
