package hierarchy

import (
	"sort"
	"testing"

	"minventory/internal/server/models"

	"github.com/stretchr/testify/assert"
)

func cat(id, parent string, private bool) models.Category {
	return models.Category{ID: id, ParentID: parent, Private: private}
}

func TestIsEffectivelyPrivate_Cascade(t *testing.T) {
	// A(private) -> B -> C
	s := NewSnapshot([]models.Category{
		cat("A", "", true),
		cat("B", "A", false),
		cat("C", "B", false),
		cat("D", "", false),
	})

	assert.True(t, s.IsEffectivelyPrivate("A"))
	assert.True(t, s.IsEffectivelyPrivate("B"))
	assert.True(t, s.IsEffectivelyPrivate("C"))
	assert.False(t, s.IsEffectivelyPrivate("D"))
	assert.False(t, s.IsEffectivelyPrivate("missing"))
}

func TestIsEffectivelyPrivate_OwnFlag(t *testing.T) {
	s := NewSnapshot([]models.Category{
		cat("root", "", false),
		cat("leaf", "root", true),
	})
	assert.False(t, s.IsEffectivelyPrivate("root"))
	assert.True(t, s.IsEffectivelyPrivate("leaf"))
}

func TestIsEffectivelyPrivate_CycleTerminates(t *testing.T) {
	s := NewSnapshot([]models.Category{
		cat("A", "B", false),
		cat("B", "A", false),
	})
	assert.False(t, s.IsEffectivelyPrivate("A"))
	assert.False(t, s.IsEffectivelyPrivate("B"))
}

func TestResolvePrivacy(t *testing.T) {
	s := NewSnapshot([]models.Category{
		cat("A", "", true),
		cat("B", "A", false),
		cat("D", "", false),
	})
	got := s.ResolvePrivacy()
	assert.Equal(t, map[string]bool{"A": true, "B": true, "D": false}, got)
}

func TestDescendantIDs(t *testing.T) {
	// X -> {Y, Z}, Y -> W
	s := NewSnapshot([]models.Category{
		cat("X", "", false),
		cat("Y", "X", false),
		cat("Z", "X", false),
		cat("W", "Y", false),
		cat("other", "", false),
	})

	got := s.DescendantIDs("X")
	sort.Strings(got)
	assert.Equal(t, []string{"W", "X", "Y", "Z"}, got)

	assert.Equal(t, []string{"W"}, s.DescendantIDs("W"))
	assert.Equal(t, []string{"missing"}, s.DescendantIDs("missing"))
}

func TestDescendantIDs_CycleTerminates(t *testing.T) {
	s := NewSnapshot([]models.Category{
		cat("A", "B", false),
		cat("B", "A", false),
	})
	got := s.DescendantIDs("A")
	sort.Strings(got)
	assert.Equal(t, []string{"A", "B"}, got)
}

func TestAggregateCounts(t *testing.T) {
	s := NewSnapshot([]models.Category{
		cat("X", "", false),
		cat("Y", "X", false),
		cat("Z", "X", false),
		cat("W", "Y", false),
	})
	direct := map[string]int{"X": 0, "Y": 3, "Z": 2, "W": 5}

	got := s.AggregateCounts(direct)

	assert.Equal(t, 10, got["X"])
	assert.Equal(t, 8, got["Y"])
	assert.Equal(t, 2, got["Z"])
	assert.Equal(t, 5, got["W"])
}

func TestAggregateCounts_MissingDirectCountsAreZero(t *testing.T) {
	s := NewSnapshot([]models.Category{
		cat("X", "", false),
		cat("Y", "X", false),
	})
	got := s.AggregateCounts(map[string]int{"Y": 4})
	assert.Equal(t, 4, got["X"])
}

func TestAggregateCounts_CycleTerminates(t *testing.T) {
	s := NewSnapshot([]models.Category{
		cat("A", "B", false),
		cat("B", "A", false),
	})
	got := s.AggregateCounts(map[string]int{"A": 1, "B": 2})
	// bounded, not meaningful: each node counts itself and one pass of the loop
	assert.Equal(t, 3, got["A"])
	assert.Equal(t, 3, got["B"])
}
