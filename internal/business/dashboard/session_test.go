package dashboard

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maplemetrics/housing-dashboard/pkg/model"
)

func TestNewSessionDefaults(t *testing.T) {
	s := NewSession("s1", testDataset(), 0, nil)
	snap := s.Snapshot()

	assert.Equal(t, []string{"Nova Scotia", "Ontario"}, snap.Constraints.Provinces)
	assert.Equal(t, []string{"Halifax", "Toronto"}, snap.Constraints.Cities)
	assert.Equal(t, 3, snap.MatchCount)
	assert.Equal(t, 300000.0, snap.Constraints.MinPrice)
	assert.Equal(t, 1200000.0, snap.Constraints.MaxPrice)

	// No comparison cities selected yet: warning present, no output.
	assert.Nil(t, snap.Comparison)
	assert.Contains(t, snap.Warnings, ComparisonWarning)
}

func TestSessionProvinceChangeDefaultsCity(t *testing.T) {
	s := NewSession("s1", testDataset(), 0, nil)

	// Narrow to Ontario first.
	s.Update(func(cs *model.ConstraintSet) {
		cs.Provinces = []string{"Ontario"}
		cs.Cities = []string{"Toronto"}
	})

	// Switching provinces invalidates Toronto; Halifax becomes the default.
	snap := s.Update(func(cs *model.ConstraintSet) {
		cs.Provinces = []string{"Nova Scotia"}
	})

	assert.Equal(t, []string{"Halifax"}, snap.AvailableCities)
	assert.Equal(t, []string{"Halifax"}, snap.Constraints.Cities)
	assert.Equal(t, 1, snap.MatchCount)
	require.Len(t, snap.Summary, 1)
	assert.Equal(t, "Halifax", snap.Summary[0].City)
}

func TestSessionCityInvariant(t *testing.T) {
	s := NewSession("s1", testDataset(), 0, nil)

	// A city outside the selected provinces is dropped from the selection.
	snap := s.Update(func(cs *model.ConstraintSet) {
		cs.Provinces = []string{"Ontario"}
		cs.Cities = []string{"Toronto", "Halifax"}
	})
	assert.Equal(t, []string{"Toronto"}, snap.Constraints.Cities)
}

func TestSessionExplicitEmptyCitySelection(t *testing.T) {
	s := NewSession("s1", testDataset(), 0, nil)

	// Deselecting every city without touching provinces yields the empty
	// result, not a default.
	snap := s.Update(func(cs *model.ConstraintSet) {
		cs.Cities = nil
	})
	assert.Empty(t, snap.Constraints.Cities)
	assert.Equal(t, 0, snap.MatchCount)
	assert.Empty(t, snap.Summary)
	assert.Empty(t, snap.GeoPoints)
}

func TestSessionComparisonLifecycle(t *testing.T) {
	s := NewSession("s1", testDataset(), 0, nil)

	snap := s.Update(func(cs *model.ConstraintSet) {
		cs.CompareCities = []string{"Toronto"}
	})
	assert.Nil(t, snap.Comparison)
	assert.Contains(t, snap.Warnings, ComparisonWarning)

	snap = s.Update(func(cs *model.ConstraintSet) {
		cs.CompareCities = []string{"Toronto", "Halifax"}
	})
	require.NotNil(t, snap.Comparison)
	assert.NotContains(t, snap.Warnings, ComparisonWarning)
	assert.Equal(t, []float64{500000, 1200000}, snap.Comparison.PricesA)
	assert.Equal(t, []float64{300000}, snap.Comparison.PricesB)

	// Comparison ignores the filter state.
	snap = s.Update(func(cs *model.ConstraintSet) {
		cs.Provinces = []string{"Ontario"}
		cs.Cities = []string{"Toronto"}
	})
	require.NotNil(t, snap.Comparison)
	assert.Equal(t, []float64{300000}, snap.Comparison.PricesB)
}

func TestSessionVersionsIncrease(t *testing.T) {
	s := NewSession("s1", testDataset(), 0, nil)
	v0 := s.Snapshot().Version

	snap := s.Update(func(cs *model.ConstraintSet) { cs.MinBeds = 3 })
	assert.Greater(t, snap.Version, v0)

	snap2 := s.Update(func(cs *model.ConstraintSet) { cs.MinBeds = 4 })
	assert.Greater(t, snap2.Version, snap.Version)
}

func TestSessionSubscribers(t *testing.T) {
	s := NewSession("s1", testDataset(), 0, nil)

	var published []uint64
	s.Subscribe(func(snap model.Snapshot) {
		published = append(published, snap.Version)
	})

	s.Update(func(cs *model.ConstraintSet) { cs.MinBaths = 2 })
	s.Update(func(cs *model.ConstraintSet) { cs.MinBaths = 3 })

	require.Len(t, published, 2)
	assert.Less(t, published[0], published[1])
}

func TestSessionConcurrentUpdatesNeverRegress(t *testing.T) {
	s := NewSession("s1", testDataset(), 0, nil)

	var mu sync.Mutex
	var seen []uint64
	s.Subscribe(func(snap model.Snapshot) {
		mu.Lock()
		seen = append(seen, snap.Version)
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 25; i++ {
				s.Update(func(cs *model.ConstraintSet) {
					cs.MinBeds = (g + i) % 4
				})
			}
		}(g)
	}
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	require.NotEmpty(t, seen)
	// A snapshot computed from superseded constraints must never reach
	// subscribers after a newer one has.
	for i := 1; i < len(seen); i++ {
		assert.Greater(t, seen[i], seen[i-1], "delivery %d went backwards", i)
	}
	assert.Equal(t, s.Snapshot().Version, seen[len(seen)-1])
}

func TestManagerLifecycle(t *testing.T) {
	m := NewManager(testDataset(), 0, nil)

	s := m.Create()
	require.NotEmpty(t, s.ID)

	got, err := m.Get(s.ID)
	require.NoError(t, err)
	assert.Same(t, s, got)

	_, err = m.Get("unknown")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	assert.True(t, m.Close(s.ID))
	assert.False(t, m.Close(s.ID))
	_, err = m.Get(s.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}
