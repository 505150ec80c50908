package dashboard

import (
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/maplemetrics/housing-dashboard/internal/dataset"
	"github.com/maplemetrics/housing-dashboard/pkg/model"
)

// ComparisonWarning is surfaced in the snapshot whenever the comparison
// selection does not name exactly two distinct cities.
const ComparisonWarning = "select exactly two distinct cities to compare"

// Session owns one user's constraint set and recomputes the filter and
// aggregation pipeline synchronously on every mutation. Interactions are
// serialized by the session mutex; the only shared state underneath is the
// read-only dataset.
type Session struct {
	ID string

	ds       *dataset.Dataset
	binWidth float64
	logger   *zap.Logger

	mu          sync.Mutex
	constraints model.ConstraintSet
	version     uint64
	snapshot    model.Snapshot

	// Last filter result, reused when a mutation leaves the constraints
	// unchanged (e.g. re-selecting the same province).
	filtered      []model.Listing
	filteredValid bool

	subscribers []func(model.Snapshot)

	// notifyMu serializes subscriber delivery; notified is the highest
	// version ever delivered.
	notifyMu sync.Mutex
	notified uint64
}

// NewSession creates a session with everything selected: all provinces and
// their cities, the dataset's full price range, and no minimums. The first
// snapshot is computed immediately.
func NewSession(id string, ds *dataset.Dataset, binWidth float64, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	if binWidth <= 0 {
		binWidth = DefaultBinWidth
	}

	minPrice, maxPrice := ds.PriceRange()
	s := &Session{
		ID:       id,
		ds:       ds,
		binWidth: binWidth,
		logger:   logger,
		constraints: model.ConstraintSet{
			Provinces: append([]string(nil), ds.Provinces()...),
			Cities:    ds.CitiesIn(ds.Provinces()...),
			MinPrice:  minPrice,
			MaxPrice:  maxPrice,
		},
	}

	s.mu.Lock()
	s.recomputeLocked()
	snap := s.snapshot
	s.mu.Unlock()
	s.notify(snap)
	return s
}

// Constraints returns a copy of the current constraint set.
func (s *Session) Constraints() model.ConstraintSet {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.constraints
}

// Snapshot returns the latest published results.
func (s *Session) Snapshot() model.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot
}

// FilteredListings returns the rows matching the current constraints, in
// dataset order.
func (s *Session) FilteredListings() []model.Listing {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filtered
}

// Subscribe registers a display collaborator invoked after every publish.
func (s *Session) Subscribe(fn func(model.Snapshot)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscribers = append(s.subscribers, fn)
}

// Update applies a constraint mutation and synchronously recomputes the
// pipeline, returning the new snapshot.
func (s *Session) Update(mutate func(*model.ConstraintSet)) model.Snapshot {
	s.mu.Lock()
	prev := s.constraints
	mutate(&s.constraints)
	s.normalizeLocked(prev)
	if !s.constraints.Equal(prev) {
		s.filteredValid = false
	}
	s.recomputeLocked()
	snap := s.snapshot
	s.mu.Unlock()

	s.notify(snap)
	return snap
}

// normalizeLocked enforces the city-subset invariant: the available city set
// is derived from the selected provinces, selections outside it are dropped,
// and when a province change invalidates every prior choice the first
// available city becomes the selection.
func (s *Session) normalizeLocked(prev model.ConstraintSet) {
	sort.Strings(s.constraints.Provinces)

	available := s.ds.CitiesIn(s.constraints.Provinces...)
	availSet := make(map[string]struct{}, len(available))
	for _, c := range available {
		availSet[c] = struct{}{}
	}

	var kept []string
	for _, c := range s.constraints.Cities {
		if _, ok := availSet[c]; ok {
			kept = append(kept, c)
		}
	}
	provincesChanged := !equalSorted(prev.Provinces, s.constraints.Provinces)
	if len(kept) == 0 && provincesChanged && len(available) > 0 {
		kept = []string{available[0]}
	}
	sort.Strings(kept)
	s.constraints.Cities = kept

	if s.constraints.MaxPrice < s.constraints.MinPrice {
		s.constraints.MaxPrice = s.constraints.MinPrice
	}
	if s.constraints.MinBeds < 0 {
		s.constraints.MinBeds = 0
	}
	if s.constraints.MinBaths < 0 {
		s.constraints.MinBaths = 0
	}
}

// recomputeLocked runs filter, aggregation, and series building, then
// publishes a new snapshot. Publication is last-write-wins: versions are
// assigned under the lock, so a recomputation from older constraints can
// never replace a newer snapshot.
func (s *Session) recomputeLocked() {
	if !s.filteredValid {
		s.filtered = Filter(s.ds, s.constraints)
		s.filteredValid = true
	}
	rows := s.filtered

	prices := make([]float64, 0, len(rows))
	for _, l := range rows {
		prices = append(prices, l.Price)
	}

	summary := Summarize(rows)

	snap := model.Snapshot{
		Version:         s.version + 1,
		Constraints:     s.constraints,
		AvailableCities: s.ds.CitiesIn(s.constraints.Provinces...),
		MatchCount:      len(rows),
		Summary:         summary,
		StyledSummary:   StyledSummaryTable(summary),
		IncomeSeries:    IncomeByCity(rows),
		Histogram:       Histogram(prices, s.binWidth),
		BoxPlots:        BoxPlotGroups(rows),
		GeoPoints:       GeoPoints(rows),
	}

	comparison, err := CompareCities(s.ds, s.constraints.CompareCities)
	if err != nil {
		snap.Warnings = append(snap.Warnings, ComparisonWarning)
	} else {
		snap.Comparison = comparison
	}

	s.version++
	s.snapshot = snap

	s.logger.Debug("snapshot published",
		zap.String("session", s.ID),
		zap.Uint64("version", snap.Version),
		zap.Int("matches", snap.MatchCount),
	)
}

// notify delivers snap to subscribers. Delivery is serialized and
// last-write-wins: once a version has gone out, nothing older (or equal)
// is ever delivered after it.
func (s *Session) notify(snap model.Snapshot) {
	s.mu.Lock()
	subs := make([]func(model.Snapshot), len(s.subscribers))
	copy(subs, s.subscribers)
	s.mu.Unlock()

	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()
	if snap.Version <= s.notified {
		return
	}
	s.notified = snap.Version

	for _, fn := range subs {
		fn(snap)
	}
}

func equalSorted(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
