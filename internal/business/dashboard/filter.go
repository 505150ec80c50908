// Package dashboard implements the filter-and-aggregate pipeline behind the
// dashboard: conjunctive row filtering, grouped price/income statistics, and
// the chart-ready series published to display collaborators.
package dashboard

import (
	"github.com/maplemetrics/housing-dashboard/internal/dataset"
	"github.com/maplemetrics/housing-dashboard/pkg/model"
)

// Filter returns the listings satisfying every constraint clause, in dataset
// order. An empty province or city selection yields an empty result; there is
// no implicit select-all.
func Filter(ds *dataset.Dataset, cs model.ConstraintSet) []model.Listing {
	if len(cs.Provinces) == 0 || len(cs.Cities) == 0 {
		return nil
	}

	provinces := toSet(cs.Provinces)
	cities := toSet(cs.Cities)

	var out []model.Listing
	for _, l := range ds.Listings() {
		if _, ok := provinces[l.Province]; !ok {
			continue
		}
		if _, ok := cities[l.City]; !ok {
			continue
		}
		if l.Price < cs.MinPrice || l.Price > cs.MaxPrice {
			continue
		}
		if l.NumberBeds < cs.MinBeds {
			continue
		}
		if l.NumberBaths < cs.MinBaths {
			continue
		}
		out = append(out, l)
	}
	return out
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}
