// Package dataset loads and normalizes the housing listings CSV into the
// immutable working dataset shared by every session.
package dataset

import (
	"sort"

	"github.com/maplemetrics/housing-dashboard/pkg/model"
)

// Dataset is the cleaned, in-memory set of listings for the whole process
// lifetime. It is built once by Load and read-only afterwards.
type Dataset struct {
	listings         []model.Listing
	provinces        []string
	citiesByProvince map[string][]string
	minPrice         float64
	maxPrice         float64
}

// New builds a working dataset and its derived lookups (sorted provinces,
// province-to-cities mapping, price bounds) from already-clean listings.
func New(listings []model.Listing) *Dataset {
	ds := &Dataset{
		listings:         listings,
		citiesByProvince: make(map[string][]string),
	}

	citySets := make(map[string]map[string]struct{})
	for i, l := range listings {
		if _, ok := citySets[l.Province]; !ok {
			citySets[l.Province] = make(map[string]struct{})
		}
		citySets[l.Province][l.City] = struct{}{}

		if i == 0 || l.Price < ds.minPrice {
			ds.minPrice = l.Price
		}
		if l.Price > ds.maxPrice {
			ds.maxPrice = l.Price
		}
	}

	for prov, cities := range citySets {
		ds.provinces = append(ds.provinces, prov)
		sorted := make([]string, 0, len(cities))
		for c := range cities {
			sorted = append(sorted, c)
		}
		sort.Strings(sorted)
		ds.citiesByProvince[prov] = sorted
	}
	sort.Strings(ds.provinces)

	return ds
}

// Listings returns the listings in load order. Callers must treat the slice
// as read-only.
func (d *Dataset) Listings() []model.Listing {
	return d.listings
}

// Len returns the number of listings in the working dataset.
func (d *Dataset) Len() int {
	return len(d.listings)
}

// Provinces returns the sorted distinct provinces.
func (d *Dataset) Provinces() []string {
	return d.provinces
}

// CitiesIn returns the sorted distinct cities belonging to the given
// provinces. An empty province selection yields no cities.
func (d *Dataset) CitiesIn(provinces ...string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, p := range provinces {
		for _, c := range d.citiesByProvince[p] {
			if _, ok := seen[c]; ok {
				continue
			}
			seen[c] = struct{}{}
			out = append(out, c)
		}
	}
	sort.Strings(out)
	return out
}

// CitiesByProvince returns the province to sorted-cities mapping. Callers
// must treat it as read-only.
func (d *Dataset) CitiesByProvince() map[string][]string {
	return d.citiesByProvince
}

// PriceRange returns the minimum and maximum listing price in the dataset.
func (d *Dataset) PriceRange() (min, max float64) {
	return d.minPrice, d.maxPrice
}
