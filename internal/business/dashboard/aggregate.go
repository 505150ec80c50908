package dashboard

import (
	"errors"
	"math"
	"sort"

	"github.com/maplemetrics/housing-dashboard/internal/dataset"
	"github.com/maplemetrics/housing-dashboard/pkg/model"
)

// ErrInvalidComparison reports a comparison request that does not name
// exactly two distinct cities.
var ErrInvalidComparison = errors.New("comparison requires exactly two distinct cities")

// Summarize reduces filtered listings into per-city price statistics, one
// SummaryRow per city present in rows, sorted by city. Cities with no rows
// are never emitted.
func Summarize(rows []model.Listing) []model.SummaryRow {
	prices := make(map[string][]float64)
	for _, l := range rows {
		prices[l.City] = append(prices[l.City], l.Price)
	}

	out := make([]model.SummaryRow, 0, len(prices))
	for city, vals := range prices {
		min, max := vals[0], vals[0]
		var sum float64
		for _, v := range vals {
			sum += v
			if v < min {
				min = v
			}
			if v > max {
				max = v
			}
		}
		out = append(out, model.SummaryRow{
			City:        city,
			AvgPrice:    round2(sum / float64(len(vals))),
			MedianPrice: median(vals),
			MinPrice:    min,
			MaxPrice:    max,
			Count:       len(vals),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].City < out[j].City })
	return out
}

// IncomeByCity reduces listings into average household income per
// (city, province), sorted by province then city. Non-positive income values
// are skipped; a group with no usable values is omitted.
func IncomeByCity(rows []model.Listing) []model.IncomeSeriesPoint {
	type key struct{ city, province string }
	sums := make(map[key]float64)
	counts := make(map[key]int)
	for _, l := range rows {
		if l.HouseholdIncome <= 0 {
			continue
		}
		k := key{l.City, l.Province}
		sums[k] += l.HouseholdIncome
		counts[k]++
	}

	out := make([]model.IncomeSeriesPoint, 0, len(sums))
	for k, sum := range sums {
		out = append(out, model.IncomeSeriesPoint{
			City:      k.city,
			Province:  k.province,
			AvgIncome: round2(sum / float64(counts[k])),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Province != out[j].Province {
			return out[i].Province < out[j].Province
		}
		return out[i].City < out[j].City
	})
	return out
}

// CompareCities collects the full-dataset price series for exactly two
// distinct cities. The filter state never applies here; the comparison is a
// property of the whole working dataset.
func CompareCities(ds *dataset.Dataset, cities []string) (*model.ComparisonSeries, error) {
	if len(cities) != 2 || cities[0] == cities[1] || cities[0] == "" || cities[1] == "" {
		return nil, ErrInvalidComparison
	}

	series := &model.ComparisonSeries{CityA: cities[0], CityB: cities[1]}
	for _, l := range ds.Listings() {
		switch l.City {
		case series.CityA:
			series.PricesA = append(series.PricesA, l.Price)
		case series.CityB:
			series.PricesB = append(series.PricesB, l.Price)
		}
	}
	return series, nil
}

// median returns the middle value of vals, averaging the two central values
// for even counts. The input slice is left untouched.
func median(vals []float64) float64 {
	sorted := make([]float64, len(vals))
	copy(sorted, vals)
	sort.Float64s(sorted)

	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
