package dashboard

import (
	"fmt"
	"math"
	"sort"

	"github.com/maplemetrics/housing-dashboard/pkg/model"
)

// DefaultBinWidth is the histogram bin width (CAD) when none is configured.
const DefaultBinWidth = 100000

// stylePalette is the light-to-dark scale for summary table cells.
var stylePalette = []model.StyleToken{
	"#f7fbff", "#deebf7", "#c6dbef", "#9ecae1", "#6baed6",
	"#4292c6", "#2171b5", "#08519c", "#08306b",
}

// Histogram bins prices into fixed-width buckets aligned to multiples of
// binWidth. Empty input produces an empty series.
func Histogram(prices []float64, binWidth float64) model.HistogramSeries {
	if binWidth <= 0 {
		binWidth = DefaultBinWidth
	}
	series := model.HistogramSeries{BinWidth: binWidth}
	if len(prices) == 0 {
		return series
	}

	min, max := prices[0], prices[0]
	for _, p := range prices {
		if p < min {
			min = p
		}
		if p > max {
			max = p
		}
	}

	lo := math.Floor(min/binWidth) * binWidth
	nBins := int(math.Floor((max-lo)/binWidth)) + 1
	counts := make([]int, nBins)
	for _, p := range prices {
		i := int(math.Floor((p - lo) / binWidth))
		if i >= nBins {
			i = nBins - 1 // max lands on the closing edge
		}
		counts[i]++
	}

	for i, c := range counts {
		series.Bins = append(series.Bins, model.HistogramBin{
			Lower: lo + float64(i)*binWidth,
			Upper: lo + float64(i+1)*binWidth,
			Count: c,
		})
	}
	return series
}

// BoxPlotGroups groups filtered prices by city for the box-plot renderer,
// sorted by city.
func BoxPlotGroups(rows []model.Listing) []model.BoxPlotGroup {
	byCity := make(map[string][]float64)
	for _, l := range rows {
		byCity[l.City] = append(byCity[l.City], l.Price)
	}
	out := make([]model.BoxPlotGroup, 0, len(byCity))
	for city, prices := range byCity {
		out = append(out, model.BoxPlotGroup{City: city, Prices: prices})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].City < out[j].City })
	return out
}

// GeoPoints projects filtered listings onto map markers.
func GeoPoints(rows []model.Listing) []model.GeoPoint {
	out := make([]model.GeoPoint, 0, len(rows))
	for _, l := range rows {
		out = append(out, model.GeoPoint{
			Latitude:  l.Latitude,
			Longitude: l.Longitude,
			Popup:     fmt.Sprintf("%s, %s: $%.0f, %d bd / %d ba", l.City, l.Province, l.Price, l.NumberBeds, l.NumberBaths),
		})
	}
	return out
}

// ValueToStyle maps a numeric cell value onto the style palette by its
// position within [min, max]. A degenerate range maps to the palette
// midpoint. Keying styles by value rather than by formatted string avoids
// collapsing distinct cells that format identically.
func ValueToStyle(v, min, max float64) model.StyleToken {
	if max <= min {
		return stylePalette[len(stylePalette)/2]
	}
	pos := (v - min) / (max - min)
	i := int(pos * float64(len(stylePalette)))
	if i >= len(stylePalette) {
		i = len(stylePalette) - 1
	}
	if i < 0 {
		i = 0
	}
	return stylePalette[i]
}

var summaryColumns = []string{"avgPrice", "medianPrice", "minPrice", "maxPrice", "count"}

// StyledSummaryTable renders summary rows as table cells styled per column
// against that column's own range.
func StyledSummaryTable(rows []model.SummaryRow) model.StyledTable {
	table := model.StyledTable{
		Columns: summaryColumns,
		Rows:    make(map[string][]model.TableCell),
	}
	if len(rows) == 0 {
		return table
	}

	values := func(r model.SummaryRow) []float64 {
		return []float64{r.AvgPrice, r.MedianPrice, r.MinPrice, r.MaxPrice, float64(r.Count)}
	}

	mins := values(rows[0])
	maxs := values(rows[0])
	for _, r := range rows[1:] {
		for i, v := range values(r) {
			if v < mins[i] {
				mins[i] = v
			}
			if v > maxs[i] {
				maxs[i] = v
			}
		}
	}

	for _, r := range rows {
		table.Cities = append(table.Cities, r.City)
		cells := make([]model.TableCell, 0, len(summaryColumns))
		for i, v := range values(r) {
			cells = append(cells, model.TableCell{
				Value: v,
				Style: ValueToStyle(v, mins[i], maxs[i]),
			})
		}
		table.Rows[r.City] = cells
	}
	return table
}
