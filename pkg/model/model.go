package model

// Listing is one cleaned housing record in the working dataset.
// Records are built once at load time and never mutated afterwards.
type Listing struct {
	City            string  `json:"city"`
	Province        string  `json:"province"`
	Price           float64 `json:"price"`
	NumberBeds      int     `json:"numberBeds"`
	NumberBaths     int     `json:"numberBaths"`
	Latitude        float64 `json:"latitude"`
	Longitude       float64 `json:"longitude"`
	HouseholdIncome float64 `json:"householdIncome"`
}

// ConstraintSet is the full filter state active for one session.
type ConstraintSet struct {
	Provinces     []string `json:"provinces"`
	Cities        []string `json:"cities"`
	MinPrice      float64  `json:"minPrice"`
	MaxPrice      float64  `json:"maxPrice"`
	MinBeds       int      `json:"minBeds"`
	MinBaths      int      `json:"minBaths"`
	CompareCities []string `json:"compareCities"`
}

// Equal reports whether two constraint sets select the same rows and the
// same comparison. The session keeps selection slices sorted, so ordered
// equality is set equality.
func (c ConstraintSet) Equal(o ConstraintSet) bool {
	if c.MinPrice != o.MinPrice || c.MaxPrice != o.MaxPrice ||
		c.MinBeds != o.MinBeds || c.MinBaths != o.MinBaths {
		return false
	}
	return equalStrings(c.Provinces, o.Provinces) &&
		equalStrings(c.Cities, o.Cities) &&
		equalStrings(c.CompareCities, o.CompareCities)
}

func equalStrings(a, b []string) bool {
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

// SummaryRow is the aggregated price statistics for one city under the
// current filter. AvgPrice is rounded to cents; the remaining statistics
// carry the unrounded stored values.
type SummaryRow struct {
	City        string  `json:"city"`
	AvgPrice    float64 `json:"avgPrice"`
	MedianPrice float64 `json:"medianPrice"`
	MinPrice    float64 `json:"minPrice"`
	MaxPrice    float64 `json:"maxPrice"`
	Count       int     `json:"count"`
}

// IncomeSeriesPoint is one (city, province, average income) aggregate.
type IncomeSeriesPoint struct {
	City      string  `json:"city"`
	Province  string  `json:"province"`
	AvgIncome float64 `json:"avgIncome"`
}

// HistogramBin covers [Lower, Upper) except for the last bin, which is
// closed on both ends so the maximum price is never orphaned.
type HistogramBin struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
	Count int     `json:"count"`
}

// HistogramSeries is the chart-ready price distribution for the histogram
// renderer.
type HistogramSeries struct {
	BinWidth float64        `json:"binWidth"`
	Bins     []HistogramBin `json:"bins"`
}

// BoxPlotGroup is one city's price values for the categorical box plot.
type BoxPlotGroup struct {
	City   string    `json:"city"`
	Prices []float64 `json:"prices"`
}

// GeoPoint is one filtered listing positioned for the map renderer.
type GeoPoint struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Popup     string  `json:"popup"`
}

// ComparisonSeries holds the two-city price distributions for the violin
// renderer. Prices are in dataset order and ignore the filter state.
type ComparisonSeries struct {
	CityA   string    `json:"cityA"`
	CityB   string    `json:"cityB"`
	PricesA []float64 `json:"pricesA"`
	PricesB []float64 `json:"pricesB"`
}

// StyleToken names a display style for one table cell. Tokens are derived
// from the cell's numeric value against its column range, never from the
// formatted string.
type StyleToken string

// TableCell is one styled numeric cell of the summary table.
type TableCell struct {
	Value float64    `json:"value"`
	Style StyleToken `json:"style"`
}

// StyledTable is the summary table with per-cell conditional styling.
// Rows is keyed by city; cell order follows Columns.
type StyledTable struct {
	Columns []string               `json:"columns"`
	Cities  []string               `json:"cities"`
	Rows    map[string][]TableCell `json:"rows"`
}

// Snapshot is the complete published output of one recomputation. Display
// collaborators consume it whole; Version increases with every publish.
type Snapshot struct {
	Version         uint64              `json:"version"`
	Constraints     ConstraintSet       `json:"constraints"`
	AvailableCities []string            `json:"availableCities"`
	MatchCount      int                 `json:"matchCount"`
	Summary         []SummaryRow        `json:"summary"`
	StyledSummary   StyledTable         `json:"styledSummary"`
	IncomeSeries    []IncomeSeriesPoint `json:"incomeSeries"`
	Histogram       HistogramSeries     `json:"histogram"`
	BoxPlots        []BoxPlotGroup      `json:"boxPlots"`
	GeoPoints       []GeoPoint          `json:"geoPoints"`
	Comparison      *ComparisonSeries   `json:"comparison,omitempty"`
	Warnings        []string            `json:"warnings,omitempty"`
}
