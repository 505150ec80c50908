package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/maplemetrics/housing-dashboard/pkg/model"
	"github.com/maplemetrics/housing-dashboard/pkg/util"
)

// incomeSeed fixes the pseudo-random fill for synthesized household income.
// Loading the same source twice must yield identical values.
const incomeSeed = 20240117

// Synthesized income is drawn uniformly from this range (CAD).
const (
	incomeSynthMin = 40000
	incomeSynthMax = 120000
)

// ErrMissingColumn reports a required column absent from the CSV header.
var ErrMissingColumn = errors.New("missing required column")

var requiredColumns = []string{
	"City", "Province", "Price", "Number_Beds", "Number_Baths", "Latitude", "Longitude",
}

const incomeColumn = "Household_Income"

// Options controls how the source file is read.
type Options struct {
	// Encoding names the source character encoding. Empty or "utf-8" reads
	// the file as-is; "windows-1252" and "latin-1" transcode City/Province
	// text to UTF-8.
	Encoding string
	Logger   *zap.Logger
}

// Load reads the listings CSV at path into a working Dataset. Records with
// any missing or unparseable required field are dropped; a missing header
// column or unreadable file is fatal.
func Load(path string, opts Options) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open data file %q: %w", path, err)
	}
	defer f.Close()

	ds, err := parse(f, opts)
	if err != nil {
		return nil, fmt.Errorf("load data file %q: %w", path, err)
	}
	return ds, nil
}

func parse(r io.Reader, opts Options) (*Dataset, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	switch strings.ToLower(opts.Encoding) {
	case "", "utf-8", "utf8":
		// Source is already Unicode.
	case "windows-1252", "latin-1", "latin1", "iso-8859-1":
		r = transform.NewReader(r, charmap.Windows1252.NewDecoder())
	default:
		return nil, fmt.Errorf("unsupported encoding %q", opts.Encoding)
	}

	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[util.CleanField(name)] = i
	}
	for _, name := range requiredColumns {
		if _, ok := cols[name]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, name)
		}
	}
	incomeIdx, hasIncome := cols[incomeColumn]

	// Fixed seed: identical sources produce identical synthesized incomes.
	rng := rand.New(rand.NewSource(incomeSeed))

	var listings []model.Listing
	dropped := 0
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// A structurally broken row is a record-level error, not fatal.
			dropped++
			continue
		}

		l, ok := parseRecord(record, cols)
		if !ok {
			dropped++
			continue
		}

		if hasIncome {
			income, err := parseFloat(record, incomeIdx)
			if err != nil || income < 0 {
				dropped++
				continue
			}
			l.HouseholdIncome = income
		} else {
			l.HouseholdIncome = incomeSynthMin + rng.Float64()*(incomeSynthMax-incomeSynthMin)
		}

		listings = append(listings, l)
	}

	logger.Info("dataset loaded",
		zap.Int("listings", len(listings)),
		zap.Int("dropped", dropped),
		zap.Bool("incomeSynthesized", !hasIncome),
	)

	return New(listings), nil
}

func parseRecord(record []string, cols map[string]int) (model.Listing, bool) {
	city := util.CleanField(field(record, cols["City"]))
	province := util.CleanField(field(record, cols["Province"]))
	if city == "" || province == "" {
		return model.Listing{}, false
	}

	price, err := parseFloat(record, cols["Price"])
	if err != nil || price < 0 {
		return model.Listing{}, false
	}

	beds, err := parseInt(record, cols["Number_Beds"])
	if err != nil || beds < 0 {
		return model.Listing{}, false
	}
	baths, err := parseInt(record, cols["Number_Baths"])
	if err != nil || baths < 0 {
		return model.Listing{}, false
	}

	lat, err := parseFloat(record, cols["Latitude"])
	if err != nil || lat < -90 || lat > 90 {
		return model.Listing{}, false
	}
	long, err := parseFloat(record, cols["Longitude"])
	if err != nil || long < -180 || long > 180 {
		return model.Listing{}, false
	}

	return model.Listing{
		City:        city,
		Province:    province,
		Price:       price,
		NumberBeds:  beds,
		NumberBaths: baths,
		Latitude:    lat,
		Longitude:   long,
	}, true
}

func field(record []string, idx int) string {
	if idx < 0 || idx >= len(record) {
		return ""
	}
	return record[idx]
}

func parseFloat(record []string, idx int) (float64, error) {
	raw := util.CleanNumeric(field(record, idx))
	if raw == "" {
		return 0, fmt.Errorf("empty numeric field")
	}
	return strconv.ParseFloat(raw, 64)
}

func parseInt(record []string, idx int) (int, error) {
	raw := util.CleanNumeric(field(record, idx))
	if raw == "" {
		return 0, fmt.Errorf("empty integer field")
	}
	// Some exports write bed counts as "3.0".
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, err
	}
	if v != float64(int(v)) {
		return 0, fmt.Errorf("not an integer: %s", raw)
	}
	return int(v), nil
}
