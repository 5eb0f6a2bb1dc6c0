package billing

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dmarchuk/rentroll/constants"
	"github.com/dmarchuk/rentroll/internal/common"
	"github.com/dmarchuk/rentroll/internal/extract"
)

var looseDateRe = regexp.MustCompile(`^(\d{4})[/-](\d{1,2})[/-](\d{1,2})$`)

// Normalize turns a raw field bag into an immutable Record. It is a pure
// function: the same bag always yields the same record. House and date are
// mandatory — failure to resolve either returns an error wrapping
// ErrMissingField, and the caller skips the document without aborting the
// batch. A missing or malformed amount degrades to zero instead of skipping:
// the bill still marks the period as observed, it just contributes no cost.
// That asymmetry is deliberate; changing it would change financial totals.
func Normalize(bag extract.FieldBag, sourceFile string) (Record, error) {
	vendor, _ := constants.ParseVendor(string(bag.Vendor))

	house, err := parseHouse(bag.House)
	if err != nil {
		return Record{}, err
	}

	date, err := parseBillDate(bag.Date)
	if err != nil {
		return Record{}, err
	}

	return Record{
		Vendor:     vendor,
		House:      house,
		Amount:     ParseAmount(bag.Amount),
		Date:       date,
		SourceFile: sourceFile,
	}, nil
}

func parseHouse(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, fmt.Errorf("house: %w", common.ErrMissingField)
	}
	house, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("house %q is not numeric: %w", raw, common.ErrMissingField)
	}
	return house, nil
}

// parseBillDate accepts the canonical ISO form and coerces simple variants
// like "2025/8/5". Anything else is unresolvable and mandatory-field policy
// applies, since the date drives period grouping.
func parseBillDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, fmt.Errorf("date: %w", common.ErrMissingField)
	}
	if m := looseDateRe.FindStringSubmatch(raw); m != nil {
		year, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		day, _ := strconv.Atoi(m[3])
		raw = fmt.Sprintf("%04d-%02d-%02d", year, month, day)
	}
	date, err := time.ParseInLocation("2006-01-02", raw, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("date %q: %w", raw, common.ErrMissingField)
	}
	return date, nil
}

// ParseAmount parses a currency-formatted string, stripping symbols and
// thousands separators. Malformed or absent input yields zero, never an
// error — amount is not a mandatory field.
func ParseAmount(raw string) decimal.Decimal {
	raw = strings.TrimSpace(raw)
	raw = strings.ReplaceAll(raw, "$", "")
	raw = strings.ReplaceAll(raw, ",", "")
	if raw == "" {
		return decimal.Zero
	}
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero
	}
	return amount
}
