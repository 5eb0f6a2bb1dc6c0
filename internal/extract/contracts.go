package extract

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/dmarchuk/rentroll/constants"
	"github.com/dmarchuk/rentroll/internal/common"
)

// FieldBag carries the raw field values pulled from one document. An empty
// string means the field was not found; extraction itself never fails for a
// missing field. Dates are already coerced to ISO YYYY-MM-DD by the vendor
// extractor since each vendor prints its own native format.
type FieldBag struct {
	Vendor constants.Vendor
	House  string
	Amount string
	Date   string
}

// Extractor is the per-vendor extraction strategy: text in, field bag out.
type Extractor interface {
	Extract(text string) FieldBag
}

// ForVendor returns the extraction strategy for a classified vendor. A
// missing strategy is an invariant violation (the classifier only emits
// known vendors), so the error wraps ErrNoExtractor rather than a skip.
func ForVendor(v constants.Vendor, houses []string) (Extractor, error) {
	switch v {
	case constants.VendorENMAX:
		return NewENMAXExtractor(houses), nil
	case constants.VendorATCO:
		return NewATCOExtractor(houses), nil
	}
	return nil, fmt.Errorf("vendor %q: %w", v, common.ErrNoExtractor)
}

// houseAlternation builds a regex alternation of the configured house
// numbers, longest first so "1705" is not shadowed by a shorter prefix.
func houseAlternation(houses []string) string {
	quoted := make([]string, 0, len(houses))
	for _, h := range houses {
		if h = strings.TrimSpace(h); h != "" {
			quoted = append(quoted, regexp.QuoteMeta(h))
		}
	}
	sort.Slice(quoted, func(i, j int) bool { return len(quoted[i]) > len(quoted[j]) })
	return strings.Join(quoted, "|")
}
