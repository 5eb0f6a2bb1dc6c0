// Package extract turns raw bill text into a bag of vendor-specific fields.
// Classification picks the vendor; one extractor per vendor then applies its
// layout's text patterns. Missing optional fields never fail here — the
// billing normalizer enforces the mandatory-field policy.
package extract

import (
	"fmt"
	"strings"

	"github.com/dmarchuk/rentroll/constants"
	"github.com/dmarchuk/rentroll/internal/common"
)

// Vendor-specific literal markers, checked in priority order. One stable
// marker per vendor keeps classification independent of layout churn.
const (
	markerENMAX = "ENMAX.COM"
	markerATCO  = "STATEMENT DATE:"
)

// DetectVendor identifies the issuing vendor from first-page text. It fails
// closed: if neither marker is present the document is unclassifiable, and
// guessing would route charges to the wrong tenant downstream.
func DetectVendor(text string) (constants.Vendor, error) {
	upper := strings.ToUpper(text)
	switch {
	case strings.Contains(upper, markerENMAX):
		return constants.VendorENMAX, nil
	case strings.Contains(upper, markerATCO):
		return constants.VendorATCO, nil
	}
	return "", fmt.Errorf("neither %q nor %q found in text: %w",
		markerENMAX, markerATCO, common.ErrUnknownVendor)
}
