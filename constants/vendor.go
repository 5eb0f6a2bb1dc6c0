package constants

import "strings"

// Vendor identifies the utility company that issued a bill. Each vendor has
// its own document layout, so the vendor drives which field extractor runs.
type Vendor string

// Stable values (store these exact strings in the workbook).
const (
	VendorENMAX Vendor = "ENMAX"
	VendorATCO  Vendor = "ATCO"
)

// Vendors lists all supported vendors in classification priority order.
var Vendors = []Vendor{VendorENMAX, VendorATCO}

// ParseVendor canonicalizes a raw vendor string. The boolean reports whether
// the result is one of the known vendors.
func ParseVendor(s string) (Vendor, bool) {
	v := Vendor(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range Vendors {
		if v == known {
			return v, true
		}
	}
	return v, false
}
