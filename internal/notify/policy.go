package notify

import "github.com/dmarchuk/rentroll/constants"

// Policy controls how a house's notification is built: which vendors must be
// present before a draft goes out, and which body template is used.
type Policy struct {
	RequiredVendors []constants.Vendor
	Dual            bool
}

// housePolicies carries the per-house overrides. Houses 1705 and 1707 are
// billed by both vendors, so their drafts require both and show a breakdown;
// everything else is ENMAX-only.
var housePolicies = map[int]Policy{
	1705: {RequiredVendors: []constants.Vendor{constants.VendorENMAX, constants.VendorATCO}, Dual: true},
	1707: {RequiredVendors: []constants.Vendor{constants.VendorENMAX, constants.VendorATCO}, Dual: true},
}

var defaultPolicy = Policy{RequiredVendors: []constants.Vendor{constants.VendorENMAX}}

// PolicyFor returns the notification policy for a house.
func PolicyFor(house int) Policy {
	if p, ok := housePolicies[house]; ok {
		return p
	}
	return defaultPolicy
}
