package billing

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dmarchuk/rentroll/constants"
)

// AggregatedCharge is the utility total for one house and billing period.
// Records preserves fold order for auditing; Total is vendor-agnostic.
type AggregatedCharge struct {
	House     int
	PeriodEnd time.Time
	Total     decimal.Decimal
	Records   []Record
}

// VendorTotals splits the charge back out by vendor, for the breakdown
// section of dual-vendor emails.
func (c *AggregatedCharge) VendorTotals() map[constants.Vendor]decimal.Decimal {
	totals := make(map[constants.Vendor]decimal.Decimal, 2)
	for _, rec := range c.Records {
		totals[rec.Vendor] = totals[rec.Vendor].Add(rec.Amount)
	}
	return totals
}

// Aggregator folds normalized records into per-(house, period) charges. It
// owns the charge map exclusively: Fold is the only mutation path, and fold
// order never changes a group's total.
type Aggregator struct {
	groups map[PeriodKey]*AggregatedCharge
}

func NewAggregator() *Aggregator {
	return &Aggregator{groups: make(map[PeriodKey]*AggregatedCharge)}
}

// Fold accumulates one record into its period group, creating the group on
// first sight. A record never leaks into any other house or period.
func (a *Aggregator) Fold(rec Record) {
	key := PeriodKey{House: rec.House, PeriodEnd: MonthEnd(rec.Date)}
	group, ok := a.groups[key]
	if !ok {
		group = &AggregatedCharge{House: key.House, PeriodEnd: key.PeriodEnd}
		a.groups[key] = group
	}
	group.Total = group.Total.Add(rec.Amount)
	group.Records = append(group.Records, rec)
}

// Len reports the number of distinct period groups observed so far.
func (a *Aggregator) Len() int {
	return len(a.groups)
}

// Charges returns the finalized charges in stable (house, period) order so
// repeated runs over the same inputs produce identical output.
func (a *Aggregator) Charges() []*AggregatedCharge {
	charges := make([]*AggregatedCharge, 0, len(a.groups))
	for _, group := range a.groups {
		charges = append(charges, group)
	}
	sort.Slice(charges, func(i, j int) bool {
		if charges[i].House != charges[j].House {
			return charges[i].House < charges[j].House
		}
		return charges[i].PeriodEnd.Before(charges[j].PeriodEnd)
	})
	return charges
}
