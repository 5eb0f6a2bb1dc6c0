// Package billing holds the billing domain: normalized bill records, the
// per-house per-period aggregation, and the rent computation.
package billing

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/dmarchuk/rentroll/constants"
)

// Record is one normalized bill. It is only constructed when both house and
// date resolved; amount may be zero. Immutable once created.
type Record struct {
	Vendor     constants.Vendor
	House      int
	Amount     decimal.Decimal
	Date       time.Time // bill date, date-only UTC
	SourceFile string
}

// PeriodKey groups bills by property and billing period. PeriodEnd is the
// last day of the calendar month containing the bill date, so both vendors'
// bills for the same house and month land in the same group regardless of
// their exact day-of-month.
type PeriodKey struct {
	House     int
	PeriodEnd time.Time
}

// Tenant is a tenant profile from the record store. UtilityShare is the
// fraction (0..1) of the aggregated utility cost the tenant owes.
type Tenant struct {
	House        int
	Name         string
	Email        string
	BaseRent     decimal.Decimal
	UtilityShare decimal.Decimal
}

// ChargeResult is the final computed charge for one tenant and period:
// base rent plus the tenant's share of the aggregated utilities.
type ChargeResult struct {
	House        int
	PeriodEnd    time.Time
	UtilityTotal decimal.Decimal
	FinalAmount  decimal.Decimal
	Tenant       Tenant
}

// MonthEnd returns the last day of the month containing t, date-only UTC.
func MonthEnd(t time.Time) time.Time {
	firstOfNext := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, 0)
	return firstOfNext.AddDate(0, 0, -1)
}
