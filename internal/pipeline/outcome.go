package pipeline

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/dmarchuk/rentroll/constants"
	"github.com/dmarchuk/rentroll/internal/billing"
)

// Outcome is the terminal state of one document in a batch. Every discovered
// document gets exactly one outcome; skips and drops carry a reason.
type Outcome struct {
	File   string
	Status constants.DocStatus
	Reason string
	Vendor constants.Vendor
	House  int
}

func (o Outcome) String() string {
	if o.Reason != "" {
		return fmt.Sprintf("%s: %s (%s)", o.File, o.Status, o.Reason)
	}
	return fmt.Sprintf("%s: %s", o.File, o.Status)
}

// Result is everything a batch run produces: per-document outcomes for the
// summary report, the normalized records for persistence, the aggregated
// charges, and the priced charges handed to the notification step.
type Result struct {
	BatchID  uuid.UUID
	Outcomes []Outcome
	Records  []billing.Record
	Charges  []*billing.AggregatedCharge
	Priced   []billing.ChargeResult
}

// Counts tallies outcomes by status for the summary log line.
func (r *Result) Counts() map[constants.DocStatus]int {
	counts := make(map[constants.DocStatus]int)
	for _, o := range r.Outcomes {
		counts[o.Status]++
	}
	return counts
}
