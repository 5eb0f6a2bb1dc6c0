// Package notify turns priced charges into email drafts and saves them to a
// drafts store (IMAP in production, a logger in test mode).
package notify

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dmarchuk/rentroll/constants"
	"github.com/dmarchuk/rentroll/internal/billing"
	"github.com/dmarchuk/rentroll/internal/ingest"
)

var hundred = decimal.NewFromInt(100)

// Attachment is one file attached to a draft.
type Attachment struct {
	Filename string
	Path     string
}

// Draft is a fully assembled email, ready to be serialized and saved.
type Draft struct {
	From        string
	To          string
	Subject     string
	Body        string
	Attachments []Attachment
}

// BuildDraft assembles the notification draft for one priced charge. The
// attachments are the rendered first-page images of every contributing bill;
// a house policy that requires vendors not present in the charge fails the
// draft (the charge itself is still valid — only the notification waits).
func BuildDraft(res billing.ChargeResult, charge *billing.AggregatedCharge, imagesDir, from string) (*Draft, error) {
	policy := PolicyFor(res.House)

	attachments, found, err := collectImages(charge, imagesDir)
	if err != nil {
		return nil, err
	}
	var missing []string
	for _, v := range policy.RequiredVendors {
		if _, ok := found[v]; !ok {
			missing = append(missing, string(v))
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("house %d %s: missing required vendors %s",
			res.House, res.PeriodEnd.Format("2006-01-02"), strings.Join(missing, ", "))
	}

	return &Draft{
		From:        from,
		To:          res.Tenant.Email,
		Subject:     subject(res.PeriodEnd),
		Body:        body(res, charge, policy),
		Attachments: attachments,
	}, nil
}

// BuildCustomDraft assembles a draft with caller-supplied attachments
// instead of the rendered bill images, bypassing the required-vendor check.
// Used when a bill arrives outside the normal folders.
func BuildCustomDraft(res billing.ChargeResult, charge *billing.AggregatedCharge, attachments []Attachment, from string) *Draft {
	return &Draft{
		From:        from,
		To:          res.Tenant.Email,
		Subject:     subject(res.PeriodEnd),
		Body:        body(res, charge, PolicyFor(res.House)),
		Attachments: attachments,
	}
}

// collectImages resolves the rendered image for each contributing record.
// Records whose image was never rendered are tolerated unless a policy
// requires their vendor.
func collectImages(charge *billing.AggregatedCharge, imagesDir string) ([]Attachment, map[constants.Vendor]struct{}, error) {
	found := make(map[constants.Vendor]struct{})
	var attachments []Attachment
	for _, rec := range charge.Records {
		name := ingest.ImageName(rec.House, rec.Date, rec.Vendor)
		path := filepath.Join(imagesDir, name)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		attachments = append(attachments, Attachment{Filename: name, Path: path})
		found[rec.Vendor] = struct{}{}
	}
	if len(attachments) == 0 {
		return nil, nil, fmt.Errorf("no bill images found for house %d %s",
			charge.House, charge.PeriodEnd.Format("2006-01-02"))
	}
	sort.Slice(attachments, func(i, j int) bool { return attachments[i].Filename < attachments[j].Filename })
	return attachments, found, nil
}

// subject names the bill month: "August utility bill".
func subject(periodEnd time.Time) string {
	return periodEnd.Month().String() + " utility bill"
}

// rentDate is the first of the month after the billing period, formatted
// without a year: "September 1".
func rentDate(periodEnd time.Time) string {
	next := periodEnd.AddDate(0, 0, 1)
	return next.Month().String() + " 1"
}

func body(res billing.ChargeResult, charge *billing.AggregatedCharge, policy Policy) string {
	sharePct := res.Tenant.UtilityShare.Mul(hundred).String()
	calcLine := fmt.Sprintf("$%s + %s%% * $%s = $%s",
		res.Tenant.BaseRent.StringFixed(2), sharePct,
		res.UtilityTotal.StringFixed(2), res.FinalAmount.StringFixed(2))

	if policy.Dual {
		totals := charge.VendorTotals()
		var breakdown strings.Builder
		for _, v := range constants.Vendors {
			amount, ok := totals[v]
			if !ok {
				continue
			}
			breakdown.WriteString(fmt.Sprintf("%s: $%s\n", vendorLabel(v), amount.StringFixed(2)))
		}
		return fmt.Sprintf(`Hi everyone,

Attached are last month's utility bills.

Utility breakdown:
%sTotal utilities: $%s

The %s rent amount is:
%s

Thank you.`, breakdown.String(), res.UtilityTotal.StringFixed(2), rentDate(res.PeriodEnd), calcLine)
	}

	return fmt.Sprintf(`Hi everyone,

Attached is last month's utilities bill.

The %s rent amount is:
%s

Thank you.`, rentDate(res.PeriodEnd), calcLine)
}

func vendorLabel(v constants.Vendor) string {
	switch v {
	case constants.VendorENMAX:
		return "ENMAX (Wastewater)"
	case constants.VendorATCO:
		return "ATCO (Electricity/Natural Gas)"
	}
	return string(v)
}
