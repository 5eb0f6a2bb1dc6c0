package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/dmarchuk/rentroll/constants"
	"github.com/dmarchuk/rentroll/internal/billing"
	"github.com/dmarchuk/rentroll/internal/common"
)

// fakeText serves canned first-page text by file name, standing in for the
// poppler-backed extractor.
type fakeText struct {
	texts   map[string]string
	renders []string
}

func (f *fakeText) FirstPageText(_ context.Context, path string) (string, error) {
	text, ok := f.texts[filepath.Base(path)]
	if !ok {
		return "", fmt.Errorf("cannot read %s", path)
	}
	return text, nil
}

func (f *fakeText) RenderFirstPage(_ context.Context, _, pngPath string, _ int) error {
	f.renders = append(f.renders, filepath.Base(pngPath))
	return nil
}

type fakeTenants map[int]billing.Tenant

func (f fakeTenants) LoadTenants() (map[int]billing.Tenant, error) { return f, nil }

const (
	enmaxText = `www.enmax.com
SERVICE ADDRESS SITE ID: 1705 Somewhere St SE
CurrentBillDate: 2025August5
PreAuthorizedAmount ... $ 180.00
`
	atcoText = `Statement Date: AUG 20, 2025
1705 Somewhere St SE
TOTAL AMOUNT DUE $ 218.00
`
	enmaxNoDateText = `www.enmax.com
SERVICE ADDRESS SITE ID: 1707 Elsewhere St SE
PreAuthorizedAmount ... $ 55.00
`
	enmaxOrphanText = `www.enmax.com
SERVICE ADDRESS SITE ID: 1712 Nowhere St SE
CurrentBillDate: 2025August9
PreAuthorizedAmount ... $ 90.00
`
	taxNoticeText = `City of Calgary property tax notice`
)

func testConfig(t *testing.T, files map[string]string) *common.Config {
	t.Helper()
	dir := t.TempDir()
	for name := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("%PDF-1.4"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	cfg := common.DefaultConfig()
	cfg.Folders.RawBills = dir
	cfg.Folders.Images = t.TempDir()
	cfg.Folders.Processed = t.TempDir()
	cfg.CreateImages = false
	cfg.MoveProcessedFiles = false
	cfg.TestDrafts = true
	return cfg
}

func tenant1705() fakeTenants {
	return fakeTenants{
		1705: {
			House:        1705,
			Name:         "Mike Chen",
			Email:        "mike.chen@email.com",
			BaseRent:     decimal.NewFromInt(1000),
			UtilityShare: decimal.RequireFromString("0.5"),
		},
	}
}

func statusOf(t *testing.T, result *Result, file string) Outcome {
	t.Helper()
	for _, o := range result.Outcomes {
		if o.File == file {
			return o
		}
	}
	t.Fatalf("no outcome for %s in %+v", file, result.Outcomes)
	return Outcome{}
}

func TestRunEndToEnd(t *testing.T) {
	files := map[string]string{
		"2025-08 enmax.pdf":   enmaxText,
		"2025-08 atco.pdf":    atcoText,
		"tax notice.pdf":      taxNoticeText,
		"enmax no date.pdf":   enmaxNoDateText,
		"enmax house1712.pdf": enmaxOrphanText,
	}
	cfg := testConfig(t, files)
	p := NewProcessor(cfg, &fakeText{texts: files}, tenant1705(), nil)

	result, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if len(result.Outcomes) != 5 {
		t.Fatalf("got %d outcomes, want 5", len(result.Outcomes))
	}

	// Both vendors' bills for house 1705 in August merge into one priced charge.
	if len(result.Priced) != 1 {
		t.Fatalf("got %d priced charges, want 1: %+v", len(result.Priced), result.Priced)
	}
	priced := result.Priced[0]
	if priced.House != 1705 {
		t.Errorf("House = %d, want 1705", priced.House)
	}
	if priced.UtilityTotal.StringFixed(2) != "398.00" {
		t.Errorf("UtilityTotal = %s, want 398.00", priced.UtilityTotal)
	}
	if priced.FinalAmount.StringFixed(2) != "1199.00" {
		t.Errorf("FinalAmount = %s, want 1199.00", priced.FinalAmount)
	}

	if o := statusOf(t, result, "2025-08 enmax.pdf"); o.Status != constants.DocStatusPriced {
		t.Errorf("enmax outcome = %+v, want PRICED", o)
	}
	if o := statusOf(t, result, "2025-08 atco.pdf"); o.Status != constants.DocStatusPriced {
		t.Errorf("atco outcome = %+v, want PRICED", o)
	}

	// Unknown vendor and missing date each skip their own document only.
	if o := statusOf(t, result, "tax notice.pdf"); o.Status != constants.DocStatusSkipped {
		t.Errorf("tax notice outcome = %+v, want SKIPPED", o)
	}
	if o := statusOf(t, result, "enmax no date.pdf"); o.Status != constants.DocStatusSkipped {
		t.Errorf("no-date outcome = %+v, want SKIPPED", o)
	}

	// House 1712 aggregates fine but has no tenant profile, so its charge is
	// dropped and the document reports DROPPED.
	if o := statusOf(t, result, "enmax house1712.pdf"); o.Status != constants.DocStatusDropped {
		t.Errorf("orphan outcome = %+v, want DROPPED", o)
	}
	if len(result.Charges) != 2 {
		t.Errorf("got %d aggregated charges, want 2 (1705 and 1712)", len(result.Charges))
	}

	// Audit records cover only normalized documents.
	if len(result.Records) != 3 {
		t.Errorf("got %d records, want 3", len(result.Records))
	}
}

func TestRunUnreadableDocumentSkips(t *testing.T) {
	files := map[string]string{
		"good.pdf": enmaxText,
	}
	cfg := testConfig(t, files)
	// also drop an on-disk PDF the fake has no text for
	if err := os.WriteFile(filepath.Join(cfg.Folders.RawBills, "corrupt.pdf"), []byte("junk"), 0o644); err != nil {
		t.Fatal(err)
	}
	p := NewProcessor(cfg, &fakeText{texts: files}, tenant1705(), nil)

	result, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if o := statusOf(t, result, "corrupt.pdf"); o.Status != constants.DocStatusSkipped {
		t.Errorf("corrupt outcome = %+v, want SKIPPED", o)
	}
	if o := statusOf(t, result, "good.pdf"); o.Status != constants.DocStatusPriced {
		t.Errorf("good outcome = %+v, want PRICED despite sibling failure", o)
	}
}

func TestRunRendersImagesWhenEnabled(t *testing.T) {
	files := map[string]string{"enmax.pdf": enmaxText}
	cfg := testConfig(t, files)
	cfg.CreateImages = true
	text := &fakeText{texts: files}
	p := NewProcessor(cfg, text, tenant1705(), nil)

	if _, err := p.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(text.renders) != 1 || text.renders[0] != "1705_2025-08-05_ENMAX.png" {
		t.Errorf("renders = %v", text.renders)
	}
}

func TestRunEmptyFolder(t *testing.T) {
	cfg := testConfig(t, nil)
	p := NewProcessor(cfg, &fakeText{}, tenant1705(), nil)

	result, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(result.Outcomes) != 0 || len(result.Priced) != 0 {
		t.Errorf("expected empty result, got %+v", result)
	}
}
