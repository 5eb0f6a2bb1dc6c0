// Package pipeline drives a batch of bill PDFs through classification,
// extraction, normalization, aggregation, and pricing. Documents fail
// independently: no per-document error ever aborts the batch.
package pipeline

import (
	"context"
	"path/filepath"

	"log/slog"

	"github.com/google/uuid"

	"github.com/dmarchuk/rentroll/constants"
	"github.com/dmarchuk/rentroll/internal/billing"
	"github.com/dmarchuk/rentroll/internal/common"
	"github.com/dmarchuk/rentroll/internal/extract"
	"github.com/dmarchuk/rentroll/internal/ingest"
)

// TextSource reads bill PDFs. Implemented by pdftext.Extractor; tests swap
// in a fake that serves canned text.
type TextSource interface {
	FirstPageText(ctx context.Context, path string) (string, error)
	RenderFirstPage(ctx context.Context, pdfPath, pngPath string, bottomCropPx int) error
}

// TenantSource resolves house numbers to tenant profiles. Implemented by the
// workbook store.
type TenantSource interface {
	LoadTenants() (map[int]billing.Tenant, error)
}

type Processor struct {
	cfg        *common.Config
	text       TextSource
	tenants    TenantSource
	extractors map[constants.Vendor]extract.Extractor
	logger     *slog.Logger
}

func NewProcessor(cfg *common.Config, text TextSource, tenants TenantSource, logger *slog.Logger) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	extractors := make(map[constants.Vendor]extract.Extractor, len(constants.Vendors))
	for _, v := range constants.Vendors {
		ex, err := extract.ForVendor(v, cfg.Extract.HouseNumbers)
		if err != nil {
			// Unreachable for the vendors the classifier emits; treat as a
			// programming error rather than a data condition.
			panic(err)
		}
		extractors[v] = ex
	}
	return &Processor{cfg: cfg, text: text, tenants: tenants, extractors: extractors, logger: logger}
}

// Run processes every PDF in the raw bills folder and prices the resulting
// charges against the tenant profiles. The returned Result always covers the
// whole batch; partial failures surface as SKIPPED/DROPPED outcomes.
func (p *Processor) Run(ctx context.Context) (*Result, error) {
	batchID := uuid.New()
	logger := p.logger.With("batch_id", batchID)

	files, err := ingest.ListPDFs(p.cfg.Folders.RawBills)
	if err != nil {
		return nil, err
	}
	logger.Info("pipeline.batch.start", "dir", p.cfg.Folders.RawBills, "files", len(files))

	result := &Result{BatchID: batchID}
	agg := billing.NewAggregator()
	// outcome index per source file, so pricing can promote contributing
	// documents to PRICED or DROPPED afterwards.
	byFile := make(map[string]int)

	for _, name := range files {
		outcome, rec := p.processDocument(ctx, logger, name)
		if rec != nil {
			agg.Fold(*rec)
			result.Records = append(result.Records, *rec)
		}
		byFile[outcome.File] = len(result.Outcomes)
		result.Outcomes = append(result.Outcomes, outcome)
	}

	result.Charges = agg.Charges()

	tenants, err := p.tenants.LoadTenants()
	if err != nil {
		return nil, common.WrapError(err, "load tenants")
	}

	for _, charge := range result.Charges {
		tenant, ok := tenants[charge.House]
		if !ok {
			logger.Warn("pipeline.price.dropped",
				"house", charge.House,
				"period_end", charge.PeriodEnd.Format("2006-01-02"),
				"error", common.ErrUnknownHouse)
			p.promote(result, byFile, charge, constants.DocStatusDropped,
				common.ErrUnknownHouse.Error())
			continue
		}
		priced := billing.Price(tenant, charge)
		result.Priced = append(result.Priced, priced)
		p.promote(result, byFile, charge, constants.DocStatusPriced, "")
		logger.Info("pipeline.price.ok",
			"house", priced.House,
			"period_end", priced.PeriodEnd.Format("2006-01-02"),
			"utility_total", priced.UtilityTotal.StringFixed(2),
			"final_amount", priced.FinalAmount.StringFixed(2))
	}

	counts := result.Counts()
	logger.Info("pipeline.batch.done",
		"documents", len(files),
		"priced", counts[constants.DocStatusPriced],
		"skipped", counts[constants.DocStatusSkipped],
		"dropped", counts[constants.DocStatusDropped])
	return result, nil
}

// processDocument walks one file through its state transitions. A non-nil
// record means the document reached NORMALIZED and was folded.
func (p *Processor) processDocument(ctx context.Context, logger *slog.Logger, name string) (Outcome, *billing.Record) {
	outcome := Outcome{File: name, Status: constants.DocStatusDiscovered}
	path := filepath.Join(p.cfg.Folders.RawBills, name)

	text, err := p.text.FirstPageText(ctx, path)
	if err != nil {
		logger.Warn("pipeline.read.failed", "file", name, "error", err)
		outcome.Status = constants.DocStatusSkipped
		outcome.Reason = "unreadable: " + err.Error()
		return outcome, nil
	}

	vendor, err := extract.DetectVendor(text)
	if err != nil {
		logger.Warn("pipeline.classify.failed", "file", name, "error", err)
		outcome.Status = constants.DocStatusSkipped
		outcome.Reason = common.ErrUnknownVendor.Error()
		return outcome, nil
	}
	outcome.Status = constants.DocStatusClassified
	outcome.Vendor = vendor

	bag := p.extractors[vendor].Extract(text)
	outcome.Status = constants.DocStatusExtracted

	rec, err := billing.Normalize(bag, name)
	if err != nil {
		logger.Warn("pipeline.normalize.skipped", "file", name, "vendor", vendor, "error", err)
		outcome.Status = constants.DocStatusSkipped
		outcome.Reason = err.Error()
		return outcome, nil
	}
	outcome.Status = constants.DocStatusNormalized
	outcome.House = rec.House
	if bag.Amount == "" {
		logger.Warn("pipeline.normalize.no_amount", "file", name, "vendor", vendor)
	}

	p.sideEffects(ctx, logger, path, &rec, &outcome)
	return outcome, &rec
}

// sideEffects runs the flag-gated post-extraction steps: rendering the first
// page for email attachments and relocating the source PDF. Neither affects
// extraction correctness; failures are logged and ignored.
func (p *Processor) sideEffects(ctx context.Context, logger *slog.Logger, path string, rec *billing.Record, outcome *Outcome) {
	if p.cfg.CreateImages {
		pngPath := filepath.Join(p.cfg.Folders.Images, ingest.ImageName(rec.House, rec.Date, rec.Vendor))
		if err := p.text.RenderFirstPage(ctx, path, pngPath, p.cfg.Extract.ImageBottomCropPx); err != nil {
			logger.Error("pipeline.render.failed", "file", rec.SourceFile, "error", err)
		}
	}

	if p.cfg.MoveProcessedFiles {
		final := ingest.MoveProcessed(p.cfg.Folders, rec.SourceFile, rec.House, rec.Date, rec.Vendor, logger)
		rec.SourceFile = final
		outcome.File = final
	}
}

func (p *Processor) promote(result *Result, byFile map[string]int, charge *billing.AggregatedCharge, status constants.DocStatus, reason string) {
	for _, rec := range charge.Records {
		if i, ok := byFile[rec.SourceFile]; ok {
			result.Outcomes[i].Status = status
			result.Outcomes[i].Reason = reason
		}
	}
}
