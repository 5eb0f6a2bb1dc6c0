// billrun processes a folder of utility-bill PDFs: classifies each bill's
// vendor, extracts and normalizes its fields, aggregates amounts per house
// and billing period, prices each tenant's rent, generates email drafts, and
// appends the processed rows to the workbook.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/dmarchuk/rentroll/internal/common"
	"github.com/dmarchuk/rentroll/internal/ingest"
	"github.com/dmarchuk/rentroll/internal/notify"
	"github.com/dmarchuk/rentroll/internal/pdftext"
	"github.com/dmarchuk/rentroll/internal/pipeline"
	"github.com/dmarchuk/rentroll/internal/workbook"
)

func main() {
	var (
		configPath = flag.String("config", "", "path to YAML config file (optional)")
		billsDir   = flag.String("dir", "", "override the raw bills folder")
		dryRun     = flag.Bool("dry-run", false, "print drafts instead of saving them via IMAP")
		jsonLogs   = flag.Bool("json", false, "emit JSON logs")
	)
	flag.Parse()

	logger := newLogger(*jsonLogs)
	slog.SetDefault(logger)
	ctx := context.Background()

	cfg, err := common.LoadConfig(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if *billsDir != "" {
		cfg.Folders.RawBills = *billsDir
	}
	if *dryRun {
		cfg.TestDrafts = true
	}

	// Workbook Config sheet overrides file/env settings, mirroring how the
	// workbook is the operator's primary control surface.
	settings, err := workbook.NewStore(cfg.Workbook.Path, cfg.Workbook.DataSheet, logger).LoadSettings()
	if err != nil {
		logger.Warn("workbook settings unavailable, using file/env config", "error", err)
	} else {
		cfg.ApplySettings(settings)
	}

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	if err := ingest.EnsureDirs(cfg.Folders); err != nil {
		logger.Error("failed to create folders", "error", err)
		os.Exit(1)
	}

	store := workbook.NewStore(cfg.Workbook.Path, cfg.Workbook.DataSheet, logger)
	text := pdftext.NewExtractor(pdftext.Config{
		Pdftotext: cfg.PDF.Pdftotext,
		Pdftoppm:  cfg.PDF.Pdftoppm,
		DPI:       cfg.PDF.DPI,
	}, logger)

	processor := pipeline.NewProcessor(cfg, text, store, logger)
	result, err := processor.Run(ctx)
	if err != nil {
		logger.Error("batch failed", "error", err)
		os.Exit(1)
	}
	if len(result.Outcomes) == 0 {
		logger.Info("no PDFs found, nothing to do", "dir", cfg.Folders.RawBills)
		return
	}

	if len(result.Priced) > 0 {
		var drafts notify.Store
		if cfg.TestDrafts {
			drafts = notify.NewLogStore(logger)
		} else {
			drafts = notify.NewIMAPStore(cfg.IMAP.Addr, cfg.IMAP.Username, cfg.IMAP.Password, logger)
		}
		svc := notify.NewService(drafts, cfg.Folders.Images, cfg.IMAP.From, logger)
		saved := svc.DraftCharges(ctx, result.Priced, result.Charges)
		logger.Info("drafts generated", "saved", saved, "priced_charges", len(result.Priced))
	}

	if len(result.Records) > 0 {
		tenants, err := store.LoadTenants()
		if err != nil {
			logger.Error("failed to load tenants for workbook append", "error", err)
		} else {
			rows := make([]workbook.BillRow, 0, len(result.Records))
			for _, rec := range result.Records {
				name := fmt.Sprintf("Tenant %d", rec.House)
				if t, ok := tenants[rec.House]; ok {
					name = t.Name
				}
				rows = append(rows, workbook.BillRow{Record: rec, TenantName: name})
			}
			if _, _, err := store.AppendBills(rows); err != nil {
				logger.Error("failed to append rows to workbook", "error", err)
			}
		}
	}

	// Per-document report, then the priced charges.
	fmt.Println("batch summary:")
	for _, o := range result.Outcomes {
		fmt.Printf("  %s\n", o)
	}
	for _, res := range result.Priced {
		fmt.Printf("house %d  period %s  utilities $%s  rent $%s\n",
			res.House, res.PeriodEnd.Format("2006-01-02"),
			res.UtilityTotal.StringFixed(2), res.FinalAmount.StringFixed(2))
	}
}

func newLogger(jsonLogs bool) *slog.Logger {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if jsonLogs {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}
