// custombill builds a one-off rent email for a single house from the bills
// already recorded in the workbook, attaching every file found in the custom
// attachments folder. Useful when a bill arrived outside the normal flow.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/dmarchuk/rentroll/internal/billing"
	"github.com/dmarchuk/rentroll/internal/common"
	"github.com/dmarchuk/rentroll/internal/notify"
	"github.com/dmarchuk/rentroll/internal/workbook"
)

func main() {
	var (
		configPath = flag.String("config", "", "path to YAML config file (optional)")
		house      = flag.Int("house", 0, "house number (required)")
		month      = flag.String("month", "", "billing month as YYYY-MM (default: latest recorded)")
		attachDir  = flag.String("attach-dir", "custom_bill", "folder whose files are attached to the draft")
		dryRun     = flag.Bool("dry-run", false, "print the draft instead of saving it via IMAP")
	)
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)
	ctx := context.Background()

	if *house == 0 {
		logger.Error("--house is required")
		os.Exit(1)
	}

	cfg, err := common.LoadConfig(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if *dryRun {
		cfg.TestDrafts = true
	}

	store := workbook.NewStore(cfg.Workbook.Path, cfg.Workbook.DataSheet, logger)
	if settings, err := store.LoadSettings(); err == nil {
		cfg.ApplySettings(settings)
		store = workbook.NewStore(cfg.Workbook.Path, cfg.Workbook.DataSheet, logger)
	}
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	tenants, err := store.LoadTenants()
	if err != nil {
		logger.Error("failed to load tenants", "error", err)
		os.Exit(1)
	}
	tenant, ok := tenants[*house]
	if !ok {
		logger.Error("no tenant profile for house", "house", *house, "error", common.ErrUnknownHouse)
		os.Exit(1)
	}

	var charge *billing.AggregatedCharge
	if *month != "" {
		at, perr := time.ParseInLocation("2006-01", *month, time.UTC)
		if perr != nil {
			logger.Error("invalid --month, want YYYY-MM", "month", *month, "error", perr)
			os.Exit(1)
		}
		charge, err = store.MonthCharge(*house, at)
	} else {
		charge, err = store.LatestMonthCharge(*house)
	}
	if err != nil {
		logger.Error("failed to load recorded bills", "house", *house, "error", err)
		os.Exit(1)
	}
	res := billing.Price(tenant, charge)
	logger.Info("latest recorded period",
		"house", res.House,
		"period_end", res.PeriodEnd.Format("2006-01-02"),
		"utility_total", res.UtilityTotal.StringFixed(2),
		"final_amount", res.FinalAmount.StringFixed(2))

	attachments, err := listAttachments(*attachDir)
	if err != nil {
		logger.Error("failed to read attachments folder", "dir", *attachDir, "error", err)
		os.Exit(1)
	}

	var draft *notify.Draft
	if len(attachments) > 0 {
		draft = notify.BuildCustomDraft(res, charge, attachments, cfg.IMAP.From)
	} else {
		draft, err = notify.BuildDraft(res, charge, cfg.Folders.Images, cfg.IMAP.From)
		if err != nil {
			logger.Error("failed to build draft", "error", err)
			os.Exit(1)
		}
	}

	var drafts notify.Store
	if cfg.TestDrafts {
		drafts = notify.NewLogStore(logger)
	} else {
		drafts = notify.NewIMAPStore(cfg.IMAP.Addr, cfg.IMAP.Username, cfg.IMAP.Password, logger)
	}
	if err := drafts.SaveDraft(ctx, draft); err != nil {
		logger.Error("failed to save draft", "error", err)
		os.Exit(1)
	}
	logger.Info("draft ready", "to", draft.To, "subject", draft.Subject, "attachments", len(draft.Attachments))
}

// listAttachments returns every regular, non-hidden file in dir, sorted for
// a stable attachment order. A missing dir just means no custom attachments.
func listAttachments(dir string) ([]notify.Attachment, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var attachments []notify.Attachment
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		attachments = append(attachments, notify.Attachment{
			Filename: entry.Name(),
			Path:     filepath.Join(dir, entry.Name()),
		})
	}
	sort.Slice(attachments, func(i, j int) bool { return attachments[i].Filename < attachments[j].Filename })
	return attachments, nil
}
