// Package ingest handles the bill folders: discovering PDFs for a batch and
// the post-extraction file side effects (image naming, move/rename).
package ingest

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/dmarchuk/rentroll/constants"
	"github.com/dmarchuk/rentroll/internal/common"
)

var unsafeFilenameRe = regexp.MustCompile(`[^A-Za-z0-9 _.\-]`)

// EnsureDirs creates the bill processing directories if missing.
func EnsureDirs(cfg common.FoldersConfig) error {
	for _, dir := range []string{cfg.RawBills, cfg.Processed, cfg.Images} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	return nil
}

// ListPDFs returns the PDF file names in dir, top level only, hidden files
// skipped, sorted lexicographically. The sort keeps batches deterministic:
// discovery order carries no meaning, but repeated runs over the same folder
// must process documents identically.
func ListPDFs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read dir %s: %w", dir, err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}
		if strings.ToLower(filepath.Ext(name)) != ".pdf" {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// SafeFileName replaces characters that are unsafe in file names.
func SafeFileName(name string) string {
	return strings.TrimSpace(unsafeFilenameRe.ReplaceAllString(name, "_"))
}

// ImageName is the canonical name for a bill's rendered first page:
// "{house}_{YYYY-MM-DD}_{vendor}.png". The notifier reconstructs the same
// name when collecting attachments.
func ImageName(house int, date time.Time, vendor constants.Vendor) string {
	return SafeFileName(fmt.Sprintf("%d_%s_%s", house, date.Format("2006-01-02"), vendor)) + ".png"
}

// TargetFileName is the standardized name a processed bill is moved to:
// "{house} {Month D YYYY} {vendor}.pdf".
func TargetFileName(house int, date time.Time, vendor constants.Vendor, ext string) string {
	formatted := fmt.Sprintf("%s %d %d", date.Month().String(), date.Day(), date.Year())
	return SafeFileName(fmt.Sprintf("%d %s %s", house, formatted, vendor)) + ext
}

// MoveProcessed relocates a bill from the raw folder into the processed
// folder under its standardized name, overwriting any previous copy.
// Returns the final file name; on failure the original name stands and the
// file stays put (the move is a convenience, never a correctness concern).
func MoveProcessed(folders common.FoldersConfig, fileName string, house int, date time.Time, vendor constants.Vendor, logger *slog.Logger) string {
	if logger == nil {
		logger = slog.Default()
	}
	src := filepath.Join(folders.RawBills, fileName)
	target := TargetFileName(house, date, vendor, filepath.Ext(fileName))
	dst := filepath.Join(folders.Processed, target)

	if err := os.Rename(src, dst); err != nil {
		logger.Error("ingest.move.failed", "file", fileName, "error", err)
		return fileName
	}
	logger.Info("ingest.move.ok", "from", fileName, "to", target)
	return target
}
