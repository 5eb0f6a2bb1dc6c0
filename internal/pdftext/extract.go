// Package pdftext reads bill PDFs through the poppler utilities: pdftotext
// for the first-page text that drives classification and field extraction,
// and pdftoppm for the PNG render attached to tenant emails.
package pdftext

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

type Config struct {
	Pdftotext string // binary name or absolute path; if empty -> "pdftotext"
	Pdftoppm  string // binary name or absolute path; if empty -> "pdftoppm"
	DPI       int    // rasterization DPI for page renders, default 300
}

type Extractor struct {
	cfg    Config
	runner Runner
	logger *slog.Logger
}

func NewExtractor(cfg Config, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Pdftotext == "" {
		cfg.Pdftotext = "pdftotext"
	}
	if cfg.Pdftoppm == "" {
		cfg.Pdftoppm = "pdftoppm"
	}
	if cfg.DPI <= 0 {
		cfg.DPI = 300
	}
	return &Extractor{cfg: cfg, runner: execRunner{}, logger: logger}
}

// WithRunner returns a copy using the given runner. Tests use this to feed
// canned pdftotext output without the poppler binaries installed.
func (e *Extractor) WithRunner(r Runner) *Extractor {
	clone := *e
	clone.runner = r
	return &clone
}

// FirstPageText extracts the text of a PDF's first page. Both vendor layouts
// put every field we need on page one. A PDF that yields no text at all is an
// error: there is nothing to classify.
func (e *Extractor) FirstPageText(ctx context.Context, path string) (string, error) {
	// pdftotext -f 1 -l 1 -layout -enc UTF-8 -eol unix <path> -
	out, errb, err := e.runner.Run(ctx, e.cfg.Pdftotext,
		"-f", "1", "-l", "1", "-layout", "-enc", "UTF-8", "-eol", "unix", path, "-")
	if err != nil {
		return "", fmt.Errorf("pdftotext %s: %w (%s)", path, err, truncate(string(errb), 512))
	}
	text := string(out)
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("no text extracted from %s", path)
	}
	return text, nil
}

// RenderFirstPage rasterizes a PDF's first page to a PNG at pngPath. When
// bottomCropPx > 0 that many pixels are cut off the bottom of the image,
// which removes the payment stub both vendors print there.
func (e *Extractor) RenderFirstPage(ctx context.Context, pdfPath, pngPath string, bottomCropPx int) error {
	prefix := strings.TrimSuffix(pngPath, ".png")
	// pdftoppm -f 1 -l 1 -r <dpi> -png -singlefile <in.pdf> <prefix>
	_, errb, err := e.runner.Run(ctx, e.cfg.Pdftoppm,
		"-f", "1", "-l", "1", "-r", fmt.Sprintf("%d", e.cfg.DPI), "-png", "-singlefile", pdfPath, prefix)
	if err != nil {
		return fmt.Errorf("pdftoppm %s: %w (%s)", pdfPath, err, truncate(string(errb), 512))
	}
	if bottomCropPx > 0 {
		if err := cropBottom(pngPath, bottomCropPx); err != nil {
			return fmt.Errorf("crop %s: %w", pngPath, err)
		}
	}
	return nil
}
