package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration. Components receive it (or a
// sub-struct) explicitly; nothing reads process-wide state after load.
type Config struct {
	Workbook WorkbookConfig `yaml:"workbook"`
	Folders  FoldersConfig  `yaml:"folders"`
	Extract  ExtractConfig  `yaml:"extract"`
	PDF      PDFConfig      `yaml:"pdf"`
	IMAP     IMAPConfig     `yaml:"imap"`

	// MoveProcessedFiles relocates PDFs into the processed folder with a
	// standardized name after successful extraction.
	MoveProcessedFiles bool `yaml:"move_processed_files"`
	// CreateImages renders each bill's first page to PNG for email attachments.
	CreateImages bool `yaml:"create_images"`
	// TestDrafts prints drafts instead of saving them to the IMAP drafts folder.
	TestDrafts bool `yaml:"test_drafts"`
}

// WorkbookConfig locates the spreadsheet that acts as the record store.
type WorkbookConfig struct {
	Path      string `yaml:"path"`
	DataSheet string `yaml:"data_sheet"`
}

// FoldersConfig holds the bill processing directories.
type FoldersConfig struct {
	RawBills  string `yaml:"raw_bills"`
	Processed string `yaml:"processed"`
	Images    string `yaml:"images"`
}

// ExtractConfig holds extraction parameters shared by both vendors.
type ExtractConfig struct {
	// HouseNumbers is the allow-list of known rental properties. Extraction
	// never invents a house number that is not on this list.
	HouseNumbers      []string `yaml:"house_numbers"`
	ImageBottomCropPx int      `yaml:"image_bottom_crop_px"`
}

// PDFConfig names the poppler binaries used for text extraction and rendering.
type PDFConfig struct {
	Pdftotext string `yaml:"pdftotext"`
	Pdftoppm  string `yaml:"pdftoppm"`
	DPI       int    `yaml:"dpi"`
}

// IMAPConfig holds the drafts-mailbox connection settings. Credentials come
// from the environment, never from the config file.
type IMAPConfig struct {
	Addr     string `yaml:"addr"`
	From     string `yaml:"-"`
	Username string `yaml:"-"`
	Password string `yaml:"-"`
}

// DefaultConfig returns the built-in fallback configuration, used when no
// config file is supplied and for any key the file omits.
func DefaultConfig() *Config {
	return &Config{
		Workbook: WorkbookConfig{
			Path:      "utility_bills.xlsx",
			DataSheet: "Data",
		},
		Folders: FoldersConfig{
			RawBills:  "bills",
			Processed: "bills_processed",
			Images:    "bill_images",
		},
		Extract: ExtractConfig{
			HouseNumbers:      []string{"819", "1705", "1707", "1712"},
			ImageBottomCropPx: 450,
		},
		PDF: PDFConfig{
			Pdftotext: "pdftotext",
			Pdftoppm:  "pdftoppm",
			DPI:       300,
		},
		IMAP: IMAPConfig{
			Addr: "imap.mail.yahoo.com:993",
		},
		MoveProcessedFiles: false,
		CreateImages:       true,
		TestDrafts:         false,
	}
}

// LoadConfig builds the configuration from defaults, an optional YAML file,
// and environment variable overrides, in that order.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg.Workbook.Path = getEnv("RENTROLL_WORKBOOK", cfg.Workbook.Path)
	cfg.Folders.RawBills = getEnv("RENTROLL_BILLS_DIR", cfg.Folders.RawBills)
	cfg.MoveProcessedFiles = getEnvAsBool("RENTROLL_MOVE_PROCESSED", cfg.MoveProcessedFiles)
	cfg.TestDrafts = getEnvAsBool("RENTROLL_TEST_DRAFTS", cfg.TestDrafts)
	cfg.IMAP.Addr = getEnv("IMAP_ADDR", cfg.IMAP.Addr)
	cfg.IMAP.Username = getEnv("IMAP_USER", "")
	cfg.IMAP.Password = getEnv("IMAP_PASSWORD", "")
	cfg.IMAP.From = getEnv("IMAP_FROM", cfg.IMAP.Username)

	return cfg, nil
}

// ApplySettings overlays key/value overrides from the workbook's Config sheet.
// Unknown keys are ignored so older workbooks keep working.
func (c *Config) ApplySettings(settings map[string]string) {
	for key, value := range settings {
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		switch key {
		case "excel_data_sheet":
			c.Workbook.DataSheet = value
		case "raw_bills_folder":
			c.Folders.RawBills = value
		case "processed_bills_folder":
			c.Folders.Processed = value
		case "images_folder":
			c.Folders.Images = value
		case "image_bottom_crop_px":
			if px, err := strconv.Atoi(value); err == nil {
				c.Extract.ImageBottomCropPx = px
			}
		case "house_numbers":
			var houses []string
			for _, h := range strings.Split(value, ",") {
				if h = strings.TrimSpace(h); h != "" {
					houses = append(houses, h)
				}
			}
			if len(houses) > 0 {
				c.Extract.HouseNumbers = houses
			}
		case "move_processed_files":
			c.MoveProcessedFiles = parseBool(value, c.MoveProcessedFiles)
		case "test_email_drafts":
			c.TestDrafts = parseBool(value, c.TestDrafts)
		}
	}
}

// Validate checks the invariants the pipeline depends on.
func (c *Config) Validate() error {
	if c.Workbook.Path == "" {
		return fmt.Errorf("workbook.path is required")
	}
	if c.Workbook.DataSheet == "" {
		return fmt.Errorf("workbook.data_sheet is required")
	}
	if c.Folders.RawBills == "" {
		return fmt.Errorf("folders.raw_bills is required")
	}
	if len(c.Extract.HouseNumbers) == 0 {
		return fmt.Errorf("extract.house_numbers must not be empty")
	}
	for _, h := range c.Extract.HouseNumbers {
		if _, err := strconv.Atoi(h); err != nil {
			return fmt.Errorf("extract.house_numbers: %q is not numeric", h)
		}
	}
	if !c.TestDrafts && c.IMAP.Username == "" {
		return fmt.Errorf("IMAP_USER is required unless test_drafts is enabled")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return parseBool(value, defaultValue)
	}
	return defaultValue
}

func parseBool(value string, defaultValue bool) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "true", "1", "yes":
		return true
	case "false", "0", "no":
		return false
	}
	return defaultValue
}
