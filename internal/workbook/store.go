// Package workbook is the record store: a single XLSX file with a Config
// sheet (settings overrides), a Tenants sheet (tenant profiles), and a Data
// sheet the pipeline appends processed bills to.
package workbook

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/dmarchuk/rentroll/constants"
	"github.com/dmarchuk/rentroll/internal/billing"
)

const (
	configSheet  = "Config"
	tenantsSheet = "Tenants"
)

// dataColumns is the fixed column order of the Data sheet.
var dataColumns = []string{"file", "house_number", "tenant_name", "bill_amount", "bill_date", "vendor"}

type Store struct {
	path      string
	dataSheet string
	logger    *slog.Logger
}

func NewStore(path, dataSheet string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	if dataSheet == "" {
		dataSheet = "Data"
	}
	return &Store{path: path, dataSheet: dataSheet, logger: logger}
}

// LoadSettings reads key/value pairs from the Config sheet. A missing file
// or sheet is an error; the caller decides whether to fall back to file or
// built-in configuration.
func (s *Store) LoadSettings() (map[string]string, error) {
	f, err := excelize.OpenFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", s.path, err)
	}
	defer closeFile(f, s.logger)

	rows, err := f.GetRows(configSheet)
	if err != nil {
		return nil, fmt.Errorf("read %s sheet: %w", configSheet, err)
	}

	settings := make(map[string]string)
	for i, row := range rows {
		if len(row) < 2 {
			continue
		}
		key := strings.TrimSpace(strings.ToLower(row[0]))
		if key == "" || (i == 0 && key == "key") {
			continue
		}
		settings[key] = strings.TrimSpace(row[1])
	}
	return settings, nil
}

// LoadTenants reads tenant profiles from the Tenants sheet, keyed by house.
// utility_share_percent is stored as a whole percentage and converted to the
// fraction the rent calculator expects.
func (s *Store) LoadTenants() (map[int]billing.Tenant, error) {
	f, err := excelize.OpenFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", s.path, err)
	}
	defer closeFile(f, s.logger)

	rows, err := f.GetRows(tenantsSheet)
	if err != nil {
		return nil, fmt.Errorf("read %s sheet: %w", tenantsSheet, err)
	}
	if len(rows) == 0 {
		return map[int]billing.Tenant{}, nil
	}

	cols := headerIndex(rows[0])
	required := []string{"house_number", "tenant_name", "email", "base_rent", "utility_share_percent"}
	for _, name := range required {
		if _, ok := cols[name]; !ok {
			return nil, fmt.Errorf("%s sheet missing column %q", tenantsSheet, name)
		}
	}

	tenants := make(map[int]billing.Tenant, len(rows)-1)
	for _, row := range rows[1:] {
		house, err := strconv.Atoi(strings.TrimSpace(cell(row, cols["house_number"])))
		if err != nil {
			s.logger.Warn("workbook.tenants.bad_house", "row", row)
			continue
		}
		baseRent, err := decimal.NewFromString(strings.TrimSpace(cell(row, cols["base_rent"])))
		if err != nil {
			s.logger.Warn("workbook.tenants.bad_base_rent", "house", house)
			continue
		}
		sharePct, err := decimal.NewFromString(strings.TrimSpace(cell(row, cols["utility_share_percent"])))
		if err != nil {
			s.logger.Warn("workbook.tenants.bad_share", "house", house)
			continue
		}
		tenants[house] = billing.Tenant{
			House:        house,
			Name:         strings.TrimSpace(cell(row, cols["tenant_name"])),
			Email:        strings.TrimSpace(cell(row, cols["email"])),
			BaseRent:     baseRent,
			UtilityShare: sharePct.Div(decimal.NewFromInt(100)),
		}
	}
	return tenants, nil
}

// BillRow is one line destined for the Data sheet: a normalized record plus
// the tenant name it is enriched with.
type BillRow struct {
	Record     billing.Record
	TenantName string
}

// AppendBills appends rows to the Data sheet, creating the file and sheet as
// needed. Rows whose file name already appears in the sheet are skipped, so
// re-running a batch never duplicates records. Returns (added, skipped).
func (s *Store) AppendBills(rows []BillRow) (int, int, error) {
	if len(rows) == 0 {
		return 0, 0, nil
	}

	f, created, err := s.openOrCreate()
	if err != nil {
		return 0, 0, err
	}
	defer closeFile(f, s.logger)

	existing, err := f.GetRows(s.dataSheet)
	if err != nil {
		return 0, 0, fmt.Errorf("read %s sheet: %w", s.dataSheet, err)
	}

	next := len(existing) + 1
	if len(existing) == 0 {
		for i, name := range dataColumns {
			if err := setCell(f, s.dataSheet, i+1, 1, name); err != nil {
				return 0, 0, err
			}
		}
		next = 2
	}

	seen := make(map[string]struct{})
	if len(existing) > 1 {
		cols := headerIndex(existing[0])
		if fileCol, ok := cols["file"]; ok {
			for _, row := range existing[1:] {
				seen[strings.TrimSpace(cell(row, fileCol))] = struct{}{}
			}
		}
	}

	added, skipped := 0, 0
	for _, row := range rows {
		if _, dup := seen[row.Record.SourceFile]; dup {
			skipped++
			continue
		}
		rec := row.Record
		values := []any{
			rec.SourceFile,
			rec.House,
			row.TenantName,
			rec.Amount.StringFixed(2),
			rec.Date.Format("2006-01-02"),
			string(rec.Vendor),
		}
		for i, v := range values {
			if err := setCell(f, s.dataSheet, i+1, next, v); err != nil {
				return added, skipped, err
			}
		}
		seen[rec.SourceFile] = struct{}{}
		next++
		added++
	}

	if created {
		err = f.SaveAs(s.path)
	} else {
		err = f.Save()
	}
	if err != nil {
		return added, skipped, fmt.Errorf("save workbook %s: %w", s.path, err)
	}
	s.logger.Info("workbook.append.ok", "added", added, "skipped_duplicates", skipped)
	return added, skipped, nil
}

// LatestMonthCharge rebuilds the most recent period's aggregated charge for
// one house from the recorded Data rows, reusing the batch aggregator so the
// totals match what the pipeline would have produced.
func (s *Store) LatestMonthCharge(house int) (*billing.AggregatedCharge, error) {
	charges, err := s.houseCharges(house)
	if err != nil {
		return nil, err
	}

	var latest *billing.AggregatedCharge
	for _, charge := range charges {
		if latest == nil || charge.PeriodEnd.After(latest.PeriodEnd) {
			latest = charge
		}
	}
	if latest == nil {
		return nil, fmt.Errorf("no recorded bills for house %d", house)
	}
	return latest, nil
}

// MonthCharge rebuilds the aggregated charge for one house and the billing
// period containing month.
func (s *Store) MonthCharge(house int, month time.Time) (*billing.AggregatedCharge, error) {
	charges, err := s.houseCharges(house)
	if err != nil {
		return nil, err
	}

	periodEnd := billing.MonthEnd(month)
	for _, charge := range charges {
		if charge.PeriodEnd.Equal(periodEnd) {
			return charge, nil
		}
	}
	return nil, fmt.Errorf("no recorded bills for house %d in %s", house, month.Format("2006-01"))
}

func (s *Store) houseCharges(house int) ([]*billing.AggregatedCharge, error) {
	records, err := s.ReadBills()
	if err != nil {
		return nil, err
	}
	agg := billing.NewAggregator()
	for _, rec := range records {
		if rec.House == house {
			agg.Fold(rec)
		}
	}
	return agg.Charges(), nil
}

// ReadBills parses the Data sheet back into normalized records. Rows with an
// unparseable house or date are skipped with a warning, mirroring the
// pipeline's own skip policy.
func (s *Store) ReadBills() ([]billing.Record, error) {
	f, err := excelize.OpenFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", s.path, err)
	}
	defer closeFile(f, s.logger)

	rows, err := f.GetRows(s.dataSheet)
	if err != nil {
		return nil, fmt.Errorf("read %s sheet: %w", s.dataSheet, err)
	}
	if len(rows) < 2 {
		return nil, nil
	}

	cols := headerIndex(rows[0])
	for _, name := range []string{"file", "house_number", "bill_amount", "bill_date", "vendor"} {
		if _, ok := cols[name]; !ok {
			return nil, fmt.Errorf("%s sheet missing column %q", s.dataSheet, name)
		}
	}

	var records []billing.Record
	for i, row := range rows[1:] {
		house, err := strconv.Atoi(strings.TrimSpace(cell(row, cols["house_number"])))
		if err != nil {
			s.logger.Warn("workbook.data.bad_house", "row", i+2)
			continue
		}
		date, err := parseSheetDate(cell(row, cols["bill_date"]))
		if err != nil {
			s.logger.Warn("workbook.data.bad_date", "row", i+2)
			continue
		}
		vendor, _ := constants.ParseVendor(cell(row, cols["vendor"]))
		records = append(records, billing.Record{
			Vendor:     vendor,
			House:      house,
			Amount:     billing.ParseAmount(cell(row, cols["bill_amount"])),
			Date:       date,
			SourceFile: strings.TrimSpace(cell(row, cols["file"])),
		})
	}
	return records, nil
}

func (s *Store) openOrCreate() (*excelize.File, bool, error) {
	if _, err := os.Stat(s.path); os.IsNotExist(err) {
		f := excelize.NewFile()
		if err := f.SetSheetName("Sheet1", s.dataSheet); err != nil {
			return nil, false, fmt.Errorf("create %s sheet: %w", s.dataSheet, err)
		}
		return f, true, nil
	}
	f, err := excelize.OpenFile(s.path)
	if err != nil {
		return nil, false, fmt.Errorf("open workbook %s: %w", s.path, err)
	}
	if idx, _ := f.GetSheetIndex(s.dataSheet); idx == -1 {
		if _, err := f.NewSheet(s.dataSheet); err != nil {
			return nil, false, fmt.Errorf("create %s sheet: %w", s.dataSheet, err)
		}
	}
	return f, false, nil
}
