package billing

import (
	"errors"
	"testing"
	"time"

	"github.com/dmarchuk/rentroll/constants"
	"github.com/dmarchuk/rentroll/internal/common"
	"github.com/dmarchuk/rentroll/internal/extract"
)

func TestNormalize(t *testing.T) {
	valid := extract.FieldBag{
		Vendor: constants.VendorENMAX,
		House:  "1705",
		Amount: "180.00",
		Date:   "2025-08-05",
	}

	t.Run("valid bag", func(t *testing.T) {
		rec, err := Normalize(valid, "bill.pdf")
		if err != nil {
			t.Fatalf("Normalize() error = %v", err)
		}
		if rec.Vendor != constants.VendorENMAX {
			t.Errorf("Vendor = %q", rec.Vendor)
		}
		if rec.House != 1705 {
			t.Errorf("House = %d, want 1705", rec.House)
		}
		if rec.Amount.StringFixed(2) != "180.00" {
			t.Errorf("Amount = %s, want 180.00", rec.Amount)
		}
		if !rec.Date.Equal(time.Date(2025, 8, 5, 0, 0, 0, 0, time.UTC)) {
			t.Errorf("Date = %v", rec.Date)
		}
		if rec.SourceFile != "bill.pdf" {
			t.Errorf("SourceFile = %q", rec.SourceFile)
		}
	})

	t.Run("idempotent", func(t *testing.T) {
		first, err := Normalize(valid, "bill.pdf")
		if err != nil {
			t.Fatal(err)
		}
		second, err := Normalize(valid, "bill.pdf")
		if err != nil {
			t.Fatal(err)
		}
		if first.House != second.House || !first.Amount.Equal(second.Amount) ||
			!first.Date.Equal(second.Date) || first.Vendor != second.Vendor {
			t.Errorf("records differ: %+v vs %+v", first, second)
		}
	})

	skipCases := []struct {
		name string
		bag  extract.FieldBag
	}{
		{"missing house", extract.FieldBag{Vendor: constants.VendorATCO, Date: "2025-08-20", Amount: "10.00"}},
		{"non-numeric house", extract.FieldBag{Vendor: constants.VendorATCO, House: "12A", Date: "2025-08-20"}},
		{"missing date", extract.FieldBag{Vendor: constants.VendorATCO, House: "1705", Amount: "10.00"}},
		{"unparseable date", extract.FieldBag{Vendor: constants.VendorATCO, House: "1705", Date: "August 20th"}},
		{"impossible date", extract.FieldBag{Vendor: constants.VendorATCO, House: "1705", Date: "2025-13-45"}},
	}
	for _, tt := range skipCases {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Normalize(tt.bag, "x.pdf"); !errors.Is(err, common.ErrMissingField) {
				t.Errorf("Normalize() error = %v, want ErrMissingField", err)
			}
		})
	}

	t.Run("slash date coerced", func(t *testing.T) {
		bag := valid
		bag.Date = "2025/8/5"
		rec, err := Normalize(bag, "x.pdf")
		if err != nil {
			t.Fatalf("Normalize() error = %v", err)
		}
		if rec.Date.Format("2006-01-02") != "2025-08-05" {
			t.Errorf("Date = %v", rec.Date)
		}
	})

	// Missing or malformed amounts degrade to zero rather than skipping:
	// the record still marks the billing period, it just adds no cost.
	t.Run("missing amount is zero not skip", func(t *testing.T) {
		bag := valid
		bag.Amount = ""
		rec, err := Normalize(bag, "x.pdf")
		if err != nil {
			t.Fatalf("Normalize() error = %v", err)
		}
		if !rec.Amount.IsZero() {
			t.Errorf("Amount = %s, want 0", rec.Amount)
		}
	})

	t.Run("malformed amount is zero not skip", func(t *testing.T) {
		bag := valid
		bag.Amount = "abc"
		rec, err := Normalize(bag, "x.pdf")
		if err != nil {
			t.Fatalf("Normalize() error = %v", err)
		}
		if !rec.Amount.IsZero() {
			t.Errorf("Amount = %s, want 0", rec.Amount)
		}
	})
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"180.00", "180.00"},
		{"$180.00", "180.00"},
		{"1,218.00", "1218.00"},
		{" $ 1,218.00 ", "1218.00"},
		{"", "0.00"},
		{"n/a", "0.00"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := ParseAmount(tt.in).StringFixed(2); got != tt.want {
				t.Errorf("ParseAmount(%q) = %s, want %s", tt.in, got, tt.want)
			}
		})
	}
}

func TestMonthEnd(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"2025-08-05", "2025-08-31"},
		{"2025-02-01", "2025-02-28"},
		{"2024-02-10", "2024-02-29"},
		{"2025-12-31", "2025-12-31"},
	}
	for _, tt := range tests {
		in, _ := time.Parse("2006-01-02", tt.in)
		if got := MonthEnd(in).Format("2006-01-02"); got != tt.want {
			t.Errorf("MonthEnd(%s) = %s, want %s", tt.in, got, tt.want)
		}
	}
}
