package ingest

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/dmarchuk/rentroll/constants"
	"github.com/dmarchuk/rentroll/internal/common"
)

func TestListPDFs(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.pdf", "a.PDF", ".hidden.pdf", "notes.txt", "c.pdf"} {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "sub.pdf"), 0o755); err != nil {
		t.Fatal(err)
	}

	got, err := ListPDFs(dir)
	if err != nil {
		t.Fatalf("ListPDFs() error = %v", err)
	}
	want := []string{"a.PDF", "b.pdf", "c.pdf"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ListPDFs() = %v, want %v", got, want)
	}
}

func TestListPDFsMissingDir(t *testing.T) {
	got, err := ListPDFs(filepath.Join(t.TempDir(), "nope"))
	if err != nil {
		t.Fatalf("ListPDFs() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("ListPDFs() = %v, want empty", got)
	}
}

func TestNaming(t *testing.T) {
	date := time.Date(2025, 8, 20, 0, 0, 0, 0, time.UTC)

	if got := ImageName(1705, date, constants.VendorATCO); got != "1705_2025-08-20_ATCO.png" {
		t.Errorf("ImageName() = %q", got)
	}
	if got := TargetFileName(1705, date, constants.VendorATCO, ".pdf"); got != "1705 August 20 2025 ATCO.pdf" {
		t.Errorf("TargetFileName() = %q", got)
	}
	if got := SafeFileName("a/b:c*d.pdf"); got != "a_b_c_d.pdf" {
		t.Errorf("SafeFileName() = %q", got)
	}
}

func TestMoveProcessed(t *testing.T) {
	folders := common.FoldersConfig{
		RawBills:  t.TempDir(),
		Processed: t.TempDir(),
	}
	if err := os.WriteFile(filepath.Join(folders.RawBills, "in.pdf"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	date := time.Date(2025, 8, 5, 0, 0, 0, 0, time.UTC)

	final := MoveProcessed(folders, "in.pdf", 819, date, constants.VendorENMAX, nil)
	if final != "819 August 5 2025 ENMAX.pdf" {
		t.Errorf("final name = %q", final)
	}
	if _, err := os.Stat(filepath.Join(folders.Processed, final)); err != nil {
		t.Errorf("moved file missing: %v", err)
	}
	if _, err := os.Stat(filepath.Join(folders.RawBills, "in.pdf")); !os.IsNotExist(err) {
		t.Error("source file still present")
	}
}

func TestMoveProcessedFailureKeepsOriginalName(t *testing.T) {
	folders := common.FoldersConfig{
		RawBills:  t.TempDir(),
		Processed: filepath.Join(t.TempDir(), "missing", "deep"),
	}
	if err := os.WriteFile(filepath.Join(folders.RawBills, "in.pdf"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	final := MoveProcessed(folders, "in.pdf", 819, time.Now(), constants.VendorENMAX, nil)
	if final != "in.pdf" {
		t.Errorf("final name = %q, want original on failure", final)
	}
}
