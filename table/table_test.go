package table

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

func TestReadCSV(t *testing.T) {
	in := "question,mode,operand,difficulty,answer,time\n{a}+{b},tap,a1:9*b1:9*,1,{a}+{b},20\n\"Turn {a}\",direction,\"aNorth,South*\",1,{a}\n"

	records, err := ReadCSV(strings.NewReader(in))
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}
	if records[2][2] != "aNorth,South*" || len(records[2]) != 5 {
		t.Fatalf("unexpected record %v", records[2])
	}
}

func TestDirCSV(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "questions", "en.csv"), "q,mode\n{a},tap\n")
	writeFile(t, filepath.Join(root, "hint", "en.csv"), "mode,hint\ntap,Tap the screen\n")

	dir, err := NewDir(root, "CSV")
	if err != nil {
		t.Fatalf("new dir: %v", err)
	}

	records, err := dir.Records(context.Background(), Questions, "en")
	if err != nil {
		t.Fatalf("records: %v", err)
	}
	if len(records) != 2 || records[1][1] != "tap" {
		t.Fatalf("unexpected records %v", records)
	}

	hints, err := dir.Records(context.Background(), Hints, "EN")
	if err != nil {
		t.Fatalf("hints: %v", err)
	}
	if hints[1][1] != "Tap the screen" {
		t.Fatalf("unexpected hints %v", hints)
	}
}

func TestDirMissingFile(t *testing.T) {
	dir, err := NewDir(t.TempDir(), FormatXLSX)
	if err != nil {
		t.Fatalf("new dir: %v", err)
	}

	_, err = dir.Records(context.Background(), Questions, "ml")
	if !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("expected fs.ErrNotExist, got %v", err)
	}
}

func TestNewDirUnknownFormat(t *testing.T) {
	if _, err := NewDir(t.TempDir(), "json"); !errors.Is(err, ErrUnknownFormat) {
		t.Fatalf("expected ErrUnknownFormat, got %v", err)
	}
}

func TestDirXLSX(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "questions", "en.xlsx")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	wb := excelize.NewFile()
	sheet := wb.GetSheetName(0)
	rows := [][]interface{}{
		{"question", "mode", "operand", "difficulty", "answer", "time"},
		{"{a}+{b}", "tap", "a1:9*b1:9*", 2, "{a}+{b}", 15},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("cell name: %v", err)
		}
		if err := wb.SetSheetRow(sheet, cell, &row); err != nil {
			t.Fatalf("set row: %v", err)
		}
	}
	if err := wb.SaveAs(path); err != nil {
		t.Fatalf("save: %v", err)
	}
	wb.Close()

	dir, err := NewDir(root, FormatXLSX)
	if err != nil {
		t.Fatalf("new dir: %v", err)
	}
	records, err := dir.Records(context.Background(), Questions, "en")
	if err != nil {
		t.Fatalf("records: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[1][1] != "tap" || records[1][3] != "2" || records[1][5] != "15" {
		t.Fatalf("unexpected row %v", records[1])
	}
}

func TestDirRespectsContext(t *testing.T) {
	dir, err := NewDir(t.TempDir(), FormatCSV)
	if err != nil {
		t.Fatalf("new dir: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := dir.Records(ctx, Questions, "en"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
}
