package xlsxsheet

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/steipete/sheetrecords/internal/convert"
	"github.com/steipete/sheetrecords/internal/normalize"
)

func writeWorkbook(t *testing.T) string {
	t.Helper()

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	rows := [][]interface{}{
		{"id", "name"},
		{"1", "Alice"},
		{"", ""},
		{"2", ""},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("cell name: %v", err)
		}
		if err := f.SetSheetRow("Sheet1", cell, &row); err != nil {
			t.Fatalf("SetSheetRow: %v", err)
		}
	}

	if _, err := f.NewSheet("Cities"); err != nil {
		t.Fatalf("NewSheet: %v", err)
	}
	if err := f.SetSheetRow("Cities", "A1", &[]interface{}{"City Name", "Country"}); err != nil {
		t.Fatalf("SetSheetRow: %v", err)
	}
	if err := f.SetSheetRow("Cities", "A2", &[]interface{}{"Vienna", "AT"}); err != nil {
		t.Fatalf("SetSheetRow: %v", err)
	}

	path := filepath.Join(t.TempDir(), "book.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("SaveAs: %v", err)
	}
	return path
}

func TestWorkbook_CellsToJSON(t *testing.T) {
	wb, err := Open(writeWorkbook(t))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer func() { _ = wb.Close() }()

	if wb.Title() != "book" {
		t.Fatalf("title: %q", wb.Title())
	}
	ws, ok := wb.Sheet("Sheet1")
	if !ok {
		t.Fatalf("missing Sheet1")
	}

	got, err := convert.CellsToJSON(context.Background(), ws, convert.Options{})
	if err != nil {
		t.Fatalf("CellsToJSON: %v", err)
	}
	want := []convert.Record{{"id": "1", "name": "Alice"}, {"id": "2"}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %#v, want %#v", got, want)
	}
	if ws.RowCount() != 4 {
		t.Fatalf("row count: %d", ws.RowCount())
	}
}

func TestOpener_SpreadsheetToJSON(t *testing.T) {
	res, err := convert.SpreadsheetToJSON(context.Background(), Opener{}, convert.Options{
		SpreadsheetID: writeWorkbook(t),
		AllWorksheets: true,
		PropertyMode:  "camel",
	})
	if err != nil {
		t.Fatalf("SpreadsheetToJSON: %v", err)
	}
	out, err := json.Marshal(res)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `[[{"id":"1","name":"Alice"},{"id":"2"}],[{"cityName":"Vienna","country":"AT"}]]`
	if string(out) != want {
		t.Fatalf("got %s, want %s", out, want)
	}
}

func TestOpener_NoWorksheetFound(t *testing.T) {
	_, err := convert.SpreadsheetToJSON(context.Background(), Opener{}, convert.Options{
		SpreadsheetID: writeWorkbook(t),
		Worksheet:     normalize.Single(normalize.IndexID(5)),
	})
	if !errors.Is(err, convert.ErrNoWorksheetFound) {
		t.Fatalf("expected ErrNoWorksheetFound, got %v", err)
	}
}

func TestOpen_Missing(t *testing.T) {
	if _, err := Open(filepath.Join(t.TempDir(), "nope.xlsx")); err == nil {
		t.Fatalf("expected error")
	}
}
