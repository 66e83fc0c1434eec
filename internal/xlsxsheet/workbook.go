// Package xlsxsheet exposes the sheets of a local .xlsx workbook through the
// same worksheet contract as remote spreadsheets.
package xlsxsheet

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/xuri/excelize/v2"

	"github.com/steipete/sheetrecords/internal/convert"
)

// Opener treats the spreadsheet id as a workbook path. Credentials are ignored.
type Opener struct{}

var _ convert.Opener = Opener{}

func (Opener) Open(_ context.Context, path string, _ []byte) (convert.Spreadsheet, error) {
	return &Workbook{path: path}, nil
}

// Workbook is a local workbook. Sheets are read when LoadInfo runs.
type Workbook struct {
	path   string
	file   *excelize.File
	sheets []*Worksheet
	readMu sync.Mutex // serializes reads of file
}

func Open(path string) (*Workbook, error) {
	wb := &Workbook{path: path}
	if err := wb.LoadInfo(context.Background()); err != nil {
		return nil, err
	}
	return wb, nil
}

func (wb *Workbook) LoadInfo(ctx context.Context) error {
	if wb.file != nil {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	f, err := excelize.OpenFile(wb.path)
	if err != nil {
		return fmt.Errorf("open workbook: %w", err)
	}
	wb.file = f
	for _, name := range f.GetSheetList() {
		wb.sheets = append(wb.sheets, &Worksheet{file: f, readMu: &wb.readMu, title: name})
	}
	return nil
}

func (wb *Workbook) Title() string {
	base := filepath.Base(wb.path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func (wb *Workbook) Worksheets() []convert.SheetHandle {
	out := make([]convert.SheetHandle, len(wb.sheets))
	for i, ws := range wb.sheets {
		out[i] = ws
	}
	return out
}

// Sheet returns the worksheet titled name.
func (wb *Workbook) Sheet(name string) (*Worksheet, bool) {
	for _, ws := range wb.sheets {
		if ws.title == name {
			return ws, true
		}
	}
	return nil, false
}

func (wb *Workbook) Close() error {
	if wb.file == nil {
		return nil
	}
	return wb.file.Close()
}

// Worksheet is one sheet of a Workbook. The first row holds the headers.
type Worksheet struct {
	file   *excelize.File
	readMu *sync.Mutex
	title  string

	mu      sync.Mutex
	loaded  bool
	headers []string
	grid    [][]string
}

var _ convert.SheetHandle = (*Worksheet)(nil)

func (w *Worksheet) Title() string { return w.title }

func (w *Worksheet) LoadCells(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.loadLocked()
}

func (w *Worksheet) loadLocked() error {
	if w.loaded {
		return nil
	}
	w.readMu.Lock()
	grid, err := w.file.GetRows(w.title)
	w.readMu.Unlock()
	if err != nil {
		return fmt.Errorf("read sheet %q: %w", w.title, err)
	}

	var headers []string
	if len(grid) > 0 {
		headers, err = convert.HeaderRow(grid[0])
		if err != nil {
			return fmt.Errorf("sheet %q: %w", w.title, err)
		}
		grid = grid[1:]
	}
	w.headers = headers
	w.grid = grid
	w.loaded = true
	return nil
}

func (w *Worksheet) GetRows(ctx context.Context) ([]convert.Row, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.loadLocked(); err != nil {
		return nil, err
	}
	return convert.GridRows(w.headers, w.grid), nil
}

func (w *Worksheet) HeaderValues() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]string(nil), w.headers...)
}

// RowCount counts the header row and data rows read so far.
func (w *Worksheet) RowCount() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.loaded {
		return 0
	}
	return len(w.grid) + 1
}
