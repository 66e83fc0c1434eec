package googleapi

import (
	"context"
	"fmt"
	"sync"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/steipete/sheetrecords/internal/convert"
)

// Opener connects to Google Sheets. It implements convert.Opener.
type Opener struct {
	APIKey string
	// ClientOptions are appended to the authentication options.
	ClientOptions []option.ClientOption
}

var _ convert.Opener = (*Opener)(nil)

func (o *Opener) Open(ctx context.Context, spreadsheetID string, credentials []byte) (convert.Spreadsheet, error) {
	svc, err := NewSheets(ctx, credentials, o.APIKey, o.ClientOptions...)
	if err != nil {
		return nil, err
	}
	return &Spreadsheet{svc: svc, id: spreadsheetID}, nil
}

// Spreadsheet is a remote spreadsheet. Title and Worksheets are populated by LoadInfo.
type Spreadsheet struct {
	svc    *sheets.Service
	id     string
	title  string
	sheets []*Worksheet
}

func NewSpreadsheet(svc *sheets.Service, spreadsheetID string) *Spreadsheet {
	return &Spreadsheet{svc: svc, id: spreadsheetID}
}

func (s *Spreadsheet) LoadInfo(ctx context.Context) error {
	resp, err := s.svc.Spreadsheets.Get(s.id).
		Fields("properties.title", "sheets.properties(sheetId,title,index,gridProperties(rowCount,columnCount))").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("get spreadsheet metadata: %w", err)
	}

	if resp.Properties != nil {
		s.title = resp.Properties.Title
	}
	s.sheets = make([]*Worksheet, 0, len(resp.Sheets))
	for _, sheet := range resp.Sheets {
		if sheet.Properties == nil {
			continue
		}
		ws := &Worksheet{
			svc:           s.svc,
			spreadsheetID: s.id,
			sheetID:       sheet.Properties.SheetId,
			title:         sheet.Properties.Title,
		}
		if gp := sheet.Properties.GridProperties; gp != nil {
			ws.rowCount = int(gp.RowCount)
			ws.columnCount = int(gp.ColumnCount)
		}
		s.sheets = append(s.sheets, ws)
	}
	return nil
}

func (s *Spreadsheet) Title() string { return s.title }

func (s *Spreadsheet) Worksheets() []convert.SheetHandle {
	out := make([]convert.SheetHandle, len(s.sheets))
	for i, ws := range s.sheets {
		out[i] = ws
	}
	return out
}

// Sheets returns the concrete worksheet handles.
func (s *Spreadsheet) Sheets() []*Worksheet { return s.sheets }

// Worksheet is one tab of a Spreadsheet. The first row holds the headers.
type Worksheet struct {
	svc           *sheets.Service
	spreadsheetID string
	sheetID       int64
	title         string
	rowCount      int
	columnCount   int

	mu      sync.Mutex
	loaded  bool
	headers []string
	grid    [][]string
}

var _ convert.SheetHandle = (*Worksheet)(nil)

func (w *Worksheet) Title() string    { return w.title }
func (w *Worksheet) SheetID() int64   { return w.sheetID }
func (w *Worksheet) RowCount() int    { return w.rowCount }
func (w *Worksheet) ColumnCount() int { return w.columnCount }

func (w *Worksheet) HeaderValues() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]string(nil), w.headers...)
}

func (w *Worksheet) LoadCells(ctx context.Context) error {
	resp, err := w.svc.Spreadsheets.Values.Get(w.spreadsheetID, QuoteSheetName(w.title)).
		ValueRenderOption("FORMATTED_VALUE").
		MajorDimension("ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("get values: %w", err)
	}

	grid := make([][]string, len(resp.Values))
	for i, values := range resp.Values {
		grid[i] = make([]string, len(values))
		for j, v := range values {
			grid[i][j] = cellString(v)
		}
	}

	var headers []string
	if len(grid) > 0 {
		headers, err = convert.HeaderRow(grid[0])
		if err != nil {
			return fmt.Errorf("sheet %q: %w", w.title, err)
		}
		grid = grid[1:]
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.headers = headers
	w.grid = grid
	w.loaded = true
	return nil
}

// GetRows returns the data rows, loading the cells first if needed.
func (w *Worksheet) GetRows(ctx context.Context) ([]convert.Row, error) {
	w.mu.Lock()
	loaded := w.loaded
	w.mu.Unlock()
	if !loaded {
		if err := w.LoadCells(ctx); err != nil {
			return nil, err
		}
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	return convert.GridRows(w.headers, w.grid), nil
}

func cellString(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	default:
		return fmt.Sprintf("%v", t)
	}
}
