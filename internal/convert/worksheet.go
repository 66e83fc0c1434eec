package convert

import "context"

// Row maps a header name to the cell's formatted value. Empty cells are "".
type Row map[string]string

// Worksheet is the part of a worksheet handle CellsToJSON needs.
type Worksheet interface {
	GetRows(ctx context.Context) ([]Row, error)
	HeaderValues() []string
	RowCount() int
}

// SheetHandle is a worksheet as listed by a loaded spreadsheet.
type SheetHandle interface {
	Worksheet
	Title() string
	// LoadCells fetches the worksheet's cell grid. GetRows and HeaderValues
	// are only complete after it returns.
	LoadCells(ctx context.Context) error
}

// Spreadsheet is an opened, possibly authenticated, remote spreadsheet.
type Spreadsheet interface {
	LoadInfo(ctx context.Context) error
	Title() string
	// Worksheets is in sheet order; the position is the worksheet index.
	Worksheets() []SheetHandle
}

// Opener connects to the spreadsheet service. credentials is nil when the
// caller supplied none.
type Opener interface {
	Open(ctx context.Context, spreadsheetID string, credentials []byte) (Spreadsheet, error)
}

// OpenerFunc adapts a function to Opener.
type OpenerFunc func(ctx context.Context, spreadsheetID string, credentials []byte) (Spreadsheet, error)

func (f OpenerFunc) Open(ctx context.Context, spreadsheetID string, credentials []byte) (Spreadsheet, error) {
	return f(ctx, spreadsheetID, credentials)
}
