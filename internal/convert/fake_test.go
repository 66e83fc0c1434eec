package convert

import (
	"context"
	"errors"
	"sync/atomic"
)

type fakeSheet struct {
	title   string
	headers []string
	rows    []Row
	rowsErr error
	loadErr error
	loaded  atomic.Bool
}

func (f *fakeSheet) Title() string          { return f.title }
func (f *fakeSheet) HeaderValues() []string { return f.headers }
func (f *fakeSheet) RowCount() int          { return len(f.rows) + 1 }

func (f *fakeSheet) LoadCells(context.Context) error {
	if f.loadErr != nil {
		return f.loadErr
	}
	f.loaded.Store(true)
	return nil
}

func (f *fakeSheet) GetRows(context.Context) ([]Row, error) {
	if f.rowsErr != nil {
		return nil, f.rowsErr
	}
	return f.rows, nil
}

type fakeSpreadsheet struct {
	title   string
	sheets  []*fakeSheet
	infoErr error
}

func (f *fakeSpreadsheet) LoadInfo(context.Context) error { return f.infoErr }
func (f *fakeSpreadsheet) Title() string                  { return f.title }

func (f *fakeSpreadsheet) Worksheets() []SheetHandle {
	out := make([]SheetHandle, len(f.sheets))
	for i, s := range f.sheets {
		out[i] = s
	}
	return out
}

type openCall struct {
	id    string
	creds []byte
}

func fakeOpener(ss *fakeSpreadsheet, calls *[]openCall) Opener {
	return OpenerFunc(func(_ context.Context, id string, creds []byte) (Spreadsheet, error) {
		if calls != nil {
			*calls = append(*calls, openCall{id: id, creds: creds})
		}
		if ss == nil {
			return nil, errors.New("spreadsheet not found")
		}
		return ss, nil
	})
}

func peopleSheet(title string) *fakeSheet {
	return &fakeSheet{
		title:   title,
		headers: []string{"id", "name"},
		rows: []Row{
			{"id": "1", "name": "Alice"},
			{"id": "", "name": ""},
			{"id": "2", "name": ""},
		},
	}
}
