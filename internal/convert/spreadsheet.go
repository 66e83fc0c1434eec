package convert

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/steipete/sheetrecords/internal/normalize"
)

// SheetRecords is the conversion of one worksheet.
type SheetRecords struct {
	Index   int
	Title   string
	Records []Record
}

// Result holds the records of every selected worksheet in selection order.
// Multiple records whether the caller asked for one list per worksheet.
type Result struct {
	Title    string
	Multiple bool
	Sheets   []SheetRecords
}

// Records returns the first worksheet's records.
func (r *Result) Records() []Record {
	if r == nil || len(r.Sheets) == 0 {
		return []Record{}
	}
	return r.Sheets[0].Records
}

// MarshalJSON emits a list of records, or a list of lists when Multiple.
func (r *Result) MarshalJSON() ([]byte, error) {
	if !r.Multiple {
		return json.Marshal(r.Records())
	}
	lists := make([][]Record, len(r.Sheets))
	for i, s := range r.Sheets {
		lists[i] = s.Records
	}
	return json.Marshal(lists)
}

// SpreadsheetToJSON opens the spreadsheet, selects worksheets and converts
// each with CellsToJSON. Selected worksheets are converted concurrently; the
// first failure cancels the others and no partial result is returned.
func SpreadsheetToJSON(ctx context.Context, opener Opener, opts Options) (*Result, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	creds, err := opts.Credentials.Resolve()
	if err != nil {
		return nil, err
	}

	ss, err := opener.Open(ctx, opts.SpreadsheetID, creds)
	if err != nil {
		return nil, err
	}
	if c, ok := ss.(io.Closer); ok {
		defer func() { _ = c.Close() }()
	}
	if err := ss.LoadInfo(ctx); err != nil {
		return nil, fmt.Errorf("load spreadsheet %s: %w", opts.SpreadsheetID, err)
	}
	slog.Debug("spreadsheet loaded", "title", ss.Title(), "worksheets", len(ss.Worksheets()))

	selected, err := selectWorksheets(ss.Worksheets(), opts)
	if err != nil {
		return nil, err
	}

	out := &Result{
		Title:    ss.Title(),
		Multiple: opts.ExpectMultiple(),
		Sheets:   make([]SheetRecords, len(selected)),
	}

	g, gctx := errgroup.WithContext(ctx)
	for i, sel := range selected {
		i, sel := i, sel
		g.Go(func() error {
			ws := sel.handle
			slog.Debug("loading worksheet", "index", sel.index, "title", ws.Title())
			if err := ws.LoadCells(gctx); err != nil {
				return fmt.Errorf("load worksheet %q: %w", ws.Title(), err)
			}
			records, err := CellsToJSON(gctx, ws, opts)
			if err != nil {
				return fmt.Errorf("worksheet %q: %w", ws.Title(), err)
			}
			out.Sheets[i] = SheetRecords{Index: sel.index, Title: ws.Title(), Records: records}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

type selectedSheet struct {
	index  int
	handle SheetHandle
}

// selectWorksheets picks the worksheets named by opts, keeping sheet order.
func selectWorksheets(worksheets []SheetHandle, opts Options) ([]selectedSheet, error) {
	if opts.AllWorksheets {
		out := make([]selectedSheet, len(worksheets))
		for i, ws := range worksheets {
			out[i] = selectedSheet{index: i, handle: ws}
		}
		return out, nil
	}

	ids := normalize.NormalizePossibleIntegerList(opts.Worksheet, []normalize.Identifier{normalize.IndexID(0)})
	var out []selectedSheet
	for i, ws := range worksheets {
		for _, id := range ids {
			if id.Matches(i, ws.Title()) {
				out = append(out, selectedSheet{index: i, handle: ws})
				break
			}
		}
	}
	if !opts.ExpectMultiple() && len(out) > 1 {
		out = out[:1]
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: %v", ErrNoWorksheetFound, ids)
	}
	return out, nil
}
