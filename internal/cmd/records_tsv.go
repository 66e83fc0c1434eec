package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/steipete/sheetrecords/internal/convert"
)

// writeRecordsTSV prints one header line plus one line per record. Columns
// are the sorted union of record keys. Multiple worksheets are separated by a
// "# <title>" line.
func writeRecordsTSV(w io.Writer, res *convert.Result) error {
	for i, sheet := range res.Sheets {
		if res.Multiple {
			if i > 0 {
				if _, err := fmt.Fprintln(w); err != nil {
					return err
				}
			}
			if _, err := fmt.Fprintf(w, "# %s\n", sheet.Title); err != nil {
				return err
			}
		}
		if err := writeSheetTSV(w, sheet.Records); err != nil {
			return err
		}
		if !res.Multiple {
			break
		}
	}
	return nil
}

func writeSheetTSV(w io.Writer, records []convert.Record) error {
	cols := recordColumns(records)
	if len(cols) == 0 {
		return nil
	}
	if _, err := fmt.Fprintln(w, strings.Join(cols, "\t")); err != nil {
		return err
	}
	cells := make([]string, len(cols))
	for _, r := range records {
		for i, c := range cols {
			cells[i] = tsvCell(r[c])
		}
		if _, err := fmt.Fprintln(w, strings.Join(cells, "\t")); err != nil {
			return err
		}
	}
	return nil
}

func recordColumns(records []convert.Record) []string {
	seen := map[string]struct{}{}
	for _, r := range records {
		for k := range r {
			seen[k] = struct{}{}
		}
	}
	cols := make([]string, 0, len(seen))
	for k := range seen {
		cols = append(cols, k)
	}
	sort.Strings(cols)
	return cols
}

var tsvEscaper = strings.NewReplacer("\t", " ", "\r\n", " ", "\n", " ")

func tsvCell(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return tsvEscaper.Replace(t)
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprintf("%v", t)
		}
		return string(b)
	}
}
