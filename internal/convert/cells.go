package convert

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/steipete/sheetrecords/internal/normalize"
)

// Record is one converted row. Values are strings, or nested objects when
// Options.Nested is set.
type Record map[string]any

// CellsToJSON converts the rows of ws into records keyed by header. Rows
// whose first header cell is empty are dropped, and empty cells never
// produce keys.
func CellsToJSON(ctx context.Context, ws Worksheet, opts Options) ([]Record, error) {
	mode, err := opts.nameMode()
	if err != nil {
		return nil, err
	}
	ignored, err := opts.ignoredPositions()
	if err != nil {
		return nil, err
	}
	if len(ignored) > 0 {
		slog.Debug("ignore lists are not applied", "positions", ignored, "vertical", opts.Vertical)
	}

	rows, err := ws.GetRows(ctx)
	if err != nil {
		return nil, fmt.Errorf("get rows: %w", err)
	}
	headers := ws.HeaderValues()
	slog.Debug("worksheet loaded", "rowCount", ws.RowCount(), "headers", headers)

	out := make([]Record, 0, len(rows))
	if len(headers) == 0 {
		return out, nil
	}

	keys := make([]string, len(headers))
	for i, h := range headers {
		keys[i] = h
		if mode != nil {
			keys[i] = normalize.HandlePropertyName(h, *mode)
		}
	}

	for _, row := range rows {
		if row[headers[0]] == "" {
			continue
		}
		rec := Record{}
		for i, h := range headers {
			v := row[h]
			if v == "" {
				continue
			}
			if opts.Nested {
				normalize.SetPropertyTree(rec, normalize.SplitPropertyPath(keys[i]), v)
				continue
			}
			rec[keys[i]] = v
		}
		out = append(out, rec)
	}
	slog.Debug("rows converted", "nonEmpty", len(out), "total", len(rows))
	return out, nil
}
