package convert

import (
	"fmt"
	"strings"
)

// HeaderRow cleans a worksheet's first row into header names: labels are
// trimmed and trailing empty labels dropped. Duplicate labels are rejected
// because rows are keyed by header.
func HeaderRow(cells []string) ([]string, error) {
	headers := make([]string, len(cells))
	for i, c := range cells {
		headers[i] = strings.TrimSpace(c)
	}
	for len(headers) > 0 && headers[len(headers)-1] == "" {
		headers = headers[:len(headers)-1]
	}

	seen := make(map[string]struct{}, len(headers))
	for _, h := range headers {
		if h == "" {
			continue
		}
		if _, ok := seen[h]; ok {
			return nil, fmt.Errorf("duplicate header %q", h)
		}
		seen[h] = struct{}{}
	}
	return headers, nil
}

// GridRows keys each grid row by header. Short rows are padded with empty
// values; columns without a header are skipped.
func GridRows(headers []string, grid [][]string) []Row {
	out := make([]Row, 0, len(grid))
	for _, values := range grid {
		row := make(Row, len(headers))
		for i, h := range headers {
			if h == "" {
				continue
			}
			if i < len(values) {
				row[h] = values[i]
			} else {
				row[h] = ""
			}
		}
		out = append(out, row)
	}
	return out
}
