package convert

import (
	"fmt"
	"sort"
	"strings"

	"github.com/steipete/sheetrecords/internal/normalize"
)

type idList = normalize.List[normalize.Identifier]

// Options controls a conversion. Field names follow the JSON option file.
type Options struct {
	SpreadsheetID string       `json:"spreadsheetId"`
	Credentials   *Credentials `json:"credentials,omitempty"`

	AllWorksheets bool `json:"allWorksheets,omitempty"`
	// Worksheet selects sheets by index or title. List form (even with one
	// element) asks for one result per selected sheet.
	Worksheet idList `json:"worksheet"`

	// IgnoreRow and IgnoreCol are validated and reported at debug level but
	// do not filter rows or columns yet.
	IgnoreRow idList `json:"ignoreRow"`
	IgnoreCol idList `json:"ignoreCol"`
	Vertical  bool   `json:"vertical,omitempty"`

	// Accepted for compatibility with existing option files; inert.
	Hash          bool                  `json:"hash,omitempty"`
	ListOnly      bool                  `json:"listOnly,omitempty"`
	IncludeHeader bool                  `json:"includeHeader,omitempty"`
	HeaderStart   *normalize.Identifier `json:"headerStart,omitempty"`
	HeaderSize    int                   `json:"headerSize,omitempty"`

	// PropertyMode, when set, renames header keys (camel|pascal|nospace|verbatim).
	PropertyMode string `json:"propertyMode,omitempty"`
	// PropertyNames overrides PropertyMode, e.g. with normalize.Custom.
	PropertyNames *normalize.NameMode `json:"-"`
	// Nested turns dotted headers ("address.city") into nested objects.
	Nested bool `json:"nested,omitempty"`
}

func (o Options) Validate() error {
	if strings.TrimSpace(o.SpreadsheetID) == "" {
		return ErrMissingSpreadsheetID
	}
	if _, err := o.nameMode(); err != nil {
		return err
	}
	_, err := o.ignoredPositions()
	return err
}

// ExpectMultiple reports whether the result is one record list per worksheet.
func (o Options) ExpectMultiple() bool {
	return o.AllWorksheets || o.Worksheet.IsMulti()
}

func (o Options) nameMode() (*normalize.NameMode, error) {
	if o.PropertyNames != nil {
		return o.PropertyNames, nil
	}
	if strings.TrimSpace(o.PropertyMode) == "" {
		return nil, nil
	}
	m, err := normalize.ParseNameMode(o.PropertyMode)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// ignoredPositions returns the ignored columns (rows when Vertical) as
// numbers in descending order.
func (o Options) ignoredPositions() ([]int, error) {
	rows := normalize.NormalizePossibleIntegerList(o.IgnoreRow, nil)
	cols := normalize.NormalizePossibleIntegerList(o.IgnoreCol, nil)

	colNumbers := make([]int, 0, len(cols))
	for _, id := range cols {
		n, err := normalize.ParseColumnIdentifier(id)
		if err != nil {
			return nil, fmt.Errorf("ignoreCol: %w", err)
		}
		colNumbers = append(colNumbers, n)
	}

	out := colNumbers
	if o.Vertical {
		out = make([]int, 0, len(rows))
		for _, id := range rows {
			if !id.IsIndex() {
				return nil, fmt.Errorf("ignoreRow: %w: row %q", normalize.ErrInvalidIdentifier, id.Label())
			}
			out = append(out, id.Index())
		}
	}
	sort.Sort(sort.Reverse(sort.IntSlice(out)))
	return out, nil
}
