package normalize

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

const alphabet = "abcdefghijklmnopqrstuvwxyz"

var ErrInvalidIdentifier = errors.New("invalid identifier")

// Identifier references a column, row or worksheet either by a 1-based (or,
// for worksheets, 0-based) number or by a label such as "AB" or a sheet title.
type Identifier struct {
	index   int
	label   string
	numeric bool
}

func IndexID(n int) Identifier {
	return Identifier{index: n, numeric: true}
}

func LabelID(s string) Identifier {
	return Identifier{label: s}
}

func (id Identifier) IsIndex() bool { return id.numeric }

func (id Identifier) Index() int { return id.index }

func (id Identifier) Label() string { return id.label }

func (id Identifier) String() string {
	if id.numeric {
		return strconv.Itoa(id.index)
	}
	return id.label
}

// Matches reports whether the identifier names the worksheet at index with the given title.
func (id Identifier) Matches(index int, title string) bool {
	if id.numeric {
		return id.index == index
	}
	return id.label == title
}

func (id Identifier) MarshalJSON() ([]byte, error) {
	if id.numeric {
		return json.Marshal(id.index)
	}
	return json.Marshal(id.label)
}

func (id *Identifier) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	parsed, err := IdentifierFromValue(v)
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// IdentifierFromValue converts a decoded JSON value into an Identifier.
func IdentifierFromValue(v any) (Identifier, error) {
	switch t := v.(type) {
	case Identifier:
		return t, nil
	case string:
		return LabelID(t), nil
	case int:
		return IndexID(t), nil
	case int64:
		return IndexID(int(t)), nil
	case float64:
		if t != float64(int(t)) {
			return Identifier{}, fmt.Errorf("%w: %v is not a whole number", ErrInvalidIdentifier, t)
		}
		return IndexID(int(t)), nil
	default:
		return Identifier{}, fmt.Errorf("%w: value type %T is not supported", ErrInvalidIdentifier, v)
	}
}

// ParseColumnIdentifier returns the 1-based column number for id. Labels are
// read as base-26 letters, case-insensitive, with 'a' = 1.
func ParseColumnIdentifier(id Identifier) (int, error) {
	if id.numeric {
		return id.index, nil
	}

	letters := strings.ToLower(strings.TrimSpace(id.label))
	if i := strings.IndexAny(letters, " ."); i >= 0 {
		letters = letters[:i] + letters[i+1:]
	}
	if letters == "" {
		return 0, fmt.Errorf("%w: empty column", ErrInvalidIdentifier)
	}

	col := 0
	for i := 0; i < len(letters); i++ {
		pos := strings.IndexByte(alphabet, letters[i])
		if pos == -1 {
			return 0, fmt.Errorf("%w: column %q", ErrInvalidIdentifier, id.label)
		}
		col = col*len(alphabet) + pos + 1
	}
	return col, nil
}

// ColumnLetters is the inverse of ParseColumnIdentifier: 1 -> "A", 27 -> "AA".
func ColumnLetters(col int) (string, error) {
	if col <= 0 {
		return "", fmt.Errorf("%w: column %d", ErrInvalidIdentifier, col)
	}
	var out []byte
	for col > 0 {
		col--
		out = append(out, alphabet[col%len(alphabet)]-'a'+'A')
		col /= len(alphabet)
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return string(out), nil
}
