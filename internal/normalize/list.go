package normalize

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// List is an option that callers may give either as a single value or as a
// list. The zero value is unset.
type List[T any] struct {
	values []T
	set    bool
	multi  bool
}

func Single[T any](v T) List[T] {
	return List[T]{values: []T{v}, set: true}
}

func Many[T any](vs ...T) List[T] {
	return List[T]{values: vs, set: true, multi: true}
}

func (l List[T]) IsSet() bool { return l.set }

// IsMulti reports whether the caller supplied list form, even with one element.
func (l List[T]) IsMulti() bool { return l.multi }

func (l List[T]) MarshalJSON() ([]byte, error) {
	if !l.set {
		return []byte("null"), nil
	}
	if !l.multi && len(l.values) == 1 {
		return json.Marshal(l.values[0])
	}
	return json.Marshal(l.values)
}

func (l *List[T]) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*l = List[T]{}
		return nil
	}
	if len(data) > 0 && data[0] == '[' {
		var vs []T
		if err := json.Unmarshal(data, &vs); err != nil {
			return err
		}
		*l = Many(vs...)
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*l = Single(v)
	return nil
}

// NormalizeToList returns def (or an empty list) when the option is unset,
// and the supplied values otherwise.
func NormalizeToList[T any](option List[T], def []T) []T {
	if !option.set {
		if def == nil {
			return []T{}
		}
		return def
	}
	if option.values == nil {
		return []T{}
	}
	return option.values
}

// NormalizePossibleIntegerList normalizes the option and turns every purely
// numeric label ("3", "07") into an index identifier.
func NormalizePossibleIntegerList(option List[Identifier], def []Identifier) []Identifier {
	in := NormalizeToList(option, def)
	out := make([]Identifier, len(in))
	for i, id := range in {
		out[i] = PossibleInteger(id)
	}
	return out
}

// PossibleInteger converts a label made only of ASCII digits into an index.
func PossibleInteger(id Identifier) Identifier {
	if id.numeric || !isDigits(id.label) {
		return id
	}
	n, err := strconv.Atoi(id.label)
	if err != nil {
		return IndexID(0)
	}
	return IndexID(n)
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
