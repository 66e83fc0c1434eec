package normalize

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

type nameModeKind int

const (
	kindCamel nameModeKind = iota
	kindPascal
	kindNoSpace
	kindVerbatim
	kindCustom
)

// NameMode selects how a header label becomes a property name. The zero
// value is Camel.
type NameMode struct {
	kind nameModeKind
	fn   func(string) string
}

var (
	Camel    = NameMode{kind: kindCamel}
	Pascal   = NameMode{kind: kindPascal}
	NoSpace  = NameMode{kind: kindNoSpace}
	Verbatim = NameMode{kind: kindVerbatim}
)

// Custom hands the raw label to fn and uses its result as is.
func Custom(fn func(string) string) NameMode {
	if fn == nil {
		return Verbatim
	}
	return NameMode{kind: kindCustom, fn: fn}
}

func ParseNameMode(s string) (NameMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "camel":
		return Camel, nil
	case "pascal":
		return Pascal, nil
	case "nospace":
		return NoSpace, nil
	case "verbatim", "none":
		return Verbatim, nil
	default:
		return NameMode{}, fmt.Errorf("unknown property mode %q (expected camel|pascal|nospace|verbatim)", s)
	}
}

func (m NameMode) String() string {
	switch m.kind {
	case kindPascal:
		return "pascal"
	case kindNoSpace:
		return "nospace"
	case kindVerbatim:
		return "verbatim"
	case kindCustom:
		return "custom"
	default:
		return "camel"
	}
}

// HandlePropertyName turns a header label such as "Full Name" into a
// property name according to mode. Words are split on spaces and hyphens only.
func HandlePropertyName(label string, mode NameMode) string {
	if mode.kind == kindCustom {
		return mode.fn(label)
	}

	name := strings.TrimSpace(label)
	switch mode.kind {
	case kindCamel:
		parts := words(cases.Lower(language.Und).String(name))
		for i := 1; i < len(parts); i++ {
			parts[i] = capitalize(parts[i])
		}
		return strings.Join(parts, "")
	case kindPascal:
		parts := words(cases.Lower(language.Und).String(name))
		for i := range parts {
			parts[i] = capitalize(parts[i])
		}
		return strings.Join(parts, "")
	case kindNoSpace:
		return strings.Join(words(name), "")
	default:
		return name
	}
}

func words(phrase string) []string {
	return strings.Split(strings.ReplaceAll(phrase, "-", " "), " ")
}

func capitalize(word string) string {
	if word == "" {
		return word
	}
	_, size := utf8.DecodeRuneInString(word)
	// Casers carry state, so one is built per call.
	return cases.Upper(language.Und).String(word[:size]) + word[size:]
}
