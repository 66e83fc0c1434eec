package normalize

import "strings"

// SetPropertyTree assigns value at path inside target, creating intermediate
// objects where a segment is missing or does not hold an object. An empty
// leading segment leaves target untouched.
func SetPropertyTree(target map[string]any, path []string, value any) {
	if target == nil || len(path) == 0 || path[0] == "" {
		return
	}

	prop := path[0]
	if len(path) == 1 {
		target[prop] = value
		return
	}

	child, ok := target[prop].(map[string]any)
	if !ok {
		child = map[string]any{}
		target[prop] = child
	}
	SetPropertyTree(child, path[1:], value)
}

// SplitPropertyPath splits a dotted header such as "address.city" into segments.
func SplitPropertyPath(s string) []string {
	return strings.Split(s, ".")
}
