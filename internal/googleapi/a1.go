package googleapi

import "strings"

// QuoteSheetName renders a sheet title for use in an A1 range.
func QuoteSheetName(title string) string {
	return "'" + strings.ReplaceAll(title, "'", "''") + "'"
}

// UnquoteSheetName reverses QuoteSheetName. Unquoted names pass through.
func UnquoteSheetName(name string) (string, bool) {
	name = strings.TrimSpace(name)
	if !strings.HasPrefix(name, "'") {
		return name, name != ""
	}
	if !strings.HasSuffix(name, "'") || len(name) < 2 {
		return "", false
	}
	return strings.ReplaceAll(name[1:len(name)-1], "''", "'"), true
}
