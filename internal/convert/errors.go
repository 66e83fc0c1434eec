package convert

import "errors"

var (
	ErrMissingSpreadsheetID = errors.New("missing spreadsheet id")
	ErrNoWorksheetFound     = errors.New("no worksheet found")
	ErrCredentialsParse     = errors.New("cannot parse service account credentials")
)
