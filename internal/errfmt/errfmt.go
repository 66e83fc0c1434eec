package errfmt

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/99designs/keyring"
	ggoogleapi "google.golang.org/api/googleapi"

	"github.com/steipete/sheetrecords/internal/convert"
	"github.com/steipete/sheetrecords/internal/normalize"
)

func Format(err error) string {
	if err == nil {
		return ""
	}

	if errors.Is(err, convert.ErrNoWorksheetFound) {
		return err.Error() + "\nRun: sheetrecords worksheets <spreadsheetId> to list worksheet indexes and titles"
	}

	if errors.Is(err, convert.ErrMissingSpreadsheetID) {
		return "Missing spreadsheet id. Pass it as an argument or set spreadsheetId in --options"
	}

	if errors.Is(err, normalize.ErrInvalidIdentifier) {
		return err.Error() + "\nColumns are numbers (1, 2, ...) or letters (A, B, ..., AA)"
	}

	if errors.Is(err, convert.ErrCredentialsParse) {
		return err.Error() + "\nPass a service account JSON document or a path to one with --credentials"
	}

	if errors.Is(err, keyring.ErrKeyNotFound) {
		return "Credentials not found in keyring. Run: sheetrecords auth set <name> <credentials.json>"
	}

	if errors.Is(err, os.ErrNotExist) {
		return err.Error()
	}

	var gerr *ggoogleapi.Error
	if errors.As(err, &gerr) {
		reason := ""
		if len(gerr.Errors) > 0 && gerr.Errors[0].Reason != "" {
			reason = gerr.Errors[0].Reason
		}

		msg := gerr.Message
		if msg == "" {
			msg = strings.TrimSpace(gerr.Body)
		}
		hint := ""
		switch gerr.Code {
		case 401, 403:
			hint = "\nShare the spreadsheet with the service account's client_email, or check the credentials"
		case 404:
			hint = "\nCheck the spreadsheet id"
		}

		if reason != "" {
			return fmt.Sprintf("Google API error (%d %s): %s%s", gerr.Code, reason, msg, hint)
		}

		return fmt.Sprintf("Google API error (%d): %s%s", gerr.Code, msg, hint)
	}

	return err.Error()
}
