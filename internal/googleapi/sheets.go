package googleapi

import (
	"context"
	"fmt"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// NewSheets builds a read-only Sheets client. credentials is a service
// account (or other Google credentials) JSON document; without it the client
// uses apiKey, or no authentication at all for public spreadsheets.
func NewSheets(ctx context.Context, credentials []byte, apiKey string, extra ...option.ClientOption) (*sheets.Service, error) {
	opts := make([]option.ClientOption, 0, len(extra)+1)
	switch {
	case len(credentials) > 0:
		creds, err := google.CredentialsFromJSON(ctx, credentials, sheets.SpreadsheetsReadonlyScope)
		if err != nil {
			return nil, fmt.Errorf("service account credentials: %w", err)
		}
		opts = append(opts, option.WithCredentials(creds))
	case apiKey != "":
		opts = append(opts, option.WithAPIKey(apiKey))
	default:
		opts = append(opts, option.WithoutAuthentication())
	}
	opts = append(opts, extra...)

	svc, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("building sheets service: %w", err)
	}
	return svc, nil
}
