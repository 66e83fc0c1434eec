package cmd

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/99designs/keyring"
	"google.golang.org/api/option"

	"github.com/steipete/sheetrecords/internal/convert"
	"github.com/steipete/sheetrecords/internal/googleapi"
	"github.com/steipete/sheetrecords/internal/secrets"
)

func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	return captureFile(t, &os.Stdout, fn)
}

func captureStderr(t *testing.T, fn func()) string {
	t.Helper()
	return captureFile(t, &os.Stderr, fn)
}

func captureFile(t *testing.T, target **os.File, fn func()) string {
	t.Helper()

	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe: %v", err)
	}
	orig := *target
	*target = w

	done := make(chan string)
	go func() {
		var buf bytes.Buffer
		_, _ = io.Copy(&buf, r)
		done <- buf.String()
	}()

	defer func() {
		*target = orig
	}()
	fn()
	_ = w.Close()
	*target = orig
	return <-done
}

// isolateEnv points config lookups at a temp dir and clears SHEETRECORDS_* env.
func isolateEnv(t *testing.T) {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", home)
	for _, k := range []string{
		"SHEETRECORDS_COLOR",
		"SHEETRECORDS_ACCOUNT",
		"SHEETRECORDS_CREDENTIALS",
		"SHEETRECORDS_API_KEY",
		"SHEETRECORDS_JSON",
		"SHEETRECORDS_PLAIN",
	} {
		t.Setenv(k, "")
	}
}

func newMemSecretsStore() *secrets.KeyringStore {
	return secrets.NewKeyringStore(keyring.NewArrayKeyring(nil))
}

func useSecretsStore(t *testing.T, store secrets.Store) {
	t.Helper()
	orig := openSecretsStore
	t.Cleanup(func() { openSecretsStore = orig })
	openSecretsStore = func() (secrets.Store, error) { return store, nil }
}

// useSheetsServer routes the Sheets client to a fake server with a "Book"
// spreadsheet (s1) holding the worksheets People and Orders.
func useSheetsServer(t *testing.T) {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := strings.TrimPrefix(r.URL.Path, "/sheets/v4")
		path = strings.TrimPrefix(path, "/v4")
		if r.Method != http.MethodGet {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		switch path {
		case "/spreadsheets/s1":
			_ = json.NewEncoder(w).Encode(map[string]any{
				"spreadsheetId": "s1",
				"properties":    map[string]any{"title": "Book"},
				"sheets": []map[string]any{
					{"properties": map[string]any{"sheetId": 1, "title": "People", "index": 0, "gridProperties": map[string]any{"rowCount": 3, "columnCount": 3}}},
					{"properties": map[string]any{"sheetId": 2, "title": "Orders", "index": 1, "gridProperties": map[string]any{"rowCount": 2, "columnCount": 2}}},
				},
			})
		case "/spreadsheets/s1/values/'People'":
			_ = json.NewEncoder(w).Encode(map[string]any{
				"range": "People!A1:C3",
				"values": [][]any{
					{"id", "first name", "address.city"},
					{"1", "Alice", "Berlin"},
					{"", "ghost"},
					{"2", "Bob"},
				},
			})
		case "/spreadsheets/s1/values/'Orders'":
			_ = json.NewEncoder(w).Encode(map[string]any{
				"range": "Orders!A1:B2",
				"values": [][]any{
					{"order", "total"},
					{"o-1", "9.50"},
				},
			})
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)

	orig := newOpener
	t.Cleanup(func() { newOpener = orig })
	newOpener = func(flags *rootFlags) convert.Opener {
		return &googleapi.Opener{
			APIKey: flags.APIKey,
			ClientOptions: []option.ClientOption{
				option.WithHTTPClient(srv.Client()),
				option.WithEndpoint(srv.URL + "/"),
			},
		}
	}
}
