package googleapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"sync/atomic"
	"testing"

	ggoogleapi "google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/steipete/sheetrecords/internal/convert"
	"github.com/steipete/sheetrecords/internal/normalize"
)

func newTestServer(t *testing.T, valueCalls *atomic.Int32) *httptest.Server {
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
					{"properties": map[string]any{"sheetId": 10, "title": "People", "index": 0, "gridProperties": map[string]any{"rowCount": 1000, "columnCount": 26}}},
					{"properties": map[string]any{"sheetId": 11, "title": "Bob's", "index": 1}},
				},
			})
		case "/spreadsheets/s1/values/'People'":
			if valueCalls != nil {
				valueCalls.Add(1)
			}
			if got := r.URL.Query().Get("valueRenderOption"); got != "FORMATTED_VALUE" {
				t.Errorf("unexpected render option %q", got)
			}
			_ = json.NewEncoder(w).Encode(map[string]any{
				"range": "People!A1:Z1000",
				"values": [][]any{
					{"id", " name ", ""},
					{"1", "Alice"},
					{},
					{"2", ""},
					{3, "Carol"},
				},
			})
		case "/spreadsheets/s1/values/'Bob''s'":
			_ = json.NewEncoder(w).Encode(map[string]any{
				"values": [][]any{{"k", "k"}, {"a", "b"}},
			})
		default:
			w.WriteHeader(http.StatusNotFound)
			_ = json.NewEncoder(w).Encode(map[string]any{
				"error": map[string]any{"code": 404, "message": "Requested entity was not found.", "status": "NOT_FOUND"},
			})
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func testOpener(srv *httptest.Server) *Opener {
	return &Opener{ClientOptions: []option.ClientOption{
		option.WithHTTPClient(srv.Client()),
		option.WithEndpoint(srv.URL + "/"),
	}}
}

func TestSpreadsheet_LoadInfoAndRows(t *testing.T) {
	var calls atomic.Int32
	srv := newTestServer(t, &calls)

	ss, err := testOpener(srv).Open(context.Background(), "s1", nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := ss.LoadInfo(context.Background()); err != nil {
		t.Fatalf("LoadInfo: %v", err)
	}
	if ss.Title() != "Book" {
		t.Fatalf("title: %q", ss.Title())
	}
	sheets := ss.Worksheets()
	if len(sheets) != 2 || sheets[0].Title() != "People" || sheets[1].Title() != "Bob's" {
		t.Fatalf("unexpected worksheets: %#v", sheets)
	}
	if sheets[0].RowCount() != 1000 {
		t.Fatalf("row count: %d", sheets[0].RowCount())
	}

	people := sheets[0]
	if err := people.LoadCells(context.Background()); err != nil {
		t.Fatalf("LoadCells: %v", err)
	}
	if got := people.HeaderValues(); !reflect.DeepEqual(got, []string{"id", "name"}) {
		t.Fatalf("headers: %#v", got)
	}
	rows, err := people.GetRows(context.Background())
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	want := []convert.Row{
		{"id": "1", "name": "Alice"},
		{"id": "", "name": ""},
		{"id": "2", "name": ""},
		{"id": "3", "name": "Carol"},
	}
	if !reflect.DeepEqual(rows, want) {
		t.Fatalf("rows: %#v", rows)
	}
	if calls.Load() != 1 {
		t.Fatalf("expected one values call, got %d", calls.Load())
	}
}

func TestSpreadsheet_DuplicateHeaders(t *testing.T) {
	srv := newTestServer(t, nil)
	ss, err := testOpener(srv).Open(context.Background(), "s1", nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := ss.LoadInfo(context.Background()); err != nil {
		t.Fatalf("LoadInfo: %v", err)
	}
	err = ss.Worksheets()[1].LoadCells(context.Background())
	if err == nil || !strings.Contains(err.Error(), "duplicate header") {
		t.Fatalf("expected duplicate header error, got %v", err)
	}
}

func TestSpreadsheet_NotFound(t *testing.T) {
	srv := newTestServer(t, nil)
	ss, err := testOpener(srv).Open(context.Background(), "missing", nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	err = ss.LoadInfo(context.Background())
	var gerr *ggoogleapi.Error
	if !errors.As(err, &gerr) || gerr.Code != http.StatusNotFound {
		t.Fatalf("expected google api 404, got %v", err)
	}
}

func TestSpreadsheetToJSON_EndToEnd(t *testing.T) {
	srv := newTestServer(t, nil)

	res, err := convert.SpreadsheetToJSON(context.Background(), testOpener(srv), convert.Options{
		SpreadsheetID: "s1",
		Worksheet:     normalize.Single(normalize.LabelID("People")),
	})
	if err != nil {
		t.Fatalf("SpreadsheetToJSON: %v", err)
	}
	out, err := json.Marshal(res)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(out) != `[{"id":"1","name":"Alice"},{"id":"2"},{"id":"3","name":"Carol"}]` {
		t.Fatalf("unexpected: %s", out)
	}
}

func TestNewSheets_BadCredentials(t *testing.T) {
	if _, err := NewSheets(context.Background(), []byte(`{}`), ""); err == nil {
		t.Fatalf("expected error")
	}
}

func TestQuoteSheetName(t *testing.T) {
	for _, title := range []string{"Sheet1", "Bob's", "a b", "''"} {
		quoted := QuoteSheetName(title)
		got, ok := UnquoteSheetName(quoted)
		if !ok || got != title {
			t.Fatalf("round trip %q -> %q -> %q", title, quoted, got)
		}
	}
	if got, ok := UnquoteSheetName("Plain"); !ok || got != "Plain" {
		t.Fatalf("unexpected: %q", got)
	}
	if _, ok := UnquoteSheetName("'open"); ok {
		t.Fatalf("expected not ok")
	}
}
