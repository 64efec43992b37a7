package sheets

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	perr "tradein/internal/platform/errors"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(Options{
		BaseURL:       srv.URL,
		Token:         "tok",
		SpreadsheetID: "sheet-1",
		WatchTab:      "watch",
		MappingTab:    "map",
		IntakeTab:     "watch",
	})
}

func valuesJSON(values [][]string) string {
	b, _ := json.Marshal(map[string]any{"values": values})
	return string(b)
}

func TestReadWatchedRows_PositionalColumns(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, "sheet-1") {
			t.Errorf("path = %s", r.URL.Path)
		}
		//                      A   B        C                D        E         F      G   H       I             J   K   L       M
		_, _ = w.Write([]byte(valuesJSON([][]string{
			{"1", "김철수", "010-1234-5678", "12345", "서울시", "1/2", "", "접수", "2024-01-15", "", "", "입고", "123456789"},
		})))
	})

	rows, err := c.ReadWatchedRows(context.Background())
	if err != nil {
		t.Fatalf("ReadWatchedRows: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("rows = %d", len(rows))
	}
	r := rows[0]
	if r.Row != 2 {
		t.Fatalf("row number = %d, want 2 (data starts under the header)", r.Row)
	}
	if r.Name != "김철수" || r.Phone != "010-1234-5678" || r.Tracking != "123456789" || r.Arrival != "입고" {
		t.Fatalf("row = %+v", r)
	}
}

func TestReadWatchedRows_ShortRowsPadded(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(valuesJSON([][]string{{"", "김철수"}})))
	})

	rows, err := c.ReadWatchedRows(context.Background())
	if err != nil {
		t.Fatalf("ReadWatchedRows: %v", err)
	}
	if rows[0].Tracking != "" || rows[0].Arrival != "" {
		t.Fatalf("short row = %+v", rows[0])
	}
}

func TestReadWatchedRows_ServerErrorIsTransient(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := c.ReadWatchedRows(context.Background())
	if err == nil {
		t.Fatalf("expected error")
	}
	if !perr.IsCode(err, perr.ErrorCodeTransient) {
		t.Fatalf("code = %v, want transient", perr.CodeOf(err))
	}
}

func TestReadSkuMapping_SkipsHeaderAndBlanks(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(valuesJSON([][]string{
			{"store_sku", "logis_code"},
			{"SKU-1", "ITEM-1"},
			{"SKU-2", ""},
			{"", "ITEM-3"},
			{" SKU-4 ", " ITEM-4 "},
		})))
	})

	m, err := c.ReadSkuMapping(context.Background())
	if err != nil {
		t.Fatalf("ReadSkuMapping: %v", err)
	}
	if len(m) != 2 {
		t.Fatalf("mapping = %v", m)
	}
	if m["SKU-1"] != "ITEM-1" || m["SKU-4"] != "ITEM-4" {
		t.Fatalf("mapping = %v", m)
	}
}

func TestAppendTradeInRows_OneRowPerBox(t *testing.T) {
	t.Parallel()

	var got struct {
		Values [][]string `json:"values"`
	}
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, ":append") {
			t.Errorf("path = %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode: %v", err)
		}
		_, _ = w.Write([]byte(`{}`))
	})

	rows := []TradeInRow{
		{Name: "김철수", Phone: "010-1234-5678", Postal: "12345", Address: "서울시", RequestDate: "2024-01-15", BoxNo: 1, BoxTotal: 2},
		{Name: "김철수", Phone: "010-1234-5678", Postal: "12345", Address: "서울시", RequestDate: "2024-01-15", BoxNo: 2, BoxTotal: 2},
	}
	if err := c.AppendTradeInRows(context.Background(), rows); err != nil {
		t.Fatalf("AppendTradeInRows: %v", err)
	}
	if len(got.Values) != 2 {
		t.Fatalf("appended %d rows, want 2", len(got.Values))
	}
	if got.Values[0][colBoxes] != "1/2" || got.Values[1][colBoxes] != "2/2" {
		t.Fatalf("box labels = %q %q", got.Values[0][colBoxes], got.Values[1][colBoxes])
	}
	if got.Values[0][colRequested] != "2024-01-15" {
		t.Fatalf("requested = %q", got.Values[0][colRequested])
	}
}

func TestAppendTradeInRows_EmptyIsNoop(t *testing.T) {
	t.Parallel()

	called := false
	c := newTestClient(t, func(http.ResponseWriter, *http.Request) { called = true })
	if err := c.AppendTradeInRows(context.Background(), nil); err != nil {
		t.Fatalf("AppendTradeInRows: %v", err)
	}
	if called {
		t.Fatalf("server hit for empty append")
	}
}
