package cornerlogis

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	perr "tradein/internal/platform/errors"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(Options{BaseURL: srv.URL, APIKey: "key"})
}

func TestListShippedWithInvoices_MergesStatuses(t *testing.T) {
	t.Parallel()

	// ORD-1 appears under both statuses; ORD-2 has no invoice yet
	bodies := map[string]string{
		statusProgressing: `{"data":{"list":[
			{"cornerOrderId":"C-1","companyOrderId":"ORD-1","orderItems":[
				{"status":"PROGRESSING_SHIPMENTS","delivery":{"code":"INV-1","pickupCompleteAt":"2025-08-14 10:00:00"}}]},
			{"cornerOrderId":"C-2","companyOrderId":"ORD-2","orderItems":[
				{"status":"PROGRESSING_SHIPMENTS","delivery":{"code":""}}]}]}}`,
		statusCompleted: `{"data":{"list":[
			{"cornerOrderId":"C-1","companyOrderId":"ORD-1","orderItems":[
				{"status":"COMPLETED_SHIPMENTS","delivery":{"code":"INV-1","arrivalAt":"2025-08-15 09:00:00"}}]},
			{"cornerOrderId":"C-3","companyOrderId":"ORD-3","orderItems":[
				{"status":"COMPLETED_SHIPMENTS","delivery":{"code":"INV-3"}}]}]}}`,
	}
	var gotKey string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("X-Api-Key")
		w.Write([]byte(bodies[r.URL.Query().Get("statusList")]))
	})

	got, err := c.ListShippedWithInvoices(context.Background())
	if err != nil {
		t.Fatalf("ListShippedWithInvoices: %v", err)
	}
	if gotKey != "key" {
		t.Fatalf("X-Api-Key = %q", gotKey)
	}
	if len(got) != 2 {
		t.Fatalf("shipments = %+v, want ORD-1 once and ORD-3", got)
	}
	if got[0].CompanyRef != "ORD-1" || got[0].InvoiceNo != "INV-1" || got[0].Status != "PROGRESSING_SHIPMENTS" {
		t.Fatalf("first = %+v, the progressing listing must win the dedupe", got[0])
	}
	if got[1].CompanyRef != "ORD-3" || got[1].InvoiceNo != "INV-3" {
		t.Fatalf("second = %+v", got[1])
	}
}

func TestListShippedWithInvoices_PageFailureAborts(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("statusList") == statusCompleted {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"data":{"list":[{"companyOrderId":"ORD-1","orderItems":[{"delivery":{"code":"INV-1"}}]}]}}`))
	})

	got, err := c.ListShippedWithInvoices(context.Background())
	if !perr.IsCode(err, perr.ErrorCodeTransient) {
		t.Fatalf("code = %v, want transient", perr.CodeOf(err))
	}
	if got != nil {
		t.Fatalf("partial listing returned: %+v", got)
	}
}

func TestStorefrontOrderNo(t *testing.T) {
	t.Parallel()

	cases := []struct {
		ref, want string
	}{
		{"202508141241584834", "202508141241584834"},
		{"202508141241584834 (N: 2025081427063970)", "202508141241584834"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := StorefrontOrderNo(tc.ref); got != tc.want {
			t.Fatalf("StorefrontOrderNo(%q) = %q, want %q", tc.ref, got, tc.want)
		}
	}
}
