package cornerlogis

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"

	perr "tradein/internal/platform/errors"
)

// shipment statuses that can already carry an invoice number
const (
	statusProgressing = "PROGRESSING_SHIPMENTS"
	statusCompleted   = "COMPLETED_SHIPMENTS"
)

// OutboundShipment is one partner order whose courier has assigned an
// invoice number. CompanyRef is the partner's companyOrderId as received;
// StorefrontOrderNo extracts the storefront order number from it
type OutboundShipment struct {
	CornerOrderID string
	CompanyRef    string
	InvoiceNo     string
	Status        string
	PickedUpAt    string
	ArrivedAt     string
}

type outboundEnvelope struct {
	Data struct {
		List []outboundOrder `json:"list"`
	} `json:"data"`
}

type outboundOrder struct {
	CornerOrderID  string         `json:"cornerOrderId"`
	CompanyOrderID string         `json:"companyOrderId"`
	OrderItems     []outboundItem `json:"orderItems"`
}

type outboundItem struct {
	Status   string `json:"status"`
	Delivery struct {
		Code             string `json:"code"`
		PickupCompleteAt string `json:"pickupCompleteAt"`
		ArrivalAt        string `json:"arrivalAt"`
	} `json:"delivery"`
}

// ListShippedWithInvoices returns the orders in progressing or completed
// shipment status that already carry an invoice number. Orders appearing under
// both statuses are reported once; the first item with an invoice wins.
// Any page failure aborts the whole listing
func (c *Client) ListShippedWithInvoices(ctx context.Context) ([]OutboundShipment, error) {
	var merged []outboundOrder
	seen := map[string]bool{}
	for _, status := range []string{statusProgressing, statusCompleted} {
		batch, err := c.getOrders(ctx, status)
		if err != nil {
			return nil, err
		}
		for _, o := range batch {
			if seen[o.CompanyOrderID] {
				continue
			}
			seen[o.CompanyOrderID] = true
			merged = append(merged, o)
		}
	}

	var out []OutboundShipment
	for _, o := range merged {
		for _, item := range o.OrderItems {
			if item.Delivery.Code == "" {
				continue
			}
			out = append(out, OutboundShipment{
				CornerOrderID: o.CornerOrderID,
				CompanyRef:    o.CompanyOrderID,
				InvoiceNo:     item.Delivery.Code,
				Status:        item.Status,
				PickedUpAt:    item.Delivery.PickupCompleteAt,
				ArrivedAt:     item.Delivery.ArrivalAt,
			})
			break
		}
	}
	return out, nil
}

func (c *Client) getOrders(ctx context.Context, status string) ([]outboundOrder, error) {
	u := c.opts.BaseURL + "/api/v1/order/getOrders?statusList=" + url.QueryEscape(status)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeUnknown, "cornerlogis new request failed")
	}
	req.Header.Set("User-Agent", c.opts.UserAgent)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Api-Key", c.opts.APIKey)

	start := c.now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeTransient, "cornerlogis list failed")
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			c.log.Error().Err(cerr).Msg("cornerlogis close body failed")
		}
	}()

	c.log.Debug().
		Str("status_list", status).
		Int("status", resp.StatusCode).
		Dur("latency", c.now().Sub(start)).
		Msg("cornerlogis list")

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, perr.RateLimitedf("cornerlogis rate limited")
	case resp.StatusCode >= 500:
		return nil, perr.Transientf("cornerlogis status %d", resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		tail, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, perr.Newf(perr.ErrorCodeUnknown, "cornerlogis status %d body %s", resp.StatusCode, string(tail))
	}

	var out outboundEnvelope
	b, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeTransient, "cornerlogis read body failed")
	}
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeTransient, "cornerlogis decode failed")
	}
	return out.Data.List, nil
}

// StorefrontOrderNo extracts the storefront order number from a companyOrderId.
// The partner appends a tracking suffix for renewed orders:
// "202508141241584834 (N: 2025081427063970)" -> "202508141241584834"
func StorefrontOrderNo(companyRef string) string {
	if i := strings.Index(companyRef, " (N:"); i >= 0 {
		return companyRef[:i]
	}
	return companyRef
}
