package shopby

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"

	perr "tradein/internal/platform/errors"
)

// delivery registration defaults; the storefront treats the invoice push as
// the transition into DELIVERY_ING
const (
	defaultCourier         = "POST"
	statusDeliveryStarting = "DELIVERY_ING"
)

// OrderDetail is the storefront's delivery linkage for one order.
// ShippingNo is the handle the change-status endpoint is keyed by
type OrderDetail struct {
	OrderNo    string `json:"orderNo"`
	ShippingNo string `json:"originalDeliveryNo"`
}

// GetOrderDetail fetches one order's delivery linkage. A missing order comes
// back as NotFound so callers can tell absence from a transport failure
func (c *Client) GetOrderDetail(ctx context.Context, orderNo string) (OrderDetail, error) {
	u := c.opts.BaseURL + "/orders/" + url.PathEscape(orderNo)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return OrderDetail{}, perr.Wrapf(err, perr.ErrorCodeUnknown, "shopby new request failed")
	}
	c.setHeaders(req)

	start := c.now()
	resp, err := c.http.Do(req)
	if err != nil {
		return OrderDetail{}, perr.Wrapf(err, perr.ErrorCodeTransient, "shopby order detail failed")
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			c.log.Error().Err(cerr).Msg("shopby close body failed")
		}
	}()

	c.log.Debug().
		Str("order_no", orderNo).
		Int("status", resp.StatusCode).
		Dur("latency", c.now().Sub(start)).
		Msg("shopby order detail")

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return OrderDetail{}, perr.NotFoundf("shopby order %s not found", orderNo)
	case resp.StatusCode == http.StatusTooManyRequests:
		return OrderDetail{}, perr.RateLimitedf("shopby rate limited")
	case resp.StatusCode >= 500:
		return OrderDetail{}, perr.Transientf("shopby status %d", resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		tail, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return OrderDetail{}, perr.Newf(perr.ErrorCodeUnknown, "shopby status %d body %s", resp.StatusCode, string(tail))
	}

	var out OrderDetail
	b, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return OrderDetail{}, perr.Wrapf(err, perr.ErrorCodeTransient, "shopby read body failed")
	}
	if err := json.Unmarshal(b, &out); err != nil {
		return OrderDetail{}, perr.Wrapf(err, perr.ErrorCodeTransient, "shopby decode failed")
	}
	return out, nil
}

// RegisterInvoice records a courier invoice number against a shipping number
// and moves the order into delivery. The endpoint is idempotent on the vendor
// side, so re-registering the same invoice is harmless
func (c *Client) RegisterInvoice(ctx context.Context, shippingNo, invoiceNo string) error {
	payload, err := json.Marshal(map[string]string{
		"shippingNo":          shippingNo,
		"deliveryCompanyType": defaultCourier,
		"invoiceNo":           invoiceNo,
		"orderStatusType":     statusDeliveryStarting,
	})
	if err != nil {
		return perr.Wrapf(err, perr.ErrorCodeJSON, "shopby encode failed")
	}

	u := c.opts.BaseURL + "/orders/change-status/by-shipping-no"
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, u, bytes.NewReader(payload))
	if err != nil {
		return perr.Wrapf(err, perr.ErrorCodeUnknown, "shopby new request failed")
	}
	c.setHeaders(req)
	req.Header.Set("Content-Type", "application/json")

	start := c.now()
	resp, err := c.http.Do(req)
	if err != nil {
		return perr.Wrapf(err, perr.ErrorCodeTransient, "shopby register invoice failed")
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			c.log.Error().Err(cerr).Msg("shopby close body failed")
		}
	}()

	c.log.Debug().
		Str("shipping_no", shippingNo).
		Int("status", resp.StatusCode).
		Dur("latency", c.now().Sub(start)).
		Msg("shopby register invoice")

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return perr.RateLimitedf("shopby rate limited")
	case resp.StatusCode >= 500:
		return perr.Transientf("shopby status %d", resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		tail, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return perr.Dispatchf("shopby status %d body %s", resp.StatusCode, string(tail))
	}
	return nil
}
