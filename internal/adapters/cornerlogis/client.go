// Package cornerlogis provides the fulfillment partner shipment API client
package cornerlogis

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	perr "tradein/internal/platform/errors"
	"tradein/internal/platform/logger"
)

const (
	defaultTimeout = 15 * time.Second
	defaultUA      = "tradein-shipsync"
)

// Options configures the Client
type Options struct {
	BaseURL    string
	APIKey     string
	CenterCode string // fulfillment center the shipments are routed to
	UserAgent  string
	Timeout    time.Duration
}

// Client creates outbound shipment orders
type Client struct {
	http *http.Client
	opts Options
	log  logger.Logger
	now  func() time.Time
}

// NewClient creates a Client with sane defaults
func NewClient(o Options) *Client {
	if o.UserAgent == "" {
		o.UserAgent = defaultUA
	}
	if o.Timeout <= 0 {
		o.Timeout = defaultTimeout
	}
	return &Client{
		http: &http.Client{Timeout: o.Timeout},
		opts: o,
		log:  *logger.Named("cornerlogis"),
		now:  time.Now,
	}
}

// Shipment is the outbound order submission schema
type Shipment struct {
	OrderNo    string         `json:"orderNo" validate:"required"`
	CenterCode string         `json:"centerCode" validate:"required"`
	Receiver   string         `json:"receiverName" validate:"required"`
	Phone      string         `json:"receiverPhone" validate:"required"`
	Zip        string         `json:"receiverZip" validate:"required"`
	Address    string         `json:"receiverAddress" validate:"required"`
	Memo       string         `json:"deliveryMemo,omitempty"`
	Items      []ShipmentItem `json:"items" validate:"required,min=1,dive"`
}

// ShipmentItem is one outbound line keyed by the partner's item code
type ShipmentItem struct {
	ItemCode string `json:"itemCode" validate:"required"`
	Qty      int    `json:"qty" validate:"required,min=1"`
}

type createResponse struct {
	ShipmentID string `json:"shipmentId"`
	Message    string `json:"message,omitempty"`
}

// CreateShipment submits one shipment and returns the partner's shipment id.
// Transport failures and 5xx are retry-worthy; schema rejections are terminal
func (c *Client) CreateShipment(ctx context.Context, s Shipment) (string, error) {
	if s.CenterCode == "" {
		s.CenterCode = c.opts.CenterCode
	}
	body, err := json.Marshal(s)
	if err != nil {
		return "", perr.Wrapf(err, perr.ErrorCodeJSON, "cornerlogis encode failed")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.opts.BaseURL+"/outbound/orders", bytes.NewReader(body))
	if err != nil {
		return "", perr.Wrapf(err, perr.ErrorCodeUnknown, "cornerlogis new request failed")
	}
	req.Header.Set("User-Agent", c.opts.UserAgent)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Api-Key", c.opts.APIKey)

	start := c.now()
	resp, err := c.http.Do(req)
	if err != nil {
		return "", perr.Wrapf(err, perr.ErrorCodeTransient, "cornerlogis submit failed")
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			c.log.Error().Err(cerr).Msg("cornerlogis close body failed")
		}
	}()

	c.log.Debug().
		Str("order_no", s.OrderNo).
		Int("status", resp.StatusCode).
		Dur("latency", c.now().Sub(start)).
		Msg("cornerlogis submit")

	switch {
	case resp.StatusCode == http.StatusOK, resp.StatusCode == http.StatusCreated:
	case resp.StatusCode == http.StatusTooManyRequests:
		return "", perr.RateLimitedf("cornerlogis rate limited")
	case resp.StatusCode >= 500:
		return "", perr.Transientf("cornerlogis status %d", resp.StatusCode)
	case resp.StatusCode == http.StatusConflict:
		return "", perr.DuplicateKeyf("cornerlogis duplicate order %s", s.OrderNo)
	default:
		tail, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return "", perr.Dispatchf("cornerlogis status %d body %s", resp.StatusCode, string(tail))
	}

	var out createResponse
	b, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err := json.Unmarshal(b, &out); err != nil {
		return "", perr.Wrapf(err, perr.ErrorCodeTransient, "cornerlogis decode failed")
	}
	return out.ShipmentID, nil
}
