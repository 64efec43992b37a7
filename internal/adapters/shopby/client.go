// Package shopby provides the storefront order API client
package shopby

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	perr "tradein/internal/platform/errors"
	"tradein/internal/platform/logger"
)

const (
	defaultTimeout = 15 * time.Second
	defaultUA      = "tradein-shipsync"
	defaultPerPage = 100
)

// Options configures the Client
type Options struct {
	BaseURL   string
	ClientID  string
	Secret    string
	MallNo    string
	UserAgent string
	Timeout   time.Duration
	PerPage   int
}

// Client lists storefront orders
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
	if o.PerPage <= 0 {
		o.PerPage = defaultPerPage
	}
	return &Client{
		http: &http.Client{Timeout: o.Timeout},
		opts: o,
		log:  *logger.Named("shopby"),
		now:  time.Now,
	}
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("User-Agent", c.opts.UserAgent)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("clientId", c.opts.ClientID)
	req.Header.Set("Authorization", "Bearer "+c.opts.Secret)
	if c.opts.MallNo != "" {
		req.Header.Set("mallNo", c.opts.MallNo)
	}
}

// Order is one paid storefront order.
// OrderedAt stays in the vendor's "2006-01-02 15:04:05" string form
type Order struct {
	OrderNo   string   `json:"orderNo"`
	OrderedAt string   `json:"orderYmdt"`
	Receiver  Receiver `json:"receiver"`
	Items     []Item   `json:"orderProducts"`
}

// Receiver is the shipping recipient on an order
type Receiver struct {
	Name    string `json:"receiverName"`
	Phone   string `json:"receiverContact"`
	Zip     string `json:"receiverZipCd"`
	Address string `json:"receiverAddress"`
	Detail  string `json:"receiverDetailAddress,omitempty"`
	Memo    string `json:"deliveryMemo,omitempty"`
}

// Item is one order line
type Item struct {
	SKU    string `json:"productManagementCd"`
	Name   string `json:"productName"`
	Option string `json:"optionValue,omitempty"`
	Qty    int    `json:"orderCnt"`
}

type listResponse struct {
	Contents   []Order `json:"contents"`
	TotalCount int     `json:"totalCount"`
}

// ListPaidOrders fetches every PAY_DONE order since the given time, walking
// pages until the server runs dry. Any failure mid-walk aborts the whole
// listing; a partial page set is never returned as complete
func (c *Client) ListPaidOrders(ctx context.Context, since time.Time) ([]Order, error) {
	var all []Order
	for page := 1; ; page++ {
		q := url.Values{}
		q.Set("orderStatusType", "PAY_DONE")
		q.Set("startYmdt", since.Format("2006-01-02 15:04:05"))
		q.Set("pageNumber", fmt.Sprint(page))
		q.Set("pageSize", fmt.Sprint(c.opts.PerPage))

		batch, total, err := c.listPage(ctx, q)
		if err != nil {
			return nil, err
		}
		all = append(all, batch...)
		if len(all) >= total || len(batch) == 0 {
			return all, nil
		}
	}
}

func (c *Client) listPage(ctx context.Context, q url.Values) ([]Order, int, error) {
	u := c.opts.BaseURL + "/orders?" + q.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, 0, perr.Wrapf(err, perr.ErrorCodeUnknown, "shopby new request failed")
	}
	c.setHeaders(req)

	start := c.now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, perr.Wrapf(err, perr.ErrorCodeTransient, "shopby list failed")
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			c.log.Error().Err(cerr).Msg("shopby close body failed")
		}
	}()

	c.log.Debug().
		Int("status", resp.StatusCode).
		Dur("latency", c.now().Sub(start)).
		Msg("shopby list page")

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, 0, perr.RateLimitedf("shopby rate limited")
	case resp.StatusCode >= 500:
		return nil, 0, perr.Transientf("shopby status %d", resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		tail, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, 0, perr.Newf(perr.ErrorCodeUnknown, "shopby status %d body %s", resp.StatusCode, string(tail))
	}

	var out listResponse
	b, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return nil, 0, perr.Wrapf(err, perr.ErrorCodeTransient, "shopby read body failed")
	}
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, 0, perr.Wrapf(err, perr.ErrorCodeTransient, "shopby decode failed")
	}
	return out.Contents, out.TotalCount, nil
}
