// Package sheets provides a spreadsheet API client for the watch, mapping, and intake tabs
package sheets

import (
	"bytes"
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
	defaultUA      = "tradein-sheets"
)

// Options configures the Client
type Options struct {
	BaseURL       string // https://sheets.googleapis.com/v4
	Token         string // bearer token minted outside the process
	SpreadsheetID string
	UserAgent     string
	Timeout       time.Duration

	WatchTab   string // trade-in tracking tab, positional columns A..M
	MappingTab string // two-column SKU mapping tab
	IntakeTab  string // append target for parsed requests
}

// Client talks to the spreadsheet values API
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
	if o.WatchTab == "" {
		o.WatchTab = "보상판매"
	}
	if o.MappingTab == "" {
		o.MappingTab = "sku_mapping"
	}
	if o.IntakeTab == "" {
		o.IntakeTab = o.WatchTab
	}
	return &Client{
		http: &http.Client{Timeout: o.Timeout},
		opts: o,
		log:  *logger.Named("sheets"),
		now:  time.Now,
	}
}

// valueRange mirrors the values API read/append payload
type valueRange struct {
	Range  string     `json:"range,omitempty"`
	Values [][]string `json:"values"`
}

// getValues reads one A1 range. Any failure is transient: a partial read must
// never be treated as a complete sheet state
func (c *Client) getValues(ctx context.Context, a1 string) ([][]string, error) {
	path := fmt.Sprintf("/spreadsheets/%s/values/%s",
		url.PathEscape(c.opts.SpreadsheetID), url.PathEscape(a1))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.opts.BaseURL+path, nil)
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeUnknown, "sheets new request failed")
	}
	c.setHeaders(req)

	start := c.now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeTransient, "sheets read failed")
	}
	defer c.closeBody(resp, a1)

	c.log.Debug().
		Str("range", a1).
		Int("status", resp.StatusCode).
		Dur("latency", c.now().Sub(start)).
		Msg("sheets read")

	if resp.StatusCode != http.StatusOK {
		return nil, readError(resp, "sheets read")
	}

	var out valueRange
	b, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeTransient, "sheets read body failed")
	}
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeTransient, "sheets decode failed")
	}
	return out.Values, nil
}

// appendValues appends rows to a tab using the values:append endpoint
func (c *Client) appendValues(ctx context.Context, a1 string, rows [][]string) error {
	path := fmt.Sprintf("/spreadsheets/%s/values/%s:append?valueInputOption=USER_ENTERED",
		url.PathEscape(c.opts.SpreadsheetID), url.PathEscape(a1))

	body, err := json.Marshal(valueRange{Values: rows})
	if err != nil {
		return perr.Wrapf(err, perr.ErrorCodeJSON, "sheets encode failed")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.opts.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return perr.Wrapf(err, perr.ErrorCodeUnknown, "sheets new request failed")
	}
	c.setHeaders(req)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return perr.Wrapf(err, perr.ErrorCodeTransient, "sheets append failed")
	}
	defer c.closeBody(resp, a1)

	if resp.StatusCode != http.StatusOK {
		return readError(resp, "sheets append")
	}
	return nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("User-Agent", c.opts.UserAgent)
	req.Header.Set("Accept", "application/json")
	if c.opts.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.opts.Token)
	}
}

func (c *Client) closeBody(resp *http.Response, a1 string) {
	if err := resp.Body.Close(); err != nil {
		c.log.Error().Err(err).Str("range", a1).Msg("sheets close body failed")
	}
}

// readError maps a non-200 response to a project error.
// 429 and 5xx are retry-worthy; everything else is terminal
func readError(resp *http.Response, op string) error {
	tail, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return perr.RateLimitedf("%s rate limited", op)
	case resp.StatusCode >= 500:
		return perr.Transientf("%s status %d", op, resp.StatusCode)
	default:
		return perr.Newf(perr.ErrorCodeUnknown, "%s status %d body %s", op, resp.StatusCode, string(tail))
	}
}
