// Package slack provides the chat client used for operator notifications
// and the inbound event payload types for the intake webhook
package slack

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
	baseURLDefault = "https://slack.com/api"
	defaultTimeout = 10 * time.Second
	defaultUA      = "tradein-notify"
)

// Options configures the Client
type Options struct {
	BaseURL   string
	Token     string // bot token
	UserAgent string
	Timeout   time.Duration
}

// Client posts messages via chat.postMessage
type Client struct {
	http *http.Client
	opts Options
	log  logger.Logger
	now  func() time.Time
}

// NewClient creates a Client with sane defaults
func NewClient(o Options) *Client {
	if o.BaseURL == "" {
		o.BaseURL = baseURLDefault
	}
	if o.UserAgent == "" {
		o.UserAgent = defaultUA
	}
	if o.Timeout <= 0 {
		o.Timeout = defaultTimeout
	}
	return &Client{
		http: &http.Client{Timeout: o.Timeout},
		opts: o,
		log:  *logger.Named("slack"),
		now:  time.Now,
	}
}

// apiResponse is the common chat API envelope
type apiResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
	TS    string `json:"ts,omitempty"`
}

// PostMessage sends text to a channel. Network failures and 5xx come back
// retry-worthy; API-level rejections (bad channel, missing scope) are terminal
func (c *Client) PostMessage(ctx context.Context, channel, text string) error {
	payload, err := json.Marshal(map[string]string{
		"channel": channel,
		"text":    text,
	})
	if err != nil {
		return perr.Wrapf(err, perr.ErrorCodeJSON, "slack encode failed")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.opts.BaseURL+"/chat.postMessage", bytes.NewReader(payload))
	if err != nil {
		return perr.Wrapf(err, perr.ErrorCodeUnknown, "slack new request failed")
	}
	req.Header.Set("User-Agent", c.opts.UserAgent)
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	req.Header.Set("Authorization", "Bearer "+c.opts.Token)

	start := c.now()
	resp, err := c.http.Do(req)
	if err != nil {
		return perr.Wrapf(err, perr.ErrorCodeTransient, "slack post failed")
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			c.log.Error().Err(cerr).Msg("slack close body failed")
		}
	}()

	c.log.Debug().
		Str("channel", channel).
		Int("status", resp.StatusCode).
		Dur("latency", c.now().Sub(start)).
		Msg("slack post")

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return perr.RateLimitedf("slack rate limited")
	case resp.StatusCode >= 500:
		return perr.Transientf("slack status %d", resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		tail, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return perr.Dispatchf("slack status %d body %s", resp.StatusCode, string(tail))
	}

	var out apiResponse
	b, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err := json.Unmarshal(b, &out); err != nil {
		return perr.Wrapf(err, perr.ErrorCodeTransient, "slack decode failed")
	}
	if !out.OK {
		if out.Error == "ratelimited" {
			return perr.RateLimitedf("slack rate limited")
		}
		return perr.Dispatchf("slack rejected: %s", out.Error)
	}
	return nil
}
