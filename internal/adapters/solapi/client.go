// Package solapi provides the SMS client for customer-facing template sends
package solapi

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	perr "tradein/internal/platform/errors"
	"tradein/internal/platform/logger"

	"github.com/google/uuid"
)

const (
	baseURLDefault = "https://api.solapi.com"
	defaultTimeout = 10 * time.Second
	defaultUA      = "tradein-sms"
)

// Options configures the Client
type Options struct {
	BaseURL   string
	APIKey    string
	APISecret string
	Sender    string // registered sender number
	UserAgent string
	Timeout   time.Duration
}

// Client sends alimtalk/SMS template messages
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
		log:  *logger.Named("solapi"),
		now:  time.Now,
	}
}

// sendRequest is the message send payload
type sendRequest struct {
	Message message `json:"message"`
}

type message struct {
	To       string `json:"to"`
	From     string `json:"from"`
	Type     string `json:"type"`
	KakaoOpt *kakao `json:"kakaoOptions,omitempty"`
}

type kakao struct {
	TemplateID string            `json:"templateId"`
	Variables  map[string]string `json:"variables,omitempty"`
}

// SendTemplate sends one template message to a single recipient.
// Transport failures and 5xx are retry-worthy; payload rejections are terminal
func (c *Client) SendTemplate(ctx context.Context, templateID, to string, vars map[string]string) error {
	body, err := json.Marshal(sendRequest{Message: message{
		To:   to,
		From: c.opts.Sender,
		Type: "ATA",
		KakaoOpt: &kakao{
			TemplateID: templateID,
			Variables:  vars,
		},
	}})
	if err != nil {
		return perr.Wrapf(err, perr.ErrorCodeJSON, "solapi encode failed")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.opts.BaseURL+"/messages/v4/send", bytes.NewReader(body))
	if err != nil {
		return perr.Wrapf(err, perr.ErrorCodeUnknown, "solapi new request failed")
	}
	req.Header.Set("User-Agent", c.opts.UserAgent)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", c.authHeader())

	start := c.now()
	resp, err := c.http.Do(req)
	if err != nil {
		return perr.Wrapf(err, perr.ErrorCodeTransient, "solapi send failed")
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			c.log.Error().Err(cerr).Msg("solapi close body failed")
		}
	}()

	c.log.Debug().
		Str("template", templateID).
		Int("status", resp.StatusCode).
		Dur("latency", c.now().Sub(start)).
		Msg("solapi send")

	switch {
	case resp.StatusCode == http.StatusOK, resp.StatusCode == http.StatusCreated:
		return nil
	case resp.StatusCode == http.StatusTooManyRequests:
		return perr.RateLimitedf("solapi rate limited")
	case resp.StatusCode >= 500:
		return perr.Transientf("solapi status %d", resp.StatusCode)
	default:
		tail, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return perr.Dispatchf("solapi status %d body %s", resp.StatusCode, string(tail))
	}
}

// authHeader builds the HMAC-SHA256 auth header the message API requires
func (c *Client) authHeader() string {
	date := c.now().UTC().Format(time.RFC3339)
	salt := uuid.NewString()
	mac := hmac.New(sha256.New, []byte(c.opts.APISecret))
	mac.Write([]byte(date + salt))
	sig := hex.EncodeToString(mac.Sum(nil))
	return fmt.Sprintf("HMAC-SHA256 apiKey=%s, date=%s, salt=%s, signature=%s",
		c.opts.APIKey, date, salt, sig)
}
