package tushare

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"IPOWatch/internal/domain/models"
	drepo "IPOWatch/internal/domain/repository"
	"IPOWatch/internal/service/ratelimit"
	xhttp "IPOWatch/pkg/http"
)

const (
	DefaultBaseURL = "https://api.tushare.pro"
	apiNewShare    = "new_share"
	userAgent      = "ipowatch-tushare/1.0"
)

// DefaultFields are the new_share columns requested when none are configured.
var DefaultFields = []string{
	"ts_code", "sub_code", "name", "ipo_date", "issue_date", "list_date",
	"amount", "market_amount", "price", "pe", "limit_amount", "funds", "ballot",
}

// ErrAPI marks a well-formed provider response with a non-zero code.
var ErrAPI = errors.New("tushare api error")

type request struct {
	APIName string            `json:"api_name"`
	Token   string            `json:"token"`
	Params  map[string]string `json:"params"`
	Fields  string            `json:"fields"`
}

type response struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
	Data *struct {
		Fields []string        `json:"fields"`
		Items  [][]interface{} `json:"items"`
	} `json:"data"`
}

// Option configures Client.
type Option func(*Client)

// Client implements repository.Provider against the TuShare Pro HTTP API.
type Client struct {
	token   string
	baseURL string
	fields  []string
	timeout time.Duration
	http    *xhttp.Client
	limiter *ratelimit.Limiter
}

// New creates a TuShare provider. A zero timeout leaves the fetch bounded
// only by the caller's context.
func New(token string, opts ...Option) *Client {
	c := &Client{
		token:   token,
		baseURL: DefaultBaseURL,
		fields:  DefaultFields,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.http == nil {
		c.http = xhttp.NewClient(xhttp.WithTimeout(0), xhttp.WithUserAgent(userAgent))
	}
	return c
}

var _ drepo.Provider = (*Client)(nil)

// FetchNewShares returns the new_share records for w. Every value comes back
// as text; null cells become empty strings.
func (c *Client) FetchNewShares(ctx context.Context, w models.Window) ([]models.RawRecord, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	if err := c.limiter.Wait(ctx, apiNewShare); err != nil {
		return nil, fmt.Errorf("tushare %s: rate limit: %w", apiNewShare, err)
	}

	req := request{
		APIName: apiNewShare,
		Token:   c.token,
		Params:  map[string]string{"start_date": w.Start, "end_date": w.End},
		Fields:  strings.Join(c.fields, ","),
	}

	var resp response
	err := c.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodPost,
		URL:    c.baseURL,
		Body:   req,
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("tushare %s: %w", apiNewShare, err)
	}
	if resp.Code != 0 {
		return nil, fmt.Errorf("%w: code %d: %s", ErrAPI, resp.Code, resp.Msg)
	}
	if resp.Data == nil {
		return nil, nil
	}

	idx := make(map[string]int, len(resp.Data.Fields))
	for i, f := range resp.Data.Fields {
		idx[f] = i
	}

	out := make([]models.RawRecord, 0, len(resp.Data.Items))
	for _, item := range resp.Data.Items {
		get := func(name string) string {
			i, ok := idx[name]
			if !ok || i >= len(item) {
				return ""
			}
			return cellString(item[i])
		}
		out = append(out, models.RawRecord{
			TSCode:       get("ts_code"),
			SubCode:      get("sub_code"),
			Name:         get("name"),
			IPODate:      get("ipo_date"),
			IssueDate:    get("issue_date"),
			ListDate:     get("list_date"),
			Amount:       get("amount"),
			MarketAmount: get("market_amount"),
			Price:        get("price"),
			PE:           get("pe"),
			LimitAmount:  get("limit_amount"),
			Funds:        get("funds"),
			Ballot:       get("ballot"),
		})
	}
	return out, nil
}

func cellString(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case json.Number:
		return t.String()
	case bool:
		if t {
			return "true"
		}
		return "false"
	default:
		return fmt.Sprint(t)
	}
}

// WithBaseURL overrides the API endpoint.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.baseURL = u
		}
	}
}

// WithFields sets the requested columns. Empty keeps DefaultFields.
func WithFields(fields []string) Option {
	return func(c *Client) {
		if len(fields) > 0 {
			c.fields = fields
		}
	}
}

// WithTimeout bounds a single fetch.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithHTTPClient injects the transport client.
func WithHTTPClient(hc *xhttp.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithRateLimit throttles calls to stay under the account's per-minute quota.
func WithRateLimit(l *ratelimit.Limiter) Option {
	return func(c *Client) {
		c.limiter = l
	}
}
