// Package restyclient implements remote.Client against a JSON HTTP API
// using go-resty.
//
// Endpoints:
//
//	GET {base}/sort-order          -> ["id2","id1",...]
//	GET {base}/records             -> [{"id":...,"name":...,"zone":...}, ...]
//	GET {base}/records?zone=south  -> same shape, filtered
package restyclient

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/IvanBrykalov/livesort/record"
	"github.com/IvanBrykalov/livesort/remote"
)

// Config configures the HTTP client.
type Config struct {
	// BaseURL is the API root, e.g. "https://api.example.com/v1".
	BaseURL string

	// Timeout bounds each request. Zero means 10s.
	Timeout time.Duration
}

// Client is the resty-backed remote.Client. Safe for concurrent use.
type Client struct {
	rc *resty.Client
}

type wireRecord struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Zone string `json:"zone"`
}

// New constructs a client for the given API root.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("restyclient: empty base URL")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	rc := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")
	return &Client{rc: rc}, nil
}

// FetchOrder implements remote.Client.
func (c *Client) FetchOrder(ctx context.Context) (record.Order, error) {
	var order record.Order
	resp, err := c.rc.R().
		SetContext(ctx).
		SetResult(&order).
		Get("/sort-order")
	if err := check(resp, err, "sort order"); err != nil {
		return nil, err
	}
	return order, nil
}

// FetchAll implements remote.Client.
func (c *Client) FetchAll(ctx context.Context) ([]record.Record, error) {
	return c.fetchRecords(ctx, "")
}

// FetchZone implements remote.Client.
func (c *Client) FetchZone(ctx context.Context, zone string) ([]record.Record, error) {
	return c.fetchRecords(ctx, zone)
}

func (c *Client) fetchRecords(ctx context.Context, zone string) ([]record.Record, error) {
	var wire []wireRecord
	req := c.rc.R().SetContext(ctx).SetResult(&wire)
	if zone != "" {
		req.SetQueryParam("zone", zone)
	}
	resp, err := req.Get("/records")
	if err := check(resp, err, "records"); err != nil {
		return nil, err
	}

	out := make([]record.Record, len(wire))
	for i, w := range wire {
		out[i] = record.Record{ID: w.ID, Name: w.Name, Zone: w.Zone}
	}
	return out, nil
}

func check(resp *resty.Response, err error, what string) error {
	if err != nil {
		return fmt.Errorf("restyclient: fetch %s: %w", what, err)
	}
	if resp.IsError() {
		return fmt.Errorf("restyclient: fetch %s: unexpected status %s", what, resp.Status())
	}
	return nil
}

var _ remote.Client = (*Client)(nil)
