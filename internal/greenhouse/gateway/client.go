package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/greenhouse-dashboard/internal/common"
	"github.com/i474232898/greenhouse-dashboard/internal/greenhouse"
)

// BaseURL is the fixed address of the greenhouse sensor gateway.
const BaseURL = "http://greenhouse.local"

// Client implements the greenhouse.Loader interface over the gateway's HTTP API.
type Client struct {
	name    string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

// NewClient creates a gateway client for baseURL. maxRetries of 0 means a
// failed call is reported right away.
func NewClient(client *http.Client, baseURL string, maxRetries int) *Client {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:         "greenhouse-gateway",
		MaxRequests:  5,
		Interval:     1 * time.Minute,
		Timeout:      30 * time.Second,
		IsSuccessful: breakerSuccess,
	})

	return &Client{
		name:    "greenhouse-gateway",
		baseURL: strings.TrimRight(baseURL, "/"),
		httpCfg: HTTPClientConfig{
			Client: client,
			Backoff: BackoffConfig{
				MaxRetries:      maxRetries,
				InitialInterval: 500 * time.Millisecond,
				MaxInterval:     5 * time.Second,
			},
		},
		circuit: cb,
	}
}

func (c *Client) Name() string {
	return c.name
}

// ListFiles fetches GET {base}/list.
func (c *Client) ListFiles(ctx context.Context) ([]string, error) {
	var names []string
	if err := c.getJSON(ctx, c.baseURL+"/list", &names); err != nil {
		return nil, err
	}
	if names == nil {
		names = []string{}
	}
	return names, nil
}

// LoadRecords fetches GET {base}/data/{fileName}.
func (c *Client) LoadRecords(ctx context.Context, fileName string) ([]greenhouse.Reading, error) {
	var readings []greenhouse.Reading
	if err := c.getJSON(ctx, c.baseURL+"/data/"+url.PathEscape(fileName), &readings); err != nil {
		return nil, err
	}
	if readings == nil {
		readings = []greenhouse.Reading{}
	}
	return readings, nil
}

// failureReason labels a failed call for logs.
func failureReason(err error) string {
	var netErr *NetworkError
	switch {
	case errors.Is(err, errCircuitOpen):
		return "circuit-open"
	case errors.Is(err, errDecodeBody):
		return "bad-body"
	case errors.As(err, &netErr) && netErr.StatusCode != 0:
		return "bad-status"
	}
	return common.FailureReason(err)
}

func (c *Client) getJSON(ctx context.Context, target string, out any) error {
	buildRequest := func() (*http.Request, error) {
		req, err := http.NewRequest(http.MethodGet, target, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")
		return req, nil
	}

	resp, err := doRequestWithResilience(ctx, c.httpCfg, c.circuit, buildRequest)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			slog.Debug("gateway request canceled", "url", target)
			return err
		}
		slog.Warn("gateway request failed",
			"url", target,
			"reason", failureReason(err),
			"error", err,
		)
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &NetworkError{URL: target, StatusCode: resp.StatusCode, Err: fmt.Errorf("%w: %w", errDecodeBody, err)}
	}
	return nil
}
