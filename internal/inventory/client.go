// Package inventory answers "can this quantity still be added to the cart"
// from a remote stock service, through a short-lived cache that keeps the
// terminal selling when the network is flaky.
package inventory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

var (
	// ErrRemoteUnavailable: network/HTTP failure, recoverable, keep serving
	// cached data.
	ErrRemoteUnavailable = errors.New("inventory service unavailable")
	// ErrMalformedResponse: the service answered but no quantity field was
	// recognizable. Downgraded to an indeterminate verdict, never a hard block.
	ErrMalformedResponse = errors.New("no quantity in inventory response")
	// ErrInvalidArgument: missing inventory id, raised immediately.
	ErrInvalidArgument = errors.New("inventory id required")
)

// quantityFields: stock services in the wild disagree on the field name, so
// the first present one wins, numeric or numeric string.
var quantityFields = []string{
	"quantity", "qty", "availableQty", "available_quantity",
	"stockQuantity", "count", "available", "onHand", "available_stock",
}

// Client queries GET {base}/inventory/{id} on the remote stock service.
type Client struct {
	HTTP    *http.Client
	BaseURL string
}

func NewClient(baseURL string) *Client {
	return &Client{
		HTTP:    &http.Client{Timeout: 5 * time.Second},
		BaseURL: baseURL,
	}
}

// FetchQuantity returns the live quantity for an inventory id, clamped to
// zero. Timeouts are whatever the caller's context and the HTTP client say.
func (c *Client) FetchQuantity(ctx context.Context, inventoryID string) (int, error) {
	u := fmt.Sprintf("%s/inventory/%s", c.BaseURL, url.PathEscape(inventoryID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrRemoteUnavailable, err)
	}
	res, err := c.HTTP.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrRemoteUnavailable, err)
	}
	defer res.Body.Close()
	if res.StatusCode < 200 || res.StatusCode > 299 {
		return 0, fmt.Errorf("%w: status %s", ErrRemoteUnavailable, res.Status)
	}

	var body map[string]json.RawMessage
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	for _, field := range quantityFields {
		raw, ok := body[field]
		if !ok {
			continue
		}
		if qty, ok := parseQuantity(raw); ok {
			if qty < 0 {
				qty = 0
			}
			return qty, nil
		}
	}
	return 0, ErrMalformedResponse
}

func parseQuantity(raw json.RawMessage) (int, bool) {
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		if f, err := n.Float64(); err == nil {
			return int(f), true
		}
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return int(f), true
		}
	}
	return 0, false
}
