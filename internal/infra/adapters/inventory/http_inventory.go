// File: internal/infra/adapters/inventory/http_inventory.go
package inventory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"sim-activation-portal/internal/domain"
	"sim-activation-portal/internal/domain/model"
	"sim-activation-portal/internal/domain/ports/adapter"
	"sim-activation-portal/internal/infra/metrics"
)

var _ adapter.SimInventory = (*HTTPInventory)(nil)

// DefaultBaseURL is the public availability endpoint of the SIM inventory.
const DefaultBaseURL = "https://webtool.riottech.fr/public_routes/netsim/getSimAvailability"

// HTTPInventory queries the upstream inventory with GET {base}/{serial}.
type HTTPInventory struct {
	base   string
	client *http.Client
}

func NewHTTPInventory(baseURL string, timeout time.Duration) (*HTTPInventory, error) {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid inventory url %q", baseURL)
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &HTTPInventory{
		base:   strings.TrimRight(baseURL, "/"),
		client: &http.Client{Timeout: timeout},
	}, nil
}

func (h *HTTPInventory) Availability(ctx context.Context, serial string) (*model.SimAvailability, error) {
	start := time.Now()
	a, err := h.fetch(ctx, serial)
	metrics.ObserveSimUpstream(time.Since(start).Milliseconds(), err == nil)
	return a, err
}

func (h *HTTPInventory) fetch(ctx context.Context, serial string) (*model.SimAvailability, error) {
	endpoint := h.base + "/" + url.PathEscape(serial)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
		return nil, fmt.Errorf("%w: status %d", domain.ErrUpstream, resp.StatusCode)
	}

	var out model.SimAvailability
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", domain.ErrUpstream, err)
	}
	return &out, nil
}

// Noop reports every SIM as unavailable. Used when no inventory is configured.
type Noop struct{}

var _ adapter.SimInventory = Noop{}

func (Noop) Availability(ctx context.Context, serial string) (*model.SimAvailability, error) {
	if ctx.Err() != nil {
		return nil, errors.Join(domain.ErrUpstream, ctx.Err())
	}
	return &model.SimAvailability{Serial: serial}, nil
}
