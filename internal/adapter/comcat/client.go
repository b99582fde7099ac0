// Package comcat looks up published moment-tensor solutions from the USGS
// ComCat event service.
package comcat

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/couchcryptid/quake-strec-etl/internal/domain"
	"github.com/couchcryptid/quake-strec-etl/internal/observability"
)

// DefaultURL is the FDSN event query endpoint.
const DefaultURL = "https://earthquake.usgs.gov/fdsnws/event/1/query"

const momentTensorProduct = "moment-tensor"

// Client implements domain.MechanismLookup using the ComCat GeoJSON detail feed.
type Client struct {
	httpClient *http.Client
	baseURL    string
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a ComCat client. Requests are traced through otelhttp.
func NewClient(baseURL string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		baseURL: baseURL,
		metrics: metrics,
		logger:  logger,
	}
}

// LookupMechanism returns the first moment-tensor product of an event, or nil
// when the event has none or is unknown to the catalog.
func (c *Client) LookupMechanism(ctx context.Context, eventID string) (*domain.MechanismSolution, error) {
	params := url.Values{
		"eventid": {eventID},
		"format":  {"geojson"},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	c.metrics.CatalogAPIDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		c.metrics.CatalogRequests.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("comcat request: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound, http.StatusNoContent:
		c.metrics.CatalogRequests.WithLabelValues("absent").Inc()
		return nil, nil
	default:
		c.metrics.CatalogRequests.WithLabelValues("error").Inc()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("comcat API error: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var detail eventDetail
	if err := json.NewDecoder(resp.Body).Decode(&detail); err != nil {
		c.metrics.CatalogRequests.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("decode response: %w", err)
	}

	products := detail.Properties.Products[momentTensorProduct]
	if len(products) == 0 {
		c.metrics.CatalogRequests.WithLabelValues("absent").Inc()
		return nil, nil
	}

	// The first product is ComCat's preferred solution.
	sol, err := parseSolution(products[0].Properties)
	if err != nil {
		c.metrics.CatalogRequests.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("parse %s product for %s: %w", momentTensorProduct, eventID, err)
	}
	c.metrics.CatalogRequests.WithLabelValues("found").Inc()
	c.logger.Debug("catalog mechanism found", "event_id", eventID)
	return sol, nil
}

func parseSolution(props map[string]string) (*domain.MechanismSolution, error) {
	var sol domain.MechanismSolution
	fields := []struct {
		key string
		dst *float64
	}{
		{"t-axis-azimuth", &sol.T.Azimuth},
		{"t-axis-plunge", &sol.T.Plunge},
		{"n-axis-azimuth", &sol.N.Azimuth},
		{"n-axis-plunge", &sol.N.Plunge},
		{"p-axis-azimuth", &sol.P.Azimuth},
		{"p-axis-plunge", &sol.P.Plunge},
		{"nodal-plane-1-strike", &sol.NP1.Strike},
		{"nodal-plane-1-dip", &sol.NP1.Dip},
		{"nodal-plane-1-rake", &sol.NP1.Rake},
		{"nodal-plane-2-strike", &sol.NP2.Strike},
		{"nodal-plane-2-dip", &sol.NP2.Dip},
		{"nodal-plane-2-rake", &sol.NP2.Rake},
	}
	for _, f := range fields {
		raw, ok := props[f.key]
		if !ok {
			return nil, fmt.Errorf("missing property %s", f.key)
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return nil, fmt.Errorf("property %s: %w", f.key, err)
		}
		*f.dst = v
	}
	return &sol, nil
}

// ComCat GeoJSON detail response types. Product properties are always strings.

type eventDetail struct {
	Properties struct {
		Products map[string][]product `json:"products"`
	} `json:"properties"`
}

type product struct {
	Properties map[string]string `json:"properties"`
}
