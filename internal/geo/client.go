package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/evyataryagoni/visitortrack/internal/logger"
	"github.com/evyataryagoni/visitortrack/internal/metrics"
	"github.com/evyataryagoni/visitortrack/internal/models"
	"github.com/go-playground/validator/v10"
)

// Locator resolves best-effort geographic metadata for a client address.
// Implementations never fail: any provider fault is absorbed and the
// all-default Location is returned instead, so enrichment can never
// abort visit tracking.
type Locator interface {
	Lookup(ctx context.Context, addr string) models.Location
}

// Client implements Locator against an ip-api.com style provider
// (GET {base}/json/{ip} returning a JSON body with a status discriminator)
type Client struct {
	baseURL    string
	httpClient *http.Client
	validator  *validator.Validate
	metrics    *metrics.Metrics
	logger     *logger.Logger
}

// providerResponse is the provider's wire format.
// lon/lat are decoded loosely because a degraded provider may emit the
// sentinel string where a number belongs; coercion handles both.
type providerResponse struct {
	Status     string      `json:"status"`
	Country    string      `json:"country"`
	RegionName string      `json:"regionName"`
	City       string      `json:"city"`
	Zip        string      `json:"zip"`
	Lon        interface{} `json:"lon"`
	Lat        interface{} `json:"lat"`
}

// NewClient creates a geolocation client for the given provider base URL
//
// Parameters:
//   - baseURL: provider base, e.g. "http://ip-api.com"
//   - timeout: outbound request budget
//   - m: metrics collector (optional, can be nil)
//   - log: logger (optional, can be nil)
func NewClient(baseURL string, timeout time.Duration, m *metrics.Metrics, log *logger.Logger) *Client {
	if log == nil {
		log = logger.NewDefault()
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		validator:  validator.New(),
		metrics:    m,
		logger:     log.WithComponent("GeoClient"),
	}
}

// Lookup resolves location fields for addr.
//
// Failure handling is the hard fallback required by the pipeline: any
// fault (invalid address, network error, non-success provider status,
// malformed payload, timeout) yields the all-default Location. A
// successful provider response that omits individual fields substitutes
// each missing field's default independently.
func (c *Client) Lookup(ctx context.Context, addr string) models.Location {
	// Skip the outbound call entirely for addresses the provider could
	// never resolve. "ip" accepts both IPv4 and IPv6.
	if err := c.validator.Var(addr, "required,ip"); err != nil {
		c.logger.Debug().Str("addr", addr).Msg("Address is not a valid IP, using defaults")
		c.countLookup("invalid_address")
		return models.DefaultLocation()
	}

	start := time.Now()
	resp, err := c.fetch(ctx, addr)
	if c.metrics != nil {
		c.metrics.GeoLookupDuration.Observe(time.Since(start).Seconds())
	}
	if err != nil {
		c.logger.Warn().Err(err).Str("addr", addr).Msg("Geolocation lookup failed, using defaults")
		c.countLookup("failed")
		return models.DefaultLocation()
	}

	if resp.Status != "success" {
		// Private/loopback addresses land here: the provider reports
		// status "fail" for them and the defaults apply.
		c.logger.Debug().Str("addr", addr).Str("status", resp.Status).Msg("Provider reported failure, using defaults")
		c.countLookup("failed")
		return models.DefaultLocation()
	}

	location, partial := applyDefaults(resp)
	if partial {
		c.countLookup("partial")
	} else {
		c.countLookup("success")
	}

	c.logger.Debug().
		Str("addr", addr).
		Str("country", location.Country).
		Str("city", location.City).
		Msg("Geolocation lookup successful")

	return location
}

// fetch performs the single outbound provider call
func (c *Client) fetch(ctx context.Context, addr string) (*providerResponse, error) {
	url := fmt.Sprintf("%s/json/%s", c.baseURL, addr)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build provider request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("provider request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("provider returned status %d", resp.StatusCode)
	}

	var payload providerResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode provider response: %w", err)
	}

	return &payload, nil
}

// applyDefaults converts a successful provider payload into a Location,
// substituting each missing field's default independently. The second
// return reports whether any field needed a default.
func applyDefaults(resp *providerResponse) (models.Location, bool) {
	location := models.DefaultLocation()
	partial := false

	if resp.Country != "" {
		location.Country = resp.Country
	} else {
		partial = true
	}
	if resp.RegionName != "" {
		location.State = resp.RegionName
	} else {
		partial = true
	}
	if resp.City != "" {
		location.City = resp.City
	} else {
		partial = true
	}
	if resp.Zip != "" {
		location.Postal = resp.Zip
	} else {
		partial = true
	}

	var ok bool
	if location.Longitude, ok = coerceCoordinate(resp.Lon); !ok {
		partial = true
	}
	if location.Latitude, ok = coerceCoordinate(resp.Lat); !ok {
		partial = true
	}

	return location, partial
}

// coerceCoordinate normalizes a loosely-typed coordinate value.
// Absent values and non-numeric strings (the provider's own sentinel
// included) coerce to the 0.0 "no coordinate" sentinel.
func coerceCoordinate(v interface{}) (float64, bool) {
	switch value := v.(type) {
	case float64:
		return value, true
	case string:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return 0.0, false
		}
		return f, true
	default:
		return 0.0, false
	}
}

func (c *Client) countLookup(result string) {
	if c.metrics != nil {
		c.metrics.GeoLookupsTotal.WithLabelValues(result).Inc()
	}
}
