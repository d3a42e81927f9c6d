package geocode

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

	domainagg "github.com/yungbote/placeshare-backend/internal/domain/aggregates"
	"github.com/yungbote/placeshare-backend/internal/domain/place"
	"github.com/yungbote/placeshare-backend/internal/observability"
	"github.com/yungbote/placeshare-backend/internal/platform/httpx"
	"github.com/yungbote/placeshare-backend/internal/platform/logger"
)

const op = "geocode.GetCoordsForAddress"

type Options struct {
	BaseURL    string
	APIKey     string
	Timeout    time.Duration
	MaxRetries int

	HTTPClient *http.Client
	Log        *logger.Logger
	Metrics    *observability.Metrics
}

// Google queries the Google Maps Geocoding API.
type Google struct {
	baseURL    string
	apiKey     string
	timeout    time.Duration
	maxRetries int
	httpClient *http.Client
	log        *logger.Logger
	metrics    *observability.Metrics
}

func NewGoogle(opts Options) (*Google, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, errors.New("geocode: api key required")
	}
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		baseURL = "https://maps.googleapis.com"
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	maxRetries := opts.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{}
	}
	log := opts.Log
	if log == nil {
		log = logger.Nop()
	}
	return &Google{
		baseURL:    baseURL,
		apiKey:     strings.TrimSpace(opts.APIKey),
		timeout:    timeout,
		maxRetries: maxRetries,
		httpClient: hc,
		log:        log.With("client", "GoogleGeocoder"),
		metrics:    opts.Metrics,
	}, nil
}

type geocodeResponse struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
	Results      []struct {
		Geometry struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
		} `json:"geometry"`
	} `json:"results"`
}

type statusError struct {
	code int
	body string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("geocode http status=%d body=%s", e.code, e.body)
}

func (e *statusError) HTTPStatusCode() int { return e.code }

func (g *Google) GetCoordsForAddress(ctx context.Context, address string) (place.Location, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		g.metrics.IncGeocode("google", "invalid")
		return place.Location{}, dependencyError(MsgNoLocation, nil)
	}

	ctx2, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	var lastErr error
	backoff := 250 * time.Millisecond
	for attempt := 0; attempt <= g.maxRetries; attempt++ {
		resp, err := g.fetch(ctx2, address)
		if err == nil {
			return g.interpret(address, resp)
		}
		lastErr = err
		if !httpx.IsRetryableError(err) || attempt == g.maxRetries {
			break
		}
		g.log.Warn("Geocode attempt failed, retrying", "attempt", attempt+1, "error", err)
		if err := httpx.Sleep(ctx2, httpx.JitterSleep(backoff)); err != nil {
			lastErr = err
			break
		}
		backoff *= 2
	}
	g.metrics.IncGeocode("google", "error")
	return place.Location{}, dependencyError(MsgNoLocation, lastErr)
}

func (g *Google) fetch(ctx context.Context, address string) (*geocodeResponse, error) {
	q := url.Values{}
	q.Set("address", address)
	q.Set("key", g.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"/maps/api/geocode/json?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &statusError{code: resp.StatusCode, body: strings.TrimSpace(string(raw))}
	}
	var out geocodeResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode geocode response: %w", err)
	}
	return &out, nil
}

func (g *Google) interpret(address string, resp *geocodeResponse) (place.Location, error) {
	switch {
	case resp.Status == "OK" && len(resp.Results) > 0:
		g.metrics.IncGeocode("google", "ok")
		loc := resp.Results[0].Geometry.Location
		return place.Location{Lat: loc.Lat, Lng: loc.Lng}, nil
	case resp.Status == "ZERO_RESULTS" || resp.Status == "OK":
		g.metrics.IncGeocode("google", "zero_results")
		return place.Location{}, dependencyError(MsgNoLocation, nil)
	default:
		g.metrics.IncGeocode("google", "error")
		g.log.Error("Geocode provider rejected request", "status", resp.Status, "provider_message", resp.ErrorMessage, "address", address)
		return place.Location{}, dependencyError(MsgNoLocation, fmt.Errorf("geocode status %s: %s", resp.Status, resp.ErrorMessage))
	}
}

func dependencyError(msg string, cause error) error {
	return domainagg.NewError(domainagg.CodeDependency, op, msg, cause)
}
