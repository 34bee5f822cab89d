package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/civic-reports/backend/internal/apperr"
	"go.uber.org/zap"
)

// Geocoder reverse-geocodes report coordinates against a Nominatim instance.
// Requests are serialized and paced to minInterval; the public OSM instance
// requires at least one second between calls.
type Geocoder struct {
	baseURL     string
	userAgent   string
	minInterval time.Duration
	httpClient  *http.Client
	log         *zap.Logger

	mu       sync.Mutex
	lastCall time.Time
}

func NewGeocoder(baseURL, userAgent string, minInterval, timeout time.Duration, log *zap.Logger) *Geocoder {
	return &Geocoder{
		baseURL:     strings.TrimRight(baseURL, "/"),
		userAgent:   userAgent,
		minInterval: minInterval,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log: log,
	}
}

// Locality is the resolved place for a coordinate pair, most specific field
// first.
type Locality struct {
	Neighbourhood string `json:"neighbourhood,omitempty"`
	Suburb        string `json:"suburb,omitempty"`
	City          string `json:"city,omitempty"`
	Town          string `json:"town,omitempty"`
	Village       string `json:"village,omitempty"`
	Municipality  string `json:"municipality,omitempty"`
	State         string `json:"state,omitempty"`
}

// Name returns the most specific non-empty component.
func (l Locality) Name() string {
	for _, s := range []string{l.Neighbourhood, l.Suburb, l.City, l.Town, l.Village, l.Municipality, l.State} {
		if s != "" {
			return s
		}
	}
	return ""
}

type nominatimResponse struct {
	DisplayName string   `json:"display_name"`
	Address     Locality `json:"address"`
	Error       string   `json:"error"`
}

func (g *Geocoder) Reverse(ctx context.Context, lat, lng float64) (*Locality, error) {
	if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return nil, apperr.Validation("coordinates out of range")
	}

	if err := g.pace(ctx); err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("format", "jsonv2")
	q.Set("lat", fmt.Sprintf("%.6f", lat))
	q.Set("lon", fmt.Sprintf("%.6f", lng))
	q.Set("zoom", "14")
	q.Set("addressdetails", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"/reverse?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", g.userAgent)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("geocoder unavailable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("geocoder returned %d: %s", resp.StatusCode, string(body))
	}

	var out nominatimResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	if out.Error != "" {
		return nil, apperr.NotFound("no locality for %.6f,%.6f", lat, lng)
	}
	return &out.Address, nil
}

// pace blocks until minInterval has elapsed since the previous request. The
// lock is held across the wait so concurrent callers queue up.
func (g *Geocoder) pace(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	wait := g.minInterval - time.Since(g.lastCall)
	if wait > 0 {
		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	g.lastCall = time.Now()
	return nil
}
