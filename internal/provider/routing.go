package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/dvergara/daykeeper/internal/geo"
)

// routeCacheSize bounds the directions cache. The optimizer re-queries the
// same located pairs on every maintenance pass, so hits are common.
const routeCacheSize = 256

// RoutingClient queries an OSRM-compatible routing service over HTTP.
type RoutingClient struct {
	baseURL string
	client  *http.Client
	cache   *lru.Cache[string, Directions]
}

// NewRoutingClient creates a routing client against the given base URL
// (e.g. "https://router.project-osrm.org").
func NewRoutingClient(baseURL string) *RoutingClient {
	cache, _ := lru.New[string, Directions](routeCacheSize)
	return &RoutingClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 15 * time.Second},
		cache:   cache,
	}
}

// osrmResponse mirrors the subset of the OSRM route response the core needs.
type osrmResponse struct {
	Code   string `json:"code"`
	Routes []struct {
		Legs []struct {
			Duration float64 `json:"duration"` // seconds
		} `json:"legs"`
	} `json:"routes"`
}

// Directions returns routing directions from one coordinate to another.
func (c *RoutingClient) Directions(ctx context.Context, from, to geo.Coordinate) (Directions, error) {
	key := fmt.Sprintf("%.5f,%.5f|%.5f,%.5f", from.Lat, from.Lon, to.Lat, to.Lon)
	if d, ok := c.cache.Get(key); ok {
		return d, nil
	}

	// OSRM takes lon,lat pairs.
	url := fmt.Sprintf("%s/route/v1/driving/%f,%f;%f,%f?overview=false",
		c.baseURL, from.Lon, from.Lat, to.Lon, to.Lat)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Directions{}, fmt.Errorf("provider: build route request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return Directions{}, fmt.Errorf("provider: route request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Directions{}, fmt.Errorf("provider: route request: status %d", resp.StatusCode)
	}

	var parsed osrmResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return Directions{}, fmt.Errorf("provider: decode route response: %w", err)
	}
	if parsed.Code != "Ok" {
		return Directions{}, fmt.Errorf("provider: route request: code %q", parsed.Code)
	}

	var out Directions
	for _, r := range parsed.Routes {
		route := Route{}
		for _, l := range r.Legs {
			route.Legs = append(route.Legs, Leg{
				Duration: time.Duration(l.Duration * float64(time.Second)),
			})
		}
		out.Routes = append(out.Routes, route)
	}

	c.cache.Add(key, out)
	return out, nil
}
