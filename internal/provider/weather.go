package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/dvergara/daykeeper/internal/geo"
)

// WeatherClient queries an Open-Meteo-compatible forecast service.
type WeatherClient struct {
	baseURL string
	client  *http.Client
}

// NewWeatherClient creates a weather client against the given base URL
// (e.g. "https://api.open-meteo.com").
func NewWeatherClient(baseURL string) *WeatherClient {
	return &WeatherClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

// meteoResponse mirrors the subset of the Open-Meteo forecast response the
// core needs: a current WMO weather code plus the hourly code series.
type meteoResponse struct {
	Current struct {
		WeatherCode int `json:"weather_code"`
	} `json:"current"`
	Hourly struct {
		Time        []string `json:"time"`
		WeatherCode []int    `json:"weather_code"`
	} `json:"hourly"`
}

// Current returns the current conditions and hourly forecast at a coordinate.
func (c *WeatherClient) Current(ctx context.Context, at geo.Coordinate) (Weather, error) {
	url := fmt.Sprintf(
		"%s/v1/forecast?latitude=%f&longitude=%f&current=weather_code&hourly=weather_code&forecast_days=2&timezone=auto",
		c.baseURL, at.Lat, at.Lon)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Weather{}, fmt.Errorf("provider: build weather request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return Weather{}, fmt.Errorf("provider: weather request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Weather{}, fmt.Errorf("provider: weather request: status %d", resp.StatusCode)
	}

	var parsed meteoResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return Weather{}, fmt.Errorf("provider: decode weather response: %w", err)
	}

	out := Weather{Condition: conditionLabel(parsed.Current.WeatherCode)}
	for i, ts := range parsed.Hourly.Time {
		if i >= len(parsed.Hourly.WeatherCode) {
			break
		}
		// Open-Meteo hourly timestamps omit the zone suffix.
		t, err := time.ParseInLocation("2006-01-02T15:04", ts, time.Local)
		if err != nil {
			continue
		}
		out.Hourly = append(out.Hourly, HourlyForecast{
			Time:      t,
			Condition: conditionLabel(parsed.Hourly.WeatherCode[i]),
		})
	}
	return out, nil
}

// conditionLabel maps a WMO weather code to a primary condition label.
func conditionLabel(code int) string {
	switch {
	case code == 0:
		return "Clear"
	case code <= 3:
		return "Clouds"
	case code == 45 || code == 48:
		return "Fog"
	case code >= 51 && code <= 57:
		return "Drizzle"
	case code >= 61 && code <= 67:
		return "Rain"
	case code >= 71 && code <= 77:
		return "Snow"
	case code >= 80 && code <= 82:
		return "Rain"
	case code == 85 || code == 86:
		return "Snow"
	case code >= 95:
		return "Thunderstorm"
	default:
		return "Unknown"
	}
}
