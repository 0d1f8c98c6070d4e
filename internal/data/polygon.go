package data

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/contactkeval/option-pricer/internal/logger"
)

// polygonDataProvider implements Provider using the Polygon.io REST API.
type polygonDataProvider struct {
	apiKey  string
	client  *http.Client
	baseURL string
}

// NewPolygonProvider constructs a Polygon.io-backed data provider.
func NewPolygonProvider(apiKey string) Provider {
	logger.Infof("initializing Polygon data provider")
	return &polygonDataProvider{
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 30 * time.Second},
		baseURL: "https://api.polygon.io",
	}
}

// LatestSpot returns the previous session's close for the underlying.
func (polygonDataProv *polygonDataProvider) LatestSpot(underlying string) (float64, error) {
	reqURL := fmt.Sprintf("%s/v2/aggs/ticker/%s/prev?adjusted=true&apiKey=%s",
		polygonDataProv.baseURL, url.PathEscape(underlying), polygonDataProv.apiKey)

	resp, err := polygonDataProv.client.Get(reqURL)
	if err != nil {
		return 0, fmt.Errorf("polygon prev-close request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("polygon prev-close status %d", resp.StatusCode)
	}

	var body struct {
		Results []struct {
			Close float64 `json:"c"`
		} `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return 0, fmt.Errorf("polygon prev-close decode: %w", err)
	}
	if len(body.Results) == 0 {
		return 0, fmt.Errorf("no previous close for %s", underlying)
	}

	logger.Debugf("latest spot %s=%.4f", underlying, body.Results[0].Close)
	return body.Results[0].Close, nil
}

// DailyBars returns daily aggregates over the date range, oldest first.
func (polygonDataProv *polygonDataProvider) DailyBars(underlying string, fromDate, toDate time.Time) ([]Bar, error) {
	reqURL := fmt.Sprintf("%s/v2/aggs/ticker/%s/range/1/day/%s/%s?adjusted=true&sort=asc&limit=50000&apiKey=%s",
		polygonDataProv.baseURL, url.PathEscape(underlying),
		fromDate.Format("2006-01-02"), toDate.Format("2006-01-02"), polygonDataProv.apiKey)

	resp, err := polygonDataProv.client.Get(reqURL)
	if err != nil {
		return nil, fmt.Errorf("polygon aggs request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("polygon aggs status %d", resp.StatusCode)
	}

	var body struct {
		Results []struct {
			Time  int64   `json:"t"`
			Open  float64 `json:"o"`
			High  float64 `json:"h"`
			Low   float64 `json:"l"`
			Close float64 `json:"c"`
			Vol   float64 `json:"v"`
		} `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("polygon aggs decode: %w", err)
	}

	out := make([]Bar, 0, len(body.Results))
	for _, r := range body.Results {
		out = append(out, Bar{
			Date:  time.UnixMilli(r.Time).UTC(),
			Open:  r.Open,
			High:  r.High,
			Low:   r.Low,
			Close: r.Close,
			Vol:   r.Vol,
		})
	}
	logger.Debugf("fetched %d daily bars for %s", len(out), underlying)
	return out, nil
}
