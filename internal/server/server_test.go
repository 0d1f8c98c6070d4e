package server

import (
	"bytes"
	"encoding/json"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/contactkeval/option-pricer/internal/data"
	"github.com/contactkeval/option-pricer/internal/pricing"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(New(data.NewSyntheticProvider()).Router())
	t.Cleanup(ts.Close)
	return ts
}

func postJSON(t *testing.T, url string, body any) (*http.Response, []byte) {
	t.Helper()
	b, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshaling request: %v", err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(b))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	defer resp.Body.Close()
	out, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("reading response: %v", err)
	}
	return resp, out
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/health")
	if err != nil {
		t.Fatalf("GET /health: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}

func TestPriceMonteCarloEndpoint(t *testing.T) {
	ts := newTestServer(t)

	req := map[string]any{
		"spot": 100.0, "maturity": 1.0, "rate": 0.05, "volatility": 0.2,
		"simulations": 5000, "seed": 42, "payoff": "max(S - 100, 0)",
	}

	resp, body := postJSON(t, ts.URL+"/api/price", req)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, body)
	}

	var first pricing.Estimate
	if err := json.Unmarshal(body, &first); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if first.Price <= 0 || first.StdError <= 0 {
		t.Fatalf("expected positive price and std error, got %+v", first)
	}
	if first.Simulations != 5000 {
		t.Fatalf("expected 5000 simulations reported, got %d", first.Simulations)
	}

	// Same seed, same request: the endpoint must be deterministic.
	_, body2 := postJSON(t, ts.URL+"/api/price", req)
	var second pricing.Estimate
	if err := json.Unmarshal(body2, &second); err != nil {
		t.Fatalf("decoding second response: %v", err)
	}
	if first.Price != second.Price {
		t.Fatalf("seeded endpoint not deterministic: %v vs %v", first.Price, second.Price)
	}
}

func TestPriceLatticeEndpoint(t *testing.T) {
	ts := newTestServer(t)

	req := map[string]any{
		"spot": 100.0, "strike": 100.0, "maturity": 1.0, "rate": 0.05,
		"volatility": 0.2, "steps": 200, "option_type": "put", "american": true,
	}

	resp, body := postJSON(t, ts.URL+"/api/price/lattice", req)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, body)
	}

	var out struct {
		Price float64 `json:"price"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		t.Fatalf("decoding response: %v", err)
	}

	want, err := pricing.PriceLattice(pricing.LatticeParameters{
		Spot: 100, Strike: 100, Maturity: 1, Rate: 0.05, Volatility: 0.2,
		Steps: 200, OptionType: pricing.Put, American: true,
	})
	if err != nil {
		t.Fatalf("direct pricing: %v", err)
	}
	if math.Abs(out.Price-want) > 1e-9 {
		t.Fatalf("endpoint price %v differs from direct price %v", out.Price, want)
	}
}

func TestRejectsBadPayoff(t *testing.T) {
	ts := newTestServer(t)

	req := map[string]any{
		"spot": 100.0, "maturity": 1.0, "rate": 0.05, "volatility": 0.2,
		"simulations": 100, "payoff": "os.system('rm -rf /')",
	}

	resp, body := postJSON(t, ts.URL+"/api/price", req)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", resp.StatusCode, body)
	}
	if !strings.Contains(string(body), "unknown identifier") {
		t.Fatalf("expected the offending identifier to be named, got: %s", body)
	}
}

func TestRejectsBadParameters(t *testing.T) {
	ts := newTestServer(t)

	cases := []struct {
		name string
		req  map[string]any
	}{
		{"negative volatility", map[string]any{
			"spot": 100.0, "maturity": 1.0, "rate": 0.05, "volatility": -0.2,
			"simulations": 100, "payoff": "max(S - 100, 0)",
		}},
		{"zero simulations", map[string]any{
			"spot": 100.0, "maturity": 1.0, "rate": 0.05, "volatility": 0.2,
			"simulations": 0, "payoff": "max(S - 100, 0)",
		}},
		{"missing spot", map[string]any{
			"maturity": 1.0, "rate": 0.05, "volatility": 0.2,
			"simulations": 100, "payoff": "max(S - 100, 0)",
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp, body := postJSON(t, ts.URL+"/api/price", tc.req)
			if resp.StatusCode != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d: %s", resp.StatusCode, body)
			}
		})
	}
}

// A payoff that compiles but fails on a simulated price is the caller's
// problem to fix, reported as unprocessable rather than a bad request.
func TestEvaluationErrorStatus(t *testing.T) {
	ts := newTestServer(t)

	req := map[string]any{
		"spot": 100.0, "maturity": 1.0, "rate": 0.05, "volatility": 0.2,
		"simulations": 10, "payoff": "1 / 0",
	}

	resp, body := postJSON(t, ts.URL+"/api/price", req)
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d: %s", resp.StatusCode, body)
	}
}

func TestMarketEndpoint(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/api/market/AAPL")
	if err != nil {
		t.Fatalf("GET market: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, body)
	}

	var out struct {
		Ticker      string  `json:"ticker"`
		Spot        float64 `json:"spot"`
		RealizedVol float64 `json:"realized_vol"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if out.Ticker != "AAPL" || out.Spot <= 0 || out.RealizedVol <= 0 {
		t.Fatalf("unexpected market data: %+v", out)
	}
}

func TestIndexForm(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/")
	if err != nil {
		t.Fatalf("GET /: %v", err)
	}
	page, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if !strings.Contains(string(page), "Payoff expression") {
		t.Fatalf("form page missing payoff field: %s", page)
	}

	form := url.Values{
		"spot": {"100"}, "maturity": {"1"}, "rate": {"0.05"},
		"volatility": {"0.2"}, "simulations": {"2000"}, "seed": {"7"},
		"payoff": {"max(S - 100, 0)"},
	}
	resp, err = http.PostForm(ts.URL+"/", form)
	if err != nil {
		t.Fatalf("POST /: %v", err)
	}
	page, _ = io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if !strings.Contains(string(page), "Estimated price") {
		t.Fatalf("expected a priced result in the page: %s", page)
	}

	// An empty optional seed must not break form decoding.
	form.Set("seed", "")
	resp, err = http.PostForm(ts.URL+"/", form)
	if err != nil {
		t.Fatalf("POST / with empty seed: %v", err)
	}
	page, _ = io.ReadAll(resp.Body)
	resp.Body.Close()
	if !strings.Contains(string(page), "Estimated price") {
		t.Fatalf("expected a priced result with empty seed: %s", page)
	}
}
