package data

import (
	"fmt"
	"hash/fnv"
	"math"
	"math/rand/v2"
	"time"
)

// synthDataProvider implements Provider with generated data, used when no
// API key is configured (offline development, tests). Output is a random
// walk seeded from the ticker, so the same ticker always produces the
// same series.
type synthDataProvider struct{}

func NewSyntheticProvider() Provider { return &synthDataProvider{} }

func (synthDataProv *synthDataProvider) LatestSpot(underlying string) (float64, error) {
	if underlying == "" {
		return 0, fmt.Errorf("underlying must not be empty")
	}
	return synthDataProv.basePrice(underlying), nil
}

func (synthDataProv *synthDataProvider) DailyBars(underlying string, fromDate, toDate time.Time) ([]Bar, error) {
	if underlying == "" {
		return nil, fmt.Errorf("underlying must not be empty")
	}
	if toDate.Before(fromDate) {
		return nil, fmt.Errorf("toDate %s before fromDate %s",
			toDate.Format("2006-01-02"), fromDate.Format("2006-01-02"))
	}

	rng := rand.New(rand.NewPCG(tickerSeed(underlying), 0))
	price := synthDataProv.basePrice(underlying)

	var out []Bar
	for cur := fromDate; !cur.After(toDate); cur = cur.AddDate(0, 0, 1) {
		if cur.Weekday() == time.Saturday || cur.Weekday() == time.Sunday {
			continue
		}
		delta := rng.NormFloat64() * 0.01 * price
		open := price
		close := price + delta
		high := math.Max(open, close) + math.Abs(rng.NormFloat64()*0.3)
		low := math.Min(open, close) - math.Abs(rng.NormFloat64()*0.3)
		out = append(out, Bar{
			Date: cur, Open: open, High: high, Low: low, Close: close,
			Vol: 1000 + float64(rng.IntN(5000)),
		})
		price = close
	}
	return out, nil
}

// basePrice spreads tickers over roughly 50..250 so different symbols
// look distinct.
func (synthDataProv *synthDataProvider) basePrice(underlying string) float64 {
	return 50 + float64(tickerSeed(underlying)%201)
}

func tickerSeed(underlying string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(underlying))
	return h.Sum64()
}
