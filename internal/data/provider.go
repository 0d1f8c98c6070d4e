// Package data provides market data used to prefill pricing inputs: the
// latest traded price of an underlying and its recent daily bars, from
// which a realized-volatility estimate is derived.
//
// The pricing engines themselves never touch this package; it exists for
// the CLI and web layer so a user can price against a live spot instead
// of typing one in.
package data

import (
	"fmt"
	"math"
	"time"

	"github.com/montanaflynn/stats"
)

// Provider supplies market data.
type Provider interface {
	// LatestSpot returns the most recent traded price for the underlying.
	LatestSpot(underlying string) (float64, error)

	// DailyBars returns daily OHLC bars in [fromDate, toDate], oldest first.
	DailyBars(underlying string, fromDate, toDate time.Time) ([]Bar, error)
}

// Bar simplified daily OHLC
type Bar struct {
	Date  time.Time
	Open  float64
	High  float64
	Low   float64
	Close float64
	Vol   float64
}

// tradingDaysPerYear annualizes daily return statistics.
const tradingDaysPerYear = 252

// RealizedVolatility estimates annualized volatility from the sample
// standard deviation of daily close-to-close log returns. This is
// historical volatility, a starting point for the volatility input; it is
// not an implied volatility.
func RealizedVolatility(bars []Bar) (float64, error) {
	if len(bars) < 2 {
		return 0, fmt.Errorf("realized volatility needs at least 2 bars, got %d", len(bars))
	}

	returns := make([]float64, 0, len(bars)-1)
	for i := 1; i < len(bars); i++ {
		prev, cur := bars[i-1].Close, bars[i].Close
		if prev <= 0 || cur <= 0 {
			return 0, fmt.Errorf("non-positive close price in bars at %s", bars[i].Date.Format("2006-01-02"))
		}
		returns = append(returns, math.Log(cur/prev))
	}

	sd, err := stats.StandardDeviationSample(stats.Float64Data(returns))
	if err != nil {
		return 0, fmt.Errorf("computing return deviation: %w", err)
	}
	return sd * math.Sqrt(tradingDaysPerYear), nil
}
