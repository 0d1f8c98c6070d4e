package data

import (
	"math"
	"testing"
	"time"
)

func testDateRange() (time.Time, time.Time) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC)
	return start, end
}

func TestSyntheticProviderDeterministic(t *testing.T) {
	prov := NewSyntheticProvider()
	start, end := testDateRange()

	first, err := prov.DailyBars("AAPL", start, end)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := prov.DailyBars("AAPL", start, end)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(first) == 0 {
		t.Fatalf("expected non-empty bars")
	}
	if len(first) != len(second) {
		t.Fatalf("bar counts differ between calls: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("bar %d differs between calls: %+v vs %+v", i, first[i], second[i])
		}
	}

	s1, err := prov.LatestSpot("AAPL")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	s2, _ := prov.LatestSpot("AAPL")
	if s1 != s2 || s1 <= 0 {
		t.Fatalf("expected stable positive spot, got %v and %v", s1, s2)
	}
}

func TestSyntheticBarsCoverTradingDays(t *testing.T) {
	prov := NewSyntheticProvider()
	start, end := testDateRange()

	bars, err := prov.DailyBars("SPY", start, end)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, b := range bars {
		if b.Date.Before(start) || b.Date.After(end) {
			t.Fatalf("bar date out of range: %v", b.Date)
		}
		if wd := b.Date.Weekday(); wd == time.Saturday || wd == time.Sunday {
			t.Fatalf("bar on a weekend: %v", b.Date)
		}
		if b.High < b.Low {
			t.Fatalf("bar high %f below low %f at %v", b.High, b.Low, b.Date)
		}
	}
}

func TestRealizedVolatility(t *testing.T) {
	t.Run("constant growth has zero volatility", func(t *testing.T) {
		day := time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC)
		var bars []Bar
		price := 100.0
		for i := 0; i < 10; i++ {
			bars = append(bars, Bar{Date: day.AddDate(0, 0, i), Close: price})
			price *= 1.01
		}

		vol, err := RealizedVolatility(bars)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if math.Abs(vol) > 1e-10 {
			t.Fatalf("expected zero volatility for constant growth, got %g", vol)
		}
	})

	t.Run("random walk has positive volatility", func(t *testing.T) {
		prov := NewSyntheticProvider()
		start, end := testDateRange()
		bars, err := prov.DailyBars("MSFT", start, end)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		vol, err := RealizedVolatility(bars)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if vol <= 0 {
			t.Fatalf("expected positive volatility, got %g", vol)
		}
	})

	t.Run("too few bars", func(t *testing.T) {
		_, err := RealizedVolatility([]Bar{{Close: 100}})
		if err == nil {
			t.Fatalf("expected error for a single bar")
		}
	})
}
