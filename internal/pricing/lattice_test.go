package pricing

import (
	"errors"
	"math"
	"testing"
)

// With enough steps the European lattice price must converge to the
// closed-form Black-Scholes value.
func TestLatticeConvergesToBlackScholes(t *testing.T) {
	params := LatticeParameters{
		Spot:       100,
		Strike:     100,
		Maturity:   1,
		Rate:       0.05,
		Volatility: 0.2,
		Steps:      500,
		OptionType: Call,
	}

	got, err := PriceLattice(params)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := BlackScholesPrice(Call, 100, 100, 1, 0.05, 0, 0.2)
	if math.Abs(got-want) > 0.05 {
		t.Fatalf("lattice price %f too far from Black-Scholes %f", got, want)
	}
	// Known value for this parameter set.
	if math.Abs(got-10.45) > 0.05 {
		t.Fatalf("expected price near 10.45, got %f", got)
	}
}

// Early exercise is worth a non-negative amount, for calls and puts, with
// and without dividends.
func TestAmericanAtLeastEuropean(t *testing.T) {
	cases := []struct {
		name       string
		optionType OptionType
		dividend   float64
	}{
		{"put no dividend", Put, 0},
		{"put with dividend", Put, 0.03},
		{"call no dividend", Call, 0},
		{"call with dividend", Call, 0.03},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			params := LatticeParameters{
				Spot:          100,
				Strike:        110,
				Maturity:      1,
				Rate:          0.05,
				Volatility:    0.25,
				Steps:         200,
				DividendYield: tc.dividend,
				OptionType:    tc.optionType,
			}

			european, err := PriceLattice(params)
			if err != nil {
				t.Fatalf("european: %v", err)
			}
			params.American = true
			american, err := PriceLattice(params)
			if err != nil {
				t.Fatalf("american: %v", err)
			}

			if american < european-1e-9 {
				t.Fatalf("american price %f below european %f", american, european)
			}
		})
	}
}

// The recombining tree prices the forward exactly, so European put-call
// parity holds to floating-point precision at any step count.
func TestLatticePutCallParity(t *testing.T) {
	params := LatticeParameters{
		Spot:          105,
		Strike:        100,
		Maturity:      0.75,
		Rate:          0.04,
		Volatility:    0.3,
		Steps:         200,
		DividendYield: 0.02,
	}

	params.OptionType = Call
	call, err := PriceLattice(params)
	if err != nil {
		t.Fatalf("call: %v", err)
	}
	params.OptionType = Put
	put, err := PriceLattice(params)
	if err != nil {
		t.Fatalf("put: %v", err)
	}

	lhs := call - put
	rhs := params.Spot*math.Exp(-params.DividendYield*params.Maturity) -
		params.Strike*math.Exp(-params.Rate*params.Maturity)

	if math.Abs(lhs-rhs) > 1e-8 {
		t.Fatalf("put-call parity violated: LHS=%.10f RHS=%.10f", lhs, rhs)
	}
}

// Omitting the option type prices a call, matching the original
// parameter defaults.
func TestLatticeDefaultOptionType(t *testing.T) {
	params := LatticeParameters{
		Spot: 100, Strike: 95, Maturity: 0.5, Rate: 0.03, Volatility: 0.2, Steps: 50,
	}

	implicit, err := PriceLattice(params)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	params.OptionType = Call
	explicit, err := PriceLattice(params)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if implicit != explicit {
		t.Fatalf("default option type priced %f, explicit call %f", implicit, explicit)
	}
}

func TestLatticeParameterErrors(t *testing.T) {
	valid := LatticeParameters{
		Spot: 100, Strike: 100, Maturity: 1, Rate: 0.05, Volatility: 0.2,
		Steps: 100, OptionType: Call,
	}

	cases := []struct {
		name   string
		mutate func(*LatticeParameters)
	}{
		{"zero spot", func(p *LatticeParameters) { p.Spot = 0 }},
		{"negative spot", func(p *LatticeParameters) { p.Spot = -10 }},
		{"zero strike", func(p *LatticeParameters) { p.Strike = 0 }},
		{"zero maturity", func(p *LatticeParameters) { p.Maturity = 0 }},
		{"negative maturity", func(p *LatticeParameters) { p.Maturity = -1 }},
		{"zero volatility", func(p *LatticeParameters) { p.Volatility = 0 }},
		{"zero steps", func(p *LatticeParameters) { p.Steps = 0 }},
		{"negative steps", func(p *LatticeParameters) { p.Steps = -5 }},
		{"bad option type", func(p *LatticeParameters) { p.OptionType = "straddle" }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			params := valid
			tc.mutate(&params)

			_, err := PriceLattice(params)
			if err == nil {
				t.Fatalf("expected error, got nil")
			}
			var perr *ParameterError
			if !errors.As(err, &perr) {
				t.Fatalf("expected *ParameterError, got %T: %v", err, err)
			}
		})
	}
}

// A rate far out of line with the per-step volatility makes the
// risk-neutral probability leave [0,1]; that must abort pricing, not be
// clamped.
func TestLatticeProbabilityOutOfRange(t *testing.T) {
	params := LatticeParameters{
		Spot: 100, Strike: 100, Maturity: 1, Rate: 1.0, Volatility: 0.01,
		Steps: 1, OptionType: Call,
	}

	_, err := PriceLattice(params)
	if err == nil {
		t.Fatalf("expected probability-range error, got nil")
	}
	var perr *ParameterError
	if !errors.As(err, &perr) {
		t.Fatalf("expected *ParameterError, got %T: %v", err, err)
	}
	if perr.Field != "probability" {
		t.Fatalf("expected probability error, got field %q", perr.Field)
	}
}

func TestBlackScholesPutCallParity(t *testing.T) {
	call := BlackScholesPrice(Call, 100, 100, 0.5, 0.03, 0.01, 0.25)
	put := BlackScholesPrice(Put, 100, 100, 0.5, 0.03, 0.01, 0.25)

	lhs := call - put
	rhs := 100*math.Exp(-0.01*0.5) - 100*math.Exp(-0.03*0.5)
	if math.Abs(lhs-rhs) > 1e-9 {
		t.Fatalf("put-call parity violated: LHS=%f RHS=%f", lhs, rhs)
	}
}
