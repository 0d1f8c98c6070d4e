// Package pricing implements the numerical option pricing engines: a
// Cox-Ross-Rubinstein binomial lattice (European and American exercise)
// and a Monte Carlo simulator under geometric Brownian motion with a
// caller-supplied payoff.
//
// Both engines validate their inputs up front and return a
// *ParameterError before any computation when a value is out of domain.
// Results are plain float64 present values; nothing is clamped or
// rounded.
package pricing

import "math"

// OptionType selects the payoff direction of a vanilla option.
type OptionType string

const (
	Call OptionType = "call"
	Put  OptionType = "put"
)

// LatticeParameters configures the binomial pricing tree. The zero
// OptionType means Call.
type LatticeParameters struct {
	Spot          float64    `json:"spot"`                     // current underlying price
	Strike        float64    `json:"strike"`                   // option strike
	Maturity      float64    `json:"maturity"`                 // time to maturity in years
	Rate          float64    `json:"rate"`                     // risk-free rate, yearly decimal
	Volatility    float64    `json:"volatility"`               // annualized volatility
	Steps         int        `json:"steps"`                    // tree depth, must be positive
	DividendYield float64    `json:"dividend_yield,omitempty"` // continuous yield, yearly decimal
	OptionType    OptionType `json:"option_type,omitempty"`    // call or put
	American      bool       `json:"american,omitempty"`       // allow early exercise
}

func (p *LatticeParameters) validate() error {
	if p.Spot <= 0 {
		return paramErrorf("spot", "spot price must be positive, got %g", p.Spot)
	}
	if p.Strike <= 0 {
		return paramErrorf("strike", "strike price must be positive, got %g", p.Strike)
	}
	if p.Maturity <= 0 {
		return paramErrorf("maturity", "maturity must be positive, got %g", p.Maturity)
	}
	if p.Volatility <= 0 {
		return paramErrorf("volatility", "volatility must be positive, got %g", p.Volatility)
	}
	if p.Steps <= 0 {
		return paramErrorf("steps", "steps must be a positive integer, got %d", p.Steps)
	}
	if p.OptionType != Call && p.OptionType != Put {
		return paramErrorf("option_type", "option type must be %q or %q, got %q", Call, Put, p.OptionType)
	}
	return nil
}

// intrinsic is the exercise value of the option at the given underlying
// price.
func (p *LatticeParameters) intrinsic(price float64) float64 {
	if p.OptionType == Call {
		return math.Max(price-p.Strike, 0)
	}
	return math.Max(p.Strike-price, 0)
}

// PriceLattice prices an option on the Cox-Ross-Rubinstein binomial tree.
//
// The tree recombines (up * down = 1), so the whole computation runs over
// a single value buffer of steps+1 entries that is overwritten level by
// level during backward induction. For American options each node takes
// the maximum of the continuation value and the immediate exercise value.
//
// Returns:
//   - float64: the present value of the option
//   - error: a *ParameterError when an input is out of domain or the
//     derived risk-neutral probability leaves [0, 1] (the step count,
//     volatility and rate combination would admit arbitrage in the tree)
func PriceLattice(params LatticeParameters) (float64, error) {
	if params.OptionType == "" {
		params.OptionType = Call
	}
	if err := params.validate(); err != nil {
		return 0, err
	}

	dt := params.Maturity / float64(params.Steps)
	up := math.Exp(params.Volatility * math.Sqrt(dt))
	down := 1 / up
	discount := math.Exp(-params.Rate * dt)

	growth := math.Exp((params.Rate - params.DividendYield) * dt)
	probability := (growth - down) / (up - down)

	if probability < 0 || probability > 1 {
		return 0, paramErrorf("probability",
			"risk-neutral probability %g is not between 0 and 1; check steps, volatility and rate", probability)
	}

	// Option values at maturity, indexed by the number of up moves.
	values := make([]float64, params.Steps+1)
	for j := range values {
		price := params.Spot * math.Pow(up, float64(j)) * math.Pow(down, float64(params.Steps-j))
		values[j] = params.intrinsic(price)
	}

	// Backward induction, reusing the same buffer: values[i] at entry
	// holds the later-step value for i up moves.
	for step := params.Steps - 1; step >= 0; step-- {
		for i := 0; i <= step; i++ {
			continuation := discount * (probability*values[i+1] + (1-probability)*values[i])
			if params.American {
				price := params.Spot * math.Pow(up, float64(i)) * math.Pow(down, float64(step-i))
				values[i] = math.Max(continuation, params.intrinsic(price))
			} else {
				values[i] = continuation
			}
		}
	}

	return values[0], nil
}
