package pricing

import "math"

// BlackScholesPrice calculates the closed-form price of a European option
// under the Black-Scholes model. The lattice engine's European prices
// converge to this value as the step count grows, which is how the tests
// pin down correctness.
//
// Parameters:
//   - optionType: Call or Put
//   - S: spot price of the underlying asset
//   - K: strike price of the option
//   - T: time to expiry in years
//   - r: risk-free interest rate (annual)
//   - q: continuous dividend yield (annual)
//   - sigma: volatility of the underlying asset (annual, as a decimal)
//
// Returns:
//
//	The theoretical price of the option. If time to expiry or volatility
//	is zero or negative, returns the intrinsic value of the option.
func BlackScholesPrice(
	optionType OptionType,
	S float64, // spot
	K float64, // strike
	T float64, // time to expiry in years
	r float64, // risk-free rate
	q float64, // dividend yield
	sigma float64, // volatility
) float64 {

	if T <= 0 || sigma <= 0 {
		if optionType == Put {
			return math.Max(0, K-S)
		}
		return math.Max(0, S-K) // intrinsic fallback
	}

	d1 := (math.Log(S/K) + (r-q+0.5*sigma*sigma)*T) / (sigma * math.Sqrt(T))
	d2 := d1 - sigma*math.Sqrt(T)

	if optionType == Call {
		return S*math.Exp(-q*T)*normCDF(d1) - K*math.Exp(-r*T)*normCDF(d2)
	}
	return K*math.Exp(-r*T)*normCDF(-d2) - S*math.Exp(-q*T)*normCDF(-d1)
}

// normCDF computes the cumulative distribution function of the standard
// normal distribution for a given value x using the error function
// approximation. It returns a value between 0 and 1 representing the
// probability that a standard normal random variable is less than or
// equal to x.
func normCDF(x float64) float64 {
	return 0.5 * (1.0 + math.Erf(x/math.Sqrt2))
}
