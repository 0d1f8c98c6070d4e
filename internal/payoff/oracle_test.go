package payoff

import (
	"math"
	"testing"

	"github.com/Knetic/govaluate"
)

// The sandbox shares its plain-arithmetic subset with govaluate's
// grammar, so govaluate serves as an independent oracle for operator
// precedence and evaluation over that subset. (govaluate cannot replace
// the sandbox itself: its grammar is open — strings, accessors, arbitrary
// functions — and its modulo/floor semantics differ outside this subset.)
func TestArithmeticAgainstGovaluate(t *testing.T) {
	exprs := []string{
		"(S - 100) * 2 + 5",
		"S / 4 + 3 * 2",
		"2 ** 10 - S",
		"S * S - 2 * S + 1",
		"-S + 250",
		"(S + 5) * (S - 5)",
	}
	prices := []float64{80, 100, 120, 123.45}

	for _, src := range exprs {
		expr := mustCompile(t, src)
		oracle, err := govaluate.NewEvaluableExpression(src)
		if err != nil {
			t.Fatalf("govaluate rejected %q: %v", src, err)
		}

		for _, price := range prices {
			got, err := expr.Evaluate(price)
			if err != nil {
				t.Fatalf("Evaluate(%q, %g) failed: %v", src, price, err)
			}

			raw, err := oracle.Evaluate(map[string]interface{}{"S": price})
			if err != nil {
				t.Fatalf("govaluate Evaluate(%q, %g) failed: %v", src, price, err)
			}
			want, ok := raw.(float64)
			if !ok {
				t.Fatalf("govaluate returned %T for %q", raw, src)
			}

			if math.Abs(got-want) > 1e-9 {
				t.Fatalf("%q at S=%g: sandbox %g, govaluate %g", src, price, got, want)
			}
		}
	}
}
