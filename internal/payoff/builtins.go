package payoff

import "math"

//
// ==========================
// Allow-listed callables
// ==========================
//

// builtin is an allow-listed pure function. Arity is checked at compile
// time, domain constraints at evaluation time.
type builtin struct {
	name    string
	minArgs int
	maxArgs int // -1 means variadic
	apply   func(args []float64) (float64, error)
}

// builtins are the bare names callable without qualification.
var builtins = map[string]*builtin{
	"max": {name: "max", minArgs: 2, maxArgs: -1, apply: applyMax},
	"min": {name: "min", minArgs: 2, maxArgs: -1, apply: applyMin},
	"abs": {name: "abs", minArgs: 1, maxArgs: 1, apply: func(args []float64) (float64, error) {
		return math.Abs(args[0]), nil
	}},
}

// mathFuncs are the members of the qualified math namespace. This table is
// the whole namespace: a member not listed here does not exist as far as
// the sandbox is concerned.
var mathFuncs = map[string]*builtin{
	"exp":   fn1("exp", math.Exp, nil),
	"log":   fn1("log", math.Log, positive),
	"log2":  fn1("log2", math.Log2, positive),
	"log10": fn1("log10", math.Log10, positive),
	"sqrt":  fn1("sqrt", math.Sqrt, nonNegative),
	"sin":   fn1("sin", math.Sin, nil),
	"cos":   fn1("cos", math.Cos, nil),
	"tan":   fn1("tan", math.Tan, nil),
	"asin":  fn1("asin", math.Asin, unitInterval),
	"acos":  fn1("acos", math.Acos, unitInterval),
	"atan":  fn1("atan", math.Atan, nil),
	"sinh":  fn1("sinh", math.Sinh, nil),
	"cosh":  fn1("cosh", math.Cosh, nil),
	"tanh":  fn1("tanh", math.Tanh, nil),
	"floor": fn1("floor", math.Floor, nil),
	"ceil":  fn1("ceil", math.Ceil, nil),
	"fabs":  fn1("fabs", math.Abs, nil),
	"erf":   fn1("erf", math.Erf, nil),
	"pow": {name: "pow", minArgs: 2, maxArgs: 2, apply: func(args []float64) (float64, error) {
		v := math.Pow(args[0], args[1])
		if math.IsNaN(v) && !math.IsNaN(args[0]) && !math.IsNaN(args[1]) {
			return 0, evalErrorf("math domain error: pow(%g, %g)", args[0], args[1])
		}
		return v, nil
	}},
}

// mathConsts are the constants reachable as math.<name> without a call.
var mathConsts = map[string]float64{
	"pi":  math.Pi,
	"e":   math.E,
	"tau": 2 * math.Pi,
	"inf": math.Inf(1),
}

// domainCheck validates a single argument before the function runs; nil
// means the function is total.
type domainCheck func(name string, x float64) error

func positive(name string, x float64) error {
	if x <= 0 {
		return evalErrorf("math domain error: %s(%g)", name, x)
	}
	return nil
}

func nonNegative(name string, x float64) error {
	if x < 0 {
		return evalErrorf("math domain error: %s(%g)", name, x)
	}
	return nil
}

func unitInterval(name string, x float64) error {
	if x < -1 || x > 1 {
		return evalErrorf("math domain error: %s(%g)", name, x)
	}
	return nil
}

func fn1(name string, f func(float64) float64, check domainCheck) *builtin {
	return &builtin{
		name:    name,
		minArgs: 1,
		maxArgs: 1,
		apply: func(args []float64) (float64, error) {
			if check != nil {
				if err := check(name, args[0]); err != nil {
					return 0, err
				}
			}
			return f(args[0]), nil
		},
	}
}

func applyMax(args []float64) (float64, error) {
	v := args[0]
	for _, a := range args[1:] {
		v = math.Max(v, a)
	}
	return v, nil
}

func applyMin(args []float64) (float64, error) {
	v := args[0]
	for _, a := range args[1:] {
		v = math.Min(v, a)
	}
	return v, nil
}
