// Package payoff compiles textual payoff expressions into reusable,
// side-effect-free evaluators over a single free variable S (the terminal
// price of the underlying).
//
// The expression text may come from an untrusted caller (the web form), so
// this package is a security boundary, not a convenience parser: the
// grammar is a closed allow-list and the parser structurally cannot
// produce anything outside it. There is no dynamic code execution
// anywhere — compilation yields a small tree of arithmetic nodes and
// evaluation is a recursive walk over that tree.
//
// Grammar (this is the externally visible contract of the pricing API):
//
//	literal numbers        1, 2.5, .5, 1e-3
//	the price variable     S
//	unary                  +x  -x
//	arithmetic             x + y   x - y   x * y   x / y   x // y   x % y   x ** y
//	bitwise                x << y  x >> y  x | y   x & y   x ^ y
//	comparison             x > y   x >= y  x < y   x <= y  x == y  x != y
//	                       (chains allowed: 90 < S < 110)
//	conditional            a if cond else b
//	calls                  max(x, y, ...)  min(x, y, ...)  abs(x)
//	math namespace         math.exp, math.log, math.log2, math.log10,
//	                       math.sqrt, math.pow, math.sin, math.cos,
//	                       math.tan, math.asin, math.acos, math.atan,
//	                       math.sinh, math.cosh, math.tanh, math.floor,
//	                       math.ceil, math.fabs, math.erf
//	math constants         math.pi, math.e, math.tau, math.inf
//
// Everything else — assignment, loops, strings, imports, attribute access
// outside the math namespace, any other identifier — is rejected at
// compile time with a CompileError naming the offending construct.
//
// Semantics follow the usual numeric conventions: all values are float64,
// comparisons yield 1 or 0, a conditional treats any non-zero value as
// true, % takes the sign of its divisor, // floors, and the bitwise
// operators require both operands to be integral. Division by zero,
// out-of-range shifts, and math-function domain violations surface as
// EvalError rather than silently producing 0 or Inf.
package payoff

// Expression is a compiled payoff. It is immutable after Compile returns
// and holds no per-evaluation state, so a single Expression may be
// evaluated concurrently from any number of goroutines.
type Expression struct {
	src  string
	root node
}

// Compile parses src against the closed payoff grammar and returns a
// reusable evaluator.
//
// Returns:
//   - *Expression: the compiled payoff
//   - error: a *CompileError if src fails to parse or uses a construct
//     outside the allow-list; rejection always happens here, before any
//     evaluation can occur
func Compile(src string) (*Expression, error) {
	p := newParser(src)
	root, err := p.parse()
	if err != nil {
		return nil, err
	}
	return &Expression{src: src, root: root}, nil
}

// Evaluate binds S to price and evaluates the compiled tree.
//
// Returns a *EvalError when a well-formed expression fails for this
// particular input (division by zero, math domain error, and so on).
func (e *Expression) Evaluate(price float64) (float64, error) {
	return e.root.eval(price)
}

// Source returns the original expression text.
func (e *Expression) Source() string { return e.src }
