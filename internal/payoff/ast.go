package payoff

import "math"

//
// ==========================
// AST
// ==========================
//
// The node variants below are the entire vocabulary the parser can emit.
// There is no "generic" node and no validation pass: an expression that
// would need anything outside this set simply cannot be represented, which
// is what makes the sandbox an allow-list rather than a deny-list.
//

type node interface {
	// eval computes the node's value with S bound to price. Implementations
	// are pure: they read only their operands and the price argument.
	eval(price float64) (float64, error)
}

// numberNode is a literal constant (including resolved math constants).
type numberNode struct {
	value float64
}

func (n *numberNode) eval(float64) (float64, error) { return n.value, nil }

// priceNode is the free variable S.
type priceNode struct{}

func (priceNode) eval(price float64) (float64, error) { return price, nil }

// unaryNode is unary plus or minus.
type unaryNode struct {
	op      tokenKind // tokPlus or tokMinus
	operand node
}

func (n *unaryNode) eval(price float64) (float64, error) {
	v, err := n.operand.eval(price)
	if err != nil {
		return 0, err
	}
	if n.op == tokMinus {
		return -v, nil
	}
	return v, nil
}

// binaryNode covers the arithmetic and bitwise binary operators.
type binaryNode struct {
	op    tokenKind
	left  node
	right node
}

func (n *binaryNode) eval(price float64) (float64, error) {
	l, err := n.left.eval(price)
	if err != nil {
		return 0, err
	}
	r, err := n.right.eval(price)
	if err != nil {
		return 0, err
	}

	switch n.op {
	case tokPlus:
		return l + r, nil
	case tokMinus:
		return l - r, nil
	case tokStar:
		return l * r, nil
	case tokSlash:
		if r == 0 {
			return 0, evalErrorf("division by zero")
		}
		return l / r, nil
	case tokFloorDiv:
		if r == 0 {
			return 0, evalErrorf("integer division by zero")
		}
		return math.Floor(l / r), nil
	case tokPercent:
		if r == 0 {
			return 0, evalErrorf("modulo by zero")
		}
		return floorMod(l, r), nil
	case tokPower:
		v := math.Pow(l, r)
		if math.IsNaN(v) && !math.IsNaN(l) && !math.IsNaN(r) {
			return 0, evalErrorf("math domain error: %g ** %g", l, r)
		}
		return v, nil
	case tokLShift, tokRShift:
		a, b, err := integralOperands(tokenNames[n.op], l, r)
		if err != nil {
			return 0, err
		}
		if b < 0 || b > 62 {
			return 0, evalErrorf("shift count %d out of range", b)
		}
		if n.op == tokLShift {
			return float64(a << uint(b)), nil
		}
		return float64(a >> uint(b)), nil
	case tokPipe, tokAmp, tokCaret:
		a, b, err := integralOperands(tokenNames[n.op], l, r)
		if err != nil {
			return 0, err
		}
		switch n.op {
		case tokPipe:
			return float64(a | b), nil
		case tokAmp:
			return float64(a & b), nil
		default:
			return float64(a ^ b), nil
		}
	}
	return 0, evalErrorf("unsupported operator %s", tokenNames[n.op])
}

// compareNode is a comparison chain: a < b < c evaluates each operand once
// and requires every adjacent pair to hold. A single comparison is a chain
// of length one. The result is 1 or 0, usable in arithmetic, e.g.
// (S > 100) * 5.
type compareNode struct {
	operands []node      // len(ops) + 1 entries
	ops      []tokenKind // tokGT..tokNE
}

func (n *compareNode) eval(price float64) (float64, error) {
	left, err := n.operands[0].eval(price)
	if err != nil {
		return 0, err
	}
	for i, op := range n.ops {
		right, err := n.operands[i+1].eval(price)
		if err != nil {
			return 0, err
		}
		var ok bool
		switch op {
		case tokGT:
			ok = left > right
		case tokGE:
			ok = left >= right
		case tokLT:
			ok = left < right
		case tokLE:
			ok = left <= right
		case tokEQ:
			ok = left == right
		case tokNE:
			ok = left != right
		}
		if !ok {
			return 0, nil
		}
		left = right
	}
	return 1, nil
}

// condNode is the conditional expression: then if cond else els.
// Only the taken branch is evaluated.
type condNode struct {
	cond node
	then node
	els  node
}

func (n *condNode) eval(price float64) (float64, error) {
	c, err := n.cond.eval(price)
	if err != nil {
		return 0, err
	}
	if c != 0 {
		return n.then.eval(price)
	}
	return n.els.eval(price)
}

// callNode is a call to an allow-listed function. The callee is resolved
// at parse time; name is retained only for error messages.
type callNode struct {
	name string
	fn   *builtin
	args []node
}

func (n *callNode) eval(price float64) (float64, error) {
	args := make([]float64, len(n.args))
	for i, a := range n.args {
		v, err := a.eval(price)
		if err != nil {
			return 0, err
		}
		args[i] = v
	}
	return n.fn.apply(args)
}

//
// ==========================
// Numeric helpers
// ==========================
//

// floorMod is the floored modulo: the result takes the sign of the
// divisor, so -7 % 3 is 2 and 7 % -3 is -2.
func floorMod(a, b float64) float64 {
	m := math.Mod(a, b)
	if m != 0 && (m < 0) != (b < 0) {
		m += b
	}
	return m
}

// integralOperands converts both operands of a bitwise operator to int64,
// rejecting non-integral values. Bitwise operators are defined on integers
// only; applying them to a fractional price is an evaluation error.
func integralOperands(op string, l, r float64) (int64, int64, error) {
	a, ok := toIntegral(l)
	if !ok {
		return 0, 0, evalErrorf("operator %s requires integral operands, got %g", op, l)
	}
	b, ok := toIntegral(r)
	if !ok {
		return 0, 0, evalErrorf("operator %s requires integral operands, got %g", op, r)
	}
	return a, b, nil
}

func toIntegral(v float64) (int64, bool) {
	if math.IsNaN(v) || math.IsInf(v, 0) || math.Trunc(v) != v {
		return 0, false
	}
	if v > math.MaxInt64 || v < math.MinInt64 {
		return 0, false
	}
	return int64(v), true
}
