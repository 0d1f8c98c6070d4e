package payoff

//
// ==========================
// Parser
// ==========================
//
// Recursive descent with one level per precedence tier, lowest first:
//
//	conditional    a if cond else b        (right associative)
//	comparison     > >= < <= == !=         (chaining)
//	bitor          |
//	bitxor         ^
//	bitand         &
//	shift          << >>
//	additive       + -
//	term           * / // %
//	unary          + -
//	power          **                      (right associative, binds
//	                                        tighter than unary on the
//	                                        left: -2**2 is -(2**2))
//	primary        literal, S, call, math member, ( ... )
//

type parser struct {
	lex *lexer
	tok token // one-token lookahead
}

func newParser(src string) *parser {
	return &parser{lex: newLexer(src)}
}

// advance moves the lookahead forward. Lexical errors surface here.
func (p *parser) advance() error {
	t, err := p.lex.next()
	if err != nil {
		return err
	}
	p.tok = t
	return nil
}

func (p *parser) expect(kind tokenKind) error {
	if p.tok.kind != kind {
		return compileErrorf(p.tok.text, p.tok.pos,
			"expected %s, found %s", tokenNames[kind], p.tok.describe())
	}
	return p.advance()
}

// parse consumes the whole source and returns the root node. Trailing
// input after a complete expression is an error, which is what rejects
// statement-level constructs such as "S = 1" (the "=" is never a token
// the expression grammar can absorb).
func (p *parser) parse() (node, error) {
	if err := p.advance(); err != nil {
		return nil, err
	}
	if p.tok.kind == tokEOF {
		return nil, compileErrorf("", 0, "empty payoff expression")
	}
	n, err := p.parseConditional()
	if err != nil {
		return nil, err
	}
	if p.tok.kind != tokEOF {
		return nil, compileErrorf(p.tok.text, p.tok.pos,
			"unexpected %s after expression", p.tok.describe())
	}
	return n, nil
}

func (p *parser) parseConditional() (node, error) {
	then, err := p.parseComparison()
	if err != nil {
		return nil, err
	}
	if p.tok.kind != tokIf {
		return then, nil
	}
	if err := p.advance(); err != nil {
		return nil, err
	}
	cond, err := p.parseComparison()
	if err != nil {
		return nil, err
	}
	if err := p.expect(tokElse); err != nil {
		return nil, err
	}
	els, err := p.parseConditional()
	if err != nil {
		return nil, err
	}
	return &condNode{cond: cond, then: then, els: els}, nil
}

func isCompareOp(k tokenKind) bool {
	switch k {
	case tokGT, tokGE, tokLT, tokLE, tokEQ, tokNE:
		return true
	}
	return false
}

func (p *parser) parseComparison() (node, error) {
	first, err := p.parseBitOr()
	if err != nil {
		return nil, err
	}
	if !isCompareOp(p.tok.kind) {
		return first, nil
	}
	cmp := &compareNode{operands: []node{first}}
	for isCompareOp(p.tok.kind) {
		cmp.ops = append(cmp.ops, p.tok.kind)
		if err := p.advance(); err != nil {
			return nil, err
		}
		operand, err := p.parseBitOr()
		if err != nil {
			return nil, err
		}
		cmp.operands = append(cmp.operands, operand)
	}
	return cmp, nil
}

// parseBinaryChain parses a left-associative run of the given operators,
// with next parsing the tighter-binding operand level.
func (p *parser) parseBinaryChain(next func() (node, error), ops ...tokenKind) (node, error) {
	left, err := next()
	if err != nil {
		return nil, err
	}
	for {
		matched := false
		for _, op := range ops {
			if p.tok.kind == op {
				matched = true
				break
			}
		}
		if !matched {
			return left, nil
		}
		op := p.tok.kind
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := next()
		if err != nil {
			return nil, err
		}
		left = &binaryNode{op: op, left: left, right: right}
	}
}

func (p *parser) parseBitOr() (node, error) {
	return p.parseBinaryChain(p.parseBitXor, tokPipe)
}

func (p *parser) parseBitXor() (node, error) {
	return p.parseBinaryChain(p.parseBitAnd, tokCaret)
}

func (p *parser) parseBitAnd() (node, error) {
	return p.parseBinaryChain(p.parseShift, tokAmp)
}

func (p *parser) parseShift() (node, error) {
	return p.parseBinaryChain(p.parseAdditive, tokLShift, tokRShift)
}

func (p *parser) parseAdditive() (node, error) {
	return p.parseBinaryChain(p.parseTerm, tokPlus, tokMinus)
}

func (p *parser) parseTerm() (node, error) {
	return p.parseBinaryChain(p.parseUnary, tokStar, tokSlash, tokFloorDiv, tokPercent)
}

func (p *parser) parseUnary() (node, error) {
	if p.tok.kind == tokPlus || p.tok.kind == tokMinus {
		op := p.tok.kind
		if err := p.advance(); err != nil {
			return nil, err
		}
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &unaryNode{op: op, operand: operand}, nil
	}
	return p.parsePower()
}

func (p *parser) parsePower() (node, error) {
	base, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	if p.tok.kind != tokPower {
		return base, nil
	}
	if err := p.advance(); err != nil {
		return nil, err
	}
	// The exponent re-enters at the unary level so 2 ** -1 parses, and the
	// recursion through parseUnary -> parsePower makes ** right
	// associative.
	exp, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	return &binaryNode{op: tokPower, left: base, right: exp}, nil
}

func (p *parser) parsePrimary() (node, error) {
	switch p.tok.kind {
	case tokNumber:
		n := &numberNode{value: p.tok.value}
		if err := p.advance(); err != nil {
			return nil, err
		}
		return n, nil

	case tokLParen:
		if err := p.advance(); err != nil {
			return nil, err
		}
		n, err := p.parseConditional()
		if err != nil {
			return nil, err
		}
		if err := p.expect(tokRParen); err != nil {
			return nil, err
		}
		return n, nil

	case tokIdent:
		return p.parseIdent()
	}

	return nil, compileErrorf(p.tok.text, p.tok.pos,
		"expected a value, found %s", p.tok.describe())
}

// parseIdent resolves a bare identifier. Only S, the bare builtins, and
// the math namespace exist; every other name is rejected here, by name.
func (p *parser) parseIdent() (node, error) {
	name := p.tok.text
	pos := p.tok.pos
	if err := p.advance(); err != nil {
		return nil, err
	}

	if name == "S" {
		return priceNode{}, nil
	}

	if name == "math" {
		return p.parseMathMember(pos)
	}

	if fn, ok := builtins[name]; ok {
		if p.tok.kind != tokLParen {
			return nil, compileErrorf(name, pos,
				"%q must be called, e.g. %s(S - 100, 0)", name, name)
		}
		return p.parseCall(fn, pos)
	}

	return nil, compileErrorf(name, pos,
		"unknown identifier %q; use 'S' for the terminal price", name)
}

// parseMathMember handles math.<member>, the only attribute access the
// grammar has. Members resolve against fixed tables at compile time, so a
// misspelled or hostile member name can never reach evaluation.
func (p *parser) parseMathMember(pos int) (node, error) {
	if err := p.expect(tokDot); err != nil {
		return nil, err
	}
	if p.tok.kind != tokIdent {
		return nil, compileErrorf(p.tok.text, p.tok.pos,
			"expected a math member name, found %s", p.tok.describe())
	}
	member := p.tok.text
	memberPos := p.tok.pos
	if err := p.advance(); err != nil {
		return nil, err
	}

	if p.tok.kind == tokLParen {
		fn, ok := mathFuncs[member]
		if !ok {
			return nil, compileErrorf("math."+member, memberPos,
				"unknown math function %q", "math."+member)
		}
		return p.parseCall(fn, pos)
	}

	if v, ok := mathConsts[member]; ok {
		return &numberNode{value: v}, nil
	}
	return nil, compileErrorf("math."+member, memberPos,
		"unknown math member %q", "math."+member)
}

// parseCall parses the parenthesized argument list for fn and checks its
// arity. The lookahead is positioned on '('.
func (p *parser) parseCall(fn *builtin, pos int) (node, error) {
	if err := p.expect(tokLParen); err != nil {
		return nil, err
	}

	var args []node
	if p.tok.kind != tokRParen {
		for {
			arg, err := p.parseConditional()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
			if p.tok.kind != tokComma {
				break
			}
			if err := p.advance(); err != nil {
				return nil, err
			}
		}
	}
	if err := p.expect(tokRParen); err != nil {
		return nil, err
	}

	if len(args) < fn.minArgs {
		return nil, compileErrorf(fn.name, pos,
			"%s expects at least %d argument(s), got %d", fn.name, fn.minArgs, len(args))
	}
	if fn.maxArgs >= 0 && len(args) > fn.maxArgs {
		return nil, compileErrorf(fn.name, pos,
			"%s expects at most %d argument(s), got %d", fn.name, fn.maxArgs, len(args))
	}
	return &callNode{name: fn.name, fn: fn, args: args}, nil
}
